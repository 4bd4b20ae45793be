package dto

import "github.com/noah-isme/navmenu-api/internal/models"

// CardLayout carries card presentation attributes. It is attached to the
// render model only when the menu type is CARD.
type CardLayout struct {
	Size     models.CardSize     `json:"size"`
	Form     models.CardForm     `json:"form"`
	Overflow models.CardOverflow `json:"overflow"`
}

// ItemRender is one assembled navigation entry. Dynamic items are replaced by
// their expanded course entries, which inherit the parent's presentation.
type ItemRender struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`

	Icon        string               `json:"icon,omitempty"`
	Display     models.DisplayOption `json:"display"`
	Tooltip     string               `json:"tooltip,omitempty"`
	Target      models.LinkTarget    `json:"target"`
	HideDesktop bool                 `json:"hide_desktop"`
	HideTablet  bool                 `json:"hide_tablet"`
	HideMobile  bool                 `json:"hide_mobile"`
	CSSClass    string               `json:"css_class,omitempty"`

	Image           string              `json:"image,omitempty"`
	TextPosition    models.TextPosition `json:"text_position,omitempty"`
	TextColor       string              `json:"text_color,omitempty"`
	BackgroundColor string              `json:"background_color,omitempty"`
	Summary         string              `json:"summary,omitempty"`

	CourseID int64 `json:"course_id,omitempty"`
}

// MenuRender is the assembled model for one visible menu. Items are split
// into the inline and submenu buckets; when the menu mode is INLINE every
// item lands in the inline bucket regardless of its own mode flag.
type MenuRender struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description,omitempty"`
	Mode         models.MenuMode     `json:"mode"`
	Type         models.MenuType     `json:"type"`
	CSSClass     string              `json:"css_class,omitempty"`
	MoreBehavior models.MoreBehavior `json:"more_behavior"`
	Card         *CardLayout         `json:"card,omitempty"`
	Inline       []ItemRender        `json:"inline"`
	Submenu      []ItemRender        `json:"submenu"`
}

// NavigationResponse is the render model for one placement. Warnings record
// non-fatal collaborator failures encountered during assembly.
type NavigationResponse struct {
	Placement string       `json:"placement"`
	Menus     []MenuRender `json:"menus"`
	Warnings  []string     `json:"warnings,omitempty"`
}
