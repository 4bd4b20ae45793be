package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// MenuMode controls whether a menu renders as a dropdown or a flat bar.
type MenuMode string

const (
	MenuModeSubmenu MenuMode = "SUBMENU"
	MenuModeInline  MenuMode = "INLINE"
)

// MenuType selects the menu presentation family.
type MenuType string

const (
	MenuTypeList MenuType = "LIST"
	MenuTypeCard MenuType = "CARD"
)

// CardSize controls the dimensions of card entries.
type CardSize string

const (
	CardSizeTiny   CardSize = "TINY"
	CardSizeSmall  CardSize = "SMALL"
	CardSizeMedium CardSize = "MEDIUM"
	CardSizeLarge  CardSize = "LARGE"
)

// CardForm controls the aspect ratio of card entries.
type CardForm string

const (
	CardFormSquare    CardForm = "SQUARE"
	CardFormPortrait  CardForm = "PORTRAIT"
	CardFormLandscape CardForm = "LANDSCAPE"
	CardFormFullwidth CardForm = "FULLWIDTH"
)

// CardOverflow controls how card rows handle horizontal overflow.
type CardOverflow string

const (
	CardOverflowNoWrap CardOverflow = "NOWRAP"
	CardOverflowWrap   CardOverflow = "WRAP"
)

// MoreBehavior tags how overflowing entries interact with the collapsed
// "more" region. It is a rendering hint passed through untouched.
type MoreBehavior string

const (
	MoreBehaviorForceInto   MoreBehavior = "FORCE_INTO"
	MoreBehaviorKeepOutside MoreBehavior = "KEEP_OUTSIDE"
)

// FilterOperator combines the role and cohort visibility dimensions.
type FilterOperator string

const (
	OperatorAny FilterOperator = "ANY"
	OperatorAll FilterOperator = "ALL"
)

// RoleContext scopes which of the viewer's role assignments count.
type RoleContext string

const (
	RoleContextAny    RoleContext = "ANY"
	RoleContextSystem RoleContext = "SYSTEM"
)

// VisibilityRules is the layered visibility filter shared by menus and items.
// Empty sets and nil dates impose no restriction on their dimension.
type VisibilityRules struct {
	Roles       pq.Int64Array  `db:"roles" json:"roles" swaggertype:"array,integer"`
	RoleContext RoleContext    `db:"role_context" json:"role_context"`
	Cohorts     pq.Int64Array  `db:"cohorts" json:"cohorts" swaggertype:"array,integer"`
	Operator    FilterOperator `db:"operator" json:"operator"`
	Languages   pq.StringArray `db:"languages" json:"languages" swaggertype:"array,string"`
	StartDate   *time.Time     `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time     `db:"end_date" json:"end_date,omitempty"`
}

// Menu is a placement-targeted collection of navigation items. It exclusively
// owns its items; deleting a menu cascades to them.
type Menu struct {
	ID           string         `db:"id" json:"id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	Locations    pq.StringArray `db:"locations" json:"locations" swaggertype:"array,string"`
	Mode         MenuMode       `db:"mode" json:"mode"`
	Type         MenuType       `db:"type" json:"type"`
	CSSClass     string         `db:"css_class" json:"css_class"`
	CardSize     CardSize       `db:"card_size" json:"card_size,omitempty"`
	CardForm     CardForm       `db:"card_form" json:"card_form,omitempty"`
	CardOverflow CardOverflow   `db:"card_overflow" json:"card_overflow,omitempty"`
	MoreBehavior MoreBehavior   `db:"more_behavior" json:"more_behavior"`
	VisibilityRules
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ItemType distinguishes fixed links from live course expansions.
type ItemType string

const (
	ItemTypeStatic         ItemType = "STATIC"
	ItemTypeDynamicCourses ItemType = "DYNAMIC_COURSES"
)

// DisplayOption controls title/icon rendering for an item.
type DisplayOption string

const (
	DisplayShowTitleIcon   DisplayOption = "SHOW_TITLE_ICON"
	DisplayHideTitle       DisplayOption = "HIDE_TITLE"
	DisplayHideTitleMobile DisplayOption = "HIDE_TITLE_MOBILE"
)

// LinkTarget controls the browsing context a link opens in.
type LinkTarget string

const (
	TargetSelf  LinkTarget = "SELF"
	TargetBlank LinkTarget = "BLANK"
)

// TextPosition places card text relative to the card image.
type TextPosition string

const (
	TextPositionBelow         TextPosition = "BELOW"
	TextPositionOverlayBottom TextPosition = "OVERLAY_BOTTOM"
	TextPositionOverlayCenter TextPosition = "OVERLAY_CENTER"
)

// DisplayField selects the course attribute used to title dynamic entries.
type DisplayField string

const (
	DisplayFieldFullname  DisplayField = "FULLNAME"
	DisplayFieldShortname DisplayField = "SHORTNAME"
)

// CompletionStatus values accepted by the dynamic-courses filter.
type CompletionStatus string

const (
	CompletionEnrolled   CompletionStatus = "ENROLLED"
	CompletionInProgress CompletionStatus = "INPROGRESS"
	CompletionCompleted  CompletionStatus = "COMPLETED"
)

// DateRange values accepted by the dynamic-courses filter, relative to the
// course start/end dates at evaluation time.
type DateRange string

const (
	DateRangePast    DateRange = "PAST"
	DateRangePresent DateRange = "PRESENT"
	DateRangeFuture  DateRange = "FUTURE"
)

// CustomFields is an opaque key/value predicate bag stored as JSONB. The
// assembler forwards it to the course-query collaborator untouched.
type CustomFields map[string]string

// Value implements driver.Valuer.
func (f CustomFields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner.
func (f *CustomFields) Scan(src interface{}) error {
	if src == nil {
		*f = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("custom fields: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, f)
}

// MenuItem is a single entry within a menu. Static items carry a fixed URL;
// dynamic items expand to the viewer's matching courses at assembly time.
type MenuItem struct {
	ID        string   `db:"id" json:"id"`
	MenuID    string   `db:"menu_id" json:"menu_id"`
	Title     string   `db:"title" json:"title"`
	Type      ItemType `db:"type" json:"type"`
	URL       string   `db:"url" json:"url,omitempty"`
	Mode      MenuMode `db:"mode" json:"mode"`
	SortOrder int      `db:"sort_order" json:"sort_order"`

	Categories          pq.Int64Array  `db:"categories" json:"categories" swaggertype:"array,integer"`
	EnrolmentRoles      pq.Int64Array  `db:"enrolment_roles" json:"enrolment_roles" swaggertype:"array,integer"`
	CompletionStatuses  pq.StringArray `db:"completion_statuses" json:"completion_statuses" swaggertype:"array,string"`
	DateRanges          pq.StringArray `db:"date_ranges" json:"date_ranges" swaggertype:"array,string"`
	CustomFieldCriteria CustomFields   `db:"custom_fields" json:"custom_fields,omitempty"`

	Icon        string        `db:"icon" json:"icon,omitempty"`
	Display     DisplayOption `db:"display" json:"display"`
	Tooltip     string        `db:"tooltip" json:"tooltip,omitempty"`
	Target      LinkTarget    `db:"target" json:"target"`
	HideDesktop bool          `db:"hide_desktop" json:"hide_desktop"`
	HideTablet  bool          `db:"hide_tablet" json:"hide_tablet"`
	HideMobile  bool          `db:"hide_mobile" json:"hide_mobile"`
	CSSClass    string        `db:"css_class" json:"css_class,omitempty"`

	Image           string       `db:"image" json:"image,omitempty"`
	TextPosition    TextPosition `db:"text_position" json:"text_position,omitempty"`
	TextColor       string       `db:"text_color" json:"text_color,omitempty"`
	BackgroundColor string       `db:"background_color" json:"background_color,omitempty"`
	DisplayField    DisplayField `db:"display_field" json:"display_field,omitempty"`
	TextCount       int          `db:"text_count" json:"text_count,omitempty"`

	VisibilityRules
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MenuFilter narrows menu listings.
type MenuFilter struct {
	Location string
	Type     MenuType
	Search   string
	Page     int
	PageSize int
}
