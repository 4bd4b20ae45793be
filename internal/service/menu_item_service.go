package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/navmenu-api/internal/models"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
)

type menuItemRepository interface {
	ListByMenu(ctx context.Context, menuID string) ([]models.MenuItem, error)
	FindByID(ctx context.Context, id string) (*models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id string) error
}

type menuLookup interface {
	FindByID(ctx context.Context, id string) (*models.Menu, error)
}

// MenuItemPayload describes create/update input for menu items.
type MenuItemPayload struct {
	Title     string `json:"title" validate:"required"`
	Type      string `json:"type" validate:"omitempty,itemtype"`
	URL       string `json:"url"`
	Mode      string `json:"mode" validate:"omitempty,menumode"`
	SortOrder int    `json:"sort_order"`

	Categories         []int64           `json:"categories"`
	EnrolmentRoles     []int64           `json:"enrolment_roles"`
	CompletionStatuses []string          `json:"completion_statuses" validate:"dive,completion"`
	DateRanges         []string          `json:"date_ranges" validate:"dive,daterange"`
	CustomFields       map[string]string `json:"custom_fields"`

	Icon        string `json:"icon"`
	Display     string `json:"display" validate:"omitempty,display"`
	Tooltip     string `json:"tooltip"`
	Target      string `json:"target" validate:"omitempty,linktarget"`
	HideDesktop bool   `json:"hide_desktop"`
	HideTablet  bool   `json:"hide_tablet"`
	HideMobile  bool   `json:"hide_mobile"`
	CSSClass    string `json:"css_class"`

	Image           string `json:"image"`
	TextPosition    string `json:"text_position" validate:"omitempty,textposition"`
	TextColor       string `json:"text_color"`
	BackgroundColor string `json:"background_color"`
	DisplayField    string `json:"display_field" validate:"omitempty,displayfield"`
	TextCount       int    `json:"text_count" validate:"gte=0"`

	VisibilityPayload
}

// MenuItemService validates and persists menu item configuration.
type MenuItemService struct {
	repo      menuItemRepository
	menus     menuLookup
	cache     renderCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMenuItemService constructs the service.
func NewMenuItemService(repo menuItemRepository, menus menuLookup, cache renderCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *MenuItemService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuItemService{repo: repo, menus: menus, cache: cache, validator: validate, logger: logger}
}

// ListByMenu returns the items of a menu in render order.
func (s *MenuItemService) ListByMenu(ctx context.Context, menuID string) ([]models.MenuItem, error) {
	if _, err := s.menus.FindByID(ctx, menuID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu")
	}
	items, err := s.repo.ListByMenu(ctx, menuID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list menu items")
	}
	return items, nil
}

// Get returns a menu item by id.
func (s *MenuItemService) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get menu item")
	}
	return item, nil
}

// Create registers a new item under the given menu.
func (s *MenuItemService) Create(ctx context.Context, menuID string, req MenuItemPayload) (*models.MenuItem, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if _, err := s.menus.FindByID(ctx, menuID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu")
	}
	item := s.apply(&models.MenuItem{MenuID: menuID}, req)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create menu item")
	}
	s.invalidate(ctx)
	return item, nil
}

// Update modifies an existing menu item.
func (s *MenuItemService) Update(ctx context.Context, id string, req MenuItemPayload) (*models.MenuItem, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item := s.apply(existing, req)
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update menu item")
	}
	s.invalidate(ctx)
	return item, nil
}

// Delete removes a menu item.
func (s *MenuItemService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete menu item")
	}
	s.invalidate(ctx)
	return nil
}

// validate enforces the item invariants: required title, declared enum
// members, and a URL whenever the item type is STATIC. Dynamic items ignore
// any URL supplied.
func (s *MenuItemService) validate(req MenuItemPayload) error {
	structErr := s.validator.Struct(req)
	extra := map[string]string{}
	itemType := models.ItemType(req.Type)
	if itemType == "" {
		itemType = models.ItemTypeStatic
	}
	if itemType == models.ItemTypeStatic && req.URL == "" {
		extra["url"] = "field is required for static items"
	}
	if structErr == nil && len(extra) == 0 {
		return nil
	}
	return validationError(structErr, extra)
}

func (s *MenuItemService) apply(item *models.MenuItem, req MenuItemPayload) *models.MenuItem {
	item.Title = req.Title
	item.Type = models.ItemType(req.Type)
	if item.Type == "" {
		item.Type = models.ItemTypeStatic
	}
	item.URL = req.URL
	if item.Type == models.ItemTypeDynamicCourses {
		item.URL = ""
	}
	item.Mode = models.MenuMode(req.Mode)
	if item.Mode == "" {
		item.Mode = models.MenuModeInline
	}
	item.SortOrder = req.SortOrder

	item.Categories = pq.Int64Array(req.Categories)
	item.EnrolmentRoles = pq.Int64Array(req.EnrolmentRoles)
	item.CompletionStatuses = pq.StringArray(req.CompletionStatuses)
	item.DateRanges = pq.StringArray(req.DateRanges)
	item.CustomFieldCriteria = models.CustomFields(req.CustomFields)

	item.Icon = req.Icon
	item.Display = models.DisplayOption(req.Display)
	if item.Display == "" {
		item.Display = models.DisplayShowTitleIcon
	}
	item.Tooltip = req.Tooltip
	item.Target = models.LinkTarget(req.Target)
	if item.Target == "" {
		item.Target = models.TargetSelf
	}
	item.HideDesktop = req.HideDesktop
	item.HideTablet = req.HideTablet
	item.HideMobile = req.HideMobile
	item.CSSClass = req.CSSClass

	item.Image = req.Image
	item.TextPosition = models.TextPosition(req.TextPosition)
	item.TextColor = req.TextColor
	item.BackgroundColor = req.BackgroundColor
	item.DisplayField = models.DisplayField(req.DisplayField)
	item.TextCount = req.TextCount

	item.VisibilityRules = req.toRules()
	return item
}

func (s *MenuItemService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateNavigation(ctx)
	}
}
