package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/navmenu-api/internal/models"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
)

type menuRepository interface {
	List(ctx context.Context, filter models.MenuFilter) ([]models.Menu, int, error)
	FindByID(ctx context.Context, id string) (*models.Menu, error)
	Create(ctx context.Context, menu *models.Menu) error
	Update(ctx context.Context, menu *models.Menu) error
	Delete(ctx context.Context, id string) error
}

// renderCacheInvalidator drops assembled navigation payloads after a
// configuration write.
type renderCacheInvalidator interface {
	InvalidateNavigation(ctx context.Context)
}

// VisibilityPayload is the visibility filter block shared by menu and item
// payloads.
type VisibilityPayload struct {
	Roles       []int64    `json:"roles"`
	RoleContext string     `json:"role_context" validate:"omitempty,rolecontext"`
	Cohorts     []int64    `json:"cohorts"`
	Operator    string     `json:"operator" validate:"omitempty,operator"`
	Languages   []string   `json:"languages"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (p VisibilityPayload) toRules() models.VisibilityRules {
	rules := models.VisibilityRules{
		Roles:       pq.Int64Array(p.Roles),
		RoleContext: models.RoleContext(p.RoleContext),
		Cohorts:     pq.Int64Array(p.Cohorts),
		Operator:    models.FilterOperator(p.Operator),
		Languages:   pq.StringArray(p.Languages),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
	}
	if rules.RoleContext == "" {
		rules.RoleContext = models.RoleContextAny
	}
	if rules.Operator == "" {
		rules.Operator = models.OperatorAny
	}
	return rules
}

// MenuPayload describes create/update input for menus.
type MenuPayload struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description"`
	Locations    []string `json:"locations"`
	Mode         string   `json:"mode" validate:"omitempty,menumode"`
	Type         string   `json:"type" validate:"omitempty,menutype"`
	CSSClass     string   `json:"css_class"`
	CardSize     string   `json:"card_size" validate:"omitempty,cardsize"`
	CardForm     string   `json:"card_form" validate:"omitempty,cardform"`
	CardOverflow string   `json:"card_overflow" validate:"omitempty,cardoverflow"`
	MoreBehavior string   `json:"more_behavior" validate:"omitempty,morebehavior"`
	VisibilityPayload
}

// MenuService validates and persists menu configuration.
type MenuService struct {
	repo      menuRepository
	cache     renderCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMenuService constructs the service.
func NewMenuService(repo menuRepository, cache renderCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *MenuService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns menus with pagination.
func (s *MenuService) List(ctx context.Context, filter models.MenuFilter) ([]models.Menu, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	menus, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list menus")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return menus, pagination, nil
}

// Get returns a menu by id.
func (s *MenuService) Get(ctx context.Context, id string) (*models.Menu, error) {
	menu, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get menu")
	}
	return menu, nil
}

// Create registers a new menu.
func (s *MenuService) Create(ctx context.Context, req MenuPayload) (*models.Menu, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	menu := s.apply(&models.Menu{}, req)
	if err := s.repo.Create(ctx, menu); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create menu")
	}
	s.invalidate(ctx)
	return menu, nil
}

// Update modifies an existing menu.
func (s *MenuService) Update(ctx context.Context, id string, req MenuPayload) (*models.Menu, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu")
	}
	menu := s.apply(existing, req)
	if err := s.repo.Update(ctx, menu); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update menu")
	}
	s.invalidate(ctx)
	return menu, nil
}

// Delete removes a menu and, through the repository, the items it owns.
func (s *MenuService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete menu")
	}
	s.invalidate(ctx)
	return nil
}

// validate enforces the structural invariants: required title, declared enum
// members everywhere, and one required-field error per missing card attribute
// when the menu type is CARD.
func (s *MenuService) validate(req MenuPayload) error {
	structErr := s.validator.Struct(req)
	extra := map[string]string{}
	if models.MenuType(req.Type) == models.MenuTypeCard {
		if req.CardSize == "" {
			extra["card_size"] = "field is required for card menus"
		}
		if req.CardForm == "" {
			extra["card_form"] = "field is required for card menus"
		}
		if req.CardOverflow == "" {
			extra["card_overflow"] = "field is required for card menus"
		}
	}
	if structErr == nil && len(extra) == 0 {
		return nil
	}
	return validationError(structErr, extra)
}

func (s *MenuService) apply(menu *models.Menu, req MenuPayload) *models.Menu {
	menu.Title = req.Title
	menu.Description = req.Description
	menu.Locations = pq.StringArray(req.Locations)
	menu.Mode = models.MenuMode(req.Mode)
	if menu.Mode == "" {
		menu.Mode = models.MenuModeSubmenu
	}
	menu.Type = models.MenuType(req.Type)
	if menu.Type == "" {
		menu.Type = models.MenuTypeList
	}
	menu.CSSClass = req.CSSClass
	menu.CardSize = models.CardSize(req.CardSize)
	menu.CardForm = models.CardForm(req.CardForm)
	menu.CardOverflow = models.CardOverflow(req.CardOverflow)
	menu.MoreBehavior = models.MoreBehavior(req.MoreBehavior)
	if menu.MoreBehavior == "" {
		menu.MoreBehavior = models.MoreBehaviorKeepOutside
	}
	menu.VisibilityRules = req.toRules()
	return menu
}

func (s *MenuService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateNavigation(ctx)
	}
}
