package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/navmenu-api/internal/models"
)

const menuItemColumns = `id, menu_id, title, type, url, mode, sort_order,
categories, enrolment_roles, completion_statuses, date_ranges, custom_fields,
icon, display, tooltip, target, hide_desktop, hide_tablet, hide_mobile, css_class,
image, text_position, text_color, background_color, display_field, text_count,
roles, role_context, cohorts, operator, languages, start_date, end_date, created_at, updated_at`

// MenuItemRepository provides persistence for menu items.
type MenuItemRepository struct {
	db *sqlx.DB
}

// NewMenuItemRepository creates the repository.
func NewMenuItemRepository(db *sqlx.DB) *MenuItemRepository {
	return &MenuItemRepository{db: db}
}

// ListByMenu returns the items owned by a menu in deterministic order:
// sort_order ascending with id as tie-breaker.
func (r *MenuItemRepository) ListByMenu(ctx context.Context, menuID string) ([]models.MenuItem, error) {
	query := fmt.Sprintf("SELECT %s FROM menu_items WHERE menu_id = $1 ORDER BY sort_order, id", menuItemColumns)
	var items []models.MenuItem
	if err := r.db.SelectContext(ctx, &items, query, menuID); err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}

// FindByID returns a menu item by identifier.
func (r *MenuItemRepository) FindByID(ctx context.Context, id string) (*models.MenuItem, error) {
	query := fmt.Sprintf("SELECT %s FROM menu_items WHERE id = $1", menuItemColumns)
	var item models.MenuItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new menu item.
func (r *MenuItemRepository) Create(ctx context.Context, item *models.MenuItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	query := `INSERT INTO menu_items (id, menu_id, title, type, url, mode, sort_order,
categories, enrolment_roles, completion_statuses, date_ranges, custom_fields,
icon, display, tooltip, target, hide_desktop, hide_tablet, hide_mobile, css_class,
image, text_position, text_color, background_color, display_field, text_count,
roles, role_context, cohorts, operator, languages, start_date, end_date, created_at, updated_at)
VALUES (:id, :menu_id, :title, :type, :url, :mode, :sort_order,
:categories, :enrolment_roles, :completion_statuses, :date_ranges, :custom_fields,
:icon, :display, :tooltip, :target, :hide_desktop, :hide_tablet, :hide_mobile, :css_class,
:image, :text_position, :text_color, :background_color, :display_field, :text_count,
:roles, :role_context, :cohorts, :operator, :languages, :start_date, :end_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	return nil
}

// Update modifies an existing menu item.
func (r *MenuItemRepository) Update(ctx context.Context, item *models.MenuItem) error {
	item.UpdatedAt = time.Now().UTC()
	query := `UPDATE menu_items SET title = :title, type = :type, url = :url, mode = :mode, sort_order = :sort_order,
categories = :categories, enrolment_roles = :enrolment_roles, completion_statuses = :completion_statuses,
date_ranges = :date_ranges, custom_fields = :custom_fields,
icon = :icon, display = :display, tooltip = :tooltip, target = :target,
hide_desktop = :hide_desktop, hide_tablet = :hide_tablet, hide_mobile = :hide_mobile, css_class = :css_class,
image = :image, text_position = :text_position, text_color = :text_color, background_color = :background_color,
display_field = :display_field, text_count = :text_count,
roles = :roles, role_context = :role_context, cohorts = :cohorts, operator = :operator, languages = :languages,
start_date = :start_date, end_date = :end_date, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	return nil
}

// Delete removes a menu item.
func (r *MenuItemRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM menu_items WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}
