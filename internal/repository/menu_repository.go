package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/navmenu-api/internal/models"
)

const menuColumns = `id, title, description, locations, mode, type, css_class, card_size, card_form, card_overflow, more_behavior,
roles, role_context, cohorts, operator, languages, start_date, end_date, created_at, updated_at`

// MenuRepository provides persistence for menus.
type MenuRepository struct {
	db *sqlx.DB
}

// NewMenuRepository creates the repository.
func NewMenuRepository(db *sqlx.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// List returns menus matching the provided filters.
func (r *MenuRepository) List(ctx context.Context, filter models.MenuFilter) ([]models.Menu, int, error) {
	base := "FROM menus WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(locations)", len(args)+1))
		args = append(args, filter.Location)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY title, id LIMIT %d OFFSET %d", menuColumns, base, size, offset)
	var menus []models.Menu
	if err := r.db.SelectContext(ctx, &menus, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list menus: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count menus: %w", err)
	}
	return menus, total, nil
}

// ListByLocation returns every menu whose locations include the placement
// tag. Visibility is evaluated by the caller, not here.
func (r *MenuRepository) ListByLocation(ctx context.Context, location string) ([]models.Menu, error) {
	query := fmt.Sprintf("SELECT %s FROM menus WHERE $1 = ANY(locations) ORDER BY title, id", menuColumns)
	var menus []models.Menu
	if err := r.db.SelectContext(ctx, &menus, query, location); err != nil {
		return nil, fmt.Errorf("list menus by location: %w", err)
	}
	return menus, nil
}

// FindByID returns a menu by identifier.
func (r *MenuRepository) FindByID(ctx context.Context, id string) (*models.Menu, error) {
	query := fmt.Sprintf("SELECT %s FROM menus WHERE id = $1", menuColumns)
	var menu models.Menu
	if err := r.db.GetContext(ctx, &menu, query, id); err != nil {
		return nil, err
	}
	return &menu, nil
}

// Create inserts a new menu.
func (r *MenuRepository) Create(ctx context.Context, menu *models.Menu) error {
	if menu.ID == "" {
		menu.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if menu.CreatedAt.IsZero() {
		menu.CreatedAt = now
	}
	menu.UpdatedAt = now
	query := `INSERT INTO menus (id, title, description, locations, mode, type, css_class, card_size, card_form, card_overflow, more_behavior,
roles, role_context, cohorts, operator, languages, start_date, end_date, created_at, updated_at)
VALUES (:id, :title, :description, :locations, :mode, :type, :css_class, :card_size, :card_form, :card_overflow, :more_behavior,
:roles, :role_context, :cohorts, :operator, :languages, :start_date, :end_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, menu); err != nil {
		return fmt.Errorf("create menu: %w", err)
	}
	return nil
}

// Update modifies an existing menu.
func (r *MenuRepository) Update(ctx context.Context, menu *models.Menu) error {
	menu.UpdatedAt = time.Now().UTC()
	query := `UPDATE menus SET title = :title, description = :description, locations = :locations, mode = :mode, type = :type,
css_class = :css_class, card_size = :card_size, card_form = :card_form, card_overflow = :card_overflow, more_behavior = :more_behavior,
roles = :roles, role_context = :role_context, cohorts = :cohorts, operator = :operator, languages = :languages,
start_date = :start_date, end_date = :end_date, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, menu); err != nil {
		return fmt.Errorf("update menu: %w", err)
	}
	return nil
}

// Delete removes a menu together with the items it owns.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete menu: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM menu_items WHERE menu_id = $1", id); err != nil {
		return fmt.Errorf("delete menu items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM menus WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete menu: %w", err)
	}
	return nil
}
