package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/navmenu-api/internal/models"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
)

type stubItemRepo struct {
	items   map[string]*models.MenuItem
	created *models.MenuItem
	deleted []string
}

func newStubItemRepo(items ...*models.MenuItem) *stubItemRepo {
	r := &stubItemRepo{items: map[string]*models.MenuItem{}}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return r
}

func (r *stubItemRepo) ListByMenu(_ context.Context, menuID string) ([]models.MenuItem, error) {
	out := []models.MenuItem{}
	for _, item := range r.items {
		if item.MenuID == menuID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubItemRepo) FindByID(_ context.Context, id string) (*models.MenuItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return item, nil
}

func (r *stubItemRepo) Create(_ context.Context, item *models.MenuItem) error {
	item.ID = "generated"
	r.created = item
	return nil
}

func (r *stubItemRepo) Update(_ context.Context, item *models.MenuItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *stubItemRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func newItemService(repo *stubItemRepo, menus *stubMenuRepo, invalidator *stubInvalidator) *MenuItemService {
	var cache renderCacheInvalidator
	if invalidator != nil {
		cache = invalidator
	}
	return NewMenuItemService(repo, menus, cache, nil, zap.NewNop())
}

func TestMenuItemServiceCreateRequiresTitle(t *testing.T) {
	svc := newItemService(newStubItemRepo(), newStubMenuRepo(&models.Menu{ID: "m1"}), nil)

	_, err := svc.Create(context.Background(), "m1", MenuItemPayload{URL: "/x"})
	require.Error(t, err)
	fields := fieldErrors(t, err)
	assert.Equal(t, "field is required", fields["title"])
}

func TestMenuItemServiceStaticRequiresURL(t *testing.T) {
	svc := newItemService(newStubItemRepo(), newStubMenuRepo(&models.Menu{ID: "m1"}), nil)

	_, err := svc.Create(context.Background(), "m1", MenuItemPayload{Title: "Home"})
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "url")

	// Dynamic items do not need a URL.
	item, err := svc.Create(context.Background(), "m1", MenuItemPayload{Title: "Courses", Type: "DYNAMIC_COURSES"})
	require.NoError(t, err)
	assert.Equal(t, models.ItemTypeDynamicCourses, item.Type)
}

func TestMenuItemServiceDynamicClearsURL(t *testing.T) {
	svc := newItemService(newStubItemRepo(), newStubMenuRepo(&models.Menu{ID: "m1"}), nil)

	item, err := svc.Create(context.Background(), "m1", MenuItemPayload{Title: "Courses", Type: "DYNAMIC_COURSES", URL: "/ignored"})
	require.NoError(t, err)
	assert.Empty(t, item.URL)
}

func TestMenuItemServiceRejectsUnknownFilterValues(t *testing.T) {
	svc := newItemService(newStubItemRepo(), newStubMenuRepo(&models.Menu{ID: "m1"}), nil)

	_, err := svc.Create(context.Background(), "m1", MenuItemPayload{
		Title:              "Courses",
		Type:               "DYNAMIC_COURSES",
		CompletionStatuses: []string{"COMPLETED", "ABANDONED"},
	})
	fields := fieldErrors(t, err)
	require.Len(t, fields, 1)
	for name, message := range fields {
		assert.Contains(t, name, "completion_statuses")
		assert.Equal(t, "invalid value", message)
	}

	_, err = svc.Create(context.Background(), "m1", MenuItemPayload{
		Title:      "Courses",
		Type:       "DYNAMIC_COURSES",
		DateRanges: []string{"YESTERDAY"},
	})
	assert.Error(t, err)
}

func TestMenuItemServiceCreateAppliesDefaults(t *testing.T) {
	repo := newStubItemRepo()
	invalidator := &stubInvalidator{}
	svc := newItemService(repo, newStubMenuRepo(&models.Menu{ID: "m1"}), invalidator)

	item, err := svc.Create(context.Background(), "m1", MenuItemPayload{Title: "Home", URL: "/home"})
	require.NoError(t, err)

	assert.Equal(t, models.ItemTypeStatic, item.Type)
	assert.Equal(t, models.MenuModeInline, item.Mode)
	assert.Equal(t, models.DisplayShowTitleIcon, item.Display)
	assert.Equal(t, models.TargetSelf, item.Target)
	assert.Equal(t, "m1", item.MenuID)
	assert.Equal(t, 1, invalidator.calls)
}

func TestMenuItemServiceCreateUnknownMenu(t *testing.T) {
	svc := newItemService(newStubItemRepo(), newStubMenuRepo(), nil)

	_, err := svc.Create(context.Background(), "missing", MenuItemPayload{Title: "Home", URL: "/home"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMenuItemServiceListByMenuUnknownMenu(t *testing.T) {
	svc := newItemService(newStubItemRepo(), newStubMenuRepo(), nil)

	_, err := svc.ListByMenu(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMenuItemServiceUpdateAndDelete(t *testing.T) {
	existing := &models.MenuItem{ID: "i1", MenuID: "m1", Title: "Old", Type: models.ItemTypeStatic, URL: "/old"}
	repo := newStubItemRepo(existing)
	invalidator := &stubInvalidator{}
	svc := newItemService(repo, newStubMenuRepo(&models.Menu{ID: "m1"}), invalidator)

	item, err := svc.Update(context.Background(), "i1", MenuItemPayload{Title: "New", URL: "/new", SortOrder: 5})
	require.NoError(t, err)
	assert.Equal(t, "New", item.Title)
	assert.Equal(t, 5, item.SortOrder)

	require.NoError(t, svc.Delete(context.Background(), "i1"))
	assert.Equal(t, []string{"i1"}, repo.deleted)
	assert.Equal(t, 2, invalidator.calls)
}
