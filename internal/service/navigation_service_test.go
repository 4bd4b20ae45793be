package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/navmenu-api/internal/models"
	"github.com/noah-isme/navmenu-api/pkg/config"
)

type stubMenuLister struct {
	menus []models.Menu
	err   error
}

func (s *stubMenuLister) ListByLocation(_ context.Context, _ string) ([]models.Menu, error) {
	return s.menus, s.err
}

type stubItemLister struct {
	items map[string][]models.MenuItem
	err   error
}

func (s *stubItemLister) ListByMenu(_ context.Context, menuID string) ([]models.MenuItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items[menuID], nil
}

type stubCourseQuerier struct {
	courses []models.CourseSummary
	err     error
	filter  models.CourseFilter
	called  bool
}

func (s *stubCourseQuerier) Query(_ context.Context, filter models.CourseFilter) ([]models.CourseSummary, error) {
	s.called = true
	s.filter = filter
	return s.courses, s.err
}

func newTestAssembler(menus *stubMenuLister, items *stubItemLister, courses *stubCourseQuerier) *NavigationService {
	cfg := config.NavigationConfig{CourseQueryTimeout: time.Second, MaxCourseEntries: 50}
	return NewNavigationService(menus, items, courses, nil, nil, cfg, zap.NewNop())
}

func staticItem(id, menuID, title string, sortOrder int) models.MenuItem {
	return models.MenuItem{
		ID:        id,
		MenuID:    menuID,
		Title:     title,
		Type:      models.ItemTypeStatic,
		URL:       "/" + id,
		Mode:      models.MenuModeInline,
		SortOrder: sortOrder,
	}
}

func TestAssembleOrdersItemsBySortOrderThenID(t *testing.T) {
	menus := &stubMenuLister{menus: []models.Menu{{ID: "m1", Title: "Main", Mode: models.MenuModeInline, Type: models.MenuTypeList}}}
	items := &stubItemLister{items: map[string][]models.MenuItem{
		"m1": {
			staticItem("a", "m1", "A", 30),
			staticItem("b", "m1", "B", 10),
			staticItem("c", "m1", "C", 20),
		},
	}}

	svc := newTestAssembler(menus, items, &stubCourseQuerier{})
	resp, cached, err := svc.Assemble(context.Background(), "main", models.ViewerContext{Now: time.Now()})
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, resp.Menus, 1)

	got := resp.Menus[0].Inline
	require.Len(t, got, 3)
	assert.Equal(t, []string{"B", "C", "A"}, []string{got[0].Title, got[1].Title, got[2].Title})
}

func TestAssembleBreaksSortOrderTiesByID(t *testing.T) {
	menus := &stubMenuLister{menus: []models.Menu{{ID: "m1", Title: "Main", Mode: models.MenuModeInline}}}
	items := &stubItemLister{items: map[string][]models.MenuItem{
		"m1": {
			staticItem("7", "m1", "Seven", 10),
			staticItem("3", "m1", "Three", 10),
		},
	}}

	svc := newTestAssembler(menus, items, &stubCourseQuerier{})
	resp, _, err := svc.Assemble(context.Background(), "main", models.ViewerContext{Now: time.Now()})
	require.NoError(t, err)

	got := resp.Menus[0].Inline
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "7", got[1].ID)
}

func TestAssembleFiltersInvisibleMenusAndItems(t *testing.T) {
	hidden := models.Menu{ID: "m2", Title: "Staff only"}
	hidden.Roles = pq.Int64Array{1}
	menus := &stubMenuLister{menus: []models.Menu{
		{ID: "m1", Title: "Public", Mode: models.MenuModeInline},
		hidden,
	}}

	restricted := staticItem("b", "m1", "B", 2)
	restricted.Languages = pq.StringArray{"de"}
	items := &stubItemLister{items: map[string][]models.MenuItem{
		"m1": {staticItem("a", "m1", "A", 1), restricted},
	}}

	svc := newTestAssembler(menus, items, &stubCourseQuerier{})
	viewer := models.ViewerContext{Language: "en", Now: time.Now()}
	resp, _, err := svc.Assemble(context.Background(), "main", viewer)
	require.NoError(t, err)

	require.Len(t, resp.Menus, 1)
	assert.Equal(t, "Public", resp.Menus[0].Title)
	require.Len(t, resp.Menus[0].Inline, 1)
	assert.Equal(t, "A", resp.Menus[0].Inline[0].Title)
}

func TestAssemblePartitionsItemsByMode(t *testing.T) {
	menus := &stubMenuLister{menus: []models.Menu{{ID: "m1", Title: "Main", Mode: models.MenuModeSubmenu}}}

	inline := staticItem("a", "m1", "Inline", 1)
	nested := staticItem("b", "m1", "Nested", 2)
	nested.Mode = models.MenuModeSubmenu
	items := &stubItemLister{items: map[string][]models.MenuItem{"m1": {inline, nested}}}

	svc := newTestAssembler(menus, items, &stubCourseQuerier{})
	resp, _, err := svc.Assemble(context.Background(), "main", models.ViewerContext{Now: time.Now()})
	require.NoError(t, err)

	menu := resp.Menus[0]
	require.Len(t, menu.Inline, 1)
	assert.Equal(t, "Inline", menu.Inline[0].Title)
	require.Len(t, menu.Submenu, 1)
	assert.Equal(t, "Nested", menu.Submenu[0].Title)
}

func TestAssembleInlineMenuIgnoresItemMode(t *testing.T) {
	menus := &stubMenuLister{menus: []models.Menu{{ID: "m1", Title: "Main", Mode: models.MenuModeInline}}}

	nested := staticItem("a", "m1", "Nested", 1)
	nested.Mode = models.MenuModeSubmenu
	items := &stubItemLister{items: map[string][]models.MenuItem{"m1": {nested}}}

	svc := newTestAssembler(menus, items, &stubCourseQuerier{})
	resp, _, err := svc.Assemble(context.Background(), "main", models.ViewerContext{Now: time.Now()})
	require.NoError(t, err)

	menu := resp.Menus[0]
	assert.Len(t, menu.Inline, 1)
	assert.Empty(t, menu.Submenu)
}

func TestAssembleCardAttributes(t *testing.T) {
	menus := &stubMenuLister{menus: []models.Menu{
		{ID: "m1", Title: "Cards", Type: models.MenuTypeCard, CardSize: models.CardSizeMedium, CardForm: models.CardFormSquare, CardOverflow: models.CardOverflowWrap},
		{ID: "m2", Title: "Plain", Type: models.MenuTypeList, CardSize: models.CardSizeLarge},
	}}
	items := &stubItemLister{items: map[string][]models.MenuItem{}}

	svc := newTestAssembler(menus, items, &stubCourseQuerier{})
	resp, _, err := svc.Assemble(context.Background(), "main", models.ViewerContext{Now: time.Now()})
	require.NoError(t, err)
	require.Len(t, resp.Menus, 2)

	card := resp.Menus[0]
	require.NotNil(t, card.Card)
	assert.Equal(t, models.CardSizeMedium, card.Card.Size)
	assert.Equal(t, models.CardFormSquare, card.Card.Form)
	assert.Equal(t, models.CardOverflowWrap, card.Card.Overflow)

	assert.Nil(t, resp.Menus[1].Card)
}

func TestAssembleExpandsDynamicItems(t *testing.T) {
	menus := &stubMenuLister{menus: []models.Menu{{ID: "m1", Title: "Main", Mode: models.MenuModeInline}}}

	dynamic := models.MenuItem{
		ID:             "dyn",
		MenuID:         "m1",
		Title:          "My courses",
		Type:           models.ItemTypeDynamicCourses,
		Mode:           models.MenuModeInline,
		SortOrder:      1,
		Categories:     pq.Int64Array{3},
		EnrolmentRoles: pq.Int64Array{5},
		DisplayField:   models.DisplayFieldShortname,
	}
	items := &stubItemLister{items: map[string][]models.MenuItem{"m1": {dynamic}}}
	courses := &stubCourseQuerier{courses: []models.CourseSummary{
		{ID: 42, Fullname: "Algebra II", Shortname: "ALG2", URL: "/course/42"},
		{ID: 43, Fullname: "Biology", Shortname: "BIO1", URL: "/course/43"},
	}}

	svc := newTestAssembler(menus, items, courses)
	viewer := models.ViewerContext{UserID: "u1", Now: time.Now()}
	resp, _, err := svc.Assemble(context.Background(), "main", viewer)
	require.NoError(t, err)
	assert.Empty(t, resp.Warnings)

	require.True(t, courses.called)
	assert.Equal(t, "u1", courses.filter.UserID)
	assert.Equal(t, []int64{3}, courses.filter.Categories)
	assert.Equal(t, []int64{5}, courses.filter.EnrolmentRoles)
	assert.Equal(t, 50, courses.filter.Limit)

	got := resp.Menus[0].Inline
	require.Len(t, got, 2)
	assert.Equal(t, "dyn:42", got[0].ID)
	assert.Equal(t, "ALG2", got[0].Title)
	assert.Equal(t, "/course/42", got[0].URL)
	assert.Equal(t, int64(42), got[0].CourseID)
	assert.Equal(t, "BIO1", got[1].Title)
}

func TestAssembleDynamicExpansionFailsOpen(t *testing.T) {
	menus := &stubMenuLister{menus: []models.Menu{{ID: "m1", Title: "Main", Mode: models.MenuModeInline}}}

	dynamic := models.MenuItem{ID: "dyn", MenuID: "m1", Title: "My courses", Type: models.ItemTypeDynamicCourses, Mode: models.MenuModeInline, SortOrder: 1}
	static := staticItem("a", "m1", "Home", 2)
	items := &stubItemLister{items: map[string][]models.MenuItem{"m1": {dynamic, static}}}
	courses := &stubCourseQuerier{err: errors.New("connection refused")}

	svc := newTestAssembler(menus, items, courses)
	resp, _, err := svc.Assemble(context.Background(), "main", models.ViewerContext{Now: time.Now()})
	require.NoError(t, err)

	// The failing dynamic item yields zero entries; the rest of the menu
	// renders and the degradation is reported as a warning.
	require.Len(t, resp.Menus, 1)
	require.Len(t, resp.Menus[0].Inline, 1)
	assert.Equal(t, "Home", resp.Menus[0].Inline[0].Title)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "My courses")
}

func TestAssembleTruncatesCourseSummaries(t *testing.T) {
	menus := &stubMenuLister{menus: []models.Menu{{ID: "m1", Mode: models.MenuModeInline}}}
	dynamic := models.MenuItem{ID: "dyn", MenuID: "m1", Title: "Courses", Type: models.ItemTypeDynamicCourses, Mode: models.MenuModeInline, TextCount: 3}
	items := &stubItemLister{items: map[string][]models.MenuItem{"m1": {dynamic}}}
	courses := &stubCourseQuerier{courses: []models.CourseSummary{
		{ID: 1, Fullname: "C1", Summary: "one two three four five"},
	}}

	svc := newTestAssembler(menus, items, courses)
	resp, _, err := svc.Assemble(context.Background(), "main", models.ViewerContext{Now: time.Now()})
	require.NoError(t, err)

	require.Len(t, resp.Menus[0].Inline, 1)
	assert.Equal(t, "one two three...", resp.Menus[0].Inline[0].Summary)
}

func TestAssemblePropagatesMenuListError(t *testing.T) {
	menus := &stubMenuLister{err: errors.New("db down")}
	svc := newTestAssembler(menus, &stubItemLister{}, &stubCourseQuerier{})

	_, _, err := svc.Assemble(context.Background(), "main", models.ViewerContext{Now: time.Now()})
	assert.Error(t, err)
}

func TestAssembleEmptyPlacement(t *testing.T) {
	svc := newTestAssembler(&stubMenuLister{}, &stubItemLister{}, &stubCourseQuerier{})

	resp, cached, err := svc.Assemble(context.Background(), "footer", models.ViewerContext{Now: time.Now()})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotNil(t, resp.Menus)
	assert.Empty(t, resp.Menus)
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "short text", truncateWords("short text", 5))
	assert.Equal(t, "a b...", truncateWords("a b c", 2))
	assert.Equal(t, "", truncateWords("", 3))
}

func TestViewerFingerprintStableUnderOrdering(t *testing.T) {
	a := models.ViewerContext{UserID: "u1", Roles: []int64{2, 1}, Cohorts: []int64{9, 3}, Language: "en"}
	b := models.ViewerContext{UserID: "u1", Roles: []int64{1, 2}, Cohorts: []int64{3, 9}, Language: "en"}
	assert.Equal(t, viewerFingerprint(a), viewerFingerprint(b))

	c := b
	c.Language = "de"
	assert.NotEqual(t, viewerFingerprint(b), viewerFingerprint(c))
}
