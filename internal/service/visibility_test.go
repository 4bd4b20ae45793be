package service

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/navmenu-api/internal/models"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsp(s string) *time.Time {
	t := ts(s)
	return &t
}

func TestVisibleEmptyRulesMatchEveryone(t *testing.T) {
	viewer := models.ViewerContext{Language: "en", Now: ts("2026-03-01T10:00:00Z")}
	assert.True(t, Visible(models.VisibilityRules{}, viewer))

	anonymous := models.ViewerContext{Now: ts("2026-03-01T10:00:00Z")}
	assert.True(t, Visible(models.VisibilityRules{}, anonymous))
}

func TestVisibleDateWindow(t *testing.T) {
	start := "2026-03-01T00:00:00Z"
	end := "2026-03-31T23:59:59Z"
	rules := models.VisibilityRules{StartDate: tsp(start), EndDate: tsp(end)}

	cases := []struct {
		name    string
		now     time.Time
		visible bool
	}{
		{"before start", ts(start).Add(-time.Second), false},
		{"exactly at start", ts(start), true},
		{"inside window", ts("2026-03-15T12:00:00Z"), true},
		{"exactly at end", ts(end), true},
		{"after end", ts(end).Add(time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			viewer := models.ViewerContext{Now: tc.now}
			assert.Equal(t, tc.visible, Visible(rules, viewer))
		})
	}
}

func TestVisibleOpenEndedWindows(t *testing.T) {
	now := ts("2026-03-15T12:00:00Z")
	viewer := models.ViewerContext{Now: now}

	onlyStart := models.VisibilityRules{StartDate: tsp("2026-03-01T00:00:00Z")}
	assert.True(t, Visible(onlyStart, viewer))

	onlyEnd := models.VisibilityRules{EndDate: tsp("2026-03-01T00:00:00Z")}
	assert.False(t, Visible(onlyEnd, viewer))
}

func TestVisibleInvertedWindowNeverMatches(t *testing.T) {
	rules := models.VisibilityRules{
		StartDate: tsp("2026-04-01T00:00:00Z"),
		EndDate:   tsp("2026-03-01T00:00:00Z"),
	}
	for _, now := range []time.Time{
		ts("2026-02-01T00:00:00Z"),
		ts("2026-03-15T00:00:00Z"),
		ts("2026-05-01T00:00:00Z"),
	} {
		assert.False(t, Visible(rules, models.ViewerContext{Now: now}))
	}
}

func TestVisibleLanguageFilter(t *testing.T) {
	rules := models.VisibilityRules{Languages: pq.StringArray{"en", "de"}}

	assert.True(t, Visible(rules, models.ViewerContext{Language: "en"}))
	assert.True(t, Visible(rules, models.ViewerContext{Language: "de"}))
	assert.False(t, Visible(rules, models.ViewerContext{Language: "fr"}))
	assert.False(t, Visible(rules, models.ViewerContext{}))
}

func TestVisibleRoleFilterAny(t *testing.T) {
	rules := models.VisibilityRules{Roles: pq.Int64Array{1, 2}, Operator: models.OperatorAny}

	assert.True(t, Visible(rules, models.ViewerContext{Roles: []int64{2, 9}}))
	assert.False(t, Visible(rules, models.ViewerContext{Roles: []int64{7}}))
	assert.False(t, Visible(rules, models.ViewerContext{}))
}

func TestVisibleRoleContextSystem(t *testing.T) {
	rules := models.VisibilityRules{
		Roles:       pq.Int64Array{1},
		RoleContext: models.RoleContextSystem,
	}

	// Role 1 held at course scope only does not satisfy a SYSTEM filter.
	courseOnly := models.ViewerContext{Roles: []int64{1}}
	assert.False(t, Visible(rules, courseOnly))

	systemAdmin := models.ViewerContext{Roles: []int64{1}, SystemRoles: []int64{1}}
	assert.True(t, Visible(rules, systemAdmin))
}

func TestVisibleCohortFilter(t *testing.T) {
	rules := models.VisibilityRules{Cohorts: pq.Int64Array{5}}

	assert.True(t, Visible(rules, models.ViewerContext{Cohorts: []int64{5}}))
	assert.False(t, Visible(rules, models.ViewerContext{Cohorts: []int64{6}}))
}

func TestVisibleOperatorAny(t *testing.T) {
	rules := models.VisibilityRules{
		Roles:    pq.Int64Array{1},
		Cohorts:  pq.Int64Array{5},
		Operator: models.OperatorAny,
	}

	assert.True(t, Visible(rules, models.ViewerContext{Roles: []int64{1}}))
	assert.True(t, Visible(rules, models.ViewerContext{Cohorts: []int64{5}}))
	assert.True(t, Visible(rules, models.ViewerContext{Roles: []int64{1}, Cohorts: []int64{5}}))
	assert.False(t, Visible(rules, models.ViewerContext{Roles: []int64{9}, Cohorts: []int64{6}}))
}

func TestVisibleOperatorAll(t *testing.T) {
	rules := models.VisibilityRules{
		Roles:    pq.Int64Array{1},
		Cohorts:  pq.Int64Array{5},
		Operator: models.OperatorAll,
	}

	assert.False(t, Visible(rules, models.ViewerContext{Roles: []int64{1}}))
	assert.False(t, Visible(rules, models.ViewerContext{Cohorts: []int64{5}}))
	assert.True(t, Visible(rules, models.ViewerContext{Roles: []int64{1}, Cohorts: []int64{5}}))
}

func TestVisibleOperatorAllOnlySpecifiedDimensionsParticipate(t *testing.T) {
	// ALL with roles only: the empty cohort set imposes nothing.
	rules := models.VisibilityRules{Roles: pq.Int64Array{1, 2}, Operator: models.OperatorAll}

	assert.True(t, Visible(rules, models.ViewerContext{Roles: []int64{2}}))
	assert.False(t, Visible(rules, models.ViewerContext{Cohorts: []int64{5}}))
}

func TestVisibleCombinesDimensionsWithAnd(t *testing.T) {
	rules := models.VisibilityRules{
		Roles:     pq.Int64Array{1},
		Languages: pq.StringArray{"en"},
		StartDate: tsp("2026-03-01T00:00:00Z"),
		EndDate:   tsp("2026-03-31T00:00:00Z"),
	}
	inside := ts("2026-03-15T00:00:00Z")

	ok := models.ViewerContext{Roles: []int64{1}, Language: "en", Now: inside}
	assert.True(t, Visible(rules, ok))

	wrongLang := ok
	wrongLang.Language = "fr"
	assert.False(t, Visible(rules, wrongLang))

	outsideWindow := ok
	outsideWindow.Now = ts("2026-04-15T00:00:00Z")
	assert.False(t, Visible(rules, outsideWindow))

	noRole := ok
	noRole.Roles = nil
	assert.False(t, Visible(rules, noRole))
}
