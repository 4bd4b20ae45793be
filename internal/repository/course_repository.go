package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/navmenu-api/internal/models"
)

// CourseRepository is the course-query collaborator backing dynamic menu
// items: it resolves a predicate bag into the viewer's matching courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Query returns courses matching every predicate in the filter. Predicates
// are AND-combined; an empty filter matches all courses the user is enrolled
// in. Results are ordered by fullname for stable expansion.
func (r *CourseRepository) Query(ctx context.Context, filter models.CourseFilter) ([]models.CourseSummary, error) {
	if filter.UserID == "" {
		return nil, fmt.Errorf("query courses: user id required")
	}

	where := []string{"c.visible", "e.user_id = $1"}
	args := []interface{}{filter.UserID}

	if len(filter.Categories) > 0 {
		where = append(where, fmt.Sprintf("c.category_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Categories))
	}
	if len(filter.EnrolmentRoles) > 0 {
		where = append(where, fmt.Sprintf("e.role_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.EnrolmentRoles))
	}
	if len(filter.CompletionStatuses) > 0 {
		where = append(where, fmt.Sprintf("e.completion_status = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.CompletionStatuses))
	}
	if clause := dateRangeClause(filter.DateRanges); clause != "" {
		where = append(where, clause)
	}
	for _, field := range sortedKeys(filter.CustomFields) {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM course_field_data d WHERE d.course_id = c.id AND d.field = $%d AND d.value = $%d)",
			len(args)+1, len(args)+2))
		args = append(args, field, filter.CustomFields[field])
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT c.id, c.fullname, c.shortname, c.url, c.summary
FROM courses c
JOIN enrollments e ON e.course_id = c.id
WHERE %s
ORDER BY c.fullname, c.id
LIMIT %d`, strings.Join(where, " AND "), limit)

	var courses []models.CourseSummary
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	return courses, nil
}

// dateRangeClause builds the OR group for the requested course date ranges,
// each evaluated against the database clock.
func dateRangeClause(ranges []string) string {
	var parts []string
	for _, value := range ranges {
		switch models.DateRange(value) {
		case models.DateRangePast:
			parts = append(parts, "(c.end_date IS NOT NULL AND c.end_date < NOW())")
		case models.DateRangePresent:
			parts = append(parts, "(c.start_date <= NOW() AND (c.end_date IS NULL OR c.end_date >= NOW()))")
		case models.DateRangeFuture:
			parts = append(parts, "(c.start_date > NOW())")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// sortedKeys keeps custom-field predicate order stable across calls so the
// generated SQL is deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
