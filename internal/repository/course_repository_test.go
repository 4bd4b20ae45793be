package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/navmenu-api/internal/models"
)

func courseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "fullname", "shortname", "url", "summary"}).
		AddRow(int64(42), "Algebra II", "ALG2", "/course/42", "Linear equations and beyond").
		AddRow(int64(43), "Biology", "BIO1", "/course/43", "")
}

func TestCourseRepositoryQueryRequiresUser(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	_, err := repo.Query(context.Background(), models.CourseFilter{})
	assert.Error(t, err)
}

func TestCourseRepositoryQueryEnrolledOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`WHERE c.visible AND e.user_id = \$1\s+ORDER BY c.fullname, c.id\s+LIMIT 100`).
		WithArgs("u1").
		WillReturnRows(courseRows())

	courses, err := repo.Query(context.Background(), models.CourseFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, int64(42), courses[0].ID)
	assert.Equal(t, "ALG2", courses[0].Shortname)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryQueryAppliesFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`c.category_id = ANY\(\$2\) AND e.role_id = ANY\(\$3\) AND e.completion_status = ANY\(\$4\)`).
		WithArgs("u1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(courseRows())

	filter := models.CourseFilter{
		UserID:             "u1",
		Categories:         []int64{3},
		EnrolmentRoles:     []int64{5},
		CompletionStatuses: []string{"COMPLETED"},
	}
	_, err := repo.Query(context.Background(), filter)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryQueryDateRanges(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`\(\(c.end_date IS NOT NULL AND c.end_date < NOW\(\)\) OR \(c.start_date > NOW\(\)\)\)`).
		WithArgs("u1").
		WillReturnRows(courseRows())

	filter := models.CourseFilter{UserID: "u1", DateRanges: []string{"PAST", "FUTURE"}}
	_, err := repo.Query(context.Background(), filter)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryQueryCustomFieldsDeterministic(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	// Predicates are ordered by field name, so args line up regardless of map
	// iteration order.
	mock.ExpectQuery(`d.field = \$2 AND d.value = \$3.+d.field = \$4 AND d.value = \$5`).
		WithArgs("u1", "campus", "north", "semester", "fall").
		WillReturnRows(courseRows())

	filter := models.CourseFilter{
		UserID:       "u1",
		CustomFields: map[string]string{"semester": "fall", "campus": "north"},
	}
	_, err := repo.Query(context.Background(), filter)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryQueryLimitClamped(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`LIMIT 100`).
		WithArgs("u1").
		WillReturnRows(courseRows())

	_, err := repo.Query(context.Background(), models.CourseFilter{UserID: "u1", Limit: 10000})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
