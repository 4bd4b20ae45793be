package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/navmenu-api/internal/models"
)

// ViewerRepository is the viewer-context provider: it loads the facts about
// a user that the visibility evaluator consumes. It supplies both the full
// role set and the system-scope subset so the evaluator never re-derives
// scope itself.
type ViewerRepository struct {
	db *sqlx.DB
}

// NewViewerRepository creates the repository.
func NewViewerRepository(db *sqlx.DB) *ViewerRepository {
	return &ViewerRepository{db: db}
}

type roleAssignmentRow struct {
	RoleID       int64  `db:"role_id"`
	ContextLevel string `db:"context_level"`
}

// Load builds the viewer context for a user at the current instant. A user
// without role assignments or cohort memberships gets empty sets, which the
// evaluator treats as "matches nothing".
func (r *ViewerRepository) Load(ctx context.Context, userID string) (*models.ViewerContext, error) {
	viewer := &models.ViewerContext{UserID: userID, Now: time.Now().UTC()}

	var assignments []roleAssignmentRow
	if err := r.db.SelectContext(ctx, &assignments,
		"SELECT role_id, context_level FROM role_assignments WHERE user_id = $1", userID); err != nil {
		return nil, fmt.Errorf("load role assignments: %w", err)
	}
	seen := make(map[int64]struct{}, len(assignments))
	for _, a := range assignments {
		if _, dup := seen[a.RoleID]; !dup {
			seen[a.RoleID] = struct{}{}
			viewer.Roles = append(viewer.Roles, a.RoleID)
		}
		if a.ContextLevel == "SYSTEM" {
			viewer.SystemRoles = append(viewer.SystemRoles, a.RoleID)
		}
	}

	if err := r.db.SelectContext(ctx, &viewer.Cohorts,
		"SELECT cohort_id FROM cohort_members WHERE user_id = $1 ORDER BY cohort_id", userID); err != nil {
		return nil, fmt.Errorf("load cohort memberships: %w", err)
	}

	var language string
	err := r.db.GetContext(ctx, &language, "SELECT language FROM users WHERE id = $1", userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load user language: %w", err)
	}
	viewer.Language = language

	return viewer, nil
}
