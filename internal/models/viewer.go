package models

import "time"

// ViewerContext holds the facts about the current request's user needed to
// evaluate visibility. SystemRoles is the subset of Roles assigned at system
// scope; entities with a SYSTEM role context match against it exclusively, so
// scope never has to be re-derived inside the evaluator.
type ViewerContext struct {
	UserID      string
	Roles       []int64
	SystemRoles []int64
	Cohorts     []int64
	Language    string
	Now         time.Time
}

// HasRole reports whether the viewer holds the role in the given context.
func (v ViewerContext) HasRole(roleID int64, ctx RoleContext) bool {
	set := v.Roles
	if ctx == RoleContextSystem {
		set = v.SystemRoles
	}
	for _, id := range set {
		if id == roleID {
			return true
		}
	}
	return false
}

// HasCohort reports whether the viewer belongs to the cohort.
func (v ViewerContext) HasCohort(cohortID int64) bool {
	for _, id := range v.Cohorts {
		if id == cohortID {
			return true
		}
	}
	return false
}
