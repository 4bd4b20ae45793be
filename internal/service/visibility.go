package service

import (
	"time"

	"github.com/noah-isme/navmenu-api/internal/models"
)

// Visible decides whether an entity carrying visibility rules is shown to the
// viewer. The date window, language and role/cohort dimensions are evaluated
// independently and AND-combined; an entity with every filter empty is
// visible to everyone. Ids referencing deleted roles or cohorts simply never
// match.
func Visible(rules models.VisibilityRules, viewer models.ViewerContext) bool {
	if !dateWindowOpen(rules.StartDate, rules.EndDate, viewer.Now) {
		return false
	}
	if !languageAllowed(rules.Languages, viewer.Language) {
		return false
	}
	return roleCohortAllowed(rules, viewer)
}

// dateWindowOpen checks the inclusive visibility window. A missing bound is
// unbounded on that side. An inverted window (start after end) can never be
// satisfied, so the entity stays invisible rather than erroring.
func dateWindowOpen(start, end *time.Time, now time.Time) bool {
	if start != nil && end != nil && start.After(*end) {
		return false
	}
	if start != nil && now.Before(*start) {
		return false
	}
	if end != nil && now.After(*end) {
		return false
	}
	return true
}

func languageAllowed(languages []string, current string) bool {
	if len(languages) == 0 {
		return true
	}
	for _, lang := range languages {
		if lang == current {
			return true
		}
	}
	return false
}

// roleCohortAllowed combines the role and cohort filters under the entity's
// operator. Only dimensions with a non-empty set participate: under ALL every
// participating dimension must match, under ANY one suffices. With both sets
// empty the dimension passes unconditionally.
func roleCohortAllowed(rules models.VisibilityRules, viewer models.ViewerContext) bool {
	roleSpecified := len(rules.Roles) > 0
	cohortSpecified := len(rules.Cohorts) > 0
	if !roleSpecified && !cohortSpecified {
		return true
	}

	roleMatch := false
	for _, id := range rules.Roles {
		if viewer.HasRole(id, rules.RoleContext) {
			roleMatch = true
			break
		}
	}
	cohortMatch := false
	for _, id := range rules.Cohorts {
		if viewer.HasCohort(id) {
			cohortMatch = true
			break
		}
	}

	if rules.Operator == models.OperatorAll {
		if roleSpecified && !roleMatch {
			return false
		}
		if cohortSpecified && !cohortMatch {
			return false
		}
		return true
	}

	return (roleSpecified && roleMatch) || (cohortSpecified && cohortMatch)
}
