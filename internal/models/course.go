package models

// CourseSummary is the shape returned by the course-query collaborator for
// dynamic menu item expansion.
type CourseSummary struct {
	ID        int64  `db:"id" json:"id"`
	Fullname  string `db:"fullname" json:"fullname"`
	Shortname string `db:"shortname" json:"shortname"`
	URL       string `db:"url" json:"url"`
	Summary   string `db:"summary" json:"summary"`
}

// CourseFilter is the AND-combined predicate bag for the course query. Empty
// slices and maps impose no restriction; an entirely empty filter matches
// every course visible to the user.
type CourseFilter struct {
	UserID             string
	Categories         []int64
	EnrolmentRoles     []int64
	CompletionStatuses []string
	DateRanges         []string
	CustomFields       map[string]string
	Limit              int
}
