package models

// Epic is an externally supplied top-level grouping used for dashboard
// rollups. Tasks do not group by epic; they group by their story key.
type Epic struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Story is a first-class story record supplied by an external loader,
// distinct from the free-text story key on tasks. Only its status matters
// for dashboard rollups; a missing status counts as active.
type Story struct {
	ID     string     `json:"id"`
	Title  string     `json:"title,omitempty"`
	Status TaskStatus `json:"status,omitempty"`
}

// VerificationRecord is a scored assessment of a story's completion.
// Timestamp is kept as the raw ISO8601 string from the file; consumers must
// sort safely even when it does not parse.
type VerificationRecord struct {
	StoryID   string  `json:"storyId"`
	Score     float64 `json:"score"`
	Timestamp string  `json:"timestamp"`
}
