package domain

// Category is a fixed browse bucket for posts. Categories are seeded by
// migration and have no mutation operations in the API.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// PostCount is populated by read queries that aggregate posts per
	// category; it is not a stored column.
	PostCount int `json:"post_count"`
}
