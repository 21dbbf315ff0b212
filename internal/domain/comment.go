package domain

import "time"

// Comment is an immutable note on a suggestion.
type Comment struct {
	ID             int64
	SuggestionID   int64
	UserID         int64
	Text           string
	CreatedAt      time.Time
	AuthorUsername string
}
