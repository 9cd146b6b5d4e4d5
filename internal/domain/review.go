package domain

import (
	"time"
	"unicode/utf8"
)

// Review constraints shared by the API and the storefront client.
const (
	MinRating        = 1
	MaxRating        = 5
	MaxContentLength = 100
)

// Reviewer is the denormalized author shown alongside a review.
type Reviewer struct {
	Username string `json:"username"`
}

// Review is a product review. Reviews are immutable once created.
type Review struct {
	ID        string    `json:"review_id"`
	ProductID int64     `json:"product_id"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	User      Reviewer  `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewSummary contains aggregate review statistics for a product.
type ReviewSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalCount    int     `json:"total_count"`
}

// IsValidRating reports whether n is an allowed star rating.
func IsValidRating(n int) bool {
	return n >= MinRating && n <= MaxRating
}

// ContentLength counts characters, not bytes.
func ContentLength(s string) int {
	return utf8.RuneCountInString(s)
}

// TruncateContent cuts s down to MaxContentLength characters.
func TruncateContent(s string) string {
	if ContentLength(s) <= MaxContentLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxContentLength])
}

// RemainingCharacters is the live counter shown while composing. It never
// goes negative.
func RemainingCharacters(s string) int {
	return max(MaxContentLength-ContentLength(s), 0)
}
