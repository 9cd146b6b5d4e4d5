package storefront

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/utafrali/storefront/internal/domain"
)

// Render writes s as plain text.
func Render(w io.Writer, s State) error {
	return RenderAt(w, s, time.Now())
}

// RenderAt is Render with a fixed clock for review ages.
func RenderAt(w io.Writer, s State, now time.Time) error {
	var b strings.Builder

	switch s.Screen() {
	case ScreenLoading:
		b.WriteString("Loading...\n")
		return write(w, &b)
	case ScreenError:
		fmt.Fprintf(&b, "Could not load product %d: %v\n", s.ProductID, s.LoadErr)
		b.WriteString("Type 'retry' to try again.\n")
		return write(w, &b)
	}

	p := s.Product
	fmt.Fprintf(&b, "== %s ==\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n", p.Description)
	}
	fmt.Fprintf(&b, "Price: %s\n", formatPrice(p.Price))
	if p.ImageURL != "" {
		fmt.Fprintf(&b, "Image: %s\n", p.ImageURL)
	}
	b.WriteString("\n")

	switch s.Screen() {
	case ScreenViewing:
		b.WriteString("You must be logged in to leave a review.\n")
	case ScreenViewingAuthenticated:
		fmt.Fprintf(&b, "Logged in as %s. Type 'write' to write a review.\n", s.Username)
	case ScreenComposing:
		b.WriteString("-- Write a Review --\n")
		fmt.Fprintf(&b, "Rating: %s\n", stars(s.Draft.Rating))
		fmt.Fprintf(&b, "Your Review: %s\n", s.Draft.Content)
		if s.Remaining() < domain.MaxContentLength {
			fmt.Fprintf(&b, "%d characters remaining\n", s.Remaining())
		}
	}
	if s.Notice != "" {
		fmt.Fprintf(&b, "! %s\n", s.Notice)
	}

	b.WriteString("\nReviews\n")
	if s.ReviewsNotice != "" {
		fmt.Fprintf(&b, "(%s)\n", s.ReviewsNotice)
	}
	if len(s.Reviews) == 0 && s.ReviewsNotice == "" {
		b.WriteString("No reviews yet. Be the first to write a review!\n")
	}
	for _, r := range s.Reviews {
		fmt.Fprintf(&b, "Rating: %d / %d\n", r.Rating, domain.MaxRating)
		if r.Content != "" {
			fmt.Fprintf(&b, "%s\n", r.Content)
		}
		fmt.Fprintf(&b, "Reviewed by: %s", r.User.Username)
		if !r.CreatedAt.IsZero() {
			fmt.Fprintf(&b, " (%s)", humanize.RelTime(r.CreatedAt, now, "ago", "from now"))
		}
		b.WriteString("\n\n")
	}

	return write(w, &b)
}

func write(w io.Writer, b *strings.Builder) error {
	_, err := io.WriteString(w, b.String())
	return err
}

// formatPrice renders integer cents as dollars.
func formatPrice(cents int64) string {
	return fmt.Sprintf("$%s.%02d", humanize.Comma(cents/100), cents%100)
}

func stars(n int) string {
	return strings.Repeat("★", n) + strings.Repeat("☆", domain.MaxRating-n)
}
