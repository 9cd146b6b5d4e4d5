// Package storefront implements the product page flow of the storefront
// client: loading a product with its reviews, logging in, and composing and
// submitting a review. State changes go through Reduce.
package storefront

import (
	"errors"

	"github.com/utafrali/storefront/internal/domain"
)

// Screen is what the product page currently shows.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenError
	ScreenViewing
	ScreenViewingAuthenticated
	ScreenComposing
)

func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenError:
		return "error"
	case ScreenViewing:
		return "viewing"
	case ScreenViewingAuthenticated:
		return "viewing_authenticated"
	case ScreenComposing:
		return "composing"
	default:
		return "unknown"
	}
}

const reviewsUnavailableNotice = "reviews are unavailable right now"

// ErrRatingRequired is reported when a review is submitted without stars.
var ErrRatingRequired = errors.New("select a rating before submitting")

// Draft is the review being composed. Rating 0 means no stars selected.
type Draft struct {
	Rating  int
	Content string
}

// State is the full product page state.
type State struct {
	ProductID int64
	Product   *domain.Product
	Reviews   []domain.Review
	Loading   bool
	LoadErr   error

	// ReviewsNotice is set when the product loaded but its reviews did not.
	ReviewsNotice string

	// Username is empty while logged out.
	Username string

	FormVisible bool
	Draft       Draft

	// Notice is the most recent login or submission message.
	Notice string
}

// Screen derives the current screen from s.
func (s State) Screen() Screen {
	switch {
	case s.Loading:
		return ScreenLoading
	case s.LoadErr != nil:
		return ScreenError
	case s.Product == nil:
		return ScreenLoading
	case !s.Authenticated():
		return ScreenViewing
	case s.FormVisible:
		return ScreenComposing
	default:
		return ScreenViewingAuthenticated
	}
}

// Authenticated reports whether a user is logged in.
func (s State) Authenticated() bool {
	return s.Username != ""
}

// Remaining is the live character counter shown under the review text.
func (s State) Remaining() int {
	return domain.RemainingCharacters(s.Draft.Content)
}

// Action is an input to Reduce.
type Action interface {
	isAction()
}

// ProductRequested starts loading a product page.
type ProductRequested struct{ ID int64 }

// PageLoaded delivers the joined product and reviews fetch. ReviewsErr is
// set when only the reviews fetch failed.
type PageLoaded struct {
	ID         int64
	Product    *domain.Product
	Reviews    []domain.Review
	ReviewsErr error
}

// LoadFailed reports that the product itself could not be fetched.
type LoadFailed struct {
	ID  int64
	Err error
}

type LoginSucceeded struct{ Username string }

type LoginFailed struct{ Err error }

type LoggedOut struct{}

type FormOpened struct{}

type FormCancelled struct{}

type RatingChanged struct{ N int }

type ContentChanged struct{ Text string }

// ReviewSubmitted carries the review as stored by the server.
type ReviewSubmitted struct{ Review domain.Review }

type SubmitFailed struct{ Err error }

func (ProductRequested) isAction() {}
func (PageLoaded) isAction()       {}
func (LoadFailed) isAction()       {}
func (LoginSucceeded) isAction()   {}
func (LoginFailed) isAction()      {}
func (LoggedOut) isAction()        {}
func (FormOpened) isAction()       {}
func (FormCancelled) isAction()    {}
func (RatingChanged) isAction()    {}
func (ContentChanged) isAction()   {}
func (ReviewSubmitted) isAction()  {}
func (SubmitFailed) isAction()     {}

// Reduce returns the state that follows s after a. It never mutates s.
// Load results for any id other than the one currently loading are ignored.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ProductRequested:
		return State{ProductID: a.ID, Loading: true, Username: s.Username}

	case PageLoaded:
		if !s.Loading || a.ID != s.ProductID {
			return s
		}
		s.Loading = false
		s.LoadErr = nil
		s.Product = a.Product
		s.Reviews = append([]domain.Review{}, a.Reviews...)
		s.ReviewsNotice = ""
		if a.ReviewsErr != nil {
			s.ReviewsNotice = reviewsUnavailableNotice
		}
		return s

	case LoadFailed:
		if !s.Loading || a.ID != s.ProductID {
			return s
		}
		s.Loading = false
		s.LoadErr = a.Err
		return s

	case LoginSucceeded:
		s.Username = a.Username
		s.Notice = ""
		return s

	case LoginFailed:
		s.Notice = "login failed: " + a.Err.Error()
		return s

	case LoggedOut:
		s.Username = ""
		s.FormVisible = false
		s.Draft = Draft{}
		s.Notice = ""
		return s

	case FormOpened:
		if s.Screen() == ScreenViewingAuthenticated {
			s.FormVisible = true
			s.Notice = ""
		}
		return s

	case FormCancelled:
		s.FormVisible = false
		s.Draft = Draft{}
		s.Notice = ""
		return s

	case RatingChanged:
		if s.Screen() != ScreenComposing {
			return s
		}
		s.Draft.Rating = min(max(a.N, 0), domain.MaxRating)
		return s

	case ContentChanged:
		if s.Screen() != ScreenComposing {
			return s
		}
		s.Draft.Content = domain.TruncateContent(a.Text)
		return s

	case ReviewSubmitted:
		s.FormVisible = false
		s.Draft = Draft{}
		s.Notice = "review submitted"
		if a.Review.ProductID == s.ProductID {
			s.Reviews = append([]domain.Review{a.Review}, s.Reviews...)
		}
		return s

	case SubmitFailed:
		if s.Screen() != ScreenComposing {
			return s
		}
		s.Notice = "could not submit review: " + a.Err.Error()
		return s
	}

	return s
}
