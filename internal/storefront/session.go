package storefront

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// ErrNotComposing is returned by Submit when the review form is not open.
var ErrNotComposing = errors.New("review form is not open")

// Session owns a product page State and drives the API on its behalf.
// It is safe for concurrent use.
type Session struct {
	api     API
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	creds      *Credentials
	cancelLoad context.CancelFunc
	loadSeq    uint64
}

// NewSession creates a session whose API calls each run under timeout.
func NewSession(api API, timeout time.Duration, logger *slog.Logger) *Session {
	return &Session{
		api:     api,
		timeout: timeout,
		logger:  logger,
	}
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Reviews = append([]domain.Review(nil), s.state.Reviews...)
	return st
}

func (s *Session) dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.mu.Unlock()
}

// Open starts loading product id, cancelling any load still in flight.
// The returned channel is closed once the result has been applied or
// discarded. Only a load superseded by a later Open is discarded; a load
// cut short by ctx ends on the error screen.
func (s *Session) Open(ctx context.Context, id int64) <-chan struct{} {
	loadCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.cancelLoad = cancel
	s.loadSeq++
	seq := s.loadSeq
	s.state = Reduce(s.state, ProductRequested{ID: id})
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		res, err := LoadPage(loadCtx, s.api, id, s.timeout)

		s.mu.Lock()
		defer s.mu.Unlock()

		// A newer Open owns the state now, even when it is for the same id.
		if seq != s.loadSeq {
			return
		}

		if err != nil {
			s.logger.Warn("product page load failed",
				slog.Int64("product_id", id),
				slog.String("error", err.Error()),
			)
			s.state = Reduce(s.state, LoadFailed{ID: id, Err: err})
			return
		}
		if res.ReviewsErr != nil {
			s.logger.Warn("reviews load failed",
				slog.Int64("product_id", id),
				slog.String("error", res.ReviewsErr.Error()),
			)
		}
		s.state = Reduce(s.state, PageLoaded{
			ID:         id,
			Product:    res.Product,
			Reviews:    res.Reviews,
			ReviewsErr: res.ReviewsErr,
		})
	}()

	return done
}

// Retry reloads the current product after a failed load. It returns nil
// when there is nothing to retry.
func (s *Session) Retry(ctx context.Context) <-chan struct{} {
	st := s.State()
	if st.Screen() != ScreenError {
		return nil
	}
	return s.Open(ctx, st.ProductID)
}

// Login verifies credentials against the API and keeps them for review
// submission.
func (s *Session) Login(ctx context.Context, username, password string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	creds := Credentials{Username: username, Password: password}
	user, err := s.api.Login(ctx, creds)
	if err != nil {
		s.dispatch(LoginFailed{Err: err})
		return err
	}

	s.mu.Lock()
	s.creds = &creds
	s.state = Reduce(s.state, LoginSucceeded{Username: user.Username})
	s.mu.Unlock()
	return nil
}

// Logout forgets the credentials and closes the review form.
func (s *Session) Logout() {
	s.mu.Lock()
	s.creds = nil
	s.state = Reduce(s.state, LoggedOut{})
	s.mu.Unlock()
}

func (s *Session) OpenForm() { s.dispatch(FormOpened{}) }

func (s *Session) CancelForm() { s.dispatch(FormCancelled{}) }

func (s *Session) SetRating(n int) { s.dispatch(RatingChanged{N: n}) }

func (s *Session) EditContent(text string) { s.dispatch(ContentChanged{Text: text}) }

// Submit posts the draft with the session's credentials. A draft without a
// rating is rejected locally. On failure the draft is kept.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	st := s.state
	creds := s.creds
	s.mu.Unlock()

	if st.Screen() != ScreenComposing || creds == nil {
		return ErrNotComposing
	}
	if st.Draft.Rating == 0 {
		s.dispatch(SubmitFailed{Err: ErrRatingRequired})
		return ErrRatingRequired
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	review, err := s.api.CreateReview(ctx, *creds, st.ProductID, st.Draft)
	if err != nil {
		s.dispatch(SubmitFailed{Err: err})
		return err
	}

	s.dispatch(ReviewSubmitted{Review: *review})
	return nil
}
