package storefront

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not finish")
	}
}

func newTestSession(api API) *Session {
	return NewSession(api, time.Second, discardLogger())
}

func openedSession(t *testing.T, api *fakeAPI) *Session {
	t.Helper()
	s := newTestSession(api)
	wait(t, s.Open(context.Background(), 1))
	require.Equal(t, ScreenViewing, s.State().Screen())
	return s
}

func TestSession_OpenLoadsPage(t *testing.T) {
	s := openedSession(t, pageAPI())

	st := s.State()
	assert.Equal(t, "Desk Lamp", st.Product.Name)
	assert.Len(t, st.Reviews, 1)
}

func TestSession_NewerOpenWins(t *testing.T) {
	release := make(chan struct{})
	api := pageAPI()
	api.getProduct = func(ctx context.Context, id int64) (*domain.Product, error) {
		if id == 1 {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return testProduct(id), nil
	}

	s := newTestSession(api)
	first := s.Open(context.Background(), 1)
	second := s.Open(context.Background(), 2)

	wait(t, second)
	close(release)
	wait(t, first)

	st := s.State()
	assert.Equal(t, ScreenViewing, st.Screen())
	assert.Equal(t, int64(2), st.Product.ID)
}

func TestSession_ReopenSameIDDropsCancelledLoad(t *testing.T) {
	api := pageAPI()
	api.getProduct = func(ctx context.Context, id int64) (*domain.Product, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(30 * time.Millisecond):
			return testProduct(id), nil
		}
	}

	s := newTestSession(api)
	first := s.Open(context.Background(), 1)
	second := s.Open(context.Background(), 1)
	wait(t, first)
	wait(t, second)

	assert.Equal(t, ScreenViewing, s.State().Screen())
}

func ctxAwareAPI() *fakeAPI {
	api := pageAPI()
	api.getProduct = func(ctx context.Context, id int64) (*domain.Product, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return testProduct(id), nil
	}
	return api
}

func TestSession_OpenWithCancelledContextShowsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSession(ctxAwareAPI())
	wait(t, s.Open(ctx, 1))

	st := s.State()
	assert.Equal(t, ScreenError, st.Screen())
	assert.ErrorIs(t, st.LoadErr, context.Canceled)

	done := s.Retry(context.Background())
	require.NotNil(t, done)
	wait(t, done)
	assert.Equal(t, ScreenViewing, s.State().Screen())
}

func TestSession_CallerCancelMidLoadShowsError(t *testing.T) {
	started := make(chan struct{})
	api := pageAPI()
	api.getProduct = func(ctx context.Context, _ int64) (*domain.Product, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := newTestSession(api)
	done := s.Open(ctx, 1)
	<-started
	cancel()
	wait(t, done)

	assert.Equal(t, ScreenError, s.State().Screen())
}

func TestSession_RetryAfterFailure(t *testing.T) {
	fail := true
	api := pageAPI()
	api.getProduct = func(_ context.Context, id int64) (*domain.Product, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return testProduct(id), nil
	}

	s := newTestSession(api)
	wait(t, s.Open(context.Background(), 1))
	require.Equal(t, ScreenError, s.State().Screen())

	fail = false
	done := s.Retry(context.Background())
	require.NotNil(t, done)
	wait(t, done)

	assert.Equal(t, ScreenViewing, s.State().Screen())
}

func TestSession_RetryWhenNotFailedIsNoop(t *testing.T) {
	s := openedSession(t, pageAPI())

	assert.Nil(t, s.Retry(context.Background()))
}

func TestSession_LoginFailure(t *testing.T) {
	api := pageAPI()
	api.login = func(context.Context, Credentials) (*domain.User, error) {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	s := openedSession(t, api)

	err := s.Login(context.Background(), "alice", "nope")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.False(t, s.State().Authenticated())
	assert.NotEmpty(t, s.State().Notice)
}

func TestSession_ComposeAndSubmit(t *testing.T) {
	api := pageAPI()
	var gotCreds Credentials
	api.createReview = func(_ context.Context, creds Credentials, productID int64, draft Draft) (*domain.Review, error) {
		gotCreds = creds
		return &domain.Review{ID: "r-new", ProductID: productID, Rating: draft.Rating, Content: draft.Content, User: domain.Reviewer{Username: creds.Username}}, nil
	}
	s := openedSession(t, api)

	require.NoError(t, s.Login(context.Background(), "alice", "secret123"))
	s.OpenForm()
	s.SetRating(4)
	s.EditContent("Bright enough for reading.")
	require.Equal(t, ScreenComposing, s.State().Screen())

	require.NoError(t, s.Submit(context.Background()))

	st := s.State()
	assert.Equal(t, ScreenViewingAuthenticated, st.Screen())
	assert.Equal(t, "r-new", st.Reviews[0].ID)
	assert.Equal(t, Credentials{Username: "alice", Password: "secret123"}, gotCreds)
}

func TestSession_SubmitWithoutRatingRejectedLocally(t *testing.T) {
	api := pageAPI()
	s := openedSession(t, api)
	require.NoError(t, s.Login(context.Background(), "alice", "pw"))
	s.OpenForm()
	s.EditContent("no stars")

	err := s.Submit(context.Background())

	assert.ErrorIs(t, err, ErrRatingRequired)
	assert.Empty(t, api.created)
	st := s.State()
	assert.Equal(t, ScreenComposing, st.Screen())
	assert.Equal(t, "no stars", st.Draft.Content)
	assert.NotEmpty(t, st.Notice)
}

func TestSession_SubmitFailureKeepsDraft(t *testing.T) {
	api := pageAPI()
	api.createReview = func(context.Context, Credentials, int64, Draft) (*domain.Review, error) {
		return nil, errors.New("storefront-api server error (500/INTERNAL_ERROR)")
	}
	s := openedSession(t, api)
	require.NoError(t, s.Login(context.Background(), "alice", "pw"))
	s.OpenForm()
	s.SetRating(3)

	err := s.Submit(context.Background())

	require.Error(t, err)
	st := s.State()
	assert.Equal(t, ScreenComposing, st.Screen())
	assert.Equal(t, 3, st.Draft.Rating)
}

func TestSession_SubmitOutsideFormFails(t *testing.T) {
	s := openedSession(t, pageAPI())

	assert.ErrorIs(t, s.Submit(context.Background()), ErrNotComposing)
}

func TestSession_LogoutForgetsCredentials(t *testing.T) {
	s := openedSession(t, pageAPI())
	require.NoError(t, s.Login(context.Background(), "alice", "pw"))
	s.OpenForm()

	s.Logout()
	s.OpenForm()

	assert.Equal(t, ScreenViewing, s.State().Screen())
	assert.ErrorIs(t, s.Submit(context.Background()), ErrNotComposing)
}

func TestSession_CancelForm(t *testing.T) {
	s := openedSession(t, pageAPI())
	require.NoError(t, s.Login(context.Background(), "alice", "pw"))
	s.OpenForm()
	s.SetRating(2)

	s.CancelForm()

	assert.Equal(t, Draft{}, s.State().Draft)
	assert.Equal(t, ScreenViewingAuthenticated, s.State().Screen())
}
