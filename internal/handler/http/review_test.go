package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func TestListReviews_NestsUsername(t *testing.T) {
	ts := newTestServer(t)
	ts.reviews.On("ListByProductID", mock.Anything, int64(3)).Return([]domain.Review{
		{ID: "r-2", ProductID: 3, Rating: 5, Content: "Great", User: domain.Reviewer{Username: "bob"}, CreatedAt: time.Now()},
		{ID: "r-1", ProductID: 3, Rating: 2, Content: "Meh", User: domain.Reviewer{Username: "alice"}, CreatedAt: time.Now().Add(-time.Hour)},
	}, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/review/3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "bob", body[0]["user"].(map[string]any)["username"])
	assert.Equal(t, "r-2", body[0]["review_id"])
}

func TestListReviews_EmptyIsArray(t *testing.T) {
	ts := newTestServer(t)
	ts.reviews.On("ListByProductID", mock.Anything, int64(3)).Return([]domain.Review{}, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/review/3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListReviews_InvalidProductID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/review/x1", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSummary(t *testing.T) {
	ts := newTestServer(t)
	ts.reviews.On("GetSummary", mock.Anything, int64(3)).Return(&domain.ReviewSummary{AverageRating: 3.5, TotalCount: 4}, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/review/3/summary", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3.5, body["average_rating"])
	assert.Equal(t, float64(4), body["total_count"])
}

func newReviewRequest(t *testing.T, body any, username, password string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/review", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	if username != "" {
		req.SetBasicAuth(username, password)
	}
	return req
}

func TestCreateReview_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "alice").Return(ts.storedUser(t, "alice", "secret123"), nil)
	ts.products.On("GetByID", mock.Anything, int64(3)).Return(&domain.Product{ID: 3}, nil)
	ts.reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	rec := ts.do(newReviewRequest(t, map[string]any{"product_id": 3, "rating": 4, "content": "Solid."}, "alice", "secret123"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["user"].(map[string]any)["username"])
	assert.Equal(t, float64(4), body["rating"])
	assert.NotEmpty(t, body["review_id"])
}

func TestCreateReview_NoCredentials(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(newReviewRequest(t, map[string]any{"product_id": 3, "rating": 4}, "", ""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `Basic realm="storefront"`)
	ts.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "alice").Return(ts.storedUser(t, "alice", "secret123"), nil)

	rec := ts.do(newReviewRequest(t, map[string]any{"product_id": 3, "rating": 4}, "alice", "wrong"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	ts.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"rating zero", map[string]any{"product_id": 3, "rating": 0}, "rating"},
		{"rating six", map[string]any{"product_id": 3, "rating": 6}, "rating"},
		{"content too long", map[string]any{"product_id": 3, "rating": 3, "content": strings.Repeat("a", 101)}, "content"},
		{"missing product", map[string]any{"rating": 3}, "product_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.users.On("GetByUsername", mock.Anything, "alice").Return(ts.storedUser(t, "alice", "pw"), nil)

			rec := ts.do(newReviewRequest(t, tt.body, "alice", "pw"))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			errResp := decodeError(t, rec)
			assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
			assert.Contains(t, errResp.Fields, tt.field)
			ts.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateReview_MalformedBody(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "alice").Return(ts.storedUser(t, "alice", "pw"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/review", strings.NewReader("{not json"))
	req.SetBasicAuth("alice", "pw")
	rec := ts.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
}

func TestCreateReview_ProductNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByUsername", mock.Anything, "alice").Return(ts.storedUser(t, "alice", "pw"), nil)
	ts.products.On("GetByID", mock.Anything, int64(42)).Return(nil, apperrors.NotFound("product", "42"))

	rec := ts.do(newReviewRequest(t, map[string]any{"product_id": 42, "rating": 3}, "alice", "pw"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
	ts.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
