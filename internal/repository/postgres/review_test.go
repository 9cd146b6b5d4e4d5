package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func newReviewTestFixture(t *testing.T) (*ReviewRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewReviewRepository(mock), mock
}

func sampleReview() *domain.Review {
	return &domain.Review{
		ID:        "5f0c6b8e-8d7a-4c55-9a4f-0b7f0e1d2c3a",
		ProductID: 3,
		Rating:    4,
		Content:   "Solid value for the price.",
		User:      domain.Reviewer{Username: "alice"},
		CreatedAt: time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC),
	}
}

func TestReviewRepository_Create_Success(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	rv := sampleReview()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.ProductID, "alice", rv.Rating, rv.Content, rv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), rv))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_MissingProduct(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	rv := sampleReview()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.ProductID, "alice", rv.Rating, rv.Content, rv.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "reviews_product_id_fkey"})

	err := repo.Create(context.Background(), rv)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewRepository_Create_DBError(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	rv := sampleReview()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.ProductID, "alice", rv.Rating, rv.Content, rv.CreatedAt).
		WillReturnError(fmt.Errorf("disk full"))

	err := repo.Create(context.Background(), rv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert review")
}

func TestReviewRepository_ListByProductID(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	newer := sampleReview()
	older := sampleReview()
	older.ID = "b1d1e0f3-0000-4000-8000-000000000001"
	older.User.Username = "bob"
	older.CreatedAt = newer.CreatedAt.Add(-time.Hour)

	rows := pgxmock.NewRows([]string{"review_id", "product_id", "username", "rating", "content", "created_at"})
	for _, rv := range []*domain.Review{newer, older} {
		rows.AddRow(rv.ID, rv.ProductID, rv.User.Username, rv.Rating, rv.Content, rv.CreatedAt)
	}

	mock.ExpectQuery("SELECT .+ FROM reviews r JOIN users u .+ WHERE r.product_id = .+ ORDER BY r.created_at DESC").
		WithArgs(int64(3)).
		WillReturnRows(rows)

	reviews, err := repo.ListByProductID(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "alice", reviews[0].User.Username)
	assert.Equal(t, "bob", reviews[1].User.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByProductID_Empty(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM reviews").
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows([]string{"review_id", "product_id", "username", "rating", "content", "created_at"}))

	reviews, err := repo.ListByProductID(context.Background(), 8)
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestReviewRepository_GetSummary_RoundsAverage(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT COALESCE\\(AVG\\(rating\\), 0\\)").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"avg", "count"}).AddRow(4.3333333, 3))

	summary, err := repo.GetSummary(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 4.3, summary.AverageRating)
	assert.Equal(t, 3, summary.TotalCount)
}
