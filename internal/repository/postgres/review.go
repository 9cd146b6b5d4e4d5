package postgres

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new product review into the database.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	query := `
		INSERT INTO reviews (review_id, product_id, username, rating, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	defer func() { end(spanError(err)) }()

	_, err = r.pool.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.User.Username,
		review.Rating,
		review.Content,
		review.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("product", strconv.FormatInt(review.ProductID, 10))
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// ListByProductID returns all reviews for a product, newest first.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID int64) (reviews []domain.Review, err error) {
	query := `
		SELECT r.review_id, r.product_id, u.username, r.rating, r.content, r.created_at
		FROM reviews r
		JOIN users u ON u.username = r.username
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListReviewsByProduct", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews = []domain.Review{}
	for rows.Next() {
		var rv domain.Review

		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.User.Username,
			&rv.Rating,
			&rv.Content,
			&rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}

		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

// GetSummary returns the average rating and total count of reviews for a product.
func (r *ReviewRepository) GetSummary(ctx context.Context, productID int64) (summary *domain.ReviewSummary, err error) {
	query := `
		SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
		FROM reviews
		WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "GetReviewSummary", query)
	defer func() { end(err) }()

	var s domain.ReviewSummary

	err = r.pool.QueryRow(ctx, query, productID).Scan(
		&s.AverageRating,
		&s.TotalCount,
	)
	if err != nil {
		return nil, fmt.Errorf("get review summary: %w", err)
	}

	// Round average rating to one decimal place.
	s.AverageRating = math.Round(s.AverageRating*10) / 10

	return &s, nil
}
