package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ProductLookup resolves a product, returning ErrNotFound when it does not exist.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

// CreateReviewInput holds the parameters for creating a review. Username is
// the reviewer authenticated for the current request.
type CreateReviewInput struct {
	ProductID int64
	Username  string
	Rating    int
	Content   string
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	repo     repository.ReviewRepository
	products ProductLookup
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, products ProductLookup, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// CreateReview stores a review for an existing product.
func (s *ReviewService) CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if input.Username == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if input.ProductID <= 0 {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if !domain.IsValidRating(input.Rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if domain.ContentLength(input.Content) > domain.MaxContentLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("content must be at most %d characters", domain.MaxContentLength))
	}

	if _, err := s.products.GetProduct(ctx, input.ProductID); err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Content:   input.Content,
		User:      domain.Reviewer{Username: input.Username},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.Int64("product_id", review.ProductID),
		slog.String("username", review.User.Username),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListReviews returns all reviews for a product, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	reviews, err := s.repo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// GetSummary returns the rating summary for a product.
func (s *ReviewService) GetSummary(ctx context.Context, productID int64) (*domain.ReviewSummary, error) {
	summary, err := s.repo.GetSummary(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get review summary: %w", err)
	}
	return summary, nil
}
