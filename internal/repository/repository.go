package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user. A taken username yields ErrAlreadyExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByUsername retrieves a user by primary key, or ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List returns every user ordered by username.
	List(ctx context.Context) ([]domain.User, error)
}

// ProductRepository defines the interface for product reads.
type ProductRepository interface {
	// GetByID retrieves a product by its identifier, or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// List returns every product ordered by id.
	List(ctx context.Context) ([]domain.Product, error)
}

// ProductCache is a read-through cache in front of ProductRepository.
type ProductCache interface {
	// Get returns a cached product, or ErrNotFound on a miss.
	Get(ctx context.Context, id int64) (*domain.Product, error)

	// Set stores a product.
	Set(ctx context.Context, product *domain.Product) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review. A missing product yields ErrNotFound.
	Create(ctx context.Context, review *domain.Review) error

	// ListByProductID returns all reviews for a product, newest first, with
	// the reviewer's username joined in.
	ListByProductID(ctx context.Context, productID int64) ([]domain.Review, error)

	// GetSummary returns the average rating and count for a product.
	GetSummary(ctx context.Context, productID int64) (*domain.ReviewSummary, error)
}
