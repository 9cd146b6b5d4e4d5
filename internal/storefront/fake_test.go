package storefront

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// fakeAPI is a scriptable API. Unset funcs panic, so each test states
// exactly which calls it expects.
type fakeAPI struct {
	getProduct   func(ctx context.Context, id int64) (*domain.Product, error)
	listReviews  func(ctx context.Context, productID int64) ([]domain.Review, error)
	login        func(ctx context.Context, creds Credentials) (*domain.User, error)
	createReview func(ctx context.Context, creds Credentials, productID int64, draft Draft) (*domain.Review, error)

	mu      sync.Mutex
	created []Draft
}

func (f *fakeAPI) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return f.getProduct(ctx, id)
}

func (f *fakeAPI) ListReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	return f.listReviews(ctx, productID)
}

func (f *fakeAPI) Login(ctx context.Context, creds Credentials) (*domain.User, error) {
	return f.login(ctx, creds)
}

func (f *fakeAPI) CreateReview(ctx context.Context, creds Credentials, productID int64, draft Draft) (*domain.Review, error) {
	f.mu.Lock()
	f.created = append(f.created, draft)
	f.mu.Unlock()
	return f.createReview(ctx, creds, productID, draft)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProduct(id int64) *domain.Product {
	return &domain.Product{ID: id, Name: "Desk Lamp", Description: "LED lamp", Price: 3999}
}

// pageAPI serves any product id with one review.
func pageAPI() *fakeAPI {
	return &fakeAPI{
		getProduct: func(_ context.Context, id int64) (*domain.Product, error) {
			return testProduct(id), nil
		},
		listReviews: func(_ context.Context, productID int64) ([]domain.Review, error) {
			return []domain.Review{{ID: "r-1", ProductID: productID, Rating: 4, Content: "Nice", User: domain.Reviewer{Username: "bob"}}}, nil
		},
		login: func(_ context.Context, creds Credentials) (*domain.User, error) {
			return &domain.User{Username: creds.Username}, nil
		},
	}
}
