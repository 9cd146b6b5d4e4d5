package storefront

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/storefront/internal/domain"
)

// PageResult is the joined outcome of the product and reviews fetches.
type PageResult struct {
	Product    *domain.Product
	Reviews    []domain.Review
	ReviewsErr error
}

// LoadPage fetches a product and its reviews concurrently, each under its
// own timeout. Only a product failure fails the page; a reviews failure is
// reported in ReviewsErr alongside the product.
func LoadPage(ctx context.Context, api API, id int64, timeout time.Duration) (PageResult, error) {
	var res PageResult

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, timeout)
		defer cancel()

		p, err := api.GetProduct(fctx, id)
		if err != nil {
			return fmt.Errorf("load product %d: %w", id, err)
		}
		res.Product = p
		return nil
	})

	var reviews []domain.Review
	var reviewsErr error
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, timeout)
		defer cancel()

		reviews, reviewsErr = api.ListReviews(fctx, id)
		return nil
	})

	if err := g.Wait(); err != nil {
		return PageResult{}, err
	}

	res.Reviews = reviews
	res.ReviewsErr = reviewsErr
	if reviewsErr != nil {
		res.Reviews = nil
	}
	return res, nil
}
