package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ProductService serves catalog reads, optionally through a cache.
type ProductService struct {
	repo   repository.ProductRepository
	cache  repository.ProductCache
	logger *slog.Logger
}

// NewProductService creates a new product service. cache may be nil.
func NewProductService(repo repository.ProductRepository, cache repository.ProductCache, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// GetProduct returns a product by ID. Cache failures fall back to the database.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if s.cache != nil {
		p, err := s.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "product cache read failed",
				slog.Int64("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			s.logger.WarnContext(ctx, "product cache write failed",
				slog.Int64("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	return p, nil
}

// ListProducts returns every product ordered by id.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
