package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

var productColumns = []string{"name", "description", "price", "image_url", "created_at"}

type options struct {
	Products     int
	BatchSize    int
	RandSeed     int64
	DemoUser     string
	DemoPassword string
}

func defaultOptions() options {
	return options{
		Products:     1000,
		BatchSize:    500,
		RandSeed:     42,
		DemoUser:     "demo",
		DemoPassword: "demo-password",
	}
}

func (o options) validate() error {
	if o.Products < 0 {
		return fmt.Errorf("--products must not be negative, got %d", o.Products)
	}
	if o.BatchSize < 1 {
		return fmt.Errorf("--batch-size must be at least 1, got %d", o.BatchSize)
	}
	if o.DemoUser != "" && o.DemoPassword == "" {
		return errors.New("--demo-password is required when --demo-user is set")
	}
	return nil
}

type copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type userCreator interface {
	Create(ctx context.Context, u *domain.User) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type seeder struct {
	copier copier
	users  userCreator
	hasher passwordHasher
	logger *slog.Logger
}

// seedProducts bulk-loads generated products in batches and returns the
// number of rows written.
func (s *seeder) seedProducts(ctx context.Context, opts options) (int64, error) {
	products := generateProducts(rand.New(rand.NewSource(opts.RandSeed)), opts.Products, time.Now().UTC())

	var total int64
	for start := 0; start < len(products); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(products))

		rows := make([][]any, 0, end-start)
		for _, p := range products[start:end] {
			rows = append(rows, []any{p.Name, p.Description, p.Price, p.ImageURL, p.CreatedAt})
		}

		n, err := s.copier.CopyFrom(ctx, pgx.Identifier{"products"}, productColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return total, fmt.Errorf("copy products batch at %d: %w", start, err)
		}
		total += n

		s.logger.Debug("inserted product batch", slog.Int("offset", start), slog.Int64("rows", n))
	}
	return total, nil
}

// seedDemoUser creates the demo account unless it already exists.
func (s *seeder) seedDemoUser(ctx context.Context, opts options) error {
	if opts.DemoUser == "" {
		return nil
	}

	hash, err := s.hasher.Hash(opts.DemoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	err = s.users.Create(ctx, &domain.User{
		Username:     opts.DemoUser,
		PasswordHash: hash,
		FirstName:    "Demo",
		LastName:     "User",
		Email:        opts.DemoUser + "@example.com",
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		s.logger.Info("demo user already exists", slog.String("username", opts.DemoUser))
		return nil
	}
	if err != nil {
		return fmt.Errorf("create demo user: %w", err)
	}

	s.logger.Info("created demo user", slog.String("username", opts.DemoUser))
	return nil
}

var (
	adjectives = []string{"Classic", "Compact", "Everyday", "Heritage", "Minimal", "Rugged", "Soft", "Travel", "Vintage", "Woven"}
	materials  = []string{"Bamboo", "Canvas", "Ceramic", "Cotton", "Leather", "Linen", "Oak", "Steel", "Walnut", "Wool"}
	nouns      = []string{"Backpack", "Blanket", "Bottle", "Candle", "Desk Lamp", "Journal", "Mug", "Scarf", "Tote", "Wallet"}

	descriptionTemplates = []string{
		"A %s built to last, finished by hand.",
		"Our best-selling %s in a new colourway.",
		"Lightweight %s for daily use.",
		"Thoughtfully designed %s with a lifetime warranty.",
	}
)

// generateProducts produces n products from rng. The same seed always yields
// the same names, descriptions and prices.
func generateProducts(rng *rand.Rand, n int, now time.Time) []domain.Product {
	products := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		noun := nouns[rng.Intn(len(nouns))]
		name := fmt.Sprintf("%s %s %s", adjectives[rng.Intn(len(adjectives))], materials[rng.Intn(len(materials))], noun)

		// Prices end in 99 cents: 4.99 to 499.99.
		price := int64(500+rng.Intn(49500))/100*100 - 1

		age := time.Duration(rng.Intn(90*24*60)) * time.Minute

		products = append(products, domain.Product{
			Name:        name,
			Description: fmt.Sprintf(descriptionTemplates[rng.Intn(len(descriptionTemplates))], strings.ToLower(noun)),
			Price:       price,
			ImageURL:    fmt.Sprintf("/images/%s-%d.jpg", slugify(name), i),
			CreatedAt:   now.Add(-age),
		})
	}
	return products
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}
