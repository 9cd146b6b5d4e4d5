// Command seed fills the storefront database with generated products and a
// demo account for local development.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/migrations"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := defaultOptions()

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Populate the storefront database with sample data",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Products, "products", opts.Products, "number of products to generate")
	f.IntVar(&opts.BatchSize, "batch-size", opts.BatchSize, "rows per COPY batch")
	f.Int64Var(&opts.RandSeed, "rand-seed", opts.RandSeed, "seed for the product generator")
	f.StringVar(&opts.DemoUser, "demo-user", opts.DemoUser, "username of the demo account (empty to skip)")
	f.StringVar(&opts.DemoPassword, "demo-password", opts.DemoPassword, "password of the demo account")
	return cmd
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	hasher, err := auth.NewHasher(auth.Params{
		MemoryKiB:   cfg.Argon2MemoryKiB,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
		SaltLength:  auth.DefaultParams().SaltLength,
		KeyLength:   auth.DefaultParams().KeyLength,
	})
	if err != nil {
		return fmt.Errorf("create password hasher: %w", err)
	}

	s := &seeder{
		copier: pool,
		users:  postgres.NewUserRepository(pool),
		hasher: hasher,
		logger: log,
	}

	start := time.Now()
	n, err := s.seedProducts(ctx, opts)
	if err != nil {
		return err
	}
	if err := s.seedDemoUser(ctx, opts); err != nil {
		return err
	}

	log.Info("seed complete",
		slog.Int64("products", n),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}
