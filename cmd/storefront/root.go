package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/storefront"
	"github.com/utafrali/storefront/pkg/logger"
)

type options struct {
	apiURL string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "storefront",
		Short:        "Browse products and reviews from the terminal",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "storefront API base URL (overrides STOREFRONT_API_URL)")

	cmd.AddCommand(newShowCommand(opts), newBrowseCommand(opts))
	return cmd
}

func newShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Print a product page once and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			session, err := newSession(opts)
			if err != nil {
				return err
			}

			<-session.Open(cmd.Context(), id)
			st := session.State()
			if err := storefront.Render(cmd.OutOrStdout(), st); err != nil {
				return err
			}
			if st.Screen() == storefront.ScreenError {
				return st.LoadErr
			}
			return nil
		},
	}
}

func newBrowseCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [product-id]",
		Short: "Open an interactive product page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(opts)
			if err != nil {
				return err
			}

			r := newREPL(session, cmd.InOrStdin(), cmd.OutOrStdout())
			if len(args) == 1 {
				id, err := parseProductID(args[0])
				if err != nil {
					return err
				}
				r.open(cmd.Context(), id)
			}
			return r.run(cmd.Context())
		},
	}
}

func newSession(opts *options) (*storefront.Session, error) {
	cfg, err := storefront.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}

	log := logger.NewWithWriter("storefront-cli", cfg.LogLevel, os.Stderr)
	log.Debug("using storefront API", slog.String("url", cfg.APIURL))

	client := storefront.NewClient(cfg.APIURL, cfg.HTTPClient(), log)
	return storefront.NewSession(client, cfg.FetchTimeout, log), nil
}

func parseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}
