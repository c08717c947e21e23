package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-docblocks/internal/config"
	"github.com/goliatone/go-docblocks/pkg/graphql"
	"github.com/goliatone/go-docblocks/pkg/registry"
	"github.com/goliatone/go-docblocks/pkg/relationship"
)

var (
	registryPath string
	showMetrics  bool

	cfg     config.Config
	logger  zerolog.Logger
	defs    *registry.Set
	metrics = prometheus.NewRegistry()

	fetchMetrics = sync.OnceValue(func() *relationship.Metrics {
		return relationship.NewMetrics(metrics)
	})
)

var rootCmd = &cobra.Command{
	Use:           "docblocks <command>",
	Short:         "Hydrate, validate and edit documents built from component blocks",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logger = cfg.Logger(cmd.ErrOrStderr())

		path := registryPath
		if path == "" {
			path = cfg.Registry
		}
		defs, err = registry.LoadPath(cmd.Context(), path,
			registry.WithHTTPClient(http.DefaultClient),
			registry.WithRequestTimeout(cfg.RequestTimeout),
		)
		if err != nil {
			return err
		}
		logger.Debug().
			Str("registry", path).
			Int("components", len(defs.Components.Names())).
			Int("relationships", len(defs.Relationships.Names())).
			Msg("registry loaded")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if !showMetrics {
			return nil
		}
		return writeMetrics(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "registry file, directory or URL (default $DOCBLOCKS_REGISTRY)")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print relationship fetch metrics to stderr on exit")

	rootCmd.AddCommand(hydrateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(schemaCmd)
}

// newFetcher builds the relationship fetcher for the configured endpoint.
func newFetcher() (*relationship.Fetcher, error) {
	if cfg.GraphQLURL == "" {
		return nil, fmt.Errorf("DOCBLOCKS_GRAPHQL_URL is not set")
	}
	runner, err := graphql.NewHTTPRunner(cfg.GraphQLURL,
		graphql.WithBearerToken(cfg.GraphQLToken),
		graphql.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, err
	}
	return relationship.NewFetcher(graphql.NewSchema(runner),
		relationship.WithLogger(logger),
		relationship.WithQuietMissing(cfg.QuietMissing()),
		relationship.WithMetrics(fetchMetrics()),
	), nil
}

func writeMetrics(w io.Writer) error {
	families, err := metrics.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func openInput(name string, stdin io.Reader) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(name)
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

func main() {
	if err := execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
