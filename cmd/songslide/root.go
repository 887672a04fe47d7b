package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/songslide/songslide/internal/config"
	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/data/postgres"
	"github.com/songslide/songslide/internal/data/sqlite"
	"github.com/songslide/songslide/internal/formatter"
	"github.com/songslide/songslide/internal/ranking"
	"github.com/songslide/songslide/internal/search"
)

var (
	cfgFile string
	format  string

	cfg    *config.Config
	logger *slog.Logger
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "songslide",
	Short: "Search and project worship song lyrics",
	Long: `songslide keeps a catalog of worship songs split into two-line slides.

It ranks songs for a search query by title, first lines and lyrics, suggests
near-miss titles for typos, and serves the same search over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		logger, err = config.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	pf.String("db", "songs.db", "sqlite database path (env SONGSLIDE_DATABASE_PATH)")
	pf.String("driver", config.DriverSQLite, "database driver: sqlite or postgres")
	pf.String("database-url", "", "postgres connection URL (env SONGSLIDE_DATABASE_URL)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.StringVar(&format, "format", "table", "output format: table, json, csv, slides or pro7")

	v.BindPFlag("database.path", pf.Lookup("db"))
	v.BindPFlag("database.driver", pf.Lookup("driver"))
	v.BindPFlag("database.url", pf.Lookup("database-url"))
	v.BindPFlag("log.level", pf.Lookup("log-level"))

	rootCmd.AddCommand(initCmd, importCmd, exportCmd, searchCmd, suggestCmd, slidesCmd, songsCmd, weightsCmd, serveCmd)
}

// openStore opens the configured DataSource. Postgres stores get their
// schema applied on open.
func openStore(ctx context.Context) (data.DataSource, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.Schema, logger)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(cfg.Database.Path)
	}
}

func newRanker() (*ranking.Ranker, error) {
	r, err := ranking.NewRankerForLanguage(cfg.Search.Collation)
	if err != nil {
		return nil, fmt.Errorf("search.collation: %w", err)
	}
	return r, nil
}

func newEngine(ds data.DataSource) (*search.Engine, error) {
	r, err := newRanker()
	if err != nil {
		return nil, err
	}
	return search.New(ds,
		search.WithRanker(r),
		search.WithLogger(logger),
		search.WithWeightsTTL(cfg.Search.WeightsTTL),
	), nil
}

func outputFormat() (formatter.OutputFormat, error) {
	return formatter.ParseFormat(format)
}

func render(cmd *cobra.Command, res *formatter.Result, f formatter.OutputFormat, opts ...formatter.Option) error {
	out, err := formatter.New(opts...).Format(res, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
