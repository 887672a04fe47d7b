package main

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/songslide/songslide/internal/formatter"
	"github.com/songslide/songslide/internal/searchcache"
	"github.com/songslide/songslide/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search and catalog HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ds, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer ds.Close()
		engine, err := newEngine(ds)
		if err != nil {
			return err
		}
		cache := searchcache.New(engine, searchcache.WithTTL(cfg.Search.CacheTTL))

		if cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := server.New(server.Deps{
			Store:      ds,
			Engine:     engine,
			Searcher:   cache,
			Invalidate: []func(){cache.Invalidate},
			Logger:     logger,
		})
		return srv.Run(ctx, cfg.Server.Addr)
	},
}

var songsCmd = &cobra.Command{
	Use:   "songs",
	Short: "List every song in the catalog, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := outputFormat()
		if err != nil {
			return err
		}
		ds, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer ds.Close()
		list, err := ds.ListSongs(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, &formatter.Result{Type: formatter.ResultSongs, Songs: list}, f)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address (env SONGSLIDE_SERVER_ADDR)")
	v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
