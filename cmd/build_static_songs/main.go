// Program build_static_songs writes the catalog as a static songs.json for
// hosting without a database. Run from repo root:
//
//	go run ./cmd/build_static_songs                      # data/lyrics -> public/data/songs.json
//	go run ./cmd/build_static_songs --from songs.db      # export an existing database instead
//	go run ./cmd/build_static_songs --lyrics dir --out f # custom paths
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/songslide/songslide/internal/data/sqlite"
	"github.com/songslide/songslide/internal/import/canonical"
	"github.com/songslide/songslide/internal/import/lyricsdir"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var lyrics, from, out string
	cmd := &cobra.Command{
		Use:          "build_static_songs",
		Short:        "Write the song catalog as static JSON",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				songs []canonical.Song
				err   error
			)
			if from != "" {
				songs, err = fromDB(cmd.Context(), from)
			} else {
				songs, err = lyricsdir.Load(lyrics, time.Now().UTC())
			}
			if err != nil {
				return err
			}
			if err := write(out, songs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d songs -> %s\n", len(songs), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&lyrics, "lyrics", filepath.Join("data", "lyrics"), "directory of artist_title.txt files")
	cmd.Flags().StringVar(&from, "from", "", "export this sqlite database instead of reading lyric files")
	cmd.Flags().StringVar(&out, "out", filepath.Join("public", "data", "songs.json"), "output file")
	return cmd
}

func fromDB(ctx context.Context, path string) ([]canonical.Song, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	list, err := db.ListSongs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]canonical.Song, len(list))
	for i, s := range list {
		out[i] = canonical.FromData(s)
	}
	return out, nil
}

func write(path string, songs []canonical.Song) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := canonical.Export(w, songs); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
