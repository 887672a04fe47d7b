package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/songslide/songslide/internal/config"
	"github.com/songslide/songslide/internal/data/sqlite"
	"github.com/songslide/songslide/internal/import/canonical"
	"github.com/songslide/songslide/internal/import/lyricsdir"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create the database with the schema and a demo catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver == config.DriverPostgres {
			ds, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()
			fmt.Fprintf(cmd.ErrOrStderr(), "Schema %s ready\n", cfg.Database.Schema)
			return nil
		}
		path := cfg.Database.Path
		if len(args) == 1 {
			path = args[0]
		}
		if err := sqlite.Init(path); err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Database created: %s\n", path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import songs into the catalog",
}

var importCreatedAt string

var importLyricsCmd = &cobra.Command{
	Use:   "lyrics <dir>",
	Short: "Import artist_title.txt lyric files from a directory",
	Long: `Each *.txt file is one song named "<artist>_<title>.txt". Slides are
separated by blank lines and may hold at most two lines each. The first line
of the first slide becomes the chorus first line, the second line the verse 1
first line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		createdAt := time.Now().UTC()
		if importCreatedAt != "" {
			t, err := time.Parse(time.RFC3339, importCreatedAt)
			if err != nil {
				return fmt.Errorf("--created-at: %w", err)
			}
			createdAt = t
		}
		in, err := lyricsdir.Load(args[0], createdAt)
		if err != nil {
			return err
		}
		return writeSongs(cmd, in)
	},
}

var importJSONCmd = &cobra.Command{
	Use:   "json <file|->",
	Short: "Import songs from a JSON array (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			defer f.Close()
			r = f
		}
		in, err := canonical.ReadSongs(r)
		if err != nil {
			return err
		}
		return writeSongs(cmd, in)
	},
}

func writeSongs(cmd *cobra.Command, in []canonical.Song) error {
	ds, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer ds.Close()
	added, skipped, err := canonical.WriteSongs(cmd.Context(), ds, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Import complete: %d added, %d skipped\n", added, skipped)
	return nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export songs",
}

var exportJSONCmd = &cobra.Command{
	Use:   "json [file]",
	Short: "Write the whole catalog as a JSON array (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer ds.Close()
		list, err := ds.ListSongs(cmd.Context())
		if err != nil {
			return err
		}
		out := make([]canonical.Song, len(list))
		for i, s := range list {
			out[i] = canonical.FromData(s)
		}

		w := cmd.OutOrStdout()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			bw := bufio.NewWriter(f)
			if err := canonical.Export(bw, out); err != nil {
				return err
			}
			if err := bw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d songs to %s\n", len(out), args[0])
			return nil
		}
		return canonical.Export(w, out)
	},
}

// readQuery returns the query from --file, stdin (a single "-" argument)
// or the joined arguments.
func readQuery(cmd *cobra.Command, args []string, file string) (string, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no query")
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}

func init() {
	importLyricsCmd.Flags().StringVar(&importCreatedAt, "created-at", "", "creation time for imported songs (RFC 3339, default now)")
	importCmd.AddCommand(importLyricsCmd, importJSONCmd)
	exportCmd.AddCommand(exportJSONCmd, exportPro7Cmd)
}
