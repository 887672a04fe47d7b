package main

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/songslide/songslide/internal/errors"
	"github.com/songslide/songslide/internal/formatter"
	"github.com/songslide/songslide/internal/resolver"
	"github.com/songslide/songslide/internal/search"
)

var (
	searchSuggest bool
	searchLimit   int
	queryFile     string

	pro7TitleSlide bool
	pro7Background string
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Rank songs for a query",
	Example: `  songslide search 은혜
  songslide search --format json "주님 사랑"
  songslide search -f query.txt
  echo 입례 | songslide search -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := readQuery(cmd, args, queryFile)
		if err != nil {
			return err
		}
		f, err := outputFormat()
		if err != nil {
			return err
		}
		ds, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer ds.Close()
		engine, err := newEngine(ds)
		if err != nil {
			return err
		}

		res, err := engine.Search(cmd.Context(), query, searchSuggest)
		if err != nil {
			return err
		}
		results := res.Results
		if searchLimit > 0 && len(results) > searchLimit {
			results = results[:searchLimit]
		}
		return render(cmd, &formatter.Result{
			Type:        formatter.ResultSearch,
			Query:       res.Query,
			Results:     results,
			Suggestions: res.Suggestions,
			Weights:     &res.Weights,
			Duration:    res.Duration,
		}, f)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <title...>",
	Short: "List titles close to a possibly misspelled title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := readQuery(cmd, args, "")
		if err != nil {
			return err
		}
		f, err := outputFormat()
		if err != nil {
			return err
		}
		ds, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer ds.Close()
		sugs, err := resolver.NewDataSourceResolver(ds).Suggest(cmd.Context(), query)
		if err != nil {
			return err
		}
		return render(cmd, &formatter.Result{Type: formatter.ResultSuggestions, Query: query, Suggestions: sugs}, f)
	},
}

var slidesCmd = &cobra.Command{
	Use:   "slides <title-or-id...>",
	Short: "Print a song's slides",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := formatter.FormatSlides
		if cmd.Flags().Changed("format") {
			var err error
			if f, err = outputFormat(); err != nil {
				return err
			}
		}
		return showSong(cmd, args, f)
	},
}

var exportPro7Cmd = &cobra.Command{
	Use:   "pro7 <title-or-id...>",
	Short: "Write a song as a ProPresenter 7 XML presentation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bg, err := formatter.ParseBackground(pro7Background)
		if err != nil {
			return err
		}
		return showSong(cmd, args, formatter.FormatPro7, formatter.WithPro7Options(formatter.Pro7Options{
			IncludeTitleSlide: pro7TitleSlide,
			Background:        bg,
		}))
	},
}

func showSong(cmd *cobra.Command, args []string, f formatter.OutputFormat, opts ...formatter.Option) error {
	title, err := readQuery(cmd, args, "")
	if err != nil {
		return err
	}
	ds, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer ds.Close()
	song, err := resolver.NewDataSourceResolver(ds).Resolve(cmd.Context(), title)
	if err != nil {
		// Resolver errors already name the title or the failing store call.
		if apperrors.IsSongNotFound(err) || apperrors.IsStore(err) {
			return err
		}
		return fmt.Errorf("resolving %q: %w", title, err)
	}
	return render(cmd, &formatter.Result{Type: formatter.ResultSong, Song: song}, f, opts...)
}

func init() {
	searchCmd.Flags().BoolVar(&searchSuggest, "suggest", true, "include fuzzy title suggestions")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, fmt.Sprintf("show at most this many results (0 means all, up to %d)", search.MaxResults))
	searchCmd.Flags().StringVarP(&queryFile, "file", "f", "", "read the query from a file")

	exportPro7Cmd.Flags().BoolVar(&pro7TitleSlide, "title-slide", false, "add a slide with the song title first")
	exportPro7Cmd.Flags().StringVar(&pro7Background, "background", string(formatter.BackgroundTransparent), "slide background: transparent, black or white")
}
