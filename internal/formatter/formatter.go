package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/ranking"
)

// OutputFormat selects output style.
type OutputFormat int

const (
	FormatTable OutputFormat = iota
	FormatJSON
	FormatCSV
	FormatSlides
	FormatPro7
)

// ParseFormat maps a --format flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "slides", "text":
		return FormatSlides, nil
	case "pro7", "propresenter":
		return FormatPro7, nil
	}
	return FormatTable, fmt.Errorf("unknown format %q (want table, json, csv, slides or pro7)", s)
}

// ResultType says which field of a Result is populated.
type ResultType int

const (
	ResultSearch ResultType = iota
	ResultSuggestions
	ResultSong
	ResultSongs
	ResultWeights
)

// Result is anything the CLI prints.
type Result struct {
	Type        ResultType
	Query       string
	Results     []ranking.Result
	Suggestions []ranking.Suggestion
	Song        *data.Song
	Songs       []*data.Song
	Weights     *data.Weights
	Duration    time.Duration
}

// Formatter renders a Result as a string.
type Formatter interface {
	Format(result *Result, format OutputFormat) (string, error)
}

type formatter struct {
	pro7 Pro7Options
}

// Option configures a Formatter.
type Option func(*formatter)

// WithPro7Options sets how FormatPro7 renders songs.
func WithPro7Options(o Pro7Options) Option {
	return func(f *formatter) { f.pro7 = o }
}

// New returns a Formatter.
func New(opts ...Option) Formatter {
	f := &formatter{pro7: Pro7Options{Background: BackgroundTransparent}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format dispatches to the appropriate formatter by format.
func (f *formatter) Format(result *Result, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(result)
	case FormatCSV:
		return formatCSV(result)
	case FormatSlides:
		return formatSlides(result)
	case FormatPro7:
		if result.Type != ResultSong || result.Song == nil {
			return "", fmt.Errorf("pro7 output needs a single song")
		}
		return Pro7XML(result.Song, f.pro7)
	default:
		return formatTable(result)
	}
}
