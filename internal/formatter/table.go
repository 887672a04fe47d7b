package formatter

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/ranking"
	"github.com/songslide/songslide/internal/songs"
)

func formatTable(result *Result) (string, error) {
	switch result.Type {
	case ResultSearch:
		out := tableResults(result.Results)
		if len(result.Suggestions) > 0 {
			out += "\n" + tableSuggestions(result.Suggestions)
		}
		return out, nil
	case ResultSuggestions:
		return tableSuggestions(result.Suggestions), nil
	case ResultSong:
		return formatSlides(result)
	case ResultSongs:
		return tableSongs(result.Songs), nil
	case ResultWeights:
		return tableWeights(result.Weights), nil
	default:
		return "", nil
	}
}

func tableResults(results []ranking.Result) string {
	if len(results) == 0 {
		return "No songs found."
	}
	var b strings.Builder
	b.WriteString("SCORE | TITLE                    | ARTIST           | MATCHED\n")
	b.WriteString("------+--------------------------+------------------+------------------------\n")
	for _, r := range results {
		fmt.Fprintf(&b, "%5.0f | %-24s | %-16s | %s\n",
			r.Score, truncate(r.Song.Title, 24), truncate(artist(r.Song), 16), strings.Join(r.MatchedFields, ","))
	}
	return b.String()
}

func tableSuggestions(sugs []ranking.Suggestion) string {
	if len(sugs) == 0 {
		return "No suggestions."
	}
	var b strings.Builder
	b.WriteString("Did you mean:\n")
	b.WriteString("SCORE | DIST | TITLE\n")
	b.WriteString("------+------+--------------------------\n")
	for _, s := range sugs {
		fmt.Fprintf(&b, "%5.0f | %4d | %s\n", s.Score, s.Distance, truncate(s.Title, 40))
	}
	return b.String()
}

func tableSongs(list []*data.Song) string {
	if len(list) == 0 {
		return "No songs found."
	}
	var b strings.Builder
	b.WriteString("ID                         | TITLE                    | SLIDES | META\n")
	b.WriteString("---------------------------+--------------------------+--------+----------------\n")
	for _, s := range list {
		fmt.Fprintf(&b, "%-26s | %-24s | %6d | %s\n",
			truncate(s.ID, 26), truncate(s.Title, 24), len(s.TwoLineUnits), songs.MetaLabel(s))
	}
	return b.String()
}

func tableWeights(w *data.Weights) string {
	if w == nil {
		return "No weights."
	}
	var b strings.Builder
	b.WriteString("WEIGHT         | VALUE\n")
	b.WriteString("---------------+------\n")
	for _, nw := range ranking.Named(*w) {
		fmt.Fprintf(&b, "%-14s | %g\n", nw.Name, nw.Value)
	}
	if w.UpdatedAt != nil {
		fmt.Fprintf(&b, "\nupdated %s (%s)\n", w.UpdatedAt.UTC().Format("2006-01-02 15:04:05Z"), humanize.Time(*w.UpdatedAt))
	}
	return b.String()
}

func artist(s *data.Song) string {
	if s.Artist == nil || strings.TrimSpace(*s.Artist) == "" {
		return "-"
	}
	return *s.Artist
}

// truncate cuts s to at most max runes, marking the cut with "…".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
