package formatter

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/songslide/songslide/internal/ranking"
)

func formatCSV(result *Result) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	switch result.Type {
	case ResultSearch:
		w.Write([]string{"id", "title", "artist", "score", "matched_fields"})
		for _, r := range result.Results {
			w.Write([]string{r.Song.ID, r.Song.Title, deref(r.Song.Artist), num(r.Score), strings.Join(r.MatchedFields, ";")})
		}
	case ResultSuggestions:
		w.Write([]string{"song_id", "title", "score", "distance"})
		for _, s := range result.Suggestions {
			w.Write([]string{s.SongID, s.Title, num(s.Score), strconv.Itoa(s.Distance)})
		}
	case ResultSong:
		if result.Song != nil {
			w.Write([]string{"slide", "text"})
			for i, slide := range result.Song.TwoLineUnits {
				w.Write([]string{strconv.Itoa(i + 1), slide})
			}
		}
	case ResultSongs:
		w.Write([]string{"id", "title", "artist", "ccli_number", "slides", "created_at"})
		for _, s := range result.Songs {
			created := ""
			if !s.CreatedAt.IsZero() {
				created = s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
			}
			w.Write([]string{s.ID, s.Title, deref(s.Artist), deref(s.CCLINumber), strconv.Itoa(len(s.TwoLineUnits)), created})
		}
	case ResultWeights:
		if result.Weights != nil {
			w.Write([]string{"name", "value"})
			for _, nw := range ranking.Named(*result.Weights) {
				w.Write([]string{nw.Name, num(nw.Value)})
			}
		}
	default:
		return "", fmt.Errorf("csv: unsupported result type %d", result.Type)
	}
	w.Flush()
	return b.String(), w.Error()
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
