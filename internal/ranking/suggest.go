package ranking

import (
	"math"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/textnorm"
)

// DefaultSuggestionLimit is used when Suggest is given a limit of zero or less.
const DefaultSuggestionLimit = 8

// Suggestion is a title within edit distance of the query.
type Suggestion struct {
	SongID   string  `json:"song_id"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	Distance int     `json:"distance"`
}

// MaxDistance is the largest title edit distance accepted for a normalized
// query: 45% of its length in code points, at least 1.
func MaxDistance(normalizedQuery string) int {
	d := int(math.Floor(float64(textnorm.Length(normalizedQuery)) * 0.45))
	if d < 1 {
		return 1
	}
	return d
}

// Suggest proposes songs by fuzzy title match using the root collation.
// See Ranker.Suggest.
func Suggest(songs []*data.Song, query string, w data.Weights, limit int) []Suggestion {
	return defaultRanker.Suggest(songs, query, w, limit)
}

// Suggest returns up to limit songs whose normalized title is within
// MaxDistance edits of the normalized query. Each scores its relevance plus
// the flat fuzzy bonus. Ordering is score descending, then distance, then title.
func (r *Ranker) Suggest(songs []*data.Song, query string, w data.Weights, limit int) []Suggestion {
	out := []Suggestion{}
	q := textnorm.Normalize(query)
	if q == "" {
		return out
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	maxDist := MaxDistance(q)
	for _, s := range songs {
		if s == nil {
			continue
		}
		title := textnorm.Normalize(s.Title)
		if title == "" {
			continue
		}
		dist := levenshtein.ComputeDistance(title, q)
		if dist > maxDist {
			continue
		}
		base, _ := scoreNormalized(s, q, w)
		out = append(out, Suggestion{
			SongID:   s.ID,
			Title:    s.Title,
			Score:    base + w.Fuzzy,
			Distance: dist,
		})
	}
	keys := r.sortKeys(len(out), func(i int) string { return out[i].Title })
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		sa, sb := out[idx[a]], out[idx[b]]
		if sa.Score != sb.Score {
			return sa.Score > sb.Score
		}
		if sa.Distance != sb.Distance {
			return sa.Distance < sb.Distance
		}
		return titleLess(keys[idx[a]], keys[idx[b]], sa.Title, sb.Title)
	})
	if len(idx) > limit {
		idx = idx[:limit]
	}
	sorted := make([]Suggestion, len(idx))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}
