package ranking

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/textnorm"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Result is one ranked song.
type Result struct {
	Song          *data.Song `json:"song"`
	Score         float64    `json:"score"`
	MatchedFields []string   `json:"matched_fields"`
}

// Ranker scores and orders songs. Titles that tie on score are ordered by the
// collation rules of its language. A Ranker is safe for concurrent use.
type Ranker struct {
	mu  sync.Mutex
	col *collate.Collator
	buf collate.Buffer
}

// NewRanker returns a Ranker collating titles for tag.
func NewRanker(tag language.Tag) *Ranker {
	return &Ranker{col: collate.New(tag)}
}

// NewRankerForLanguage parses a BCP 47 tag such as "ko" or "en-US".
func NewRankerForLanguage(lang string) (*Ranker, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, err
	}
	return NewRanker(tag), nil
}

var defaultRanker = NewRanker(language.Und)

// Rank scores every song with the root collation. See Ranker.Rank.
func Rank(songs []*data.Song, query string, w data.Weights) []Result {
	return defaultRanker.Rank(songs, query, w)
}

// Rank scores each song against query, drops those scoring zero or less, and
// sorts the rest by score descending then title. The full list is returned;
// callers truncate.
func (r *Ranker) Rank(songs []*data.Song, query string, w data.Weights) []Result {
	out := []Result{}
	if len(songs) == 0 {
		return out
	}
	q := textnorm.Normalize(query)
	if q == "" {
		return out
	}
	for _, s := range songs {
		score, matched := scoreNormalized(s, q, w)
		if score > 0 {
			out = append(out, Result{Song: s, Score: score, MatchedFields: matched})
		}
	}
	keys := r.sortKeys(len(out), func(i int) string { return out[i].Song.Title })
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := out[idx[a]], out[idx[b]]
		if ra.Score != rb.Score {
			return ra.Score > rb.Score
		}
		return titleLess(keys[idx[a]], keys[idx[b]], ra.Song.Title, rb.Song.Title)
	})
	sorted := make([]Result, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// sortKeys builds collation keys for n titles. Collators are not safe for
// concurrent use, so key generation is serialized.
func (r *Ranker) sortKeys(n int, title func(int) string) [][]byte {
	keys := make([][]byte, n)
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < n; i++ {
		keys[i] = bytes.Clone(r.col.KeyFromString(&r.buf, title(i)))
		r.buf.Reset()
	}
	return keys
}

func titleLess(ka, kb []byte, a, b string) bool {
	if c := bytes.Compare(ka, kb); c != 0 {
		return c < 0
	}
	return strings.Compare(a, b) < 0
}
