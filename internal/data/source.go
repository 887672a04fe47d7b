package data

import (
	"context"
	"strings"
	"time"
)

// DataSource reads and writes the song catalog and the search weight history.
// Lookups that find nothing return (nil, nil), not an error.
type DataSource interface {
	// SearchCandidates returns up to limit songs worth scoring for query.
	// No ordering is guaranteed; callers rank the result themselves.
	SearchCandidates(ctx context.Context, query string, limit int) ([]*Song, error)
	ListSongs(ctx context.Context) ([]*Song, error)
	GetSong(ctx context.Context, id string) (*Song, error)
	InsertSong(ctx context.Context, song *Song) (*Song, error)
	LatestWeights(ctx context.Context) (*PartialWeights, error)
	InsertWeights(ctx context.Context, w Weights) (Weights, error)
	Ping(ctx context.Context) error
	Close() error
}

// Song is one catalog entry. TwoLineUnits holds the slide texts in order,
// each one or two lines joined by "\n".
type Song struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Artist          *string   `json:"artist"`
	ChorusFirstLine string    `json:"chorus_first_line"`
	Verse1FirstLine string    `json:"verse1_first_line"`
	TwoLineUnits    []string  `json:"two_line_units"`
	LyricsFull      *string   `json:"lyrics_full"`
	CopyrightHolder *string   `json:"copyright_holder"`
	CCLINumber      *string   `json:"ccli_number"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
}

// SlideSeparator joins slides when full lyrics are derived from them.
const SlideSeparator = "\n\n"

// Lyrics returns the stored full lyrics, or the slides joined by a blank
// line when none were stored.
func (s *Song) Lyrics() string {
	if s.LyricsFull != nil {
		return *s.LyricsFull
	}
	return strings.Join(s.TwoLineUnits, SlideSeparator)
}

// Weights is a fully populated search weight configuration.
type Weights struct {
	ID           string     `json:"id,omitempty"`
	TitleExact   float64    `json:"title_exact"`
	TitlePartial float64    `json:"title_partial"`
	Chorus       float64    `json:"chorus_weight"`
	Verse1       float64    `json:"verse1_weight"`
	Lyrics       float64    `json:"lyrics_weight"`
	Unit         float64    `json:"unit_weight"`
	Fuzzy        float64    `json:"fuzzy_weight"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// PartialWeights is a weight configuration where any field may be missing.
// It is what stores and request bodies produce before defaults are applied.
type PartialWeights struct {
	ID           string     `json:"id,omitempty"`
	TitleExact   *float64   `json:"title_exact"`
	TitlePartial *float64   `json:"title_partial"`
	Chorus       *float64   `json:"chorus_weight"`
	Verse1       *float64   `json:"verse1_weight"`
	Lyrics       *float64   `json:"lyrics_weight"`
	Unit         *float64   `json:"unit_weight"`
	Fuzzy        *float64   `json:"fuzzy_weight"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Partial returns w with every field set.
func (w Weights) Partial() *PartialWeights {
	return &PartialWeights{
		ID:           w.ID,
		TitleExact:   ptr(w.TitleExact),
		TitlePartial: ptr(w.TitlePartial),
		Chorus:       ptr(w.Chorus),
		Verse1:       ptr(w.Verse1),
		Lyrics:       ptr(w.Lyrics),
		Unit:         ptr(w.Unit),
		Fuzzy:        ptr(w.Fuzzy),
		UpdatedAt:    w.UpdatedAt,
	}
}

func ptr[T any](v T) *T { return &v }
