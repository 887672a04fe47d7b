package resolver

import (
	"context"
	"fmt"

	"github.com/songslide/songslide/internal/data"
	apperrors "github.com/songslide/songslide/internal/errors"
	"github.com/songslide/songslide/internal/ranking"
	"github.com/songslide/songslide/internal/textnorm"
)

// SongResolver resolves a free-text title to one song.
type SongResolver interface {
	Resolve(ctx context.Context, title string) (*data.Song, error)
	Suggest(ctx context.Context, title string) ([]ranking.Suggestion, error)
}

// StaticResolver resolves titles from a fixed list (for tests or small catalogs).
type StaticResolver struct {
	Songs   []*data.Song
	Weights data.Weights
}

// NewStaticResolver builds a resolver over songs using the default weights.
func NewStaticResolver(songs []*data.Song) *StaticResolver {
	return &StaticResolver{Songs: songs, Weights: ranking.DefaultWeights}
}

// Resolve returns the song whose normalized title equals the normalized
// title. On a miss the error carries fuzzy suggestions.
func (s *StaticResolver) Resolve(ctx context.Context, title string) (*data.Song, error) {
	return resolve(title, s.Songs, s.Weights)
}

// Suggest returns titles within edit distance of title (for "did you mean?").
func (s *StaticResolver) Suggest(ctx context.Context, title string) ([]ranking.Suggestion, error) {
	return ranking.Suggest(s.Songs, title, s.Weights, ranking.DefaultSuggestionLimit), nil
}

func resolve(title string, songs []*data.Song, w data.Weights) (*data.Song, error) {
	q := textnorm.Normalize(title)
	if q == "" {
		return nil, &apperrors.QueryError{Type: apperrors.ErrSongNotFound, Message: "empty title"}
	}
	var hits []*data.Song
	for _, s := range songs {
		if textnorm.Normalize(s.Title) == q {
			hits = append(hits, s)
		}
	}
	switch len(hits) {
	case 1:
		return hits[0], nil
	case 0:
		return nil, notFound(title, songs, w)
	}
	// Several songs share the title.
	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = fmt.Sprintf("%s (%s)", h.Title, h.ID)
	}
	return nil, &apperrors.QueryError{
		Type:        apperrors.ErrAmbiguousSong,
		Message:     fmt.Sprintf("%d songs titled %q", len(hits), title),
		Suggestions: names,
		Hint:        "Use the song ID instead.",
	}
}

func notFound(title string, songs []*data.Song, w data.Weights) error {
	err := &apperrors.QueryError{
		Type:    apperrors.ErrSongNotFound,
		Message: fmt.Sprintf("no song titled %q", title),
	}
	for _, s := range ranking.Suggest(songs, title, w, ranking.DefaultSuggestionLimit) {
		err.Suggestions = append(err.Suggestions, s.Title)
	}
	if len(songs) == 0 {
		err.Hint = "The catalog is empty. Run 'songslide init' or 'songslide import'."
	}
	return err
}
