package resolver

import (
	"context"
	"fmt"

	"github.com/songslide/songslide/internal/data"
	apperrors "github.com/songslide/songslide/internal/errors"
	"github.com/songslide/songslide/internal/ranking"
)

// candidateLimit bounds how many songs one lookup pulls from the store.
const candidateLimit = 650

// DataSourceResolver resolves titles via a DataSource. An exact ID match is
// accepted before any title matching.
type DataSourceResolver struct {
	DataSource data.DataSource
}

// NewDataSourceResolver returns a SongResolver that uses the given DataSource.
func NewDataSourceResolver(ds data.DataSource) *DataSourceResolver {
	return &DataSourceResolver{DataSource: ds}
}

// Resolve returns the song with ID title, or else the one titled title.
func (r *DataSourceResolver) Resolve(ctx context.Context, title string) (*data.Song, error) {
	if song, err := r.DataSource.GetSong(ctx, title); err != nil {
		return nil, storeError(fmt.Sprintf("looking up song %q", title), err)
	} else if song != nil {
		return song, nil
	}
	songs, w, err := r.load(ctx, title)
	if err != nil {
		return nil, err
	}
	return resolve(title, songs, w)
}

// Suggest returns fuzzy title matches among the store's candidates.
func (r *DataSourceResolver) Suggest(ctx context.Context, title string) ([]ranking.Suggestion, error) {
	songs, w, err := r.load(ctx, title)
	if err != nil {
		return nil, err
	}
	return ranking.Suggest(songs, title, w, ranking.DefaultSuggestionLimit), nil
}

func (r *DataSourceResolver) load(ctx context.Context, title string) ([]*data.Song, data.Weights, error) {
	songs, err := r.DataSource.SearchCandidates(ctx, title, candidateLimit)
	if err != nil {
		return nil, data.Weights{}, storeError("loading candidate songs", err)
	}
	partial, err := r.DataSource.LatestWeights(ctx)
	if err != nil {
		return nil, data.Weights{}, storeError("loading search weights", err)
	}
	return songs, ranking.MergeWithDefaults(partial), nil
}

func storeError(msg string, err error) error {
	return &apperrors.QueryError{
		Type:    apperrors.ErrStore,
		Message: msg,
		Cause:   err,
		Hint:    "Check the database settings (--db, --driver, --database-url).",
	}
}
