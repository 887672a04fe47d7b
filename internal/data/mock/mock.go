package mock

import (
	"context"

	"github.com/songslide/songslide/internal/data"
)

// DataSource is a mock that returns configurable results (for engine/server tests without a real DB).
type DataSource struct {
	SearchCandidatesFunc func(ctx context.Context, query string, limit int) ([]*data.Song, error)
	ListSongsFunc        func(ctx context.Context) ([]*data.Song, error)
	GetSongFunc          func(ctx context.Context, id string) (*data.Song, error)
	InsertSongFunc       func(ctx context.Context, song *data.Song) (*data.Song, error)
	LatestWeightsFunc    func(ctx context.Context) (*data.PartialWeights, error)
	InsertWeightsFunc    func(ctx context.Context, w data.Weights) (data.Weights, error)
	PingFunc             func(ctx context.Context) error
	CloseFunc            func() error
}

// SearchCandidates calls SearchCandidatesFunc if set, else returns nil slice.
func (m *DataSource) SearchCandidates(ctx context.Context, query string, limit int) ([]*data.Song, error) {
	if m.SearchCandidatesFunc != nil {
		return m.SearchCandidatesFunc(ctx, query, limit)
	}
	return nil, nil
}

// ListSongs calls ListSongsFunc if set, else returns nil slice.
func (m *DataSource) ListSongs(ctx context.Context) ([]*data.Song, error) {
	if m.ListSongsFunc != nil {
		return m.ListSongsFunc(ctx)
	}
	return nil, nil
}

// GetSong calls GetSongFunc if set, else returns nil.
func (m *DataSource) GetSong(ctx context.Context, id string) (*data.Song, error) {
	if m.GetSongFunc != nil {
		return m.GetSongFunc(ctx, id)
	}
	return nil, nil
}

// InsertSong calls InsertSongFunc if set, else echoes the song back.
func (m *DataSource) InsertSong(ctx context.Context, song *data.Song) (*data.Song, error) {
	if m.InsertSongFunc != nil {
		return m.InsertSongFunc(ctx, song)
	}
	return song, nil
}

// LatestWeights calls LatestWeightsFunc if set, else returns nil (no stored config).
func (m *DataSource) LatestWeights(ctx context.Context) (*data.PartialWeights, error) {
	if m.LatestWeightsFunc != nil {
		return m.LatestWeightsFunc(ctx)
	}
	return nil, nil
}

// InsertWeights calls InsertWeightsFunc if set, else echoes w back.
func (m *DataSource) InsertWeights(ctx context.Context, w data.Weights) (data.Weights, error) {
	if m.InsertWeightsFunc != nil {
		return m.InsertWeightsFunc(ctx, w)
	}
	return w, nil
}

// Ping calls PingFunc if set, else returns nil.
func (m *DataSource) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Close calls CloseFunc if set, else returns nil.
func (m *DataSource) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ data.DataSource = (*DataSource)(nil)
