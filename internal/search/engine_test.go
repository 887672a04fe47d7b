package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/data/mock"
	"github.com/songslide/songslide/internal/ranking"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func catalog() []*data.Song {
	return []*data.Song{
		{ID: "s1", Title: "입례", ChorusFirstLine: "주님 앞에", Verse1FirstLine: "거룩한 성전에"},
		{ID: "s2", Title: "은혜", ChorusFirstLine: "주님의 놀라운 은혜가", Verse1FirstLine: "내가 걸어온 길"},
	}
}

func TestCandidateLimit(t *testing.T) {
	require.Equal(t, 300, CandidateLimit(""))
	require.Equal(t, 300, CandidateLimit(" a "))
	require.Equal(t, 300, CandidateLimit("주"))
	require.Equal(t, 450, CandidateLimit(" 입례 "))
	require.Equal(t, 650, CandidateLimit("abc"))
	require.Equal(t, 650, CandidateLimit("주님 은혜"))
}

func TestParseIncludeSuggestions(t *testing.T) {
	for raw, want := range map[string]bool{
		"": true, "1": true, "true": true, "yes": true, "anything": true,
		"0": false, "false": false, " FALSE ": false, "no": false, "Off": false,
	} {
		require.Equal(t, want, ParseIncludeSuggestions(raw), raw)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	ds := &mock.DataSource{
		SearchCandidatesFunc: func(ctx context.Context, query string, limit int) ([]*data.Song, error) {
			t.Fatal("store should not be queried")
			return nil, nil
		},
		LatestWeightsFunc: func(ctx context.Context) (*data.PartialWeights, error) {
			t.Fatal("store should not be queried")
			return nil, nil
		},
	}
	res, err := New(ds).Search(context.Background(), "   ", true)
	require.NoError(t, err)
	require.Equal(t, "", res.Query)
	require.Equal(t, ranking.DefaultWeights, res.Weights)
	require.NotNil(t, res.Results)
	require.Empty(t, res.Results)
	require.NotNil(t, res.Suggestions)
	require.Empty(t, res.Suggestions)
}

func TestSearch_RanksAndSuggests(t *testing.T) {
	var gotQuery string
	var gotLimit int
	ds := &mock.DataSource{
		SearchCandidatesFunc: func(ctx context.Context, query string, limit int) ([]*data.Song, error) {
			gotQuery, gotLimit = query, limit
			return catalog(), nil
		},
	}
	e := New(ds)
	res, err := e.Search(context.Background(), " 입례 ", true)
	require.NoError(t, err)
	require.Equal(t, "입례", gotQuery)
	require.Equal(t, 450, gotLimit)
	require.Equal(t, "입례", res.Query)
	require.Len(t, res.Results, 1)
	require.Equal(t, 100.0, res.Results[0].Score)
	require.Equal(t, []string{ranking.FieldTitleExact}, res.Results[0].MatchedFields)
	require.Len(t, res.Suggestions, 1)
	require.Equal(t, 110.0, res.Suggestions[0].Score)
	require.Equal(t, 2, res.Candidates)

	res, err = e.Search(context.Background(), "임례", false)
	require.NoError(t, err)
	require.Empty(t, res.Results)
	require.NotNil(t, res.Suggestions)
	require.Empty(t, res.Suggestions)
}

func TestSearch_CapsResultsAndSuggestionPool(t *testing.T) {
	var songs []*data.Song
	for i := 0; i < 300; i++ {
		songs = append(songs, &data.Song{ID: fmt.Sprintf("n%03d", i), Title: fmt.Sprintf("노래 %03d", i), ChorusFirstLine: "주님"})
	}
	// Only reachable as a suggestion, and only if the pool were uncapped.
	songs = append(songs, &data.Song{ID: "late", Title: "주넘"})

	ds := &mock.DataSource{
		SearchCandidatesFunc: func(ctx context.Context, query string, limit int) ([]*data.Song, error) {
			return songs, nil
		},
	}
	res, err := New(ds).Search(context.Background(), "주님", true)
	require.NoError(t, err)
	require.Len(t, res.Results, MaxResults)
	require.Equal(t, "n000", res.Results[0].Song.ID)
	for _, s := range res.Suggestions {
		require.NotEqual(t, "late", s.SongID)
	}
}

func TestSearch_StoreError(t *testing.T) {
	boom := errors.New("boom")
	ds := &mock.DataSource{
		SearchCandidatesFunc: func(ctx context.Context, query string, limit int) ([]*data.Song, error) {
			return nil, boom
		},
	}
	_, err := New(ds).Search(context.Background(), "입례", true)
	require.ErrorIs(t, err, boom)
}

func TestSearch_UsesStoredWeights(t *testing.T) {
	exact := 7.0
	ds := &mock.DataSource{
		SearchCandidatesFunc: func(ctx context.Context, query string, limit int) ([]*data.Song, error) {
			return catalog(), nil
		},
		LatestWeightsFunc: func(ctx context.Context) (*data.PartialWeights, error) {
			return &data.PartialWeights{ID: "w1", TitleExact: &exact}, nil
		},
	}
	res, err := New(ds).Search(context.Background(), "입례", false)
	require.NoError(t, err)
	require.Equal(t, 7.0, res.Results[0].Score)
	require.Equal(t, "w1", res.Weights.ID)
	require.Equal(t, ranking.DefaultWeights.Chorus, res.Weights.Chorus)
}

func TestWeights_CachedForTTL(t *testing.T) {
	var calls atomic.Int32
	ds := &mock.DataSource{
		LatestWeightsFunc: func(ctx context.Context) (*data.PartialWeights, error) {
			calls.Add(1)
			return nil, nil
		},
	}
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	e := New(ds, WithClock(clock.Now))
	ctx := context.Background()

	require.Equal(t, ranking.DefaultWeights, e.Weights(ctx))
	e.Weights(ctx)
	require.Equal(t, int32(1), calls.Load())

	clock.Advance(59 * time.Second)
	e.Weights(ctx)
	require.Equal(t, int32(1), calls.Load())

	clock.Advance(time.Second)
	e.Weights(ctx)
	require.Equal(t, int32(2), calls.Load())

	e.InvalidateWeights()
	e.Weights(ctx)
	require.Equal(t, int32(3), calls.Load())
}

func TestWeights_FailureFallsBackUncached(t *testing.T) {
	var calls atomic.Int32
	ds := &mock.DataSource{
		LatestWeightsFunc: func(ctx context.Context) (*data.PartialWeights, error) {
			calls.Add(1)
			return nil, errors.New("table missing")
		},
	}
	e := New(ds)
	require.Equal(t, ranking.DefaultWeights, e.Weights(context.Background()))
	require.Equal(t, ranking.DefaultWeights, e.Weights(context.Background()))
	require.Equal(t, int32(2), calls.Load())
}

func TestWeights_ZeroTTLDisablesReuse(t *testing.T) {
	var calls atomic.Int32
	ds := &mock.DataSource{
		LatestWeightsFunc: func(ctx context.Context) (*data.PartialWeights, error) {
			calls.Add(1)
			return nil, nil
		},
	}
	e := New(ds, WithWeightsTTL(0))
	e.Weights(context.Background())
	e.Weights(context.Background())
	require.Equal(t, int32(2), calls.Load())
}

func TestSearch_Concurrent(t *testing.T) {
	ds := &mock.DataSource{
		SearchCandidatesFunc: func(ctx context.Context, query string, limit int) ([]*data.Song, error) {
			return catalog(), nil
		},
	}
	e := New(ds, WithRanker(ranking.NewRanker(language.Korean)))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.Search(context.Background(), "주님", true)
			if err != nil || len(res.Results) != 2 {
				t.Errorf("unexpected result: %v %v", res, err)
			}
		}()
	}
	wg.Wait()
}

func TestWeights_InvalidateDuringLoadNotCached(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls atomic.Int32
	ds := &mock.DataSource{
		LatestWeightsFunc: func(ctx context.Context) (*data.PartialWeights, error) {
			exact := float64(calls.Add(1))
			if exact == 1 {
				started <- struct{}{}
				<-release
			}
			return &data.PartialWeights{TitleExact: &exact}, nil
		},
	}
	e := New(ds)
	ctx := context.Background()

	done := make(chan data.Weights)
	go func() { done <- e.Weights(ctx) }()
	<-started
	e.InvalidateWeights()
	close(release)
	require.Equal(t, 1.0, (<-done).TitleExact)

	require.Equal(t, 2.0, e.Weights(ctx).TitleExact, "stale load must not be reused")
	require.Equal(t, 2.0, e.Weights(ctx).TitleExact)
	require.Equal(t, int32(2), calls.Load())
}

func TestSearch_CandidateFailureDoesNotBlameWeights(t *testing.T) {
	boom := errors.New("boom")
	ds := &mock.DataSource{
		SearchCandidatesFunc: func(ctx context.Context, query string, limit int) ([]*data.Song, error) {
			return nil, boom
		},
		LatestWeightsFunc: func(ctx context.Context) (*data.PartialWeights, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	var logs bytes.Buffer
	e := New(ds, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	_, err := e.Search(context.Background(), "입례", true)
	require.ErrorIs(t, err, boom)
	require.NotContains(t, logs.String(), "search weights")
}

func TestWeights_StoreFailureLogged(t *testing.T) {
	ds := &mock.DataSource{
		LatestWeightsFunc: func(ctx context.Context) (*data.PartialWeights, error) {
			return nil, errors.New("table missing")
		},
	}
	var logs bytes.Buffer
	e := New(ds, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.Equal(t, ranking.DefaultWeights, e.Weights(context.Background()))
	require.Contains(t, logs.String(), "loading search weights failed")
}
