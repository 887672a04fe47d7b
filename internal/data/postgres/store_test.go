package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/songslide/songslide/internal/data"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdent(t *testing.T) {
	q, err := quoteIdent(" songslide_test ")
	require.NoError(t, err)
	require.Equal(t, `"songslide_test"`, q)

	for _, bad := range []string{"", "   ", "a;drop", `a"b`, "스키마"} {
		_, err := quoteIdent(bad)
		require.Error(t, err, bad)
	}
}

func TestNew(t *testing.T) {
	_, err := New(nil, "public", nil)
	require.Error(t, err)

	s, err := New(&pgxpool.Pool{}, "", nil)
	require.NoError(t, err)
	require.Equal(t, `"public".songs`, s.table("songs"))

	_, err = New(&pgxpool.Pool{}, "bad-schema", nil)
	require.Error(t, err)
}

// openIntegration connects to SONGSLIDE_TEST_DATABASE_URL, skipping when unset.
func openIntegration(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("SONGSLIDE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SONGSLIDE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, url, "songslide_test", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, `DROP SCHEMA IF EXISTS "songslide_test" CASCADE`)
		s.Close()
	})
	_, err = s.pool.Exec(ctx, `DROP SCHEMA IF EXISTS "songslide_test" CASCADE`)
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func TestStore_Integration(t *testing.T) {
	s := openIntegration(t)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	for _, song := range []*data.Song{
		{ID: "s1", Title: "입례", ChorusFirstLine: "주님 앞에", Verse1FirstLine: "거룩한 성전에", TwoLineUnits: []string{"주님 앞에\n나아갑니다"}},
		{ID: "s2", Title: "은혜", ChorusFirstLine: "주님의 놀라운 은혜가", Verse1FirstLine: "내가 걸어온 길"},
	} {
		_, err := s.InsertSong(ctx, song)
		require.NoError(t, err)
	}

	got, err := s.GetSong(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, []string{"주님 앞에\n나아갑니다"}, got.TwoLineUnits)
	require.Equal(t, []string{}, got.Tags)

	missing, err := s.GetSong(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	songs, err := s.SearchCandidates(ctx, "은혜", 1)
	require.NoError(t, err)
	require.Len(t, songs, 1)
	require.Equal(t, "s2", songs[0].ID)

	w, err := s.LatestWeights(ctx)
	require.NoError(t, err)
	require.Nil(t, w)

	stored, err := s.InsertWeights(ctx, data.Weights{TitleExact: 1, TitlePartial: 2, Chorus: 3, Verse1: 4, Lyrics: 5, Unit: 6, Fuzzy: 7})
	require.NoError(t, err)
	w, err = s.LatestWeights(ctx)
	require.NoError(t, err)
	require.Equal(t, stored.ID, w.ID)
	require.Equal(t, 7.0, *w.Fuzzy)
}

func TestStore_FallbackWithoutFunction(t *testing.T) {
	s := openIntegration(t)
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `DROP FUNCTION "songslide_test".search_song_candidates(text, integer)`)
	require.NoError(t, err)

	_, err = s.InsertSong(ctx, &data.Song{ID: "s1", Title: "입례", ChorusFirstLine: "a", Verse1FirstLine: "b"})
	require.NoError(t, err)

	songs, err := s.SearchCandidates(ctx, "입례", 10)
	require.NoError(t, err)
	require.Len(t, songs, 1)
}
