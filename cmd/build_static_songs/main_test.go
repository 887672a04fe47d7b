package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/songslide/songslide/internal/import/canonical"
	"github.com/songslide/songslide/test/fixtures"
)

func readOut(t *testing.T, path string) []canonical.Song {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	songs, err := canonical.ReadSongs(f)
	require.NoError(t, err)
	return songs
}

func TestBuild_FromLyrics(t *testing.T) {
	dir := t.TempDir()
	lyrics := filepath.Join(dir, "lyrics")
	require.NoError(t, os.MkdirAll(lyrics, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(lyrics, "예배팀_감사.txt"), []byte("감사해요\n주님\n\n작은 것에도"), 0o644))
	out := filepath.Join(dir, "public", "data", "songs.json")

	cmd := newCommand()
	cmd.SetArgs([]string{"--lyrics", lyrics, "--out", out})
	cmd.SetOut(io.Discard)
	require.NoError(t, cmd.Execute())

	songs := readOut(t, out)
	require.Len(t, songs, 1)
	require.Equal(t, "감사", songs[0].Title)
	require.Equal(t, "감사해요", songs[0].ChorusFirstLine)
	require.Equal(t, "주님", songs[0].Verse1FirstLine)
	require.Equal(t, []string{"감사해요\n주님", "작은 것에도"}, songs[0].TwoLineUnits)
}

func TestBuild_FromDB(t *testing.T) {
	out := filepath.Join(t.TempDir(), "songs.json")
	cmd := newCommand()
	cmd.SetArgs([]string{"--from", fixtures.CreateTestDB(t), "--out", out})
	cmd.SetOut(io.Discard)
	require.NoError(t, cmd.Execute())

	songs := readOut(t, out)
	require.Len(t, songs, 5)
	require.Equal(t, fixtures.SongMorning, songs[0].ID)
}

func TestBuild_MissingLyricsDir(t *testing.T) {
	cmd := newCommand()
	cmd.SetArgs([]string{"--lyrics", filepath.Join(t.TempDir(), "nope"), "--out", filepath.Join(t.TempDir(), "x.json")})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	require.Error(t, cmd.Execute())
}
