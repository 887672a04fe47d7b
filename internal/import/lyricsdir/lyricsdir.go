// Package lyricsdir reads a directory of plain-text lyric files named
// artist_title.txt into canonical songs.
package lyricsdir

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/import/canonical"
	"github.com/songslide/songslide/internal/songs"
	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Load reads every .txt file in dir, in name order. Each file becomes one
// song whose slides are separated by blank lines. IDs are derived from
// artist and title, so reloading the same directory yields the same IDs.
func Load(dir string, createdAt time.Time) ([]canonical.Song, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("lyrics directory not found: %s", dir)
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no .txt files found in %s", dir)
	}
	sort.Strings(names)

	stamp := ""
	if !createdAt.IsZero() {
		stamp = createdAt.UTC().Format(time.RFC3339Nano)
	}
	ids := newIDSet()
	out := make([]canonical.Song, 0, len(names))
	for _, name := range names {
		artist, title, err := SplitFileName(name)
		if err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		slides, err := songs.ParseSlides(string(bytes.TrimPrefix(raw, utf8BOM)))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		chorus, verse1 := songs.FirstLines(slides)
		lyrics := strings.Join(slides, data.SlideSeparator)
		out = append(out, canonical.Song{
			ID:              ids.next(artist + "\x00" + title),
			Title:           title,
			Artist:          &artist,
			ChorusFirstLine: chorus,
			Verse1FirstLine: verse1,
			TwoLineUnits:    slides,
			LyricsFull:      &lyrics,
			CreatedAt:       stamp,
		})
	}
	return out, nil
}

// SplitFileName splits "artist_title.txt" on the first underscore. Both
// parts are trimmed and NFC-normalized and must be non-empty.
func SplitFileName(name string) (artist, title string, err error) {
	base := name
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".txt") {
		base = strings.TrimSuffix(base, ext)
	}
	i := strings.Index(base, "_")
	if i <= 0 || i == len(base)-1 {
		return "", "", fmt.Errorf("invalid filename %q: expected artist_title.txt", name)
	}
	artist = norm.NFC.String(strings.TrimSpace(base[:i]))
	title = norm.NFC.String(strings.TrimSpace(base[i+1:]))
	if artist == "" || title == "" {
		return "", "", fmt.Errorf("invalid filename %q: artist and title must be non-empty", name)
	}
	return artist, title, nil
}

type idSet map[string]bool

func newIDSet() idSet { return make(idSet) }

// next returns "song" plus 12 hex digits of sha1(seed), adding 2, 3, ...
// when that ID was already handed out.
func (s idSet) next(seed string) string {
	sum := sha1.Sum([]byte(seed))
	base := "song" + hex.EncodeToString(sum[:])[:12]
	id := base
	for n := 2; s[id]; n++ {
		id = base + strconv.Itoa(n)
	}
	s[id] = true
	return id
}
