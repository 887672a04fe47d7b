package canonical

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/songs"
)

// Song is a single song in a source-agnostic format. Any importer (lyrics
// directory, JSON export, scrape) can produce []Song and call WriteSongs to
// merge into a catalog. JSON matches the API song shape (songs.json).
type Song struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Artist          *string  `json:"artist"`
	ChorusFirstLine string   `json:"chorus_first_line"`
	Verse1FirstLine string   `json:"verse1_first_line"`
	TwoLineUnits    []string `json:"two_line_units"`
	LyricsFull      *string  `json:"lyrics_full"`
	CopyrightHolder *string  `json:"copyright_holder"`
	CCLINumber      *string  `json:"ccli_number"`
	Tags            []string `json:"tags"`
	CreatedAt       string   `json:"created_at"`
}

// ReadSongs decodes a JSON array of songs.
func ReadSongs(r io.Reader) ([]Song, error) {
	var out []Song
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode songs: %w", err)
	}
	return out, nil
}

// WriteSongs validates and inserts songs. Songs whose ID already exists in
// ds, or appears earlier in the batch, are skipped. It returns
// (songsAdded, songsSkipped).
func WriteSongs(ctx context.Context, ds data.DataSource, in []Song) (added, skipped int, err error) {
	seen := make(map[string]bool)
	for i := range in {
		select {
		case <-ctx.Done():
			return added, skipped, ctx.Err()
		default:
		}
		s := &in[i]
		id := strings.TrimSpace(s.ID)
		if id != "" {
			if seen[id] {
				skipped++
				continue
			}
			existing, err := ds.GetSong(ctx, id)
			if err != nil {
				return added, skipped, err
			}
			if existing != nil {
				seen[id] = true
				skipped++
				continue
			}
		}
		song, err := s.toData()
		if err != nil {
			return added, skipped, fmt.Errorf("song %d (%q): %w", i+1, s.Title, err)
		}
		stored, err := ds.InsertSong(ctx, song)
		if err != nil {
			return added, skipped, err
		}
		seen[stored.ID] = true
		added++
	}
	return added, skipped, nil
}

func (s *Song) toData() (*data.Song, error) {
	song, err := songs.Validate(songs.Payload{
		Title:           s.Title,
		Artist:          s.Artist,
		ChorusFirstLine: s.ChorusFirstLine,
		Verse1FirstLine: s.Verse1FirstLine,
		TwoLineUnits:    s.TwoLineUnits,
		LyricsFull:      s.LyricsFull,
		CopyrightHolder: s.CopyrightHolder,
		CCLINumber:      s.CCLINumber,
		Tags:            s.Tags,
	})
	if err != nil {
		return nil, err
	}
	song.ID = strings.TrimSpace(s.ID)
	if c := strings.TrimSpace(s.CreatedAt); c != "" {
		t, err := time.Parse(time.RFC3339, c)
		if err != nil {
			return nil, fmt.Errorf("created_at: %w", err)
		}
		song.CreatedAt = t.UTC()
	}
	return song, nil
}

// FromData converts a stored song for export.
func FromData(s *data.Song) Song {
	out := Song{
		ID:              s.ID,
		Title:           s.Title,
		Artist:          s.Artist,
		ChorusFirstLine: s.ChorusFirstLine,
		Verse1FirstLine: s.Verse1FirstLine,
		TwoLineUnits:    s.TwoLineUnits,
		LyricsFull:      s.LyricsFull,
		CopyrightHolder: s.CopyrightHolder,
		CCLINumber:      s.CCLINumber,
		Tags:            s.Tags,
	}
	if !s.CreatedAt.IsZero() {
		out.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if out.TwoLineUnits == nil {
		out.TwoLineUnits = []string{}
	}
	return out
}

// Export writes songs as an indented JSON array followed by a newline.
func Export(w io.Writer, in []Song) error {
	if in == nil {
		in = []Song{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(in)
}
