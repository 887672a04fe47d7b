package ranking

import (
	"strings"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/textnorm"
)

// Matched-field tags, in the order Score reports them.
const (
	FieldTitleExact      = "title_exact"
	FieldTitlePartial    = "title_partial"
	FieldChorusFirstLine = "chorus_first_line"
	FieldVerse1FirstLine = "verse1_first_line"
	FieldLyricsFull      = "lyrics_full"
	FieldTwoLineUnits    = "two_line_units"
)

// Score computes the relevance of song to query under w and the fields that
// contributed. An empty query scores zero. MatchedFields is never nil.
func Score(song *data.Song, query string, w data.Weights) (float64, []string) {
	return scoreNormalized(song, textnorm.Normalize(query), w)
}

func scoreNormalized(song *data.Song, q string, w data.Weights) (float64, []string) {
	matched := []string{}
	if q == "" || song == nil {
		return 0, matched
	}
	var score float64

	title := textnorm.Normalize(song.Title)
	if title == q {
		score += w.TitleExact
		matched = append(matched, FieldTitleExact)
	} else if strings.Contains(title, q) {
		score += w.TitlePartial
		matched = append(matched, FieldTitlePartial)
	}

	if includesQuery(textnorm.Normalize(song.ChorusFirstLine), q) {
		score += w.Chorus
		matched = append(matched, FieldChorusFirstLine)
	}
	if includesQuery(textnorm.Normalize(song.Verse1FirstLine), q) {
		score += w.Verse1
		matched = append(matched, FieldVerse1FirstLine)
	}
	// Only stored lyrics count; derived ones are covered by the slide check below.
	if includesQuery(textnorm.NormalizeAny(song.LyricsFull), q) {
		score += w.Lyrics
		matched = append(matched, FieldLyricsFull)
	}
	for _, unit := range song.TwoLineUnits {
		if includesQuery(textnorm.Normalize(unit), q) {
			score += w.Unit
			matched = append(matched, FieldTwoLineUnits)
			break
		}
	}
	return score, matched
}

// includesQuery reports whether the normalized field f contains the
// normalized query q, either as one substring or, for multi-word queries,
// with every word present somewhere in f.
func includesQuery(f, q string) bool {
	if f == "" || q == "" {
		return false
	}
	if strings.Contains(f, q) {
		return true
	}
	tokens := textnorm.Tokens(q)
	if len(tokens) <= 1 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(f, tok) {
			return false
		}
	}
	return true
}
