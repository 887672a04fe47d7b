// Package songs validates and shapes song records created by users or imports.
package songs

import (
	"fmt"
	"strings"

	"github.com/songslide/songslide/internal/data"
	apperrors "github.com/songslide/songslide/internal/errors"
)

// Hint accompanies every validation failure returned to API clients.
const Hint = "Check required fields and slide line counts."

// MaxSlideLines is the most lines one slide may hold.
const MaxSlideLines = 2

// Payload is a song submitted for creation.
type Payload struct {
	Title           string   `json:"title"`
	Artist          *string  `json:"artist"`
	ChorusFirstLine string   `json:"chorus_first_line"`
	Verse1FirstLine string   `json:"verse1_first_line"`
	TwoLineUnits    []string `json:"two_line_units"`
	LyricsFull      *string  `json:"lyrics_full"`
	CopyrightHolder *string  `json:"copyright_holder"`
	CCLINumber      *string  `json:"ccli_number"`
	Tags            []string `json:"tags"`
}

func invalid(field, msg string) error {
	return &apperrors.ValidationError{Field: field, Message: msg, Hint: Hint}
}

// Validate checks p and returns the song to store: fields trimmed, blank
// optional fields cleared, and lyrics derived from the slides when absent.
// The result has no ID or creation time.
func Validate(p Payload) (*data.Song, error) {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return nil, invalid("title", "title is required")
	case strings.TrimSpace(p.ChorusFirstLine) == "":
		return nil, invalid("chorus_first_line", "chorus_first_line is required")
	case strings.TrimSpace(p.Verse1FirstLine) == "":
		return nil, invalid("verse1_first_line", "verse1_first_line is required")
	case len(p.TwoLineUnits) == 0:
		return nil, invalid("two_line_units", "two_line_units is required")
	}

	slides := make([]string, len(p.TwoLineUnits))
	for i, slide := range p.TwoLineUnits {
		n := len(Lines(slide))
		if n == 0 || n > MaxSlideLines {
			return nil, invalid("two_line_units", "Each slide must have 1 or 2 lines.")
		}
		slides[i] = strings.TrimSpace(slide)
	}

	song := &data.Song{
		Title:           strings.TrimSpace(p.Title),
		Artist:          trimmed(p.Artist),
		ChorusFirstLine: strings.TrimSpace(p.ChorusFirstLine),
		Verse1FirstLine: strings.TrimSpace(p.Verse1FirstLine),
		TwoLineUnits:    slides,
		LyricsFull:      trimmed(p.LyricsFull),
		CopyrightHolder: trimmed(p.CopyrightHolder),
		CCLINumber:      trimmed(p.CCLINumber),
		Tags:            p.Tags,
	}
	if song.LyricsFull == nil {
		lyrics := song.Lyrics()
		song.LyricsFull = &lyrics
	}
	return song, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Lines returns the non-blank lines of a slide, trimmed.
func Lines(slide string) []string {
	var out []string
	for _, line := range strings.Split(slide, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseSlides splits lyrics text into slides. Slides are separated by blank
// lines; each keeps at most MaxSlideLines non-blank lines.
func ParseSlides(content string) ([]string, error) {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return nil, fmt.Errorf("lyrics are empty")
	}
	var (
		slides  []string
		current []string
	)
	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		if len(current) > MaxSlideLines {
			return fmt.Errorf("slide %d has %d lines. Maximum is %d", len(slides)+1, len(current), MaxSlideLines)
		}
		slides = append(slides, strings.Join(current, "\n"))
		current = nil
		return nil
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		current = append(current, line)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return slides, nil
}

// FirstLines picks the chorus and verse-1 first lines from slides: the first
// and second lines overall, with the verse falling back to the chorus line.
func FirstLines(slides []string) (chorus, verse1 string) {
	var lines []string
	for _, s := range slides {
		lines = append(lines, Lines(s)...)
		if len(lines) >= 2 {
			break
		}
	}
	if len(lines) > 0 {
		chorus = lines[0]
	}
	verse1 = chorus
	if len(lines) > 1 {
		verse1 = lines[1]
	}
	return chorus, verse1
}

// MetaLabel formats artist, CCLI number and copyright holder for display.
func MetaLabel(song *data.Song) string {
	var parts []string
	if v := clean(song.Artist); v != "" {
		parts = append(parts, v)
	}
	if v := clean(song.CCLINumber); v != "" {
		parts = append(parts, "CCLI "+v)
	}
	if v := clean(song.CopyrightHolder); v != "" {
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return "Unknown Artist"
	}
	return strings.Join(parts, " · ")
}

func clean(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
