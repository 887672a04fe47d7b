package formatter

import (
	"fmt"
	"strings"

	"github.com/songslide/songslide/internal/songs"
)

// formatSlides prints a song the way it is projected: a header, then each
// slide numbered with its lines.
func formatSlides(result *Result) (string, error) {
	if result.Type != ResultSong {
		return formatTable(result)
	}
	if result.Song == nil {
		return "No song.", nil
	}
	s := result.Song
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", s.Title, songs.MetaLabel(s))
	for i, slide := range s.TwoLineUnits {
		fmt.Fprintf(&b, "\n[%d]\n", i+1)
		for _, line := range songs.Lines(slide) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
