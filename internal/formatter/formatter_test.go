package formatter

import (
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/ranking"
)

func strp(s string) *string { return &s }

func grace() *data.Song {
	return &data.Song{
		ID:              "s2",
		Title:           "은혜",
		Artist:          strp("예배팀"),
		ChorusFirstLine: "주님의 놀라운 은혜가",
		Verse1FirstLine: "내가 걸어온 길",
		TwoLineUnits:    []string{"내가 걸어온 길\n모두 은혜라", "주님의 놀라운 은혜가\n나를 붙드네"},
		CCLINumber:      strp("1234567"),
		CopyrightHolder: strp("Songslide Demo"),
	}
}

func searchResult() *Result {
	s := grace()
	w := ranking.DefaultWeights
	return &Result{
		Type:    ResultSearch,
		Query:   "은혜",
		Results: []ranking.Result{{Song: s, Score: 135, MatchedFields: []string{"title_exact", "chorus_first_line"}}},
		Suggestions: []ranking.Suggestion{
			{SongID: "s2", Title: "은혜", Score: 110, Distance: 0},
		},
		Weights: &w,
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]OutputFormat{
		"":       FormatTable,
		"table":  FormatTable,
		"JSON":   FormatJSON,
		"csv":    FormatCSV,
		"slides": FormatSlides,
		"pro7":   FormatPro7,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}

func TestFormat_Table_Search(t *testing.T) {
	out, err := New().Format(searchResult(), FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, "SCORE | TITLE")
	assert.Contains(t, out, "  135 | 은혜")
	assert.Contains(t, out, "title_exact,chorus_first_line")
	assert.Contains(t, out, "Did you mean:")
}

func TestFormat_Table_Empty(t *testing.T) {
	out, err := New().Format(&Result{Type: ResultSearch}, FormatTable)
	require.NoError(t, err)
	assert.Equal(t, "No songs found.", out)

	out, err = New().Format(&Result{Type: ResultSuggestions}, FormatTable)
	require.NoError(t, err)
	assert.Equal(t, "No suggestions.", out)
}

func TestFormat_Table_Weights(t *testing.T) {
	w := ranking.DefaultWeights
	out, err := New().Format(&Result{Type: ResultWeights, Weights: &w}, FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, "title_exact    | 100")
	assert.Contains(t, out, "fuzzy_weight   | 10")
	assert.NotContains(t, out, "updated")

	at := time.Now().Add(-3 * time.Hour)
	w.UpdatedAt = &at
	out, err = New().Format(&Result{Type: ResultWeights, Weights: &w}, FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, "(3 hours ago)")
}

func TestFormat_Table_Songs(t *testing.T) {
	out, err := New().Format(&Result{Type: ResultSongs, Songs: []*data.Song{grace()}}, FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, "예배팀 · CCLI 1234567 · Songslide Demo")
}

func TestFormat_JSON(t *testing.T) {
	out, err := New().Format(searchResult(), FormatJSON)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "search", got["type"])
	assert.Equal(t, "은혜", got["query"])
	results := got["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, 135.0, results[0].(map[string]any)["score"])
}

func TestFormat_CSV(t *testing.T) {
	out, err := New().Format(searchResult(), FormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,title,artist,score,matched_fields", lines[0])
	assert.Equal(t, "s2,은혜,예배팀,135,title_exact;chorus_first_line", lines[1])
}

func TestFormat_CSV_SlideQuoting(t *testing.T) {
	out, err := New().Format(&Result{Type: ResultSong, Song: grace()}, FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, out, "1,\"내가 걸어온 길\n모두 은혜라\"")
}

func TestFormat_Slides(t *testing.T) {
	out, err := New().Format(&Result{Type: ResultSong, Song: grace()}, FormatSlides)
	require.NoError(t, err)
	want := "은혜\n예배팀 · CCLI 1234567 · Songslide Demo\n\n[1]\n내가 걸어온 길\n모두 은혜라\n\n[2]\n주님의 놀라운 은혜가\n나를 붙드네"
	assert.Equal(t, want, out)
}

func TestFormat_SlidesUnknownArtist(t *testing.T) {
	s := &data.Song{Title: "무명", TwoLineUnits: []string{"한 줄"}}
	out, err := New().Format(&Result{Type: ResultSong, Song: s}, FormatSlides)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "무명\nUnknown Artist\n"))
}

func TestFormat_NilSong(t *testing.T) {
	out, err := New().Format(&Result{Type: ResultSong}, FormatTable)
	require.NoError(t, err)
	assert.Equal(t, "No song.", out)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "주님", truncate("주님", 2))
	assert.Equal(t, "주님의 …", truncate("주님의 놀라운 은혜가", 5))
	assert.Equal(t, "a", truncate("abc", 1))
}

func TestPro7XML(t *testing.T) {
	s := grace()
	s.TwoLineUnits = []string{"Tom & Jerry\n<sing>", "하나"}
	out, err := Pro7XML(s, Pro7Options{IncludeTitleSlide: true, Background: BackgroundBlack})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<ProPresenterPresentation version="7">`)
	assert.Contains(t, out, `<Text>Tom &amp; Jerry<br/>&lt;sing&gt;</Text>`)
	assert.Contains(t, out, `<CCLI>1234567</CCLI>`)

	var doc struct {
		Title  string `xml:"Meta>Title"`
		Slides []struct {
			Index      int    `xml:"index,attr"`
			Background string `xml:"Background"`
		} `xml:"Slides>Slide"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "은혜", doc.Title)
	require.Len(t, doc.Slides, 3)
	assert.Equal(t, 1, doc.Slides[0].Index)
	assert.Equal(t, 3, doc.Slides[2].Index)
	assert.Equal(t, "black", doc.Slides[2].Background)
}

func TestFormat_Pro7NeedsSong(t *testing.T) {
	_, err := New().Format(searchResult(), FormatPro7)
	assert.Error(t, err)

	out, err := New(WithPro7Options(Pro7Options{Background: BackgroundWhite})).
		Format(&Result{Type: ResultSong, Song: grace()}, FormatPro7)
	require.NoError(t, err)
	assert.Contains(t, out, "<Background>white</Background>")
	assert.NotContains(t, out, `index="3"`)
}

func TestParseBackground(t *testing.T) {
	b, err := ParseBackground("")
	require.NoError(t, err)
	assert.Equal(t, BackgroundTransparent, b)
	b, err = ParseBackground("Black")
	require.NoError(t, err)
	assert.Equal(t, BackgroundBlack, b)
	_, err = ParseBackground("red")
	assert.Error(t, err)
}
