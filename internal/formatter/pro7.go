package formatter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/songslide/songslide/internal/data"
)

// Pro7Background is the slide background written into a ProPresenter export.
type Pro7Background string

const (
	BackgroundTransparent Pro7Background = "transparent"
	BackgroundBlack       Pro7Background = "black"
	BackgroundWhite       Pro7Background = "white"
)

// ParseBackground validates a background name.
func ParseBackground(s string) (Pro7Background, error) {
	switch b := Pro7Background(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackgroundTransparent, nil
	case BackgroundTransparent, BackgroundBlack, BackgroundWhite:
		return b, nil
	}
	return "", fmt.Errorf("unknown background %q (want transparent, black or white)", s)
}

// Pro7Options controls ProPresenter export.
type Pro7Options struct {
	IncludeTitleSlide bool
	Background        Pro7Background
}

type pro7Presentation struct {
	XMLName xml.Name    `xml:"ProPresenterPresentation"`
	Version string      `xml:"version,attr"`
	Meta    pro7Meta    `xml:"Meta"`
	Slides  []pro7Slide `xml:"Slides>Slide"`
}

type pro7Meta struct {
	Title  string `xml:"Title"`
	Artist string `xml:"Artist"`
	CCLI   string `xml:"CCLI"`
}

type pro7Slide struct {
	Index      int            `xml:"index,attr"`
	Background Pro7Background `xml:"Background"`
	Text       pro7Text       `xml:"Text"`
}

// pro7Text holds escaped lines joined by literal <br/> elements.
type pro7Text struct {
	Inner string `xml:",innerxml"`
}

// Pro7XML renders song as a ProPresenter 7 presentation, one slide per
// slide unit, optionally preceded by a title slide.
func Pro7XML(song *data.Song, opts Pro7Options) (string, error) {
	if opts.Background == "" {
		opts.Background = BackgroundTransparent
	}
	texts := song.TwoLineUnits
	if opts.IncludeTitleSlide {
		texts = append([]string{song.Title}, texts...)
	}

	p := pro7Presentation{
		Version: "7",
		Meta: pro7Meta{
			Title:  song.Title,
			Artist: deref(song.Artist),
			CCLI:   deref(song.CCLINumber),
		},
	}
	for i, t := range texts {
		inner, err := withBreaks(t)
		if err != nil {
			return "", err
		}
		p.Slides = append(p.Slides, pro7Slide{
			Index:      i + 1,
			Background: opts.Background,
			Text:       pro7Text{Inner: inner},
		})
	}

	var b bytes.Buffer
	b.WriteString(xml.Header)
	enc := xml.NewEncoder(&b)
	enc.Indent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("pro7: %w", err)
	}
	b.WriteString("\n")
	return b.String(), nil
}

func withBreaks(slide string) (string, error) {
	lines := strings.Split(slide, "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("<br/>")
		}
		if err := xml.EscapeText(&b, []byte(line)); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
