// Package textnorm canonicalizes free text for comparison. Every stored
// field and every query goes through Normalize before any match test.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison form of s: Unicode NFC, runs of
// whitespace collapsed to a single ASCII space, trimmed, lower-cased.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if isSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// isSpace adds the byte-order mark, which editors leave at the start of
// lyric files, to the Unicode white space set.
func isSpace(r rune) bool {
	return r == '\uFEFF' || unicode.IsSpace(r)
}

// NormalizeAny is Normalize for values of unknown type. Anything that is
// not a string (or a non-nil *string) normalizes to "".
func NormalizeAny(v any) string {
	switch x := v.(type) {
	case string:
		return Normalize(x)
	case *string:
		if x == nil {
			return ""
		}
		return Normalize(*x)
	}
	return ""
}

// Tokens splits an already-normalized string on single spaces.
func Tokens(normalized string) []string {
	parts := strings.Split(normalized, " ")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Length counts code points, not bytes.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}
