package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError rejects user-supplied input. Hint is shown to the user
// alongside Message.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Hint != "" {
		fmt.Fprintf(&b, "\nHint: %s", e.Hint)
	}
	return b.String()
}

// QueryError is a lookup/search error with optional suggestions and hint.
type QueryError struct {
	Type        ErrorType
	Message     string
	Cause       error
	Suggestions []string
	Hint        string // Shown when no suggestions (e.g. empty DB)
}

type ErrorType int

const (
	ErrSongNotFound ErrorType = iota
	ErrAmbiguousSong
	ErrStore
)

func (e *QueryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Type.String(), e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, " (%v)", e.Cause)
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprint(&b, "\nDid you mean:\n")
		for _, s := range e.Suggestions {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, "\nHint: %s", e.Hint)
	}
	return b.String()
}

func (e *QueryError) Unwrap() error { return e.Cause }

func (t ErrorType) String() string {
	switch t {
	case ErrSongNotFound:
		return "song not found"
	case ErrAmbiguousSong:
		return "ambiguous song"
	case ErrStore:
		return "store error"
	default:
		return "query error"
	}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStore reports whether err is or wraps a QueryError of type ErrStore.
func IsStore(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe) && qe.Type == ErrStore
}

// IsSongNotFound reports whether err is or wraps a QueryError of type ErrSongNotFound.
func IsSongNotFound(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe) && qe.Type == ErrSongNotFound
}
