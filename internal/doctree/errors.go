package doctree

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers.
type Kind string

const (
	KindValidation Kind = "validation"
	KindParse      Kind = "parse"
	KindRender     Kind = "render"
)

// Error is a structured failure. Section and Index locate the offending node
// and are -1 when not applicable.
type Error struct {
	Kind    Kind
	Section int
	Index   int
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	loc := ""
	switch {
	case e.Section >= 0 && e.Index >= 0:
		loc = fmt.Sprintf("section %d, item %d: ", e.Section, e.Index)
	case e.Section >= 0:
		loc = fmt.Sprintf("section %d: ", e.Section)
	}
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s error: %s%s", e.Kind, loc, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validationf returns a validation error not tied to a section.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Section: -1, Index: -1, Msg: fmt.Sprintf(format, args...)}
}

// NodeError returns an error located at sections[section].Content[index].
func NodeError(kind Kind, section, index int, format string, args ...any) *Error {
	return &Error{Kind: kind, Section: section, Index: index, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind carried by err, or KindRender for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindRender
}
