// Package inline splits text carrying **bold** and *italic* markers into
// typed spans.
package inline

import "strings"

// Kind is the rendering style of a span.
type Kind int

const (
	Plain Kind = iota
	Bold
	Italic
)

func (k Kind) String() string {
	switch k {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	}
	return "plain"
}

// Span is a contiguous run of text with one style. Text never includes the
// markers that produced it.
type Span struct {
	Kind Kind
	Text string
}

// Tokenize scans s left to right. A "**" pair closes as Bold when the text
// between the markers is non-empty and contains no '*'; failing that, a single
// '*' pair closes as Italic under the same rule. Anything else is literal.
// Spans are never nested and adjacent literal text is merged.
func Tokenize(s string) []Span {
	var spans []Span
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Kind: Plain, Text: plain.String()})
			plain.Reset()
		}
	}

	i := 0
	for i < len(s) {
		if s[i] != '*' {
			next := strings.IndexByte(s[i:], '*')
			if next < 0 {
				plain.WriteString(s[i:])
				break
			}
			plain.WriteString(s[i : i+next])
			i += next
			continue
		}

		if end, ok := matchBold(s, i); ok {
			flush()
			spans = append(spans, Span{Kind: Bold, Text: s[i+2 : end]})
			i = end + 2
			continue
		}
		if end, ok := matchItalic(s, i); ok {
			flush()
			spans = append(spans, Span{Kind: Italic, Text: s[i+1 : end]})
			i = end + 1
			continue
		}

		plain.WriteByte('*')
		i++
	}
	flush()
	return spans
}

// matchBold reports the index of the closing "**" for an opener at i.
func matchBold(s string, i int) (int, bool) {
	if i+1 >= len(s) || s[i+1] != '*' {
		return 0, false
	}
	rel := strings.IndexByte(s[i+2:], '*')
	if rel <= 0 {
		return 0, false
	}
	end := i + 2 + rel
	if end+1 >= len(s) || s[end+1] != '*' {
		return 0, false
	}
	return end, true
}

// matchItalic reports the index of the closing '*' for an opener at i.
func matchItalic(s string, i int) (int, bool) {
	rel := strings.IndexByte(s[i+1:], '*')
	if rel <= 0 {
		return 0, false
	}
	return i + 1 + rel, true
}

// Markdown rebuilds marker syntax from spans. Markdown(Tokenize(s)) == s.
func Markdown(spans []Span) string {
	var b strings.Builder
	for _, sp := range spans {
		switch sp.Kind {
		case Bold:
			b.WriteString("**" + sp.Text + "**")
		case Italic:
			b.WriteString("*" + sp.Text + "*")
		default:
			b.WriteString(sp.Text)
		}
	}
	return b.String()
}

// Text concatenates span text without markers.
func Text(spans []Span) string {
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// Wrapped reports whether s is wholly one bold or italic span, returning the
// inner text. "**x**" yields (x, Bold); "*x*" yields (x, Italic).
func Wrapped(s string) (string, Kind, bool) {
	spans := Tokenize(s)
	if len(spans) != 1 || spans[0].Kind == Plain {
		return "", Plain, false
	}
	return spans[0].Text, spans[0].Kind, true
}
