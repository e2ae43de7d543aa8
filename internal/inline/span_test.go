package inline

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Span
	}{
		{
			name: "bold suffix",
			in:   "reported **685,000 customers**",
			want: []Span{{Plain, "reported "}, {Bold, "685,000 customers"}},
		},
		{
			name: "italic middle",
			in:   "a *b* c",
			want: []Span{{Plain, "a "}, {Italic, "b"}, {Plain, " c"}},
		},
		{
			name: "bold and italic",
			in:   "**X** and *Y*",
			want: []Span{{Bold, "X"}, {Plain, " and "}, {Italic, "Y"}},
		},
		{
			name: "unmatched bold opener",
			in:   "growth **accelerated",
			want: []Span{{Plain, "growth **accelerated"}},
		},
		{
			name: "empty bold pair",
			in:   "a **** b",
			want: []Span{{Plain, "a **** b"}},
		},
		{
			name: "empty italic pair",
			in:   "**",
			want: []Span{{Plain, "**"}},
		},
		{
			name: "lone star",
			in:   "5 * rate",
			want: []Span{{Plain, "5 * rate"}},
		},
		{
			name: "triple markers",
			in:   "***x***",
			want: []Span{{Plain, "*"}, {Bold, "x"}, {Plain, "*"}},
		},
		{
			name: "inner star breaks bold pair",
			in:   "**a *b* c**",
			want: []Span{{Plain, "*"}, {Italic, "a "}, {Plain, "b"}, {Italic, " c"}, {Plain, "*"}},
		},
		{
			name: "adjacent spans",
			in:   "**up***down*",
			want: []Span{{Bold, "up"}, {Italic, "down"}},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize_PlainTextUnchanged(t *testing.T) {
	inputs := []string{
		"T-Mobile gained share.",
		"  leading and trailing  ",
		"100% of 3.5pp",
		"unicode ü ß 中文",
	}
	for _, in := range inputs {
		got := Tokenize(in)
		if len(got) != 1 || got[0].Kind != Plain || got[0].Text != in {
			t.Errorf("Tokenize(%q) = %v, want single plain span", in, got)
		}
	}
}

func TestMarkdown_RoundTrip(t *testing.T) {
	inputs := []string{
		"reported **685,000 customers**",
		"a *b* c",
		"***x***",
		"**a*",
		"growth **accelerated",
		"x ** y * z",
		"**up***down*",
		"*",
	}
	for _, in := range inputs {
		if got := Markdown(Tokenize(in)); got != in {
			t.Errorf("Markdown(Tokenize(%q)) = %q", in, got)
		}
	}
}

func TestText_StableOnReapply(t *testing.T) {
	in := "T-Mobile gained **7.6pp** share, *up* from last year."
	once := Text(Tokenize(in))
	if once != "T-Mobile gained 7.6pp share, up from last year." {
		t.Fatalf("unexpected stripped text %q", once)
	}
	twice := Text(Tokenize(once))
	if twice != once {
		t.Errorf("expected re-tokenizing to be stable, got %q", twice)
	}
}

func TestWrapped(t *testing.T) {
	tests := []struct {
		in       string
		wantText string
		wantKind Kind
		wantOK   bool
	}{
		{"**Key finding**", "Key finding", Bold, true},
		{"*Note: preliminary*", "Note: preliminary", Italic, true},
		{"**Key** finding", "", Plain, false},
		{"plain", "", Plain, false},
		{"**a*b**", "", Plain, false},
	}
	for _, tt := range tests {
		text, kind, ok := Wrapped(tt.in)
		if ok != tt.wantOK || text != tt.wantText || kind != tt.wantKind {
			t.Errorf("Wrapped(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.in, text, kind, ok, tt.wantText, tt.wantKind, tt.wantOK)
		}
	}
}
