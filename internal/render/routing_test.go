package render

import "testing"

func TestRouting_ModeFor(t *testing.T) {
	r := DefaultRouting()
	cases := []struct {
		title string
		want  Mode
	}{
		{"Strategic Shifts", ModeProse},
		{"Q3 First-Time Disclosures", ModeProse},
		{"MARKET SHARE", ModeTableHighlighted},
		{"Guidance Changes and Outlook", ModeTableHighlighted},
		{"Consumer Trends", ModeTableHighlighted},
		{"Financial Performance", ModeTableHighlighted},
		{"Appendix", ModeTable},
		{"", ModeTable},
	}
	for _, tc := range cases {
		if got := r.ModeFor(tc.title); got != tc.want {
			t.Errorf("ModeFor(%q) = %s, want %s", tc.title, got, tc.want)
		}
	}
}

func TestRouting_FirstMatchWins(t *testing.T) {
	r := Routing{
		Rules: []Rule{
			{Match: "share", Mode: ModeProse},
			{Match: "market share", Mode: ModeTableHighlighted},
		},
		Default: ModeTable,
	}
	if got := r.ModeFor("Market Share"); got != ModeProse {
		t.Errorf("expected first rule to win, got %s", got)
	}
}

func TestRouting_EmptyMatchIgnored(t *testing.T) {
	r := Routing{Rules: []Rule{{Match: "", Mode: ModeProse}}, Default: ModeTableHighlighted}
	if got := r.ModeFor("Anything"); got != ModeTableHighlighted {
		t.Errorf("expected default, got %s", got)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"table":             ModeTable,
		"grid":              ModeTable,
		"Highlighted":       ModeTableHighlighted,
		"table_highlighted": ModeTableHighlighted,
		" prose ":           ModeProse,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseMode(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseMode("bullets"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestMode_StringRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeTable, ModeTableHighlighted, ModeProse} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %s, %v", m.String(), got, err)
		}
	}
}
