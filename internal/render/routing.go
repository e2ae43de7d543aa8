package render

import (
	"fmt"
	"strings"
)

// Mode selects how a table is presented.
type Mode int

const (
	// ModeTable renders a plain grid.
	ModeTable Mode = iota
	// ModeTableHighlighted renders a grid with positive/negative cell fills.
	ModeTableHighlighted
	// ModeProse renders each row as a sentence and no grid.
	ModeProse
)

func (m Mode) String() string {
	switch m {
	case ModeTableHighlighted:
		return "highlighted"
	case ModeProse:
		return "prose"
	default:
		return "table"
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "grid":
		return ModeTable, nil
	case "highlighted", "table_highlighted":
		return ModeTableHighlighted, nil
	case "prose":
		return ModeProse, nil
	}
	return ModeTable, fmt.Errorf("unknown table mode %q", s)
}

// Rule maps section titles containing Match (case-insensitive) to a Mode.
type Rule struct {
	Match string
	Mode  Mode
}

// Routing decides the table mode from the enclosing section's title. Rules
// are tried in order and the first match wins.
type Routing struct {
	Rules   []Rule
	Default Mode
}

// DefaultRouting is the stock section-title routing table.
func DefaultRouting() Routing {
	return Routing{
		Rules: []Rule{
			{Match: "First-Time Disclosures", Mode: ModeProse},
			{Match: "Strategic Shifts", Mode: ModeProse},
			{Match: "Guidance Changes", Mode: ModeTableHighlighted},
			{Match: "Consumer Trends", Mode: ModeTableHighlighted},
			{Match: "Financial Performance", Mode: ModeTableHighlighted},
			{Match: "Market Share", Mode: ModeTableHighlighted},
		},
		Default: ModeTable,
	}
}

// ModeFor returns the mode for a table inside a section titled title.
func (r Routing) ModeFor(title string) Mode {
	t := strings.ToLower(title)
	for _, rule := range r.Rules {
		if rule.Match != "" && strings.Contains(t, strings.ToLower(rule.Match)) {
			return rule.Mode
		}
	}
	return r.Default
}
