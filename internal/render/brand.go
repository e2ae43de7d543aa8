package render

import (
	"fmt"
	"regexp"
)

// Brand carries the visual identity applied to every rendered document.
// Colors are six-digit hex without a leading '#'.
type Brand struct {
	Name string `yaml:"name"`

	BodyFont string `yaml:"body_font"`

	TextColor    string `yaml:"text_color"`
	AccentColor  string `yaml:"accent_color"`
	RuleColor    string `yaml:"rule_color"`
	HeaderFill   string `yaml:"header_fill"`
	HeaderText   string `yaml:"header_text"`
	PositiveFill string `yaml:"positive_fill"`
	NegativeFill string `yaml:"negative_fill"`
	BorderColor  string `yaml:"border_color"`

	// FooterText is the line printed under the footer logo.
	FooterText string `yaml:"footer_text"`
	// TOCHeading titles the contents page.
	TOCHeading string `yaml:"toc_heading"`
}

// DefaultBrand returns the stock report look: navy headers, gray body text.
func DefaultBrand() Brand {
	return Brand{
		Name:         "Recon Analytics",
		BodyFont:     "Calibri Light",
		TextColor:    "595959",
		AccentColor:  "203864",
		RuleColor:    "595959",
		HeaderFill:   "203864",
		HeaderText:   "FFFFFF",
		PositiveFill: "E2EFDA",
		NegativeFill: "FCE4D6",
		BorderColor:  "CCCCCC",
		FooterText:   "www.reconanalytics.com",
		TOCHeading:   "Table of Contents",
	}
}

// Merge returns b with every non-empty field of o applied on top.
func (b Brand) Merge(o Brand) Brand {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&b.Name, o.Name)
	set(&b.BodyFont, o.BodyFont)
	set(&b.TextColor, o.TextColor)
	set(&b.AccentColor, o.AccentColor)
	set(&b.RuleColor, o.RuleColor)
	set(&b.HeaderFill, o.HeaderFill)
	set(&b.HeaderText, o.HeaderText)
	set(&b.PositiveFill, o.PositiveFill)
	set(&b.NegativeFill, o.NegativeFill)
	set(&b.BorderColor, o.BorderColor)
	set(&b.FooterText, o.FooterText)
	set(&b.TOCHeading, o.TOCHeading)
	return b
}

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// Validate checks that every color is six hex digits and the font is set.
func (b Brand) Validate() error {
	if b.BodyFont == "" {
		return fmt.Errorf("brand: body_font is required")
	}
	for name, v := range map[string]string{
		"text_color":    b.TextColor,
		"accent_color":  b.AccentColor,
		"rule_color":    b.RuleColor,
		"header_fill":   b.HeaderFill,
		"header_text":   b.HeaderText,
		"positive_fill": b.PositiveFill,
		"negative_fill": b.NegativeFill,
		"border_color":  b.BorderColor,
	} {
		if !hexColor.MatchString(v) {
			return fmt.Errorf("brand: %s %q is not a six-digit hex color", name, v)
		}
	}
	return nil
}

// Page geometry in twips (US Letter).
const (
	PageWidth    = 12240
	PageHeight   = 15840
	MarginTop    = 950
	MarginRight  = 900
	MarginBottom = 1440
	MarginLeft   = 851
	HeaderDist   = 426
	FooterDist   = 288

	// DefaultTableWidth is split evenly across columns when a table gives
	// no usable widths.
	DefaultTableWidth = 9360

	// PrintableWidth is the page width inside the margins.
	PrintableWidth = PageWidth - MarginLeft - MarginRight
)

const (
	emuPerInch  = 914400
	emuPerTwip  = 635
	defaultInch = 6.0
)
