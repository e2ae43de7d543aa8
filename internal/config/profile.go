package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgallion1/reportgen/internal/render"
	"github.com/goccy/go-yaml"
)

// maxProfileBytes caps a brand profile read from disk.
const maxProfileBytes = 1 << 20

// Profile is the on-disk brand profile. Unset brand fields keep the stock
// values; a non-empty rules list replaces the stock routing.
type Profile struct {
	Brand   render.Brand   `yaml:"brand"`
	Routing RoutingProfile `yaml:"routing"`
}

// RoutingProfile is the YAML form of render.Routing.
type RoutingProfile struct {
	Default string        `yaml:"default"`
	Rules   []RuleProfile `yaml:"rules"`
}

type RuleProfile struct {
	Match string `yaml:"match"`
	Mode  string `yaml:"mode"`
}

// ParseProfile decodes a profile, rejecting unknown keys.
func ParseProfile(data []byte) (*Profile, error) {
	if len(data) == 0 {
		return nil, errors.New("brand profile is empty")
	}
	if len(data) > maxProfileBytes {
		return nil, fmt.Errorf("brand profile exceeds %d bytes", maxProfileBytes)
	}
	var p Profile
	if err := yaml.UnmarshalWithOptions(data, &p, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("brand profile: %w", err)
	}
	return &p, nil
}

// Options applies the profile on top of render.DefaultOptions and validates
// the result.
func (p *Profile) Options() (render.Options, error) {
	opts := render.DefaultOptions()
	opts.Brand = opts.Brand.Merge(p.Brand)
	if err := opts.Brand.Validate(); err != nil {
		return render.Options{}, err
	}

	if p.Routing.Default != "" {
		m, err := render.ParseMode(p.Routing.Default)
		if err != nil {
			return render.Options{}, fmt.Errorf("routing default: %w", err)
		}
		opts.Routing.Default = m
	}
	if len(p.Routing.Rules) > 0 {
		rules := make([]render.Rule, 0, len(p.Routing.Rules))
		for i, r := range p.Routing.Rules {
			if r.Match == "" {
				return render.Options{}, fmt.Errorf("routing rule %d: match is required", i)
			}
			m, err := render.ParseMode(r.Mode)
			if err != nil {
				return render.Options{}, fmt.Errorf("routing rule %d: %w", i, err)
			}
			rules = append(rules, render.Rule{Match: r.Match, Mode: m})
		}
		opts.Routing.Rules = rules
	}
	return opts, nil
}

// LoadOptions reads the profile at path. An empty path yields the stock
// options.
func LoadOptions(path string) (render.Options, error) {
	if path == "" {
		return render.DefaultOptions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return render.Options{}, fmt.Errorf("read brand profile: %w", err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return render.Options{}, err
	}
	return p.Options()
}
