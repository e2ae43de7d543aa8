package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/reportgen/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "OUTPUT_DIR", "MAX_BODY_BYTES", "ARTIFACT_TTL", "REQUIRE_API_KEY", "FILENAME_PREFIX"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "report", cfg.FilenamePrefix)
	assert.Equal(t, int64(26214400), cfg.MaxBodyBytes)
	assert.Equal(t, 24*time.Hour, cfg.ArtifactTTL)
	assert.False(t, cfg.RequireAPIKey)
}

func TestLoad_ClampsBadValues(t *testing.T) {
	t.Setenv("MAX_BODY_BYTES", "-5")
	t.Setenv("ARTIFACT_TTL", "-1h")
	t.Setenv("CLEANUP_INTERVAL", "soon")
	cfg := Load()
	assert.Equal(t, int64(26214400), cfg.MaxBodyBytes)
	assert.Equal(t, 24*time.Hour, cfg.ArtifactTTL)
	assert.Equal(t, 15*time.Minute, cfg.CleanupInterval)
}

func TestValidate(t *testing.T) {
	cfg := Config{OutputDir: "out", RequireAPIKey: true}
	assert.ErrorContains(t, cfg.Validate(), "REPORTGEN_API_KEY")

	cfg.APIKey = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.OutputDir = ""
	assert.ErrorContains(t, cfg.Validate(), "OUTPUT_DIR")
}

const sampleProfile = `
brand:
  name: Acme Research
  accent_color: "112233"
  footer_text: acme.example
routing:
  default: highlighted
  rules:
    - match: Outlook
      mode: prose
`

func TestParseProfile_Options(t *testing.T) {
	p, err := ParseProfile([]byte(sampleProfile))
	require.NoError(t, err)

	opts, err := p.Options()
	require.NoError(t, err)

	assert.Equal(t, "Acme Research", opts.Brand.Name)
	assert.Equal(t, "112233", opts.Brand.AccentColor)
	assert.Equal(t, "acme.example", opts.Brand.FooterText)
	// Unset fields keep the stock brand.
	assert.Equal(t, render.DefaultBrand().HeaderFill, opts.Brand.HeaderFill)

	assert.Equal(t, render.ModeProse, opts.Routing.ModeFor("2025 Outlook"))
	assert.Equal(t, render.ModeTableHighlighted, opts.Routing.ModeFor("Strategic Shifts"))
}

func TestParseProfile_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"unknown key": "brand:\n  typeface: Arial\n",
		"not yaml":    "brand: [",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseProfile([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestProfileOptions_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad color":   "brand:\n  header_fill: navy\n",
		"bad default": "routing:\n  default: bullets\n",
		"bad rule":    "routing:\n  rules:\n    - match: X\n      mode: chart\n",
		"empty match": "routing:\n  rules:\n    - mode: prose\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := ParseProfile([]byte(in))
			require.NoError(t, err)
			_, err = p.Options()
			assert.Error(t, err)
		})
	}
}

func TestLoadOptions(t *testing.T) {
	opts, err := LoadOptions("")
	require.NoError(t, err)
	assert.Equal(t, render.DefaultBrand(), opts.Brand)

	path := filepath.Join(t.TempDir(), "brand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleProfile), 0o644))
	opts, err = LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Research", opts.Brand.Name)

	_, err = LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
