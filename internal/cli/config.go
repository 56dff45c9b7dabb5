package cli

import (
	"fmt"
	"image/color"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	charmlog "github.com/charmbracelet/log"

	"github.com/tsawler/clauseview"
	"github.com/tsawler/clauseview/overlay"
	"github.com/tsawler/clauseview/render"
	"github.com/tsawler/clauseview/taxonomy"
)

// config is the TOML viewer configuration.
//
//	padding = 16
//	scale = 1.0
//	fill_opacity = 64
//	preview_runes = 50
//
//	[colors]
//	"Governing Law" = "#4b0082"
type config struct {
	Padding      float64           `toml:"padding"`
	Scale        float64           `toml:"scale"`
	FillOpacity  int               `toml:"fill_opacity"`
	PreviewRunes int               `toml:"preview_runes"`
	Colors       map[string]string `toml:"colors"`
}

func defaultConfig() config {
	return config{
		Padding:     render.DefaultPadding,
		Scale:       1.0,
		FillOpacity: 64,
	}
}

// loadConfig reads the TOML file at path on top of the defaults. An
// empty path returns the defaults untouched.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.FillOpacity < 0 || cfg.FillOpacity > 255 {
		return cfg, fmt.Errorf("parse %s: fill_opacity %d outside 0..255", path, cfg.FillOpacity)
	}
	return cfg, nil
}

// colorFn builds the category color resolver from the override table,
// falling through to the process-wide taxonomy. A nil map keeps the
// taxonomy as is.
func (c config) colorFn() (func(string) color.NRGBA, error) {
	if len(c.Colors) == 0 {
		return nil, nil
	}
	overrides := make(map[string]color.NRGBA, len(c.Colors))
	for category, hex := range c.Colors {
		parsed, err := parseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("color for %q: %w", category, err)
		}
		overrides[category] = parsed
	}
	return func(category string) color.NRGBA {
		if override, ok := overrides[category]; ok {
			return override
		}
		return taxonomy.Color(category)
	}, nil
}

func (c config) renderOptions(logger *charmlog.Logger, colorFn func(string) color.NRGBA) render.Options {
	opts := render.DefaultOptions()
	opts.Padding = c.Padding
	opts.DefaultScale = c.Scale
	opts.Overlay = overlay.Builder{Color: colorFn, PreviewRunes: c.PreviewRunes}
	opts.Logger = logger
	return opts
}

func (c config) compositor() overlay.Compositor {
	comp := overlay.NewCompositor()
	comp.FillAlpha = uint8(c.FillOpacity)
	return comp
}

// parseHexColor reads "#rgb", "#rrggbb" or "#rrggbbaa".
func parseHexColor(s string) (color.NRGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 8 {
		return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// newViewer assembles the facade chain every document command shares:
// the document itself, the clause records, and any color overrides.
func newViewer(docPath string, flags *rootFlags, cfg config) (*clauseview.Viewer, func(string) color.NRGBA, error) {
	colorFn, err := cfg.colorFn()
	if err != nil {
		return nil, nil, err
	}
	v := clauseview.Open(docPath).HighlightColors(colorFn)
	if flags.clauses != "" {
		v = v.ClausesFile(flags.clauses)
	}
	return v, colorFn, nil
}
