package schema

import "strings"

// Theme selects the diagram color palette.
type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeDark    Theme = "dark"
	ThemeForest  Theme = "forest"
	ThemeNeutral Theme = "neutral"
)

// Look selects the rendering variant of the same layout.
type Look string

const (
	LookClassic   Look = "classic"
	LookHandDrawn Look = "handDrawn"
)

// Background selects the backing fill behind the diagram.
type Background string

const (
	BackgroundTransparent Background = "transparent"
	BackgroundWhite       Background = "white"
)

// Direction rotates the flowchart layout axis. Ignored for non-flowchart kinds.
type Direction string

const (
	DirectionTB Direction = "TB"
	DirectionBT Direction = "BT"
	DirectionLR Direction = "LR"
	DirectionRL Direction = "RL"
)

// RenderConfig controls how a validated diagram is rasterized. Values are
// request-scoped and never mutated after construction.
type RenderConfig struct {
	Theme      Theme          `json:"theme"`
	Look       Look           `json:"look"`
	Background Background     `json:"background"`
	Direction  Direction      `json:"direction"`
	Formats    []OutputFormat `json:"formats"`
	// Scale is a device-pixel-ratio multiplier for raster output.
	// Zero means the default of 1x.
	Scale float64 `json:"scale,omitempty"`
}

// DefaultRenderConfig returns the config used when a caller sets nothing:
// default theme, classic look, transparent background, top-down flow, PNG only.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Theme:      ThemeDefault,
		Look:       LookClassic,
		Background: BackgroundTransparent,
		Direction:  DirectionTB,
		Formats:    []OutputFormat{FormatPNG},
	}
}

// Validate rejects unknown enum values and empty format sets. Unknown values
// are errors at construction, never silently coerced to a default.
func (c RenderConfig) Validate() error {
	switch c.Theme {
	case ThemeDefault, ThemeDark, ThemeForest, ThemeNeutral:
	default:
		return NewErrorf(ErrCodeConfig, "unknown theme %q", c.Theme)
	}
	switch c.Look {
	case LookClassic, LookHandDrawn:
	default:
		return NewErrorf(ErrCodeConfig, "unknown look %q", c.Look)
	}
	switch c.Background {
	case BackgroundTransparent, BackgroundWhite:
	default:
		return NewErrorf(ErrCodeConfig, "unknown background %q", c.Background)
	}
	switch c.Direction {
	case DirectionTB, DirectionBT, DirectionLR, DirectionRL:
	default:
		return NewErrorf(ErrCodeConfig, "unknown direction %q", c.Direction)
	}
	if len(c.Formats) == 0 {
		return NewError(ErrCodeConfig, "at least one output format is required")
	}
	seen := map[OutputFormat]bool{}
	for _, f := range c.Formats {
		if _, err := ParseOutputFormat(string(f)); err != nil {
			return err
		}
		if seen[f] {
			return NewErrorf(ErrCodeConfig, "duplicate output format %q", f)
		}
		seen[f] = true
	}
	if c.Scale < 0 {
		return NewErrorf(ErrCodeConfig, "scale must be positive, got %v", c.Scale)
	}
	return nil
}

// EffectiveScale resolves the device-pixel-ratio multiplier.
func (c RenderConfig) EffectiveScale() float64 {
	if c.Scale == 0 {
		return 1
	}
	return c.Scale
}

// WantsFormat reports whether the config requests the given output format.
func (c RenderConfig) WantsFormat(f OutputFormat) bool {
	for _, want := range c.Formats {
		if want == f {
			return true
		}
	}
	return false
}

// ParseLook accepts both the canonical "handDrawn" spelling and the
// "hand-drawn" form seen in caller payloads.
func ParseLook(s string) (Look, error) {
	switch strings.ToLower(s) {
	case "classic":
		return LookClassic, nil
	case "handdrawn", "hand-drawn":
		return LookHandDrawn, nil
	}
	return "", NewErrorf(ErrCodeConfig, "unknown look %q", s)
}
