package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/pixelcanvas/internal/driver"
	"github.com/san-kum/pixelcanvas/internal/field"
	"github.com/san-kum/pixelcanvas/internal/pixel"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGap    = 5
	MinGap        = 4
	MaxGap        = 50
	DefaultSpeed  = 35.0
	MaxSpeed      = 100.0
	SpeedScale    = 0.001
	DefaultColors = "#f8fafc,#f1f5f9,#cbd5e1"
	DefaultFPS    = 60
	DefaultDPR    = 1.0

	// ReducedMotionEnv mirrors the host's prefers-reduced-motion setting.
	ReducedMotionEnv = "PIXELCANVAS_REDUCED_MOTION"
)

var ErrBadColor = errors.New("config: invalid color token")

type Config struct {
	Gap           int     `yaml:"gap" toml:"gap" json:"gap"`
	Speed         float64 `yaml:"speed" toml:"speed" json:"speed"`
	Colors        string  `yaml:"colors" toml:"colors" json:"colors"`
	Variant       string  `yaml:"variant" toml:"variant" json:"variant"`
	NoFocus       bool    `yaml:"no_focus" toml:"no_focus" json:"no_focus"`
	ReducedMotion bool    `yaml:"reduced_motion" toml:"reduced_motion" json:"reduced_motion"`
	FPS           int     `yaml:"fps" toml:"fps" json:"fps"`
	DPR           float64 `yaml:"dpr" toml:"dpr" json:"dpr"`
	Seed          int64   `yaml:"seed" toml:"seed" json:"seed"`
}

// Options is the normalized, immutable form handed to the engine.
type Options struct {
	Field   field.Options
	NoFocus bool
	FPS     int
	DPR     float64
}

func DefaultConfig() *Config {
	return &Config{
		Gap:     DefaultGap,
		Speed:   DefaultSpeed,
		Colors:  DefaultColors,
		Variant: string(field.VariantDefault),
		FPS:     DefaultFPS,
		DPR:     DefaultDPR,
	}
}

// Load reads a YAML or TOML file (by extension) over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
			return err
		}
		data = []byte(b.String())
	default:
		var err error
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv lets the environment force reduced motion.
func (c *Config) ApplyEnv() {
	switch strings.ToLower(os.Getenv(ReducedMotionEnv)) {
	case "1", "true", "yes", "reduce":
		c.ReducedMotion = true
	}
}

// Options clamps every value into range and parses the palette.
func (c *Config) Options() (Options, error) {
	palette, err := ParsePalette(c.Colors)
	if err != nil {
		return Options{}, err
	}

	fps := c.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	dpr := c.DPR
	if dpr <= 0 {
		dpr = DefaultDPR
	}

	return Options{
		Field: field.Options{
			Gap:           ClampGap(c.Gap),
			Speed:         ScaleSpeed(c.Speed, c.ReducedMotion),
			Palette:       palette,
			Variant:       field.ParseVariant(c.Variant),
			ReducedMotion: c.ReducedMotion,
		},
		NoFocus: c.NoFocus,
		FPS:     fps,
		DPR:     dpr,
	}, nil
}

// Interval is the frame interval for the configured rate.
func (o Options) Interval() time.Duration { return driver.IntervalForRate(o.FPS) }

// ClampGap treats zero as unset and clamps to [MinGap, MaxGap].
func ClampGap(gap int) int {
	if gap == 0 {
		gap = DefaultGap
	}
	return max(MinGap, min(MaxGap, gap))
}

// ScaleSpeed treats zero as unset, clamps to [0, MaxSpeed] and scales.
func ScaleSpeed(speed float64, reducedMotion bool) float64 {
	if reducedMotion {
		return 0
	}
	if speed == 0 {
		speed = DefaultSpeed
	}
	return max(0, min(MaxSpeed, speed)) * SpeedScale
}

// ParsePalette splits a comma separated list of hex colors.
func ParsePalette(s string) ([]pixel.Swatch, error) {
	var palette []pixel.Swatch
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		c, err := colorful.Hex(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadColor, tok)
		}
		r, g, b := c.RGB255()
		palette = append(palette, pixel.Swatch{Token: tok, RGBA: color.RGBA{R: r, G: g, B: b, A: 255}})
	}
	if len(palette) == 0 {
		return nil, pixel.ErrEmptyPalette
	}
	return palette, nil
}

// JoinColors is the inverse of ParsePalette for a list of tokens.
func JoinColors(tokens []string) string { return strings.Join(tokens, ",") }
