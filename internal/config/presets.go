package config

import "sort"

// Presets are the named effects: a page background, the icon and send
// button variants, and two slower ones.
var Presets = map[string]*Config{
	"background": {
		Gap: 5, Speed: 35, Colors: DefaultColors, Variant: "default",
		FPS: DefaultFPS, DPR: DefaultDPR,
	},
	"icon": {
		Gap: 4, Speed: 60, Colors: "#ffffff,#ffd700,#87ceeb", Variant: "icon",
		FPS: DefaultFPS, DPR: DefaultDPR,
	},
	"send-button": {
		Gap: 4, Speed: 60, Colors: "#ffffff,#ffd700,#87ceeb", Variant: "icon", NoFocus: true,
		FPS: DefaultFPS, DPR: DefaultDPR,
	},
	"calm": {
		Gap: 8, Speed: 10, Colors: "#e0f2fe,#bae6fd,#7dd3fc", Variant: "default",
		FPS: 30, DPR: DefaultDPR,
	},
	"still": {
		Gap: 6, Speed: 35, Colors: DefaultColors, Variant: "default", ReducedMotion: true,
		FPS: DefaultFPS, DPR: DefaultDPR,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
