package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var sparkRunes = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Styles is the set of lipgloss styles derived from one theme.
type Styles struct {
	theme Theme

	Subtle      lipgloss.Style
	Active      lipgloss.Style
	Idle        lipgloss.Style
	Recording   lipgloss.Style
	MetricValue lipgloss.Style
	MetricLabel lipgloss.Style
	KeyHint     lipgloss.Style
	User        lipgloss.Style
	Bot         lipgloss.Style
}

func StylesFor(t Theme) Styles {
	return Styles{
		theme:       t,
		Subtle:      lipgloss.NewStyle().Foreground(t.Muted),
		Active:      lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Idle:        lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		Recording:   lipgloss.NewStyle().Bold(true).Foreground(t.Error).Blink(true),
		MetricValue: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		MetricLabel: lipgloss.NewStyle().Foreground(t.Muted),
		KeyHint:     lipgloss.NewStyle().Italic(true).Foreground(t.Muted),
		User:        lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Bot:         lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
	}
}

// GradientText colors each rune by blending from start to end in Lab space.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	a, err := colorful.Hex(string(start))
	if err != nil {
		return text
	}
	b, err := colorful.Hex(string(end))
	if err != nil {
		return text
	}

	var sb strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := a.BlendLab(b, t).Clamped()
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return sb.String()
}

// blend returns the theme color between Muted (t=0) and Accent (t=1).
func (s Styles) blend(t float64) lipgloss.Color {
	a, errA := colorful.Hex(string(s.theme.Muted))
	b, errB := colorful.Hex(string(s.theme.Accent))
	if errA != nil || errB != nil {
		return s.theme.Accent
	}
	return lipgloss.Color(a.BlendLab(b, max(0, min(1, t))).Clamped().Hex())
}

// Meter renders a fraction in [0, 1] as a bar of the given width. The
// filled part takes the accent color in proportion to the fraction.
func (s Styles) Meter(frac float64, width int) string {
	filled := max(0, min(width, int(frac*float64(width)+0.5)))
	on := lipgloss.NewStyle().Foreground(s.blend(frac)).Render(strings.Repeat("■", filled))
	off := s.Subtle.Render(strings.Repeat("·", width-filled))
	return on + off
}

// Sparkline renders the last width values, scaled to their own range.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return s.Subtle.Render(strings.Repeat("▁", width))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var sb strings.Builder
	for _, v := range values {
		norm := (v - lo) / span
		idx := max(0, min(len(sparkRunes)-1, int(norm*float64(len(sparkRunes)-1))))
		sb.WriteString(lipgloss.NewStyle().Foreground(s.blend(norm)).Render(string(sparkRunes[idx])))
	}
	return sb.String()
}

// Rule draws a dotted horizontal rule.
func (s Styles) Rule(width int) string {
	return s.Subtle.Render(strings.Repeat("┈", max(0, width)))
}
