package theme

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
)

// WorstMs is the deviation that maps to the end of the accuracy gradient
const WorstMs = 80.0

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Down     rune // ▼ downstroke
	Up       rune // ▲ upstroke
	Rest     rune // · rest
	Empty    rune //   slot without a step
	Playhead rune // ^ under the current step
	Early    rune // « onset before the step
	Late     rune // » onset after the step
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Accuracy
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Down:     '▼',
			Up:       '▲',
			Rest:     '·',
			Empty:    ' ',
			Playhead: '^',
			Early:    '«',
			Late:     '»',
		},
	}
}

// Fixed UI roles
var (
	fg     = lipgloss.Color("#e0e0e0")
	muted  = lipgloss.Color("#6c6c6c")
	accent = lipgloss.Color("#ff79c6")
	active = lipgloss.Color("#8be9fd")
)

func (t *Theme) FG() lipgloss.Color     { return fg }
func (t *Theme) Muted() lipgloss.Color  { return muted }
func (t *Theme) Accent() lipgloss.Color { return accent }
func (t *Theme) Active() lipgloss.Color { return active }

// Deviation colours a timing error by magnitude: green on time, red at WorstMs
func (t *Theme) Deviation(ms float64) lipgloss.Color {
	return rgbToLipgloss(t.DeviationRGB(ms))
}

func (t *Theme) DeviationRGB(ms float64) RGB {
	return t.Palette.Lookup(math.Abs(ms) / WorstMs)
}

// StepRune returns the glyph for a strum direction name ("D", "U", "-")
func (t *Theme) StepRune(dir string) rune {
	switch dir {
	case "D":
		return t.Symbols.Down
	case "U":
		return t.Symbols.Up
	}
	return t.Symbols.Rest
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
