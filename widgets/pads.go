package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pad glyphs
const (
	PadFull  = "■"
	PadEmpty = "□"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(PadFull)
}

// RenderPadRow renders a row of colored pads with spacing
func RenderPadRow(colors [][3]uint8) string {
	var out strings.Builder
	for i, c := range colors {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(c))
	}
	return out.String()
}

// RenderStrip renders colors right-aligned in a strip of width pads, so the
// newest entry always sits at the right edge. Unused slots are empty pads.
func RenderStrip(colors [][3]uint8, width int, empty lipgloss.Color) string {
	if len(colors) > width {
		colors = colors[len(colors)-width:]
	}
	emptyStyle := lipgloss.NewStyle().Foreground(empty)

	var cells []string
	for i := 0; i < width-len(colors); i++ {
		cells = append(cells, emptyStyle.Render(PadEmpty))
	}
	for _, c := range colors {
		cells = append(cells, RenderPad(c))
	}
	return strings.Join(cells, " ")
}

// RenderLegendItem renders a single legend item: "■ name"
func RenderLegendItem(color [3]uint8, name string) string {
	return fmt.Sprintf("%s %s", RenderPad(color), name)
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
