package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gpl = `GIMP Palette
Name: Duo
Columns: 2
# comment
  0   0   0	black
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(gpl))
	require.NoError(t, err)
	assert.Equal(t, "Duo", p.Name)
	assert.Equal(t, []RGB{{0, 0, 0}, {255, 255, 255}}, p.Colors)
}

func TestParseGPLNeedsColors(t *testing.T) {
	_, err := ParseGPL(strings.NewReader("GIMP Palette\nName: Empty\n"))
	assert.Error(t, err)
}

func TestLookupInterpolates(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
	assert.Equal(t, RGB{0, 0, 0}, p.Lookup(-1))
	assert.Equal(t, RGB{200, 100, 50}, p.Lookup(2))
	assert.Equal(t, RGB{100, 50, 25}, p.Lookup(0.5))
}

func TestDeviationColourIsSymmetric(t *testing.T) {
	th := New(nil)
	assert.Equal(t, th.Deviation(-30), th.Deviation(30))
	assert.Equal(t, lipgloss.Color("#4caf50"), th.Deviation(0))
	assert.Equal(t, lipgloss.Color("#f44336"), th.Deviation(500))
}

func TestStepRune(t *testing.T) {
	th := New(Accuracy)
	assert.Equal(t, '▼', th.StepRune("D"))
	assert.Equal(t, '▲', th.StepRune("U"))
	assert.Equal(t, '·', th.StepRune("-"))
}
