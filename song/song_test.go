package song

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strum-trainer/config"
)

var twoPart = &Song{
	ID:        "two-part",
	PatternID: "eighths",
	BPM:       100,
	Sections: []Section{
		{Name: "verse", Chords: []string{"G", "C"}, Repeat: 2},
		{Name: "chorus", Chords: []string{"D"}},
	},
}

func TestBuiltinSongsAreValid(t *testing.T) {
	songs := Builtin()
	require.NotEmpty(t, songs)
	for _, s := range songs {
		require.NoError(t, s.Validate(), s.ID)
		p, ok := s.Pattern()
		require.True(t, ok, s.ID)
		assert.Equal(t, s.BPM, p.ClampBPM(s.BPM), "%s tempo outside its pattern range", s.ID)
	}
	for i := 1; i < len(songs); i++ {
		assert.Less(t, songs[i-1].ID, songs[i].ID)
	}
}

func TestProgressionRepeatsSections(t *testing.T) {
	assert.Equal(t, 5, twoPart.Bars())
	assert.Equal(t, []string{"G", "C", "G", "C", "D"}, twoPart.Progression())
}

func TestSectionForBarCyclesPerSection(t *testing.T) {
	cases := []struct {
		bar     uint64
		section int
		chord   string
	}{
		{0, 0, "G"},
		{1, 0, "C"},
		{2, 0, "G"},
		{3, 0, "C"},
		{4, 1, "D"},
		{5, 0, "G"}, // wraps to the top
		{9, 1, "D"},
	}
	for _, tc := range cases {
		idx, chord, ok := twoPart.SectionForBar(tc.bar)
		require.True(t, ok)
		assert.Equal(t, tc.section, idx, "bar %d", tc.bar)
		assert.Equal(t, tc.chord, chord, "bar %d", tc.bar)
		assert.Equal(t, tc.chord, twoPart.ChordForBar(tc.bar))
	}
}

func TestEmptySongHasNoChords(t *testing.T) {
	s := &Song{ID: "empty"}
	_, _, ok := s.SectionForBar(3)
	assert.False(t, ok)
	assert.Equal(t, "", s.ChordForBar(3))
}

func TestValidate(t *testing.T) {
	bad := []*Song{
		{PatternID: "eighths", BPM: 90, Sections: twoPart.Sections},
		{ID: "x", PatternID: "nope", BPM: 90, Sections: twoPart.Sections},
		{ID: "x", PatternID: "eighths", BPM: 0, Sections: twoPart.Sections},
		{ID: "x", PatternID: "eighths", BPM: 90},
		{ID: "x", PatternID: "eighths", BPM: 90, Sections: []Section{{Chords: []string{"G"}}}},
		{ID: "x", PatternID: "eighths", BPM: 90, Sections: []Section{{Name: "v"}}},
		{ID: "x", PatternID: "eighths", BPM: 90, Sections: []Section{{Name: "v", Chords: []string{"G"}, Repeat: 11}}},
	}
	for i, s := range bad {
		assert.Error(t, s.Validate(), "case %d", i)
	}
	assert.NoError(t, twoPart.Validate())
}

func TestLookupAndForPattern(t *testing.T) {
	s, ok := Lookup("oh-susanna")
	require.True(t, ok)
	assert.Equal(t, "folk", s.PatternID)

	_, ok = Lookup("missing")
	assert.False(t, ok)

	waltzes := ForPattern("waltz")
	require.Len(t, waltzes, 2)
	assert.Equal(t, "amazing-grace", waltzes[0].ID)
	assert.Empty(t, ForPattern("down-quarters"))
}

func TestBuiltinChordsHaveDefaultVoicings(t *testing.T) {
	cfg := config.DefaultConfig()
	for _, s := range Builtin() {
		for _, chord := range s.Progression() {
			assert.NotEmpty(t, cfg.Voicing(chord), "%s: no voicing for %s", s.ID, chord)
		}
	}
}
