package song

import "sort"

// Traditional tunes and exercises, one chord per bar
var builtin = []*Song{
	{
		ID:        "rising-sun",
		Title:     "House of the Rising Sun",
		Artist:    "Traditional",
		PatternID: "waltz",
		BPM:       80,
		Sections: []Section{
			{Name: "verse", Chords: []string{"Am", "C", "D", "F", "Am", "C", "E", "E"}, Repeat: 2},
			{Name: "outro", Chords: []string{"Am", "C", "D", "F", "Am", "E", "Am", "Am"}},
		},
		Notes: "Count the bar as 1-2-3 and let the bass note ring on 1.",
	},
	{
		ID:        "amazing-grace",
		Title:     "Amazing Grace",
		Artist:    "Traditional",
		PatternID: "waltz",
		BPM:       70,
		Sections: []Section{
			{Name: "verse", Chords: []string{"G", "G", "C", "G", "G", "G", "D", "D", "G", "G", "C", "G", "G", "D", "G", "G"}},
		},
	},
	{
		ID:        "oh-susanna",
		Title:     "Oh! Susanna",
		Artist:    "Stephen Foster",
		PatternID: "folk",
		BPM:       100,
		Sections: []Section{
			{Name: "verse", Chords: []string{"G", "G", "G", "D", "G", "G", "D", "G"}},
			{Name: "chorus", Chords: []string{"C", "C", "G", "D", "G", "G", "D", "G"}},
		},
	},
	{
		ID:        "red-river",
		Title:     "Red River Valley",
		Artist:    "Traditional",
		PatternID: "eighths",
		BPM:       90,
		Sections: []Section{
			{Name: "verse", Chords: []string{"G", "G", "D", "D", "G", "G", "D", "G"}},
			{Name: "chorus", Chords: []string{"G", "G", "C", "C", "G", "D", "G", "G"}},
		},
	},
	{
		ID:        "blues-e",
		Title:     "Twelve-Bar Shuffle in E",
		Artist:    "Exercise",
		PatternID: "shuffle",
		BPM:       90,
		Sections: []Section{
			{Name: "verse", Chords: []string{"E7", "E7", "E7", "E7", "A7", "A7", "E7", "E7", "B7", "A7", "E7", "B7"}, Repeat: 2},
		},
		Notes: "Swing the upstrokes late.",
	},
	{
		ID:        "skank-am",
		Title:     "Offbeat Skank in A Minor",
		Artist:    "Exercise",
		PatternID: "reggae-skank",
		BPM:       75,
		Sections: []Section{
			{Name: "verse", Chords: []string{"Am", "D", "Am", "D"}, Repeat: 2},
			{Name: "chorus", Chords: []string{"C", "G", "Am", "Am"}},
		},
	},
}

// Builtin returns the built-in songs sorted by id
func Builtin() []*Song {
	out := make([]*Song, len(builtin))
	copy(out, builtin)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup finds a built-in song by id
func Lookup(id string) (*Song, bool) {
	for _, s := range builtin {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// ForPattern lists the built-in songs strummed with patternID
func ForPattern(patternID string) []*Song {
	var out []*Song
	for _, s := range Builtin() {
		if s.PatternID == patternID {
			out = append(out, s)
		}
	}
	return out
}
