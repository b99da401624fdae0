package pattern

import "sort"

// even builds a bar of n evenly spaced steps from a direction string like "DUDU-U".
func even(dirs string, accents map[int]float64) []Step {
	n := len(dirs)
	steps := make([]Step, 0, n)
	for i, c := range dirs {
		d, err := ParseDirection(string(c))
		if err != nil {
			d = Rest
		}
		steps = append(steps, Step{
			T:      float64(i) / float64(n),
			Dir:    d,
			Accent: accents[i],
		})
	}
	return steps
}

var builtin = []*Schedule{
	{
		ID:          "down-quarters",
		Name:        "Quarter Downstrokes",
		TimeSig:     TimeSignature{4, 4},
		StepsPerBar: 4,
		Steps:       even("DDDD", map[int]float64{0: 1}),
		BPMDefault:  70,
		BPMMin:      40,
		BPMMax:      160,
		Notes:       "One downstroke per beat. Keep the wrist loose.",
	},
	{
		ID:          "eighths",
		Name:        "Straight Eighths",
		TimeSig:     TimeSignature{4, 4},
		StepsPerBar: 8,
		Steps:       even("DUDUDUDU", map[int]float64{0: 1, 4: 0.5}),
		BPMDefault:  80,
		BPMMin:      50,
		BPMMax:      180,
		Notes:       "Down on the beat, up on the and.",
	},
	{
		ID:          "folk",
		Name:        "Folk Strum (D-DU-UDU)",
		TimeSig:     TimeSignature{4, 4},
		StepsPerBar: 8,
		Steps:       even("D-DU-UDU", map[int]float64{0: 1, 2: 0.3}),
		BPMDefault:  90,
		BPMMin:      60,
		BPMMax:      160,
		Notes:       "Keep the hand moving on the rests, just miss the strings.",
	},
	{
		ID:          "waltz",
		Name:        "Waltz",
		TimeSig:     TimeSignature{3, 4},
		StepsPerBar: 6,
		Steps:       even("D-DUDU", map[int]float64{0: 1}),
		BPMDefault:  90,
		BPMMin:      60,
		BPMMax:      180,
		Notes:       "Heavy one, light two and three.",
	},
	{
		ID:          "shuffle",
		Name:        "Shuffle",
		TimeSig:     TimeSignature{4, 4},
		StepsPerBar: 8,
		Steps: []Step{
			{T: 0.0, Dir: Down, Accent: 1},
			{T: 1.0 / 6, Dir: Up},
			{T: 0.25, Dir: Down, Accent: 0.4},
			{T: 0.25 + 1.0/6, Dir: Up},
			{T: 0.5, Dir: Down, Accent: 0.7},
			{T: 0.5 + 1.0/6, Dir: Up},
			{T: 0.75, Dir: Down, Accent: 0.4},
			{T: 0.75 + 1.0/6, Dir: Up, Technique: Ghost},
		},
		BPMDefault: 85,
		BPMMin:     50,
		BPMMax:     150,
		Notes:      "Swung eighths: the upstroke sits on the last triplet.",
	},
	{
		ID:          "reggae-skank",
		Name:        "Reggae Skank",
		TimeSig:     TimeSignature{4, 4},
		StepsPerBar: 8,
		Steps: []Step{
			{T: 0.0, Dir: Rest},
			{T: 0.125, Dir: Up, Technique: Mute},
			{T: 0.25, Dir: Rest},
			{T: 0.375, Dir: Up, Accent: 0.8, Technique: Mute},
			{T: 0.5, Dir: Rest},
			{T: 0.625, Dir: Up, Technique: Mute},
			{T: 0.75, Dir: Rest},
			{T: 0.875, Dir: Up, Accent: 0.8, Technique: Mute},
		},
		BPMDefault: 75,
		BPMMin:     50,
		BPMMax:     140,
		Notes:      "Short choked upstrokes on the offbeats.",
	},
	{
		ID:          "uneven",
		Name:        "Uneven Push",
		TimeSig:     TimeSignature{4, 4},
		StepsPerBar: 4,
		Steps: []Step{
			{T: 0.0, Dir: Down, Accent: 1},
			{T: 0.2, Dir: Up},
			{T: 0.5, Dir: Down},
			{T: 0.6, Dir: Up, Technique: Palm},
		},
		BPMDefault: 100,
		BPMMin:     60,
		BPMMax:     180,
		Notes:      "Irregular spacing: listen to the gaps, not the grid.",
	},
}

// Builtin returns the built-in patterns sorted by id
func Builtin() []*Schedule {
	out := make([]*Schedule, len(builtin))
	copy(out, builtin)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup finds a built-in pattern by id
func Lookup(id string) (*Schedule, bool) {
	for _, s := range builtin {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Default is the pattern a fresh install starts on
func Default() *Schedule {
	s, _ := Lookup("eighths")
	return s
}
