package session

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strum-trainer/config"
	"strum-trainer/debug"
	"strum-trainer/evaluate"
	"strum-trainer/metronome"
	"strum-trainer/pattern"
	"strum-trainer/song"
)

type strum struct {
	dir       pattern.Direction
	accent    float64
	technique pattern.Technique
	chord     string
}

type fakeAudio struct {
	mu     sync.Mutex
	strums []strum
	clicks []ClickKind
}

func (a *fakeAudio) PlayStrum(dir pattern.Direction, accent float64, technique pattern.Technique, chord string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.strums = append(a.strums, strum{dir, accent, technique, chord})
}

func (a *fakeAudio) PlayClick(kind ClickKind) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clicks = append(a.clicks, kind)
}

type fakeMetronome struct {
	bpm          int
	stepsPerBeat int
	durations    []float64
	running      bool
	cb           metronome.Callback
}

func (m *fakeMetronome) SetCallback(cb metronome.Callback) { m.cb = cb }
func (m *fakeMetronome) SetBPM(bpm int)                    { m.bpm = bpm }
func (m *fakeMetronome) BPM() int                          { return m.bpm }
func (m *fakeMetronome) SetStepsPerBeat(n int)             { m.stepsPerBeat = n }
func (m *fakeMetronome) SetStepDuration(d float64)         { m.durations = append(m.durations, d) }
func (m *fakeMetronome) Start()                            { m.running = true }
func (m *fakeMetronome) Stop()                             { m.running = false }
func (m *fakeMetronome) IsRunning() bool                   { return m.running }

var uneven = &pattern.Schedule{
	ID:          "uneven",
	Name:        "Uneven",
	TimeSig:     pattern.TimeSignature{Beats: 4, Unit: 4},
	StepsPerBar: 4,
	Steps: []pattern.Step{
		{T: 0.0, Dir: pattern.Down, Accent: 1.0},
		{T: 0.2, Dir: pattern.Up},
		{T: 0.5, Dir: pattern.Down},
		{T: 0.6, Dir: pattern.Up},
	},
	BPMDefault: 120,
	BPMMin:     60,
	BPMMax:     180,
}

func newTestSession(t *testing.T) (*Session, *fakeMetronome, *fakeAudio) {
	t.Helper()
	met := &fakeMetronome{bpm: 100}
	audio := &fakeAudio{}
	s := New(met, evaluate.New(), audio)
	require.NotNil(t, met.cb, "session must install its tick handler")
	s.SetPattern(uneven)
	return s, met, audio
}

func TestUnevenTimingSetsStepDurations(t *testing.T) {
	s, met, audio := newTestSession(t)
	assert.Equal(t, 120, met.bpm)
	assert.Equal(t, 1, met.stepsPerBeat)

	expected := []float64{0.4, 0.6, 0.2, 0.8}
	for idx, want := range expected {
		s.OnTick(0.0, uint64(idx))
		require.NotEmpty(t, met.durations)
		assert.InDelta(t, want, met.durations[len(met.durations)-1], 1e-9)
	}
	assert.Len(t, audio.strums, 4)
}

func TestClicksFollowBeats(t *testing.T) {
	met := &fakeMetronome{}
	audio := &fakeAudio{}
	s := New(met, evaluate.New(), audio)
	p, ok := pattern.Lookup("eighths")
	require.True(t, ok)
	s.SetPattern(p)

	for i := uint64(0); i < 8; i++ {
		s.OnTick(float64(i), i)
	}
	assert.Equal(t, []ClickKind{ClickDownbeat, ClickBeat, ClickBeat, ClickBeat}, audio.clicks)
}

func TestRestsAreSilent(t *testing.T) {
	met := &fakeMetronome{}
	audio := &fakeAudio{}
	s := New(met, evaluate.New(), audio)
	p, ok := pattern.Lookup("folk") // D-DU-UDU
	require.True(t, ok)
	s.SetPattern(p)

	for i := uint64(0); i < 8; i++ {
		s.OnTick(float64(i), i)
	}
	assert.Len(t, audio.strums, 6)
	assert.Len(t, met.durations, 8)
}

func TestChordAdvancesPerBar(t *testing.T) {
	s, _, audio := newTestSession(t)
	s.SetProgression([]string{"G", "C"})

	for i := uint64(0); i < 12; i++ {
		s.OnTick(0, i)
	}
	var chords []string
	for i := 0; i < len(audio.strums); i += 4 {
		chords = append(chords, audio.strums[i].chord)
	}
	assert.Equal(t, []string{"G", "C", "G"}, chords)
	assert.Equal(t, "", (&Session{}).ChordForBar(3))
}

func TestTapFeedsEvaluator(t *testing.T) {
	clock := 10.0
	met := &fakeMetronome{}
	s := New(met, evaluate.New(), nil, WithClock(func() float64 { return clock }))
	s.SetPattern(uneven)

	s.Tap()
	s.OnTick(10.025, 0)

	ev := <-s.Events()
	require.NotNil(t, ev.Result)
	assert.InDelta(t, -25.0, ev.Result.DeviationMs, 1e-6)

	s.OnTick(10.5, 1)
	ev = <-s.Events()
	assert.Nil(t, ev.Result)

	sum := s.Stats()
	assert.Equal(t, 2, sum.Steps)
	assert.Equal(t, 1, sum.Hits)
}

func TestSetTempoClampsToPatternRange(t *testing.T) {
	var reported []int
	met := &fakeMetronome{}
	s := New(met, evaluate.New(), nil, WithTempoHook(func(bpm int) { reported = append(reported, bpm) }))
	s.SetPattern(uneven)

	s.SetTempo(500)
	assert.Equal(t, 180, s.Tempo())
	s.AdjustTempo(-200)
	assert.Equal(t, 60, s.Tempo())
	assert.Equal(t, []int{120, 180, 60}, reported)
}

func TestSetPatternClearsScoring(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.TapAt(1)
	s.OnTick(1, 0)
	s.TapAt(2)

	s.SetPattern(uneven)
	assert.Equal(t, 0, s.Stats().Steps)
	s.OnTick(3, 0)
	assert.Nil(t, (<-drain(s)).Result)
}

// drain returns a channel yielding only the newest queued event
func drain(s *Session) <-chan Event {
	out := make(chan Event, 1)
	var last Event
	for {
		select {
		case ev := <-s.Events():
			last = ev
		default:
			out <- last
			return out
		}
	}
}

func TestToggle(t *testing.T) {
	s, met, _ := newTestSession(t)
	s.Toggle()
	assert.True(t, met.running)
	assert.True(t, s.Running())
	s.Toggle()
	assert.False(t, s.Running())
}

func TestEventsDropWhenReaderLags(t *testing.T) {
	s, _, _ := newTestSession(t)
	done := make(chan struct{})
	go func() {
		for i := uint64(0); i < eventBuffer*3; i++ {
			s.OnTick(0, i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tick handler blocked on a full event channel")
	}
	assert.Len(t, s.Events(), eventBuffer)
}

func TestWithRealScheduler(t *testing.T) {
	met := metronome.New(120, 1)
	audio := &fakeAudio{}
	s := New(met, evaluate.New(), audio)
	p, ok := pattern.Lookup("eighths")
	require.True(t, ok)
	s.SetPattern(p)
	s.SetTempo(180) // two steps per beat, ~167ms per step

	s.Start()
	defer s.Stop()

	var got []Event
	timeout := time.After(2 * time.Second)
	for len(got) < 4 {
		select {
		case ev := <-s.Events():
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("only %d events", len(got))
		}
	}
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[i-1].Step+1, got[i].Step)
		assert.InDelta(t, met.Interval(), got[i].Timestamp-got[i-1].Timestamp, 0.015)
	}
}

type mixerAudio struct {
	fakeAudio
	levels []config.VolumeConfig
}

func (a *mixerAudio) SetVolume(v config.VolumeConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.levels = append(a.levels, v)
}

func TestVolumeChangesReachRenderer(t *testing.T) {
	audio := &mixerAudio{}
	var saved []config.VolumeConfig
	start := config.VolumeConfig{Click: 0.7, Strum: 0.5, Master: 0.8, ClickEnabled: true, StrumEnabled: true}
	s := New(&fakeMetronome{}, evaluate.New(), audio,
		WithVolume(start),
		WithVolumeHook(func(v config.VolumeConfig) { saved = append(saved, v) }))
	assert.Equal(t, start, s.Volume())

	s.AdjustVolume(ChannelClick, 0.1)
	s.AdjustVolume(ChannelStrum, -0.1)
	s.AdjustVolume(ChannelMaster, 0.5)
	s.ToggleChannel(ChannelClick)
	s.ToggleChannel(ChannelMaster) // no on/off switch, ignored

	want := config.VolumeConfig{Click: 0.8, Strum: 0.4, Master: 1, ClickEnabled: false, StrumEnabled: true}
	require.Len(t, audio.levels, 4)
	assert.Equal(t, want, audio.levels[3])
	assert.Equal(t, audio.levels, saved)
	assert.Equal(t, want, s.Volume())
}

func TestVolumeWithoutMixerRenderer(t *testing.T) {
	s := New(&fakeMetronome{}, evaluate.New(), &fakeAudio{})
	assert.NotPanics(t, func() { s.SetVolume(config.VolumeConfig{Click: -1, Strum: 2}) })
	assert.Equal(t, 0.0, s.Volume().Click)
	assert.Equal(t, 1.0, s.Volume().Strum)
}

var fastSong = &song.Song{
	ID:        "fast",
	PatternID: "uneven",
	BPM:       400,
	Sections: []song.Section{
		{Name: "verse", Chords: []string{"Am", "F"}, Repeat: 2},
		{Name: "chorus", Chords: []string{"C"}},
	},
}

func TestLoadSongClampsTempoAndCyclesSections(t *testing.T) {
	met := &fakeMetronome{}
	s := New(met, evaluate.New(), nil)
	s.SetProgression([]string{"G"})

	require.NoError(t, s.LoadSong(fastSong))
	assert.Equal(t, "uneven", s.Pattern().ID)
	assert.Equal(t, s.Pattern().BPMMax, s.Tempo())
	assert.Same(t, fastSong, s.Song())

	var chords, sections []string
	for bar := uint64(0); bar < 6; bar++ {
		s.OnTick(float64(bar), bar*uint64(s.Pattern().StepsPerBar))
		ev := <-s.Events()
		chords = append(chords, ev.Chord)
		sections = append(sections, ev.Section)
	}
	assert.Equal(t, []string{"Am", "F", "Am", "F", "C", "Am"}, chords)
	assert.Equal(t, []string{"verse", "verse", "verse", "verse", "chorus", "verse"}, sections)

	// picking a pattern leaves song mode
	s.SetPattern(uneven)
	assert.Nil(t, s.Song())
	assert.Equal(t, "G", s.ChordForBar(0))
}

func TestLoadSongUnknownPattern(t *testing.T) {
	s := New(&fakeMetronome{}, evaluate.New(), nil)
	err := s.LoadSong(&song.Song{ID: "lost", PatternID: "nope", BPM: 90})
	assert.Error(t, err)
	assert.Nil(t, s.Pattern())
}

func TestScoringLogIsThrottled(t *testing.T) {
	var buf bytes.Buffer
	debug.EnableTo(&buf)
	defer debug.Disable()

	s, _, _ := newTestSession(t)
	for i := 0; i < evalLogEvery-1; i++ {
		s.TapAt(float64(i))
		s.OnTick(float64(i), uint64(i))
	}
	assert.NotContains(t, buf.String(), "dev=")

	s.TapAt(100)
	s.OnTick(100, evalLogEvery)
	assert.Equal(t, 1, strings.Count(buf.String(), "dev="))
}
