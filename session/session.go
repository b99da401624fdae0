// Package session is the practice host: it owns the current pattern and feeds
// every metronome step to the audio renderer, the evaluator and the UI.
package session

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"strum-trainer/config"
	"strum-trainer/debug"
	"strum-trainer/evaluate"
	"strum-trainer/metronome"
	"strum-trainer/pattern"
	"strum-trainer/song"
)

// ClickKind distinguishes the downbeat click from other beats
type ClickKind int

const (
	ClickDownbeat ClickKind = iota
	ClickBeat
)

// AudioRenderer plays sounds for steps. Calls arrive on the scheduler
// goroutine and must not block.
type AudioRenderer interface {
	PlayStrum(dir pattern.Direction, accent float64, technique pattern.Technique, chord string)
	PlayClick(kind ClickKind)
}

// VolumeControl is implemented by renderers whose mixer can change mid-run
type VolumeControl interface {
	SetVolume(v config.VolumeConfig)
}

// Channel names one mixer strip
type Channel int

const (
	ChannelClick Channel = iota
	ChannelStrum
	ChannelMaster
)

func (c Channel) String() string {
	switch c {
	case ChannelClick:
		return "click"
	case ChannelStrum:
		return "strum"
	}
	return "master"
}

// Metronome is the part of *metronome.Scheduler a session drives
type Metronome interface {
	SetCallback(cb metronome.Callback)
	SetBPM(bpm int)
	BPM() int
	SetStepsPerBeat(n int)
	SetStepDuration(seconds float64)
	Start()
	Stop()
	IsRunning() bool
}

// Event is published to the UI for every step
type Event struct {
	Timestamp float64
	Step      uint64
	BarStep   int
	Bar       uint64
	Chord     string
	Section   string // song section, "" outside song mode
	Result    *evaluate.StepResult
}

const (
	// eventBuffer is how far the UI may fall behind before events are dropped
	eventBuffer = 64

	// evalLogEvery throttles per-step scoring lines in the debug log
	evalLogEvery = 16
)

// Session wires a Scheduler to an Evaluator and an AudioRenderer
type Session struct {
	met   Metronome
	eval  *evaluate.Evaluator
	stats *evaluate.Stats
	audio AudioRenderer

	pattern     atomic.Pointer[pattern.Schedule]
	song        atomic.Pointer[song.Song]
	mu          sync.RWMutex // guards progression and volume
	progression []string
	volume      config.VolumeConfig

	events   chan Event
	onTempo  func(bpm int)
	onVolume func(v config.VolumeConfig)
	now      func() float64
}

// Option configures a Session
type Option func(*Session)

// WithTempoHook is called after every effective tempo change
func WithTempoHook(fn func(bpm int)) Option {
	return func(s *Session) { s.onTempo = fn }
}

// WithVolume sets the starting mixer levels, normally the renderer's own
func WithVolume(v config.VolumeConfig) Option {
	return func(s *Session) { s.volume = clampVolume(v) }
}

// WithVolumeHook is called after every mixer change
func WithVolumeHook(fn func(v config.VolumeConfig)) Option {
	return func(s *Session) { s.onVolume = fn }
}

// WithClock replaces metronome.Now for onset timestamps
func WithClock(now func() float64) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session and installs its tick handler on met
func New(met Metronome, eval *evaluate.Evaluator, audio AudioRenderer, opts ...Option) *Session {
	s := &Session{
		met:    met,
		eval:   eval,
		stats:  evaluate.NewStats(),
		audio:  audio,
		events: make(chan Event, eventBuffer),
		now:    metronome.Now,
		volume: config.DefaultConfig().Volume,
	}
	for _, opt := range opts {
		opt(s)
	}
	met.SetCallback(s.OnTick)
	return s
}

// SetPattern swaps the schedule, applies its default tempo and clears
// scoring. Song mode ends; chords come from SetProgression again.
func (s *Session) SetPattern(p *pattern.Schedule) {
	s.song.Store(nil)
	s.pattern.Store(p)
	s.met.SetStepsPerBeat(p.StepsPerBeat())
	s.eval.Reset()
	s.stats.Reset()
	s.SetTempo(p.BPMDefault)
	debug.Log("session", "pattern %s (%s, %d steps)", p.ID, p.TimeSig, p.StepsPerBar)
}

// Pattern returns the active schedule, nil before SetPattern
func (s *Session) Pattern() *pattern.Schedule {
	return s.pattern.Load()
}

// SetProgression sets the chords cycled one per bar
func (s *Session) SetProgression(chords []string) {
	s.mu.Lock()
	s.progression = append([]string(nil), chords...)
	s.mu.Unlock()
}

// LoadSong switches to the song's pattern and chords, then applies its tempo
// clamped to the pattern range
func (s *Session) LoadSong(sg *song.Song) error {
	p, ok := sg.Pattern()
	if !ok {
		return fmt.Errorf("song %s: unknown pattern %q", sg.ID, sg.PatternID)
	}
	s.SetPattern(p)
	s.song.Store(sg)
	s.SetTempo(sg.BPM)
	debug.Log("session", "song %s (%d bars)", sg.ID, sg.Bars())
	return nil
}

// Song returns the active song, nil outside song mode
func (s *Session) Song() *song.Song {
	return s.song.Load()
}

// ChordForBar returns the chord for bar: the song's while one is loaded,
// otherwise the progression's, "" without either
func (s *Session) ChordForBar(bar uint64) string {
	if sg := s.song.Load(); sg != nil {
		return sg.ChordForBar(bar)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.progression) == 0 {
		return ""
	}
	return s.progression[bar%uint64(len(s.progression))]
}

// SetTempo clamps to the pattern range, then to the metronome range
func (s *Session) SetTempo(bpm int) {
	if p := s.pattern.Load(); p != nil {
		bpm = p.ClampBPM(bpm)
	}
	s.met.SetBPM(bpm)
	if s.onTempo != nil {
		s.onTempo(s.met.BPM())
	}
}

// AdjustTempo nudges the tempo by delta
func (s *Session) AdjustTempo(delta int) {
	s.SetTempo(s.met.BPM() + delta)
}

// Volume returns the current mixer levels
func (s *Session) Volume() config.VolumeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// SetVolume clamps levels into [0,1] and hands them to the renderer
func (s *Session) SetVolume(v config.VolumeConfig) {
	v = clampVolume(v)
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()

	if vc, ok := s.audio.(VolumeControl); ok {
		vc.SetVolume(v)
	}
	if s.onVolume != nil {
		s.onVolume(v)
	}
	debug.Log("session", "volume click=%.2f/%t strum=%.2f/%t master=%.2f",
		v.Click, v.ClickEnabled, v.Strum, v.StrumEnabled, v.Master)
}

// AdjustVolume nudges one channel's level by delta
func (s *Session) AdjustVolume(ch Channel, delta float64) {
	v := s.Volume()
	switch ch {
	case ChannelClick:
		v.Click += delta
	case ChannelStrum:
		v.Strum += delta
	case ChannelMaster:
		v.Master += delta
	}
	s.SetVolume(v)
}

// ToggleChannel switches the click or strum sound on or off
func (s *Session) ToggleChannel(ch Channel) {
	v := s.Volume()
	switch ch {
	case ChannelClick:
		v.ClickEnabled = !v.ClickEnabled
	case ChannelStrum:
		v.StrumEnabled = !v.StrumEnabled
	default:
		return
	}
	s.SetVolume(v)
}

func clampVolume(v config.VolumeConfig) config.VolumeConfig {
	v.Click = clamp01(v.Click)
	v.Strum = clamp01(v.Strum)
	v.Master = clamp01(v.Master)
	return v
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	// whole percent
	return math.Round(x*100) / 100
}

// Tempo returns the effective bpm
func (s *Session) Tempo() int {
	return s.met.BPM()
}

// Start begins playback from the first step
func (s *Session) Start() {
	s.eval.Reset()
	s.met.Start()
}

// Stop halts playback; the next Start begins at step 0 again
func (s *Session) Stop() {
	s.met.Stop()
}

// Toggle starts or stops playback
func (s *Session) Toggle() {
	if s.met.IsRunning() {
		s.Stop()
	} else {
		s.Start()
	}
}

// Running reports whether the metronome is active
func (s *Session) Running() bool {
	return s.met.IsRunning()
}

// Tap records a learner onset at the current time. Safe from any goroutine.
func (s *Session) Tap() {
	s.TapAt(s.now())
}

// TapAt records an onset with an explicit timestamp (MIDI input)
func (s *Session) TapAt(ts float64) {
	s.eval.AddOnset(ts)
}

// ResetStats clears scoring without touching playback
func (s *Session) ResetStats() {
	s.eval.Reset()
	s.stats.Reset()
}

// Stats returns the running timing summary
func (s *Session) Stats() evaluate.Summary {
	return s.stats.Summary()
}

// Events delivers one Event per step. Events are dropped while the reader lags.
func (s *Session) Events() <-chan Event {
	return s.events
}

// OnTick is the metronome callback. It runs on the scheduler goroutine.
func (s *Session) OnTick(ts float64, step uint64) {
	p := s.pattern.Load()
	if p == nil {
		return
	}

	barStep := p.BarStep(step)
	bar := p.Bar(step)
	chord := s.ChordForBar(bar)

	if st, ok := p.StepAt(step); ok {
		if st.Dir != pattern.Rest && s.audio != nil {
			s.audio.PlayStrum(st.Dir, st.Accent, st.Technique, chord)
		}

		// place the next step according to the pattern's own spacing
		s.met.SetStepDuration(p.NextStepDuration(barStep, s.met.BPM()))

		if s.audio != nil {
			switch {
			case p.IsDownbeat(barStep):
				s.audio.PlayClick(ClickDownbeat)
			case p.IsBeat(barStep):
				s.audio.PlayClick(ClickBeat)
			}
		}
	}

	ev := Event{Timestamp: ts, Step: step, BarStep: barStep, Bar: bar, Chord: chord}
	if sg := s.song.Load(); sg != nil {
		if idx, _, ok := sg.SectionForBar(bar); ok {
			ev.Section = sg.Sections[idx].Name
		}
	}
	r, ok := s.eval.AddStep(step, ts)
	s.stats.Record(r, ok)
	if ok {
		ev.Result = &r
		debug.LogEvery(evalLogEvery, "eval", "step=%d dev=%+.1fms", r.StepIndex, r.DeviationMs)
	}
	debug.LogEvery(32, "tick", "step=%d bar=%d ts=%.3f", step, bar, ts)

	select {
	case s.events <- ev:
	default:
	}
}
