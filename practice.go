package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"strum-trainer/config"
	"strum-trainer/debug"
	"strum-trainer/evaluate"
	"strum-trainer/history"
	"strum-trainer/metronome"
	"strum-trainer/midi"
	"strum-trainer/pattern"
	"strum-trainer/session"
	"strum-trainer/song"
	"strum-trainer/theme"
	"strum-trainer/tui"
)

const saveDelay = 500 * time.Millisecond

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Open the practice screen (default command)",
	RunE:  runPractice,
}

func init() {
	rootCmd.AddCommand(practiceCmd)
}

// choosePattern resolves --pattern, then the last used pattern, then the default
func choosePattern(cfg *config.Config) (*pattern.Schedule, error) {
	if flagPattern != "" {
		p, ok := pattern.Lookup(flagPattern)
		if !ok {
			return nil, fmt.Errorf("unknown pattern %q (have: %s)", flagPattern, strings.Join(patternIDs(), ", "))
		}
		return p, nil
	}
	if p, ok := pattern.Lookup(cfg.LastPattern); ok {
		return p, nil
	}
	return pattern.Default(), nil
}

// chooseSong resolves --song, then the last song when no --pattern was given.
// A nil song means free practice over the configured progression.
func chooseSong(cfg *config.Config) (*song.Song, error) {
	if flagSong != "" {
		sg, ok := song.Lookup(flagSong)
		if !ok {
			return nil, fmt.Errorf("unknown song %q (have: %s)", flagSong, strings.Join(songIDs(), ", "))
		}
		return sg, nil
	}
	if flagPattern != "" {
		return nil, nil
	}
	if sg, ok := song.Lookup(cfg.LastSong); ok {
		return sg, nil
	}
	return nil, nil
}

func songIDs() []string {
	var ids []string
	for _, sg := range song.Builtin() {
		ids = append(ids, sg.ID)
	}
	return ids
}

func patternIDs() []string {
	var ids []string
	for _, p := range pattern.Builtin() {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	return ids
}

// openAudio returns nil when no output port is usable; practice is then visual only
func openAudio(cfg *config.Config) session.AudioRenderer {
	r, err := midi.OpenRenderer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no MIDI output (%v), running without sound\n", err)
		debug.Log("midi", "output unavailable: %v", err)
		return nil
	}
	return r
}

// newSession builds the metronome and session for p at the chosen tempo.
// A non-nil sg replaces p with the song's pattern, chords and tempo.
func newSession(cfg *config.Config, p *pattern.Schedule, sg *song.Song, audio session.AudioRenderer, opts ...session.Option) (*session.Session, error) {
	met := metronome.New(p.BPMDefault, p.StepsPerBeat())
	sess := session.New(met, evaluate.New(), audio, opts...)
	sess.SetPattern(p)
	sess.SetProgression(cfg.Progression)
	if sg != nil {
		if err := sess.LoadSong(sg); err != nil {
			return nil, err
		}
	}

	switch {
	case flagBPM > 0:
		sess.SetTempo(flagBPM)
	case sg == nil && cfg.LastTempo > 0 && cfg.LastPattern == p.ID:
		sess.SetTempo(cfg.LastTempo)
	}
	return sess, nil
}

func runPractice(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := choosePattern(cfg)
	if err != nil {
		return err
	}
	sg, err := chooseSong(cfg)
	if err != nil {
		return err
	}

	th := theme.New(nil)
	if flagPalette != "" {
		palette, err := theme.LoadGPL(flagPalette)
		if err != nil {
			return err
		}
		th = theme.New(palette)
	}

	saver := config.NewSaver(cfg, path, saveDelay)
	audio := openAudio(cfg)
	defer midi.Close()

	sess, err := newSession(cfg, p, sg, audio,
		session.WithTempoHook(func(bpm int) {
			saver.Update(func(c *config.Config) { c.LastTempo = bpm })
		}),
		session.WithVolume(saver.Config().Volume),
		session.WithVolumeHook(func(v config.VolumeConfig) {
			saver.Update(func(c *config.Config) { c.Volume = v })
		}))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var deviceMgr *midi.DeviceManager
	if cfg.TapInput.PortName != "" {
		deviceMgr = midi.NewDeviceManager(cfg.TapInput.PortName, cfg.TapInput.Note)
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(sess, pattern.Builtin(), song.Builtin(), deviceMgr, th)
	m.OnPattern = func(p *pattern.Schedule) {
		saver.Update(func(c *config.Config) {
			c.LastPattern = p.ID
			c.LastSong = ""
		})
	}
	m.OnSong = func(sg *song.Song) {
		saver.Update(func(c *config.Config) {
			c.LastPattern = sg.PatternID
			c.LastSong = sg.ID
		})
	}

	started := time.Now()
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := prog.Run()
	sess.Stop()

	recordHistory(sess, started)
	saver.Update(func(c *config.Config) {
		c.LastPattern = sess.Pattern().ID
		c.LastSong = ""
		if sg := sess.Song(); sg != nil {
			c.LastSong = sg.ID
		}
	})
	if err := saver.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "save config: %v\n", err)
	}
	return runErr
}

// recordHistory appends a summary when the learner tapped at all
func recordHistory(sess *session.Session, started time.Time) {
	sum := sess.Stats()
	if sum.Hits == 0 {
		return
	}
	path, err := history.Path()
	if err != nil {
		debug.Log("history", "no path: %v", err)
		return
	}
	rec := history.NewRecord(sess.Pattern().ID, sess.Tempo(), started, time.Now(), sum)
	if err := history.Append(path, rec); err != nil {
		fmt.Fprintf(os.Stderr, "save history: %v\n", err)
		return
	}
	fmt.Printf("%s @ %dbpm: %s\n%s\n", rec.Pattern, rec.BPM, sum, sum.Verdict.Hint())
}
