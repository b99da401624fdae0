package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"strum-trainer/config"
	"strum-trainer/debug"
)

var (
	flagBPM     int
	flagPattern string
	flagSong    string
	flagDebug   bool
	flagOut     string
	flagIn      string
	flagPalette string
)

var rootCmd = &cobra.Command{
	Use:   "strum-trainer",
	Short: "Strumming timing trainer",
	Long: `strum-trainer plays a strumming pattern against a click and scores how
close your taps (keyboard or MIDI pad) land to each scheduled step.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupDebug,
	RunE:              runPractice,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagBPM, "bpm", 0, "tempo (default: pattern default or last used)")
	pf.StringVar(&flagPattern, "pattern", "", "pattern id (see strum-trainer patterns)")
	pf.StringVar(&flagSong, "song", "", "song id, sets pattern, chords and tempo (see strum-trainer songs)")
	pf.BoolVar(&flagDebug, "debug", false, "write a debug log to ~/.config/strum-trainer/debug.log")
	pf.StringVar(&flagOut, "out", "", "MIDI output port name substring")
	pf.StringVar(&flagIn, "in", "", "MIDI tap input port name substring")
	pf.StringVar(&flagPalette, "palette", "", "GIMP .gpl palette for deviation colours")
}

func setupDebug(cmd *cobra.Command, args []string) error {
	if !flagDebug {
		return nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	if err := debug.Enable(filepath.Join(dir, "debug.log")); err != nil {
		return fmt.Errorf("debug log: %w", err)
	}
	return nil
}

// loadConfig reads the saved config and applies command-line overrides
func loadConfig() (*config.Config, string, error) {
	path, err := config.ConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config %s: %w", path, err)
	}
	if flagOut != "" {
		cfg.Output.PortName = flagOut
	}
	if flagIn != "" {
		cfg.TapInput.PortName = flagIn
	}
	return cfg, path, nil
}

func main() {
	defer debug.Disable()
	cobra.CheckErr(rootCmd.Execute())
}
