package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"strum-trainer/debug"
	"strum-trainer/midi"
	"strum-trainer/pattern"
)

var taptestCmd = &cobra.Command{
	Use:   "taptest",
	Short: "Click quarter notes and print the deviation of every MIDI tap",
	Long: `taptest plays the down-quarters pattern and prints each scored tap from the
MIDI input selected with --in (or the saved tapInput port). Use it to check
pad latency before practising. Stop with Ctrl+C.`,
	RunE: runTaptest,
}

func init() {
	rootCmd.AddCommand(taptestCmd)
}

func runTaptest(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.TapInput.PortName == "" {
		return errors.New("no tap input: pass --in <port name>")
	}
	p, _ := pattern.Lookup("down-quarters")

	if !debug.Enabled() {
		debug.EnableTo(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	audio := openAudio(cfg)
	defer midi.Close()
	sess, err := newSession(cfg, p, nil, audio)
	if err != nil {
		return err
	}

	dm := midi.NewDeviceManager(cfg.TapInput.PortName, cfg.TapInput.Note)
	go dm.Run(ctx)

	fmt.Printf("waiting for %q, %d bpm\n", cfg.TapInput.PortName, sess.Tempo())
	sess.Start()
	defer sess.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println(sess.Stats())
			return nil

		case ev, ok := <-dm.Events():
			if !ok {
				fmt.Println(sess.Stats())
				return nil
			}
			fmt.Printf("%s %s (%d connected)\n", ev.ID, ev.Type, len(dm.Controllers()))
			if ev.Type == midi.DeviceConnected {
				go func(c midi.Controller) {
					for tap := range c.Taps() {
						sess.TapAt(tap.Timestamp)
					}
				}(ev.Controller)
			}

		case ev := <-sess.Events():
			if ev.Result != nil {
				fmt.Printf("step %4d  %+7.1fms\n", ev.Result.StepIndex, ev.Result.DeviationMs)
			}
		}
	}
}
