package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"strum-trainer/midi"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.Close()

		fmt.Println("(waiting up to 3 seconds...)")
		ports, err := midi.ListPorts()
		if errors.Is(err, midi.ErrScanTimeout) {
			fmt.Println("TIMEOUT! The MIDI driver is hung.")
			fmt.Println("On macOS: sudo killall coreaudiod midiserver")
			return err
		}
		if err != nil {
			return err
		}

		fmt.Println("=== MIDI Input Ports ===")
		for i, name := range ports.In {
			fmt.Printf("  %d: %s\n", i, name)
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, name := range ports.Out {
			fmt.Printf("  %d: %s\n", i, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
