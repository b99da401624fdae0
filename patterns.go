package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"strum-trainer/history"
	"strum-trainer/pattern"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List built-in patterns with your best result on each",
	RunE: func(cmd *cobra.Command, args []string) error {
		var records []history.Record
		if path, err := history.Path(); err == nil {
			records, err = history.Load(path)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
		}
		printPatterns(os.Stdout, pattern.Builtin(), history.Best(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}

func printPatterns(w io.Writer, patterns []*pattern.Schedule, best map[string]history.Record) {
	for _, p := range patterns {
		var row strings.Builder
		for i := 0; i < p.StepsPerBar; i++ {
			if st, ok := p.StepAt(uint64(i)); ok {
				row.WriteString(st.Dir.String())
			} else {
				row.WriteByte('.')
			}
		}
		fmt.Fprintf(w, "%-14s %-4s %3d-%-3d bpm  %-12s %s", p.ID, p.TimeSig, p.BPMMin, p.BPMMax, row.String(), p.Name)
		if r, ok := best[p.ID]; ok {
			fmt.Fprintf(w, "  best %.1fms @ %dbpm", r.MeanAbsDevMs, r.BPM)
		}
		fmt.Fprintln(w)
	}
}
