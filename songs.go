package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"strum-trainer/song"
)

var songsCmd = &cobra.Command{
	Use:   "songs",
	Short: "List built-in songs for --song",
	Run: func(cmd *cobra.Command, args []string) {
		printSongs(os.Stdout, song.Builtin())
	},
}

func init() {
	rootCmd.AddCommand(songsCmd)
}

func printSongs(w io.Writer, songs []*song.Song) {
	for _, sg := range songs {
		var parts []string
		for _, sec := range sg.Sections {
			parts = append(parts, fmt.Sprintf("%s(%d)", sec.Name, sec.Bars()))
		}
		fmt.Fprintf(w, "%-14s %-12s %3d bpm  %-26s %s\n", sg.ID, sg.PatternID, sg.BPM, sg.Title, strings.Join(parts, " "))
	}
}
