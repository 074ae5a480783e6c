package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/icco/gridseq/internal/pitch"
)

var pitchesCmd = &cobra.Command{
	Use:   "pitches",
	Short: "Print the row to pitch table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-5s %-6s %s\n", "Row", "Pitch", "MIDI")
		for _, row := range slices.Sorted(maps.Keys(cfg.Pitches)) {
			name := cfg.Pitches[row]
			note, err := pitch.Parse(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-5d %-6s %d\n", row, pitch.Name(note), note)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pitchesCmd)
}
