package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icco/gridseq/internal/midi"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Run: func(cmd *cobra.Command, args []string) {
		ports := midi.OutPorts()
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No MIDI output ports found.")
			return
		}
		for _, name := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
