package main

import (
	"fmt"

	cli "github.com/spf13/cobra"
	"github.com/swdee/go-annotrack/tracker"
)

// trackersCmd lists the tracker kinds and whether they can be used
var trackersCmd = &cli.Command{
	Use:   "trackers",
	Short: "List the supported tracker types",
	Args:  cli.NoArgs,
	Run: func(cmd *cli.Command, args []string) {

		registry := tracker.DefaultRegistry()
		out := cmd.OutOrStdout()

		for _, name := range tracker.KindNames() {
			if err := registry.Validate(name); err != nil {
				fmt.Fprintf(out, "%-10s (%v)\n", name, err)
				continue
			}

			fmt.Fprintf(out, "%s\n", name)
		}
	},
}
