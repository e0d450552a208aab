package cmd

import (
	"flag"
	"fmt"
	"io"

	"github.com/localguard/localguard/pkg/capture"
)

func newDisplaysCommand() command {
	return command{
		name:        "displays",
		description: "List displays available to the capture backend",
		run: func(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
			backend := capture.NewSyntheticBackend()
			displays := backend.ListDisplays()
			if len(displays) == 0 {
				fmt.Fprintln(stdout, "No displays available.")
				return nil
			}

			fmt.Fprintf(stdout, "Available displays (%d):\n", len(displays))
			for _, display := range displays {
				fmt.Fprintf(stdout, "  %-12s %s (%dx%d)\n", display.ID, display.Name, display.Width, display.Height)
			}
			return nil
		},
	}
}
