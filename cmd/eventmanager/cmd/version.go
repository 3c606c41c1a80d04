package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Информация о версии, задается через ldflags при сборке.
//
//nolint:gochecknoglobals // Устанавливается через ldflags
var (
	Version    = "dev"
	BuildDate  = "unknown"
	CommitHash = "N/A"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión del cliente",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "EventManager Client\n")
			fmt.Fprintf(out, "Version:     %s\n", Version)
			fmt.Fprintf(out, "Build Date:  %s\n", BuildDate)
			fmt.Fprintf(out, "Commit Hash: %s\n", CommitHash)
			fmt.Fprintf(out, "Go version:  %s\n", runtime.Version())
		},
	}
}
