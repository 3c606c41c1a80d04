package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/app"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/tui"
)

func newTUICommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Abre la interfaz interactiva",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
		a.Logger.Info().Msg("Запуск TUI")
		return tui.Start(ctx, a.TUIDeps())
	})
}
