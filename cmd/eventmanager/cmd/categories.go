package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/app"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
)

// categorySummary - категория с числом событий в JSON выводе.
type categorySummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Events      int    `json:"events"`
}

func newCategoriesCommand(opts *rootOptions) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "categories",
		Short: "Lista las categorías y cuántos eventos tiene cada una",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				catalog, err := a.Events.LoadCatalog(ctx, nil)
				if err != nil {
					return err
				}

				counts := make(map[int64]int, len(catalog.Categories))
				for _, e := range catalog.Events {
					counts[e.Category.ID]++
				}
				summary := make([]categorySummary, 0, len(catalog.Categories))
				for _, c := range catalog.Categories {
					summary = append(summary, categorySummary{
						ID:          c.ID,
						Name:        c.Name,
						Description: c.Description,
						Events:      counts[c.ID],
					})
				}

				if format == formatJSON {
					return printJSON(cmd.OutOrStdout(), summary)
				}
				if len(summary) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No hay categorías")
					return nil
				}
				rows := make([][]string, 0, len(summary))
				for _, s := range summary {
					rows = append(rows, []string{
						strconv.FormatInt(s.ID, 10),
						events.CategoryIcon(s.Name) + " " + s.Name,
						s.Description,
						strconv.Itoa(s.Events),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Nombre", "Descripción", "Eventos"}, rows))
				return nil
			})
		},
	}
	c.Flags().StringVarP(&format, "format", "o", formatTable, "formato de salida: table, json")
	return c
}
