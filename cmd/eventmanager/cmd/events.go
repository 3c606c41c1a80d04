package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/app"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

// whenAliases - значения флага --when.
var whenAliases = map[string]events.DateBucket{ //nolint:gochecknoglobals // Таблица соответствия
	"todos":   events.BucketAll,
	"all":     events.BucketAll,
	"hoy":     events.BucketToday,
	"today":   events.BucketToday,
	"semana":  events.BucketWeek,
	"week":    events.BucketWeek,
	"mes":     events.BucketMonth,
	"month":   events.BucketMonth,
	"año":     events.BucketYear,
	"ano":     events.BucketYear,
	"year":    events.BucketYear,
	"pasados": events.BucketPast,
	"past":    events.BucketPast,
}

func parseWhen(value string) (events.DateBucket, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return events.BucketAll, nil
	}
	if b, ok := whenAliases[value]; ok {
		return b, nil
	}
	return "", fmt.Errorf("valor de --when no soportado %q (todos, hoy, semana, mes, año, pasados)", value)
}

func parseEventID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id de evento inválido %q", arg)
	}
	return id, nil
}

func newEventsCommand(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "events",
		Short: "Consulta y gestiona eventos",
	}
	c.AddCommand(
		newEventsListCommand(opts),
		newEventsShowCommand(opts),
		newEventsMineCommand(opts),
		newEventsCreateCommand(opts),
		newEventsDeleteCommand(opts),
	)
	return c
}

// eventsPage - страница событий в JSON выводе.
type eventsPage struct {
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Total      int            `json:"total"`
	Events     []models.Event `json:"events"`
}

func newEventsListCommand(opts *rootOptions) *cobra.Command {
	var (
		sel    events.Selection
		when   string
		page   int
		format string
	)

	c := &cobra.Command{
		Use:   "list",
		Short: "Lista el catálogo público de eventos",
		Long: `Lista el catálogo público de eventos. No requiere iniciar sesión.

La categoría, "hoy", "semana", "mes" y "año" se filtran en el backend;
"pasados", --day y --search se aplican en el cliente.`,
		Example: `  eventmanager events list --category Música --when semana
  eventmanager events list --day "15 de julio" --format json
  eventmanager events list --search jazz --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			bucket, err := parseWhen(when)
			if err != nil {
				return err
			}
			sel.Bucket = bucket

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if sel.Day != "" {
					day, dayErr := events.ParseDay(sel.Day, a.Now())
					if dayErr != nil {
						return dayErr
					}
					sel.Bucket, sel.Day = events.BucketSpecific, day
				}

				var categories []models.Category
				if sel.Category != events.AllLabel {
					state := a.Categories.Load(ctx)
					if state.Err != nil {
						return state.Err
					}
					categories = state.Categories
					if _, known := a.Mapper.CategoryID(sel.Category, categories); !known {
						fmt.Fprintf(cmd.ErrOrStderr(), "Aviso: categoría %q no encontrada, se muestran todas\n", sel.Category)
					}
				}

				filters, post := a.Mapper.Map(sel, categories)
				state, _ := a.Query.Execute(ctx, a.Query.ReplaceFilters(filters))
				if state.Err != nil {
					return state.Err
				}

				now := a.Now()
				result := events.Paginate(post.Apply(state.Events, now), page, events.PerPage)
				if format == formatJSON {
					return printJSON(cmd.OutOrStdout(), eventsPage{
						Page:       result.Number,
						TotalPages: result.TotalPages,
						Total:      result.Total,
						Events:     result.Items,
					})
				}

				out := cmd.OutOrStdout()
				if result.Total == 0 {
					fmt.Fprintln(out, "No se encontraron eventos")
					return nil
				}
				printEventsTable(out, result.Items, a)
				fmt.Fprintf(out, "Página %d de %d (%d eventos)\n", result.Number, result.TotalPages, result.Total)
				return nil
			})
		},
	}

	f := c.Flags()
	f.StringVarP(&sel.Category, "category", "c", events.AllLabel, "nombre de la categoría")
	f.StringVarP(&when, "when", "w", "todos", "rango de fechas: todos, hoy, semana, mes, año, pasados")
	f.StringVarP(&sel.Day, "day", "d", "", "día específico: AAAA-MM-DD, \"mañana\", \"15 de julio\"...")
	f.StringVarP(&sel.Search, "search", "s", "", "buscar por nombre")
	f.IntVar(&page, "page", 1, "número de página")
	f.StringVarP(&format, "format", "o", formatTable, "formato de salida: table, json")
	return c
}

// printEventsTable выводит события таблицей.
func printEventsTable(w io.Writer, list []models.Event, a *app.App) {
	now := a.Now()
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		card := events.NewCard(e, now)
		date := card.Date
		if card.Past {
			date += " (finalizado)"
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			card.Name,
			date,
			card.Time,
			card.Icon + " " + card.Category,
			card.Location,
			card.Price,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"ID", "Nombre", "Fecha", "Hora", "Categoría", "Ubicación", "Precio"},
		rows,
	))
}

func newEventsShowCommand(opts *rootOptions) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "show ID",
		Short: "Muestra el detalle de un evento",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				event, getErr := a.Events.Get(ctx, id)
				if getErr != nil {
					return getErr
				}
				if format == formatJSON {
					return printJSON(cmd.OutOrStdout(), event)
				}
				printEventCard(cmd.OutOrStdout(), events.NewCard(*event, a.Now()))
				return nil
			})
		},
	}
	c.Flags().StringVarP(&format, "format", "o", formatTable, "formato de salida: table, json")
	return c
}

func printEventCard(w io.Writer, card events.Card) {
	title := card.Icon + " " + card.Name
	if card.Past {
		title += " [Finalizado]"
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "Categoría:   %s\n", card.Category)
	fmt.Fprintf(w, "Fecha:       %s\n", card.LongDate)
	fmt.Fprintf(w, "Hora:        %s\n", card.Time)
	fmt.Fprintf(w, "Ubicación:   %s\n", card.Location)
	fmt.Fprintf(w, "Precio:      %s\n", card.Price)
	fmt.Fprintf(w, "Organizador: %s\n", card.Organizer)
	if card.Description != "" {
		fmt.Fprintf(w, "\n%s\n", card.Description)
	}
}

func newEventsMineCommand(opts *rootOptions) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "mine",
		Short: "Lista los eventos que creaste (requiere iniciar sesión)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				user, err := requireUser(ctx, a)
				if err != nil {
					return err
				}
				mine, err := a.Events.Mine(ctx, user)
				if err != nil {
					return err
				}
				if format == formatJSON {
					return printJSON(cmd.OutOrStdout(), mine)
				}

				out := cmd.OutOrStdout()
				if len(mine) == 0 {
					fmt.Fprintln(out, "Aún no has creado eventos")
					return nil
				}
				printEventsTable(out, mine, a)
				s := events.Summarize(mine, a.Now())
				fmt.Fprintf(out, "Total: %d  Próximos: %d  Pasados: %d\n", s.Total, s.Upcoming, s.Past)
				if len(s.Categories) > 0 {
					fmt.Fprintf(out, "Categorías: %s\n", strings.Join(s.Categories, ", "))
				}
				return nil
			})
		},
	}
	c.Flags().StringVarP(&format, "format", "o", formatTable, "formato de salida: table, json")
	return c
}

func newEventsCreateCommand(opts *rootOptions) *cobra.Command {
	var (
		form     events.CreateForm
		category string
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Crea un evento (requiere iniciar sesión)",
		Example: `  eventmanager events create --name "Meetup Go" --description "Charlas" \
    --location Bogotá --start-date 2024-07-15 --start-time 18:30 --category Tecnología`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				user, err := requireUser(ctx, a)
				if err != nil {
					return err
				}
				if form.StartDate == "" {
					form.StartDate = events.Today(a.Now())
				}
				if form.CategoryID, err = resolveCategory(ctx, a, category); err != nil {
					return err
				}

				created, err := a.Events.Create(ctx, form, user)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Evento creado: #%d %s\n", created.ID, created.Name)
				return nil
			})
		},
	}

	f := c.Flags()
	f.StringVar(&form.Name, "name", "", "nombre del evento")
	f.StringVar(&form.Description, "description", "", "descripción")
	f.StringVar(&form.Location, "location", "", "ubicación")
	f.StringVar(&form.StartDate, "start-date", "", "fecha de inicio AAAA-MM-DD (por defecto, hoy)")
	f.StringVar(&form.EndDate, "end-date", "", "fecha de fin AAAA-MM-DD (por defecto, la de inicio)")
	f.StringVar(&form.StartTime, "start-time", "", "hora de inicio HH:MM")
	f.StringVar(&form.Prize, "prize", "", "precio (vacío = Gratuito)")
	f.StringVar(&category, "category", "", "categoría: nombre o id")
	return c
}

// resolveCategory принимает id категории или ее имя.
func resolveCategory(ctx context.Context, a *app.App, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return id, nil
	}
	state := a.Categories.Load(ctx)
	if state.Err != nil {
		return 0, state.Err
	}
	id, ok := a.Mapper.CategoryID(value, state.Categories)
	if !ok {
		names := make([]string, 0, len(state.Categories))
		for _, c := range state.Categories {
			names = append(names, c.Name)
		}
		return 0, fmt.Errorf("categoría %q no encontrada (disponibles: %s)", value, strings.Join(names, ", "))
	}
	return id, nil
}

var errDeleteCancelled = errors.New("eliminación cancelada")

func newEventsDeleteCommand(opts *rootOptions) *cobra.Command {
	var yes bool

	c := &cobra.Command{
		Use:   "delete ID",
		Short: "Elimina uno de tus eventos (requiere iniciar sesión)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if _, err = requireUser(ctx, a); err != nil {
					return err
				}
				event, err := a.Events.Get(ctx, id)
				if err != nil {
					return err
				}
				if !yes {
					answer, promptErr := prompt(cmd, fmt.Sprintf(
						"¿Eliminar permanentemente el evento %q? Esta acción no se puede deshacer [s/N]: ",
						events.Sanitize(event.Name)))
					if promptErr != nil {
						return promptErr
					}
					switch strings.ToLower(answer) {
					case "s", "si", "sí", "y", "yes":
					default:
						return errDeleteCancelled
					}
				}
				if err = a.Events.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Evento eliminado: #%d %s\n", id, events.Sanitize(event.Name))
				return nil
			})
		},
	}
	c.Flags().BoolVarP(&yes, "yes", "y", false, "no pedir confirmación")
	return c
}
