// Package cmd содержит команды CLI eventmanager.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/app"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/config"
)

// rootOptions - глобальные флаги, доступные всем подкомандам.
type rootOptions struct {
	configPath    string
	backendURL    string
	storageDriver string
	storagePath   string
	logLevel      string
	logFormat     string
	logFile       string
}

// NewRootCommand создает дерево команд. Без подкоманды запускается TUI.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "eventmanager",
		Short: "Cliente de terminal para descubrir y gestionar eventos",
		Long: `eventmanager es un cliente de terminal para el backend de eventos.

Sin subcomando abre la interfaz interactiva (TUI). Los subcomandos permiten
consultar el catálogo, iniciar sesión y gestionar tus eventos desde scripts.

La configuración se lee en este orden: valores por defecto, archivo YAML
(--config), variables de entorno EVENTMANAGER_* y, por último, flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "ruta al archivo de configuración YAML")
	pf.StringVar(&opts.backendURL, "backend-url", "", "URL del backend (por defecto "+config.DefaultBackendURL+")")
	pf.StringVar(&opts.storageDriver, "storage", "", "almacenamiento de la sesión: memory, sqlite, kdbx")
	pf.StringVar(&opts.storagePath, "storage-path", "", "ruta al archivo de almacenamiento")
	pf.StringVar(&opts.logLevel, "log-level", "", "nivel de log: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "formato de log: json, console")
	pf.StringVar(&opts.logFile, "log-file", "", "archivo de log (por defecto "+config.DefaultLogFile+")")

	root.AddCommand(
		newTUICommand(opts),
		newEventsCommand(opts),
		newCategoriesCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newRegisterCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute запускает CLI. Вызывается из main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig читает конфигурацию и применяет явно заданные флаги.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend-url") {
		// Origin, выведенный из старого адреса, пересчитывается по новому.
		if cfg.Storage.Origin == cfg.BackendURL {
			cfg.Storage.Origin = ""
		}
		cfg.BackendURL = opts.backendURL
	}
	if flags.Changed("storage") {
		cfg.Storage.Driver = opts.storageDriver
		if !flags.Changed("storage-path") {
			cfg.Storage.Path = ""
		}
	}
	if flags.Changed("storage-path") {
		cfg.Storage.Path = opts.storagePath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}

	cfg.Normalize()
	if err = cfg.Validate(); err != nil {
		return config.Config{}, &config.Error{Path: opts.configPath, Err: err}
	}
	return cfg, nil
}

// withApp собирает приложение, выполняет fn и освобождает ресурсы.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) (err error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	a.Logger.Debug().Str("command", cmd.CommandPath()).Msg("Выполнение команды")
	return fn(cmd.Context(), a)
}
