package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/app"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

var errEmptyCredentials = errors.New("ingresa usuario y contraseña")

// requireUser восстанавливает сессию из сохраненного токена и требует входа.
func requireUser(ctx context.Context, a *app.App) (*models.UserData, error) {
	a.Session.Mount(ctx)
	if err := a.Session.RequireAuth(); err != nil {
		return nil, fmt.Errorf("no has iniciado sesión, ejecuta 'eventmanager login': %w", err)
	}
	return a.Session.User(), nil
}

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var (
		username      string
		password      string
		passwordStdin bool
	)

	c := &cobra.Command{
		Use:   "login",
		Short: "Inicia sesión y guarda el token",
		Long: `Inicia sesión en el backend. El token se guarda en el almacenamiento
configurado y se reutiliza en los siguientes comandos y en la TUI.`,
		Example: `  eventmanager login --username ana
  echo "$PASSWORD" | eventmanager login --username ana --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				var err error
				if username == "" {
					if username, err = prompt(cmd, "Usuario: "); err != nil {
						return err
					}
				}
				switch {
				case passwordStdin:
					password, err = readLine(cmd.InOrStdin())
				case password == "":
					password, err = promptPassword(cmd, "Contraseña: ")
				}
				if err != nil {
					return err
				}
				if username == "" || password == "" {
					return errEmptyCredentials
				}

				if _, err = a.Session.Login(ctx, username, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "¡Bienvenido, %s!\n", a.Session.User().Username)
				return nil
			})
		},
	}

	c.Flags().StringVarP(&username, "username", "u", "", "nombre de usuario")
	c.Flags().StringVarP(&password, "password", "p", "", "contraseña (visible en el historial; mejor --password-stdin)")
	c.Flags().BoolVar(&passwordStdin, "password-stdin", false, "leer la contraseña de la entrada estándar")
	c.MarkFlagsMutuallyExclusive("password", "password-stdin")
	return c
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cierra la sesión y elimina el token guardado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(_ context.Context, a *app.App) error {
				a.Session.Logout()
				fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada")
				return nil
			})
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	var verbose bool

	c := &cobra.Command{
		Use:   "whoami",
		Short: "Muestra el usuario de la sesión actual",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				user, err := requireUser(ctx, a)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Usuario: %s\n", user.Username)
				if id, ok := user.ID(); ok {
					fmt.Fprintf(out, "ID:      %d\n", id)
				}
				if email := user.String("email"); email != "" {
					fmt.Fprintf(out, "Correo:  %s\n", email)
				}
				if !verbose {
					return nil
				}

				info, err := a.Auth.TokenInfo()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nToken:   %s\n", info.Scheme)
				if info.Subject != "" {
					fmt.Fprintf(out, "Sujeto:  %s\n", info.Subject)
				}
				if info.IssuedAt != nil {
					fmt.Fprintf(out, "Emitido: %s\n", info.IssuedAt.Local().Format(time.DateTime))
				}
				if info.ExpiresAt != nil {
					state := "vigente"
					if info.Expired(a.Now()) {
						state = "expirado"
					}
					fmt.Fprintf(out, "Expira:  %s (%s)\n", info.ExpiresAt.Local().Format(time.DateTime), state)
				}
				return nil
			})
		},
	}

	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "mostrar los datos del token")
	return c
}

func newRegisterCommand(opts *rootOptions) *cobra.Command {
	var (
		form          auth.RegisterForm
		passwordStdin bool
	)

	c := &cobra.Command{
		Use:   "register",
		Short: "Crea una cuenta nueva",
		Long: `Crea una cuenta nueva. Si no se indica --username, se usa la parte del
correo antes de '@'. Después de registrarte inicia sesión con 'eventmanager login'.`,
		Example: `  eventmanager register --first-name Juan --last-name Pérez --email juan@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				var err error
				if passwordStdin {
					if form.Password, err = readLine(cmd.InOrStdin()); err != nil {
						return err
					}
					form.ConfirmPassword = form.Password
				}
				if form.Password == "" {
					if form.Password, err = promptPassword(cmd, "Contraseña: "); err != nil {
						return err
					}
				}
				if form.ConfirmPassword == "" {
					if form.ConfirmPassword, err = promptPassword(cmd, "Confirmar contraseña: "); err != nil {
						return err
					}
				}

				user, err := a.Auth.Register(ctx, form)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"Registro exitoso. Ahora puedes iniciar sesión con tus credenciales.\nUsuario: %s\n", user.Username)
				return nil
			})
		},
	}

	f := c.Flags()
	f.StringVar(&form.FirstName, "first-name", "", "nombre")
	f.StringVar(&form.LastName, "last-name", "", "apellido")
	f.StringVar(&form.Email, "email", "", "correo electrónico")
	f.StringVar(&form.Username, "username", "", "nombre de usuario (por defecto, la parte del correo antes de '@')")
	f.StringVar(&form.Password, "password", "", "contraseña (mínimo 6 caracteres)")
	f.StringVar(&form.ConfirmPassword, "confirm-password", "", "confirmación de la contraseña")
	f.BoolVar(&passwordStdin, "password-stdin", false, "leer la contraseña de la entrada estándar")
	return c
}
