package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"probel/internal/config"
	"probel/internal/model"
	"probel/internal/service"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign up, sign in and out",
	}
	cmd.AddCommand(newAuthCredentialsCmd(app, "signup", "Create an account and sign in"))
	cmd.AddCommand(newAuthCredentialsCmd(app, "login", "Sign in with email and password"))
	cmd.AddCommand(newAuthLogoutCmd(app))
	cmd.AddCommand(newAuthWhoamiCmd(app))
	return cmd
}

// readPassword takes the first line of r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newAuthCredentialsCmd(app *App, use, short string) *cobra.Command {
	var email, password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Example: strings.TrimSpace(`
probel auth ` + use + ` --email ada@example.com --password-stdin < pw.txt
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, err)
				}
				password = p
			}
			if strings.TrimSpace(email) == "" || password == "" {
				return writeErr(cmd, errors.New(use+": --email and a password are required"))
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()

			auth := service.NewAuth(c)
			var s model.Session
			if use == "signup" {
				s, err = auth.SignUp(ctx, email, password)
			} else {
				s, err = auth.SignIn(ctx, email, password)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := config.SaveSession(s); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"user": s.User, "expiresAt": s.ExpiresAt})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newAuthLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			if err := service.NewAuth(c).SignOut(ctx); err != nil {
				// The local session goes either way.
				_ = config.ClearSession()
				return writeErr(cmd, err)
			}
			if err := config.ClearSession(); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"signedOut": true})
		},
	}
}

func newAuthWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			u, err := service.NewAuth(c).CurrentUser(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, u)
		},
	}
}
