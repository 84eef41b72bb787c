package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"probel/internal/config"
	"probel/internal/format"
	"probel/internal/logging"
	"probel/internal/service"
	"probel/internal/tui"
)

// callTimeout bounds one backend call made by a subcommand.
const callTimeout = 90 * time.Second

type App struct {
	BackendURL string
	AnonKey    string
	Shell      string
	PrettyJSON bool
	Format     string
	Verbose    bool

	cfg *config.GlobalConfig
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "probel",
		Short:        "Probel: notes, flowcharts and AI chat in the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI (floating panels)
  probel

  # Start the TUI with tabbed workspaces
  probel --shell workspaces

  # Run the backend locally
  probel serve

  # Scriptable commands
  probel notes list
  probel chats send "Summarise my week"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, fmt.Errorf("load config: %w", err))
		}
		app.cfg = cfg
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.log != nil {
			_ = app.log.Sync()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.BackendURL, "backend", envOr("PROBEL_BACKEND_URL", ""), "Backend base URL (default from config, then "+config.DefaultBackendURL+")")
	cmd.PersistentFlags().StringVar(&app.AnonKey, "anon-key", envOr("PROBEL_ANON_KEY", ""), "Public api key sent with every backend request")
	cmd.PersistentFlags().StringVar(&app.Shell, "shell", envOr("PROBEL_SHELL", ""), "TUI layout (panels|workspaces)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PROBEL_FORMAT", "json"), "Output format ("+strings.Join(format.Formats, "|")+")")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug level logging")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newAuthCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newFlowchartsCmd(app))
	cmd.AddCommand(newChatsCmd(app))

	return cmd
}

func (app *App) settings() *config.GlobalConfig {
	if app.cfg == nil {
		app.cfg = &config.GlobalConfig{}
	}
	return app.cfg
}

func (app *App) backendURL() string {
	return config.First(app.BackendURL, app.settings().BackendURL, config.DefaultBackendURL)
}

func (app *App) anonKey() string {
	return config.First(app.AnonKey, app.settings().AnonKey)
}

// aiDirect is PROBEL_AI_DIRECT when set, else the config value.
func (app *App) aiDirect() bool {
	if v := strings.TrimSpace(os.Getenv("PROBEL_AI_DIRECT")); v != "" {
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return app.settings().AIDirect
}

// logger writes to the log file: client commands share the terminal with
// their output.
func (app *App) logger() *zap.Logger {
	if app.log != nil {
		return app.log
	}
	path := os.Getenv("PROBEL_LOG")
	if path == "" {
		if p, err := config.DefaultLogPath(); err == nil {
			path = p
		}
	}
	log, err := logging.New(logging.Options{Path: path, Verbose: app.Verbose})
	if err != nil {
		log = logging.Nop()
	}
	app.log = log
	return log
}

// client builds a backend client carrying the stored session, if any.
func (app *App) client() (*service.Client, error) {
	sess, err := config.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return service.NewClient(service.Options{
		BaseURL: app.backendURL(),
		AnonKey: app.anonKey(),
		Session: sess,
		Logger:  app.logger(),
	})
}

func (app *App) ai(c *service.Client) *service.AI {
	return service.NewAI(c, service.AIOptions{
		Direct: app.aiDirect(),
		APIKey: os.Getenv("ANTHROPIC_API_KEY"),
	})
}

func runTUI(app *App) error {
	c, err := app.client()
	if err != nil {
		return err
	}
	log := app.logger()
	cfg := app.settings()
	style := ""
	if cfg.TUI != nil {
		style = cfg.TUI.MarkdownStyle
	}
	user := ""
	if s := c.Session(); s != nil {
		user = s.User.Email
	}
	log.Info("starting tui", zap.String("backend", c.BaseURL()), zap.Bool("signedIn", user != ""))
	return tui.Run(tui.Options{
		Shell:         config.First(app.Shell, cfg.Shell, tui.ShellPanels),
		Services:      tui.NewServices(c, app.ai(c), log),
		Logger:        log,
		MarkdownStyle: style,
		User:          user,
	})
}

func callCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), callTimeout)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeData(cmd *cobra.Command, app *App, v any) error {
	return writeOut(cmd, app, map[string]any{"data": v})
}

// writeErr prints the short user-facing message for err and returns err so
// the process exits non-zero.
func writeErr(cmd *cobra.Command, err error) error {
	msg := err.Error()
	var (
		te service.TransportError
		ue service.UpstreamError
		me service.MalformedResponseError
	)
	if errors.Is(err, service.ErrNotAuthenticated) || errors.Is(err, service.ErrMissingAIKey) ||
		errors.As(err, &te) || errors.As(err, &ue) || errors.As(err, &me) {
		msg = service.UserMessage(err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	return err
}
