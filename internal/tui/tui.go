// Package tui is the terminal workspace: floating panels or tabbed
// workspaces hosting the notes, flowchart and AI chat pages.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"probel/internal/logging"
)

const (
	ShellPanels     = "panels"
	ShellWorkspaces = "workspaces"
)

type Options struct {
	// Shell is ShellPanels (default) or ShellWorkspaces.
	Shell         string
	Services      Services
	Logger        *zap.Logger
	MarkdownStyle string
	// User is shown in the status bar.
	User string
}

func newShell(name string) (shell, error) {
	switch name {
	case "", ShellPanels:
		return newPanelsShell(), nil
	case ShellWorkspaces:
		return newWorkspacesShell(), nil
	}
	return nil, fmt.Errorf("unknown shell %q (want %s or %s)", name, ShellPanels, ShellWorkspaces)
}

func Run(o Options) error {
	sh, err := newShell(o.Shell)
	if err != nil {
		return err
	}
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference()
	setMarkdownStyle(o.MarkdownStyle)

	log := logging.OrNop(o.Logger)
	log.Info("tui starting", zap.String("shell", sh.name()))
	m := newAppModel(sh, o.Services, log, o.User)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
