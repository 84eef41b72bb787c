package tui

import (
	"os"
	"os/exec"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

type editorDoneMsg struct {
	path   string
	before string
	err    error
}

// editorCommand is $VISUAL, then $EDITOR, then vi, split into argv.
func editorCommand() []string {
	for _, k := range []string{"VISUAL", "EDITOR"} {
		if args := splitShellWords(os.Getenv(k)); len(args) > 0 {
			return args
		}
	}
	return []string{"vi"}
}

// openInEditor writes text to a temp file and suspends the program while
// the user's editor runs on it. The result comes back to pageID.
func openInEditor(pageID, text string) (tea.Cmd, error) {
	f, err := os.CreateTemp("", "probel-note-*.md")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	args := editorCommand()
	c := exec.Command(args[0], append(args[1:], path)...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return pageMsg{pageID: pageID, msg: editorDoneMsg{path: path, before: text, err: err}}
	}), nil
}

// readEditorResult returns the edited text and whether it differs from what
// was handed to the editor. The temp file is removed either way.
func readEditorResult(msg editorDoneMsg) (string, bool, error) {
	defer func() { _ = os.Remove(msg.path) }()
	if msg.err != nil {
		return "", false, msg.err
	}
	b, err := os.ReadFile(msg.path)
	if err != nil {
		return "", false, err
	}
	after := string(b)
	return after, strings.TrimSpace(after) != strings.TrimSpace(msg.before), nil
}

// splitShellWords splits a command line into argv. Single quotes are
// literal, double quotes group words, and a backslash escapes the next rune
// outside single quotes.
func splitShellWords(s string) []string {
	var (
		out     []string
		word    strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, inWord = true, true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote, inWord = r, true
		case quote == 0 && unicode.IsSpace(r):
			if inWord {
				out = append(out, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		out = append(out, word.String())
	}
	return out
}
