package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func TestSplitShellWords(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"nvim", []string{"nvim"}},
		{"code --wait", []string{"code", "--wait"}},
		{"vim -c 'set ft=markdown'", []string{"vim", "-c", "set ft=markdown"}},
		{`emacs -nw "my init.el"`, []string{"emacs", "-nw", "my init.el"}},
		{`my\ editor -x`, []string{"my editor", "-x"}},
		{`say ''`, []string{"say", ""}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, splitShellWords(tc.in)); diff != "" {
			t.Fatalf("splitShellWords(%q) (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestEditorCommand_Precedence(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	if diff := cmp.Diff([]string{"vi"}, editorCommand()); diff != "" {
		t.Fatalf("fallback (-want +got):\n%s", diff)
	}
	t.Setenv("EDITOR", "nano -w")
	if diff := cmp.Diff([]string{"nano", "-w"}, editorCommand()); diff != "" {
		t.Fatalf("EDITOR (-want +got):\n%s", diff)
	}
	t.Setenv("VISUAL", "code --wait")
	if diff := cmp.Diff([]string{"code", "--wait"}, editorCommand()); diff != "" {
		t.Fatalf("VISUAL wins (-want +got):\n%s", diff)
	}
}

func TestNotesPage_EditorResultReplacesBody(t *testing.T) {
	t.Parallel()
	p, _ := loadedNotesPage(t)
	p.openEditor(p.notes[0])
	p.body.SetValue("before")

	path := filepath.Join(t.TempDir(), "edited.md")
	if err := os.WriteFile(path, []byte("after\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	p.Update(editorDoneMsg{path: path, before: "before"})

	if got := p.body.Value(); got != "after\n" {
		t.Fatalf("body: got %q", got)
	}
	if p.status != "Updated from editor (ctrl+s to save)" {
		t.Fatalf("status: %q", p.status)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("temp file should be removed, stat err=%v", err)
	}
}

func TestNotesPage_EditorResultIgnoredAfterClose(t *testing.T) {
	t.Parallel()
	p := newNotesPage("n", &fakeNotes{}, zap.NewNop())

	path := filepath.Join(t.TempDir(), "edited.md")
	if err := os.WriteFile(path, []byte("after"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	p.Update(editorDoneMsg{path: path})
	if p.body.Value() != "" || p.editing {
		t.Fatalf("closed editor must not change: body=%q", p.body.Value())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("temp file should be removed, stat err=%v", err)
	}
}
