package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"probel/internal/format"
	"probel/internal/model"
	"probel/internal/service"
)

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"note"},
		Short:   "Markdown notes",
	}
	cmd.AddCommand(newNotesListCmd(app))
	cmd.AddCommand(newNotesShowCmd(app))
	cmd.AddCommand(newNotesCreateCmd(app))
	cmd.AddCommand(newNotesUpdateCmd(app))
	cmd.AddCommand(newNotesDeleteCmd(app))
	cmd.AddCommand(newNotesExportCmd(app))
	return cmd
}

func notesService(app *App) (*service.Notes, error) {
	c, err := app.client()
	if err != nil {
		return nil, err
	}
	return service.NewNotes(c), nil
}

// readContent resolves --content and --content-file ("-" is stdin).
func readContent(cmd *cobra.Command, content, file string) (string, error) {
	if file == "" {
		return content, nil
	}
	if content != "" {
		return "", errors.New("use --content or --content-file, not both")
	}
	var (
		b   []byte
		err error
	)
	if file == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(file)
	}
	return string(b), err
}

func newNotesListCmd(app *App) *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := notesService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			notes, err := svc.List(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := notes[:0:0]
			for _, n := range notes {
				if n.IsArchived == archived {
					out = append(out, n)
				}
			}
			return writeData(cmd, app, out)
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "List archived notes instead")
	return cmd
}

func newNotesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <note-id>",
		Short: "Show one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := notesService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			n, err := svc.Get(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, n)
		},
	}
}

func newNotesCreateCmd(app *App) *cobra.Command {
	var title, content, contentFile string
	var tags []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note (empty title becomes Untitled)",
		Example: strings.TrimSpace(`
probel notes create --title "Ideas" --tags work,later --content "- ship it"
probel notes create --title "Minutes" --content-file - < minutes.md
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readContent(cmd, content, contentFile)
			if err != nil {
				return writeErr(cmd, err)
			}
			svc, err := notesService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			n, err := svc.Create(ctx, model.Note{Title: strings.TrimSpace(title), Content: body, Tags: cleanTags(tags)})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, n)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Note title")
	cmd.Flags().StringVar(&content, "content", "", "Markdown body")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Read the body from a file (- for stdin)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma separated tags")
	return cmd
}

func cleanTags(in []string) []string {
	out := []string{}
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func newNotesUpdateCmd(app *App) *cobra.Command {
	var title, content, contentFile string
	var tags []string
	var archived bool
	cmd := &cobra.Command{
		Use:   "update <note-id>",
		Short: "Change only the given fields of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p model.NotePatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				t := strings.TrimSpace(title)
				p.Title = &t
			}
			if anyChanged(flags, "content", "content-file") {
				body, err := readContent(cmd, content, contentFile)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Content = &body
			}
			if flags.Changed("tags") {
				ts := cleanTags(tags)
				p.Tags = &ts
			}
			if flags.Changed("archived") {
				p.IsArchived = &archived
			}
			if p == (model.NotePatch{}) {
				return writeErr(cmd, errors.New("update: nothing to change"))
			}
			svc, err := notesService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			n, err := svc.Update(ctx, args[0], p)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, n)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New markdown body")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Read the new body from a file (- for stdin)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Replace the tags")
	cmd.Flags().BoolVar(&archived, "archived", false, "Archive or unarchive")
	return cmd
}

func newNotesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := notesService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			if err := svc.Delete(ctx, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"id": args[0], "deleted": true})
		},
	}
}

func newNotesExportCmd(app *App) *cobra.Command {
	var html bool
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <note-id>",
		Short: "Write a note as markdown or a standalone HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := notesService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			n, err := svc.Get(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				w = f
			}
			if html {
				err = format.WriteNoteHTML(w, n)
			} else {
				_, err = fmt.Fprintf(w, "# %s\n\n%s\n", n.Title, strings.TrimRight(n.Content, "\n"))
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "Render markdown to an HTML page")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

// anyChanged reports whether any of the named flags was set on the command line.
func anyChanged(fs *pflag.FlagSet, names ...string) bool {
	for _, n := range names {
		if fs.Changed(n) {
			return true
		}
	}
	return false
}
