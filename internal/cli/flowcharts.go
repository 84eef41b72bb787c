package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"probel/internal/model"
	"probel/internal/service"
)

func newFlowchartsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flowcharts",
		Aliases: []string{"flowchart", "fc"},
		Short:   "Node/edge flowcharts",
	}
	cmd.AddCommand(newFlowchartsListCmd(app))
	cmd.AddCommand(newFlowchartsShowCmd(app))
	cmd.AddCommand(newFlowchartsCreateCmd(app))
	cmd.AddCommand(newFlowchartsRenameCmd(app))
	cmd.AddCommand(newFlowchartsDeleteCmd(app))
	return cmd
}

func flowchartsService(app *App) (*service.Flowcharts, error) {
	c, err := app.client()
	if err != nil {
		return nil, err
	}
	return service.NewFlowcharts(c), nil
}

func newFlowchartsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List flowcharts, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flowchartsService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			fcs, err := svc.List(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, fcs)
		},
	}
}

func newFlowchartsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <flowchart-id>",
		Short: "Show a flowchart with its nodes and edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flowchartsService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			fc, err := svc.Get(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, fc)
		},
	}
}

func newFlowchartsCreateCmd(app *App) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a flowchart with a single start node",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flowchartsService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			fc, err := svc.Create(ctx, model.Flowchart{Title: strings.TrimSpace(title), Description: description})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, fc)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Flowchart title")
	cmd.Flags().StringVar(&description, "description", "", "Free text description")
	return cmd
}

func newFlowchartsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <flowchart-id> <title>",
		Short: "Change a flowchart's title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[1])
			if title == "" {
				return writeErr(cmd, errors.New("rename: title is empty"))
			}
			svc, err := flowchartsService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			fc, err := svc.Update(ctx, args[0], model.FlowchartPatch{Title: &title})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, fc)
		},
	}
}

func newFlowchartsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <flowchart-id>",
		Short: "Delete a flowchart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flowchartsService(app)
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
