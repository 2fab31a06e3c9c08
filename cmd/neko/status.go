package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mikey-austin/nekotv/internal/core"
)

func nodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List watch nodes in the thread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.ListNodes(ctx, app.thread)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func statusCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a node's playback state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			if watch {
				return watchStatus(app)
			}
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()
			result, err := app.service.Status(ctx, app.thread, app.node)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "watch state updates")

	return cmd
}

func watchStatus(app *app) error {
	ctx := context.Background()
	initial, err := app.service.Status(ctx, app.thread, app.node)
	if err != nil {
		return err
	}
	if err := app.printer.Print(initial); err != nil {
		return err
	}

	states, errs, err := app.service.WatchStatus(ctx, app.thread, app.node)
	if err != nil {
		return err
	}

	for {
		select {
		case state, ok := <-states:
			if !ok {
				return nil
			}
			result := core.StatusResult{Thread: initial.Thread, State: state}
			if err := app.printer.Print(result); err != nil {
				return err
			}
		case err := <-errs:
			if err != nil {
				return err
			}
		}
	}
}
