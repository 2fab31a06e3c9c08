package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
)

func playlistCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "playlist",
		Short: "Show the thread playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.Playlist(ctx, app.thread, app.node)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func nextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "next <pos>",
		Short: "Move an item to play after the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.SetNext(ctx, app.thread, pos)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func playItemCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play-item <pos>",
		Short: "Jump to a playlist position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.PlayItem(ctx, app.thread, pos)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the thread playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.Clear(ctx, app.thread)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func lockCommand() *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Lock or open the playlist for edits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.Lock(ctx, app.thread, open)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "open the playlist instead of locking it")

	return cmd
}
