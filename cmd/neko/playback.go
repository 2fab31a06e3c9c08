package main

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <url>",
		Short: "Remove a URL from the playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.Remove(ctx, app.thread, args[0])
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func skipCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "skip [url]",
		Short: "Skip the current item, or a specific URL",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			result, err := app.service.Skip(ctx, app.thread, app.node, url)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func playCommand() *cobra.Command {
	var at time.Duration

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Resume playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			timeMS := int64(-1)
			if cmd.Flags().Changed("at") {
				timeMS = at.Milliseconds()
			}
			result, err := app.service.Play(ctx, app.thread, app.node, timeMS)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
	cmd.Flags().DurationVar(&at, "at", 0, "position to resume from")

	return cmd
}

func pauseCommand() *cobra.Command {
	var at time.Duration

	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			timeMS := int64(-1)
			if cmd.Flags().Changed("at") {
				timeMS = at.Milliseconds()
			}
			result, err := app.service.Pause(ctx, app.thread, app.node, timeMS)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
	cmd.Flags().DurationVar(&at, "at", 0, "position to pause at")

	return cmd
}

func seekCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seek <dur>",
		Short: "Seek to a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			pos, err := time.ParseDuration(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.Seek(ctx, app.thread, pos.Milliseconds())
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func rateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <rate>",
		Short: "Set the playback rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			rate, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.SetRate(ctx, app.thread, rate)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func muteCommand() *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "mute",
		Short: "Mute or unmute the watch node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.Mute(ctx, app.thread, !off)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "unmute instead of mute")

	return cmd
}
