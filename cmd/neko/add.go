package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	mediainfo "github.com/mikey-austin/nekotv/internal/modules/media_info"
)

func addCommand() *cobra.Command {
	var (
		next bool
		temp bool
		feed bool
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Queue a video URL or every entry of a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)

			if feed {
				return addFeed(app, args[0], !next)
			}

			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.Add(ctx, app.thread, args[0], !next, temp)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}

	cmd.Flags().BoolVar(&next, "next", false, "queue right after the current item")
	cmd.Flags().BoolVar(&temp, "temp", false, "drop the item from the playlist once it has played")
	cmd.Flags().BoolVar(&feed, "feed", false, "treat the URL as an RSS/Atom feed and queue every entry")

	return cmd
}

func addFeed(app *app, feedURL string, atEnd bool) error {
	importer := mediainfo.NewFeedImporter(30 * time.Second)

	ctx, cancel := withTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := importer.Import(ctx, feedURL)
	if err != nil {
		return err
	}

	for _, item := range items {
		result, err := app.service.AddResolved(ctx, app.thread, item, atEnd)
		if err != nil {
			return err
		}
		if err := app.printer.Print(result); err != nil {
			return err
		}
	}
	return nil
}
