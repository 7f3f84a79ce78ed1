package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/spinsync/internal/formatter"
	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/desertthunder/spinsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Parse extracts each URL and prints the playlist that would be created. Spotify is not contacted.
func (r *Runner) Parse(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return fmt.Errorf("%w: at least one playlist URL", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		format = formatter.JSON
	}

	output := cmd.String("output")
	if output != "" && len(urls) > 1 {
		return fmt.Errorf("%w: --output takes a single URL", shared.ErrInvalidArgument)
	}

	engine := tasks.NewPlaylistEngine(tasks.EngineOpts{Fetcher: r.fetcher, Logger: r.logger})

	var errs []error
	printed := 0
	for _, url := range urls {
		ext, err := engine.Extract(ctx, url, nil)
		if err != nil {
			r.logger.Error("extraction failed", "url", url, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
			continue
		}

		export := exportOf(ext)
		if output != "" {
			if err := formatter.WriteExport(export, format, output); err != nil {
				return err
			}
			r.writePlain("%s\n", r.styles.OK("✓ %s written to %s (%d tracks)", format, output, len(ext.Episode.Tracks)))
			continue
		}

		data, err := formatter.Render(export, format)
		if err != nil {
			return err
		}
		if printed > 0 {
			r.writePlain("\n")
		}
		printed++
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
