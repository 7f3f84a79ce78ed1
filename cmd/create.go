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

// Create builds one Spotify playlist per URL.
//
// A failing URL is reported and the remaining URLs are still processed.
func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return fmt.Errorf("%w: at least one playlist URL", shared.ErrMissingArgument)
	}

	dryRun := cmd.Bool("dry-run")
	username := ""
	if !dryRun {
		var err error
		if username, err = shared.ResolveUsername(cmd.String("user"), r.config); err != nil {
			return err
		}
	}

	public := r.config.Spotify.Public
	if cmd.IsSet("public") {
		public = cmd.Bool("public")
	}

	if err := r.authenticate(ctx); err != nil {
		return err
	}

	engine := r.newEngine(!cmd.Bool("no-cache"))

	r.logger.Info("creating playlists", "urls", len(urls), "user", username, "dry_run", dryRun)

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go r.printProgress(progress, done)

	result := engine.RunBatch(ctx, urls, tasks.BatchOpts{
		RunOptions: tasks.RunOptions{Username: username, Public: public, DryRun: dryRun},
		Workers:    cmd.Int("workers"),
	}, progress)
	close(progress)
	<-done

	r.persistToken()

	var errs []error
	for _, item := range result.Items {
		if item.Err != nil {
			r.writePlain("\n%s\n", r.styles.Err("✗ %s: %v", item.URL, item.Err))
			errs = append(errs, fmt.Errorf("%s: %w", item.URL, item.Err))
			continue
		}
		r.writeSummary(item.Result)
	}

	if created := len(result.Succeeded()); created > 0 {
		if dryRun {
			r.writePlainln("%s", r.styles.Warn("Dry run: resolved %d playlist(s), nothing was created.", created))
		} else {
			r.writePlainln("%s", r.styles.OK("Created %d playlist(s) for user %s.", created, username))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d playlist(s) failed: %w", len(errs), len(urls), errors.Join(errs...))
	}
	return nil
}

func (r *Runner) writeSummary(res *tasks.RunResult) {
	r.writePlain("\n")
	r.writePlainHeader(res.Title)
	if res.Description != "" {
		r.writePlain("%s\n", res.Description)
	}
	if res.PlaylistID != "" {
		r.writePlain("Playlist: https://open.spotify.com/playlist/%s\n", res.PlaylistID)
	}
	r.writePlain("Matched: %d/%d (%.1f%%)\n", len(res.MatchedIDs()), len(res.Tracks), res.MatchPercentage())

	unmatched := res.Unmatched()
	if len(unmatched) == 0 {
		return
	}
	r.writePlain("\n%s\n", r.styles.Warn("Not found on Spotify (%d):", len(unmatched)))
	for _, t := range unmatched {
		r.writePlain("  - %s\n", t.String())
	}
}

// exportOf converts an extraction to the formatter's export.
func exportOf(ext *tasks.Extraction) *formatter.Export {
	return &formatter.Export{
		Name:        ext.Title,
		Description: ext.Description,
		SourceURL:   ext.URL,
		Episode:     ext.Episode,
	}
}
