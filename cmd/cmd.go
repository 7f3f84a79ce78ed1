// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// createCommand builds Spotify playlists from one or more pages
func createCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a Spotify playlist from each playlist page URL",
		ArgsUsage: "URL...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Spotify username that will own the playlists",
				Sources: cli.EnvVars(shared.UsernameEnv),
			},
			&cli.BoolFlag{
				Name:    "public",
				Aliases: []string{"p"},
				Usage:   "Make the playlists public",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve tracks without creating playlists",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Ignore previously resolved tracks",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Pages processed concurrently (max 4)",
				Value:   1,
			},
		},
		Action: r.Create,
	}
}

// parseCommand prints what would be sent to Spotify
func parseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Extract a playlist page and print its tracks",
		ArgsUsage: "URL...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, csv or json",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Shorthand for --format json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to a file (single URL only)",
			},
		},
		Action: r.Parse,
	}
}

// authCommand runs the OAuth2 login
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Spotify using OAuth2 and save the token",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback",
				Value: 5 * time.Minute,
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL without opening a browser",
			},
		},
		Action: r.Auth,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config file to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// cacheCommand inspects the resolved-track cache and playlist history
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect resolved tracks and created playlists",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache statistics",
				Action: r.CacheStats,
			},
			{
				Name:  "list",
				Usage: "List cached track matches",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of matches to show",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:  "history",
				Usage: "List created playlists, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Only playlists from this site",
					},
					&cli.StringFlag{
						Name:  "owner",
						Usage: "Only playlists owned by this user",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheHistory,
			},
			{
				Name:  "clear",
				Usage: "Forget every resolved track",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm deletion",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}
