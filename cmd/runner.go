package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spinsync/internal/repositories"
	"github.com/desertthunder/spinsync/internal/retrieval"
	"github.com/desertthunder/spinsync/internal/services"
	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/desertthunder/spinsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies left nil are built from the config file in [Runner.before].
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    services.Service
	fetcher    tasks.Fetcher
	db         *sql.DB
	ownsDB     bool
	logger     *log.Logger
	output     io.Writer
	styles     *Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.Service
	Fetcher    tasks.Fetcher
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		fetcher:    opts.Fetcher,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
		styles:     defaultPalette(),
	}
}

// app returns the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:      "spinsync",
		Usage:     "Create Spotify playlists from radio station and concert setlist pages",
		Version:   "0.1.0",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("SPINSYNC_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		After:    r.after,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		createCommand, parseCommand, authCommand, setupCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the config and builds the Spotify service and page fetcher.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.configPath == "" || cmd.IsSet("config") {
		r.configPath = cmd.String("config")
	}

	if r.config == nil {
		config, err := shared.LoadConfigOrDefault(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	if r.spotify == nil {
		creds := r.config.Credentials.Spotify
		if creds.ClientID != "" && creds.ClientSecret != "" {
			svc, err := services.NewSpotifyService(creds.Map(), services.SpotifyOpts{
				SearchLimit:       r.config.Spotify.SearchLimit,
				SearchesPerSecond: r.config.Spotify.SearchesPerSecond,
				Logger:            r.logger,
			})
			if err != nil {
				return ctx, err
			}
			r.spotify = svc
		} else {
			r.logger.Debug("spotify credentials not configured", "config", r.configPath)
		}
	}

	if r.fetcher == nil {
		r.fetcher = retrieval.NewFetcher(r.config.HTTP, r.logger)
	}

	return ctx, nil
}

func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	if r.ownsDB && r.db != nil {
		err := r.db.Close()
		r.db, r.ownsDB = nil, false
		return err
	}
	return nil
}

// database opens the configured database on first use and applies migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db, r.ownsDB = db, true
	return db, nil
}

// newEngine wires the engine. A database that cannot be opened disables the track cache and history.
func (r *Runner) newEngine(useCache bool) *tasks.PlaylistEngine {
	opts := tasks.EngineOpts{
		Fetcher:       r.fetcher,
		Service:       r.spotify,
		Logger:        r.logger,
		MinConfidence: r.config.Spotify.MinConfidence,
	}

	if db, err := r.database(); err != nil {
		r.logger.Warn("database unavailable, track cache and history disabled", "error", err)
	} else {
		if useCache {
			opts.Cache = repositories.NewTrackCacheAdapter(repositories.NewTrackMatchRepository(db))
		}
		opts.History = repositories.NewPlaylistRepository(db)
	}

	return tasks.NewPlaylistEngine(opts)
}

// authenticate loads the persisted token into the Spotify service.
func (r *Runner) authenticate(ctx context.Context) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: set credentials.spotify.client_id and client_secret in %s", shared.ErrMissingCredentials, r.configPath)
	}

	oauth, ok := r.spotify.(services.OAuthService)
	if !ok {
		return nil
	}
	return oauth.Authenticate(ctx, r.config.Credentials.Spotify.Token())
}

// persistToken saves the service's token when it was refreshed during the command.
func (r *Runner) persistToken() {
	oauth, ok := r.spotify.(services.OAuthService)
	if !ok {
		return
	}

	token, err := oauth.Token()
	if err != nil {
		r.logger.Debug("no token to persist", "error", err)
		return
	}
	if token.AccessToken == r.config.Credentials.Spotify.AccessToken {
		return
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		r.logger.Warn("failed to update token", "error", err)
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "error", err)
		return
	}
	r.logger.Debug("refreshed token saved", "config", r.configPath)
}

// printProgress writes updates until progress is closed, then closes done.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	for update := range progress {
		switch update.Phase {
		case tasks.FetchPage:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.ParsePage:
			r.writePlain("📄 %s\n", update.Message)
		case tasks.ResolveTracks, tasks.AddTracks:
			r.writePlain("   %s\n", update.Message)
		case tasks.CreatePlaylist:
			r.writePlain("📝 %s\n", update.Message)
		case tasks.Batch:
			r.writePlain("%s\n", r.styles.Help("%s", update.Message))
		}
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%s\n", r.styles.Title("%s", title))
	r.writePlain("═══════════════════════════════════════\n")
}
