package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/desertthunder/spinsync/internal/server"
	"github.com/desertthunder/spinsync/internal/services"
	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Auth performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	oauth, ok := r.spotify.(services.OAuthService)
	if !ok {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	addr, path, err := r.callbackAddr()
	if err != nil {
		return err
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(oauth, state, path)
	authURL := oauth.AuthURL(state)

	r.writePlain("Authorize spinsync in your browser:\n%s\n\n", authURL)
	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("could not open browser; open the URL above manually", "error", err)
		}
	}
	r.writePlain("%s\n", r.styles.Help("Waiting for the callback on %s%s ...", addr, path))

	waitCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	token, err := server.WaitForCallback(waitCtx, addr, handler, r.logger)
	if err != nil {
		return err
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("%s", r.styles.OK("✓ Authorization successful"))
	r.writePlain("✓ Tokens saved to %s\n", r.configPath)

	if user, err := oauth.CurrentUser(ctx); err != nil {
		r.logger.Warn("failed to look up current user", "error", err)
	} else {
		r.writePlain("✓ Logged in as %s\n", user)
		if r.config.Spotify.Username == "" {
			r.writePlain("%s\n", r.styles.Help("Set spotify.username = %q in %s or export %s to skip --user.", user, r.configPath, shared.UsernameEnv))
		}
	}

	return nil
}

// callbackAddr derives the listen address and path from the redirect URI,
// falling back to the [server] section when the URI has no host.
func (r *Runner) callbackAddr() (string, string, error) {
	redirect := r.config.Credentials.Spotify.RedirectURI
	if redirect == "" {
		redirect = services.DefaultRedirectURI
	}

	u, err := url.Parse(redirect)
	if err != nil {
		return "", "", fmt.Errorf("%w: redirect_uri %q: %v", shared.ErrInvalidConfig, redirect, err)
	}

	if u.Host != "" {
		host, port := u.Hostname(), u.Port()
		if port == "" {
			port = "80"
		}
		return net.JoinHostPort(host, port), u.Path, nil
	}

	host, port := r.config.Server.Host, r.config.Server.Port
	if host == "" {
		host = "127.0.0.1"
	}
	if port == 0 {
		port = 3000
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), u.Path, nil
}
