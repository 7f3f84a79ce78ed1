package shared

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// UsernameEnv names the environment variable consulted when no username is passed explicitly.
const UsernameEnv = "SPINSYNC_USERNAME"

// LoadEnv reads KEY=value pairs from the given dotenv files (".env" when none are given) into the process environment.
//
// Variables already present in the environment win. Missing files are not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, p, err)
		}
	}

	return nil
}

// ResolveUsername returns the Spotify account that should own created playlists.
//
// Precedence is explicit value, then [UsernameEnv], then the config file.
func ResolveUsername(explicit string, config *Config) (string, error) {
	if u := strings.TrimSpace(explicit); u != "" {
		return u, nil
	}
	if u := strings.TrimSpace(os.Getenv(UsernameEnv)); u != "" {
		return u, nil
	}
	if config != nil {
		if u := strings.TrimSpace(config.Spotify.Username); u != "" {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: no username specified or configured (set --user or %s)", ErrMissingCredentials, UsernameEnv)
}
