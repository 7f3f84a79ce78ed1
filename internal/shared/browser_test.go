package shared

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCommand
	t.Cleanup(func() { getRuntime, startCommand = origRuntime, origStart })

	var got []string
	startCommand = func(name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}

	tt := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", "http://127.0.0.1:3000"}},
		{"linux", []string{"xdg-open", "http://127.0.0.1:3000"}},
		{"windows", []string{"rundll32", "url.dll,FileProtocolHandler", "http://127.0.0.1:3000"}},
	}

	for _, tc := range tt {
		t.Run(tc.goos, func(t *testing.T) {
			getRuntime = func() string { return tc.goos }
			if err := OpenBrowser("http://127.0.0.1:3000"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("command mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("windows command table is not mutated", func(t *testing.T) {
		getRuntime = func() string { return "windows" }
		_ = OpenBrowser("a")
		_ = OpenBrowser("b")
		if len(browserCommands["windows"]) != 2 {
			t.Errorf("command table changed: %v", browserCommands["windows"])
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("x"); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("start failure", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		startCommand = func(string, ...string) error { return errors.New("not found") }
		if err := OpenBrowser("x"); err == nil {
			t.Error("expected error")
		}
	})
}
