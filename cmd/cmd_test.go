package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/desertthunder/spotlite/internal/spotify"
	"github.com/urfave/cli/v3"
)

func runApp(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "spotlite",
		Writer:   io.Discard,
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"spotlite"}, args...))
}

func TestVariadicIDArguments(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
	}{
		{"tracks get", []string{"tracks", "get", "id1", "id2"}},
		{"tracks save", []string{"tracks", "save", "id1", "id2"}},
		{"artists get", []string{"artists", "get", "id1", "id2"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			runner := testRunner(t, io.Discard)

			err := runApp(t, runner, tc.args...)
			if errors.Is(err, shared.ErrMissingArgument) {
				t.Fatalf("ids were not parsed into the action: %v", err)
			}
			if !errors.Is(err, shared.ErrNoSession) {
				t.Errorf("expected ErrNoSession after the ids parsed, got %v", err)
			}
		})

		t.Run(tc.name+" requires at least one id", func(t *testing.T) {
			runner := testRunner(t, io.Discard)

			if err := runApp(t, runner, tc.args[:2]...); err == nil {
				t.Error("expected an error without ids")
			}
		})
	}
}

func TestDescribeBatchFailure(t *testing.T) {
	t.Run("reports the failing chunk", func(t *testing.T) {
		cause := errors.New("boom")
		err := describeBatchFailure(&spotify.BatchError{Chunk: 2, Applied: 1, Chunks: 3, Err: cause})

		want := "applied 1 of 3 chunks before chunk 2 failed"
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
		if !errors.Is(err, cause) {
			t.Error("expected the cause to stay unwrappable")
		}
	})

	t.Run("passes other errors through", func(t *testing.T) {
		plain := errors.New("plain")
		if got := describeBatchFailure(plain); got != plain {
			t.Errorf("expected the error unchanged, got %v", got)
		}
	})
}
