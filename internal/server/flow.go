package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlite/internal/shared"
	"golang.org/x/oauth2"
)

// Flow owns the loopback server lifecycle for one authorization attempt:
// start the listener, wait for the redirect, shut down.
type Flow struct {
	handler *CallbackHandler
	srv     *http.Server
	errs    chan error
	logger  *log.Logger
}

// NewFlow wires a [CallbackHandler] for config/state into an HTTP server on
// addr. The callback route is taken from the config's redirect URL path,
// falling back to /callback.
func NewFlow(config *oauth2.Config, state, addr string, logger *log.Logger) *Flow {
	handler := NewCallbackHandler(config, state)

	route := "/callback"
	if u, err := url.Parse(config.RedirectURL); err == nil && u.Path != "" {
		route = u.Path
	}

	mux := http.NewServeMux()
	mux.Handle(route, handler)

	return &Flow{
		handler: handler,
		srv:     &http.Server{Addr: addr, Handler: mux},
		errs:    make(chan error, 1),
		logger:  logger,
	}
}

// Start launches the listener in the background.
func (f *Flow) Start() {
	go func() {
		f.logger.Info("starting OAuth callback server", "addr", f.srv.Addr)
		if err := f.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			f.errs <- err
		}
	}()
}

// Wait blocks until the callback fires, the server fails, or the timeout
// elapses, then shuts the listener down and returns the exchanged token.
func (f *Flow) Wait(ctx context.Context, timeout time.Duration) (*oauth2.Token, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result CallbackResult

	select {
	case result = <-f.handler.Result():
	case err := <-f.errs:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-timer.C:
		f.shutdown()
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		f.shutdown()
		return nil, ctx.Err()
	}

	f.shutdown()

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

func (f *Flow) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.srv.Shutdown(ctx); err != nil {
		f.logger.Warn("error shutting down callback server", "error", err)
	}
}
