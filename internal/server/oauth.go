// package server runs the loopback HTTP listener that completes the OAuth2
// authorization-code flow for the CLI.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// CallbackResult carries the outcome of one authorization callback.
type CallbackResult struct {
	Token *oauth2.Token
	err   error
}

func (r CallbackResult) Error() error { return r.err }

// CallbackHandler serves the OAuth2 redirect endpoint. It validates the
// state parameter, exchanges the one-time code for tokens, and delivers
// exactly one [CallbackResult] on its channel.
type CallbackHandler struct {
	config *oauth2.Config
	state  string

	results chan CallbackResult
	once    sync.Once

	mu      sync.Mutex
	handled bool
}

// NewCallbackHandler creates a handler bound to the given OAuth2 config and
// CSRF state token.
func NewCallbackHandler(config *oauth2.Config, state string) *CallbackHandler {
	return &CallbackHandler{
		config:  config,
		state:   state,
		results: make(chan CallbackResult, 1),
	}
}

// Result returns the channel delivering the flow outcome. It receives
// exactly one value and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.results
}

// ServeHTTP handles the redirect from the accounts service. Repeat requests
// after the first are rejected.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.send(CallbackResult{err: fmt.Errorf("invalid state parameter")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.send(CallbackResult{err: fmt.Errorf("authorization failed: %s - %s",
			query.Get("error"), query.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.send(CallbackResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.send(CallbackResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

func (h *CallbackHandler) send(result CallbackResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// successPage is shown in the user's browser once tokens were obtained.
const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .card { text-align: center; background: white; padding: 2rem;
                border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="card">
        <h1>&#10003; Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
