package runner

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/env"
	"github.com/abdul-hamid-achik/bookcheck/packages/http"
)

// Request describes a templated call. URL may contain {{key}} placeholders
// filled from the run context, escaped as path segments; Bearer names the
// context key holding a token.
type Request struct {
	Client *http.Client
	Method string
	URL    string
	Bearer string
	// Body builds the JSON payload. Nil sends no body.
	Body func(vars *env.Context) (any, error)
}

// Action turns the request into a step action performing exactly one call.
func (rq Request) Action() Action {
	return func(ctx context.Context, vars *env.Context) (*http.Response, error) {
		resolver := env.NewResolver(vars)
		resolver.SetEscape(url.PathEscape)
		if missing := resolver.Unresolved(rq.URL); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", env.ErrKeyMissing, strings.Join(missing, ", "))
		}

		var req *http.Request
		target := resolver.Resolve(rq.URL)
		if rq.Body != nil {
			payload, err := rq.Body(vars)
			if err != nil {
				return nil, fmt.Errorf("building %s body: %w", rq.Method, err)
			}
			req, err = http.NewJSONRequest(rq.Method, target, payload)
			if err != nil {
				return nil, err
			}
		} else {
			req = http.NewRequest(rq.Method, target)
		}

		if rq.Bearer != "" {
			token, err := vars.String(rq.Bearer)
			if err != nil {
				return nil, err
			}
			req.SetBearer(token)
		}

		client := rq.Client
		if client == nil {
			client = http.NewClient()
		}
		return client.Do(ctx, req)
	}
}

// Reads returns the context keys the URL template and bearer token need.
func (rq Request) Reads() []string {
	reads := env.Placeholders(rq.URL)
	if rq.Bearer != "" {
		reads = append(reads, rq.Bearer)
	}
	return reads
}
