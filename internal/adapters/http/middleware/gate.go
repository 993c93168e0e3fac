package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"gymhub/internal/adapters/http/perf"
	"gymhub/internal/domain/access"
)

const decisionContextKey contextKey = "decision"

// Gate returns middleware that runs the access decision for every request
// path and redirects (303) when it says so. Paths outside the route table
// pass through untouched.
func Gate(collector *perf.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := access.Resolve(r.URL.Path)
			if route == access.RouteUnknown {
				next.ServeHTTP(w, r)
				return
			}

			d := access.Decide(SessionFromContext(r.Context()), BranchContext(r.Context()), route)
			if d.IsRedirect() {
				Redirect(w, r, collector, d)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithDecision(r.Context(), d)))
		})
	}
}

// Redirect logs a redirect decision, records it on collector and sends 303.
// PRE: d.IsRedirect()
func Redirect(w http.ResponseWriter, r *http.Request, collector *perf.Collector, d access.Decision) {
	slog.Info("gate_redirect",
		"path", r.URL.Path,
		"route", d.Route.String(),
		"reason", string(d.Reason),
		"target", d.Target,
		"role", string(SessionFromContext(r.Context()).Role()),
	)
	if collector != nil {
		collector.Record(perf.Entry{
			Kind:      perf.KindRedirect,
			Path:      string(d.Reason) + " -> " + d.Target,
			Timestamp: time.Now(),
		})
	}
	http.Redirect(w, r, d.Target, http.StatusSeeOther)
}

func contextWithDecision(ctx context.Context, d access.Decision) context.Context {
	return context.WithValue(ctx, decisionContextKey, d)
}

// DecisionFromContext returns the render decision the gate made for this request.
func DecisionFromContext(ctx context.Context) (access.Decision, bool) {
	d, ok := ctx.Value(decisionContextKey).(access.Decision)
	return d, ok
}
