package metrics

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type routeTagKey struct{}

// routeTag is filled in by Route once chi has matched the request
type routeTag struct {
	name string
}

// Route names the matched route for the collector middleware.
// Use it with chi's With: r.With(metrics.Route("health")).Get("/health", h)
func Route(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tag, ok := r.Context().Value(routeTagKey{}).(*routeTag); ok {
				tag.name = name
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Middleware times every request and records it once the handler returns,
// including when it panics. The panic is re-raised for the recoverer.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := c.Begin()
		tag := &routeTag{}
		r = r.WithContext(context.WithValue(r.Context(), routeTagKey{}, tag))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		c.inFlight.Inc()
		defer func() {
			c.inFlight.Dec()

			rec := recover()
			status := ww.Status()
			switch {
			case rec != nil:
				status = http.StatusInternalServerError
			case status == 0:
				status = http.StatusOK
			}

			c.End(timer, tag.name)
			c.observe(r.Method, tag.name, status, c.now().Sub(timer.start))

			if rec != nil {
				panic(rec)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}
