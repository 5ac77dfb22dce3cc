package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/httpio"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/item"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/location"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-inventory-go/pkg/utilities"
)

// Prefix is prepended to every route.
const Prefix = "/inventory-api"

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", w.Header().Get("X-Request-ID"),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// RequestIDMiddleware echoes the caller's X-Request-ID or assigns a new one.
func RequestIDMiddleware(ids *utilities.IDGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = ids.Next()
			}
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			// HSTS only over TLS, 30 days
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

type Deps struct {
	App     *app.App
	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
	IDs     *utilities.IDGenerator
	// DefaultLanguage is assigned to users registered without one.
	DefaultLanguage string
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()
	rs := httpio.Responder{Logger: d.Logger, Observer: d.Metrics}

	mux.HandleFunc("GET "+Prefix+"/health", func(w http.ResponseWriter, r *http.Request) {
		if err := d.App.DB.PingContext(r.Context()); err != nil {
			rs.Message(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET "+Prefix+"/metrics", d.Metrics.Handler())

	users := user.NewHandler(d.App.Users, rs, d.DefaultLanguage)
	mux.HandleFunc("GET "+Prefix+"/users", users.List)
	mux.HandleFunc("POST "+Prefix+"/users", users.Create)
	mux.HandleFunc("GET "+Prefix+"/users/{id}", users.Get)
	mux.HandleFunc("PUT "+Prefix+"/users/{id}", users.Update)
	mux.HandleFunc("DELETE "+Prefix+"/users/{id}", users.Delete)
	mux.HandleFunc("POST "+Prefix+"/login", users.Login)

	locations := location.NewHandler(d.App.Locations, rs)
	mux.HandleFunc("GET "+Prefix+"/locations", locations.List)
	mux.HandleFunc("POST "+Prefix+"/locations", locations.Create)
	mux.HandleFunc("GET "+Prefix+"/locations/{id}", locations.Get)
	mux.HandleFunc("PUT "+Prefix+"/locations/{id}", locations.Update)
	mux.HandleFunc("DELETE "+Prefix+"/locations/{id}", locations.Delete)
	mux.HandleFunc("GET "+Prefix+"/users/{id}/locations", locations.ListByUser)

	items := item.NewHandler(d.App.Items, rs)
	mux.HandleFunc("GET "+Prefix+"/items", items.List)
	mux.HandleFunc("POST "+Prefix+"/items", items.Create)
	mux.HandleFunc("GET "+Prefix+"/items/{id}", items.Get)
	mux.HandleFunc("PUT "+Prefix+"/items/{id}", items.Update)
	mux.HandleFunc("DELETE "+Prefix+"/items/{id}", items.Delete)
	mux.HandleFunc("POST "+Prefix+"/items/{id}/usage/begin", items.BeginUsage)
	mux.HandleFunc("POST "+Prefix+"/items/{id}/usage/end", items.EndUsage)
	mux.HandleFunc("GET "+Prefix+"/items/{id}/usages", items.Usages)
	mux.HandleFunc("GET "+Prefix+"/users/{id}/items", items.ListByUser)
	mux.HandleFunc("GET "+Prefix+"/locations/{id}/items", items.ListByLocation)

	// metrics innermost so r.Pattern is visible after the mux ran
	var handler http.Handler = d.Metrics.Middleware(mux)
	handler = SecurityHeadersMiddleware()(handler)
	handler = LoggingMiddleware(d.Logger)(handler)
	return RequestIDMiddleware(d.IDs)(handler)
}
