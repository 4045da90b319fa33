package router

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/analysis"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/foodlog"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/profile"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/setting"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the id assigned by RequestIDMiddleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDMiddleware keeps a client supplied X-Request-ID or assigns a KSUID,
// echoes it in the response and puts it on the request context.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = utilities.NewKSUID()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		})
	}
}

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
			// ensure status is set
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", RequestID(r.Context()),
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

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
// It is intentionally simple and conservative so it works with most setups.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Clickjacking protection
			w.Header().Set("X-Frame-Options", "DENY")

			// Referrer policy
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")

			// Permissions policy (formerly Feature-Policy) - tighten common features
			// allow none for camera, microphone, geolocation by default
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// Basic Content-Security-Policy - block mixed content and restrict sources to self by default
			// Keep this conservative; callers may opt to override with more specific policy downstream.
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}

			// HSTS - instruct browsers to use HTTPS for future requests. Only set if request is over TLS.
			if r.TLS != nil {
				// 30 days by default
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Handlers groups the feature handlers mounted by RegisterRoutes.
type Handlers struct {
	Users    *user.Handler
	Profiles *profile.Handler
	Logs     *foodlog.Handler
	Analysis *analysis.Handler
	Settings *setting.Handler
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
// Everything except health, register and login requires a bearer token;
// deleting an account also requires an admin token.
func RegisterRoutes(logger *zap.SugaredLogger, tokens *auth.Tokens, h Handlers) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		utilities.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// auth routes
	mux.HandleFunc("POST /api/auth/register", h.Users.Register)
	mux.HandleFunc("POST /api/auth/login", h.Users.Login)

	protected := auth.Middleware(tokens, logger)
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, protected(fn))
	}

	handle("GET /api/auth/me", h.Users.Me)
	mux.Handle("DELETE /api/auth/{userId}", protected(auth.RequireAdmin()(http.HandlerFunc(h.Users.Delete))))

	// profile routes
	handle("GET /api/profile", h.Profiles.Get)
	handle("PUT /api/profile", h.Profiles.Update)
	handle("POST /api/profile/calculate", h.Profiles.Calculate)

	// food log routes
	handle("POST /api/log", h.Logs.Create)
	handle("GET /api/log", h.Logs.List)
	handle("GET /api/log/history", h.Logs.History)
	handle("PUT /api/log/{id}", h.Logs.UpdateServing)
	handle("DELETE /api/log/{id}", h.Logs.Delete)

	// analysis routes
	handle("GET /api/analysis/gap", h.Analysis.Gap)
	handle("GET /api/analysis/gap/today", h.Analysis.GapToday)
	handle("GET /api/analysis/recommendations", h.Analysis.Recommendations)
	handle("GET /api/analysis/trends", h.Analysis.Trends)
	handle("GET /api/analysis/streak", h.Analysis.Streak)
	handle("GET /api/analysis/effective", h.Analysis.Effective)

	// setting routes
	handle("GET /api/settings/food-filters", h.Settings.FoodFilters)

	// request id first so the logging middleware can see it
	handler := RequestIDMiddleware()(LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux)))
	return handler
}
