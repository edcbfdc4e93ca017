package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"sms-storefront/internal/metrics"
	"sms-storefront/internal/util"
)

var (
	protectedPrefixes = []string{"/dashboard", "/services", "/profile"}
	guestPrefixes     = []string{"/login", "/signup"}
)

// NewRouter creates and configures the Chi router with all middleware and routes
func NewRouter(h *Handler, corsOrigins []string, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	// Middleware stack
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggerMiddleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(metrics.InstrumentHandler)
	router.Use(middleware.Timeout(60 * time.Second))

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"https://*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"ETag", catalogSourceHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Use(RouteGuard(h.opts.CookieName))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"sms-storefront"}`))
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		h.RegisterRoutes(r)
	})

	// 404 handler
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	// Method not allowed handler
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"method not allowed"}`))
	})

	return router
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/refresh", h.Refresh)
	})

	r.Get("/countries", h.ListCountries)
	r.Patch("/countries", h.UpdateCountry)
	r.Get("/services", h.ListServices)

	r.Get("/balance", h.GetBalance)
	r.Post("/balance", h.AddFunds)
	r.Get("/transactions", h.ListTransactions)
	r.Get("/users", h.GetProfile)
	r.Patch("/users", h.UpdateProfile)

	r.Post("/sms", h.RequestNumber)
	r.Get("/sms", h.CheckCode)

	r.Post("/seed", h.Seed)
	r.Get("/debug", h.Debug)
	r.Get("/debug-error", h.DebugEnvironment)
}

// RouteGuard redirects page requests by session cookie presence: protected
// pages without a cookie go to /login, guest pages with one go to
// /dashboard. The cookie is not validated here; API routes re-validate.
func RouteGuard(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if strings.HasPrefix(path, "/api") {
				next.ServeHTTP(w, r)
				return
			}

			hasSession := false
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				hasSession = true
			}

			switch {
			case !hasSession && hasPrefix(path, protectedPrefixes):
				target := "/login?redirect=" + url.QueryEscape(path)
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			case hasSession && hasPrefix(path, guestPrefixes):
				http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// LoggerMiddleware creates a middleware that logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("HTTP request",
					util.String("method", r.Method),
					util.String("path", r.URL.Path),
					util.String("remote_addr", r.RemoteAddr),
					util.Int("status", ww.Status()),
					util.Duration("duration", time.Since(start)),
					util.String("user_agent", r.UserAgent()),
					util.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
