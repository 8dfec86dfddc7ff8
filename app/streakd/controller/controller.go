package controller

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streakforge/streakd/app/streakd/types"
	"github.com/streakforge/streakd/pkg/utils"
)

type Controller struct {
	App        *types.App
	AdminToken string
	AuthUser   string
	AuthHash   []byte
	JWTSecret  []byte
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	adminToken := utils.Env("ADMIN_TOKEN", "devtoken")
	adminUser := utils.Env("ADMIN_USER", "admin")
	adminPass := utils.Env("ADMIN_PASSWORD", "admin")
	jwtSecret := []byte(utils.Env("SESSION_SECRET", "change-me-please"))

	phash, _ := utils.HashOrRead(adminPass)

	return &Controller{
		App:        app,
		AdminToken: adminToken,
		AuthUser:   adminUser,
		AuthHash:   phash,
		JWTSecret:  jwtSecret,
	}
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Badges are embedded from arbitrary pages, so echo the origin when
		// present and fall back to the wildcard.
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodPost+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/", http.HandlerFunc(c.HandleHome)).Methods(http.MethodGet)
	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)

	r.HandleFunc("/streak/{username}", c.HandleStreak).Methods(http.MethodGet)
	r.HandleFunc("/streak/{username}/image", c.HandleBadge).Methods(http.MethodGet)

	// Admin API
	r.HandleFunc("/admin/auth/login", c.HandleLogin).Methods(http.MethodPost)
	r.HandleFunc("/admin/auth/logout", c.HandleLogout).Methods(http.MethodPost)
	r.Handle("/admin/allowlist/reload", c.RequireAuth(http.HandlerFunc(c.HandleAllowlistReload))).Methods(http.MethodPost)
	r.Handle("/admin/cache/stats", c.RequireAuth(http.HandlerFunc(c.HandleCacheStats))).Methods(http.MethodGet)

	return r, nil
}
