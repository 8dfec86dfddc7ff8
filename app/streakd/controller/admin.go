package controller

import (
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies admin credentials and issues a session cookie.
func (c *Controller) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}

	if req.Username != c.AuthUser ||
		bcrypt.CompareHashAndPassword(c.AuthHash, []byte(req.Password)) != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
		return
	}

	c.IssueSession(w, req.Username)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleLogout clears the session cookie.
func (c *Controller) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	c.ClearSession(w)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleAllowlistReload re-reads the allow-list file on demand.
func (c *Controller) HandleAllowlistReload(w http.ResponseWriter, _ *http.Request) {
	if err := c.App.Allow.Reload(); err != nil {
		c.App.Logger.Error("Allow list reload failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "users": c.App.Allow.Len()})
}

// HandleCacheStats reports calendar-cache counters.
func (c *Controller) HandleCacheStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c.App.Cache.Stats())
}
