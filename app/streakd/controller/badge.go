package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/streakforge/streakd/pkg/badge"
	"github.com/streakforge/streakd/pkg/github"
	"github.com/streakforge/streakd/pkg/streak"
)

// defaultBadgeTheme is the query-parameter default for the image endpoint.
// Unrecognized names still fall back to badge.DefaultTheme inside Lookup.
const defaultBadgeTheme = "goldenshade"

// HandleBadge serves the SVG streak card.
//
// Usernames outside the allow list get the access-denied card with no
// upstream fetch and no streak computation at all.
func (c *Controller) HandleBadge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := mux.Vars(r)["username"]

	themeName := r.URL.Query().Get("theme")
	if themeName == "" {
		themeName = defaultBadgeTheme
	}
	theme := badge.Lookup(themeName)

	if !c.App.Allow.Allowed(username) {
		writeSVG(w, badge.RenderAccessDenied())
		return
	}

	days, err := c.calendar(ctx, username)
	if err != nil {
		if errors.Is(err, github.ErrUserNotFound) {
			writeSVG(w, badge.RenderUserNotFound(username, theme))
			return
		}
		c.App.Logger.Error("Upstream fetch failed", zap.String("username", username), zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "contribution data unavailable"})
		return
	}

	now := time.Now().UTC()
	res := streak.Compute(days, now)

	deco := badge.Decorations{CrownSVG: badge.CrownAsset()}
	if avatar, aerr := c.App.Source.FetchAvatar(ctx, username); aerr == nil {
		deco.AvatarPNG = avatar
	} else {
		// Decorations are optional: render the card without the avatar.
		c.App.Logger.Debug("Avatar unavailable", zap.String("username", username), zap.Error(aerr))
	}

	writeSVG(w, badge.Render(username, res, theme, deco, now))
}

// writeSVG writes an SVG body with cache-busting headers so embedded badges
// refresh on every view.
func writeSVG(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	_, _ = w.Write(body)
}
