package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/streakforge/streakd/pkg/github"
	"github.com/streakforge/streakd/pkg/streak"
)

// StreakResponse is the JSON summary for one user.
type StreakResponse struct {
	Username             string  `json:"username"`
	LongestStreak        int     `json:"longest_streak"`
	CurrentStreak        int     `json:"current_streak"`
	TotalContributions   int     `json:"total_contributions"`
	LastContributionDate *string `json:"last_contribution_date"`
}

// HandleStreak serves the JSON streak summary.
func (c *Controller) HandleStreak(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := mux.Vars(r)["username"]

	days, err := c.calendar(ctx, username)
	if err != nil {
		if errors.Is(err, github.ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "user not found"})
			return
		}
		c.App.Logger.Error("Upstream fetch failed", zap.String("username", username), zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "contribution data unavailable"})
		return
	}

	res := streak.Compute(days, time.Now().UTC())

	out := StreakResponse{
		Username:           username,
		LongestStreak:      res.Longest,
		CurrentStreak:      res.Current,
		TotalContributions: res.Total,
	}
	if res.LastContribution != nil {
		iso := res.LastContribution.Format("2006-01-02")
		out.LastContributionDate = &iso
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// calendar is the cache-aware fetch path shared by the JSON and badge
// handlers.
func (c *Controller) calendar(ctx context.Context, username string) ([]streak.Day, error) {
	if days, ok := c.App.Cache.Get(ctx, username); ok {
		return days, nil
	}

	days, err := c.App.Source.Calendar(ctx, username)
	if err != nil {
		return nil, err
	}

	c.App.Cache.Set(ctx, username, days)
	return days, nil
}
