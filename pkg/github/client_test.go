package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/streakforge/streakd/pkg/retry"
)

// fastRetry keeps test retries in the microsecond range.
var fastRetry = retry.Config{
	MaxRetries:   2,
	InitialDelay: time.Millisecond,
	MaxDelay:     time.Millisecond,
	Multiplier:   1,
}

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Opts{
		Endpoint:   srv.URL,
		AvatarBase: srv.URL,
		Token:      "test-token",
		Retry:      fastRetry,
	}, zap.NewNop())
	return c, srv
}

func calendarPayload(days map[string]int) map[string]any {
	list := make([]map[string]any, 0, len(days))
	for date, count := range days {
		list = append(list, map[string]any{"date": date, "contributionCount": count})
	}
	return map[string]any{
		"data": map[string]any{
			"user": map[string]any{
				"contributionsCollection": map[string]any{
					"contributionCalendar": map[string]any{
						"weeks": []any{
							map[string]any{"contributionDays": list},
						},
					},
				},
			},
		},
	}
}

func TestCalendarFlattensWeeks(t *testing.T) {
	var gotAuth string
	var gotVars map[string]string

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotVars = req.Variables

		_ = json.NewEncoder(w).Encode(calendarPayload(map[string]int{
			"2024-01-01": 3,
			"2024-01-02": 0,
		}))
	}))

	days, err := c.Calendar(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, map[string]string{"username": "octocat"}, gotVars)

	require.Len(t, days, 2)
	total := 0
	for _, d := range days {
		total += d.Count
		assert.Equal(t, time.UTC, d.Date.Location())
	}
	assert.Equal(t, 3, total)
}

func TestCalendarUserNotFound(t *testing.T) {
	var hits atomic.Int32

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"user": nil},
			"errors": []any{
				map[string]any{"type": "NOT_FOUND", "message": "Could not resolve to a User"},
			},
		})
	}))

	_, err := c.Calendar(context.Background(), "no-such-user")
	require.ErrorIs(t, err, ErrUserNotFound)

	// A missing user is definitive, not transient: exactly one round trip.
	assert.Equal(t, int32(1), hits.Load())
}

func TestCalendarRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(calendarPayload(map[string]int{"2024-01-01": 1}))
	}))

	days, err := c.Calendar(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Len(t, days, 1)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCalendarTransientFailure(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.Calendar(context.Background(), "octocat")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Opts{
		Endpoint:        srv.URL,
		Token:           "t",
		Retry:           retry.Config{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	}, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := c.Calendar(context.Background(), "octocat")
		require.Error(t, err)
	}
	before := hits.Load()

	// Breaker is open now: the next call must not reach the server.
	_, err := c.Calendar(context.Background(), "octocat")
	require.Error(t, err)
	assert.Equal(t, before, hits.Load())
}

func TestFetchAvatar(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/octocat.png" {
			_, _ = w.Write(png)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	got, err := c.FetchAvatar(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, png, got)

	_, err = c.FetchAvatar(context.Background(), "ghost")
	assert.Error(t, err)
}
