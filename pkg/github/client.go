// Package github fetches contribution calendars from the GitHub GraphQL API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/streakforge/streakd/pkg/retry"
	"github.com/streakforge/streakd/pkg/streak"
	"github.com/streakforge/streakd/pkg/utils"
)

const (
	defaultEndpoint   = "https://api.github.com/graphql"
	defaultAvatarBase = "https://github.com"
)

// ErrUserNotFound reports that the queried username does not exist upstream.
var ErrUserNotFound = errors.New("github user not found")

// errBreakerOpen is returned while the circuit breaker cooldown is active.
var errBreakerOpen = errors.New("github circuit breaker open")

// Client wraps an http.Client with a token-bucket and a circuit-breaker for
// the GitHub GraphQL endpoint.
type Client struct {
	endpoint   string
	avatarBase string
	token      string
	client     *http.Client
	logger     *zap.Logger
	retryCfg   retry.Config

	// token-bucket
	tokens      int64
	maxTokens   int64
	refillEvery time.Duration
	lastRefill  atomic.Value // time.Time

	// circuit-breaker
	mu          sync.Mutex
	failures    int
	openedUntil time.Time

	breakerThreshold int
	breakerCooldown  time.Duration
}

// Opts is the set of options for a new Client.
type Opts struct {
	Endpoint        string
	AvatarBase      string
	Token           string
	Timeout         time.Duration
	RPS             int
	Burst           int
	BreakerFailures int
	BreakerCooldown time.Duration
	Retry           retry.Config
	HTTPClient      *http.Client
}

// NewClient creates a new Client with the given options.
func NewClient(o Opts, logger *zap.Logger) *Client {
	if o.Endpoint == "" {
		o.Endpoint = defaultEndpoint
	}
	if o.AvatarBase == "" {
		o.AvatarBase = defaultAvatarBase
	}
	if o.RPS <= 0 {
		o.RPS = 10
	}
	if o.Burst <= 0 {
		o.Burst = 20
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.BreakerFailures <= 0 {
		o.BreakerFailures = 3
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = 5 * time.Second
	}
	if o.Retry.MaxRetries <= 0 {
		o.Retry = retry.DefaultConfig()
	}

	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	} else if client.Timeout == 0 {
		client.Timeout = o.Timeout
	}

	c := &Client{
		endpoint:         o.Endpoint,
		avatarBase:       o.AvatarBase,
		token:            o.Token,
		client:           client,
		logger:           logger,
		retryCfg:         o.Retry,
		maxTokens:        int64(o.Burst),
		refillEvery:      time.Second / time.Duration(o.RPS),
		breakerThreshold: o.BreakerFailures,
		breakerCooldown:  o.BreakerCooldown,
	}
	c.tokens = c.maxTokens
	c.lastRefill.Store(time.Now())
	return c
}

// refill refills the token-bucket with new tokens if necessary.
func (c *Client) refill() {
	last := c.lastRefill.Load().(time.Time)
	now := time.Now()
	if now.Sub(last) >= c.refillEvery {
		if atomic.LoadInt64(&c.tokens) < c.maxTokens {
			atomic.AddInt64(&c.tokens, 1)
		}
		c.lastRefill.Store(now)
	}
}

// acquire acquires a token from the token-bucket, blocking if necessary.
func (c *Client) acquire() {
	for {
		c.refill()
		if atomic.LoadInt64(&c.tokens) > 0 {
			atomic.AddInt64(&c.tokens, -1)
			return
		}
		time.Sleep(c.refillEvery / 2)
	}
}

// isOpen returns true while the breaker is in the OPEN state.
func (c *Client) isOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openedUntil.IsZero() {
		return false
	}
	if time.Now().After(c.openedUntil) {
		c.openedUntil = time.Time{}
		c.failures = 0
		return false
	}
	return true
}

// noteFailure counts a failed call and opens the breaker past the threshold.
func (c *Client) noteFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if c.failures >= c.breakerThreshold {
		c.openedUntil = time.Now().Add(c.breakerCooldown)
	}
}

// noteSuccess resets the failure count.
func (c *Client) noteSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
}

// contributionsQuery pulls the trailing-year contribution calendar. The
// calendar is gap-free: GitHub returns every day in range, zero counts
// included, which the streak fold relies on.
const contributionsQuery = `
query($username: String!) {
  user(login: $username) {
    contributionsCollection {
      contributionCalendar {
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type calendarResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					Weeks []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Calendar returns one entry per calendar day of the user's trailing-year
// contribution calendar. Transient upstream failures are retried with
// backoff; a missing user is returned as ErrUserNotFound without retrying.
func (c *Client) Calendar(ctx context.Context, username string) ([]streak.Day, error) {
	var (
		days     []streak.Day
		notFound bool
	)

	err := retry.WithBackoff(ctx, c.retryCfg, c.logger, "github.calendar", func() error {
		d, ferr := c.fetchCalendar(ctx, username)
		if ferr != nil {
			if errors.Is(ferr, ErrUserNotFound) {
				notFound = true
				return nil
			}
			return ferr
		}
		days = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return days, nil
}

// fetchCalendar performs one GraphQL round trip.
func (c *Client) fetchCalendar(ctx context.Context, username string) ([]streak.Day, error) {
	if c.isOpen() {
		return nil, errBreakerOpen
	}

	c.acquire()

	payload, err := json.Marshal(graphqlRequest{
		Query:     contributionsQuery,
		Variables: map[string]string{"username": username},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.noteFailure()
		return nil, err
	}

	if resp.StatusCode >= 500 {
		c.noteFailure()
		_ = utils.DrainAndClose(resp.Body)
		return nil, fmt.Errorf("github server %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		_ = utils.DrainAndClose(resp.Body)
		return nil, fmt.Errorf("github http %d", resp.StatusCode)
	}

	var decoded calendarResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		_ = utils.DrainAndClose(resp.Body)
		return nil, fmt.Errorf("decode github response: %w", err)
	}
	if cerr := utils.DrainAndClose(resp.Body); cerr != nil {
		return nil, cerr
	}

	c.noteSuccess()

	// GraphQL reports a missing login as an errors payload on a 200.
	if len(decoded.Errors) > 0 || decoded.Data.User == nil {
		return nil, ErrUserNotFound
	}

	var days []streak.Day
	for _, week := range decoded.Data.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, d := range week.ContributionDays {
			date, perr := time.Parse("2006-01-02", d.Date)
			if perr != nil {
				return nil, fmt.Errorf("parse contribution date %q: %w", d.Date, perr)
			}
			days = append(days, streak.Day{Date: date, Count: d.ContributionCount})
		}
	}
	return days, nil
}
