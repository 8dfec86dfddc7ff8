package prefetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/streakforge/streakd/pkg/allowlist"
	"github.com/streakforge/streakd/pkg/cache"
	"github.com/streakforge/streakd/pkg/streak"
)

type stubSource struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func (s *stubSource) Calendar(_ context.Context, username string) ([]streak.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[username]++
	if s.fail[username] {
		return nil, errors.New("upstream down")
	}
	return []streak.Day{{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Count: 1}}, nil
}

func (s *stubSource) count(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[username]
}

func newList(t *testing.T, body string) *allowlist.List {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allowed.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	l, err := allowlist.Load(path, zap.NewNop())
	require.NoError(t, err)
	return l
}

func TestRunWarmsAllListedUsers(t *testing.T) {
	src := &stubSource{}
	cc := cache.New(time.Minute, nil, zap.NewNop())
	list := newList(t, `["octocat", "defunkt", "mojombo"]`)

	w := New(src, cc, list, "@every 1h", 2, zap.NewNop())
	defer w.Stop()

	w.Run(context.Background())

	for _, name := range []string{"octocat", "defunkt", "mojombo"} {
		assert.Equal(t, 1, src.count(name), name)
		_, ok := cc.Get(context.Background(), name)
		assert.True(t, ok, name)
	}
}

func TestRunToleratesFailures(t *testing.T) {
	src := &stubSource{fail: map[string]bool{"defunkt": true}}
	cc := cache.New(time.Minute, nil, zap.NewNop())
	list := newList(t, `["octocat", "defunkt"]`)

	w := New(src, cc, list, "@every 1h", 2, zap.NewNop())
	defer w.Stop()

	w.Run(context.Background())

	_, ok := cc.Get(context.Background(), "octocat")
	assert.True(t, ok)
	_, ok = cc.Get(context.Background(), "defunkt")
	assert.False(t, ok)
}

func TestRunSkipsEmptyList(t *testing.T) {
	src := &stubSource{}
	cc := cache.New(time.Minute, nil, zap.NewNop())
	list := newList(t, `[]`)

	w := New(src, cc, list, "@every 1h", 2, zap.NewNop())
	defer w.Stop()

	w.Run(context.Background())
	assert.Equal(t, 0, cc.Stats().Entries)
}
