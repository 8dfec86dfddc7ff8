// Package allowlist gates which usernames may render badges.
package allowlist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// List is a case-insensitive set of usernames loaded from a JSON array file.
// It is constructed once at startup and injected; there is no package-level
// state.
type List struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	users map[string]struct{}
}

// Load reads the allow-list file at path. A missing or malformed file is an
// error: the badge surface must not come up ungated by accident.
func Load(path string, logger *zap.Logger) (*List, error) {
	l := &List{path: path, logger: logger}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads the file and swaps the set atomically.
func (l *List) Reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("read allow list: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("parse allow list %s: %w", l.path, err)
	}

	users := make(map[string]struct{}, len(names))
	for _, name := range names {
		users[strings.ToLower(name)] = struct{}{}
	}

	l.mu.Lock()
	l.users = users
	l.mu.Unlock()

	l.logger.Info("Allow list loaded", zap.String("path", l.path), zap.Int("users", len(users)))
	return nil
}

// Allowed reports whether username is on the list, case-insensitively.
func (l *List) Allowed(username string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.users[strings.ToLower(username)]
	return ok
}

// Usernames returns a sorted snapshot of the list, for prefetching.
func (l *List) Usernames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.users))
	for name := range l.users {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of allowed usernames.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.users)
}

// Watch reloads the list whenever the file changes on disk, until ctx is
// done. Editors and config-map mounts replace files rather than write in
// place, so the watch is on the directory and filtered by name.
func (l *List) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(l.path) {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				if err := l.Reload(); err != nil {
					// Keep serving the previous set on a bad write.
					l.logger.Warn("Allow list reload failed", zap.Error(err))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("Allow list watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
