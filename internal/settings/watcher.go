// Package settings keeps app_settings cached in memory and refreshes the
// cache when any instance broadcasts a change over redis pub/sub.
package settings

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/printdesk/pd-backend/internal/logging"
	"github.com/printdesk/pd-backend/internal/store"
)

const changeChannel = "settings:changed"

type Watcher struct {
	store *store.Store
	redis *redis.Client

	mu    sync.RWMutex
	cache map[string]string
}

func NewWatcher(st *store.Store, rdb *redis.Client) *Watcher {
	return &Watcher{
		store: st,
		redis: rdb,
		cache: make(map[string]string),
	}
}

// Start loads the cache and subscribes for change broadcasts. The
// subscription goroutine exits when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.reload(ctx); err != nil {
		return err
	}

	sub := w.redis.Subscribe(ctx, changeChannel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				if err := w.reload(ctx); err != nil {
					logging.Error("Failed to reload settings cache", "error", err)
				}
			}
		}
	}()
	return nil
}

// Get returns a cached setting value.
func (w *Watcher) Get(key string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.cache[key]
	return v, ok
}

// Broadcast tells every instance, this one included, to refetch.
func (w *Watcher) Broadcast(ctx context.Context) error {
	return w.redis.Publish(ctx, changeChannel, "reload").Err()
}

func (w *Watcher) reload(ctx context.Context) error {
	rows, err := w.store.ListSettings(ctx)
	if err != nil {
		return err
	}
	next := make(map[string]string, len(rows))
	for _, s := range rows {
		next[s.Key] = s.Value
	}
	w.mu.Lock()
	w.cache = next
	w.mu.Unlock()
	logging.Debug("Settings cache reloaded", "keys", len(next))
	return nil
}
