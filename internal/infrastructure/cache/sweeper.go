package cache

import (
	"context"
	"sync"
	"time"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/logging"
)

const defaultCleanupInterval = 10 * time.Minute

// sweeper periodically deletes expired rows from a durable backend
type sweeper struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// startSweeper calls clean every interval (defaultCleanupInterval when zero)
// until stop is called. backend only labels log lines.
func startSweeper(backend string, interval time.Duration, clean func(context.Context) (int64, error)) *sweeper {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &sweeper{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := clean(ctx)
				if err != nil {
					if ctx.Err() == nil {
						logging.Warn("expired evidence sweep failed", "component", "cache", "backend", backend, "err", err)
					}
					continue
				}
				if removed > 0 {
					logging.Debug("expired evidence removed", "component", "cache", "backend", backend, "rows", removed)
				}
			}
		}
	}()

	return s
}

// stop ends the sweep loop and waits for an in-flight sweep to return
func (s *sweeper) stop() {
	s.once.Do(s.cancel)
	<-s.done
}
