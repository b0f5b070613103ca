// Package watcher probes backend reachability on a fixed interval and
// reports mode transitions. The offline-to-online transition is what kicks
// off an automatic sync pass.
package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/ebergstrom/daybreak/internal/logging"
)

// Pinger is the probe the watcher runs each tick.
type Pinger interface {
	Ping(ctx context.Context) error
}

const probeTimeout = 3 * time.Second

// Watcher tracks whether the backend is reachable. Callbacks run on the
// watcher goroutine, so they should hand off long work.
type Watcher struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger

	mu       sync.Mutex
	online   bool
	onOnline func()
}

func New(pinger Pinger, interval time.Duration, log logging.Logger) *Watcher {
	return &Watcher{pinger: pinger, interval: interval, log: log}
}

// OnOnline registers the callback invoked on every offline-to-online
// transition, including the first successful probe.
func (w *Watcher) OnOnline(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onOnline = fn
}

// Online reports the mode observed by the last probe.
func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Run probes until ctx is cancelled. It performs one immediate probe before
// settling into the ticker cadence.
func (w *Watcher) Run(ctx context.Context) {
	w.probe(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := w.pinger.Ping(pctx)
	cancel()

	w.mu.Lock()
	wasOnline := w.online
	w.online = err == nil
	cb := w.onOnline
	w.mu.Unlock()

	switch {
	case err != nil && wasOnline:
		w.log.Info(ctx, "backend unreachable, switching to offline mode", "error", err)
	case err == nil && !wasOnline:
		w.log.Info(ctx, "backend reachable, switching to online mode")
		if cb != nil {
			cb()
		}
	}
}
