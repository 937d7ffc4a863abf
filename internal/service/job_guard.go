package service

import (
	"context"
	"errors"
	"sync"
)

// ErrJobRunning is returned when a backup or an import of the same canvas
// is already in progress.
var ErrJobRunning = errors.New("job already running")

// jobGuard lets one job per key run at a time. Backups use a single key;
// imports are keyed by mindmap id so two imports never race on one canvas.
type jobGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// acquire marks key as running. The returned release must be called once
// the job ends; ok is false when key is already running.
func (g *jobGuard) acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, busy := g.running[key]; busy {
		return nil, false
	}
	g.running[key] = struct{}{}
	g.wg.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.running, key)
			g.mu.Unlock()
			g.wg.Done()
		})
	}, true
}

// wait blocks until no job is running or ctx is done.
func (g *jobGuard) wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
