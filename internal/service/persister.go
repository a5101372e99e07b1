package service

import (
	"context"
	"sync"
	"time"

	"github.com/lifestream-app/lifestream/internal/logging"
)

// Persister debounces state writes: a save happens once no mutation has
// arrived for the configured window. A failed save leaves the state dirty
// so the next flush retries it.
type Persister struct {
	encode  func() ([]byte, error)
	persist func(ctx context.Context, data []byte) error
	window  time.Duration
	metrics *Metrics

	mu      sync.Mutex
	dirty   bool
	timer   *time.Timer
	stopped bool

	flushMu sync.Mutex // serializes writes
}

// NewPersister creates a persister. encode must take whatever lock guards the state.
func NewPersister(
	encode func() ([]byte, error),
	persist func(ctx context.Context, data []byte) error,
	window time.Duration,
	metrics *Metrics,
) *Persister {
	if window <= 0 {
		window = time.Second
	}
	return &Persister{
		encode:  encode,
		persist: persist,
		window:  window,
		metrics: metrics,
	}
}

// Touch marks state dirty and restarts the quiet-period timer
func (p *Persister) Touch() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dirty = true
	if p.stopped {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.window, func() {
		if err := p.Flush(context.Background()); err != nil {
			logging.For("Persister").WithError(err).Warn("Debounced save failed, will retry on next flush")
		}
	})
}

// Dirty reports whether unsaved changes exist
func (p *Persister) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

// Flush writes the state now if it is dirty
func (p *Persister) Flush(ctx context.Context) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return nil
	}
	p.dirty = false
	p.mu.Unlock()

	data, err := p.encode()
	if err == nil {
		err = p.persist(ctx, data)
	}
	if p.metrics != nil {
		p.metrics.RecordSave(err)
	}
	if err != nil {
		p.mu.Lock()
		p.dirty = true
		p.mu.Unlock()
		return err
	}

	logging.For("Persister").WithField("bytes", len(data)).Debug("State saved")
	return nil
}

// Stop cancels the pending timer and performs a final synchronous flush
func (p *Persister) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()

	return p.Flush(ctx)
}
