// Package monitor runs the recurring capture → hash-compare → diff → notify
// cycle against a single database.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tordrt/schemawatch/internal/db"
	"github.com/tordrt/schemawatch/internal/diff"
	"github.com/tordrt/schemawatch/internal/snapshot"
)

// ChangeHandler receives the ordered change records of one cycle. It is
// always invoked synchronously from the monitoring goroutine: the next
// capture does not begin until the handler returns. Handlers that want
// asynchronous delivery dispatch on their own. A panicking handler is
// recovered and logged; it never stops the loop or rolls back state.
type ChangeHandler func(records []diff.Record)

var (
	// ErrAlreadyRunning is returned by Start on a running monitor.
	ErrAlreadyRunning = errors.New("monitor is already running")

	// ErrStopped is returned by Start on a monitor that was stopped.
	// A Monitor is one-shot: create a new one to watch again.
	ErrStopped = errors.New("monitor was stopped and cannot be restarted")
)

// DefaultInterval is the capture interval used when none is configured.
const DefaultInterval = 60 * time.Second

// Options configures a Monitor.
type Options struct {
	// Interval between captures. Defaults to DefaultInterval.
	Interval time.Duration

	// DetectRenames enables the rename heuristic when diffing.
	DetectRenames bool

	// OnChange is invoked with the change records of each cycle that
	// detected a schema change. May be nil.
	OnChange ChangeHandler
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Monitor owns one Snapshotter and periodically compares fresh snapshots
// against the last stored one. Transient capture failures are logged and
// retried on the next interval; they never terminate the loop.
//
// The stored snapshot and hash are written only by the monitoring goroutine,
// one cycle at a time; the mutex exists so CurrentSnapshot and CurrentHash
// can be read concurrently.
type Monitor struct {
	snapshotter   db.Snapshotter
	logger        *zap.Logger
	interval      time.Duration
	detectRenames bool
	onChange      ChangeHandler

	mu      sync.Mutex
	state   state
	current snapshot.Snapshot
	hash    string

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Monitor over the given snapshotter. The logger must not be
// nil; pass zap.NewNop() to discard output.
func New(snapshotter db.Snapshotter, logger *zap.Logger, opts Options) *Monitor {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Monitor{
		snapshotter:   snapshotter,
		logger:        logger,
		interval:      interval,
		detectRenames: opts.DetectRenames,
		onChange:      opts.OnChange,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start captures the initial snapshot synchronously, then launches the
// monitoring loop. If the initial capture fails the monitor stays idle and
// the error is returned, so the caller may Start again.
//
// Ownership of the snapshotter transfers to the monitor on the first Start
// call: when Start returns ErrStopped (the monitor was stopped before or
// during the call) the snapshotter has already been closed, so the caller
// must not reuse it.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case stateRunning:
		m.mu.Unlock()
		m.logger.Warn("monitor already running, start ignored")
		return ErrAlreadyRunning
	case stateStopped:
		m.mu.Unlock()
		m.closeSnapshotter()
		return ErrStopped
	}
	m.mu.Unlock()

	seed, err := m.snapshotter.Snapshot(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	switch m.state {
	case stateRunning:
		m.mu.Unlock()
		return ErrAlreadyRunning
	case stateStopped:
		// Stop raced the seed capture; the capture has finished, so the
		// connection can be released here without concurrent use.
		m.mu.Unlock()
		m.closeSnapshotter()
		return ErrStopped
	}
	m.state = stateRunning
	m.current = seed
	m.hash = seed.Hash()
	m.mu.Unlock()

	m.logger.Info("schema monitoring started",
		zap.Duration("interval", m.interval),
		zap.Bool("detect_renames", m.detectRenames),
		zap.Int("tables", len(seed)))

	go m.loop(ctx)
	return nil
}

// Stop ends the monitoring loop, waits for any in-flight cycle to finish,
// and closes the underlying connection. Stopping a monitor that never ran
// marks it stopped; a concurrent or later Start call then releases the
// connection and reports ErrStopped. Calling Stop again is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.state != stateRunning {
		if m.state == stateIdle {
			m.state = stateStopped
		}
		m.mu.Unlock()
		return
	}
	m.state = stateStopped
	m.mu.Unlock()

	close(m.stopCh)
	<-m.doneCh

	m.closeSnapshotter()
	m.logger.Info("schema monitoring stopped")
}

func (m *Monitor) closeSnapshotter() {
	if err := m.snapshotter.Close(context.Background()); err != nil {
		m.logger.Warn("failed to close data source", zap.Error(err))
	}
}

// CurrentSnapshot returns a copy of the last successfully stored snapshot.
func (m *Monitor) CurrentSnapshot() snapshot.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// CurrentHash returns the hash of the last successfully stored snapshot.
func (m *Monitor) CurrentHash() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hash
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			m.logger.Info("context cancelled, schema monitoring loop exiting")
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

// check runs one capture/compare/diff/notify cycle. Every failure mode is
// contained here: the loop itself only ever sleeps and calls check.
func (m *Monitor) check(ctx context.Context) {
	fresh, err := m.snapshotter.Snapshot(ctx)
	if err != nil {
		if db.IsConnectivity(err) {
			m.logger.Warn("schema capture failed, retrying next interval", zap.Error(err))
		} else {
			m.logger.Error("schema capture failed", zap.Error(err))
		}
		return
	}

	freshHash := fresh.Hash()

	m.mu.Lock()
	stored := m.current
	storedHash := m.hash
	m.mu.Unlock()

	if freshHash == storedHash {
		m.logger.Debug("no schema changes detected")
		return
	}

	records := diff.Compute(stored, fresh, m.detectRenames)
	if len(records) == 0 {
		return
	}

	m.mu.Lock()
	m.current = fresh
	m.hash = freshHash
	m.mu.Unlock()

	m.logger.Info("schema change detected",
		zap.Int("changes", len(records)),
		zap.String("hash", freshHash))

	m.notify(records)
}

func (m *Monitor) notify(records []diff.Record) {
	if m.onChange == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("change handler failed", zap.Any("panic", r))
		}
	}()
	m.onChange(records)
}
