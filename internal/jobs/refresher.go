package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrAlreadyRunning = errors.New("refresher already running")

// Loader reloads the ranking snapshot from its source
type Loader interface {
	Load(ctx context.Context) error
}

// Refresher periodically reloads the rankings so long-running servers pick up
// newly published rating deltas. A failed reload is logged and the next tick
// tries again; there is no immediate retry.
type Refresher struct {
	loader   Loader
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// Metrics
	runs      atomic.Int64
	failures  atomic.Int64
	lastRunAt atomic.Int64
	startTime time.Time
}

// RefresherConfig holds configuration for the refresher
type RefresherConfig struct {
	Interval time.Duration
	Timeout  time.Duration // per reload, default 30s
}

// Metrics is a point-in-time view of the refresher counters
type Metrics struct {
	Running   bool      `json:"running"`
	Runs      int64     `json:"runs"`
	Failures  int64     `json:"failures"`
	LastRunAt time.Time `json:"last_run_at,omitzero"`
	Uptime    string    `json:"uptime"`
}

func NewRefresher(loader Loader, config RefresherConfig, logger *zap.Logger) *Refresher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Refresher{
		loader:   loader,
		interval: config.Interval,
		timeout:  config.Timeout,
		logger:   logger.Named("refresher"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the reload loop. A non-positive interval leaves the
// refresher disabled.
func (r *Refresher) Start(ctx context.Context) error {
	if r.interval <= 0 {
		r.logger.Info("Refresher disabled")
		return nil
	}
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	r.startTime = time.Now()
	r.logger.Info("Refresher started", zap.Duration("interval", r.interval))

	r.wg.Add(1)
	go r.loop(ctx)
	return nil
}

// Stop waits for an in-flight reload and stops the loop
func (r *Refresher) Stop() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}

	close(r.stopCh)
	r.wg.Wait()

	r.logger.Info("Refresher stopped",
		zap.Int64("runs", r.runs.Load()),
		zap.Int64("failures", r.failures.Load()),
		zap.Duration("uptime", time.Since(r.startTime).Round(time.Second)),
	)
}

func (r *Refresher) IsRunning() bool {
	return r.running.Load()
}

func (r *Refresher) GetMetrics() Metrics {
	m := Metrics{
		Running:  r.running.Load(),
		Runs:     r.runs.Load(),
		Failures: r.failures.Load(),
	}
	if ts := r.lastRunAt.Load(); ts != 0 {
		m.LastRunAt = time.Unix(0, ts)
	}
	if !r.startTime.IsZero() {
		m.Uptime = time.Since(r.startTime).Round(time.Second).String()
	}
	return m
}

func (r *Refresher) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := r.loader.Load(ctx)
	r.runs.Add(1)
	r.lastRunAt.Store(start.UnixNano())

	if err != nil {
		r.failures.Add(1)
		r.logger.Warn("Reload failed", zap.Error(err), zap.Int64("failures", r.failures.Load()))
		return
	}
	r.logger.Debug("Rankings reloaded", zap.Duration("took", time.Since(start)))
}
