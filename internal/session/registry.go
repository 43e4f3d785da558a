package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned for an unknown session id
var ErrNotFound = errors.New("session not found")

// RegistryConfig controls idle session expiry. A non-positive IdleTTL or
// SweepInterval disables sweeping.
type RegistryConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry tracks the live controllers by session id
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	ctx       context.Context
	source    SnapshotSource
	submitter Submitter
	opts      Options
	cfg       RegistryConfig
	logger    *zap.Logger

	swept atomic.Int64
}

// NewRegistry creates a registry whose sessions live under ctx. When idle
// expiry is configured a sweep loop runs until ctx is cancelled.
func NewRegistry(ctx context.Context, source SnapshotSource, submitter Submitter, opts Options, cfg RegistryConfig, logger *zap.Logger) *Registry {
	r := &Registry{
		sessions:  make(map[string]*entry),
		ctx:       ctx,
		source:    source,
		submitter: submitter,
		opts:      opts,
		cfg:       cfg,
		logger:    logger.Named("sessions"),
	}

	if cfg.IdleTTL > 0 && cfg.SweepInterval > 0 {
		go r.sweepLoop()
	}
	return r
}

// Create starts a new controller and returns its id
func (r *Registry) Create() (string, *Controller) {
	id := uuid.NewString()
	c := NewController(r.ctx, r.source, r.submitter, r.opts, r.logger.With(zap.String("session_id", id)))

	r.mu.Lock()
	r.sessions[id] = &entry{ctrl: c, lastSeen: time.Now()}
	n := len(r.sessions)
	r.mu.Unlock()

	r.logger.Debug("session created", zap.String("session_id", id), zap.Int("active", n))
	return id, c
}

// Get returns the controller for id and marks the session as active
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = time.Now()
	return e.ctrl, nil
}

// Close stops and forgets one session
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	e.ctrl.Close()
	r.logger.Debug("session closed", zap.String("session_id", id))
	return nil
}

// CloseAll stops every session
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range sessions {
		e.ctrl.Close()
	}
	r.logger.Info("all sessions closed", zap.Int("count", len(sessions)))
}

// Sweep closes every session not accessed within the idle TTL as of now.
// It returns the number of sessions closed.
func (r *Registry) Sweep(now time.Time) int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	var expired []*Controller
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) >= r.cfg.IdleTTL {
			expired = append(expired, e.ctrl)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if n := len(expired); n > 0 {
		r.swept.Add(int64(n))
		r.logger.Info("idle sessions expired", zap.Int("count", n), zap.Int("active", r.Len()))
	}
	return len(expired)
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Swept returns how many sessions have expired from idleness
func (r *Registry) Swept() int64 {
	return r.swept.Load()
}
