package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dcimring/pickleball-ratings/internal/models"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by Submit when the queue has no free slot
var ErrQueueFull = errors.New("worker pool queue full (backpressure)")

// ErrPoolClosed is returned by Submit after Shutdown
var ErrPoolClosed = errors.New("worker pool closed")

// FeatureRequestStore persists suggestions
type FeatureRequestStore interface {
	InsertFeatureRequest(ctx context.Context, req *models.FeatureRequest) error
}

// InsertTask represents a suggestion to persist. The outcome is sent on
// Result when it is non-nil; the channel must have room for one value.
type InsertTask struct {
	Request models.FeatureRequest
	Result  chan<- error
}

// WorkerPool manages a pool of workers for asynchronous database writes
type WorkerPool struct {
	jobs        chan InsertTask
	workerCount int
	store       FeatureRequestStore
	timeout     time.Duration
	logger      *zap.Logger
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	metrics     *PoolMetrics

	mu     sync.RWMutex
	closed bool
}

// PoolMetrics tracks worker pool performance
type PoolMetrics struct {
	mu              sync.RWMutex
	processed       int64
	failed          int64
	backpressure    int64
	totalProcessing time.Duration
}

// Metrics is a point-in-time copy of the pool counters
type Metrics struct {
	Processed          int64  `json:"processed"`
	Failed             int64  `json:"failed"`
	BackpressureEvents int64  `json:"backpressure_events"`
	AvgProcessingTime  string `json:"avg_processing_time"`
	QueueUtilization   string `json:"queue_utilization"`
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workerCount, queueSize int, store FeatureRequestStore, logger *zap.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		jobs:        make(chan InsertTask, queueSize),
		workerCount: workerCount,
		store:       store,
		timeout:     5 * time.Second,
		logger:      logger.Named("worker_pool"),
		ctx:         ctx,
		cancel:      cancel,
		metrics:     &PoolMetrics{},
	}
}

// Start initializes and starts all worker goroutines
func (wp *WorkerPool) Start() {
	wp.logger.Info("starting worker pool",
		zap.Int("workers", wp.workerCount),
		zap.Int("queue_size", cap(wp.jobs)))

	for i := 1; i <= wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// worker is the main worker loop that processes jobs
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return

		case task, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processTask(id, task)
		}
	}
}

// processTask handles a single insert with panic recovery
func (wp *WorkerPool) processTask(workerID int, task InsertTask) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("worker panic recovered",
				zap.Int("worker", workerID),
				zap.Any("panic", r))
			err = fmt.Errorf("worker panic: %v", r)
			wp.metrics.incrementFailed()
		}
		if task.Result != nil {
			task.Result <- err
		}
	}()

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(wp.ctx, wp.timeout)
	defer cancel()

	req := task.Request
	err = wp.store.InsertFeatureRequest(ctx, &req)

	processingTime := time.Since(startTime)

	if err != nil {
		wp.logger.Error("failed to persist feature request",
			zap.Int("worker", workerID),
			zap.Duration("took", processingTime),
			zap.Error(err))
		wp.metrics.incrementFailed()
		return
	}

	wp.logger.Debug("feature request persisted",
		zap.Int("worker", workerID),
		zap.Duration("took", processingTime))
	wp.metrics.recordSuccess(processingTime)
}

// Submit attempts to add a task to the queue without blocking
func (wp *WorkerPool) Submit(task InsertTask) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}

	select {
	case wp.jobs <- task:
		return nil

	default:
		wp.logger.Warn("queue full, rejecting feature request")
		wp.metrics.incrementBackpressure()
		return ErrQueueFull
	}
}

// Shutdown gracefully stops the worker pool, draining queued tasks
func (wp *WorkerPool) Shutdown(timeout time.Duration) error {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return nil
	}
	wp.closed = true
	close(wp.jobs)
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m := wp.GetMetrics()
		wp.logger.Info("worker pool stopped",
			zap.Int64("processed", m.Processed),
			zap.Int64("failed", m.Failed),
			zap.Int64("backpressure_events", m.BackpressureEvents),
			zap.String("avg_processing_time", m.AvgProcessingTime))
		return nil

	case <-time.After(timeout):
		wp.cancel()
		return fmt.Errorf("shutdown timeout exceeded after %v", timeout)
	}
}

// GetMetrics returns a snapshot of the pool metrics
func (wp *WorkerPool) GetMetrics() Metrics {
	wp.metrics.mu.RLock()
	defer wp.metrics.mu.RUnlock()

	avgProcessing := time.Duration(0)
	if wp.metrics.processed > 0 {
		avgProcessing = wp.metrics.totalProcessing / time.Duration(wp.metrics.processed)
	}

	return Metrics{
		Processed:          wp.metrics.processed,
		Failed:             wp.metrics.failed,
		BackpressureEvents: wp.metrics.backpressure,
		AvgProcessingTime:  avgProcessing.String(),
		QueueUtilization:   fmt.Sprintf("%d/%d", len(wp.jobs), cap(wp.jobs)),
	}
}

func (pm *PoolMetrics) recordSuccess(duration time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.processed++
	pm.totalProcessing += duration
}

func (pm *PoolMetrics) incrementFailed() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.failed++
}

func (pm *PoolMetrics) incrementBackpressure() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.backpressure++
}
