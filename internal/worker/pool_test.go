package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dcimring/pickleball-ratings/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeStore struct {
	mu       sync.Mutex
	inserted []models.FeatureRequest
	insertFn func(req *models.FeatureRequest) error
}

func (f *fakeStore) InsertFeatureRequest(_ context.Context, req *models.FeatureRequest) error {
	if f.insertFn != nil {
		if err := f.insertFn(req); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, *req)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func waitResult(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for insert result")
		return nil
	}
}

func TestWorkerPool_ProcessesTask(t *testing.T) {
	store := &fakeStore{}
	wp := NewWorkerPool(2, 4, store, zaptest.NewLogger(t))
	wp.Start()

	result := make(chan error, 1)
	require.NoError(t, wp.Submit(InsertTask{
		Request: models.FeatureRequest{UserName: "Dana", Details: "Add a doubles partner finder"},
		Result:  result,
	}))
	require.NoError(t, waitResult(t, result))
	require.NoError(t, wp.Shutdown(time.Second))

	assert.Equal(t, 1, store.count())
	assert.Equal(t, int64(1), wp.GetMetrics().Processed)
}

func TestWorkerPool_ReportsStoreError(t *testing.T) {
	storeErr := errors.New("insert failed")
	store := &fakeStore{insertFn: func(*models.FeatureRequest) error { return storeErr }}
	wp := NewWorkerPool(1, 1, store, zaptest.NewLogger(t))
	wp.Start()
	defer wp.Shutdown(time.Second)

	result := make(chan error, 1)
	require.NoError(t, wp.Submit(InsertTask{Result: result}))
	assert.ErrorIs(t, waitResult(t, result), storeErr)
	assert.Equal(t, int64(1), wp.GetMetrics().Failed)
}

func TestWorkerPool_RecoversFromPanic(t *testing.T) {
	store := &fakeStore{insertFn: func(*models.FeatureRequest) error { panic("boom") }}
	wp := NewWorkerPool(1, 1, store, zaptest.NewLogger(t))
	wp.Start()
	defer wp.Shutdown(time.Second)

	result := make(chan error, 1)
	require.NoError(t, wp.Submit(InsertTask{Result: result}))
	assert.Error(t, waitResult(t, result))

	// the worker survives and keeps processing
	store.insertFn = nil
	require.NoError(t, wp.Submit(InsertTask{Result: result}))
	assert.NoError(t, waitResult(t, result))
}

func TestWorkerPool_Backpressure(t *testing.T) {
	// not started, so the single slot stays occupied
	wp := NewWorkerPool(1, 1, &fakeStore{}, zaptest.NewLogger(t))

	require.NoError(t, wp.Submit(InsertTask{}))
	assert.ErrorIs(t, wp.Submit(InsertTask{}), ErrQueueFull)
	assert.Equal(t, int64(1), wp.GetMetrics().BackpressureEvents)
	assert.Equal(t, "1/1", wp.GetMetrics().QueueUtilization)
}

func TestWorkerPool_ShutdownDrainsQueue(t *testing.T) {
	store := &fakeStore{}
	wp := NewWorkerPool(1, 8, store, zaptest.NewLogger(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, wp.Submit(InsertTask{}))
	}
	wp.Start()
	require.NoError(t, wp.Shutdown(time.Second))

	assert.Equal(t, 5, store.count())
	assert.ErrorIs(t, wp.Submit(InsertTask{}), ErrPoolClosed)
	assert.NoError(t, wp.Shutdown(time.Second), "second shutdown is a no-op")
}
