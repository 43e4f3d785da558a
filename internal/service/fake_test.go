package service

import (
	"context"
	"sync"

	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/dcimring/pickleball-ratings/internal/worker"
)

// FakeRankingSource is a function-field fake of RankingSource
type FakeRankingSource struct {
	CurrentRankingsFunc func(ctx context.Context, mode models.Mode) (models.Collection, error)
	PingFunc            func(ctx context.Context) error
}

func (f *FakeRankingSource) CurrentRankings(ctx context.Context, mode models.Mode) (models.Collection, error) {
	if f.CurrentRankingsFunc != nil {
		return f.CurrentRankingsFunc(ctx, mode)
	}
	return models.Collection{}, nil
}

func (f *FakeRankingSource) Ping(ctx context.Context) error {
	if f.PingFunc != nil {
		return f.PingFunc(ctx)
	}
	return nil
}

// FakeSnapshotCache keeps the snapshot in memory
type FakeSnapshotCache struct {
	mu      sync.Mutex
	snap    models.Snapshot
	version int64
	saves   int
	SaveErr error
	PingErr error
}

func (f *FakeSnapshotCache) SaveSnapshot(_ context.Context, snap models.Snapshot) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SaveErr != nil {
		return 0, f.SaveErr
	}
	f.version++
	f.saves++
	snap.Version = f.version
	f.snap = snap
	return f.version, nil
}

func (f *FakeSnapshotCache) LoadSnapshot(context.Context) (models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, nil
}

func (f *FakeSnapshotCache) GetVersion(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, nil
}

func (f *FakeSnapshotCache) Ping(context.Context) error { return f.PingErr }

// publish simulates another instance writing a newer snapshot
func (f *FakeSnapshotCache) publish(snap models.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.version++
	snap.Version = f.version
	f.snap = snap
}

// FakeQueue runs tasks inline, or rejects them with SubmitErr
type FakeQueue struct {
	mu        sync.Mutex
	Tasks     []worker.InsertTask
	SubmitErr error
	InsertErr error
}

func (f *FakeQueue) Submit(task worker.InsertTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return f.SubmitErr
	}
	f.Tasks = append(f.Tasks, task)
	if task.Result != nil {
		task.Result <- f.InsertErr
	}
	return nil
}
