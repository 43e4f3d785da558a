package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(context.Background(), &fakeSource{snap: testSnapshot()}, &fakeSubmitter{}, testOptions(), RegistryConfig{}, zaptest.NewLogger(t))
	t.Cleanup(r.CloseAll)
	return r
}

func TestRegistry_CreateGetClose(t *testing.T) {
	r := newTestRegistry(t)

	id, c := r.Create()
	require.NotEmpty(t, id)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Same(t, c, got)

	require.NoError(t, r.Close(id))
	assert.Zero(t, r.Len())
	assert.ErrorIs(t, c.Navigate(ViewStandings), ErrClosed)

	_, err = r.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Close(id), ErrNotFound)
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	r := newTestRegistry(t)

	_, a := r.Create()
	_, b := r.Create()

	require.NoError(t, a.Navigate(ViewTourneyCheck))
	sa, err := a.Screen(context.Background())
	require.NoError(t, err)
	sb, err := b.Screen(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ViewTourneyCheck, sa.View)
	assert.Equal(t, ViewStandings, sb.View)
}

func TestRegistry_CloseAll(t *testing.T) {
	r := newTestRegistry(t)

	_, a := r.Create()
	_, b := r.Create()
	r.CloseAll()

	assert.Zero(t, r.Len())
	assert.ErrorIs(t, a.RunCheck(), ErrClosed)
	assert.ErrorIs(t, b.RunCheck(), ErrClosed)
}

func TestRegistry_SweepExpiresIdleSessions(t *testing.T) {
	r := NewRegistry(context.Background(), &fakeSource{snap: testSnapshot()}, &fakeSubmitter{}, testOptions(),
		RegistryConfig{IdleTTL: time.Minute}, zaptest.NewLogger(t))
	t.Cleanup(r.CloseAll)

	idle, idleCtrl := r.Create()
	active, _ := r.Create()

	now := time.Now()
	assert.Zero(t, r.Sweep(now), "fresh sessions are kept")

	r.mu.Lock()
	r.sessions[idle].lastSeen = now.Add(-2 * time.Minute)
	r.sessions[active].lastSeen = now.Add(-2 * time.Minute)
	r.mu.Unlock()

	_, err := r.Get(active)
	require.NoError(t, err)

	assert.Equal(t, 1, r.Sweep(time.Now()))
	assert.Equal(t, 1, r.Len())
	assert.EqualValues(t, 1, r.Swept())

	_, err = r.Get(idle)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, idleCtrl.RunCheck(), ErrClosed)

	_, err = r.Get(active)
	assert.NoError(t, err)
}

func TestRegistry_SweepDisabledWithoutTTL(t *testing.T) {
	r := newTestRegistry(t)
	r.Create()

	assert.Zero(t, r.Sweep(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SweptSessionNeverAutoReturns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	opts := testOptions()
	opts.AutoReturnDelay = 150 * time.Millisecond
	r := NewRegistry(ctx, &fakeSource{snap: testSnapshot()}, &fakeSubmitter{}, opts,
		RegistryConfig{IdleTTL: 60 * time.Millisecond, SweepInterval: 10 * time.Millisecond}, zaptest.NewLogger(t))
	t.Cleanup(r.CloseAll)

	id, c := r.Create()
	require.NoError(t, c.Navigate(ViewSuggestionForm))
	require.NoError(t, c.Submit(validRequest))
	require.Eventually(t, func() bool {
		return statusOf(t, c) == SubmissionSuccess
	}, time.Second, 2*time.Millisecond)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("idle session was not swept")
	}

	_, err := r.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, r.Len())

	_, err = c.Screen(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegistry_AccessKeepsSessionAlive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := NewRegistry(ctx, &fakeSource{snap: testSnapshot()}, &fakeSubmitter{}, testOptions(),
		RegistryConfig{IdleTTL: 80 * time.Millisecond, SweepInterval: 10 * time.Millisecond}, zaptest.NewLogger(t))
	t.Cleanup(r.CloseAll)

	id, _ := r.Create()
	deadline := time.Now().Add(250 * time.Millisecond)
	for time.Now().Before(deadline) {
		_, err := r.Get(id)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
}
