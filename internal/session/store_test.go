package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijaikiren/portfolio/internal/navigation"
	"github.com/vijaikiren/portfolio/internal/scrollspy"
)

type idleHost struct{}

func (idleHost) ScrollOffset() float64   { return 0 }
func (idleHost) ViewportHeight() float64 { return 0 }
func (idleHost) SubscribeScroll(func()) navigation.Subscription {
	return navigation.SubscriptionFunc(func() {})
}
func (idleHost) ScrollIntoView(int, scrollspy.Region) {}

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore(time.Minute, nil)
	sess := s.Create()

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, 0, got.Controller.Active())
	assert.Nil(t, got.Controller.Selected())
	assert.Equal(t, 1, s.Len())
}

func TestStore_UnknownID(t *testing.T) {
	s := NewStore(time.Minute, nil)
	_, err := s.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_SweepExpiresIdleSessions(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(10*time.Minute, nil)
	s.now = func() time.Time { return now }

	idle := s.Create()
	busy := s.Create()

	now = now.Add(8 * time.Minute)
	_, err := s.Get(busy.ID)
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, s.Sweep())

	_, err = s.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(busy.ID)
	assert.NoError(t, err)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(time.Minute, nil)
	sess := s.Create()
	s.Delete(sess.ID)
	s.Delete(sess.ID)
	assert.Equal(t, 0, s.Len())
}

func TestStore_RunStopsWithContext(t *testing.T) {
	s := NewStore(time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStore_TouchKeepsSessionAlive(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(10*time.Minute, nil)
	s.now = func() time.Time { return now }

	sess := s.Create()
	now = now.Add(9 * time.Minute)
	s.Touch(sess.ID)
	s.Touch("unknown")

	now = now.Add(9 * time.Minute)
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, now.Add(-9*time.Minute), sess.LastSeen())
}

func TestStore_SweepKeepsMountedSessions(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(10*time.Minute, nil)
	s.now = func() time.Time { return now }

	live := s.Create()
	live.Controller.Mount(idleHost{}, nil)
	s.Create()

	now = now.Add(time.Hour)
	assert.Equal(t, 1, s.Sweep())
	_, err := s.Get(live.ID)
	require.NoError(t, err)
	assert.True(t, live.Controller.Mounted())

	live.Controller.Close()
	now = now.Add(time.Hour)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 0, s.Len())
}
