package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"market-data-service/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for task")
	}
}

func TestNewRefresher_Defaults(t *testing.T) {
	r := NewRefresher(config.RefreshConfig{})
	defer r.Close()

	assert.Equal(t, DefaultRefreshQueueSize, cap(r.queue))
	assert.Equal(t, DefaultRefreshTimeout, r.timeout)
}

func TestRefresher_DedupesByKey(t *testing.T) {
	r := NewRefresher(config.RefreshConfig{Workers: 2, QueueSize: 4, Timeout: time.Second})

	started := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int32

	ok := r.Schedule("quote:AAA", kindQuotes, func(context.Context) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	})
	require.True(t, ok)
	waitFor(t, started)

	assert.False(t, r.Schedule("quote:AAA", kindQuotes, func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	assert.Equal(t, 1, r.InFlight())

	close(release)
	r.Close()

	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, 0, r.InFlight())
}

func TestRefresher_KeyCanBeRefreshedAgainAfterCompletion(t *testing.T) {
	r := NewRefresher(config.RefreshConfig{Workers: 1, QueueSize: 1, Timeout: time.Second})

	done := make(chan struct{})
	require.True(t, r.Schedule("k", kindQuotes, func(context.Context) error {
		close(done)
		return nil
	}))
	waitFor(t, done)

	assert.Eventually(t, func() bool { return r.InFlight() == 0 }, time.Second, time.Millisecond)
	assert.True(t, r.Schedule("k", kindQuotes, func(context.Context) error { return nil }))
	r.Close()
}

func TestRefresher_DropsWhenQueueIsFull(t *testing.T) {
	r := NewRefresher(config.RefreshConfig{Workers: 1, QueueSize: 1, Timeout: time.Second})

	started := make(chan struct{})
	release := make(chan struct{})
	require.True(t, r.Schedule("a", kindHistory, func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	waitFor(t, started)

	// el único worker está ocupado: "b" ocupa la cola y "c" se descarta
	assert.True(t, r.Schedule("b", kindHistory, func(context.Context) error { return nil }))
	assert.False(t, r.Schedule("c", kindHistory, func(context.Context) error { return nil }))

	close(release)
	r.Close()
}

func TestRefresher_CloseDrainsQueueAndRejectsNewWork(t *testing.T) {
	r := NewRefresher(config.RefreshConfig{Workers: 2, QueueSize: 16, Timeout: time.Second})

	var runs atomic.Int32
	for _, key := range []string{"a", "b", "c", "d", "e"} {
		require.True(t, r.Schedule(key, kindQuotes, func(context.Context) error {
			runs.Add(1)
			return nil
		}))
	}
	r.Close()

	assert.Equal(t, int32(5), runs.Load())
	assert.False(t, r.Schedule("f", kindQuotes, func(context.Context) error { return nil }))

	// cerrar dos veces no falla
	r.Close()
}

func TestRefresher_FailuresAndPanicsDoNotKillWorkers(t *testing.T) {
	r := NewRefresher(config.RefreshConfig{Workers: 1, QueueSize: 4, Timeout: time.Second})

	require.True(t, r.Schedule("err", kindQuotes, func(context.Context) error {
		return errors.New("boom")
	}))
	require.True(t, r.Schedule("panic", kindQuotes, func(context.Context) error {
		panic("unexpected")
	}))

	done := make(chan struct{})
	require.True(t, r.Schedule("ok", kindQuotes, func(context.Context) error {
		close(done)
		return nil
	}))

	waitFor(t, done)
	r.Close()
	assert.Equal(t, 0, r.InFlight())
}

func TestRefresher_TaskTimeout(t *testing.T) {
	r := NewRefresher(config.RefreshConfig{Workers: 1, QueueSize: 1, Timeout: 10 * time.Millisecond})

	var got error
	require.True(t, r.Schedule("slow", kindHistory, func(ctx context.Context) error {
		<-ctx.Done()
		got = ctx.Err()
		return got
	}))
	r.Close()

	assert.ErrorIs(t, got, context.DeadlineExceeded)
}

func TestRefresher_Do(t *testing.T) {
	r := NewRefresher(config.RefreshConfig{Workers: 1})
	defer r.Close()

	v, err := r.Do("k", func() (interface{}, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = r.Do("k", func() (interface{}, error) { return nil, errors.New("boom") })
	assert.EqualError(t, err, "boom")
}
