package retry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantTimer no espera; registra los delays pedidos
type instantTimer struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (t *instantTimer) After(d time.Duration) <-chan time.Time {
	t.mu.Lock()
	t.delays = append(t.delays, d)
	t.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func (t *instantTimer) Delays() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.delays...)
}

// failingStub falla con err las primeras failures llamadas
type failingStub struct {
	failures int
	err      error
	calls    int
}

func (s *failingStub) call(context.Context) (string, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", s.err
	}
	return "ok", nil
}

func rateLimited() error {
	return entities.WrapCause(entities.ErrRateLimited, errors.New("HTTP 429 Too Many Requests"))
}

func testPolicy(attempts uint, timer Timer) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   100 * time.Millisecond,
		MaxJitter:   -1,
		Operation:   "test",
		Timer:       timer,
	}
}

func TestDo_RateLimitedCallCounts(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts uint
		failures    int
		wantCalls   int
		wantErr     bool
	}{
		{name: "succeeds first try", maxAttempts: 3, failures: 0, wantCalls: 1},
		{name: "one rate limit then success", maxAttempts: 3, failures: 1, wantCalls: 2},
		{name: "k failures below budget", maxAttempts: 5, failures: 3, wantCalls: 4},
		{name: "exhausted exactly", maxAttempts: 3, failures: 3, wantCalls: 3, wantErr: true},
		{name: "exhausted with more failures", maxAttempts: 2, failures: 10, wantCalls: 2, wantErr: true},
		{name: "single attempt never retries", maxAttempts: 1, failures: 1, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &failingStub{failures: tt.failures, err: rateLimited()}
			timer := &instantTimer{}

			got, err := Do(context.Background(), testPolicy(tt.maxAttempts, timer), stub.call)

			assert.Equal(t, tt.wantCalls, stub.calls)
			assert.Len(t, timer.Delays(), tt.wantCalls-1)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, entities.IsRateLimited(err))
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", got)
		})
	}
}

func TestDo_NonRateLimitedErrorIsNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "not found", err: entities.Wrap(entities.ErrNotFound, "no data found")},
		{name: "upstream", err: entities.WrapCause(entities.ErrUpstream, errors.New("HTTP 500"))},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &failingStub{failures: 5, err: tt.err}
			timer := &instantTimer{}

			_, err := Do(context.Background(), testPolicy(3, timer), stub.call)

			require.Error(t, err)
			assert.Equal(t, 1, stub.calls)
			assert.Same(t, tt.err, err, "error propagates unchanged")
			assert.Empty(t, timer.Delays())
		})
	}
}

func TestDo_ExhaustionReturnsLastErrorUnchanged(t *testing.T) {
	last := rateLimited()
	calls := 0
	_, err := Do(context.Background(), testPolicy(2, &instantTimer{}), func(context.Context) (int, error) {
		calls++
		if calls == 2 {
			return 0, last
		}
		return 0, rateLimited()
	})

	assert.Same(t, last, err)
}

func TestDo_ExponentialDelays(t *testing.T) {
	stub := &failingStub{failures: 3, err: rateLimited()}
	timer := &instantTimer{}

	_, err := Do(context.Background(), testPolicy(4, timer), stub.call)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}, timer.Delays())
}

// blockingTimer nunca dispara; solo la cancelación del contexto corta la espera
type blockingTimer struct{}

func (blockingTimer) After(time.Duration) <-chan time.Time { return nil }

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	_, err := Do(ctx, testPolicy(3, blockingTimer{}), func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, rateLimited()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_ConcurrentCallsDoNotShareCounters(t *testing.T) {
	policy := testPolicy(3, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			timer := &instantTimer{}
			p := policy
			p.Timer = timer
			p.Operation = fmt.Sprintf("op-%d", i)

			stub := &failingStub{failures: 2, err: rateLimited()}
			_, err := Do(context.Background(), p, stub.call)

			assert.NoError(t, err)
			assert.Equal(t, 3, stub.calls)
			assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, timer.Delays())
		}(i)
	}
	wg.Wait()
}

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxJitter: 500 * time.Millisecond}

	for retry := uint(0); retry < 4; retry++ {
		base := time.Second << retry
		for i := 0; i < 50; i++ {
			d := p.Backoff(retry)
			assert.GreaterOrEqual(t, d, base)
			assert.Less(t, d, base+500*time.Millisecond)
		}
	}

	// el exponente se acota
	huge := Policy{BaseDelay: time.Millisecond, MaxJitter: -1}
	assert.Equal(t, time.Millisecond<<maxShift, huge.Backoff(1000))
}

func TestPolicy_Defaults(t *testing.T) {
	p := Policy{}.normalized()
	assert.Equal(t, uint(DefaultMaxAttempts), p.MaxAttempts)
	assert.Equal(t, DefaultMaxJitter, p.MaxJitter)
	assert.Equal(t, "upstream", p.Operation)

	cfg := PolicyFromConfig(config.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, MaxJitter: time.Second}, "fetch_history")
	assert.Equal(t, uint(5), cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.BaseDelay)
	assert.Equal(t, "fetch_history", cfg.Operation)
	assert.Equal(t, "fetch_quotes", cfg.WithOperation("fetch_quotes").Operation)
	assert.Equal(t, "fetch_history", cfg.Operation)
}
