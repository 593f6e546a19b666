package mock

import (
	"context"
	"testing"
	"time"

	"market-data-service/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 1, 8, 15, 0, 0, 0, time.UTC)
}

func TestProvider_FetchQuotes(t *testing.T) {
	p := NewProvider(WithUnknownSymbols("zzzz"), WithClock(fixedNow))

	quotes, err := p.FetchQuotes(context.Background(), []string{"AAPL", "ZZZZ", "NEWCO"})
	require.NoError(t, err)
	require.Len(t, quotes, 2, "unknown symbols are omitted")
	assert.Equal(t, "AAPL", quotes[0].Symbol)
	assert.Equal(t, "NEWCO", quotes[1].Symbol)
	assert.InDelta(t, 190.0, quotes[0].Price, 190*0.021)
	assert.Equal(t, fixedNow(), quotes[0].AsOf)

	again, err := p.FetchQuotes(context.Background(), []string{"AAPL", "ZZZZ", "NEWCO"})
	require.NoError(t, err)
	assert.Equal(t, quotes, again, "output is deterministic")
}

func TestProvider_FetchHistory(t *testing.T) {
	p := NewProvider(WithUnknownSymbols("BBB"))
	window := entities.Window{
		Start: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), // lunes
		End:   time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name     string
		interval entities.Interval
		want     int
	}{
		{name: "daily skips weekends", interval: entities.IntervalDay, want: 10},
		{name: "weekly", interval: entities.IntervalWeek, want: 2},
		{name: "monthly", interval: entities.IntervalMonth, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := p.FetchHistory(context.Background(), "AAA", window, tt.interval)
			require.NoError(t, err)
			assert.Len(t, points, tt.want)
			for i, pt := range points {
				assert.Equal(t, "AAA", pt.Symbol)
				assert.Greater(t, pt.High, pt.Low)
				if i > 0 {
					assert.True(t, pt.Date.After(points[i-1].Date), "ascending dates")
				}
			}
		})
	}

	_, err := p.FetchHistory(context.Background(), "BBB", window, entities.IntervalDay)
	assert.True(t, entities.IsNotFound(err))
}

func TestProvider_AddSymbolAndLatency(t *testing.T) {
	p := NewProvider(WithUnknownSymbols("NEW"), WithLatency(time.Hour))
	p.AddSymbol("new", 42)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.FetchQuotes(ctx, []string{"NEW"})
	assert.Error(t, err)

	p.latency = 0
	quotes, err := p.FetchQuotes(context.Background(), []string{"NEW"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.InDelta(t, 42, quotes[0].Price, 1)
	assert.Equal(t, ProviderName, p.Name())
}
