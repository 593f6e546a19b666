package entities

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "already normalized", raw: "AAPL", want: "AAPL"},
		{name: "lowercase", raw: "msft", want: "MSFT"},
		{name: "surrounding whitespace", raw: "  reliance.ns \t", want: "RELIANCE.NS"},
		{name: "empty", raw: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSymbol(tt.raw))
		})
	}
}

func TestNormalizeSymbols_KeepsDuplicatesAndDropsEmpty(t *testing.T) {
	got := NormalizeSymbols([]string{"aapl", "", " AAPL ", "tsla"})
	assert.Equal(t, []string{"AAPL", "AAPL", "TSLA"}, got)
}

func TestValidateSymbol(t *testing.T) {
	tests := []struct {
		name    string
		symbol  string
		wantErr bool
	}{
		{name: "plain ticker", symbol: "AAPL"},
		{name: "exchange suffix", symbol: "HONASA.NS"},
		{name: "index", symbol: "^GSPC"},
		{name: "currency pair", symbol: "EURUSD=X"},
		{name: "class share", symbol: "BRK-B"},
		{name: "empty", symbol: "", wantErr: true},
		{name: "lowercase not normalized", symbol: "aapl", wantErr: true},
		{name: "injection attempt", symbol: "AAPL;DROP", wantErr: true},
		{name: "too long", symbol: "ABCDEFGHIJKLMNOPQRSTU", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSymbol(tt.symbol)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("fetch history: %w", WrapCause(ErrRateLimited, errors.New("HTTP 429")))

	assert.True(t, IsRateLimited(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, "RATE_LIMITED", ErrorCode(wrapped))
	assert.Contains(t, wrapped.Error(), "HTTP 429")
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
}

func TestParseInterval(t *testing.T) {
	i, err := ParseInterval("")
	require.NoError(t, err)
	assert.Equal(t, IntervalDay, i)

	i, err = ParseInterval("1wk")
	require.NoError(t, err)
	assert.Equal(t, IntervalWeek, i)

	_, err = ParseInterval("7y")
	assert.True(t, IsValidation(err))
}

func TestWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

	w := DefaultHistoryWindow(now)
	assert.Equal(t, time.Date(2022, 3, 10, 15, 30, 0, 0, time.UTC), w.Start)
	assert.Equal(t, now, w.End)
	assert.Equal(t, "2022-03-10:2025-03-10", w.Key())

	later := DefaultHistoryWindow(now.Add(2 * time.Hour))
	assert.Equal(t, w.Key(), later.Key(), "same-day windows share a key")

	_, err := NewWindow(now, now.Add(-time.Hour))
	assert.True(t, IsValidation(err))
}

func TestBatchResult(t *testing.T) {
	b := NewBatchResult[PriceQuote]("Yahoo Finance")
	b.AddData(NewPriceQuote("AAA", 10, 1, 10, time.Time{}))
	b.AddError("BBB", MsgNoDataFound)
	b.AddError(GlobalErrorSymbol, MsgRateLimitedAborted)

	assert.Len(t, b.Data, 1)
	assert.True(t, b.HasGlobalError())
	assert.Equal(t, map[string]bool{"BBB": true}, b.ErrorSymbols())
}
