package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"market-data-service/internal/domain/entities"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedisClient es un mock del cliente Redis
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	cmd := redis.NewStringCmd(ctx, "get", key)
	if args.Error(1) != nil {
		cmd.SetErr(args.Error(1))
	} else {
		cmd.SetVal(args.String(0))
	}
	return cmd
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	if args.Error(0) != nil {
		cmd.SetErr(args.Error(0))
	} else {
		cmd.SetVal("OK")
	}
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	cmd := redis.NewIntCmd(ctx, "del")
	if args.Error(1) != nil {
		cmd.SetErr(args.Error(1))
	} else {
		cmd.SetVal(int64(args.Int(0)))
	}
	return cmd
}

func (m *MockRedisClient) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	args := m.Called(ctx, key, members)
	cmd := redis.NewIntCmd(ctx, "sadd", key)
	if args.Error(0) != nil {
		cmd.SetErr(args.Error(0))
	} else {
		cmd.SetVal(int64(len(members)))
	}
	return cmd
}

func (m *MockRedisClient) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	args := m.Called(ctx, key)
	cmd := redis.NewStringSliceCmd(ctx, "smembers", key)
	if args.Error(1) != nil {
		cmd.SetErr(args.Error(1))
	} else if val, ok := args.Get(0).([]string); ok {
		cmd.SetVal(val)
	}
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	args := m.Called(ctx)
	cmd := redis.NewStatusCmd(ctx, "ping")
	if args.Error(0) != nil {
		cmd.SetErr(args.Error(0))
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func samplePoints(symbol string) []entities.HistoryPoint {
	return []entities.HistoryPoint{
		{Symbol: symbol, Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), High: 12.5, Low: 11},
		{Symbol: symbol, Date: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), High: 13, Low: 12.1},
	}
}

func encodePoints(t *testing.T, points []entities.HistoryPoint) string {
	t.Helper()
	data, err := json.Marshal(points)
	require.NoError(t, err)
	return string(data)
}

func TestNewRedisStoreWithClient_DefaultPrefix(t *testing.T) {
	store := NewRedisStoreWithClient(new(MockRedisClient), "", 0)
	assert.Equal(t, "market-data:history:AAPL", store.historyKey("AAPL"))
	assert.Equal(t, "market-data:symbols", store.symbolsKey())

	custom := NewRedisStoreWithClient(new(MockRedisClient), "md:", 0)
	assert.Equal(t, "md:history:AAPL", custom.historyKey("AAPL"))
}

func TestRedisStore_ReplaceHistory(t *testing.T) {
	ctx := context.Background()
	points := samplePoints("AAPL")

	tests := []struct {
		name    string
		setErr  error
		saddErr error
		wantErr string
	}{
		{name: "stores and indexes"},
		{name: "set fails", setErr: errors.New("connection refused"), wantErr: "failed to store snapshot for AAPL"},
		{name: "index fails", saddErr: errors.New("READONLY"), wantErr: "failed to index snapshot for AAPL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockRedisClient)
			store := NewRedisStoreWithClient(client, "md:", time.Hour)

			var stored []byte
			client.On("Set", ctx, "md:history:AAPL", mock.Anything, time.Hour).
				Run(func(args mock.Arguments) { stored = args.Get(2).([]byte) }).
				Return(tt.setErr)
			if tt.setErr == nil {
				client.On("SAdd", ctx, "md:symbols", []interface{}{"AAPL"}).Return(tt.saddErr)
			}

			err := store.ReplaceHistory(ctx, "AAPL", points)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, encodePoints(t, points), string(stored))
			}
			client.AssertExpectations(t)
		})
	}
}

func TestRedisStore_ReplaceHistoryRejectsEmptySymbol(t *testing.T) {
	client := new(MockRedisClient)
	store := NewRedisStoreWithClient(client, "", 0)

	err := store.ReplaceHistory(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrInvalidSymbol)
	client.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRedisStore_LoadHistory(t *testing.T) {
	ctx := context.Background()
	points := samplePoints("MSFT")

	tests := []struct {
		name         string
		val          string
		err          error
		wantNotFound bool
		wantErr      bool
	}{
		{name: "found", val: encodePoints(t, points)},
		{name: "missing key", err: redis.Nil, wantNotFound: true, wantErr: true},
		{name: "connection error", err: errors.New("i/o timeout"), wantErr: true},
		{name: "corrupted payload", val: "{not json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockRedisClient)
			store := NewRedisStoreWithClient(client, "md:", 0)
			client.On("Get", ctx, "md:history:MSFT").Return(tt.val, tt.err)

			got, err := store.LoadHistory(ctx, "MSFT")

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantNotFound, entities.IsNotFound(err))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.True(t, points[0].Date.Equal(got[0].Date))
			assert.Equal(t, points[1].High, got[1].High)
		})
	}
}

func TestRedisStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	client := new(MockRedisClient)
	store := NewRedisStoreWithClient(client, "md:", 0)

	client.On("SMembers", ctx, "md:symbols").Return([]string{"AAPL", "GONE"}, nil)
	client.On("Get", ctx, "md:history:AAPL").Return(encodePoints(t, samplePoints("AAPL")), nil)
	// expiró por TTL pero sigue en el set
	client.On("Get", ctx, "md:history:GONE").Return("", redis.Nil)
	client.On("Del", ctx, []string{"md:history:AAPL", "md:history:GONE", "md:symbols"}).Return(2, nil)

	deleted, err := store.ClearAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	client.AssertExpectations(t)
}

func TestRedisStore_ClearAllErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("list fails", func(t *testing.T) {
		client := new(MockRedisClient)
		store := NewRedisStoreWithClient(client, "md:", 0)
		client.On("SMembers", ctx, "md:symbols").Return(nil, errors.New("connection refused"))

		_, err := store.ClearAll(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list snapshots")
	})

	t.Run("delete fails", func(t *testing.T) {
		client := new(MockRedisClient)
		store := NewRedisStoreWithClient(client, "md:", 0)
		client.On("SMembers", ctx, "md:symbols").Return([]string{}, nil)
		client.On("Del", ctx, []string{"md:symbols"}).Return(0, errors.New("READONLY"))

		deleted, err := store.ClearAll(ctx)
		require.Error(t, err)
		assert.Zero(t, deleted)
	})
}

func TestRedisStore_PingAndClose(t *testing.T) {
	ctx := context.Background()
	client := new(MockRedisClient)
	store := NewRedisStoreWithClient(client, "", 0)

	client.On("Ping", ctx).Return(nil).Once()
	client.On("Ping", ctx).Return(errors.New("connection refused")).Once()
	client.On("Close").Return(nil)

	assert.NoError(t, store.Ping(ctx))
	assert.Error(t, store.Ping(ctx))
	assert.NoError(t, store.Close())
	client.AssertExpectations(t)
}
