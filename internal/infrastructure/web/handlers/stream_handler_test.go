package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"market-data-service/internal/application/dto"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStreamInterval(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "", want: DefaultStreamInterval},
		{raw: "2s", want: 2 * time.Second},
		{raw: "5m", want: 5 * time.Minute},
		{raw: "500ms", wantErr: true},
		{raw: "1h", wantErr: true},
		{raw: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseStreamInterval(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStreamHandler_RejectsBadInputBeforeUpgrade(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "no symbols", query: "interval=1s"},
		{name: "bad interval", query: "symbols=AAPL&interval=10ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			market := &fakeMarket{}
			rec := httptest.NewRecorder()
			NewStreamHandler(market, 5, nil).Stream(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stream?"+tt.query, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, market.QuoteCalls())
		})
	}
}

func TestStreamHandler_PushesQuoteBatches(t *testing.T) {
	market := &fakeMarket{}
	srv := httptest.NewServer(http.HandlerFunc(NewStreamHandler(market, 5, []string{"*"}).Stream))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/stream?symbols=aapl,BAD&interval=1s"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// el primer batch sale apenas se abre el stream
	var first dto.QuotesResponse
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "Yahoo Finance", first.Source)
	require.Len(t, first.Data, 1)
	assert.Equal(t, "AAPL", first.Data[0].Symbol)
	assert.Equal(t, []dto.SymbolError{{Symbol: "BAD", Error: "no data found"}}, first.Errors)

	var second dto.QuotesResponse
	require.NoError(t, conn.ReadJSON(&second))
	assert.Len(t, second.Data, 1)

	calls := market.QuoteCalls()
	require.GreaterOrEqual(t, len(calls), 2)
	assert.Equal(t, []string{"AAPL", "BAD"}, calls[0])
}

func TestStreamHandler_PingsKeepLongIntervalsAlive(t *testing.T) {
	market := &fakeMarket{}
	h := NewStreamHandler(market, 5, nil)
	h.pongWait = 500 * time.Millisecond

	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	// el intervalo de push supera varias veces el pong wait
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?symbols=AAPL&interval=2s"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var pings atomic.Int32
	conn.SetPingHandler(func(data string) error {
		pings.Add(1)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first, second dto.QuotesResponse
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second), "stream must survive past the pong wait")
	assert.Len(t, second.Data, 1)
	assert.GreaterOrEqual(t, pings.Load(), int32(2))
}

func TestStreamHandler_RejectsForeignOrigin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(NewStreamHandler(&fakeMarket{}, 5, []string{"https://app.example.com"}).Stream))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?symbols=AAPL"
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
