package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zamyatin-zkex/quoter/internal/catalog"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/event"
	"github.com/zamyatin-zkex/quoter/internal/format"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func aaplQuote(seq int64, value string) entity.Quote {
	return entity.Quote{
		Symbol:        "AAPL",
		Name:          "Apple Inc.",
		Kind:          entity.KindStock,
		Precision:     2,
		Value:         dec(value),
		ChangePercent: dec("0.3291"),
		ChangeValue:   dec("0.64"),
		Window:        []entity.QuotePoint{{Value: dec("194.48")}, {Value: dec(value)}},
		Seq:           seq,
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	account := Account{
		Holdings: []entity.Holding{{Symbol: "AAPL", Name: "Apple Inc.", Shares: dec("50"), AvgPrice: dec("180.25")}},
		Cash:     dec("15420.50"),
	}
	serv := New(":0", catalog.Default(), account, nil)
	serv.now = func() time.Time { return time.Date(2025, 7, 1, 14, 25, 0, 0, time.UTC) }

	ts := httptest.NewServer(serv.web.Handler)
	t.Cleanup(func() {
		serv.keeper.closeAll()
		ts.Close()
	})
	return serv, ts
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestServer_Instruments(t *testing.T) {
	_, ts := newTestServer(t)

	var crypto []InstrumentView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/instruments?kind=crypto", &crypto))
	assert.Len(t, crypto, 5)
	for _, v := range crypto {
		assert.Equal(t, "crypto", v.Kind)
	}

	var found []InstrumentView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/instruments?q=aap", &found))
	require.NotEmpty(t, found)
	assert.Equal(t, "AAPL", found[0].Symbol)
}

func TestServer_Quotes(t *testing.T) {
	serv, ts := newTestServer(t)

	var errBody map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/quotes?symbol=AAPL", &errBody))
	assert.Contains(t, errBody["error"], "AAPL")

	require.NoError(t, serv.UpdateQuote(context.Background(), event.QuoteUpdated{Quote: aaplQuote(1, "195.12")}))

	var view format.QuoteView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/quotes?symbol=aapl", &view))
	assert.Equal(t, "195.12", view.Price)
	assert.Equal(t, "+0.33%", view.Change)
	assert.Equal(t, "+0.64", view.ChangeValue)
	assert.True(t, view.Positive)
	assert.Equal(t, []float64{194.48, 195.12}, view.Chart)

	var all []format.QuoteView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/quotes", &all))
	assert.Len(t, all, 1)
}

func moverQuote(symbol string, kind entity.Kind, change string) entity.Quote {
	return entity.Quote{
		Symbol:        symbol,
		Kind:          kind,
		Precision:     2,
		Value:         dec("100"),
		ChangePercent: dec(change),
		Seq:           1,
	}
}

func TestServer_Movers(t *testing.T) {
	serv, ts := newTestServer(t)
	for _, q := range []entity.Quote{
		moverQuote("AAPL", entity.KindStock, "3.87"),
		moverQuote("TSLA", entity.KindStock, "6.23"),
		moverQuote("MSFT", entity.KindStock, "-1.20"),
		moverQuote("AMZN", entity.KindStock, "-1.20"),
		moverQuote("BTC", entity.KindCrypto, "5.67"),
		moverQuote("SPX", entity.KindIndex, "0"),
	} {
		require.NoError(t, serv.UpdateQuote(context.Background(), event.QuoteUpdated{Quote: q}))
	}

	symbols := func(views []format.QuoteView) []string {
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, v.Symbol)
		}
		return out
	}

	var all MoversView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/movers", &all))
	assert.Equal(t, []string{"TSLA", "BTC", "AAPL"}, symbols(all.Gainers))
	assert.Equal(t, []string{"AMZN", "MSFT"}, symbols(all.Losers))

	var stocks MoversView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/movers?kind=stocks&n=10", &stocks))
	assert.Equal(t, []string{"TSLA", "AAPL"}, symbols(stocks.Gainers))
	assert.Equal(t, []string{"AMZN", "MSFT"}, symbols(stocks.Losers))

	var one MoversView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/movers?n=1", &one))
	assert.Equal(t, []string{"TSLA"}, symbols(one.Gainers))
	assert.Equal(t, []string{"AMZN"}, symbols(one.Losers))

	var errBody map[string]string
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/movers?n=zero", &errBody))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/movers?n=-2", &errBody))
}

func TestServer_Depth(t *testing.T) {
	serv, ts := newTestServer(t)

	var errBody map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/depth?symbol=AAPL", &errBody))

	require.NoError(t, serv.UpdateQuote(context.Background(), event.QuoteUpdated{Quote: aaplQuote(1, "195.12")}))

	var book BookView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/depth?symbol=aapl&levels=3", &book))
	assert.Equal(t, "AAPL", book.Symbol)
	assert.Equal(t, "195.12", book.Price)
	assert.Equal(t, "0.04", book.Spread)
	require.Len(t, book.Bids, 3)
	require.Len(t, book.Asks, 3)
	assert.Equal(t, "195.10", book.Bids[0].Price)
	assert.Equal(t, "195.06", book.Bids[2].Price)
	assert.Equal(t, "195.14", book.Asks[0].Price)
	assert.Equal(t, "195.18", book.Asks[2].Price)
	require.Len(t, book.Trades, 1)
	assert.Equal(t, "buy", book.Trades[0].Side)
	assert.Equal(t, "195.12", book.Trades[0].Price)

	var again BookView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/depth?symbol=AAPL&levels=3", &again))
	assert.Equal(t, book, again)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/depth?symbol=AAPL&levels=500", &errBody))
}

func TestServer_Portfolio(t *testing.T) {
	serv, ts := newTestServer(t)

	var errBody map[string]string
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+"/portfolio", &errBody))

	require.NoError(t, serv.UpdateQuote(context.Background(), event.QuoteUpdated{Quote: aaplQuote(1, "195.12")}))

	var view PortfolioView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/portfolio", &view))
	assert.Equal(t, "$25,176.50", view.TotalValue)
	assert.Equal(t, "+$743.50", view.Unrealized)
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, "$9,756.00", view.Holdings[0].MarketValue)
	assert.Equal(t, "+8.25%", view.Holdings[0].UnrealizedPc)

	var hidden PortfolioView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/portfolio?hide=1", &hidden))
	assert.Equal(t, format.Hidden, hidden.TotalValue)
	assert.Equal(t, format.Hidden, hidden.Holdings[0].MarketValue)
	assert.Equal(t, "+8.25%", hidden.Holdings[0].UnrealizedPc)
}

func TestServer_OrderPreview(t *testing.T) {
	serv, ts := newTestServer(t)
	require.NoError(t, serv.UpdateQuote(context.Background(), event.QuoteUpdated{Quote: aaplQuote(1, "195.12")}))

	post := func(body string) (*http.Response, map[string]interface{}) {
		resp, err := http.Post(ts.URL+"/orders/preview", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		out := map[string]interface{}{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp, out
	}

	resp, out := post(`{"symbol":"aapl","side":"buy","type":"market","quantity":"10"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "BUY order placed for 10 AAPL", out["message"])
	assert.Equal(t, "1951.2", out["value"])

	resp, out = post(`{"symbol":"AAPL","side":"buy","type":"limit","quantity":"10"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "please enter price", out["error"])

	resp, out = post(`{"symbol":"AAPL","side":"sell","type":"market"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "please enter quantity", out["error"])

	resp, _ = post(`{"symbol":"NOPE","side":"buy","type":"market","quantity":"1"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = post(`{"symbol":"MSFT","side":"buy","type":"market","quantity":"1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

type envelope struct {
	Name    string
	Payload json.RawMessage
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServer_WebsocketSubscribe(t *testing.T) {
	serv, ts := newTestServer(t)
	require.NoError(t, serv.UpdateQuote(context.Background(), event.QuoteUpdated{Quote: aaplQuote(1, "195.12")}))

	conn := dial(t, ts)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("aapl")))

	env := readEnvelope(t, conn)
	require.Equal(t, "Ack", env.Name)
	var ack Ack
	require.NoError(t, json.Unmarshal(env.Payload, &ack))
	assert.Equal(t, Ack{Action: ActionSubscribe, Symbol: "AAPL"}, ack)

	// current snapshot right after the ack
	env = readEnvelope(t, conn)
	require.Equal(t, "QuoteView", env.Name)
	var view format.QuoteView
	require.NoError(t, json.Unmarshal(env.Payload, &view))
	assert.Equal(t, int64(1), view.Seq)

	require.NoError(t, serv.UpdateQuote(context.Background(), event.QuoteUpdated{Quote: aaplQuote(2, "196.00")}))
	env = readEnvelope(t, conn)
	require.NoError(t, json.Unmarshal(env.Payload, &view))
	assert.Equal(t, int64(2), view.Seq)
	assert.Equal(t, "196.00", view.Price)

	require.NoError(t, conn.WriteJSON(Command{Action: ActionUnsubscribe, Symbol: "AAPL"}))
	env = readEnvelope(t, conn)
	require.NoError(t, json.Unmarshal(env.Payload, &ack))
	assert.Equal(t, ActionUnsubscribe, ack.Action)

	assert.Equal(t, 0, serv.keeper.broadcast("AAPL", format.Quote(aaplQuote(3, "197.00"))))
}

func TestServer_WebsocketUnknownAction(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(Command{Action: "pause", Symbol: "AAPL"}))
	env := readEnvelope(t, conn)
	assert.Equal(t, "Error", env.Name)
}

func TestServer_RelaySkipsDuplicates(t *testing.T) {
	serv, _ := newTestServer(t)
	q := aaplQuote(5, "195.12")

	require.NoError(t, serv.UpdateQuote(context.Background(), event.QuoteUpdated{Quote: q}))
	require.NoError(t, serv.Relay(context.Background(), event.QuoteReceived{Quote: q, Offset: 1}))

	cached, ok := serv.state.get("AAPL")
	require.True(t, ok)
	assert.Equal(t, int64(5), cached.Seq)
}

func TestParseCommand(t *testing.T) {
	assert.Equal(t, Command{Action: ActionSubscribe, Symbol: "BTC"}, parseCommand([]byte(" btc ")))
	assert.Equal(t, Command{Action: ActionUnsubscribe, Symbol: "ETH"}, parseCommand([]byte(`{"action":"unsubscribe","symbol":"eth"}`)))
}

func TestServer_Run(t *testing.T) {
	serv := New("127.0.0.1:0", catalog.Default(), Account{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
