package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseUint(r.URL.Query().Get("user"), 10, 64)
		_ = hub.Serve(w, r, uint(id))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID int) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + strconv.Itoa(userID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) dto.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var event dto.Event
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func TestHub_DeliversToRecipientOnly(t *testing.T) {
	hub := NewHub(nil, logger.NewNop())
	srv := newTestServer(t, hub)

	alice := dial(t, srv, 1)
	bob := dial(t, srv, 2)
	require.Eventually(t, func() bool { return hub.ClientCount(1) == 1 && hub.ClientCount(2) == 1 }, time.Second, 10*time.Millisecond)

	hub.Deliver(dto.Event{Type: "message.sent", RecipientID: 2, Payload: json.RawMessage(`{"id":9}`)})
	got := readEvent(t, bob)
	assert.Equal(t, "message.sent", got.Type)
	assert.JSONEq(t, `{"id":9}`, string(got.Payload))

	// a broadcast reaches alice; the direct message above must not have
	hub.Deliver(dto.Event{Type: "watchlist.updated", Payload: json.RawMessage(`{}`)})
	assert.Equal(t, "watchlist.updated", readEvent(t, alice).Type)
	assert.Equal(t, "watchlist.updated", readEvent(t, bob).Type)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(nil, logger.NewNop())
	srv := newTestServer(t, hub)

	conn := dial(t, srv, 7)
	require.Eventually(t, func() bool { return hub.ClientCount(7) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount(7) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsUnknownOrigin(t *testing.T) {
	hub := NewHub([]string{"https://app.example"}, logger.NewNop())
	srv := newTestServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=1"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
