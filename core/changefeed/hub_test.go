package changefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zencms/model"
)

func startHub(t *testing.T, collections []string) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn, collections)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestHubRelaysChangeEvents(t *testing.T) {
	hub, conn := startHub(t, nil)

	hub.Publish(model.NewChangeEvent(model.CollectionMusic, model.ActionBatchUpdateOrder, "a", "b"))

	msg := readMessage(t, conn)
	assert.Equal(t, MsgTypeChange, msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, model.CollectionMusic, msg.Event.Collection)
	assert.Equal(t, []string{"a", "b"}, msg.Event.IDs)
}

func TestHubFiltersCollections(t *testing.T) {
	hub, conn := startHub(t, []string{model.CollectionTitles})

	hub.Publish(model.NewChangeEvent(model.CollectionMusic, model.ActionAdd, "m1"))
	hub.Notify(context.Background(), model.NewChangeEvent(model.CollectionTitles, model.ActionUpdate, "t1"))

	msg := readMessage(t, conn)
	require.NotNil(t, msg.Event)
	assert.Equal(t, model.CollectionTitles, msg.Event.Collection)
}

func TestHubAnswersPing(t *testing.T) {
	_, conn := startHub(t, nil)

	require.NoError(t, conn.WriteJSON(Message{Type: MsgTypePing}))
	assert.Equal(t, MsgTypePong, readMessage(t, conn).Type)
}

func TestHubStopClosesConnections(t *testing.T) {
	hub, conn := startHub(t, nil)

	hub.Stop()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "got %v", err)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
