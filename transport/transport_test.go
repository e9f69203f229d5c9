package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitechat/bitechat/api"
)

var upgrader = websocket.Upgrader{}

// pushServer upgrades /chats/ws and writes each frame in frames, then
// closes the connection.
func pushServer(t *testing.T, frames []string, gotToken *string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chats/ws", r.URL.Path)
		if gotToken != nil {
			*gotToken = r.URL.Query().Get("token")
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for _, f := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(f)))
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(50 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestURL(t *testing.T) {
	assert.Equal(t,
		"ws://host/api/v1/chats/ws?token=abc",
		URL("http://host/api/v1", "abc"))
	assert.Equal(t,
		"wss://host/api/v1/chats/ws?token=abc",
		URL("https://host/api/v1", "abc"))
	// token is escaped
	assert.Equal(t,
		"ws://host/chats/ws?token=a%2Fb",
		URL("http://host", "a/b"))
}

func TestConnectWithoutToken(t *testing.T) {
	s, err := Connect(context.Background(), "http://127.0.0.1:1", "", Handlers{})
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestEventDeliveryInOrder(t *testing.T) {
	frames := []string{
		`{"type":"new_message","data":{"id":1,"conversation_id":5,"sender_id":2,"receiver_id":3,"message_type":"text","text":"hi","is_read":false,"created_at":"2024-01-01T10:00:00Z"}}`,
		`{"type":"read","data":{"conversation_id":5,"reader_id":2,"updated":4}}`,
	}

	var token string
	srv := pushServer(t, frames, &token)

	events := make(chan Event, 8)
	closed := make(chan struct{})
	opened := false

	s, err := Connect(context.Background(), srv.URL, "tok-1", Handlers{
		OnEvent: func(ev Event) { events <- ev },
		OnOpen:  func() { opened = true },
		OnClose: func() { close(closed) },
	})
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()

	assert.True(t, opened)
	assert.Equal(t, "tok-1", token)

	ev := <-events
	require.Equal(t, EventNewMessage, ev.Type)
	require.NotNil(t, ev.Message)
	assert.Equal(t, int64(1), ev.Message.ID)
	assert.Equal(t, int64(5), ev.Message.ConversationID)
	assert.Equal(t, api.MessageText, ev.Message.Type)
	assert.Equal(t, "hi", ev.Message.Text)
	assert.Nil(t, ev.Receipt)

	ev = <-events
	require.Equal(t, EventRead, ev.Type)
	require.NotNil(t, ev.Receipt)
	assert.Equal(t, int64(5), ev.Receipt.ConversationID)
	assert.Equal(t, 4, ev.Receipt.Updated)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not invoked")
	}
}

func TestMalformedFramesDropped(t *testing.T) {
	frames := []string{
		`this is not json`,
		`{"type":"new_message","data":"not an object"}`,
		`{"type":"read","data":{"conversation_id":9,"reader_id":1,"updated":1}}`,
	}
	srv := pushServer(t, frames, nil)

	events := make(chan Event, 8)
	s, err := Connect(context.Background(), srv.URL, "tok", Handlers{
		OnEvent: func(ev Event) { events <- ev },
	})
	require.NoError(t, err)
	defer s.Close()

	// Only the valid frame arrives.
	ev := <-events
	assert.Equal(t, EventRead, ev.Type)
	require.NotNil(t, ev.Receipt)
	assert.Equal(t, int64(9), ev.Receipt.ConversationID)

	select {
	case extra := <-events:
		t.Fatalf("unexpected extra event: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnknownEventTypePassesThrough(t *testing.T) {
	srv := pushServer(t, []string{`{"type":"typing","data":{"user_id":2}}`}, nil)

	events := make(chan Event, 1)
	s, err := Connect(context.Background(), srv.URL, "tok", Handlers{
		OnEvent: func(ev Event) { events <- ev },
	})
	require.NoError(t, err)
	defer s.Close()

	ev := <-events
	assert.Equal(t, EventType("typing"), ev.Type)
	assert.Nil(t, ev.Message)
	assert.Nil(t, ev.Receipt)
}

func TestDialError(t *testing.T) {
	var gotErr error
	_, err := Connect(context.Background(), "http://127.0.0.1:1", "tok", Handlers{
		OnError: func(e error) { gotErr = e },
	})
	require.Error(t, err)

	// OnError sees the same dial error the caller gets.
	assert.Equal(t, err, gotErr)
}
