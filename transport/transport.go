// Package transport maintains the live push connection to the chat
// service. One Session per open conversation screen; there is no
// reconnect, heartbeat or replay: when the connection drops the owner
// tears the session down and opens a new one.
package transport

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"github.com/bitechat/bitechat/api"
)

type EventType string

const (
	EventNewMessage EventType = "new_message"
	EventRead       EventType = "read"
)

const (
	handshakeTimeout = 10 * time.Second

	// Time allowed to write the close message to the peer.
	writeWait = 3 * time.Second

	// websocket max message size to read.
	readLimit = 64 * 1024
)

// Event is one decoded server push. Exactly one of Message and Receipt is
// set, matching Type.
type Event struct {
	Type    EventType
	Message *api.Message
	Receipt *api.ReadReceipt
}

// Handlers is the callback sink for a session. Callbacks run on the
// session's read goroutine, in server delivery order.
type Handlers struct {
	OnEvent func(Event)
	OnOpen  func()
	OnClose func()
	OnError func(error)
}

// Session is a live connection handle, owned by whoever opened it and
// closed on teardown.
type Session struct {
	conn     *websocket.Conn
	handlers Handlers

	mu      sync.Mutex
	closing bool
}

// URL derives the websocket endpoint from the REST base URL: scheme
// upgraded http->ws / https->wss, token passed as a query parameter.
func URL(baseURL, tok string) string {
	wsBase := baseURL
	if strings.HasPrefix(baseURL, "https://") {
		wsBase = "wss://" + strings.TrimPrefix(baseURL, "https://")
	} else if strings.HasPrefix(baseURL, "http://") {
		wsBase = "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return wsBase + "/chats/ws?token=" + url.QueryEscape(tok)
}

// Connect opens the session. An empty token means the transport never
// opens: the handle is nil and no error is returned, live updates are
// simply absent.
func Connect(ctx context.Context, baseURL, tok string, handlers Handlers) (*Session, error) {
	if tok == "" {
		glog.V(5).Info("transport: no token, not connecting")
		return nil, nil
	}

	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, URL(baseURL, tok), nil)
	if err != nil {
		glog.Errorf("transport: dial error: %v", err)
		if handlers.OnError != nil {
			handlers.OnError(err)
		}
		return nil, err
	}

	s := &Session{
		conn:     conn,
		handlers: handlers,
	}

	if handlers.OnOpen != nil {
		handlers.OnOpen()
	}

	go s.recvLoop()
	return s, nil
}

func (s *Session) recvLoop() {
	defer func() { glog.V(5).Info("transport: recvLoop exited") }()

	s.conn.SetReadLimit(readLimit)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if !s.isClosing() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				glog.Errorf("transport: read error: %v", err)
				if s.handlers.OnError != nil {
					s.handlers.OnError(err)
				}
			}
			if s.handlers.OnClose != nil {
				s.handlers.OnClose()
			}
			return
		}

		ev, err := decodeFrame(raw)
		if err != nil {
			// Malformed frames are dropped, not surfaced.
			framesDropped.Inc()
			glog.V(5).Infof("transport: drop malformed frame: %v", err)
			continue
		}

		eventsTotal.WithLabelValues(string(ev.Type)).Inc()
		glog.V(5).Infof("transport: event %s", ev.Type)

		if s.handlers.OnEvent != nil {
			s.handlers.OnEvent(ev)
		}
	}
}

func decodeFrame(raw []byte) (Event, error) {
	var frame struct {
		Type EventType       `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Event{}, err
	}

	ev := Event{Type: frame.Type}

	switch frame.Type {
	case EventNewMessage:
		var m api.Message
		if err := json.Unmarshal(frame.Data, &m); err != nil {
			return Event{}, err
		}
		ev.Message = &m
	case EventRead:
		var r api.ReadReceipt
		if err := json.Unmarshal(frame.Data, &r); err != nil {
			return Event{}, err
		}
		ev.Receipt = &r
	}

	// Unknown types pass through with an empty payload; consumers ignore
	// what they do not handle.
	return ev, nil
}

func (s *Session) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// Close tears the connection down. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	s.mu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}
