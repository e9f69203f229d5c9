package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultPageSize = 30

var (
	ErrBlankText    = errors.New("api: text message requires non-blank text")
	ErrMissingMedia = errors.New("api: media message requires media_url")
)

// SendMessageReq is the outbound message envelope. The server resolves the
// conversation from the peer user id, creating it when absent.
type SendMessageReq struct {
	PeerUserID int64       `json:"peer_user_id"`
	Type       MessageType `json:"message_type"`
	Text       string      `json:"text,omitempty"`
	MediaURL   string      `json:"media_url,omitempty"`
	Extra      Extra       `json:"extra,omitempty"`
}

// Validate rejects payloads the server would reject, before any network
// call is made.
func (r *SendMessageReq) Validate() error {
	switch r.Type {
	case MessageText, MessageEmoji:
		if strings.TrimSpace(r.Text) == "" {
			return ErrBlankText
		}
	case MessageImage, MessageVoice, MessageSticker:
		if r.MediaURL == "" {
			return ErrMissingMedia
		}
	default:
		return fmt.Errorf("api: invalid message_type %q", r.Type)
	}
	return nil
}

func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var out []Conversation
	if err := c.do(ctx, http.MethodGet, "/chats/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureConversation returns the 1:1 conversation with the peer, creating
// it lazily on first contact.
func (c *Client) EnsureConversation(ctx context.Context, peerUserID int64) (*Conversation, error) {
	body := map[string]int64{"peer_user_id": peerUserID}

	var out Conversation
	if err := c.do(ctx, http.MethodPost, "/chats/conversations/ensure", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages fetches up to limit messages older than beforeID (0 means
// newest). Items come back in ascending id order.
func (c *Client) ListMessages(ctx context.Context, conversationID int64, limit int, beforeID int64) (*MessagePage, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if beforeID > 0 {
		q.Set("before_id", strconv.FormatInt(beforeID, 10))
	}

	path := fmt.Sprintf("/chats/conversations/%d/messages?%s", conversationID, q.Encode())

	var out MessagePage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendMessage(ctx context.Context, req SendMessageReq) (*Message, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out Message
	if err := c.do(ctx, http.MethodPost, "/chats/messages", &req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkConversationRead marks every unread received message in the
// conversation read, returns the number of flipped messages.
func (c *Client) MarkConversationRead(ctx context.Context, conversationID int64) (int, error) {
	path := fmt.Sprintf("/chats/conversations/%d/read", conversationID)

	var out struct {
		Updated int `json:"updated"`
	}
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}
