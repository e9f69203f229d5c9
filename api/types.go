package api

import "time"

// MessageType tags the payload kind of a direct message.
type MessageType string

const (
	MessageText    MessageType = "text"
	MessageImage   MessageType = "image"
	MessageVoice   MessageType = "voice"
	MessageEmoji   MessageType = "emoji"
	MessageSticker MessageType = "sticker"
)

// Extra holds free-form metadata attached to a message, e.g. durationMs
// for voice clips.
type Extra map[string]interface{}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar,omitempty"`
}

type Message struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	SenderID       int64       `json:"sender_id"`
	ReceiverID     int64       `json:"receiver_id"`
	Type           MessageType `json:"message_type"`
	Text           string      `json:"text,omitempty"`
	MediaURL       string      `json:"media_url,omitempty"`
	Extra          Extra       `json:"extra,omitempty"`
	IsRead         bool        `json:"is_read"`
	ReadAt         *time.Time  `json:"read_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

type Conversation struct {
	ID          int64     `json:"id"`
	Peer        User      `json:"peer"`
	UnreadCount int       `json:"unread_count"`
	LastMessage *Message  `json:"last_message,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MessagePage is one page of conversation history, items in ascending id
// order, paged backwards with a before_id cursor.
type MessagePage struct {
	Items   []Message `json:"items"`
	HasMore bool      `json:"has_more"`
}

// ReadReceipt is the payload of a live "read" event: the peer has marked
// the conversation read.
type ReadReceipt struct {
	ConversationID int64 `json:"conversation_id"`
	ReaderID       int64 `json:"reader_id"`
	Updated        int   `json:"updated"`
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
