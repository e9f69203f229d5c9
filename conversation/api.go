package conversation

import (
	"context"
	"io"

	"github.com/bitechat/bitechat/api"
)

//go:generate mockgen -destination mock/chatapi.go -package mock github.com/bitechat/bitechat/conversation IChatApi

// IChatApi is the slice of the REST surface the session controller needs.
// *api.Client implements it.
type IChatApi interface {
	EnsureConversation(ctx context.Context, peerUserID int64) (*api.Conversation, error)
	ListMessages(ctx context.Context, conversationID int64, limit int, beforeID int64) (*api.MessagePage, error)
	SendMessage(ctx context.Context, req api.SendMessageReq) (*api.Message, error)
	MarkConversationRead(ctx context.Context, conversationID int64) (int, error)
	Upload(ctx context.Context, r io.Reader, filename, mimeType string) (string, error)
}
