package conversation

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pborman/uuid"

	"github.com/bitechat/bitechat/api"
	"github.com/bitechat/bitechat/transport"
)

// Session drives one open conversation: REST hydration, live-event
// reconciliation, read receipts and the composer. Exactly one conversation
// is open at a time; the session owns its Store exclusively.
type Session struct {
	api      IChatApi
	store    *Store
	localUID int64
	peerID   int64
	pageSize int
	hasMore  bool

	// ctx is cancelled on Close, aborting in-flight calls so nothing
	// resolves into a torn-down session.
	ctx    context.Context
	cancel context.CancelFunc

	onUpdate func()
}

type Options struct {
	Api        IChatApi
	LocalUID   int64
	PeerUserID int64

	// PageSize is the history fetch size, default 30.
	PageSize int

	// OnUpdate, when set, is invoked after every store mutation. It runs
	// on whichever goroutine caused the mutation.
	OnUpdate func()
}

// Open ensures the conversation exists, hydrates the newest history page
// and issues the initial best-effort mark-read.
func Open(ctx context.Context, opts Options) (*Session, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 30
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		api:      opts.Api,
		localUID: opts.LocalUID,
		peerID:   opts.PeerUserID,
		pageSize: pageSize,
		ctx:      ctx,
		cancel:   cancel,
		onUpdate: opts.OnUpdate,
	}

	conv, err := s.api.EnsureConversation(ctx, opts.PeerUserID)
	if err != nil {
		cancel()
		return nil, err
	}
	s.store = NewStore(conv.ID)

	page, err := s.api.ListMessages(ctx, conv.ID, pageSize, 0)
	if err != nil {
		cancel()
		return nil, err
	}
	s.store.Merge(page.Items)
	s.hasMore = page.HasMore

	s.markRead()
	s.notify()
	return s, nil
}

func (s *Session) Store() *Store {
	return s.store
}

func (s *Session) PeerUserID() int64 {
	return s.peerID
}

func (s *Session) notify() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

// markRead is best-effort: the server call may fail (swallowed, no retry),
// and local flags only flip after it succeeds.
func (s *Session) markRead() {
	if _, err := s.api.MarkConversationRead(s.ctx, s.store.ConversationID()); err != nil {
		glog.V(5).Infof("conversation: mark read failed: %v", err)
		return
	}
	s.store.MarkLocalRead(s.localUID)
}

// Focus re-issues the mark-read, mirroring the screen regaining focus.
func (s *Session) Focus() {
	s.markRead()
	s.notify()
}

// HandleEvent consumes one live transport event. Events scoped to other
// conversations never mutate this session's store.
func (s *Session) HandleEvent(ev transport.Event) {
	switch ev.Type {
	case transport.EventNewMessage:
		m := ev.Message
		if m == nil || m.ConversationID != s.store.ConversationID() {
			return
		}
		s.store.Upsert(m)
		messagesReceived.Inc()
		if m.ReceiverID == s.localUID {
			s.markRead()
		}
		s.notify()

	case transport.EventRead:
		r := ev.Receipt
		if r == nil || r.ConversationID != s.store.ConversationID() {
			return
		}
		s.store.MarkPeerRead(s.localUID)
		s.notify()
	}
}

// LoadOlder fetches the next history page behind the oldest loaded
// message. Returns whether more remain.
func (s *Session) LoadOlder() (bool, error) {
	if !s.hasMore {
		return false, nil
	}

	page, err := s.api.ListMessages(s.ctx, s.store.ConversationID(), s.pageSize, s.store.OldestID())
	if err != nil {
		return s.hasMore, err
	}
	s.store.Merge(page.Items)
	s.hasMore = page.HasMore
	s.notify()
	return s.hasMore, nil
}

func (s *Session) SendText(text string) (*api.Message, error) {
	// reject blank input before any network call
	if strings.TrimSpace(text) == "" {
		return nil, api.ErrBlankText
	}
	return s.send(api.SendMessageReq{
		PeerUserID: s.peerID,
		Type:       api.MessageText,
		Text:       text,
	})
}

func (s *Session) SendEmoji(emoji string) (*api.Message, error) {
	if strings.TrimSpace(emoji) == "" {
		return nil, api.ErrBlankText
	}
	return s.send(api.SendMessageReq{
		PeerUserID: s.peerID,
		Type:       api.MessageEmoji,
		Text:       emoji,
	})
}

func (s *Session) SendImage(r io.Reader, filename, mimeType string) (*api.Message, error) {
	return s.sendMedia(api.MessageImage, r, filename, mimeType, nil)
}

// SendVoice attaches the clip duration as free-form extra metadata.
func (s *Session) SendVoice(r io.Reader, filename, mimeType string, durationMs int) (*api.Message, error) {
	return s.sendMedia(api.MessageVoice, r, filename, mimeType, api.Extra{"durationMs": durationMs})
}

// sendMedia uploads first, then sends the message envelope. The pending
// entry walks Uploading -> Sending; an upload failure fails only that
// entry.
func (s *Session) sendMedia(typ api.MessageType, r io.Reader, filename, mimeType string, extra api.Extra) (*api.Message, error) {
	pending := s.newPending(typ, "", extra)
	s.store.AppendPending(pending)
	s.store.SetPendingState(pending.LocalID, StateUploading)
	s.notify()

	mediaURL, err := s.api.Upload(s.ctx, r, filename, mimeType)
	if err != nil {
		s.store.FailPending(pending.LocalID)
		messagesFailed.Inc()
		s.notify()
		return nil, err
	}

	return s.submit(pending, api.SendMessageReq{
		PeerUserID: s.peerID,
		Type:       typ,
		MediaURL:   mediaURL,
		Extra:      extra,
	})
}

func (s *Session) send(req api.SendMessageReq) (*api.Message, error) {
	pending := s.newPending(req.Type, req.Text, req.Extra)
	s.store.AppendPending(pending)
	s.notify()
	return s.submit(pending, req)
}

func (s *Session) newPending(typ api.MessageType, text string, extra api.Extra) *Entry {
	return &Entry{
		Message: api.Message{
			ConversationID: s.store.ConversationID(),
			SenderID:       s.localUID,
			ReceiverID:     s.peerID,
			Type:           typ,
			Text:           text,
			Extra:          extra,
			CreatedAt:      time.Now(),
		},
		LocalID: uuid.New(),
		State:   StateComposing,
	}
}

// submit sends the envelope; on success the server's canonical message
// replaces the pending entry, on failure only that entry flips to Failed.
func (s *Session) submit(pending *Entry, req api.SendMessageReq) (*api.Message, error) {
	s.store.SetPendingState(pending.LocalID, StateSending)
	s.notify()

	msg, err := s.api.SendMessage(s.ctx, req)
	if err != nil {
		s.store.FailPending(pending.LocalID)
		messagesFailed.Inc()
		s.notify()
		return nil, err
	}

	s.store.ResolvePending(pending.LocalID, msg)
	messagesSent.Inc()
	s.notify()
	return msg, nil
}

// Retry drops a failed entry so the caller can resubmit its content.
// Failed is terminal per attempt: this is the manual path, not a retry
// policy.
func (s *Session) Retry(localID string) {
	s.store.DropPending(localID)
	s.notify()
}

// Close cancels in-flight calls. The owner closes its transport handle
// separately.
func (s *Session) Close() {
	s.cancel()
}
