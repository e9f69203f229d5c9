// Package conversation holds the client-side state of one open direct
// message thread: the ordered message list, read-receipt propagation and
// the outgoing composer queue.
package conversation

import (
	"sort"
	"sync"

	"github.com/bitechat/bitechat/api"
)

// SendState tracks one outgoing attempt. Failed is terminal: the user
// resubmits manually, nothing retries.
type SendState int

const (
	StateNone SendState = iota // server-confirmed entry
	StateComposing
	StateUploading
	StateSending
	StateSent
	StateFailed
)

func (s SendState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateComposing:
		return "composing"
	case StateUploading:
		return "uploading"
	case StateSending:
		return "sending"
	case StateSent:
		return "sent"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Entry is one message in the store. Optimistic outgoing entries carry a
// LocalID until the server's canonical message replaces their content.
type Entry struct {
	api.Message

	LocalID string
	State   SendState
}

// Store owns the in-memory ordered message sequence for the open
// conversation. Entries are appended as messages arrive, mutated in place
// only to flip the read flag or to resolve a pending send; the read flag
// never reverts to unread.
type Store struct {
	sync.RWMutex

	conversationID int64
	entries        []*Entry
	byId           map[int64]*Entry  // server id -> entry
	byLocalId      map[string]*Entry // pending local id -> entry
}

func NewStore(conversationID int64) *Store {
	return &Store{
		conversationID: conversationID,
		byId:           make(map[int64]*Entry),
		byLocalId:      make(map[string]*Entry),
	}
}

func (s *Store) ConversationID() int64 {
	return s.conversationID
}

// Merge upserts a history page and restores ascending (created_at, id)
// order, so pages may arrive in any order.
func (s *Store) Merge(items []api.Message) {
	s.Lock()
	defer s.Unlock()

	for i := range items {
		s.upsertLocked(&items[i])
	}

	sort.SliceStable(s.entries, func(i, j int) bool {
		a, b := s.entries[i], s.entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Upsert applies one live message: appended when new, merged in place when
// the id is already present (e.g. the REST send echo arriving again over
// the socket). No re-sort: the server delivers in order.
func (s *Store) Upsert(m *api.Message) bool {
	s.Lock()
	defer s.Unlock()
	return s.upsertLocked(m)
}

func (s *Store) upsertLocked(m *api.Message) bool {
	if e, ok := s.byId[m.ID]; ok {
		wasRead := e.IsRead
		e.Message = *m
		// the read flag never reverts
		if wasRead {
			e.IsRead = true
		}
		return false
	}

	e := &Entry{Message: *m, State: StateNone}
	s.byId[m.ID] = e
	s.entries = append(s.entries, e)
	return true
}

// AppendPending adds an optimistic outgoing entry.
func (s *Store) AppendPending(e *Entry) {
	s.Lock()
	s.byLocalId[e.LocalID] = e
	s.entries = append(s.entries, e)
	s.Unlock()
}

// SetPendingState moves a pending entry through the composer state
// machine.
func (s *Store) SetPendingState(localID string, state SendState) {
	s.Lock()
	if e, ok := s.byLocalId[localID]; ok {
		e.State = state
	}
	s.Unlock()
}

// ResolvePending replaces a pending entry's content with the server's
// canonical message. The entry keeps its position.
func (s *Store) ResolvePending(localID string, m *api.Message) {
	s.Lock()
	defer s.Unlock()

	e, ok := s.byLocalId[localID]
	if !ok {
		return
	}
	delete(s.byLocalId, localID)

	e.Message = *m
	e.State = StateSent
	s.byId[m.ID] = e
}

// FailPending marks one pending entry failed; nothing else is touched.
func (s *Store) FailPending(localID string) {
	s.SetPendingState(localID, StateFailed)
}

// DropPending removes a failed entry, for manual resubmission.
func (s *Store) DropPending(localID string) {
	s.Lock()
	defer s.Unlock()

	e, ok := s.byLocalId[localID]
	if !ok {
		return
	}
	delete(s.byLocalId, localID)

	for i, x := range s.entries {
		if x == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
}

// MarkPeerRead flips the read flag on every message the local user sent:
// the peer has seen them. Idempotent.
func (s *Store) MarkPeerRead(localUID int64) int {
	s.Lock()
	defer s.Unlock()

	var n int
	for _, e := range s.entries {
		if e.SenderID == localUID && !e.IsRead {
			e.IsRead = true
			n++
		}
	}
	return n
}

// MarkLocalRead flips the read flag on every message the local user
// received, after a successful mark-read call. Idempotent.
func (s *Store) MarkLocalRead(localUID int64) int {
	s.Lock()
	defer s.Unlock()

	var n int
	for _, e := range s.entries {
		if e.ReceiverID == localUID && !e.IsRead {
			e.IsRead = true
			n++
		}
	}
	return n
}

// Messages returns a snapshot copy in display order.
func (s *Store) Messages() []Entry {
	s.RLock()
	defer s.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	return out
}

func (s *Store) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.entries)
}

// OldestID returns the smallest server-assigned id in the store, the
// before_id cursor for the next history page. 0 when empty.
func (s *Store) OldestID() int64 {
	s.RLock()
	defer s.RUnlock()

	var oldest int64
	for _, e := range s.entries {
		if e.ID > 0 && (oldest == 0 || e.ID < oldest) {
			oldest = e.ID
		}
	}
	return oldest
}
