package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitechat/bitechat/api"
)

func msg(id int64, sender, receiver int64, createdAt time.Time) api.Message {
	return api.Message{
		ID:             id,
		ConversationID: 7,
		SenderID:       sender,
		ReceiverID:     receiver,
		Type:           api.MessageText,
		Text:           "m",
		CreatedAt:      createdAt,
	}
}

func createdTimes(s *Store) []time.Time {
	var out []time.Time
	for _, e := range s.Messages() {
		out = append(out, e.CreatedAt)
	}
	return out
}

func TestMergeKeepsAscendingOrder(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	newest := []api.Message{
		msg(5, 1, 2, base.Add(5*time.Minute)),
		msg(6, 2, 1, base.Add(6*time.Minute)),
	}
	older := []api.Message{
		msg(1, 1, 2, base.Add(1*time.Minute)),
		msg(2, 2, 1, base.Add(2*time.Minute)),
	}

	// newest page lands first, older page afterwards
	s := NewStore(7)
	s.Merge(newest)
	s.Merge(older)

	times := createdTimes(s)
	assert.Len(t, times, 4)
	for i := 1; i < len(times); i++ {
		assert.False(t, times[i].Before(times[i-1]), "created_at must be non-decreasing")
	}
	assert.Equal(t, int64(1), s.Messages()[0].ID)
	assert.Equal(t, int64(6), s.Messages()[3].ID)

	// reversed arrival order gives the same presentation
	s2 := NewStore(7)
	s2.Merge(older)
	s2.Merge(newest)
	assert.Equal(t, createdTimes(s), createdTimes(s2))
}

func TestUpsertCollapsesDuplicateIDs(t *testing.T) {
	base := time.Now()
	s := NewStore(7)

	m := msg(10, 1, 2, base)
	assert.True(t, s.Upsert(&m))
	assert.False(t, s.Upsert(&m)) // REST echo + live push, same id
	assert.Equal(t, 1, s.Len())
}

func TestUpsertNeverRevertsReadFlag(t *testing.T) {
	base := time.Now()
	s := NewStore(7)

	m := msg(10, 1, 2, base)
	m.IsRead = true
	s.Upsert(&m)

	stale := msg(10, 1, 2, base)
	stale.IsRead = false
	s.Upsert(&stale)

	assert.True(t, s.Messages()[0].IsRead)
}

func TestMarkLocalReadIdempotent(t *testing.T) {
	const me = int64(1)
	base := time.Now()

	s := NewStore(7)
	s.Merge([]api.Message{
		msg(1, 2, me, base),                  // received, unread
		msg(2, me, 2, base.Add(time.Second)), // sent, unread
		msg(3, 2, me, base.Add(2*time.Second)),
	})

	assert.Equal(t, 2, s.MarkLocalRead(me))
	assert.Equal(t, 0, s.MarkLocalRead(me)) // second call is a no-op

	for _, e := range s.Messages() {
		if e.ReceiverID == me {
			assert.True(t, e.IsRead)
		} else {
			assert.False(t, e.IsRead, "own sent messages are untouched")
		}
	}
}

func TestMarkPeerReadFlipsOnlyOwnMessages(t *testing.T) {
	const me = int64(1)
	base := time.Now()

	s := NewStore(7)
	s.Merge([]api.Message{
		msg(1, me, 2, base),
		msg(2, 2, me, base.Add(time.Second)),
		msg(3, me, 2, base.Add(2*time.Second)),
	})

	assert.Equal(t, 2, s.MarkPeerRead(me))
	assert.Equal(t, 0, s.MarkPeerRead(me))

	for _, e := range s.Messages() {
		if e.SenderID == me {
			assert.True(t, e.IsRead)
		} else {
			assert.False(t, e.IsRead, "peer's messages are unaffected")
		}
	}
}

func TestPendingLifecycle(t *testing.T) {
	s := NewStore(7)

	e := &Entry{
		Message: api.Message{ConversationID: 7, SenderID: 1, ReceiverID: 2, Type: api.MessageText, Text: "hi", CreatedAt: time.Now()},
		LocalID: "local-1",
		State:   StateComposing,
	}
	s.AppendPending(e)
	s.SetPendingState("local-1", StateSending)

	canonical := msg(42, 1, 2, time.Now())
	canonical.Text = "hi"
	s.ResolvePending("local-1", &canonical)

	got := s.Messages()
	assert.Len(t, got, 1)
	assert.Equal(t, int64(42), got[0].ID)
	assert.Equal(t, StateSent, got[0].State)

	// resolving twice is harmless
	s.ResolvePending("local-1", &canonical)
	assert.Equal(t, 1, s.Len())
}

func TestFailPendingIsScopedToOneEntry(t *testing.T) {
	s := NewStore(7)

	ok := &Entry{Message: api.Message{Text: "a"}, LocalID: "a", State: StateSending}
	bad := &Entry{Message: api.Message{Text: "b"}, LocalID: "b", State: StateSending}
	s.AppendPending(ok)
	s.AppendPending(bad)

	s.FailPending("b")

	got := s.Messages()
	assert.Equal(t, StateSending, got[0].State)
	assert.Equal(t, StateFailed, got[1].State)

	s.DropPending("b")
	assert.Equal(t, 1, s.Len())
}

func TestVoiceExtraSurvivesRoundTrip(t *testing.T) {
	s := NewStore(7)

	m := msg(9, 1, 2, time.Now())
	m.Type = api.MessageVoice
	m.MediaURL = "http://host/media/voice.m4a"
	m.Extra = api.Extra{"durationMs": 4200}
	s.Upsert(&m)

	got := s.Messages()[0]
	assert.Equal(t, api.MessageVoice, got.Type)
	assert.EqualValues(t, 4200, got.Extra["durationMs"])
}

func TestOldestID(t *testing.T) {
	base := time.Now()
	s := NewStore(7)
	assert.Equal(t, int64(0), s.OldestID())

	s.Merge([]api.Message{msg(4, 1, 2, base), msg(9, 1, 2, base.Add(time.Second))})
	s.AppendPending(&Entry{LocalID: "x"}) // pending entries have no server id
	assert.Equal(t, int64(4), s.OldestID())
}
