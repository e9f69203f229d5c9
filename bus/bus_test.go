package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := New()

	var got int
	b.Subscribe(Unauthorized, func() { got++ })
	b.Subscribe(Unauthorized, func() { got++ })

	b.Publish(Unauthorized)
	assert.Equal(t, 2, got)

	b.Publish(Unauthorized)
	assert.Equal(t, 4, got)
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	var got int
	cancel := b.Subscribe(Unauthorized, func() { got++ })

	b.Publish(Unauthorized)
	assert.Equal(t, 1, got)

	cancel()
	b.Publish(Unauthorized)
	assert.Equal(t, 1, got)

	// second cancel is a no-op
	cancel()
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := New()
	b.Publish(Unauthorized)
}
