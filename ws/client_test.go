package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmit_OverflowClosesConnection(t *testing.T) {
	client := newTestClient("user-1")
	for i := 0; i < cap(client.send); i++ {
		client.Emit("fill", nil)
	}

	client.Emit("overflow", nil)

	// Both pumps must be signaled to exit; a connection that cannot drain
	// its queue may not keep processing events as a ghost.
	select {
	case <-client.done:
	default:
		t.Fatal("expected teardown signal after queue overflow")
	}

	// Events queued before the overflow stay intact for the write pump's
	// final drain.
	event := <-client.send
	assert.Equal(t, "fill", event.Event)
}

func TestEmit_BelowCapacityKeepsConnection(t *testing.T) {
	client := newTestClient("user-1")

	client.Emit("hello", nil)

	select {
	case <-client.done:
		t.Fatal("connection must stay up while the queue has room")
	default:
	}
	event := <-client.send
	assert.Equal(t, "hello", event.Event)
}

func TestClientClose_Idempotent(t *testing.T) {
	client := newTestClient("user-1")

	client.close()
	client.close()

	select {
	case <-client.done:
	default:
		t.Fatal("teardown signal missing")
	}
}
