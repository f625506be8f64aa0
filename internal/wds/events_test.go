package wds

import (
	"testing"
	"time"
)

func TestBroadcaster(t *testing.T) {
	ev := SyncEvent{RecordID: "r1", Owner: "did:key:z6MkAlice", Type: EventCreated, Timestamp: time.Unix(100, 0)}

	t.Run("delivers to all subscribers", func(t *testing.T) {
		b := newBroadcaster()
		ch1, cancel1 := b.subscribe()
		ch2, cancel2 := b.subscribe()
		defer cancel1()
		defer cancel2()

		b.publish(ev)

		for i, ch := range []<-chan SyncEvent{ch1, ch2} {
			select {
			case got := <-ch:
				if got != ev {
					t.Errorf("subscriber %d: got %+v, want %+v", i, got, ev)
				}
			default:
				t.Errorf("subscriber %d: no event delivered", i)
			}
		}
	})

	t.Run("no replay of earlier events", func(t *testing.T) {
		b := newBroadcaster()
		b.publish(ev)

		ch, cancel := b.subscribe()
		defer cancel()

		select {
		case got := <-ch:
			t.Errorf("unexpected replayed event %+v", got)
		default:
		}
	})

	t.Run("cancel closes channel and is idempotent", func(t *testing.T) {
		b := newBroadcaster()
		ch, cancel := b.subscribe()

		cancel()
		cancel() // safe to call again

		if _, open := <-ch; open {
			t.Error("channel still open after cancel")
		}

		// Cancelled subscribers receive nothing further.
		b.publish(ev)
	})

	t.Run("full buffer drops instead of blocking", func(t *testing.T) {
		b := newBroadcaster()
		ch, cancel := b.subscribe()
		defer cancel()

		done := make(chan struct{})
		go func() {
			for i := 0; i < eventBuffer+10; i++ {
				b.publish(ev)
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("publish blocked on a full subscriber")
		}

		if n := len(ch); n != eventBuffer {
			t.Errorf("buffered events = %d, want %d", n, eventBuffer)
		}
	})

	t.Run("close tears down subscribers", func(t *testing.T) {
		b := newBroadcaster()
		ch, cancel := b.subscribe()
		defer cancel()

		b.close()
		b.close() // idempotent

		if _, open := <-ch; open {
			t.Error("channel still open after broadcaster close")
		}

		// Subscribing after close yields a closed channel.
		ch2, cancel2 := b.subscribe()
		defer cancel2()
		if _, open := <-ch2; open {
			t.Error("post-close subscription returned an open channel")
		}

		// Publish after close must not panic.
		b.publish(ev)
	})
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		typ  EventType
		want string
	}{
		{EventCreated, "created"},
		{EventDeleted, "deleted"},
		{EventType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
