package hub

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/loltimeflash/server/internal/protocol"
	"github.com/loltimeflash/server/internal/room"
)

const testRoomID = "abcDEF1234"

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewHub(ctx, clockwork.NewFakeClock(), zap.NewNop())
}

func ensure(t *testing.T, h *Hub, code string) *room.Room {
	t.Helper()
	reply := make(chan *room.Room, 1)
	h.Inbox() <- EnsureRoom{Code: code, Reply: reply}
	select {
	case r := <-reply:
		return r
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timed out ensuring room")
		return nil // unreachable
	}
}

func get(t *testing.T, h *Hub, code string) *room.Room {
	t.Helper()
	reply := make(chan *room.Room, 1)
	h.Inbox() <- GetRoom{Code: code, Reply: reply}
	select {
	case r := <-reply:
		return r
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timed out getting room")
		return nil // unreachable
	}
}

func TestHub_EnsureThenGet_SamePointer(t *testing.T) {
	h := newTestHub(t)

	r1 := ensure(t, h, testRoomID)
	r2 := ensure(t, h, testRoomID)
	r3 := get(t, h, testRoomID)

	if r1 == nil || r1 != r2 || r1 != r3 {
		t.Fatalf("expected same room pointer")
	}
}

func TestHub_GetUnknownRoomIsNil(t *testing.T) {
	h := newTestHub(t)
	if r := get(t, h, "zzzzzzzzzz"); r != nil {
		t.Fatalf("expected nil for unknown room")
	}
}

func TestHub_EmptiedRoomIsRemovedAndRecreatedFresh(t *testing.T) {
	h := newTestHub(t)

	r1 := ensure(t, h, testRoomID)
	out := make(chan protocol.ServerMessage, 16)
	r1.Inbox() <- room.Join{ClientID: "c1", Username: "alice", Outbox: out}
	<-out // join snapshot

	r1.Inbox() <- room.Leave{ClientID: "c1"}

	// Teardown is asynchronous: the room notifies the hub on its own goroutine.
	deadline := time.After(500 * time.Millisecond)
	for get(t, h, testRoomID) != nil {
		select {
		case <-deadline:
			t.Fatalf("room was not removed after emptying")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// A rejoin under the same code gets a brand-new default room.
	r2 := ensure(t, h, testRoomID)
	if r2 == r1 {
		t.Fatalf("expected a fresh room after teardown")
	}
	reply := make(chan room.View, 1)
	r2.Inbox() <- room.GetState{Reply: reply}
	view := <-reply
	if len(view.State.Users) != 0 {
		t.Fatalf("recreated room is not fresh: %v", view.State.Users)
	}
	for _, rs := range view.State.Roles {
		if rs.ReadyAt != 0 {
			t.Fatalf("recreated room kept a cooldown: %+v", view.State.Roles)
		}
	}
}

func TestHub_RoomCount(t *testing.T) {
	h := newTestHub(t)
	ensure(t, h, "aaaaaaaaaa")
	ensure(t, h, "bbbbbbbbbb")

	reply := make(chan int, 1)
	h.Inbox() <- RoomCount{Reply: reply}
	if n := <-reply; n != 2 {
		t.Fatalf("room count: got %d, want 2", n)
	}
}

func TestHub_StaleRemoveIsIgnored(t *testing.T) {
	h := newTestHub(t)

	r1 := ensure(t, h, testRoomID)
	h.Inbox() <- RemoveRoom{Code: testRoomID, Room: r1}

	// Wait for removal, then recreate and fire the stale removal again.
	deadline := time.After(500 * time.Millisecond)
	for get(t, h, testRoomID) != nil {
		select {
		case <-deadline:
			t.Fatalf("room was not removed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	r2 := ensure(t, h, testRoomID)
	h.Inbox() <- RemoveRoom{Code: testRoomID, Room: r1} // stale pointer

	if got := get(t, h, testRoomID); got != r2 {
		t.Fatalf("stale removal evicted the live room")
	}
}
