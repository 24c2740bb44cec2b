package hub

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/loltimeflash/server/internal/room"
	"github.com/loltimeflash/server/pkg/metrics"
)

type HubMsg interface{ isHubMsg() }

// EnsureRoom returns the room for a code, creating it on first join.
type EnsureRoom struct {
	Code  string
	Reply chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

// RemoveRoom drops a room from the registry. Room is the pointer the sender
// believes is registered; a mismatch means the code was already recycled and
// the removal is stale.
type RemoveRoom struct {
	Code string
	Room *room.Room
}

type RoomCount struct {
	Reply chan int
}

type ShutdownHub struct{}

func (EnsureRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (RoomCount) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

// Hub is the registry of live rooms, keyed by room code. Like the rooms it
// owns, it serializes all access through a single message loop.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	clock  clockwork.Clock
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, clock clockwork.Clock, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		clock:  clock,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				if r := h.rooms[msg.Code]; r != nil {
					msg.Reply <- r
					break
				}
				r := room.NewRoom(h.ctx, msg.Code, h.clock, h.log, h.roomEmptied)
				h.rooms[msg.Code] = r
				metrics.ActiveRooms.Inc()
				h.log.Info("room created", zap.String("room", msg.Code))
				msg.Reply <- r

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case RemoveRoom:
				if h.rooms[msg.Code] == msg.Room {
					delete(h.rooms, msg.Code)
					metrics.ActiveRooms.Dec()
					h.log.Info("room removed", zap.String("room", msg.Code))
				}

			case RoomCount:
				msg.Reply <- len(h.rooms)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// roomEmptied runs on the emptied room's goroutine; the buffered inbox keeps
// it from blocking against the hub loop.
func (h *Hub) roomEmptied(code string, r *room.Room) {
	h.inbox <- RemoveRoom{Code: code, Room: r}
}

func (h *Hub) shutdown() {
	for code, r := range h.rooms {
		r.Inbox() <- room.Shutdown{}
		delete(h.rooms, code)
	}
	metrics.ActiveRooms.Set(0)
	h.cancel()
}
