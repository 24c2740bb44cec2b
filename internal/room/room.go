package room

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/loltimeflash/server/internal/game"
	"github.com/loltimeflash/server/internal/protocol"
)

type Msg interface{ isRoomMsg() }

// Join registers a connection and adds its username to the roster.
type Join struct {
	ClientID string
	Username string
	Outbox   chan protocol.ServerMessage // where this client receives broadcasts
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

// FromClient carries a validated command. ClientID is kept so errors go back
// to the sender alone.
type FromClient struct {
	ClientID string
	Cmd      game.Command
}

func (FromClient) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// View reflects internal state without data races. Test and monitoring use.
type View struct {
	NumClients int
	State      game.State
}

// Room owns one shared tracking session. All mutations flow through a single
// goroutine draining the inbox, so every command applies atomically with
// respect to the others — the per-room serialization the protocol requires.
type Room struct {
	inbox     chan Msg
	state     game.State
	clients   map[string]chan protocol.ServerMessage
	usernames map[string]string // connection id -> display name
	clock     clockwork.Clock
	log       *zap.Logger
	onEmpty   func(code string, r *Room)
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewRoom starts a room actor with a default state. onEmpty fires once when
// the roster empties; the room stops itself right after.
func NewRoom(parent context.Context, code string, clock clockwork.Clock, log *zap.Logger, onEmpty func(code string, r *Room)) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		inbox:     make(chan Msg, 64),
		state:     game.NewState(code, clock.Now()),
		clients:   make(map[string]chan protocol.ServerMessage),
		usernames: make(map[string]string),
		clock:     clock,
		log:       log.With(zap.String("room", code)),
		onEmpty:   onEmpty,
		ctx:       ctx,
		cancel:    cancel,
	}

	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the room has stopped; senders should treat the room as
// gone and report ROOM_NOT_FOUND themselves.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)

			case Leave:
				if r.handleLeave(msg) {
					return
				}

			case FromClient:
				r.handleCommand(msg)

			case GetState:
				msg.Reply <- View{NumClients: len(r.clients), State: r.state}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	r.clients[msg.ClientID] = msg.Outbox
	r.usernames[msg.ClientID] = msg.Username
	r.state = game.AddUser(r.state, msg.Username, r.clock.Now())

	// The joiner has no prior state to merge against, so everyone gets the
	// full snapshot; the roster delta goes to the others only.
	r.broadcast(r.snapshot())
	r.broadcastExcept(msg.ClientID, protocol.ServerMessage{
		Type:     protocol.MsgUserJoined,
		Username: msg.Username,
		Users:    r.state.Users,
	})

	r.log.Info("user joined", zap.String("username", msg.Username))
}

// handleLeave reports whether the room emptied and stopped.
func (r *Room) handleLeave(msg Leave) bool {
	username, known := r.usernames[msg.ClientID]
	if ch, ok := r.clients[msg.ClientID]; ok {
		close(ch)
		delete(r.clients, msg.ClientID)
	}
	delete(r.usernames, msg.ClientID)
	if !known {
		return false
	}

	r.state = game.RemoveUser(r.state, username, r.clock.Now())
	r.log.Info("user left", zap.String("username", username))

	// Empty rooms die immediately; a rejoin under the same code starts fresh.
	if len(r.state.Users) == 0 {
		if r.onEmpty != nil {
			r.onEmpty(r.state.RoomID, r)
		}
		r.shutdown()
		return true
	}

	r.broadcast(protocol.ServerMessage{
		Type:     protocol.MsgUserLeft,
		Username: username,
		Users:    r.state.Users,
	})
	return false
}

func (r *Room) handleCommand(msg FromClient) {
	cmd := msg.Cmd
	cmd.Username = r.usernames[msg.ClientID]

	events, newState, err := game.Apply(r.state, cmd, r.clock.Now())
	if err != nil {
		r.sendTo(msg.ClientID, protocol.ErrorMessage(protocol.CodeInvalidPayload, err.Error()))
		return
	}
	if len(events) == 0 {
		// Legal no-op (e.g. adjusting a timer that is not running).
		return
	}

	r.state = newState
	for _, e := range events {
		r.broadcast(protocol.FromEvent(e))
		r.log.Info("event",
			zap.String("type", string(e.Type)),
			zap.String("role", string(e.Role)),
			zap.String("username", e.Username))
	}
	// Snapshot-only listeners stay consistent without interpreting facts.
	r.broadcast(r.snapshot())
}

func (r *Room) snapshot() protocol.ServerMessage {
	state := r.state
	return protocol.ServerMessage{Type: protocol.MsgRoomSnapshot, State: &state}
}

func (r *Room) sendTo(clientID string, m protocol.ServerMessage) {
	ch, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- m:
	default:
		close(ch)
		delete(r.clients, clientID)
	}
}

func (r *Room) broadcast(m protocol.ServerMessage) {
	for id, ch := range r.clients {
		select {
		case ch <- m:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) broadcastExcept(clientID string, m protocol.ServerMessage) {
	for id, ch := range r.clients {
		if id == clientID {
			continue
		}
		select {
		case ch <- m:
		default:
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
	// A Join queued behind the leave that emptied the room would otherwise
	// sit in the inbox forever. Close its outbox so the joiner sees the room
	// is gone and retries against the hub.
	for {
		select {
		case m := <-r.inbox:
			if join, ok := m.(Join); ok {
				close(join.Outbox)
			}
		default:
			return
		}
	}
}
