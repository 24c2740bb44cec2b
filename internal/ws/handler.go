package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loltimeflash/server/internal/game"
	"github.com/loltimeflash/server/internal/hub"
	"github.com/loltimeflash/server/internal/protocol"
	"github.com/loltimeflash/server/internal/room"
	"github.com/loltimeflash/server/pkg/metrics"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the connection and runs the session until the client
// disconnects. A dropped connection is an implicit Leave.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		metrics.TotalConnections.Inc()
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		s := &session{
			conn:     conn,
			clientID: uuid.NewString(),
			log:      log,
		}
		s.run(r.Context(), h)
	}
}

type session struct {
	conn     *websocket.Conn
	clientID string
	rm       *room.Room
	log      *zap.Logger
}

func (s *session) run(ctx context.Context, h *hub.Hub) {
	defer s.leave()

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			return
		}

		var cm protocol.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			s.write(ctx, protocol.ErrorMessage(protocol.CodeInvalidPayload, "bad json"))
			continue
		}
		metrics.EventsReceived.WithLabelValues(cm.Type).Inc()

		switch cm.Type {
		case protocol.MsgJoin:
			s.handleJoin(ctx, h, cm)

		case protocol.MsgLeave:
			if s.rm == nil {
				s.write(ctx, protocol.ErrorMessage(protocol.CodeNotInRoom, "you must join a room first"))
				continue
			}
			s.leave()

		default:
			s.handleCommand(ctx, cm)
		}
	}
}

func (s *session) handleJoin(ctx context.Context, h *hub.Hub, cm protocol.ClientMessage) {
	if err := protocol.ValidateRoomID(cm.RoomID); err != nil {
		s.write(ctx, protocol.ErrorMessage(protocol.CodeInvalidPayload, err.Error()))
		return
	}
	if err := protocol.ValidateUsername(cm.Username); err != nil {
		s.write(ctx, protocol.ErrorMessage(protocol.CodeInvalidPayload, err.Error()))
		return
	}

	// Joining while joined moves the connection to the new room.
	s.leave()

	// A join can race with the room emptying out and tearing down. The
	// snapshot every join answers with doubles as the ack: a closed outbox
	// or a dead room means the attempt landed in a dying room, so ask the
	// hub for a fresh one and try again.
	for {
		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.EnsureRoom{Code: cm.RoomID, Reply: reply}

		var rm *room.Room
		select {
		case rm = <-reply:
		case <-ctx.Done():
			return
		}

		out := make(chan protocol.ServerMessage, 16)
		select {
		case rm.Inbox() <- room.Join{ClientID: s.clientID, Username: cm.Username, Outbox: out}:
		case <-rm.Done():
			continue
		case <-ctx.Done():
			return
		}

		select {
		case snap, ok := <-out:
			if !ok {
				continue
			}
			s.rm = rm
			s.write(ctx, snap)
			go s.writeLoop(ctx, out)
			return
		case <-rm.Done():
			continue
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) handleCommand(ctx context.Context, cm protocol.ClientMessage) {
	if s.rm == nil {
		s.write(ctx, protocol.ErrorMessage(protocol.CodeNotInRoom, "you must join a room first"))
		return
	}
	select {
	case <-s.rm.Done():
		// Raced with the room emptying out from under us.
		s.rm = nil
		s.write(ctx, protocol.ErrorMessage(protocol.CodeRoomNotFound, "room no longer exists"))
		return
	default:
	}

	cmd, err := toCommand(cm)
	if err != nil {
		s.write(ctx, protocol.ErrorMessage(protocol.CodeInvalidPayload, err.Error()))
		return
	}

	s.rm.Inbox() <- room.FromClient{ClientID: s.clientID, Cmd: cmd}
}

func (s *session) leave() {
	if s.rm == nil {
		return
	}
	select {
	case <-s.rm.Done():
	default:
		s.rm.Inbox() <- room.Leave{ClientID: s.clientID}
	}
	s.rm = nil
}

// writeLoop drains one room membership's outbox. The room closes the channel
// on leave, teardown, or when this client is too slow to keep up.
func (s *session) writeLoop(ctx context.Context, out <-chan protocol.ServerMessage) {
	for m := range out {
		s.write(ctx, m)
	}
}

func (s *session) write(ctx context.Context, m protocol.ServerMessage) {
	payload, err := json.Marshal(m)
	if err != nil {
		s.log.Error("marshal server message", zap.Error(err))
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := s.conn.Write(wctx, websocket.MessageText, payload); err == nil {
		metrics.EventsEmitted.WithLabelValues(m.Type).Inc()
	}
}

func toCommand(m protocol.ClientMessage) (game.Command, error) {
	switch m.Type {
	case protocol.MsgUseFlash, protocol.MsgCancelFlash:
		role, ok := game.ParseRole(m.Role)
		if !ok {
			return game.Command{}, fmt.Errorf("role must be one of TOP, JUNGLE, MID, ADC, SUPPORT")
		}
		t := game.CmdUseFlash
		if m.Type == protocol.MsgCancelFlash {
			t = game.CmdCancelFlash
		}
		return game.Command{Type: t, Role: role}, nil

	case protocol.MsgToggleItem:
		role, ok := game.ParseRole(m.Role)
		if !ok {
			return game.Command{}, fmt.Errorf("role must be one of TOP, JUNGLE, MID, ADC, SUPPORT")
		}
		item, ok := game.ParseItem(m.Item)
		if !ok {
			return game.Command{}, fmt.Errorf("item must be either lucidityBoots or cosmicInsight")
		}
		return game.Command{Type: game.CmdToggleItem, Role: role, Item: item}, nil

	case protocol.MsgAdjustTimer:
		role, ok := game.ParseRole(m.Role)
		if !ok {
			return game.Command{}, fmt.Errorf("role must be one of TOP, JUNGLE, MID, ADC, SUPPORT")
		}
		if m.AdjustmentSeconds < -game.MaxAdjustmentSeconds || m.AdjustmentSeconds > game.MaxAdjustmentSeconds {
			return game.Command{}, fmt.Errorf("adjustment must be between -%d and %d seconds", game.MaxAdjustmentSeconds, game.MaxAdjustmentSeconds)
		}
		return game.Command{Type: game.CmdAdjustTimer, Role: role, AdjustmentSeconds: m.AdjustmentSeconds}, nil

	case protocol.MsgUpdateChampions:
		mapping := make(map[game.Role]game.Champion, len(m.RoleMapping))
		for k, v := range m.RoleMapping {
			role, ok := game.ParseRole(k)
			if !ok {
				return game.Command{}, fmt.Errorf("unknown role %q in role mapping", k)
			}
			mapping[role] = v
		}
		return game.Command{Type: game.CmdUpdateChampions, RoleMapping: mapping, GameInfo: m.GameInfo}, nil

	default:
		return game.Command{}, fmt.Errorf("unknown message type %q", m.Type)
	}
}
