// Package client is the reconciliation layer a consumer runs against the
// gateway: it keeps a local copy of the room, merges authoritative broadcasts,
// and derives live countdowns from the readyAt instants the server issues.
//
// The merge policy is deliberately dumb: the server's readyAt is stored
// verbatim. No local countdown is ever decremented and no "is the new value
// smaller" comparison happens — deriving remaining = readyAt - now on every
// tick is what keeps independently drifting clients in agreement.
package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/loltimeflash/server/internal/game"
	"github.com/loltimeflash/server/internal/protocol"
)

// DefaultTickInterval is how often a renderer should re-derive countdowns.
const DefaultTickInterval = 500 * time.Millisecond

type Client struct {
	conn  *websocket.Conn
	clock clockwork.Clock

	mu       sync.RWMutex
	state    game.State
	hasState bool

	// OnMessage, when set, observes every server message after merging.
	OnMessage func(protocol.ServerMessage)
}

// Dial connects to a gateway websocket endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return New(conn, clockwork.NewRealClock()), nil
}

// New wraps an established connection. The clock is injectable for tests.
func New(conn *websocket.Conn, clock clockwork.Clock) *Client {
	return &Client{conn: conn, clock: clock}
}

func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}

// Listen consumes server messages until the connection or context ends.
func (c *Client) Listen(ctx context.Context) error {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return err
		}
		var m protocol.ServerMessage
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		c.Merge(m)
		if c.OnMessage != nil {
			c.OnMessage(m)
		}
	}
}

// Merge folds one authoritative message into the local copy. Snapshots
// replace the state wholesale; roster deltas patch the user list; narrow
// facts are ignored here because every mutation is followed by a snapshot.
func (c *Client) Merge(m protocol.ServerMessage) {
	switch m.Type {
	case protocol.MsgRoomSnapshot:
		if m.State == nil {
			return
		}
		c.mu.Lock()
		c.state = *m.State
		c.hasState = true
		c.mu.Unlock()
	case protocol.MsgUserJoined, protocol.MsgUserLeft:
		c.mu.Lock()
		if c.hasState {
			c.state.Users = m.Users
		}
		c.mu.Unlock()
	}
}

// State returns the last merged room state.
func (c *Client) State() (game.State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.hasState
}

// Countdown derives seconds remaining for a role at this instant.
func (c *Client) Countdown(role game.Role) int {
	c.mu.RLock()
	rs := c.state.Roles[role]
	c.mu.RUnlock()
	return game.TimestampToCountdown(rs.ReadyAt, c.clock.Now())
}

// Countdowns derives all five roles at once, for a render pass.
func (c *Client) Countdowns() map[game.Role]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.clock.Now()
	out := make(map[game.Role]int, len(game.Roles))
	for _, role := range game.Roles {
		out[role] = game.TimestampToCountdown(c.state.Roles[role].ReadyAt, now)
	}
	return out
}

// OnCooldown is the render-only availability flag: it flips to false the
// moment the derived countdown reaches zero, without any server push.
func (c *Client) OnCooldown(role game.Role) bool {
	return c.Countdown(role) > 0
}

// Tick calls fn with freshly derived countdowns every interval until ctx is
// cancelled. Each client ticks independently; no coordination is needed
// because the derivation is pure.
func (c *Client) Tick(ctx context.Context, interval time.Duration, fn func(map[game.Role]int)) {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			fn(c.Countdowns())
		}
	}
}

func (c *Client) send(ctx context.Context, m protocol.ClientMessage) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

func (c *Client) Join(ctx context.Context, roomID, username string) error {
	return c.send(ctx, protocol.ClientMessage{Type: protocol.MsgJoin, RoomID: roomID, Username: username})
}

func (c *Client) Leave(ctx context.Context) error {
	return c.send(ctx, protocol.ClientMessage{Type: protocol.MsgLeave})
}

func (c *Client) UseFlash(ctx context.Context, role game.Role) error {
	return c.send(ctx, protocol.ClientMessage{Type: protocol.MsgUseFlash, Role: string(role)})
}

func (c *Client) CancelFlash(ctx context.Context, role game.Role) error {
	return c.send(ctx, protocol.ClientMessage{Type: protocol.MsgCancelFlash, Role: string(role)})
}

func (c *Client) ToggleItem(ctx context.Context, role game.Role, item game.Item) error {
	return c.send(ctx, protocol.ClientMessage{Type: protocol.MsgToggleItem, Role: string(role), Item: string(item)})
}

func (c *Client) AdjustTimer(ctx context.Context, role game.Role, seconds int) error {
	return c.send(ctx, protocol.ClientMessage{Type: protocol.MsgAdjustTimer, Role: string(role), AdjustmentSeconds: seconds})
}

func (c *Client) UpdateChampions(ctx context.Context, mapping map[game.Role]game.Champion, info *game.GameInfo) error {
	wire := make(map[string]game.Champion, len(mapping))
	for role, champ := range mapping {
		wire[string(role)] = champ
	}
	return c.send(ctx, protocol.ClientMessage{Type: protocol.MsgUpdateChampions, RoleMapping: wire, GameInfo: info})
}
