package client

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loltimeflash/server/internal/game"
	"github.com/loltimeflash/server/internal/protocol"
)

func snapshotWith(roomID string, readyAt int64, now time.Time) protocol.ServerMessage {
	state := game.NewState(roomID, now)
	rs := state.Roles[game.RoleTop]
	rs.ReadyAt = readyAt
	state.Roles[game.RoleTop] = rs
	state.Users = []string{"alice"}
	return protocol.ServerMessage{Type: protocol.MsgRoomSnapshot, State: &state}
}

func TestMerge_TrustsServerReadyAtVerbatim(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(nil, clock)
	now := clock.Now()

	c.Merge(snapshotWith("abcDEF1234", now.UnixMilli()+200_000, now))
	require.Equal(t, 200, c.Countdown(game.RoleTop))

	// A later snapshot with a *larger* remaining time must win: no
	// "keep the smaller countdown" special-casing.
	c.Merge(snapshotWith("abcDEF1234", now.UnixMilli()+268_000, now))
	assert.Equal(t, 268, c.Countdown(game.RoleTop))

	// And a smaller one must win too.
	c.Merge(snapshotWith("abcDEF1234", now.UnixMilli()+30_000, now))
	assert.Equal(t, 30, c.Countdown(game.RoleTop))

	// Including the available sentinel.
	c.Merge(snapshotWith("abcDEF1234", 0, now))
	assert.Equal(t, 0, c.Countdown(game.RoleTop))
}

func TestCountdown_DerivedFromClockNotDecremented(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(nil, clock)
	now := clock.Now()

	c.Merge(snapshotWith("abcDEF1234", now.UnixMilli()+300_000, now))

	require.Equal(t, 300, c.Countdown(game.RoleTop))
	require.True(t, c.OnCooldown(game.RoleTop))

	clock.Advance(150 * time.Second)
	assert.Equal(t, 150, c.Countdown(game.RoleTop))

	// Past the target instant the derivation clamps at zero and the
	// render flag flips, with no server push involved.
	clock.Advance(150*time.Second + time.Millisecond)
	assert.Equal(t, 0, c.Countdown(game.RoleTop))
	assert.False(t, c.OnCooldown(game.RoleTop))
}

func TestCountdowns_CoverAllFiveRoles(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(nil, clock)
	now := clock.Now()

	c.Merge(snapshotWith("abcDEF1234", now.UnixMilli()+60_000, now))

	all := c.Countdowns()
	require.Len(t, all, 5)
	assert.Equal(t, 60, all[game.RoleTop])
	for _, role := range []game.Role{game.RoleJungle, game.RoleMid, game.RoleADC, game.RoleSupport} {
		assert.Equal(t, 0, all[role])
	}
}

func TestMerge_RosterDeltasPatchUserList(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(nil, clock)
	now := clock.Now()

	c.Merge(snapshotWith("abcDEF1234", 0, now))

	c.Merge(protocol.ServerMessage{
		Type:     protocol.MsgUserJoined,
		Username: "bob",
		Users:    []string{"alice", "bob"},
	})
	state, ok := c.State()
	require.True(t, ok)
	assert.Equal(t, []string{"alice", "bob"}, state.Users)

	c.Merge(protocol.ServerMessage{
		Type:     protocol.MsgUserLeft,
		Username: "alice",
		Users:    []string{"bob"},
	})
	state, _ = c.State()
	assert.Equal(t, []string{"bob"}, state.Users)
}

func TestMerge_IgnoresFactsAndNilSnapshots(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(nil, clock)
	now := clock.Now()

	c.Merge(snapshotWith("abcDEF1234", now.UnixMilli()+100_000, now))

	// Narrow facts do not touch local state; the snapshot that follows
	// every mutation is the authority.
	c.Merge(protocol.ServerMessage{
		Type:   protocol.MsgFlashUsed,
		Role:   game.RoleTop,
		EndsAt: now.UnixMilli() + 999_000,
	})
	assert.Equal(t, 100, c.Countdown(game.RoleTop))

	c.Merge(protocol.ServerMessage{Type: protocol.MsgRoomSnapshot, State: nil})
	_, ok := c.State()
	assert.True(t, ok)
}

func TestState_BeforeFirstSnapshot(t *testing.T) {
	c := New(nil, clockwork.NewFakeClock())
	_, ok := c.State()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Countdown(game.RoleTop))
}
