package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loltimeflash/server/internal/game"
)

func TestValidateRoomID(t *testing.T) {
	cases := []struct {
		name   string
		roomID string
		ok     bool
	}{
		{"valid mixed case", "abcDEF1234", true},
		{"valid digits only", "0123456789", true},
		{"too short", "abc123", false},
		{"too long", "abcDEF12345", false},
		{"empty", "", false},
		{"punctuation", "abcDEF12_4", false},
		{"whitespace", "abcDEF 234", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRoomID(tc.roomID)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		ok       bool
	}{
		{"min length", "abc", true},
		{"max length", "abcdefghijklmnopqrst", true},
		{"too short", "ab", false},
		{"too long", "abcdefghijklmnopqrstu", false},
		{"empty", "", false},
		// Bounds count characters, not bytes.
		{"min length multibyte", "héé", true},
		{"max length multibyte", "éééééééééééééééééééé", true},
		{"too short multibyte", "éé", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUsername(tc.username)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFromEvent(t *testing.T) {
	t.Run("flash used", func(t *testing.T) {
		m := FromEvent(game.Event{
			Type:     game.EvtFlashUsed,
			Role:     game.RoleTop,
			Username: "alice",
			Cooldown: 300,
			EndsAt:   1_700_000_300_000,
		})
		require.Equal(t, MsgFlashUsed, m.Type)
		assert.Equal(t, game.RoleTop, m.Role)
		assert.Equal(t, "alice", m.Username)
		assert.Equal(t, 300, m.Cooldown)
		assert.Equal(t, int64(1_700_000_300_000), m.EndsAt)
	})

	t.Run("item toggled", func(t *testing.T) {
		m := FromEvent(game.Event{
			Type:     game.EvtItemToggled,
			Role:     game.RoleMid,
			Item:     game.ItemCosmicInsight,
			Value:    true,
			Username: "bob",
		})
		require.Equal(t, MsgItemToggled, m.Type)
		assert.Equal(t, game.ItemCosmicInsight, m.Item)
		assert.True(t, m.Value)
	})

	t.Run("timer adjusted", func(t *testing.T) {
		m := FromEvent(game.Event{
			Type:              game.EvtTimerAdjusted,
			Role:              game.RoleADC,
			AdjustmentSeconds: -5,
			Username:          "carol",
		})
		require.Equal(t, MsgTimerAdjusted, m.Type)
		assert.Equal(t, -5, m.AdjustmentSeconds)
	})

	t.Run("champions updated", func(t *testing.T) {
		info := &game.GameInfo{GameID: 7}
		m := FromEvent(game.Event{
			Type:        game.EvtChampionsUpdated,
			Username:    "dave",
			RoleMapping: map[game.Role]game.Champion{game.RoleTop: {ChampionID: 266}},
			GameInfo:    info,
		})
		require.Equal(t, MsgChampionsUpdated, m.Type)
		assert.Equal(t, info, m.GameInfo)
		assert.Contains(t, m.RoleMapping, game.RoleTop)
	})
}

func TestItemToggledOffKeepsValueOnTheWire(t *testing.T) {
	m := FromEvent(game.Event{
		Type:     game.EvtItemToggled,
		Role:     game.RoleMid,
		Item:     game.ItemLucidityBoots,
		Value:    false,
		Username: "bob",
	})
	payload, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"value":false`)
}

func TestTimerAdjustedZeroKeepsFieldOnTheWire(t *testing.T) {
	m := FromEvent(game.Event{
		Type:              game.EvtTimerAdjusted,
		Role:              game.RoleADC,
		AdjustmentSeconds: 0,
		Username:          "carol",
	})
	payload, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"adjustment_seconds":0`)
}

func TestErrorMessage(t *testing.T) {
	m := ErrorMessage(CodeNotInRoom, "you must join a room first")
	assert.Equal(t, MsgError, m.Type)
	assert.Equal(t, CodeNotInRoom, m.Code)
	assert.Equal(t, "you must join a room first", m.Error)
}
