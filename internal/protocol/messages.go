// Package protocol defines the JSON messages exchanged over the websocket.
//
// Client -> Server
//
//	Join:            room_id (10-char alphanumeric), username (3-20 chars)
//	Leave:           {}
//	UseFlash:        role
//	CancelFlash:     role
//	ToggleItem:      role, item ("lucidityBoots" | "cosmicInsight")
//	AdjustTimer:     role, adjustment_seconds (-10..10)
//	UpdateChampions: role_mapping (partial role -> champion), game_info?
//
// Server -> Client
//
//	RoomSnapshot:     state (full room, sent after every mutation and on join)
//	FlashUsed:        role, username, cooldown (sec), ends_at (ms epoch)
//	FlashCancelled:   role, username
//	ItemToggled:      role, item, value, username
//	TimerAdjusted:    role, adjustment_seconds, username
//	ChampionsUpdated: role_mapping, game_info?, username
//	UserJoined:       username, users (full roster)
//	UserLeft:         username, users (full roster)
//	Error:            code, error
package protocol

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/loltimeflash/server/internal/game"
)

const (
	MsgJoin            = "Join"
	MsgLeave           = "Leave"
	MsgUseFlash        = "UseFlash"
	MsgCancelFlash     = "CancelFlash"
	MsgToggleItem      = "ToggleItem"
	MsgAdjustTimer     = "AdjustTimer"
	MsgUpdateChampions = "UpdateChampions"
)

const (
	MsgRoomSnapshot     = "RoomSnapshot"
	MsgFlashUsed        = "FlashUsed"
	MsgFlashCancelled   = "FlashCancelled"
	MsgItemToggled      = "ItemToggled"
	MsgTimerAdjusted    = "TimerAdjusted"
	MsgChampionsUpdated = "ChampionsUpdated"
	MsgUserJoined       = "UserJoined"
	MsgUserLeft         = "UserLeft"
	MsgError            = "Error"
)

// Error codes sent to the offending connection only.
const (
	CodeInvalidPayload = "INVALID_PAYLOAD"
	CodeNotInRoom      = "NOT_IN_ROOM"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
)

type ClientMessage struct {
	Type              string                   `json:"type"`
	RoomID            string                   `json:"room_id,omitempty"`
	Username          string                   `json:"username,omitempty"`
	Role              string                   `json:"role,omitempty"`
	Item              string                   `json:"item,omitempty"`
	AdjustmentSeconds int                      `json:"adjustment_seconds,omitempty"`
	RoleMapping       map[string]game.Champion `json:"role_mapping,omitempty"`
	GameInfo          *game.GameInfo           `json:"game_info,omitempty"`
}

type ServerMessage struct {
	Type              string                      `json:"type"`
	State             *game.State                 `json:"state,omitempty"`
	Role              game.Role                   `json:"role,omitempty"`
	Item              game.Item                   `json:"item,omitempty"`
	Value             bool                        `json:"value"`
	Username          string                      `json:"username,omitempty"`
	Cooldown          int                         `json:"cooldown,omitempty"`
	EndsAt            int64                       `json:"ends_at,omitempty"`
	AdjustmentSeconds int                         `json:"adjustment_seconds"`
	RoleMapping       map[game.Role]game.Champion `json:"role_mapping,omitempty"`
	GameInfo          *game.GameInfo              `json:"game_info,omitempty"`
	Users             []string                    `json:"users,omitempty"`
	Code              string                      `json:"code,omitempty"`
	Error             string                      `json:"error,omitempty"`
}

func ErrorMessage(code, message string) ServerMessage {
	return ServerMessage{Type: MsgError, Code: code, Error: message}
}

// FromEvent converts an engine fact into its wire form.
func FromEvent(e game.Event) ServerMessage {
	switch e.Type {
	case game.EvtFlashUsed:
		return ServerMessage{Type: MsgFlashUsed, Role: e.Role, Username: e.Username, Cooldown: e.Cooldown, EndsAt: e.EndsAt}
	case game.EvtFlashCancelled:
		return ServerMessage{Type: MsgFlashCancelled, Role: e.Role, Username: e.Username}
	case game.EvtItemToggled:
		return ServerMessage{Type: MsgItemToggled, Role: e.Role, Item: e.Item, Value: e.Value, Username: e.Username}
	case game.EvtTimerAdjusted:
		return ServerMessage{Type: MsgTimerAdjusted, Role: e.Role, AdjustmentSeconds: e.AdjustmentSeconds, Username: e.Username}
	case game.EvtChampionsUpdated:
		return ServerMessage{Type: MsgChampionsUpdated, Username: e.Username, RoleMapping: e.RoleMapping, GameInfo: e.GameInfo}
	default:
		return ServerMessage{Type: string(e.Type)}
	}
}

// Username length bounds. Policy constants, not protocol invariants.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
)

// RoomIDLength is a protocol rule: ids are exactly 10 alphanumeric chars.
const RoomIDLength = 10

var roomIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{10}$`)

func ValidateRoomID(roomID string) error {
	if !roomIDPattern.MatchString(roomID) {
		return fmt.Errorf("room id must be exactly %d alphanumeric characters", RoomIDLength)
	}
	return nil
}

func ValidateUsername(username string) error {
	// Bounds are in characters, not bytes, so multibyte names count fairly.
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLen || n > MaxUsernameLen {
		return fmt.Errorf("username must be between %d and %d characters", MinUsernameLen, MaxUsernameLen)
	}
	return nil
}
