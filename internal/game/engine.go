package game

import (
	"errors"
	"time"
)

var ErrUnknownRole = errors.New("unknown role")
var ErrUnknownItem = errors.New("unknown item")
var ErrAdjustOutOfRange = errors.New("adjustment out of range")
var ErrUnsupportedCommand = errors.New("unsupported command")

// MaxAdjustmentSeconds bounds a single manual timer correction.
const MaxAdjustmentSeconds = 10

type CommandType string

const (
	CmdUseFlash        CommandType = "UseFlash"
	CmdCancelFlash     CommandType = "CancelFlash"
	CmdToggleItem      CommandType = "ToggleItem"
	CmdAdjustTimer     CommandType = "AdjustTimer"
	CmdUpdateChampions CommandType = "UpdateChampions"
)

type Command struct {
	Type              CommandType
	Role              Role
	Item              Item
	Username          string
	AdjustmentSeconds int
	RoleMapping       map[Role]Champion
	GameInfo          *GameInfo
}

type EventType string

const (
	EvtFlashUsed        EventType = "FlashUsed"
	EvtFlashCancelled   EventType = "FlashCancelled"
	EvtItemToggled      EventType = "ItemToggled"
	EvtTimerAdjusted    EventType = "TimerAdjusted"
	EvtChampionsUpdated EventType = "ChampionsUpdated"
)

// Event is the narrow fact describing what a command changed. The room
// broadcasts the fact followed by a full snapshot, so clients may consume
// either.
type Event struct {
	Type              EventType
	Role              Role
	Item              Item
	Username          string
	Cooldown          int   // seconds, FlashUsed only
	EndsAt            int64 // ms since epoch, FlashUsed only
	Value             bool  // ItemToggled only
	AdjustmentSeconds int
	RoleMapping       map[Role]Champion
	GameInfo          *GameInfo
}

// Apply runs one command against the state at instant now and returns the
// resulting facts plus the next state. It never mutates s. A nil event slice
// with a nil error means the command was a legal no-op.
func Apply(s State, cmd Command, now time.Time) ([]Event, State, error) {
	newState := s

	switch cmd.Type {
	case CmdUseFlash:
		rs, ok := s.Roles[cmd.Role]
		if !ok {
			return nil, s, ErrUnknownRole
		}

		cooldown := CalculateFlashCooldown(rs.LucidityBoots, rs.CosmicInsight)
		rs.ReadyAt = now.UnixMilli() + int64(cooldown)*1000

		newState.Roles = cloneRoles(s.Roles)
		newState.Roles[cmd.Role] = rs
		newState.UpdatedAt = now

		events := []Event{{
			Type:     EvtFlashUsed,
			Role:     cmd.Role,
			Username: cmd.Username,
			Cooldown: cooldown,
			EndsAt:   rs.ReadyAt,
		}}
		return events, newState, nil

	case CmdCancelFlash:
		rs, ok := s.Roles[cmd.Role]
		if !ok {
			return nil, s, ErrUnknownRole
		}

		// Cancelling an already-available Flash is a harmless reset.
		rs.ReadyAt = 0

		newState.Roles = cloneRoles(s.Roles)
		newState.Roles[cmd.Role] = rs
		newState.UpdatedAt = now

		events := []Event{{
			Type:     EvtFlashCancelled,
			Role:     cmd.Role,
			Username: cmd.Username,
		}}
		return events, newState, nil

	case CmdToggleItem:
		rs, ok := s.Roles[cmd.Role]
		if !ok {
			return nil, s, ErrUnknownRole
		}

		oldTotal := CalculateFlashCooldown(rs.LucidityBoots, rs.CosmicInsight)
		var newValue bool
		switch cmd.Item {
		case ItemLucidityBoots:
			rs.LucidityBoots = !rs.LucidityBoots
			newValue = rs.LucidityBoots
		case ItemCosmicInsight:
			rs.CosmicInsight = !rs.CosmicInsight
			newValue = rs.CosmicInsight
		default:
			return nil, s, ErrUnknownItem
		}

		// Mid-cooldown toggles keep the remaining fraction of the total,
		// so gaining haste shortens the wait proportionally instead of
		// leaving the old countdown in place.
		if rs.OnCooldown(now) {
			newTotal := CalculateFlashCooldown(rs.LucidityBoots, rs.CosmicInsight)
			remainingMs := rs.ReadyAt - now.UnixMilli()
			fraction := float64(remainingMs) / float64(oldTotal*1000)
			rs.ReadyAt = now.UnixMilli() + int64(fraction*float64(newTotal)*1000)
		}

		newState.Roles = cloneRoles(s.Roles)
		newState.Roles[cmd.Role] = rs
		newState.UpdatedAt = now

		events := []Event{{
			Type:     EvtItemToggled,
			Role:     cmd.Role,
			Item:     cmd.Item,
			Value:    newValue,
			Username: cmd.Username,
		}}
		return events, newState, nil

	case CmdAdjustTimer:
		rs, ok := s.Roles[cmd.Role]
		if !ok {
			return nil, s, ErrUnknownRole
		}
		if cmd.AdjustmentSeconds < -MaxAdjustmentSeconds || cmd.AdjustmentSeconds > MaxAdjustmentSeconds {
			return nil, s, ErrAdjustOutOfRange
		}

		// Shifting a timer that is not running is a no-op, not an error.
		if !rs.OnCooldown(now) {
			return nil, s, nil
		}

		rs.ReadyAt += int64(cmd.AdjustmentSeconds) * 1000
		// Never adjust into the past: clamp to now, which reads as zero
		// remaining on the next derivation.
		if nowMs := now.UnixMilli(); rs.ReadyAt < nowMs {
			rs.ReadyAt = nowMs
		}

		newState.Roles = cloneRoles(s.Roles)
		newState.Roles[cmd.Role] = rs
		newState.UpdatedAt = now

		events := []Event{{
			Type:              EvtTimerAdjusted,
			Role:              cmd.Role,
			AdjustmentSeconds: cmd.AdjustmentSeconds,
			Username:          cmd.Username,
		}}
		return events, newState, nil

	case CmdUpdateChampions:
		newState.Roles = cloneRoles(s.Roles)
		for role, champ := range cmd.RoleMapping {
			rs, ok := newState.Roles[role]
			if !ok {
				return nil, s, ErrUnknownRole
			}
			c := champ
			rs.Champion = &c
			newState.Roles[role] = rs
		}
		if cmd.GameInfo != nil {
			newState.GameID = cmd.GameInfo.GameID
			newState.GameStartTime = cmd.GameInfo.GameStartTime
		}
		newState.UpdatedAt = now

		events := []Event{{
			Type:        EvtChampionsUpdated,
			Username:    cmd.Username,
			RoleMapping: cmd.RoleMapping,
			GameInfo:    cmd.GameInfo,
		}}
		return events, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}
