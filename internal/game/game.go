package game

import (
	"time"
)

type Role string

const (
	RoleTop     Role = "TOP"
	RoleJungle  Role = "JUNGLE"
	RoleMid     Role = "MID"
	RoleADC     Role = "ADC"
	RoleSupport Role = "SUPPORT"
)

// Roles lists the five fixed roles in display order.
var Roles = []Role{RoleTop, RoleJungle, RoleMid, RoleADC, RoleSupport}

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleTop, RoleJungle, RoleMid, RoleADC, RoleSupport:
		return Role(s), true
	default:
		return "", false
	}
}

type Item string

const (
	ItemLucidityBoots Item = "lucidityBoots"
	ItemCosmicInsight Item = "cosmicInsight"
)

func ParseItem(s string) (Item, bool) {
	switch Item(s) {
	case ItemLucidityBoots, ItemCosmicInsight:
		return Item(s), true
	default:
		return "", false
	}
}

// Champion is display data imported from a live game. Never required for
// the timer logic.
type Champion struct {
	ChampionID      int    `json:"championId"`
	ChampionName    string `json:"championName"`
	ChampionIconURL string `json:"championIconUrl"`
	SummonerName    string `json:"summonerName"`
}

// RoleState tracks one role's Flash. ReadyAt is the absolute instant (ms since
// epoch) at which Flash comes back up; 0 means available. The server never
// stores a countdown — every reader derives "seconds left" from ReadyAt.
type RoleState struct {
	ReadyAt       int64     `json:"readyAt"`
	LucidityBoots bool      `json:"lucidityBoots"`
	CosmicInsight bool      `json:"cosmicInsight"`
	Champion      *Champion `json:"champion,omitempty"`
}

func (rs RoleState) OnCooldown(now time.Time) bool {
	return rs.ReadyAt > now.UnixMilli()
}

type GameInfo struct {
	GameID        int64 `json:"gameId"`
	GameStartTime int64 `json:"gameStartTime"`
}

// State is the full shared state of one room.
type State struct {
	RoomID        string             `json:"roomId"`
	Users         []string           `json:"users"`
	Roles         map[Role]RoleState `json:"roles"`
	GameID        int64              `json:"gameId,omitempty"`
	GameStartTime int64              `json:"gameStartTime,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// NewState returns a default room: empty roster, all five roles available
// with no items. Every State ever built has exactly these five role keys.
func NewState(roomID string, now time.Time) State {
	roles := make(map[Role]RoleState, len(Roles))
	for _, r := range Roles {
		roles[r] = RoleState{}
	}
	return State{
		RoomID:    roomID,
		Users:     []string{},
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s State) HasUser(username string) bool {
	for _, u := range s.Users {
		if u == username {
			return true
		}
	}
	return false
}

// AddUser appends username to the roster, once. Join order is preserved.
func AddUser(s State, username string, now time.Time) State {
	if s.HasUser(username) {
		return s
	}
	next := s
	next.Users = append(append([]string{}, s.Users...), username)
	next.UpdatedAt = now
	return next
}

// RemoveUser drops username from the roster if present.
func RemoveUser(s State, username string, now time.Time) State {
	next := s
	users := make([]string, 0, len(s.Users))
	for _, u := range s.Users {
		if u != username {
			users = append(users, u)
		}
	}
	if len(users) == len(s.Users) {
		return s
	}
	next.Users = users
	next.UpdatedAt = now
	return next
}

func cloneRoles(roles map[Role]RoleState) map[Role]RoleState {
	next := make(map[Role]RoleState, len(roles))
	for r, rs := range roles {
		next[r] = rs
	}
	return next
}
