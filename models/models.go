// models/models.go
package models

import (
	"time"
)

// PlayerInfo is the wire representation of one room member.
// Character stays empty until the player picks one.
type PlayerInfo struct {
	ID        string `json:"id"`
	Character string `json:"character,omitempty"`
	Ready     bool   `json:"ready"`
}

// --- inbound payloads ---

type CreateRoomRequest struct {
	RoomCode string `json:"roomCode"`
}

type JoinRoomRequest struct {
	RoomCode string `json:"roomCode"`
}

type SelectCharacterRequest struct {
	RoomCode    string `json:"roomCode"`
	CharacterID string `json:"characterId"`
}

type PlayerReadyRequest struct {
	RoomCode string `json:"roomCode"`
	IsReady  bool   `json:"isReady"`
}

// --- outbound payloads ---

type RoomCreateResponse struct {
	Success  bool   `json:"success"`
	RoomCode string `json:"roomCode,omitempty"`
	Host     string `json:"host,omitempty"`
	Message  string `json:"message,omitempty"`
}

type RoomJoinResponse struct {
	Success  bool         `json:"success"`
	RoomCode string       `json:"roomCode,omitempty"`
	Host     string       `json:"host,omitempty"`
	Players  []PlayerInfo `json:"players,omitempty"`
	Message  string       `json:"message,omitempty"`
}

type PlayerJoined struct {
	Player PlayerInfo `json:"player"`
}

type CharacterSelected struct {
	PlayerID    string `json:"playerId"`
	CharacterID string `json:"characterId"`
}

type PlayerReadyStatus struct {
	PlayerID string `json:"playerId"`
	IsReady  bool   `json:"isReady"`
}

type NewHost struct {
	NewHostID string `json:"newHostId"`
}

// RoomRecord is the session-history model written by the persistence layer
// when a room is created and when its all-ready signal fires.
type RoomRecord struct {
	RoomCode  string       `json:"room_code"`
	HostID    string       `json:"host_id"`
	Event     string       `json:"event"` // created / all_ready
	Players   []PlayerInfo `json:"players"`
	CreatedAt time.Time    `json:"created_at"`
}

// Room record event names.
const (
	RoomEventCreated  = "created"
	RoomEventAllReady = "all_ready"
)
