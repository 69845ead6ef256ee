// registry/registry.go
package registry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/pixelden/lobbyserver/logger"
	"github.com/pixelden/lobbyserver/models"
	"github.com/pixelden/lobbyserver/network"
)

// Registry is the authoritative owner of all room and membership state.
//
// Locking discipline: mu guards the room map and the connection->room member
// index; each Room has its own mutex guarding roster, host, ready flags and
// phase. Membership mutations (create/join/leave/disconnect) lock mu first
// and then the room, always in that order. Per-room operations
// (select-character, set-ready) take only the room lock, so traffic in one
// room never contends with traffic in another. The member index also
// enforces the one-room-per-connection invariant: joining or creating while
// already in a room is rejected instead of silently allowed.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	members map[string]string // session ID -> room code

	maxPlayers int
	codeLength int
	notifier   Notifier
}

// NewRegistry creates an empty registry. maxPlayers bounds every room's
// roster and codeLength fixes the accepted room-code length.
func NewRegistry(maxPlayers, codeLength int, notifier Notifier) *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		members:    make(map[string]string),
		maxPlayers: maxPlayers,
		codeLength: codeLength,
		notifier:   notifier,
	}
}

// CreateResult is returned to the dispatcher on a successful CreateRoom.
type CreateResult struct {
	Code string
	Host string
}

// JoinResult is returned to the dispatcher on a successful JoinRoom. Players
// holds the full roster, joiner included, for the joining connection's
// initial view.
type JoinResult struct {
	Code    string
	Host    string
	Players []models.PlayerInfo
}

// DepartResult describes what a removal (leave or disconnect) changed.
type DepartResult struct {
	Code       string
	NewHost    string // set when host migration happened
	RoomClosed bool   // set when the departing member was the last one
}

// RoomSnapshot is a read-only copy of one room's state.
type RoomSnapshot struct {
	Code       string
	Host       string
	MaxPlayers int
	Players    []models.PlayerInfo
	AllReady   bool
	CreatedAt  time.Time
}

// CreateRoom registers a new room with the requester as sole member and host.
func (reg *Registry) CreateRoom(code, requesterID string) (*CreateResult, error) {
	if !reg.validCode(code) {
		return nil, ErrInvalidCode
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.rooms[code]; exists {
		return nil, ErrRoomExists
	}
	if _, taken := reg.members[requesterID]; taken {
		return nil, ErrAlreadyInRoom
	}

	room := newRoom(code, reg.maxPlayers, reg.notifier)
	room.add(requesterID)
	room.host = requesterID

	reg.rooms[code] = room
	reg.members[requesterID] = code

	logger.Log.Infof("room %s created by %s", code, requesterID)
	return &CreateResult{Code: code, Host: requesterID}, nil
}

// JoinRoom appends the requester to an existing room and notifies the other
// members. The returned roster is for the joining connection's initial view.
func (reg *Registry) JoinRoom(code, requesterID string) (*JoinResult, error) {
	if !reg.validCode(code) {
		return nil, ErrInvalidCode
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, exists := reg.rooms[code]
	if !exists {
		return nil, ErrRoomNotFound
	}
	if memberCode, taken := reg.members[requesterID]; taken {
		if memberCode == code {
			return nil, ErrAlreadyMember
		}
		return nil, ErrAlreadyInRoom
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if len(room.players) >= room.MaxPlayers {
		return nil, ErrRoomFull
	}

	player := room.add(requesterID)
	reg.members[requesterID] = code

	payload, _ := json.Marshal(models.PlayerJoined{Player: player.Info()})
	room.broadcastExcept(requesterID, network.MsgTypePlayerJoined, payload)

	logger.Log.Infof("player %s joined room %s", requesterID, code)
	return &JoinResult{
		Code:    code,
		Host:    room.host,
		Players: room.roster(),
	}, nil
}

// SelectCharacter records the requester's character pick and tells the other
// members. An unknown room or a requester who already left is a silent no-op:
// these events can legitimately race a disconnect.
func (reg *Registry) SelectCharacter(code, requesterID, characterID string) {
	room := reg.room(code)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player := room.find(requesterID)
	if player == nil {
		return
	}

	player.Character = characterID

	payload, _ := json.Marshal(models.CharacterSelected{
		PlayerID:    requesterID,
		CharacterID: characterID,
	})
	room.broadcastExcept(requesterID, network.MsgTypeCharacterSelected, payload)
}

// SetReady records the requester's readiness, tells the other members, then
// re-runs the all-ready check. It returns whether the all-ready signal fired.
// Unknown room or player is a silent no-op, same as SelectCharacter.
func (reg *Registry) SetReady(code, requesterID string, isReady bool) bool {
	room := reg.room(code)
	if room == nil {
		return false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player := room.find(requesterID)
	if player == nil {
		return false
	}

	player.Ready = isReady

	payload, _ := json.Marshal(models.PlayerReadyStatus{
		PlayerID: requesterID,
		IsReady:  isReady,
	})
	room.broadcastExcept(requesterID, network.MsgTypePlayerReadyStatus, payload)

	return room.evaluateReady()
}

// Disconnect removes the connection from its room, migrating the host to the
// earliest remaining joiner and deleting the room when it empties. It is
// idempotent: a connection in no room is a no-op and returns nil.
func (reg *Registry) Disconnect(sessionID string) *DepartResult {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, ok := reg.members[sessionID]
	if !ok {
		return nil
	}
	delete(reg.members, sessionID)

	room := reg.rooms[code]
	if room == nil {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.remove(sessionID) {
		return nil
	}

	if len(room.players) == 0 {
		// No grace period: an empty room is deleted on the spot, and its
		// code becomes immediately reusable.
		delete(reg.rooms, code)
		logger.Log.Infof("room %s closed", code)
		return &DepartResult{Code: code, RoomClosed: true}
	}

	result := &DepartResult{Code: code}
	if room.host == sessionID {
		room.host = room.players[0].ID
		result.NewHost = room.host

		payload, _ := json.Marshal(models.NewHost{NewHostID: room.host})
		room.Broadcast(network.MsgTypeNewHost, payload)
		logger.Log.Infof("room %s host migrated to %s", code, room.host)
	}
	return result
}

// Leave is an explicit departure over a still-live connection. Removal
// semantics are identical to Disconnect.
func (reg *Registry) Leave(sessionID string) *DepartResult {
	return reg.Disconnect(sessionID)
}

// RoomCount returns the number of active rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Snapshot returns a copy of one room's state, or false if the code is not
// registered.
func (reg *Registry) Snapshot(code string) (*RoomSnapshot, bool) {
	room := reg.room(code)
	if room == nil {
		return nil, false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	return &RoomSnapshot{
		Code:       room.Code,
		Host:       room.host,
		MaxPlayers: room.MaxPlayers,
		Players:    room.roster(),
		AllReady:   room.AllReady(),
		CreatedAt:  room.CreatedAt,
	}, true
}

// room fetches a room by code under the read lock.
func (reg *Registry) room(code string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[code]
}

func (reg *Registry) validCode(code string) bool {
	return len(code) == reg.codeLength
}
