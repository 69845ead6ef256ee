// registry/room.go
package registry

import (
	"sync"
	"time"

	"github.com/pixelden/lobbyserver/models"
	"github.com/pixelden/lobbyserver/state"
)

// Player 是房间内的一个成员，以连接ID为键
type Player struct {
	ID        string
	Character string // empty until the player picks one
	Ready     bool
}

func (p *Player) GetID() string {
	return p.ID
}

// Info returns the wire representation of the player.
func (p *Player) Info() models.PlayerInfo {
	return models.PlayerInfo{
		ID:        p.ID,
		Character: p.Character,
		Ready:     p.Ready,
	}
}

// Room 是大厅房间的核心结构
//
// The roster keeps join order: players[0] is always the earliest remaining
// joiner and therefore the host successor. mu serializes all operations on
// one room; operations on different rooms run in parallel. Every unexported
// method below, and the state.RoomContext methods, expect mu to be held —
// the Registry is the only caller and follows that discipline.
type Room struct {
	Code       string
	MaxPlayers int
	CreatedAt  time.Time

	mu       sync.Mutex
	host     string
	players  []*Player
	phase    state.StateMachine
	notifier Notifier
}

func newRoom(code string, maxPlayers int, notifier Notifier) *Room {
	r := &Room{
		Code:       code,
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Now(),
		notifier:   notifier,
	}

	// 初始化阶段状态机，将房间自身作为上下文传入
	waiting := state.NewWaitingPhase(r)
	machine := state.NewBaseStateMachine(waiting)
	machine.AddTransition(waiting, state.NewReadyPhase(r), r.AllReady)
	r.phase = machine

	return r
}

// --- 实现 state.RoomContext 接口 ---

// GetCode 返回房间代码
func (r *Room) GetCode() string {
	return r.Code
}

// AllReady reports the all-ready condition: more than one member present and
// every member ready.
func (r *Room) AllReady() bool {
	if len(r.players) <= 1 {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// Broadcast sends a message to every member of the room.
func (r *Room) Broadcast(msgID uint16, data []byte) error {
	r.broadcastExcept("", msgID, data)
	return nil
}

// --- 房间核心逻辑 ---

// find returns the member with the given connection id, or nil.
func (r *Room) find(sessionID string) *Player {
	for _, p := range r.players {
		if p.ID == sessionID {
			return p
		}
	}
	return nil
}

// add appends a new member to the end of the roster.
func (r *Room) add(sessionID string) *Player {
	player := &Player{ID: sessionID}
	r.players = append(r.players, player)
	return player
}

// remove deletes the member with the given id, preserving join order.
func (r *Room) remove(sessionID string) bool {
	for i, p := range r.players {
		if p.ID == sessionID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return true
		}
	}
	return false
}

// roster returns a wire-model copy of the member list in join order.
func (r *Room) roster() []models.PlayerInfo {
	players := make([]models.PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p.Info())
	}
	return players
}

// broadcastExcept sends to every member except the excluded connection.
// Send failures are skipped; a dead connection is cleaned up by its own
// disconnect path.
func (r *Room) broadcastExcept(excludeID string, msgID uint16, data []byte) {
	for _, p := range r.players {
		if p.ID == excludeID {
			continue
		}
		if err := r.notifier.Unicast(p.ID, msgID, data); err != nil {
			continue
		}
	}
}

// evaluateReady re-runs the all-ready check after a readiness change. It
// returns whether the signal fired. The check is not a one-shot trigger:
// entering the ready phase broadcasts every time, including re-entry, so
// clients may observe the signal more than once.
func (r *Room) evaluateReady() bool {
	if r.AllReady() {
		r.phase.ChangeState(state.NewReadyPhase(r))
		return true
	}
	if r.phase.GetCurrentState().GetID() == state.PhaseReady {
		r.phase.ChangeState(state.NewWaitingPhase(r))
	}
	return false
}
