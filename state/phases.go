package state

import (
	"github.com/pixelden/lobbyserver/logger"
	"github.com/pixelden/lobbyserver/network"
)

// Phase IDs for the lobby room machine.
const (
	PhaseWaiting = "waiting"
	PhaseReady   = "ready"
)

// WaitingPhase 等待阶段：房间接受加入、选角和准备切换
type WaitingPhase struct {
	PhaseBase
}

// NewWaitingPhase creates the phase a room sits in while members are still
// joining or toggling readiness.
func NewWaitingPhase(room RoomContext) *WaitingPhase {
	return &WaitingPhase{
		PhaseBase: PhaseBase{
			ID:   PhaseWaiting,
			Room: room,
		},
	}
}

// ReadyPhase 全员准备阶段
// Entering it broadcasts the all-ready signal to every member of the room.
// The room stays in the registry and keeps accepting readiness toggles; a
// member going un-ready moves the room back to WaitingPhase, and a later
// toggle may enter this phase (and fire the signal) again. Clients must treat
// the signal as idempotent.
type ReadyPhase struct {
	PhaseBase
}

// NewReadyPhase creates the phase entered when every member is ready.
func NewReadyPhase(room RoomContext) *ReadyPhase {
	return &ReadyPhase{
		PhaseBase: PhaseBase{
			ID:   PhaseReady,
			Room: room,
		},
	}
}

// OnEnter 进入全员准备阶段
func (s *ReadyPhase) OnEnter() {
	logger.Log.Infof("房间 %s 全员准备完毕", s.Room.GetCode())
	s.Room.Broadcast(network.MsgTypeAllPlayersReady, nil)
}
