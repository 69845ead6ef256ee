package state

import (
	"testing"

	"github.com/pixelden/lobbyserver/network"
)

// mockRoomContext is a test double for the RoomContext interface.
type mockRoomContext struct {
	code     string
	allReady bool
	sent     []uint16
}

func (m *mockRoomContext) GetCode() string {
	return m.code
}

func (m *mockRoomContext) AllReady() bool {
	return m.allReady
}

func (m *mockRoomContext) Broadcast(msgID uint16, data []byte) error {
	m.sent = append(m.sent, msgID)
	return nil
}

func TestReadyPhase_BroadcastsOnEnter(t *testing.T) {
	room := &mockRoomContext{code: "ABC123", allReady: true}

	waiting := NewWaitingPhase(room)
	sm := NewBaseStateMachine(waiting)
	sm.AddTransition(waiting, NewReadyPhase(room), room.AllReady)

	if len(room.sent) != 0 {
		t.Fatal("The waiting phase must not broadcast anything")
	}

	if err := sm.ChangeState(NewReadyPhase(room)); err != nil {
		t.Fatalf("Transition to ready should be allowed: %v", err)
	}
	if len(room.sent) != 1 || room.sent[0] != network.MsgTypeAllPlayersReady {
		t.Errorf("Expected one all-ready broadcast, got %v", room.sent)
	}

	// Re-entering the ready phase broadcasts again.
	if err := sm.ChangeState(NewReadyPhase(room)); err != nil {
		t.Fatalf("Re-entry should be allowed: %v", err)
	}
	if len(room.sent) != 2 {
		t.Errorf("Expected a second all-ready broadcast, got %v", room.sent)
	}
}

func TestReadyPhase_BlockedUntilAllReady(t *testing.T) {
	room := &mockRoomContext{code: "ABC123", allReady: false}

	waiting := NewWaitingPhase(room)
	sm := NewBaseStateMachine(waiting)
	sm.AddTransition(waiting, NewReadyPhase(room), room.AllReady)

	if err := sm.ChangeState(NewReadyPhase(room)); err != ErrTransitionNotAllowed {
		t.Fatalf("Expected ErrTransitionNotAllowed, got %v", err)
	}
	if len(room.sent) != 0 {
		t.Errorf("A blocked transition must not broadcast, got %v", room.sent)
	}
	if sm.GetCurrentState().GetID() != PhaseWaiting {
		t.Errorf("Expected phase to remain waiting, got %s", sm.GetCurrentState().GetID())
	}
}
