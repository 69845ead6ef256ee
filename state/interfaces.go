// state/interfaces.go
package state

// RoomContext defines the interface a room must implement to be driven by the
// phase machine. This breaks the import cycle between registry and state.
type RoomContext interface {
	GetCode() string
	// AllReady reports whether every member is ready and more than one
	// member is present. Only called while the room is locked.
	AllReady() bool
	Broadcast(msgID uint16, data []byte) error
}
