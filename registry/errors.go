package registry

import "errors"

// Request-rejection errors. These are returned to the requesting connection
// only and are never broadcast; none of them is fatal to a room.
var (
	ErrInvalidCode   = errors.New("invalid room code")
	ErrRoomExists    = errors.New("room already exists")
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyMember = errors.New("already in this room")
	ErrAlreadyInRoom = errors.New("already in another room")
	ErrRoomFull      = errors.New("room is full")
)
