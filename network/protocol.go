package network

const (
	MsgTypeHeartbeat = 1

	// Client -> server lobby requests
	MsgTypeCreateRoom      = 101
	MsgTypeJoinRoom        = 102
	MsgTypeLeaveRoom       = 103
	MsgTypeSelectCharacter = 104
	MsgTypePlayerReady     = 105

	// Server -> requester responses
	MsgTypeRoomCreateResponse = 201
	MsgTypeRoomJoinResponse   = 202

	// Server -> room broadcasts
	MsgTypePlayerJoined      = 301
	MsgTypeCharacterSelected = 302
	MsgTypePlayerReadyStatus = 303
	MsgTypeAllPlayersReady   = 304
	MsgTypeNewHost           = 305
)
