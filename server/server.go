package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pixelden/lobbyserver/broadcast"
	"github.com/pixelden/lobbyserver/config"
	"github.com/pixelden/lobbyserver/logger"
	"github.com/pixelden/lobbyserver/models"
	"github.com/pixelden/lobbyserver/monitor"
	"github.com/pixelden/lobbyserver/network"
	"github.com/pixelden/lobbyserver/persistence"
	"github.com/pixelden/lobbyserver/registry"
	lobbyrpc "github.com/pixelden/lobbyserver/rpc"
	"github.com/pixelden/lobbyserver/services"
	"github.com/pixelden/lobbyserver/session"
	"github.com/pixelden/lobbyserver/timer"
)

// LobbyServer is the message dispatcher: it owns the transport and routes
// inbound packets to registry operations. All room logic lives in registry.
type LobbyServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	registry       *registry.Registry
	sessionManager *session.Manager
	historyService *services.HistoryService
	monitor        *monitor.Monitor
	rpcServer      *lobbyrpc.Server
	timers         *timer.Manager
	shutdownChan   chan struct{}
}

func NewLobbyServer(cfg *config.Config, history persistence.History) *LobbyServer {
	s := &LobbyServer{
		cfg:            cfg,
		sessionManager: session.NewManager(),
		historyService: services.NewHistoryService(history),
		monitor:        monitor.NewMonitor("lobby"),
		timers:         timer.NewManager(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	notifier := broadcast.NewSessionNotifier(s.sessionManager)
	s.registry = registry.NewRegistry(cfg.Lobby.MaxPlayers, cfg.Lobby.RoomCodeLength, notifier)

	rpcServer, err := lobbyrpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	lobbyService := lobbyrpc.NewLobbyService(s.registry, s.sessionManager, s.historyService)
	rpc.Register(lobbyService)

	// Idle connections are reaped on a coarse sweep; closing the socket
	// feeds the regular disconnect path.
	if cfg.Lobby.IdleTimeout > 0 {
		s.timers.Schedule(cfg.Lobby.IdleTimeout, 30*time.Second, s.sweepIdleSessions)
	}

	return s
}

func (s *LobbyServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.cfg.Server.MetricsAddress)

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Lobby server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, nil)
}

func (s *LobbyServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

func (s *LobbyServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *LobbyServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	if s.cfg.Lobby.IdleTimeout > 0 {
		wsConn.SetHeartbeat(s.cfg.Lobby.IdleTimeout)
	}
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		if result := s.registry.Disconnect(sess.GetID()); result != nil {
			s.monitor.SetActiveRooms(s.registry.RoomCount())
		}
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			start := time.Now()
			s.monitor.IncMessagesReceived()
			s.handlePacket(sess, packet)
			s.monitor.ObserveMessageLatency(time.Since(start))
		}
	}
}

func (s *LobbyServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
		if s.cfg.Lobby.IdleTimeout > 0 {
			sess.Conn.SetHeartbeat(s.cfg.Lobby.IdleTimeout)
		}
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess)
	case network.MsgTypeSelectCharacter:
		s.handleSelectCharacter(sess, packet)
	case network.MsgTypePlayerReady:
		s.handlePlayerReady(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *LobbyServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req models.CreateRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.respond(sess, network.MsgTypeRoomCreateResponse, models.RoomCreateResponse{
			Success: false,
			Message: s.rejectionMessage(registry.ErrInvalidCode),
		})
		return
	}

	result, err := s.registry.CreateRoom(req.RoomCode, sess.GetID())
	if err != nil {
		s.respond(sess, network.MsgTypeRoomCreateResponse, models.RoomCreateResponse{
			Success: false,
			Message: s.rejectionMessage(err),
		})
		return
	}

	sess.RoomCode = result.Code
	s.monitor.IncRoomsCreated()
	s.monitor.SetActiveRooms(s.registry.RoomCount())
	go s.historyService.RecordRoomCreated(result.Code, result.Host)

	s.respond(sess, network.MsgTypeRoomCreateResponse, models.RoomCreateResponse{
		Success:  true,
		RoomCode: result.Code,
		Host:     result.Host,
	})
}

func (s *LobbyServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.respond(sess, network.MsgTypeRoomJoinResponse, models.RoomJoinResponse{
			Success: false,
			Message: s.rejectionMessage(registry.ErrInvalidCode),
		})
		return
	}

	result, err := s.registry.JoinRoom(req.RoomCode, sess.GetID())
	if err != nil {
		s.respond(sess, network.MsgTypeRoomJoinResponse, models.RoomJoinResponse{
			Success: false,
			Message: s.rejectionMessage(err),
		})
		return
	}

	sess.RoomCode = result.Code

	s.respond(sess, network.MsgTypeRoomJoinResponse, models.RoomJoinResponse{
		Success:  true,
		RoomCode: result.Code,
		Host:     result.Host,
		Players:  result.Players,
	})
}

func (s *LobbyServer) handleLeaveRoom(sess *session.Session) {
	if result := s.registry.Leave(sess.GetID()); result != nil {
		sess.RoomCode = ""
		s.monitor.SetActiveRooms(s.registry.RoomCount())
	}
}

func (s *LobbyServer) handleSelectCharacter(sess *session.Session, packet *network.Packet) {
	var req models.SelectCharacterRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	s.registry.SelectCharacter(req.RoomCode, sess.GetID(), req.CharacterID)
}

func (s *LobbyServer) handlePlayerReady(sess *session.Session, packet *network.Packet) {
	var req models.PlayerReadyRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	allReady := s.registry.SetReady(req.RoomCode, sess.GetID(), req.IsReady)
	if allReady {
		s.monitor.IncAllReadySignals()
		if snapshot, ok := s.registry.Snapshot(req.RoomCode); ok {
			go s.historyService.RecordAllReady(snapshot)
		}
	}
}

func (s *LobbyServer) respond(sess *session.Session, msgID uint16, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorf("Error marshalling response %d: %v", msgID, err)
		return
	}
	if err := sess.Send(msgID, data); err != nil {
		logger.Log.Warnf("Failed to send response %d to session %s: %v", msgID, sess.GetID(), err)
	}
}

// rejectionMessage maps registry errors to the human-readable messages the
// client shows verbatim.
func (s *LobbyServer) rejectionMessage(err error) string {
	switch err {
	case registry.ErrInvalidCode:
		return fmt.Sprintf("Invalid room code. Must be %d characters.", s.cfg.Lobby.RoomCodeLength)
	case registry.ErrRoomExists:
		return "Room already exists. Choose a different code."
	case registry.ErrRoomNotFound:
		return "Room does not exist."
	case registry.ErrAlreadyMember:
		return "You are already in this room."
	case registry.ErrAlreadyInRoom:
		return "You are already in another room."
	case registry.ErrRoomFull:
		return "Room is full."
	default:
		return err.Error()
	}
}

func (s *LobbyServer) sweepIdleSessions() {
	limit := s.cfg.Lobby.IdleTimeout
	for _, sess := range s.sessionManager.Idle(limit) {
		logger.Log.Infof("Closing idle session %s", sess.GetID())
		sess.Close()
	}
	s.monitor.SetActiveRooms(s.registry.RoomCount())
}
