package rpc

import (
	"net"
	"net/rpc"

	"github.com/pixelden/lobbyserver/logger"
	"github.com/pixelden/lobbyserver/models"
	"github.com/pixelden/lobbyserver/registry"
	"github.com/pixelden/lobbyserver/services"
	"github.com/pixelden/lobbyserver/session"
)

// Server manages the RPC listener for the admin/introspection service.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// LobbyService exposes read-only lobby introspection over net/rpc.
type LobbyService struct {
	registry       *registry.Registry
	sessionManager *session.Manager
	history        *services.HistoryService
}

// NewLobbyService creates a new LobbyService.
func NewLobbyService(reg *registry.Registry, sessions *session.Manager, history *services.HistoryService) *LobbyService {
	return &LobbyService{
		registry:       reg,
		sessionManager: sessions,
		history:        history,
	}
}

type StatusArgs struct{}

type StatusReply struct {
	ActiveRooms int
	Sessions    int
}

// Status reports room and connection counts.
func (ls *LobbyService) Status(args *StatusArgs, reply *StatusReply) error {
	reply.ActiveRooms = ls.registry.RoomCount()
	reply.Sessions = ls.sessionManager.Count()
	return nil
}

type RoomInfoArgs struct {
	RoomCode string
}

type RoomInfoReply struct {
	Snapshot registry.RoomSnapshot
}

// RoomInfo returns a snapshot of one room.
func (ls *LobbyService) RoomInfo(args *RoomInfoArgs, reply *RoomInfoReply) error {
	snapshot, ok := ls.registry.Snapshot(args.RoomCode)
	if !ok {
		return registry.ErrRoomNotFound
	}
	reply.Snapshot = *snapshot
	return nil
}

type RoomHistoryArgs struct {
	RoomCode string
	Limit    int
}

type RoomHistoryReply struct {
	Records []models.RoomRecord
}

// RoomHistory returns stored history records for a room code. Fails with
// ErrRecordNotFound when history is disabled or the code has no records.
func (ls *LobbyService) RoomHistory(args *RoomHistoryArgs, reply *RoomHistoryReply) error {
	records, err := ls.history.RoomHistory(args.RoomCode, args.Limit)
	if err != nil {
		return err
	}
	reply.Records = records
	return nil
}
