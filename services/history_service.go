package services

import (
	"time"

	"github.com/pixelden/lobbyserver/logger"
	"github.com/pixelden/lobbyserver/models"
	"github.com/pixelden/lobbyserver/persistence"
	"github.com/pixelden/lobbyserver/registry"
)

// HistoryService writes lobby milestones to the history store. A nil service
// (history disabled) swallows every write, so callers never branch on it.
type HistoryService struct {
	db persistence.History
}

func NewHistoryService(db persistence.History) *HistoryService {
	if db == nil {
		return nil
	}
	return &HistoryService{db: db}
}

// RecordRoomCreated 记录房间创建
func (s *HistoryService) RecordRoomCreated(roomCode, hostID string) {
	if s == nil {
		return
	}
	s.save(&models.RoomRecord{
		RoomCode:  roomCode,
		HostID:    hostID,
		Event:     models.RoomEventCreated,
		Players:   []models.PlayerInfo{{ID: hostID}},
		CreatedAt: time.Now(),
	})
}

// RecordAllReady 记录全员准备事件
func (s *HistoryService) RecordAllReady(snapshot *registry.RoomSnapshot) {
	if s == nil || snapshot == nil {
		return
	}
	s.save(&models.RoomRecord{
		RoomCode:  snapshot.Code,
		HostID:    snapshot.Host,
		Event:     models.RoomEventAllReady,
		Players:   snapshot.Players,
		CreatedAt: time.Now(),
	})
}

// RoomHistory 查询房间历史记录
func (s *HistoryService) RoomHistory(roomCode string, limit int) ([]models.RoomRecord, error) {
	if s == nil {
		return nil, persistence.ErrRecordNotFound
	}
	if limit <= 0 {
		limit = 20
	}
	return s.db.RoomHistory(roomCode, limit)
}

func (s *HistoryService) save(record *models.RoomRecord) {
	if err := s.db.SaveRoomRecord(record); err != nil {
		logger.Log.Errorf("failed to save room record for %s: %v", record.RoomCode, err)
	}
}
