// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/pixelden/lobbyserver/models"
)

// History 会话历史存储接口
//
// The lobby itself is purely in-memory; this store is write-mostly audit
// history (room created, all-ready fired) and is never read back into room
// state.
type History interface {
	SaveRoomRecord(record *models.RoomRecord) error
	RoomHistory(roomCode string, limit int) ([]models.RoomRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
