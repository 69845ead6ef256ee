// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pixelden/lobbyserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&RoomRecordModel{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// RoomRecordModel 房间历史记录模型
type RoomRecordModel struct {
	ID        uint                `gorm:"primaryKey"`
	RoomCode  string              `gorm:"index;not null"`
	HostID    string              `gorm:"not null"`
	Event     string              `gorm:"not null"`
	Players   []models.PlayerInfo `gorm:"serializer:json;type:jsonb"`
	CreatedAt time.Time
}

func (RoomRecordModel) TableName() string {
	return "room_records"
}

// SaveRoomRecord 保存房间历史记录
func (p *GormPostgreSQL) SaveRoomRecord(record *models.RoomRecord) error {
	row := RoomRecordModel{
		RoomCode: record.RoomCode,
		HostID:   record.HostID,
		Event:    record.Event,
		Players:  record.Players,
	}
	return p.db.Create(&row).Error
}

// RoomHistory 按时间倒序加载一个房间的历史记录
func (p *GormPostgreSQL) RoomHistory(roomCode string, limit int) ([]models.RoomRecord, error) {
	var rows []RoomRecordModel
	err := p.db.
		Where("room_code = ?", roomCode).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrRecordNotFound
	}

	records := make([]models.RoomRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.RoomRecord{
			RoomCode:  row.RoomCode,
			HostID:    row.HostID,
			Event:     row.Event,
			Players:   row.Players,
			CreatedAt: row.CreatedAt,
		})
	}
	return records, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
