// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/pixelden/lobbyserver/models"
)

// PostgreSQL 原生 database/sql 实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS room_records (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(64) NOT NULL,
            host_id VARCHAR(255) NOT NULL,
            event VARCHAR(32) NOT NULL,
            players JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_room_records_room_code
        ON room_records (room_code)
    `)
	return err
}

// SaveRoomRecord 保存房间历史记录
func (p *PostgreSQL) SaveRoomRecord(record *models.RoomRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(`
        INSERT INTO room_records (room_code, host_id, event, players)
        VALUES ($1, $2, $3, $4)
    `, record.RoomCode, record.HostID, record.Event, players)
	return err
}

// RoomHistory 按时间倒序加载一个房间的历史记录
func (p *PostgreSQL) RoomHistory(roomCode string, limit int) ([]models.RoomRecord, error) {
	rows, err := p.db.Query(`
        SELECT room_code, host_id, event, players, created_at
        FROM room_records
        WHERE room_code = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, roomCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.RoomRecord
	for rows.Next() {
		var record models.RoomRecord
		var players []byte
		if err := rows.Scan(&record.RoomCode, &record.HostID, &record.Event, &players, &record.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &record.Players); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrRecordNotFound
	}
	return records, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
