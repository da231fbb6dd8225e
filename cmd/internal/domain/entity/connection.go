package entity

import "time"

const (
	HeartbeatPeriod    = 60 * time.Second
	HeartbeatTolerance = 10 * time.Second

	// ConnectionTTLMillis bounds how long a gateway connection may stay registered.
	ConnectionTTLMillis = int64(2 * 60 * 60 * 1000)
)

// Connection is a websocket connection registered through the API gateway,
// used to push note events to the owning user.
type Connection struct {
	ConnectionID    string `gorm:"primaryKey;autoIncrement:false"`
	UserID          int64  `gorm:"not null;index"`
	ExpiresAt       int64  `gorm:"not null"`
	LastHeartbeatAt int64  `gorm:"not null;index"`
	CreatedAt       int64  `gorm:"not null;autoCreateTime:false"`
}
