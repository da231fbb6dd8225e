package repository

import (
	"notehistory/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *DefaultConnectionRepository {
	return &DefaultConnectionRepository{db: db}
}

func (c *DefaultConnectionRepository) Save(conn *entity.Connection) error {
	return wrap(c.db.Save(conn).Error, "saving connection")
}

func (c *DefaultConnectionRepository) Delete(connID string) error {
	return wrap(c.db.Delete(&entity.Connection{}, "connection_id = ?", connID).Error, "deleting connection")
}

func (c *DefaultConnectionRepository) FindByUserID(userID int64) ([]string, error) {
	var ids []string
	result := c.db.Model(&entity.Connection{}).
		Where("user_id = ?", userID).
		Pluck("connection_id", &ids)

	if result.Error != nil {
		return nil, wrap(result.Error, "listing user connections")
	}
	return ids, nil
}

// FindExpired returns connections past their TTL or silent for longer than
// a heartbeat period plus tolerance.
func (c *DefaultConnectionRepository) FindExpired(now int64) ([]*entity.Connection, error) {
	staleBefore := now - (entity.HeartbeatPeriod + entity.HeartbeatTolerance).Milliseconds()

	var conns []*entity.Connection
	err := c.db.
		Where("expires_at < ? OR last_heartbeat_at < ?", now, staleBefore).
		Find(&conns).Error
	if err != nil {
		return nil, wrap(err, "finding expired connections")
	}
	return conns, nil
}

func (c *DefaultConnectionRepository) UpdateHeartbeat(connID string, now int64) error {
	err := c.db.Model(&entity.Connection{}).
		Where("connection_id = ?", connID).
		Update("last_heartbeat_at", now).Error
	return wrap(err, "updating heartbeat")
}
