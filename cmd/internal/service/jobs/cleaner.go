package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

const cleanupInterval = 5 * time.Minute

type ConnectionExpirer interface {
	ExpireConnections(ctx context.Context) (int, error)
}

type ConnectionCleaner struct {
	expirer  ConnectionExpirer
	interval time.Duration
}

func NewConnectionCleaner(expirer ConnectionExpirer) *ConnectionCleaner {
	return &ConnectionCleaner{expirer: expirer, interval: cleanupInterval}
}

func (c *ConnectionCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Info("Connection cleaner started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping connection cleaner...")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *ConnectionCleaner) cleanup(ctx context.Context) {
	dropped, err := c.expirer.ExpireConnections(ctx)
	if err != nil {
		log.Errorf("Cleaner: failed to expire connections: %v", err)
		return
	}

	if dropped > 0 {
		log.Infof("Cleaner: terminated %d expired connections", dropped)
	}
}
