package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// Transactor opens units of work whose transaction travels inside the
// context, so repositories called with that context join it.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// Transaction runs fn inside a transaction. When ctx already carries one, a
// savepoint is opened instead and only that savepoint is rolled back on error.
func (t *Transactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return conn(ctx, t.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
