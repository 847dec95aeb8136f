package database

import (
	"context"

	"gorm.io/gorm"
)

// Transactor scopes a unit of work to one database transaction.
type Transactor interface {
	// WithinTransaction commits when fn returns nil and rolls back when fn
	// returns an error or panics.
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a transactor over db
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
