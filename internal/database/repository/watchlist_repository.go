package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Nabhonil04/stockpredict/internal/database/models"
)

// WatchlistRepository defines the interface for watchlist data operations.
// Every call is scoped to a single owner.
type WatchlistRepository interface {
	WithTx(tx *gorm.DB) WatchlistRepository

	ListByUser(ctx context.Context, userID uint) ([]models.WatchlistItem, error)
	FindByUserAndTicker(ctx context.Context, userID uint, ticker string) (*models.WatchlistItem, error)
	Create(ctx context.Context, item *models.WatchlistItem) error
	Delete(ctx context.Context, userID uint, ticker string) error
}

type watchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a new watchlist repository instance
func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

func (r *watchlistRepository) WithTx(tx *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: tx}
}

// ListByUser returns the owner's items in insertion order.
func (r *watchlistRepository) ListByUser(ctx context.Context, userID uint) ([]models.WatchlistItem, error) {
	items := make([]models.WatchlistItem, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *watchlistRepository) FindByUserAndTicker(ctx context.Context, userID uint, ticker string) (*models.WatchlistItem, error) {
	var item models.WatchlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ticker = ?", userID, ticker).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWatchlistItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *watchlistRepository) Create(ctx context.Context, item *models.WatchlistItem) error {
	err := r.db.WithContext(ctx).Create(item).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrWatchlistItemExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrUserNotFound
	}
	return err
}

func (r *watchlistRepository) Delete(ctx context.Context, userID uint, ticker string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND ticker = ?", userID, ticker).
		Delete(&models.WatchlistItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWatchlistItemNotFound
	}
	return nil
}

// Repository errors
var (
	ErrWatchlistItemNotFound = errors.New("watchlist item not found")
	ErrWatchlistItemExists   = errors.New("watchlist item already exists")
)
