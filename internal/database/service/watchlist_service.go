package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Nabhonil04/stockpredict/internal/database"
	"github.com/Nabhonil04/stockpredict/internal/database/models"
	"github.com/Nabhonil04/stockpredict/internal/database/repository"
	"github.com/Nabhonil04/stockpredict/internal/metrics"
)

// WatchlistService defines the interface for watchlist business logic.
// Every operation acts on the watchlist of userID only.
type WatchlistService interface {
	List(ctx context.Context, userID uint) ([]models.WatchlistItem, error)
	Add(ctx context.Context, userID uint, ticker string) (*models.WatchlistItem, error)
	Remove(ctx context.Context, userID uint, ticker string) error
}

type watchlistService struct {
	watchlistRepo repository.WatchlistRepository
	tx            database.Transactor
	logger        *slog.Logger
}

// NewWatchlistService creates a new watchlist service instance
func NewWatchlistService(
	watchlistRepo repository.WatchlistRepository,
	tx database.Transactor,
	logger *slog.Logger,
) WatchlistService {
	return &watchlistService{
		watchlistRepo: watchlistRepo,
		tx:            tx,
		logger:        logger,
	}
}

func (s *watchlistService) List(ctx context.Context, userID uint) ([]models.WatchlistItem, error) {
	return s.watchlistRepo.ListByUser(ctx, userID)
}

func (s *watchlistService) Add(ctx context.Context, userID uint, ticker string) (*models.WatchlistItem, error) {
	ticker, err := normalizeTicker(ticker)
	if err != nil {
		recordWatchlist("add", err)
		return nil, err
	}

	item := &models.WatchlistItem{
		UserID: userID,
		Ticker: ticker,
	}

	err = s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		items := s.watchlistRepo.WithTx(tx)

		_, err := items.FindByUserAndTicker(ctx, userID, ticker)
		switch {
		case err == nil:
			return ErrTickerAlreadyWatched
		case !errors.Is(err, repository.ErrWatchlistItemNotFound):
			return err
		}

		if err := items.Create(ctx, item); err != nil {
			switch {
			case errors.Is(err, repository.ErrWatchlistItemExists):
				return ErrTickerAlreadyWatched
			case errors.Is(err, repository.ErrUserNotFound):
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
	recordWatchlist("add", err)
	if err != nil {
		s.logger.Warn("⚠️ [WatchlistService] Add rejected", "user_id", userID, "ticker", ticker, "error", err)
		return nil, err
	}

	s.logger.Info("➕ [WatchlistService] Ticker added", "user_id", userID, "ticker", ticker)
	return item, nil
}

func (s *watchlistService) Remove(ctx context.Context, userID uint, ticker string) error {
	ticker, err := normalizeTicker(ticker)
	if err != nil {
		// A ticker that could never have been stored is simply absent.
		recordWatchlist("remove", ErrTickerNotWatched)
		return ErrTickerNotWatched
	}

	err = s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.watchlistRepo.WithTx(tx).Delete(ctx, userID, ticker); err != nil {
			if errors.Is(err, repository.ErrWatchlistItemNotFound) {
				return ErrTickerNotWatched
			}
			return err
		}
		return nil
	})
	recordWatchlist("remove", err)
	if err != nil {
		s.logger.Warn("⚠️ [WatchlistService] Remove rejected", "user_id", userID, "ticker", ticker, "error", err)
		return err
	}

	s.logger.Info("🗑️ [WatchlistService] Ticker removed", "user_id", userID, "ticker", ticker)
	return nil
}

func normalizeTicker(ticker string) (string, error) {
	normalized := models.NormalizeTicker(ticker)
	if !models.ValidTicker(normalized) {
		return "", fmt.Errorf("%w: ticker %q is not a valid symbol", ErrValidation, ticker)
	}
	return normalized, nil
}

func recordWatchlist(op string, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrTickerAlreadyWatched),
		errors.Is(err, ErrTickerNotWatched):
		result = metrics.ResultFailure
	default:
		result = metrics.ResultError
	}
	metrics.WatchlistMutationsTotal.WithLabelValues(op, result).Inc()
}
