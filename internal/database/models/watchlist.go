package models

import (
	"regexp"
	"strings"
	"time"
)

// WatchlistItem is a user's subscription to a ticker symbol.
// (user_id, ticker) is unique; ticker is stored upper-case.
type WatchlistItem struct {
	ID      uint      `gorm:"primarykey" json:"id"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_watchlist_user_ticker" json:"user_id"`
	Ticker  string    `gorm:"not null;uniqueIndex:idx_watchlist_user_ticker" json:"ticker"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`
}

// TableName overrides the table name
func (WatchlistItem) TableName() string {
	return "watchlist_items"
}

// NormalizeTicker returns the canonical stored form of a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,15}$`)

// ValidTicker reports whether a normalized ticker is acceptable for storage.
func ValidTicker(ticker string) bool {
	return tickerPattern.MatchString(ticker)
}
