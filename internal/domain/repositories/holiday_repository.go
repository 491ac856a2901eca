package repositories

import (
	"context"

	"github.com/zatekoja/mindcare/internal/domain/entities"
)

// HolidayRepository provides the holiday calendar
type HolidayRepository interface {
	// ListBetween returns calendar-wide holidays with dates in [from, to] ("YYYY-MM-DD")
	ListBetween(ctx context.Context, from, to string) ([]entities.Holiday, error)
}
