package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
	"github.com/zatekoja/mindcare/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

const holidaysTable = "holidays"

// HolidayAdapter implements the HolidayRepository interface
type HolidayAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.HolidayRepository = (*HolidayAdapter)(nil)

// NewHolidayAdapter creates a new holiday adapter
func NewHolidayAdapter(client *postgres.Client) *HolidayAdapter {
	return &HolidayAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListBetween returns calendar-wide holidays with dates in [from, to]
func (a *HolidayAdapter) ListBetween(ctx context.Context, from, to string) ([]entities.Holiday, error) {
	if _, err := time.Parse(closureDateLayout, from); err != nil {
		return nil, apperrors.NewValidationErrorf("invalid holiday range start %q", from)
	}
	if _, err := time.Parse(closureDateLayout, to); err != nil {
		return nil, apperrors.NewValidationErrorf("invalid holiday range end %q", to)
	}

	query, args, err := a.db.From(holidaysTable).
		Select("date", "type", "name").
		Where(goqu.C("date").Between(goqu.Range(from, to))).
		Order(goqu.C("date").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build holidays query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query holidays", err)
	}
	defer rows.Close()

	holidays := make([]entities.Holiday, 0)
	for rows.Next() {
		var (
			h    entities.Holiday
			date time.Time
			name sql.NullString
		)
		if err := rows.Scan(&date, &h.Type, &name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan holiday", err)
		}
		h.Date = date.Format(closureDateLayout)
		h.Name = name.String
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate holidays", err)
	}

	return holidays, nil
}
