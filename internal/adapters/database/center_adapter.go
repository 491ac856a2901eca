package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
	"github.com/zatekoja/mindcare/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/mindcare/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
	"github.com/zatekoja/mindcare/pkg/utils"
)

const (
	centersTable        = "centers"
	operatingHoursTable = "center_operating_hours"
	programsTable       = "center_programs"
	staffTable          = "center_staff"
	closuresTable       = "center_closures"

	closureDateLayout = "2006-01-02"
)

var centerColumns = []interface{}{
	"id", "name", "address", "phone_number", "website",
	"latitude", "longitude", "is_active", "created_at", "updated_at",
}

// CenterAdapter implements the CenterRepository interface
type CenterAdapter struct {
	client     *postgres.Client
	db         *goqu.Database
	normalizer *utils.CategoryNormalizer
	now        func() time.Time
}

var (
	_ repositories.CenterRepository = (*CenterAdapter)(nil)
	_ repositories.CenterHydrator   = (*CenterAdapter)(nil)
)

// NewCenterAdapter creates a new center adapter. A nil normalizer falls back to the built-in aliases.
func NewCenterAdapter(client *postgres.Client, normalizer *utils.CategoryNormalizer) *CenterAdapter {
	if normalizer == nil {
		normalizer = utils.DefaultCategoryNormalizer()
	}
	return &CenterAdapter{
		client:     client,
		db:         goqu.New("postgres", client.DB()),
		normalizer: normalizer,
		now:        time.Now,
	}
}

// FindCandidates returns active centers inside the bounding box
func (a *CenterAdapter) FindCandidates(ctx context.Context, bounds repositories.Bounds) ([]*entities.Center, error) {
	query, args, err := a.db.From(centersTable).
		Select(centerColumns...).
		Where(
			goqu.Ex{"is_active": true},
			goqu.C("latitude").Between(goqu.Range(bounds.MinLatitude, bounds.MaxLatitude)),
			goqu.C("longitude").Between(goqu.Range(bounds.MinLongitude, bounds.MaxLongitude)),
		).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build candidate query", err)
	}

	centers, err := a.queryCenters(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := a.hydrate(ctx, centers); err != nil {
		return nil, err
	}
	return centers, nil
}

// GetByID retrieves a single hydrated center
func (a *CenterAdapter) GetByID(ctx context.Context, id string) (*entities.Center, error) {
	query, args, err := a.db.From(centersTable).
		Select(centerColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	center, err := scanCenter(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("center with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get center", err)
	}

	if err := a.hydrate(ctx, []*entities.Center{center}); err != nil {
		return nil, err
	}
	return center, nil
}

// GetByIDs retrieves hydrated centers in the order of ids. Unknown ids are dropped.
func (a *CenterAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Center, error) {
	if len(ids) == 0 {
		return []*entities.Center{}, nil
	}

	query, args, err := a.db.From(centersTable).
		Select(centerColumns...).
		Where(goqu.Ex{"id": ids, "is_active": true}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	found, err := a.queryCenters(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := a.hydrate(ctx, found); err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.Center, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	centers := make([]*entities.Center, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			centers = append(centers, c)
		}
	}
	return centers, nil
}

// List retrieves centers page by page
func (a *CenterAdapter) List(ctx context.Context, filter repositories.CenterFilter) ([]*entities.Center, error) {
	ds := a.db.From(centersTable).Select(centerColumns...)

	if filter.IsActive != nil {
		ds = ds.Where(goqu.Ex{"is_active": *filter.IsActive})
	}

	ds = ds.Order(goqu.C("id").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	centers, err := a.queryCenters(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := a.hydrate(ctx, centers); err != nil {
		return nil, err
	}
	return centers, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCenter(row rowScanner) (*entities.Center, error) {
	center := &entities.Center{Location: &entities.Location{}}
	var phone, website sql.NullString

	err := row.Scan(
		&center.ID,
		&center.Name,
		&center.Address,
		&phone,
		&website,
		&center.Location.Latitude,
		&center.Location.Longitude,
		&center.IsActive,
		&center.CreatedAt,
		&center.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	center.PhoneNumber = phone.String
	center.Website = website.String
	return center, nil
}

func (a *CenterAdapter) queryCenters(ctx context.Context, query string, args ...interface{}) ([]*entities.Center, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query centers", err)
	}
	defer rows.Close()

	centers := make([]*entities.Center, 0)
	for rows.Next() {
		center, err := scanCenter(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan center", err)
		}
		centers = append(centers, center)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate centers", err)
	}

	return centers, nil
}

// hydrate fills hours, programs, staff and closures for every center with one batched query per relation
func (a *CenterAdapter) hydrate(ctx context.Context, centers []*entities.Center) error {
	if len(centers) == 0 {
		return nil
	}

	ids := make([]string, len(centers))
	for i, c := range centers {
		ids[i] = c.ID
	}

	loaders := newCenterLoaders(a, len(ids))
	hoursThunk := loaders.hours.LoadMany(ctx, ids)
	programsThunk := loaders.programs.LoadMany(ctx, ids)
	staffThunk := loaders.staff.LoadMany(ctx, ids)
	closuresThunk := loaders.closures.LoadMany(ctx, ids)

	hours, hoursErrs := hoursThunk()
	programs, programErrs := programsThunk()
	staff, staffErrs := staffThunk()
	closures, closureErrs := closuresThunk()

	for _, errs := range [][]error{hoursErrs, programErrs, staffErrs, closureErrs} {
		if err := firstError(errs); err != nil {
			return err
		}
	}

	for i, c := range centers {
		c.OperatingHours = hours[i]
		c.Programs = programs[i]
		c.StaffTypes = staff[i]
		c.Holidays = closures[i]
	}
	return nil
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *CenterAdapter) loadOperatingHours(ctx context.Context, ids []string) (map[string][]entities.OperatingHours, error) {
	query, args, err := a.db.From(operatingHoursTable).
		Select("center_id", "day_of_week", "open_time", "close_time").
		Where(goqu.Ex{"center_id": ids}).
		Order(goqu.C("day_of_week").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build operating hours query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query operating hours", err)
	}
	defer rows.Close()

	result := make(map[string][]entities.OperatingHours)
	for rows.Next() {
		var centerID string
		var h entities.OperatingHours
		if err := rows.Scan(&centerID, &h.DayOfWeek, &h.OpenTime, &h.CloseTime); err != nil {
			return nil, apperrors.NewInternalError("failed to scan operating hours", err)
		}
		result[centerID] = append(result[centerID], h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate operating hours", err)
	}
	return result, nil
}

func (a *CenterAdapter) loadPrograms(ctx context.Context, ids []string) (map[string][]entities.Program, error) {
	query, args, err := a.db.From(programsTable).
		Select("center_id", "id", "name", "category", "target_severity", "target_age_min", "target_age_max").
		Where(goqu.Ex{"center_id": ids}).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build programs query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query programs", err)
	}
	defer rows.Close()

	result := make(map[string][]entities.Program)
	for rows.Next() {
		var (
			centerID       string
			p              entities.Program
			severities     pq.StringArray
			ageMin, ageMax sql.NullInt32
		)
		if err := rows.Scan(&centerID, &p.ID, &p.Name, &p.Category, &severities, &ageMin, &ageMax); err != nil {
			return nil, apperrors.NewInternalError("failed to scan program", err)
		}

		p.Category = a.normalizer.Category(p.Category)
		if severities != nil {
			p.TargetSeverity = make([]entities.Severity, 0, len(severities))
			for _, raw := range severities {
				severity, err := entities.ParseSeverity(raw)
				if err != nil {
					// kept as stored; ranking skips only the owning center
					observability.LoggerFromContext(ctx).Warn().
						Err(err).
						Str("center_id", centerID).
						Str("program_id", p.ID).
						Msg("Program has an unknown target severity")
					severity = entities.Severity(raw)
				}
				p.TargetSeverity = append(p.TargetSeverity, severity)
			}
		}
		if ageMin.Valid && ageMax.Valid {
			p.TargetAge = &entities.AgeRange{Min: int(ageMin.Int32), Max: int(ageMax.Int32)}
		}

		result[centerID] = append(result[centerID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate programs", err)
	}
	return result, nil
}

func (a *CenterAdapter) loadStaff(ctx context.Context, ids []string) (map[string][]string, error) {
	query, args, err := a.db.From(staffTable).
		Select("center_id", "staff_type").
		Where(goqu.Ex{"center_id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build staff query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query staff", err)
	}
	defer rows.Close()

	raw := make(map[string][]string)
	for rows.Next() {
		var centerID, staffType string
		if err := rows.Scan(&centerID, &staffType); err != nil {
			return nil, apperrors.NewInternalError("failed to scan staff", err)
		}
		raw[centerID] = append(raw[centerID], staffType)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate staff", err)
	}

	result := make(map[string][]string, len(raw))
	for centerID, types := range raw {
		result[centerID] = a.normalizer.StaffTypes(types)
	}
	return result, nil
}

// loadClosures reads center-specific closures from yesterday onwards, so a
// request in any time zone still sees the closure for its local date
func (a *CenterAdapter) loadClosures(ctx context.Context, ids []string) (map[string][]entities.Holiday, error) {
	cutoff := a.now().UTC().AddDate(0, 0, -1).Format(closureDateLayout)

	query, args, err := a.db.From(closuresTable).
		Select("center_id", "date", "type", "name").
		Where(
			goqu.Ex{"center_id": ids},
			goqu.C("date").Gte(cutoff),
		).
		Order(goqu.C("date").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build closures query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query closures", err)
	}
	defer rows.Close()

	result := make(map[string][]entities.Holiday)
	for rows.Next() {
		var (
			h    entities.Holiday
			date time.Time
			name sql.NullString
		)
		if err := rows.Scan(&h.CenterID, &date, &h.Type, &name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan closure", err)
		}
		h.Date = date.Format(closureDateLayout)
		h.Name = name.String
		result[h.CenterID] = append(result[h.CenterID], h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate closures", err)
	}
	return result, nil
}
