package scoring

import (
	"time"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

// DefaultMaxDaysAhead is how far GetNextOpenTime looks for an opening
const DefaultMaxDaysAhead = 14

const (
	dateLayout    = "2006-01-02"
	minutesPerDay = 24 * 60
)

// window is an opening interval [open, close) in minutes since midnight
type window struct {
	open  int
	close int
}

// weeklySchedule is validated operating data for one center
type weeklySchedule struct {
	days     map[time.Weekday]window
	holidays map[string]struct{}
}

func newWeeklySchedule(hours []entities.OperatingHours, holidays []entities.Holiday) (*weeklySchedule, error) {
	s := &weeklySchedule{
		days:     make(map[time.Weekday]window, len(hours)),
		holidays: make(map[string]struct{}, len(holidays)),
	}

	seen := make(map[int]struct{}, len(hours))
	for _, h := range hours {
		if h.DayOfWeek < 0 || h.DayOfWeek > 6 {
			return nil, apperrors.NewValidationErrorf("dayOfWeek must be between 0 and 6, got %d", h.DayOfWeek)
		}
		if _, dup := seen[h.DayOfWeek]; dup {
			return nil, apperrors.NewValidationErrorf("duplicate operating hours for dayOfWeek %d", h.DayOfWeek)
		}
		seen[h.DayOfWeek] = struct{}{}

		// Missing times mean the day is closed.
		if h.OpenTime == "" || h.CloseTime == "" {
			continue
		}

		open, err := parseClock(h.OpenTime, false)
		if err != nil {
			return nil, err
		}
		closeAt, err := parseClock(h.CloseTime, true)
		if err != nil {
			return nil, err
		}
		if closeAt <= open {
			return nil, apperrors.NewValidationErrorf("closeTime %s must be after openTime %s for dayOfWeek %d", h.CloseTime, h.OpenTime, h.DayOfWeek)
		}

		s.days[time.Weekday(h.DayOfWeek)] = window{open: open, close: closeAt}
	}

	for _, hol := range holidays {
		d, err := time.Parse(dateLayout, hol.Date)
		if err != nil {
			return nil, apperrors.NewValidationErrorf("holiday date %q must be YYYY-MM-DD", hol.Date)
		}
		s.holidays[d.Format(dateLayout)] = struct{}{}
	}

	return s, nil
}

// parseClock parses a strict "HH:mm". "24:00" is accepted as an end-of-day close time.
func parseClock(value string, isClose bool) (int, error) {
	minutes, ok := clockMinutes(value, isClose)
	if !ok {
		return 0, apperrors.NewValidationErrorf("time %q must be in HH:mm format", value)
	}
	return minutes, nil
}

func clockMinutes(value string, isClose bool) (int, bool) {
	if len(value) != 5 || value[2] != ':' {
		return 0, false
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return 0, false
		}
	}

	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')

	if isClose && hour == 24 && minute == 0 {
		return minutesPerDay, true
	}
	if hour > 23 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func (s *weeklySchedule) isHoliday(t time.Time) bool {
	_, ok := s.holidays[t.Format(dateLayout)]
	return ok
}

func (s *weeklySchedule) isOpen(now time.Time) bool {
	if s.isHoliday(now) {
		return false
	}

	w, ok := s.days[now.Weekday()]
	if !ok {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	return minute >= w.open && minute < w.close
}

func (s *weeklySchedule) nextOpen(now time.Time, maxDaysAhead int) *time.Time {
	year, month, day := now.Date()
	loc := now.Location()

	for offset := 0; offset <= maxDaysAhead; offset++ {
		date := time.Date(year, month, day+offset, 0, 0, 0, 0, loc)
		if s.isHoliday(date) {
			continue
		}

		w, ok := s.days[date.Weekday()]
		if !ok {
			continue
		}

		openAt := time.Date(year, month, day+offset, w.open/60, w.open%60, 0, 0, loc)
		// Today only counts if the opening is still ahead.
		if offset == 0 && !openAt.After(now) {
			continue
		}
		return &openAt
	}

	return nil
}

func validateNow(now time.Time) error {
	if now.IsZero() {
		return apperrors.NewValidationError("now must be a valid instant")
	}
	return nil
}

// IsCurrentlyOpen reports whether now falls inside today's [openTime, closeTime).
// A holiday on now's date closes the center regardless of weekly hours.
func IsCurrentlyOpen(hours []entities.OperatingHours, now time.Time, holidays []entities.Holiday) (bool, error) {
	if err := validateNow(now); err != nil {
		return false, err
	}

	schedule, err := newWeeklySchedule(hours, holidays)
	if err != nil {
		return false, err
	}

	return schedule.isOpen(now), nil
}

// GetNextOpenTime returns the first opening strictly after now within maxDaysAhead days
// (inclusive), skipping holidays. It returns nil when nothing opens in the window.
func GetNextOpenTime(hours []entities.OperatingHours, now time.Time, holidays []entities.Holiday, maxDaysAhead int) (*time.Time, error) {
	if maxDaysAhead <= 0 {
		return nil, apperrors.NewOutOfRangeError("maxDaysAhead must be a positive integer")
	}
	if err := validateNow(now); err != nil {
		return nil, err
	}

	schedule, err := newWeeklySchedule(hours, holidays)
	if err != nil {
		return nil, err
	}

	return schedule.nextOpen(now, maxDaysAhead), nil
}

// EvaluateOperatingState classifies the center as open, opening later, or closed with no
// known opening in the next DefaultMaxDaysAhead days
func EvaluateOperatingState(hours []entities.OperatingHours, now time.Time, holidays []entities.Holiday) (entities.OperatingStatus, error) {
	if err := validateNow(now); err != nil {
		return entities.OperatingStatus{}, err
	}

	schedule, err := newWeeklySchedule(hours, holidays)
	if err != nil {
		return entities.OperatingStatus{}, err
	}

	if schedule.isOpen(now) {
		return entities.OperatingStatus{State: entities.OperatingStateOpen}, nil
	}

	if next := schedule.nextOpen(now, DefaultMaxDaysAhead); next != nil {
		return entities.OperatingStatus{State: entities.OperatingStateClosedOpensLater, NextOpenAt: next}, nil
	}

	return entities.OperatingStatus{State: entities.OperatingStateClosed}, nil
}

// CalculateOperatingScore is 100 when open, otherwise tiered by hours until the next opening
func CalculateOperatingScore(hours []entities.OperatingHours, now time.Time, holidays []entities.Holiday) (float64, error) {
	status, err := EvaluateOperatingState(hours, now, holidays)
	if err != nil {
		return 0, err
	}
	return operatingScoreFor(status, now), nil
}

func operatingScoreFor(status entities.OperatingStatus, now time.Time) float64 {
	if status.State == entities.OperatingStateOpen {
		return 100
	}
	if status.NextOpenAt == nil {
		return 0
	}

	hoursUntil := status.NextOpenAt.Sub(now).Hours()
	switch {
	case hoursUntil <= 1:
		return 80
	case hoursUntil <= 3:
		return 60
	case hoursUntil <= 6:
		return 40
	case hoursUntil <= 24:
		return 20
	default:
		return 0
	}
}
