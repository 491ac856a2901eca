package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

// 2024-01-08 is a Monday
func monday(hour, minute int) time.Time {
	return time.Date(2024, time.January, 8, hour, minute, 0, 0, time.UTC)
}

var mondayOnly = []entities.OperatingHours{
	{DayOfWeek: 1, OpenTime: "09:00", CloseTime: "18:00"},
}

func weekdays(open, closeAt string) []entities.OperatingHours {
	hours := make([]entities.OperatingHours, 0, 5)
	for day := 1; day <= 5; day++ {
		hours = append(hours, entities.OperatingHours{DayOfWeek: day, OpenTime: open, CloseTime: closeAt})
	}
	return hours
}

func TestOperatingHours_OpenDuringHours(t *testing.T) {
	open, err := IsCurrentlyOpen(mondayOnly, monday(10, 0), nil)
	require.NoError(t, err)
	assert.True(t, open)

	score, err := CalculateOperatingScore(mondayOnly, monday(10, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)
}

func TestOperatingHours_BeforeOpening(t *testing.T) {
	now := monday(8, 30)

	open, err := IsCurrentlyOpen(mondayOnly, now, nil)
	require.NoError(t, err)
	assert.False(t, open)

	next, err := GetNextOpenTime(mondayOnly, now, nil, DefaultMaxDaysAhead)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, monday(9, 0), *next)

	score, err := CalculateOperatingScore(mondayOnly, now, nil)
	require.NoError(t, err)
	assert.Equal(t, 80.0, score)
}

func TestOperatingHours_AfterClosingOpensNextMorning(t *testing.T) {
	hours := weekdays("09:00", "18:00")
	now := monday(19, 0)

	next, err := GetNextOpenTime(hours, now, nil, DefaultMaxDaysAhead)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2024, time.January, 9, 9, 0, 0, 0, time.UTC), *next)

	score, err := CalculateOperatingScore(hours, now, nil)
	require.NoError(t, err)
	assert.Equal(t, 20.0, score)

	status, err := EvaluateOperatingState(hours, now, nil)
	require.NoError(t, err)
	assert.Equal(t, entities.OperatingStateClosedOpensLater, status.State)
}

func TestOperatingHours_CloseTimeIsExclusive(t *testing.T) {
	open, err := IsCurrentlyOpen(mondayOnly, monday(18, 0), nil)
	require.NoError(t, err)
	assert.False(t, open)

	open, err = IsCurrentlyOpen(mondayOnly, monday(17, 59).Add(59*time.Second), nil)
	require.NoError(t, err)
	assert.True(t, open)

	open, err = IsCurrentlyOpen(mondayOnly, monday(9, 0), nil)
	require.NoError(t, err)
	assert.True(t, open)
}

func TestOperatingHours_HolidayClosesCenter(t *testing.T) {
	holidays := []entities.Holiday{{Date: "2024-01-08", Type: entities.HolidayTypePublic}}
	hours := weekdays("09:00", "18:00")

	for hour := 0; hour < 24; hour++ {
		open, err := IsCurrentlyOpen(hours, monday(hour, 0), holidays)
		require.NoError(t, err)
		assert.False(t, open, "open at %02d:00 on a holiday", hour)
	}

	next, err := GetNextOpenTime(hours, monday(8, 0), holidays, DefaultMaxDaysAhead)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2024, time.January, 9, 9, 0, 0, 0, time.UTC), *next)
}

func TestGetNextOpenTime_WindowIsInclusive(t *testing.T) {
	now := monday(19, 0)

	next, err := GetNextOpenTime(mondayOnly, now, nil, 7)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC), *next)

	next, err = GetNextOpenTime(mondayOnly, now, nil, 6)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestGetNextOpenTime_NeverInThePast(t *testing.T) {
	hours := weekdays("09:00", "18:00")
	for hour := 0; hour < 24; hour++ {
		now := monday(hour, 30)
		next, err := GetNextOpenTime(hours, now, nil, DefaultMaxDaysAhead)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.True(t, next.After(now), "next open %s not after %s", next, now)
	}
}

func TestGetNextOpenTime_RejectsNonPositiveWindow(t *testing.T) {
	for _, days := range []int{0, -1} {
		_, err := GetNextOpenTime(mondayOnly, monday(10, 0), nil, days)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeOutOfRange))
	}
}

func TestEvaluateOperatingState_NoHours(t *testing.T) {
	status, err := EvaluateOperatingState(nil, monday(10, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, entities.OperatingStateClosed, status.State)
	assert.Nil(t, status.NextOpenAt)

	score, err := CalculateOperatingScore(nil, monday(10, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestOperatingHours_MissingTimesMeanClosed(t *testing.T) {
	hours := []entities.OperatingHours{{DayOfWeek: 1, OpenTime: "09:00"}}

	open, err := IsCurrentlyOpen(hours, monday(10, 0), nil)
	require.NoError(t, err)
	assert.False(t, open)
}

func TestOperatingHours_MidnightClose(t *testing.T) {
	hours := []entities.OperatingHours{{DayOfWeek: 1, OpenTime: "20:00", CloseTime: "24:00"}}

	open, err := IsCurrentlyOpen(hours, monday(23, 59), nil)
	require.NoError(t, err)
	assert.True(t, open)
}

func TestOperatingHours_UsesLocationOfNow(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	// Sunday 23:00 UTC is Monday 08:00 in Seoul
	now := time.Date(2024, time.January, 7, 23, 0, 0, 0, time.UTC).In(kst)

	score, err := CalculateOperatingScore(mondayOnly, now, nil)
	require.NoError(t, err)
	assert.Equal(t, 80.0, score)

	next, err := GetNextOpenTime(mondayOnly, now, nil, DefaultMaxDaysAhead)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2024, time.January, 8, 9, 0, 0, 0, kst), *next)
}

func TestOperatingHours_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		hours    []entities.OperatingHours
		now      time.Time
		holidays []entities.Holiday
	}{
		{name: "day out of range", hours: []entities.OperatingHours{{DayOfWeek: 7, OpenTime: "09:00", CloseTime: "18:00"}}, now: monday(10, 0)},
		{name: "negative day", hours: []entities.OperatingHours{{DayOfWeek: -1, OpenTime: "09:00", CloseTime: "18:00"}}, now: monday(10, 0)},
		{name: "duplicate day", hours: append(weekdays("09:00", "18:00"), entities.OperatingHours{DayOfWeek: 1, OpenTime: "10:00", CloseTime: "12:00"}), now: monday(10, 0)},
		{name: "single digit hour", hours: []entities.OperatingHours{{DayOfWeek: 1, OpenTime: "9:00", CloseTime: "18:00"}}, now: monday(10, 0)},
		{name: "hour out of range", hours: []entities.OperatingHours{{DayOfWeek: 1, OpenTime: "09:00", CloseTime: "25:00"}}, now: monday(10, 0)},
		{name: "close before open", hours: []entities.OperatingHours{{DayOfWeek: 1, OpenTime: "18:00", CloseTime: "09:00"}}, now: monday(10, 0)},
		{name: "bad holiday date", hours: mondayOnly, now: monday(10, 0), holidays: []entities.Holiday{{Date: "08/01/2024"}}},
		{name: "zero now", hours: mondayOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IsCurrentlyOpen(tt.hours, tt.now, tt.holidays)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "got %v", err)

			_, err = CalculateOperatingScore(tt.hours, tt.now, tt.holidays)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "got %v", err)
		})
	}
}

func TestOperatingScoreFor_Tiers(t *testing.T) {
	now := monday(10, 0)
	at := func(d time.Duration) entities.OperatingStatus {
		next := now.Add(d)
		return entities.OperatingStatus{State: entities.OperatingStateClosedOpensLater, NextOpenAt: &next}
	}

	assert.Equal(t, 100.0, operatingScoreFor(entities.OperatingStatus{State: entities.OperatingStateOpen}, now))
	assert.Equal(t, 80.0, operatingScoreFor(at(time.Hour), now))
	assert.Equal(t, 60.0, operatingScoreFor(at(time.Hour+time.Minute), now))
	assert.Equal(t, 60.0, operatingScoreFor(at(3*time.Hour), now))
	assert.Equal(t, 40.0, operatingScoreFor(at(6*time.Hour), now))
	assert.Equal(t, 20.0, operatingScoreFor(at(24*time.Hour), now))
	assert.Equal(t, 0.0, operatingScoreFor(at(25*time.Hour), now))
	assert.Equal(t, 0.0, operatingScoreFor(entities.OperatingStatus{State: entities.OperatingStateClosed}, now))
}
