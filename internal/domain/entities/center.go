package entities

import (
	"math"
	"time"

	"github.com/zatekoja/mindcare/pkg/utils"
)

// Center represents a mental-health center as read from the data layer.
// The scoring core treats it as an immutable snapshot.
type Center struct {
	ID             string           `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	Address        string           `json:"address" db:"address"`
	PhoneNumber    string           `json:"phoneNumber,omitempty" db:"phone_number"`
	Website        string           `json:"website,omitempty" db:"website"`
	Location       *Location        `json:"location,omitempty" db:"-"`
	OperatingHours []OperatingHours `json:"operatingHours" db:"-"`
	Programs       []Program        `json:"programs" db:"-"`
	StaffTypes     []string         `json:"staffTypes" db:"-"`
	Holidays       []Holiday        `json:"holidays,omitempty" db:"-"`
	IsActive       bool             `json:"isActive" db:"is_active"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

// EarthRadiusKm is the mean radius used for every great-circle calculation
const EarthRadiusKm = 6371.0

// Location represents geographical coordinates in degrees
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// IsValid reports whether the coordinates are finite and inside the WGS84 ranges
func (l *Location) IsValid() bool {
	if l == nil {
		return false
	}
	if math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) || math.IsInf(l.Latitude, 0) || math.IsInf(l.Longitude, 0) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// OperatingHours is one weekly opening window. DayOfWeek follows time.Weekday (Sunday=0).
// A day without an entry is closed.
type OperatingHours struct {
	DayOfWeek int    `json:"dayOfWeek" db:"day_of_week"`
	OpenTime  string `json:"openTime" db:"open_time"`   // "HH:mm", 24h
	CloseTime string `json:"closeTime" db:"close_time"` // "HH:mm", 24h
}

// HolidayType classifies a closure date
type HolidayType string

const (
	HolidayTypePublic    HolidayType = "public"
	HolidayTypeRegular   HolidayType = "regular"
	HolidayTypeTemporary HolidayType = "temporary"
)

// Holiday closes a center for a whole calendar date regardless of weekly hours.
// An empty CenterID means the closure applies to every center.
type Holiday struct {
	CenterID string      `json:"centerId,omitempty" db:"center_id"`
	Date     string      `json:"date" db:"date"` // "YYYY-MM-DD"
	Type     HolidayType `json:"type" db:"type"`
	Name     string      `json:"name,omitempty" db:"name"`
}

// AgeRange is an inclusive age bracket
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether age falls inside the inclusive range
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// Program is a treatment or support program offered by a center.
// A nil TargetSeverity means the program accepts every severity.
type Program struct {
	ID             string     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Category       string     `json:"category" db:"category"`
	TargetSeverity []Severity `json:"targetSeverity" db:"-"`
	TargetAge      *AgeRange  `json:"targetAge,omitempty" db:"-"`
}

// IsGeneral reports whether the program belongs to the catch-all category
func (p Program) IsGeneral() bool {
	return utils.NormalizeTag(p.Category) == utils.CategoryGeneral
}

// Staff type tags recognized when deriving StaffInfo
const (
	StaffPsychiatrist           = "psychiatrist"
	StaffNurse                  = "nurse"
	StaffSocialWorker           = "social_worker"
	StaffClinicalPsychologist   = "clinical_psychologist"
	StaffCounselor              = "counselor"
	StaffOccupationalTherapist  = "occupational_therapist"
	StaffAddictionCounselor     = "addiction_counselor"
	StaffMentalHealthSpecialist = "mental_health_specialist"
)

var otherSpecialists = map[string]struct{}{
	StaffClinicalPsychologist:   {},
	"psychologist":              {},
	StaffCounselor:              {},
	StaffOccupationalTherapist:  {},
	StaffAddictionCounselor:     {},
	StaffMentalHealthSpecialist: {},
}

// StaffInfo summarizes which specialist types a center employs
type StaffInfo struct {
	HasPsychiatrist    bool `json:"hasPsychiatrist"`
	HasNurse           bool `json:"hasNurse"`
	HasSocialWorker    bool `json:"hasSocialWorker"`
	HasOtherSpecialist bool `json:"hasOtherSpecialist"`
}

// NewStaffInfo reduces a list of staff type tags. Unknown tags are ignored.
func NewStaffInfo(staffTypes []string) StaffInfo {
	var info StaffInfo
	for _, raw := range staffTypes {
		tag := utils.NormalizeTag(raw)
		switch tag {
		case StaffPsychiatrist:
			info.HasPsychiatrist = true
		case StaffNurse, "mental_health_nurse":
			info.HasNurse = true
		case StaffSocialWorker, "mental_health_social_worker":
			info.HasSocialWorker = true
		default:
			if _, ok := otherSpecialists[tag]; ok {
				info.HasOtherSpecialist = true
			}
		}
	}
	return info
}
