package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

type sampleRequest struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	Limit     int     `validate:"omitempty,min=1,max=20"`
	Severity  string  `validate:"omitempty,severity"`
}

func TestValidateStruct_Valid(t *testing.T) {
	req := sampleRequest{Latitude: 37.56, Longitude: 126.97, Limit: 5, Severity: "mid"}
	assert.NoError(t, ValidateStruct(&req))
}

func TestValidateStruct_ReportsEveryField(t *testing.T) {
	req := sampleRequest{Latitude: 91, Longitude: 200, Limit: 50, Severity: "SEVERE"}

	err := ValidateStruct(&req)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "Latitude must be a latitude")
	assert.Contains(t, err.Error(), "Longitude must be a longitude")
	assert.Contains(t, err.Error(), "Limit must be at most 20")
	assert.Contains(t, err.Error(), "Severity must be one of LOW, MID, HIGH")
}

func TestGetValidator_HasNoClockTag(t *testing.T) {
	type hours struct {
		OpenTime string `validate:"hhmm"`
	}

	assert.Panics(t, func() { _ = GetValidator().Struct(hours{OpenTime: "09:00"}) })
}
