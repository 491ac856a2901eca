package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

func TestCalculateSpecialtyScore_Tiers(t *testing.T) {
	tests := []struct {
		name string
		info entities.StaffInfo
		want float64
	}{
		{"psychiatrist", entities.StaffInfo{HasPsychiatrist: true}, 100},
		{"nurse", entities.StaffInfo{HasNurse: true}, 80},
		{"social worker", entities.StaffInfo{HasSocialWorker: true}, 80},
		{"other specialist", entities.StaffInfo{HasOtherSpecialist: true}, 60},
		{"nobody", entities.StaffInfo{}, 40},
		{"nurse beats other specialist", entities.StaffInfo{HasNurse: true, HasOtherSpecialist: true}, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateSpecialtyScore(&tt.info)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateSpecialtyScore_PsychiatristAlwaysDominates(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		info := entities.StaffInfo{
			HasPsychiatrist:    true,
			HasNurse:           mask&1 != 0,
			HasSocialWorker:    mask&2 != 0,
			HasOtherSpecialist: mask&4 != 0,
		}
		got, err := CalculateSpecialtyScore(&info)
		assert.NoError(t, err)
		assert.Equal(t, 100.0, got)
	}
}

func TestCalculateSpecialtyScore_ExactlyOneTier(t *testing.T) {
	allowed := map[float64]bool{100: true, 80: true, 60: true, 40: true}
	for mask := 0; mask < 16; mask++ {
		info := entities.StaffInfo{
			HasPsychiatrist:    mask&1 != 0,
			HasNurse:           mask&2 != 0,
			HasSocialWorker:    mask&4 != 0,
			HasOtherSpecialist: mask&8 != 0,
		}
		got, err := CalculateSpecialtyScore(&info)
		assert.NoError(t, err)
		assert.True(t, allowed[got], "unexpected score %v for %+v", got, info)
	}
}

func TestCalculateSpecialtyScore_NilIsValidationError(t *testing.T) {
	_, err := CalculateSpecialtyScore(nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
