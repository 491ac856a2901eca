package scoring

import (
	"github.com/zatekoja/mindcare/internal/domain/entities"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

// CalculateSpecialtyScore returns exactly one of 100, 80, 60 or 40.
// A psychiatrist dominates, then nurses or social workers, then any other specialist.
func CalculateSpecialtyScore(info *entities.StaffInfo) (float64, error) {
	if info == nil {
		return 0, apperrors.NewValidationError("staff info is required")
	}

	switch {
	case info.HasPsychiatrist:
		return 100, nil
	case info.HasNurse || info.HasSocialWorker:
		return 80, nil
	case info.HasOtherSpecialist:
		return 60, nil
	default:
		return 40, nil
	}
}
