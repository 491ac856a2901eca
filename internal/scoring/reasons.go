package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zatekoja/mindcare/internal/domain/entities"
)

const maxReasons = 3

type factor struct {
	weighted float64
	reason   string
}

// buildReasons explains the strongest weighted components of a scored center.
// Components too weak to be a selling point produce no reason.
func buildReasons(sc *entities.ScoredCenter, staff entities.StaffInfo, assessed bool) []string {
	factors := []factor{
		{sc.DistanceScore * WeightDistance, distanceReason(sc)},
		{sc.OperatingScore * WeightOperating, operatingReason(sc)},
		{sc.SpecialtyScore * WeightSpecialty, specialtyReason(staff)},
		{sc.ProgramScore * WeightProgram, programReason(sc, assessed)},
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].weighted > factors[j].weighted
	})

	reasons := make([]string, 0, maxReasons)
	for _, f := range factors {
		if f.reason == "" {
			continue
		}
		reasons = append(reasons, f.reason)
		if len(reasons) == maxReasons {
			break
		}
	}
	return reasons
}

func distanceReason(sc *entities.ScoredCenter) string {
	if sc.DistanceScore < 50 {
		return ""
	}
	return fmt.Sprintf("nearby (%.1f km away)", sc.DistanceKm)
}

func operatingReason(sc *entities.ScoredCenter) string {
	switch sc.OperatingScore {
	case 100:
		return "currently open"
	case 80:
		return "opens within the hour"
	case 60:
		return "opens within 3 hours"
	case 40:
		return "opens within 6 hours"
	default:
		return ""
	}
}

func specialtyReason(staff entities.StaffInfo) string {
	switch {
	case staff.HasPsychiatrist:
		return "has a psychiatrist"
	case staff.HasNurse && staff.HasSocialWorker:
		return "has psychiatric nurses and social workers"
	case staff.HasNurse:
		return "has psychiatric nurses"
	case staff.HasSocialWorker:
		return "has mental health social workers"
	case staff.HasOtherSpecialist:
		return "has mental health specialists"
	default:
		return ""
	}
}

func programReason(sc *entities.ScoredCenter, assessed bool) string {
	if !assessed {
		if sc.ProgramScore >= programScoreNoAssessment {
			return "offers mental health programs"
		}
		return ""
	}

	switch sc.ProgramScore {
	case programScoreExact:
		if len(sc.MatchedPrograms) > 0 {
			return fmt.Sprintf("offers a program matching your assessment (%s)", sc.MatchedPrograms[0].Program.Name)
		}
		return "offers a program matching your assessment"
	case programScoreCategory:
		return fmt.Sprintf("offers %s programs", categoryLabel(sc))
	case programScoreGeneral:
		return "offers general mental health programs"
	default:
		return ""
	}
}

func categoryLabel(sc *entities.ScoredCenter) string {
	for _, m := range sc.MatchedPrograms {
		if !m.Program.IsGeneral() && m.Program.Category != "" {
			return strings.ReplaceAll(strings.ToLower(m.Program.Category), "_", " ")
		}
	}
	return "related"
}
