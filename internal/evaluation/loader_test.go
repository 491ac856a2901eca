package evaluation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/pkg/utils"
)

func TestLoadGoldenSet_ValidFile(t *testing.T) {
	content := `{
		"centers": [
			{"id": "c1", "name": "Mapo", "location": {"latitude": 37.57, "longitude": 126.97}, "staffTypes": ["psychiatrist"]}
		],
		"scenarios": [
			{"id": "s1", "kind": "distance", "now": "2024-01-08T10:00:00+09:00",
			 "location": {"latitude": 37.56, "longitude": 126.97}, "assessment": {"severity": "MID", "category": "depression"},
			 "max_distance_km": 10, "limit": 3, "expected_center_ids": ["c1"], "difficulty": "easy"}
		]
	}`
	path := writeTempFile(t, content)

	set, err := LoadGoldenSet(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Centers) != 1 || len(set.Scenarios) != 1 {
		t.Fatalf("expected 1 center and 1 scenario, got %d and %d", len(set.Centers), len(set.Scenarios))
	}
	s := set.Scenarios[0]
	if s.Kind != KindDistance {
		t.Errorf("expected kind distance, got %s", s.Kind)
	}
	if s.Assessment == nil || s.Assessment.Severity != entities.SeverityMid {
		t.Errorf("expected MID assessment, got %+v", s.Assessment)
	}
	if s.Now.Weekday() != time.Monday {
		t.Errorf("expected a Monday, got %s", s.Now.Weekday())
	}
	if err := ValidateGoldenSet(set); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadGoldenSet_NormalizesCenters(t *testing.T) {
	content := `{
		"centers": [
			{"id": "c1", "name": "Mapo", "location": {"latitude": 37.57, "longitude": 126.97},
			 "staffTypes": ["Therapist", "Psychiatric Nurse"],
			 "programs": [{"id": "p1", "name": "Mood care", "category": "Mood Disorder", "targetSeverity": null},
			              {"id": "p2", "name": "Sleep clinic", "category": "Insomnia", "targetSeverity": null}]}
		],
		"scenarios": []
	}`
	path := writeTempFile(t, content)

	aliases, err := utils.NewCategoryNormalizer(filepath.Join("..", "..", "config", "category_aliases.json"))
	if err != nil {
		t.Fatalf("failed to load aliases: %v", err)
	}

	set, err := LoadGoldenSet(path, aliases)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := set.Centers[0]
	if len(c.StaffTypes) != 2 || c.StaffTypes[0] != "counselor" || c.StaffTypes[1] != "nurse" {
		t.Errorf("expected canonical staff types, got %v", c.StaffTypes)
	}
	if info := entities.NewStaffInfo(c.StaffTypes); !info.HasOtherSpecialist || !info.HasNurse {
		t.Errorf("expected therapist to count as a specialist, got %+v", info)
	}
	if c.Programs[0].Category != "depression" || c.Programs[1].Category != "sleep" {
		t.Errorf("expected canonical categories, got %q and %q", c.Programs[0].Category, c.Programs[1].Category)
	}
}

func TestLoadGoldenSet_NilNormalizerUsesBuiltInAliases(t *testing.T) {
	path := writeTempFile(t, `{"centers": [{"id": "c1", "staffTypes": ["psychiatry"]}], "scenarios": []}`)

	set, err := LoadGoldenSet(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := set.Centers[0].StaffTypes; len(got) != 1 || got[0] != "psychiatrist" {
		t.Errorf("expected psychiatrist, got %v", got)
	}
}

func TestLoadGoldenSet_InvalidFile(t *testing.T) {
	if _, err := LoadGoldenSet("/nonexistent/path.json", nil); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadGoldenSet_InvalidJSON(t *testing.T) {
	path := writeTempFile(t, `not valid json`)
	if _, err := LoadGoldenSet(path, nil); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadGoldenSet_ShippedFixtureIsValid(t *testing.T) {
	set, err := LoadGoldenSet(filepath.Join("..", "..", "config", "golden_recommendations.json"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateGoldenSet(set); err != nil {
		t.Errorf("shipped fixture is invalid: %v", err)
	}
}

func TestScenarioKind_IsValid(t *testing.T) {
	tests := []struct {
		kind  ScenarioKind
		valid bool
	}{
		{KindDistance, true},
		{KindHours, true},
		{KindSpecialty, true},
		{KindProgram, true},
		{KindMixed, true},
		{ScenarioKind("unknown"), false},
		{ScenarioKind(""), false},
	}
	for _, tt := range tests {
		if got := tt.kind.IsValid(); got != tt.valid {
			t.Errorf("ScenarioKind(%q).IsValid() = %v, want %v", tt.kind, got, tt.valid)
		}
	}
}

func validScenario(id string) GoldenScenario {
	return GoldenScenario{
		ID:                id,
		Kind:              KindDistance,
		Now:               time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
		Location:          entities.Location{Latitude: 37.5665, Longitude: 126.978},
		MaxDistanceKm:     10,
		Limit:             3,
		ExpectedCenterIDs: []string{"c1"},
		Difficulty:        "easy",
	}
}

func TestValidateGoldenSet(t *testing.T) {
	centers := []*entities.Center{{ID: "c1"}}

	tests := []struct {
		name   string
		mutate func(*GoldenSet)
	}{
		{"missing scenario id", func(s *GoldenSet) { s.Scenarios[0].ID = "" }},
		{"duplicate scenario id", func(s *GoldenSet) { s.Scenarios = append(s.Scenarios, validScenario("s1")) }},
		{"invalid kind", func(s *GoldenSet) { s.Scenarios[0].Kind = "bad" }},
		{"invalid difficulty", func(s *GoldenSet) { s.Scenarios[0].Difficulty = "impossible" }},
		{"missing now", func(s *GoldenSet) { s.Scenarios[0].Now = time.Time{} }},
		{"invalid location", func(s *GoldenSet) { s.Scenarios[0].Location.Latitude = 91 }},
		{"zero limit", func(s *GoldenSet) { s.Scenarios[0].Limit = 0 }},
		{"invalid severity", func(s *GoldenSet) {
			s.Scenarios[0].Assessment = &entities.AssessmentResult{Severity: "SEVERE"}
		}},
		{"unknown expected center", func(s *GoldenSet) { s.Scenarios[0].ExpectedCenterIDs = []string{"c9"} }},
		{"duplicate center", func(s *GoldenSet) { s.Centers = append(s.Centers, &entities.Center{ID: "c1"}) }},
		{"center without id", func(s *GoldenSet) { s.Centers = append(s.Centers, &entities.Center{}) }},
	}
	for _, tt := range tests {
		set := &GoldenSet{
			Centers:   append([]*entities.Center(nil), centers...),
			Scenarios: []GoldenScenario{validScenario("s1")},
		}
		tt.mutate(set)
		if err := ValidateGoldenSet(set); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}

	valid := &GoldenSet{Centers: centers, Scenarios: []GoldenScenario{validScenario("s1"), validScenario("s2")}}
	if err := ValidateGoldenSet(valid); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
