package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CategoryGeneral is the catch-all program category
const CategoryGeneral = "general"

// NormalizationConfig holds alias tables for program categories and staff type tags
type NormalizationConfig struct {
	CategoryAliases map[string]string `json:"categoryAliases"`
	StaffAliases    map[string]string `json:"staffAliases"`
}

// CategoryNormalizer canonicalizes free-text categories and staff tags at the data boundary
type CategoryNormalizer struct {
	config *NormalizationConfig
}

// NewCategoryNormalizer loads alias tables from a JSON file
func NewCategoryNormalizer(configPath string) (*CategoryNormalizer, error) {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config NormalizationConfig
	if err := json.Unmarshal(configFile, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return newCategoryNormalizer(&config), nil
}

// DefaultCategoryNormalizer returns a normalizer with the built-in alias tables
func DefaultCategoryNormalizer() *CategoryNormalizer {
	return newCategoryNormalizer(&NormalizationConfig{
		CategoryAliases: map[string]string{
			"mood":              "depression",
			"mood_disorder":     "depression",
			"depressive":        "depression",
			"panic":             "anxiety",
			"panic_disorder":    "anxiety",
			"anxiety_disorder":  "anxiety",
			"alcohol":           "addiction",
			"substance_use":     "addiction",
			"gambling":          "addiction",
			"common":            CategoryGeneral,
			"general_wellbeing": CategoryGeneral,
			"mental_health":     CategoryGeneral,
		},
		StaffAliases: map[string]string{
			"psychiatry":                  "psychiatrist",
			"mental_health_nurse":         "nurse",
			"psychiatric_nurse":           "nurse",
			"mental_health_social_worker": "social_worker",
			"psychologist":                "clinical_psychologist",
			"therapist":                   "counselor",
		},
	})
}

func newCategoryNormalizer(config *NormalizationConfig) *CategoryNormalizer {
	normalized := &NormalizationConfig{
		CategoryAliases: make(map[string]string, len(config.CategoryAliases)),
		StaffAliases:    make(map[string]string, len(config.StaffAliases)),
	}
	for k, v := range config.CategoryAliases {
		normalized.CategoryAliases[NormalizeTag(k)] = NormalizeTag(v)
	}
	for k, v := range config.StaffAliases {
		normalized.StaffAliases[NormalizeTag(k)] = NormalizeTag(v)
	}
	return &CategoryNormalizer{config: normalized}
}

// Category returns the canonical form of a program or assessment category
func (n *CategoryNormalizer) Category(raw string) string {
	tag := NormalizeTag(raw)
	if canonical, ok := n.config.CategoryAliases[tag]; ok {
		return canonical
	}
	return tag
}

// StaffType returns the canonical form of a staff type tag
func (n *CategoryNormalizer) StaffType(raw string) string {
	tag := NormalizeTag(raw)
	if canonical, ok := n.config.StaffAliases[tag]; ok {
		return canonical
	}
	return tag
}

// StaffTypes canonicalizes every tag, dropping empty ones
func (n *CategoryNormalizer) StaffTypes(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if tag := n.StaffType(r); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// NormalizeTag lower-cases, trims and joins words with underscores
func NormalizeTag(raw string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(raw)), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	return strings.Join(fields, "_")
}
