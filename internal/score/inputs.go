package score

import (
	"encoding/json"

	"vitalsin/internal/models"
)

// Inputs are the day's check-in answers flattened for scoring. Absent fields
// mean "unknown" and contribute nothing; they are never defaulted to zero or
// false.
type Inputs struct {
	RestedScore       *float64
	MotivationLevel   *string
	MiddayEnergy      *string
	DayVsExpectations *string
	LateCaffeine      *bool
	SkippedMeals      *bool
	Alcohol           *bool
}

// FlattenCheckIns merges the day's check-in payloads into scoring inputs.
// Keys are looked up by name regardless of which slot carried them; a payload
// that fails to parse is skipped, not fatal.
func FlattenCheckIns(checkIns []models.CheckIn) Inputs {
	var in Inputs
	for _, c := range checkIns {
		var answers map[string]any
		if err := json.Unmarshal(c.Answers, &answers); err != nil {
			continue
		}
		if v, ok := answers["rested_score"].(float64); ok {
			in.RestedScore = &v
		}
		if v, ok := answers["motivation_level"].(string); ok {
			in.MotivationLevel = &v
		}
		if v, ok := answers["energy_level"].(string); ok {
			in.MiddayEnergy = &v
		}
		if v, ok := answers["day_vs_expectations"].(string); ok {
			in.DayVsExpectations = &v
		}
		if v, ok := answers["late_caffeine"].(bool); ok {
			in.LateCaffeine = &v
		}
		if v, ok := answers["skipped_meals"].(bool); ok {
			in.SkippedMeals = &v
		}
		if v, ok := answers["alcohol"].(bool); ok {
			in.Alcohol = &v
		}
	}
	return in
}
