package score

import (
	"math"
	"strings"

	"vitalsin/internal/models"
)

const baseline = 5.0

// ComputeLocal is the deterministic offline heuristic used when the remote
// computation is unavailable. The morning rested rating blends into the
// baseline first; everything after that is an independent additive delta, so
// the order check-ins arrived in never changes the result.
func ComputeLocal(in Inputs) (float64, string, []models.ScoreAction) {
	s := baseline

	if in.RestedScore != nil {
		s = s*0.6 + *in.RestedScore*0.4
	}

	if in.MotivationLevel != nil {
		switch *in.MotivationLevel {
		case "low":
			s -= 0.5
		case "high":
			s += 0.5
		}
	}
	if in.MiddayEnergy != nil {
		switch *in.MiddayEnergy {
		case "low":
			s -= 1.0
		case "high":
			s += 0.5
		}
	}
	if in.DayVsExpectations != nil {
		switch *in.DayVsExpectations {
		case "worse":
			s -= 0.5
		case "better":
			s += 0.3
		}
	}
	if in.LateCaffeine != nil && *in.LateCaffeine {
		s -= 0.3
	}
	if in.SkippedMeals != nil && *in.SkippedMeals {
		s -= 0.2
	}
	if in.Alcohol != nil && *in.Alcohol {
		s -= 0.3
	}

	final := math.Round(clamp(s, 1, 10)*10) / 10

	return final, buildExplanation(in, final), buildActions(in, final)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func buildExplanation(in Inputs, final float64) string {
	var drains, lifts []string

	if in.RestedScore != nil {
		if *in.RestedScore < 5 {
			drains = append(drains, "a low morning rested score")
		} else if *in.RestedScore >= 8 {
			lifts = append(lifts, "waking up well rested")
		}
	}
	if in.MotivationLevel != nil {
		switch *in.MotivationLevel {
		case "low":
			drains = append(drains, "low motivation")
		case "high":
			lifts = append(lifts, "high motivation")
		}
	}
	if in.MiddayEnergy != nil {
		switch *in.MiddayEnergy {
		case "low":
			drains = append(drains, "a midday energy dip")
		case "high":
			lifts = append(lifts, "strong midday energy")
		}
	}
	if in.DayVsExpectations != nil {
		switch *in.DayVsExpectations {
		case "worse":
			drains = append(drains, "a day that felt worse than expected")
		case "better":
			lifts = append(lifts, "a better-than-expected day")
		}
	}
	if in.LateCaffeine != nil && *in.LateCaffeine {
		drains = append(drains, "late caffeine")
	}
	if in.SkippedMeals != nil && *in.SkippedMeals {
		drains = append(drains, "skipped meals")
	}
	if in.Alcohol != nil && *in.Alcohol {
		drains = append(drains, "alcohol")
	}

	var b strings.Builder
	b.WriteString("Based on your check-ins")
	if len(drains) > 0 {
		b.WriteString(", today was weighed down by ")
		b.WriteString(joinNatural(drains))
	}
	if len(lifts) > 0 {
		if len(drains) > 0 {
			b.WriteString(", lifted by ")
		} else {
			b.WriteString(", today was lifted by ")
		}
		b.WriteString(joinNatural(lifts))
	}
	if len(drains) == 0 && len(lifts) == 0 {
		b.WriteString(", no strong signal pulled your energy in either direction")
	}
	b.WriteString(".")
	return b.String()
}

// buildActions returns 1-3 suggestions, most specific matches first, padded
// with generic fillers when fewer than three rules fire.
func buildActions(in Inputs, final float64) []models.ScoreAction {
	var actions []models.ScoreAction

	if in.RestedScore != nil && *in.RestedScore < 5 {
		actions = append(actions, models.ScoreAction{
			ID:     "delay-caffeine",
			Title:  "Delay your first coffee",
			Reason: "You woke up low on rest; pushing caffeine an hour later works with your natural wake-up curve.",
		})
	}
	if in.LateCaffeine != nil && *in.LateCaffeine {
		actions = append(actions, models.ScoreAction{
			ID:     "caffeine-cutoff",
			Title:  "Set a 2pm caffeine cutoff",
			Reason: "Late caffeine was flagged today and it eats into tonight's deep sleep.",
		})
	}
	if in.SkippedMeals != nil && *in.SkippedMeals {
		actions = append(actions, models.ScoreAction{
			ID:     "regular-meals",
			Title:  "Plan tomorrow's meals now",
			Reason: "Skipped meals showed up today; steady fuel keeps the afternoon dip smaller.",
		})
	}
	if in.Alcohol != nil && *in.Alcohol {
		actions = append(actions, models.ScoreAction{
			ID:     "alcohol-free-evening",
			Title:  "Keep tomorrow evening alcohol-free",
			Reason: "Alcohol was logged today and it fragments sleep even in small amounts.",
		})
	}
	if final < 6 {
		actions = append(actions, models.ScoreAction{
			ID:     "short-walk",
			Title:  "Take a 10-minute walk",
			Reason: "A short walk is the most reliable quick lift when energy sits below average.",
		})
	}

	fillers := []models.ScoreAction{
		{ID: "hydrate", Title: "Drink a glass of water", Reason: "Mild dehydration is a common, invisible energy drain."},
		{ID: "stretch", Title: "Stretch for two minutes", Reason: "Brief movement breaks counter long stretches of sitting."},
		{ID: "deep-breathing", Title: "Try one minute of deep breathing", Reason: "Slow breathing settles the nervous system between tasks."},
	}
	for _, f := range fillers {
		if len(actions) >= 3 {
			break
		}
		actions = append(actions, f)
	}

	return actions[:min(3, len(actions))]
}

func joinNatural(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
