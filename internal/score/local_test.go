package score_test

import (
	"math"
	"testing"

	"vitalsin/internal/models"
	"vitalsin/internal/score"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestComputeLocal_RestedBlendOnly(t *testing.T) {
	in := score.Inputs{RestedScore: floatPtr(3)}

	value, explanation, actions := score.ComputeLocal(in)

	// 5.0*0.6 + 3*0.4 = 4.2
	if value != 4.2 {
		t.Errorf("Expected score 4.2, got %v", value)
	}
	if explanation == "" {
		t.Error("Expected a non-empty explanation")
	}
	if len(actions) < 1 || len(actions) > 3 {
		t.Errorf("Expected 1-3 actions, got %d", len(actions))
	}
}

func TestComputeLocal_MorningCheckIn(t *testing.T) {
	in := score.Inputs{
		RestedScore:     floatPtr(3),
		MotivationLevel: strPtr("low"),
	}

	value, _, _ := score.ComputeLocal(in)

	// 5.0*0.6 + 3*0.4 - 0.5 = 3.7; the blend applies before the delta.
	if value != 3.7 {
		t.Errorf("Expected score 3.7, got %v", value)
	}
}

func TestComputeLocal_EveningOnly(t *testing.T) {
	in := score.Inputs{
		DayVsExpectations: strPtr("worse"),
		LateCaffeine:      boolPtr(true),
		Alcohol:           boolPtr(true),
	}

	value, _, _ := score.ComputeLocal(in)

	// 5.0 - 0.5 - 0.3 - 0.3 = 3.9
	if value != 3.9 {
		t.Errorf("Expected score 3.9, got %v", value)
	}
}

func TestComputeLocal_NoSignals(t *testing.T) {
	value, explanation, actions := score.ComputeLocal(score.Inputs{})

	if value != 5.0 {
		t.Errorf("Expected neutral baseline 5.0, got %v", value)
	}
	if explanation == "" {
		t.Error("Expected a non-empty explanation")
	}
	if len(actions) != 3 {
		t.Errorf("Expected 3 filler actions, got %d", len(actions))
	}
}

func TestComputeLocal_BoundsAndPrecision(t *testing.T) {
	cases := []score.Inputs{
		{}, // baseline
		{RestedScore: floatPtr(1), MotivationLevel: strPtr("low"), MiddayEnergy: strPtr("low"),
			DayVsExpectations: strPtr("worse"), LateCaffeine: boolPtr(true),
			SkippedMeals: boolPtr(true), Alcohol: boolPtr(true)},
		{RestedScore: floatPtr(10), MotivationLevel: strPtr("high"), MiddayEnergy: strPtr("high"),
			DayVsExpectations: strPtr("better")},
		{RestedScore: floatPtr(7.5)},
		{MiddayEnergy: strPtr("low"), Alcohol: boolPtr(true)},
	}

	for i, in := range cases {
		value, _, _ := score.ComputeLocal(in)
		if value < 1 || value > 10 {
			t.Errorf("case %d: score %v out of [1,10]", i, value)
		}
		if math.Abs(value*10-math.Round(value*10)) > 1e-9 {
			t.Errorf("case %d: score %v has more than one decimal", i, value)
		}
	}
}

func TestComputeLocal_SpecificActionsFirst(t *testing.T) {
	in := score.Inputs{RestedScore: floatPtr(3), Alcohol: boolPtr(true)}

	_, _, actions := score.ComputeLocal(in)

	if len(actions) != 3 {
		t.Fatalf("Expected 3 actions, got %d", len(actions))
	}
	if actions[0].ID != "delay-caffeine" {
		t.Errorf("Expected most specific action first, got %q", actions[0].ID)
	}
	for _, a := range actions {
		if a.ID == "" || a.Title == "" || a.Reason == "" {
			t.Errorf("Action %+v missing fields", a)
		}
	}
}

func TestFlattenCheckIns(t *testing.T) {
	checkIns := []models.CheckIn{
		{Kind: models.CheckInMorning, Answers: []byte(`{"rested_score": 6, "motivation_level": "high"}`)},
		{Kind: models.CheckInMidday, Answers: []byte(`{"energy_level": "low", "skipped_meals": true}`)},
		{Kind: models.CheckInEvening, Answers: []byte(`{"day_vs_expectations": "better", "alcohol": false}`)},
	}

	in := score.FlattenCheckIns(checkIns)

	if in.RestedScore == nil || *in.RestedScore != 6 {
		t.Errorf("Expected rested_score 6, got %v", in.RestedScore)
	}
	if in.MotivationLevel == nil || *in.MotivationLevel != "high" {
		t.Errorf("Expected motivation high, got %v", in.MotivationLevel)
	}
	if in.MiddayEnergy == nil || *in.MiddayEnergy != "low" {
		t.Errorf("Expected midday energy low, got %v", in.MiddayEnergy)
	}
	if in.SkippedMeals == nil || !*in.SkippedMeals {
		t.Error("Expected skipped_meals true")
	}
	if in.Alcohol == nil || *in.Alcohol {
		t.Error("Expected alcohol false, not absent")
	}
	if in.LateCaffeine != nil {
		t.Error("Expected late_caffeine to stay unknown")
	}
}

func TestFlattenCheckIns_MalformedPayloadSkipped(t *testing.T) {
	checkIns := []models.CheckIn{
		{Kind: models.CheckInMorning, Answers: []byte(`not json`)},
		{Kind: models.CheckInEvening, Answers: []byte(`{"alcohol": true}`)},
	}

	in := score.FlattenCheckIns(checkIns)

	if in.Alcohol == nil || !*in.Alcohol {
		t.Error("Expected alcohol from the valid payload")
	}
	if in.RestedScore != nil {
		t.Error("Expected nothing from the malformed payload")
	}
}
