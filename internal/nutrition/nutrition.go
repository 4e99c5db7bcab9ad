// Package nutrition implements the calorie-budget and hydration formulas.
//
// The budget is a pure function of (gender, age, height, weight, activity
// level, goal): Mifflin-St Jeor base, an activity factor from a fixed lookup
// table, and a fixed caloric offset per goal.
package nutrition

import (
	"fmt"

	"github.com/calorico-bot/calorico/internal/models"
)

// ActivityLevel keys the activity-factor table.
type ActivityLevel string

const (
	LevelNone     ActivityLevel = "not_active"
	LevelLight    ActivityLevel = "1-2_per_week"
	LevelModerate ActivityLevel = "3-4_per_week"
	LevelHigh     ActivityLevel = "5-6_per_week"
	LevelDaily    ActivityLevel = "every_day"
)

var activityFactors = map[ActivityLevel]float64{
	LevelNone:     1.2,
	LevelLight:    1.375,
	LevelModerate: 1.55,
	LevelHigh:     1.725,
	LevelDaily:    1.725,
}

var goalOffsets = map[models.Goal]float64{
	models.GoalWeightLoss:  -300,
	models.GoalMuscleGain:  300,
	models.GoalWeightGain:  300,
	models.GoalBodyFatLoss: -200,
	models.GoalMaintain:    0,
}

// MinBudget is the floor applied to every computed budget.
const MinBudget = 1200

// Budget computes the daily calorie budget for a profile.
func Budget(p *models.Profile) int {
	base := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	switch p.Gender {
	case models.GenderMale:
		base += 5
	case models.GenderFemale:
		base -= 161
	default:
		// average of the male and female adjustments
		base += (5 - 161) / 2.0
	}

	factor, ok := activityFactors[Level(p)]
	if !ok {
		factor = activityFactors[LevelNone]
	}
	budget := base*factor + goalOffsets[p.Goal]

	if budget < MinBudget {
		return MinBudget
	}
	return int(budget)
}

// Level derives the activity level label from the collected activity fields.
func Level(p *models.Profile) ActivityLevel {
	if !p.DoesActivity {
		return LevelNone
	}
	switch p.ActivityType {
	case models.ActivityNone:
		return LevelNone
	case models.ActivityLightWalk:
		return LevelLight
	}
	freq := p.ActivityFrequency
	if p.ActivityType == models.ActivityMixed {
		freq = p.MixedFrequency
	}
	switch freq {
	case "1-2 פעמים בשבוע":
		return LevelLight
	case "3-4 פעמים בשבוע":
		return LevelModerate
	case "5-6 פעמים בשבוע":
		return LevelHigh
	case "כל יום":
		return LevelDaily
	default:
		return LevelLight
	}
}

// WaterRecommendation returns the daily hydration range for a body weight,
// 30 to 35 ml per kilogram, expressed in liters and 240 ml cups.
func WaterRecommendation(weightKg float64) string {
	minMl := weightKg * 30
	maxMl := weightKg * 35
	minCups := int(minMl/240 + 0.5)
	maxCups := int(maxMl/240 + 0.5)
	return fmt.Sprintf("%.1f–%.1f ליטר מים (כ-%d–%d כוסות)",
		minMl/1000, maxMl/1000, minCups, maxCups)
}

// MacroEstimate splits a calorie total into estimated grams of protein, fat
// and carbohydrates using the fixed 15/30/55 energy split.
func MacroEstimate(totalCalories int) (protein, fat, carbs float64) {
	t := float64(totalCalories)
	return t * 0.15 / 4, t * 0.30 / 9, t * 0.55 / 4
}
