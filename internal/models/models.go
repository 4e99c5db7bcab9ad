// Package models defines the core data structures for Calorico.
//
// It includes the user profile collected by the intake questionnaire, the
// per-day food ledger, and the types shared across modules.
package models

import "errors"

// Gender is the user's gender as collected by the questionnaire.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Goal is the user's nutrition goal, a fixed set.
type Goal string

const (
	GoalWeightLoss  Goal = "weight_loss"
	GoalBodyFatLoss Goal = "body_fat_loss"
	GoalMaintain    Goal = "maintain"
	GoalWeightGain  Goal = "weight_gain"
	GoalMuscleGain  Goal = "muscle_gain"
)

// ActivityType routes the questionnaire to type-specific follow-up questions.
type ActivityType string

const (
	ActivityNone      ActivityType = "none"
	ActivityLightWalk ActivityType = "light_walk"
	ActivityCardio    ActivityType = "cardio" // fast walk / light run
	ActivityStrength  ActivityType = "strength"
	ActivityHIIT      ActivityType = "hiit"
	ActivityYoga      ActivityType = "yoga_pilates"
	ActivityMixed     ActivityType = "mixed"
)

// Validation bounds for numeric questionnaire answers.
const (
	MinAge      = 1
	MaxAge      = 120
	MinHeightCm = 50
	MaxHeightCm = 250
	MinWeightKg = 20
	MaxWeightKg = 300
	MinBodyFat  = 5
	MaxBodyFat  = 50
	MinMenuHour = 7
	MaxMenuHour = 12
)

// Sentinel values substituted when a multi-select set is left empty.
const (
	NoDietPreference = "אין העדפות מיוחדות"
	NoAllergies      = "אין"
	NoLimitations    = "אין"
)

// Error variables shared across modules.
var (
	ErrProfileIncomplete = errors.New("profile is incomplete")
	ErrNoSession         = errors.New("no open session for user")
	ErrEstimateTooLow    = errors.New("calorie estimate implausibly low")
	ErrEmptyResponse     = errors.New("empty response from generation service")
	ErrUnknownState      = errors.New("unknown questionnaire state")
)

// Profile is the validated record of user attributes and the derived calorie
// budget. CalorieBudget is a pure function of the BMR inputs and must be
// recomputed whenever any of them changes; nothing else may write it.
type Profile struct {
	UserID   int64   `json:"user_id"`
	Name     string  `json:"name"`
	Gender   Gender  `json:"gender"`
	Age      int     `json:"age"`
	HeightCm float64 `json:"height_cm"`
	WeightKg float64 `json:"weight_kg"`
	Goal     Goal    `json:"goal"`

	BodyFatPct       float64 `json:"body_fat_pct,omitempty"`        // 0 = not collected
	BodyFatTargetPct float64 `json:"body_fat_target_pct,omitempty"` // 0 = not collected

	DoesActivity      bool         `json:"does_activity"`
	ActivityType      ActivityType `json:"activity_type,omitempty"`
	ActivityFrequency string       `json:"activity_frequency,omitempty"`
	ActivityDuration  string       `json:"activity_duration,omitempty"`
	TrainingTime      string       `json:"training_time,omitempty"`
	CardioGoal        string       `json:"cardio_goal,omitempty"`
	StrengthGoal      string       `json:"strength_goal,omitempty"`
	MixedActivities   []string     `json:"mixed_activities,omitempty"`
	MixedFrequency    string       `json:"mixed_frequency,omitempty"`
	MixedDuration     string       `json:"mixed_duration,omitempty"`
	MenuAdaptation    bool         `json:"menu_adaptation,omitempty"`

	TakesSupplements bool     `json:"takes_supplements"`
	SupplementTypes  []string `json:"supplement_types,omitempty"`
	Limitations      string   `json:"limitations,omitempty"`
	DietPreferences  []string `json:"diet_preferences"`
	Allergies        []string `json:"allergies"`

	CalorieBudget int `json:"calorie_budget"`

	WaterReminderOptIn  bool `json:"water_reminder_opt_in"`
	WaterReminderActive bool `json:"water_reminder_active"`
	MenuDeliveryHour    int  `json:"menu_delivery_hour,omitempty"` // whole hour, 7..12
}

// Complete reports whether the questionnaire collected all mandatory fields.
func (p *Profile) Complete() bool {
	return p.Name != "" && p.Gender != "" && p.Age > 0 && p.HeightCm > 0 &&
		p.WeightKg > 0 && p.Goal != "" && p.CalorieBudget > 0
}

// EatenEntry is one recorded food item. Entries are owned exclusively by the
// day's ledger.
type EatenEntry struct {
	Description string `json:"description"`
	Calories    int    `json:"calories"`
	Day         string `json:"day,omitempty"` // YYYY-MM-DD, set by the store
}

// DailyLedger is the per-user, per-day append-only collection of eaten items.
// It resets at the user's "finish the day" action, not at midnight.
type DailyLedger struct {
	Entries []EatenEntry `json:"entries"`
}

// Append adds an entry to the ledger.
func (l *DailyLedger) Append(e EatenEntry) {
	l.Entries = append(l.Entries, e)
}

// Total is the sum of recorded calories.
func (l *DailyLedger) Total() int {
	total := 0
	for _, e := range l.Entries {
		total += e.Calories
	}
	return total
}

// Remaining is budget minus total. It may be negative.
func (l *DailyLedger) Remaining(budget int) int {
	return budget - l.Total()
}

// Reset empties the ledger so remaining returns to the full budget.
func (l *DailyLedger) Reset() {
	l.Entries = nil
}

// DaySummary is the closing record persisted when a user finishes the
// day: the meal list plus totals, with macros estimated from the fixed
// calorie split.
type DaySummary struct {
	Day           string   `json:"day"` // YYYY-MM-DD
	TotalCalories int      `json:"total_calories"`
	ProteinGrams  float64  `json:"protein_grams"`
	FatGrams      float64  `json:"fat_grams"`
	CarbGrams     float64  `json:"carb_grams"`
	Meals         []string `json:"meals,omitempty"`
}

// ReminderTask describes a user's recurring hydration reminder. At most one
// live task exists per user; starting while one is live is a no-op.
type ReminderTask struct {
	UserID   int64
	Interval int // minutes
	Active   bool
}
