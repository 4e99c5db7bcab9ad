// Package models defines state management structures for the intake flow.
package models

// StateType identifies a questionnaire state.
type StateType string

// Questionnaire states. They form a directed graph, not a line; routing
// between them lives in the flow package's transition table.
const (
	StateName              StateType = "NAME"
	StateGender            StateType = "GENDER"
	StateAge               StateType = "AGE"
	StateHeight            StateType = "HEIGHT"
	StateWeight            StateType = "WEIGHT"
	StateGoal              StateType = "GOAL"
	StateBodyFat           StateType = "BODY_FAT"
	StateBodyFatTarget     StateType = "BODY_FAT_TARGET"
	StateActivity          StateType = "ACTIVITY"
	StateActivityType      StateType = "ACTIVITY_TYPE"
	StateActivityFrequency StateType = "ACTIVITY_FREQUENCY"
	StateActivityDuration  StateType = "ACTIVITY_DURATION"
	StateTrainingTime      StateType = "TRAINING_TIME"
	StateCardioGoal        StateType = "CARDIO_GOAL"
	StateStrengthGoal      StateType = "STRENGTH_GOAL"
	StateSupplements       StateType = "SUPPLEMENTS"
	StateSupplementTypes   StateType = "SUPPLEMENT_TYPES"
	StateLimitations       StateType = "LIMITATIONS"
	StateMixedActivities   StateType = "MIXED_ACTIVITIES"
	StateMixedFrequency    StateType = "MIXED_FREQUENCY"
	StateMixedDuration     StateType = "MIXED_DURATION"
	StateMixedMenuAdapt    StateType = "MIXED_MENU_ADAPTATION"
	StateDiet              StateType = "DIET"
	StateAllergies         StateType = "ALLERGIES"
	StateAllergiesMore     StateType = "ALLERGIES_ADDITIONAL"
	StateWaterOptIn        StateType = "WATER_REMINDER_OPT_IN"
	StateMenuSchedule      StateType = "MENU_SCHEDULE"
	StateDone              StateType = "DONE"
)

// Session holds the transient conversation state for one user: the current
// questionnaire state, the partially filled profile, the in-progress
// multi-select set, and the day's food ledger. One session per user id.
type Session struct {
	UserID  int64
	State   StateType
	Profile Profile

	// Selected holds the in-progress multi-select toggles for the current
	// multi-select state. It is discarded when the state is left.
	Selected map[string]bool

	Ledger DailyLedger
}

// NewSession creates a session positioned at the first questionnaire state.
func NewSession(userID int64) *Session {
	return &Session{
		UserID:   userID,
		State:    StateName,
		Profile:  Profile{UserID: userID},
		Selected: make(map[string]bool),
	}
}

// InQuestionnaire reports whether the intake flow still owns inbound input.
func (s *Session) InQuestionnaire() bool {
	return s.State != StateDone
}

// ResetSelection clears the multi-select scratch set when leaving a
// multi-select state.
func (s *Session) ResetSelection() {
	s.Selected = make(map[string]bool)
}
