package flow

import (
	"fmt"
	"strings"

	"github.com/calorico-bot/calorico/internal/models"
	"github.com/calorico-bot/calorico/internal/nutrition"
)

// steps is the questionnaire transition table. Branching decisions
// (goal, activity type) live in the apply functions, so the table stays
// the single place the routing can be read from.
var steps = map[models.StateType]step{

	models.StateName: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "היי! אני קלוריקו, העוזר התזונתי שלך 🥗\nבוא/י נכיר - איך קוראים לך?"}
		},
		apply: func(sess *models.Session, input string) outcome {
			if input == "" {
				return outcome{reject: "אשמח לדעת איך לקרוא לך :)"}
			}
			sess.Profile.Name = input
			return outcome{next: models.StateGender}
		},
	},

	models.StateGender: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{
				Text:    fmt.Sprintf("נעים מאוד, %s! מה המגדר שלך?", sess.Profile.Name),
				Options: genderOptions,
			}
		},
		apply: func(sess *models.Session, input string) outcome {
			g, ok := genderByLabel[input]
			if !ok {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.Gender = g
			return outcome{next: models.StateAge}
		},
	},

	models.StateAge: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: gendered(&sess.Profile,
				"בן כמה אתה?",
				"בת כמה את?",
				"מה הגיל שלך?")}
		},
		apply: func(sess *models.Session, input string) outcome {
			n, ok := parseIntIn(input, models.MinAge, models.MaxAge)
			if !ok {
				return outcome{reject: fmt.Sprintf("אנא הזן/הזיני גיל תקין (%d-%d).", models.MinAge, models.MaxAge)}
			}
			sess.Profile.Age = n
			return outcome{next: models.StateHeight}
		},
	},

	models.StateHeight: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "מה הגובה שלך בסנטימטרים?"}
		},
		apply: func(sess *models.Session, input string) outcome {
			f, ok := parseFloatIn(input, models.MinHeightCm, models.MaxHeightCm)
			if !ok {
				return outcome{reject: fmt.Sprintf("אנא הזן/הזיני גובה תקין בס\"מ (%d-%d).", models.MinHeightCm, models.MaxHeightCm)}
			}
			sess.Profile.HeightCm = f
			return outcome{next: models.StateWeight}
		},
	},

	models.StateWeight: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "מה המשקל שלך בקילוגרמים?"}
		},
		apply: func(sess *models.Session, input string) outcome {
			f, ok := parseFloatIn(input, models.MinWeightKg, models.MaxWeightKg)
			if !ok {
				return outcome{reject: fmt.Sprintf("אנא הזן/הזיני משקל תקין בק\"ג (%d-%d).", models.MinWeightKg, models.MaxWeightKg)}
			}
			sess.Profile.WeightKg = f
			return outcome{next: models.StateGoal}
		},
	},

	models.StateGoal: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "מה המטרה שלך?", Options: goalOptions}
		},
		apply: func(sess *models.Session, input string) outcome {
			g, ok := goalByLabel[input]
			if !ok {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.Goal = g
			if g == models.GoalBodyFatLoss {
				return outcome{next: models.StateBodyFat}
			}
			return outcome{next: models.StateActivity}
		},
	},

	models.StateBodyFat: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "מה אחוז השומן הנוכחי שלך? (אם אינך יודע/ת במדויק, הערכה זה בסדר)"}
		},
		apply: func(sess *models.Session, input string) outcome {
			f, ok := parseFloatIn(input, models.MinBodyFat, models.MaxBodyFat)
			if !ok {
				return outcome{reject: fmt.Sprintf("אנא הזן/הזיני אחוז שומן בין %d ל-%d.", models.MinBodyFat, models.MaxBodyFat)}
			}
			sess.Profile.BodyFatPct = f
			return outcome{next: models.StateBodyFatTarget}
		},
	},

	models.StateBodyFatTarget: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "לאיזה אחוז שומן היית רוצה להגיע?"}
		},
		apply: func(sess *models.Session, input string) outcome {
			f, ok := parseFloatIn(input, models.MinBodyFat, models.MaxBodyFat)
			if !ok {
				return outcome{reject: fmt.Sprintf("אנא הזן/הזיני אחוז שומן בין %d ל-%d.", models.MinBodyFat, models.MaxBodyFat)}
			}
			if f >= sess.Profile.BodyFatPct {
				return outcome{reject: "אחוז השומן המבוקש צריך להיות נמוך מהאחוז הנוכחי."}
			}
			sess.Profile.BodyFatTargetPct = f
			return outcome{next: models.StateActivity}
		},
	},

	models.StateActivity: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{
				Text: gendered(&sess.Profile,
					"האם אתה עושה פעילות גופנית?",
					"האם את עושה פעילות גופנית?",
					"האם את/ה עושה פעילות גופנית?"),
				Options: []string{btnYes, btnNo},
			}
		},
		apply: func(sess *models.Session, input string) outcome {
			switch input {
			case btnYes:
				sess.Profile.DoesActivity = true
				return outcome{next: models.StateActivityType}
			case btnNo:
				sess.Profile.DoesActivity = false
				sess.Profile.ActivityType = models.ActivityNone
				return outcome{next: models.StateDiet}
			}
			return outcome{reject: msgChooseFromMenu}
		},
	},

	models.StateActivityType: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "איזה סוג פעילות?", Options: activityTypeOptions}
		},
		apply: func(sess *models.Session, input string) outcome {
			t, ok := activityTypeByLabel[input]
			if !ok {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.ActivityType = t
			switch t {
			case models.ActivityNone:
				sess.Profile.DoesActivity = false
				return outcome{next: models.StateDiet}
			case models.ActivityLightWalk:
				return outcome{next: models.StateDiet}
			case models.ActivityMixed:
				return outcome{next: models.StateMixedActivities}
			}
			return outcome{next: models.StateActivityFrequency}
		},
	},

	models.StateActivityFrequency: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "כמה פעמים בשבוע?", Options: frequencyOptions}
		},
		apply: func(sess *models.Session, input string) outcome {
			if !contains(frequencyOptions, input) {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.ActivityFrequency = input
			return outcome{next: models.StateActivityDuration}
		},
	},

	models.StateActivityDuration: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "כמה זמן נמשך כל אימון?", Options: durationOptions}
		},
		apply: func(sess *models.Session, input string) outcome {
			if !contains(durationOptions, input) {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.ActivityDuration = input
			switch sess.Profile.ActivityType {
			case models.ActivityCardio:
				return outcome{next: models.StateCardioGoal}
			case models.ActivityStrength, models.ActivityHIIT:
				return outcome{next: models.StateTrainingTime}
			}
			// yoga / pilates
			return outcome{next: models.StateDiet}
		},
	},

	models.StateTrainingTime: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "באיזו שעה ביום את/ה בדרך כלל מתאמן/ת?", Options: trainingTimeOptions}
		},
		apply: func(sess *models.Session, input string) outcome {
			if !contains(trainingTimeOptions, input) {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.TrainingTime = input
			return outcome{next: models.StateStrengthGoal}
		},
	},

	models.StateCardioGoal: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "מה המטרה של האימונים האירוביים?", Options: cardioGoalOptions}
		},
		apply: func(sess *models.Session, input string) outcome {
			if !contains(cardioGoalOptions, input) {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.CardioGoal = input
			return outcome{next: models.StateDiet}
		},
	},

	models.StateStrengthGoal: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "מה המטרה של אימוני הכוח?", Options: strengthGoalOptions}
		},
		apply: func(sess *models.Session, input string) outcome {
			if !contains(strengthGoalOptions, input) {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.StrengthGoal = input
			return outcome{next: models.StateSupplements}
		},
	},

	models.StateSupplements: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{
				Text:    "האם את/ה לוקח/ת תוספי תזונה?",
				Options: []string{btnYes, btnNo},
			}
		},
		apply: func(sess *models.Session, input string) outcome {
			switch input {
			case btnYes:
				sess.Profile.TakesSupplements = true
				return outcome{next: models.StateSupplementTypes}
			case btnNo:
				sess.Profile.TakesSupplements = false
				return outcome{next: models.StateLimitations}
			}
			return outcome{reject: msgChooseFromMenu}
		},
	},

	models.StateSupplementTypes: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "אילו תוספים? אפשר לפרט בחופשיות.\nלדוגמה: " + strings.Join(supplementOptions[:4], ", ")}
		},
		apply: func(sess *models.Session, input string) outcome {
			if input == "" {
				return outcome{reject: "אנא פרט/י אילו תוספים, או כתוב/כתבי \"אחר\"."}
			}
			var found []string
			for _, s := range supplementOptions {
				if strings.Contains(input, s) {
					found = append(found, s)
				}
			}
			if len(found) == 0 {
				found = []string{input}
			}
			sess.Profile.SupplementTypes = found
			return outcome{next: models.StateLimitations}
		},
	},

	models.StateLimitations: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "האם יש מגבלות רפואיות או פציעות שכדאי שאדע עליהן? אם אין, כתוב/כתבי \"אין\"."}
		},
		apply: func(sess *models.Session, input string) outcome {
			if input == "" {
				return outcome{reject: "אפשר לכתוב \"אין\" אם אין מגבלות."}
			}
			if isNoneAnswer(input) {
				sess.Profile.Limitations = models.NoLimitations
			} else {
				sess.Profile.Limitations = input
			}
			return outcome{next: models.StateDiet}
		},
	},

	models.StateMixedActivities: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{
				Text:    "אילו פעילויות את/ה משלב/ת? אפשר לבחור כמה, ואז ללחוץ \"" + btnContinue + "\".",
				Options: toggleOptions(sess, mixedActivityOptions, btnContinue),
			}
		},
		apply: func(sess *models.Session, input string) outcome {
			if input == btnContinue {
				chosen := selectedList(sess, mixedActivityOptions)
				if len(chosen) == 0 {
					return outcome{reject: "אנא בחר/י לפחות פעילות אחת."}
				}
				sess.Profile.MixedActivities = chosen
				return outcome{next: models.StateMixedFrequency}
			}
			if !applyToggle(sess, mixedActivityOptions, input) {
				return outcome{reject: msgChooseFromMenu}
			}
			return outcome{next: sess.State}
		},
	},

	models.StateMixedFrequency: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "כמה פעמים בשבוע בסך הכול?", Options: frequencyOptions}
		},
		apply: func(sess *models.Session, input string) outcome {
			if !contains(frequencyOptions, input) {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.MixedFrequency = input
			return outcome{next: models.StateMixedDuration}
		},
	},

	models.StateMixedDuration: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "כמה זמן נמשך אימון ממוצע?", Options: durationOptions}
		},
		apply: func(sess *models.Session, input string) outcome {
			if !contains(durationOptions, input) {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.MixedDuration = input
			return outcome{next: models.StateMixedMenuAdapt}
		},
	},

	models.StateMixedMenuAdapt: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{
				Text:    "האם להתאים את התפריט לימי האימון?",
				Options: []string{btnYes, btnNo},
			}
		},
		apply: func(sess *models.Session, input string) outcome {
			switch input {
			case btnYes:
				sess.Profile.MenuAdaptation = true
				return outcome{next: models.StateDiet}
			case btnNo:
				sess.Profile.MenuAdaptation = false
				return outcome{next: models.StateDiet}
			}
			return outcome{reject: msgChooseFromMenu}
		},
	},

	models.StateDiet: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{
				Text:    "יש העדפות תזונה? אפשר לבחור כמה, ואז ללחוץ \"" + btnDietDone + "\".",
				Options: toggleOptions(sess, dietOptions, btnDietDone),
			}
		},
		apply: func(sess *models.Session, input string) outcome {
			if input == btnDietDone {
				chosen := selectedList(sess, dietOptions)
				if len(chosen) == 0 {
					chosen = []string{models.NoDietPreference}
				}
				sess.Profile.DietPreferences = chosen
				sess.Profile.CalorieBudget = nutrition.Budget(&sess.Profile)
				return outcome{next: models.StateAllergies}
			}
			if !applyToggle(sess, dietOptions, input) {
				return outcome{reject: msgChooseFromMenu}
			}
			return outcome{next: sess.State}
		},
	},

	models.StateAllergies: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{Text: "האם יש לך אלרגיות למזון? אם אין, כתוב/כתבי \"אין\"."}
		},
		apply: func(sess *models.Session, input string) outcome {
			if input == "" {
				return outcome{reject: "אפשר לכתוב \"אין\" אם אין אלרגיות."}
			}
			if isNoneAnswer(input) {
				sess.Profile.Allergies = []string{models.NoAllergies}
				return outcome{next: models.StateWaterOptIn}
			}
			sess.Profile.Allergies = addAllergens(sess.Profile.Allergies, input)
			return outcome{next: models.StateAllergiesMore}
		},
	},

	models.StateAllergiesMore: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{
				Text: fmt.Sprintf("רשמתי: %s.\nיש אלרגיות נוספות?",
					strings.Join(sess.Profile.Allergies, ", ")),
				Options: []string{btnNoMoreAllergies},
			}
		},
		apply: func(sess *models.Session, input string) outcome {
			if input == btnNoMoreAllergies || isNoneAnswer(input) {
				return outcome{next: models.StateWaterOptIn}
			}
			if input == "" {
				return outcome{reject: "אפשר להוסיף אלרגיה או ללחוץ \"" + btnNoMoreAllergies + "\"."}
			}
			sess.Profile.Allergies = addAllergens(sess.Profile.Allergies, input)
			return outcome{next: sess.State}
		},
	},

	models.StateWaterOptIn: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{
				Text:    "כמעט סיימנו! רוצה שאזכיר לך לשתות מים במהלך היום?",
				Options: []string{btnWaterYes, btnWaterNo},
			}
		},
		apply: func(sess *models.Session, input string) outcome {
			switch input {
			case btnWaterYes:
				sess.Profile.WaterReminderOptIn = true
			case btnWaterNo:
				sess.Profile.WaterReminderOptIn = false
			default:
				return outcome{reject: msgChooseFromMenu}
			}
			return outcome{next: models.StateMenuSchedule}
		},
	},

	models.StateMenuSchedule: {
		prompt: func(sess *models.Session) Prompt {
			return Prompt{
				Text:    "ולסיום, באיזו שעה בבוקר לשלוח לך תפריט יומי מותאם?",
				Options: menuHourOptions,
			}
		},
		apply: func(sess *models.Session, input string) outcome {
			hour, ok := parseMenuHour(input)
			if !ok {
				return outcome{reject: msgChooseFromMenu}
			}
			sess.Profile.MenuDeliveryHour = hour
			return outcome{next: models.StateDone, notices: completionNotices(sess)}
		},
	},
}

func contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}

// parseMenuHour accepts "HH:00" within the allowed morning window.
func parseMenuHour(input string) (int, bool) {
	for i, o := range menuHourOptions {
		if o == input {
			return models.MinMenuHour + i, true
		}
	}
	return 0, false
}

// addAllergens scans a free-text answer for known allergens and merges
// them into the list. Unrecognized text is kept verbatim so nothing the
// user reported is silently dropped.
func addAllergens(current []string, input string) []string {
	have := make(map[string]bool, len(current))
	for _, a := range current {
		have[a] = true
	}
	found := false
	for _, a := range knownAllergens {
		if strings.Contains(input, a) && !have[a] {
			current = append(current, a)
			have[a] = true
			found = true
		}
	}
	if !found && !have[input] {
		current = append(current, input)
	}
	return current
}
