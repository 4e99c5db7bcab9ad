// Package menu builds the Hebrew prompts sent to the generation service
// for daily menus, pantry-based suggestions, and nutrition questions.
package menu

import (
	"fmt"
	"strings"

	"github.com/calorico-bot/calorico/internal/models"
	"github.com/calorico-bot/calorico/internal/nutrition"
)

// profileLines renders the profile facts every prompt opens with.
func profileLines(p *models.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "פרטי המשתמש:\n")
	fmt.Fprintf(&b, "- שם: %s\n", p.Name)
	fmt.Fprintf(&b, "- מגדר: %s, גיל: %d\n", genderLabel(p.Gender), p.Age)
	fmt.Fprintf(&b, "- גובה: %.0f ס\"מ, משקל: %.1f ק\"ג\n", p.HeightCm, p.WeightKg)
	fmt.Fprintf(&b, "- מטרה: %s\n", goalLabel(p.Goal))
	fmt.Fprintf(&b, "- תקציב קלורי יומי: %d קלוריות\n", p.CalorieBudget)
	if p.BodyFatPct > 0 {
		fmt.Fprintf(&b, "- אחוז שומן נוכחי: %.1f%%, יעד: %.1f%%\n", p.BodyFatPct, p.BodyFatTargetPct)
	}
	if p.DoesActivity {
		fmt.Fprintf(&b, "- פעילות גופנית: %s", activityLabel(p.ActivityType))
		if len(p.MixedActivities) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(p.MixedActivities, ", "))
		}
		freq := p.ActivityFrequency
		if p.ActivityType == models.ActivityMixed {
			freq = p.MixedFrequency
		}
		if freq != "" {
			fmt.Fprintf(&b, ", %s", freq)
		}
		b.WriteString("\n")
		if p.TrainingTime != "" {
			fmt.Fprintf(&b, "- זמן אימון מועדף: %s\n", p.TrainingTime)
		}
	} else {
		b.WriteString("- ללא פעילות גופנית סדירה\n")
	}
	if p.TakesSupplements && len(p.SupplementTypes) > 0 {
		fmt.Fprintf(&b, "- תוספי תזונה: %s\n", strings.Join(p.SupplementTypes, ", "))
	}
	if p.Limitations != "" && p.Limitations != models.NoLimitations {
		fmt.Fprintf(&b, "- מגבלות רפואיות: %s\n", p.Limitations)
	}
	if len(p.DietPreferences) > 0 {
		fmt.Fprintf(&b, "- העדפות תזונה: %s\n", strings.Join(p.DietPreferences, ", "))
	}
	if len(p.Allergies) > 0 && p.Allergies[0] != models.NoAllergies {
		fmt.Fprintf(&b, "- אלרגיות (חובה להימנע!): %s\n", strings.Join(p.Allergies, ", "))
	}
	return b.String()
}

// DailyMenuPrompt asks for a full day's menu fitted to the profile.
func DailyMenuPrompt(p *models.Profile) string {
	var b strings.Builder
	b.WriteString(profileLines(p))
	b.WriteString("\nבנה תפריט יומי מלא (בוקר, ביניים, צהריים, ביניים, ערב) ")
	fmt.Fprintf(&b, "שמסתכם בסביבות %d קלוריות.\n", p.CalorieBudget)
	b.WriteString("לכל ארוחה ציין את המנות, כמויות משוערות ומספר קלוריות.\n")
	b.WriteString("אם נכלל קינוח, הקפד שלא יעלה על 150 קלוריות.\n")
	if p.MenuAdaptation && p.TrainingTime != "" {
		fmt.Fprintf(&b, "התאם את תזמון הארוחות לאימון בשעות: %s.\n", p.TrainingTime)
	}
	b.WriteString("סיים בטיפ קצר אחד ליום טוב יותר.")
	return b.String()
}

// PantryPrompt asks for meal ideas constrained to what the user has at
// home.
func PantryPrompt(p *models.Profile, pantry string) string {
	var b strings.Builder
	b.WriteString(profileLines(p))
	fmt.Fprintf(&b, "\nהמצרכים שיש למשתמש בבית: %s\n", strings.TrimSpace(pantry))
	b.WriteString("הצע 2-3 ארוחות שאפשר להכין רק מהמצרכים האלה, ")
	b.WriteString("עם הערכת קלוריות לכל ארוחה. אל תציע מצרכים שאין ברשימה.")
	return b.String()
}

// QuestionPrompt wraps a free-text nutrition question with the profile
// and the current state of the day's ledger, so answers account for
// what was already eaten.
func QuestionPrompt(p *models.Profile, ledger *models.DailyLedger, question string) string {
	var b strings.Builder
	b.WriteString(profileLines(p))
	total := ledger.Total()
	fmt.Fprintf(&b, "\nמצב היום: נאכלו עד כה %d קלוריות, נותרו %d מתוך התקציב.\n",
		total, ledger.Remaining(p.CalorieBudget))
	if len(ledger.Entries) > 0 {
		b.WriteString("מה שנאכל היום:\n")
		for _, e := range ledger.Entries {
			fmt.Fprintf(&b, "- %s (%d קלוריות)\n", e.Description, e.Calories)
		}
	}
	fmt.Fprintf(&b, "\nשאלת המשתמש: %s\n", strings.TrimSpace(question))
	b.WriteString("ענה תשובה קצרה ומעשית בהתחשב בנתונים למעלה.")
	return b.String()
}

// DailySummary renders the end-of-day recap sent when the user finishes
// the day, including the estimated macro split.
func DailySummary(p *models.Profile, ledger *models.DailyLedger) string {
	var b strings.Builder
	total := ledger.Total()
	fmt.Fprintf(&b, "סיכום היום של %s 🌙\n\n", p.Name)
	if len(ledger.Entries) == 0 {
		b.WriteString("לא נרשמו ארוחות היום.\n")
	} else {
		for _, e := range ledger.Entries {
			fmt.Fprintf(&b, "• %s - %d קלוריות\n", e.Description, e.Calories)
		}
	}
	fmt.Fprintf(&b, "\nסה\"כ: %d מתוך %d קלוריות", total, p.CalorieBudget)
	remaining := ledger.Remaining(p.CalorieBudget)
	if remaining >= 0 {
		fmt.Fprintf(&b, " (נותרו %d).\n", remaining)
	} else {
		fmt.Fprintf(&b, " (חריגה של %d).\n", -remaining)
	}
	protein, fat, carbs := nutrition.MacroEstimate(total)
	fmt.Fprintf(&b, "הערכת פיזור: חלבון ~%.0f גרם, שומן ~%.0f גרם, פחמימות ~%.0f גרם.\n",
		protein, fat, carbs)
	b.WriteString("\nלילה טוב! מחר מתחילים יום חדש עם תקציב מלא.")
	return b.String()
}

func genderLabel(g models.Gender) string {
	switch g {
	case models.GenderMale:
		return "זכר"
	case models.GenderFemale:
		return "נקבה"
	default:
		return "אחר"
	}
}

func goalLabel(g models.Goal) string {
	switch g {
	case models.GoalWeightLoss:
		return "ירידה במשקל"
	case models.GoalBodyFatLoss:
		return "ירידה באחוזי שומן"
	case models.GoalWeightGain:
		return "עלייה במשקל"
	case models.GoalMuscleGain:
		return "בניית שריר"
	default:
		return "שמירה על משקל"
	}
}

func activityLabel(t models.ActivityType) string {
	switch t {
	case models.ActivityLightWalk:
		return "הליכה קלה"
	case models.ActivityCardio:
		return "אירובי"
	case models.ActivityStrength:
		return "אימוני כוח"
	case models.ActivityHIIT:
		return "HIIT"
	case models.ActivityYoga:
		return "יוגה/פילאטיס"
	case models.ActivityMixed:
		return "משולבת"
	default:
		return "ללא"
	}
}
