package flow

import "github.com/calorico-bot/calorico/internal/models"

// User-facing questionnaire texts and quick-reply option lists. The bot
// speaks Hebrew; keys and routing stay in code.

const (
	// Continue / toggle controls.
	btnDietDone        = "סיימתי בחירת העדפות"
	btnContinue        = "המשך"
	btnNoMoreAllergies = "אין אלרגיות נוספות"
	selectedMark       = " ❌"

	btnYes = "כן"
	btnNo  = "לא"

	btnWaterYes = "כן, אשמח!"
	btnWaterNo  = "לא, תודה"

	msgChooseFromMenu = "אנא בחר/י אפשרות מהתפריט למטה."
)

var genderOptions = []string{"זכר", "נקבה", "אחר"}

var genderByLabel = map[string]models.Gender{
	"זכר":  models.GenderMale,
	"נקבה": models.GenderFemale,
	"אחר":  models.GenderOther,
}

var goalOptions = []string{
	"ירידה במשקל",
	"ירידה באחוזי שומן",
	"שמירה על משקל",
	"עלייה במשקל",
	"בניית שריר",
}

var goalByLabel = map[string]models.Goal{
	"ירידה במשקל":       models.GoalWeightLoss,
	"ירידה באחוזי שומן": models.GoalBodyFatLoss,
	"שמירה על משקל":     models.GoalMaintain,
	"עלייה במשקל":       models.GoalWeightGain,
	"בניית שריר":        models.GoalMuscleGain,
}

var activityTypeOptions = []string{
	"אין פעילות",
	"הליכה קלה",
	"הליכה מהירה / ריצה קלה",
	"אימוני כוח",
	"אימוני HIIT / קרוספיט",
	"יוגה / פילאטיס",
	"שילוב של כמה סוגים",
}

var activityTypeByLabel = map[string]models.ActivityType{
	"אין פעילות":             models.ActivityNone,
	"הליכה קלה":              models.ActivityLightWalk,
	"הליכה מהירה / ריצה קלה": models.ActivityCardio,
	"אימוני כוח":             models.ActivityStrength,
	"אימוני HIIT / קרוספיט":  models.ActivityHIIT,
	"יוגה / פילאטיס":         models.ActivityYoga,
	"שילוב של כמה סוגים":     models.ActivityMixed,
}

var frequencyOptions = []string{
	"1-2 פעמים בשבוע",
	"3-4 פעמים בשבוע",
	"5-6 פעמים בשבוע",
	"כל יום",
}

var durationOptions = []string{
	"פחות מ-30 דקות",
	"30-45 דקות",
	"45-60 דקות",
	"יותר מ-60 דקות",
}

var trainingTimeOptions = []string{
	"בוקר (6:00-9:00)",
	"צהריים (12:00-14:00)",
	"אחר הצהריים (15:00-18:00)",
	"ערב (19:00-22:00)",
}

var cardioGoalOptions = []string{
	"שיפור סיבולת לב-ריאה",
	"שריפת שומן",
	"שיפור ביצועים",
	"בריאות כללית",
}

var strengthGoalOptions = []string{
	"בניית שריר",
	"חיזוק כללי",
	"שיפור כוח",
	"שיפור יציבה",
}

var supplementOptions = []string{
	"חלבון",
	"קריאטין",
	"ויטמין D",
	"אומגה 3",
	"מולטי-ויטמין",
	"BCAA",
	"גלוטמין",
	"אחר",
}

var dietOptions = []string{
	models.NoDietPreference,
	"צמחוני",
	"טבעוני",
	"קטוגני",
	"דל פחמימות",
	"דל שומן",
	"גלוטן חופשי",
	"חלב חופשי",
	"דל נתרן",
	"דל סוכר",
	"פליאו",
	"מדיטראני",
	"אחר",
}

var mixedActivityOptions = []string{
	"הליכה",
	"ריצה",
	"אימוני כוח",
	"יוגה",
	"פילאטיס",
	"שחייה",
	"רכיבה",
	"אימוני HIIT",
	"קרוספיט",
}

var menuHourOptions = []string{
	"07:00", "08:00", "09:00", "10:00", "11:00", "12:00",
}

// knownAllergens are the free-text allergens the intake auto-detects.
var knownAllergens = []string{
	"בוטנים", "אגוזים", "חלב", "גלוטן", "ביצים", "סויה",
	"דגים", "שומשום", "סלרי", "חרדל", "סולפיטים",
}

// noneWords collapse a free-text answer to the "none" sentinel.
var noneWords = []string{"אין", "לא", "ללא", "אפס", "כלום"}

// gendered picks the phrasing matching the collected gender. Before GENDER
// is answered the masculine form is used, as the original bot did.
func gendered(p *models.Profile, male, female, other string) string {
	switch p.Gender {
	case models.GenderFemale:
		return female
	case models.GenderOther:
		return other
	default:
		return male
	}
}
