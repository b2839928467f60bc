package metrics

import (
	"math"
	"strings"

	apperrors "bodybae/errors"
)

// Canonical sex values accepted by the calculator.
const (
	SexMale   = "male"
	SexFemale = "female"
)

// Canonical goal values. Display labels like "Lose Weight" normalize to these.
const (
	GoalLoseWeight = "lose_weight"
	GoalGainWeight = "gain_weight"
	GoalGainMuscle = "gain_muscle"
	GoalMaintain   = "maintain"
)

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels and is also
// used for input validation during onboarding.
var activityMultipliers = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"extremely_active":  1.9,
}

// activityAliases accepts the short level names used by older clients.
var activityAliases = map[string]string{
	"light":    "lightly_active",
	"moderate": "moderately_active",
	"active":   "very_active",
}

// goalAliases accepts short and display-label goal spellings.
var goalAliases = map[string]string{
	"lose":            GoalLoseWeight,
	"gain":            GoalGainWeight,
	"muscle":          GoalGainMuscle,
	"maintain_weight": GoalMaintain,
}

// Inputs are the validated biometrics the calculator works from.
type Inputs struct {
	Name          string
	Age           int
	Sex           string
	HeightCm      float64
	WeightKg      float64
	ActivityLevel string
	Goal          string
}

// Report carries every derived metric for a profile, rounded the way the
// API presents them: BMI to one decimal, BMR and TDEE to whole calories.
type Report struct {
	BMI            float64
	BMICategory    string
	BMIAdvice      string
	BMR            int
	TDEE           int
	ProteinTargetG float64
	WaterTargetML  int
	IdealWeightMin float64
	IdealWeightMax float64
}

// CalorieTarget is the goal-adjusted daily calorie recommendation.
type CalorieTarget struct {
	Calories    int    `json:"calories"`
	Offset      int    `json:"offset"`
	Description string `json:"description"`
}

// WeeklyTargets are the per-week training and weight-change recommendations
// for a goal.
type WeeklyTargets struct {
	WeightChangeKg   float64 `json:"weight_change_kg"`
	Workouts         int     `json:"workouts"`
	CardioMinutes    int     `json:"cardio_minutes"`
	StrengthSessions int     `json:"strength_sessions"`
}

// NormalizeActivityLevel lowercases, resolves aliases, and reports whether
// the level is one the multiplier table knows.
func NormalizeActivityLevel(level string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if canonical, ok := activityAliases[normalized]; ok {
		normalized = canonical
	}
	_, ok := activityMultipliers[normalized]
	return normalized, ok
}

// NormalizeGoal lowercases, resolves aliases, and reports whether the goal
// is one of the canonical four. An empty goal normalizes to maintain.
func NormalizeGoal(goal string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(goal))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if normalized == "" {
		return GoalMaintain, true
	}
	if canonical, ok := goalAliases[normalized]; ok {
		normalized = canonical
	}
	switch normalized {
	case GoalLoseWeight, GoalGainWeight, GoalGainMuscle, GoalMaintain:
		return normalized, true
	}
	return normalized, false
}

// Validate checks every biometric field, normalizing sex, activity level and
// goal in place. The first violation is returned wrapped around ErrInvalidInput.
func (in *Inputs) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperrors.WrapError(apperrors.ErrInvalidInput, "name is required")
	}
	if in.Age <= 0 {
		return apperrors.WrapError(apperrors.ErrInvalidInput, "age must be positive")
	}
	in.Sex = strings.ToLower(strings.TrimSpace(in.Sex))
	if in.Sex != SexMale && in.Sex != SexFemale {
		return apperrors.WrapError(apperrors.ErrInvalidInput, "sex must be male or female")
	}
	if in.HeightCm <= 0 {
		return apperrors.WrapError(apperrors.ErrInvalidInput, "height must be positive")
	}
	if in.WeightKg <= 0 {
		return apperrors.WrapError(apperrors.ErrInvalidInput, "weight must be positive")
	}
	level, ok := NormalizeActivityLevel(in.ActivityLevel)
	if !ok {
		return apperrors.WrapErrorf(apperrors.ErrInvalidInput, "unknown activity level %q", in.ActivityLevel)
	}
	in.ActivityLevel = level
	goal, ok := NormalizeGoal(in.Goal)
	if !ok {
		return apperrors.WrapErrorf(apperrors.ErrInvalidInput, "unknown goal %q", in.Goal)
	}
	in.Goal = goal
	return nil
}

// BMI computes weight(kg) / height(m)². Height arrives in centimeters.
func BMI(weightKg, heightCm float64) float64 {
	heightM := heightCm / 100
	return weightKg / (heightM * heightM)
}

// BMICategory buckets a BMI value with boundaries at exactly 18.5, 25 and 30,
// returning the category label and its advice line.
func BMICategory(bmi float64) (category, advice string) {
	switch {
	case bmi < 18.5:
		return "Underweight", "Consider increasing caloric intake with nutritious foods."
	case bmi < 25:
		return "Normal weight", "Great job! Maintain your current healthy lifestyle."
	case bmi < 30:
		return "Overweight", "Consider a balanced diet and regular exercise routine."
	default:
		return "Obese", "Consult with healthcare professionals for personalized guidance."
	}
}

// BMR computes the Mifflin-St Jeor basal metabolic rate, unrounded.
// Male: 10w + 6.25h − 5a + 5. Female: 10w + 6.25h − 5a − 161.
func BMR(weightKg, heightCm float64, age int, sex string) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if sex == SexMale {
		return bmr + 5
	}
	return bmr - 161
}

// TDEE scales a BMR by the activity multiplier. The level must already be
// normalized; unknown levels fall back to sedentary, matching the original
// service's lenient lookup.
func TDEE(bmr float64, activityLevel string) float64 {
	mult, ok := activityMultipliers[activityLevel]
	if !ok {
		mult = activityMultipliers["sedentary"]
	}
	return bmr * mult
}

// ProteinTargetG recommends 1.6 g of protein per kg of body weight.
func ProteinTargetG(weightKg float64) float64 {
	return round1(weightKg * 1.6)
}

// WaterTargetML recommends 35 ml of water per kg of body weight.
func WaterTargetML(weightKg float64) int {
	return int(math.Round(weightKg * 35))
}

// IdealWeightRange returns the [18.5, 24.9] BMI weight band for a height.
func IdealWeightRange(heightCm float64) (minKg, maxKg float64) {
	heightM := heightCm / 100
	return round1(18.5 * heightM * heightM), round1(24.9 * heightM * heightM)
}

// CalorieTargetFor applies the goal's fixed offset to a computed TDEE.
// A TDEE must always be supplied; there is no implicit default. The weight
// loss target is floored at 1200 kcal.
func CalorieTargetFor(tdee float64, goal string) (CalorieTarget, error) {
	normalized, ok := NormalizeGoal(goal)
	if !ok {
		return CalorieTarget{}, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "unknown goal %q", goal)
	}
	if tdee <= 0 {
		return CalorieTarget{}, apperrors.WrapError(apperrors.ErrInvalidInput, "tdee must be positive")
	}
	switch normalized {
	case GoalLoseWeight:
		calories := math.Max(1200, tdee-500)
		return CalorieTarget{
			Calories:    int(math.Round(calories)),
			Offset:      -500,
			Description: "Moderate deficit for sustainable weight loss",
		}, nil
	case GoalGainWeight:
		return CalorieTarget{
			Calories:    int(math.Round(tdee + 300)),
			Offset:      300,
			Description: "Surplus to support healthy weight gain",
		}, nil
	case GoalGainMuscle:
		return CalorieTarget{
			Calories:    int(math.Round(tdee + 250)),
			Offset:      250,
			Description: "Slight surplus to support muscle growth",
		}, nil
	default:
		return CalorieTarget{
			Calories:    int(math.Round(tdee)),
			Offset:      0,
			Description: "Maintenance calories to stay at current weight",
		}, nil
	}
}

// WeeklyTargetsFor returns the weekly training recommendation for a goal.
func WeeklyTargetsFor(goal string) WeeklyTargets {
	normalized, _ := NormalizeGoal(goal)
	switch normalized {
	case GoalLoseWeight:
		return WeeklyTargets{WeightChangeKg: -0.5, Workouts: 4, CardioMinutes: 150, StrengthSessions: 2}
	case GoalGainMuscle:
		return WeeklyTargets{WeightChangeKg: 0.25, Workouts: 4, CardioMinutes: 75, StrengthSessions: 3}
	default:
		return WeeklyTargets{WeightChangeKg: 0, Workouts: 3, CardioMinutes: 150, StrengthSessions: 2}
	}
}

// WeightGoalKg derives the target weight for a goal: weight loss aims for
// BMI 22, muscle building for a modest 3 kg gain, anything else holds steady.
func WeightGoalKg(weightKg, heightCm float64, goal string) (targetKg, changeKg float64) {
	normalized, _ := NormalizeGoal(goal)
	switch normalized {
	case GoalLoseWeight:
		heightM := heightCm / 100
		target := 22 * heightM * heightM
		toLose := math.Max(0, weightKg-target)
		return round1(target), round1(-toLose)
	case GoalGainMuscle:
		return round1(weightKg + 3), 3
	default:
		return round1(weightKg), 0
	}
}

// Compute validates the inputs and derives the full metrics report.
func Compute(in Inputs) (Report, error) {
	if err := in.Validate(); err != nil {
		return Report{}, err
	}

	bmi := round1(BMI(in.WeightKg, in.HeightCm))
	category, advice := BMICategory(bmi)
	bmr := BMR(in.WeightKg, in.HeightCm, in.Age, in.Sex)
	tdee := TDEE(bmr, in.ActivityLevel)
	idealMin, idealMax := IdealWeightRange(in.HeightCm)

	return Report{
		BMI:            bmi,
		BMICategory:    category,
		BMIAdvice:      advice,
		BMR:            int(math.Round(bmr)),
		TDEE:           int(math.Round(tdee)),
		ProteinTargetG: ProteinTargetG(in.WeightKg),
		WaterTargetML:  WaterTargetML(in.WeightKg),
		IdealWeightMin: idealMin,
		IdealWeightMax: idealMax,
	}, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
