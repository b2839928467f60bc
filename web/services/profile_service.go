package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"bodybae/goals"
	"bodybae/metrics"
	"bodybae/store"
	"bodybae/utils"
	"bodybae/web/types"
)

// ProfileService onboards users and serves the profile-derived views.
type ProfileService struct {
	store  store.Store
	logger *zap.Logger
}

func NewProfileService(st store.Store, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:  st,
		logger: logger,
	}
}

// Onboard validates biometrics, derives the metrics report and stores a new
// profile under a generated user id.
func (ps *ProfileService) Onboard(ctx context.Context, req types.OnboardRequest) (*types.OnboardResponse, error) {
	inputs := metrics.Inputs{
		Name:          req.Name,
		Age:           req.Age,
		Sex:           req.Sex,
		HeightCm:      req.HeightCm,
		WeightKg:      req.WeightKg,
		ActivityLevel: req.ActivityLevel,
		Goal:          req.Goal,
	}
	if err := inputs.Validate(); err != nil {
		return nil, err
	}
	report, err := metrics.Compute(inputs)
	if err != nil {
		return nil, err
	}

	profile := &store.Profile{
		ID:             utils.GenerateUserID(),
		Name:           inputs.Name,
		Age:            inputs.Age,
		Sex:            inputs.Sex,
		HeightCm:       inputs.HeightCm,
		WeightKg:       inputs.WeightKg,
		ActivityLevel:  inputs.ActivityLevel,
		Goal:           inputs.Goal,
		BMI:            report.BMI,
		BMICategory:    report.BMICategory,
		BMR:            report.BMR,
		TDEE:           report.TDEE,
		ProteinTargetG: report.ProteinTargetG,
		WaterTargetML:  report.WaterTargetML,
		CreatedAt:      time.Now().UTC(),
	}
	if err := ps.store.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}

	ps.logger.Info("User onboarded",
		zap.String("user_id", profile.ID),
		zap.String("goal", profile.Goal))

	return &types.OnboardResponse{
		UserID:         profile.ID,
		BMI:            report.BMI,
		BMICategory:    report.BMICategory,
		BMIAdvice:      report.BMIAdvice,
		BMR:            report.BMR,
		TDEE:           report.TDEE,
		ProteinTargetG: report.ProteinTargetG,
		WaterTargetML:  report.WaterTargetML,
		Message: fmt.Sprintf("Welcome %s! Your BMI is %.1f (%s). Your daily calorie needs are approximately %d calories.",
			profile.Name, report.BMI, report.BMICategory, report.TDEE),
	}, nil
}

// Profile returns the stored profile with its derived metrics.
func (ps *ProfileService) Profile(ctx context.Context, userID string) (*types.ProfileResponse, error) {
	profile, err := ps.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &types.ProfileResponse{
		UserID:         profile.ID,
		Name:           profile.Name,
		Age:            profile.Age,
		Sex:            profile.Sex,
		HeightCm:       profile.HeightCm,
		WeightKg:       profile.WeightKg,
		ActivityLevel:  profile.ActivityLevel,
		Goal:           profile.Goal,
		BMI:            profile.BMI,
		BMICategory:    profile.BMICategory,
		BMR:            profile.BMR,
		TDEE:           profile.TDEE,
		ProteinTargetG: profile.ProteinTargetG,
		WaterTargetML:  profile.WaterTargetML,
	}, nil
}

// Recommendations builds the per-goal guidance bundle for a user.
func (ps *ProfileService) Recommendations(ctx context.Context, userID string) (*types.Recommendations, error) {
	profile, err := ps.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &types.Recommendations{
		Workout:   workoutRecommendations(profile.Goal),
		Nutrition: nutritionRecommendations(profile),
		Lifestyle: lifestyleRecommendations(profile),
		DailyTips: dailyTipRecommendations(),
	}, nil
}

// HealthStats assembles the full wellness snapshot for a user.
func (ps *ProfileService) HealthStats(ctx context.Context, userID string) (*types.HealthStats, error) {
	profile, err := ps.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	target, err := metrics.CalorieTargetFor(float64(profile.TDEE), profile.Goal)
	if err != nil {
		// goal types outside the calorie table fall back to maintenance
		target, _ = metrics.CalorieTargetFor(float64(profile.TDEE), metrics.GoalMaintain)
	}
	idealMin, idealMax := metrics.IdealWeightRange(profile.HeightCm)
	targetKg, changeKg := metrics.WeightGoalKg(profile.WeightKg, profile.HeightCm, profile.Goal)
	estimate := goals.EstimateFor(profile.Goal)

	return &types.HealthStats{
		UserID:         profile.ID,
		BMI:            profile.BMI,
		BMICategory:    profile.BMICategory,
		BMR:            profile.BMR,
		TDEE:           profile.TDEE,
		CalorieTarget:  target,
		ProteinTargetG: profile.ProteinTargetG,
		WaterTargetML:  profile.WaterTargetML,
		IdealWeightMin: idealMin,
		IdealWeightMax: idealMax,
		WeightGoal: types.WeightGoal{
			CurrentKg: profile.WeightKg,
			TargetKg:  targetKg,
			ChangeKg:  changeKg,
		},
		WeeklyTargets: metrics.WeeklyTargetsFor(profile.Goal),
		Timeline: types.TimelineEstimate{
			Weeks:       estimate.Weeks,
			Description: estimate.Description,
		},
	}, nil
}

func workoutRecommendations(goal string) []string {
	normalized, _ := metrics.NormalizeGoal(goal)
	switch normalized {
	case metrics.GoalLoseWeight:
		return []string{
			"🏃 Aim for 150 minutes of moderate cardio weekly",
			"🏋️ Include 2-3 strength training sessions to preserve muscle",
			"🔥 Try HIIT workouts 1-2 times per week for efficient fat burning",
			"🚶 Add daily walks to increase overall activity",
		}
	case metrics.GoalGainMuscle:
		return []string{
			"🏋️ Focus on compound movements: squats, deadlifts, bench press",
			"📈 Progressive overload: gradually increase weight each week",
			"💪 Train each muscle group 2-3 times per week",
			"⏰ Rest 48-72 hours between training same muscle groups",
		}
	case "improve_endurance":
		return []string{
			"🏃 Build aerobic base with 3-4 steady-state cardio sessions",
			"⚡ Add interval training 1-2 times per week",
			"🚴 Cross-train with different activities to prevent overuse",
			"📊 Track heart rate to train in optimal zones",
		}
	default:
		return []string{}
	}
}

func nutritionRecommendations(profile *store.Profile) []string {
	calories := profile.TDEE
	if target, err := metrics.CalorieTargetFor(float64(profile.TDEE), profile.Goal); err == nil {
		calories = target.Calories
	}
	protein := int(math.Round(profile.ProteinTargetG))

	return []string{
		fmt.Sprintf("🎯 Target %d calories daily for your %s goal", calories, goals.HumanizeGoal(profile.Goal)),
		fmt.Sprintf("🥩 Aim for %dg protein daily (20-30g per meal)", protein),
		"🥗 Fill half your plate with vegetables at each meal",
		"💧 Drink 8-10 glasses of water daily, more during exercise",
	}
}

func lifestyleRecommendations(profile *store.Profile) []string {
	recs := []string{}
	switch {
	case profile.Age > 50:
		recs = append(recs,
			"🦴 Include weight-bearing exercises for bone health",
			"🧘 Add balance and flexibility training",
			"👥 Consider group fitness classes for social support",
		)
	case profile.Age < 25:
		recs = append(recs,
			"🏃 Take advantage of higher recovery capacity",
			"📚 Learn proper form and technique early",
			"🎯 Focus on building lifelong healthy habits",
		)
	}
	if strings.Contains(profile.ActivityLevel, "sedentary") {
		recs = append(recs,
			"⏰ Start with 10-15 minute walks daily",
			"📱 Set hourly reminders to move",
			"🪑 Consider a standing desk if you work sitting",
		)
	}
	return recs
}

func dailyTipRecommendations() []string {
	return []string{
		"😴 Aim for 7-9 hours of sleep for optimal recovery",
		"🍎 Plan your meals ahead to stay on track with nutrition",
		"📊 Track your progress weekly, not daily",
		"🎉 Celebrate small wins along your journey!",
	}
}
