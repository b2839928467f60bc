package rag

import (
	"fmt"
	"hash/fnv"
	"strings"

	"bodybae/metrics"
)

// fallbackBucket pairs trigger keywords with canned replies. {name} is
// replaced with the user's name at lookup time.
type fallbackBucket struct {
	key       string
	keywords  []string
	responses []string
}

// fallbackBuckets are checked in order; the first keyword hit wins.
var fallbackBuckets = []fallbackBucket{
	{
		key:      "weight_loss",
		keywords: []string{"weight", "lose", "fat", "diet"},
		responses: []string{
			"Hi {name}! For weight loss, focus on creating a sustainable caloric deficit of 500-750 calories daily. This leads to healthy weight loss of 1-2 pounds per week.",
			"Great question, {name}! Combine cardio exercises with strength training for optimal fat loss while preserving muscle mass. Aim for 150 minutes of moderate cardio weekly.",
			"Remember {name}, weight loss is 80% diet and 20% exercise. Focus on whole foods, lean proteins, and plenty of vegetables. Stay consistent!",
		},
	},
	{
		key:      "muscle_building",
		keywords: []string{"muscle", "gain", "bulk", "strength"},
		responses: []string{
			"Hey {name}! For muscle building, progressive overload is key. Gradually increase weights or reps each week. Aim for 0.7-1g protein per pound of body weight.",
			"Building muscle requires consistency, {name}! Train each muscle group 2-3 times per week with compound movements like squats, deadlifts, and bench press.",
			"Great focus, {name}! Remember the three pillars of muscle growth: training stimulus, adequate protein, and sufficient recovery. Get 7-9 hours of sleep!",
		},
	},
	{
		key:      "nutrition",
		keywords: []string{"eat", "food", "nutrition", "meal", "protein"},
		responses: []string{
			"{name}, balanced nutrition is crucial! Include lean proteins, complex carbs, healthy fats, and plenty of vegetables in your meals.",
			"Good question, {name}! For optimal nutrition, eat protein with every meal, stay hydrated with 8-10 glasses of water daily, and don't skip meals.",
			"Nutrition tip for you, {name}: Prep meals in advance to stay on track. Focus on whole, unprocessed foods for 80% of your diet.",
		},
	},
	{
		key:      "exercise",
		keywords: []string{"workout", "exercise", "train", "gym"},
		responses: []string{
			"{name}, a balanced workout routine should include both cardio and strength training. Start with 3-4 days per week and gradually increase.",
			"Great to see you interested in exercise, {name}! Mix up your workouts to prevent boredom: try weights, bodyweight exercises, yoga, or sports.",
			"Exercise tip, {name}: Always warm up before workouts and cool down after. This prevents injury and improves recovery.",
		},
	},
	{
		key:      "motivation",
		keywords: []string{"motivat", "help", "stuck", "difficult", "hard"},
		responses: []string{
			"I hear you, {name}! Remember, every small step counts. Focus on progress, not perfection. You've got this! What specific challenge can I help you with?",
		},
	},
}

var generalFallbackResponses = []string{
	"Hi {name}! I'm here to help with your fitness journey. What specific aspect would you like to focus on - nutrition, exercise, or goal planning?",
	"Great to chat with you, {name}! Whether it's weight loss, muscle building, or general fitness, I'm here to guide you. What's on your mind?",
	"Hey {name}! Your health journey is unique. Tell me more about what you'd like to achieve, and I'll provide personalized advice.",
}

// FallbackResponse picks a canned reply for a message when retrieval or
// generation is unavailable. The same message always maps to the same reply
// so retries look stable.
func FallbackResponse(message, name, goal string) string {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	lower := strings.ToLower(message)
	normalizedGoal, _ := metrics.NormalizeGoal(goal)

	for _, bucket := range fallbackBuckets {
		if !containsAny(lower, bucket.keywords) {
			continue
		}
		reply := strings.ReplaceAll(pickResponse(bucket.responses, message), "{name}", name)
		if bucket.key == "weight_loss" && goal != "" && normalizedGoal == metrics.GoalLoseWeight {
			reply += " I see weight loss is one of your goals - you're on the right track!"
		}
		return reply
	}

	reply := strings.ReplaceAll(pickResponse(generalFallbackResponses, message), "{name}", name)
	if goal != "" {
		reply += fmt.Sprintf(" I see you're focused on %s - let's work on that together!", humanizeGoal(goal))
	}
	return reply
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// pickResponse hashes the message so the choice is deterministic.
func pickResponse(responses []string, message string) string {
	h := fnv.New32a()
	h.Write([]byte(message))
	return responses[int(h.Sum32())%len(responses)]
}

func humanizeGoal(goal string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(goal)), "_", " ")
}
