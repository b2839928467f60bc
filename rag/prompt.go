package rag

import (
	"fmt"
	"strings"

	"bodybae/prompts"
	"bodybae/store"
	"bodybae/web/types"
)

// BuildMessages assembles the chat payload: a system prompt carrying the
// coach persona, the user's profile, the recent conversation and the
// retrieved knowledge, followed by the user's question.
func BuildMessages(profile *store.Profile, history []store.Turn, results []Result, question string) []types.ChatMessage {
	var b strings.Builder
	b.WriteString(prompts.CoachSystem())

	if profile != nil {
		name := profile.Name
		if name == "" {
			name = "User"
		}
		b.WriteString("\nUser Profile:\n")
		fmt.Fprintf(&b, "- Name: %s\n", name)
		fmt.Fprintf(&b, "- Age: %d\n", profile.Age)
		fmt.Fprintf(&b, "- Sex: %s\n", profile.Sex)
		fmt.Fprintf(&b, "- Weight: %.1f kg\n", profile.WeightKg)
		fmt.Fprintf(&b, "- Height: %.1f cm\n", profile.HeightCm)
		fmt.Fprintf(&b, "- BMI: %.1f (%s)\n", profile.BMI, profile.BMICategory)
		fmt.Fprintf(&b, "- Activity Level: %s\n", profile.ActivityLevel)
		if profile.Goal != "" {
			fmt.Fprintf(&b, "- Primary Goal: %s\n", profile.Goal)
		}
		fmt.Fprintf(&b, "- TDEE: %d calories/day\n", profile.TDEE)
	}

	if len(history) > 0 {
		b.WriteString("\nRecent Conversation:\n")
		for _, turn := range history {
			label := "User"
			if turn.Role == "assistant" {
				label = "BodyBae"
			}
			fmt.Fprintf(&b, "%s: %s\n", label, turn.Content)
		}
	}

	if len(results) > 0 {
		b.WriteString("\nRelevant Health Knowledge:\n")
		blocks := make([]string, 0, len(results))
		for _, result := range results {
			content := strings.TrimPrefix(result.Content, result.Topic+": ")
			blocks = append(blocks, fmt.Sprintf("Health Topic: %s\n%s", result.Topic, content))
		}
		b.WriteString(strings.Join(blocks, "\n\n"))
		b.WriteString("\n")
	}

	b.WriteString("\nProvide a helpful, personalized response as BodyBae.")

	return []types.ChatMessage{
		{Role: "system", Content: b.String()},
		{Role: "user", Content: question},
	}
}
