// Package format cleans model output and renders it for transport.
package format

import "strings"

// roleLabels are speaker prefixes models sometimes echo back at the start
// of a reply.
var roleLabels = []string{"BodyBae:", "Assistant:", "AI:"}

// PreprocessAssistantText normalizes LLM output.
// Performs basic text cleanup for better readability.
func PreprocessAssistantText(text string) string {
	if text == "" {
		return text
	}

	// Replace curly quotes (helps readability)
	text = strings.NewReplacer(
		"“", "\"", // "
		"”", "\"", // "
		"‘", "'", // '
		"’", "'", // '
	).Replace(text)

	return text
}

// StripPromptEcho removes prompt-echo artifacts from a reply: a verbatim
// prompt prefix, leading role labels, and any continuation of the
// conversation transcript the model may append after its own turn.
func StripPromptEcho(reply, prompt string) string {
	reply = strings.TrimSpace(reply)
	if prompt != "" {
		reply = strings.TrimSpace(strings.TrimPrefix(reply, prompt))
	}
	for _, label := range roleLabels {
		reply = strings.TrimSpace(strings.TrimPrefix(reply, label))
	}
	if idx := strings.Index(reply, "\nUser:"); idx != -1 {
		reply = strings.TrimSpace(reply[:idx])
	}
	return reply
}
