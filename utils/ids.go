package utils

import "github.com/google/uuid"

// GenerateUserID creates a short opaque user identifier from a UUID v4.
func GenerateUserID() string {
	return uuid.New().String()[:8]
}

// GenerateLogID creates a unique progress log identifier using UUID v4.
func GenerateLogID() string {
	return uuid.New().String()
}
