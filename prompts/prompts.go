package prompts

import _ "embed"

// Embedded prompt files

//go:embed coach_system.txt
var coachSystem string

func CoachSystem() string { return coachSystem }
