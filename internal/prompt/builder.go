// Package prompt turns a questionnaire into the instruction text sent to the model.
package prompt

import (
	"alcyxob/fitplan/internal/domain"
	"fmt"
	"strconv"
	"strings"
)

// Exercise count range requested for each training day.
const (
	MinExercisesPerDay = 4
	MaxExercisesPerDay = 6
)

const notSpecified = "not specified"

var levelDescriptions = map[domain.Level]string{
	domain.LevelBeginner:     "beginner (little or no exercise experience)",
	domain.LevelIntermediate: "intermediate (a few months of regular training)",
	domain.LevelAdvanced:     "advanced (years of consistent training)",
}

var goalDescriptions = map[domain.Goal]string{
	domain.GoalFatLoss:     "weight loss and body fat reduction",
	domain.GoalMuscleGain:  "muscle mass gain",
	domain.GoalPerformance: "athletic performance and strength",
}

// responseContract is appended verbatim to every prompt.
const responseContract = `REQUIRED RESPONSE FORMAT (reply ONLY with this valid JSON):
{
  "summary": "Short plan description (max 100 characters)",
  "week": [
    {
      "day": "Day name",
      "exercises": [
        "Exercise 1 with details (e.g. Squat 3x12)",
        "Exercise 2 with details",
        "Exercise 3 with details",
        "Exercise 4 with details"
      ]
    }
  ]
}

IMPORTANT: Reply EXCLUSIVELY with the requested JSON object, with no text before or after it and no markdown code fences. The JSON must be valid and parseable.`

// Build renders the instruction text for q. It never fails: unknown level or
// goal codes are printed as they are.
func Build(q domain.Questionnaire) string {
	level := describe(levelDescriptions, q.Level)
	goal := describe(goalDescriptions, q.Goal)
	constraints := strings.TrimSpace(q.Constraints)

	var b strings.Builder
	b.WriteString("Create a personalized workout plan for a user with the following profile:\n\n")

	b.WriteString("USER DATA:\n")
	fmt.Fprintf(&b, "- Age: %d years\n", q.Age)
	fmt.Fprintf(&b, "- Height: %s\n", measurement(q.Height, "cm"))
	fmt.Fprintf(&b, "- Weight: %s\n", measurement(q.Weight, "kg"))
	fmt.Fprintf(&b, "- Fitness level: %s\n", level)
	fmt.Fprintf(&b, "- Main goal: %s\n", goal)
	fmt.Fprintf(&b, "- Training days per week: %d\n", q.DaysPerWeek)
	fmt.Fprintf(&b, "- Constraints or limitations: %s\n\n", orNotSpecified(constraints))

	b.WriteString("SPECIFIC REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. Create a weekly plan with exactly %d training days\n", q.DaysPerWeek)
	fmt.Fprintf(&b, "2. For each day list %d-%d exercises suited to the level and goal\n", MinExercisesPerDay, MaxExercisesPerDay)
	fmt.Fprintf(&b, "3. Exercises must be appropriate for the %s level\n", q.Level)
	fmt.Fprintf(&b, "4. Take the limitations into account: %s\n", orNotSpecified(constraints))
	b.WriteString("5. Include a short description of the plan (1-2 sentences)\n\n")

	b.WriteString(responseContract)
	return b.String()
}

func describe[K ~string](table map[K]string, code K) string {
	if d, ok := table[code]; ok {
		return d
	}
	return string(code)
}

func measurement(v *float64, unit string) string {
	if v == nil || *v <= 0 {
		return notSpecified
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " " + unit
}

func orNotSpecified(s string) string {
	if s == "" {
		return notSpecified
	}
	return s
}
