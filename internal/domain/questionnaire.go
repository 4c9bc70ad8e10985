// internal/domain/questionnaire.go
package domain

import (
	"errors"
	"fmt"
)

// Level is the self-reported fitness level.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Goal is the main training goal.
type Goal string

const (
	GoalFatLoss     Goal = "fat_loss"
	GoalMuscleGain  Goal = "muscle_gain"
	GoalPerformance Goal = "performance"
)

// Questionnaire bounds.
const (
	MinAge         = 16
	MaxAge         = 100
	MinDaysPerWeek = 1
	MaxDaysPerWeek = 7
)

// ErrInvalidQuestionnaire is returned when caller supplied answers are out of range.
var ErrInvalidQuestionnaire = errors.New("invalid questionnaire")

// Questionnaire holds the user's answers used to build a plan.
type Questionnaire struct {
	Age         int      `json:"age"`
	Level       Level    `json:"level"`
	Goal        Goal     `json:"goal"`
	DaysPerWeek int      `json:"daysPerWeek"`
	Constraints string   `json:"constraints,omitempty"`
	Height      *float64 `json:"height,omitempty"` // cm, not range checked
	Weight      *float64 `json:"weight,omitempty"` // kg, not range checked
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Valid reports whether g is one of the known goals.
func (g Goal) Valid() bool {
	switch g {
	case GoalFatLoss, GoalMuscleGain, GoalPerformance:
		return true
	}
	return false
}

// Validate checks the shape and ranges of the answers. The returned error wraps
// ErrInvalidQuestionnaire and names the first offending field.
func (q Questionnaire) Validate() error {
	switch {
	case q.Age < MinAge || q.Age > MaxAge:
		return fmt.Errorf("%w: age must be between %d and %d", ErrInvalidQuestionnaire, MinAge, MaxAge)
	case !q.Level.Valid():
		return fmt.Errorf("%w: level must be one of beginner, intermediate, advanced", ErrInvalidQuestionnaire)
	case !q.Goal.Valid():
		return fmt.Errorf("%w: goal must be one of fat_loss, muscle_gain, performance", ErrInvalidQuestionnaire)
	case q.DaysPerWeek < MinDaysPerWeek || q.DaysPerWeek > MaxDaysPerWeek:
		return fmt.Errorf("%w: daysPerWeek must be between %d and %d", ErrInvalidQuestionnaire, MinDaysPerWeek, MaxDaysPerWeek)
	}
	return nil
}
