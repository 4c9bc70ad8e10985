// internal/domain/plan.go
package domain

import (
	"time"
)

// PlanDay is one training day of a weekly plan.
type PlanDay struct {
	Day       string   `bson:"day" json:"day" yaml:"day"`                   // Display label, e.g. "Monday"
	Exercises []string `bson:"exercises" json:"exercises" yaml:"exercises"` // Free-text instructions, e.g. "Squat 3x12"
}

// Plan is a generated weekly workout plan.
// ID and CreatedAt are always assigned by the service, never by the model.
type Plan struct {
	ID        string    `bson:"_id" json:"id" yaml:"id"`
	Summary   string    `bson:"summary" json:"summary" yaml:"summary"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt" yaml:"createdAt"`
	Week      []PlanDay `bson:"week" json:"week" yaml:"week"`
}

// Clone returns a deep copy of the plan. Nil and empty slices are preserved as they are.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Week != nil {
		cp.Week = make([]PlanDay, len(p.Week))
		for i, d := range p.Week {
			cp.Week[i] = PlanDay{Day: d.Day}
			if d.Exercises != nil {
				cp.Week[i].Exercises = append(make([]string, 0, len(d.Exercises)), d.Exercises...)
			}
		}
	}
	return &cp
}
