package main

import (
	"alcyxob/fitplan/internal/domain"
	"alcyxob/fitplan/internal/prompt"
	"alcyxob/fitplan/internal/service"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// questionnaireFlags binds the questionnaire to command-line flags.
type questionnaireFlags struct {
	age         int
	level       string
	goal        string
	days        int
	constraints string
	height      float64
	weight      float64
}

func (f *questionnaireFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.age, "age", 0, "Age in years (16-100)")
	fs.StringVar(&f.level, "level", string(domain.LevelBeginner), "Fitness level: beginner, intermediate, advanced")
	fs.StringVar(&f.goal, "goal", string(domain.GoalFatLoss), "Goal: fat_loss, muscle_gain, performance")
	fs.IntVar(&f.days, "days", 3, "Training days per week (1-7)")
	fs.StringVar(&f.constraints, "constraints", "", "Injuries, equipment or other constraints")
	fs.Float64Var(&f.height, "height", 0, "Height in cm")
	fs.Float64Var(&f.weight, "weight", 0, "Weight in kg")
}

// questionnaire builds the answers; height and weight are set only when their
// flags were given.
func (f *questionnaireFlags) questionnaire(fs *pflag.FlagSet) domain.Questionnaire {
	q := domain.Questionnaire{
		Age:         f.age,
		Level:       domain.Level(f.level),
		Goal:        domain.Goal(f.goal),
		DaysPerWeek: f.days,
		Constraints: f.constraints,
	}
	if fs.Changed("height") {
		h := f.height
		q.Height = &h
	}
	if fs.Changed("weight") {
		w := f.weight
		q.Weight = &w
	}
	return q
}

func generateCmd(root *rootOptions) *cobra.Command {
	var (
		qf     questionnaireFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one plan and print it",
		Example: `  GEMINI_API_KEY=... fitplan generate --age 30 --level beginner --goal fat_loss --days 3
  fitplan generate --age 45 --goal performance --days 4 --constraints "bad knee" --output yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("--output must be json or yaml, got %q", output)
			}
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			planService := service.NewPlanService(newModelClient(cfg.Gemini, logger, nil), logger, nil)
			plan, err := planService.Generate(ctx, qf.questionnaire(cmd.Flags()))
			if err != nil {
				return err
			}
			return writePlan(cmd.OutOrStdout(), plan, output)
		},
	}

	qf.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")
	return cmd
}

func promptCmd() *cobra.Command {
	var qf questionnaireFlags

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the generation prompt without calling the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := qf.questionnaire(cmd.Flags())
			if err := q.Validate(); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), prompt.Build(q))
			return err
		},
	}

	qf.register(cmd.Flags())
	return cmd
}

func writePlan(w io.Writer, plan *domain.Plan, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
