package main

import (
	"alcyxob/fitplan/internal/domain"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPromptCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"prompt", "--age", "30", "--level", "beginner", "--goal", "fat_loss", "--days", "3", "--height", "180"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "exactly 3 training days")
	assert.Contains(t, out.String(), "Height: 180 cm")
	assert.Contains(t, out.String(), "Weight: not specified")
}

func TestPromptCommand_InvalidAnswers(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"prompt", "--age", "10"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, domain.ErrInvalidQuestionnaire)
}

func TestGenerateCommand_RejectsUnknownOutput(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"generate", "--age", "30", "--output", "xml"})
	assert.ErrorContains(t, cmd.Execute(), "--output must be json or yaml")
}

func TestWritePlan(t *testing.T) {
	plan := &domain.Plan{
		ID:        "plan_1",
		Summary:   "Full body",
		CreatedAt: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		Week:      []domain.PlanDay{{Day: "Monday", Exercises: []string{"Squat 3x12"}}},
	}

	var jsonOut bytes.Buffer
	require.NoError(t, writePlan(&jsonOut, plan, "json"))
	var fromJSON domain.Plan
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &fromJSON))
	assert.Equal(t, *plan, fromJSON)

	var yamlOut bytes.Buffer
	require.NoError(t, writePlan(&yamlOut, plan, "yaml"))
	assert.Contains(t, yamlOut.String(), "summary: Full body")
	var fromYAML domain.Plan
	require.NoError(t, yaml.Unmarshal(yamlOut.Bytes(), &fromYAML))
	assert.Equal(t, plan.Week, fromYAML.Week)
}

func TestNewLogger_Levels(t *testing.T) {
	ctx := context.Background()
	assert.True(t, newLogger("debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, newLogger("warn").Enabled(ctx, slog.LevelInfo))
	assert.False(t, newLogger("bogus").Enabled(ctx, slog.LevelDebug))
}
