package extract

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func TestPlan_FencedJSON(t *testing.T) {
	raw := "```json\n{\"summary\":\"A\",\"week\":[{\"day\":\"Mon\",\"exercises\":[\"Squat 3x12\"]}]}\n```"

	plan, err := Plan(raw, "plan_1", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "A", plan.Summary)
	require.Len(t, plan.Week, 1)
	assert.Equal(t, []string{"Squat 3x12"}, plan.Week[0].Exercises)
}

func TestPlan_TruncatedIsRepaired(t *testing.T) {
	raw := `{"summary":"A","week":[{"day":"Mon","exercises":["a","b"]`

	plan, err := Plan(raw, "plan_1", fixedNow)
	require.NoError(t, err)
	require.Len(t, plan.Week, 1)
	assert.Equal(t, "Mon", plan.Week[0].Day)
	assert.Equal(t, []string{"a", "b"}, plan.Week[0].Exercises)
}

func TestPlan_NoObject(t *testing.T) {
	_, err := Plan("I cannot help with that request.", "plan_1", fixedNow)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "no JSON object found", perr.Reason)
	assert.ErrorIs(t, err, ErrParse)
}

func TestPlan_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "unterminated string", raw: `{"summary":"A","week":[{"day":"Mo`},
		{name: "trailing garbage inside", raw: `{"summary": "A", "week": [} oops }`},
		{name: "wrong week type", raw: `{"summary":"A","week":"monday"}`},
		{name: "stray bracket after prose", raw: "Here is the plan: {]"},
		{name: "stray bracket after key", raw: `Sure {"summary": ]`},
		{name: "stray bracket no closing brace", raw: "text {]"},
		{name: "closing brace before object", raw: "} x {]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.raw, "plan_1", fixedNow)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, "invalid JSON", perr.Reason)
			assert.NotEmpty(t, perr.Fragment)
		})
	}
}

func TestPlan_ServiceFieldsWin(t *testing.T) {
	raw := `{"id":"model-id","createdAt":"1999-01-01T00:00:00Z","summary":"B","week":[]}`

	plan, err := Plan(raw, "plan_42", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "plan_42", plan.ID)
	assert.Equal(t, fixedNow, plan.CreatedAt)
	assert.Equal(t, "B", plan.Summary)
}

func TestJSONObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "whitespace", raw: "  \n{\"a\":1}\n\t", want: `{"a":1}`},
		{name: "fence without tag", raw: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fence with tag", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose around", raw: "Here is your plan:\n{\"a\":{\"b\":2}}\nGood luck!", want: `{"a":{"b":2}}`},
		{name: "truncated object", raw: `{"a":{"b":2`, want: `{"a":{"b":2}}`},
		{name: "truncated array", raw: `{"a":[1,2`, want: `{"a":[1,2]}`},
		{name: "truncated after fence", raw: "```json\n{\"a\":[{\"b\":\"x\"", want: `{"a":[{"b":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSONObject(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, json.Valid([]byte(got)))
		})
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "balanced", in: `{"a":1}`, want: `{"a":1}`},
		{name: "one brace", in: `{"a":1`, want: `{"a":1}`},
		{name: "nested braces", in: `{"a":{"b":{"c":1`, want: `{"a":{"b":{"c":1}}}`},
		{name: "array inside object", in: `{"w":[{"d":"Mon","e":["a"]`, want: `{"w":[{"d":"Mon","e":["a"]}]}`},
		{name: "braces inside strings ignored", in: `{"s":"{[not json"`, want: `{"s":"{[not json"}`},
		{name: "escaped quote", in: `{"s":"say \"hi\" {"`, want: `{"s":"say \"hi\" {"}`},
		{name: "mismatched closer left alone", in: `{"a":[1}`, want: `{"a":[1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Repair(tt.in))
		})
	}
}

func TestRepair_DoesNotFixUnterminatedString(t *testing.T) {
	out := Repair(`{"s":"abc`)
	assert.False(t, json.Valid([]byte(out)))
}
