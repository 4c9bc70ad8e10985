// Package export renders plans as semicolon separated CSV, the format the
// planner UI has always offered for spreadsheets.
package export

import (
	"alcyxob/fitplan/internal/domain"
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

const separator = ';'

// ContentType is the MIME type of the rendered documents.
const ContentType = "text/csv; charset=utf-8"

// PlansCSV renders one row per plan: id, summary, createdAt, number of days.
func PlansCSV(plans []domain.Plan) ([]byte, error) {
	rows := [][]string{{"id", "summary", "createdAt", "days"}}
	for _, p := range plans {
		rows = append(rows, []string{
			p.ID,
			p.Summary,
			p.CreatedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(len(p.Week)),
		})
	}
	return write(rows)
}

// PlanCSV renders one row per exercise of the plan, numbered within each day.
func PlanCSV(plan *domain.Plan) ([]byte, error) {
	rows := [][]string{{"day", "number", "exercise"}}
	for _, d := range plan.Week {
		for i, ex := range d.Exercises {
			rows = append(rows, []string{d.Day, strconv.Itoa(i + 1), ex})
		}
	}
	return write(rows)
}

func write(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = separator
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
