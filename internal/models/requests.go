package models

import (
	"bytes"
	"fmt"
)

// LooseNumber is a numeric field that tolerates both JSON numbers and JSON
// strings on the wire. Form-driven clients submit numbers as strings; the safe
// parsers downstream decide what a non-numeric value means.
type LooseNumber string

// UnmarshalJSON accepts "350", 350 and null. Anything else is rejected.
func (n *LooseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		if len(data) < 2 || data[len(data)-1] != '"' {
			return fmt.Errorf("invalid string value: %s", data)
		}
		*n = LooseNumber(data[1 : len(data)-1])
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return fmt.Errorf("expected number or string, got %s", data)
	}
	*n = LooseNumber(data)
	return nil
}

func (n LooseNumber) String() string { return string(n) }

// AddMealRequest is the body for logging a meal on today's date.
type AddMealRequest struct {
	Name    string      `json:"name"`
	Kcal    LooseNumber `json:"kcal"`
	Protein LooseNumber `json:"protein"`
}

// AddScheduleTaskRequest is the body for adding a task to today's plan.
type AddScheduleTaskRequest struct {
	Name      string   `json:"name"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Category  Category `json:"category"`
}

// AddItemRequest covers the single-name checklist adds (skill, project, topic).
type AddItemRequest struct {
	Name string `json:"name"`
}

// UpdateProjectStatusRequest moves a project between kanban columns.
type UpdateProjectStatusRequest struct {
	Status ProjectStatus `json:"status"`
}

// UpdateWeightRequest records today's weight observation.
type UpdateWeightRequest struct {
	Weight LooseNumber `json:"weight"`
}

// UpdateWeightGoalRequest updates one endpoint of the weight plan.
type UpdateWeightGoalRequest struct {
	Field string      `json:"field"` // "start" or "target"
	Value LooseNumber `json:"value"`
}

// UpdateNoteRequest writes one free-form note field.
type UpdateNoteRequest struct {
	Content string `json:"content"`
}

// UpdateWeeklyPlanRequest writes the plan text for one week number.
type UpdateWeeklyPlanRequest struct {
	Week    int    `json:"week"`
	Content string `json:"content"`
}

// UpdateDailyNoteRequest writes the note for one date key.
type UpdateDailyNoteRequest struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest opens a cookie session.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
