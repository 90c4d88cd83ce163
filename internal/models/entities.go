package models

// Meal is one logged meal on a given date. Order within a day is insertion
// order; removal is by ID.
type Meal struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kcal    int    `json:"kcal"`
	Protein int    `json:"protein"`
}

// ScheduleTask is one time-boxed entry in a day plan. The per-day sequence is
// kept sorted by StartTime (lexicographic compare of "HH:MM").
type ScheduleTask struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Category  Category `json:"category"`
	Done      bool     `json:"done"`
}

// Skill is one checklist entry on the learning roadmap.
type Skill struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Done     bool   `json:"done"`
}

// Project is one kanban card on the portfolio board.
type Project struct {
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Tech        []string      `json:"tech,omitempty"`
	Status      ProjectStatus `json:"status"`
}

// EnglishTopic is one checklist entry on the english study list.
type EnglishTopic struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// NoteType discriminates rows in the notes table.
type NoteType string

const (
	NoteGoals        NoteType = "goals"
	NoteProjectIdeas NoteType = "projectIdeas"
	NoteWeekly       NoteType = "weekly"
	NoteDaily        NoteType = "daily"
)
