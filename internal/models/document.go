package models

// TaskKey identifies one of the five fixed daily habits.
type TaskKey string

const (
	TaskExercise       TaskKey = "exercise"
	TaskEnglish        TaskKey = "english"
	TaskCodingTheory   TaskKey = "codingTheory"
	TaskCodingPractice TaskKey = "codingPractice"
	TaskWater          TaskKey = "water"
)

// Category classifies a schedule task.
type Category string

const (
	CategoryFrontend Category = "frontend"
	CategoryEnglish  Category = "english"
	CategoryExercise Category = "exercise"
	CategoryOther    Category = "other"
)

// ValidCategory reports whether c is one of the known schedule categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryFrontend, CategoryEnglish, CategoryExercise, CategoryOther:
		return true
	}
	return false
}

// ProjectStatus is the kanban column of a portfolio project.
type ProjectStatus string

const (
	ProjectTodo       ProjectStatus = "todo"
	ProjectInProgress ProjectStatus = "inprogress"
	ProjectDone       ProjectStatus = "done"
)

// WeightGoal holds the endpoints of the 12-week linear weight plan.
type WeightGoal struct {
	Start  float64 `json:"start"`
	Target float64 `json:"target"`
}

// Notes holds free-form user notes keyed by scope.
type Notes struct {
	Goals        string            `json:"goals"`
	ProjectIdeas string            `json:"projectIdeas"`
	WeeklyPlans  map[int]string    `json:"weeklyPlans"`
	Daily        map[string]string `json:"daily"`
}

// Document is the full per-user tracker state. All per-date maps are keyed by
// the canonical local calendar date string (YYYY-MM-DD).
type Document struct {
	StartDate     string                      `json:"startDate"`
	CurrentWeight float64                     `json:"currentWeight"`
	WeightGoal    WeightGoal                  `json:"weightGoal"`
	WeightHistory map[string]float64          `json:"weightHistory"`
	DailyHistory  map[string]map[TaskKey]bool `json:"dailyHistory"`
	Meals         map[string][]Meal           `json:"meals"`
	Schedule      map[string][]ScheduleTask   `json:"schedule"`
	Skills        []Skill                     `json:"skills"`
	Projects      []Project                   `json:"projects"`
	EnglishTopics []EnglishTopic              `json:"englishTopics"`
	Notes         Notes                       `json:"notes"`
}

// Normalize fills in nil maps so callers never have to nil-check per-date
// collections. Absent and empty are equivalent on read.
func (d *Document) Normalize() {
	if d.WeightHistory == nil {
		d.WeightHistory = map[string]float64{}
	}
	if d.DailyHistory == nil {
		d.DailyHistory = map[string]map[TaskKey]bool{}
	}
	if d.Meals == nil {
		d.Meals = map[string][]Meal{}
	}
	if d.Schedule == nil {
		d.Schedule = map[string][]ScheduleTask{}
	}
	if d.Notes.WeeklyPlans == nil {
		d.Notes.WeeklyPlans = map[int]string{}
	}
	if d.Notes.Daily == nil {
		d.Notes.Daily = map[string]string{}
	}
}

// Clone returns a deep copy of the document. Mutations operate on a clone and
// swap it in whole, so a reader never observes a half-applied update.
func (d *Document) Clone() *Document {
	c := *d

	c.WeightHistory = make(map[string]float64, len(d.WeightHistory))
	for k, v := range d.WeightHistory {
		c.WeightHistory[k] = v
	}

	c.DailyHistory = make(map[string]map[TaskKey]bool, len(d.DailyHistory))
	for date, tasks := range d.DailyHistory {
		day := make(map[TaskKey]bool, len(tasks))
		for k, v := range tasks {
			day[k] = v
		}
		c.DailyHistory[date] = day
	}

	c.Meals = make(map[string][]Meal, len(d.Meals))
	for date, meals := range d.Meals {
		c.Meals[date] = append([]Meal(nil), meals...)
	}

	c.Schedule = make(map[string][]ScheduleTask, len(d.Schedule))
	for date, tasks := range d.Schedule {
		c.Schedule[date] = append([]ScheduleTask(nil), tasks...)
	}

	c.Skills = append([]Skill(nil), d.Skills...)
	c.Projects = make([]Project, len(d.Projects))
	for i, p := range d.Projects {
		p.Tech = append([]string(nil), p.Tech...)
		c.Projects[i] = p
	}
	c.EnglishTopics = append([]EnglishTopic(nil), d.EnglishTopics...)

	c.Notes.WeeklyPlans = make(map[int]string, len(d.Notes.WeeklyPlans))
	for k, v := range d.Notes.WeeklyPlans {
		c.Notes.WeeklyPlans[k] = v
	}
	c.Notes.Daily = make(map[string]string, len(d.Notes.Daily))
	for k, v := range d.Notes.Daily {
		c.Notes.Daily[k] = v
	}

	return &c
}
