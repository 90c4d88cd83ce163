// Package catalog holds the immutable seed data injected into a fresh tracker
// document: the fixed daily-task list, the default checklists, the schedule
// templates and the motivational strings. Seeds are only consulted at document
// initialization; once a document exists it owns its own copies.
package catalog

import (
	"hash/fnv"

	"github.com/stridelog/tracker-engine/internal/models"
)

// DailyTask describes one of the five fixed daily habits.
type DailyTask struct {
	Key   models.TaskKey `json:"key" yaml:"key"`
	Icon  string         `json:"icon" yaml:"icon"`
	Label string         `json:"label" yaml:"label"`
}

// ScheduleTemplate is one suggested day-plan entry.
type ScheduleTemplate struct {
	Name      string          `json:"name" yaml:"name"`
	StartTime string          `json:"startTime" yaml:"start_time"`
	EndTime   string          `json:"endTime" yaml:"end_time"`
	Category  models.Category `json:"category" yaml:"category"`
}

// DailyTasks is the fixed 5-entry daily habit catalog. Its keys are the only
// valid task keys in dailyHistory.
var DailyTasks = []DailyTask{
	{Key: models.TaskExercise, Icon: "🏃", Label: "Exercise (20 min)"},
	{Key: models.TaskEnglish, Icon: "🇬🇧", Label: "English (1h)"},
	{Key: models.TaskCodingTheory, Icon: "📖", Label: "Coding: theory/course (1h)"},
	{Key: models.TaskCodingPractice, Icon: "💻", Label: "Coding: project/portfolio (1.5h)"},
	{Key: models.TaskWater, Icon: "💧", Label: "Water 2L"},
}

// IsDailyTask reports whether key belongs to the fixed daily catalog.
func IsDailyTask(key models.TaskKey) bool {
	for _, t := range DailyTasks {
		if t.Key == key {
			return true
		}
	}
	return false
}

// DefaultSkills seeds the learning roadmap checklist.
var DefaultSkills = []models.Skill{
	{Name: "React Hooks (useState, useEffect)", Category: "react"},
	{Name: "useReducer, useCallback, useMemo", Category: "react"},
	{Name: "Custom Hooks", Category: "react"},
	{Name: "React Context API", Category: "react"},
	{Name: "TypeScript basics", Category: "typescript"},
	{Name: "TypeScript generics", Category: "typescript"},
	{Name: "TypeScript utility types", Category: "typescript"},
	{Name: "Zustand / Redux Toolkit", Category: "react"},
	{Name: "React Query / TanStack Query", Category: "react"},
	{Name: "Next.js App Router", Category: "nextjs"},
	{Name: "Next.js Server Components", Category: "nextjs"},
	{Name: "Next.js API Routes", Category: "nextjs"},
	{Name: "SSR vs SSG vs ISR", Category: "nextjs"},
	{Name: "Jest - unit testing", Category: "testing"},
	{Name: "React Testing Library", Category: "testing"},
	{Name: "Cypress basics", Category: "testing"},
	{Name: "Performance - lazy loading", Category: "other"},
	{Name: "Performance - code splitting", Category: "other"},
	{Name: "Git - rebase, cherry-pick", Category: "other"},
	{Name: "REST API best practices", Category: "other"},
	{Name: "Authentication (JWT, OAuth)", Category: "other"},
}

// DefaultProjects seeds the portfolio kanban board.
var DefaultProjects = []models.Project{
	{Name: "Dashboard with API", Description: "Filters, sorting, pagination", Tech: []string{"React", "TypeScript", "API"}, Status: models.ProjectTodo},
	{Name: "Fullstack app with auth", Description: "Next.js + login/registration", Tech: []string{"Next.js", "Auth", "DB"}, Status: models.ProjectTodo},
	{Name: "E-commerce shop", Description: "Cart, products, checkout", Tech: []string{"React", "Zustand", "Stripe"}, Status: models.ProjectTodo},
	{Name: "Portfolio website", Description: "Personal site with projects", Tech: []string{"Next.js", "Tailwind"}, Status: models.ProjectTodo},
}

// DefaultEnglishTopics seeds the english study checklist.
var DefaultEnglishTopics = []models.EnglishTopic{
	{Name: "Conditionals (0, 1, 2, 3, mixed)"},
	{Name: "Reported Speech"},
	{Name: "Passive Voice"},
	{Name: "Modal Verbs (advanced)"},
	{Name: "Relative Clauses"},
	{Name: "Phrasal Verbs (top 100)"},
	{Name: "Collocations"},
	{Name: "Linking words & connectors"},
	{Name: "Formal vs informal writing"},
	{Name: "Reading comprehension strategies"},
	{Name: "Listening - different accents"},
	{Name: "Speaking - IT vocabulary"},
	{Name: "Writing - emails & reports"},
}

// ScheduleTemplates is the suggested evening study plan.
var ScheduleTemplates = []ScheduleTemplate{
	{Name: "Exercise", StartTime: "17:00", EndTime: "17:20", Category: models.CategoryExercise},
	{Name: "English", StartTime: "17:30", EndTime: "18:30", Category: models.CategoryEnglish},
	{Name: "Coding: theory", StartTime: "18:30", EndTime: "19:30", Category: models.CategoryFrontend},
	{Name: "Coding: project", StartTime: "19:30", EndTime: "21:00", Category: models.CategoryFrontend},
	{Name: "Break / dinner", StartTime: "21:00", EndTime: "21:30", Category: models.CategoryOther},
	{Name: "Extra study", StartTime: "21:30", EndTime: "22:30", Category: models.CategoryFrontend},
}

// MotivationalQuotes rotates through the header, one per day.
var MotivationalQuotes = []string{
	"Every day is a new chance! 🌟",
	"Small steps lead to big changes. 👣",
	"Don't compare yourself to others - compare yourself to who you were yesterday. 💪",
	"Success is the sum of small efforts repeated day after day. 🎯",
	"Difficult roads often lead to beautiful places. 🏔️",
	"Your only limit is the one you set yourself. 🚀",
	"Every expert was once a beginner. 💪",
}

// CategoryIcons maps schedule categories to their display icons.
var CategoryIcons = map[models.Category]string{
	models.CategoryFrontend: "💻",
	models.CategoryEnglish:  "🇬🇧",
	models.CategoryExercise: "🏃",
	models.CategoryOther:    "📌",
}

// QuoteForDate picks the quote of the day deterministically from the date key,
// so refreshes within one day see the same quote.
func QuoteForDate(dateKey string) string {
	if len(MotivationalQuotes) == 0 {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(dateKey))
	return MotivationalQuotes[int(h.Sum32())%len(MotivationalQuotes)]
}

// DefaultDocument builds a fresh document seeded with the static defaults.
// startDate marks the week-1 origin.
func DefaultDocument(startDate string) *models.Document {
	doc := &models.Document{
		StartDate:     startDate,
		CurrentWeight: 72,
		WeightGoal:    models.WeightGoal{Start: 72, Target: 60},
		Skills:        append([]models.Skill(nil), DefaultSkills...),
		Projects:      make([]models.Project, len(DefaultProjects)),
		EnglishTopics: append([]models.EnglishTopic(nil), DefaultEnglishTopics...),
	}
	for i, p := range DefaultProjects {
		p.Tech = append([]string(nil), p.Tech...)
		doc.Projects[i] = p
	}
	doc.Normalize()
	return doc
}
