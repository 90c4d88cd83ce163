package tracker

import (
	"github.com/stridelog/tracker-engine/internal/catalog"
	"github.com/stridelog/tracker-engine/internal/dateutil"
	"github.com/stridelog/tracker-engine/internal/models"
)

// The 12-week plan splits into three named phases.
type Phase struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Perfect-day calorie band, inclusive.
const (
	perfectDayMinKcal = 1400
	perfectDayMaxKcal = 1600
)

// onTrackTolerance widens the weekly pacing check so a morning weigh-in a few
// hundred grams over the line still counts.
const onTrackTolerance = 0.5

// planWeeks is the length of the program; week numbers clamp into [1, planWeeks].
const planWeeks = 12

// WeeklyPacing describes progress against the linear weight plan.
type WeeklyPacing struct {
	WeeklyTarget    float64 `json:"weeklyTarget"`
	ExpectedLoss    float64 `json:"expectedLoss"`
	GoalWeight      float64 `json:"goalWeight"`
	IsOnTrack       bool    `json:"isOnTrack"`
	RemainingToGoal float64 `json:"remainingToGoal"`
}

// Metrics is the full derived view over one document. It is recomputed from
// the raw document on every call and never cached.
type Metrics struct {
	DailyCompleted      int     `json:"dailyCompleted"`
	DailyTotal          int     `json:"dailyTotal"`
	DailyCompletionRate float64 `json:"dailyCompletionRate"`

	TotalKcal    int `json:"totalKcal"`
	TotalProtein int `json:"totalProtein"`

	CurrentWeight  float64 `json:"currentWeight"`
	StartWeight    float64 `json:"startWeight"`
	TargetWeight   float64 `json:"targetWeight"`
	WeightLost     float64 `json:"weightLost"`
	TotalToLose    float64 `json:"totalToLose"`
	WeightProgress float64 `json:"weightProgress"`

	WeekNumber int   `json:"weekNumber"`
	Phase      Phase `json:"phase"`

	ScheduleCompleted      int     `json:"scheduleCompleted"`
	ScheduleTotal          int     `json:"scheduleTotal"`
	ScheduleCompletionRate float64 `json:"scheduleCompletionRate"`

	SkillsCompleted    int `json:"skillsCompleted"`
	SkillsTotal        int `json:"skillsTotal"`
	ProjectsDone       int `json:"projectsDone"`
	ProjectsInProgress int `json:"projectsInProgress"`
	ProjectsTotal      int `json:"projectsTotal"`
	EnglishCompleted   int `json:"englishCompleted"`
	EnglishTotal       int `json:"englishTotal"`

	Pacing     WeeklyPacing `json:"pacing"`
	PerfectDay bool         `json:"perfectDay"`
}

// WeekNumber returns the 1-based plan week for the given start date, clamped
// into [1, 12]. It grows with real time and is independent of document edits.
func WeekNumber(startDate string) int {
	if startDate == "" {
		return 1
	}
	days := dateutil.DaysBetween(startDate)
	week := (days + 6) / 7
	if week < 1 {
		week = 1
	}
	if week > planWeeks {
		week = planWeeks
	}
	return week
}

// PhaseForWeek maps a plan week onto its phase.
func PhaseForWeek(week int) Phase {
	switch {
	case week <= 4:
		return Phase{Name: "Foundations", Color: "blue"}
	case week <= 8:
		return Phase{Name: "Advanced", Color: "purple"}
	default:
		return Phase{Name: "Portfolio & Job hunt", Color: "green"}
	}
}

// DayCompletion returns the fraction of the fixed daily tasks done on the
// date, for heatmap coloring. A date with no record is exactly 0.
func DayCompletion(doc *models.Document, dateKey string) float64 {
	if doc == nil || len(catalog.DailyTasks) == 0 {
		return 0
	}
	tasks := doc.DailyHistory[dateKey]
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range catalog.DailyTasks {
		if tasks[t.Key] {
			completed++
		}
	}
	return float64(completed) / float64(len(catalog.DailyTasks))
}

// ComputeMetrics derives the full metrics view for the document as of
// todayKey. todaySchedule must already be the sorted today slice.
func ComputeMetrics(doc *models.Document, todayKey string) Metrics {
	var m Metrics
	if doc == nil {
		return m
	}

	todayTasks := doc.DailyHistory[todayKey]
	m.DailyTotal = len(catalog.DailyTasks)
	for _, t := range catalog.DailyTasks {
		if todayTasks[t.Key] {
			m.DailyCompleted++
		}
	}
	if m.DailyTotal > 0 {
		m.DailyCompletionRate = float64(m.DailyCompleted) / float64(m.DailyTotal)
	}

	for _, meal := range doc.Meals[todayKey] {
		m.TotalKcal += meal.Kcal
		m.TotalProtein += meal.Protein
	}

	m.CurrentWeight = doc.CurrentWeight
	m.StartWeight = doc.WeightGoal.Start
	m.TargetWeight = doc.WeightGoal.Target
	m.WeightLost = m.StartWeight - m.CurrentWeight
	m.TotalToLose = m.StartWeight - m.TargetWeight
	if m.TotalToLose > 0 {
		m.WeightProgress = clamp(m.WeightLost/m.TotalToLose*100, 0, 100)
	}

	m.WeekNumber = WeekNumber(doc.StartDate)
	m.Phase = PhaseForWeek(m.WeekNumber)

	for _, t := range doc.Schedule[todayKey] {
		m.ScheduleTotal++
		if t.Done {
			m.ScheduleCompleted++
		}
	}
	if m.ScheduleTotal > 0 {
		m.ScheduleCompletionRate = float64(m.ScheduleCompleted) / float64(m.ScheduleTotal)
	}

	m.SkillsTotal = len(doc.Skills)
	for _, s := range doc.Skills {
		if s.Done {
			m.SkillsCompleted++
		}
	}

	m.ProjectsTotal = len(doc.Projects)
	for _, p := range doc.Projects {
		switch p.Status {
		case models.ProjectDone:
			m.ProjectsDone++
		case models.ProjectInProgress:
			m.ProjectsInProgress++
		}
	}

	m.EnglishTotal = len(doc.EnglishTopics)
	for _, t := range doc.EnglishTopics {
		if t.Done {
			m.EnglishCompleted++
		}
	}

	m.Pacing = computePacing(m.StartWeight, m.TargetWeight, m.CurrentWeight, m.WeekNumber)

	m.PerfectDay = m.DailyCompleted == m.DailyTotal && m.DailyTotal > 0 &&
		m.TotalKcal >= perfectDayMinKcal && m.TotalKcal <= perfectDayMaxKcal &&
		m.ScheduleTotal > 0 && m.ScheduleCompleted == m.ScheduleTotal

	return m
}

// computePacing evaluates the linear 12-week plan at the given week.
func computePacing(start, target, current float64, week int) WeeklyPacing {
	totalToLose := start - target
	weeklyTarget := totalToLose / planWeeks
	expectedLoss := weeklyTarget * float64(week)
	goalWeight := start - expectedLoss
	return WeeklyPacing{
		WeeklyTarget:    weeklyTarget,
		ExpectedLoss:    expectedLoss,
		GoalWeight:      goalWeight,
		IsOnTrack:       current <= goalWeight+onTrackTolerance,
		RemainingToGoal: current - target,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
