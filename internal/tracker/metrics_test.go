package tracker

import (
	"testing"

	"github.com/stridelog/tracker-engine/internal/catalog"
	"github.com/stridelog/tracker-engine/internal/dateutil"
	"github.com/stridelog/tracker-engine/internal/models"
)

const testDay = "2025-03-07"

func baseDoc() *models.Document {
	doc := catalog.DefaultDocument(dateutil.AddDays(dateutil.TodayKey(), -1))
	return doc
}

func TestWeekNumberClamps(t *testing.T) {
	today := dateutil.TodayKey()

	if got := WeekNumber(today); got != 1 {
		t.Errorf("expected week 1 on day one, got %d", got)
	}
	if got := WeekNumber(dateutil.AddDays(today, -100)); got != 12 {
		t.Errorf("expected week 12 beyond the plan, got %d", got)
	}
	if got := WeekNumber(""); got != 1 {
		t.Errorf("expected week 1 for empty start date, got %d", got)
	}
	// Day 36 or 37 of the plan is week 6 either way.
	if got := WeekNumber(dateutil.AddDays(today, -36)); got != 6 {
		t.Errorf("expected week 6, got %d", got)
	}
}

func TestPhaseForWeek(t *testing.T) {
	if got := PhaseForWeek(1); got.Name != "Foundations" {
		t.Errorf("expected Foundations for week 1, got %s", got.Name)
	}
	if got := PhaseForWeek(4); got.Name != "Foundations" {
		t.Errorf("expected Foundations for week 4, got %s", got.Name)
	}
	if got := PhaseForWeek(5); got.Name != "Advanced" {
		t.Errorf("expected Advanced for week 5, got %s", got.Name)
	}
	if got := PhaseForWeek(12); got.Name != "Portfolio & Job hunt" {
		t.Errorf("expected Portfolio & Job hunt for week 12, got %s", got.Name)
	}
}

func TestWeightProgressClamps(t *testing.T) {
	doc := baseDoc()

	doc.WeightGoal = models.WeightGoal{Start: 72, Target: 60}
	doc.CurrentWeight = 66
	m := ComputeMetrics(doc, testDay)
	if m.WeightProgress != 50 {
		t.Errorf("expected 50%% progress, got %v", m.WeightProgress)
	}

	// Gained weight: progress floors at 0.
	doc.CurrentWeight = 75
	m = ComputeMetrics(doc, testDay)
	if m.WeightProgress != 0 {
		t.Errorf("expected 0%% progress after gaining, got %v", m.WeightProgress)
	}

	// Past the goal: progress caps at 100.
	doc.CurrentWeight = 58
	m = ComputeMetrics(doc, testDay)
	if m.WeightProgress != 100 {
		t.Errorf("expected 100%% progress past the goal, got %v", m.WeightProgress)
	}

	// Degenerate plan: start equals target.
	doc.WeightGoal = models.WeightGoal{Start: 60, Target: 60}
	m = ComputeMetrics(doc, testDay)
	if m.WeightProgress != 0 {
		t.Errorf("expected 0%% progress for a zero-length plan, got %v", m.WeightProgress)
	}
}

func TestDayCompletionBounds(t *testing.T) {
	doc := baseDoc()

	if got := DayCompletion(doc, testDay); got != 0 {
		t.Errorf("expected 0 for an empty day, got %v", got)
	}

	all := map[models.TaskKey]bool{}
	for _, task := range catalog.DailyTasks {
		all[task.Key] = true
	}
	doc.DailyHistory[testDay] = all
	if got := DayCompletion(doc, testDay); got != 1 {
		t.Errorf("expected 1 for a full day, got %v", got)
	}

	doc.DailyHistory[testDay] = map[models.TaskKey]bool{models.TaskWater: true}
	if got := DayCompletion(doc, testDay); got != 0.2 {
		t.Errorf("expected 0.2 for one of five, got %v", got)
	}
}

func TestWeeklyPacing(t *testing.T) {
	// 72 -> 60 plan, week 6: expected to be at 66.0.
	p := computePacing(72, 60, 65.5, 6)
	if p.WeeklyTarget != 1 {
		t.Errorf("expected weekly target 1, got %v", p.WeeklyTarget)
	}
	if p.GoalWeight != 66 {
		t.Errorf("expected goal weight 66, got %v", p.GoalWeight)
	}
	if !p.IsOnTrack {
		t.Error("expected 65.5 to be on track at week 6")
	}
	if p.RemainingToGoal != 5.5 {
		t.Errorf("expected 5.5 remaining, got %v", p.RemainingToGoal)
	}

	// Within the half-kilo tolerance.
	if p := computePacing(72, 60, 66.5, 6); !p.IsOnTrack {
		t.Error("expected 66.5 to be on track within tolerance")
	}
	// Beyond the tolerance.
	if p := computePacing(72, 60, 67, 6); p.IsOnTrack {
		t.Error("expected 67 to be off track")
	}
}

func TestPerfectDay(t *testing.T) {
	doc := baseDoc()

	all := map[models.TaskKey]bool{}
	for _, task := range catalog.DailyTasks {
		all[task.Key] = true
	}
	doc.DailyHistory[testDay] = all
	doc.Meals[testDay] = []models.Meal{{ID: "m1", Name: "Lunch", Kcal: 800}, {ID: "m2", Name: "Dinner", Kcal: 700}}
	doc.Schedule[testDay] = []models.ScheduleTask{{ID: "t1", Name: "English", StartTime: "17:00", Done: true}}

	if m := ComputeMetrics(doc, testDay); !m.PerfectDay {
		t.Errorf("expected a perfect day, got %+v", m)
	}

	// Calories outside the band break it.
	doc.Meals[testDay] = []models.Meal{{ID: "m1", Name: "Feast", Kcal: 2000}}
	if m := ComputeMetrics(doc, testDay); m.PerfectDay {
		t.Error("expected too many calories to break a perfect day")
	}

	// An empty schedule never counts as all-done.
	doc.Meals[testDay] = []models.Meal{{ID: "m1", Name: "Lunch", Kcal: 1500}}
	doc.Schedule[testDay] = nil
	if m := ComputeMetrics(doc, testDay); m.PerfectDay {
		t.Error("expected an empty schedule to break a perfect day")
	}

	// An unticked schedule task breaks it too.
	doc.Schedule[testDay] = []models.ScheduleTask{{ID: "t1", Name: "English", StartTime: "17:00", Done: false}}
	if m := ComputeMetrics(doc, testDay); m.PerfectDay {
		t.Error("expected an open schedule task to break a perfect day")
	}
}

func TestComputeMetricsCounts(t *testing.T) {
	doc := baseDoc()
	doc.Skills[0].Done = true
	doc.Skills[1].Done = true
	doc.Projects[0].Status = models.ProjectDone
	doc.Projects[1].Status = models.ProjectInProgress
	doc.EnglishTopics[0].Done = true
	doc.Meals[testDay] = []models.Meal{{ID: "m1", Name: "Lunch", Kcal: 400, Protein: 30}}

	m := ComputeMetrics(doc, testDay)
	if m.SkillsCompleted != 2 || m.SkillsTotal != 21 {
		t.Errorf("expected 2/21 skills, got %d/%d", m.SkillsCompleted, m.SkillsTotal)
	}
	if m.ProjectsDone != 1 || m.ProjectsInProgress != 1 || m.ProjectsTotal != 4 {
		t.Errorf("unexpected project counts: %+v", m)
	}
	if m.EnglishCompleted != 1 || m.EnglishTotal != 13 {
		t.Errorf("expected 1/13 english topics, got %d/%d", m.EnglishCompleted, m.EnglishTotal)
	}
	if m.TotalKcal != 400 || m.TotalProtein != 30 {
		t.Errorf("expected 400 kcal / 30 protein, got %d/%d", m.TotalKcal, m.TotalProtein)
	}
}
