package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stridelog/tracker-engine/internal/models"
)

func TestSeedSizes(t *testing.T) {
	if len(DailyTasks) != 5 {
		t.Errorf("expected 5 daily tasks, got %d", len(DailyTasks))
	}
	if len(DefaultSkills) != 21 {
		t.Errorf("expected 21 default skills, got %d", len(DefaultSkills))
	}
	if len(DefaultProjects) != 4 {
		t.Errorf("expected 4 default projects, got %d", len(DefaultProjects))
	}
	if len(DefaultEnglishTopics) != 13 {
		t.Errorf("expected 13 default english topics, got %d", len(DefaultEnglishTopics))
	}
	if len(ScheduleTemplates) != 6 {
		t.Errorf("expected 6 schedule templates, got %d", len(ScheduleTemplates))
	}
}

func TestIsDailyTask(t *testing.T) {
	if !IsDailyTask(models.TaskWater) {
		t.Error("expected water to be a daily task")
	}
	if IsDailyTask("sleep") {
		t.Error("expected unknown key to be rejected")
	}
}

func TestQuoteForDateIsDeterministic(t *testing.T) {
	a := QuoteForDate("2025-03-07")
	b := QuoteForDate("2025-03-07")
	if a != b {
		t.Errorf("expected the same quote for the same date, got %q and %q", a, b)
	}
	if a == "" {
		t.Error("expected a non-empty quote")
	}
}

func TestDefaultDocument(t *testing.T) {
	doc := DefaultDocument("2025-01-06")

	if doc.StartDate != "2025-01-06" {
		t.Errorf("expected start date 2025-01-06, got %s", doc.StartDate)
	}
	if doc.CurrentWeight != 72 {
		t.Errorf("expected current weight 72, got %v", doc.CurrentWeight)
	}
	if doc.WeightGoal.Start != 72 || doc.WeightGoal.Target != 60 {
		t.Errorf("expected goal 72 -> 60, got %v -> %v", doc.WeightGoal.Start, doc.WeightGoal.Target)
	}
	if doc.WeightHistory == nil || doc.DailyHistory == nil || doc.Meals == nil || doc.Schedule == nil {
		t.Error("expected per-date maps to be initialized")
	}

	// The document owns its copies: mutating it must not touch the seeds.
	doc.Skills[0].Done = true
	doc.Projects[0].Tech[0] = "changed"
	if DefaultSkills[0].Done {
		t.Error("mutating a document leaked into DefaultSkills")
	}
	if DefaultProjects[0].Tech[0] == "changed" {
		t.Error("mutating a document leaked into DefaultProjects")
	}
}

func TestLoadOverrides(t *testing.T) {
	oldQuotes := MotivationalQuotes
	oldTopics := DefaultEnglishTopics
	t.Cleanup(func() {
		MotivationalQuotes = oldQuotes
		DefaultEnglishTopics = oldTopics
	})

	dir := t.TempDir()
	content := `quotes:
  - "Keep going."
english_topics:
  - "Idioms"
  - "Small talk"
`
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadOverrides(dir); err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}

	if len(MotivationalQuotes) != 1 || MotivationalQuotes[0] != "Keep going." {
		t.Errorf("expected quote override, got %v", MotivationalQuotes)
	}
	if len(DefaultEnglishTopics) != 2 || DefaultEnglishTopics[1].Name != "Small talk" {
		t.Errorf("expected topic override, got %v", DefaultEnglishTopics)
	}
}

func TestLoadOverridesMissingDir(t *testing.T) {
	if err := LoadOverrides(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Errorf("expected missing dir to be ignored, got %v", err)
	}
}
