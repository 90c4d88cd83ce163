package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stridelog/tracker-engine/internal/catalog"
	"github.com/stridelog/tracker-engine/internal/models"
	"github.com/stridelog/tracker-engine/internal/notify"
	"github.com/stridelog/tracker-engine/internal/storage"
)

// fakeBackup is an in-memory BackupStore.
type fakeBackup struct {
	data map[string]string
}

func newFakeBackup() *fakeBackup { return &fakeBackup{data: map[string]string{}} }

func (f *fakeBackup) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}
func (f *fakeBackup) Set(_ context.Context, key, value string) error {
	f.data[key] = value
	return nil
}
func (f *fakeBackup) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}
func (f *fakeBackup) Close() error { return nil }

// fakeEntities is an EntityStore stub that hands out sequential IDs and can
// be told to fail.
type fakeEntities struct {
	nextID int
	fail   bool
	calls  []string
}

func (f *fakeEntities) record(name string) error {
	f.calls = append(f.calls, name)
	if f.fail {
		return errors.New("backend down")
	}
	return nil
}

func (f *fakeEntities) newID() string {
	f.nextID++
	return fmt.Sprintf("db-%d", f.nextID)
}

func (f *fakeEntities) LoadAll(context.Context, string) (*models.Document, error) {
	return nil, nil
}
func (f *fakeEntities) SaveWeight(_ context.Context, _, _ string, _ float64) error {
	return f.record("SaveWeight")
}
func (f *fakeEntities) SaveDailyTask(_ context.Context, _, _ string, _ models.TaskKey, _ bool) error {
	return f.record("SaveDailyTask")
}
func (f *fakeEntities) AddMeal(_ context.Context, _, _ string, _ models.Meal) (string, error) {
	if err := f.record("AddMeal"); err != nil {
		return "", err
	}
	return f.newID(), nil
}
func (f *fakeEntities) RemoveMeal(_ context.Context, _, _ string) error {
	return f.record("RemoveMeal")
}
func (f *fakeEntities) AddScheduleTask(_ context.Context, _, _ string, _ models.ScheduleTask) (string, error) {
	if err := f.record("AddScheduleTask"); err != nil {
		return "", err
	}
	return f.newID(), nil
}
func (f *fakeEntities) UpdateScheduleTask(_ context.Context, _ string, _ models.ScheduleTask) error {
	return f.record("UpdateScheduleTask")
}
func (f *fakeEntities) RemoveScheduleTask(_ context.Context, _, _ string) error {
	return f.record("RemoveScheduleTask")
}
func (f *fakeEntities) CopySchedule(_ context.Context, _, _, _ string, tasks []models.ScheduleTask) ([]models.ScheduleTask, error) {
	if err := f.record("CopySchedule"); err != nil {
		return nil, err
	}
	out := make([]models.ScheduleTask, len(tasks))
	for i, t := range tasks {
		t.ID = f.newID()
		out[i] = t
	}
	return out, nil
}
func (f *fakeEntities) SaveSkill(_ context.Context, _ string, _ models.Skill, _ int) (string, error) {
	if err := f.record("SaveSkill"); err != nil {
		return "", err
	}
	return f.newID(), nil
}
func (f *fakeEntities) RemoveSkill(_ context.Context, _, _ string) error {
	return f.record("RemoveSkill")
}
func (f *fakeEntities) SaveProject(_ context.Context, _ string, _ models.Project, _ int) (string, error) {
	if err := f.record("SaveProject"); err != nil {
		return "", err
	}
	return f.newID(), nil
}
func (f *fakeEntities) RemoveProject(_ context.Context, _, _ string) error {
	return f.record("RemoveProject")
}
func (f *fakeEntities) SaveTopic(_ context.Context, _ string, _ models.EnglishTopic, _ int) (string, error) {
	if err := f.record("SaveTopic"); err != nil {
		return "", err
	}
	return f.newID(), nil
}
func (f *fakeEntities) RemoveTopic(_ context.Context, _, _ string) error {
	return f.record("RemoveTopic")
}
func (f *fakeEntities) SaveNote(_ context.Context, _ string, _ models.NoteType, _, _ string) error {
	return f.record("SaveNote")
}
func (f *fakeEntities) SaveWeightGoalField(_ context.Context, _, _ string, _ float64) error {
	return f.record("SaveWeightGoalField")
}
func (f *fakeEntities) SaveStartDate(_ context.Context, _, _ string) error {
	return f.record("SaveStartDate")
}
func (f *fakeEntities) ResetAll(_ context.Context, _ string) error {
	return f.record("ResetAll")
}
func (f *fakeEntities) Ping(context.Context) error { return nil }
func (f *fakeEntities) Close() error               { return nil }

func newTestStore() (*Store, *notify.Center) {
	center := notify.NewCenter(time.Minute, time.Minute)
	return NewStore(nil, nil, newFakeBackup(), center), center
}

func newTestStoreWithEntities() (*Store, *fakeEntities) {
	center := notify.NewCenter(time.Minute, time.Minute)
	entities := &fakeEntities{}
	return NewStore(nil, entities, newFakeBackup(), center), entities
}

const testUser = "user-1"

func TestDefaultSeeding(t *testing.T) {
	store, _ := newTestStore()

	doc, err := store.Document(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}

	if len(doc.Skills) != 21 || len(doc.Projects) != 4 || len(doc.EnglishTopics) != 13 {
		t.Errorf("expected seeded checklists, got %d/%d/%d",
			len(doc.Skills), len(doc.Projects), len(doc.EnglishTopics))
	}
	if doc.CurrentWeight != 72 {
		t.Errorf("expected default weight 72, got %v", doc.CurrentWeight)
	}
	if got := store.SaveStatus(testUser); got != StatusSaved {
		t.Errorf("expected status saved after load, got %s", got)
	}
}

func TestAddAndRemoveMeals(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	first, err := store.AddMeal(ctx, testUser, models.AddMealRequest{Name: "Eggs", Kcal: "200"})
	if err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}
	if _, err := store.AddMeal(ctx, testUser, models.AddMealRequest{Name: "Soup", Kcal: "350", Protein: "20"}); err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}

	if err := store.RemoveMeal(ctx, testUser, first.ID); err != nil {
		t.Fatalf("RemoveMeal failed: %v", err)
	}

	m, err := store.Metrics(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if m.TotalKcal != 350 {
		t.Errorf("expected 350 kcal after removal, got %d", m.TotalKcal)
	}
	if m.TotalProtein != 20 {
		t.Errorf("expected 20 protein, got %d", m.TotalProtein)
	}

	// Removing an unknown ID is a silent no-op.
	if err := store.RemoveMeal(ctx, testUser, "missing"); err != nil {
		t.Errorf("expected no error for unknown id, got %v", err)
	}
}

func TestAddMealValidation(t *testing.T) {
	store, center := newTestStore()
	ctx := context.Background()

	if _, err := store.AddMeal(ctx, testUser, models.AddMealRequest{Name: "  ", Kcal: "200"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for blank name, got %v", err)
	}
	if _, err := store.AddMeal(ctx, testUser, models.AddMealRequest{Name: "Toast", Kcal: "abc"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for bad calories, got %v", err)
	}

	doc, err := store.Document(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	for _, meals := range doc.Meals {
		if len(meals) != 0 {
			t.Errorf("expected no meals after rejected adds, got %v", meals)
		}
	}

	notes := center.Active(testUser)
	if len(notes) != 2 {
		t.Fatalf("expected 2 warning notifications, got %d", len(notes))
	}
	if notes[0].Type != notify.TypeWarning {
		t.Errorf("expected warning type, got %s", notes[0].Type)
	}
}

func TestScheduleStaysSorted(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if _, err := store.AddScheduleTask(ctx, testUser, models.AddScheduleTaskRequest{Name: "Late", StartTime: "14:00", EndTime: "15:00"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddScheduleTask(ctx, testUser, models.AddScheduleTaskRequest{Name: "Early", StartTime: "09:00", EndTime: "10:00"}); err != nil {
		t.Fatal(err)
	}

	doc, err := store.Document(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}

	var day []models.ScheduleTask
	for _, tasks := range doc.Schedule {
		if len(tasks) > 0 {
			day = tasks
		}
	}
	if len(day) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(day))
	}
	if day[0].Name != "Early" || day[1].Name != "Late" {
		t.Errorf("expected sorted order [Early, Late], got [%s, %s]", day[0].Name, day[1].Name)
	}
}

func TestToggleUnknownScheduleTask(t *testing.T) {
	store, _ := newTestStore()

	err := store.ToggleScheduleTask(context.Background(), testUser, "", "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInvalidCategoryDegradesToOther(t *testing.T) {
	store, _ := newTestStore()

	task, err := store.AddScheduleTask(context.Background(), testUser, models.AddScheduleTaskRequest{
		Name:      "Stretching",
		StartTime: "08:00",
		Category:  "yoga",
	})
	if err != nil {
		t.Fatal(err)
	}
	if task.Category != models.CategoryOther {
		t.Errorf("expected category other, got %s", task.Category)
	}
}

func TestOptimisticUpdateOnFailingBackend(t *testing.T) {
	store, entities := newTestStoreWithEntities()
	ctx := context.Background()

	// Warm the cache so the failure only hits the mutation.
	if _, err := store.Document(ctx, testUser); err != nil {
		t.Fatal(err)
	}
	entities.fail = true

	err := store.ToggleDailyTask(ctx, testUser, "", models.TaskWater)
	if err == nil {
		t.Fatal("expected an error from the failing backend")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("backend failure must not read as validation: %v", err)
	}

	if got := store.SaveStatus(testUser); got != StatusError {
		t.Errorf("expected status error, got %s", got)
	}

	// The optimistic state is kept.
	doc, err := store.Document(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, day := range doc.DailyHistory {
		if day[models.TaskWater] {
			found = true
		}
	}
	if !found {
		t.Error("expected the toggle to stay applied after a failed save")
	}
}

func TestRelationalIDRemap(t *testing.T) {
	store, entities := newTestStoreWithEntities()
	ctx := context.Background()

	if _, err := store.Document(ctx, testUser); err != nil {
		t.Fatal(err)
	}
	before := entities.nextID

	meal, err := store.AddMeal(ctx, testUser, models.AddMealRequest{Name: "Lunch", Kcal: "500"})
	if err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("db-%d", before+1)
	if meal.ID != want {
		t.Errorf("expected adapter-assigned id %s, got %s", want, meal.ID)
	}

	doc, err := store.Document(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	for _, meals := range doc.Meals {
		for _, m := range meals {
			if m.Name == "Lunch" && m.ID != want {
				t.Errorf("cached meal kept temp id %s", m.ID)
			}
		}
	}
}

func TestCopyYesterdayScheduleRequiresSource(t *testing.T) {
	store, _ := newTestStore()

	err := store.CopyYesterdaySchedule(context.Background(), testUser)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error without a source day, got %v", err)
	}
}

func TestWeightUpdates(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if err := store.UpdateWeight(ctx, testUser, "68.5"); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateWeight(ctx, testUser, "abc"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for junk weight, got %v", err)
	}

	doc, err := store.Document(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if doc.CurrentWeight != 68.5 {
		t.Errorf("expected weight 68.5, got %v", doc.CurrentWeight)
	}
	if len(doc.WeightHistory) != 1 {
		t.Errorf("expected one history point, got %d", len(doc.WeightHistory))
	}

	if err := store.UpdateWeightGoal(ctx, testUser, "target", "58"); err != nil {
		t.Fatal(err)
	}
	doc, _ = store.Document(ctx, testUser)
	if doc.WeightGoal.Target != 58 {
		t.Errorf("expected target 58, got %v", doc.WeightGoal.Target)
	}

	if err := store.UpdateWeightGoal(ctx, testUser, "middle", "65"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for unknown field, got %v", err)
	}
}

func TestNotesUpdates(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if err := store.UpdateNote(ctx, testUser, models.NoteGoals, "ship the portfolio"); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateWeeklyPlan(ctx, testUser, 3, "focus on testing"); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateWeeklyPlan(ctx, testUser, 13, "no such week"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for week 13, got %v", err)
	}
	if err := store.UpdateDailyNote(ctx, testUser, "2025-03-07", "good day"); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateDailyNote(ctx, testUser, "bad-key", "x"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for bad date, got %v", err)
	}

	doc, err := store.Document(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Notes.Goals != "ship the portfolio" {
		t.Errorf("unexpected goals note: %q", doc.Notes.Goals)
	}
	if doc.Notes.WeeklyPlans[3] != "focus on testing" {
		t.Errorf("unexpected weekly plan: %q", doc.Notes.WeeklyPlans[3])
	}
	if doc.Notes.Daily["2025-03-07"] != "good day" {
		t.Errorf("unexpected daily note: %q", doc.Notes.Daily["2025-03-07"])
	}
}

func TestChecklistLifecycle(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	skill, err := store.AddSkill(ctx, testUser, "Docker basics")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.ToggleSkill(ctx, testUser, skill.ID); err != nil {
		t.Fatal(err)
	}

	project, err := store.AddProject(ctx, testUser, "CLI tool")
	if err != nil {
		t.Fatal(err)
	}
	if project.Status != models.ProjectTodo {
		t.Errorf("expected new project in todo, got %s", project.Status)
	}
	if err := store.UpdateProjectStatus(ctx, testUser, project.ID, models.ProjectInProgress); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateProjectStatus(ctx, testUser, project.ID, "archived"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}

	topic, err := store.AddEnglishTopic(ctx, testUser, "Idioms")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.RemoveEnglishTopic(ctx, testUser, topic.ID); err != nil {
		t.Fatal(err)
	}

	doc, err := store.Document(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Skills) != 22 {
		t.Errorf("expected 22 skills, got %d", len(doc.Skills))
	}
	var added *models.Skill
	for i := range doc.Skills {
		if doc.Skills[i].Name == "Docker basics" {
			added = &doc.Skills[i]
		}
	}
	if added == nil || !added.Done {
		t.Error("expected the added skill to be toggled done")
	}
	if len(doc.EnglishTopics) != 13 {
		t.Errorf("expected topic removal to restore 13, got %d", len(doc.EnglishTopics))
	}
}

func TestResetAll(t *testing.T) {
	store, entities := newTestStoreWithEntities()
	ctx := context.Background()

	if _, err := store.AddMeal(ctx, testUser, models.AddMealRequest{Name: "Lunch", Kcal: "500"}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateWeight(ctx, testUser, "65"); err != nil {
		t.Fatal(err)
	}

	if err := store.ResetAll(ctx, testUser); err != nil {
		t.Fatal(err)
	}

	doc, err := store.Document(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if doc.CurrentWeight != 72 {
		t.Errorf("expected weight back at 72, got %v", doc.CurrentWeight)
	}
	for _, meals := range doc.Meals {
		if len(meals) != 0 {
			t.Errorf("expected meals wiped, got %v", meals)
		}
	}

	called := false
	for _, c := range entities.calls {
		if c == "ResetAll" {
			called = true
		}
	}
	if !called {
		t.Error("expected the relational ResetAll to be invoked")
	}
	if got := store.SaveStatus(testUser); got != StatusSaved {
		t.Errorf("expected status saved after reset, got %s", got)
	}
}

func TestEvictForcesReload(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if _, err := store.AddMeal(ctx, testUser, models.AddMealRequest{Name: "Lunch", Kcal: "500"}); err != nil {
		t.Fatal(err)
	}

	store.Evict(testUser)

	// The backup mirror still has the state, so the reload sees the meal.
	doc, err := store.Document(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, meals := range doc.Meals {
		total += len(meals)
	}
	if total != 1 {
		t.Errorf("expected the meal to survive via backup, got %d", total)
	}
}

func TestApplyScheduleTemplates(t *testing.T) {
	store, entities := newTestStoreWithEntities()
	ctx := context.Background()

	tasks, err := store.ApplyScheduleTemplates(ctx, testUser)
	if err != nil {
		t.Fatalf("ApplyScheduleTemplates failed: %v", err)
	}
	if len(tasks) != len(catalog.ScheduleTemplates) {
		t.Fatalf("expected %d tasks, got %d", len(catalog.ScheduleTemplates), len(tasks))
	}

	inserts := 0
	for _, call := range entities.calls {
		if call == "AddScheduleTask" {
			inserts++
		}
	}
	if inserts != len(tasks) {
		t.Errorf("expected %d relational inserts, got %d", len(tasks), inserts)
	}

	for i, task := range tasks {
		if task.Done {
			t.Errorf("expected template task %q unticked", task.Name)
		}
		if !strings.HasPrefix(task.ID, "db-") {
			t.Errorf("expected an adapter-assigned ID, got %q", task.ID)
		}
		if i > 0 && tasks[i-1].StartTime > task.StartTime {
			t.Errorf("plan out of order at %d: %s after %s", i, task.StartTime, tasks[i-1].StartTime)
		}
	}
}

func TestBackupHoldsAssignedIDs(t *testing.T) {
	center := notify.NewCenter(time.Minute, time.Minute)
	backup := newFakeBackup()
	store := NewStore(nil, &fakeEntities{}, backup, center)
	ctx := context.Background()

	meal, err := store.AddMeal(ctx, testUser, models.AddMealRequest{Name: "Lunch", Kcal: "500"})
	if err != nil {
		t.Fatal(err)
	}
	if meal.ID != "db-1" {
		t.Fatalf("expected the adapter ID, got %q", meal.ID)
	}

	// The backup mirror must carry the assigned ID too, or a reload in
	// document-only mode would resurrect the temporary one.
	var doc models.Document
	if err := json.Unmarshal([]byte(backup.data[backupKey(testUser)]), &doc); err != nil {
		t.Fatalf("failed to decode backup blob: %v", err)
	}
	found := false
	for _, meals := range doc.Meals {
		for _, m := range meals {
			if m.Name == "Lunch" {
				found = true
				if m.ID != meal.ID {
					t.Errorf("backup holds ID %q, want %q", m.ID, meal.ID)
				}
			}
		}
	}
	if !found {
		t.Error("meal missing from the backup blob")
	}
}

func TestEraseLocalDropsMirrors(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if err := store.UpdateWeight(ctx, testUser, "65"); err != nil {
		t.Fatal(err)
	}
	if err := store.EraseLocal(ctx, testUser); err != nil {
		t.Fatal(err)
	}

	// With the mirrors gone the next access starts from the defaults.
	doc, err := store.Document(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if doc.CurrentWeight != 72 {
		t.Errorf("expected the default weight after erase, got %v", doc.CurrentWeight)
	}
}
