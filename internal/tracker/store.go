// Package tracker holds the per-user application state: a cached document,
// copy-on-write mutations, the save pipeline across the configured backends
// and the derived-metrics view.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stridelog/tracker-engine/internal/catalog"
	"github.com/stridelog/tracker-engine/internal/dateutil"
	"github.com/stridelog/tracker-engine/internal/models"
	"github.com/stridelog/tracker-engine/internal/notify"
	"github.com/stridelog/tracker-engine/internal/storage"
)

// ErrValidation marks a rejected input. The document is untouched and a
// warning notification has already been pushed.
var ErrValidation = errors.New("tracker: invalid input")

// SaveStatus is the tri-state persistence indicator shown to the client.
type SaveStatus string

const (
	StatusSaved  SaveStatus = "saved"
	StatusSaving SaveStatus = "saving"
	StatusError  SaveStatus = "error"
)

// userState is one user's cached document. mu serializes every mutation and
// the persistence that follows it, so writes per user are single-file.
type userState struct {
	mu         sync.Mutex
	doc        *models.Document
	saveStatus SaveStatus
}

// Store is the application state layer. Any of the backends may be nil; the
// store degrades to whatever is configured and always keeps the in-memory
// document authoritative for reads.
type Store struct {
	mu    sync.Mutex
	users map[string]*userState

	docs     storage.DocumentStore
	entities storage.EntityStore
	backup   storage.BackupStore
	center   *notify.Center
}

// NewStore wires the state layer to its backends. center must not be nil.
func NewStore(docs storage.DocumentStore, entities storage.EntityStore, backup storage.BackupStore, center *notify.Center) *Store {
	return &Store{
		users:    make(map[string]*userState),
		docs:     docs,
		entities: entities,
		backup:   backup,
		center:   center,
	}
}

func backupKey(userID string) string { return "doc:" + userID }

// acquire returns the user's state with its mutex held and the document
// loaded. The caller must unlock st.mu.
func (s *Store) acquire(ctx context.Context, userID string) (*userState, error) {
	s.mu.Lock()
	st, ok := s.users[userID]
	if !ok {
		st = &userState{saveStatus: StatusSaved}
		s.users[userID] = st
	}
	s.mu.Unlock()

	st.mu.Lock()
	if st.doc == nil {
		doc, err := s.load(ctx, userID)
		if err != nil {
			st.mu.Unlock()
			return nil, err
		}
		st.doc = doc
	}
	return st, nil
}

// load walks the fallback chain: relational, document store, local backup,
// fresh default. Backend errors degrade to the next source rather than fail.
func (s *Store) load(ctx context.Context, userID string) (*models.Document, error) {
	if s.entities != nil {
		doc, err := s.entities.LoadAll(ctx, userID)
		if err != nil {
			slog.Warn("relational load failed, falling back", "user_id", userID, "error", err)
		} else if doc != nil {
			doc.Normalize()
			return doc, nil
		}
	}

	if s.docs != nil {
		doc, err := s.docs.Load(ctx, userID)
		if err != nil {
			slog.Warn("document load failed, falling back", "user_id", userID, "error", err)
		} else if doc != nil {
			doc.Normalize()
			return doc, nil
		}
	}

	if s.backup != nil {
		raw, ok, err := s.backup.Get(ctx, backupKey(userID))
		if err != nil {
			slog.Warn("backup load failed, falling back", "user_id", userID, "error", err)
		} else if ok {
			var doc models.Document
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				slog.Warn("backup document corrupted, reseeding", "user_id", userID, "error", err)
			} else {
				doc.Normalize()
				return &doc, nil
			}
		}
	}

	doc := catalog.DefaultDocument(dateutil.TodayKey())
	s.seed(ctx, userID, doc)
	return doc, nil
}

// seed persists a freshly created default document. Relational seeding also
// assigns real IDs to the default checklist items.
func (s *Store) seed(ctx context.Context, userID string, doc *models.Document) {
	if s.entities != nil {
		if err := s.entities.SaveStartDate(ctx, userID, doc.StartDate); err != nil {
			slog.Warn("failed to seed start date", "user_id", userID, "error", err)
		}
		for i := range doc.Skills {
			id, err := s.entities.SaveSkill(ctx, userID, doc.Skills[i], i)
			if err != nil {
				slog.Warn("failed to seed skill", "user_id", userID, "error", err)
				continue
			}
			doc.Skills[i].ID = id
		}
		for i := range doc.Projects {
			id, err := s.entities.SaveProject(ctx, userID, doc.Projects[i], i)
			if err != nil {
				slog.Warn("failed to seed project", "user_id", userID, "error", err)
				continue
			}
			doc.Projects[i].ID = id
		}
		for i := range doc.EnglishTopics {
			id, err := s.entities.SaveTopic(ctx, userID, doc.EnglishTopics[i], i)
			if err != nil {
				slog.Warn("failed to seed english topic", "user_id", userID, "error", err)
				continue
			}
			doc.EnglishTopics[i].ID = id
		}
	}

	if s.docs != nil {
		if err := s.docs.Save(ctx, userID, doc); err != nil {
			slog.Warn("failed to seed document store", "user_id", userID, "error", err)
		}
	}
	s.writeBackup(ctx, userID, doc)
}

func (s *Store) writeBackup(ctx context.Context, userID string, doc *models.Document) {
	if s.backup == nil {
		return
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		slog.Warn("failed to encode backup document", "user_id", userID, "error", err)
		return
	}
	if err := s.backup.Set(ctx, backupKey(userID), string(raw)); err != nil {
		slog.Warn("failed to write local backup", "user_id", userID, "error", err)
	}
}

func (s *Store) setStatus(userID string, st *userState, status SaveStatus) {
	st.saveStatus = status
	if s.center != nil {
		s.center.PushStatus(userID, string(status))
	}
}

func (s *Store) warn(userID, message string) error {
	if s.center != nil {
		s.center.Push(userID, notify.TypeWarning, message)
	}
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// persist swaps the new document in optimistically and runs the save pipeline:
// the relational sync closure when one is given, then local backup always,
// then the document store when configured. The sync runs first because it may
// replace temporary IDs with adapter-assigned ones; the blob mirrors must hold
// the final IDs or a later degraded-mode reload would resurrect the temporary
// ones. A backend failure leaves the optimistic document in place and flips
// the status to error.
func (s *Store) persist(ctx context.Context, userID string, st *userState, doc *models.Document, sync func(context.Context) error) error {
	st.doc = doc
	s.setStatus(userID, st, StatusSaving)

	var saveErr error
	if sync != nil && s.entities != nil {
		if err := sync(ctx); err != nil {
			saveErr = fmt.Errorf("relational sync: %w", err)
		}
	}

	s.writeBackup(ctx, userID, doc)

	if s.docs != nil {
		if err := s.docs.Save(ctx, userID, doc); err != nil && saveErr == nil {
			saveErr = fmt.Errorf("document save: %w", err)
		}
	}

	if saveErr != nil {
		slog.Error("save failed", "user_id", userID, "error", saveErr)
		s.setStatus(userID, st, StatusError)
		if s.center != nil {
			s.center.Push(userID, notify.TypeError, "Failed to save changes")
		}
		return saveErr
	}

	s.setStatus(userID, st, StatusSaved)
	return nil
}

// Document returns a deep copy of the user's current document.
func (s *Store) Document(ctx context.Context, userID string) (*models.Document, error) {
	st, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return st.doc.Clone(), nil
}

// ReplaceDocument swaps in a full document, as uploaded via the raw data
// endpoint. Relational state is not resynced from a raw replace.
func (s *Store) ReplaceDocument(ctx context.Context, userID string, doc *models.Document) error {
	if doc == nil {
		return s.warn(userID, "Document payload is empty")
	}
	doc = doc.Clone()
	doc.Normalize()

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()
	return s.persist(ctx, userID, st, doc, nil)
}

// SaveStatus returns the user's current save indicator without loading.
func (s *Store) SaveStatus(userID string) SaveStatus {
	s.mu.Lock()
	st, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		return StatusSaved
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.saveStatus
}

// Metrics computes the derived view for the current local day.
func (s *Store) Metrics(ctx context.Context, userID string) (Metrics, error) {
	st, err := s.acquire(ctx, userID)
	if err != nil {
		return Metrics{}, err
	}
	defer st.mu.Unlock()
	return ComputeMetrics(st.doc, dateutil.TodayKey()), nil
}

// Heatmap returns the daily completion fraction for the last 30 days, keyed
// by date.
func (s *Store) Heatmap(ctx context.Context, userID string) (map[string]float64, error) {
	st, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	out := make(map[string]float64, 30)
	for _, key := range dateutil.Last30Days() {
		out[key] = DayCompletion(st.doc, key)
	}
	return out, nil
}

// ToggleDailyTask flips one fixed daily habit on the given date. An empty
// date means today.
func (s *Store) ToggleDailyTask(ctx context.Context, userID, date string, key models.TaskKey) error {
	if date == "" {
		date = dateutil.TodayKey()
	}
	if !catalog.IsDailyTask(key) {
		return s.warn(userID, "Unknown daily task")
	}
	if !dateutil.ValidKey(date) {
		return s.warn(userID, "Invalid date")
	}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	day := doc.DailyHistory[date]
	if day == nil {
		day = map[models.TaskKey]bool{}
		doc.DailyHistory[date] = day
	}
	day[key] = !day[key]
	completed := day[key]

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.SaveDailyTask(ctx, userID, date, key, completed)
	})
}

// AddMeal logs a meal on today's date. Name must be non-empty and calories a
// positive number; protein defaults to 0.
func (s *Store) AddMeal(ctx context.Context, userID string, req models.AddMealRequest) (models.Meal, error) {
	name := strings.TrimSpace(req.Name)
	kcal := dateutil.SafeParseInt(req.Kcal.String(), 0)
	if name == "" || kcal <= 0 {
		return models.Meal{}, s.warn(userID, "Enter a meal name and calories")
	}
	protein := dateutil.SafeParseInt(req.Protein.String(), 0)
	if protein < 0 {
		protein = 0
	}

	meal := models.Meal{
		ID:      uuid.NewString(),
		Name:    name,
		Kcal:    kcal,
		Protein: protein,
	}
	date := dateutil.TodayKey()

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return models.Meal{}, err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	doc.Meals[date] = append(doc.Meals[date], meal)
	idx := len(doc.Meals[date]) - 1

	err = s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		id, err := s.entities.AddMeal(ctx, userID, date, meal)
		if err != nil {
			return err
		}
		doc.Meals[date][idx].ID = id
		return nil
	})
	if err != nil {
		return meal, err
	}
	return doc.Meals[date][idx], nil
}

// RemoveMeal deletes a meal from today's log. Removing an unknown ID is a
// no-op.
func (s *Store) RemoveMeal(ctx context.Context, userID, mealID string) error {
	date := dateutil.TodayKey()

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	meals := doc.Meals[date]
	found := false
	for i, m := range meals {
		if m.ID == mealID {
			doc.Meals[date] = append(meals[:i], meals[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.RemoveMeal(ctx, userID, mealID)
	})
}

// AddScheduleTask appends a task to today's plan, keeping the day sorted by
// start time. An invalid category degrades to "other".
func (s *Store) AddScheduleTask(ctx context.Context, userID string, req models.AddScheduleTaskRequest) (models.ScheduleTask, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.ScheduleTask{}, s.warn(userID, "Enter a task name")
	}
	category := req.Category
	if !models.ValidCategory(category) {
		category = models.CategoryOther
	}

	task := models.ScheduleTask{
		ID:        uuid.NewString(),
		Name:      name,
		StartTime: strings.TrimSpace(req.StartTime),
		EndTime:   strings.TrimSpace(req.EndTime),
		Category:  category,
	}
	date := dateutil.TodayKey()

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return models.ScheduleTask{}, err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	doc.Schedule[date] = append(doc.Schedule[date], task)
	sortSchedule(doc.Schedule[date])

	err = s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		id, err := s.entities.AddScheduleTask(ctx, userID, date, task)
		if err != nil {
			return err
		}
		for i := range doc.Schedule[date] {
			if doc.Schedule[date][i].ID == task.ID {
				doc.Schedule[date][i].ID = id
				task.ID = id
				break
			}
		}
		return nil
	})
	if err != nil {
		return task, err
	}
	return task, nil
}

// ToggleScheduleTask flips the done flag of one task on the given date. An
// empty date means today.
func (s *Store) ToggleScheduleTask(ctx context.Context, userID, date, taskID string) error {
	if date == "" {
		date = dateutil.TodayKey()
	}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	var updated *models.ScheduleTask
	for i := range doc.Schedule[date] {
		if doc.Schedule[date][i].ID == taskID {
			doc.Schedule[date][i].Done = !doc.Schedule[date][i].Done
			updated = &doc.Schedule[date][i]
			break
		}
	}
	if updated == nil {
		return storage.ErrNotFound
	}
	task := *updated

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.UpdateScheduleTask(ctx, userID, task)
	})
}

// RemoveScheduleTask deletes one task from the given date's plan. Removing an
// unknown ID is a no-op.
func (s *Store) RemoveScheduleTask(ctx context.Context, userID, date, taskID string) error {
	if date == "" {
		date = dateutil.TodayKey()
	}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	tasks := doc.Schedule[date]
	found := false
	for i, t := range tasks {
		if t.ID == taskID {
			doc.Schedule[date] = append(tasks[:i], tasks[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.RemoveScheduleTask(ctx, userID, taskID)
	})
}

// CopyYesterdaySchedule replaces today's plan with a fresh copy of
// yesterday's, all tasks unticked.
func (s *Store) CopyYesterdaySchedule(ctx context.Context, userID string) error {
	today := dateutil.TodayKey()
	yesterday := dateutil.YesterdayKey()

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	source := st.doc.Schedule[yesterday]
	if len(source) == 0 {
		return s.warn(userID, "No schedule found for yesterday")
	}

	doc := st.doc.Clone()
	copied := make([]models.ScheduleTask, len(source))
	for i, t := range source {
		t.ID = uuid.NewString()
		t.Done = false
		copied[i] = t
	}
	sortSchedule(copied)
	doc.Schedule[today] = copied

	err = s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		synced, err := s.entities.CopySchedule(ctx, userID, yesterday, today, copied)
		if err != nil {
			return err
		}
		sortSchedule(synced)
		doc.Schedule[today] = synced
		return nil
	})
	if err != nil {
		return err
	}

	if s.center != nil {
		s.center.Push(userID, notify.TypeSuccess, "Yesterday's schedule copied!")
	}
	return nil
}

// ApplyScheduleTemplates appends the catalog's suggested day plan to today's
// schedule, every entry unticked. Returns today's full plan after the insert.
func (s *Store) ApplyScheduleTemplates(ctx context.Context, userID string) ([]models.ScheduleTask, error) {
	templates := catalog.ScheduleTemplates
	if len(templates) == 0 {
		return nil, s.warn(userID, "No schedule templates available")
	}
	date := dateutil.TodayKey()

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	added := make([]models.ScheduleTask, 0, len(templates))
	for _, tpl := range templates {
		task := models.ScheduleTask{
			ID:        uuid.NewString(),
			Name:      tpl.Name,
			StartTime: tpl.StartTime,
			EndTime:   tpl.EndTime,
			Category:  tpl.Category,
		}
		doc.Schedule[date] = append(doc.Schedule[date], task)
		added = append(added, task)
	}
	sortSchedule(doc.Schedule[date])

	err = s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		for _, task := range added {
			id, err := s.entities.AddScheduleTask(ctx, userID, date, task)
			if err != nil {
				return err
			}
			for i := range doc.Schedule[date] {
				if doc.Schedule[date][i].ID == task.ID {
					doc.Schedule[date][i].ID = id
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return append([]models.ScheduleTask(nil), doc.Schedule[date]...), nil
}

// AddSkill appends a checklist entry to the learning roadmap.
func (s *Store) AddSkill(ctx context.Context, userID, name string) (models.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Skill{}, s.warn(userID, "Enter a skill name")
	}

	skill := models.Skill{ID: uuid.NewString(), Name: name, Category: "other"}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return models.Skill{}, err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	doc.Skills = append(doc.Skills, skill)
	idx := len(doc.Skills) - 1

	err = s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		saved := skill
		saved.ID = ""
		id, err := s.entities.SaveSkill(ctx, userID, saved, idx)
		if err != nil {
			return err
		}
		doc.Skills[idx].ID = id
		return nil
	})
	if err != nil {
		return skill, err
	}
	return doc.Skills[idx], nil
}

// ToggleSkill flips one roadmap entry.
func (s *Store) ToggleSkill(ctx context.Context, userID, skillID string) error {
	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	idx := -1
	for i := range doc.Skills {
		if doc.Skills[i].ID == skillID {
			doc.Skills[i].Done = !doc.Skills[i].Done
			idx = i
			break
		}
	}
	if idx < 0 {
		return storage.ErrNotFound
	}
	skill := doc.Skills[idx]

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		_, err := s.entities.SaveSkill(ctx, userID, skill, idx)
		return err
	})
}

// RemoveSkill deletes one roadmap entry. Unknown IDs are a no-op.
func (s *Store) RemoveSkill(ctx context.Context, userID, skillID string) error {
	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	found := false
	for i, sk := range doc.Skills {
		if sk.ID == skillID {
			doc.Skills = append(doc.Skills[:i], doc.Skills[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.RemoveSkill(ctx, userID, skillID)
	})
}

// AddProject creates a kanban card in the todo column.
func (s *Store) AddProject(ctx context.Context, userID, name string) (models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Project{}, s.warn(userID, "Enter a project name")
	}

	project := models.Project{ID: uuid.NewString(), Name: name, Status: models.ProjectTodo}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return models.Project{}, err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	doc.Projects = append(doc.Projects, project)
	idx := len(doc.Projects) - 1

	err = s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		saved := project
		saved.ID = ""
		id, err := s.entities.SaveProject(ctx, userID, saved, idx)
		if err != nil {
			return err
		}
		doc.Projects[idx].ID = id
		return nil
	})
	if err != nil {
		return project, err
	}
	return doc.Projects[idx], nil
}

// UpdateProjectStatus moves a card between kanban columns.
func (s *Store) UpdateProjectStatus(ctx context.Context, userID, projectID string, status models.ProjectStatus) error {
	switch status {
	case models.ProjectTodo, models.ProjectInProgress, models.ProjectDone:
	default:
		return s.warn(userID, "Unknown project status")
	}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	idx := -1
	for i := range doc.Projects {
		if doc.Projects[i].ID == projectID {
			doc.Projects[i].Status = status
			idx = i
			break
		}
	}
	if idx < 0 {
		return storage.ErrNotFound
	}
	project := doc.Projects[idx]

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		_, err := s.entities.SaveProject(ctx, userID, project, idx)
		return err
	})
}

// RemoveProject deletes one kanban card. Unknown IDs are a no-op.
func (s *Store) RemoveProject(ctx context.Context, userID, projectID string) error {
	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	found := false
	for i, p := range doc.Projects {
		if p.ID == projectID {
			doc.Projects = append(doc.Projects[:i], doc.Projects[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.RemoveProject(ctx, userID, projectID)
	})
}

// AddEnglishTopic appends a study checklist entry.
func (s *Store) AddEnglishTopic(ctx context.Context, userID, name string) (models.EnglishTopic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.EnglishTopic{}, s.warn(userID, "Enter a topic name")
	}

	topic := models.EnglishTopic{ID: uuid.NewString(), Name: name}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return models.EnglishTopic{}, err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	doc.EnglishTopics = append(doc.EnglishTopics, topic)
	idx := len(doc.EnglishTopics) - 1

	err = s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		saved := topic
		saved.ID = ""
		id, err := s.entities.SaveTopic(ctx, userID, saved, idx)
		if err != nil {
			return err
		}
		doc.EnglishTopics[idx].ID = id
		return nil
	})
	if err != nil {
		return topic, err
	}
	return doc.EnglishTopics[idx], nil
}

// ToggleEnglishTopic flips one study checklist entry.
func (s *Store) ToggleEnglishTopic(ctx context.Context, userID, topicID string) error {
	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	idx := -1
	for i := range doc.EnglishTopics {
		if doc.EnglishTopics[i].ID == topicID {
			doc.EnglishTopics[i].Done = !doc.EnglishTopics[i].Done
			idx = i
			break
		}
	}
	if idx < 0 {
		return storage.ErrNotFound
	}
	topic := doc.EnglishTopics[idx]

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		_, err := s.entities.SaveTopic(ctx, userID, topic, idx)
		return err
	})
}

// RemoveEnglishTopic deletes one study checklist entry. Unknown IDs are a
// no-op.
func (s *Store) RemoveEnglishTopic(ctx context.Context, userID, topicID string) error {
	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	found := false
	for i, t := range doc.EnglishTopics {
		if t.ID == topicID {
			doc.EnglishTopics = append(doc.EnglishTopics[:i], doc.EnglishTopics[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.RemoveTopic(ctx, userID, topicID)
	})
}

// UpdateWeight records today's weigh-in: current weight plus a history point.
func (s *Store) UpdateWeight(ctx context.Context, userID string, value string) error {
	weight := dateutil.SafeParseFloat(value, -1)
	if weight <= 0 {
		return s.warn(userID, "Enter a valid weight")
	}
	date := dateutil.TodayKey()

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	doc.CurrentWeight = weight
	doc.WeightHistory[date] = weight

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.SaveWeight(ctx, userID, date, weight)
	})
}

// UpdateWeightGoal updates one endpoint of the weight plan. field is "start"
// or "target".
func (s *Store) UpdateWeightGoal(ctx context.Context, userID, field, value string) error {
	v := dateutil.SafeParseFloat(value, -1)
	if v <= 0 {
		return s.warn(userID, "Enter a valid weight")
	}
	if field != "start" && field != "target" {
		return s.warn(userID, "Unknown weight goal field")
	}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	if field == "start" {
		doc.WeightGoal.Start = v
	} else {
		doc.WeightGoal.Target = v
	}

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.SaveWeightGoalField(ctx, userID, field, v)
	})
}

// UpdateStartDate moves the week-1 origin of the plan.
func (s *Store) UpdateStartDate(ctx context.Context, userID, date string) error {
	if !dateutil.ValidKey(date) {
		return s.warn(userID, "Invalid date")
	}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	doc.StartDate = date

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.SaveStartDate(ctx, userID, date)
	})
}

// UpdateNote writes one of the two free-form note fields (goals or project
// ideas).
func (s *Store) UpdateNote(ctx context.Context, userID string, noteType models.NoteType, content string) error {
	if noteType != models.NoteGoals && noteType != models.NoteProjectIdeas {
		return s.warn(userID, "Unknown note type")
	}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	if noteType == models.NoteGoals {
		doc.Notes.Goals = content
	} else {
		doc.Notes.ProjectIdeas = content
	}

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.SaveNote(ctx, userID, noteType, "", content)
	})
}

// UpdateWeeklyPlan writes the plan text for one plan week.
func (s *Store) UpdateWeeklyPlan(ctx context.Context, userID string, week int, content string) error {
	if week < 1 || week > planWeeks {
		return s.warn(userID, "Week must be between 1 and 12")
	}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	doc.Notes.WeeklyPlans[week] = content

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.SaveNote(ctx, userID, models.NoteWeekly, strconv.Itoa(week), content)
	})
}

// UpdateDailyNote writes the note for one date key.
func (s *Store) UpdateDailyNote(ctx context.Context, userID, date, content string) error {
	if !dateutil.ValidKey(date) {
		return s.warn(userID, "Invalid date")
	}

	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := st.doc.Clone()
	doc.Notes.Daily[date] = content

	return s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.SaveNote(ctx, userID, models.NoteDaily, date, content)
	})
}

// ResetAll wipes the user's data back to the seeded defaults with today as
// the new start date.
func (s *Store) ResetAll(ctx context.Context, userID string) error {
	st, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	doc := catalog.DefaultDocument(dateutil.TodayKey())

	err = s.persist(ctx, userID, st, doc, func(ctx context.Context) error {
		return s.entities.ResetAll(ctx, userID)
	})
	if err != nil {
		return err
	}

	// Reseed the default checklists so they get real IDs again.
	s.seed(ctx, userID, doc)

	if s.center != nil {
		s.center.Push(userID, notify.TypeSuccess, "All data has been reset")
	}
	return nil
}

// EraseLocal deletes every local mirror of the user's document: the document
// store blob, the backup row and the in-memory cache. Relational rows are
// untouched; the next access reloads from whatever backend remains, or
// reseeds the defaults.
func (s *Store) EraseLocal(ctx context.Context, userID string) error {
	if s.docs != nil {
		if err := s.docs.Delete(ctx, userID); err != nil {
			return fmt.Errorf("document delete: %w", err)
		}
	}
	if s.backup != nil {
		if err := s.backup.Delete(ctx, backupKey(userID)); err != nil {
			return fmt.Errorf("backup delete: %w", err)
		}
	}
	s.Evict(userID)
	return nil
}

// Evict drops the user's cached state, forcing a reload on next access. Used
// on logout.
func (s *Store) Evict(userID string) {
	s.mu.Lock()
	delete(s.users, userID)
	s.mu.Unlock()
}

// sortSchedule orders a day plan by start time. Lexicographic compare is
// correct for zero-padded HH:MM strings; ties keep insertion order.
func sortSchedule(tasks []models.ScheduleTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].StartTime < tasks[j].StartTime
	})
}
