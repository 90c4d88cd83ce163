package storage

import (
	"context"
	"errors"

	"github.com/stridelog/tracker-engine/internal/models"
)

// ErrNotFound is returned by entity operations that target a row that does not
// exist for the given user.
var ErrNotFound = errors.New("storage: not found")

// DocumentStore persists the whole tracker document as a single blob per user.
// Load returns (nil, nil) when the user has no stored document.
type DocumentStore interface {
	Load(ctx context.Context, userID string) (*models.Document, error)
	Save(ctx context.Context, userID string, doc *models.Document) error
	Delete(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
	Close() error
}

// EntityStore is the relational sync backend: one round-trip per mutation,
// reassembled into the unified document shape on load. Every operation is
// scoped by userID; writes are idempotent by their natural composite key.
type EntityStore interface {
	// LoadAll reads every entity table for the user concurrently and
	// reassembles the document. Returns (nil, nil) when the user has no
	// profile row.
	LoadAll(ctx context.Context, userID string) (*models.Document, error)

	SaveWeight(ctx context.Context, userID, date string, weight float64) error
	SaveDailyTask(ctx context.Context, userID, date string, task models.TaskKey, completed bool) error

	// AddMeal and AddScheduleTask return the adapter-assigned identifier.
	AddMeal(ctx context.Context, userID, date string, meal models.Meal) (string, error)
	RemoveMeal(ctx context.Context, userID, mealID string) error

	AddScheduleTask(ctx context.Context, userID, date string, task models.ScheduleTask) (string, error)
	UpdateScheduleTask(ctx context.Context, userID string, task models.ScheduleTask) error
	RemoveScheduleTask(ctx context.Context, userID, taskID string) error
	CopySchedule(ctx context.Context, userID, fromDate, toDate string, tasks []models.ScheduleTask) ([]models.ScheduleTask, error)

	// Save* for checklist items inserts when the item has no ID yet and
	// updates otherwise; the returned ID is authoritative. sortOrder is the
	// item's current in-memory index.
	SaveSkill(ctx context.Context, userID string, skill models.Skill, sortOrder int) (string, error)
	RemoveSkill(ctx context.Context, userID, skillID string) error
	SaveProject(ctx context.Context, userID string, project models.Project, sortOrder int) (string, error)
	RemoveProject(ctx context.Context, userID, projectID string) error
	SaveTopic(ctx context.Context, userID string, topic models.EnglishTopic, sortOrder int) (string, error)
	RemoveTopic(ctx context.Context, userID, topicID string) error

	SaveNote(ctx context.Context, userID string, noteType models.NoteType, noteKey, content string) error
	SaveWeightGoalField(ctx context.Context, userID, field string, value float64) error
	SaveStartDate(ctx context.Context, userID, startDate string) error

	ResetAll(ctx context.Context, userID string) error

	Ping(ctx context.Context) error
	Close() error
}

// BackupStore is the simple key-to-string mirror used as the offline fallback
// for the whole document.
type BackupStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// UserStore holds account records. Both backends implement it so auth keeps
// working in degraded modes.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// ErrEmailTaken is returned by CreateUser when the address already has an
// account.
var ErrEmailTaken = errors.New("storage: email already registered")
