package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/stridelog/tracker-engine/internal/dateutil"
	"github.com/stridelog/tracker-engine/internal/models"
)

// PostgresStore implements EntityStore and UserStore using PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 10 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 2 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// --- Users ---

// CreateUser inserts an account with its profile and weight-goal rows.
func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var u models.User
	u.Email = email
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		email, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO profiles (user_id, start_date, current_weight) VALUES ($1, $2, $3)`,
		u.ID, dateutil.TodayKey(), 72.0,
	); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO weight_goals (user_id, start_weight, goal_weight) VALUES ($1, $2, $3)`,
		u.ID, 72.0, 60.0,
	); err != nil {
		return nil, fmt.Errorf("failed to create weight goal: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}

	return &u, nil
}

// GetUserByEmail retrieves an account by email
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// --- Document assembly ---

// LoadAll reads every entity table for the user concurrently and reassembles
// the unified document. Returns (nil, nil) when the user has no profile row.
func (s *PostgresStore) LoadAll(ctx context.Context, userID string) (*models.Document, error) {
	var (
		hasProfile    bool
		startDate     string
		currentWeight float64
		goal          models.WeightGoal
		weightHistory map[string]float64
		dailyHistory  map[string]map[models.TaskKey]bool
		meals         map[string][]models.Meal
		schedule      map[string][]models.ScheduleTask
		skills        []models.Skill
		projects      []models.Project
		topics        []models.EnglishTopic
		notes         models.Notes
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var date time.Time
		err := s.pool.QueryRow(gctx,
			`SELECT start_date, current_weight FROM profiles WHERE user_id = $1`,
			userID,
		).Scan(&date, &currentWeight)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		hasProfile = true
		startDate = dateutil.DateKey(date)
		return nil
	})

	g.Go(func() error {
		err := s.pool.QueryRow(gctx,
			`SELECT start_weight, goal_weight FROM weight_goals WHERE user_id = $1`,
			userID,
		).Scan(&goal.Start, &goal.Target)
		if errors.Is(err, pgx.ErrNoRows) {
			goal = models.WeightGoal{Start: 72, Target: 60}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load weight goal: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		weightHistory, err = s.loadWeightHistory(gctx, userID)
		return err
	})

	g.Go(func() error {
		var err error
		dailyHistory, err = s.loadDailyHistory(gctx, userID)
		return err
	})

	g.Go(func() error {
		var err error
		meals, err = s.loadMeals(gctx, userID)
		return err
	})

	g.Go(func() error {
		var err error
		schedule, err = s.loadSchedule(gctx, userID)
		return err
	})

	g.Go(func() error {
		var err error
		skills, err = s.loadSkills(gctx, userID)
		return err
	})

	g.Go(func() error {
		var err error
		projects, err = s.loadProjects(gctx, userID)
		return err
	})

	g.Go(func() error {
		var err error
		topics, err = s.loadTopics(gctx, userID)
		return err
	})

	g.Go(func() error {
		var err error
		notes, err = s.loadNotes(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !hasProfile {
		return nil, nil
	}

	doc := &models.Document{
		StartDate:     startDate,
		CurrentWeight: currentWeight,
		WeightGoal:    goal,
		WeightHistory: weightHistory,
		DailyHistory:  dailyHistory,
		Meals:         meals,
		Schedule:      schedule,
		Skills:        skills,
		Projects:      projects,
		EnglishTopics: topics,
		Notes:         notes,
	}
	doc.Normalize()
	return doc, nil
}

func (s *PostgresStore) loadWeightHistory(ctx context.Context, userID string) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, weight FROM weight_history WHERE user_id = $1 ORDER BY date`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load weight history: %w", err)
	}
	defer rows.Close()

	history := make(map[string]float64)
	for rows.Next() {
		var date time.Time
		var weight float64
		if err := rows.Scan(&date, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan weight row: %w", err)
		}
		history[dateutil.DateKey(date)] = weight
	}
	return history, rows.Err()
}

func (s *PostgresStore) loadDailyHistory(ctx context.Context, userID string) (map[string]map[models.TaskKey]bool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, task_key, completed FROM daily_tasks WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily tasks: %w", err)
	}
	defer rows.Close()

	history := make(map[string]map[models.TaskKey]bool)
	for rows.Next() {
		var date time.Time
		var key string
		var completed bool
		if err := rows.Scan(&date, &key, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan daily task row: %w", err)
		}
		dateKey := dateutil.DateKey(date)
		if history[dateKey] == nil {
			history[dateKey] = make(map[models.TaskKey]bool)
		}
		history[dateKey][models.TaskKey(key)] = completed
	}
	return history, rows.Err()
}

func (s *PostgresStore) loadMeals(ctx context.Context, userID string) (map[string][]models.Meal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, date, name, kcal, protein FROM meals WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}
	defer rows.Close()

	meals := make(map[string][]models.Meal)
	for rows.Next() {
		var m models.Meal
		var date time.Time
		if err := rows.Scan(&m.ID, &date, &m.Name, &m.Kcal, &m.Protein); err != nil {
			return nil, fmt.Errorf("failed to scan meal row: %w", err)
		}
		dateKey := dateutil.DateKey(date)
		meals[dateKey] = append(meals[dateKey], m)
	}
	return meals, rows.Err()
}

func (s *PostgresStore) loadSchedule(ctx context.Context, userID string) (map[string][]models.ScheduleTask, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, date, name, start_time, end_time, category, done
		 FROM schedule WHERE user_id = $1 ORDER BY date, start_time`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	defer rows.Close()

	schedule := make(map[string][]models.ScheduleTask)
	for rows.Next() {
		var t models.ScheduleTask
		var date time.Time
		var category string
		if err := rows.Scan(&t.ID, &date, &t.Name, &t.StartTime, &t.EndTime, &category, &t.Done); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		t.Category = models.Category(category)
		dateKey := dateutil.DateKey(date)
		schedule[dateKey] = append(schedule[dateKey], t)
	}
	return schedule, rows.Err()
}

func (s *PostgresStore) loadSkills(ctx context.Context, userID string) ([]models.Skill, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, category, done FROM skills WHERE user_id = $1 ORDER BY sort_order`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}
	defer rows.Close()

	var skills []models.Skill
	for rows.Next() {
		var sk models.Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.Category, &sk.Done); err != nil {
			return nil, fmt.Errorf("failed to scan skill row: %w", err)
		}
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

func (s *PostgresStore) loadProjects(ctx context.Context, userID string) ([]models.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, tech, status FROM projects WHERE user_id = $1 ORDER BY sort_order`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		var status string
		var techJSON []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &techJSON, &status); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		p.Status = models.ProjectStatus(status)
		if techJSON != nil {
			if err := json.Unmarshal(techJSON, &p.Tech); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tech list: %w", err)
			}
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *PostgresStore) loadTopics(ctx context.Context, userID string) ([]models.EnglishTopic, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, done FROM english_topics WHERE user_id = $1 ORDER BY sort_order`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load english topics: %w", err)
	}
	defer rows.Close()

	var topics []models.EnglishTopic
	for rows.Next() {
		var t models.EnglishTopic
		if err := rows.Scan(&t.ID, &t.Name, &t.Done); err != nil {
			return nil, fmt.Errorf("failed to scan topic row: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (s *PostgresStore) loadNotes(ctx context.Context, userID string) (models.Notes, error) {
	notes := models.Notes{
		WeeklyPlans: map[int]string{},
		Daily:       map[string]string{},
	}

	rows, err := s.pool.Query(ctx,
		`SELECT note_type, note_key, content FROM notes WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return notes, fmt.Errorf("failed to load notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var noteType, noteKey, content string
		if err := rows.Scan(&noteType, &noteKey, &content); err != nil {
			return notes, fmt.Errorf("failed to scan note row: %w", err)
		}
		switch models.NoteType(noteType) {
		case models.NoteGoals:
			notes.Goals = content
		case models.NoteProjectIdeas:
			notes.ProjectIdeas = content
		case models.NoteWeekly:
			notes.WeeklyPlans[dateutil.SafeParseInt(noteKey, 0)] = content
		case models.NoteDaily:
			notes.Daily[noteKey] = content
		}
	}
	return notes, rows.Err()
}

// --- Entity writes ---

// SaveWeight upserts the weight point for the date and refreshes the profile's
// current weight. The two writes are independent, matching the per-entity
// failure model.
func (s *PostgresStore) SaveWeight(ctx context.Context, userID, date string, weight float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO weight_history (user_id, date, weight)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE SET weight = EXCLUDED.weight
	`, userID, date, weight)
	if err != nil {
		return fmt.Errorf("failed to save weight: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE profiles SET current_weight = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, weight,
	)
	if err != nil {
		return fmt.Errorf("failed to update current weight: %w", err)
	}
	return nil
}

// SaveDailyTask upserts one daily-task flag for the date.
func (s *PostgresStore) SaveDailyTask(ctx context.Context, userID, date string, task models.TaskKey, completed bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_tasks (user_id, date, task_key, completed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, date, task_key) DO UPDATE SET completed = EXCLUDED.completed
	`, userID, date, string(task), completed)
	if err != nil {
		return fmt.Errorf("failed to save daily task: %w", err)
	}
	return nil
}

// AddMeal inserts a meal and returns the database-assigned identifier.
func (s *PostgresStore) AddMeal(ctx context.Context, userID, date string, meal models.Meal) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO meals (user_id, date, name, kcal, protein)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, userID, date, meal.Name, meal.Kcal, meal.Protein).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to add meal: %w", err)
	}
	return id, nil
}

// RemoveMeal deletes a meal by id. Removing an id that does not exist is a
// no-op, keeping the operation idempotent.
func (s *PostgresStore) RemoveMeal(ctx context.Context, userID, mealID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM meals WHERE id = $1 AND user_id = $2`,
		mealID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove meal: %w", err)
	}
	return nil
}

// AddScheduleTask inserts a schedule task and returns the database-assigned
// identifier.
func (s *PostgresStore) AddScheduleTask(ctx context.Context, userID, date string, task models.ScheduleTask) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO schedule (user_id, date, name, start_time, end_time, category, done)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, userID, date, task.Name, task.StartTime, task.EndTime, string(task.Category), task.Done).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to add schedule task: %w", err)
	}
	return id, nil
}

// UpdateScheduleTask updates a schedule task's mutable fields.
func (s *PostgresStore) UpdateScheduleTask(ctx context.Context, userID string, task models.ScheduleTask) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE schedule
		SET name = $3, start_time = $4, end_time = $5, category = $6, done = $7
		WHERE id = $1 AND user_id = $2
	`, task.ID, userID, task.Name, task.StartTime, task.EndTime, string(task.Category), task.Done)
	if err != nil {
		return fmt.Errorf("failed to update schedule task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveScheduleTask deletes a schedule task by id.
func (s *PostgresStore) RemoveScheduleTask(ctx context.Context, userID, taskID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM schedule WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove schedule task: %w", err)
	}
	return nil
}

// CopySchedule replaces toDate's schedule with fresh, not-done copies of the
// given tasks. Delete and insert run in one transaction so a failure cannot
// leave the target date half-written.
func (s *PostgresStore) CopySchedule(ctx context.Context, userID, fromDate, toDate string, tasks []models.ScheduleTask) ([]models.ScheduleTask, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM schedule WHERE user_id = $1 AND date = $2`,
		userID, toDate,
	); err != nil {
		return nil, fmt.Errorf("failed to clear target schedule: %w", err)
	}

	copied := make([]models.ScheduleTask, 0, len(tasks))
	for _, t := range tasks {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO schedule (user_id, date, name, start_time, end_time, category, done)
			VALUES ($1, $2, $3, $4, $5, $6, false)
			RETURNING id
		`, userID, toDate, t.Name, t.StartTime, t.EndTime, string(t.Category)).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to copy schedule task: %w", err)
		}
		t.ID = id
		t.Done = false
		copied = append(copied, t)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit schedule copy: %w", err)
	}
	return copied, nil
}

// SaveSkill inserts the skill when it has no ID yet, updates it otherwise.
func (s *PostgresStore) SaveSkill(ctx context.Context, userID string, skill models.Skill, sortOrder int) (string, error) {
	if skill.ID == "" {
		var id string
		err := s.pool.QueryRow(ctx, `
			INSERT INTO skills (user_id, name, category, done, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, userID, skill.Name, skill.Category, skill.Done, sortOrder).Scan(&id)
		if err != nil {
			return "", fmt.Errorf("failed to insert skill: %w", err)
		}
		return id, nil
	}

	result, err := s.pool.Exec(ctx, `
		UPDATE skills SET name = $3, category = $4, done = $5, sort_order = $6
		WHERE id = $1 AND user_id = $2
	`, skill.ID, userID, skill.Name, skill.Category, skill.Done, sortOrder)
	if err != nil {
		return "", fmt.Errorf("failed to update skill: %w", err)
	}
	if result.RowsAffected() == 0 {
		return "", ErrNotFound
	}
	return skill.ID, nil
}

// RemoveSkill deletes a skill by id.
func (s *PostgresStore) RemoveSkill(ctx context.Context, userID, skillID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM skills WHERE id = $1 AND user_id = $2`,
		skillID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove skill: %w", err)
	}
	return nil
}

// SaveProject inserts the project when it has no ID yet, updates it otherwise.
func (s *PostgresStore) SaveProject(ctx context.Context, userID string, project models.Project, sortOrder int) (string, error) {
	techJSON, err := json.Marshal(project.Tech)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tech list: %w", err)
	}

	if project.ID == "" {
		var id string
		err := s.pool.QueryRow(ctx, `
			INSERT INTO projects (user_id, name, description, tech, status, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, userID, project.Name, project.Description, techJSON, string(project.Status), sortOrder).Scan(&id)
		if err != nil {
			return "", fmt.Errorf("failed to insert project: %w", err)
		}
		return id, nil
	}

	result, err := s.pool.Exec(ctx, `
		UPDATE projects SET name = $3, description = $4, tech = $5, status = $6, sort_order = $7
		WHERE id = $1 AND user_id = $2
	`, project.ID, userID, project.Name, project.Description, techJSON, string(project.Status), sortOrder)
	if err != nil {
		return "", fmt.Errorf("failed to update project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return "", ErrNotFound
	}
	return project.ID, nil
}

// RemoveProject deletes a project by id.
func (s *PostgresStore) RemoveProject(ctx context.Context, userID, projectID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM projects WHERE id = $1 AND user_id = $2`,
		projectID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove project: %w", err)
	}
	return nil
}

// SaveTopic inserts the english topic when it has no ID yet, updates it
// otherwise.
func (s *PostgresStore) SaveTopic(ctx context.Context, userID string, topic models.EnglishTopic, sortOrder int) (string, error) {
	if topic.ID == "" {
		var id string
		err := s.pool.QueryRow(ctx, `
			INSERT INTO english_topics (user_id, name, done, sort_order)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, userID, topic.Name, topic.Done, sortOrder).Scan(&id)
		if err != nil {
			return "", fmt.Errorf("failed to insert english topic: %w", err)
		}
		return id, nil
	}

	result, err := s.pool.Exec(ctx, `
		UPDATE english_topics SET name = $3, done = $4, sort_order = $5
		WHERE id = $1 AND user_id = $2
	`, topic.ID, userID, topic.Name, topic.Done, sortOrder)
	if err != nil {
		return "", fmt.Errorf("failed to update english topic: %w", err)
	}
	if result.RowsAffected() == 0 {
		return "", ErrNotFound
	}
	return topic.ID, nil
}

// RemoveTopic deletes an english topic by id.
func (s *PostgresStore) RemoveTopic(ctx context.Context, userID, topicID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM english_topics WHERE id = $1 AND user_id = $2`,
		topicID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove english topic: %w", err)
	}
	return nil
}

// SaveNote upserts one note keyed by (user, type, key). Writing the same note
// twice overwrites rather than duplicating.
func (s *PostgresStore) SaveNote(ctx context.Context, userID string, noteType models.NoteType, noteKey, content string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notes (user_id, note_type, note_key, content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, note_type, note_key) DO UPDATE SET content = EXCLUDED.content
	`, userID, string(noteType), noteKey, content)
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}

// SaveWeightGoalField updates one endpoint of the weight plan.
func (s *PostgresStore) SaveWeightGoalField(ctx context.Context, userID, field string, value float64) error {
	var column string
	switch field {
	case "start":
		column = "start_weight"
	case "target":
		column = "goal_weight"
	default:
		return fmt.Errorf("unknown weight goal field: %s", field)
	}

	_, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE weight_goals SET %s = $2 WHERE user_id = $1`, column),
		userID, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save weight goal: %w", err)
	}
	return nil
}

// SaveStartDate updates the week-1 origin on the profile.
func (s *PostgresStore) SaveStartDate(ctx context.Context, userID, startDate string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE profiles SET start_date = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, startDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save start date: %w", err)
	}
	return nil
}

// ResetAll deletes every entity row for the user and restores the profile and
// weight-goal defaults. Identity is preserved.
func (s *PostgresStore) ResetAll(ctx context.Context, userID string) error {
	tables := []string{
		"weight_history", "daily_tasks", "meals", "schedule",
		"skills", "projects", "english_topics", "notes",
	}
	for _, table := range tables {
		if _, err := s.pool.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table),
			userID,
		); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE profiles SET start_date = $2, current_weight = 72, updated_at = NOW() WHERE user_id = $1`,
		userID, dateutil.TodayKey(),
	); err != nil {
		return fmt.Errorf("failed to reset profile: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE weight_goals SET start_weight = 72, goal_weight = 60 WHERE user_id = $1`,
		userID,
	); err != nil {
		return fmt.Errorf("failed to reset weight goal: %w", err)
	}

	return nil
}
