// Package client is a Go SDK for the tracker-engine API. It signs in with
// email and password, keeps the session cookie in a jar and wraps every
// endpoint in a typed method.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/stridelog/tracker-engine/internal/models"
	"github.com/stridelog/tracker-engine/internal/tracker"
)

// Client talks to one tracker-engine instance on behalf of one user.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. It must carry a cookie jar or
// authenticated calls will fail after login.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new tracker-engine client
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// apiEnvelope mirrors the server's response wrapper.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Session describes the auth state reported by the server.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id"`
}

// State is the full state view: the document plus the save indicator.
type State struct {
	Document   *models.Document `json:"document"`
	SaveStatus string           `json:"save_status"`
}

// TodayView is the assembled view of the current day.
type TodayView struct {
	Date      string                `json:"date"`
	DateLabel string                `json:"date_label"`
	Quote     string                `json:"quote"`
	Tasks     []TodayTask           `json:"tasks"`
	Meals     []models.Meal         `json:"meals"`
	Schedule  []models.ScheduleTask `json:"schedule"`
}

// TodayTask is one fixed daily habit with its done flag for today.
type TodayTask struct {
	Key   models.TaskKey `json:"key"`
	Icon  string         `json:"icon"`
	Label string         `json:"label"`
	Done  bool           `json:"done"`
}

// Auth

// Register creates an account. It does not open a session; call Login next.
func (c *Client) Register(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := c.doJSON(ctx, "POST", "/api/v1/auth/register",
		models.RegisterRequest{Email: email, Password: password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login opens a session; the cookie lands in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := c.doJSON(ctx, "POST", "/api/v1/auth/login",
		models.LoginRequest{Email: email, Password: password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout closes the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, "POST", "/api/v1/auth/logout", nil, nil)
}

// GetSession reports whether the stored cookie still opens a session.
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	var sess Session
	if err := c.doJSON(ctx, "GET", "/api/v1/auth/session", nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Documents and views

// GetData downloads the raw document.
func (c *Client) GetData(ctx context.Context) (*models.Document, error) {
	var doc models.Document
	if err := c.doJSON(ctx, "GET", "/api/v1/data", nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// PutData replaces the raw document wholesale.
func (c *Client) PutData(ctx context.Context, doc *models.Document) error {
	return c.doJSON(ctx, "PUT", "/api/v1/data", doc, nil)
}

// EraseData deletes the server's local mirrors of the document. The next
// read starts from the relational backend or the seeded defaults.
func (c *Client) EraseData(ctx context.Context) error {
	return c.doJSON(ctx, "DELETE", "/api/v1/data", nil, nil)
}

// GetState fetches the document together with the save indicator.
func (c *Client) GetState(ctx context.Context) (*State, error) {
	var state State
	if err := c.doJSON(ctx, "GET", "/api/v1/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetToday fetches the assembled view of the current day.
func (c *Client) GetToday(ctx context.Context) (*TodayView, error) {
	var view TodayView
	if err := c.doJSON(ctx, "GET", "/api/v1/state/today", nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetMetrics fetches the derived metrics.
func (c *Client) GetMetrics(ctx context.Context) (*tracker.Metrics, error) {
	var m tracker.Metrics
	if err := c.doJSON(ctx, "GET", "/api/v1/state/metrics", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetHeatmap fetches the 30-day daily completion map.
func (c *Client) GetHeatmap(ctx context.Context) (map[string]float64, error) {
	var data struct {
		Days map[string]float64 `json:"days"`
	}
	if err := c.doJSON(ctx, "GET", "/api/v1/state/heatmap", nil, &data); err != nil {
		return nil, err
	}
	return data.Days, nil
}

// Reset wipes all data back to the defaults.
func (c *Client) Reset(ctx context.Context) error {
	return c.doJSON(ctx, "POST", "/api/v1/state/reset", nil, nil)
}

// Mutations

// ToggleDailyTask flips a fixed habit for today (or the given date key).
func (c *Client) ToggleDailyTask(ctx context.Context, key models.TaskKey, date string) error {
	path := fmt.Sprintf("/api/v1/daily/%s/toggle", key)
	if date != "" {
		path += "?date=" + date
	}
	return c.doJSON(ctx, "POST", path, nil, nil)
}

// AddMeal logs a meal for today.
func (c *Client) AddMeal(ctx context.Context, req models.AddMealRequest) (*models.Meal, error) {
	var meal models.Meal
	if err := c.doJSON(ctx, "POST", "/api/v1/meals", req, &meal); err != nil {
		return nil, err
	}
	return &meal, nil
}

// RemoveMeal deletes a meal from today's log.
func (c *Client) RemoveMeal(ctx context.Context, mealID string) error {
	return c.doJSON(ctx, "DELETE", "/api/v1/meals/"+mealID, nil, nil)
}

// AddScheduleTask adds a task to today's plan.
func (c *Client) AddScheduleTask(ctx context.Context, req models.AddScheduleTaskRequest) (*models.ScheduleTask, error) {
	var task models.ScheduleTask
	if err := c.doJSON(ctx, "POST", "/api/v1/schedule", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ToggleScheduleTask flips a plan entry.
func (c *Client) ToggleScheduleTask(ctx context.Context, taskID, date string) error {
	path := fmt.Sprintf("/api/v1/schedule/%s/toggle", taskID)
	if date != "" {
		path += "?date=" + date
	}
	return c.doJSON(ctx, "POST", path, nil, nil)
}

// RemoveScheduleTask deletes a plan entry.
func (c *Client) RemoveScheduleTask(ctx context.Context, taskID, date string) error {
	path := "/api/v1/schedule/" + taskID
	if date != "" {
		path += "?date=" + date
	}
	return c.doJSON(ctx, "DELETE", path, nil, nil)
}

// CopyYesterdaySchedule replaces today's plan with yesterday's, unticked.
func (c *Client) CopyYesterdaySchedule(ctx context.Context) error {
	return c.doJSON(ctx, "POST", "/api/v1/schedule/copy-yesterday", nil, nil)
}

// ApplyScheduleTemplates adds the catalog's suggested day plan to today's
// schedule and returns the resulting plan.
func (c *Client) ApplyScheduleTemplates(ctx context.Context) ([]models.ScheduleTask, error) {
	var tasks []models.ScheduleTask
	if err := c.doJSON(ctx, "POST", "/api/v1/schedule/apply-template", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// AddSkill appends a roadmap checklist entry.
func (c *Client) AddSkill(ctx context.Context, name string) (*models.Skill, error) {
	var skill models.Skill
	if err := c.doJSON(ctx, "POST", "/api/v1/skills", models.AddItemRequest{Name: name}, &skill); err != nil {
		return nil, err
	}
	return &skill, nil
}

// ToggleSkill flips a roadmap entry.
func (c *Client) ToggleSkill(ctx context.Context, skillID string) error {
	return c.doJSON(ctx, "POST", fmt.Sprintf("/api/v1/skills/%s/toggle", skillID), nil, nil)
}

// RemoveSkill deletes a roadmap entry.
func (c *Client) RemoveSkill(ctx context.Context, skillID string) error {
	return c.doJSON(ctx, "DELETE", "/api/v1/skills/"+skillID, nil, nil)
}

// AddProject creates a kanban card in todo.
func (c *Client) AddProject(ctx context.Context, name string) (*models.Project, error) {
	var project models.Project
	if err := c.doJSON(ctx, "POST", "/api/v1/projects", models.AddItemRequest{Name: name}, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProjectStatus moves a card between columns.
func (c *Client) UpdateProjectStatus(ctx context.Context, projectID string, status models.ProjectStatus) error {
	return c.doJSON(ctx, "PUT", fmt.Sprintf("/api/v1/projects/%s/status", projectID),
		models.UpdateProjectStatusRequest{Status: status}, nil)
}

// RemoveProject deletes a kanban card.
func (c *Client) RemoveProject(ctx context.Context, projectID string) error {
	return c.doJSON(ctx, "DELETE", "/api/v1/projects/"+projectID, nil, nil)
}

// AddEnglishTopic appends a study checklist entry.
func (c *Client) AddEnglishTopic(ctx context.Context, name string) (*models.EnglishTopic, error) {
	var topic models.EnglishTopic
	if err := c.doJSON(ctx, "POST", "/api/v1/english", models.AddItemRequest{Name: name}, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

// ToggleEnglishTopic flips a study entry.
func (c *Client) ToggleEnglishTopic(ctx context.Context, topicID string) error {
	return c.doJSON(ctx, "POST", fmt.Sprintf("/api/v1/english/%s/toggle", topicID), nil, nil)
}

// RemoveEnglishTopic deletes a study entry.
func (c *Client) RemoveEnglishTopic(ctx context.Context, topicID string) error {
	return c.doJSON(ctx, "DELETE", "/api/v1/english/"+topicID, nil, nil)
}

// UpdateWeight records today's weigh-in.
func (c *Client) UpdateWeight(ctx context.Context, weight string) error {
	return c.doJSON(ctx, "PUT", "/api/v1/weight",
		models.UpdateWeightRequest{Weight: models.LooseNumber(weight)}, nil)
}

// UpdateWeightGoal updates one endpoint of the plan; field is "start" or
// "target".
func (c *Client) UpdateWeightGoal(ctx context.Context, field, value string) error {
	return c.doJSON(ctx, "PUT", "/api/v1/weight/goal",
		models.UpdateWeightGoalRequest{Field: field, Value: models.LooseNumber(value)}, nil)
}

// UpdateStartDate moves the week-1 origin.
func (c *Client) UpdateStartDate(ctx context.Context, date string) error {
	return c.doJSON(ctx, "PUT", "/api/v1/start-date",
		models.UpdateDailyNoteRequest{Date: date}, nil)
}

// UpdateNote writes the goals or projectIdeas note.
func (c *Client) UpdateNote(ctx context.Context, noteType models.NoteType, content string) error {
	return c.doJSON(ctx, "PUT", "/api/v1/notes/"+string(noteType),
		models.UpdateNoteRequest{Content: content}, nil)
}

// UpdateWeeklyPlan writes the plan text for one plan week.
func (c *Client) UpdateWeeklyPlan(ctx context.Context, week int, content string) error {
	return c.doJSON(ctx, "PUT", "/api/v1/notes/weekly",
		models.UpdateWeeklyPlanRequest{Week: week, Content: content}, nil)
}

// UpdateDailyNote writes the note for one date key.
func (c *Client) UpdateDailyNote(ctx context.Context, date, content string) error {
	return c.doJSON(ctx, "PUT", "/api/v1/notes/daily",
		models.UpdateDailyNoteRequest{Date: date, Content: content}, nil)
}

// DismissNotification removes a live notification.
func (c *Client) DismissNotification(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/api/v1/notifications/"+id, nil, nil)
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, "GET", "/health", nil, nil)
}

// doJSON performs a request and unwraps the response envelope into out.
// out may be nil when only success matters.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if !envelope.Success {
		if envelope.Error != nil {
			return fmt.Errorf("API error: %s - %s", envelope.Error.Code, envelope.Error.Message)
		}
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
