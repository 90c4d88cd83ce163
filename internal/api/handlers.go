package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stridelog/tracker-engine/internal/auth"
	"github.com/stridelog/tracker-engine/internal/catalog"
	"github.com/stridelog/tracker-engine/internal/dateutil"
	"github.com/stridelog/tracker-engine/internal/models"
	"github.com/stridelog/tracker-engine/internal/storage"
	"github.com/stridelog/tracker-engine/internal/tracker"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondStoreError maps store errors onto HTTP statuses. Validation failures
// already pushed a warning notification; the response mirrors the message.
func respondStoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, tracker.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "item not found")
	default:
		slog.Error(fallback, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Configured backends must answer; absent ones are fine by design of the
	// degraded modes.
	if s.entities != nil {
		if err := s.entities.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "not_ready", "database not ready")
			return
		}
	}
	if s.docs != nil {
		if err := s.docs.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "not_ready", "document store not ready")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Auth handlers

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		case errors.Is(err, storage.ErrEmailTaken):
			respondError(w, http.StatusConflict, "email_taken", "this email is already registered")
		default:
			slog.Error("failed to register user", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to register")
		}
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sessionID, user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid_credentials", "wrong email or password")
			return
		}
		slog.Error("failed to log in", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to log in")
		return
	}

	s.auth.SetCookie(w, sessionID)
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.auth.CookieName()); err == nil && cookie.Value != "" {
		if userID, err := s.auth.Resolve(r.Context(), cookie.Value); err == nil && userID != "" {
			s.store.Evict(userID)
		}
		if err := s.auth.Logout(r.Context(), cookie.Value); err != nil {
			slog.Error("failed to drop session", "error", err)
		}
	}

	s.auth.ClearCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(s.auth.CookieName())
	if err != nil || cookie.Value == "" {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	userID, err := s.auth.Resolve(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "authentication error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": userID != "",
		"user_id":       userID,
	})
}

// Raw document handlers

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	doc, err := s.store.Document(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err, "failed to load data")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePutData(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.store.ReplaceDocument(r.Context(), userID, &doc); err != nil {
		respondStoreError(w, err, "failed to save data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "data saved",
	})
}

func (s *Server) handleEraseData(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	if err := s.store.EraseLocal(r.Context(), userID); err != nil {
		respondStoreError(w, err, "failed to erase data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "local data erased",
	})
}

// Derived views

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	doc, err := s.store.Document(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err, "failed to load state")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"document":    doc,
		"save_status": s.store.SaveStatus(userID),
	})
}

type dailyTaskView struct {
	Key   models.TaskKey `json:"key"`
	Icon  string         `json:"icon"`
	Label string         `json:"label"`
	Done  bool           `json:"done"`
}

func (s *Server) handleGetToday(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	doc, err := s.store.Document(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err, "failed to load today view")
		return
	}

	today := dateutil.TodayKey()
	done := doc.DailyHistory[today]

	tasks := make([]dailyTaskView, 0, len(catalog.DailyTasks))
	for _, t := range catalog.DailyTasks {
		tasks = append(tasks, dailyTaskView{Key: t.Key, Icon: t.Icon, Label: t.Label, Done: done[t.Key]})
	}

	schedule := append([]models.ScheduleTask(nil), doc.Schedule[today]...)
	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].StartTime < schedule[j].StartTime
	})

	meals := doc.Meals[today]
	if meals == nil {
		meals = []models.Meal{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":       today,
		"date_label": dateutil.FormatDate(today),
		"quote":      catalog.QuoteForDate(today),
		"tasks":      tasks,
		"meals":      meals,
		"schedule":   schedule,
	})
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	metrics, err := s.store.Metrics(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err, "failed to compute metrics")
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleGetHeatmap(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	heatmap, err := s.store.Heatmap(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err, "failed to compute heatmap")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days": heatmap,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	if err := s.store.ResetAll(r.Context(), userID); err != nil {
		respondStoreError(w, err, "failed to reset data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "all data reset",
	})
}

// Daily habit handlers

func (s *Server) handleToggleDailyTask(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	key := models.TaskKey(chi.URLParam(r, "key"))
	date := r.URL.Query().Get("date")

	if err := s.store.ToggleDailyTask(r.Context(), userID, date, key); err != nil {
		respondStoreError(w, err, "failed to toggle daily task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "toggled",
	})
}

// Meal handlers

func (s *Server) handleAddMeal(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req models.AddMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	meal, err := s.store.AddMeal(r.Context(), userID, req)
	if err != nil {
		respondStoreError(w, err, "failed to add meal")
		return
	}
	respondJSON(w, http.StatusCreated, meal)
}

func (s *Server) handleRemoveMeal(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.RemoveMeal(r.Context(), userID, id); err != nil {
		respondStoreError(w, err, "failed to remove meal")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "meal removed",
	})
}

// Schedule handlers

func (s *Server) handleAddScheduleTask(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req models.AddScheduleTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	task, err := s.store.AddScheduleTask(r.Context(), userID, req)
	if err != nil {
		respondStoreError(w, err, "failed to add schedule task")
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleToggleScheduleTask(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	date := r.URL.Query().Get("date")

	if err := s.store.ToggleScheduleTask(r.Context(), userID, date, id); err != nil {
		respondStoreError(w, err, "failed to toggle schedule task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "toggled",
	})
}

func (s *Server) handleRemoveScheduleTask(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	date := r.URL.Query().Get("date")

	if err := s.store.RemoveScheduleTask(r.Context(), userID, date, id); err != nil {
		respondStoreError(w, err, "failed to remove schedule task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "task removed",
	})
}

func (s *Server) handleCopyYesterdaySchedule(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	if err := s.store.CopyYesterdaySchedule(r.Context(), userID); err != nil {
		respondStoreError(w, err, "failed to copy schedule")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "schedule copied",
	})
}

func (s *Server) handleApplyScheduleTemplates(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	tasks, err := s.store.ApplyScheduleTemplates(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err, "failed to apply schedule templates")
		return
	}
	respondJSON(w, http.StatusCreated, tasks)
}

// Checklist handlers

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req models.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	skill, err := s.store.AddSkill(r.Context(), userID, req.Name)
	if err != nil {
		respondStoreError(w, err, "failed to add skill")
		return
	}
	respondJSON(w, http.StatusCreated, skill)
}

func (s *Server) handleToggleSkill(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.ToggleSkill(r.Context(), userID, id); err != nil {
		respondStoreError(w, err, "failed to toggle skill")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "toggled",
	})
}

func (s *Server) handleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.RemoveSkill(r.Context(), userID, id); err != nil {
		respondStoreError(w, err, "failed to remove skill")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "skill removed",
	})
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req models.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	project, err := s.store.AddProject(r.Context(), userID, req.Name)
	if err != nil {
		respondStoreError(w, err, "failed to add project")
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

func (s *Server) handleUpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req models.UpdateProjectStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.store.UpdateProjectStatus(r.Context(), userID, id, req.Status); err != nil {
		respondStoreError(w, err, "failed to update project status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "status updated",
	})
}

func (s *Server) handleRemoveProject(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.RemoveProject(r.Context(), userID, id); err != nil {
		respondStoreError(w, err, "failed to remove project")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "project removed",
	})
}

func (s *Server) handleAddEnglishTopic(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req models.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	topic, err := s.store.AddEnglishTopic(r.Context(), userID, req.Name)
	if err != nil {
		respondStoreError(w, err, "failed to add topic")
		return
	}
	respondJSON(w, http.StatusCreated, topic)
}

func (s *Server) handleToggleEnglishTopic(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.ToggleEnglishTopic(r.Context(), userID, id); err != nil {
		respondStoreError(w, err, "failed to toggle topic")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "toggled",
	})
}

func (s *Server) handleRemoveEnglishTopic(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.RemoveEnglishTopic(r.Context(), userID, id); err != nil {
		respondStoreError(w, err, "failed to remove topic")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "topic removed",
	})
}

// Weight handlers

func (s *Server) handleUpdateWeight(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req models.UpdateWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.store.UpdateWeight(r.Context(), userID, req.Weight.String()); err != nil {
		respondStoreError(w, err, "failed to update weight")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "weight updated",
	})
}

func (s *Server) handleUpdateWeightGoal(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req models.UpdateWeightGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.store.UpdateWeightGoal(r.Context(), userID, req.Field, req.Value.String()); err != nil {
		respondStoreError(w, err, "failed to update weight goal")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "goal updated",
	})
}

func (s *Server) handleUpdateStartDate(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req models.UpdateDailyNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.store.UpdateStartDate(r.Context(), userID, req.Date); err != nil {
		respondStoreError(w, err, "failed to update start date")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "start date updated",
	})
}

// Note handlers

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	noteType := models.NoteType(chi.URLParam(r, "type"))

	var req models.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.store.UpdateNote(r.Context(), userID, noteType, req.Content); err != nil {
		respondStoreError(w, err, "failed to update note")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "note updated",
	})
}

func (s *Server) handleUpdateWeeklyPlan(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req models.UpdateWeeklyPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.store.UpdateWeeklyPlan(r.Context(), userID, req.Week, req.Content); err != nil {
		respondStoreError(w, err, "failed to update weekly plan")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "weekly plan updated",
	})
}

func (s *Server) handleUpdateDailyNote(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req models.UpdateDailyNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.store.UpdateDailyNote(r.Context(), userID, req.Date, req.Content); err != nil {
		respondStoreError(w, err, "failed to update daily note")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "daily note updated",
	})
}

// Notification handlers

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": s.center.Active(userID),
		"save_status":   s.store.SaveStatus(userID),
	})
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	s.center.Dismiss(userID, id)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "dismissed",
	})
}

// Catalog handler

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"daily_tasks":        catalog.DailyTasks,
		"schedule_templates": catalog.ScheduleTemplates,
		"category_icons":     catalog.CategoryIcons,
		"quote":              catalog.QuoteForDate(dateutil.TodayKey()),
	})
}
