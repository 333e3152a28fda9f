package httpapi

import (
	"encoding/json"
	goerrors "errors"
	"net/http"
	"strconv"
	"time"

	"taskroom/domain"
	"taskroom/errors"

	"github.com/julienschmidt/httprouter"
	"github.com/samber/lo"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type createTaskRequest struct {
	Title        string     `json:"title" validate:"required,min=1,max=200"`
	Description  string     `json:"description" validate:"max=2000"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	AssignedToID string     `json:"assigned_to_id,omitempty"`
}

type taskResponse struct {
	ID           int        `json:"id"`
	ProjectID    int        `json:"project_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	IsCompleted  bool       `json:"is_completed"`
	AssignedToID string     `json:"assigned_to_id,omitempty"`
}

type projectResponse struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	OwnerID     string         `json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`
	Tasks       []taskResponse `json:"tasks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toTaskResponse(t domain.Task) taskResponse {
	return taskResponse{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		Title:        t.Title,
		Description:  t.Description,
		DueDate:      t.DueDate,
		IsCompleted:  t.IsCompleted,
		AssignedToID: t.AssignedToID,
	}
}

func toProjectResponse(p domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		Tasks: lo.Map(p.Tasks, func(t domain.Task, _ int) taskResponse {
			return toTaskResponse(t)
		}),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload credentialsRequest
	if !s.decode(w, r, &payload) {
		return
	}

	token, err := s.auth.Register(payload.Email, payload.Password)
	switch {
	case goerrors.Is(err, errors.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, "email already registered")
	case goerrors.Is(err, errors.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.log.Error("registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
	default:
		writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload credentialsRequest
	if !s.decode(w, r, &payload) {
		return
	}

	token, err := s.auth.Login(payload.Email, payload.Password)
	if err != nil {
		// One answer for wrong email and wrong password alike
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload createProjectRequest
	if !s.decode(w, r, &payload) {
		return
	}

	project, err := s.projects.CreateProject(principalFrom(r.Context()), payload.Name, payload.Description)
	if err != nil {
		s.log.Error("project creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "project creation failed")
		return
	}
	writeJSON(w, http.StatusCreated, toProjectResponse(project))
}

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	projects, err := s.projects.ListProjects()
	if err != nil {
		s.log.Error("project listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "project listing failed")
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(projects, func(p domain.Project, _ int) projectResponse {
		return toProjectResponse(p)
	}))
}

func (s *Server) handleGetProject(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	projectID, err := strconv.Atoi(ps.ByName("project_id"))
	if err != nil || projectID <= 0 {
		writeError(w, http.StatusBadRequest, "project id must be a positive integer")
		return
	}

	project, err := s.projects.GetProject(projectID)
	if goerrors.Is(err, errors.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.log.Error("project lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "project lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(project))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	projectID, err := strconv.Atoi(ps.ByName("project_id"))
	if err != nil || projectID <= 0 {
		writeError(w, http.StatusBadRequest, "project id must be a positive integer")
		return
	}

	var payload createTaskRequest
	if !s.decode(w, r, &payload) {
		return
	}

	task, err := s.projects.CreateTask(projectID, payload.Title, payload.Description, payload.DueDate, payload.AssignedToID)
	if goerrors.Is(err, errors.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.log.Error("task creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "task creation failed")
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	taskID, err := strconv.Atoi(ps.ByName("task_id"))
	if err != nil || taskID <= 0 {
		writeError(w, http.StatusBadRequest, "task id must be a positive integer")
		return
	}

	task, err := s.projects.CompleteTask(r.Context(), principalFrom(r.Context()), taskID)
	switch {
	case goerrors.Is(err, errors.ErrTaskNotFound), goerrors.Is(err, errors.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case goerrors.Is(err, errors.ErrNotOwner):
		writeError(w, http.StatusForbidden, "only the project owner can complete tasks")
	case err != nil:
		s.log.Error("task completion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "task completion failed")
	default:
		writeJSON(w, http.StatusOK, toTaskResponse(task))
	}
}
