package services

import (
	"context"
	"log/slog"
	"time"

	"taskroom/domain"
	"taskroom/errors"
	"taskroom/repositories"
)

type IProjectService interface {
	CreateProject(actor domain.Principal, name, description string) (domain.Project, error)
	GetProject(projectID int) (domain.Project, error)
	ListProjects() ([]domain.Project, error)
	CreateTask(projectID int, title, description string, dueDate *time.Time, assignedToID string) (domain.Task, error)
	CompleteTask(ctx context.Context, actor domain.Principal, taskID int) (domain.Task, error)
}

type ProjectService struct {
	projects repositories.IProjectRepository
	notifier *Notifier
	log      *slog.Logger
}

func NewProjectService(projects repositories.IProjectRepository, notifier *Notifier, log *slog.Logger) *ProjectService {
	return &ProjectService{projects: projects, notifier: notifier, log: log}
}

func (s *ProjectService) CreateProject(actor domain.Principal, name, description string) (domain.Project, error) {
	return s.projects.CreateProject(actor.UserID, name, description)
}

func (s *ProjectService) GetProject(projectID int) (domain.Project, error) {
	return s.projects.GetProject(projectID)
}

func (s *ProjectService) ListProjects() ([]domain.Project, error) {
	return s.projects.ListProjects()
}

func (s *ProjectService) CreateTask(projectID int, title, description string, dueDate *time.Time, assignedToID string) (domain.Task, error) {
	return s.projects.CreateTask(projectID, title, description, dueDate, assignedToID)
}

// CompleteTask marks a task as completed and notifies the project's chat
// room. Only the project owner may complete tasks; the authorization check
// happens before the mutation, so an unauthorized attempt never reaches the
// bus. The broadcast fires only when the completion flag actually flips.
func (s *ProjectService) CompleteTask(ctx context.Context, actor domain.Principal, taskID int) (domain.Task, error) {
	task, err := s.projects.GetTask(taskID)
	if err != nil {
		return domain.Task{}, err
	}

	project, err := s.projects.GetProject(task.ProjectID)
	if err != nil {
		return domain.Task{}, err
	}

	if !actor.Authenticated || project.OwnerID != actor.UserID {
		return domain.Task{}, errors.ErrNotOwner
	}

	if task.IsCompleted {
		return task, nil
	}

	completed, err := s.projects.CompleteTask(taskID)
	if err != nil {
		return domain.Task{}, err
	}

	s.notifier.TaskCompleted(ctx, project.ID, completed.Title)
	return completed, nil
}
