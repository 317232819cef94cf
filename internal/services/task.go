package services

import (
	"context"

	"github.com/taskdeck/apiserver/types"
)

// TaskRepository defines persistence operations for tasks. Mutations are
// owner-scoped: the repository must treat a task that does not exist and
// a task owned by someone else identically (store.ErrNotFound).
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error)
	Create(ctx context.Context, ownerID int, title string) (types.Task, error)
	UpdateOwned(ctx context.Context, taskID, ownerID int, patch types.TaskPatch) (types.Task, error)
	DeleteOwned(ctx context.Context, taskID, ownerID int) error
}

// TaskService encapsulates task use-cases.
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *TaskService) Create(ctx context.Context, ownerID int, title string) (types.Task, error) {
	return s.repo.Create(ctx, ownerID, title)
}

func (s *TaskService) Update(ctx context.Context, taskID, ownerID int, patch types.TaskPatch) (types.Task, error) {
	return s.repo.UpdateOwned(ctx, taskID, ownerID, patch)
}

func (s *TaskService) Delete(ctx context.Context, taskID, ownerID int) error {
	return s.repo.DeleteOwned(ctx, taskID, ownerID)
}
