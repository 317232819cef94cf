package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskdeck/apiserver/types"
)

// TaskRepository handles persistence for tasks. Every mutation is scoped
// by both task id and owner id in a single statement, so an ownership
// check never races against a concurrent delete.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error) {
	const query = `
		SELECT id, title, completed, user_id, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]types.Task, 0)
	for rows.Next() {
		var task types.Task
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Completed,
			&task.UserID,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, ownerID int, title string) (types.Task, error) {
	now := time.Now()
	task := types.Task{
		Title:     title,
		Completed: false,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const query = `
		INSERT INTO tasks (title, completed, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		task.Completed,
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// UpdateOwned applies the patch to the task only if it exists and belongs
// to ownerID. A missing and a foreign task are both reported as ErrNotFound.
func (r *TaskRepository) UpdateOwned(ctx context.Context, taskID, ownerID int, patch types.TaskPatch) (types.Task, error) {
	title := sql.NullString{}
	if patch.Title != nil {
		title = sql.NullString{String: *patch.Title, Valid: true}
	}
	completed := sql.NullBool{}
	if patch.Completed != nil {
		completed = sql.NullBool{Bool: *patch.Completed, Valid: true}
	}

	const query = `
		UPDATE tasks
		SET title = COALESCE($1, title),
			completed = COALESCE($2, completed),
			updated_at = $3
		WHERE id = $4 AND user_id = $5
		RETURNING id, title, completed, user_id, created_at, updated_at`
	var task types.Task
	err := r.db.QueryRowContext(ctx, query, title, completed, time.Now(), taskID, ownerID).Scan(
		&task.ID,
		&task.Title,
		&task.Completed,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	return task, nil
}

// DeleteOwned removes the task only if it exists and belongs to ownerID.
// A missing and a foreign task are both reported as ErrNotFound.
func (r *TaskRepository) DeleteOwned(ctx context.Context, taskID, ownerID int) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
