package types

import "time"

// Task represents a single to-do item owned by exactly one user.
type Task struct {
	// ID is the unique identifier of the task.
	ID int `json:"id" db:"id"`

	// Title is the human-readable description of the task.
	// It is between 1 and 255 characters.
	Title string `json:"title" db:"title"`

	// Completed reports whether the task has been marked done.
	// New tasks always start incomplete.
	Completed bool `json:"completed" db:"completed"`

	// UserID is the identifier of the user who owns this task.
	// All reads and mutations are scoped to the owner.
	UserID int `json:"userId" db:"user_id"`

	// CreatedAt is the timestamp at which the task was created.
	// Task listings are ordered by this field, newest first.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the task.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// TaskPatch describes a partial update to a task. Nil fields are left
// unchanged; a patch with no fields set is rejected at the boundary.
type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil
}
