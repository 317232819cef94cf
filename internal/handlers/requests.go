package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/taskdeck/apiserver/types"
)

const (
	minPasswordLength = 6
	minNameLength     = 2
	maxTitleLength    = 255
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Validate returns a field→message map, empty on success. Validation runs
// before any store access; a failed request is never partially applied.
func (r *RegisterRequest) Validate() map[string]string {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)

	fields := map[string]string{}
	if !emailPattern.MatchString(r.Email) {
		fields["email"] = "invalid email address"
	}
	if r.Name != "" && utf8.RuneCountInString(r.Name) < minNameLength {
		fields["name"] = "name must be at least 2 characters"
	}
	if utf8.RuneCountInString(r.Password) < minPasswordLength {
		fields["password"] = "password must be at least 6 characters"
	}
	return fields
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() map[string]string {
	r.Email = strings.TrimSpace(r.Email)

	fields := map[string]string{}
	if !emailPattern.MatchString(r.Email) {
		fields["email"] = "invalid email address"
	}
	if r.Password == "" {
		fields["password"] = "password is required"
	}
	return fields
}

// CreateTaskRequest is the payload for POST /tasks.
type CreateTaskRequest struct {
	Title string `json:"title"`
}

func (r *CreateTaskRequest) Validate() map[string]string {
	r.Title = strings.TrimSpace(r.Title)

	fields := map[string]string{}
	switch {
	case r.Title == "":
		fields["title"] = "task title cannot be empty"
	case utf8.RuneCountInString(r.Title) > maxTitleLength:
		fields["title"] = "task title must be at most 255 characters"
	}
	return fields
}

// UpdateTaskRequest is the payload for PUT /tasks/{taskID}. Both fields
// are optional but at least one must be present.
type UpdateTaskRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func (r *UpdateTaskRequest) Validate() map[string]string {
	fields := map[string]string{}
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
		switch {
		case trimmed == "":
			fields["title"] = "task title cannot be empty"
		case utf8.RuneCountInString(trimmed) > maxTitleLength:
			fields["title"] = "task title must be at most 255 characters"
		}
	}
	return fields
}

// Patch converts the request into the store-level patch shape.
func (r *UpdateTaskRequest) Patch() types.TaskPatch {
	return types.TaskPatch{Title: r.Title, Completed: r.Completed}
}
