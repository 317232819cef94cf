package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/apiserver/internal/logging"
	"github.com/taskdeck/apiserver/internal/services"
	"github.com/taskdeck/apiserver/internal/store"
	"github.com/taskdeck/apiserver/types"
)

const testSecret = "test-secret"

// memUserRepo is an in-memory services.UserRepository.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int]types.User{}}
}

func (r *memUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user, nil
}

// memTaskRepo is an in-memory services.TaskRepository with the same
// owner-scoped semantics as the Postgres repository.
type memTaskRepo struct {
	mu     sync.Mutex
	nextID int
	clock  int64
	tasks  map[int]types.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[int]types.Task{}}
}

func (r *memTaskRepo) ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := make([]types.Task, 0)
	for _, task := range r.tasks {
		if task.UserID == ownerID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
	return tasks, nil
}

func (r *memTaskRepo) Create(ctx context.Context, ownerID int, title string) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.clock++
	now := time.Unix(0, r.clock*int64(time.Millisecond))
	task := types.Task{
		ID:        r.nextID,
		Title:     title,
		Completed: false,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.tasks[task.ID] = task
	return task, nil
}

func (r *memTaskRepo) UpdateOwned(ctx context.Context, taskID, ownerID int, patch types.TaskPatch) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return types.Task{}, store.ErrNotFound
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	r.clock++
	task.UpdatedAt = time.Unix(0, r.clock*int64(time.Millisecond))
	r.tasks[taskID] = task
	return task, nil
}

func (r *memTaskRepo) DeleteOwned(ctx context.Context, taskID, ownerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

// errStoreBroken stands in for an unexpected store failure, such as a
// dropped connection. Its text must never reach a response body.
var errStoreBroken = errors.New("pq: connection reset by peer")

// failingUserRepo fails every operation with errStoreBroken.
type failingUserRepo struct{}

func (failingUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	return types.User{}, errStoreBroken
}

func (failingUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return types.User{}, errStoreBroken
}

func (failingUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	return types.User{}, errStoreBroken
}

// failingTaskRepo fails every operation with errStoreBroken.
type failingTaskRepo struct{}

func (failingTaskRepo) ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error) {
	return nil, errStoreBroken
}

func (failingTaskRepo) Create(ctx context.Context, ownerID int, title string) (types.Task, error) {
	return types.Task{}, errStoreBroken
}

func (failingTaskRepo) UpdateOwned(ctx context.Context, taskID, ownerID int, patch types.TaskPatch) (types.Task, error) {
	return types.Task{}, errStoreBroken
}

func (failingTaskRepo) DeleteOwned(ctx context.Context, taskID, ownerID int) error {
	return errStoreBroken
}

type testEnv struct {
	router   *chi.Mux
	userRepo *memUserRepo
	taskRepo *memTaskRepo
}

// newTestEnv wires the routers exactly as internal/server does, with
// in-memory repositories instead of Postgres.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userRepo := newMemUserRepo()
	taskRepo := newMemTaskRepo()
	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo)
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testSecret, log)
	})
	router.Route("/tasks", func(r chi.Router) {
		TaskRouter(r, taskService, RequireAuth(testSecret), log)
	})

	return &testEnv{router: router, userRepo: userRepo, taskRepo: taskRepo}
}

// newFailingTestEnv wires the routers over repositories whose every
// operation fails with errStoreBroken.
func newFailingTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userService := services.NewUserService(failingUserRepo{})
	taskService := services.NewTaskService(failingTaskRepo{})
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testSecret, log)
	})
	router.Route("/tasks", func(r chi.Router) {
		TaskRouter(r, taskService, RequireAuth(testSecret), log)
	})

	return &testEnv{router: router}
}

// do sends a JSON request through the router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns a session token for it.
func (e *testEnv) register(t *testing.T, email, password string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", email, w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", email, w.Code, w.Body.String())
	}

	var parsed LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return parsed.Token
}
