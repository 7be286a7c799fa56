package main

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harlequingg/taskmanager/internal/data"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	store, err := data.Open(t.Context(), data.Config{DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	var cfg config
	cfg.env = "testing"
	cfg.jwt.secret = "test-secret"
	cfg.jwt.ttl = time.Hour
	cfg.bcryptCost = bcrypt.MinCost

	app, err := newApplication(cfg, zerolog.Nop(), store)
	require.NoError(t, err)
	return app
}

// register creates a user and returns a bearer token for it.
func register(t *testing.T, h http.Handler, username, email, password string) string {
	t.Helper()

	apitest.New().
		Handler(h).
		Post("/register").
		JSON(`{"username":"` + username + `","email":"` + email + `","password":"` + password + `"}`).
		Expect(t).
		Status(http.StatusCreated).
		End()

	var out struct {
		Token string `json:"token"`
	}
	apitest.New().
		Handler(h).
		Post("/login").
		JSON(`{"email":"` + email + `","password":"` + password + `"}`).
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func createTask(t *testing.T, h http.Handler, token, title string) data.Task {
	t.Helper()

	var task data.Task
	apitest.New().
		Handler(h).
		Post("/tasks").
		Header("Authorization", "Bearer "+token).
		JSON(`{"title":"` + title + `"}`).
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&task)
	require.NotEmpty(t, task.ID)
	return task
}

// forbiddenTasks fails the test on any task store access.
type forbiddenTasks struct {
	t *testing.T
}

func (f forbiddenTasks) fail() error {
	f.t.Error("task store must not be reached")
	return data.ErrNotFound
}

func (f forbiddenTasks) ListTasksByOwner(context.Context, string) ([]data.Task, error) {
	return nil, f.fail()
}
func (f forbiddenTasks) InsertTask(context.Context, *data.Task) error { return f.fail() }
func (f forbiddenTasks) GetTask(context.Context, string) (*data.Task, error) {
	return nil, f.fail()
}
func (f forbiddenTasks) UpdateTask(context.Context, *data.Task) error { return f.fail() }
func (f forbiddenTasks) DeleteTask(context.Context, string) error     { return f.fail() }

type sentMail struct {
	to       string
	template string
	data     any
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, template: templateFile, data: data})
	return m.err
}
