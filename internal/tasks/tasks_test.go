package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harlequingg/taskmanager/internal/data"
	"github.com/harlequingg/taskmanager/internal/validator"
)

func setup(t *testing.T) (*Service, *data.User, *data.User) {
	t.Helper()
	store, err := data.Open(t.Context(), data.Config{DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	alice := &data.User{Username: "alice", Email: "alice@x.com", PasswordHash: []byte("h")}
	bob := &data.User{Username: "bob", Email: "bob@x.com", PasswordHash: []byte("h")}
	require.NoError(t, store.InsertUser(t.Context(), alice))
	require.NoError(t, store.InsertUser(t.Context(), bob))
	return New(store), alice, bob
}

func TestCreateAndList(t *testing.T) {
	t.Parallel()

	svc, alice, bob := setup(t)
	ctx := t.Context()

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	task, err := svc.Create(ctx, alice.ID, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Title)
	assert.False(t, task.Completed)
	assert.Equal(t, alice.ID, task.UserID)

	list, err = svc.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []data.Task{*task}, list)

	list, err = svc.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "tasks are invisible to other users")
}

func TestCreateRequiresTitle(t *testing.T) {
	t.Parallel()

	svc, alice, _ := setup(t)
	_, err := svc.Create(t.Context(), alice.ID, "")
	var verr *validator.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, `"title" is required`, verr.Message)

	task, err := svc.Create(t.Context(), alice.ID, "  ")
	require.NoError(t, err)
	assert.Equal(t, "  ", task.Title)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	svc, alice, _ := setup(t)
	ctx := t.Context()
	task, err := svc.Create(ctx, alice.ID, "buy milk")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, alice.ID, task.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", updated.Title, "empty title keeps the stored one")

	updated, err = svc.Update(ctx, alice.ID, task.ID, "  buy oat milk ")
	require.NoError(t, err)
	assert.Equal(t, "  buy oat milk ", updated.Title)

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "  buy oat milk ", list[0].Title)
}

func TestToggleTwiceRestores(t *testing.T) {
	t.Parallel()

	svc, alice, _ := setup(t)
	ctx := t.Context()
	task, err := svc.Create(ctx, alice.ID, "buy milk")
	require.NoError(t, err)

	once, err := svc.Toggle(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.True(t, once.Completed)

	twice, err := svc.Toggle(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Completed, twice.Completed)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	svc, alice, _ := setup(t)
	ctx := t.Context()
	task, err := svc.Create(ctx, alice.ID, "buy milk")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice.ID, task.ID))
	require.ErrorIs(t, svc.Delete(ctx, alice.ID, task.ID), ErrNotFound)

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOwnershipGuard(t *testing.T) {
	t.Parallel()

	svc, alice, bob := setup(t)
	ctx := t.Context()
	task, err := svc.Create(ctx, alice.ID, "buy milk")
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob.ID, task.ID, "hijacked")
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Toggle(ctx, bob.ID, task.ID)
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, bob.ID, task.ID), ErrForbidden)

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, *task, list[0], "rejected mutations leave the task untouched")
}

func TestNotFoundBeforeForbidden(t *testing.T) {
	t.Parallel()

	svc, _, bob := setup(t)
	ctx := t.Context()
	for _, id := range []string{"", "does-not-exist"} {
		_, err := svc.Update(ctx, bob.ID, id, "x")
		require.ErrorIs(t, err, ErrNotFound)
		_, err = svc.Toggle(ctx, bob.ID, id)
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, svc.Delete(ctx, bob.ID, id), ErrNotFound)
	}
}

func TestGuardRunsBeforeWrite(t *testing.T) {
	t.Parallel()

	store := &recordingTasks{task: &data.Task{ID: "t1", Title: "x", UserID: "owner"}}
	svc := New(store)
	_, err := svc.Toggle(t.Context(), "intruder", "t1")
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, svc.Delete(t.Context(), "intruder", "t1"), ErrForbidden)
	assert.Zero(t, store.writes)

	store.getErr = errors.New("connection reset")
	_, err = svc.Toggle(t.Context(), "owner", "t1")
	require.ErrorIs(t, err, store.getErr)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.writes)
}

type recordingTasks struct {
	task   *data.Task
	getErr error
	writes int
}

func (r *recordingTasks) ListTasksByOwner(context.Context, string) ([]data.Task, error) {
	return nil, nil
}

func (r *recordingTasks) InsertTask(context.Context, *data.Task) error {
	r.writes++
	return nil
}

func (r *recordingTasks) GetTask(context.Context, string) (*data.Task, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	cp := *r.task
	return &cp, nil
}

func (r *recordingTasks) UpdateTask(context.Context, *data.Task) error {
	r.writes++
	return nil
}

func (r *recordingTasks) DeleteTask(context.Context, string) error {
	r.writes++
	return nil
}
