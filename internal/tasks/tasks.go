// Package tasks implements per-user task CRUD. Every mutation loads the task,
// then checks that the caller owns it, and only then writes.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harlequingg/taskmanager/internal/data"
	"github.com/harlequingg/taskmanager/internal/validator"
)

var (
	ErrNotFound  = errors.New("Task not found")
	ErrForbidden = errors.New("Unauthorized")
)

type Service struct {
	store data.Tasks
}

func New(store data.Tasks) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, subject string) ([]data.Task, error) {
	tasks, err := s.store.ListTasksByOwner(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Service) Create(ctx context.Context, subject, title string) (*data.Task, error) {
	v := validator.New()
	// only the empty string is rejected; a blank title is stored as given
	v.Check(title != "", "title", `"title" is required`)
	if err := v.Err(); err != nil {
		return nil, err
	}
	t := &data.Task{
		Title:     title,
		Completed: false,
		UserID:    subject,
	}
	if err := s.store.InsertTask(ctx, t); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// Update replaces the title when title is non-empty. An empty title leaves
// the stored one untouched.
func (s *Service) Update(ctx context.Context, subject, id, title string) (*data.Task, error) {
	t, err := s.owned(ctx, subject, id)
	if err != nil {
		return nil, err
	}
	if title != "" {
		t.Title = title
	}
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Toggle(ctx context.Context, subject, id string) (*data.Task, error) {
	t, err := s.owned(ctx, subject, id)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, subject, id string) error {
	if _, err := s.owned(ctx, subject, id); err != nil {
		return err
	}
	err := s.store.DeleteTask(ctx, id)
	switch {
	case errors.Is(err, data.ErrNotFound):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// owned is the ownership guard: existence first, then owner.
func (s *Service) owned(ctx context.Context, subject, id string) (*data.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	t, err := s.store.GetTask(ctx, id)
	switch {
	case errors.Is(err, data.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t.UserID != subject {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *Service) save(ctx context.Context, t *data.Task) error {
	err := s.store.UpdateTask(ctx, t)
	switch {
	case errors.Is(err, data.ErrNotFound):
		// deleted between the read and the write
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}
