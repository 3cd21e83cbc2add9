package services

import (
	"context"
	"errors"

	"github.com/ytakahashi/task-manager/internal/models"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskExists   = errors.New("task already exists")
)

// TaskStore persists the task collection in insertion order.
type TaskStore interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, task models.Task) (*models.Task, error)
	SetActive(ctx context.Context, id int64, isActive bool) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}
