package services

import (
	"context"
	"sync"

	"github.com/ytakahashi/task-manager/internal/models"
)

// MemoryStore keeps tasks in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks []models.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: []models.Task{}}
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(task.ID) >= 0 {
		return nil, ErrTaskExists
	}
	s.tasks = append(s.tasks, task)
	return &task, nil
}

func (s *MemoryStore) SetActive(ctx context.Context, id int64, isActive bool) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrTaskNotFound
	}
	s.tasks[i].IsActive = isActive
	task := s.tasks[i]
	return &task, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) indexOf(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
