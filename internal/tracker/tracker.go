// Package tracker keeps a local, ordered task list in sync with a remote
// task collection.
//
// Create is confirm-then-apply: the task is appended only after the API
// accepts it. ToggleActive and Delete are optimistic: the local list changes
// first and the remote call follows. When Options.Rollback is set a failed
// remote call reverts the optimistic change; either way the failure is
// returned to the caller as a *SyncError.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ytakahashi/task-manager/internal/models"
)

// DefaultValidationFlash is how long the validation flag stays raised.
const DefaultValidationFlash = 2000 * time.Millisecond

// ErrValidation is returned by Submit when the draft has a blank field.
var ErrValidation = errors.New("please fill out the title and description")

// API is the remote task collection.
type API interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, task models.Task) (models.Task, error)
	UpdateStatus(ctx context.Context, id int64, isActive bool) (models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Op names a synchronizing operation.
type Op string

const (
	OpLoad   Op = "load"
	OpCreate Op = "create"
	OpToggle Op = "toggle"
	OpDelete Op = "delete"
)

// SyncError reports a remote call that failed.
type SyncError struct {
	Op         Op
	ID         int64
	RolledBack bool
	Err        error
}

func (e *SyncError) Error() string {
	if e.Op == OpLoad {
		return fmt.Sprintf("failed to load tasks: %v", e.Err)
	}
	return fmt.Sprintf("failed to %s task %d: %v", e.Op, e.ID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Options configures a Tracker.
type Options struct {
	// Rollback reverts optimistic toggles and deletes whose remote call failed.
	Rollback bool
	// ValidationFlash defaults to DefaultValidationFlash.
	ValidationFlash time.Duration
	// DateLayout defaults to models.DefaultDateLayout.
	DateLayout string
	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns rollback enabled and the stock flash delay and date layout.
func DefaultOptions() Options {
	return Options{
		Rollback:        true,
		ValidationFlash: DefaultValidationFlash,
		DateLayout:      models.DefaultDateLayout,
	}
}

// Tracker owns the local task list and the composer. It is safe for
// concurrent use; remote calls run without holding the lock so readers see
// optimistic state while a call is in flight.
type Tracker struct {
	api  API
	opts Options

	mu         sync.Mutex
	tasks      []models.Task
	pending    map[int64]struct{} // ids of creates awaiting confirmation
	composer   Composer
	flashTimer *time.Timer
	flashGen   uint64
}

// New constructs a Tracker with an empty list.
func New(api API, opts Options) *Tracker {
	if opts.ValidationFlash <= 0 {
		opts.ValidationFlash = DefaultValidationFlash
	}
	if opts.DateLayout == "" {
		opts.DateLayout = models.DefaultDateLayout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{
		api:     api,
		opts:    opts,
		tasks:   []models.Task{},
		pending: make(map[int64]struct{}),
	}
}

// Tasks returns a copy of the local list in insertion order.
func (t *Tracker) Tasks() []models.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Task, len(t.tasks))
	copy(out, t.tasks)
	return out
}

// Get returns the local entry for id.
func (t *Tracker) Get(id int64) (models.Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.indexOf(id); i >= 0 {
		return t.tasks[i], true
	}
	return models.Task{}, false
}

// Load replaces the local list with the remote collection. On failure the
// local list is left as it was.
func (t *Tracker) Load(ctx context.Context) error {
	tasks, err := t.api.List(ctx)
	if err != nil {
		log.Printf("Error fetching tasks: %v", err)
		return &SyncError{Op: OpLoad, Err: err}
	}

	next := make([]models.Task, len(tasks))
	copy(next, tasks)

	t.mu.Lock()
	t.tasks = next
	t.mu.Unlock()
	return nil
}

// CreateTask fills the composer draft and submits it.
func (t *Tracker) CreateTask(ctx context.Context, title, description string) (models.Task, error) {
	t.mu.Lock()
	t.composer.Title = title
	t.composer.Description = description
	t.mu.Unlock()
	return t.Submit(ctx)
}

// Submit validates the composer draft and creates a task from it. The task
// is appended and the composer reset only after the API confirms it.
func (t *Tracker) Submit(ctx context.Context) (models.Task, error) {
	t.mu.Lock()
	draft, err := models.NewDraft(t.composer.Title, t.composer.Description)
	if err != nil {
		t.raiseValidationLocked()
		t.mu.Unlock()
		return models.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	provisional := models.Task{
		ID:          t.nextIDLocked(),
		Title:       draft.Title,
		Description: draft.Description,
		Date:        t.opts.Now().Format(t.opts.DateLayout),
		IsActive:    false,
	}
	t.pending[provisional.ID] = struct{}{}
	t.mu.Unlock()

	created, err := t.api.Create(ctx, provisional)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, provisional.ID)

	if err != nil {
		log.Printf("Error adding task: %v", err)
		return models.Task{}, &SyncError{Op: OpCreate, ID: provisional.ID, Err: err}
	}
	if created == (models.Task{}) {
		created = provisional
	}

	// A concurrent Load may already have brought the task in.
	if i := t.indexOf(created.ID); i >= 0 {
		t.tasks[i] = created
	} else {
		t.tasks = append(t.tasks, created)
	}
	t.composer.Title = ""
	t.composer.Description = ""
	t.composer.Open = false
	t.clearValidationLocked()
	return created, nil
}

// ToggleActive flips isActive for id locally, then sends the new value.
// Unknown ids are a no-op.
func (t *Tracker) ToggleActive(ctx context.Context, id int64) error {
	t.mu.Lock()
	i := t.indexOf(id)
	if i < 0 {
		t.mu.Unlock()
		return nil
	}
	newStatus := !t.tasks[i].IsActive
	t.tasks[i].IsActive = newStatus
	t.mu.Unlock()

	if _, err := t.api.UpdateStatus(ctx, id, newStatus); err != nil {
		log.Printf("Error updating task %d: %v", id, err)
		syncErr := &SyncError{Op: OpToggle, ID: id, Err: err}
		if t.opts.Rollback {
			syncErr.RolledBack = t.revertToggle(id, newStatus)
		}
		return syncErr
	}
	return nil
}

// Delete removes id from the local list, then deletes it remotely.
// Unknown ids are a no-op and issue no remote call.
func (t *Tracker) Delete(ctx context.Context, id int64) error {
	t.mu.Lock()
	i := t.indexOf(id)
	if i < 0 {
		t.mu.Unlock()
		return nil
	}
	removed := t.tasks[i]
	t.tasks = append(t.tasks[:i:i], t.tasks[i+1:]...)
	t.mu.Unlock()

	if err := t.api.Delete(ctx, id); err != nil {
		log.Printf("Error deleting task %d: %v", id, err)
		syncErr := &SyncError{Op: OpDelete, ID: id, Err: err}
		if t.opts.Rollback {
			syncErr.RolledBack = t.restore(i, removed)
		}
		return syncErr
	}
	return nil
}

// revertToggle undoes a toggle unless the entry has moved on since.
func (t *Tracker) revertToggle(id int64, optimistic bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(id)
	if i < 0 || t.tasks[i].IsActive != optimistic {
		return false
	}
	t.tasks[i].IsActive = !optimistic
	return true
}

// restore puts a deleted entry back at (at most) its old position.
func (t *Tracker) restore(at int, task models.Task) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indexOf(task.ID) >= 0 {
		return false
	}
	if at > len(t.tasks) {
		at = len(t.tasks)
	}
	t.tasks = append(t.tasks, models.Task{})
	copy(t.tasks[at+1:], t.tasks[at:])
	t.tasks[at] = task
	return true
}

func (t *Tracker) indexOf(id int64) int {
	for i := range t.tasks {
		if t.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// nextIDLocked returns a millisecond timestamp, bumped past the largest
// local or pending id when the clock would collide.
func (t *Tracker) nextIDLocked() int64 {
	id := t.opts.Now().UnixMilli()
	if _, reserved := t.pending[id]; !reserved && t.indexOf(id) < 0 {
		return id
	}
	highest := id
	for _, task := range t.tasks {
		highest = max(highest, task.ID)
	}
	for reserved := range t.pending {
		highest = max(highest, reserved)
	}
	return highest + 1
}
