package taskapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ytakahashi/task-manager/internal/models"
)

type recorded struct {
	method    string
	path      string
	body      string
	requestID string
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) first() recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[0]
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.calls = append(rec.calls, recorded{
			method:    r.Method,
			path:      r.URL.Path,
			body:      string(body),
			requestID: r.Header.Get("X-Request-ID"),
		})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestList(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK,
		`[{"id":1,"title":"a","description":"b","date":"1/2/2024","isActive":false},{"id":2,"title":"c","description":"d","date":"1/3/2024","isActive":true}]`)
	c := NewClient(srv.URL, 5*time.Second)

	tasks, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[1].ID != 2 || !tasks[1].IsActive {
		t.Errorf("Unexpected second task: %+v", tasks[1])
	}
	got := calls.first()
	if got.method != http.MethodGet || got.path != "/task" {
		t.Errorf("Expected GET /task, got %s %s", got.method, got.path)
	}
	if _, err := uuid.Parse(got.requestID); err != nil {
		t.Errorf("Expected uuid X-Request-ID, got %q", got.requestID)
	}
}

func TestListNullBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `null`)
	tasks, err := NewClient(srv.URL, 0).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", tasks)
	}
}

func TestCreate(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusCreated,
		`{"id":42,"title":"Buy milk","description":"2% milk","date":"6/10/2024","isActive":false}`)
	c := NewClient(srv.URL+"/", 0)

	in := models.Task{ID: 41, Title: "Buy milk", Description: "2% milk", Date: "6/10/2024"}
	created, err := c.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != 42 {
		t.Errorf("Expected server id 42, got %d", created.ID)
	}

	got := calls.first()
	if got.method != http.MethodPost || got.path != "/task" {
		t.Errorf("Expected POST /task, got %s %s", got.method, got.path)
	}
	var sent models.Task
	if err := json.Unmarshal([]byte(got.body), &sent); err != nil {
		t.Fatalf("request body is not a task: %v", err)
	}
	if sent != in {
		t.Errorf("Expected request body %+v, got %+v", in, sent)
	}
}

func TestUpdateStatusSendsOnlyIsActive(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, 0)

	if _, err := c.UpdateStatus(context.Background(), 1718000000000, true); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	got := calls.first()
	if got.method != http.MethodPatch || got.path != "/task/1718000000000" {
		t.Errorf("Expected PATCH /task/1718000000000, got %s %s", got.method, got.path)
	}
	if got.body != `{"isActive":true}` {
		t.Errorf("Expected body {\"isActive\":true}, got %s", got.body)
	}
}

func TestDelete(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusNoContent, ``)
	c := NewClient(srv.URL, 0)

	if err := c.Delete(context.Background(), 7); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got := calls.first()
	if got.method != http.MethodDelete || got.path != "/task/7" {
		t.Errorf("Expected DELETE /task/7, got %s %s", got.method, got.path)
	}
}

func TestBasePathPrefixIsKept(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `[]`)
	c := NewClient(srv.URL+"/api/v1", 0)

	if _, err := c.List(context.Background()); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got := calls.first().path; got != "/api/v1/task" {
		t.Errorf("Expected /api/v1/task, got %s", got)
	}
}

func TestStatusError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, `{"error":"task not found"}`)
	c := NewClient(srv.URL, 0)

	err := c.Delete(context.Background(), 9)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", statusErr.StatusCode)
	}
	if statusErr.Path != "/task/9" {
		t.Errorf("Expected path /task/9, got %s", statusErr.Path)
	}
}

func TestContextCanceled(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewClient(srv.URL, 0).List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
