package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/task-manager/internal/models"
	"github.com/ytakahashi/task-manager/internal/services"
)

var errStoreDown = errors.New("store down")

// failingStore returns errStoreDown from every call
type failingStore struct{}

func (failingStore) List(ctx context.Context) ([]models.Task, error) { return nil, errStoreDown }
func (failingStore) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	return nil, errStoreDown
}
func (failingStore) SetActive(ctx context.Context, id int64, isActive bool) (*models.Task, error) {
	return nil, errStoreDown
}
func (failingStore) Delete(ctx context.Context, id int64) error { return errStoreDown }
func (failingStore) Close() error { return nil }

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func seededServer(t *testing.T, tasks ...models.Task) (*echo.Echo, *services.MemoryStore) {
	t.Helper()
	store := services.NewMemoryStore()
	for _, task := range tasks {
		if _, err := store.Create(context.Background(), task); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	return NewServer(store), store
}

func decodeTasks(t *testing.T, rec *httptest.ResponseRecorder) []models.Task {
	t.Helper()
	var tasks []models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("Failed to decode %q: %v", rec.Body.String(), err)
	}
	return tasks
}

func TestListTasksEmpty(t *testing.T) {
	e, _ := seededServer(t)
	rec := serve(e, http.MethodGet, "/task", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("Expected [], got %s", body)
	}
}

func TestCreateTask(t *testing.T) {
	e, store := seededServer(t)
	rec := serve(e, http.MethodPost, "/task",
		`{"id":1718000000000,"title":" Buy milk ","description":"2% milk","date":"6/10/2024","isActive":false}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	want := models.Task{ID: 1718000000000, Title: "Buy milk", Description: "2% milk", Date: "6/10/2024"}
	if created != want {
		t.Errorf("Expected %+v, got %+v", want, created)
	}

	tasks, _ := store.List(context.Background())
	if len(tasks) != 1 || tasks[0] != want {
		t.Errorf("Expected stored task %+v, got %+v", want, tasks)
	}
}

func TestCreateTaskAssignsIDAndDate(t *testing.T) {
	store := services.NewMemoryStore()
	h := NewTaskHandler(store)
	h.now = func() time.Time { return time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC) }
	e := echo.New()
	h.Register(e.Group(""))

	rec := serve(e, http.MethodPost, "/task", `{"title":"a","description":"b"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}
	var created models.Task
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ID != time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("Expected clock id, got %d", created.ID)
	}
	if created.Date != "6/10/2024" {
		t.Errorf("Expected date 6/10/2024, got %s", created.Date)
	}
}

func TestCreateTaskRejects(t *testing.T) {
	e, _ := seededServer(t, models.Task{ID: 1, Title: "a", Description: "b"})

	cases := []struct {
		name string
		body string
		code int
	}{
		{"invalid json", `{"title":`, http.StatusBadRequest},
		{"blank title", `{"id":2,"title":"  ","description":"b"}`, http.StatusBadRequest},
		{"missing description", `{"id":2,"title":"a"}`, http.StatusBadRequest},
		{"duplicate id", `{"id":1,"title":"a","description":"b"}`, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/task", tc.body)
			if rec.Code != tc.code {
				t.Errorf("Expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUpdateStatus(t *testing.T) {
	e, _ := seededServer(t,
		models.Task{ID: 1, Title: "a", Description: "b"},
		models.Task{ID: 2, Title: "c", Description: "d"},
	)

	rec := serve(e, http.MethodPatch, "/task/2", `{"isActive":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	tasks := decodeTasks(t, serve(e, http.MethodGet, "/task", ""))
	if tasks[0].IsActive || !tasks[1].IsActive {
		t.Errorf("Expected only task 2 active, got %+v", tasks)
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	e, _ := seededServer(t, models.Task{ID: 1, Title: "a", Description: "b"})

	cases := []struct {
		name   string
		target string
		body   string
		code   int
	}{
		{"unknown id", "/task/9", `{"isActive":true}`, http.StatusNotFound},
		{"bad id", "/task/abc", `{"isActive":true}`, http.StatusBadRequest},
		{"missing field", "/task/1", `{"title":"x"}`, http.StatusBadRequest},
		{"empty body", "/task/1", ``, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(e, http.MethodPatch, tc.target, tc.body)
			if rec.Code != tc.code {
				t.Errorf("Expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDeleteTask(t *testing.T) {
	e, _ := seededServer(t,
		models.Task{ID: 1, Title: "a", Description: "b"},
		models.Task{ID: 2, Title: "c", Description: "d"},
		models.Task{ID: 3, Title: "e", Description: "f"},
	)

	if rec := serve(e, http.MethodDelete, "/task/2", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodDelete, "/task/2", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", rec.Code)
	}

	tasks := decodeTasks(t, serve(e, http.MethodGet, "/task", ""))
	if len(tasks) != 2 || tasks[0].ID != 1 || tasks[1].ID != 3 {
		t.Errorf("Expected [1 3], got %+v", tasks)
	}
}

func TestStoreFailuresReturn500(t *testing.T) {
	e := NewServer(failingStore{})

	cases := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/task", ""},
		{http.MethodPost, "/task", `{"id":1,"title":"a","description":"b"}`},
		{http.MethodPatch, "/task/1", `{"isActive":true}`},
		{http.MethodDelete, "/task/1", ""},
	}
	for _, tc := range cases {
		rec := serve(e, tc.method, tc.target, tc.body)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s %s: expected 500, got %d", tc.method, tc.target, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	e, _ := seededServer(t)
	rec := serve(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Errorf("Expected X-Request-ID response header")
	}
}
