package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/task-manager/internal/models"
	"github.com/ytakahashi/task-manager/internal/services"
)

type TaskHandler struct {
	store services.TaskStore
	now   func() time.Time
}

func NewTaskHandler(store services.TaskStore) *TaskHandler {
	return &TaskHandler{
		store: store,
		now:   time.Now,
	}
}

// Register mounts the task collection routes on g.
func (h *TaskHandler) Register(g *echo.Group) {
	g.GET("/task", h.ListTasks)
	g.POST("/task", h.CreateTask)
	g.PATCH("/task/:id", h.UpdateStatus)
	g.DELETE("/task/:id", h.DeleteTask)
}

func (h *TaskHandler) ListTasks(c echo.Context) error {
	tasks, err := h.store.List(c.Request().Context())
	if err != nil {
		log.Printf("Failed to list tasks: %v", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to list tasks")
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c echo.Context) error {
	var task models.Task
	if err := c.Bind(&task); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}

	draft, err := models.NewDraft(task.Title, task.Description)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	task.Title = draft.Title
	task.Description = draft.Description

	if task.ID == 0 {
		task.ID = h.now().UnixMilli()
	}
	if task.Date == "" {
		task.Date = h.now().Format(models.DefaultDateLayout)
	}

	created, err := h.store.Create(c.Request().Context(), task)
	if errors.Is(err, services.ErrTaskExists) {
		return errorJSON(c, http.StatusConflict, "task already exists")
	}
	if err != nil {
		log.Printf("Failed to create task %d: %v", task.ID, err)
		return errorJSON(c, http.StatusInternalServerError, "failed to create task")
	}

	log.Printf("Created task %d", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid task id")
	}

	var patch models.StatusPatch
	if err := c.Bind(&patch); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}
	if patch.IsActive == nil {
		return errorJSON(c, http.StatusBadRequest, "isActive required")
	}

	updated, err := h.store.SetActive(c.Request().Context(), id, *patch.IsActive)
	if errors.Is(err, services.ErrTaskNotFound) {
		return errorJSON(c, http.StatusNotFound, "task not found")
	}
	if err != nil {
		log.Printf("Failed to update task %d: %v", id, err)
		return errorJSON(c, http.StatusInternalServerError, "failed to update task")
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid task id")
	}

	err = h.store.Delete(c.Request().Context(), id)
	if errors.Is(err, services.ErrTaskNotFound) {
		return errorJSON(c, http.StatusNotFound, "task not found")
	}
	if err != nil {
		log.Printf("Failed to delete task %d: %v", id, err)
		return errorJSON(c, http.StatusInternalServerError, "failed to delete task")
	}

	log.Printf("Deleted task %d", id)
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
