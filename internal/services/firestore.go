package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/ytakahashi/task-manager/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const tasksCollection = "tasks"

// taskDoc is the stored document; createdAt keeps list order stable.
type taskDoc struct {
	ID          int64     `firestore:"id"`
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Date        string    `firestore:"date"`
	IsActive    bool      `firestore:"isActive"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func (d taskDoc) task() models.Task {
	return models.Task{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		IsActive:    d.IsActive,
	}
}

type FirestoreService struct {
	client *firestore.Client
}

func NewFirestoreService(ctx context.Context, projectID string) (*FirestoreService, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreService{
		client: client,
	}, nil
}

func (fs *FirestoreService) Close() error {
	return fs.client.Close()
}

func (fs *FirestoreService) doc(id int64) *firestore.DocumentRef {
	return fs.client.Collection(tasksCollection).Doc(strconv.FormatInt(id, 10))
}

func (fs *FirestoreService) List(ctx context.Context) ([]models.Task, error) {
	iter := fs.client.Collection(tasksCollection).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	tasks := []models.Task{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate tasks: %w", err)
		}

		var d taskDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task: %w", err)
		}
		tasks = append(tasks, d.task())
	}

	return tasks, nil
}

func (fs *FirestoreService) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	d := taskDoc{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Date:        task.Date,
		IsActive:    task.IsActive,
		CreatedAt:   time.Now(),
	}

	_, err := fs.doc(task.ID).Create(ctx, d)
	if status.Code(err) == codes.AlreadyExists {
		return nil, ErrTaskExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return &task, nil
}

func (fs *FirestoreService) SetActive(ctx context.Context, id int64, isActive bool) (*models.Task, error) {
	ref := fs.doc(id)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "isActive", Value: isActive},
	})
	if status.Code(err) == codes.NotFound {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read updated task: %w", err)
	}
	var d taskDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	task := d.task()
	return &task, nil
}

func (fs *FirestoreService) Delete(ctx context.Context, id int64) error {
	_, err := fs.doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}
