package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ytakahashi/task-manager/internal/models"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS tasks (
		seq         BIGSERIAL PRIMARY KEY,
		id          BIGINT NOT NULL UNIQUE,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		date        TEXT NOT NULL,
		is_active   BOOLEAN NOT NULL DEFAULT FALSE
	)`

// PostgresStore keeps tasks in a Postgres table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and creates the tasks table if needed.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database url: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}

	if _, err := pool.Exec(connectCtx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating tasks table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, date, is_active
		FROM tasks
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Date, &task.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (id, title, description, date, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
		RETURNING id`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Date,
		task.IsActive,
	).Scan(&id)
	if err == pgx.ErrNoRows {
		return nil, ErrTaskExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id int64, isActive bool) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET is_active = $1
		WHERE id = $2
		RETURNING id, title, description, date, is_active`

	task := &models.Task{}
	err := s.pool.QueryRow(ctx, query, isActive, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Date,
		&task.IsActive,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
