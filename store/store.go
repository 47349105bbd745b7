package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"task_api/config"
	"task_api/db"
	dberrors "task_api/errors"
	"task_api/metric"
	"task_api/models"

	"github.com/google/uuid"
)

// Repository is the data-access contract shared by the task handlers.
// Update and Delete return a *errors.NotFoundError when no row matches.
type Repository interface {
	Insert(ctx context.Context, task models.Task) error
	SelectAll(ctx context.Context) ([]models.Task, error)
	Update(ctx context.Context, task models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SQL is a Repository over a relational table. It opens a dedicated
// connection for every call and closes it before returning.
type SQL struct {
	dsn     string
	table   string
	options config.ConnectionOptions
}

// NewSQL builds a repository from the startup configuration.
func NewSQL(cfg config.Config) *SQL {
	return &SQL{
		dsn:     cfg.ConnectionString,
		table:   cfg.TableName,
		options: cfg.ConnOptions,
	}
}

func (s *SQL) open(ctx context.Context) (*db.Connection, error) {
	if s.dsn == "" {
		return nil, dberrors.NewConfigError("database connection string is not set")
	}
	return db.Open(ctx, s.dsn, s.options)
}

func (s *SQL) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout := s.options.QueryTimeout.ToStd(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// Insert stores a new row with all four task fields.
func (s *SQL) Insert(ctx context.Context, task models.Task) (err error) {
	defer record("insert", time.Now(), &err)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	conn, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	d := conn.Dialect
	stmt := fmt.Sprintf("INSERT INTO %s (Id, Title, Description, IsCompleted) VALUES (%s, %s, %s, %s)",
		s.table, d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4))
	_, err = conn.Exec(ctx, stmt, task.ID.String(), task.Title, task.Description, task.IsCompleted)
	return err
}

// SelectAll returns every row in storage order.
func (s *SQL) SelectAll(ctx context.Context) (tasks []models.Task, err error) {
	defer record("select_all", time.Now(), &err)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	conn, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	stmt := fmt.Sprintf("SELECT %s, Title, Description, IsCompleted FROM %s", conn.Dialect.SelectUUID("Id"), s.table)
	rows, err := conn.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks = []models.Task{}
	for rows.Next() {
		var (
			id    string
			title string
			desc  string
			done  bool
		)
		if err := rows.Scan(&id, &title, &desc, &done); err != nil {
			return nil, dberrors.NewQueryError(fmt.Sprintf("failed to scan row: %v", err))
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, dberrors.NewQueryError(fmt.Sprintf("invalid task id %q in store: %v", id, err))
		}
		tasks = append(tasks, models.Task{
			ID:          parsed,
			Title:       title,
			Description: desc,
			IsCompleted: done,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, dberrors.NewQueryError(fmt.Sprintf("error iterating rows: %v", err))
	}

	return tasks, nil
}

// Update rewrites title, description and completion of the row keyed by
// task.ID. It never inserts.
func (s *SQL) Update(ctx context.Context, task models.Task) (err error) {
	defer record("update", time.Now(), &err)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	conn, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	d := conn.Dialect
	stmt := fmt.Sprintf("UPDATE %s SET Title = %s, Description = %s, IsCompleted = %s WHERE Id = %s",
		s.table, d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4))
	res, err := conn.Exec(ctx, stmt, task.Title, task.Description, task.IsCompleted, task.ID.String())
	if err != nil {
		return err
	}
	return requireOneRow(res, task.ID)
}

// Delete removes the row keyed by id.
func (s *SQL) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer record("delete", time.Now(), &err)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	conn, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	stmt := fmt.Sprintf("DELETE FROM %s WHERE Id = %s", s.table, conn.Dialect.Placeholder(1))
	res, err := conn.Exec(ctx, stmt, id.String())
	if err != nil {
		return err
	}
	return requireOneRow(res, id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireOneRow(res rowsAffecter, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dberrors.NewQueryError(fmt.Sprintf("failed to read affected rows: %v", err))
	}
	if n == 0 {
		return dberrors.NewNotFoundError(id.String())
	}
	return nil
}

func record(op string, started time.Time, errp *error) {
	status := "ok"
	if err := *errp; err != nil {
		status = "error"
		var nf *dberrors.NotFoundError
		if errors.As(err, &nf) {
			status = "not_found"
		} else {
			slog.Debug("Store operation failed", "op", op, "error", err)
		}
	}
	metric.RecordStoreOperation(op, status, started)
}
