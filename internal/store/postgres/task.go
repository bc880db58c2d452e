package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lindestad/gantt/internal/domain"
)

const taskColumns = `t.id, t.project_id, t.title, t.start_at, t.end_at, t.progress, t.lane, t.color,
	COALESCE(array_agg(d.depends_on_id ORDER BY d.depends_on_id)
	         FILTER (WHERE d.depends_on_id IS NOT NULL), '{}')`

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

// Create inserts the task row and its dependency rows in one transaction.
// t.ID and t.Dependencies are rewritten with the assigned ID and the
// normalized dependency set.
func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	err = tx.QueryRow(ctx,
		`INSERT INTO tasks (project_id, title, start_at, end_at, progress, lane, color)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		t.ProjectID, t.Title, t.Start, t.End, t.Progress, t.Lane, t.Color,
	).Scan(&t.ID)
	if pgErrCode(err) == codeForeignKeyViolation {
		return fmt.Errorf("taskRepo.Create: project %d: %w", t.ProjectID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	// Self-references can only be detected once the ID is assigned.
	t.Dependencies = domain.NormalizeDependencies(t.ID, t.Dependencies)
	if err = replaceDependencies(ctx, tx, t.ID, t.Dependencies); err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.Create: commit: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 LEFT JOIN task_dependencies d ON d.task_id = t.id
		 WHERE t.id = $1
		 GROUP BY t.id`,
		id,
	)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return t, nil
}

func (r *TaskRepo) ListByProject(ctx context.Context, projectID int64) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 LEFT JOIN task_dependencies d ON d.task_id = t.id
		 WHERE t.project_id = $1
		 GROUP BY t.id
		 ORDER BY t.id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByProject: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("taskRepo.ListByProject: scan: %w", scanErr)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("taskRepo.ListByProject: rows: %w", err)
	}

	return tasks, nil
}

// Update rewrites the full task row and replaces its dependency set in one
// transaction. t.Dependencies is rewritten with the normalized set.
func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET title = $1, start_at = $2, end_at = $3, progress = $4, lane = $5, color = $6
		 WHERE id = $7`,
		t.Title, t.Start, t.End, t.Progress, t.Lane, t.Color, t.ID,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}

	t.Dependencies = domain.NormalizeDependencies(t.ID, t.Dependencies)
	if err = replaceDependencies(ctx, tx, t.ID, t.Dependencies); err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.Update: commit: %w", err)
	}

	return nil
}

// ReplaceDependencies atomically substitutes the task's whole predecessor
// set. Prior rows are never merged with the new set.
func (r *TaskRepo) ReplaceDependencies(ctx context.Context, taskID int64, deps []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.ReplaceDependencies: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err = replaceDependencies(ctx, tx, taskID, domain.NormalizeDependencies(taskID, deps)); err != nil {
		return fmt.Errorf("taskRepo.ReplaceDependencies: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.ReplaceDependencies: commit: %w", err)
	}

	return nil
}

// Delete removes the task; task_dependencies rows referencing it on either
// side go with it via cascade.
func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func replaceDependencies(ctx context.Context, tx pgx.Tx, taskID int64, deps []int64) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM task_dependencies WHERE task_id = $1`,
		taskID,
	); err != nil {
		return fmt.Errorf("replace dependencies: delete: %w", err)
	}

	for _, depID := range deps {
		if _, err := tx.Exec(ctx,
			`INSERT INTO task_dependencies (task_id, depends_on_id) VALUES ($1, $2)`,
			taskID, depID,
		); err != nil {
			return fmt.Errorf("replace dependencies: insert %d->%d: %w", taskID, depID, err)
		}
	}

	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Start, &t.End,
		&t.Progress, &t.Lane, &t.Color, &t.Dependencies,
	); err != nil {
		return nil, err
	}
	if t.Dependencies == nil {
		t.Dependencies = []int64{}
	}
	return &t, nil
}
