package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lindestad/gantt/internal/domain"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO projects (name, created_at) VALUES ($1, $2) RETURNING id`,
		p.Name, p.CreatedAt,
	).Scan(&p.ID)
	if pgErrCode(err) == codeUniqueViolation {
		return fmt.Errorf("projectRepo.Create: name %q: %w", p.Name, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("projectRepo.Create: %w", err)
	}

	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	var p domain.Project

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM projects WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", err)
	}

	return &p, nil
}

// ListSummaries resolves each project's earliest task start in SQL; a
// project with no tasks reports the query time.
func (r *ProjectRepo) ListSummaries(ctx context.Context) ([]*domain.ProjectSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, COALESCE(min(t.start_at), now())
		 FROM projects p
		 LEFT JOIN tasks t ON t.project_id = p.id
		 GROUP BY p.id, p.name
		 ORDER BY p.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("projectRepo.ListSummaries: %w", err)
	}
	defer rows.Close()

	var projects []*domain.ProjectSummary
	for rows.Next() {
		var p domain.ProjectSummary

		err = rows.Scan(&p.ID, &p.Name, &p.Start)
		if err != nil {
			return nil, fmt.Errorf("projectRepo.ListSummaries: scan: %w", err)
		}
		projects = append(projects, &p)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("projectRepo.ListSummaries: rows: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM projects WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("projectRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("projectRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
