package repository

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
)

// ProjectRepository persists projects and their components.
type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id::text, user_id::text, prompt, status, intent_spec, intent_spec_version,
resolution_spec, resolution_spec_version, name, description, style_hints, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var status string
	var intentRaw, resRaw, hintsRaw []byte
	err := row.Scan(&p.ID, &p.UserID, &p.Prompt, &status, &intentRaw, &p.IntentSpecVersion,
		&resRaw, &p.ResolutionSpecVersion, &p.Name, &p.Description, &hintsRaw, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)

	if p.IntentSpec, err = unmarshalJSONB[*discovery.Output](intentRaw); err != nil {
		return nil, fmt.Errorf("intent_spec: %w", err)
	}
	if p.ResolutionSpec, err = unmarshalJSONB[*domain.ResolutionSpec](resRaw); err != nil {
		return nil, fmt.Errorf("resolution_spec: %w", err)
	}
	if p.StyleHints, err = unmarshalJSONB[*domain.StyleHints](hintsRaw); err != nil {
		return nil, fmt.Errorf("style_hints: %w", err)
	}
	return &p, nil
}

// Create inserts a project in status CREATED. An empty id gets a fresh uuid.
func (r *ProjectRepository) Create(ctx context.Context, id, userID, prompt string) (*domain.Project, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}
	if id == "" {
		id = uuid.NewString()
	}

	q := `
insert into projects (id, user_id, prompt, status)
values ($1::uuid, $2::uuid, $3, $4)
returning ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRow(ctx, q, id, userID, prompt, string(domain.StatusCreated)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrProjectExists
		}
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

// Get returns a project that has not been deleted.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	q := `
select ` + projectColumns + `
from projects
where id = $1::uuid and deleted_at is null;
`
	p, err := scanProject(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	q := `
select ` + projectColumns + `
from projects
where user_id = $1::uuid and deleted_at is null
order by created_at desc;
`
	return r.list(ctx, q, userID)
}

// ListUnresolved returns discovered projects whose resolution never completed
// and that have not been touched since before cutoff.
func (r *ProjectRepository) ListUnresolved(ctx context.Context, cutoff time.Time, limit int) ([]domain.Project, error) {
	q := `
select ` + projectColumns + `
from projects
where status = $1
  and intent_spec is not null
  and resolution_spec is null
  and updated_at < $2
  and deleted_at is null
order by updated_at
limit $3;
`
	return r.list(ctx, q, string(domain.StatusDiscovered), cutoff, limit)
}

func (r *ProjectRepository) list(ctx context.Context, q string, args ...any) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// SoftDelete marks a user's project as deleted.
func (r *ProjectRepository) SoftDelete(ctx context.Context, userID, id string) (bool, error) {
	const q = `
update projects
set deleted_at = now(), updated_at = now()
where user_id = $1::uuid and id = $2::uuid and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, userID, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	const q = `
update projects
set status = $2, updated_at = now()
where id = $1::uuid;
`
	ct, err := r.db.Exec(ctx, q, id, string(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveIntentSpec stores a discovery output and moves the project to DISCOVERED.
// name and description only fill columns that are still empty. A project that
// already has a resolution spec keeps its intent spec and status; saved is
// false then.
func (r *ProjectRepository) SaveIntentSpec(ctx context.Context, id string, out *discovery.Output, name, description string) (saved bool, err error) {
	spec, err := marshalJSONB(out)
	if err != nil {
		return false, err
	}
	const q = `
update projects
set intent_spec = $2,
    intent_spec_version = $3,
    status = $4,
    name = coalesce(name, nullif($5, '')),
    description = coalesce(description, nullif($6, '')),
    updated_at = now()
where id = $1::uuid
  and deleted_at is null
  and resolution_spec is null;
`
	ct, err := r.db.Exec(ctx, q, id, spec, out.Version, string(domain.StatusDiscovered), name, description)
	if err != nil {
		return false, fmt.Errorf("save intent spec: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	err = r.db.QueryRow(ctx,
		`select exists(select 1 from projects where id = $1::uuid and deleted_at is null);`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("save intent spec: %w", err)
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// CreateResolution writes the resolution spec and its components in one
// transaction. It reports false, without writing anything, when the project
// already carries a resolution spec.
func (r *ProjectRepository) CreateResolution(ctx context.Context, id string, spec *domain.ResolutionSpec, comps []domain.ProjectComponent) (bool, error) {
	specJSON, err := marshalJSONB(spec)
	if err != nil {
		return false, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
update projects
set resolution_spec = $2,
    resolution_spec_version = $3,
    status = $4,
    updated_at = now()
where id = $1::uuid and resolution_spec is null;
`, id, specJSON, spec.Version, string(domain.StatusContentGenerating))
	if err != nil {
		return false, fmt.Errorf("write resolution spec: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}

	if err := insertComponents(ctx, tx, id, comps); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// ReplaceComponents swaps the project's component set for comps and moves the
// project to status, atomically.
func (r *ProjectRepository) ReplaceComponents(ctx context.Context, id string, comps []domain.ProjectComponent, status domain.Status) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `delete from project_components where project_id = $1::uuid;`, id); err != nil {
		return fmt.Errorf("delete components: %w", err)
	}
	if err := insertComponents(ctx, tx, id, comps); err != nil {
		return err
	}
	ct, err := tx.Exec(ctx, `
update projects
set status = $2, updated_at = now()
where id = $1::uuid;
`, id, string(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertComponents(ctx context.Context, tx pgx.Tx, projectID string, comps []domain.ProjectComponent) error {
	const q = `
insert into project_components (id, project_id, component_key, decisions, position, selected, meta)
values ($1::uuid, $2::uuid, $3, $4, $5, $6, $7);
`
	for _, c := range comps {
		decisions, err := marshalJSONB(c.Decisions)
		if err != nil {
			return err
		}
		var meta []byte
		if len(c.Meta) > 0 {
			if meta, err = marshalJSONB(c.Meta); err != nil {
				return err
			}
		}
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.Exec(ctx, q, id, projectID, c.ComponentKey, decisions, c.Position, c.Selected, meta); err != nil {
			return fmt.Errorf("insert component %s: %w", c.ComponentKey, err)
		}
	}
	return nil
}

// ListComponents returns a project's components in render order.
func (r *ProjectRepository) ListComponents(ctx context.Context, projectID string) ([]domain.ProjectComponent, error) {
	const q = `
select id::text, project_id::text, component_key, decisions, position, selected, content, meta, created_at, updated_at
from project_components
where project_id = $1::uuid
order by position asc;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProjectComponent, 0, 4)
	for rows.Next() {
		var c domain.ProjectComponent
		var decisionsRaw, contentRaw, meta []byte
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.ComponentKey, &decisionsRaw, &c.Position, &c.Selected,
			&contentRaw, &meta, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if c.Decisions, err = unmarshalJSONB[map[string]any](decisionsRaw); err != nil {
			return nil, err
		}
		if c.Content, err = unmarshalJSONB[map[string]any](contentRaw); err != nil {
			return nil, err
		}
		if c.Meta, err = unmarshalJSONB[map[string]any](meta); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveContent writes generated content per component key and moves the project
// to CONTENT_GENERATED in one transaction.
func (r *ProjectRepository) SaveContent(ctx context.Context, projectID string, content map[string]map[string]any, hints *domain.StyleHints) error {
	var hintsJSON []byte
	if hints != nil {
		var err error
		if hintsJSON, err = marshalJSONB(hints); err != nil {
			return err
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, key := range slices.Sorted(maps.Keys(content)) {
		body, err := marshalJSONB(content[key])
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
update project_components
set content = $3, updated_at = now()
where project_id = $1::uuid and component_key = $2;
`, projectID, key, body); err != nil {
			return fmt.Errorf("save content %s: %w", key, err)
		}
	}

	if _, err := tx.Exec(ctx, `
update projects
set status = $2, style_hints = coalesce($3, style_hints), updated_at = now()
where id = $1::uuid;
`, projectID, string(domain.StatusContentGenerated), hintsJSON); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
