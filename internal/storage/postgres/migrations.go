package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Migration is one forward-only schema step. Versions are applied in order
// and recorded in schema_migrations.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Schema versions:
// v1: users, projects, chat_messages, project_components
// v2: sweeper and history indexes
var Migrations = []Migration{
	{Version: 1, Name: "init", SQL: `
create extension if not exists pgcrypto;

create table if not exists users (
  id uuid primary key default gen_random_uuid(),
  firebase_uid text not null unique,
  email text,
  display_name text,
  photo_url text,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);

create table if not exists projects (
  id uuid primary key,
  user_id uuid not null references users(id) on delete cascade,
  prompt text not null default '',
  status text not null default 'CREATED'
    check (status in ('CREATED','DISCOVERED','CONTENT_GENERATING','CONTENT_GENERATED','FAILED')),
  intent_spec jsonb,
  intent_spec_version text,
  resolution_spec jsonb,
  resolution_spec_version text,
  name text,
  description text,
  style_hints jsonb,
  deleted_at timestamptz,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);

create index if not exists idx_projects_user on projects(user_id, created_at desc) where deleted_at is null;

create table if not exists chat_messages (
  id uuid primary key,
  project_id uuid not null references projects(id) on delete cascade,
  role text not null check (role in ('user','assistant')),
  content text not null,
  created_at timestamptz not null default now()
);

create table if not exists project_components (
  id uuid primary key,
  project_id uuid not null references projects(id) on delete cascade,
  component_key text not null,
  decisions jsonb not null,
  position int not null,
  selected boolean not null default false,
  content jsonb,
  meta jsonb,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now(),
  unique (project_id, component_key)
);
`},
	{Version: 2, Name: "indexes", SQL: `
create index if not exists idx_chat_messages_project on chat_messages(project_id, created_at);
create index if not exists idx_project_components_project on project_components(project_id, position);
create index if not exists idx_projects_unresolved on projects(updated_at)
  where status = 'DISCOVERED' and resolution_spec is null and deleted_at is null;
`},
}

// Migrator is the part of *pgxpool.Pool Migrate needs.
type Migrator interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// arbitrary key shared by every process running migrations
const migrationLockKey = 7426118

// Migrate applies every migration newer than the recorded schema version and
// returns how many ran. Concurrent callers serialize on an advisory lock.
func Migrate(ctx context.Context, db Migrator, migrations []Migration, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := db.Exec(ctx, `
create table if not exists schema_migrations (
  version int primary key,
  name text not null,
  applied_at timestamptz not null default now()
);
`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock($1);`, migrationLockKey); err != nil {
		return 0, fmt.Errorf("migration lock: %w", err)
	}

	var current int
	if err := tx.QueryRow(ctx, `select coalesce(max(version), 0) from schema_migrations;`).Scan(&current); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			return 0, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec(ctx, `insert into schema_migrations (version, name) values ($1, $2);`, m.Version, m.Name); err != nil {
			return 0, fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		log.Info("migration applied", zap.Int("version", m.Version), zap.String("name", m.Name))
		applied++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return applied, nil
}
