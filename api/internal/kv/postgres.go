package kv

import (
	"context"
	"database/sql"
	"errors"
)

// Schema for the backing table. Applied at startup; safe to re-run.
const Schema = `
create table if not exists app_kv (
  key        text primary key,
  value      jsonb not null,
  updated_at timestamptz not null default now()
)`

const (
	qGet = `select value from app_kv where key = $1`
	qSet = `
insert into app_kv (key, value) values ($1, $2)
on conflict (key) do update set value = excluded.value, updated_at = now()`
	qDelete = `delete from app_kv where key = $1`
)

// Postgres stores values in a single jsonb table via database/sql (pgx
// driver). Writes are whole-value upserts, last write wins.
type Postgres struct{ DB *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{DB: db} }

// EnsureSchema creates the backing table when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

func (s *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.DB.QueryRowContext(ctx, qGet, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *Postgres) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, qSet, key, value)
	return err
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, qDelete, key)
	return err
}
