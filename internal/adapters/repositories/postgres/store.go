package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/terratensor/cnareas/internal/core/domain"
)

const TableAreas = "admin_areas"

var createTableSQL = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id           varchar(6) PRIMARY KEY,
    name         text NOT NULL,
    level        smallint NOT NULL,
    parent_id    varchar(6) NOT NULL,
    parent_ids   text[] NOT NULL,
    parent_names text NOT NULL,
    full_name    text NOT NULL
)`, TableAreas)

var createIndexSQL = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_id_idx ON %s (parent_id)`, TableAreas, TableAreas)

var upsertSQL = fmt.Sprintf(`INSERT INTO %s (id, name, level, parent_id, parent_ids, parent_names, full_name)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    level = EXCLUDED.level,
    parent_id = EXCLUDED.parent_id,
    parent_ids = EXCLUDED.parent_ids,
    parent_names = EXCLUDED.parent_names,
    full_name = EXCLUDED.full_name`, TableAreas)

// Store хранит плоскую таблицу узлов; parent_ids лежит как text[] вместе с корнем "0"
type Store struct {
	db        *sql.DB
	batchSize int
}

// Open открывает пул соединений по DSN
func Open(dsn string, batchSize int) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return &Store{db: db, batchSize: batchSize}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Name() string {
	return "postgres"
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createTableSQL, createIndexSQL} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema удаляет таблицу вместе с индексом
func (s *Store) DropSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+TableAreas); err != nil {
		return fmt.Errorf("failed to drop %s: %w", TableAreas, err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, set *domain.AreaSet) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	return s.SaveAreas(ctx, set.Flatten())
}

// SaveAreas пишет узлы пачками, каждая пачка в своей транзакции
func (s *Store) SaveAreas(ctx context.Context, areas []*domain.Area) error {
	batchSize := s.batchSize
	if batchSize <= 0 {
		batchSize = len(areas)
	}

	for start := 0; start < len(areas); start += batchSize {
		end := min(start+batchSize, len(areas))
		if err := s.saveBatch(ctx, areas[start:end]); err != nil {
			return fmt.Errorf("failed to save batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

func (s *Store) saveBatch(ctx context.Context, areas []*domain.Area) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range areas {
		if _, err := stmt.ExecContext(ctx, areaRow(a)...); err != nil {
			return fmt.Errorf("upsert %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// Count возвращает количество строк в admin_areas
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+TableAreas)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count areas: %w", err)
	}
	return n, nil
}

// areaRow раскладывает узел в порядке колонок upsertSQL
func areaRow(a *domain.Area) []any {
	return []any{
		a.ID,
		a.Name,
		int(a.Level()),
		a.ParentID,
		pq.Array(a.AncestorIDs()),
		a.ParentNames,
		a.FullName,
	}
}
