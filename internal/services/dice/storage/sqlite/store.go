// Package sqlite provides a SQLite-backed roll history store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/roll/internal/platform/grpc/pagination"
	"github.com/louisbranch/roll/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/roll/internal/services/dice/storage"
	"github.com/louisbranch/roll/internal/services/dice/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const rollColumns = `id, operation, notation, count, sides, modifier, has_modifier,
       individual, total, seed, seed_source, created_at`

// Store persists roll history in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite roll store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutRoll inserts one roll record.
func (s *Store) PutRoll(ctx context.Context, record storage.RollRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record, err := storage.Normalize(record, nil)
	if err != nil {
		return err
	}
	individual, err := json.Marshal(record.Individual)
	if err != nil {
		return fmt.Errorf("encode individual dice: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rolls (`+rollColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		string(record.Operation),
		record.Notation,
		record.Count,
		record.Sides,
		record.Modifier,
		record.HasModifier,
		string(individual),
		record.Total,
		strconv.FormatUint(record.Seed, 10),
		record.SeedSource,
		record.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put roll: %w", err)
	}
	return nil
}

// GetRoll returns one roll by ID.
func (s *Store) GetRoll(ctx context.Context, id string) (storage.RollRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RollRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RollRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.RollRecord{}, fmt.Errorf("roll id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+rollColumns+` FROM rolls WHERE id = ?`, id)
	record, err := scanRoll(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RollRecord{}, storage.ErrNotFound
		}
		return storage.RollRecord{}, fmt.Errorf("get roll: %w", err)
	}
	return record, nil
}

// ListRolls returns one page of rolls, newest first.
func (s *Store) ListRolls(ctx context.Context, pageSize int, pageToken string) (storage.RollPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.RollPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RollPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.RollPage{}, fmt.Errorf("page size must be greater than zero")
	}
	offset, err := pagination.DecodeOffset(pageToken)
	if err != nil {
		return storage.RollPage{}, fmt.Errorf("list rolls: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+rollColumns+`
		   FROM rolls
		  ORDER BY created_at DESC, rowid DESC
		  LIMIT ? OFFSET ?`,
		pageSize+1,
		offset,
	)
	if err != nil {
		return storage.RollPage{}, fmt.Errorf("list rolls: %w", err)
	}
	defer rows.Close()

	page := storage.RollPage{Rolls: make([]storage.RollRecord, 0, pageSize)}
	for rows.Next() {
		record, err := scanRoll(rows)
		if err != nil {
			return storage.RollPage{}, fmt.Errorf("list rolls: %w", err)
		}
		page.Rolls = append(page.Rolls, record)
	}
	if err := rows.Err(); err != nil {
		return storage.RollPage{}, fmt.Errorf("list rolls: %w", err)
	}
	if len(page.Rolls) > pageSize {
		page.Rolls = page.Rolls[:pageSize]
		page.NextPageToken = pagination.EncodeOffset(offset + pageSize)
	}
	return page, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoll(row scanner) (storage.RollRecord, error) {
	var (
		record     storage.RollRecord
		operation  string
		individual string
		seed       string
		createdAt  int64
	)
	if err := row.Scan(
		&record.ID,
		&operation,
		&record.Notation,
		&record.Count,
		&record.Sides,
		&record.Modifier,
		&record.HasModifier,
		&individual,
		&record.Total,
		&seed,
		&record.SeedSource,
		&createdAt,
	); err != nil {
		return storage.RollRecord{}, err
	}
	record.Operation = storage.Operation(operation)
	if err := json.Unmarshal([]byte(individual), &record.Individual); err != nil {
		return storage.RollRecord{}, fmt.Errorf("decode individual dice: %w", err)
	}
	parsedSeed, err := strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return storage.RollRecord{}, fmt.Errorf("decode seed: %w", err)
	}
	record.Seed = parsedSeed
	record.CreatedAt = time.UnixMilli(createdAt).UTC()
	return record, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed: rolls.id")
}

var _ storage.RollStore = (*Store)(nil)
