package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/store/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteAdapter stores the serialized snapshot in a single-row table inside a
// local SQLite database. The snapshot stays one named durable entry; SQLite
// only provides the atomic write and the file format.
type SQLiteAdapter struct {
	db *sql.DB
}

// NewSQLiteAdapter opens (creating if needed) the database at dsn and applies
// pending migrations.
func NewSQLiteAdapter(ctx context.Context, dsn string) (*SQLiteAdapter, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", common.ErrStorage, dsn, err)
	}
	// modernc sqlite allows a single writer; keep the pool at one connection
	// so concurrent saves queue instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", common.ErrStorage, err)
	}
	return &SQLiteAdapter{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (a *SQLiteAdapter) Save(ctx context.Context, s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: marshal snapshot: %v", common.ErrStorage, err)
	}

	query := `INSERT INTO snapshots (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	_, err = a.db.ExecContext(ctx, query, common.SnapshotName, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: upsert snapshot: %v", common.ErrStorage, err)
	}
	return nil
}

func (a *SQLiteAdapter) Load(ctx context.Context) (Snapshot, bool, error) {
	var data []byte
	query := `SELECT data FROM snapshots WHERE name = ?`
	err := a.db.QueryRowContext(ctx, query, common.SnapshotName).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("%w: select snapshot: %v", common.ErrStorage, err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, false, fmt.Errorf("%w: unmarshal snapshot: %v", common.ErrStorage, err)
	}
	return s, true, nil
}

func (a *SQLiteAdapter) Close() error {
	return a.db.Close()
}
