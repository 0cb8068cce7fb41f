package storages

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in a single table, replaced transactionally on Save.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = new(SQLiteStore)

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`
		create table if not exists routines (
			key text primary key,
			function_code text not null,
			function_name text not null
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init %s: %w", path, err)
	}
	return &SQLiteStore{
		db: db,
	}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Records, error) {
	rows, err := s.db.QueryContext(ctx, `select key, function_code, function_name from routines`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := Records{}
	for rows.Next() {
		var key string
		var record Record
		if err := rows.Scan(&key, &record.FunctionCode, &record.FunctionName); err != nil {
			return nil, err
		}
		records[key] = record
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *SQLiteStore) Save(ctx context.Context, records Records) error {
	return withTx(ctx, s.db, func(tx Tx) error {
		if _, err := tx.ExecContext(ctx, `delete from routines`); err != nil {
			return err
		}
		for key, record := range records {
			if _, err := tx.ExecContext(ctx,
				`insert into routines (key, function_code, function_name) values (?, ?, ?)`,
				key, record.FunctionCode, record.FunctionName,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
