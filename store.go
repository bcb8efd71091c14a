package oaiharvest

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tmc/oaiharvest/internal/logger"
)

const recordsSchema = `
DROP TABLE IF EXISTS records;
CREATE TABLE records (
	seq         INTEGER PRIMARY KEY,
	title       TEXT NOT NULL,
	creator     TEXT NOT NULL,
	subject     TEXT NOT NULL,
	date        TEXT NOT NULL,
	format      TEXT NOT NULL,
	identifier  TEXT NOT NULL,
	description TEXT NOT NULL,
	relation    TEXT NOT NULL,
	file_name   TEXT NOT NULL
);
`

// WriteSQLite writes records to a "records" table in the database at path,
// replacing any previous table. seq preserves harvest order.
func (e *Exporter) WriteSQLite(ctx context.Context, path string, records []MetadataRecord) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, recordsSchema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records
		(seq, title, creator, subject, date, format, identifier, description, relation, file_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range records {
		args := []any{i + 1}
		for _, v := range records[i].Row() {
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert record %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	e.log.Info("database saved", logger.String("path", path), logger.Int("rows", len(records)))
	return nil
}
