package dataset

import (
	"context"
	"database/sql"
	"os"

	_ "modernc.org/sqlite"

	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
)

// schema mirrors the unified CSV: the required triple plus nullable
// optional fields.
const schema = `CREATE TABLE codes (
	code        INTEGER PRIMARY KEY,
	name_zh     TEXT    NOT NULL,
	level       INTEGER NOT NULL,
	name_pinyin TEXT,
	name_en     TEXT,
	alpha       TEXT,
	latitude    REAL,
	longitude   REAL
)`

const insertQuery = `INSERT INTO codes
	(code, name_zh, level, name_pinyin, name_en, alpha, latitude, longitude)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// WriteSQLite writes the unified set to unified.db. The database is built
// under a temp name and renamed into place like the CSV outputs.
func (w *Writer) WriteSQLite(ctx context.Context, unified *division.Set) error {
	path := w.Path("unified.db")
	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	if err := buildSQLite(ctx, tmpPath, unified); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("rename", path, err)
	}

	logging.FromContext(ctx).Info().Str("path", path).Int("rows", unified.Len()).Msg("wrote sqlite database")
	return nil
}

// buildSQLite creates and fills a fresh database file.
func buildSQLite(ctx context.Context, path string, unified *division.Set) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.WrapIO("write", path, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIO("write", path, err)
	}
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		_ = tx.Rollback()
		return errors.WrapIO("write", path, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range unified.Sorted() {
		_, err := stmt.ExecContext(ctx, rec.Code, rec.NameZH, rec.Level,
			nullString(rec.NamePinyin), nullString(rec.NameEN), nullString(rec.Alpha),
			nullFloat(rec.Latitude), nullFloat(rec.Longitude))
		if err != nil {
			_ = tx.Rollback()
			return errors.WrapIO("write", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
