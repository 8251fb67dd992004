// Package store provides read access to a built unified.db: code and name
// lookups, parent/child navigation and ISO 3166-2-like alpha codes.
package store

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
)

const selectColumns = "code, name_zh, level, name_pinyin, name_en, alpha, latitude, longitude"

// Store reads the unified dataset from sqlite.
type Store struct {
	db *sql.DB
}

// Open opens the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns the record for code.
func (s *Store) Lookup(ctx context.Context, code int) (division.Record, error) {
	rows, err := s.query(ctx, "SELECT "+selectColumns+" FROM codes WHERE code = ?", code)
	if err != nil {
		return division.Record{}, err
	}
	if len(rows) == 0 {
		return division.Record{}, errors.ErrNotFound
	}
	return rows[0], nil
}

// LookupName returns the record whose name_zh equals nameZH. A non-zero
// within code narrows the search to that division; without narrowing, more
// than one hit is ErrAmbiguous (市辖区 appears in every prefecture).
func (s *Store) LookupName(ctx context.Context, nameZH string, within int) (division.Record, error) {
	query := "SELECT " + selectColumns + " FROM codes WHERE name_zh = ?"
	args := []any{nameZH}

	if within != 0 {
		low, high := rangeOf(within)
		query += " AND code BETWEEN ? AND ?"
		args = append(args, low, high)
	}
	query += " ORDER BY code"

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return division.Record{}, err
	}
	switch len(rows) {
	case 0:
		return division.Record{}, errors.ErrNotFound
	case 1:
		return rows[0], nil
	default:
		return division.Record{}, errors.NewConflictError(rows[0].Code, "name_zh",
			"name matches multiple divisions; narrow with a parent code")
	}
}

// Parent returns the parent of code at parentLevel, defaulting to the level
// directly above when parentLevel is zero.
func (s *Store) Parent(ctx context.Context, code, parentLevel int) (division.Record, error) {
	rec, err := s.Lookup(ctx, code)
	if err != nil {
		return division.Record{}, err
	}
	if parentLevel == 0 {
		parentLevel = rec.Level - 1
	}
	if parentLevel < 1 || parentLevel >= rec.Level {
		return division.Record{}, errors.NewValidationError("level", parentLevel, "no parent at this level")
	}

	l1, l2, _ := division.Parents(code)
	target := l1
	if parentLevel == 2 {
		target = l2
	}
	return s.Lookup(ctx, target)
}

// Children returns the direct children of code, sorted ascending.
func (s *Store) Children(ctx context.Context, code int) ([]division.Record, error) {
	rec, err := s.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if rec.Level >= 3 {
		return nil, nil
	}

	low, high := rangeOf(code)
	return s.query(ctx,
		"SELECT "+selectColumns+" FROM codes WHERE code BETWEEN ? AND ? AND level = ? AND code != ? ORDER BY code",
		low, high, rec.Level+1, code)
}

// AllAt returns all codes at the given administrative level, ascending.
func (s *Store) AllAt(ctx context.Context, level int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT code FROM codes WHERE level = ? ORDER BY code", level)
	if err != nil {
		return nil, errors.WrapIO("read", "unified.db", err)
	}
	defer func() { _ = rows.Close() }()

	var codes []int
	for rows.Next() {
		var code int
		if err := rows.Scan(&code); err != nil {
			return nil, errors.WrapIO("read", "unified.db", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// AlphaCode returns an ISO 3166-2-like alpha code like "CN-HE-SJW", built
// from the stored alpha parts of code and its parents. Divisions without
// alpha codes at every ancestor level report ErrNotFound.
func (s *Store) AlphaCode(ctx context.Context, code int) (string, error) {
	l1, l2, l3 := division.Parents(code)

	level := division.Level(code)
	targets := []int{l1, l2, l3}[:level]

	parts := []string{"CN"}
	for _, target := range targets {
		rec, err := s.Lookup(ctx, target)
		if err != nil {
			return "", err
		}
		if rec.Alpha == nil || *rec.Alpha == "" {
			return "", errors.ErrNotFound
		}
		parts = append(parts, *rec.Alpha)
	}
	return strings.Join(parts, "-"), nil
}

// query runs a SELECT over the full column set.
func (s *Store) query(ctx context.Context, query string, args ...any) ([]division.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapIO("read", "unified.db", err)
	}
	defer func() { _ = rows.Close() }()

	var out []division.Record
	for rows.Next() {
		var rec division.Record
		var pinyin, nameEN, alpha sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&rec.Code, &rec.NameZH, &rec.Level, &pinyin, &nameEN, &alpha, &lat, &lon); err != nil {
			return nil, errors.WrapIO("read", "unified.db", err)
		}
		if pinyin.Valid {
			rec.NamePinyin = &pinyin.String
		}
		if nameEN.Valid {
			rec.NameEN = &nameEN.String
		}
		if alpha.Valid {
			rec.Alpha = &alpha.String
		}
		if lat.Valid {
			rec.Latitude = &lat.Float64
		}
		if lon.Valid {
			rec.Longitude = &lon.Float64
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// rangeOf returns the inclusive code range covered by a division.
func rangeOf(code int) (low, high int) {
	switch division.Level(code) {
	case 1:
		return code, code + 9999
	case 2:
		return code, code + 99
	default:
		return code, code
	}
}
