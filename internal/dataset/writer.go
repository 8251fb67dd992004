// Package dataset serializes the pipeline's outputs: the latest and unified
// CSV tables, the sqlite database, and the YAML audit report. Every file is
// written to a temp file in the target directory and renamed into place, so
// a failed run never leaves a truncated file under the final name.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
)

// LatestColumns is the column order of latest.csv.
var LatestColumns = []string{"code", "name_zh", "level"}

// UnifiedColumns is the column order of unified.csv.
var UnifiedColumns = []string{
	"code", "name_zh", "level", "name_pinyin", "name_en", "alpha", "latitude", "longitude",
}

// Writer persists dataset files under a target directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer targeting dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the target directory.
func (w *Writer) Dir() string { return w.dir }

// Path returns the full path of a dataset file.
func (w *Writer) Path(name string) string { return filepath.Join(w.dir, name) }

// WriteLatest writes latest.csv: code, name_zh and level straight from the
// scraped set, sorted by code ascending.
func (w *Writer) WriteLatest(ctx context.Context, scraped *division.Set) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(LatestColumns); err != nil {
		return errors.WrapIO("write", "latest.csv", err)
	}
	for _, rec := range scraped.Sorted() {
		row := []string{strconv.Itoa(rec.Code), rec.NameZH, strconv.Itoa(rec.Level)}
		if err := cw.Write(row); err != nil {
			return errors.WrapIO("write", "latest.csv", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapIO("write", "latest.csv", err)
	}

	path := w.Path("latest.csv")
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	logging.FromContext(ctx).Info().Str("path", path).Int("rows", scraped.Len()).Msg("wrote latest table")
	return nil
}

// WriteUnified writes unified.csv with the full column set, empty strings
// for absent optional fields, sorted by code ascending.
func (w *Writer) WriteUnified(ctx context.Context, unified *division.Set) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(UnifiedColumns); err != nil {
		return errors.WrapIO("write", "unified.csv", err)
	}
	for _, rec := range unified.Sorted() {
		if err := cw.Write(unifiedRow(rec)); err != nil {
			return errors.WrapIO("write", "unified.csv", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapIO("write", "unified.csv", err)
	}

	path := w.Path("unified.csv")
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	logging.FromContext(ctx).Info().Str("path", path).Int("rows", unified.Len()).Msg("wrote unified table")
	return nil
}

// unifiedRow renders one record in UnifiedColumns order.
func unifiedRow(rec division.Record) []string {
	return []string{
		strconv.Itoa(rec.Code),
		rec.NameZH,
		strconv.Itoa(rec.Level),
		orEmpty(rec.NamePinyin),
		orEmpty(rec.NameEN),
		orEmpty(rec.Alpha),
		floatOrEmpty(rec.Latitude),
		floatOrEmpty(rec.Longitude),
	}
}

func orEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatOrEmpty(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}

// ReadUnified reads a unified.csv stream back into records through the same
// column schema, for round-trip checks and downstream loads.
func ReadUnified(r io.Reader) (*division.Set, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, errors.WrapIO("read", "unified.csv", err)
	}
	if len(header) != len(UnifiedColumns) {
		return nil, errors.NewParseError("unified", "unified.csv", 1, "unexpected column count")
	}

	set := division.NewSet()
	line := 1
	for {
		row, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapIO("read", "unified.csv", err)
		}

		code, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, errors.NewParseError("unified", "unified.csv", line, "bad code")
		}
		level, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, errors.NewParseError("unified", "unified.csv", line, "bad level")
		}

		rec := division.Record{Code: code, NameZH: row[1], Level: level}
		rec.NamePinyin = ptrIfSet(row[3])
		rec.NameEN = ptrIfSet(row[4])
		rec.Alpha = ptrIfSet(row[5])
		if rec.Latitude, err = floatIfSet(row[6]); err != nil {
			return nil, errors.NewParseError("unified", "unified.csv", line, "bad latitude")
		}
		if rec.Longitude, err = floatIfSet(row[7]); err != nil {
			return nil, errors.NewParseError("unified", "unified.csv", line, "bad longitude")
		}
		set.Add(rec)
	}
	return set, nil
}

func ptrIfSet(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func floatIfSet(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// writeAtomic writes data to path via a temp file, fsync and rename.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapIO("close", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
