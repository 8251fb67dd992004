package parse

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/gbdata/gb2260/pkg/errors"
)

// row is one CSV record with header-based access.
type row struct {
	line   int
	fields map[string]string
}

// get returns the trimmed value of column name, with ok reporting whether
// the column exists at all (as opposed to being empty).
func (r row) get(name string) (string, bool) {
	v, ok := r.fields[name]
	return strings.TrimSpace(v), ok
}

// readRows reads a headered CSV stream into rows. Short rows are padded by
// the csv package's FieldsPerRecord handling being disabled; ragged input
// from hand-transcribed files is tolerated.
func readRows(r io.Reader, source, file string) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.NewParseError(source, file, 1, "missing header: "+err.Error())
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []row
	line := 1
	for {
		record, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParseError(source, file, line, err.Error())
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				fields[name] = record[i]
			}
		}
		rows = append(rows, row{line: line, fields: fields})
	}
	return rows, nil
}

// intField parses a required integer column.
func (r row) intField(name string) (int, bool) {
	v, ok := r.get(name)
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// floatField parses an optional float column; an empty or missing value is
// simply absent, not an error.
func (r row) floatField(name string) (*float64, error) {
	v, ok := r.get(name)
	if !ok || v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// stringField returns an optional string column as a pointer, nil when the
// column is missing or empty.
func (r row) stringField(name string) *string {
	v, ok := r.get(name)
	if !ok || v == "" {
		return nil
	}
	return &v
}
