// Package unify loads the per-source audit CSVs and merges them into the
// unified record table with a canonical schema.
package unify

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header-mapped CSV table. Column order in the source file is
// irrelevant; unknown columns are preserved.
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]string
}

// ReadTable parses a CSV file into a Table. Fields are whitespace-trimmed
// and surrounding quotes are normalized away.
func ReadTable(path, name string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "unify: open %s", name)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.Errorf("unify: %s is empty", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "unify: read %s header", name)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}

	t := &Table{Name: name, Columns: cols}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "unify: read %s row", name)
		}
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			if i >= len(record) {
				break
			}
			row[col] = NormalizeText(record[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Has reports whether the table carries a column.
func (t *Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// MissingColumns returns the required columns absent from the table.
func (t *Table) MissingColumns(required ...string) []string {
	var missing []string
	for _, col := range required {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Rename replaces a column name in the header and every row.
func (t *Table) Rename(from, to string) {
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
		}
	}
	for _, row := range t.Rows {
		if v, ok := row[from]; ok {
			row[to] = v
			delete(row, from)
		}
	}
}

// NormalizeText trims whitespace and strips one layer of matching surrounding
// quotes. Idempotent: NormalizeText(NormalizeText(s)) == NormalizeText(s).
func NormalizeText(s string) string {
	for {
		trimmed := strings.TrimSpace(s)
		if len(trimmed) >= 2 {
			first, last := trimmed[0], trimmed[len(trimmed)-1]
			if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
				// Only strip when the quotes wrap the whole value, not when
				// the text merely begins and ends with embedded quotes.
				inner := trimmed[1 : len(trimmed)-1]
				if !strings.Contains(inner, string(first)) {
					s = inner
					continue
				}
			}
		}
		return trimmed
	}
}

// ParseFloat coerces a source value to a float. Returns ok=false for values
// that are empty or not numeric.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
