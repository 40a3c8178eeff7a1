package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row maps a source column name to its raw cell value. Cells are kept as
// found; trimming and interpretation happen downstream.
type Row map[string]string

// Table is an in-memory snapshot of the source spreadsheet: the header row
// plus one Row per data record.
type Table struct {
	Headers []string
	Rows    []Row
}

// ReadCSV parses one CSV document into a Table. The first record is the
// header row; header cells are whitespace-trimmed. Ragged rows are accepted:
// missing trailing cells read as empty, extra cells are ignored.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	table := &Table{Headers: headers}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Rows)+2, err)
		}

		row := make(Row, len(headers))
		for i, name := range headers {
			if name == "" {
				continue
			}
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
