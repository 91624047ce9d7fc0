package tabular

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// Row is one data row of an upload: the ordered header list, the raw cell
// per header, and a 1-based row index used in rejection reports.
type Row struct {
	Index   int               `json:"index"`
	Headers []string          `json:"-"`
	Cells   map[string]string `json:"cells"`
}

// Get returns the raw cell for a header (exact match) and whether it exists
func (r Row) Get(header string) (string, bool) {
	v, ok := r.Cells[header]
	return v, ok
}

// Parse splits decoded upload text into header-keyed rows. The delimiter is
// sniffed from the header line (semicolon-separated exports are the norm
// for Polish spreadsheets, comma and tab also occur).
func Parse(text string) ([]Row, error) {
	text = strings.TrimLeft(text, "\uFEFF\n\r")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse tabular data: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		cells := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(record) {
				cells[h] = record[j]
			} else {
				cells[h] = ""
			}
		}
		rows = append(rows, Row{Index: i + 1, Headers: headers, Cells: cells})
	}
	return rows, nil
}

// sniffDelimiter picks the separator with the most occurrences in the
// header line, semicolon winning ties.
func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		line = text[:i]
	}

	semis := strings.Count(line, ";")
	commas := strings.Count(line, ",")
	tabs := strings.Count(line, "\t")

	switch {
	case tabs > semis && tabs > commas:
		return '\t'
	case commas > semis:
		return ','
	default:
		return ';'
	}
}
