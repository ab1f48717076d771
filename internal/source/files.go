// Package source loads record collections for the CLI, TUI and server. The
// query engine itself does no I/O.
package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Record is one loaded record
type Record = map[string]any

// LoadFiles loads every .json, .yaml, .yml, .csv and .xlsx file matching pattern
// (doublestar syntax, e.g. data/**/*.json) in lexical order.
func LoadFiles(pattern string) ([]Record, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}

	var records []Record
	for _, path := range matches {
		if !Supported(path) {
			continue
		}
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, loaded...)
	}
	return records, nil
}

// Supported reports whether path has a loadable extension
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml", ".csv", ".xlsx":
		return true
	}
	return false
}

// LoadFile loads one file, choosing the decoder from its extension
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []Record
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		records, err = DecodeJSON(data)
	case ".yaml", ".yml":
		records, err = DecodeYAML(data)
	case ".csv":
		records, err = DecodeCSV(bytes.NewReader(data))
	case ".xlsx":
		records, err = DecodeXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// DecodeJSON accepts an array of objects or a single object
func DecodeJSON(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var one Record
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, err
		}
		return []Record{one}, nil
	}

	var many []Record
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return nil, err
	}
	return many, nil
}

// DecodeYAML accepts a list of mappings, a single mapping or a stream of
// documents
func DecodeYAML(data []byte) ([]Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var records []Record
	for {
		var doc any
		err := dec.Decode(&doc)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}

		switch v := doc.(type) {
		case nil:
		case map[string]any:
			records = append(records, v)
		case []any:
			for i, item := range v {
				m, ok := item.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("item %d is %T, not a mapping", i, item)
				}
				records = append(records, m)
			}
		default:
			return nil, fmt.Errorf("document is %T, not a mapping or list", doc)
		}
	}
}

// DecodeCSV reads a header row followed by records. Cells stay strings;
// empty cells are absent.
func DecodeCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}

		rec := make(Record, len(header))
		for i, name := range header {
			if i < len(row) && row[i] != "" {
				rec[name] = row[i]
			}
		}
		records = append(records, rec)
	}
}

// DecodeXLSX reads the first sheet with the same rules as DecodeCSV
func DecodeXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, name := range header {
			if i < len(row) && row[i] != "" {
				rec[name] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
