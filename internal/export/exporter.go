package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rebeliceyang/lazyfacet/internal/fieldpath"
	"github.com/rebeliceyang/lazyfacet/internal/models"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// GroupColumn heads the leading column of grouped exports
const GroupColumn = "group"

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", ext)
	}
}

// Columns returns columns when set, otherwise every leaf path of items
func Columns[T any](items []T, columns []string) []string {
	if len(columns) > 0 {
		return columns
	}
	sample := make([]any, len(items))
	for i, item := range items {
		sample[i] = item
	}
	return fieldpath.ExtractPaths(sample...)
}

// table flattens a result into a header and string rows. Grouped results get
// a leading group column and list rows group by group.
func table[T any](result models.FilterResult[T], columns []string) ([]string, [][]string) {
	columns = Columns(result.Items, columns)

	row := func(item T) []string {
		out := make([]string, len(columns))
		for i, col := range columns {
			out[i] = fieldpath.ToString(fieldpath.Resolve(item, col))
		}
		return out
	}

	if !result.IsGrouped() {
		rows := make([][]string, 0, len(result.Items))
		for _, item := range result.Items {
			rows = append(rows, row(item))
		}
		return columns, rows
	}

	header := append([]string{GroupColumn}, columns...)
	var rows [][]string
	for _, g := range result.Groups {
		for _, item := range g.Items {
			rows = append(rows, append([]string{g.GroupKey}, row(item)...))
		}
	}
	return header, rows
}

// WriteCSV writes the result as CSV
func WriteCSV[T any](w io.Writer, result models.FilterResult[T], columns []string) error {
	header, rows := table(result, columns)

	writer := csv.NewWriter(w)

	// Write header
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes the result envelope as indented JSON
func WriteJSON[T any](w io.Writer, result models.FilterResult[T]) error {
	// Marshal to JSON with pretty printing
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// WriteXLSX writes the result as a single-sheet workbook
func WriteXLSX[T any](w io.Writer, result models.FilterResult[T], columns []string) error {
	header, rows := table(result, columns)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Results"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style XLSX header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write XLSX row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

// ToFile exports the result to path in the format given by its extension
func ToFile[T any](path string, result models.FilterResult[T], columns []string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	// Create the file
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", format, err)
	}
	defer func() { _ = file.Close() }()

	switch format {
	case FormatCSV:
		err = WriteCSV(file, result, columns)
	case FormatJSON:
		err = WriteJSON(file, result)
	case FormatXLSX:
		err = WriteXLSX(file, result, columns)
	}
	if err != nil {
		return err
	}
	return file.Close()
}

// Write exports the result to w in format
func Write[T any](w io.Writer, format Format, result models.FilterResult[T], columns []string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, result, columns)
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatXLSX:
		return WriteXLSX(w, result, columns)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
