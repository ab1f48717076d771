package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/query"
)

func testRecords() []map[string]any {
	return []map[string]any{
		{
			"name":   "Brand Book, 2nd edition",
			"status": "active",
			"score":  4.5,
			"owner":  map[string]any{"name": "Ada"},
			"tags":   []any{"print", "logo"},
		},
		{
			"name":   "Persona \"Mia\"",
			"status": "draft",
			"score":  2,
		},
	}
}

func TestExportToCSV(t *testing.T) {
	result := query.ApplyAll(testRecords(), models.FilterGroup{}, nil, nil, nil)

	// Create temp file
	tmpDir := t.TempDir()
	csvPath := filepath.Join(tmpDir, "test.csv")

	// Export
	if err := ToFile(csvPath, result, []string{"name", "owner.name", "score", "tags"}); err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}

	// Verify file exists and has correct permissions
	info, err := os.Stat(csvPath)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}

	if info.Mode().Perm() != 0644 {
		t.Errorf("Expected file permissions 0644, got %o", info.Mode().Perm())
	}

	// Read and verify CSV content
	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) != 3 { // header + 2 rows
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	expectedHeader := []string{"name", "owner.name", "score", "tags"}
	if !slicesEqual(records[0], expectedHeader) {
		t.Errorf("Header mismatch.\nExpected: %v\nGot: %v", expectedHeader, records[0])
	}

	row1 := records[1]
	if row1[0] != "Brand Book, 2nd edition" {
		t.Errorf("Expected quoted name to survive, got '%s'", row1[0])
	}
	if row1[1] != "Ada" {
		t.Errorf("Expected nested owner 'Ada', got '%s'", row1[1])
	}
	if row1[2] != "4.5" {
		t.Errorf("Expected score '4.5', got '%s'", row1[2])
	}
	if row1[3] != "print,logo" {
		t.Errorf("Expected tags 'print,logo', got '%s'", row1[3])
	}

	row2 := records[2]
	if row2[0] != "Persona \"Mia\"" {
		t.Errorf("Expected quotes to survive, got '%s'", row2[0])
	}
	if row2[1] != "" {
		t.Errorf("Expected empty cell for missing owner, got '%s'", row2[1])
	}
}

func TestExportGroupedCSV(t *testing.T) {
	group := &models.GroupConfig{Field: "status"}
	result := query.ApplyAll(testRecords(), models.FilterGroup{}, nil, group, nil)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, result, []string{"name"}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if !slicesEqual(records[0], []string{GroupColumn, "name"}) {
		t.Errorf("Expected group column first, got %v", records[0])
	}
	if records[1][0] != "active" || records[2][0] != "draft" {
		t.Errorf("Unexpected group keys %v", records)
	}
}

func TestExportDefaultColumns(t *testing.T) {
	result := query.ApplyAll(testRecords(), models.FilterGroup{}, nil, nil, nil)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, result, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	expected := "name,owner.name,score,status,tags"
	if header != expected {
		t.Errorf("Expected header %q, got %q", expected, header)
	}
}

func TestExportToJSON(t *testing.T) {
	sort := models.SortConfig{Options: []models.SortOption{{Field: "score", Direction: models.SortAsc}}}
	result := query.ApplyAll(testRecords(), models.FilterGroup{}, &sort, nil, nil)

	tmpDir := t.TempDir()
	jsonPath := filepath.Join(tmpDir, "test.json")

	if err := ToFile(jsonPath, result, nil); err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}

	// Verify it's valid JSON
	var parsed models.FilterResult[map[string]any]
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if parsed.TotalCount != 2 || len(parsed.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d/%d", parsed.TotalCount, len(parsed.Items))
	}
	if parsed.Items[0]["status"] != "draft" {
		t.Errorf("Expected sorted items, got %v", parsed.Items[0])
	}
	if parsed.AppliedSort == nil {
		t.Error("Expected applied sort to be echoed")
	}

	// Verify JSON is pretty-printed (contains newlines and indentation)
	jsonStr := string(data)
	if !strings.Contains(jsonStr, "\n") || !strings.Contains(jsonStr, "  ") {
		t.Error("JSON should be pretty-printed")
	}
}

func TestExportToXLSX(t *testing.T) {
	result := query.ApplyAll(testRecords(), models.FilterGroup{}, nil, &models.GroupConfig{Field: "status"}, nil)

	xlsxPath := filepath.Join(t.TempDir(), "test.xlsx")
	if err := ToFile(xlsxPath, result, []string{"name", "score"}); err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		t.Fatalf("Failed to open XLSX: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Results")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if !slicesEqual(rows[0], []string{"group", "name", "score"}) {
		t.Errorf("Unexpected header %v", rows[0])
	}
	if rows[2][0] != "draft" || rows[2][2] != "2" {
		t.Errorf("Unexpected row %v", rows[2])
	}
}

func TestExportEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	result := query.ApplyAll([]map[string]any{}, models.FilterGroup{}, nil, nil, nil)

	// Test CSV with empty list
	csvPath := filepath.Join(tmpDir, "empty.csv")
	if err := ToFile(csvPath, result, []string{"name"}); err != nil {
		t.Fatalf("ToFile with empty list failed: %v", err)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if string(data) != "name\n" {
		t.Errorf("Expected header only, got %q", string(data))
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		wantErr  bool
	}{
		{"out.csv", FormatCSV, false},
		{"OUT.JSON", FormatJSON, false},
		{"report.xlsx", FormatXLSX, false},
		{"report.pdf", "", true},
	}

	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v", tt.path, err)
		}
		if got != tt.expected {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

// Helper function to compare slices
func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
