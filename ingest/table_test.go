package ingest

import (
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	csv := strings.Join([]string{
		"Container name,Fill level (%),On hold",
		"A,85,No",
		"B,60,Yes",
	}, "\n")

	table, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("got %d rows, expected 2", table.Len())
	}
	if got := table.Cell(0, "Container name"); got != "A" {
		t.Errorf("cell (0, Container name) = %q, expected A", got)
	}
	if got := table.Cell(1, "On hold"); got != "Yes" {
		t.Errorf("cell (1, On hold) = %q, expected Yes", got)
	}
	if table.Cell(0, "Nonexistent") != "" {
		t.Error("unknown column must yield an empty value")
	}
}

func TestReadCSVEmpty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("expected an error for a csv without a header row")
	}
}

func TestMissingColumns(t *testing.T) {
	table := NewTable([]string{"Container name", "Status"}, nil)

	missing := table.MissingColumns("Container name", "Status", "On hold", "Fill level (%)")
	if len(missing) != 2 {
		t.Fatalf("got %v, expected 2 missing columns", missing)
	}
	if missing[0] != "On hold" || missing[1] != "Fill level (%)" {
		t.Errorf("unexpected missing columns %v", missing)
	}
}

func TestColumnValues(t *testing.T) {
	table := NewTable([]string{"Omschrijving"}, [][]string{{"A"}, {"B"}})
	vals := table.ColumnValues("Omschrijving")
	if len(vals) != 2 || vals[0] != "A" || vals[1] != "B" {
		t.Errorf("unexpected column values %v", vals)
	}
}
