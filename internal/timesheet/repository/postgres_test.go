package repository

import (
	"strings"
	"testing"

	"legal-case-platform/backend/internal/db"
)

func TestNullFloat_ZeroRateIsNull(t *testing.T) {
	if v := nullFloat(0); v.Valid {
		t.Error("nullFloat(0) should encode as NULL")
	}
	v := nullFloat(250)
	if !v.Valid || v.Float64 != 250 {
		t.Errorf("nullFloat(250) = %+v, want valid 250", v)
	}
}

func TestNullString_EmptyIsNull(t *testing.T) {
	if v := nullString(""); v.Valid {
		t.Error("nullString(\"\") should encode as NULL")
	}
	if v := nullString("case-1"); !v.Valid || v.String != "case-1" {
		t.Errorf("nullString(case-1) = %+v, want valid case-1", v)
	}
}

// Columns this repository NULL-encodes must be nullable in the schema: a
// column DEFAULT is never applied to an explicit NULL, so an insert with an
// unset rate or case would otherwise fail with a not-null violation.
func TestSchema_NullEncodedColumnsAreNullable(t *testing.T) {
	sql, err := db.Migrations.ReadFile("migrations/000001_create_timesheet_entries.up.sql")
	if err != nil {
		t.Fatalf("read embedded schema: %v", err)
	}

	nullEncoded := []string{"case_id", "task_id", "hourly_rate"}
	for _, column := range nullEncoded {
		def := columnDef(t, string(sql), column)
		if strings.Contains(strings.ToUpper(def), "NOT NULL") {
			t.Errorf("column %s is declared NOT NULL but the repository inserts NULL for its zero value: %q", column, def)
		}
	}
}

func columnDef(t *testing.T, schema, column string) string {
	t.Helper()
	for _, line := range strings.Split(schema, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), column+" ") {
			return strings.TrimSpace(line)
		}
	}
	t.Fatalf("column %s not found in schema", column)
	return ""
}
