package schema

import (
	"strings"
	"testing"
)

func TestValidateDefaultValue(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantError bool
		errorMsg  string
	}{
		{name: "valid now()", value: "now()"},
		{name: "valid CURRENT_TIMESTAMP", value: "CURRENT_TIMESTAMP"},
		{name: "valid number", value: "0"},
		{name: "valid boolean", value: "true"},
		{name: "valid string literal", value: "'UN'"},
		{name: "CURRENT TIMESTAMP with space", value: "CURRENT TIMESTAMP", wantError: true, errorMsg: "CURRENT_TIMESTAMP"},
		{name: "now without parentheses", value: "now", wantError: true, errorMsg: "parentheses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDefaultValue(tt.value)
			if (err != nil) != tt.wantError {
				t.Fatalf("ValidateDefaultValue(%q) error = %v, wantError %v", tt.value, err, tt.wantError)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("error %q does not mention %q", err, tt.errorMsg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := &TableMetadata{
		Name: "linknova_topic",
		Columns: []ColumnMetadata{
			{Name: "id", SQLType: "bigint", Identity: &IdentityColumn{Generation: IdentityAlways}},
			{Name: "name", SQLType: "varchar(255)"},
			{Name: "user_id", SQLType: "varchar(255)"},
		},
		PrimaryKey:  &PrimaryKeyMetadata{Name: "linknova_topic_pkey", Columns: []string{"id"}},
		Constraints: []ConstraintMetadata{{Name: "uq", Type: UniqueConstraint, Columns: []string{"name", "user_id"}}},
		Indexes:     []IndexMetadata{{Name: "idx", Columns: []string{"user_id"}}},
	}
	if err := Validate(valid); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	broken := *valid
	broken.Indexes = []IndexMetadata{{Name: "idx_missing", Columns: []string{"owner"}}}
	broken.ForeignKeys = []ForeignKeyMetadata{{Name: "fk", Columns: []string{"id"}, ReferencedTable: "x"}}

	err := Validate(&broken)
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"unknown column owner", "references 0"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q missing %q", err, want)
		}
	}
}

func TestColumnNames(t *testing.T) {
	table := &TableMetadata{Columns: []ColumnMetadata{{Name: "id"}, {Name: "name"}}}

	if got := strings.Join(table.ColumnNames("c"), ","); got != "c.id,c.name" {
		t.Errorf("ColumnNames(c) = %s", got)
	}
	if got := strings.Join(table.ColumnNames(""), ","); got != "id,name" {
		t.Errorf("ColumnNames() = %s", got)
	}
	if table.Column("name") == nil || table.Column("about") != nil {
		t.Error("Column() lookup mismatch")
	}
}
