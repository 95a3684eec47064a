package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that a table definition is internally consistent: every
// key, index and constraint refers to declared columns and defaults look
// like valid SQL.
func Validate(t *TableMetadata) error {
	if t.Name == "" {
		return errors.New("table has no name")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}

	var errs []error
	seen := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		if seen[col.Name] {
			errs = append(errs, fmt.Errorf("table %s: duplicate column %s", t.Name, col.Name))
		}
		seen[col.Name] = true

		if col.SQLType == "" {
			errs = append(errs, fmt.Errorf("table %s: column %s has no type", t.Name, col.Name))
		}
		if col.Default != nil {
			if err := ValidateDefaultValue(*col.Default); err != nil {
				errs = append(errs, fmt.Errorf("table %s: column %s: %w", t.Name, col.Name, err))
			}
		}
	}

	check := func(kind, name string, cols []string) {
		for _, c := range cols {
			if !seen[c] {
				errs = append(errs, fmt.Errorf("table %s: %s %s references unknown column %s", t.Name, kind, name, c))
			}
		}
	}

	if t.PrimaryKey != nil {
		check("primary key", t.PrimaryKey.Name, t.PrimaryKey.Columns)
	}
	for _, fk := range t.ForeignKeys {
		check("foreign key", fk.Name, fk.Columns)
		if len(fk.Columns) != len(fk.ReferencedColumns) {
			errs = append(errs, fmt.Errorf("table %s: foreign key %s has %d columns but references %d",
				t.Name, fk.Name, len(fk.Columns), len(fk.ReferencedColumns)))
		}
	}
	for _, idx := range t.Indexes {
		check("index", idx.Name, idx.Columns)
	}
	for _, c := range t.Constraints {
		if c.Type == UniqueConstraint {
			check("constraint", c.Name, c.Columns)
		}
	}

	return errors.Join(errs...)
}

// ValidateDefaultValue checks if a default value expression is likely valid SQL.
func ValidateDefaultValue(defaultVal string) error {
	trimmed := strings.TrimSpace(defaultVal)
	upperVal := strings.ToUpper(trimmed)

	commonMistakes := map[string]string{
		"CURRENT TIMESTAMP": "CURRENT_TIMESTAMP",
		"CURRENT DATE":      "CURRENT_DATE",
		"NOW ()":            "NOW()",
	}
	for mistake, correct := range commonMistakes {
		if strings.Contains(upperVal, mistake) {
			return fmt.Errorf("invalid DEFAULT value: '%s' contains '%s' which should be '%s'", defaultVal, mistake, correct)
		}
	}

	sqlKeywords := map[string]bool{
		"NULL": true, "TRUE": true, "FALSE": true,
		"CURRENT_TIMESTAMP": true, "CURRENT_DATE": true,
	}
	if !sqlKeywords[upperVal] && !strings.Contains(trimmed, "(") && !strings.Contains(trimmed, "'") &&
		!isNumeric(trimmed) && strings.Contains(strings.ToLower(trimmed), "now") {
		return fmt.Errorf("invalid DEFAULT value: '%s' looks like a function but is missing parentheses ()", defaultVal)
	}

	return nil
}

// isNumeric checks if a string is a valid number
func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, c := range s {
		if i == 0 && (c == '-' || c == '+') {
			continue
		}
		if c == '.' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
