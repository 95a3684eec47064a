// Package schema describes PostgreSQL tables as plain metadata that the
// migration planner renders into DDL.
package schema

// TableMetadata describes one table.
type TableMetadata struct {
	Name        string
	Columns     []ColumnMetadata
	PrimaryKey  *PrimaryKeyMetadata
	ForeignKeys []ForeignKeyMetadata
	Indexes     []IndexMetadata
	Constraints []ConstraintMetadata
}

// ColumnMetadata describes one column.
type ColumnMetadata struct {
	Name     string
	SQLType  string
	Nullable bool
	Default  *string
	Unique   bool
	Identity *IdentityColumn
}

// IdentityColumn marks a GENERATED ... AS IDENTITY column.
type IdentityColumn struct {
	Generation IdentityGeneration
}

// IdentityGeneration is ALWAYS or BY DEFAULT.
type IdentityGeneration string

const (
	// IdentityAlways rejects explicit values on insert.
	IdentityAlways IdentityGeneration = "ALWAYS"
	// IdentityByDefault allows explicit values on insert.
	IdentityByDefault IdentityGeneration = "BY DEFAULT"
)

// PrimaryKeyMetadata describes the primary key.
type PrimaryKeyMetadata struct {
	Name    string
	Columns []string
}

// ForeignKeyMetadata describes a foreign key constraint.
type ForeignKeyMetadata struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          ReferenceAction
	OnUpdate          ReferenceAction
}

// ReferenceAction is the ON DELETE / ON UPDATE behaviour of a foreign key.
type ReferenceAction string

const (
	// NoAction leaves the default behaviour.
	NoAction ReferenceAction = "NO ACTION"
	// Cascade propagates the delete or update.
	Cascade ReferenceAction = "CASCADE"
	// Restrict rejects the delete or update.
	Restrict ReferenceAction = "RESTRICT"
	// SetNull nulls the referencing columns.
	SetNull ReferenceAction = "SET NULL"
)

// IndexMetadata describes a secondary index.
type IndexMetadata struct {
	Name    string
	Columns []string
	Unique  bool
	Type    string
	Where   string
}

// ConstraintMetadata describes a table-level UNIQUE or CHECK constraint.
type ConstraintMetadata struct {
	Name       string
	Type       ConstraintType
	Columns    []string
	Expression string
}

// ConstraintType identifies a table constraint.
type ConstraintType string

const (
	// UniqueConstraint is a UNIQUE (cols) constraint.
	UniqueConstraint ConstraintType = "UNIQUE"
	// CheckConstraint is a CHECK (expr) constraint.
	CheckConstraint ConstraintType = "CHECK"
)

// Column returns the named column, or nil.
func (t *TableMetadata) Column(name string) *ColumnMetadata {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns column names in declaration order, each prefixed
// with alias and a dot when alias is non-empty.
func (t *TableMetadata) ColumnNames(alias string) []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		if alias != "" {
			names[i] = alias + "." + col.Name
		} else {
			names[i] = col.Name
		}
	}
	return names
}

// Default returns a pointer to expr for use in ColumnMetadata.Default.
func Default(expr string) *string {
	return &expr
}
