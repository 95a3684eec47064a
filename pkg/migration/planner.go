package migration

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/linknova/pkg/schema"
)

// quoteIdent quotes a PostgreSQL identifier (table name, column name, etc.)
// to handle reserved keywords and special characters.
func quoteIdent(name string) string {
	return fmt.Sprintf(`"%s"`, name)
}

// PlannerOptions configures migration generation behavior.
type PlannerOptions struct {
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE and CREATE INDEX statements.
	IfNotExists bool
}

// Planner generates SQL migration statements from table metadata.
type Planner struct {
	options PlannerOptions
}

// NewPlanner creates a new migration planner with default options.
func NewPlanner() *Planner {
	return &Planner{
		options: PlannerOptions{
			IfNotExists: true,
		},
	}
}

// NewPlannerWithOptions creates a new migration planner with custom options.
func NewPlannerWithOptions(opts PlannerOptions) *Planner {
	return &Planner{
		options: opts,
	}
}

// PlanTables renders CREATE statements for tables in order and DROP
// statements in reverse order, so referenced tables are created first and
// dropped last.
func (p *Planner) PlanTables(tables []*schema.TableMetadata) (upSQL, downSQL string, err error) {
	var up, down []string

	for _, table := range tables {
		if err := schema.Validate(table); err != nil {
			return "", "", err
		}
		up = append(up, p.generateCreateTable(table))
	}

	for i := len(tables) - 1; i >= 0; i-- {
		down = append(down, p.generateDropTable(tables[i].Name))
	}

	return strings.Join(up, "\n\n"), strings.Join(down, "\n"), nil
}

// generateCreateTable generates a CREATE TABLE statement.
func (p *Planner) generateCreateTable(table *schema.TableMetadata) string {
	var parts []string

	// Determine if we have a single-column primary key for inline declaration
	var singlePKColumn string
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) == 1 {
		singlePKColumn = table.PrimaryKey.Columns[0]
	}

	for _, col := range table.Columns {
		colDef := p.generateColumnDefinition(col)
		if singlePKColumn != "" && col.Name == singlePKColumn {
			colDef += " PRIMARY KEY"
		}
		parts = append(parts, "    "+colDef)
	}

	// Primary key (composite only - single column handled inline)
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) > 1 {
		pkCols := strings.Join(table.PrimaryKey.Columns, ", ")
		parts = append(parts, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)", table.PrimaryKey.Name, pkCols))
	}

	for _, fk := range table.ForeignKeys {
		parts = append(parts, "    "+p.generateForeignKeyDefinition(fk))
	}

	// Constraints (CHECK, UNIQUE)
	for _, constraint := range table.Constraints {
		switch constraint.Type {
		case schema.CheckConstraint:
			parts = append(parts, fmt.Sprintf("    CONSTRAINT %s CHECK (%s)", constraint.Name, constraint.Expression))
		case schema.UniqueConstraint:
			cols := strings.Join(constraint.Columns, ", ")
			parts = append(parts, fmt.Sprintf("    CONSTRAINT %s UNIQUE (%s)", constraint.Name, cols))
		}
	}

	createClause := "CREATE TABLE"
	if p.options.IfNotExists {
		createClause = "CREATE TABLE IF NOT EXISTS"
	}
	sql := fmt.Sprintf("%s %s (\n%s\n);", createClause, table.Name, strings.Join(parts, ",\n"))

	// Indexes (separate statements)
	var indexStatements []string
	for _, idx := range table.Indexes {
		indexStatements = append(indexStatements, p.generateCreateIndex(table.Name, idx))
	}

	if len(indexStatements) > 0 {
		sql += "\n" + strings.Join(indexStatements, "\n")
	}

	return sql
}

// generateColumnDefinition generates a column definition.
func (p *Planner) generateColumnDefinition(col schema.ColumnMetadata) string {
	parts := []string{col.Name, col.SQLType}

	// Identity columns are implicitly NOT NULL
	if col.Identity != nil {
		parts = append(parts, fmt.Sprintf("GENERATED %s AS IDENTITY", col.Identity.Generation))
		return strings.Join(parts, " ")
	}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}

	if col.Default != nil {
		parts = append(parts, "DEFAULT", *col.Default)
	}

	if col.Unique {
		parts = append(parts, "UNIQUE")
	}

	return strings.Join(parts, " ")
}

// generateForeignKeyDefinition generates a foreign key constraint.
func (p *Planner) generateForeignKeyDefinition(fk schema.ForeignKeyMetadata) string {
	localCols := strings.Join(fk.Columns, ", ")
	refCols := strings.Join(fk.ReferencedColumns, ", ")

	parts := []string{
		fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s)", fk.Name, localCols),
		fmt.Sprintf("REFERENCES %s (%s)", fk.ReferencedTable, refCols),
	}

	if fk.OnDelete != schema.NoAction && fk.OnDelete != "" {
		parts = append(parts, "ON DELETE "+string(fk.OnDelete))
	}

	if fk.OnUpdate != schema.NoAction && fk.OnUpdate != "" {
		parts = append(parts, "ON UPDATE "+string(fk.OnUpdate))
	}

	return strings.Join(parts, " ")
}

// generateCreateIndex generates a CREATE INDEX statement.
func (p *Planner) generateCreateIndex(tableName string, idx schema.IndexMetadata) string {
	var parts []string

	if idx.Unique {
		parts = append(parts, "CREATE UNIQUE INDEX")
	} else {
		parts = append(parts, "CREATE INDEX")
	}

	if p.options.IfNotExists {
		parts = append(parts, "IF NOT EXISTS")
	}

	parts = append(parts, idx.Name, "ON", tableName)

	if idx.Type != "" && idx.Type != "btree" {
		parts = append(parts, "USING", idx.Type)
	}

	parts = append(parts, fmt.Sprintf("(%s)", strings.Join(idx.Columns, ", ")))

	if idx.Where != "" {
		parts = append(parts, "WHERE", idx.Where)
	}

	return strings.Join(parts, " ") + ";"
}

// generateDropTable generates a DROP TABLE statement.
func (p *Planner) generateDropTable(tableName string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdent(tableName))
}
