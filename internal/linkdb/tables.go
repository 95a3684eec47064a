package linkdb

import (
	"github.com/marshallshelly/linknova/pkg/migration"
	"github.com/marshallshelly/linknova/pkg/schema"
)

// Physical table names.
const (
	TableTopic               = "linknova_topic"
	TableCategory            = "linknova_category"
	TableBookmark            = "linknova_bookmark"
	TableTopicCategoryMap    = "linknova_topic_category_map"
	TableBookmarkCategoryMap = "linknova_bookmark_category_map"
)

func taxonTable(name string) *schema.TableMetadata {
	return &schema.TableMetadata{
		Name: name,
		Columns: []schema.ColumnMetadata{
			{Name: "id", SQLType: "bigint", Identity: &schema.IdentityColumn{Generation: schema.IdentityByDefault}},
			{Name: "name", SQLType: "varchar(255)"},
			{Name: "display_name", SQLType: "varchar(255)", Nullable: true},
			{Name: "description", SQLType: "varchar(1024)", Nullable: true},
			{Name: "about", SQLType: "text", Nullable: true},
			{Name: "priority", SQLType: "integer", Default: schema.Default("0")},
			{Name: "active", SQLType: "boolean", Default: schema.Default("true")},
			{Name: "public", SQLType: "boolean", Default: schema.Default("false")},
			{Name: "user_id", SQLType: "varchar(255)"},
			{Name: "created_on", SQLType: "timestamptz", Default: schema.Default("now()")},
			{Name: "updated_on", SQLType: "timestamptz", Default: schema.Default("now()")},
		},
		PrimaryKey: &schema.PrimaryKeyMetadata{Name: name + "_pkey", Columns: []string{"id"}},
		Constraints: []schema.ConstraintMetadata{
			{Name: "uq_" + name + "_name_user", Type: schema.UniqueConstraint, Columns: []string{"name", "user_id"}},
		},
		Indexes: []schema.IndexMetadata{
			{Name: "idx_" + name + "_user_id", Columns: []string{"user_id"}},
		},
	}
}

func bookmarkTable() *schema.TableMetadata {
	return &schema.TableMetadata{
		Name: TableBookmark,
		Columns: []schema.ColumnMetadata{
			{Name: "id", SQLType: "bigint", Identity: &schema.IdentityColumn{Generation: schema.IdentityByDefault}},
			{Name: "url", SQLType: "text"},
			{Name: "user_id", SQLType: "varchar(255)"},
			{Name: "title", SQLType: "varchar(512)", Nullable: true},
			{Name: "content", SQLType: "text", Nullable: true},
			{Name: "referrer", SQLType: "varchar(2048)", Nullable: true},
			{Name: "status", SQLType: "varchar(16)", Default: schema.Default("'UN'")},
			{Name: "created_on", SQLType: "timestamptz", Default: schema.Default("now()")},
			{Name: "updated_on", SQLType: "timestamptz", Default: schema.Default("now()")},
		},
		PrimaryKey: &schema.PrimaryKeyMetadata{Name: TableBookmark + "_pkey", Columns: []string{"id"}},
		Indexes: []schema.IndexMetadata{
			{Name: "idx_" + TableBookmark + "_user_created", Columns: []string{"user_id", "created_on"}},
		},
	}
}

func junctionTable(name, ownerCol, ownerTable string) *schema.TableMetadata {
	return &schema.TableMetadata{
		Name: name,
		Columns: []schema.ColumnMetadata{
			{Name: ownerCol, SQLType: "bigint"},
			{Name: "category_id", SQLType: "bigint"},
		},
		PrimaryKey: &schema.PrimaryKeyMetadata{Name: name + "_pkey", Columns: []string{ownerCol, "category_id"}},
		ForeignKeys: []schema.ForeignKeyMetadata{
			{
				Name:              "fk_" + name + "_owner",
				Columns:           []string{ownerCol},
				ReferencedTable:   ownerTable,
				ReferencedColumns: []string{"id"},
				OnDelete:          schema.Cascade,
			},
			{
				Name:              "fk_" + name + "_category",
				Columns:           []string{"category_id"},
				ReferencedTable:   TableCategory,
				ReferencedColumns: []string{"id"},
				OnDelete:          schema.Cascade,
			},
		},
		Indexes: []schema.IndexMetadata{
			{Name: "idx_" + name + "_category_id", Columns: []string{"category_id"}},
		},
	}
}

// Tables returns the taxonomy tables, referenced tables first.
func Tables() []*schema.TableMetadata {
	return []*schema.TableMetadata{
		taxonTable(TableTopic),
		taxonTable(TableCategory),
		bookmarkTable(),
		junctionTable(TableTopicCategoryMap, "topic_id", TableTopic),
		junctionTable(TableBookmarkCategoryMap, "bookmark_id", TableBookmark),
	}
}

// Migrations returns the built-in schema migrations.
func Migrations() ([]migration.Migration, error) {
	up, down, err := migration.NewPlanner().PlanTables(Tables())
	if err != nil {
		return nil, err
	}
	return []migration.Migration{{
		Version: "20240101000000",
		Name:    "create_taxonomy",
		UpSQL:   up,
		DownSQL: down,
	}}, nil
}

var (
	taxonColumns    = taxonTable(TableCategory).ColumnNames("")
	bookmarkColumns = bookmarkTable().ColumnNames("")
)

// viewColumns returns the taxon columns of a listing projection, which
// leaves out about.
func viewColumns(alias string) []string {
	var cols []string
	for _, c := range taxonTable(TableCategory).ColumnNames(alias) {
		if c == "about" || c == alias+".about" {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}
