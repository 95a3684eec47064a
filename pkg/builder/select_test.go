package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectQuery_ToSQL(t *testing.T) {
	tests := []struct {
		name       string
		setupQuery func() *SelectQuery
		wantSQL    string
		wantArgLen int
		wantErr    bool
	}{
		{
			name: "simple select all",
			setupQuery: func() *SelectQuery {
				return Select("linknova_category")
			},
			wantSQL:    "SELECT * FROM linknova_category",
			wantArgLen: 0,
		},
		{
			name: "select specific columns",
			setupQuery: func() *SelectQuery {
				return Select("linknova_category").Columns("id", "name")
			},
			wantSQL:    "SELECT id, name FROM linknova_category",
			wantArgLen: 0,
		},
		{
			name: "select with WHERE",
			setupQuery: func() *SelectQuery {
				return Select("linknova_category").
					Columns("id").
					Where(Eq("user_id", "u1")).
					And(Eq("name", "go"))
			},
			wantSQL:    "SELECT id FROM linknova_category WHERE user_id = $1 AND name = $2",
			wantArgLen: 2,
		},
		{
			name: "select with ORDER BY and LIMIT",
			setupQuery: func() *SelectQuery {
				return Select("linknova_bookmark").
					OrderByDesc("created_on").
					OrderByAsc("id").
					Limit(11).
					Offset(10)
			},
			wantSQL:    "SELECT * FROM linknova_bookmark ORDER BY created_on DESC, id ASC LIMIT 11 OFFSET 10",
			wantArgLen: 0,
		},
		{
			name: "select DISTINCT FOR UPDATE",
			setupQuery: func() *SelectQuery {
				return Select("linknova_bookmark").Columns("id").Distinct().Where(Eq("id", 1)).ForUpdate()
			},
			wantSQL:    "SELECT DISTINCT id FROM linknova_bookmark WHERE id = $1 FOR UPDATE",
			wantArgLen: 1,
		},
		{
			name: "missing FROM",
			setupQuery: func() *SelectQuery {
				return Select("")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.setupQuery().ToSQL()

			if (err != nil) != tt.wantErr {
				t.Errorf("ToSQL() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			if sql != tt.wantSQL {
				t.Errorf("ToSQL() SQL = %q, want %q", sql, tt.wantSQL)
			}

			if len(args) != tt.wantArgLen {
				t.Errorf("ToSQL() args length = %d, want %d", len(args), tt.wantArgLen)
			}
		})
	}
}

func TestSelectQuery_AggregateWithHaving(t *testing.T) {
	q := Select("linknova_bookmark AS b").
		Columns("b.id", "COALESCE(ARRAY_AGG(c.name ORDER BY c.name) FILTER (WHERE c.name IS NOT NULL), '{}') AS categories").
		LeftJoin("linknova_bookmark_category_map AS m", "m.bookmark_id = b.id").
		LeftJoin("linknova_category AS c", "c.id = m.category_id").
		Where(Eq("b.user_id", "u1")).
		And(Eq("b.status", "UN")).
		GroupBy("b.id").
		Having(Expr("bool_or(c.name = ANY(?))", []string{"a"})).
		OrderByDesc("b.created_on").
		Limit(3)

	sql, args, err := q.ToSQL()
	require.NoError(t, err)

	want := "SELECT b.id, COALESCE(ARRAY_AGG(c.name ORDER BY c.name) FILTER (WHERE c.name IS NOT NULL), '{}') AS categories" +
		" FROM linknova_bookmark AS b" +
		" LEFT JOIN linknova_bookmark_category_map AS m ON m.bookmark_id = b.id" +
		" LEFT JOIN linknova_category AS c ON c.id = m.category_id" +
		" WHERE b.user_id = $1 AND b.status = $2" +
		" GROUP BY b.id" +
		" HAVING bool_or(c.name = ANY($3))" +
		" ORDER BY b.created_on DESC LIMIT 3"
	assert.Equal(t, want, sql)
	assert.Equal(t, []interface{}{"u1", "UN", []string{"a"}}, args)
}
