// Package builder composes parameterized PostgreSQL statements.
package builder

// Query represents a statement that renders to SQL with positional parameters.
type Query interface {
	// ToSQL generates the SQL query and parameter values.
	ToSQL() (sql string, args []interface{}, err error)
}

// SelectQuery represents a SELECT query.
type SelectQuery struct {
	from      string
	columns   []string
	where     []Condition
	joins     []Join
	groupBy   []string
	having    []Condition
	orderBy   []OrderBy
	limit     *int
	offset    *int
	distinct  bool
	forUpdate bool
}

// InsertQuery represents an INSERT query fed either by VALUES rows or by
// a set of unnested arrays.
type InsertQuery struct {
	table      string
	columns    []string
	rows       [][]interface{}
	unnest     []UnnestArray
	returning  []string
	onConflict *OnConflict
}

// UpdateQuery represents an UPDATE query.
type UpdateQuery struct {
	table     string
	sets      []setClause
	where     []Condition
	returning []string
}

// DeleteQuery represents a DELETE query.
type DeleteQuery struct {
	table     string
	using     []string
	where     []Condition
	returning []string
}

// Condition represents a WHERE/HAVING condition.
type Condition struct {
	Column   string
	Operator Operator
	Value    interface{}
}

// Join represents a JOIN clause.
type Join struct {
	Type      JoinType
	Table     string
	Condition string
}

// OrderBy represents an ORDER BY clause.
type OrderBy struct {
	Column    string
	Direction OrderDirection
	NullsPos  NullsPosition
}

// OnConflict represents an ON CONFLICT clause for upserts.
// Updates lists columns overwritten from EXCLUDED on DO UPDATE.
type OnConflict struct {
	Columns []string
	Action  ConflictAction
	Updates []string
}

// UnnestArray is one position-aligned array bound as a single parameter.
type UnnestArray struct {
	Values interface{}
	Type   string
}

type setClause struct {
	column string
	value  interface{}
}

// Operator represents a comparison operator.
type Operator string

const (
	// OpEqual represents the = operator.
	OpEqual Operator = "="
	// OpAny represents = ANY($n) with a single array parameter.
	OpAny Operator = "= ANY"
	// OpExists represents the EXISTS operator over a *SelectQuery.
	OpExists Operator = "EXISTS"
	// OpExpr is a raw SQL fragment whose ? markers are bound in order.
	OpExpr Operator = "EXPR"
)

// JoinType represents a type of JOIN.
type JoinType string

const (
	// InnerJoin represents an INNER JOIN.
	InnerJoin JoinType = "INNER JOIN"
	// LeftJoin represents a LEFT JOIN.
	LeftJoin JoinType = "LEFT JOIN"
)

// OrderDirection represents the sort direction.
type OrderDirection string

const (
	// Asc represents ascending order.
	Asc OrderDirection = "ASC"
	// Desc represents descending order.
	Desc OrderDirection = "DESC"
)

// NullsPosition represents NULL positioning in ORDER BY.
type NullsPosition string

const (
	// NullsFirst positions NULL values first.
	NullsFirst NullsPosition = "NULLS FIRST"
	// NullsLast positions NULL values last.
	NullsLast NullsPosition = "NULLS LAST"
	// NullsDefault uses database default NULL positioning.
	NullsDefault NullsPosition = ""
)

// ConflictAction represents the action for ON CONFLICT.
type ConflictAction string

const (
	// DoNothing does nothing on conflict.
	DoNothing ConflictAction = "DO NOTHING"
	// DoUpdate updates on conflict.
	DoUpdate ConflictAction = "DO UPDATE SET"
)
