package linkdb

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/marshallshelly/linknova/internal/models"
	"github.com/marshallshelly/linknova/pkg/builder"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

// kind identifies which taxon table an operation targets.
type kind struct {
	entity string
	table  string
}

var (
	categoryKind = kind{entity: "category", table: TableCategory}
	topicKind    = kind{entity: "topic", table: TableTopic}
)

var conflictKey = []string{"name", "user_id"}

// insertColumns are the columns written on create; id is generated.
var insertColumns = []string{
	"name", "display_name", "description", "about", "priority", "active", "public",
	"user_id", "created_on", "updated_on",
}

// insertTaxon writes one row and returns its id. With upsert, an existing
// (name, user_id) row has its metadata overwritten instead of failing.
func insertTaxon(ctx context.Context, q runtime.Querier, k kind, in models.TaxonInput, now time.Time, upsert bool) (int64, error) {
	ins := builder.InsertInto(k.table, insertColumns...).
		Values(in.Name, in.DisplayName, in.Description, in.About, in.Priority, in.Active, in.Public,
			in.UserID, now, now).
		Returning("id")
	if upsert {
		ins.OnConflictDoUpdate(conflictKey,
			"display_name", "description", "about", "priority", "active", "public", "updated_on")
	}
	return scalar[int64](ctx, q, ins)
}

// upsertTaxa inserts every missing name for the user in one statement.
// Existing rows are left untouched. names must already be normalized. Rows
// are written in name order so concurrent callers lock the unique index in
// the same sequence.
func upsertTaxa(ctx context.Context, q runtime.Querier, k kind, userID string, names []string, now time.Time) error {
	if len(names) == 0 {
		return nil
	}
	names = slices.Sorted(slices.Values(names))

	n := len(names)
	nulls := make([]*string, n)
	priorities := make([]int32, n)
	actives := make([]bool, n)
	publics := make([]bool, n)
	userIDs := make([]string, n)
	stamps := make([]time.Time, n)
	for i := range names {
		actives[i] = true
		userIDs[i] = userID
		stamps[i] = now
	}

	ins := builder.InsertInto(k.table, insertColumns...).
		FromUnnest(
			builder.Array(names, "text[]"),
			builder.Array(nulls, "text[]"),
			builder.Array(nulls, "text[]"),
			builder.Array(nulls, "text[]"),
			builder.Array(priorities, "int4[]"),
			builder.Array(actives, "bool[]"),
			builder.Array(publics, "bool[]"),
			builder.Array(userIDs, "text[]"),
			builder.Array(stamps, "timestamptz[]"),
			builder.Array(stamps, "timestamptz[]"),
		).
		OnConflictDoNothing(conflictKey...)

	_, err := exec(ctx, q, ins)
	return err
}

type idName struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// resolveTaxa maps each name to its id for the user. A name without a row
// fails with ErrNotFound naming it.
func resolveTaxa(ctx context.Context, q runtime.Querier, k kind, userID string, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	rows, err := collect[idName](ctx, q, builder.Select(k.table).
		Columns("id", "name").
		Where(builder.Eq("user_id", userID)).
		And(builder.Any("name", names)))
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		ids[r.Name] = r.ID
	}

	for _, name := range names {
		if _, ok := ids[name]; !ok {
			return nil, fmt.Errorf("%s %q: %w", k.entity, name, runtime.ErrNotFound)
		}
	}
	return ids, nil
}

// orderedIDs returns the ids of names in the order given.
func orderedIDs(ids map[string]int64, names []string) []int64 {
	out := make([]int64, 0, len(names))
	for _, n := range names {
		out = append(out, ids[n])
	}
	return out
}

func taxonByName[T any](ctx context.Context, q runtime.Querier, k kind, userID, name string) ([]T, error) {
	return collect[T](ctx, q, builder.Select(k.table).
		Columns(taxonColumns...).
		Where(builder.Eq("user_id", userID)).
		And(builder.Eq("name", name)))
}

func taxonByID[T any](ctx context.Context, q runtime.Querier, k kind, userID string, id int64) (*T, error) {
	return collectOne[T](ctx, q, builder.Select(k.table).
		Columns(taxonColumns...).
		Where(builder.Eq("user_id", userID)).
		And(builder.Eq("id", id)))
}

// deleteTaxon removes the named row and returns its id.
func deleteTaxon(ctx context.Context, q runtime.Querier, k kind, userID, name string) (int64, error) {
	return scalar[int64](ctx, q, builder.DeleteFrom(k.table).
		Where(builder.Eq("user_id", userID)).
		And(builder.Eq("name", name)).
		Returning("id"))
}

// sortedNames returns a sorted copy of names.
func sortedNames(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	if out == nil {
		out = []string{}
	}
	return out
}
