package linkdb

import (
	"context"

	"github.com/marshallshelly/linknova/pkg/builder"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

// junction is an owner-to-category mapping table.
type junction struct {
	table    string
	ownerCol string
	owner    kind
}

var (
	topicCategories    = junction{table: TableTopicCategoryMap, ownerCol: "topic_id", owner: topicKind}
	bookmarkCategories = junction{table: TableBookmarkCategoryMap, ownerCol: "bookmark_id", owner: kind{entity: "bookmark", table: TableBookmark}}
)

// link attaches every category id to owner. Existing pairs are kept.
func link(ctx context.Context, q runtime.Querier, j junction, owner int64, categoryIDs []int64) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	owners := make([]int64, len(categoryIDs))
	for i := range owners {
		owners[i] = owner
	}
	return exec(ctx, q, builder.InsertInto(j.table, j.ownerCol, "category_id").
		FromUnnest(
			builder.Array(owners, "int8[]"),
			builder.Array(categoryIDs, "int8[]"),
		).
		OnConflictDoNothing(j.ownerCol, "category_id"))
}

// unlinkByNames detaches the named categories of the user from owner and
// returns how many pairs were removed.
func unlinkByNames(ctx context.Context, q runtime.Querier, j junction, userID string, owner int64, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	return exec(ctx, q, builder.DeleteFrom(j.table+" AS m").
		Using(TableCategory+" AS c").
		Where(builder.Expr("c.id = m.category_id")).
		And(builder.Eq("m."+j.ownerCol, owner)).
		And(builder.Eq("c.user_id", userID)).
		And(builder.Any("c.name", names)))
}

// unlinkAll removes every pair of owner.
func unlinkAll(ctx context.Context, q runtime.Querier, j junction, owner int64) (int64, error) {
	return exec(ctx, q, builder.DeleteFrom(j.table).Where(builder.Eq(j.ownerCol, owner)))
}

func ownerLookup(j junction, userID string, owner int64) *builder.SelectQuery {
	return builder.Select(j.owner.table).
		Columns("id").
		Where(builder.Eq("id", owner)).
		And(builder.Eq("user_id", userID))
}

// lockOwner selects the owner row FOR UPDATE, confirming the user owns it.
// A missing row yields pgx.ErrNoRows.
func lockOwner(ctx context.Context, q runtime.Querier, j junction, userID string, owner int64) error {
	_, err := scalar[int64](ctx, q, ownerLookup(j, userID, owner).ForUpdate())
	return err
}
