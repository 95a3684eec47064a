package linkdb

import (
	"strings"

	"github.com/marshallshelly/linknova/internal/models"
	"github.com/marshallshelly/linknova/pkg/builder"
)

const categoriesAgg = "COALESCE(ARRAY_AGG(c.name ORDER BY c.name) FILTER (WHERE c.name IS NOT NULL), '{}') AS categories"

// window normalizes a requested page and size. Pages are 1-indexed and
// never exceed MaxPage.
func window(page, size, defaultSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}

// paginate trims the look-ahead row and fills the page flags. rows were
// fetched with LIMIT size+1.
func paginate[T any](rows []T, page, size int) models.Page[T] {
	hasNext := len(rows) > size
	if hasNext {
		rows = rows[:size]
	}
	if rows == nil {
		rows = []T{}
	}
	return models.Page[T]{
		Items:   rows,
		Page:    page,
		Size:    size,
		HasNext: hasNext,
		HasPrev: page > 1,
	}
}

func qualify(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

// bookmarkAggregate is every bookmark of the user with its category names.
func bookmarkAggregate(userID string) *builder.SelectQuery {
	cols := append(qualify("b", bookmarkColumns), categoriesAgg)
	return builder.Select(TableBookmark+" AS b").
		Columns(cols...).
		LeftJoin(TableBookmarkCategoryMap+" AS m", "m.bookmark_id = b.id").
		LeftJoin(TableCategory+" AS c", "c.id = m.category_id").
		Where(builder.Eq("b.user_id", userID))
}

// topicAggregate is every topic of the user with its category names.
func topicAggregate(userID string) *builder.SelectQuery {
	cols := append(viewColumns("t"), categoriesAgg)
	return builder.Select(TableTopic+" AS t").
		Columns(cols...).
		LeftJoin(TableTopicCategoryMap+" AS m", "m.topic_id = t.id").
		LeftJoin(TableCategory+" AS c", "c.id = m.category_id").
		Where(builder.Eq("t.user_id", userID))
}

// inTopic matches bookmarks carrying any category linked to the user's
// named topic. It is correlated on the bookmark id.
func inTopic(userID, topic string) builder.Condition {
	return builder.Exists(builder.Select(TableBookmarkCategoryMap+" AS fm").
		Columns("1").
		InnerJoin(TableTopicCategoryMap+" AS ftc", "ftc.category_id = fm.category_id").
		InnerJoin(TableTopic+" AS ft", "ft.id = ftc.topic_id").
		Where(builder.Expr("fm.bookmark_id = b.id")).
		And(builder.Eq("ft.user_id", userID)).
		And(builder.Eq("ft.name", topic)))
}

// anyCategory keeps groups where at least one category is in names.
func anyCategory(names []string) builder.Condition {
	return builder.Expr("bool_or(c.name = ANY(?))", names)
}

// bookmarkQuery renders one page of ListBookmarks. size is already windowed.
func bookmarkQuery(f models.BookmarkFilter, page, size int) *builder.SelectQuery {
	q := bookmarkAggregate(f.UserID)
	if f.Status != "" {
		q.And(builder.Eq("b.status", f.Status))
	}
	if topic := strings.TrimSpace(f.Topic); topic != "" {
		q.And(inTopic(f.UserID, topic))
	}
	q.GroupBy("b.id")
	if names := models.NormalizeNames(f.Categories); len(names) > 0 {
		q.Having(anyCategory(names))
	}
	return q.OrderByDesc("b.created_on").
		OrderByAsc("b.id").
		Limit(size + 1).
		Offset((page - 1) * size)
}

// topicQuery renders one page of ListTopics. size is already windowed.
func topicQuery(f models.TopicFilter, page, size int) *builder.SelectQuery {
	q := topicAggregate(f.UserID)
	if f.Active != nil {
		q.And(builder.Eq("t.active", *f.Active))
	}
	q.GroupBy("t.id")
	if names := models.NormalizeNames(f.Categories); len(names) > 0 {
		q.Having(anyCategory(names))
	}
	return q.OrderByDesc("t.created_on").
		OrderByAsc("t.id").
		Limit(size + 1).
		Offset((page - 1) * size)
}
