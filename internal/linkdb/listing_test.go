package linkdb

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/linknova/internal/models"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

const bookmarkSelect = "SELECT b.id, b.url, b.user_id, b.title, b.content, b.referrer, b.status, b.created_on, b.updated_on, " +
	categoriesAgg +
	" FROM linknova_bookmark AS b" +
	" LEFT JOIN linknova_bookmark_category_map AS m ON m.bookmark_id = b.id" +
	" LEFT JOIN linknova_category AS c ON c.id = m.category_id"

func TestWindow(t *testing.T) {
	tests := []struct {
		name               string
		page, size         int
		wantPage, wantSize int
	}{
		{"zero page is first", 0, 5, 1, 5},
		{"negative page is first", -3, 5, 1, 5},
		{"zero size uses default", 2, 0, 2, 10},
		{"negative size uses default", 1, -1, 1, 10},
		{"oversized is clamped", 1, 500, 1, 100},
		{"in range unchanged", 4, 25, 4, 25},
		{"huge page is capped", math.MaxInt / 50, 100, MaxPage, 100},
		{"last page kept", MaxPage, 100, MaxPage, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := window(tt.page, tt.size, DefaultPageSize, MaxPageSize)
			if page != tt.wantPage || size != tt.wantSize {
				t.Errorf("window(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.size, page, size, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	rows := make([]int, 11)
	for i := range rows {
		rows[i] = i
	}

	p := paginate(rows, 1, 10)
	assert.Len(t, p.Items, 10)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)
	assert.Equal(t, 9, p.Items[9])

	p = paginate(rows[:1], 2, 10)
	assert.Len(t, p.Items, 1)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = paginate[int](nil, 3, 10)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.True(t, p.HasPrev)
}

func TestBookmarkQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   models.BookmarkFilter
		page     int
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:   "user only",
			filter: models.BookmarkFilter{UserID: "u1"},
			page:   1,
			wantSQL: bookmarkSelect +
				" WHERE b.user_id = $1 GROUP BY b.id ORDER BY b.created_on DESC, b.id ASC LIMIT 11 OFFSET 0",
			wantArgs: []interface{}{"u1"},
		},
		{
			name:   "status and categories",
			filter: models.BookmarkFilter{UserID: "u1", Status: "RD", Categories: []string{" a ", "b", "a"}},
			page:   3,
			wantSQL: bookmarkSelect +
				" WHERE b.user_id = $1 AND b.status = $2 GROUP BY b.id" +
				" HAVING bool_or(c.name = ANY($3))" +
				" ORDER BY b.created_on DESC, b.id ASC LIMIT 11 OFFSET 20",
			wantArgs: []interface{}{"u1", "RD", []string{"a", "b"}},
		},
		{
			name:   "topic, status and categories number sequentially",
			filter: models.BookmarkFilter{UserID: "u1", Topic: "dev", Status: "UN", Categories: []string{"go"}},
			page:   1,
			wantSQL: bookmarkSelect +
				" WHERE b.user_id = $1 AND b.status = $2 AND EXISTS (SELECT 1 FROM linknova_bookmark_category_map AS fm" +
				" INNER JOIN linknova_topic_category_map AS ftc ON ftc.category_id = fm.category_id" +
				" INNER JOIN linknova_topic AS ft ON ft.id = ftc.topic_id" +
				" WHERE fm.bookmark_id = b.id AND ft.user_id = $3 AND ft.name = $4)" +
				" GROUP BY b.id HAVING bool_or(c.name = ANY($5))" +
				" ORDER BY b.created_on DESC, b.id ASC LIMIT 11 OFFSET 0",
			wantArgs: []interface{}{"u1", "UN", "u1", "dev", []string{"go"}},
		},
		{
			name:   "blank categories do not filter",
			filter: models.BookmarkFilter{UserID: "u1", Categories: []string{" ", ""}},
			page:   1,
			wantSQL: bookmarkSelect +
				" WHERE b.user_id = $1 GROUP BY b.id ORDER BY b.created_on DESC, b.id ASC LIMIT 11 OFFSET 0",
			wantArgs: []interface{}{"u1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := bookmarkQuery(tt.filter, tt.page, 10).ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestTopicQuery(t *testing.T) {
	active := false
	sql, args, err := topicQuery(models.TopicFilter{UserID: "u1", Active: &active, Categories: []string{"go"}}, 2, 5).ToSQL()
	require.NoError(t, err)

	assert.NotContains(t, sql, "t.about")
	assert.Contains(t, sql, "FROM linknova_topic AS t LEFT JOIN linknova_topic_category_map AS m ON m.topic_id = t.id")
	assert.True(t, strings.HasSuffix(sql,
		"WHERE t.user_id = $1 AND t.active = $2 GROUP BY t.id HAVING bool_or(c.name = ANY($3))"+
			" ORDER BY t.created_on DESC, t.id ASC LIMIT 6 OFFSET 5"), sql)
	assert.Equal(t, []interface{}{"u1", false, []string{"go"}}, args)
}

func TestViewColumns(t *testing.T) {
	cols := viewColumns("c")
	assert.NotContains(t, cols, "c.about")
	assert.Contains(t, cols, "c.name")
	assert.Len(t, cols, len(taxonColumns)-1)
}

func TestListingOffsetNeverNegative(t *testing.T) {
	page, size := window(math.MaxInt/50, 100, DefaultPageSize, MaxPageSize)

	sql, args, err := bookmarkQuery(models.BookmarkFilter{UserID: "u1"}, page, size).ToSQL()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql, " LIMIT 101 OFFSET 99999900"), sql)
	assert.Equal(t, []interface{}{"u1"}, args)

	sql, _, err = topicQuery(models.TopicFilter{UserID: "u1"}, page, size).ToSQL()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql, " OFFSET 99999900"), sql)
}

func TestListingFilterRejectsHugePage(t *testing.T) {
	err := validateInput("list", "bookmark", "u1", models.BookmarkFilter{UserID: "u1", Page: math.MaxInt / 50})
	assert.ErrorIs(t, err, runtime.ErrInvalidInput)

	err = validateInput("list", "topic", "u1", models.TopicFilter{UserID: "u1", Page: MaxPage + 1})
	assert.ErrorIs(t, err, runtime.ErrInvalidInput)

	assert.NoError(t, validateInput("list", "topic", "u1", models.TopicFilter{UserID: "u1", Page: MaxPage}))
}
