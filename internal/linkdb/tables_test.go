package linkdb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/linknova/pkg/schema"
)

func TestTablesValidate(t *testing.T) {
	for _, table := range Tables() {
		assert.NoError(t, schema.Validate(table), table.Name)
	}
}

func TestMigrations(t *testing.T) {
	migs, err := Migrations()
	require.NoError(t, err)
	require.Len(t, migs, 1)

	up := migs[0].UpSQL
	for _, name := range []string{TableTopic, TableCategory, TableBookmark, TableTopicCategoryMap, TableBookmarkCategoryMap} {
		assert.Contains(t, up, "CREATE TABLE IF NOT EXISTS "+name+" (", name)
	}
	assert.Contains(t, up, "ON DELETE CASCADE")
	assert.Contains(t, up, "GENERATED BY DEFAULT AS IDENTITY")

	// referenced tables are created before the junctions
	assert.Less(t, strings.Index(up, TableCategory+" ("), strings.Index(up, TableBookmarkCategoryMap+" ("))
	// and dropped after them
	down := migs[0].DownSQL
	assert.Less(t, strings.Index(down, `"`+TableBookmarkCategoryMap+`"`), strings.Index(down, `"`+TableCategory+`"`))
}

func TestBookmarkColumnsMatchModel(t *testing.T) {
	assert.Equal(t, []string{"id", "url", "user_id", "title", "content", "referrer", "status", "created_on", "updated_on"}, bookmarkColumns)
}
