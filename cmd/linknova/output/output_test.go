package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/linknova/internal/models"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	t.Cleanup(func() { Out = prev })
	return &buf
}

func TestJSON(t *testing.T) {
	buf := capture(t)
	page := models.Page[models.BookmarkView]{Items: []models.BookmarkView{}, Page: 1, Size: 10}
	require.NoError(t, JSON(page))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []any{}, got["items"])
	assert.Equal(t, false, got["has_next"])
}

func TestBookmarks(t *testing.T) {
	buf := capture(t)
	title := "Go blog"
	Bookmarks(models.Page[models.BookmarkView]{
		Items: []models.BookmarkView{
			{ID: 3, URL: "https://go.dev/blog", Title: &title, Status: "UN", Categories: []string{"go", "reading"}},
			{ID: 2, URL: "https://example.com", Status: "RD"},
		},
		Page: 2, Size: 2, HasNext: true, HasPrev: true,
	})

	out := buf.String()
	assert.Contains(t, out, "https://go.dev/blog")
	assert.Contains(t, out, "go, reading")
	assert.Contains(t, out, "untagged")
	assert.Contains(t, out, "--page 1 for previous")
	assert.Contains(t, out, "--page 3 for more")
	assert.True(t, strings.HasPrefix(out, "ID"))
}

func TestTags(t *testing.T) {
	assert.Contains(t, Tags(nil), "untagged")
	assert.Contains(t, Tags([]string{"a", "b"}), "a, b")
}
