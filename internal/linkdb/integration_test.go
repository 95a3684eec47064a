//go:build integration

package linkdb_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/marshallshelly/linknova/internal/linkdb"
	"github.com/marshallshelly/linknova/internal/logger"
	"github.com/marshallshelly/linknova/internal/models"
	"github.com/marshallshelly/linknova/pkg/migration"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

var (
	testDB    *runtime.DB
	testStore *linkdb.Store
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("linknova"),
		postgres.WithUsername("linknova"),
		postgres.WithPassword("linknova"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres: %v\n", err)
		return 1
	}
	defer func() {
		if err := pg.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate postgres: %v\n", err)
		}
	}()

	url, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "connection string: %v\n", err)
		return 1
	}

	testDB, err = runtime.ConnectWithURL(ctx, url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		return 1
	}
	defer testDB.Close()

	migs, err := linkdb.Migrations()
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrations: %v\n", err)
		return 1
	}
	if _, err := migration.NewExecutor(testDB.Pool()).ApplyAll(ctx, migs); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		return 1
	}

	testStore = linkdb.New(testDB, logger.Nop())
	return m.Run()
}

// newUser returns a fresh provisioned user id so tests never share rows.
func newUser(t *testing.T) string {
	t.Helper()
	user := "user-" + uuid.NewString()
	require.NoError(t, testStore.ProvisionUser(context.Background(), user))
	return user
}

func countRows(t *testing.T, sql string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, testDB.QueryRow(context.Background(), sql, args...).Scan(&n))
	return n
}

func TestProvisionUser_Idempotent(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)
	require.NoError(t, testStore.ProvisionUser(ctx, user))

	topic, err := testStore.GetTopic(ctx, user, models.DefaultName)
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultName}, topic.Categories)

	cats, err := testStore.ListCategories(ctx, user)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestEnsureCategories_ConcurrentUpsert(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)
	names := []string{"go", "postgres", "go", " rust "}

	results := make([]map[string]int64, 8)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			ids, err := testStore.EnsureCategories(ctx, user, names)
			results[i] = ids
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, ids := range results[1:] {
		assert.Equal(t, results[0], ids)
	}
	assert.Len(t, results[0], 3)
	assert.Equal(t, 3, countRows(t,
		"SELECT count(*) FROM linknova_category WHERE user_id = $1 AND name <> 'default'", user))
}

func TestCreateBookmark_ConcurrentReversedCategories(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)
	orders := [][]string{{"a", "b", "c"}, {"c", "b", "a"}}

	var g errgroup.Group
	for i := range 16 {
		g.Go(func() error {
			_, err := testStore.CreateBookmark(ctx, models.BookmarkInput{
				UserID:     user,
				URL:        fmt.Sprintf("https://example.com/reversed/%d", i),
				Categories: orders[i%2],
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 3, countRows(t,
		"SELECT count(*) FROM linknova_category WHERE user_id = $1 AND name IN ('a', 'b', 'c')", user))
	assert.Equal(t, 48, countRows(t, `
		SELECT count(*) FROM linknova_bookmark_category_map m
		JOIN linknova_bookmark b ON b.id = m.bookmark_id
		WHERE b.user_id = $1`, user))
}

func TestInsertCategory_Conflict(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	_, err := testStore.InsertCategory(ctx, models.NewTaxonInput(user, "dup"))
	require.NoError(t, err)

	_, err = testStore.InsertCategory(ctx, models.NewTaxonInput(user, "dup"))
	assert.ErrorIs(t, err, runtime.ErrConflict)

	desc := "updated"
	in := models.NewTaxonInput(user, "dup")
	in.Description = &desc
	_, err = testStore.SaveCategory(ctx, in)
	require.NoError(t, err)

	c, err := testStore.GetCategory(ctx, user, "dup")
	require.NoError(t, err)
	require.NotNil(t, c.Description)
	assert.Equal(t, "updated", *c.Description)
}

func TestCreateBookmark_Atomic(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	_, err := testDB.Exec(ctx, `
		CREATE OR REPLACE FUNCTION linknova_test_reject() RETURNS trigger AS $$
		BEGIN
			IF EXISTS (SELECT 1 FROM linknova_category WHERE id = NEW.category_id AND name = 'explode') THEN
				RAISE EXCEPTION 'mapping rejected';
			END IF;
			RETURN NEW;
		END $$ LANGUAGE plpgsql`)
	require.NoError(t, err)
	_, err = testDB.Exec(ctx, `
		CREATE OR REPLACE TRIGGER linknova_test_reject BEFORE INSERT ON linknova_bookmark_category_map
		FOR EACH ROW EXECUTE FUNCTION linknova_test_reject()`)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = testDB.Exec(context.Background(), "DROP TRIGGER IF EXISTS linknova_test_reject ON linknova_bookmark_category_map")
	})

	_, err = testStore.CreateBookmark(ctx, models.BookmarkInput{
		UserID:     user,
		URL:        "https://example.com/atomic",
		Categories: []string{"fresh", "explode"},
	})
	require.Error(t, err)

	assert.Zero(t, countRows(t, "SELECT count(*) FROM linknova_bookmark WHERE user_id = $1", user))
	assert.Zero(t, countRows(t,
		"SELECT count(*) FROM linknova_category WHERE user_id = $1 AND name IN ('fresh', 'explode')", user))
}

func TestCreateBookmark_SortedCategories(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	created, err := testStore.CreateBookmark(ctx, models.BookmarkInput{
		UserID:     user,
		URL:        "https://example.com/sorted",
		Categories: []string{"zeta", "alpha", "mid", "alpha"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, created.Categories)
	assert.Equal(t, models.StatusUnread, created.Status)

	got, err := testStore.GetBookmark(ctx, user, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, got.Categories)
}

func TestListBookmarks_Filters(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	b1, err := testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: user, URL: "https://example.com/1", Categories: []string{"a", "b"}})
	require.NoError(t, err)
	b2, err := testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: user, URL: "https://example.com/2", Categories: []string{"b"}})
	require.NoError(t, err)
	_, err = testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: user, URL: "https://example.com/3", Categories: []string{"c"}, Status: "RD"})
	require.NoError(t, err)

	page, err := testStore.ListBookmarks(ctx, models.BookmarkFilter{UserID: user, Categories: []string{"a"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b1.ID, page.Items[0].ID)
	// the filter selects groups, it does not trim their aggregates
	assert.Equal(t, []string{"a", "b"}, page.Items[0].Categories)

	page, err = testStore.ListBookmarks(ctx, models.BookmarkFilter{UserID: user})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	page, err = testStore.ListBookmarks(ctx, models.BookmarkFilter{UserID: user, Status: "RD"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, []string{"c"}, page.Items[0].Categories)

	_, err = testStore.CreateTopic(ctx, models.TopicInput{
		TaxonInput: models.NewTaxonInput(user, "letters"),
		Categories: []string{"b"},
	})
	require.NoError(t, err)

	page, err = testStore.ListBookmarks(ctx, models.BookmarkFilter{UserID: user, Topic: "letters"})
	require.NoError(t, err)
	ids := make([]int64, 0, len(page.Items))
	for _, item := range page.Items {
		ids = append(ids, item.ID)
	}
	assert.ElementsMatch(t, []int64{b1.ID, b2.ID}, ids)

	other := newUser(t)
	page, err = testStore.ListBookmarks(ctx, models.BookmarkFilter{UserID: other})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListBookmarks_Pagination(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	for i := range 11 {
		_, err := testStore.CreateBookmark(ctx, models.BookmarkInput{
			UserID: user,
			URL:    fmt.Sprintf("https://example.com/page/%d", i),
		})
		require.NoError(t, err)
	}

	first, err := testStore.ListBookmarks(ctx, models.BookmarkFilter{UserID: user, Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	second, err := testStore.ListBookmarks(ctx, models.BookmarkFilter{UserID: user, Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Len(t, second.Items, 1)
	assert.False(t, second.HasNext)
	assert.True(t, second.HasPrev)

	seen := map[int64]bool{}
	for _, item := range append(first.Items, second.Items...) {
		assert.False(t, seen[item.ID], "duplicate id %d across pages", item.ID)
		seen[item.ID] = true
	}
}

func TestDefaultFallback(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	b, err := testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: user, URL: "https://example.com/untagged"})
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultName}, b.Categories)

	id, err := testStore.ResolveOrDefault(ctx, linkdb.KindCategory, user, "missing")
	require.NoError(t, err)
	def, err := testStore.CategoryID(ctx, user, models.DefaultName)
	require.NoError(t, err)
	assert.Equal(t, def, id)

	bare := "user-" + uuid.NewString()
	_, err = testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: bare, URL: "https://example.com/bare"})
	assert.ErrorIs(t, err, runtime.ErrInvalidState)
	assert.ErrorIs(t, err, runtime.ErrNotFound)
	assert.Zero(t, countRows(t, "SELECT count(*) FROM linknova_bookmark WHERE user_id = $1", bare))

	untagged, err := testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: bare, URL: "https://example.com/bare", AllowUntagged: true})
	require.NoError(t, err)
	assert.Empty(t, untagged.Categories)
}

func TestDeleteBookmark_RemovesMappings(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	b, err := testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: user, URL: "https://example.com/gone", Categories: []string{"x", "y"}})
	require.NoError(t, err)
	require.Equal(t, 2, countRows(t, "SELECT count(*) FROM linknova_bookmark_category_map WHERE bookmark_id = $1", b.ID))

	require.NoError(t, testStore.DeleteBookmark(ctx, user, b.ID))
	assert.Zero(t, countRows(t, "SELECT count(*) FROM linknova_bookmark_category_map WHERE bookmark_id = $1", b.ID))

	err = testStore.DeleteBookmark(ctx, user, b.ID)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	_, err = testStore.GetBookmark(ctx, user, b.ID)
	assert.ErrorIs(t, err, runtime.ErrNotFound)
}

func TestBookmarkTagging(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	b, err := testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: user, URL: "https://example.com/tags", Categories: []string{"one"}})
	require.NoError(t, err)

	require.NoError(t, testStore.AddBookmarkCategories(ctx, user, b.ID, []string{"two", "one", "three"}))
	got, err := testStore.GetBookmark(ctx, user, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "three", "two"}, got.Categories)

	removed, err := testStore.RemoveBookmarkCategories(ctx, user, b.ID, []string{"one", "absent"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	removed, err = testStore.RemoveBookmarkCategories(ctx, user, b.ID, []string{"one"})
	require.NoError(t, err)
	assert.Zero(t, removed)

	other := newUser(t)
	err = testStore.AddBookmarkCategories(ctx, other, b.ID, []string{"steal"})
	assert.ErrorIs(t, err, runtime.ErrNotFound)
	_, err = testStore.RemoveBookmarkCategories(ctx, other, b.ID, []string{"two"})
	assert.ErrorIs(t, err, runtime.ErrNotFound)
}

func TestUpdateBookmark(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	b, err := testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: user, URL: "https://example.com/patch"})
	require.NoError(t, err)

	title, status := "Patched", "RD"
	updated, err := testStore.UpdateBookmark(ctx, user, b.ID, models.BookmarkPatch{Title: &title, Status: &status})
	require.NoError(t, err)
	require.NotNil(t, updated.Title)
	assert.Equal(t, "Patched", *updated.Title)
	assert.Equal(t, "RD", updated.Status)
	assert.False(t, updated.UpdatedOn.Before(b.UpdatedOn))

	_, err = testStore.UpdateBookmark(ctx, user, b.ID, models.BookmarkPatch{})
	assert.ErrorIs(t, err, runtime.ErrInvalidInput)

	_, err = testStore.UpdateBookmark(ctx, newUser(t), b.ID, models.BookmarkPatch{Title: &title})
	assert.ErrorIs(t, err, runtime.ErrNotFound)
}

func TestTopics(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	view, err := testStore.CreateTopic(ctx, models.TopicInput{
		TaxonInput: models.NewTaxonInput(user, "lang"),
		Categories: []string{"go", "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "go"}, view.Categories)

	require.NoError(t, testStore.AddTopicCategories(ctx, user, "lang", []string{"zig"}))
	removed, err := testStore.RemoveTopicCategories(ctx, user, "lang", []string{"c"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	got, err := testStore.GetTopic(ctx, user, "lang")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "zig"}, got.Categories)

	byCat, err := testStore.ListTopicsByCategories(ctx, user, []string{"zig"})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "lang", byCat[0].Name)

	cats, err := testStore.ListCategoriesByTopics(ctx, user, []string{"lang", models.DefaultName})
	require.NoError(t, err)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{models.DefaultName, "go", "zig"}, names)

	inactive := false
	page, err := testStore.ListTopics(ctx, models.TopicFilter{UserID: user, Active: &inactive})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = testStore.ListTopics(ctx, models.TopicFilter{UserID: user})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	_, err = testStore.DeleteTopic(ctx, user, "lang")
	require.NoError(t, err)
	_, err = testStore.DeleteTopic(ctx, user, "lang")
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	_, ok, err := testStore.FindTopic(ctx, user, "lang")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteCategory_CascadesLinks(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	b, err := testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: user, URL: "https://example.com/cascade", Categories: []string{"drop", "keep"}})
	require.NoError(t, err)

	_, err = testStore.DeleteCategory(ctx, user, "drop")
	require.NoError(t, err)

	got, err := testStore.GetBookmark(ctx, user, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, got.Categories)

	_, err = testStore.GetCategory(ctx, user, "drop")
	assert.True(t, errors.Is(err, runtime.ErrNotFound))
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)

	_, err := testStore.CreateBookmark(ctx, models.BookmarkInput{UserID: user, URL: "not a url"})
	assert.ErrorIs(t, err, runtime.ErrInvalidInput)

	_, err = testStore.InsertCategory(ctx, models.NewTaxonInput(user, "a,b"))
	assert.ErrorIs(t, err, runtime.ErrInvalidInput)

	err = testStore.AddBookmarkCategories(ctx, user, 1, []string{"x,y"})
	assert.ErrorIs(t, err, runtime.ErrInvalidInput)
}

func TestInTx_PanicRollsBack(t *testing.T) {
	ctx := context.Background()
	_, err := testDB.Exec(ctx, "CREATE TABLE IF NOT EXISTS linknova_test_panic (id int)")
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = testDB.Exec(context.Background(), "DROP TABLE IF EXISTS linknova_test_panic")
	})

	assert.PanicsWithValue(t, "boom", func() {
		_ = testDB.InTx(ctx, func(q runtime.Querier) error {
			if _, err := q.Exec(ctx, "INSERT INTO linknova_test_panic VALUES (1)"); err != nil {
				return err
			}
			panic("boom")
		})
	})

	assert.Zero(t, countRows(t, "SELECT count(*) FROM linknova_test_panic"))
	assert.Zero(t, testDB.Pool().Stat().AcquiredConns(), "connection returned to the pool")
}
