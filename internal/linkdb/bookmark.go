package linkdb

import (
	"context"

	"github.com/marshallshelly/linknova/internal/models"
	"github.com/marshallshelly/linknova/pkg/builder"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

const bookmarkEntity = "bookmark"

// CreateBookmark saves a link and tags it in one transaction, creating any
// missing categories. With no categories the default category is linked
// unless AllowUntagged is set.
func (s *Store) CreateBookmark(ctx context.Context, in models.BookmarkInput) (*models.BookmarkView, error) {
	if err := validateInput("create", bookmarkEntity, in.URL, in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.StatusUnread
	}
	names := models.NormalizeNames(in.Categories)

	var view models.BookmarkView
	now := s.now()
	err := s.db.InTx(ctx, func(tx runtime.Querier) error {
		tags, err := prepareTags(ctx, tx, in.UserID, names, in.AllowUntagged, now)
		if err != nil {
			return err
		}
		b, err := collectOne[models.Bookmark](ctx, tx, builder.InsertInto(TableBookmark,
			"url", "user_id", "title", "content", "referrer", "status", "created_on", "updated_on").
			Values(in.URL, in.UserID, in.Title, in.Content, in.Referrer, in.Status, now, now).
			Returning(bookmarkColumns...))
		if err != nil {
			return err
		}
		if err := tags.attach(ctx, tx, bookmarkCategories, b.ID); err != nil {
			return err
		}
		view = withCategories(*b, tags.names)
		return nil
	})
	if err != nil {
		s.log.Warn("bookmark create failed", "user_id", in.UserID, "url", in.URL, "error", err)
		return nil, runtime.Wrap("create", bookmarkEntity, in.URL, err)
	}
	s.log.Info("bookmark created", "user_id", in.UserID, "id", view.ID, "categories", view.Categories)
	return &view, nil
}

func withCategories(b models.Bookmark, names []string) models.BookmarkView {
	return models.BookmarkView{
		ID:         b.ID,
		URL:        b.URL,
		UserID:     b.UserID,
		Title:      b.Title,
		Content:    b.Content,
		Referrer:   b.Referrer,
		Status:     b.Status,
		CreatedOn:  b.CreatedOn,
		UpdatedOn:  b.UpdatedOn,
		Categories: sortedNames(names),
	}
}

// GetBookmark returns the user's bookmark with its category names.
func (s *Store) GetBookmark(ctx context.Context, userID string, id int64) (*models.BookmarkView, error) {
	view, err := collectOne[models.BookmarkView](ctx, s.db, bookmarkAggregate(userID).
		And(builder.Eq("b.id", id)).
		GroupBy("b.id"))
	if err != nil {
		return nil, runtime.Wrap("get", bookmarkEntity, formatID(id), err)
	}
	return view, nil
}

// ListBookmarks returns one page of the user's bookmarks, newest first.
func (s *Store) ListBookmarks(ctx context.Context, f models.BookmarkFilter) (models.Page[models.BookmarkView], error) {
	if err := validateInput("list", bookmarkEntity, f.UserID, f); err != nil {
		return models.Page[models.BookmarkView]{}, err
	}
	page, size := window(f.Page, f.Size, s.defaultSize, s.maxSize)
	rows, err := collect[models.BookmarkView](ctx, s.db, bookmarkQuery(f, page, size))
	if err != nil {
		return models.Page[models.BookmarkView]{}, runtime.Wrap("list", bookmarkEntity, f.UserID, err)
	}
	return paginate(rows, page, size), nil
}

// UpdateBookmark applies the non-nil fields of p. An empty patch fails with
// ErrInvalidInput.
func (s *Store) UpdateBookmark(ctx context.Context, userID string, id int64, p models.BookmarkPatch) (*models.Bookmark, error) {
	key := formatID(id)
	if err := validateInput("update", bookmarkEntity, key, p); err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return nil, &runtime.EntityError{Op: "update", Entity: bookmarkEntity, Key: key,
			Err: &runtime.ValidationError{Field: "patch", Message: "changes nothing"}}
	}

	upd := builder.Update(TableBookmark)
	if p.Title != nil {
		upd.Set("title", *p.Title)
	}
	if p.Content != nil {
		upd.Set("content", *p.Content)
	}
	if p.Referrer != nil {
		upd.Set("referrer", *p.Referrer)
	}
	if p.Status != nil {
		upd.Set("status", *p.Status)
	}
	upd.Set("updated_on", s.now()).
		Where(builder.Eq("id", id)).
		And(builder.Eq("user_id", userID)).
		Returning(bookmarkColumns...)

	b, err := collectOne[models.Bookmark](ctx, s.db, upd)
	if err != nil {
		return nil, runtime.Wrap("update", bookmarkEntity, key, err)
	}
	s.log.Info("bookmark updated", "user_id", userID, "id", id)
	return b, nil
}

// DeleteBookmark removes the bookmark and its category links in one
// transaction.
func (s *Store) DeleteBookmark(ctx context.Context, userID string, id int64) error {
	key := formatID(id)
	var unlinked int64
	err := s.db.InTx(ctx, func(tx runtime.Querier) error {
		if err := lockOwner(ctx, tx, bookmarkCategories, userID, id); err != nil {
			return err
		}
		var err error
		if unlinked, err = unlinkAll(ctx, tx, bookmarkCategories, id); err != nil {
			return err
		}
		_, err = exec(ctx, tx, builder.DeleteFrom(TableBookmark).
			Where(builder.Eq("id", id)).
			And(builder.Eq("user_id", userID)))
		return err
	})
	if err != nil {
		return runtime.Wrap("delete", bookmarkEntity, key, err)
	}
	s.log.Info("bookmark deleted", "user_id", userID, "id", id, "links", unlinked)
	return nil
}

// AddBookmarkCategories tags the bookmark with the named categories,
// creating missing ones. Existing links are kept.
func (s *Store) AddBookmarkCategories(ctx context.Context, userID string, id int64, names []string) error {
	return s.addCategories(ctx, "tag", bookmarkCategories, userID, id, names)
}

// RemoveBookmarkCategories untags the named categories and returns how many
// links were removed.
func (s *Store) RemoveBookmarkCategories(ctx context.Context, userID string, id int64, names []string) (int64, error) {
	return s.removeCategories(ctx, "untag", bookmarkCategories, userID, id, names)
}
