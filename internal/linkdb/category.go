package linkdb

import (
	"context"
	"errors"

	"github.com/marshallshelly/linknova/internal/models"
	"github.com/marshallshelly/linknova/pkg/builder"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

// InsertCategory creates a category. An existing (name, user) fails with ErrConflict.
func (s *Store) InsertCategory(ctx context.Context, in models.TaxonInput) (int64, error) {
	return s.insertTaxon(ctx, "insert", categoryKind, in, false)
}

// SaveCategory creates a category or overwrites the metadata of the existing one.
func (s *Store) SaveCategory(ctx context.Context, in models.TaxonInput) (int64, error) {
	return s.insertTaxon(ctx, "save", categoryKind, in, true)
}

func (s *Store) insertTaxon(ctx context.Context, op string, k kind, in models.TaxonInput, upsert bool) (int64, error) {
	if err := validateInput(op, k.entity, in.Name, in); err != nil {
		return 0, err
	}
	id, err := insertTaxon(ctx, s.db, k, in, s.now(), upsert)
	if err != nil {
		return 0, runtime.Wrap(op, k.entity, in.Name, err)
	}
	s.log.Info(k.entity+" saved", "op", op, "user_id", in.UserID, "name", in.Name, "id", id)
	return id, nil
}

// EnsureCategories creates every missing named category for the user in one
// transaction and returns the id of each name.
func (s *Store) EnsureCategories(ctx context.Context, userID string, names []string) (map[string]int64, error) {
	names = models.NormalizeNames(names)
	if err := s.validateNames("ensure", categoryKind.entity, userID, names); err != nil {
		return nil, err
	}

	var ids map[string]int64
	now := s.now()
	err := s.db.InTx(ctx, func(tx runtime.Querier) error {
		if err := upsertTaxa(ctx, tx, categoryKind, userID, names, now); err != nil {
			return err
		}
		var err error
		ids, err = resolveTaxa(ctx, tx, categoryKind, userID, names)
		return err
	})
	if err != nil {
		return nil, runtime.Wrap("ensure", categoryKind.entity, userID, err)
	}
	return ids, nil
}

// GetCategory returns the named category; a missing one fails with ErrNotFound.
func (s *Store) GetCategory(ctx context.Context, userID, name string) (*models.Category, error) {
	c, ok, err := s.FindCategory(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, runtime.Wrap("get", categoryKind.entity, name, runtime.ErrNotFound)
	}
	return c, nil
}

// FindCategory returns the named category and whether it exists.
func (s *Store) FindCategory(ctx context.Context, userID, name string) (*models.Category, bool, error) {
	rows, err := taxonByName[models.Category](ctx, s.db, categoryKind, userID, name)
	if err != nil {
		return nil, false, runtime.Wrap("find", categoryKind.entity, name, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return &rows[0], true, nil
}

// GetCategoryByID returns the category with id owned by the user.
func (s *Store) GetCategoryByID(ctx context.Context, userID string, id int64) (*models.Category, error) {
	c, err := taxonByID[models.Category](ctx, s.db, categoryKind, userID, id)
	if err != nil {
		return nil, runtime.Wrap("get", categoryKind.entity, formatID(id), err)
	}
	return c, nil
}

// ListCategories returns every category of the user ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]models.CategoryView, error) {
	views, err := collect[models.CategoryView](ctx, s.db, builder.Select(TableCategory+" AS c").
		Columns(viewColumns("c")...).
		Where(builder.Eq("c.user_id", userID)).
		OrderByAsc("c.name"))
	if err != nil {
		return nil, runtime.Wrap("list", categoryKind.entity, userID, err)
	}
	return views, nil
}

// ListCategoriesByTopics returns the distinct categories linked to any of
// the named topics, ordered by name.
func (s *Store) ListCategoriesByTopics(ctx context.Context, userID string, topics []string) ([]models.CategoryView, error) {
	topics = models.NormalizeNames(topics)
	if len(topics) == 0 {
		return []models.CategoryView{}, nil
	}
	views, err := collect[models.CategoryView](ctx, s.db, builder.Select(TableCategory+" AS c").
		Distinct().
		Columns(viewColumns("c")...).
		InnerJoin(TableTopicCategoryMap+" AS m", "m.category_id = c.id").
		InnerJoin(TableTopic+" AS t", "t.id = m.topic_id").
		Where(builder.Eq("c.user_id", userID)).
		And(builder.Eq("t.user_id", userID)).
		And(builder.Any("t.name", topics)).
		OrderByAsc("c.name"))
	if err != nil {
		return nil, runtime.Wrap("list", categoryKind.entity, userID, err)
	}
	return views, nil
}

// DeleteCategory removes the named category and, through the foreign keys,
// its topic and bookmark links. It returns the removed id.
func (s *Store) DeleteCategory(ctx context.Context, userID, name string) (int64, error) {
	return s.deleteTaxon(ctx, categoryKind, userID, name)
}

func (s *Store) deleteTaxon(ctx context.Context, k kind, userID, name string) (int64, error) {
	id, err := deleteTaxon(ctx, s.db, k, userID, name)
	if err != nil {
		return 0, runtime.Wrap("delete", k.entity, name, err)
	}
	s.log.Info(k.entity+" deleted", "user_id", userID, "name", name, "id", id)
	return id, nil
}

// ProvisionUser creates the user's default topic and default category and
// links them. Running it again changes nothing.
func (s *Store) ProvisionUser(ctx context.Context, userID string) error {
	if err := validateInput("provision", "user", userID, models.NewTaxonInput(userID, models.DefaultName)); err != nil {
		return err
	}

	now := s.now()
	defaults := []string{models.DefaultName}
	err := s.db.InTx(ctx, func(tx runtime.Querier) error {
		if err := upsertTaxa(ctx, tx, categoryKind, userID, defaults, now); err != nil {
			return err
		}
		if err := upsertTaxa(ctx, tx, topicKind, userID, defaults, now); err != nil {
			return err
		}
		topics, err := resolveTaxa(ctx, tx, topicKind, userID, defaults)
		if err != nil {
			return err
		}
		_, err = tagOwner(ctx, tx, topicCategories, userID, topics[models.DefaultName], defaults, false, now)
		return err
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Warn("provisioning failed", "user_id", userID, "error", err)
		}
		return runtime.Wrap("provision", "user", userID, err)
	}
	s.log.Info("user provisioned", "user_id", userID)
	return nil
}
