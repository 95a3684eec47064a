package linkdb

import (
	"context"

	"github.com/marshallshelly/linknova/internal/models"
	"github.com/marshallshelly/linknova/pkg/builder"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

// InsertTopic creates a topic. An existing (name, user) fails with ErrConflict.
func (s *Store) InsertTopic(ctx context.Context, in models.TaxonInput) (int64, error) {
	return s.insertTaxon(ctx, "insert", topicKind, in, false)
}

// SaveTopic creates a topic or overwrites the metadata of the existing one.
func (s *Store) SaveTopic(ctx context.Context, in models.TaxonInput) (int64, error) {
	return s.insertTaxon(ctx, "save", topicKind, in, true)
}

// CreateTopic saves the topic and links it to the named categories, creating
// missing ones, in one transaction. With no categories the default category
// is linked unless AllowUntagged is set.
func (s *Store) CreateTopic(ctx context.Context, in models.TopicInput) (*models.TopicView, error) {
	if err := validateInput("create", topicKind.entity, in.Name, in); err != nil {
		return nil, err
	}
	names := models.NormalizeNames(in.Categories)

	var view *models.TopicView
	now := s.now()
	err := s.db.InTx(ctx, func(tx runtime.Querier) error {
		tags, err := prepareTags(ctx, tx, in.UserID, names, in.AllowUntagged, now)
		if err != nil {
			return err
		}
		id, err := insertTaxon(ctx, tx, topicKind, in.TaxonInput, now, true)
		if err != nil {
			return err
		}
		if err := tags.attach(ctx, tx, topicCategories, id); err != nil {
			return err
		}
		view, err = collectOne[models.TopicView](ctx, tx, topicAggregate(in.UserID).
			And(builder.Eq("t.id", id)).
			GroupBy("t.id"))
		return err
	})
	if err != nil {
		s.log.Warn("topic create failed", "user_id", in.UserID, "name", in.Name, "error", err)
		return nil, runtime.Wrap("create", topicKind.entity, in.Name, err)
	}
	s.log.Info("topic created", "user_id", in.UserID, "name", in.Name, "id", view.ID, "categories", view.Categories)
	return view, nil
}

// GetTopic returns the named topic with its category names.
func (s *Store) GetTopic(ctx context.Context, userID, name string) (*models.TopicView, error) {
	view, err := collectOne[models.TopicView](ctx, s.db, topicAggregate(userID).
		And(builder.Eq("t.name", name)).
		GroupBy("t.id"))
	if err != nil {
		return nil, runtime.Wrap("get", topicKind.entity, name, err)
	}
	return view, nil
}

// FindTopic returns the named topic and whether it exists.
func (s *Store) FindTopic(ctx context.Context, userID, name string) (*models.Topic, bool, error) {
	rows, err := taxonByName[models.Topic](ctx, s.db, topicKind, userID, name)
	if err != nil {
		return nil, false, runtime.Wrap("find", topicKind.entity, name, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return &rows[0], true, nil
}

// GetTopicByID returns the topic with id owned by the user.
func (s *Store) GetTopicByID(ctx context.Context, userID string, id int64) (*models.Topic, error) {
	t, err := taxonByID[models.Topic](ctx, s.db, topicKind, userID, id)
	if err != nil {
		return nil, runtime.Wrap("get", topicKind.entity, formatID(id), err)
	}
	return t, nil
}

// ListTopics returns one page of the user's topics, newest first.
func (s *Store) ListTopics(ctx context.Context, f models.TopicFilter) (models.Page[models.TopicView], error) {
	if err := validateInput("list", topicKind.entity, f.UserID, f); err != nil {
		return models.Page[models.TopicView]{}, err
	}
	page, size := window(f.Page, f.Size, s.defaultSize, s.maxSize)
	rows, err := collect[models.TopicView](ctx, s.db, topicQuery(f, page, size))
	if err != nil {
		return models.Page[models.TopicView]{}, runtime.Wrap("list", topicKind.entity, f.UserID, err)
	}
	return paginate(rows, page, size), nil
}

// ListTopicsByCategories returns every topic linked to any of the named
// categories, ordered by name.
func (s *Store) ListTopicsByCategories(ctx context.Context, userID string, categories []string) ([]models.TopicView, error) {
	categories = models.NormalizeNames(categories)
	if len(categories) == 0 {
		return []models.TopicView{}, nil
	}
	views, err := collect[models.TopicView](ctx, s.db, topicAggregate(userID).
		GroupBy("t.id").
		Having(anyCategory(categories)).
		OrderByAsc("t.name"))
	if err != nil {
		return nil, runtime.Wrap("list", topicKind.entity, userID, err)
	}
	return views, nil
}

// DeleteTopic removes the named topic and its category links. It returns
// the removed id.
func (s *Store) DeleteTopic(ctx context.Context, userID, name string) (int64, error) {
	return s.deleteTaxon(ctx, topicKind, userID, name)
}

// TopicID returns the id of the named topic.
func (s *Store) TopicID(ctx context.Context, userID, name string) (int64, error) {
	return s.taxonID(ctx, topicKind, userID, name)
}

// CategoryID returns the id of the named category.
func (s *Store) CategoryID(ctx context.Context, userID, name string) (int64, error) {
	return s.taxonID(ctx, categoryKind, userID, name)
}

func (s *Store) taxonID(ctx context.Context, k kind, userID, name string) (int64, error) {
	ids, err := resolveTaxa(ctx, s.db, k, userID, []string{name})
	if err != nil {
		return 0, runtime.Wrap("resolve", k.entity, name, err)
	}
	return ids[name], nil
}

// AddTopicCategories links the named topic to the named categories,
// creating missing categories.
func (s *Store) AddTopicCategories(ctx context.Context, userID, topic string, names []string) error {
	id, err := s.TopicID(ctx, userID, topic)
	if err != nil {
		return err
	}
	return s.addCategories(ctx, "link", topicCategories, userID, id, names)
}

// RemoveTopicCategories unlinks the named categories from the named topic
// and returns how many links were removed.
func (s *Store) RemoveTopicCategories(ctx context.Context, userID, topic string, names []string) (int64, error) {
	id, err := s.TopicID(ctx, userID, topic)
	if err != nil {
		return 0, err
	}
	return s.removeCategories(ctx, "unlink", topicCategories, userID, id, names)
}
