package linkdb

import (
	"context"
	"strconv"
	"time"

	"github.com/marshallshelly/linknova/internal/models"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

// tagSet is the resolved category side of a tagging request.
type tagSet struct {
	ids   []int64
	names []string
}

// prepareTags creates the missing named categories and resolves their ids,
// before any owner row is written. Names must be normalized. With no names
// the user's default category is used unless untagged is set.
func prepareTags(ctx context.Context, q runtime.Querier, userID string, names []string, untagged bool, now time.Time) (tagSet, error) {
	if len(names) == 0 {
		if untagged {
			return tagSet{}, nil
		}
		def, err := resolveOrDefault(ctx, q, categoryKind, userID, models.DefaultName)
		if err != nil {
			return tagSet{}, err
		}
		return tagSet{ids: []int64{def.ID}, names: []string{def.Name}}, nil
	}

	if err := upsertTaxa(ctx, q, categoryKind, userID, names, now); err != nil {
		return tagSet{}, err
	}
	ids, err := resolveTaxa(ctx, q, categoryKind, userID, names)
	if err != nil {
		return tagSet{}, err
	}
	return tagSet{ids: orderedIDs(ids, names), names: names}, nil
}

// attach links owner to every category of the set.
func (t tagSet) attach(ctx context.Context, q runtime.Querier, j junction, owner int64) error {
	_, err := link(ctx, q, j, owner, t.ids)
	return err
}

// tagOwner prepares the tags and links them to an existing owner.
func tagOwner(ctx context.Context, q runtime.Querier, j junction, userID string, owner int64, names []string, untagged bool, now time.Time) ([]string, error) {
	tags, err := prepareTags(ctx, q, userID, names, untagged, now)
	if err != nil {
		return nil, err
	}
	if err := tags.attach(ctx, q, j, owner); err != nil {
		return nil, err
	}
	return tags.names, nil
}

// addCategories tags an existing owner after confirming the user owns it.
func (s *Store) addCategories(ctx context.Context, op string, j junction, userID string, owner int64, names []string) error {
	names = models.NormalizeNames(names)
	key := formatID(owner)
	if len(names) == 0 {
		return nil
	}
	if err := s.validateNames(op, j.owner.entity, key, names); err != nil {
		return err
	}

	now := s.now()
	err := s.db.InTx(ctx, func(tx runtime.Querier) error {
		if err := lockOwner(ctx, tx, j, userID, owner); err != nil {
			return err
		}
		_, err := tagOwner(ctx, tx, j, userID, owner, names, true, now)
		return err
	})
	if err != nil {
		s.log.Warn("tagging failed", "op", op, "user_id", userID, "id", owner, "error", err)
		return runtime.Wrap(op, j.owner.entity, key, err)
	}
	s.log.Info("categories added", "op", op, "user_id", userID, "id", owner, "categories", names)
	return nil
}

// removeCategories detaches the named categories from owner and returns the
// number of links removed. An owner that does not exist fails with ErrNotFound.
func (s *Store) removeCategories(ctx context.Context, op string, j junction, userID string, owner int64, names []string) (int64, error) {
	names = models.NormalizeNames(names)
	key := formatID(owner)

	removed, err := unlinkByNames(ctx, s.db, j, userID, owner, names)
	if err != nil {
		return 0, runtime.Wrap(op, j.owner.entity, key, err)
	}
	if removed == 0 {
		if err := checkOwner(ctx, s.db, j, userID, owner); err != nil {
			return 0, runtime.Wrap(op, j.owner.entity, key, err)
		}
		return 0, nil
	}
	s.log.Info("categories removed", "op", op, "user_id", userID, "id", owner, "removed", removed)
	return removed, nil
}

// checkOwner confirms owner exists for the user without locking it.
func checkOwner(ctx context.Context, q runtime.Querier, j junction, userID string, owner int64) error {
	_, err := scalar[int64](ctx, q, ownerLookup(j, userID, owner))
	return err
}

// validateNames rejects category names that could never be stored.
func (s *Store) validateNames(op, entity, key string, names []string) error {
	return validateInput(op, entity, key, struct {
		Categories []string `json:"categories" validate:"dive,max=255,excludesall=0x2C"`
	}{names})
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
