package linkdb

import (
	"context"
	"fmt"

	"github.com/marshallshelly/linknova/internal/models"
	"github.com/marshallshelly/linknova/pkg/builder"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

// resolveOrDefault returns the id of name for the user, falling back to the
// user's default row in the same query. With neither present the error
// matches both ErrInvalidState and ErrNotFound.
func resolveOrDefault(ctx context.Context, q runtime.Querier, k kind, userID, name string) (idName, error) {
	candidates := []string{models.DefaultName}
	if name != "" && name != models.DefaultName {
		candidates = []string{name, models.DefaultName}
	}

	rows, err := collect[idName](ctx, q, builder.Select(k.table).
		Columns("id", "name").
		Where(builder.Eq("user_id", userID)).
		And(builder.Any("name", candidates)))
	if err != nil {
		return idName{}, err
	}

	got, ok := pickPreferred(rows, name)
	if !ok {
		return idName{}, fmt.Errorf("%w: no %s %q or %q for user %q: %w",
			runtime.ErrInvalidState, k.entity, name, models.DefaultName, userID, runtime.ErrNotFound)
	}
	return got, nil
}

// pickPreferred returns the row named name if present, else the default row.
func pickPreferred(rows []idName, name string) (idName, bool) {
	var fallback *idName
	for i := range rows {
		switch rows[i].Name {
		case name:
			return rows[i], true
		case models.DefaultName:
			fallback = &rows[i]
		}
	}
	if fallback == nil {
		return idName{}, false
	}
	return *fallback, true
}

// Kind selects the taxon table for ResolveOrDefault.
type Kind string

const (
	KindCategory Kind = "category"
	KindTopic    Kind = "topic"
)

func (k Kind) table() (kind, error) {
	switch k {
	case KindCategory:
		return categoryKind, nil
	case KindTopic:
		return topicKind, nil
	}
	return kind{}, fmt.Errorf("unknown kind %q: %w", string(k), runtime.ErrInvalidInput)
}

// ResolveOrDefault returns the id of the named topic or category, or of the
// user's default one when name is empty or unknown.
func (s *Store) ResolveOrDefault(ctx context.Context, k Kind, userID, name string) (int64, error) {
	tk, err := k.table()
	if err != nil {
		return 0, runtime.Wrap("resolve", string(k), name, err)
	}
	got, err := resolveOrDefault(ctx, s.db, tk, userID, name)
	if err != nil {
		return 0, runtime.Wrap("resolve", tk.entity, name, err)
	}
	return got.ID, nil
}
