package store

import (
	"context"

	"github.com/musecraft/musecraft/internal/core/model"
)

// Store is the persistence surface the fusion engine consumes. Lookup
// methods return (nil, nil) when the entity does not exist; absence is
// a normal outcome, not an error.
type Store interface {
	GetElement(ctx context.Context, id string) (*model.Element, error)
	GetElementByName(ctx context.Context, name string) (*model.Element, error)
	ListElements(ctx context.Context) ([]model.Element, error)
	ListElementNames(ctx context.Context, t model.ElementType) ([]string, error)
	SaveElement(ctx context.Context, el *model.Element) error

	// GetCombination looks up the cache row for the unordered pair.
	GetCombination(ctx context.Context, idA, idB string) (*model.Combination, error)

	// SaveCombination inserts the row for its canonical pair and returns
	// the row actually stored. Under a concurrent insert for the same
	// pair the first writer wins and the loser gets the winner's row.
	SaveCombination(ctx context.Context, combo *model.Combination) (*model.Combination, error)
}

// Collection records which elements a user has discovered. Adds are
// idempotent; the fusion engine treats this as fire-and-forget.
type Collection interface {
	AddToCollection(ctx context.Context, userID, elementID string) error
}
