package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/musecraft/musecraft/internal/core/model"
	"github.com/musecraft/musecraft/internal/driver"
)

// GraphStore persists elements and combinations in Memgraph through
// the low-level driver. Timestamps are stored as RFC3339 strings to
// keep the record mapping trivial.
type GraphStore struct {
	Driver driver.GraphDriver
}

func NewGraphStore(d driver.GraphDriver) *GraphStore {
	return &GraphStore{Driver: d}
}

func (s *GraphStore) EnsureSchema(ctx context.Context) error {
	return s.Driver.BuildIndices(ctx)
}

func (s *GraphStore) GetElement(ctx context.Context, id string) (*model.Element, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.GetElementQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, nil
	}
	return recordToElement(res.Records[0]), nil
}

func (s *GraphStore) GetElementByName(ctx context.Context, name string) (*model.Element, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.GetElementByNameQuery, map[string]interface{}{"name": name})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, nil
	}
	return recordToElement(res.Records[0]), nil
}

func (s *GraphStore) ListElements(ctx context.Context) ([]model.Element, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.ListElementsQuery, nil)
	if err != nil {
		return nil, err
	}
	elements := make([]model.Element, 0, len(res.Records))
	for _, rec := range res.Records {
		elements = append(elements, *recordToElement(rec))
	}
	return elements, nil
}

func (s *GraphStore) ListElementNames(ctx context.Context, t model.ElementType) ([]string, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.ListElementNamesQuery, map[string]interface{}{"type": string(t)})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		names = append(names, recordString(rec, "name"))
	}
	return names, nil
}

func (s *GraphStore) SaveElement(ctx context.Context, el *model.Element) error {
	params := map[string]interface{}{
		"id":           el.ID,
		"name":         el.Name,
		"type":         string(el.Type),
		"search_query": el.SearchQuery,
		"seed":         el.Seed,
		"created_at":   el.CreatedAt.UTC().Format(time.RFC3339),
	}
	_, err := s.Driver.ExecuteQuery(ctx, driver.SaveElementQuery, params)
	return err
}

func (s *GraphStore) GetCombination(ctx context.Context, idA, idB string) (*model.Combination, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.GetCombinationQuery, map[string]interface{}{
		"pair_key": model.PairKey(idA, idB),
	})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, nil
	}
	return recordToCombination(res.Records[0]), nil
}

func (s *GraphStore) SaveCombination(ctx context.Context, combo *model.Combination) (*model.Combination, error) {
	a, b := model.SortPair(combo.ElementA, combo.ElementB)
	params := map[string]interface{}{
		"pair_key":   model.PairKey(a, b),
		"id":         combo.ID,
		"element_a":  a,
		"element_b":  b,
		"result":     combo.Result,
		"confidence": combo.Confidence,
		"reasoning":  combo.Reasoning,
		"summary":    combo.Summary,
		"created_at": combo.CreatedAt.UTC().Format(time.RFC3339),
	}
	res, err := s.Driver.ExecuteQuery(ctx, driver.SaveCombinationQuery, params)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return combo, nil
	}
	stored := recordToCombination(res.Records[0])

	// Relationship edges are navigational sugar; failure to link is not
	// failure to persist.
	_, _ = s.Driver.ExecuteQuery(ctx, driver.LinkCombinationQuery, map[string]interface{}{
		"pair_key":  model.PairKey(a, b),
		"element_a": stored.ElementA,
		"element_b": stored.ElementB,
		"result":    stored.Result,
	})

	return stored, nil
}

func (s *GraphStore) AddToCollection(ctx context.Context, userID, elementID string) error {
	params := map[string]interface{}{
		"key":           userID + "|" + elementID,
		"id":            uuid.New().String(),
		"user_id":       userID,
		"element_id":    elementID,
		"discovered_at": time.Now().UTC().Format(time.RFC3339),
	}
	_, err := s.Driver.ExecuteQuery(ctx, driver.AddToCollectionQuery, params)
	return err
}

func recordToElement(rec *neo4j.Record) *model.Element {
	return &model.Element{
		ID:          recordString(rec, "id"),
		Name:        recordString(rec, "name"),
		Type:        model.ElementType(recordString(rec, "type")),
		SearchQuery: recordString(rec, "search_query"),
		Seed:        recordBool(rec, "seed"),
		CreatedAt:   recordTime(rec, "created_at"),
	}
}

func recordToCombination(rec *neo4j.Record) *model.Combination {
	return &model.Combination{
		ID:         recordString(rec, "id"),
		ElementA:   recordString(rec, "element_a"),
		ElementB:   recordString(rec, "element_b"),
		Result:     recordString(rec, "result"),
		Confidence: recordFloat(rec, "confidence"),
		Reasoning:  recordString(rec, "reasoning"),
		Summary:    recordString(rec, "summary"),
		CreatedAt:  recordTime(rec, "created_at"),
	}
}

func recordString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func recordBool(rec *neo4j.Record, key string) bool {
	v, _ := rec.Get(key)
	b, _ := v.(bool)
	return b
}

func recordFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch f := v.(type) {
	case float64:
		return f
	case int64:
		return float64(f)
	}
	return 0
}

func recordTime(rec *neo4j.Record, key string) time.Time {
	v, _ := rec.Get(key)
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
