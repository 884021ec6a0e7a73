package store

import (
	"context"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musecraft/musecraft/internal/core/model"
)

type MockDriver struct {
	Queries []string
	Params  []map[string]interface{}
	Result  neo4j.EagerResult
	Err     error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.Result, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error        { return nil }

func record(keys []string, values []interface{}) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func TestGetElementMapsRecord(t *testing.T) {
	d := &MockDriver{Result: neo4j.EagerResult{Records: []*neo4j.Record{
		record(
			[]string{"id", "name", "type", "search_query", "seed", "created_at"},
			[]interface{}{"e1", "Rock", "genre", "genre:rock", true, "2026-08-01T00:00:00Z"},
		),
	}}}
	s := NewGraphStore(d)

	el, err := s.GetElement(context.Background(), "e1")
	require.NoError(t, err)
	require.NotNil(t, el)
	assert.Equal(t, "Rock", el.Name)
	assert.Equal(t, model.TypeGenre, el.Type)
	assert.True(t, el.Seed)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), el.CreatedAt)
}

func TestGetElementAbsent(t *testing.T) {
	s := NewGraphStore(&MockDriver{})

	el, err := s.GetElement(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, el)
}

func TestSaveCombinationCanonicalizesPair(t *testing.T) {
	d := &MockDriver{Result: neo4j.EagerResult{Records: []*neo4j.Record{
		record(
			[]string{"id", "element_a", "element_b", "result", "confidence", "reasoning", "summary", "created_at"},
			[]interface{}{"c1", "g1", "g2", "r1", 0.8, "fits", "", "2026-08-01T00:00:00Z"},
		),
	}}}
	s := NewGraphStore(d)

	stored, err := s.SaveCombination(context.Background(), &model.Combination{
		ID: "c1", ElementA: "g2", ElementB: "g1", Result: "r1", Confidence: 0.8,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	params := d.Params[0]
	assert.Equal(t, "g1|g2", params["pair_key"])
	assert.Equal(t, "g1", params["element_a"])
	assert.Equal(t, "g2", params["element_b"])
	assert.Equal(t, "g1", stored.ElementA)
	assert.Equal(t, "g2", stored.ElementB)
}

func TestGetCombinationUsesPairKey(t *testing.T) {
	d := &MockDriver{}
	s := NewGraphStore(d)

	_, err := s.GetCombination(context.Background(), "g2", "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1|g2", d.Params[0]["pair_key"])
}

func TestAddToCollectionKey(t *testing.T) {
	d := &MockDriver{}
	s := NewGraphStore(d)

	err := s.AddToCollection(context.Background(), "user-7", "e1")
	require.NoError(t, err)
	assert.Equal(t, "user-7|e1", d.Params[0]["key"])
}
