package core

import (
	"context"
	"strings"
	"sync"

	"github.com/musecraft/musecraft/internal/core/model"
)

// MockStore keeps everything in maps and mimics the MERGE semantics of
// the real store: inserting a combination for an existing pair returns
// the existing row.
type MockStore struct {
	mu       sync.Mutex
	Elements map[string]*model.Element     // by id
	Combos   map[string]*model.Combination // by pair key
	Added    []string                      // "user|element" collection adds

	SaveElementErr error
	MissCacheOnce  bool // next GetCombination misses, to stage races
}

func NewMockStore() *MockStore {
	return &MockStore{
		Elements: make(map[string]*model.Element),
		Combos:   make(map[string]*model.Combination),
	}
}

func (m *MockStore) PutElement(el *model.Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Elements[el.ID] = el
}

func (m *MockStore) GetElement(ctx context.Context, id string) (*model.Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Elements[id], nil
}

func (m *MockStore) GetElementByName(ctx context.Context, name string) (*model.Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, el := range m.Elements {
		if el.Name == name {
			return el, nil
		}
	}
	return nil, nil
}

func (m *MockStore) ListElements(ctx context.Context) ([]model.Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Element
	for _, el := range m.Elements {
		out = append(out, *el)
	}
	return out, nil
}

func (m *MockStore) ListElementNames(ctx context.Context, t model.ElementType) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for _, el := range m.Elements {
		if el.Type == t {
			names = append(names, el.Name)
		}
	}
	return names, nil
}

func (m *MockStore) SaveElement(ctx context.Context, el *model.Element) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveElementErr != nil {
		return m.SaveElementErr
	}
	m.Elements[el.ID] = el
	return nil
}

func (m *MockStore) GetCombination(ctx context.Context, idA, idB string) (*model.Combination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MissCacheOnce {
		m.MissCacheOnce = false
		return nil, nil
	}
	return m.Combos[model.PairKey(idA, idB)], nil
}

func (m *MockStore) SaveCombination(ctx context.Context, combo *model.Combination) (*model.Combination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := model.PairKey(combo.ElementA, combo.ElementB)
	if existing, ok := m.Combos[key]; ok {
		return existing, nil
	}
	stored := *combo
	stored.ElementA, stored.ElementB = model.SortPair(combo.ElementA, combo.ElementB)
	m.Combos[key] = &stored
	return &stored, nil
}

func (m *MockStore) AddToCollection(ctx context.Context, userID, elementID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Added = append(m.Added, userID+"|"+elementID)
	return nil
}

// MockLLM replays queued completions and records every prompt.
type MockLLM struct {
	Response      string
	ResponseQueue []string
	Prompts       []string
	Err           error
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

func (m *MockLLM) Calls() int { return len(m.Prompts) }

// MockValidator knows a fixed set of artists, keyed case-insensitively.
type MockValidator struct {
	Known   map[string]*model.ArtistInfo
	Lookups []string
}

func (m *MockValidator) GetArtist(ctx context.Context, name string) (*model.ArtistInfo, error) {
	m.Lookups = append(m.Lookups, name)
	return m.Known[strings.ToLower(name)], nil
}

func (m *MockValidator) SearchArtist(ctx context.Context, query string) (*model.ArtistInfo, error) {
	return m.Known[strings.ToLower(query)], nil
}

// MockSimilarity serves canned neighbourhoods and counts calls.
type MockSimilarity struct {
	mu      sync.Mutex
	Similar map[string][]model.SimilarArtist
	calls   int
}

func (m *MockSimilarity) GetSimilar(ctx context.Context, name string, limit int) ([]model.SimilarArtist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.Similar[strings.ToLower(name)], nil
}

func (m *MockSimilarity) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
