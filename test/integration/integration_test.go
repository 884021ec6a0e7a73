//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musecraft/musecraft/internal/config"
	"github.com/musecraft/musecraft/internal/core"
	"github.com/musecraft/musecraft/internal/core/graph"
	"github.com/musecraft/musecraft/internal/core/model"
	"github.com/musecraft/musecraft/internal/core/suggest"
	"github.com/musecraft/musecraft/internal/driver"
	"github.com/musecraft/musecraft/internal/store"
)

// stubLLM avoids a model dependency: the pipeline under test is the
// storage and orchestration path, not completion quality.
type stubLLM struct {
	response string
}

func (s *stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return s.response, nil
}

type stubSimilarity struct{}

func (stubSimilarity) GetSimilar(ctx context.Context, name string, limit int) ([]model.SimilarArtist, error) {
	return nil, nil
}

type stubValidator struct{}

func (stubValidator) GetArtist(ctx context.Context, name string) (*model.ArtistInfo, error) {
	return nil, nil
}

func (stubValidator) SearchArtist(ctx context.Context, query string) (*model.ArtistInfo, error) {
	return nil, nil
}

func TestCombinePipeline(t *testing.T) {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}

	d, err := driver.NewMemgraphDriver(uri, os.Getenv("MEMGRAPH_USER"), os.Getenv("MEMGRAPH_PASSWORD"))
	require.NoError(t, err)
	ctx := context.Background()
	defer d.Close(ctx)

	st := store.NewGraphStore(d)
	require.NoError(t, st.EnsureSchema(ctx))

	// Unique names per run so reruns never collide with leftovers.
	run := uuid.New().String()[:8]
	nameA := fmt.Sprintf("ITRock-%s", run)
	nameB := fmt.Sprintf("ITElectronic-%s", run)
	nameResult := fmt.Sprintf("ITSynthwave-%s", run)

	now := time.Now().UTC()
	elA := &model.Element{ID: uuid.New().String(), Name: nameA, Type: model.TypeGenre, CreatedAt: now}
	elB := &model.Element{ID: uuid.New().String(), Name: nameB, Type: model.TypeGenre, CreatedAt: now}
	require.NoError(t, st.SaveElement(ctx, elA))
	require.NoError(t, st.SaveElement(ctx, elB))

	llmClient := &stubLLM{response: fmt.Sprintf(
		`{"name": "%s", "reasoning": "integration stub", "confidence": 0.8}`, nameResult)}

	fusion := core.NewFusion(st, st,
		graph.NewSearcher(stubSimilarity{}, graph.Options{}),
		suggest.NewSuggester(llmClient, config.FusionPrompts{
			GenreFusion: "genres: %s + %s%s",
			ArtistBlend: "elements: %s | %s%s",
		}),
		stubValidator{})

	first, err := fusion.Combine(ctx, "", elA.ID, elB.ID)
	require.NoError(t, err)
	require.NotNil(t, first.Combination)
	assert.False(t, first.Cached)
	assert.Equal(t, nameResult, first.Result.Name)

	// Reversed order must read back the same row.
	second, err := fusion.Combine(ctx, "", elB.ID, elA.ID)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Combination.ID, second.Combination.ID)
	assert.Equal(t, first.Result.ID, second.Result.ID)

	// Verify the stored row directly.
	res, err := d.ExecuteQuery(ctx,
		`MATCH (c:Combination {pair_key: $pair_key}) RETURN count(c) AS count`,
		map[string]interface{}{"pair_key": model.PairKey(elA.ID, elB.ID)})
	require.NoError(t, err)
	require.NotEmpty(t, res.Records)
	count, _ := res.Records[0].Get("count")
	assert.Equal(t, int64(1), count)

	// Cleanup
	for _, id := range []string{elA.ID, elB.ID, first.Result.ID} {
		_, _ = d.ExecuteQuery(ctx, `MATCH (e:Element {id: $id}) DETACH DELETE e`,
			map[string]interface{}{"id": id})
	}
	_, _ = d.ExecuteQuery(ctx, `MATCH (c:Combination {pair_key: $pair_key}) DETACH DELETE c`,
		map[string]interface{}{"pair_key": model.PairKey(elA.ID, elB.ID)})
}
