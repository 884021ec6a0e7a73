package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musecraft/musecraft/internal/config"
	"github.com/musecraft/musecraft/internal/core/model"
)

type mockLLM struct {
	Response string
	Err      error
	Prompt   string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

var testPrompts = config.FusionPrompts{
	GenreFusion: "genres: %s + %s%s",
	ArtistBlend: "elements: %s | %s%s",
}

func TestDecodeValidSuggestion(t *testing.T) {
	response := `Here you go:
{"name": "Synthwave", "reasoning": "retro electronics over rock drive", "confidence": 0.8}`

	sug, err := Decode(response, model.TypeGenre)
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.Equal(t, "Synthwave", sug.Name)
	assert.Equal(t, 0.8, sug.Confidence)
	assert.Equal(t, model.TypeGenre, sug.Type)
}

func TestDecodeNoMatchSentinel(t *testing.T) {
	sug, err := Decode(`{"name": "NO_MATCH"}`, model.TypeArtist)
	assert.NoError(t, err)
	assert.Nil(t, sug)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode("sorry, nothing comes to mind", model.TypeArtist)
	assert.Error(t, err)

	_, err = Decode(`{"reasoning": "missing the name field"}`, model.TypeArtist)
	assert.Error(t, err)
}

func TestDecodeClampsConfidence(t *testing.T) {
	sug, err := Decode(`{"name": "X", "confidence": 1.4}`, model.TypeArtist)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sug.Confidence)

	sug, err = Decode(`{"name": "X", "confidence": -3}`, model.TypeArtist)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sug.Confidence)
}

func TestSuggestDerivesOutputType(t *testing.T) {
	llm := &mockLLM{Response: `{"name": "Synthwave", "confidence": 0.8}`}
	s := NewSuggester(llm, testPrompts)

	sug, err := s.Suggest(context.Background(),
		ElementInput{Name: "Rock", Type: model.TypeGenre},
		ElementInput{Name: "Electronic", Type: model.TypeGenre}, nil)
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.Equal(t, model.TypeGenre, sug.Type)

	llm.Response = `{"name": "Burial", "confidence": 0.7}`
	sug, err = s.Suggest(context.Background(),
		ElementInput{Name: "Radiohead", Type: model.TypeArtist},
		ElementInput{Name: "Electronic", Type: model.TypeGenre}, nil)
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.Equal(t, model.TypeArtist, sug.Type)
}

func TestSuggestSwallowsUnparseableCompletion(t *testing.T) {
	llm := &mockLLM{Response: "no json here"}
	s := NewSuggester(llm, testPrompts)

	sug, err := s.Suggest(context.Background(),
		ElementInput{Name: "Rock", Type: model.TypeGenre},
		ElementInput{Name: "Jazz", Type: model.TypeGenre}, nil)
	assert.NoError(t, err)
	assert.Nil(t, sug)
}

func TestSuggestPropagatesUpstreamError(t *testing.T) {
	llm := &mockLLM{Err: errors.New("connection refused")}
	s := NewSuggester(llm, testPrompts)

	_, err := s.Suggest(context.Background(),
		ElementInput{Name: "Rock", Type: model.TypeGenre},
		ElementInput{Name: "Jazz", Type: model.TypeGenre}, nil)
	assert.Error(t, err)
}

func TestBuildPromptEmbedsExclusions(t *testing.T) {
	s := NewSuggester(&mockLLM{}, testPrompts)

	prompt := s.BuildPrompt(
		ElementInput{Name: "Rock", Type: model.TypeGenre},
		ElementInput{Name: "Jazz", Type: model.TypeGenre},
		[]string{"Fusion", "Jazz Rock"})
	assert.Contains(t, prompt, "DO NOT suggest these")
	assert.Contains(t, prompt, "Fusion, Jazz Rock")

	prompt = s.BuildPrompt(
		ElementInput{Name: "Rock", Type: model.TypeGenre},
		ElementInput{Name: "Jazz", Type: model.TypeGenre}, nil)
	assert.NotContains(t, prompt, "DO NOT")
}

func TestBuildPromptStripsBioMarkup(t *testing.T) {
	s := NewSuggester(&mockLLM{}, testPrompts)

	prompt := s.BuildPrompt(
		ElementInput{
			Name: "Radiohead", Type: model.TypeArtist,
			Bio:  `Radiohead are an <a href="x">English</a> rock band`,
			Tags: []string{"rock", "alternative", "electronic", "indie", "british", "experimental"},
		},
		ElementInput{Name: "Burial", Type: model.TypeArtist}, nil)

	assert.Contains(t, prompt, "Radiohead are an English rock band")
	assert.NotContains(t, prompt, "<a href")
	// Tag hints are capped at five.
	assert.Contains(t, prompt, "rock, alternative, electronic, indie, british")
	assert.NotContains(t, prompt, "experimental")
}
