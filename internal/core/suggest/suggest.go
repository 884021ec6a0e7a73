// Package suggest asks a language model for fusion candidates and
// decodes its free-form completions into a strict contract. The
// upstream call and the response interpretation are kept separate so
// tests can feed canned completion text straight into the decoder.
package suggest

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/musecraft/musecraft/internal/config"
	"github.com/musecraft/musecraft/internal/core/common"
	"github.com/musecraft/musecraft/internal/core/model"
	"github.com/musecraft/musecraft/internal/llm"
)

// NoMatchSentinel is the name a model returns when it declines to
// suggest anything.
const NoMatchSentinel = "NO_MATCH"

const maxBioLen = 300

// ElementInput carries one side of a fusion request, with optional
// metadata hints the prompt can embed.
type ElementInput struct {
	Name string
	Type model.ElementType
	Bio  string
	Tags []string
}

type Suggester struct {
	LLM     llm.LLMClient
	Prompts config.FusionPrompts
}

func NewSuggester(llmClient llm.LLMClient, prompts config.FusionPrompts) *Suggester {
	return &Suggester{
		LLM:     llmClient,
		Prompts: prompts,
	}
}

// Suggest produces one fusion candidate for the pair, or (nil, nil)
// when the model has nothing usable: NO_MATCH, unparseable output and
// contract violations all read as "no suggestion available". Only the
// upstream call itself surfaces as an error.
func (s *Suggester) Suggest(ctx context.Context, a, b ElementInput, excludedNames []string) (*model.Suggestion, error) {
	outputType := model.KindOf(a.Type, b.Type).OutputType()
	prompt := s.BuildPrompt(a, b, excludedNames)

	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestion: %w", err)
	}

	suggestion, err := Decode(response, outputType)
	if err != nil {
		log.Printf("discarding unparseable completion: %v", err)
		return nil, nil
	}
	return suggestion, nil
}

// BuildPrompt picks the genre-fusion or artist-intersection template
// based on the pair's output type.
func (s *Suggester) BuildPrompt(a, b ElementInput, excludedNames []string) string {
	failedNote := ""
	if len(excludedNames) > 0 {
		failedNote = fmt.Sprintf("\n\nDO NOT suggest these (they don't exist or weren't found): %s",
			strings.Join(excludedNames, ", "))
	}

	if model.KindOf(a.Type, b.Type) == model.GenreGenre {
		return fmt.Sprintf(s.Prompts.GenreFusion, a.Name, b.Name, failedNote)
	}
	return fmt.Sprintf(s.Prompts.ArtistBlend, describeElement(a), describeElement(b), failedNote)
}

// Decode extracts the suggestion JSON from a completion. Returns
// (nil, nil) for the NO_MATCH sentinel, an error for anything that
// violates the contract.
func Decode(response string, outputType model.ElementType) (*model.Suggestion, error) {
	payload, err := common.ParseJSON[struct {
		Name       string  `json:"name"`
		Reasoning  string  `json:"reasoning"`
		Confidence float64 `json:"confidence"`
		Summary    string  `json:"summary"`
	}](response)
	if err != nil {
		return nil, err
	}

	if payload.Name == NoMatchSentinel {
		return nil, nil
	}
	if strings.TrimSpace(payload.Name) == "" {
		return nil, fmt.Errorf("suggestion missing name")
	}

	return &model.Suggestion{
		Name:       strings.TrimSpace(payload.Name),
		Reasoning:  payload.Reasoning,
		Confidence: common.Clamp01(payload.Confidence),
		Summary:    payload.Summary,
		Type:       outputType,
	}, nil
}

func describeElement(e ElementInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)", e.Name, e.Type)
	if len(e.Tags) > 0 {
		tags := e.Tags
		if len(tags) > 5 {
			tags = tags[:5]
		}
		fmt.Fprintf(&sb, "\nTags: %s", strings.Join(tags, ", "))
	}
	if e.Bio != "" {
		bio := stripTags(e.Bio)
		if len(bio) > maxBioLen {
			bio = bio[:maxBioLen]
		}
		fmt.Fprintf(&sb, "\nBio: %s", bio)
	}
	return sb.String()
}

// stripTags removes HTML markup that lastfm bios carry.
func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
