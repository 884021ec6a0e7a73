// Package core implements the fusion resolution engine: given two
// elements it decides a single output element via cached lookups,
// similarity-graph search and LLM suggestions.
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/musecraft/musecraft/internal/core/graph"
	"github.com/musecraft/musecraft/internal/core/model"
	"github.com/musecraft/musecraft/internal/core/suggest"
	"github.com/musecraft/musecraft/internal/store"
)

var (
	ErrMissingElement  = errors.New("both elementA and elementB are required")
	ErrSelfCombination = errors.New("cannot combine element with itself")
	ErrElementNotFound = errors.New("element not found")
)

// ArtistValidator confirms that a suggested name resolves to a real
// artist. Implemented by the lastfm client.
type ArtistValidator interface {
	GetArtist(ctx context.Context, name string) (*model.ArtistInfo, error)
	SearchArtist(ctx context.Context, query string) (*model.ArtistInfo, error)
}

// Fusion orchestrates one resolution request:
// CacheCheck -> StrategySelect -> {GraphSearch | LLMFallback} ->
// Validate -> Persist -> Respond.
type Fusion struct {
	Store      store.Store
	Collection store.Collection
	Searcher   *graph.Searcher
	Suggester  *suggest.Suggester
	Validator  ArtistValidator

	MaxDepth       int
	MaxLLMAttempts int

	// Injectable for deterministic tests.
	UUIDGenerator func() string
	Now           func() time.Time
}

func NewFusion(st store.Store, coll store.Collection, searcher *graph.Searcher, suggester *suggest.Suggester, validator ArtistValidator) *Fusion {
	return &Fusion{
		Store:          st,
		Collection:     coll,
		Searcher:       searcher,
		Suggester:      suggester,
		Validator:      validator,
		MaxDepth:       3,
		MaxLLMAttempts: 3,
		UUIDGenerator:  func() string { return uuid.New().String() },
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

// resolution is what a strategy produces before persistence.
type resolution struct {
	name       string
	elemType   model.ElementType
	confidence float64
	reasoning  string
	summary    string
	artist     *model.ArtistInfo // enrichment for display, may be nil
}

// Combine resolves the unordered pair (idA, idB) for an optional user.
// Client-input problems surface as sentinel errors before any external
// call; a resolution that finds nothing is a NoMatch result, not an
// error.
func (f *Fusion) Combine(ctx context.Context, userID, idA, idB string) (*model.CombineResult, error) {
	if idA == "" || idB == "" {
		return nil, ErrMissingElement
	}
	if idA == idB {
		return nil, ErrSelfCombination
	}

	elA, err := f.Store.GetElement(ctx, idA)
	if err != nil {
		return nil, err
	}
	elB, err := f.Store.GetElement(ctx, idB)
	if err != nil {
		return nil, err
	}
	if elA == nil || elB == nil {
		return nil, ErrElementNotFound
	}

	// CacheCheck: an existing row for the canonical pair short-circuits
	// the whole pipeline.
	if existing, err := f.Store.GetCombination(ctx, idA, idB); err != nil {
		return nil, err
	} else if existing != nil {
		result, err := f.Store.GetElement(ctx, existing.Result)
		if err != nil {
			return nil, err
		}
		return &model.CombineResult{Combination: existing, Result: result, Cached: true}, nil
	}

	// Known artist names are excluded from every strategy so the game
	// keeps producing new discoveries.
	excludeArtists, err := f.Store.ListElementNames(ctx, model.TypeArtist)
	if err != nil {
		return nil, err
	}

	var res *resolution
	switch model.KindOf(elA.Type, elB.Type) {
	case model.ArtistArtist:
		res = f.resolveArtistPair(ctx, elA, elB, excludeArtists)
	case model.ArtistGenre:
		res = f.resolveArtistGenre(ctx, elA, elB, excludeArtists)
	case model.GenreGenre:
		res = f.resolveGenrePair(ctx, elA, elB)
	}

	if res == nil || res.name == "" {
		return &model.CombineResult{NoMatch: true}, nil
	}

	return f.persist(ctx, userID, idA, idB, res)
}

// resolveArtistPair: bidirectional graph search first, LLM fallback
// with validation retries when the frontiers never meet.
func (f *Fusion) resolveArtistPair(ctx context.Context, elA, elB *model.Element, exclude []string) *resolution {
	log.Printf("Finding intersection: %s <-> %s", elA.Name, elB.Name)

	if hit := f.Searcher.FindIntersection(ctx, elA.Name, elB.Name, f.MaxDepth, exclude); hit != nil {
		log.Printf("Intersection found: %s (score: %.3f)", hit.Artist, hit.CombinedScore)
		return &resolution{
			name:       hit.Artist,
			elemType:   model.TypeArtist,
			confidence: hit.CombinedScore,
			reasoning:  intersectionReasoning(hit),
			artist:     f.lookupArtist(ctx, hit.Artist),
		}
	}

	log.Printf("No graph intersection found, falling back to LLM")

	inputA := f.elementInput(ctx, elA)
	inputB := f.elementInput(ctx, elB)

	res := f.suggestWithValidation(ctx, inputA, inputB, exclude)
	if res != nil {
		res.reasoning = "(LLM fallback) " + res.reasoning
	}
	return res
}

// resolveArtistGenre: single-sided expansion from the artist, ranked
// similarity standing in for genre affinity. No LLM fallback on this
// path.
func (f *Fusion) resolveArtistGenre(ctx context.Context, elA, elB *model.Element, exclude []string) *resolution {
	artist, genre := elA, elB
	if elA.Type == model.TypeGenre {
		artist, genre = elB, elA
	}

	log.Printf("Finding artist for: %s + %s", artist.Name, genre.Name)

	hit := f.Searcher.FindArtistForGenre(ctx, genre.Name, artist.Name, exclude)
	if hit == nil {
		return nil
	}
	return &resolution{
		name:       hit.Artist,
		elemType:   model.TypeArtist,
		confidence: hit.CombinedScore,
		reasoning:  fmt.Sprintf("Similar to %s, in the direction of %s", artist.Name, genre.Name),
		artist:     f.lookupArtist(ctx, hit.Artist),
	}
}

// resolveGenrePair: no similarity graph exists over genres, so the LLM
// is the sole strategy. Genre outputs skip artist validation.
func (f *Fusion) resolveGenrePair(ctx context.Context, elA, elB *model.Element) *resolution {
	log.Printf("Genre fusion: %s + %s", elA.Name, elB.Name)

	sug, err := f.Suggester.Suggest(ctx,
		suggest.ElementInput{Name: elA.Name, Type: elA.Type},
		suggest.ElementInput{Name: elB.Name, Type: elB.Type},
		nil)
	if err != nil {
		log.Printf("LLM suggestion failed: %v", err)
		return nil
	}
	if sug == nil {
		return nil
	}
	return &resolution{
		name:       sug.Name,
		elemType:   sug.Type,
		confidence: sug.Confidence,
		reasoning:  sug.Reasoning,
		summary:    sug.Summary,
	}
}

// suggestWithValidation retries the LLM until a suggestion passes
// artist validation, feeding each rejected name back into the
// exclusion list. When every attempt fails validation the last
// unvalidated suggestion is still accepted: for a game, best effort
// beats a dead end.
func (f *Fusion) suggestWithValidation(ctx context.Context, a, b suggest.ElementInput, exclude []string) *resolution {
	excluded := append([]string(nil), exclude...)
	var last *model.Suggestion

	for attempt := 0; attempt < f.MaxLLMAttempts; attempt++ {
		sug, err := f.Suggester.Suggest(ctx, a, b, excluded)
		if err != nil {
			log.Printf("LLM suggestion failed: %v", err)
			break
		}
		if sug == nil {
			break
		}
		last = sug

		if info := f.validateArtist(ctx, sug.Name); info != nil {
			return &resolution{
				name:       info.Name, // canonical spelling from the provider
				elemType:   sug.Type,
				confidence: sug.Confidence,
				reasoning:  sug.Reasoning,
				summary:    sug.Summary,
				artist:     info,
			}
		}

		log.Printf("Suggested artist %q failed validation, retrying", sug.Name)
		excluded = append(excluded, sug.Name)
	}

	if last == nil {
		return nil
	}
	return &resolution{
		name:       last.Name,
		elemType:   last.Type,
		confidence: last.Confidence,
		reasoning:  last.Reasoning,
		summary:    last.Summary,
	}
}

// persist looks up or creates the result element, inserts the cache
// row for the canonical pair and records the discovery for the user.
func (f *Fusion) persist(ctx context.Context, userID, idA, idB string, res *resolution) (*model.CombineResult, error) {
	now := f.Now()

	element, err := f.Store.GetElementByName(ctx, res.name)
	if err != nil {
		return nil, err
	}
	if element == nil {
		element = &model.Element{
			ID:          f.UUIDGenerator(),
			Name:        res.name,
			Type:        res.elemType,
			SearchQuery: res.name,
			CreatedAt:   now,
		}
		if err := f.Store.SaveElement(ctx, element); err != nil {
			// A concurrent request may have created the same name; the
			// uniqueness constraint rejects ours, so adopt theirs.
			existing, lookupErr := f.Store.GetElementByName(ctx, res.name)
			if lookupErr != nil || existing == nil {
				return nil, err
			}
			element = existing
		}
	}

	a, b := model.SortPair(idA, idB)
	combo := &model.Combination{
		ID:         f.UUIDGenerator(),
		ElementA:   a,
		ElementB:   b,
		Result:     element.ID,
		Confidence: res.confidence,
		Reasoning:  res.reasoning,
		Summary:    res.summary,
		CreatedAt:  now,
	}

	stored, err := f.Store.SaveCombination(ctx, combo)
	if err != nil {
		return nil, err
	}

	// Losing the insert race is a cache hit in disguise: respond with
	// the winner's row and its result element.
	cached := stored.ID != combo.ID
	if cached {
		if winner, err := f.Store.GetElement(ctx, stored.Result); err == nil && winner != nil {
			element = winner
		}
		res.artist = nil
	}

	if userID != "" && f.Collection != nil {
		if err := f.Collection.AddToCollection(ctx, userID, element.ID); err != nil {
			log.Printf("Failed to record discovery for user %s: %v", userID, err)
		}
	}

	return &model.CombineResult{
		Combination: stored,
		Result:      element,
		Artist:      res.artist,
		Cached:      cached,
	}, nil
}

// validateArtist resolves a name through exact lookup, then fuzzy
// search. Upstream failures read as "not validated".
func (f *Fusion) validateArtist(ctx context.Context, name string) *model.ArtistInfo {
	info, err := f.Validator.GetArtist(ctx, name)
	if err != nil {
		log.Printf("Artist lookup failed for %q: %v", name, err)
		return nil
	}
	if info != nil {
		return info
	}
	info, err = f.Validator.SearchArtist(ctx, name)
	if err != nil {
		log.Printf("Artist search failed for %q: %v", name, err)
		return nil
	}
	return info
}

// lookupArtist fetches display enrichment; failure just means no
// enrichment.
func (f *Fusion) lookupArtist(ctx context.Context, name string) *model.ArtistInfo {
	info, err := f.Validator.GetArtist(ctx, name)
	if err != nil {
		log.Printf("Artist lookup failed for %q: %v", name, err)
		return nil
	}
	return info
}

// elementInput packs an element plus whatever metadata hints are
// available into the suggester's input shape.
func (f *Fusion) elementInput(ctx context.Context, el *model.Element) suggest.ElementInput {
	input := suggest.ElementInput{Name: el.Name, Type: el.Type}
	if el.Type != model.TypeArtist {
		return input
	}
	if info := f.lookupArtist(ctx, el.Name); info != nil {
		input.Bio = info.Bio
		input.Tags = info.Tags
	}
	return input
}

func intersectionReasoning(hit *model.Intersection) string {
	reversed := make([]string, len(hit.PathB))
	for i, name := range hit.PathB {
		reversed[len(hit.PathB)-1-i] = name
	}
	return fmt.Sprintf("Found via listener overlap: %s meets %s",
		strings.Join(hit.PathA, " -> "), strings.Join(reversed, " -> "))
}
