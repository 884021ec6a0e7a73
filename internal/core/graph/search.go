// Package graph finds "midpoint" artists by walking the similarity
// graph that an external provider exposes one neighbourhood at a time.
// The graph is never materialized: each search rebuilds the slice of it
// that the two frontiers touch, memoized through a bounded cache.
package graph

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/musecraft/musecraft/internal/core/model"
)

// SimilarityProvider hands back a ranked similar-artist list for one
// name. Implemented by the lastfm client.
type SimilarityProvider interface {
	GetSimilar(ctx context.Context, name string, limit int) ([]model.SimilarArtist, error)
}

type Options struct {
	SimilarLimit int           // entries requested per neighbourhood
	CacheSize    int           // max memoized neighbourhoods
	CacheTTL     time.Duration // memoization lifetime
	Parallelism  int           // concurrent provider calls per level
}

type Searcher struct {
	provider SimilarityProvider
	cache    *expirable.LRU[string, []model.SimilarArtist]
	opts     Options
}

func NewSearcher(provider SimilarityProvider, opts Options) *Searcher {
	if opts.SimilarLimit == 0 {
		opts.SimilarLimit = 20
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = 4096
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.Parallelism == 0 {
		opts.Parallelism = 8
	}
	return &Searcher{
		provider: provider,
		cache:    expirable.NewLRU[string, []model.SimilarArtist](opts.CacheSize, nil, opts.CacheTTL),
		opts:     opts,
	}
}

// getSimilar memoizes provider responses under the lowercased name.
// Provider failures degrade to an empty list and are cached too: a
// missing neighbourhood is a valid terminal state, and the TTL bounds
// how long a transient failure sticks.
func (s *Searcher) getSimilar(ctx context.Context, name string) []model.SimilarArtist {
	key := strings.ToLower(name)
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	similar, err := s.provider.GetSimilar(ctx, name, s.opts.SimilarLimit)
	if err != nil {
		log.Printf("similarity lookup failed for %q: %v", name, err)
		similar = nil
	}
	s.cache.Add(key, similar)
	return similar
}

// FindIntersection runs a level-synchronized bidirectional BFS from
// artistA and artistB and returns the best-scoring artist both sides
// reach, or nil if the frontiers never meet within maxDepth levels.
// Expansion stops at the first depth that yields any intersection:
// a shared neighbour found early is a closer blend than a
// higher-scoring node further out.
func (s *Searcher) FindIntersection(ctx context.Context, artistA, artistB string, maxDepth int, exclude []string) *model.Intersection {
	excluded := excludeSet(exclude)
	excluded[strings.ToLower(artistA)] = struct{}{}
	excluded[strings.ToLower(artistB)] = struct{}{}

	originA := &model.SearchNode{Name: artistA, Depth: 0, Similarity: 1, Path: []string{artistA}}
	originB := &model.SearchNode{Name: artistB, Depth: 0, Similarity: 1, Path: []string{artistB}}

	visitedA := map[string]*model.SearchNode{strings.ToLower(artistA): originA}
	visitedB := map[string]*model.SearchNode{strings.ToLower(artistB): originB}

	frontierA := []*model.SearchNode{originA}
	frontierB := []*model.SearchNode{originB}

	var intersections []model.Intersection

	for depth := 1; depth <= maxDepth; depth++ {
		similarA := s.fetchFrontier(ctx, frontierA)
		similarB := s.fetchFrontier(ctx, frontierB)

		frontierA = expand(depth, frontierA, similarA, visitedA, visitedB, excluded, &intersections, false)
		frontierB = expand(depth, frontierB, similarB, visitedB, visitedA, excluded, &intersections, true)

		if len(intersections) > 0 {
			break
		}
		if len(frontierA) == 0 && len(frontierB) == 0 {
			break
		}
	}

	if len(intersections) == 0 {
		return nil
	}

	// Stable order: best combined score first, name as the tie-break so
	// identical input data always resolves the same way.
	sort.Slice(intersections, func(i, j int) bool {
		if intersections[i].CombinedScore != intersections[j].CombinedScore {
			return intersections[i].CombinedScore > intersections[j].CombinedScore
		}
		return intersections[i].Artist < intersections[j].Artist
	})

	best := intersections[0]
	return &best
}

// FindArtistForGenre picks a representative for "artist pulled toward
// genre": the highest-ranked similar artist not yet excluded.
// Similarity rank stands in for genre affinity; tags are deliberately
// not verified (that would cost a lookup per candidate).
func (s *Searcher) FindArtistForGenre(ctx context.Context, genre, artist string, exclude []string) *model.Intersection {
	excluded := excludeSet(exclude)
	excluded[strings.ToLower(artist)] = struct{}{}

	for _, sim := range s.getSimilar(ctx, artist) {
		if _, skip := excluded[strings.ToLower(sim.Name)]; skip {
			continue
		}
		return &model.Intersection{
			Artist:        sim.Name,
			ScoreFromA:    sim.Match,
			ScoreFromB:    1,
			CombinedScore: sim.Match,
			DepthA:        1,
			DepthB:        0,
			PathA:         []string{artist, sim.Name},
			PathB:         []string{genre},
		}
	}
	return nil
}

// fetchFrontier resolves each frontier node's neighbourhood, fanning
// out provider calls with bounded concurrency. Results keep frontier
// order so expansion stays deterministic.
func (s *Searcher) fetchFrontier(ctx context.Context, frontier []*model.SearchNode) [][]model.SimilarArtist {
	results := make([][]model.SimilarArtist, len(frontier))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)
	for i, node := range frontier {
		i, node := i, node
		g.Go(func() error {
			results[i] = s.getSimilar(gctx, node.Name)
			return nil
		})
	}
	// Workers never return errors; degradation happens in getSimilar.
	_ = g.Wait()

	return results
}

// expand grows one side's frontier by a level, recording every meeting
// point with the other side. swapped flips score/path attribution so
// intersections always report the A side first.
func expand(depth int, frontier []*model.SearchNode, similar [][]model.SimilarArtist,
	visited, other map[string]*model.SearchNode, excluded map[string]struct{},
	intersections *[]model.Intersection, swapped bool) []*model.SearchNode {

	var next []*model.SearchNode
	for i, node := range frontier {
		for _, sim := range similar[i] {
			key := strings.ToLower(sim.Name)
			if _, skip := excluded[key]; skip {
				continue
			}
			if _, seen := visited[key]; seen {
				continue
			}

			path := make([]string, 0, len(node.Path)+1)
			path = append(path, node.Path...)
			path = append(path, sim.Name)

			newNode := &model.SearchNode{
				Name:       sim.Name,
				Depth:      depth,
				Similarity: node.Similarity * sim.Match,
				Path:       path,
			}
			visited[key] = newNode
			next = append(next, newNode)

			if match, ok := other[key]; ok {
				hit := model.Intersection{
					Artist:        sim.Name,
					ScoreFromA:    newNode.Similarity,
					ScoreFromB:    match.Similarity,
					CombinedScore: newNode.Similarity * match.Similarity,
					DepthA:        newNode.Depth,
					DepthB:        match.Depth,
					PathA:         newNode.Path,
					PathB:         match.Path,
				}
				if swapped {
					hit.ScoreFromA, hit.ScoreFromB = hit.ScoreFromB, hit.ScoreFromA
					hit.DepthA, hit.DepthB = hit.DepthB, hit.DepthA
					hit.PathA, hit.PathB = hit.PathB, hit.PathA
				}
				*intersections = append(*intersections, hit)
			}
		}
	}
	return next
}

func excludeSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names)+2)
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}
