package model

import "time"

type ElementType string

const (
	TypeGenre  ElementType = "genre"
	TypeArtist ElementType = "artist"
)

// Element is a node in the combination game: a genre or an artist.
// Names are globally unique; elements are only ever created, never deleted.
type Element struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        ElementType `json:"type"`
	SearchQuery string      `json:"search_query,omitempty"`
	Seed        bool        `json:"seed,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Combination is the resolution cache row for an unordered element pair.
// ElementA/ElementB are stored in canonical order (see PairKey), so
// (A,B) and (B,A) resolve to the same row.
type Combination struct {
	ID         string    `json:"id"`
	ElementA   string    `json:"element_a"`
	ElementB   string    `json:"element_b"`
	Result     string    `json:"result"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	Summary    string    `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SortPair returns the two element ids in canonical order.
func SortPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// PairKey is the cache key for an unordered element pair.
func PairKey(a, b string) string {
	a, b = SortPair(a, b)
	return a + "|" + b
}

// PairKind tags the type pairing of the two inputs. The orchestrator
// resolves it once at entry and dispatches per variant.
type PairKind int

const (
	GenreGenre PairKind = iota
	ArtistArtist
	ArtistGenre
)

func KindOf(a, b ElementType) PairKind {
	switch {
	case a == TypeGenre && b == TypeGenre:
		return GenreGenre
	case a == TypeArtist && b == TypeArtist:
		return ArtistArtist
	default:
		return ArtistGenre
	}
}

// OutputType derives the result element type from the input pairing:
// genre+genre yields a genre, everything else yields an artist.
func (k PairKind) OutputType() ElementType {
	if k == GenreGenre {
		return TypeGenre
	}
	return TypeArtist
}
