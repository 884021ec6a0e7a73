package model

// SimilarArtist is one entry of a similarity provider response,
// ordered upstream by descending relevance. Match is in [0,1].
type SimilarArtist struct {
	Name  string  `json:"name"`
	Match float64 `json:"match"`
}

// SearchNode tracks one artist reached during bidirectional search.
// Similarity is the product of edge match scores along Path.
type SearchNode struct {
	Name       string
	Depth      int
	Similarity float64
	Path       []string
}

// Intersection is an artist found on both frontiers. CombinedScore is
// the product of the cumulative similarities from each origin.
type Intersection struct {
	Artist        string   `json:"artist"`
	ScoreFromA    float64  `json:"score_from_a"`
	ScoreFromB    float64  `json:"score_from_b"`
	CombinedScore float64  `json:"combined_score"`
	DepthA        int      `json:"depth_a"`
	DepthB        int      `json:"depth_b"`
	PathA         []string `json:"path_a"`
	PathB         []string `json:"path_b"`
}

// ArtistInfo is the metadata shape returned by the lookup/validation
// service.
type ArtistInfo struct {
	Name      string   `json:"name"`
	URL       string   `json:"url"`
	Listeners int      `json:"listeners"`
	Playcount int      `json:"playcount"`
	Bio       string   `json:"bio,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Suggestion is a decoded LLM fusion proposal.
type Suggestion struct {
	Name       string      `json:"name"`
	Reasoning  string      `json:"reasoning"`
	Confidence float64     `json:"confidence"`
	Summary    string      `json:"summary,omitempty"`
	Type       ElementType `json:"type"`
}

// CombineResult is the orchestrator's response for one resolution call.
// NoMatch marks a domain-level "nothing found" outcome, not a failure.
type CombineResult struct {
	Combination *Combination `json:"combination,omitempty"`
	Result      *Element     `json:"result,omitempty"`
	Artist      *ArtistInfo  `json:"artist,omitempty"`
	Cached      bool         `json:"cached"`
	NoMatch     bool         `json:"noMatch,omitempty"`
}
