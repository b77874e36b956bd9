package types

// MatchOrigin records which search tier produced a result.
type MatchOrigin string

const (
	OriginExact           MatchOrigin = "exact"
	OriginCaseInsensitive MatchOrigin = "case_insensitive"
	OriginSemantic        MatchOrigin = "semantic"
)

// ScoredResult is the uniform record produced for every search hit,
// regardless of which tier or store client shape it came from.
type ScoredResult struct {
	// Identification
	Name string
	Path string
	Kind ComponentKind

	// Scoring
	Score  float64 // normalized to [0, 1]
	Origin MatchOrigin

	// Metadata
	DocSummary string

	// Component is the live registry reference for Path. It is nil when the
	// registry was rehydrated from the store without re-walking.
	Component *Component
}

// Validate checks if the search result is valid.
func (r *ScoredResult) Validate() error {
	if r.Path == "" {
		return ErrMissingPath
	}
	if r.Score < 0 || r.Score > 1 {
		return ErrInvalidScore
	}
	return nil
}
