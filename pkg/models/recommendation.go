package models

import "time"

// Strategy source tags.
const (
	SourceContent           = "content"
	SourceContentCold       = "content-cold"
	SourceCollaborativeMF   = "collaborative-matrix"
	SourceCollaborativeUser = "collaborative-user"
	SourceCollaborativeCold = "collaborative-cold"
	SourceSequence          = "sequence"
	SourceSequenceCold      = "sequence-cold"
	SourceRule              = "rule-based"
	SourceRuleCold          = "rule-cold"
	SourceHybrid            = "hybrid"
)

// Explanation reason tags. Display strings belong to the presentation layer.
const (
	ReasonStrongContent   = "STRONG_CONTENT"
	ReasonSimilarUsers    = "SIMILAR_USERS"
	ReasonSessionFlow     = "SESSION_FLOW"
	ReasonOnboardingMatch = "ONBOARDING_MATCH"
)

// ScoreRecord is a single strategy's score for one item, in [0,1].
type ScoreRecord struct {
	ItemID int64   `json:"item_id"`
	Item   *Movie  `json:"item,omitempty"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// StrategyWeights is a point on the 4-simplex: non-negative, summing to 1.
type StrategyWeights struct {
	Content       float64 `json:"content"`
	Collaborative float64 `json:"collaborative"`
	Sequence      float64 `json:"sequence"`
	Rule          float64 `json:"rule"`
}

// HybridRecord is the fused score for one item. Score is the weighted sum of
// the four strategy scores before diversity, and never grows afterwards.
type HybridRecord struct {
	ItemID             int64           `json:"item_id"`
	Item               *Movie          `json:"item,omitempty"`
	ContentScore       float64         `json:"content_score"`
	CollaborativeScore float64         `json:"collaborative_score"`
	SequenceScore      float64         `json:"sequence_score"`
	RuleScore          float64         `json:"rule_score"`
	Weights            StrategyWeights `json:"weights"`
	Score              float64         `json:"score"`
	Source             string          `json:"source"`
	Reasons            []string        `json:"reasons,omitempty"`
}

// RecommendationResponse is the HTTP payload for a recommendation request.
type RecommendationResponse struct {
	UserID          string         `json:"user_id"`
	Recommendations []HybridRecord `json:"recommendations"`
	GeneratedAt     time.Time      `json:"generated_at"`
	CacheHit        bool           `json:"cache_hit"`
}
