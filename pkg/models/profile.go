package models

// SequenceWindow bounds how many recent actions feed sequence scoring.
const SequenceWindow = 20

// RuntimePref describes the preferred runtime band in minutes.
type RuntimePref struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Ideal int `json:"ideal"`
}

// YearPref describes the preferred release-year window.
type YearPref struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Preferences is the structured preference model derived from rating history.
// Attribute weights live in [-1,1]; a missing key means unknown, not zero.
type Preferences struct {
	Genres          map[string]float64 `json:"genres"`
	Directors       map[string]float64 `json:"directors"`
	Actors          map[string]float64 `json:"actors"`
	Runtime         *RuntimePref       `json:"runtime,omitempty"`
	Year            *YearPref          `json:"year,omitempty"`
	RatingThreshold float64            `json:"rating_threshold"`
}

// UserProfile is derived per request and discarded after the response.
type UserProfile struct {
	UserID         string      `json:"user_id"`
	RatingCount    int         `json:"rating_count"`
	AvgRating      float64     `json:"avg_rating"`
	RatingVariance float64     `json:"rating_variance"`
	TimeActive     int         `json:"time_active"` // whole days since first rating
	Engagement     float64     `json:"engagement"`  // mean actions per session
	SessionDepth   float64     `json:"session_depth"`
	RecencyScore   float64     `json:"recency_score"`
	RecentActions  []Action    `json:"-"` // newest first, capped at SequenceWindow
	Preferences    Preferences `json:"preferences"`
}

// SimilarUser is a neighbor with a similarity in [0,1].
type SimilarUser struct {
	UserID     string  `json:"user_id"`
	Similarity float64 `json:"similarity"`
}
