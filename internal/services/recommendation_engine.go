package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/cinerec/cinerec/internal/config"
	"github.com/cinerec/cinerec/pkg/models"
)

// RecommendOptions are the per-request knobs. Pointer fields distinguish an
// explicit zero from "unset"; unset falls back to the engine configuration
// defaults. An explicit MinScore of 0 keeps every record, and an explicit
// DiversityFactor of 0 or below skips the diversity stage.
type RecommendOptions struct {
	Count            int      `json:"count"`
	MinScore         *float64 `json:"min_score,omitempty"`
	DiversityFactor  *float64 `json:"diversity_factor,omitempty"`
	ExcludeRated     bool     `json:"exclude_rated"`
	ExcludeWatchlist bool     `json:"exclude_watchlist"`
	IncludeReasons   bool     `json:"include_reasons"`
}

// canonical renders the options with a fixed, alphabetical field order so that
// equal option sets always hash to the same cache key. Callers resolve
// defaults first; nil pointers never reach this point.
func (o RecommendOptions) canonical() string {
	return fmt.Sprintf("count=%d:diversity_factor=%.4f:exclude_rated=%t:exclude_watchlist=%t:include_reasons=%t:min_score=%.4f",
		o.Count, *o.DiversityFactor, o.ExcludeRated, o.ExcludeWatchlist, o.IncludeReasons, *o.MinScore)
}

// RecommendationEngine fuses the four scoring strategies into a single ranked
// list. Strategy failures degrade to missing scores; only an engine-level
// timeout or panic surfaces as an error.
type RecommendationEngine struct {
	profiles  ProfileBuilderInterface
	catalog   CatalogServiceInterface
	tracking  TrackingServiceInterface
	scorers   []StrategyScorer
	diversity *DiversityFilter
	redis     *redis.Client
	metrics   *EngineMetrics
	config    *config.Engine
	logger    *logrus.Logger
	now       func() time.Time
}

func NewRecommendationEngine(
	profiles ProfileBuilderInterface,
	catalog CatalogServiceInterface,
	tracking TrackingServiceInterface,
	content, collaborative, sequence, rule StrategyScorer,
	diversity *DiversityFilter,
	redisClient *redis.Client,
	metrics *EngineMetrics,
	cfg *config.Engine,
	logger *logrus.Logger,
) *RecommendationEngine {
	return &RecommendationEngine{
		profiles:  profiles,
		catalog:   catalog,
		tracking:  tracking,
		scorers:   []StrategyScorer{content, collaborative, sequence, rule},
		diversity: diversity,
		redis:     redisClient,
		metrics:   metrics,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Recommend produces up to opts.Count recommendations for userID.
func (e *RecommendationEngine) Recommend(ctx context.Context, userID string, opts RecommendOptions) ([]models.HybridRecord, error) {
	start := e.now()
	opts = e.applyDefaults(opts)

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	cacheKey := e.cacheKey(userID, opts)
	if cached, ok := e.getCached(ctx, cacheKey); ok {
		e.metrics.CacheHits.Inc()
		e.metrics.RequestsTotal.WithLabelValues("cache_hit").Inc()
		return cached, nil
	}
	e.metrics.CacheMisses.Inc()

	records, err := e.generate(ctx, userID, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrEngineTimeout) {
			e.metrics.RequestsTotal.WithLabelValues("timeout").Inc()
			return nil, ErrEngineTimeout
		}
		e.metrics.RequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	// An empty list is a valid answer but not worth pinning in the cache;
	// the next action the user takes may already change it.
	if len(records) > 0 {
		e.setCached(ctx, cacheKey, records)
	}

	e.observeResult(records, start)
	return records, nil
}

func (e *RecommendationEngine) generate(ctx context.Context, userID string, opts RecommendOptions) ([]models.HybridRecord, error) {
	profile := e.profiles.Build(ctx, userID)
	weights := strategyWeights(profile)

	candidates, err := e.loadCandidates(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []models.HybridRecord{}, nil
	}

	strategyScores, err := e.runScorers(ctx, profile, candidates)
	if err != nil {
		return nil, err
	}

	records := e.fuse(candidates, strategyScores, weights, opts.IncludeReasons)
	records = e.diversity.Apply(records, *opts.DiversityFactor)

	filtered := records[:0]
	for _, rec := range records {
		if rec.Score >= *opts.MinScore {
			filtered = append(filtered, rec)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		return filtered[i].ItemID < filtered[j].ItemID
	})

	if len(filtered) > opts.Count {
		filtered = filtered[:opts.Count]
	}

	return filtered, nil
}

// loadCandidates pulls the candidate pool and removes items the user already
// acted on. Exclusion lookup failures degrade to an unfiltered pool.
func (e *RecommendationEngine) loadCandidates(ctx context.Context, userID string, opts RecommendOptions) ([]models.Movie, error) {
	candidates, err := e.catalog.AvailableMovies(ctx, e.config.CandidatePoolSize)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrEngineTimeout
		}
		e.logger.WithError(err).WithField("user_id", userID).Warn("Candidate catalog unavailable")
		return nil, nil
	}

	var excludeTypes []string
	if opts.ExcludeRated {
		excludeTypes = append(excludeTypes, models.ActionRate)
	}
	if opts.ExcludeWatchlist {
		excludeTypes = append(excludeTypes, models.ActionAddWatchlist)
	}
	if len(excludeTypes) == 0 {
		return candidates, nil
	}

	acted, err := e.tracking.GetActedItemIDs(ctx, userID, excludeTypes...)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", userID).Warn("Exclusion lookup failed, keeping full pool")
		return candidates, nil
	}

	filtered := candidates[:0]
	for _, m := range candidates {
		if !acted[m.ID] {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// runScorers fans the candidate pool out to all strategies in parallel. A
// scorer error or panic zeroes that strategy's contribution and the fusion
// proceeds with the rest.
func (e *RecommendationEngine) runScorers(ctx context.Context, profile *models.UserProfile, candidates []models.Movie) (map[string][]models.ScoreRecord, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string][]models.ScoreRecord, len(e.scorers))

	for _, scorer := range e.scorers {
		wg.Add(1)
		go func(sc StrategyScorer) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.logger.WithFields(logrus.Fields{
						"strategy": sc.Name(),
						"panic":    r,
					}).Error("Strategy scorer panicked")
				}
			}()

			records, err := sc.Score(ctx, profile, candidates)
			if err != nil {
				e.logger.WithError(err).WithField("strategy", sc.Name()).Warn("Strategy scorer failed")
				return
			}

			mu.Lock()
			results[sc.Name()] = records
			mu.Unlock()
		}(scorer)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ErrEngineTimeout
	}
	return results, nil
}

func (e *RecommendationEngine) fuse(candidates []models.Movie, strategyScores map[string][]models.ScoreRecord, weights models.StrategyWeights, includeReasons bool) []models.HybridRecord {
	content := indexScores(strategyScores["content"])
	collaborative := indexScores(strategyScores["collaborative"])
	sequence := indexScores(strategyScores["sequence"])
	rule := indexScores(strategyScores["rule"])

	records := make([]models.HybridRecord, 0, len(candidates))
	for i := range candidates {
		m := &candidates[i]

		rec := models.HybridRecord{
			ItemID:             m.ID,
			Item:               m,
			ContentScore:       content[m.ID],
			CollaborativeScore: collaborative[m.ID],
			SequenceScore:      sequence[m.ID],
			RuleScore:          rule[m.ID],
			Weights:            weights,
			Source:             models.SourceHybrid,
		}
		rec.Score = weights.Content*rec.ContentScore +
			weights.Collaborative*rec.CollaborativeScore +
			weights.Sequence*rec.SequenceScore +
			weights.Rule*rec.RuleScore

		if includeReasons {
			rec.Reasons = fusionReasons(&rec)
		}

		records = append(records, rec)
	}
	return records
}

// fusionReasons tags every strategy whose score and weight both clear that
// reason's threshold. The checks are independent; a record can carry several
// tags.
func fusionReasons(rec *models.HybridRecord) []string {
	var reasons []string
	if rec.ContentScore > 0.7 && rec.Weights.Content > 0.2 {
		reasons = append(reasons, models.ReasonStrongContent)
	}
	if rec.CollaborativeScore > 0.7 && rec.Weights.Collaborative > 0.2 {
		reasons = append(reasons, models.ReasonSimilarUsers)
	}
	if rec.SequenceScore > 0.7 && rec.Weights.Sequence > 0.2 {
		reasons = append(reasons, models.ReasonSessionFlow)
	}
	if rec.RuleScore > 0.6 && rec.Weights.Rule > 0.1 {
		reasons = append(reasons, models.ReasonOnboardingMatch)
	}
	return reasons
}

func indexScores(records []models.ScoreRecord) map[int64]float64 {
	scores := make(map[int64]float64, len(records))
	for _, r := range records {
		scores[r.ItemID] = r.Score
	}
	return scores
}

func (e *RecommendationEngine) applyDefaults(opts RecommendOptions) RecommendOptions {
	if opts.Count <= 0 {
		opts.Count = e.config.DefaultCount
	}
	if opts.MinScore == nil {
		minScore := e.config.MinScore
		opts.MinScore = &minScore
	}
	if opts.DiversityFactor == nil {
		factor := e.config.DiversityFactor
		opts.DiversityFactor = &factor
	}
	return opts
}

func (e *RecommendationEngine) cacheKey(userID string, opts RecommendOptions) string {
	return fmt.Sprintf("recommendations:%s:%s", userID, opts.canonical())
}

func (e *RecommendationEngine) getCached(ctx context.Context, key string) ([]models.HybridRecord, bool) {
	if e.redis == nil {
		return nil, false
	}

	data, err := e.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			e.logger.WithError(err).Debug("Recommendation cache read failed")
		}
		return nil, false
	}

	var records []models.HybridRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		e.logger.WithError(err).Warn("Dropping undecodable recommendation cache entry")
		e.redis.Del(ctx, key)
		return nil, false
	}
	return records, true
}

func (e *RecommendationEngine) setCached(ctx context.Context, key string, records []models.HybridRecord) {
	if e.redis == nil {
		return
	}

	data, err := json.Marshal(records)
	if err != nil {
		e.logger.WithError(err).Warn("Failed to encode recommendations for cache")
		return
	}
	if err := e.redis.Set(ctx, key, data, e.config.CacheTTL).Err(); err != nil {
		e.logger.WithError(err).Debug("Recommendation cache write failed")
	}
}

func (e *RecommendationEngine) observeResult(records []models.HybridRecord, start time.Time) {
	e.metrics.RequestsTotal.WithLabelValues("ok").Inc()
	e.metrics.ItemsTotal.Add(float64(len(records)))
	e.metrics.Duration.Observe(e.now().Sub(start).Seconds())

	if len(records) > 0 {
		scores := make([]float64, len(records))
		for i, r := range records {
			scores[i] = r.Score
		}
		e.metrics.LastAvgScore.Set(stat.Mean(scores, nil))
	}
}
