package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"myootd/languageutil"
	"myootd/models"
	"myootd/outfits"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
)

type RecommendationRequest struct {
	City      string
	Formality models.Formality
	Color     string
}

type RecommendationResult struct {
	City           string                `json:"city"`
	Temperature    float64               `json:"temperature"`
	Formality      models.Formality      `json:"formality"`
	PreferredColor *string               `json:"preferred_color"`
	WarmthBand     outfits.Band          `json:"warmth_band"`
	Cached         bool                  `json:"cached"`
	Fallback       bool                  `json:"fallback"`
	TopOutfits     []models.RankedOutfit `json:"top_outfits"`
}

type CandidatesResult struct {
	City           string                   `json:"city"`
	Temperature    float64                  `json:"temperature"`
	Formality      models.Formality         `json:"formality"`
	PreferredColor *string                  `json:"preferred_color"`
	WarmthBand     outfits.Band             `json:"warmth_band"`
	WardrobeSize   int                      `json:"wardrobe_size"`
	Count          int                      `json:"count"`
	Candidates     []models.OutfitCandidate `json:"candidates"`
}

type OutfitRecommender interface {
	Recommend(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error)
	Candidates(ctx context.Context, req RecommendationRequest) (*CandidatesResult, error)
}

type Recommender struct {
	Weather     WeatherServiceProvider
	Wardrobe    *WardrobeStore
	Ranker      OutfitRanker
	Cache       *RecommendationCache
	Images      ImageURLResolver
	TopK        int
	RankTimeout time.Duration
}

func (r *Recommender) Recommend(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error) {
	report, err := r.Weather.CurrentWeather(ctx, req.City)
	if err != nil {
		return nil, fmt.Errorf("weather for %q: %w", req.City, err)
	}
	band := outfits.WarmthBandFor(report.Temperature)
	color := languageutil.NormalizeColor(req.Color)

	load := func(ctx context.Context) (CachedRecommendation, error) {
		items, version := r.Wardrobe.Snapshot()
		candidates := outfits.Generate(items, band, req.Formality, color)
		CandidatesGenerated.Observe(float64(len(candidates)))
		log.Ctx(ctx).Info().
			Float64("temperature", report.Temperature).
			Str("band", band.String()).
			Str("formality", req.Formality.String()).
			Str("color", color).
			Int64("wardrobe_version", version).
			Int("candidates", len(candidates)).
			Msg("generated outfit candidates")
		return r.rank(ctx, candidates, RankingContext{
			Temperature:    report.Temperature,
			Formality:      req.Formality,
			PreferredColor: color,
			TopK:           r.topK(),
		}), nil
	}

	var (
		value CachedRecommendation
		hit   bool
	)
	if r.Cache != nil {
		value, hit, err = r.Cache.GetOrLoad(ctx, NewRecommendationKey(report.Temperature, req.Formality, color), load)
	} else {
		value, err = load(ctx)
	}
	if err != nil {
		return nil, err
	}

	return &RecommendationResult{
		City:           req.City,
		Temperature:    report.Temperature,
		Formality:      req.Formality,
		PreferredColor: StrPointer(req.Color),
		WarmthBand:     band,
		Cached:         hit,
		Fallback:       value.Fallback,
		TopOutfits:     r.withImages(ctx, value.Outfits),
	}, nil
}

func (r *Recommender) Candidates(ctx context.Context, req RecommendationRequest) (*CandidatesResult, error) {
	report, err := r.Weather.CurrentWeather(ctx, req.City)
	if err != nil {
		return nil, fmt.Errorf("weather for %q: %w", req.City, err)
	}
	band := outfits.WarmthBandFor(report.Temperature)
	items, _ := r.Wardrobe.Snapshot()
	candidates := outfits.Generate(items, band, req.Formality, languageutil.NormalizeColor(req.Color))
	if candidates == nil {
		candidates = []models.OutfitCandidate{}
	}
	CandidatesGenerated.Observe(float64(len(candidates)))

	return &CandidatesResult{
		City:           req.City,
		Temperature:    report.Temperature,
		Formality:      req.Formality,
		PreferredColor: StrPointer(req.Color),
		WarmthBand:     band,
		WardrobeSize:   len(items),
		Count:          len(candidates),
		Candidates:     candidates,
	}, nil
}

func (r *Recommender) topK() int {
	if r.TopK <= 0 {
		return 3
	}
	return r.TopK
}

// rank asks the ranker for the best outfits and falls back to the first K
// candidates when ranking is unavailable.
func (r *Recommender) rank(ctx context.Context, candidates []models.OutfitCandidate, rc RankingContext) CachedRecommendation {
	if len(candidates) == 0 {
		return CachedRecommendation{Outfits: []models.RankedOutfit{}}
	}

	rankCtx := ctx
	if r.RankTimeout > 0 {
		var cancel context.CancelFunc
		rankCtx, cancel = context.WithTimeout(ctx, r.RankTimeout)
		defer cancel()
	}
	ranked, err := r.Ranker.Rank(rankCtx, candidates, rc)
	if err == nil && len(ranked) == 0 {
		err = fmt.Errorf("%w: empty selection", ErrRankingUnavailable)
	}
	if err != nil {
		if !errors.Is(err, ErrRankingUnavailable) {
			err = fmt.Errorf("%w: %v", ErrRankingUnavailable, err)
		}
		log.Ctx(ctx).Warn().Err(err).Int("candidates", len(candidates)).Msg("serving first candidates without ranking")
		sentry.CaptureException(err)
		RankingFallbacks.Inc()
		return CachedRecommendation{Outfits: FirstKFallback(candidates, rc.TopK), Fallback: true}
	}
	return CachedRecommendation{Outfits: ranked}
}

// withImages returns copies of outfits with image urls resolved. Cached
// values are shared and stay untouched.
func (r *Recommender) withImages(ctx context.Context, ranked []models.RankedOutfit) []models.RankedOutfit {
	out := make([]models.RankedOutfit, 0, len(ranked))
	for _, o := range ranked {
		o = o.Clone()
		if r.Images != nil {
			ResolveItemImages(ctx, r.Images, o.Items)
		}
		out = append(out, o)
	}
	return out
}
