package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "myootd_http_requests_total",
		Help: "HTTP requests served, by method, route and status class.",
	}, []string{"method", "path", "status"})

	CandidatesGenerated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "myootd_outfit_candidates",
		Help:    "Number of outfit candidates produced per generation.",
		Buckets: []float64{0, 1, 3, 5, 10, 25, 50, 100, 250, 1000},
	})

	RecommendationCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "myootd_recommendation_cache_lookups_total",
		Help: "Recommendation cache lookups by result.",
	}, []string{"result"})

	RankingFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "myootd_ranking_fallbacks_total",
		Help: "Recommendations served from the first-K fallback because ranking was unavailable.",
	})

	WardrobeRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "myootd_wardrobe_refreshes_total",
		Help: "Wardrobe snapshot refresh attempts by result.",
	}, []string{"result"})

	WardrobeItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "myootd_wardrobe_items",
		Help: "Items in the current wardrobe snapshot.",
	})
)
