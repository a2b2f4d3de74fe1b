package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"myootd/config"
	"myootd/models"
	"myootd/outfits"
	"myootd/services"
	"myootd/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func testConfig() config.Config {
	return config.Config{
		DefaultCity:      "Algiers",
		DefaultFormality: "Casual",
		JWTSecret:        testJWTSecret,
		R2:               config.R2Config{BucketName: "wardrobe", AccountID: "acc"},
	}
}

func testWardrobe(t *testing.T) *services.WardrobeStore {
	store := services.NewWardrobeStore(services.StaticLoader{
		test.FakeItem("item_001", "White Linen Shirt", "Top", 1),
		test.FakeItem("item_002", "Navy Chinos", "Bottom", 2),
	})
	require.NoError(t, store.Refresh(context.Background()))
	return store
}

func setupTestServer(t *testing.T, recommender services.OutfitRecommender, enqueuer TaskEnqueuer) (*echo.Echo, *services.WardrobeStore) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	store := testWardrobe(t)
	e := SetupServer(
		recommender,
		store,
		services.StaticAssetResolver{BaseURL: "https://cdn.example.com/"},
		test.AWSProviderMock{},
		enqueuer,
		testConfig(),
	)
	return e, store
}

func sampleResult() *services.RecommendationResult {
	top := test.FakeItem("item_001", "White Linen Shirt", "Top", 1)
	bottom := test.FakeItem("item_002", "Navy Chinos", "Bottom", 2)
	return &services.RecommendationResult{
		City:        "Algiers",
		Temperature: 24.2,
		Formality:   models.FormalityCasual,
		WarmthBand:  outfits.Band{Min: 2, Max: 3},
		TopOutfits: []models.RankedOutfit{{
			Items:       []models.ClothingItem{top, bottom},
			TotalWarmth: 2,
			StylistNote: "Crisp linen over navy keeps it breezy.",
		}},
	}
}

func TestTopOutfitsDefaults(t *testing.T) {
	recommender := &test.RecommenderMock{Result: sampleResult()}
	e, _ := setupTestServer(t, recommender, nil)

	req := httptest.NewRequest(http.MethodGet, "/top-outfits", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, services.RecommendationRequest{City: "Algiers", Formality: models.FormalityCasual}, recommender.Last())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Algiers", body["city"])
	assert.Equal(t, []interface{}{float64(2), float64(3)}, body["warmth_band"])
	assert.Nil(t, body["preferred_color"])
	outfitsList := body["top_outfits"].([]interface{})
	require.Len(t, outfitsList, 1)
	assert.Equal(t, "Crisp linen over navy keeps it breezy.", outfitsList[0].(map[string]interface{})["stylist_note"])
}

func TestTopOutfitsNormalizesQuery(t *testing.T) {
	recommender := &test.RecommenderMock{Result: sampleResult()}
	e, _ := setupTestServer(t, recommender, nil)

	req := httptest.NewRequest(http.MethodGet, "/top-outfits?city=new%20%20york&formality=semi%20formal&color=Navy", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, services.RecommendationRequest{
		City:      "New York",
		Formality: models.FormalitySemiFormal,
		Color:     "Navy",
	}, recommender.Last())
}

func TestTopOutfitsRejectsUnknownFormality(t *testing.T) {
	e, _ := setupTestServer(t, &test.RecommenderMock{Result: sampleResult()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/top-outfits?formality=black-tie", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "Formality")
}

func TestTopOutfitsRejectsLongColor(t *testing.T) {
	e, _ := setupTestServer(t, &test.RecommenderMock{Result: sampleResult()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/top-outfits?color="+strings.Repeat("a", 31), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopOutfitsWeatherUnavailable(t *testing.T) {
	recommender := &test.RecommenderMock{Err: fmt.Errorf("weather for %q: %w", "Algiers", services.ErrWeatherUnavailable)}
	e, _ := setupTestServer(t, recommender, nil)

	req := httptest.NewRequest(http.MethodGet, "/top-outfits?city=Algiers", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "Weather")
}

func TestTopOutfitsInternalError(t *testing.T) {
	e, _ := setupTestServer(t, &test.RecommenderMock{Err: errors.New("boom")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/top-outfits", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOutfitCandidates(t *testing.T) {
	recommender := &test.RecommenderMock{CandidatesResult: &services.CandidatesResult{
		City:         "Algiers",
		Formality:    models.FormalityFormal,
		WarmthBand:   outfits.Band{Min: 4, Max: 5},
		WardrobeSize: 2,
		Candidates:   []models.OutfitCandidate{},
	}}
	e, _ := setupTestServer(t, recommender, nil)

	req := httptest.NewRequest(http.MethodGet, "/outfits/candidates?formality=formal", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.FormalityFormal, recommender.Last().Formality)

	var body services.CandidatesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.WardrobeSize)
	assert.Empty(t, body.Candidates)
}

func TestHealthzAndMetrics(t *testing.T) {
	e, _ := setupTestServer(t, &test.RecommenderMock{}, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"wardrobe_version":1`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "myootd_http_requests_total")
	assert.Contains(t, rec.Body.String(), `path="/healthz"`)
}
