package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"myootd/models"
	"myootd/services"

	"github.com/disintegration/imaging"
	"github.com/golang-jwt/jwt/v4"
	"github.com/hibiken/asynq"
)

func JsonString(model interface{}) string {
	data, _ := json.Marshal(model)
	return string(data)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(subject string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing token for %s. Error %s ", subject, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, subject string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(subject)))
	return req
}

func IntPointer(i int) *int {
	return &i
}

// FakeItem builds a wardrobe item. Empty formality means Casual.
func FakeItem(id string, name string, category string, warmth int, formality ...string) models.ClothingItem {
	if len(formality) == 0 {
		formality = []string{string(models.FormalityCasual)}
	}
	return models.ClothingItem{
		ID:           id,
		Name:         name,
		Category:     models.TagSet{category},
		WarmthRating: IntPointer(warmth),
		Formality:    models.TagSet(formality),
		ImagePath:    "assets/" + id + ".jpg",
	}
}

// FakePNG encodes a solid PNG of the given size.
func FakePNG(width, height int) []byte {
	img := imaging.New(width, height, color.NRGBA{R: 30, G: 30, B: 90, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		log.Fatalf("Error when encoding fake image: %s", err)
	}
	return buf.Bytes()
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return awsService.MockUrl, nil
}

func (awsService AWSProviderMock) UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error) {
	return http.StatusOK, nil
}

type WeatherMock struct {
	Temperature float64
	Err         error
}

func (m WeatherMock) CurrentWeather(ctx context.Context, city string) (*services.WeatherReport, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &services.WeatherReport{City: city, Temperature: m.Temperature, Geocoded: true}, nil
}

// RecommenderMock records the last request and replays canned results.
type RecommenderMock struct {
	mu               sync.Mutex
	LastRequest      services.RecommendationRequest
	Result           *services.RecommendationResult
	CandidatesResult *services.CandidatesResult
	Err              error
}

func (m *RecommenderMock) Recommend(ctx context.Context, req services.RecommendationRequest) (*services.RecommendationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRequest = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

func (m *RecommenderMock) Candidates(ctx context.Context, req services.RecommendationRequest) (*services.CandidatesResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRequest = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.CandidatesResult, nil
}

func (m *RecommenderMock) Last() services.RecommendationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastRequest
}

type AnalyzerMock struct {
	Reply string
	Err   error
	Calls int
}

func (m *AnalyzerMock) AnalyzeClothing(ctx context.Context, image []byte, mimeType string, itemID string, imagePath string) (*models.ClothingItem, *services.LLMResponse, error) {
	m.Calls++
	if m.Err != nil {
		return nil, nil, m.Err
	}
	resp := &services.LLMResponse{Response: m.Reply, Model: services.Flash20Lite.String(), TotalTokenCount: 42}
	item, err := services.ParseCatalogItem(m.Reply, itemID, imagePath)
	if err != nil {
		return nil, resp, err
	}
	return item, resp, nil
}

// CatalogRepoMock keeps catalog items in memory, keyed by id.
type CatalogRepoMock struct {
	mu    sync.Mutex
	Items map[string]models.ClothingItem
	Err   error
}

func (r *CatalogRepoMock) Upsert(ctx context.Context, items []models.ClothingItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.Items == nil {
		r.Items = map[string]models.ClothingItem{}
	}
	for _, item := range items {
		r.Items[item.ID] = item
	}
	return nil
}

func (r *CatalogRepoMock) List(ctx context.Context) ([]models.ClothingItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	items := make([]models.ClothingItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// EnqueuerMock stands in for *asynq.Client and records enqueued tasks.
type EnqueuerMock struct {
	mu    sync.Mutex
	Tasks []*asynq.Task
	Err   error
}

func (m *EnqueuerMock) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.Tasks = append(m.Tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(m.Tasks)), Type: task.Type(), Payload: task.Payload()}, nil
}
