package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"myootd/config"

	"github.com/rs/zerolog/log"
)

var ErrWeatherUnavailable = errors.New("weather unavailable")

type WeatherReport struct {
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Temperature float64 `json:"temperature"`
	// Geocoded is false when the city was not found and default coordinates were used.
	Geocoded bool `json:"geocoded"`
}

type WeatherServiceProvider interface {
	CurrentWeather(ctx context.Context, city string) (*WeatherReport, error)
}

// OpenMeteoService resolves a city through the Open-Meteo geocoding API and
// reads the current temperature from the forecast API.
type OpenMeteoService struct {
	GeocodingURL     string
	ForecastURL      string
	DefaultLatitude  float64
	DefaultLongitude float64
	Client           *http.Client
}

func NewOpenMeteoService(cfg config.WeatherConfig) *OpenMeteoService {
	return &OpenMeteoService{
		GeocodingURL:     cfg.GeocodingURL,
		ForecastURL:      cfg.ForecastURL,
		DefaultLatitude:  cfg.DefaultLatitude,
		DefaultLongitude: cfg.DefaultLongitude,
		Client:           newHTTPClient(cfg.Timeout),
	}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
	} `json:"current_weather"`
}

// Geocode returns the coordinates of city. Unknown cities resolve to the
// default coordinates with found=false.
func (s *OpenMeteoService) Geocode(ctx context.Context, city string) (float64, float64, bool, error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")

	var resp geocodingResponse
	if err := getJSON(ctx, s.Client, s.GeocodingURL+"?"+q.Encode(), &resp); err != nil {
		return 0, 0, false, fmt.Errorf("%w: geocoding %q: %v", ErrWeatherUnavailable, city, err)
	}
	if len(resp.Results) == 0 {
		return s.DefaultLatitude, s.DefaultLongitude, false, nil
	}
	return resp.Results[0].Latitude, resp.Results[0].Longitude, true, nil
}

func (s *OpenMeteoService) CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current_weather", "true")

	var resp forecastResponse
	if err := getJSON(ctx, s.Client, s.ForecastURL+"?"+q.Encode(), &resp); err != nil {
		return 0, fmt.Errorf("%w: forecast: %v", ErrWeatherUnavailable, err)
	}
	if resp.CurrentWeather == nil || resp.CurrentWeather.Temperature == nil {
		return 0, fmt.Errorf("%w: forecast has no current temperature", ErrWeatherUnavailable)
	}
	return *resp.CurrentWeather.Temperature, nil
}

func (s *OpenMeteoService) CurrentWeather(ctx context.Context, city string) (*WeatherReport, error) {
	lat, lon, found, err := s.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Ctx(ctx).Info().Str("city", city).Msg("city not found, using default coordinates")
	}
	temp, err := s.CurrentTemperature(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return &WeatherReport{
		City:        city,
		Latitude:    lat,
		Longitude:   lon,
		Temperature: temp,
		Geocoded:    found,
	}, nil
}
