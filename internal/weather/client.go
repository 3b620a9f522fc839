package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/meteo/internal/models"
)

// DefaultURLTemplate is the OpenWeather current weather endpoint.
// {lat}, {lon} and {key} are substituted on every request.
const DefaultURLTemplate = "https://api.openweathermap.org/data/2.5/weather" +
	"?lat={lat}&lon={lon}&appid={key}&lang=ru&units=metric"

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher returns the raw weather payload for a position.
type Fetcher interface {
	Fetch(ctx context.Context, coords models.Coordinates) ([]byte, error)
}

// Client requests current weather from OpenWeather.
type Client struct {
	client      HTTPClient   // HTTP client for making requests
	urlTemplate string       // URL with {lat}, {lon} and {key} placeholders
	apiKey      string       // OpenWeather API key
	log         *slog.Logger // Logger for logging operations
}

// NewClient creates a weather client with its own HTTP client bound by timeout.
func NewClient(urlTemplate, apiKey string, timeout time.Duration, log *slog.Logger) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: timeout}, urlTemplate, apiKey, log)
}

// NewClientWithHTTP creates a weather client with a custom HTTP client.
func NewClientWithHTTP(client HTTPClient, urlTemplate, apiKey string, log *slog.Logger) *Client {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}

	return &Client{
		client:      client,
		urlTemplate: urlTemplate,
		apiKey:      apiKey,
		log:         log,
	}
}

// Fetch performs a single GET for the given coordinates and returns the response body.
// Transport failures and non-200 statuses wrap ErrWeatherService.
func (c *Client) Fetch(ctx context.Context, coords models.Coordinates) ([]byte, error) {
	reqURL := c.buildURL(coords)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrWeatherService, err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.DebugContext(ctx, "Requesting current weather", "lat", coords.Latitude, "lon", coords.Longitude)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute weather request: %w", ErrWeatherService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrWeatherService, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.ErrorContext(ctx, "Weather API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: weather API returned status %d", ErrWeatherService, resp.StatusCode)
	}

	c.log.DebugContext(ctx, "Weather raw response", "body", string(body))

	return body, nil
}

func (c *Client) buildURL(coords models.Coordinates) string {
	return strings.NewReplacer(
		"{lat}", strconv.FormatFloat(coords.Latitude, 'f', -1, 64),
		"{lon}", strconv.FormatFloat(coords.Longitude, 'f', -1, 64),
		"{key}", c.apiKey,
	).Replace(c.urlTemplate)
}
