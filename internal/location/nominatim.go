package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/meteo/internal/models"
)

// NominatimBaseURL is the public OpenStreetMap Nominatim search endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// nominatimUserAgent identifies the application as required by the Nominatim usage policy.
const nominatimUserAgent = "Meteo-Weather-CLI/1.0 (https://github.com/UnknownOlympus/meteo)"

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NominatimGeocoder resolves addresses with OpenStreetMap's Nominatim API.
type NominatimGeocoder struct {
	client  HTTPClient
	baseURL string
	log     *slog.Logger
}

// nominatimResult is a single item of the Nominatim JSON response.
// Coordinates come back as strings.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Common errors for the Nominatim geocoder.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// NewNominatimGeocoder creates a Nominatim geocoder with its own HTTP client bound by timeout.
func NewNominatimGeocoder(timeout time.Duration, log *slog.Logger) *NominatimGeocoder {
	return NewNominatimGeocoderWithClient(&http.Client{Timeout: timeout}, log)
}

// NewNominatimGeocoderWithClient creates a Nominatim geocoder with a custom HTTP client.
func NewNominatimGeocoderWithClient(client HTTPClient, log *slog.Logger) *NominatimGeocoder {
	return &NominatimGeocoder{client: client, baseURL: NominatimBaseURL, log: log}
}

// Geocode returns the coordinates of the best match for address.
func (ng *NominatimGeocoder) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	reqURL, err := url.Parse(ng.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	reqURL.RawQuery = query.Encode()

	ng.log.DebugContext(ctx, "Geocoding using Nominatim", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := ng.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		ng.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResult
	if err = json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	return &models.Coordinates{Longitude: lon, Latitude: lat}, nil
}
