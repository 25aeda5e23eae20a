package geocoding

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

	"github.com/UnknownOlympus/meridian/internal/models"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's
// Nominatim API. This is a free geocoding service with usage limits
// (1 request/second for fair use), which is why the reverse-geocode pipeline
// issues calls strictly one at a time.
type NominatimProvider struct {
	client   HTTPClient   // HTTP client for making requests
	baseURL  string       // Base URL for the Nominatim reverse endpoint
	language string       // Preferred language for returned addresses
	log      *slog.Logger // Logger for logging operations
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents the JSON response from the Nominatim reverse API.
type nominatimResponse struct {
	DisplayName string `json:"display_name"` // Resolved address
	Error       string `json:"error"`        // Set when the coordinates cannot be geocoded
}

// NewNominatimProvider creates a new Nominatim reverse-geocoding provider.
// Uses the public Nominatim API endpoint by default.
func NewNominatimProvider(language string, log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return &NominatimProvider{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL:  "https://nominatim.openstreetmap.org/reverse",
		language: language,
		log:      log,
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: "Meridian-Geo-Service/1.0 (https://github.com/UnknownOlympus/meridian)",
	}
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom
// HTTP client. Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, language string, log *slog.Logger) *NominatimProvider {
	provider := NewNominatimProvider(language, log)
	provider.client = client

	return provider
}

// ReverseGeocode converts coordinates to a human-readable address using the
// Nominatim reverse API. It respects Nominatim's usage policy by including a
// User-Agent header. Failures are classified into ErrTimeout, ErrServiceError
// and ErrNoAddress so the caller can tell an unresolved point from a broken
// pipeline.
func (np *NominatimProvider) ReverseGeocode(ctx context.Context, coords models.Coordinates) (string, error) {
	np.log.DebugContext(ctx, "Reverse geocoding using Nominatim",
		"lat", coords.Latitude, "lon", coords.Longitude)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	query.Set("format", "json")
	query.Set("accept-language", np.language)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)

	resp, err := np.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %w", ErrServiceError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("%w: nominatim returned status %d", ErrServiceError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %w", ErrServiceError, err)
	}

	var result nominatimResponse
	if err = json.Unmarshal(body, &result); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return "", fmt.Errorf("%w: failed to decode nominatim response: %w", ErrServiceError, err)
	}

	if result.Error != "" || result.DisplayName == "" {
		return "", ErrNoAddress
	}

	np.log.DebugContext(ctx, "Nominatim found address", "address", result.DisplayName)

	return result.DisplayName, nil
}

// isTimeout reports whether err represents a request that ran out of time,
// either through the client timeout or the request context.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
