// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jcodagnone/whereami/locate"
	"github.com/jcodagnone/whereami/spatial"
)

// GoogleMapsEndpoint is the Geocoding API endpoint.
const GoogleMapsEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(client *http.Client, apiKey string) *GoogleMapsGeocoder {
	return &GoogleMapsGeocoder{
		endpoint:   GoogleMapsEndpoint,
		apiKey:     apiKey,
		httpClient: client,
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

func (g *GoogleMapsGeocoder) Reverse(ctx context.Context, p spatial.Point) (*Address, error) {
	params := url.Values{}
	params.Set("latlng", p.String())
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, locate.NewRequestError("geocoding request failed", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, locate.ClassifyHTTPError(resp.StatusCode, "")
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch gmResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, &locate.ServiceError{
			Type:    locate.ErrorTypeNotFound,
			Message: fmt.Sprintf("no address found for %s", p),
		}
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return nil, &locate.ServiceError{
			Type:    locate.ErrorTypeQuotaExceeded,
			Message: "google maps status: " + gmResp.Status,
		}
	case "REQUEST_DENIED", "INVALID_REQUEST":
		return nil, &locate.ServiceError{
			Type:    locate.ErrorTypeInvalidRequest,
			Message: fmt.Sprintf("google maps status: %s: %s", gmResp.Status, gmResp.ErrorMessage),
		}
	default:
		return nil, fmt.Errorf("google maps status: %s", gmResp.Status)
	}

	if len(gmResp.Results) == 0 {
		return nil, &locate.ServiceError{
			Type:    locate.ErrorTypeNotFound,
			Message: fmt.Sprintf("no address found for %s", p),
		}
	}

	result := gmResp.Results[0]

	confidence := "low"

	switch result.Geometry.LocationType {
	case "ROOFTOP", "RANGE_INTERPOLATED":
		confidence = "high"
	case "GEOMETRIC_CENTER":
		confidence = "medium"
	}

	return &Address{
		Point:       spatial.Point{Lat: result.Geometry.Location.Lat, Lng: result.Geometry.Location.Lng},
		Confidence:  confidence,
		Provider:    "google_maps",
		DisplayName: result.FormattedAddress,
	}, nil
}
