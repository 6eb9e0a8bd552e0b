// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/jcodagnone/whereami/locate"
	"github.com/jcodagnone/whereami/spatial"
)

// GoogleGeolocationEndpoint is the Geolocation API endpoint.
const GoogleGeolocationEndpoint = "https://www.googleapis.com/geolocation/v1/geolocate"

// GoogleService uses the Google Geolocation API. Without WiFi or cell data the
// API falls back to the caller's IP address.
type GoogleService struct {
	endpoint   string
	apiKey     string
	resolveKey func(context.Context) (string, error)
	httpClient *http.Client
}

// NewGoogleService creates the service. An empty apiKey is resolved with
// ResolveAPIKey when updates start.
func NewGoogleService(client *http.Client, apiKey string) *GoogleService {
	return &GoogleService{
		endpoint:   GoogleGeolocationEndpoint,
		apiKey:     apiKey,
		resolveKey: ResolveAPIKey,
		httpClient: client,
	}
}

type geolocateRequest struct {
	ConsiderIP bool `json:"considerIp"`
}

type geolocateResponse struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"` // meters
}

type googleErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"` // dailyLimitExceeded, keyInvalid, notFound, ...
		} `json:"errors"`
	} `json:"error"`
}

func (g *GoogleService) Name() string { return Google }

// RequestAuthorization is a no-op: the API key is the authorization and it
// is resolved once updates start.
func (g *GoogleService) RequestAuthorization() {}

func (g *GoogleService) StartUpdates(ctx context.Context, h locate.Handler) error {
	deliver(ctx, h, g.geolocate)

	return nil
}

func (g *GoogleService) geolocate(ctx context.Context) (spatial.Point, error) {
	key := g.apiKey
	if key == "" {
		var err error
		if key, err = g.resolveKey(ctx); err != nil {
			return spatial.Point{}, err
		}
	}

	body, err := json.Marshal(geolocateRequest{ConsiderIP: true})
	if err != nil {
		return spatial.Point{}, fmt.Errorf("encoding geolocation request: %w", err)
	}

	reqURL := g.endpoint + "?" + url.Values{"key": {key}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return spatial.Point{}, fmt.Errorf("building geolocation request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return spatial.Point{}, locate.NewRequestError("geolocation request failed", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp googleErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return spatial.Point{}, locate.ClassifyHTTPError(resp.StatusCode, "")
		}

		reasons := make([]string, 0, len(errResp.Error.Errors))
		for _, e := range errResp.Error.Errors {
			reasons = append(reasons, e.Reason)
		}

		detail := errResp.Error.Message
		if len(reasons) > 0 {
			detail = fmt.Sprintf("%s (%s)", detail, strings.Join(reasons, ", "))
		}

		return spatial.Point{}, locate.ClassifyHTTPError(resp.StatusCode, detail)
	}

	var geoResp geolocateResponse
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return spatial.Point{}, fmt.Errorf("decoding geolocation response: %w", err)
	}

	p := spatial.Point{Lat: geoResp.Location.Lat, Lng: geoResp.Location.Lng}
	if err := p.Validate(); err != nil {
		return spatial.Point{}, fmt.Errorf("geolocation: %w", err)
	}

	log.Printf("%s: accuracy %.0f m", Google, geoResp.Accuracy)

	return p, nil
}
