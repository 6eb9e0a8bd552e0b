// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/jcodagnone/whereami/locate"
	"github.com/jcodagnone/whereami/spatial"
)

// IPAPIEndpoint is the free (HTTP only) ip-api.com endpoint.
const IPAPIEndpoint = "http://ip-api.com/json/?fields=status,message,lat,lon"

// IPAPIService locates the public IP address of the host.
type IPAPIService struct {
	endpoint   string
	httpClient *http.Client
}

// NewIPAPIService creates the service on top of the given client.
func NewIPAPIService(client *http.Client) *IPAPIService {
	return &IPAPIService{
		endpoint:   IPAPIEndpoint,
		httpClient: client,
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"` // success, fail
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (s *IPAPIService) Name() string { return IP }

func (s *IPAPIService) RequestAuthorization() {
	log.Printf("%s: no authorization needed", IP)
}

func (s *IPAPIService) StartUpdates(ctx context.Context, h locate.Handler) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("building ip-api request: %w", err)
	}

	deliver(ctx, h, func(_ context.Context) (spatial.Point, error) {
		return s.lookup(req)
	})

	return nil
}

func (s *IPAPIService) lookup(req *http.Request) (spatial.Point, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return spatial.Point{}, locate.NewRequestError("ip-api request failed", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return spatial.Point{}, locate.ClassifyHTTPError(resp.StatusCode, string(body))
	}

	var ipResp ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&ipResp); err != nil {
		return spatial.Point{}, fmt.Errorf("decoding ip-api response: %w", err)
	}

	if ipResp.Status != "success" {
		return spatial.Point{}, &locate.ServiceError{
			Type:    locate.ErrorTypeNotFound,
			Message: fmt.Sprintf("ip-api: %s", ipResp.Message),
		}
	}

	p := spatial.Point{Lat: ipResp.Lat, Lng: ipResp.Lon}
	if err := p.Validate(); err != nil {
		return spatial.Point{}, fmt.Errorf("ip-api: %w", err)
	}

	return p, nil
}
