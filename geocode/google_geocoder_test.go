// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jcodagnone/whereami/locate"
	"github.com/jcodagnone/whereami/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(t *testing.T, status int, body string) *GoogleMapsGeocoder {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "-34.9011,-56.1645", r.URL.Query().Get("latlng"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	g := NewGoogleMapsGeocoder(srv.Client(), "k")
	g.endpoint = srv.URL

	return g
}

var montevideo = spatial.Point{Lat: -34.9011, Lng: -56.1645}

func TestReverse(t *testing.T) {
	g := newTestGeocoder(t, http.StatusOK, `{
		"status": "OK",
		"results": [
			{
				"formatted_address": "Av. 18 de Julio 1360, 11100 Montevideo, Uruguay",
				"geometry": {"location": {"lat": -34.9055, "lng": -56.1851}, "location_type": "ROOFTOP"}
			},
			{
				"formatted_address": "Montevideo, Uruguay",
				"geometry": {"location": {"lat": -34.9, "lng": -56.16}, "location_type": "APPROXIMATE"}
			}
		]
	}`)

	addr, err := g.Reverse(context.Background(), montevideo)
	require.NoError(t, err)
	assert.Equal(t, &Address{
		Point:       spatial.Point{Lat: -34.9055, Lng: -56.1851},
		Confidence:  "high",
		Provider:    "google_maps",
		DisplayName: "Av. 18 de Julio 1360, 11100 Montevideo, Uruguay",
	}, addr)
}

func TestReverseErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType locate.ErrorType
		wantMsg  string
	}{
		{
			name:     "zero results",
			status:   http.StatusOK,
			body:     `{"status":"ZERO_RESULTS","results":[]}`,
			wantType: locate.ErrorTypeNotFound,
			wantMsg:  "no address found for -34.9011,-56.1645",
		},
		{
			name:     "over query limit",
			status:   http.StatusOK,
			body:     `{"status":"OVER_QUERY_LIMIT"}`,
			wantType: locate.ErrorTypeQuotaExceeded,
			wantMsg:  "google maps status: OVER_QUERY_LIMIT",
		},
		{
			name:     "request denied",
			status:   http.StatusOK,
			body:     `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`,
			wantType: locate.ErrorTypeInvalidRequest,
			wantMsg:  "google maps status: REQUEST_DENIED: The provided API key is invalid.",
		},
		{
			name:     "http error",
			status:   http.StatusServiceUnavailable,
			wantType: locate.ErrorTypeNetworkError,
			wantMsg:  "service unavailable (status 503)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGeocoder(t, tt.status, tt.body)

			_, err := g.Reverse(context.Background(), montevideo)
			require.Error(t, err)

			var svcErr *locate.ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, tt.wantType, svcErr.Type)
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestReverseTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := srv.Client()
	client.Timeout = 50 * time.Millisecond

	g := NewGoogleMapsGeocoder(client, "k")
	g.endpoint = srv.URL

	_, err := g.Reverse(context.Background(), montevideo)
	require.Error(t, err)

	var svcErr *locate.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, locate.ErrorTypeTimeout, svcErr.Type)
	assert.True(t, locate.IsTimeoutError(err))
}
