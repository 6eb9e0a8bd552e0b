// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode turns fixes into human readable addresses.
package geocode

import (
	"context"

	"github.com/jcodagnone/whereami/spatial"
)

// Address represents a reverse geocoding result from any provider.
type Address struct {
	Point       spatial.Point
	Confidence  string // high, medium, low
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	Reverse(ctx context.Context, p spatial.Point) (*Address, error)
}
