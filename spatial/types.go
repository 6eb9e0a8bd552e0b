// Copyright 2025 The WhereAmI Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/uber/h3-go/v4"
)

const earthRadius = 6371e3 // meters

// ErrInvalidPoint is returned when a textual point can't be parsed.
var ErrInvalidPoint = errors.New("invalid point")

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParsePoint parses a "lat,lng" pair, as printed by String.
func ParsePoint(s string) (Point, error) {
	latStr, lngStr, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Point{}, fmt.Errorf("%w: %q: expected lat,lng", ErrInvalidPoint, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: latitude %q: %w", ErrInvalidPoint, latStr, err)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: longitude %q: %w", ErrInvalidPoint, lngStr, err)
	}

	p := Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}

	return p, nil
}

// Validate checks that the coordinates are within range.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidPoint, p.Lat)
	}

	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidPoint, p.Lng)
	}

	return nil
}

// FormatCoordinate prints a coordinate with the minimal number of digits needed
// to represent it, never in exponent form. Swift's print switches to exponent
// form below 1e-4 in magnitude ("1e-05"); this prints "0.00001" instead.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// String returns the "lat,lng" representation of the Point.
func (p Point) String() string {
	return FormatCoordinate(p.Lat) + "," + FormatCoordinate(p.Lng)
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Cell returns the H3 index containing the point at the given resolution (0-15).
func (p Point) Cell(res int) (h3.Cell, error) {
	if res < 0 || res > 15 {
		return 0, fmt.Errorf("h3 resolution %d out of range [0, 15]", res)
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("indexing %s: %w", p, err)
	}

	return cell, nil
}
