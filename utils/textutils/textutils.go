// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils normalizes user input and formats numbers for humans.
package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

var printer = message.NewPrinter(language.English)

// FormatDistance prints a distance given in meters, switching to kilometers
// from 1 km on.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return printer.Sprintf("%.0f m", meters)
	}

	return printer.Sprintf("%.2f km", meters/1000)
}
