// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/jcodagnone/whereami/geocode"
	"github.com/jcodagnone/whereami/locate"
	"github.com/jcodagnone/whereami/provider"
	"github.com/jcodagnone/whereami/spatial"
	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address [lat,lng]",
	Short: "Prints the street address of a point, or of the current location",
	Long: `Reverse geocodes the given point with the Google Maps Geocoding API. Without
a point, the current location is fetched first, as whereami does.

The API key is read from GOOGLE_MAPS_API_KEY or, when unset, retrieved through
Application Default Credentials.

$ whereami address -34.9011,-56.1645
Av. 18 de Julio 1360, 11100 Montevideo, Uruguay
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p spatial.Point

		if len(args) == 1 {
			var err error
			if p, err = spatial.ParsePoint(args[0]); err != nil {
				return err
			}
		} else {
			if err := rootOptions.validate(); err != nil {
				return err
			}

			res, err := fetchLocation(cmd.Context(), rootOptions, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if !res.OK() {
				return &exitError{code: res.Report(cmd.OutOrStdout(), cmd.ErrOrStderr())}
			}

			p = res.Point
		}

		key, err := provider.ResolveAPIKey(cmd.Context())
		if err != nil {
			return err
		}

		var geocoder geocode.Geocoder = geocode.NewGoogleMapsGeocoder(
			newHTTPClient(rootOptions, cmd.ErrOrStderr()), key)

		addr, err := geocoder.Reverse(cmd.Context(), p)
		if err != nil {
			if hint := geocodingHint(err); hint != "" {
				log.Print(hint)
			}

			return fmt.Errorf("reverse geocoding %s: %w", p, err)
		}

		log.Printf("%s: %s confidence, %s", addr.Provider, addr.Confidence, addr.Point)

		_, err = fmt.Fprintln(cmd.OutOrStdout(), addr.DisplayName)

		return err
	},
}

func geocodingHint(err error) string {
	switch {
	case locate.IsQuotaExceededError(err):
		return "Geocoding quota exhausted, try again later"
	case locate.IsRateLimitError(err):
		return "Geocoding rate limit reached, slow down"
	case locate.IsTimeoutError(err):
		return "Geocoding service didn't answer in time, raise --timeout"
	default:
		return ""
	}
}

func init() {
	rootCmd.AddCommand(addressCmd)
}
