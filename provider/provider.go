// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

// Package provider implements the location services whereami can ask.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"slices"
	"strings"

	"github.com/jcodagnone/whereami/locate"
	"github.com/jcodagnone/whereami/spatial"
	"github.com/jcodagnone/whereami/utils/textutils"
)

// Provider names.
const (
	Auto   = "auto"
	Native = "native"
	IP     = "ip"
	Google = "google"
	Static = "static"
)

// ErrUnknownProvider is returned by New for names it doesn't know.
var ErrUnknownProvider = errors.New("unknown provider")

// Options configures the services built by New.
type Options struct {
	// HTTPClient is used by the network services
	HTTPClient *http.Client

	// At is the point reported by the static service
	At *spatial.Point

	// GoogleAPIKey overrides the key resolution of the google service
	GoogleAPIKey string
}

// Descriptions of every provider, in listing order.
var descriptions = map[string]string{
	Auto:   "native on macOS, ip elsewhere",
	Native: "operating system location service (CoreLocation, Windows Location API, GeoClue)",
	IP:     "approximate location of the public IP address (ip-api.com)",
	Google: "Google Geolocation API",
	Static: "fixed point given with --at",
}

// Names returns the provider names accepted by New.
func Names() []string {
	return []string{Auto, Native, IP, Google, Static}
}

// Describe returns a one line description of the provider.
func Describe(name string) string {
	return descriptions[name]
}

// Resolve maps a user supplied name to a canonical one, following auto.
func Resolve(name string) (string, error) {
	n := textutils.LowerASCIIFolding(name)
	if n == "" {
		n = Auto
	}

	if !slices.Contains(Names(), n) {
		return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownProvider, name, strings.Join(Names(), ", "))
	}

	if n == Auto {
		return autoFor(runtime.GOOS), nil
	}

	return n, nil
}

// IP based location can be off by hundreds of kilometers; CoreLocation is
// reliable enough on macOS to be worth the permission prompt.
func autoFor(goos string) string {
	if goos == "darwin" {
		return Native
	}

	return IP
}

// New builds the named service.
func New(name string, options Options) (locate.Service, error) {
	canonical, err := Resolve(name)
	if err != nil {
		return nil, err
	}

	client := options.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	switch canonical {
	case Native:
		return NewNativeService(), nil
	case IP:
		return NewIPAPIService(client), nil
	case Google:
		return NewGoogleService(client, options.GoogleAPIKey), nil
	case Static:
		return NewStaticService(options.At), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, canonical)
	}
}

// deliver runs a single lookup in the background and forwards its outcome,
// unless the subscription was torn down in the meantime.
func deliver(ctx context.Context, h locate.Handler, lookup func(context.Context) (spatial.Point, error)) {
	go func() {
		p, err := lookup(ctx)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			h.OnError(err)

			return
		}

		h.OnLocation([]spatial.Point{p})
	}()
}
