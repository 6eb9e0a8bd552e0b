// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package locate

import (
	"context"

	"github.com/jcodagnone/whereami/spatial"
)

// Handler receives the events of a location subscription. Either field may be
// invoked from any goroutine and more than once.
type Handler struct {
	OnLocation func(fixes []spatial.Point)
	OnError    func(err error)
}

// Service is the location service capability the fetcher consumes.
type Service interface {
	// Name identifies the service in logs and output.
	Name() string

	// RequestAuthorization asks for permission to access the location. It
	// doesn't wait for the answer; a denial is delivered through OnError.
	RequestAuthorization()

	// StartUpdates begins delivering events to h until ctx is done.
	StartUpdates(ctx context.Context, h Handler) error
}

// Stopper is implemented by services that hold resources beyond the context
// handed to StartUpdates.
type Stopper interface {
	Stop()
}
