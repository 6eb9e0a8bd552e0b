// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

// Package locate resolves the current location of the device from a location
// service, waiting for the first fix, the first error or a timeout.
package locate

import (
	"context"
	"log"
	"time"

	"github.com/jcodagnone/whereami/spatial"
)

// DefaultTimeout is how long Fetch waits when no timeout is given.
const DefaultTimeout = 5 * time.Second

// Fetcher performs one-shot location requests against a Service.
type Fetcher struct {
	service Service
}

// NewFetcher creates a fetcher for the given service.
func NewFetcher(service Service) *Fetcher {
	return &Fetcher{service: service}
}

// Fetch requests authorization, starts updates and returns whatever comes first:
// a fix, an error, or the timeout. A non-positive timeout means DefaultTimeout.
func (f *Fetcher) Fetch(ctx context.Context, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	name := f.service.Name()
	res := f.fetch(ctx, timeout)
	res.Provider = name

	log.Printf("%s: %s after waiting at most %v", name, res.Outcome, timeout)

	return res
}

func (f *Fetcher) fetch(ctx context.Context, timeout time.Duration) Result {
	updatesCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()

		if s, ok := f.service.(Stopper); ok {
			s.Stop()
		}
	}()

	// Single slot: the first event wins, the rest are dropped.
	events := make(chan Result, 1)
	publish := func(r Result) {
		select {
		case events <- r:
		default:
		}
	}

	handler := Handler{
		OnLocation: func(fixes []spatial.Point) {
			if len(fixes) == 0 {
				return
			}

			publish(Success(fixes[0]))
		},
		OnError: func(err error) {
			if err == nil {
				return
			}

			publish(Failure(err.Error()))
		},
	}

	if err := ctx.Err(); err != nil {
		return Failure(err.Error())
	}

	f.service.RequestAuthorization()

	if err := f.service.StartUpdates(updatesCtx, handler); err != nil {
		return Failure(err.Error())
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-events:
		return r
	case <-timer.C:
		return pending(events, Timeout())
	case <-ctx.Done():
		return pending(events, Failure(ctx.Err().Error()))
	}
}

// pending returns an event that raced with the timer or the cancellation,
// which still wins, or fallback.
func pending(events <-chan Result, fallback Result) Result {
	select {
	case r := <-events:
		return r
	default:
		return fallback
	}
}
