// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package locate

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/whereami/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService drives the handler through the start function.
type fakeService struct {
	start func(ctx context.Context, h Handler) error

	mu             sync.Mutex
	authorizations int
	stops          int
	ctx            context.Context
	handler        Handler
}

func (s *fakeService) Name() string { return "fake" }

func (s *fakeService) RequestAuthorization() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authorizations++
}

func (s *fakeService) StartUpdates(ctx context.Context, h Handler) error {
	s.mu.Lock()
	s.ctx, s.handler = ctx, h
	s.mu.Unlock()

	if s.start == nil {
		return nil
	}

	return s.start(ctx, h)
}

func (s *fakeService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

var sanFrancisco = spatial.Point{Lat: 37.7749, Lng: -122.4194}

func report(r Result) (string, string, int) {
	var stdout, stderr bytes.Buffer
	code := r.Report(&stdout, &stderr)

	return stdout.String(), stderr.String(), code
}

func TestFetchImmediateFix(t *testing.T) {
	svc := &fakeService{start: func(_ context.Context, h Handler) error {
		h.OnLocation([]spatial.Point{sanFrancisco})

		return nil
	}}

	res := NewFetcher(svc).Fetch(context.Background(), time.Second)

	want := Result{Outcome: OutcomeSuccess, Point: sanFrancisco, Provider: "fake"}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}

	stdout, stderr, code := report(res)
	assert.Equal(t, "37.7749,-122.4194\n", stdout)
	assert.Empty(t, stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, svc.authorizations)
}

func TestFetchError(t *testing.T) {
	svc := &fakeService{start: func(_ context.Context, h Handler) error {
		h.OnError(errors.New("denied"))

		return nil
	}}

	res := NewFetcher(svc).Fetch(context.Background(), time.Second)
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Equal(t, "denied", res.Message)

	stdout, stderr, code := report(res)
	assert.Empty(t, stdout)
	assert.Equal(t, "Error: denied\n", stderr)
	assert.Equal(t, 1, code)
}

func TestFetchTimeout(t *testing.T) {
	svc := &fakeService{}

	start := time.Now()
	res := NewFetcher(svc).Fetch(context.Background(), 20*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, OutcomeTimeout, res.Outcome)

	stdout, stderr, code := report(res)
	assert.Empty(t, stdout)
	assert.Equal(t, "Timeout fetching location\n", stderr)
	assert.Equal(t, 1, code)
}

func TestFetchKeepsFirstFix(t *testing.T) {
	other := spatial.Point{Lat: 1, Lng: 2}
	svc := &fakeService{start: func(_ context.Context, h Handler) error {
		h.OnLocation(nil)
		h.OnLocation([]spatial.Point{sanFrancisco, other})
		h.OnLocation([]spatial.Point{other})
		h.OnError(errors.New("too late"))

		return nil
	}}

	res := NewFetcher(svc).Fetch(context.Background(), time.Second)
	require.True(t, res.OK())
	assert.Equal(t, sanFrancisco, res.Point)
}

func TestFetchErrorBeforeFix(t *testing.T) {
	svc := &fakeService{start: func(_ context.Context, h Handler) error {
		h.OnError(nil)
		h.OnError(ErrAuthorizationDenied)
		h.OnLocation([]spatial.Point{sanFrancisco})

		return nil
	}}

	res := NewFetcher(svc).Fetch(context.Background(), time.Second)
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Equal(t, "location access denied", res.Message)
}

func TestFetchAsyncFix(t *testing.T) {
	svc := &fakeService{start: func(ctx context.Context, h Handler) error {
		go func() {
			select {
			case <-time.After(10 * time.Millisecond):
				h.OnLocation([]spatial.Point{sanFrancisco})
			case <-ctx.Done():
			}
		}()

		return nil
	}}

	res := NewFetcher(svc).Fetch(context.Background(), 5*time.Second)
	require.True(t, res.OK())
	assert.Equal(t, sanFrancisco, res.Point)
}

func TestFetchStartError(t *testing.T) {
	svc := &fakeService{start: func(_ context.Context, _ Handler) error {
		return ErrUnsupportedPlatform
	}}

	res := NewFetcher(svc).Fetch(context.Background(), time.Second)
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Equal(t, ErrUnsupportedPlatform.Error(), res.Message)
}

func TestFetchContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewFetcher(&fakeService{}).Fetch(ctx, time.Minute)
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Equal(t, context.Canceled.Error(), res.Message)
}

func TestFetchContextCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 100; i++ {
		svc := &fakeService{start: func(_ context.Context, h Handler) error {
			h.OnLocation([]spatial.Point{sanFrancisco})

			return nil
		}}

		res := NewFetcher(svc).Fetch(ctx, time.Minute)
		require.Equal(t, OutcomeFailure, res.Outcome)
		require.Equal(t, context.Canceled.Error(), res.Message)

		svc.mu.Lock()
		assert.Zero(t, svc.authorizations)
		assert.Nil(t, svc.ctx)
		svc.mu.Unlock()
	}
}

func TestFetchCancelledWithPendingFix(t *testing.T) {
	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		svc := &fakeService{start: func(_ context.Context, h Handler) error {
			h.OnLocation([]spatial.Point{sanFrancisco})
			cancel()

			return nil
		}}

		res := NewFetcher(svc).Fetch(ctx, time.Minute)
		require.True(t, res.OK())
		require.Equal(t, sanFrancisco, res.Point)
	}
}

func TestFetchTearsDownUpdates(t *testing.T) {
	svc := &fakeService{start: func(_ context.Context, h Handler) error {
		h.OnLocation([]spatial.Point{sanFrancisco})

		return nil
	}}

	res := NewFetcher(svc).Fetch(context.Background(), time.Second)
	require.True(t, res.OK())

	svc.mu.Lock()
	defer svc.mu.Unlock()

	require.NotNil(t, svc.ctx)
	assert.ErrorIs(t, svc.ctx.Err(), context.Canceled)
	assert.Equal(t, 1, svc.stops)

	// Late events are dropped without blocking.
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.handler.OnLocation([]spatial.Point{{Lat: 1, Lng: 1}})
		svc.handler.OnError(errors.New("late"))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("late callbacks blocked")
	}
}
