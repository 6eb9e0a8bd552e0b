// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"context"
	"errors"

	"github.com/jcodagnone/whereami/locate"
	"github.com/jcodagnone/whereami/spatial"
)

// ErrNoStaticPoint is reported by a static service without a point.
var ErrNoStaticPoint = errors.New("no static location configured (use --at lat,lng)")

// StaticService reports a fixed point, as soon as updates start.
type StaticService struct {
	at *spatial.Point
}

// NewStaticService creates a service that always reports at.
func NewStaticService(at *spatial.Point) *StaticService {
	return &StaticService{at: at}
}

func (s *StaticService) Name() string { return Static }

// RequestAuthorization is a no-op, there is nothing to protect.
func (s *StaticService) RequestAuthorization() {}

func (s *StaticService) StartUpdates(_ context.Context, h locate.Handler) error {
	if s.at == nil {
		h.OnError(ErrNoStaticPoint)

		return nil
	}

	h.OnLocation([]spatial.Point{*s.at})

	return nil
}
