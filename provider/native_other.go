// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !darwin && !windows && !linux

package provider

import (
	"context"
	"os/exec"

	"github.com/jcodagnone/whereami/locate"
)

func nativeCommand(_ context.Context) (*exec.Cmd, func(), error) {
	return nil, nil, locate.ErrUnsupportedPlatform
}
