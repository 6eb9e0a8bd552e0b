// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package provider

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/jcodagnone/whereami/locate"
)

// Where distributions install the GeoClue demo agent.
var whereAmIPaths = []string{
	"/usr/libexec/geoclue-2.0/demos/where-am-i",
	"/usr/lib/geoclue-2.0/demos/where-am-i",
}

// nativeCommand runs GeoClue's where-am-i, which keeps printing fixes until
// it is killed.
func nativeCommand(ctx context.Context) (*exec.Cmd, func(), error) {
	path, err := exec.LookPath("where-am-i")
	if err != nil {
		for _, p := range whereAmIPaths {
			if _, statErr := os.Stat(p); statErr == nil {
				path, err = p, nil

				break
			}
		}
	}

	if err != nil {
		return nil, nil, fmt.Errorf("%w: GeoClue where-am-i not found", locate.ErrUnsupportedPlatform)
	}

	return exec.CommandContext(ctx, path), func() {}, nil
}
