// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package provider

import (
	"context"
	_ "embed"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jcodagnone/whereami/locate"
)

//go:embed scripts/locate.swift
var swiftScript string

// nativeCommand runs the CoreLocation helper. It is compiled once and cached,
// so the wait for a fix doesn't include the Swift compiler.
func nativeCommand(ctx context.Context) (*exec.Cmd, func(), error) {
	bin, err := compiledHelper(ctx, helperCacheDir(), "locate", ".swift", swiftScript, swiftc)
	if err != nil {
		return nil, nil, err
	}

	return exec.CommandContext(ctx, bin), func() {}, nil
}

func swiftc(ctx context.Context, src, out string) error {
	compiler, err := exec.LookPath("swiftc")
	if err != nil {
		return fmt.Errorf("%w: swiftc not found (install the Xcode command line tools): %w",
			locate.ErrUnsupportedPlatform, err)
	}

	output, err := exec.CommandContext(ctx, compiler, "-O", "-o", out, src).CombinedOutput()
	if err != nil {
		return fmt.Errorf("compiling location helper: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return nil
}
