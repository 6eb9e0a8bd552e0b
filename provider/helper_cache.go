// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// compileFunc builds the helper source file src into the executable out.
type compileFunc func(ctx context.Context, src, out string) error

// compiledHelper returns the path of the executable built from source,
// compiling it into dir the first time. Executables are keyed by a hash of
// their source, so an upgraded helper is rebuilt.
func compiledHelper(ctx context.Context, dir, name, ext, source string, compile compileFunc) (string, error) {
	sum := sha256.Sum256([]byte(source))
	bin := filepath.Join(dir, fmt.Sprintf("%s-%x", name, sum[:8]))

	if info, err := os.Stat(bin); err == nil && info.Mode().IsRegular() {
		return bin, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating helper cache: %w", err)
	}

	src, err := os.CreateTemp(dir, name+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating helper source: %w", err)
	}
	defer os.Remove(src.Name())

	if _, err := src.WriteString(source); err != nil {
		src.Close()

		return "", fmt.Errorf("writing helper source: %w", err)
	}

	if err := src.Close(); err != nil {
		return "", fmt.Errorf("writing helper source: %w", err)
	}

	// Build next to the final path and rename, concurrent runs race harmlessly.
	partial := fmt.Sprintf("%s.%d.partial", bin, os.Getpid())
	defer os.Remove(partial)

	log.Printf("%s: compiling helper into %s", Native, bin)

	if err := compile(ctx, src.Name(), partial); err != nil {
		return "", err
	}

	if err := os.Rename(partial, bin); err != nil {
		return "", fmt.Errorf("installing helper: %w", err)
	}

	return bin, nil
}

// helperCacheDir is where compiled helpers are kept.
func helperCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, "whereami")
}
