// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompiler struct {
	calls   int
	sources []string
	err     error
}

func (c *fakeCompiler) compile(_ context.Context, src, out string) error {
	c.calls++

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	c.sources = append(c.sources, string(data))

	if c.err != nil {
		return c.err
	}

	return os.WriteFile(out, data, 0o755)
}

func TestCompiledHelperReusesBinary(t *testing.T) {
	dir := t.TempDir()
	compiler := &fakeCompiler{}

	first, err := compiledHelper(context.Background(), dir, "locate", ".swift", "print(1)", compiler.compile)
	require.NoError(t, err)

	second, err := compiledHelper(context.Background(), dir, "locate", ".swift", "print(1)", compiler.compile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, compiler.calls)
	assert.Equal(t, []string{"print(1)"}, compiler.sources)
	assert.FileExists(t, first)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "sources and partial builds are removed")
}

func TestCompiledHelperRebuildsOnNewSource(t *testing.T) {
	dir := t.TempDir()
	compiler := &fakeCompiler{}

	first, err := compiledHelper(context.Background(), dir, "locate", ".swift", "print(1)", compiler.compile)
	require.NoError(t, err)

	second, err := compiledHelper(context.Background(), dir, "locate", ".swift", "print(2)", compiler.compile)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, compiler.calls)
}

func TestCompiledHelperError(t *testing.T) {
	dir := t.TempDir()
	compiler := &fakeCompiler{err: errors.New("compiling location helper: exit status 1")}

	_, err := compiledHelper(context.Background(), dir, "locate", ".swift", "print(1)", compiler.compile)
	require.EqualError(t, err, "compiling location helper: exit status 1")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
