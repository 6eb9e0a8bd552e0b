// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package provider

import (
	"context"
	_ "embed"
	"os/exec"
)

//go:embed scripts/locate.ps1
var powershellScript string

// nativeCommand runs the Windows Location API script. -NoProfile keeps user
// profiles out of the helper.
func nativeCommand(ctx context.Context) (*exec.Cmd, func(), error) {
	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", powershellScript)

	return cmd, func() {}, nil
}
