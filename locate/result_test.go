// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package locate

import (
	"testing"

	"github.com/jcodagnone/whereami/spatial"
	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name       string
		result     Result
		wantStdout string
		wantStderr string
		wantCode   int
	}{
		{
			name:       "success",
			result:     Success(spatial.Point{Lat: -34.9011, Lng: -56.1645}),
			wantStdout: "-34.9011,-56.1645\n",
			wantCode:   0,
		},
		{
			name:       "integral coordinates",
			result:     Success(spatial.Point{Lat: 10, Lng: -20}),
			wantStdout: "10,-20\n",
			wantCode:   0,
		},
		{
			name:       "failure",
			result:     Failure("The operation couldn’t be completed. (kCLErrorDomain error 1.)"),
			wantStderr: "Error: The operation couldn’t be completed. (kCLErrorDomain error 1.)\n",
			wantCode:   1,
		},
		{
			name:       "timeout",
			result:     Timeout(),
			wantStderr: "Timeout fetching location\n",
			wantCode:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := report(tt.result)
			assert.Equal(t, tt.wantStdout, stdout)
			assert.Equal(t, tt.wantStderr, stderr)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantCode, tt.result.ExitCode())
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "failure", OutcomeFailure.String())
	assert.Equal(t, "timeout", OutcomeTimeout.String())
	assert.Equal(t, "Outcome(0)", Outcome(0).String())
}
