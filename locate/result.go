// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package locate

import (
	"fmt"
	"io"

	"github.com/jcodagnone/whereami/spatial"
)

// Outcome tells which variant a Result holds.
type Outcome int

const (
	// OutcomeSuccess a fix was obtained.
	OutcomeSuccess Outcome = iota + 1
	// OutcomeFailure the service reported an error.
	OutcomeFailure
	// OutcomeTimeout nothing happened within the allotted time.
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Exit codes of the reporting contract.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// TimeoutMessage is the diagnostic printed when no event arrives in time.
const TimeoutMessage = "Timeout fetching location"

// Result is the outcome of a single Fetch. Point is only meaningful for
// OutcomeSuccess and Message only for OutcomeFailure.
type Result struct {
	Outcome  Outcome
	Point    spatial.Point
	Message  string
	Provider string
}

// Success builds a successful result.
func Success(p spatial.Point) Result {
	return Result{Outcome: OutcomeSuccess, Point: p}
}

// Failure builds a failed result carrying the service's description.
func Failure(message string) Result {
	return Result{Outcome: OutcomeFailure, Message: message}
}

// Timeout builds a timed out result.
func Timeout() Result {
	return Result{Outcome: OutcomeTimeout}
}

// OK reports whether the result holds a fix.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// ExitCode maps the result to the process exit status.
func (r Result) ExitCode() int {
	if r.OK() {
		return ExitOK
	}

	return ExitFailure
}

// Diagnostic returns the line written to stderr for unsuccessful results.
func (r Result) Diagnostic() string {
	switch r.Outcome {
	case OutcomeSuccess:
		return ""
	case OutcomeTimeout:
		return TimeoutMessage
	default:
		return "Error: " + r.Message
	}
}

// Report writes "lat,lon" to stdout on success, or the diagnostic to stderr,
// and returns the exit code.
func (r Result) Report(stdout, stderr io.Writer) int {
	if r.OK() {
		fmt.Fprintln(stdout, r.Point.String())
	} else {
		fmt.Fprintln(stderr, r.Diagnostic())
	}

	return r.ExitCode()
}
