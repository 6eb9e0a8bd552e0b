// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jcodagnone/whereami/locate"
	"github.com/jcodagnone/whereami/spatial"
)

// helperCommand prepares the platform helper. cleanup is called once the
// helper exited.
type helperCommand func(ctx context.Context) (cmd *exec.Cmd, cleanup func(), err error)

// NativeService asks the operating system location service through a helper
// process: a Swift script on macOS, a PowerShell script on Windows and
// GeoClue's where-am-i on Linux. The helper prints fixes on stdout, either as
// "lat,lon" lines or as "Latitude:"/"Longitude:" pairs.
type NativeService struct {
	command helperCommand
	wg      sync.WaitGroup
}

// NewNativeService creates the service for the running platform.
func NewNativeService() *NativeService {
	return &NativeService{command: nativeCommand}
}

func (s *NativeService) Name() string { return Native }

// RequestAuthorization is performed by the helper itself, which is the
// process the operating system attributes the request to.
func (s *NativeService) RequestAuthorization() {
	log.Printf("%s: authorization is requested by the platform helper", Native)
}

func (s *NativeService) StartUpdates(ctx context.Context, h locate.Handler) error {
	cmd, cleanup, err := s.command(ctx)
	if err != nil {
		return err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cleanup()

		return fmt.Errorf("connecting to %s: %w", cmd.Path, err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		cleanup()

		return fmt.Errorf("starting %s: %w", cmd.Path, err)
	}

	log.Printf("%s: started %s (pid %d)", Native, cmd.Path, cmd.Process.Pid)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer cleanup()

		found := false

		scanFixes(stdout, func(p spatial.Point) {
			found = true

			h.OnLocation([]spatial.Point{p})
		})

		err := cmd.Wait()
		if found || ctx.Err() != nil {
			return
		}

		h.OnError(helperError(err, stderr.String()))
	}()

	return nil
}

// Stop waits for the helper to be reaped, the context given to StartUpdates
// must be done by then.
func (s *NativeService) Stop() {
	s.wg.Wait()
}

// scanFixes reads helper output and emits every fix found in it.
func scanFixes(r io.Reader, emit func(spatial.Point)) {
	var (
		lat    float64
		hasLat bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if name, value, ok := strings.Cut(line, ":"); ok {
			v, err := parseDegrees(value)
			if err != nil {
				continue
			}

			switch strings.ToLower(strings.TrimSpace(name)) {
			case "latitude":
				lat, hasLat = v, true
			case "longitude":
				if hasLat {
					p := spatial.Point{Lat: lat, Lng: v}
					if p.Validate() == nil {
						emit(p)
					}
				}

				hasLat = false
			}

			continue
		}

		if p, err := spatial.ParsePoint(line); err == nil {
			emit(p)
		}
	}

	// Keep draining so the helper never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

func parseDegrees(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "°"))

	return strconv.ParseFloat(s, 64)
}

// helperError builds the error for a helper that exited without a fix, out of
// its last diagnostic line.
func helperError(waitErr error, stderr string) error {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")

	msg := strings.TrimSpace(lines[len(lines)-1])
	msg = strings.TrimPrefix(msg, "Error: ")

	switch {
	case msg == locate.ErrAuthorizationDenied.Error():
		return locate.ErrAuthorizationDenied
	case msg != "":
		return errors.New(msg)
	case waitErr != nil:
		return fmt.Errorf("location helper failed: %w", waitErr)
	default:
		return errors.New("location helper exited without a location")
	}
}
