// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jcodagnone/whereami/locate"
	"github.com/jcodagnone/whereami/provider"
	"github.com/jcodagnone/whereami/spatial"
	"github.com/jcodagnone/whereami/utils/httputils"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

// stderr belongs to the diagnostics; logs only show up with --verbose.
func init() {
	log.SetFlags(0)
	log.SetOutput(io.Discard)
}

func configureLogging(w io.Writer, verbose bool) {
	if verbose {
		log.SetOutput(&logWriter{writer: w})
	} else {
		log.SetOutput(io.Discard)
	}
}

// Output formats.
const (
	formatPlain = "plain"
	formatJSON  = "json"
)

type options struct {
	// Time to wait for the first fix or error
	Timeout time.Duration

	// Location service to ask
	Provider string

	// Point reported by the static provider
	At string

	// Enables logging to stderr
	Verbose bool

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// Output format, plain or json
	Format string

	// H3 resolution of the cell included in json output, negative disables it
	H3Res int

	// Reference point to measure the distance to, json output only
	From string
}

func (o *options) validate() error {
	if o.Format != formatPlain && o.Format != formatJSON {
		return fmt.Errorf("invalid format %q (valid: %s, %s)", o.Format, formatPlain, formatJSON)
	}

	if o.H3Res > 15 {
		return fmt.Errorf("h3 resolution %d out of range [0, 15]", o.H3Res)
	}

	if o.From != "" {
		if _, err := spatial.ParsePoint(o.From); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	}

	if o.At != "" {
		if _, err := spatial.ParsePoint(o.At); err != nil {
			return fmt.Errorf("--at: %w", err)
		}
	}

	if _, err := provider.Resolve(o.Provider); err != nil {
		return err
	}

	return nil
}

// exitError carries the exit status of a run whose diagnostic was already printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var Version = "dev"

var rootOptions = &options{}

var rootCmd = newRootCmd(rootOptions)

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whereami",
		Short: "prints the current location of this device",
		Long: `
whereami asks a location service for the current position of this device and
prints it as "latitude,longitude". It fails if the service reports an error or
nothing arrives before the timeout.

$ whereami
37.7749,-122.4194
`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			configureLogging(cmd.ErrOrStderr(), opts.Verbose)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}

			res, err := fetchLocation(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return reportResult(res, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().DurationVar(
		&opts.Timeout,
		"timeout",
		locate.DefaultTimeout,
		"Time to wait for a location",
	)
	cmd.PersistentFlags().StringVarP(
		&opts.Provider,
		"provider",
		"p",
		provider.Auto,
		"Location service: auto, native, ip, google or static",
	)
	cmd.PersistentFlags().StringVar(
		&opts.At,
		"at",
		"",
		"Point reported by the static provider, as lat,lng",
	)
	cmd.PersistentFlags().BoolVarP(
		&opts.Verbose,
		"verbose",
		"v",
		false,
		"Log progress to stderr",
	)
	cmd.PersistentFlags().BoolVar(
		&opts.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	cmd.PersistentFlags().BoolVar(
		&opts.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
	cmd.Flags().StringVar(
		&opts.Format,
		"format",
		formatPlain,
		"Output format: plain or json",
	)
	cmd.Flags().IntVar(
		&opts.H3Res,
		"h3-res",
		-1,
		"Include the H3 cell at this resolution (json output)",
	)
	cmd.Flags().StringVar(
		&opts.From,
		"from",
		"",
		"Include the distance in meters to this lat,lng point (json output)",
	)

	return cmd
}

func newHTTPClient(opts *options, traceWriter io.Writer) *http.Client {
	clientOptions := httputils.ClientOptions{
		UserAgent: fmt.Sprintf("whereami/%s (+https://github.com/jcodagnone/whereami)", Version),
		TraceBody: opts.EnableHTTPBodyTrace,
		Timeout:   opts.Timeout,
	}

	if opts.EnableHTTPTrace || opts.EnableHTTPBodyTrace {
		clientOptions.TraceWriter = traceWriter
	}

	return httputils.NewClient(clientOptions)
}

func fetchLocation(ctx context.Context, opts *options, stderr io.Writer) (locate.Result, error) {
	providerOptions := provider.Options{
		HTTPClient: newHTTPClient(opts, stderr),
	}

	if opts.At != "" {
		at, err := spatial.ParsePoint(opts.At)
		if err != nil {
			return locate.Result{}, fmt.Errorf("--at: %w", err)
		}

		providerOptions.At = &at
	}

	svc, err := provider.New(opts.Provider, providerOptions)
	if err != nil {
		return locate.Result{}, err
	}

	log.Printf("Locating via %s (timeout %v)", svc.Name(), opts.Timeout)

	stop := startSpinner(stderr, "Locating via "+svc.Name())
	res := locate.NewFetcher(svc).Fetch(ctx, opts.Timeout)
	stop()

	return res, nil
}

type jsonFix struct {
	spatial.Point
	Provider       string   `json:"provider"`
	H3             string   `json:"h3,omitempty"`
	DistanceMeters *float64 `json:"distance_m,omitempty"`
}

func reportResult(res locate.Result, opts *options, stdout, stderr io.Writer) error {
	if !res.OK() || opts.Format == formatPlain {
		if code := res.Report(stdout, stderr); code != locate.ExitOK {
			return &exitError{code: code}
		}

		return nil
	}

	fix := jsonFix{Point: res.Point, Provider: res.Provider}

	if opts.H3Res >= 0 {
		cell, err := res.Point.Cell(opts.H3Res)
		if err != nil {
			return err
		}

		fix.H3 = cell.String()
	}

	if opts.From != "" {
		from, err := spatial.ParsePoint(opts.From)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}

		d := from.HaversineDistance(&res.Point)
		fix.DistanceMeters = &d
	}

	data, err := json.Marshal(fix)
	if err != nil {
		return fmt.Errorf("marshaling location: %w", err)
	}

	_, err = fmt.Fprintln(stdout, string(data))

	return err
}

// execute runs cmd and maps the outcome to an exit status. Anything that
// failed before a location was reported gets an "Error: " diagnostic.
func execute(cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cmd.ExecuteContext(ctx)

	var exitErr *exitError

	switch {
	case err == nil:
		return locate.ExitOK
	case errors.As(err, &exitErr):
		return exitErr.code
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)

		return locate.ExitFailure
	}
}

func Execute(version string) {
	Version = version

	os.Exit(execute(rootCmd, os.Args[1:]))
}
