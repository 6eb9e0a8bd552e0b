// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jcodagnone/whereami/provider"
	"github.com/jcodagnone/whereami/spatial"
	"github.com/jcodagnone/whereami/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Lists the available location services",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printProviders(cmd.OutOrStdout())
	},
}

func printProviders(w io.Writer) error {
	auto, err := provider.Resolve(provider.Auto)
	if err != nil {
		return err
	}

	a, b := strings.Repeat("─", 8), strings.Repeat("─", 80)
	fmt.Fprintf(w, "╭─%-8s─┬─%-80s╮\n", a, b)
	fmt.Fprintf(w, "│ %-8s │ %-80s│\n", "Name", "Description")
	fmt.Fprintf(w, "├─%-8s─┼─%-80s┤\n", a, b)

	for _, name := range provider.Names() {
		desc := provider.Describe(name)
		if name == provider.Auto {
			desc += " (here: " + auto + ")"
		}

		fmt.Fprintf(w, "│ %-8s │ %-80s│\n", name, desc)
	}

	_, err = fmt.Fprintf(w, "╰─%-8s─┴─%-80s╯\n", a, b)

	return err
}

var debugDistanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Computes distances between pairs of points",
	Long: `Reads two points per line, separated by spaces or a semicolon, and prints the
line followed by the great-circle distance between them.

$ echo "-34.9011,-56.1645 -34.6037,-58.3816" | whereami debug distance
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input := cmd.InOrStdin()
		if f, ok := input.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Enter pairs of points to measure, one pair per line…")
		}

		return printDistances(input, cmd.OutOrStdout())
	},
}

func printDistances(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ';'
		})
		if len(fields) != 2 {
			fmt.Fprintf(w, "%s\t%q\n", line, "expected two points")

			continue
		}

		from, err := spatial.ParsePoint(fields[0])
		if err != nil {
			fmt.Fprintf(w, "%s\t%q\n", line, err)

			continue
		}

		to, err := spatial.ParsePoint(fields[1])
		if err != nil {
			fmt.Fprintf(w, "%s\t%q\n", line, err)

			continue
		}

		fmt.Fprintf(w, "%s\t%s\n", line, textutils.FormatDistance(from.HaversineDistance(&to)))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

var debugCellCmd = &cobra.Command{
	Use:   "cell <lat,lng> [resolution...]",
	Short: "Prints the H3 cells containing a point",
	Long: `Prints the H3 index of the cell containing the point at each resolution,
9 when none is given.

$ whereami debug cell 37.7749,-122.4194 5 9
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := spatial.ParsePoint(args[0])
		if err != nil {
			return err
		}

		resolutions := []int{9}
		if len(args) > 1 {
			resolutions = resolutions[:0]

			for _, arg := range args[1:] {
				res, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid resolution %q: %w", arg, err)
				}

				resolutions = append(resolutions, res)
			}
		}

		for _, res := range resolutions {
			cell, err := p.Cell(res)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", res, cell)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugProvidersCmd)
	debugCmd.AddCommand(debugDistanceCmd)
	debugCmd.AddCommand(debugCellCmd)
}
