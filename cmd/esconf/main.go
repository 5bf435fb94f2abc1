// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// esconf loads, validates and rewrites energy-system configuration files.
//
// Usage:
//
//	esconf validate -f plant.yaml [--builtin-defaults] [--check-sources] [--watch]
//	esconf resolve generation.csv:PV
//	esconf merge defaults.yaml plant.yaml -o merged.yaml
//	esconf fmt plant.yaml -w
//	esconf schema
//	esconf refs plant.yaml
//
// Exit codes:
//   - 0: success (document is valid)
//   - 1: document is invalid (parse, schema or missing source error)
//   - 2: usage error
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	xglog "github.com/ManuGH/esconf/internal/log"
	"github.com/ManuGH/esconf/internal/validate"
	"github.com/spf13/cobra"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// errInvalid is returned once findings have already been reported to the user.
var errInvalid = errors.New("invalid configuration")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errInvalid):
		return exitInvalid
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, "Run 'esconf --help' for usage.")
		return exitUsage
	}
	return exitInvalid
}

type rootOptions struct {
	logLevel  string
	logPretty bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "esconf",
		Short:         "Energy-system configuration loader and validator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.logLevel != "" {
				level, err := validate.ParseLogLevel(opts.logLevel)
				if err != nil {
					return usageError{err}
				}
				opts.logLevel = level
			}
			xglog.Reset()
			xglog.Configure(xglog.Config{
				Level:  opts.logLevel,
				Output: stderr,
				Pretty: opts.logPretty,
			})
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL or info)")
	root.PersistentFlags().BoolVar(&opts.logPretty, "log-pretty", false, "human-readable log output")

	root.AddCommand(
		newValidateCmd(),
		newResolveCmd(),
		newMergeCmd(),
		newFmtCmd(),
		newSchemaCmd(),
		newRefsCmd(),
		newVersionCmd(),
	)
	return root
}

// usageArgs wraps a cobra argument validator so its failures exit with the usage code.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}
