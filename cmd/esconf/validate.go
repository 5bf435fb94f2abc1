// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ManuGH/esconf/internal/config"
	xglog "github.com/ManuGH/esconf/internal/log"
	"github.com/ManuGH/esconf/internal/metrics"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	file            string
	defaultsFile    string
	builtinDefaults bool
	techDefaults    bool
	checkSources    bool
	sourcesDir      string
	watch           bool
	metricsTextfile string
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate -f FILE",
		Short: "Validate a configuration document",
		Long: `Loads a configuration document, optionally merges it over defaults, and
checks every section against the schema. All violations are reported at once.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.file == "" {
				return usageError{errors.New("--file is required")}
			}
			if opts.defaultsFile != "" && opts.builtinDefaults {
				return usageError{errors.New("--defaults and --builtin-defaults are mutually exclusive")}
			}
			return runValidate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "path to YAML configuration file")
	f.StringVar(&opts.defaultsFile, "defaults", "", "defaults document merged under the file")
	f.BoolVar(&opts.builtinDefaults, "builtin-defaults", false, "merge the built-in defaults under the file")
	f.BoolVar(&opts.techDefaults, "technology-defaults", false, "fill unset parameters of declared technologies")
	f.BoolVar(&opts.checkSources, "check-sources", false, "verify that referenced data files exist")
	f.StringVar(&opts.sourcesDir, "sources-dir", "", "directory referenced sources are relative to (default: the file's directory)")
	f.BoolVar(&opts.watch, "watch", false, "keep running and re-validate on every change")
	f.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")
	return cmd
}

func runValidate(ctx context.Context, stdout, stderr io.Writer, opts *validateOptions) (err error) {
	if opts.metricsTextfile != "" {
		defer func() {
			if werr := metrics.WriteTextfile(opts.metricsTextfile); werr != nil && err == nil {
				err = werr
			}
		}()
	}

	defaults, err := loadDefaults(opts)
	if err != nil {
		return err
	}

	doc, err := config.Load(opts.file)
	if err != nil {
		reportLoadError(stderr, opts.file, err)
		return errInvalid
	}
	doc = prepare(doc, defaults, opts.techDefaults)
	ctx = xglog.ContextWithLoadID(ctx, doc.LoadID)
	logger := xglog.WithComponentFromContext(ctx, "cli")
	logger.Debug().
		Str(xglog.FieldPath, opts.file).
		Bool("defaults", defaults != nil).
		Msg("validating document")

	res, err := config.Validate(doc)
	if err != nil {
		reportValidation(stderr, opts.file, err)
		return errInvalid
	}
	reportResult(stdout, opts.file, res)

	if opts.checkSources {
		dir := opts.sourcesDir
		if dir == "" {
			dir = filepath.Dir(opts.file)
		}
		missing, err := config.CheckSources(ctx, doc, dir)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			fmt.Fprintf(stderr, "Missing data sources for %s:\n", opts.file)
			for _, m := range missing {
				fmt.Fprintf(stderr, "  %s (referenced by %v): %v\n", m.Source, m.Paths, m.Err)
			}
			return errInvalid
		}
	}

	if !opts.watch {
		return nil
	}
	return watchFile(ctx, stdout, opts, defaults)
}

func loadDefaults(opts *validateOptions) (*config.Document, error) {
	switch {
	case opts.builtinDefaults:
		return config.Defaults(), nil
	case opts.defaultsFile != "":
		doc, err := config.Load(opts.defaultsFile)
		if err != nil {
			return nil, fmt.Errorf("load defaults: %w", err)
		}
		return doc, nil
	default:
		return nil, nil
	}
}

func prepare(doc, defaults *config.Document, techDefaults bool) *config.Document {
	if techDefaults {
		doc = config.WithTechnologyDefaults(doc)
	}
	if defaults != nil {
		doc = config.Merge(defaults, doc)
	}
	return doc
}

func watchFile(ctx context.Context, stdout io.Writer, opts *validateOptions, defaults *config.Document) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := config.Watch(ctx, opts.file, config.WatchOptions{
		Defaults:           defaults,
		TechnologyDefaults: opts.techDefaults,
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	updates := make(chan config.Snapshot, 1)
	h.Subscribe(updates)

	logger := xglog.WithComponent("cli")
	logger.Info().Str(xglog.FieldPath, opts.file).Msg("watching for changes, press Ctrl-C to stop")
	for {
		select {
		case <-h.Done():
			return nil
		case snap := <-updates:
			reportResult(stdout, opts.file, snap.Result)
		}
	}
}

func reportLoadError(w io.Writer, file string, err error) {
	var pe *config.ParseError
	if errors.As(err, &pe) {
		fmt.Fprintf(w, "Configuration error in %s:\n  %v\n", file, pe)
		return
	}
	fmt.Fprintf(w, "Cannot read %s:\n  %v\n", file, err)
}

func reportValidation(w io.Writer, file string, err error) {
	var se *config.SchemaError
	if !errors.As(err, &se) {
		fmt.Fprintf(w, "Validation error in %s:\n  %v\n", file, err)
		return
	}
	fmt.Fprintf(w, "Validation error in %s: %d violation(s)\n", file, len(se.Violations))
	for _, v := range se.Violations {
		if v.Line > 0 {
			fmt.Fprintf(w, "  %s (line %d): %s\n", v.Field, v.Line, v.Message)
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", v.Field, v.Message)
	}
}

func reportResult(w io.Writer, file string, res *config.Result) {
	fmt.Fprintf(w, "✓ %s is valid\n", file)
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	for _, name := range res.Inactive {
		fmt.Fprintf(w, "  inactive: %s (sized to zero)\n", name)
	}
}
