// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/ManuGH/esconf/internal/config"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var (
		file   string
		levels bool
	)
	cmd := &cobra.Command{
		Use:   "resolve VALUE",
		Short: "Resolve a series reference or constant",
		Long: `Resolves VALUE as a series reference ("source:field") or a numeric constant.
With --file, VALUE is a dotted path into the document instead; per-level
generation mappings are resolved level by level and a single series is
broadcast over the document's temperature levels when --levels is set.`,
		Example: `  esconf resolve generation.csv:PV
  esconf resolve -f plant.yaml solar_thermal.spec_generation`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return resolveLiteral(cmd.OutOrStdout(), args[0])
			}
			return resolvePath(cmd.OutOrStdout(), cmd.ErrOrStderr(), file, args[0], levels)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "resolve a field path in this document")
	cmd.Flags().BoolVar(&levels, "levels", false, "broadcast a single series over the temperature levels")
	return cmd
}

func resolveLiteral(w io.Writer, arg string) error {
	v := config.String(arg)
	if f, err := strconv.ParseFloat(arg, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%q: value must be a finite number", arg)
		}
		v = config.Number(f)
	}
	r, err := config.ResolveReference(v)
	if err != nil {
		return err
	}
	printResolved(w, arg, r)
	return nil
}

func resolvePath(stdout, stderr io.Writer, file, path string, broadcast bool) error {
	doc, err := config.Load(file)
	if err != nil {
		reportLoadError(stderr, file, err)
		return errInvalid
	}
	v, ok := doc.Lookup(path)
	if !ok {
		return fmt.Errorf("%s: no value at %q", file, path)
	}

	shape, err := config.ShapeOf(v)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if shape == config.ShapeSingle && broadcast {
		levels := config.TemperatureLevels(doc)
		perLevel, err := config.Broadcast(v, levels)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, level := range levels {
			printResolved(stdout, path+"."+level, perLevel[level])
		}
		return nil
	}
	if shape == config.ShapeSingle {
		r, err := config.ResolveReference(v)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		printResolved(stdout, path, r)
		return nil
	}

	perLevel, err := config.Broadcast(v, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, level := range v.Keys() {
		printResolved(stdout, path+"."+level, perLevel[level])
	}
	return nil
}

func printResolved(w io.Writer, label string, r config.Resolved) {
	if r.IsSeries() {
		fmt.Fprintf(w, "%s\tseries\tsource=%s\tfield=%s\n", label, r.Series.Source, r.Series.Field)
		return
	}
	fmt.Fprintf(w, "%s\tconstant\t%s\n", label, r.String())
}
