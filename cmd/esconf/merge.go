// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"io"

	"github.com/ManuGH/esconf/internal/config"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var (
		out   string
		check bool
	)
	cmd := &cobra.Command{
		Use:   "merge DEFAULTS OVERRIDES",
		Short: "Merge a document over a defaults document",
		Long: `Deep-merges OVERRIDES over DEFAULTS: mappings merge key by key, every other
value in OVERRIDES replaces the default. DEFAULTS may be "builtin" to use the
built-in defaults. The result is written to stdout or, with --out, atomically
to a file.`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], out, check)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the merged document to this file")
	cmd.Flags().BoolVar(&check, "validate", false, "validate the merged document before writing it")
	return cmd
}

func runMerge(stdout, stderr io.Writer, defaultsPath, overridesPath, out string, check bool) error {
	var defaults *config.Document
	if defaultsPath == "builtin" {
		defaults = config.Defaults()
	} else {
		doc, err := config.Load(defaultsPath)
		if err != nil {
			reportLoadError(stderr, defaultsPath, err)
			return errInvalid
		}
		defaults = doc
	}
	overrides, err := config.Load(overridesPath)
	if err != nil {
		reportLoadError(stderr, overridesPath, err)
		return errInvalid
	}

	merged := config.Merge(defaults, overrides)
	if check {
		if _, err := config.Validate(merged); err != nil {
			reportValidation(stderr, overridesPath, err)
			return errInvalid
		}
	}
	return writeDocument(stdout, out, merged)
}

func writeDocument(stdout io.Writer, out string, doc *config.Document) error {
	if out != "" {
		return config.Save(out, doc)
	}
	data, err := config.Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := stdout.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
