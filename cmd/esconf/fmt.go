// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/ManuGH/esconf/internal/config"
	"github.com/spf13/cobra"
)

func newFmtCmd() *cobra.Command {
	var (
		write bool
		check bool
	)
	cmd := &cobra.Command{
		Use:   "fmt FILE",
		Short: "Rewrite a document in canonical form with unit comments",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && check {
				return usageError{errors.New("--write and --check are mutually exclusive")}
			}
			path := args[0]
			doc, err := config.Load(path)
			if err != nil {
				reportLoadError(cmd.ErrOrStderr(), path, err)
				return errInvalid
			}
			if check {
				// #nosec G304 -- CLI tool, path provided by user argument
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read config: %w", err)
				}
				formatted, err := config.Marshal(doc)
				if err != nil {
					return err
				}
				if !bytes.Equal(raw, formatted) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is not formatted\n", path)
					return errInvalid
				}
				return nil
			}
			if write {
				return config.Save(path, doc)
			}
			return writeDocument(cmd.OutOrStdout(), "", doc)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to FILE")
	cmd.Flags().BoolVar(&check, "check", false, "exit 1 if FILE is not already formatted")
	return cmd
}
