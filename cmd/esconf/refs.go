// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ManuGH/esconf/internal/config"
	"github.com/spf13/cobra"
)

func newRefsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refs FILE",
		Short: "List every series reference in a document",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.Load(args[0])
			if err != nil {
				reportLoadError(cmd.ErrOrStderr(), args[0], err)
				return errInvalid
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LINE\tPATH\tSOURCE\tFIELD")
			for _, ref := range config.References(doc) {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ref.Line, ref.Path, ref.Handle.Source, ref.Handle.Field)
			}
			return tw.Flush()
		},
	}
}
