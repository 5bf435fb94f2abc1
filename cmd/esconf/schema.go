// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/esconf/internal/config"
	"github.com/spf13/cobra"
)

const (
	docBeginMarker = "<!-- BEGIN GENERATED CONFIG OPTIONS -->"
	docEndMarker   = "<!-- END GENERATED CONFIG OPTIONS -->"
)

func newSchemaCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration reference as Markdown",
		Long: `Prints every known section, field, unit and bound as Markdown tables.
With --out the generated block replaces the marked region of an existing file,
or is appended when the markers are missing.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := config.GetRegistry()
			if err != nil {
				return err
			}
			generated := buildSchemaDoc(reg)
			if out == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), generated+"\n")
				return err
			}
			return updateSchemaDoc(out, generated)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Markdown file whose generated section is replaced")
	return cmd
}

func updateSchemaDoc(path, generated string) error {
	// #nosec G304 -- CLI tool, path provided by user argument
	raw, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read schema doc: %w", err)
	}
	out := replaceGeneratedSection(string(raw), generated)
	if err := os.WriteFile(path, []byte(out), 0o600); err != nil {
		return fmt.Errorf("write schema doc: %w", err)
	}
	return nil
}

func buildSchemaDoc(reg *config.Registry) string {
	defaults := config.Defaults()

	var b strings.Builder
	b.WriteString(docBeginMarker)
	b.WriteString("\n## Configuration Reference (Generated)\n\n")
	b.WriteString("This section is generated by `esconf schema`. Do not edit by hand.\n\n")

	b.WriteString("### Model flags\n\n")
	writeTableHeader(&b)
	for i := range reg.Flags {
		f := &reg.Flags[i]
		writeFieldRow(&b, f.Name, f, defaultFor(defaults, "", f.Name))
	}
	b.WriteString("\n")

	for _, s := range reg.Sections {
		writeSection(&b, defaults, s.Name, s)
	}
	b.WriteString(docEndMarker)
	return b.String()
}

func writeSection(b *strings.Builder, defaults *config.Document, path string, s *config.Section) {
	fmt.Fprintf(b, "### %s\n\n", path)
	var notes []string
	if s.Doc != "" {
		notes = append(notes, s.Doc+".")
	}
	if s.Required {
		notes = append(notes, "Required.")
	}
	if sizing, ok := s.SizingField(); ok {
		notes = append(notes, fmt.Sprintf("Switched off when `%s` is 0.", sizing.Name))
	}
	if len(notes) > 0 {
		b.WriteString(strings.Join(notes, " ") + "\n\n")
	}

	writeTableHeader(b)
	var nested []config.Field
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Kind == config.FieldSection {
			nested = append(nested, *f)
		}
		writeFieldRow(b, path+"."+f.Name, f, defaultFor(defaults, path, f.Name))
	}
	b.WriteString("\n")

	for _, f := range nested {
		writeSection(b, defaults, path+"."+f.Name, f.Section)
	}
}

func writeTableHeader(b *strings.Builder) {
	b.WriteString("| Path | Kind | Unit | Bound | Required | Default | Description |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
}

func writeFieldRow(b *strings.Builder, path string, f *config.Field, def string) {
	unit := "-"
	if f.Unit != "" {
		unit = f.Unit
	}
	bound := "-"
	switch f.Kind {
	case config.FieldNumber, config.FieldSeries, config.FieldLevels, config.FieldFractions, config.FieldNumberList:
		bound = f.Bound.String()
	}
	req := ""
	if f.Required {
		req = "yes"
	}
	doc := f.Doc
	if f.Sizing {
		doc = strings.TrimSpace(doc + " (sizing)")
	}
	fmt.Fprintf(b, "| `%s` | %s | %s | %s | %s | %s | %s |\n", path, f.Kind, unit, bound, req, def, doc)
}

// defaultFor looks a field up in the shared defaults, then in the
// technology defaults of its top-level section.
func defaultFor(defaults *config.Document, section, name string) string {
	path := name
	if section != "" {
		path = section + "." + name
	}
	if v, ok := defaults.Lookup(path); ok {
		return formatDefault(v)
	}
	top, rest, nested := strings.Cut(path, ".")
	if !nested {
		return "-"
	}
	tech, ok := config.TechnologyDefaults(top)
	if !ok {
		return "-"
	}
	if v, ok := tech.Lookup(rest); ok {
		return formatDefault(v)
	}
	return "-"
}

func formatDefault(v *config.Value) string {
	switch v.Kind() {
	case config.KindMapping, config.KindSequence:
		return "`" + strings.ReplaceAll(compactFlow(v), "|", "\\|") + "`"
	case config.KindNull:
		return "-"
	default:
		return "`" + v.String() + "`"
	}
}

func compactFlow(v *config.Value) string {
	switch v.Kind() {
	case config.KindMapping:
		parts := make([]string, 0, v.Len())
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			parts = append(parts, k+": "+compactFlow(child))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case config.KindSequence:
		items := v.Items()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = compactFlow(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.String()
	}
}

func replaceGeneratedSection(content, generated string) string {
	start := strings.Index(content, docBeginMarker)
	end := strings.Index(content, docEndMarker)
	if start == -1 || end == -1 || end < start {
		if content == "" {
			return generated + "\n"
		}
		return content + "\n\n" + generated + "\n"
	}
	end += len(docEndMarker)
	return content[:start] + generated + content[end:]
}
