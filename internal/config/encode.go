// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	xglog "github.com/ManuGH/esconf/internal/log"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Marshal serializes a document as YAML in its own key order.
// Known fields with a physical unit carry it as a line comment.
func Marshal(doc *Document) ([]byte, error) {
	reg, err := GetRegistry()
	if err != nil {
		return nil, fmt.Errorf("schema registry: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(encodeNode(doc.Root(), "", reg)); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes doc to path atomically.
func Save(path string, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	logger := xglog.WithComponent("config")
	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending config file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write config data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace config file: %w", err)
	}

	logger.Info().
		Str(xglog.FieldEvent, "config.saved").
		Str(xglog.FieldLoadID, doc.LoadID).
		Str(xglog.FieldPath, path).
		Msg("configuration document saved")
	return nil
}

func encodeNode(v *Value, path string, reg *Registry) *yaml.Node {
	switch v.Kind() {
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if v.Len() == 0 {
			n.Style = yaml.FlowStyle
		}
		for _, k := range v.keys {
			childPath := joinPath(path, k)
			child := v.entries[k]
			key := stringNode(k)
			val := encodeNode(child, childPath, reg)
			if unit := unitComment(reg, childPath); unit != "" {
				switch {
				case child.Kind() != KindMapping && child.Kind() != KindSequence:
					val.LineComment = "# " + unit
				case child.Len() > 0:
					key.LineComment = "# " + unit
				}
				// Empty containers are written in flow style and stay uncommented.
			}
			n.Content = append(n.Content, key, val)
		}
		return n
	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if v.Len() == 0 {
			n.Style = yaml.FlowStyle
		}
		for i, it := range v.items {
			n.Content = append(n.Content, encodeNode(it, indexPath(path, i), reg))
		}
		return n
	case KindNumber:
		tag := "!!float"
		if v.integer {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: formatNumber(v.num, v.integer)}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.flag)}
	case KindString:
		return stringNode(v.str)
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// stringNode encodes s as a string scalar, double-quoted whenever the plain
// form would resolve to another tag ("<<", "50", "true", dates).
func stringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: s}
	if n.ShortTag() != "!!str" {
		n.Style = yaml.DoubleQuotedStyle
	}
	n.Tag = "!!str"
	return n
}

// unitComment returns the comment for a field path. Dimensionless fields get none.
// Entries of per-level mappings inherit the unit of their field.
func unitComment(reg *Registry, path string) string {
	f, ok := reg.ByPath[path]
	if !ok {
		parent, _ := splitLast(path)
		pf, ok := reg.ByPath[parent]
		if !ok || (pf.Kind != FieldLevels && pf.Kind != FieldFractions) {
			return ""
		}
		f = pf
	}
	if f.Unit == "" || f.Unit == UnitRatio {
		return ""
	}
	return f.Unit
}

func splitLast(path string) (string, string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i], path[i+1:]
		}
	}
	return "", path
}
