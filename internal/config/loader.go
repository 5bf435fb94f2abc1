// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	xglog "github.com/ManuGH/esconf/internal/log"
	"github.com/ManuGH/esconf/internal/metrics"
	"gopkg.in/yaml.v3"
)

// maxAliasDepth bounds alias expansion so a self-referencing document cannot blow up.
const maxAliasDepth = 32

// Alias expansion may produce at most baseNodeBudget plus nodesPerInputByte
// nodes per byte of input; nested aliases beyond that are rejected.
const (
	baseNodeBudget    = 10000
	nodesPerInputByte = 10
)

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// Load reads and parses the configuration file at path.
// Syntax errors, duplicate keys and a non-mapping root are reported as *ParseError.
func Load(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".json":
	default:
		metrics.RecordLoad(metrics.OutcomeParseError)
		return nil, &ParseError{File: path, Msg: fmt.Sprintf("extension %q", ext), Err: ErrUnsupportedFormat}
	}

	// #nosec G304 -- path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		metrics.RecordLoad(metrics.OutcomeReadError)
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadBytes(path, data)
}

// LoadBytes parses an in-memory document. name is used in errors and logs.
// Empty input yields an empty document.
func LoadBytes(name string, data []byte) (*Document, error) {
	root, err := parseDocument(name, data)
	if err != nil {
		metrics.RecordLoad(metrics.OutcomeParseError)
		return nil, err
	}
	metrics.RecordLoad(metrics.OutcomeOK)

	doc := NewDocument(name, root)
	logger := xglog.WithComponent("config")
	logger.Debug().
		Str(xglog.FieldEvent, "config.loaded").
		Str(xglog.FieldLoadID, doc.LoadID).
		Str(xglog.FieldPath, name).
		Int("sections", root.Len()).
		Msg("configuration document loaded")
	return doc, nil
}

func parseDocument(name string, data []byte) (*Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var node yaml.Node
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return Map(), nil
		}
		return nil, syntaxError(name, err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, syntaxError(name, err)
		}
		return nil, &ParseError{File: name, Line: extra.Line, Column: extra.Column,
			Msg: "multiple documents in one file are not supported"}
	}

	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return Map(), nil
	}
	top := node.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, &ParseError{File: name, Line: top.Line, Column: top.Column,
			Msg: fmt.Sprintf("document root must be a mapping, got %s", describeNode(top))}
	}

	c := &converter{file: name, budget: baseNodeBudget + nodesPerInputByte*len(data)}
	return c.convert(top, 0)
}

func syntaxError(name string, err error) *ParseError {
	pe := &ParseError{File: name, Msg: "invalid YAML", Err: err}
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}

type converter struct {
	file   string
	budget int
	nodes  int
}

func (c *converter) fail(n *yaml.Node, format string, args ...any) *ParseError {
	return &ParseError{File: c.file, Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
}

func (c *converter) convert(n *yaml.Node, depth int) (*Value, error) {
	var (
		v   *Value
		err error
	)
	c.nodes++
	if c.nodes > c.budget {
		return nil, c.fail(n, "document contains excessive aliasing")
	}
	switch n.Kind {
	case yaml.AliasNode:
		if depth >= maxAliasDepth || n.Alias == nil {
			return nil, c.fail(n, "alias %q nested too deeply", n.Value)
		}
		return c.convert(n.Alias, depth+1)
	case yaml.ScalarNode:
		v, err = c.scalar(n)
	case yaml.MappingNode:
		v, err = c.mapping(n, depth)
	case yaml.SequenceNode:
		items := make([]*Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := c.convert(child, depth)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		v = Seq(items...)
	default:
		return nil, c.fail(n, "unexpected %s", describeNode(n))
	}
	if err != nil {
		return nil, err
	}
	v.Line, v.Column = n.Line, n.Column
	return v, nil
}

func (c *converter) mapping(n *yaml.Node, depth int) (*Value, error) {
	seen := make(map[string]int, len(n.Content)/2)
	entries := make([]Entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		if kn.Kind == yaml.AliasNode && kn.Alias != nil {
			kn = kn.Alias
		}
		if kn.Kind != yaml.ScalarNode {
			return nil, c.fail(kn, "mapping keys must be scalars, got %s", describeNode(kn))
		}
		if kn.ShortTag() == "!!merge" {
			return nil, c.fail(kn, "merge keys (<<) are not supported")
		}
		key := kn.Value
		if first, dup := seen[key]; dup {
			return nil, c.fail(kn, "duplicate key %q (first defined on line %d)", key, first)
		}
		seen[key] = kn.Line

		val, err := c.convert(vn, depth)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Value: val})
	}
	return Map(entries...), nil
}

func (c *converter) scalar(n *yaml.Node) (*Value, error) {
	switch tag := n.ShortTag(); tag {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, c.fail(n, "invalid bool %q", n.Value)
		}
		return Bool(b), nil
	case "!!int":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, c.fail(n, "invalid integer %q", n.Value)
		}
		v := Number(f)
		v.integer = true
		return v, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, c.fail(n, "invalid number %q", n.Value)
		}
		return Number(f), nil
	case "!!str", "!!timestamp":
		return String(n.Value), nil
	default:
		return nil, c.fail(n, "unsupported tag %s", tag)
	}
}

func describeNode(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar " + n.ShortTag()
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "node"
	}
}
