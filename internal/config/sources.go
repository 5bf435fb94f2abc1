// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"sort"
	"sync"

	"github.com/ManuGH/esconf/internal/fsutil"
	xglog "github.com/ManuGH/esconf/internal/log"
	"github.com/ManuGH/esconf/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// defaultStatConcurrency bounds parallel stat calls in CheckSources.
const defaultStatConcurrency = 8

// MissingSource is a referenced data source that could not be found.
type MissingSource struct {
	Source string
	// Paths lists the document fields that reference the source.
	Paths []string
	Err   error
}

// CheckSources stats every distinct referenced source, relative to baseDir
// unless absolute. Relative sources that escape baseDir are reported missing
// with fsutil.ErrOutsideBase. Files are never opened. The returned slice is
// sorted by source.
func CheckSources(ctx context.Context, doc *Document, baseDir string) ([]MissingSource, error) {
	bySource := make(map[string][]string)
	var order []string
	for _, ref := range References(doc) {
		if _, seen := bySource[ref.Handle.Source]; !seen {
			order = append(order, ref.Handle.Source)
		}
		bySource[ref.Handle.Source] = append(bySource[ref.Handle.Source], ref.Path)
	}

	var (
		mu      sync.Mutex
		missing []MissingSource
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultStatConcurrency)
	for _, source := range order {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := fsutil.SourcePath(baseDir, source)
			if err == nil {
				err = fsutil.IsRegularFile(path)
			}
			if err != nil {
				mu.Lock()
				missing = append(missing, MissingSource{Source: source, Paths: bySource[source], Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i].Source < missing[j].Source })
	metrics.SetMissingSources(len(missing))

	logger := xglog.WithComponentFromContext(xglog.ContextWithLoadID(ctx, doc.LoadID), "config")
	for _, m := range missing {
		logger.Warn().
			Str(xglog.FieldEvent, "config.source_missing").
			Str(xglog.FieldSource, m.Source).
			Strs(xglog.FieldPath, m.Paths).
			Err(m.Err).
			Msg("referenced data source not found")
	}
	return missing, nil
}
