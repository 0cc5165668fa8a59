package query

import (
	"context"
	"slices"
	"time"

	"github.com/kailas-cloud/contentfinder/internal/domain/content"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
)

// discover finds section keys reachable through the criteria's page id and
// retries metadata retrieval with each of them until limit rows are collected.
// It returns the keys tried and the rows they produced.
func (s *Service) discover(ctx context.Context, crit criteria.Criteria) ([]string, []content.Record) {
	start := time.Now()
	pageRows, err := s.metadata.FindByPageID(ctx, crit.PageID(), s.opts.DiscoveryScanLimit)
	s.metrics.observe(sourceDiscovery, start)
	if err != nil {
		s.degrade(ctx, sourceDiscovery, err)
		return nil, nil
	}

	keys := discoveredKeys(pageRows, crit.SectionKey(), s.opts.MaxDiscovered)
	var rows []content.Record
	for i, key := range keys {
		if ctx.Err() != nil {
			return keys, rows
		}
		if len(rows) >= crit.Limit() {
			keys = keys[:i]
			break
		}
		rows = append(rows, s.searchSection(ctx, key, crit.Limit())...)
	}
	s.metrics.rows(sourceDiscovery, len(rows))
	return keys, rows
}

// discoveredKeys collects distinct section keys from rows in scan order,
// skipping the key that was already tried.
func discoveredKeys(rows []content.Record, tried string, limit int) []string {
	var keys []string
	for i := range rows {
		for _, k := range []string{rows[i].Section, rows[i].ContextSection} {
			if k == "" || content.SameSection(k, tried) || slices.Contains(keys, k) {
				continue
			}
			keys = append(keys, k)
			if len(keys) == limit {
				return keys
			}
		}
	}
	return keys
}
