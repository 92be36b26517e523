// Package pipeline streams scanned entries through filter, projection, and
// optional aggregation (spec.md §4.E), single-pass and pull-driven, grounded
// on the teacher's scan-then-filter shape in engine/query_engine.go's
// ExecuteScan/ComputeHistogram.
package pipeline

import (
	"github.com/coffersTech/nanots/internal/aggregate"
	"github.com/coffersTech/nanots/internal/project"
	"github.com/coffersTech/nanots/internal/store"
	"github.com/coffersTech/nanots/internal/tsql"
	"github.com/coffersTech/nanots/internal/tsquery"
	"github.com/coffersTech/nanots/internal/tsvalue"
)

// Row is one filtered-and-projected output row, before any aggregation.
type Row struct {
	ID     tsvalue.ID
	Fields []tsvalue.Field
}

// Run applies filter, then projection, to each entry in order. Entries
// failing the filter are dropped; the result is capped at len(entries)
// (the collaborator scan already applied the count cap).
func Run(entries []store.Entry, filter tsql.Node, proj project.Spec) []Row {
	out := make([]Row, 0, len(entries))
	for _, e := range entries {
		rec := tsvalue.NewRecord(e.Fields)
		if !tsql.Match(filter, rec) {
			continue
		}
		out = append(out, Row{ID: e.ID, Fields: proj.Apply(e.Fields)})
	}
	return out
}

// Aggregate folds filtered/projected rows through an aggregation engine
// built from spec, returning finalised buckets ascending by bucket key.
// parse_ts is implicit: every row's id.Timestamp feeds the bucketer.
func Aggregate(rows []Row, spec *tsquery.Aggregate) []aggregate.Bucket {
	eng := aggregate.New(spec)
	for _, r := range rows {
		eng.Add(r.ID.Timestamp, tsvalue.NewRecord(r.Fields))
	}
	return eng.Finalize()
}
