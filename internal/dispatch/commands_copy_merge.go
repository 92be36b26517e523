package dispatch

import (
	"github.com/coffersTech/nanots/internal/pipeline"
	"github.com/coffersTech/nanots/internal/sink"
	"github.com/coffersTech/nanots/internal/tserr"
	"github.com/coffersTech/nanots/internal/tsmerge"
	"github.com/coffersTech/nanots/internal/tsquery"
)

func sinkFor(d *Dispatcher, storage tsquery.StorageKind) sink.Sink {
	if storage == tsquery.StorageHash {
		return sink.HashSink{Hash: d.Hash}
	}
	return sink.StreamSink{Store: d.Store}
}

// copy K_src K_dst min max [opts]
func cmdCopy(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	src, dst := keys[0], keys[1]
	min, max, spec, err := parseRangeBounds(args, tsquery.AllowedCopy)
	if err != nil {
		return nil, err
	}
	entries := d.Store.ScanRange(src, min, max, spec.Count)
	rows := pipeline.Run(entries, spec.Filter, spec.Projection)

	s := sinkFor(d, spec.Storage)
	if spec.Aggregate != nil {
		buckets := pipeline.Aggregate(rows, spec.Aggregate)
		for _, b := range buckets {
			if err := s.WriteBucket(dst, b); err != nil {
				return nil, tserr.Collaborator(err, "copy failed writing bucket")
			}
		}
		return int64(len(buckets)), nil
	}
	for _, r := range rows {
		if err := s.WriteRow(dst, r.ID, r.Fields); err != nil {
			return nil, tserr.Collaborator(err, "copy failed writing row")
		}
	}
	return int64(len(rows)), nil
}

// merge K_a K_b K_dst min max [opts]
func cmdMerge(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	a, b, dst := keys[0], keys[1], keys[2]
	min, max, spec, err := parseRangeBounds(args, tsquery.AllowedMerge)
	if err != nil {
		return nil, err
	}

	leftEntries := d.Store.ScanRange(a, min, max, nil)
	rightEntries := d.Store.ScanRange(b, min, max, nil)
	leftRows := pipeline.Run(leftEntries, spec.Filter, spec.Projection)
	rightRows := pipeline.Run(rightEntries, spec.Filter, spec.Projection)

	merged := tsmerge.Merge(rowsToItems(leftRows), rowsToItems(rightRows))
	if spec.Count != nil && int64(len(merged)) > *spec.Count {
		merged = merged[:*spec.Count]
	}

	s := sink.StreamSink{Store: d.Store}
	for _, it := range merged {
		if err := s.WriteRow(dst, it.ID, it.Fields); err != nil {
			return nil, tserr.Collaborator(err, "merge failed writing row")
		}
	}
	return int64(len(merged)), nil
}

func rowsToItems(rows []pipeline.Row) []tsmerge.Item {
	out := make([]tsmerge.Item, len(rows))
	for i, r := range rows {
		out[i] = tsmerge.Item{ID: r.ID, Fields: r.Fields}
	}
	return out
}
