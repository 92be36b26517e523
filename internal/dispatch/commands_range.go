package dispatch

import (
	"github.com/coffersTech/nanots/internal/pipeline"
	"github.com/coffersTech/nanots/internal/project"
	"github.com/coffersTech/nanots/internal/store"
	"github.com/coffersTech/nanots/internal/tserr"
	"github.com/coffersTech/nanots/internal/tsquery"
	"github.com/coffersTech/nanots/internal/tsvalue"
)

// get K ts [LABELS...|REDACT...] [FORMAT ...]
func cmdGet(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, tserr.Argument("get requires a timestamp")
	}
	id, err := tsvalue.ParseID(args[0])
	if err != nil {
		return nil, tserr.Argument("%v", err)
	}
	spec, err := tsquery.Parse(args[1:], tsquery.AllowedGet)
	if err != nil {
		return nil, err
	}
	fields, ok := d.Store.Get(keys[0], id)
	if !ok {
		return nil, nil
	}
	return encodeFields(spec.Projection.Apply(fields), spec.Format)
}

// pop K ts [LABELS...|REDACT...] [FORMAT ...]
func cmdPop(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, tserr.Argument("pop requires a timestamp")
	}
	id, err := tsvalue.ParseID(args[0])
	if err != nil {
		return nil, tserr.Argument("%v", err)
	}
	spec, err := tsquery.Parse(args[1:], tsquery.AllowedGet)
	if err != nil {
		return nil, err
	}
	fields, ok := d.Store.Get(keys[0], id)
	if !ok {
		return nil, nil
	}
	d.Store.DeleteIDs(keys[0], []tsvalue.ID{id})
	return encodeFields(spec.Projection.Apply(fields), spec.Format)
}

// parseRangeBounds splits `min max [opts...]` and compiles the option tail.
func parseRangeBounds(args []string, allowed tsquery.AllowedSet) (tsvalue.ID, tsvalue.ID, tsquery.QuerySpec, error) {
	if len(args) < 2 {
		return tsvalue.ID{}, tsvalue.ID{}, tsquery.QuerySpec{}, tserr.Argument("expected (min, max) range bounds")
	}
	min, err := tsvalue.ParseBound(args[0])
	if err != nil {
		return tsvalue.ID{}, tsvalue.ID{}, tsquery.QuerySpec{}, tserr.Argument("%v", err)
	}
	max, err := tsvalue.ParseBound(args[1])
	if err != nil {
		return tsvalue.ID{}, tsvalue.ID{}, tsquery.QuerySpec{}, tserr.Argument("%v", err)
	}
	spec, err := tsquery.Parse(args[2:], allowed)
	if err != nil {
		return tsvalue.ID{}, tsvalue.ID{}, tsquery.QuerySpec{}, err
	}
	spec.Min, spec.Max = min, max
	return min, max, spec, nil
}

// count K min max [FILTER ...]
func cmdCount(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	min, max, spec, err := parseRangeBounds(args, tsquery.AllowedCount)
	if err != nil {
		return nil, err
	}
	entries := d.Store.ScanRange(keys[0], min, max, nil)
	rows := pipeline.Run(entries, spec.Filter, project.None)
	return int64(len(rows)), nil
}

// runRange executes the shared scan->filter->project->(aggregate) pipeline
// for range/revrange/poprange, returning the matched rows (whose ids
// poprange deletes) and the reply.
func runRange(d *Dispatcher, key string, min, max tsvalue.ID, spec tsquery.QuerySpec, reverse bool) ([]pipeline.Row, interface{}, error) {
	var entries []store.Entry
	if reverse {
		entries = d.Store.ScanRangeReverse(key, min, max, spec.Count)
	} else {
		entries = d.Store.ScanRange(key, min, max, spec.Count)
	}
	rows := pipeline.Run(entries, spec.Filter, spec.Projection)

	if spec.Aggregate != nil {
		buckets := pipeline.Aggregate(rows, spec.Aggregate)
		reply, err := bucketsToReply(buckets, spec.Format)
		return rows, reply, err
	}
	reply, err := rowsToReply(rows, spec.Format)
	return rows, reply, err
}

// range K min max [opts]
func cmdRange(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	min, max, spec, err := parseRangeBounds(args, tsquery.AllowedRange)
	if err != nil {
		return nil, err
	}
	_, reply, err := runRange(d, keys[0], min, max, spec, false)
	return reply, err
}

// revrange K min max [opts]
func cmdRevRange(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	min, max, spec, err := parseRangeBounds(args, tsquery.AllowedRange)
	if err != nil {
		return nil, err
	}
	_, reply, err := runRange(d, keys[0], min, max, spec, true)
	return reply, err
}

// poprange K min max [opts]: as range, then deletes every matched id.
func cmdPopRange(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	min, max, spec, err := parseRangeBounds(args, tsquery.AllowedRange)
	if err != nil {
		return nil, err
	}
	rows, reply, err := runRange(d, keys[0], min, max, spec, false)
	if err != nil {
		return nil, err
	}
	ids := make([]tsvalue.ID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	d.Store.DeleteIDs(keys[0], ids)
	return reply, nil
}

// remrange K min max [opts]: deletes every id matching filter/limit,
// returning the count removed.
func cmdRemRange(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	min, max, spec, err := parseRangeBounds(args, tsquery.AllowedRange)
	if err != nil {
		return nil, err
	}
	entries := d.Store.ScanRange(keys[0], min, max, spec.Count)
	rows := pipeline.Run(entries, spec.Filter, project.None)
	ids := make([]tsvalue.ID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	removed := d.Store.DeleteIDs(keys[0], ids)
	return int64(removed), nil
}
