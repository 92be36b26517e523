// Package aggregate implements the incremental per-bucket aggregation
// engine: eleven aggregation kinds over time-bucketed entries (spec.md
// §4.F), generalized from the teacher's single-counter histogram bucketing
// (engine/histogram.go's `(ts/interval)*interval` map-then-sort shape).
package aggregate

import (
	"math"
	"sort"
	"strconv"

	"github.com/coffersTech/nanots/internal/tsquery"
	"github.com/coffersTech/nanots/internal/tsvalue"
)

// KindValue is one (kind, value) pair in a field's aggregated output.
type KindValue struct {
	Kind  string
	Value tsvalue.Value
}

// FieldResult groups every requested kind for one field name, in the order
// those kinds were requested.
type FieldResult struct {
	Name  string
	Kinds []KindValue
}

// Bucket is one time window's worth of finalised aggregation output.
type Bucket struct {
	Key    uint64
	Fields []FieldResult
}

// Engine accumulates entries into time buckets and finalises them into
// ordered Bucket results.
type Engine struct {
	bucket     uint64
	fields     []tsquery.AggField
	buckets    map[uint64][]accumulator
	bucketKeys []uint64
}

// New builds an aggregation engine for the given compiled AGGREGATION spec.
func New(spec *tsquery.Aggregate) *Engine {
	return &Engine{
		bucket:  spec.TimeBucket,
		fields:  spec.Fields,
		buckets: make(map[uint64][]accumulator),
	}
}

// BucketKey floors ts to the nearest multiple of the engine's time_bucket.
func (e *Engine) BucketKey(ts uint64) uint64 {
	return ts - ts%e.bucket
}

// Add folds one entry's fields into the bucket for ts.
func (e *Engine) Add(ts uint64, rec *tsvalue.Record) {
	key := e.BucketKey(ts)
	accs, ok := e.buckets[key]
	if !ok {
		accs = make([]accumulator, len(e.fields))
		for i, af := range e.fields {
			accs[i] = newAccumulator(af.Kind, e.bucket)
		}
		e.buckets[key] = accs
		e.bucketKeys = append(e.bucketKeys, key)
	}
	for i, af := range e.fields {
		val, ok := rec.Value(af.Name)
		accs[i].add(val, ok)
	}
}

// Finalize returns buckets in ascending key order, each field grouped in
// first-seen order with its kinds in request order.
func (e *Engine) Finalize() []Bucket {
	sort.Slice(e.bucketKeys, func(i, j int) bool { return e.bucketKeys[i] < e.bucketKeys[j] })

	out := make([]Bucket, 0, len(e.bucketKeys))
	for _, key := range e.bucketKeys {
		accs := e.buckets[key]
		out = append(out, Bucket{Key: key, Fields: groupByField(e.fields, accs)})
	}
	return out
}

func groupByField(fields []tsquery.AggField, accs []accumulator) []FieldResult {
	order := make([]string, 0, len(fields))
	byName := make(map[string]*FieldResult, len(fields))
	for i, af := range fields {
		fr, ok := byName[af.Name]
		if !ok {
			order = append(order, af.Name)
			nfr := FieldResult{Name: af.Name}
			byName[af.Name] = &nfr
			fr = &nfr
		}
		fr.Kinds = append(fr.Kinds, KindValue{Kind: af.Kind, Value: accs[i].finalize()})
	}
	out := make([]FieldResult, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

// accumulator is the per-(bucket,field-kind) running state.
type accumulator interface {
	add(v tsvalue.Value, present bool)
	finalize() tsvalue.Value
}

func newAccumulator(kind string, timeBucket uint64) accumulator {
	switch kind {
	case "count":
		return &countAcc{}
	case "sum":
		return &sumAcc{}
	case "avg":
		return &avgAcc{}
	case "median":
		return &medianAcc{}
	case "stdev":
		return &stdevAcc{}
	case "min":
		return &extremumAcc{wantMin: true}
	case "max":
		return &extremumAcc{wantMin: false}
	case "range":
		return &rangeAcc{}
	case "first":
		return &firstLastAcc{first: true}
	case "last":
		return &firstLastAcc{first: false}
	case "rate":
		return &rateAcc{timeBucket: timeBucket}
	default:
		return &countAcc{}
	}
}

func floatValue(f float64) tsvalue.Value {
	return tsvalue.Parse(formatFloat(f))
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
