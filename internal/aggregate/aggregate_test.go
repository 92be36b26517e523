package aggregate

import (
	"math"
	"strconv"
	"testing"

	"github.com/coffersTech/nanots/internal/tsquery"
	"github.com/coffersTech/nanots/internal/tsvalue"
)

func valueRecord(v int) *tsvalue.Record {
	return tsvalue.NewRecord([]tsvalue.Field{{Name: "value", Raw: strconv.Itoa(v)}})
}

// offsets mirrors the spec's S1 scenario digit pattern.
var offsets = []int{31, 41, 59, 26, 53, 58, 97, 93, 23, 84}

func buildS1Engine(kinds ...string) *Engine {
	fields := make([]tsquery.AggField, len(kinds))
	for i, k := range kinds {
		fields[i] = tsquery.AggField{Name: "value", Kind: k}
	}
	e := New(&tsquery.Aggregate{TimeBucket: 10, Fields: fields})
	for i := 10; i < 50; i++ {
		value := (i/10)*100 + offsets[i%10]
		e.Add(uint64(i), valueRecord(value))
	}
	return e
}

func findKind(t *testing.T, b Bucket, field, kind string) tsvalue.Value {
	for _, fr := range b.Fields {
		if fr.Name != field {
			continue
		}
		for _, kv := range fr.Kinds {
			if kv.Kind == kind {
				return kv.Value
			}
		}
	}
	t.Fatalf("kind %s not found for field %s", kind, field)
	return tsvalue.Value{}
}

func TestAggregateMinMax(t *testing.T) {
	e := buildS1Engine("min", "max")
	buckets := e.Finalize()
	if len(buckets) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(buckets))
	}
	wantMin := []int64{123, 223, 323, 423}
	wantMax := []int64{197, 297, 397, 497}
	for i, b := range buckets {
		if b.Key != uint64(10*(i+1)) {
			t.Fatalf("bucket %d: key = %d", i, b.Key)
		}
		if got := findKind(t, b, "value", "min").I; got != wantMin[i] {
			t.Fatalf("bucket %d: min = %d, want %d", i, got, wantMin[i])
		}
		if got := findKind(t, b, "value", "max").I; got != wantMax[i] {
			t.Fatalf("bucket %d: max = %d, want %d", i, got, wantMax[i])
		}
	}
}

func TestAggregateSumCount(t *testing.T) {
	e := buildS1Engine("sum", "count")
	buckets := e.Finalize()
	wantSum := []int64{1565, 2565, 3565, 4565}
	for i, b := range buckets {
		if got := findKind(t, b, "value", "sum").I; got != wantSum[i] {
			t.Fatalf("bucket %d: sum = %d, want %d", i, got, wantSum[i])
		}
		if got := findKind(t, b, "value", "count").I; got != 10 {
			t.Fatalf("bucket %d: count = %d, want 10", i, got)
		}
	}
}

func TestAggregateAvgMedianRange(t *testing.T) {
	e := buildS1Engine("avg", "median", "range")
	buckets := e.Finalize()
	wantAvg := []float64{156.5, 256.5, 356.5, 456.5}
	wantMedian := []float64{155.5, 255.5, 355.5, 455.5}
	for i, b := range buckets {
		avg, _ := findKind(t, b, "value", "avg").Float64()
		if math.Abs(avg-wantAvg[i]) > 1e-9 {
			t.Fatalf("bucket %d: avg = %v, want %v", i, avg, wantAvg[i])
		}
		median, _ := findKind(t, b, "value", "median").Float64()
		if math.Abs(median-wantMedian[i]) > 1e-9 {
			t.Fatalf("bucket %d: median = %v, want %v", i, median, wantMedian[i])
		}
		rng, _ := findKind(t, b, "value", "range").Float64()
		if math.Abs(rng-74) > 1e-9 {
			t.Fatalf("bucket %d: range = %v, want 74", i, rng)
		}
	}
}

func TestAggregateFirstLastBucket10(t *testing.T) {
	e := buildS1Engine("first", "last")
	buckets := e.Finalize()
	if got := findKind(t, buckets[0], "value", "first").String(); got != "131" {
		t.Fatalf("first = %s, want 131", got)
	}
	if got := findKind(t, buckets[0], "value", "last").String(); got != "184" {
		t.Fatalf("last = %s, want 184", got)
	}
}

func TestAggregateStdevMatchesSampleStdev(t *testing.T) {
	e := buildS1Engine("stdev")
	buckets := e.Finalize()
	values := make([]float64, 10)
	for i := 0; i < 10; i++ {
		values[i] = float64(100*1 + offsets[i])
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	want := math.Sqrt(ss / float64(len(values)-1))

	got, _ := findKind(t, buckets[0], "value", "stdev").Float64()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("stdev = %v, want %v", got, want)
	}
}

func TestAggregateStdevSingleValueBucketIsZero(t *testing.T) {
	e := New(&tsquery.Aggregate{TimeBucket: 10, Fields: []tsquery.AggField{{Name: "value", Kind: "stdev"}}})
	e.Add(10, valueRecord(5))
	buckets := e.Finalize()
	got, _ := findKind(t, buckets[0], "value", "stdev").Float64()
	if got != 0 {
		t.Fatalf("stdev of single-value bucket = %v, want 0", got)
	}
}

func TestAggregateRate(t *testing.T) {
	e := New(&tsquery.Aggregate{TimeBucket: 10, Fields: []tsquery.AggField{{Name: "value", Kind: "rate"}}})
	for i := 10; i < 20; i++ {
		e.Add(uint64(i), valueRecord(i))
	}
	buckets := e.Finalize()
	got, _ := findKind(t, buckets[0], "value", "rate").Float64()
	if got != 1 {
		t.Fatalf("rate = %v, want 1 (10 entries / bucket size 10)", got)
	}
}

func TestAggregateMultipleKindsSameFieldGroup(t *testing.T) {
	e := buildS1Engine("min", "max")
	buckets := e.Finalize()
	if len(buckets[0].Fields) != 1 {
		t.Fatalf("expected one field group for repeated field name, got %d", len(buckets[0].Fields))
	}
	if len(buckets[0].Fields[0].Kinds) != 2 {
		t.Fatalf("expected 2 kinds in the group, got %d", len(buckets[0].Fields[0].Kinds))
	}
}
