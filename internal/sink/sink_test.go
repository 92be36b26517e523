package sink

import (
	"strings"
	"testing"

	"github.com/coffersTech/nanots/internal/aggregate"
	"github.com/coffersTech/nanots/internal/store"
	"github.com/coffersTech/nanots/internal/tsvalue"
)

func TestStreamSinkWriteRow(t *testing.T) {
	st := store.NewMemStore()
	s := StreamSink{Store: st}
	err := s.WriteRow("dst", tsvalue.ID{Timestamp: 1}, []tsvalue.Field{{Name: "v", Raw: "1"}})
	if err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	n, ok := st.Len("dst")
	if !ok || n != 1 {
		t.Fatalf("expected 1 entry in dst, got %d ok=%v", n, ok)
	}
}

func TestStreamSinkWriteRowWrapsEmptyPayload(t *testing.T) {
	st := store.NewMemStore()
	s := StreamSink{Store: st}
	if err := s.WriteRow("dst", tsvalue.ID{Timestamp: 1}, nil); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	fields, ok := st.Get("dst", tsvalue.ID{Timestamp: 1})
	if !ok || len(fields) != 1 || fields[0].Name != "value" {
		t.Fatalf("expected wrapped value field, got %+v ok=%v", fields, ok)
	}
}

func TestHashSinkWriteRow(t *testing.T) {
	h := store.NewHashStore()
	s := HashSink{Hash: h}
	if err := s.WriteRow("dst", tsvalue.ID{Timestamp: 42}, []tsvalue.Field{{Name: "v", Raw: "7"}}); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	got, ok := h.GetField("dst", "42")
	if !ok {
		t.Fatalf("expected field 42 to be set")
	}
	if !strings.Contains(got, `"v":7`) {
		t.Fatalf("expected json payload to contain v:7, got %s", got)
	}
}

func TestFlattenBucketNames(t *testing.T) {
	b := aggregate.Bucket{
		Key: 10,
		Fields: []aggregate.FieldResult{
			{Name: "value", Kinds: []aggregate.KindValue{
				{Kind: "min", Value: tsvalue.Parse("1")},
				{Kind: "max", Value: tsvalue.Parse("9")},
			}},
		},
	}
	flat := FlattenBucket(b)
	if len(flat) != 2 {
		t.Fatalf("expected 2 flattened fields, got %d", len(flat))
	}
	if flat[0].Name != "value_min" || flat[1].Name != "value_max" {
		t.Fatalf("unexpected flattened names: %+v", flat)
	}
}
