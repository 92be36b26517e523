// Package sink implements the two copy/merge destination shapes (spec.md
// §4.H): a stream sink that appends ordinary entries, and a hash sink that
// stringifies a payload as JSON under a timestamp field. Grounded on the
// teacher's FlushFunc abstraction (engine/flusher.go), where one injected
// function decides the destination shape — generalized here from "file or
// not" to "stream entry or hash field".
package sink

import (
	"strconv"

	"github.com/coffersTech/nanots/internal/aggregate"
	"github.com/coffersTech/nanots/internal/format"
	"github.com/coffersTech/nanots/internal/store"
	"github.com/coffersTech/nanots/internal/tsvalue"
)

// Sink is the destination contract copy/merge write through.
type Sink interface {
	WriteRow(dest string, id tsvalue.ID, fields []tsvalue.Field) error
	WriteBucket(dest string, b aggregate.Bucket) error
}

// StreamSink appends entries to a store.Store series.
type StreamSink struct {
	Store store.Store
}

// WriteRow appends fields at id, wrapping an empty payload as {"value":
// null} so copy/merge never silently writes an entry with no fields.
func (s StreamSink) WriteRow(dest string, id tsvalue.ID, fields []tsvalue.Field) error {
	if len(fields) == 0 {
		fields = []tsvalue.Field{{Name: "value", Raw: "null"}}
	}
	return s.Store.Append(dest, id, fields)
}

// WriteBucket appends the bucket's flattened field_kind pairs as one entry
// at the bucket's timestamp.
func (s StreamSink) WriteBucket(dest string, b aggregate.Bucket) error {
	return s.Store.Append(dest, tsvalue.ID{Timestamp: b.Key}, FlattenBucket(b))
}

// HashSink stringifies each write as a JSON object stored at field `ts` of
// a keyed hash.
type HashSink struct {
	Hash *store.HashStore
}

// WriteRow JSON-encodes fields and stores it at field id.Timestamp.
func (s HashSink) WriteRow(dest string, id tsvalue.ID, fields []tsvalue.Field) error {
	s.Hash.SetField(dest, strconv.FormatUint(id.Timestamp, 10), format.EncodeFieldsJSON(fields))
	return nil
}

// WriteBucket JSON-encodes the bucket's flattened fields and stores them at
// field bucket.Key.
func (s HashSink) WriteBucket(dest string, b aggregate.Bucket) error {
	s.Hash.SetField(dest, strconv.FormatUint(b.Key, 10), format.EncodeFieldsJSON(FlattenBucket(b)))
	return nil
}

// FlattenBucket joins each (field, kind) pair into a single field_kind name
// per spec.md §4.H, in the bucket's field/kind order.
func FlattenBucket(b aggregate.Bucket) []tsvalue.Field {
	out := make([]tsvalue.Field, 0, len(b.Fields))
	for _, fr := range b.Fields {
		for _, kv := range fr.Kinds {
			out = append(out, tsvalue.Field{
				Name: fr.Name + "_" + kv.Kind,
				Raw:  kv.Value.String(),
			})
		}
	}
	return out
}

