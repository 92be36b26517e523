package dispatch

import (
	"github.com/coffersTech/nanots/internal/aggregate"
	"github.com/coffersTech/nanots/internal/format"
	"github.com/coffersTech/nanots/internal/pipeline"
	"github.com/coffersTech/nanots/internal/tsquery"
	"github.com/coffersTech/nanots/internal/tsvalue"
)

// Row is one (id, fields) reply row before FORMAT encoding.
type Row struct {
	ID     string      `json:"id"`
	Fields interface{} `json:"fields"`
}

// encodeFields renders a field list per the requested FORMAT option:
// native passes the ordered field slice through, json/msgpack stringify it
// (spec.md §4.C FORMAT).
func encodeFields(fields []tsvalue.Field, outFormat tsquery.Format) (interface{}, error) {
	switch outFormat {
	case tsquery.FormatJSON:
		return format.EncodeFieldsJSON(fields), nil
	case tsquery.FormatMsgpack:
		return format.EncodeFieldsMsgpack(fields)
	default:
		return fields, nil
	}
}

func rowsToReply(rows []pipeline.Row, outFormat tsquery.Format) (interface{}, error) {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		v, err := encodeFields(r.Fields, outFormat)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{ID: r.ID.String(), Fields: v})
	}
	return out, nil
}

// bucketsToReply renders aggregation buckets as (bucket_ts, flattened
// fields) rows, honoring FORMAT the same way plain rows do.
func bucketsToReply(buckets []aggregate.Bucket, outFormat tsquery.Format) (interface{}, error) {
	out := make([]Row, 0, len(buckets))
	for _, b := range buckets {
		flat := flattenBucketFields(b)
		v, err := encodeFields(flat, outFormat)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{ID: tsvalue.ID{Timestamp: b.Key}.String(), Fields: v})
	}
	return out, nil
}

func flattenBucketFields(b aggregate.Bucket) []tsvalue.Field {
	out := make([]tsvalue.Field, 0, len(b.Fields))
	for _, fr := range b.Fields {
		for _, kv := range fr.Kinds {
			out = append(out, tsvalue.Field{Name: fr.Name + "_" + kv.Kind, Raw: kv.Value.String()})
		}
	}
	return out
}
