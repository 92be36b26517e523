// Package format implements the FORMAT option's reply serialisation and the
// bulk_add record decoding (spec.md §4.C, §6 "JSON"). JSON encoding and
// decoding both go through valyala/fastjson, the way the teacher's
// server/http.go ingest handler does (`fastjson.ParserPool` /
// `val.GetStringBytes`) — fastjson's Object.Visit walks keys in the order
// they appeared in the source text, which is what lets bulk_add's
// json_encoded_record preserve field order the way spec.md §3 requires; the
// standard library's map-backed decoding would not. FORMAT msgpack goes
// through Basekick-Labs/msgpack/v6 (adopted from the pack's other
// timeseries ingestion engine, which uses the same fork for its wire
// encoding).
package format

import (
	"fmt"
	"strconv"

	"github.com/Basekick-Labs/msgpack/v6"
	"github.com/valyala/fastjson"

	"github.com/coffersTech/nanots/internal/tsvalue"
)

var parserPool fastjson.ParserPool

// ParseFieldsJSON decodes a JSON object into an ordered field list,
// preserving the key order of the source document (used by bulk_add's
// json_encoded_record payload).
func ParseFieldsJSON(raw []byte) ([]tsvalue.Field, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON record: %w", err)
	}
	obj, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("JSON record must be an object: %w", err)
	}

	var fields []tsvalue.Field
	obj.Visit(func(key []byte, val *fastjson.Value) {
		fields = append(fields, tsvalue.Field{Name: string(key), Raw: jsonScalarToRaw(val)})
	})
	return fields, nil
}

func jsonScalarToRaw(v *fastjson.Value) string {
	switch v.Type() {
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		return string(b)
	case fastjson.TypeNumber:
		return v.String()
	case fastjson.TypeTrue:
		return "true"
	case fastjson.TypeFalse:
		return "false"
	case fastjson.TypeNull:
		return ""
	default:
		return v.String()
	}
}

// EncodeFieldsJSON renders an ordered field list as a JSON object, using an
// Arena so key insertion order is preserved on output.
func EncodeFieldsJSON(fields []tsvalue.Field) string {
	var arena fastjson.Arena
	obj := arena.NewObject()
	for _, f := range fields {
		obj.Set(f.Name, jsonValue(&arena, tsvalue.Parse(f.Raw)))
	}
	return obj.String()
}

func jsonValue(arena *fastjson.Arena, v tsvalue.Value) *fastjson.Value {
	switch v.Kind {
	case tsvalue.KindInt:
		return arena.NewNumberString(strconv.FormatInt(v.I, 10))
	case tsvalue.KindFloat:
		return arena.NewNumberString(v.Raw)
	case tsvalue.KindBool:
		if v.B {
			return arena.NewTrue()
		}
		return arena.NewFalse()
	default:
		return arena.NewString(v.Raw)
	}
}

// EncodeFieldsMsgpack renders an ordered field list as an alternating
// name/value array, so a schemaless msgpack reader still sees field order
// (a msgpack map, like a Go map, does not guarantee it).
func EncodeFieldsMsgpack(fields []tsvalue.Field) ([]byte, error) {
	flat := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		v := tsvalue.Parse(f.Raw)
		flat = append(flat, f.Name, v.Interface())
	}
	return msgpack.Marshal(flat)
}
