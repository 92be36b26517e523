package dispatch

import (
	"github.com/coffersTech/nanots/internal/format"
	"github.com/coffersTech/nanots/internal/store"
	"github.com/coffersTech/nanots/internal/tserr"
	"github.com/coffersTech/nanots/internal/tsvalue"
)

// InfoReply is the pass-through metadata probe reply for `info`.
type InfoReply struct {
	FirstID *tsvalue.ID
	LastID  *tsvalue.ID
	Length  int
}

func parseFieldPairs(tokens []string) ([]tsvalue.Field, error) {
	if len(tokens) == 0 || len(tokens)%2 != 0 {
		return nil, tserr.Argument("field list must be non-empty and contain an even number of tokens")
	}
	fields := make([]tsvalue.Field, 0, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		name := tokens[i]
		if !tsvalue.FieldNameOK(name) {
			return nil, tserr.Argument("invalid field name %q", name)
		}
		fields = append(fields, tsvalue.Field{Name: name, Raw: tokens[i+1]})
	}
	return fields, nil
}

// add K ts field val [field val]...
func cmdAdd(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	if len(args) < 3 {
		return nil, tserr.Argument("add requires a timestamp and at least one field/value pair")
	}
	id, err := tsvalue.ParseID(args[0])
	if err != nil {
		return nil, tserr.Argument("%v", err)
	}
	fields, err := parseFieldPairs(args[1:])
	if err != nil {
		return nil, err
	}
	if err := d.Store.Append(keys[0], id, fields); err != nil {
		return nil, wrapStoreErr(err)
	}
	return id.String(), nil
}

// bulk_add K (ts json_encoded_record)...
func cmdBulkAdd(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, tserr.Argument("bulk_add requires (ts, json_encoded_record) pairs")
	}
	var added int64
	var lastErr error
	for i := 0; i < len(args); i += 2 {
		id, err := tsvalue.ParseID(args[i])
		if err != nil {
			lastErr = tserr.Argument("%v", err)
			continue
		}
		fields, err := format.ParseFieldsJSON([]byte(args[i+1]))
		if err != nil {
			lastErr = tserr.Argument("%v", err)
			continue
		}
		if err := d.Store.Append(keys[0], id, fields); err != nil {
			lastErr = wrapStoreErr(err)
			continue
		}
		added++
	}
	if added == 0 && lastErr != nil {
		return nil, lastErr
	}
	return added, nil
}

// del K id...
func cmdDel(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, tserr.Argument("del requires at least one id")
	}
	ids := make([]tsvalue.ID, 0, len(args))
	for _, tok := range args {
		id, err := tsvalue.ParseID(tok)
		if err != nil {
			return nil, tserr.Argument("%v", err)
		}
		ids = append(ids, id)
	}
	return int64(d.Store.DeleteIDs(keys[0], ids)), nil
}

// size K
func cmdSize(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	n, ok := d.Store.Len(keys[0])
	if !ok {
		return nil, nil
	}
	return int64(n), nil
}

// span K
func cmdSpan(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	first, last, ok := d.Store.Span(keys[0])
	if !ok {
		return nil, nil
	}
	return []string{first.String(), last.String()}, nil
}

// exists K ts
func cmdExists(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	if len(args) != 1 {
		return nil, tserr.Argument("exists requires exactly one timestamp")
	}
	id, err := tsvalue.ParseID(args[0])
	if err != nil {
		return nil, tserr.Argument("%v", err)
	}
	if _, ok := d.Store.Get(keys[0], id); ok {
		return int64(1), nil
	}
	return int64(0), nil
}

// info K
func cmdInfo(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	n, ok := d.Store.Len(keys[0])
	if !ok {
		return nil, nil
	}
	first, last, _ := d.Store.Span(keys[0])
	return InfoReply{FirstID: &first, LastID: &last, Length: n}, nil
}

// times K [min max]
func cmdTimes(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	min, max := tsvalue.MinID, tsvalue.MaxID
	if len(args) == 2 {
		var err error
		if min, err = tsvalue.ParseBound(args[0]); err != nil {
			return nil, tserr.Argument("%v", err)
		}
		if max, err = tsvalue.ParseBound(args[1]); err != nil {
			return nil, tserr.Argument("%v", err)
		}
	} else if len(args) != 0 {
		return nil, tserr.Argument("times takes zero or two (min, max) arguments")
	}
	entries := d.Store.ScanRange(keys[0], min, max, nil)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID.String()
	}
	return out, nil
}

// trimlength K n [approximate]
func cmdTrimLength(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, tserr.Argument("trimlength requires a length")
	}
	n, err := parsePositiveInt(args[0])
	if err != nil {
		return nil, tserr.Argument("trimlength length must be a non-negative integer")
	}
	// The optional `approximate` flag is accepted lexically; the reference
	// store always performs an exact trim.
	return int64(d.Store.TrimToLength(keys[0], n)), nil
}

func parsePositiveInt(tok string) (int, error) {
	var n int
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, tserr.Argument("expected non-negative integer, got %q", tok)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func wrapStoreErr(err error) error {
	if err == store.ErrRegressiveID {
		return tserr.Collaborator(err, "append id must exceed the series' current maximum")
	}
	return tserr.Collaborator(err, "store operation failed")
}
