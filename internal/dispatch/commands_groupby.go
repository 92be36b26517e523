package dispatch

import (
	"strings"

	"github.com/coffersTech/nanots/internal/store"
	"github.com/coffersTech/nanots/internal/tserr"
	"github.com/coffersTech/nanots/internal/tsql"
	"github.com/coffersTech/nanots/internal/tsvalue"
)

// GroupLabels is one distinct LABELS tuple.
type GroupLabels struct {
	Labels []tsvalue.Field `json:"labels"`
}

// GroupStats is one LABELS group's count and id span — the "basic" stats a
// group-by-field aggregate reports without a full AGGREGATION spec.
type GroupStats struct {
	Labels  []tsvalue.Field `json:"labels"`
	Count   int64           `json:"count"`
	FirstID string          `json:"first_id"`
	LastID  string          `json:"last_id"`
}

type labelGroup struct {
	labels      []tsvalue.Field
	count       int64
	first, last tsvalue.ID
}

// parseGroupByArgs parses `min max LABELS name+ [FILTER predicate...]`.
// Unlike the other range commands, LABELS here is a structurally required
// prefix rather than one of tsquery's generic options (spec.md §6,
// "LABELS is required").
func parseGroupByArgs(args []string) (tsvalue.ID, tsvalue.ID, []string, tsql.Node, error) {
	if len(args) < 2 {
		return tsvalue.ID{}, tsvalue.ID{}, nil, nil, tserr.Argument("expected (min, max) range bounds")
	}
	min, err := tsvalue.ParseBound(args[0])
	if err != nil {
		return tsvalue.ID{}, tsvalue.ID{}, nil, nil, tserr.Argument("%v", err)
	}
	max, err := tsvalue.ParseBound(args[1])
	if err != nil {
		return tsvalue.ID{}, tsvalue.ID{}, nil, nil, tserr.Argument("%v", err)
	}

	rest := args[2:]
	if len(rest) == 0 || !strings.EqualFold(rest[0], "LABELS") {
		return tsvalue.ID{}, tsvalue.ID{}, nil, nil, tserr.Argument("LABELS is required")
	}
	rest = rest[1:]

	end := 0
	for end < len(rest) && !strings.EqualFold(rest[end], "FILTER") {
		end++
	}
	names := rest[:end]
	if len(names) == 0 {
		return tsvalue.ID{}, tsvalue.ID{}, nil, nil, tserr.Argument("LABELS requires at least one field name")
	}

	var filter tsql.Node
	if end < len(rest) {
		filterToks := rest[end+1:]
		if len(filterToks) == 0 {
			return tsvalue.ID{}, tsvalue.ID{}, nil, nil, tserr.Argument("FILTER requires a predicate")
		}
		node, err := tsql.Parse(strings.Join(filterToks, " "))
		if err != nil {
			return tsvalue.ID{}, tsvalue.ID{}, nil, nil, tserr.Argument("malformed filter expression: %v", err)
		}
		filter = node
	}
	return min, max, names, filter, nil
}

// groupByLabels folds filtered entries into LABELS-tuple groups, in
// first-seen order. Entries missing any named label field are excluded
// from every group, consistent with a filter predicate's null-is-false
// semantics.
func groupByLabels(entries []store.Entry, filter tsql.Node, names []string) []labelGroup {
	order := make([]string, 0)
	byKey := make(map[string]*labelGroup)

	for _, e := range entries {
		rec := tsvalue.NewRecord(e.Fields)
		if !tsql.Match(filter, rec) {
			continue
		}

		labels := make([]tsvalue.Field, 0, len(names))
		var key strings.Builder
		complete := true
		for _, n := range names {
			raw, ok := rec.Get(n)
			if !ok {
				complete = false
				break
			}
			labels = append(labels, tsvalue.Field{Name: n, Raw: raw})
			key.WriteString(n)
			key.WriteByte('=')
			key.WriteString(raw)
			key.WriteByte(0x1f)
		}
		if !complete {
			continue
		}

		k := key.String()
		g, ok := byKey[k]
		if !ok {
			g = &labelGroup{labels: labels, first: e.ID, last: e.ID}
			byKey[k] = g
			order = append(order, k)
		}
		g.count++
		g.last = e.ID
	}

	out := make([]labelGroup, len(order))
	for i, k := range order {
		out[i] = *byKey[k]
	}
	return out
}

// distinct K min max LABELS name+ [FILTER ...]
func cmdDistinct(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	min, max, names, filter, err := parseGroupByArgs(args)
	if err != nil {
		return nil, err
	}
	entries := d.Store.ScanRange(keys[0], min, max, nil)
	groups := groupByLabels(entries, filter, names)

	out := make([]GroupLabels, len(groups))
	for i, g := range groups {
		out[i] = GroupLabels{Labels: g.labels}
	}
	return out, nil
}

// count_distinct K min max LABELS name+ [FILTER ...]
func cmdCountDistinct(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	min, max, names, filter, err := parseGroupByArgs(args)
	if err != nil {
		return nil, err
	}
	entries := d.Store.ScanRange(keys[0], min, max, nil)
	groups := groupByLabels(entries, filter, names)
	return int64(len(groups)), nil
}

// basic_stats K min max LABELS name+ [FILTER ...]
func cmdBasicStats(d *Dispatcher, keys []string, args []string) (interface{}, error) {
	min, max, names, filter, err := parseGroupByArgs(args)
	if err != nil {
		return nil, err
	}
	entries := d.Store.ScanRange(keys[0], min, max, nil)
	groups := groupByLabels(entries, filter, names)

	out := make([]GroupStats, len(groups))
	for i, g := range groups {
		out[i] = GroupStats{
			Labels:  g.labels,
			Count:   g.count,
			FirstID: g.first.String(),
			LastID:  g.last.String(),
		}
	}
	return out, nil
}
