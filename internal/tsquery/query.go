// Package tsquery parses the token-driven query tail following (min, max)
// into a validated QuerySpec (spec.md §4.C).
package tsquery

import (
	"strconv"
	"strings"

	"github.com/coffersTech/nanots/internal/project"
	"github.com/coffersTech/nanots/internal/tserr"
	"github.com/coffersTech/nanots/internal/tsql"
	"github.com/coffersTech/nanots/internal/tsvalue"
)

// StorageKind selects the sink shape for copy (merge always writes a
// stream).
type StorageKind int

const (
	StorageStream StorageKind = iota
	StorageHash
)

// Format selects the reply serialisation.
type Format int

const (
	FormatNative Format = iota
	FormatJSON
	FormatMsgpack
)

// AggField names one (field, kind) pair requested by AGGREGATION.
type AggField struct {
	Name string
	Kind string
}

// Aggregate is the compiled AGGREGATION option.
type Aggregate struct {
	TimeBucket uint64
	Fields     []AggField
}

// QuerySpec is the fully compiled query tail: range bounds plus options.
type QuerySpec struct {
	Min, Max   tsvalue.ID
	Count      *int64
	Filter     tsql.Node
	Projection project.Spec
	Aggregate  *Aggregate
	Storage    StorageKind
	Format     Format
	ParseTS    bool
}

// Option keyword names recognised by the grammar (spec.md §4.C table).
const (
	optLimit       = "LIMIT"
	optAggregation = "AGGREGATION"
	optFilter      = "FILTER"
	optLabels      = "LABELS"
	optRedact      = "REDACT"
	optFormat      = "FORMAT"
	optStorage     = "STORAGE"
)

func isOptionKeyword(tok string) bool {
	switch strings.ToUpper(tok) {
	case optLimit, optAggregation, optFilter, optLabels, optRedact, optFormat, optStorage:
		return true
	default:
		return false
	}
}

// AllowedSet is the set of option keywords one command accepts.
type AllowedSet map[string]bool

func allowed(names ...string) AllowedSet {
	s := make(AllowedSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Per-command option tables (spec.md §4.C, "each command restricts the
// accepted subset of options").
var (
	AllowedGet         = allowed(optLabels, optRedact, optFormat)
	AllowedCount       = allowed(optFilter)
	AllowedRange       = allowed(optLimit, optAggregation, optFilter, optLabels, optRedact, optFormat)
	AllowedCopy        = allowed(optLimit, optAggregation, optFilter, optLabels, optRedact, optStorage)
	AllowedMerge       = allowed(optLimit, optFilter, optLabels, optRedact)
	AllowedGroupByKind = allowed(optFilter)
)

// Parse compiles the option tail into partial QuerySpec fields. Min/Max are
// not set here; the dispatcher fills them in from the preceding bound
// tokens.
func Parse(tokens []string, allowedSet AllowedSet) (QuerySpec, error) {
	spec := QuerySpec{Projection: project.None}
	seen := make(map[string]bool)

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		upper := strings.ToUpper(tok)
		if !isOptionKeyword(tok) {
			return spec, tserr.Argument("unknown option %q", tok)
		}
		if !allowedSet[upper] {
			return spec, tserr.Argument("option %s not permitted for this command", upper)
		}
		if seen[upper] {
			return spec, tserr.Argument("duplicate option %s", upper)
		}
		seen[upper] = true

		var consumed int
		var err error
		switch upper {
		case optLimit:
			consumed, err = parseLimit(tokens[i+1:], &spec)
		case optAggregation:
			consumed, err = parseAggregation(tokens[i+1:], &spec)
		case optFilter:
			consumed, err = parseFilter(tokens[i+1:], &spec)
		case optLabels:
			consumed, err = parseProjection(tokens[i+1:], &spec, true)
		case optRedact:
			consumed, err = parseProjection(tokens[i+1:], &spec, false)
		case optFormat:
			consumed, err = parseFormat(tokens[i+1:], &spec)
		case optStorage:
			consumed, err = parseStorage(tokens[i+1:], &spec)
		}
		if err != nil {
			return spec, err
		}
		i += 1 + consumed
	}

	if seen[optLabels] && seen[optRedact] {
		return spec, tserr.Argument("LABELS and REDACT are mutually exclusive")
	}
	spec.ParseTS = seen[optAggregation]
	return spec, nil
}

// scanUntilKeyword returns the index of the first token in toks that is a
// recognised option keyword, or len(toks) if none is found.
func scanUntilKeyword(toks []string) int {
	for i, t := range toks {
		if isOptionKeyword(t) {
			return i
		}
	}
	return len(toks)
}

func parseLimit(toks []string, spec *QuerySpec) (int, error) {
	if len(toks) == 0 {
		return 0, tserr.Argument("LIMIT requires a count operand")
	}
	count, err := strconv.ParseInt(toks[0], 10, 64)
	if err != nil {
		return 0, tserr.Argument("LIMIT count must be an integer, got %q", toks[0])
	}
	if count <= 0 {
		return 0, tserr.Argument("non-positive LIMIT")
	}
	spec.Count = &count
	consumed := 1

	// Optional offset: present iff the next token isn't itself an option
	// keyword and parses as an integer. Its value is parsed and discarded
	// (spec.md §3, documented quirk).
	if len(toks) > 1 && !isOptionKeyword(toks[1]) {
		if _, err := strconv.ParseInt(toks[1], 10, 64); err == nil {
			consumed = 2
		}
	}
	return consumed, nil
}

func parseAggregation(toks []string, spec *QuerySpec) (int, error) {
	if len(toks) == 0 {
		return 0, tserr.Argument("AGGREGATION requires a bucket size")
	}
	bucket, err := strconv.ParseUint(toks[0], 10, 64)
	if err != nil {
		return 0, tserr.Argument("AGGREGATION bucket must be a positive integer, got %q", toks[0])
	}
	if bucket == 0 {
		return 0, tserr.Argument("non-positive time_bucket")
	}

	end := scanUntilKeyword(toks[1:]) + 1
	fieldToks := toks[1:end]
	if len(fieldToks) == 0 {
		return 0, tserr.Argument("AGGREGATION requires at least one kind(field) spec")
	}
	fields := make([]AggField, 0, len(fieldToks))
	for _, ft := range fieldToks {
		af, err := parseAggField(ft)
		if err != nil {
			return 0, err
		}
		fields = append(fields, af)
	}
	spec.Aggregate = &Aggregate{TimeBucket: bucket, Fields: fields}
	return end, nil
}

func parseAggField(tok string) (AggField, error) {
	open := strings.IndexByte(tok, '(')
	if open < 0 || !strings.HasSuffix(tok, ")") {
		return AggField{}, tserr.Argument("malformed aggregation spec %q, want kind(field)", tok)
	}
	kind := tok[:open]
	field := tok[open+1 : len(tok)-1]
	if kind == "" || field == "" {
		return AggField{}, tserr.Argument("malformed aggregation spec %q, want kind(field)", tok)
	}
	if !isKnownKind(kind) {
		return AggField{}, tserr.Argument("unknown aggregation kind %q", kind)
	}
	return AggField{Name: field, Kind: strings.ToLower(kind)}, nil
}

func isKnownKind(kind string) bool {
	switch strings.ToLower(kind) {
	case "count", "sum", "avg", "median", "stdev", "min", "max", "range", "first", "last", "rate":
		return true
	default:
		return false
	}
}

func parseFilter(toks []string, spec *QuerySpec) (int, error) {
	end := scanUntilKeyword(toks)
	if end == 0 {
		return 0, tserr.Argument("FILTER requires a predicate")
	}
	node, err := tsql.Parse(strings.Join(toks[:end], " "))
	if err != nil {
		return 0, tserr.Argument("malformed filter expression: %v", err)
	}
	spec.Filter = node
	return end, nil
}

func parseProjection(toks []string, spec *QuerySpec, include bool) (int, error) {
	end := scanUntilKeyword(toks)
	if end == 0 {
		return 0, tserr.Argument("projection option requires at least one field name")
	}
	names := toks[:end]
	if include {
		spec.Projection = project.NewInclude(names)
	} else {
		spec.Projection = project.NewExclude(names)
	}
	return end, nil
}

func parseFormat(toks []string, spec *QuerySpec) (int, error) {
	if len(toks) == 0 {
		return 0, tserr.Argument("FORMAT requires a value")
	}
	switch strings.ToLower(toks[0]) {
	case "json":
		spec.Format = FormatJSON
	case "msgpack":
		spec.Format = FormatMsgpack
	default:
		return 0, tserr.Argument("unknown FORMAT %q", toks[0])
	}
	return 1, nil
}

func parseStorage(toks []string, spec *QuerySpec) (int, error) {
	if len(toks) == 0 {
		return 0, tserr.Argument("STORAGE requires a value")
	}
	switch strings.ToLower(toks[0]) {
	case "timeseries", "stream":
		spec.Storage = StorageStream
	case "hash":
		spec.Storage = StorageHash
	default:
		return 0, tserr.Argument("unknown STORAGE %q", toks[0])
	}
	return 1, nil
}
