package tsquery

import "testing"

func TestParseLimitWithOffset(t *testing.T) {
	spec, err := Parse([]string{"LIMIT", "10", "5"}, AllowedRange)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Count == nil || *spec.Count != 10 {
		t.Fatalf("expected count 10, got %+v", spec.Count)
	}
}

func TestParseLimitWithoutOffset(t *testing.T) {
	spec, err := Parse([]string{"LIMIT", "10", "FILTER", "a", "=", "\"b\""}, AllowedRange)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Count == nil || *spec.Count != 10 {
		t.Fatalf("expected count 10, got %+v", spec.Count)
	}
	if spec.Filter == nil {
		t.Fatalf("expected filter to be compiled")
	}
}

func TestParseNonPositiveLimit(t *testing.T) {
	if _, err := Parse([]string{"LIMIT", "0"}, AllowedRange); err == nil {
		t.Fatalf("expected error for non-positive LIMIT")
	}
}

func TestParseAggregation(t *testing.T) {
	spec, err := Parse([]string{"AGGREGATION", "10", "avg(value)", "max(value)"}, AllowedRange)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Aggregate == nil || spec.Aggregate.TimeBucket != 10 {
		t.Fatalf("expected aggregate bucket 10, got %+v", spec.Aggregate)
	}
	if len(spec.Aggregate.Fields) != 2 {
		t.Fatalf("expected 2 agg fields, got %d", len(spec.Aggregate.Fields))
	}
	if !spec.ParseTS {
		t.Fatalf("expected ParseTS true when aggregation present")
	}
}

func TestParseAggregationUnknownKind(t *testing.T) {
	if _, err := Parse([]string{"AGGREGATION", "10", "bogus(value)"}, AllowedRange); err == nil {
		t.Fatalf("expected error for unknown aggregation kind")
	}
}

func TestParseAggregationMalformedSpec(t *testing.T) {
	if _, err := Parse([]string{"AGGREGATION", "10", "avgvalue"}, AllowedRange); err == nil {
		t.Fatalf("expected error for malformed kind(field) spec")
	}
}

func TestParseAggregationNonPositiveBucket(t *testing.T) {
	if _, err := Parse([]string{"AGGREGATION", "0", "avg(value)"}, AllowedRange); err == nil {
		t.Fatalf("expected error for non-positive time_bucket")
	}
}

func TestParseLabelsAndRedactCollision(t *testing.T) {
	if _, err := Parse([]string{"LABELS", "a", "REDACT", "b"}, AllowedRange); err == nil {
		t.Fatalf("expected error for LABELS+REDACT collision")
	}
}

func TestParseUnknownOption(t *testing.T) {
	if _, err := Parse([]string{"BOGUS", "x"}, AllowedRange); err == nil {
		t.Fatalf("expected error for unknown option")
	}
}

func TestParseDuplicateOption(t *testing.T) {
	if _, err := Parse([]string{"LABELS", "a", "LABELS", "b"}, AllowedRange); err == nil {
		t.Fatalf("expected error for duplicate option")
	}
}

func TestParseOptionNotAllowedForCommand(t *testing.T) {
	if _, err := Parse([]string{"FORMAT", "json"}, AllowedCopy); err == nil {
		t.Fatalf("expected error: FORMAT not permitted for copy")
	}
}

func TestParseStorageOption(t *testing.T) {
	spec, err := Parse([]string{"STORAGE", "hash"}, AllowedCopy)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Storage != StorageHash {
		t.Fatalf("expected StorageHash, got %v", spec.Storage)
	}
}

func TestParseEmptyTokensIsValid(t *testing.T) {
	spec, err := Parse(nil, AllowedRange)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Count != nil || spec.Filter != nil || spec.Aggregate != nil {
		t.Fatalf("expected zero-value spec, got %+v", spec)
	}
}
