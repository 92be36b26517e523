package store

import (
	"testing"

	"github.com/coffersTech/nanots/internal/tsvalue"
)

func id(ts uint64) tsvalue.ID { return tsvalue.ID{Timestamp: ts} }

func TestAppendRejectsRegressiveID(t *testing.T) {
	s := NewMemStore()
	if err := s.Append("k", id(100), nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("k", id(100), nil); err != ErrRegressiveID {
		t.Fatalf("expected ErrRegressiveID, got %v", err)
	}
	if err := s.Append("k", id(99), nil); err != ErrRegressiveID {
		t.Fatalf("expected ErrRegressiveID for lower id, got %v", err)
	}
	if n, ok := s.Len("k"); !ok || n != 1 {
		t.Fatalf("expected len 1, got %d ok=%v", n, ok)
	}
}

func TestScanRangeInclusiveBounds(t *testing.T) {
	s := NewMemStore()
	for i := uint64(1000); i <= 9000; i += 1000 {
		if err := s.Append("k", id(i), nil); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
	}
	got := s.ScanRange("k", tsvalue.MinID, id(4000), nil)
	if len(got) != 4 {
		t.Fatalf("expected 4 entries <= 4000, got %d", len(got))
	}
	got = s.ScanRange("k", id(2000), tsvalue.MaxID, nil)
	if len(got) != 8 {
		t.Fatalf("expected 8 entries >= 2000, got %d", len(got))
	}
}

func TestScanRangeReverseOrderAndCount(t *testing.T) {
	s := NewMemStore()
	for i := uint64(1); i <= 5; i++ {
		_ = s.Append("k", id(i), nil)
	}
	count := int64(2)
	got := s.ScanRangeReverse("k", tsvalue.MinID, tsvalue.MaxID, &count)
	if len(got) != 2 || got[0].ID.Timestamp != 5 || got[1].ID.Timestamp != 4 {
		t.Fatalf("unexpected reverse scan result: %+v", got)
	}
}

func TestDeleteIDs(t *testing.T) {
	s := NewMemStore()
	for i := uint64(1); i <= 5; i++ {
		_ = s.Append("k", id(i), nil)
	}
	removed := s.DeleteIDs("k", []tsvalue.ID{id(2), id(4)})
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	n, _ := s.Len("k")
	if n != 3 {
		t.Fatalf("expected 3 remaining, got %d", n)
	}
	got := s.ScanRange("k", tsvalue.MinID, tsvalue.MaxID, nil)
	for _, e := range got {
		if e.ID.Timestamp == 2 || e.ID.Timestamp == 4 {
			t.Fatalf("deleted id %d still present", e.ID.Timestamp)
		}
	}
}

func TestTrimToLengthKeepsNewest(t *testing.T) {
	s := NewMemStore()
	for i := uint64(1); i <= 200; i++ {
		_ = s.Append("k", id(i), nil)
	}
	discarded := s.TrimToLength("k", 100)
	if discarded != 100 {
		t.Fatalf("expected 100 discarded, got %d", discarded)
	}
	n, _ := s.Len("k")
	if n != 100 {
		t.Fatalf("expected 100 remaining, got %d", n)
	}
	got := s.ScanRange("k", tsvalue.MinID, tsvalue.MaxID, nil)
	if got[0].ID.Timestamp != 101 || got[len(got)-1].ID.Timestamp != 200 {
		t.Fatalf("expected newest 100 retained in order, got first=%d last=%d",
			got[0].ID.Timestamp, got[len(got)-1].ID.Timestamp)
	}
}

func TestSpanAndLenOnAbsentKey(t *testing.T) {
	s := NewMemStore()
	if _, _, ok := s.Span("missing"); ok {
		t.Fatalf("expected ok=false for absent key")
	}
	if _, ok := s.Len("missing"); ok {
		t.Fatalf("expected ok=false for absent key")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewMemStore()
	for i := uint64(1); i <= 3; i++ {
		_ = s.Append("k", id(i), []tsvalue.Field{{Name: "v", Raw: "1"}})
	}
	path := dir + "/snap.nanots"
	if err := SaveSnapshot(path, s); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	n, ok := loaded.Len("k")
	if !ok || n != 3 {
		t.Fatalf("expected 3 entries after reload, got %d ok=%v", n, ok)
	}
}

func TestWALReplay(t *testing.T) {
	dir := t.TempDir()
	w, err := OpenWAL(dir + "/wal.log")
	if err != nil {
		t.Fatalf("OpenWAL: %v", err)
	}
	defer w.Close()

	if err := w.LogAppend("k", id(1), []tsvalue.Field{{Name: "v", Raw: "1"}}); err != nil {
		t.Fatalf("LogAppend: %v", err)
	}
	if err := w.LogAppend("k", id(2), nil); err != nil {
		t.Fatalf("LogAppend: %v", err)
	}
	if err := w.LogTrim("k", 1); err != nil {
		t.Fatalf("LogTrim: %v", err)
	}

	dst := NewMemStore()
	if err := w.Replay(dst); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	n, ok := dst.Len("k")
	if !ok || n != 1 {
		t.Fatalf("expected 1 entry after replay+trim, got %d ok=%v", n, ok)
	}
}
