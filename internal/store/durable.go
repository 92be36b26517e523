package store

import (
	"log"

	"github.com/coffersTech/nanots/internal/tsvalue"
)

// DurableStore wraps a MemStore with a WAL: each of the three mutating Store
// calls is applied in memory first and then written to the log, so an
// Append the MemStore rejects is never logged. A WAL write error is logged
// and does not fail the call. Pairing a log with the in-memory state follows
// the teacher's QueryEngine.Ingest (engine/query_engine.go), generalized
// from one log-row shape to the three mutating Store calls.
type DurableStore struct {
	mem *MemStore
	wal *WAL
}

// NewDurableStore pairs an in-memory store with an already-open WAL.
func NewDurableStore(mem *MemStore, wal *WAL) *DurableStore {
	return &DurableStore{mem: mem, wal: wal}
}

func (d *DurableStore) Append(key string, id tsvalue.ID, fields []tsvalue.Field) error {
	if err := d.mem.Append(key, id, fields); err != nil {
		return err
	}
	if err := d.wal.LogAppend(key, id, fields); err != nil {
		log.Printf("WAL append log error: %v", err)
	}
	return nil
}

func (d *DurableStore) DeleteIDs(key string, ids []tsvalue.ID) int {
	n := d.mem.DeleteIDs(key, ids)
	if err := d.wal.LogDelete(key, ids); err != nil {
		log.Printf("WAL delete log error: %v", err)
	}
	return n
}

func (d *DurableStore) TrimToLength(key string, n int) int {
	discarded := d.mem.TrimToLength(key, n)
	if err := d.wal.LogTrim(key, n); err != nil {
		log.Printf("WAL trim log error: %v", err)
	}
	return discarded
}

func (d *DurableStore) Get(key string, id tsvalue.ID) ([]tsvalue.Field, bool) {
	return d.mem.Get(key, id)
}

func (d *DurableStore) ScanRange(key string, min, max tsvalue.ID, count *int64) []Entry {
	return d.mem.ScanRange(key, min, max, count)
}

func (d *DurableStore) ScanRangeReverse(key string, min, max tsvalue.ID, count *int64) []Entry {
	return d.mem.ScanRangeReverse(key, min, max, count)
}

func (d *DurableStore) Len(key string) (int, bool) {
	return d.mem.Len(key)
}

func (d *DurableStore) Span(key string) (tsvalue.ID, tsvalue.ID, bool) {
	return d.mem.Span(key)
}

// Sync flushes the WAL to disk.
func (d *DurableStore) Sync() error {
	return d.wal.Sync()
}

// Mem exposes the underlying in-memory store for snapshotting.
func (d *DurableStore) Mem() *MemStore {
	return d.mem
}
