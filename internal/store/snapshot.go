package store

import (
	"encoding/json"
	"os"

	"github.com/klauspost/compress/zstd"
)

// snapshotMagic tags the file format, matching the teacher's
// magic-header-then-body convention in storage/writer.go.
var snapshotMagic = []byte("NANOTS1")

type snapshotSeries struct {
	Key     string  `json:"key"`
	Entries []Entry `json:"entries"`
}

// SaveSnapshot serialises every series to a single zstd-compressed JSON
// block. The teacher snapshots one wide columnar table per file
// (storage/writer.go); here the unit is a keyed collection of series, so the
// per-column binary framing collapses to one JSON document, kept compressed
// for the same reason the teacher compresses: snapshots are write-rarely,
// read-at-startup, and dominated by repeated field names.
func SaveSnapshot(path string, s *MemStore) error {
	s.mu.RLock()
	all := make([]snapshotSeries, 0, len(s.series))
	for key, sr := range s.series {
		sr.mu.RLock()
		entries := append([]Entry(nil), sr.entries...)
		sr.mu.RUnlock()
		all = append(all, snapshotSeries{Key: key, Entries: entries})
	}
	s.mu.RUnlock()

	raw, err := json.Marshal(all)
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	defer enc.Close()
	compressed := enc.EncodeAll(raw, make([]byte, 0, len(raw)))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(snapshotMagic); err != nil {
		return err
	}
	_, err = f.Write(compressed)
	return err
}

// LoadSnapshot reads a file written by SaveSnapshot into a fresh MemStore.
// A missing file is not an error: it means there is nothing to restore yet.
func LoadSnapshot(path string) (*MemStore, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewMemStore(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) < len(snapshotMagic) || string(data[:len(snapshotMagic)]) != string(snapshotMagic) {
		return nil, &badSnapshotError{path: path}
	}
	body := data[len(snapshotMagic):]

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(body, nil)
	if err != nil {
		return nil, err
	}

	var all []snapshotSeries
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}

	store := NewMemStore()
	for _, ss := range all {
		sr := &series{entries: ss.Entries}
		store.series[ss.Key] = sr
	}
	return store, nil
}

type badSnapshotError struct{ path string }

func (e *badSnapshotError) Error() string {
	return "snapshot file " + e.path + " missing magic header"
}
