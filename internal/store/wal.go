package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/coffersTech/nanots/internal/tsvalue"
)

// walOp mirrors the mutating Store calls so a crash can replay them; the
// framing ([len uint32][json bytes]) and the file-handle-plus-mutex shape
// are carried over from the teacher's log WAL (engine/wal.go).
type walOp struct {
	Op     string          `json:"op"`
	Key    string          `json:"key"`
	ID     tsvalue.ID      `json:"id,omitempty"`
	Fields []tsvalue.Field `json:"fields,omitempty"`
	IDs    []tsvalue.ID    `json:"ids,omitempty"`
	N      int             `json:"n,omitempty"`
}

// WAL is a length-prefixed JSON append log.
type WAL struct {
	file *os.File
	mu   sync.Mutex
}

// OpenWAL opens or creates a WAL file at path.
func OpenWAL(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	return &WAL{file: f}, nil
}

func (w *WAL) writeOp(op walOp) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.Marshal(op)
	if err != nil {
		return err
	}
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(data)))
	if _, err := w.file.Write(lenBuf); err != nil {
		return err
	}
	_, err = w.file.Write(data)
	return err
}

// LogAppend records an Append call.
func (w *WAL) LogAppend(key string, id tsvalue.ID, fields []tsvalue.Field) error {
	return w.writeOp(walOp{Op: "append", Key: key, ID: id, Fields: fields})
}

// LogDelete records a DeleteIDs call.
func (w *WAL) LogDelete(key string, ids []tsvalue.ID) error {
	return w.writeOp(walOp{Op: "delete", Key: key, IDs: ids})
}

// LogTrim records a TrimToLength call.
func (w *WAL) LogTrim(key string, n int) error {
	return w.writeOp(walOp{Op: "trim", Key: key, N: n})
}

// Sync flushes the WAL file to disk.
func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

// Close closes the WAL file.
func (w *WAL) Close() error {
	return w.file.Close()
}

// Replay reads every recorded operation from the start of the file and
// applies it to dst, rebuilding in-memory state after a restart.
func (w *WAL) Replay(dst Store) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(w.file, lenBuf); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("WAL replay (len): %w", err)
		}
		length := binary.LittleEndian.Uint32(lenBuf)
		data := make([]byte, length)
		if _, err := io.ReadFull(w.file, data); err != nil {
			return fmt.Errorf("WAL replay (data): %w", err)
		}
		var op walOp
		if err := json.Unmarshal(data, &op); err != nil {
			return fmt.Errorf("WAL replay (unmarshal): %w", err)
		}
		switch op.Op {
		case "append":
			if err := dst.Append(op.Key, op.ID, op.Fields); err != nil {
				return fmt.Errorf("WAL replay (append): %w", err)
			}
		case "delete":
			dst.DeleteIDs(op.Key, op.IDs)
		case "trim":
			dst.TrimToLength(op.Key, op.N)
		default:
			return fmt.Errorf("WAL replay: unknown op %q", op.Op)
		}
	}
	if _, err := w.file.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	return nil
}
