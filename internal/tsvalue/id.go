package tsvalue

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is a composite entry identifier: a non-negative timestamp disambiguated
// by a sequence number. IDs form a lexicographic total order.
type ID struct {
	Timestamp uint64
	Sequence  uint64
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func Compare(a, b ID) int {
	if a.Timestamp != b.Timestamp {
		if a.Timestamp < b.Timestamp {
			return -1
		}
		return 1
	}
	if a.Sequence != b.Sequence {
		if a.Sequence < b.Sequence {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether a sorts before b.
func Less(a, b ID) bool { return Compare(a, b) < 0 }

func (id ID) String() string {
	return fmt.Sprintf("%d-%d", id.Timestamp, id.Sequence)
}

// ParseID splits a token on the first '-': the left side is the numeric
// timestamp, the right side (if any) the textual sequence. A bare numeric
// token has an implicit sequence of 0.
func ParseID(tok string) (ID, error) {
	idx := strings.IndexByte(tok, '-')
	if idx < 0 {
		ts, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return ID{}, fmt.Errorf("malformed id %q", tok)
		}
		return ID{Timestamp: ts}, nil
	}
	tsPart, seqPart := tok[:idx], tok[idx+1:]
	ts, err := strconv.ParseUint(tsPart, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("malformed id %q", tok)
	}
	if seqPart == "" {
		return ID{Timestamp: ts}, nil
	}
	seq, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("malformed id %q", tok)
	}
	return ID{Timestamp: ts, Sequence: seq}, nil
}

// MinID and MaxID bound the representable id space; they back the '-'/'+'
// range sentinels.
var (
	MinID = ID{Timestamp: 0, Sequence: 0}
	MaxID = ID{Timestamp: ^uint64(0), Sequence: ^uint64(0)}
)

// ParseBound parses a range-bound token: '-' -> MinID, '+' -> MaxID,
// otherwise a composite id.
func ParseBound(tok string) (ID, error) {
	switch tok {
	case "-":
		return MinID, nil
	case "+":
		return MaxID, nil
	default:
		return ParseID(tok)
	}
}
