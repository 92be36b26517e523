// Package tsmerge implements the two-source ordered merge behind the
// `merge` command (spec.md §4.G). The teacher's distributed analog
// (cluster/aggregator.go Search) scatter-gathers per-node results and then
// sorts the combined slice; here both "nodes" are already in-process and
// already individually ordered, so the gather step collapses to a single
// two-pointer merge instead of a sort.
package tsmerge

import "github.com/coffersTech/nanots/internal/tsvalue"

// Item is one mergeable row: an id plus its already filtered/projected
// fields.
type Item struct {
	ID     tsvalue.ID
	Fields []tsvalue.Field
}

// Merge combines two ascending-by-id slices into one ascending result. On a
// full id tie the left entry is emitted and both pointers advance,
// dropping the right-hand duplicate (spec.md §9, "preserve this
// behaviour").
func Merge(left, right []Item) []Item {
	out := make([]Item, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		cmp := tsvalue.Compare(left[i].ID, right[j].ID)
		switch {
		case cmp < 0:
			out = append(out, left[i])
			i++
		case cmp > 0:
			out = append(out, right[j])
			j++
		default:
			out = append(out, left[i])
			i++
			j++
		}
	}
	// Flush whichever side still has a tail. The original source indexes
	// into the tail with an undefined loop variable; the fix is to resume
	// from the live cursor (i or j), not from a fresh zero.
	out = append(out, left[i:]...)
	out = append(out, right[j:]...)
	return out
}
