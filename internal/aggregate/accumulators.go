package aggregate

import (
	"math"
	"sort"

	"github.com/coffersTech/nanots/internal/tsvalue"
)

// countAcc increments on every entry regardless of field presence or
// coercibility.
type countAcc struct{ n int64 }

func (a *countAcc) add(v tsvalue.Value, present bool) { a.n++ }
func (a *countAcc) finalize() tsvalue.Value           { return tsvalue.Parse(formatFloat(float64(a.n))) }

// sumAcc treats a non-numeric or missing field as 0.
type sumAcc struct{ sum float64 }

func (a *sumAcc) add(v tsvalue.Value, present bool) {
	if !present {
		return
	}
	if f, ok := v.Float64(); ok {
		a.sum += f
	}
}
func (a *sumAcc) finalize() tsvalue.Value { return floatValue(a.sum) }

// avgAcc computes a running mean via Welford's method; non-numeric values
// are skipped entirely (they do not count toward n).
type avgAcc struct {
	mean float64
	n    int64
}

func (a *avgAcc) add(v tsvalue.Value, present bool) {
	if !present {
		return
	}
	f, ok := v.Float64()
	if !ok {
		return
	}
	a.n++
	a.mean += (f - a.mean) / float64(a.n)
}
func (a *avgAcc) finalize() tsvalue.Value { return floatValue(a.mean) }

// medianAcc buffers numeric samples and sorts at finalisation.
type medianAcc struct{ samples []float64 }

func (a *medianAcc) add(v tsvalue.Value, present bool) {
	if !present {
		return
	}
	if f, ok := v.Float64(); ok {
		a.samples = append(a.samples, f)
	}
}
func (a *medianAcc) finalize() tsvalue.Value {
	n := len(a.samples)
	if n == 0 {
		return floatValue(0)
	}
	sorted := append([]float64(nil), a.samples...)
	sort.Float64s(sorted)
	mid := n / 2
	if n%2 == 1 {
		return floatValue(sorted[mid])
	}
	return floatValue((sorted[mid-1] + sorted[mid]) / 2)
}

// stdevAcc is the Welford sample standard deviation (divisor n-1); a
// single-sample bucket is defined to be 0 (spec.md §9 open question).
type stdevAcc struct {
	mean, m2 float64
	n        int64
}

func (a *stdevAcc) add(v tsvalue.Value, present bool) {
	if !present {
		return
	}
	f, ok := v.Float64()
	if !ok {
		return
	}
	a.n++
	delta := f - a.mean
	a.mean += delta / float64(a.n)
	delta2 := f - a.mean
	a.m2 += delta * delta2
}
func (a *stdevAcc) finalize() tsvalue.Value {
	if a.n < 2 {
		return floatValue(0)
	}
	return floatValue(math.Sqrt(a.m2 / float64(a.n-1)))
}

// extremumAcc tracks min/max: numeric comparison when both the champion and
// the candidate parse as numbers, lexicographic comparison otherwise.
type extremumAcc struct {
	wantMin  bool
	has      bool
	champRaw string
	champNum float64
	champIsN bool
}

func (a *extremumAcc) add(v tsvalue.Value, present bool) {
	if !present {
		return
	}
	raw := v.String()
	num, isNum := v.Float64()
	if !a.has {
		a.has, a.champRaw, a.champNum, a.champIsN = true, raw, num, isNum
		return
	}
	var less bool
	if a.champIsN && isNum {
		less = num < a.champNum
	} else {
		less = raw < a.champRaw
	}
	better := less
	if !a.wantMin {
		better = !less && raw != a.champRaw
	}
	if better {
		a.champRaw, a.champNum, a.champIsN = raw, num, isNum
	}
}
func (a *extremumAcc) finalize() tsvalue.Value {
	if !a.has {
		return floatValue(0)
	}
	return tsvalue.Parse(a.champRaw)
}

// rangeAcc is numeric-only: max - min.
type rangeAcc struct {
	has      bool
	min, max float64
}

func (a *rangeAcc) add(v tsvalue.Value, present bool) {
	if !present {
		return
	}
	f, ok := v.Float64()
	if !ok {
		return
	}
	if !a.has {
		a.has, a.min, a.max = true, f, f
		return
	}
	if f < a.min {
		a.min = f
	}
	if f > a.max {
		a.max = f
	}
}
func (a *rangeAcc) finalize() tsvalue.Value {
	if !a.has {
		return floatValue(0)
	}
	return floatValue(a.max - a.min)
}

// firstLastAcc preserves the original textual form of the first or last
// value seen (missing fields are skipped for both).
type firstLastAcc struct {
	first bool
	has   bool
	raw   string
}

func (a *firstLastAcc) add(v tsvalue.Value, present bool) {
	if !present {
		return
	}
	if a.first && a.has {
		return
	}
	a.has, a.raw = true, v.String()
}
func (a *firstLastAcc) finalize() tsvalue.Value {
	if !a.has {
		return tsvalue.Parse("")
	}
	return tsvalue.Parse(a.raw)
}

// rateAcc counts every entry regardless of coercibility, like countAcc, but
// finalises as count/time_bucket.
type rateAcc struct {
	n          int64
	timeBucket uint64
}

func (a *rateAcc) add(v tsvalue.Value, present bool) { a.n++ }
func (a *rateAcc) finalize() tsvalue.Value {
	return floatValue(float64(a.n) / float64(a.timeBucket))
}
