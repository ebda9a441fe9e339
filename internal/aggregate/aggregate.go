// Package aggregate buckets tidy daily rows into ISO-week groups and
// computes per-bucket statistics. It is pure and stateless; the currency
// and weather transforms feed it, the balance reshape does not (that is
// a melt, not a statistical aggregation).
package aggregate

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Func selects the statistic applied to one value column.
type Func int

const (
	Mean Func = iota
	Min
	Max
)

// Spec maps each value column to its statistic. Columns fixes the output
// order; every listed column must appear in Funcs.
type Spec struct {
	Columns []string
	Funcs   map[string]Func
}

// Row is one tidy daily observation: a group key (symbol, or station and
// name), its calendar date, and the numeric columns to aggregate.
type Row struct {
	Key    []string
	Date   time.Time
	Values map[string]float64
}

// Bucket is one (key, ISO week) group. Start and End are the earliest
// and latest dates observed inside the bucket.
type Bucket struct {
	Key    []string
	Week   int
	Start  time.Time
	End    time.Time
	Values map[string]float64
}

type accumulator struct {
	key   []string
	week  int
	start time.Time
	end   time.Time
	sum   map[string]float64
	min   map[string]float64
	max   map[string]float64
	n     int
}

// Weekly groups rows by (key..., ISO week number) and applies spec.
// Buckets are returned sorted by key, then week. Weeks are ISO week
// numbers only; the same week number of different years shares a bucket,
// matching grouping on the bare calendar week.
func Weekly(rows []Row, spec Spec) []Bucket {
	accs := make(map[string]*accumulator)

	for _, r := range rows {
		_, week := r.Date.ISOWeek()
		id := strings.Join(r.Key, "\x1f") + "\x1f" + strconv.Itoa(week)

		acc, ok := accs[id]
		if !ok {
			acc = &accumulator{
				key:   append([]string(nil), r.Key...),
				week:  week,
				start: r.Date,
				end:   r.Date,
				sum:   make(map[string]float64),
				min:   make(map[string]float64),
				max:   make(map[string]float64),
			}
			accs[id] = acc
		}

		if r.Date.Before(acc.start) {
			acc.start = r.Date
		}
		if r.Date.After(acc.end) {
			acc.end = r.Date
		}
		for _, col := range spec.Columns {
			v := r.Values[col]
			if acc.n == 0 {
				acc.min[col] = v
				acc.max[col] = v
			} else {
				if v < acc.min[col] {
					acc.min[col] = v
				}
				if v > acc.max[col] {
					acc.max[col] = v
				}
			}
			acc.sum[col] += v
		}
		acc.n++
	}

	out := make([]Bucket, 0, len(accs))
	for _, acc := range accs {
		b := Bucket{
			Key:    acc.key,
			Week:   acc.week,
			Start:  acc.start,
			End:    acc.end,
			Values: make(map[string]float64, len(spec.Columns)),
		}
		for _, col := range spec.Columns {
			switch spec.Funcs[col] {
			case Min:
				b.Values[col] = acc.min[col]
			case Max:
				b.Values[col] = acc.max[col]
			default:
				b.Values[col] = acc.sum[col] / float64(acc.n)
			}
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		for k := 0; k < len(a.Key) && k < len(b.Key); k++ {
			if a.Key[k] != b.Key[k] {
				return a.Key[k] < b.Key[k]
			}
		}
		return a.Week < b.Week
	})
	return out
}
