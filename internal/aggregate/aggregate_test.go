package aggregate

import (
	"math"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var ohlcSpec = Spec{
	Columns: []string{"Open", "Low", "High", "Close"},
	Funcs: map[string]Func{
		"Open":  Mean,
		"Low":   Min,
		"High":  Max,
		"Close": Mean,
	},
}

func TestWeekly_Statistics(t *testing.T) {
	// 2021-01-04 .. 2021-01-06 all fall in ISO week 1.
	rows := []Row{
		{Key: []string{"USD/TRY"}, Date: day(2021, 1, 4), Values: map[string]float64{"Open": 7.40, "Low": 7.30, "High": 7.50, "Close": 7.45}},
		{Key: []string{"USD/TRY"}, Date: day(2021, 1, 5), Values: map[string]float64{"Open": 7.45, "Low": 7.20, "High": 7.60, "Close": 7.55}},
		{Key: []string{"USD/TRY"}, Date: day(2021, 1, 6), Values: map[string]float64{"Open": 7.50, "Low": 7.35, "High": 7.70, "Close": 7.40}},
	}

	buckets := Weekly(rows, ohlcSpec)
	if len(buckets) != 1 {
		t.Fatalf("buckets: got %d want 1", len(buckets))
	}
	b := buckets[0]
	if b.Week != 1 {
		t.Fatalf("week: got %d", b.Week)
	}
	if !b.Start.Equal(day(2021, 1, 4)) || !b.End.Equal(day(2021, 1, 6)) {
		t.Fatalf("period: got [%v, %v]", b.Start, b.End)
	}
	if got := b.Values["Low"]; got != 7.20 {
		t.Fatalf("low: got %v", got)
	}
	if got := b.Values["High"]; got != 7.70 {
		t.Fatalf("high: got %v", got)
	}
	wantOpen := (7.40 + 7.45 + 7.50) / 3
	if got := b.Values["Open"]; math.Abs(got-wantOpen) > 1e-9 {
		t.Fatalf("open mean: got %v want %v", got, wantOpen)
	}
}

func TestWeekly_GroupsByKeyAndWeek(t *testing.T) {
	spec := Spec{Columns: []string{"Temp"}, Funcs: map[string]Func{"Temp": Mean}}
	rows := []Row{
		{Key: []string{"LFPO", "ORLY"}, Date: day(2021, 3, 1), Values: map[string]float64{"Temp": 10}},
		{Key: []string{"LFPO", "ORLY"}, Date: day(2021, 3, 8), Values: map[string]float64{"Temp": 12}},
		{Key: []string{"GMME", "RABAT"}, Date: day(2021, 3, 1), Values: map[string]float64{"Temp": 20}},
	}

	buckets := Weekly(rows, spec)
	if len(buckets) != 3 {
		t.Fatalf("buckets: got %d want 3", len(buckets))
	}
	// Sorted by key, then week: GMME first, then LFPO weeks 9 and 10.
	if buckets[0].Key[0] != "GMME" {
		t.Fatalf("order: first bucket key %v", buckets[0].Key)
	}
	if buckets[1].Key[0] != "LFPO" || buckets[2].Key[0] != "LFPO" {
		t.Fatalf("order: got %v, %v", buckets[1].Key, buckets[2].Key)
	}
	if !(buckets[1].Week < buckets[2].Week) {
		t.Fatalf("weeks not ascending: %d, %d", buckets[1].Week, buckets[2].Week)
	}
}

func TestWeekly_PeriodInvariant(t *testing.T) {
	spec := Spec{Columns: []string{"V"}, Funcs: map[string]Func{"V": Mean}}
	rows := []Row{
		{Key: []string{"A"}, Date: day(2021, 6, 11), Values: map[string]float64{"V": 1}},
		{Key: []string{"A"}, Date: day(2021, 6, 7), Values: map[string]float64{"V": 2}},
		{Key: []string{"A"}, Date: day(2021, 6, 9), Values: map[string]float64{"V": 3}},
	}
	for _, b := range Weekly(rows, spec) {
		if b.Start.After(b.End) {
			t.Fatalf("period_start > period_end: %v > %v", b.Start, b.End)
		}
	}
}

func TestWeekly_Empty(t *testing.T) {
	if got := Weekly(nil, ohlcSpec); len(got) != 0 {
		t.Fatalf("expected no buckets, got %d", len(got))
	}
}
