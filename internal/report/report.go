// Package report derives scalar and series summaries from in-memory
// expense records. Every function is pure with respect to its input:
// no mutation, no I/O, and no error paths — an empty or non-matching
// input yields zero totals, never a failure.
package report

import (
	"sort"

	"traklio/internal/core"
)

// CategoryTotal is an amount aggregated under one category name.
type CategoryTotal struct {
	Name  string     `json:"name"`
	Total core.Money `json:"total"`
}

// DayTotal is one bucket of a daily trend series.
type DayTotal struct {
	Day   core.Day   `json:"day"`
	Total core.Money `json:"total"`
}

// Summary is the fixed insight tuple for the analytics view.
type Summary struct {
	Total     core.Money     `json:"total"`
	AvgPerDay core.Money     `json:"avgPerDay"`
	Top       *CategoryTotal `json:"topCategory"`
	Count     int            `json:"count"`
}

// RangeTotal sums the amounts of records whose date satisfies pred.
func RangeTotal(records []core.Expense, pred func(core.Day) bool) core.Money {
	var total core.Money
	for _, e := range records {
		if pred(e.Date) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// TotalOn sums records dated exactly day.
func TotalOn(records []core.Expense, day core.Day) core.Money {
	return RangeTotal(records, func(d core.Day) bool { return d == day })
}

// TotalSince sums records dated on or after start.
func TotalSince(records []core.Expense, start core.Day) core.Money {
	return RangeTotal(records, func(d core.Day) bool { return d >= start })
}

// CategoryTotals sums amounts per category. Result order is the
// first-seen order of each category in the input.
func CategoryTotals(records []core.Expense) []CategoryTotal {
	index := make(map[string]int)
	totals := make([]CategoryTotal, 0)
	for _, e := range records {
		i, ok := index[e.Category]
		if !ok {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, CategoryTotal{Name: e.Category})
		}
		totals[i].Total = totals[i].Total.Add(e.Amount)
	}
	return totals
}

// TopCategories returns the n largest category totals in descending
// order. The sort is stable, so categories with equal totals keep their
// first-seen order. n <= 0 returns all categories.
func TopCategories(records []core.Expense, n int) []CategoryTotal {
	totals := CategoryTotals(records)
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.Cents > totals[j].Total.Cents
	})
	if n > 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// DailySeries buckets record amounts into the last windowDays calendar
// days ending at anchor, oldest first. Days without records are present
// with a zero total, so the series is dense and plottable as-is.
func DailySeries(records []core.Expense, windowDays int, anchor core.Day) []DayTotal {
	if windowDays <= 0 {
		return nil
	}
	series := make([]DayTotal, windowDays)
	index := make(map[core.Day]int, windowDays)
	for i := 0; i < windowDays; i++ {
		day := anchor.AddDays(i - windowDays + 1)
		series[i] = DayTotal{Day: day}
		index[day] = i
	}
	for _, e := range records {
		if i, ok := index[e.Date]; ok {
			series[i].Total = series[i].Total.Add(e.Amount)
		}
	}
	return series
}

// Insights computes the analytics summary tuple: total spent, average
// per day over the window (zero-spend days count toward the average),
// the top category with its total, and the transaction count. An empty
// record list yields zeros and a nil top category.
func Insights(records []core.Expense, windowDays int) Summary {
	var total core.Money
	for _, e := range records {
		total = total.Add(e.Amount)
	}
	s := Summary{
		Total:     total,
		AvgPerDay: total.Div(windowDays),
		Count:     len(records),
	}
	if top := TopCategories(records, 1); len(top) > 0 {
		s.Top = &top[0]
	}
	return s
}
