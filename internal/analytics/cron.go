// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package analytics

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CronExpression represents a parsed cron expression.
// Standard 5-field format: minute hour day-of-month month day-of-week
type CronExpression struct {
	Minutes     []int // 0-59
	Hours       []int // 0-23
	DaysOfMonth []int // 1-31
	Months      []int // 1-12
	DaysOfWeek  []int // 0-6 (0 = Sunday)

	expr string
}

// ParseCron parses a standard 5-field cron expression.
// Format: minute hour day-of-month month day-of-week
//
// Supported syntax:
//   - * (any value)
//   - n (specific value)
//   - n-m (range)
//   - n,m,o (list)
//   - */n (step from start)
//   - n-m/s (step in range)
//
// Examples:
//   - "0 0 * * *" - Daily at midnight (the aggregation default)
//   - "30 2 * * *" - Daily at 02:30
//   - "0 0 * * 1" - Every Monday at midnight
func ParseCron(expr string) (*CronExpression, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}

	minutes, err := parseField(fields[0], 0, 59)
	if err != nil {
		return nil, fmt.Errorf("invalid minute field: %w", err)
	}

	hours, err := parseField(fields[1], 0, 23)
	if err != nil {
		return nil, fmt.Errorf("invalid hour field: %w", err)
	}

	daysOfMonth, err := parseField(fields[2], 1, 31)
	if err != nil {
		return nil, fmt.Errorf("invalid day-of-month field: %w", err)
	}

	months, err := parseField(fields[3], 1, 12)
	if err != nil {
		return nil, fmt.Errorf("invalid month field: %w", err)
	}

	daysOfWeek, err := parseField(fields[4], 0, 7)
	if err != nil {
		return nil, fmt.Errorf("invalid day-of-week field: %w", err)
	}

	// 7 is an alias for Sunday
	for i, d := range daysOfWeek {
		if d == 7 {
			daysOfWeek[i] = 0
		}
	}

	return &CronExpression{
		Minutes:     minutes,
		Hours:       hours,
		DaysOfMonth: daysOfMonth,
		Months:      months,
		DaysOfWeek:  uniqueSorted(daysOfWeek),
		expr:        strings.Join(fields, " "),
	}, nil
}

// String returns the normalized expression.
func (c *CronExpression) String() string {
	return c.expr
}

// maxSearchYears bounds NextRun for expressions that never match
// (e.g. "0 0 31 2 *").
const maxSearchYears = 4

// NextRun returns the first matching minute strictly after the given time,
// evaluated in loc. If loc is nil, UTC is used. The zero time is returned
// when the expression cannot match within four years.
func (c *CronExpression) NextRun(after time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := after.In(loc).Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(maxSearchYears, 0, 0)

	for t.Before(limit) {
		if !containsInt(c.Months, int(t.Month())) || !c.matchesDay(t) {
			// Jump to the start of the next day.
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
			continue
		}
		if !containsInt(c.Hours, t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
			continue
		}
		if containsInt(c.Minutes, t.Minute()) {
			return t
		}
		t = t.Add(time.Minute)
	}

	return time.Time{}
}

// matchesDay applies standard cron day semantics: when both day-of-month
// and day-of-week are restricted, either may match.
func (c *CronExpression) matchesDay(t time.Time) bool {
	domMatch := containsInt(c.DaysOfMonth, t.Day())
	dowMatch := containsInt(c.DaysOfWeek, int(t.Weekday()))

	domWildcard := len(c.DaysOfMonth) == 31
	dowWildcard := len(c.DaysOfWeek) == 7

	switch {
	case domWildcard && dowWildcard:
		return true
	case domWildcard:
		return dowMatch
	case dowWildcard:
		return domMatch
	default:
		return domMatch || dowMatch
	}
}

// parseField parses a single cron field.
func parseField(field string, minVal, maxVal int) ([]int, error) {
	if field == "*" {
		return rangeInts(minVal, maxVal), nil
	}

	var result []int
	for _, part := range strings.Split(field, ",") {
		values, err := parseFieldPart(part, minVal, maxVal)
		if err != nil {
			return nil, err
		}
		result = append(result, values...)
	}
	return uniqueSorted(result), nil
}

// parseFieldPart parses a single part of a cron field (non-list).
func parseFieldPart(part string, minVal, maxVal int) ([]int, error) {
	base, stepStr, hasStep := strings.Cut(part, "/")

	step := 1
	if hasStep {
		var err error
		step, err = strconv.Atoi(stepStr)
		if err != nil || step <= 0 {
			return nil, fmt.Errorf("invalid step value: %s", stepStr)
		}
	}

	var start, end int
	switch {
	case base == "*":
		start, end = minVal, maxVal
	case strings.Contains(base, "-"):
		lo, hi, _ := strings.Cut(base, "-")
		var err error
		if start, err = strconv.Atoi(lo); err != nil {
			return nil, fmt.Errorf("invalid range start: %s", lo)
		}
		if end, err = strconv.Atoi(hi); err != nil {
			return nil, fmt.Errorf("invalid range end: %s", hi)
		}
		if start > end || start < minVal || end > maxVal {
			return nil, fmt.Errorf("invalid range: %d-%d (minVal=%d, maxVal=%d)", start, end, minVal, maxVal)
		}
	default:
		val, err := strconv.Atoi(base)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %s", base)
		}
		if val < minVal || val > maxVal {
			return nil, fmt.Errorf("value out of range: %d (minVal=%d, maxVal=%d)", val, minVal, maxVal)
		}
		start, end = val, val
		if hasStep {
			// "n/s" steps from n to the end of the range
			end = maxVal
		}
	}

	var result []int
	for i := start; i <= end; i += step {
		result = append(result, i)
	}
	return result, nil
}

// rangeInts returns a slice of integers from start to end (inclusive).
func rangeInts(start, end int) []int {
	result := make([]int, end-start+1)
	for i := range result {
		result[i] = start + i
	}
	return result
}

func containsInt(values []int, val int) bool {
	return slices.Contains(values, val)
}

// uniqueSorted sorts values and removes duplicates.
func uniqueSorted(values []int) []int {
	slices.Sort(values)
	return slices.Compact(values)
}
