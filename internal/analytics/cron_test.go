// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package analytics

import (
	"slices"
	"testing"
	"time"
)

func TestParseCron(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
		check   func(*testing.T, *CronExpression)
	}{
		{
			name: "daily at midnight",
			expr: "0 0 * * *",
			check: func(t *testing.T, c *CronExpression) {
				if !slices.Equal(c.Minutes, []int{0}) || !slices.Equal(c.Hours, []int{0}) {
					t.Errorf("Minutes=%v Hours=%v, want [0] [0]", c.Minutes, c.Hours)
				}
				if len(c.DaysOfMonth) != 31 || len(c.Months) != 12 || len(c.DaysOfWeek) != 7 {
					t.Error("wildcard fields should cover their full range")
				}
			},
		},
		{
			name: "step",
			expr: "*/15 * * * *",
			check: func(t *testing.T, c *CronExpression) {
				if !slices.Equal(c.Minutes, []int{0, 15, 30, 45}) {
					t.Errorf("Minutes = %v, want [0 15 30 45]", c.Minutes)
				}
			},
		},
		{
			name: "range with step",
			expr: "0 9-17/4 * * *",
			check: func(t *testing.T, c *CronExpression) {
				if !slices.Equal(c.Hours, []int{9, 13, 17}) {
					t.Errorf("Hours = %v, want [9 13 17]", c.Hours)
				}
			},
		},
		{
			name: "list with duplicates",
			expr: "5,1,5 * * * *",
			check: func(t *testing.T, c *CronExpression) {
				if !slices.Equal(c.Minutes, []int{1, 5}) {
					t.Errorf("Minutes = %v, want [1 5]", c.Minutes)
				}
			},
		},
		{
			name: "sunday as 7",
			expr: "0 0 * * 7",
			check: func(t *testing.T, c *CronExpression) {
				if !slices.Equal(c.DaysOfWeek, []int{0}) {
					t.Errorf("DaysOfWeek = %v, want [0]", c.DaysOfWeek)
				}
			},
		},
		{name: "too few fields", expr: "0 0 * *", wantErr: true},
		{name: "too many fields", expr: "0 0 * * * *", wantErr: true},
		{name: "minute out of range", expr: "60 0 * * *", wantErr: true},
		{name: "hour out of range", expr: "0 24 * * *", wantErr: true},
		{name: "reversed range", expr: "0 5-1 * * *", wantErr: true},
		{name: "zero step", expr: "*/0 * * * *", wantErr: true},
		{name: "garbage", expr: "a b c d e", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCron(tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCron(%q) expected error", tt.expr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCron(%q) error = %v", tt.expr, err)
			}
			tt.check(t, c)
		})
	}
}

func TestCronExpression_NextRun(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		after time.Time
		want  time.Time
	}{
		{
			name:  "midnight from mid-day",
			expr:  "0 0 * * *",
			after: time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "exactly at midnight moves to next day",
			expr:  "0 0 * * *",
			after: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "seconds before midnight",
			expr:  "0 0 * * *",
			after: time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC),
			want:  time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "year rollover",
			expr:  "0 0 * * *",
			after: time.Date(2026, 12, 31, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "every 15 minutes",
			expr:  "*/15 * * * *",
			after: time.Date(2026, 3, 14, 10, 7, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 14, 10, 15, 0, 0, time.UTC),
		},
		{
			name:  "monday only",
			expr:  "30 2 * * 1",
			after: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), // Saturday
			want:  time.Date(2026, 3, 16, 2, 30, 0, 0, time.UTC),
		},
		{
			name:  "leap day",
			expr:  "0 0 29 2 *",
			after: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCron(tt.expr)
			if err != nil {
				t.Fatalf("ParseCron(%q) error = %v", tt.expr, err)
			}
			if got := c.NextRun(tt.after, time.UTC); !got.Equal(tt.want) {
				t.Errorf("NextRun(%v) = %v, want %v", tt.after, got, tt.want)
			}
		})
	}
}

func TestCronExpression_NextRunTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	c, err := ParseCron("0 0 * * *")
	if err != nil {
		t.Fatalf("ParseCron error = %v", err)
	}

	after := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	got := c.NextRun(after, loc)
	want := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextRun in UTC+2 = %v, want %v", got.UTC(), want)
	}

	// nil location is UTC
	if got := c.NextRun(after, nil); !got.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("NextRun(nil loc) = %v, want next UTC midnight", got)
	}
}

func TestCronExpression_NextRunNeverMatches(t *testing.T) {
	c, err := ParseCron("0 0 31 2 *")
	if err != nil {
		t.Fatalf("ParseCron error = %v", err)
	}
	if got := c.NextRun(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.UTC); !got.IsZero() {
		t.Errorf("NextRun for Feb 31 = %v, want zero time", got)
	}
}
