// Package model defines the usage record and the derived aggregate views
// computed from it.
package model

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date key format used by every grouping.
const DateLayout = "2006-01-02"

// UnlimitedQuota is the sentinel the export writes for uncapped users.
const UnlimitedQuota = "Unlimited"

// UsageRecord is one validated row of a usage export.
type UsageRecord struct {
	Timestamp         time.Time
	User              string
	Model             string
	RequestsUsed      float64
	ExceedsQuota      bool
	TotalMonthlyQuota string
}

// Date returns the UTC calendar date of the record's timestamp.
func (r UsageRecord) Date() string {
	return DateKey(r.Timestamp)
}

// MonthlyQuota interprets TotalMonthlyQuota. unlimited is true for the
// "Unlimited" sentinel; ok is false when the value is neither a number nor
// the sentinel.
func (r UsageRecord) MonthlyQuota() (limit float64, unlimited, ok bool) {
	q := strings.TrimSpace(r.TotalMonthlyQuota)
	if q == UnlimitedQuota {
		return 0, true, true
	}
	v, err := strconv.ParseFloat(q, 64)
	if err != nil || v < 0 {
		return 0, false, false
	}
	return v, false, true
}

// DateKey truncates t to its UTC calendar date.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
