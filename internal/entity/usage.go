package entity

import "time"

// DateLayout is the calendar-day format usage dates are stored and rendered in.
const DateLayout = "2006-01-02"

// Usage is one checkout period of an item. A nil EndDate means the item
// is still in use.
type Usage struct {
	ID        int64      `json:"id"`
	ItemID    int64      `json:"item_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Open reports whether the usage has not been ended yet.
func (u *Usage) Open() bool { return u.EndDate == nil }

// Day returns the calendar date of t as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
