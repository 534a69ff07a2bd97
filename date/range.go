package date

import "time"

// Range represents a range of dates, boundaries included. A zero boundary is open.
type Range struct{ From, To Date }

// NewRange returns the range between from and to.
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// Months splits a closed range into calendar months, the first and last
// ones cut at the range boundaries. It returns nil for an open range.
func (r Range) Months() []Range {
	if r.From.IsZero() || r.To.IsZero() {
		return nil
	}
	var out []Range
	for start := r.From; !start.After(r.To); {
		end := New(start.y, start.m+1, 0)
		if end.After(r.To) {
			end = r.To
		}
		out = append(out, Range{From: start, To: end})
		start = end.Add(1)
	}
	return out
}

// Label names the range for reports: "Mar 2025" for a whole month, "2025"
// for a whole year, otherwise both boundaries.
func (r Range) Label() string {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.d == 1 {
		switch {
		case r.To == New(r.From.y, r.From.m+1, 0):
			return r.From.time().Format("Jan 2006")
		case r.From.m == time.January && r.To == New(r.From.y, time.December, 31):
			return r.From.time().Format("2006")
		}
	}
	return r.String()
}

func (r Range) String() string {
	from, to := "…", "…"
	if !r.From.IsZero() {
		from = r.From.String()
	}
	if !r.To.IsZero() {
		to = r.To.String()
	}
	return from + " to " + to
}
