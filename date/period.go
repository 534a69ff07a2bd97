package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Period is the recurrence of a scheduled entry.
type Period int

const (
	Monthly Period = iota
	Yearly
)

func (p Period) String() string {
	switch p {
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

func ParsePeriod(p string) (Period, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	switch p {
	case "monthly", "month":
		return Monthly, nil
	case "yearly", "year", "annual":
		return Yearly, nil
	default:
		return Monthly, fmt.Errorf("unknown period %q", p)
	}
}

// Next returns the occurrence that follows d, landing on day of month when
// day is positive, otherwise on d's own day.
func (p Period) Next(d Date, day int) Date {
	if day <= 0 {
		day = d.Day()
	}
	switch p {
	case Yearly:
		return d.AddMonths(12, day)
	default:
		return d.AddMonths(1, day)
	}
}

// Range returns the calendar month or year that holds d.
func (p Period) Range(d Date) Range {
	switch p {
	case Yearly:
		return Range{From: New(d.y, time.January, 1), To: New(d.y, time.December, 31)}
	default:
		return Range{From: New(d.y, d.m, 1), To: New(d.y, d.m+1, 0)}
	}
}

func (p Period) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *Period) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
