// Package shift maps wall-clock timestamps onto the plant's two daily turns
package shift

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is an offset from local midnight
type TimeOfDay time.Duration

// ParseTimeOfDay parses "HH:MM"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// Window is the shift a timestamp falls in. Turn and BusinessDate always come
// from the same Clock.Window call
type Window struct {
	Turn         int
	BusinessDate time.Time
	Start        time.Time
	End          time.Time
}

// Key identifies a shift for caching
type Key struct {
	Turn         int
	BusinessDate string
}

func (k Key) String() string {
	return fmt.Sprintf("T%d|%s", k.Turn, k.BusinessDate)
}

// Key returns the (turn, business date) pair
func (w Window) Key() Key {
	return Key{Turn: w.Turn, BusinessDate: w.ISODate()}
}

// ISODate formats the business date as YYYY-MM-DD
func (w Window) ISODate() string {
	return w.BusinessDate.Format("2006-01-02")
}

// DDMM formats the business date the way sheet names carry it
func (w Window) DDMM() string {
	return w.BusinessDate.Format("02-01")
}

// DDMMYYYY is DDMM with the year
func (w Window) DDMMYYYY() string {
	return w.BusinessDate.Format("02-01-2006")
}

// Clock holds the turn boundaries. Turn 1 runs [Turn1Start, Turn2Start), turn 2
// covers the rest of the day and crosses midnight
type Clock struct {
	Turn1Start TimeOfDay
	Turn2Start TimeOfDay
}

// NewClock builds a Clock from "HH:MM" boundaries
func NewClock(turn1Start, turn2Start string) (*Clock, error) {
	t1, err := ParseTimeOfDay(turn1Start)
	if err != nil {
		return nil, fmt.Errorf("turn 1 start: %w", err)
	}
	t2, err := ParseTimeOfDay(turn2Start)
	if err != nil {
		return nil, fmt.Errorf("turn 2 start: %w", err)
	}
	if t1 >= t2 {
		return nil, fmt.Errorf("turn 1 start %s must be before turn 2 start %s", t1, t2)
	}
	return &Clock{Turn1Start: t1, Turn2Start: t2}, nil
}

// CurrentTurn returns 1 or 2
func (c *Clock) CurrentTurn(now time.Time) int {
	tod := sinceMidnight(now)
	if c.Turn1Start <= tod && tod < c.Turn2Start {
		return 1
	}
	return 2
}

// BusinessDate is now's calendar date, except before turn 1 starts, when the
// running turn 2 began the previous day
func (c *Clock) BusinessDate(now time.Time) time.Time {
	day := midnight(now)
	if c.CurrentTurn(now) == 2 && sinceMidnight(now) < c.Turn1Start {
		return day.AddDate(0, 0, -1)
	}
	return day
}

// Window computes the shift containing now
func (c *Clock) Window(now time.Time) Window {
	turn := c.CurrentTurn(now)
	date := c.BusinessDate(now)
	w := Window{Turn: turn, BusinessDate: date}
	if turn == 1 {
		w.Start = date.Add(time.Duration(c.Turn1Start))
		w.End = date.Add(time.Duration(c.Turn2Start))
	} else {
		w.Start = date.Add(time.Duration(c.Turn2Start))
		w.End = date.AddDate(0, 0, 1).Add(time.Duration(c.Turn1Start))
	}
	return w
}

// Representative returns a timestamp inside the given turn of businessDate,
// one hour after the turn starts. Used when the running shift is reported by
// an external source instead of derived from the wall clock
func (c *Clock) Representative(turn int, businessDate time.Time) time.Time {
	date := midnight(businessDate)
	if turn == 1 {
		return date.Add(time.Duration(c.Turn1Start) + time.Hour)
	}
	return date.Add(time.Duration(c.Turn2Start) + time.Hour)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sinceMidnight(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second + time.Duration(t.Nanosecond()))
}
