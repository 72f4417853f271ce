package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Schedule is the parsed, evaluable form of a recurrence expression. It is
// immutable and safe to share between goroutines.
type Schedule struct {
	expression string

	// minutes after local midnight at which the schedule fires, ascending
	minutes []int
	// minutes grouped by hour so each group compiles to one rrule
	groups []hourGroup

	weekdays  []int
	monthDays []int
	lastDay   bool
	months    []int
	weeks     []int

	never bool
}

type hourGroup struct {
	hours   []int
	minutes []int
}

var rruleWeekdays = [7]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Calendar span checked for day-level emptiness. 28 years covers every
// weekday/day-of-month/month/ISO-week alignment of the Gregorian calendar
// between 1901 and 2099.
var (
	probeStart = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)
	probeEnd   = time.Date(2027, time.December, 31, 12, 0, 0, 0, time.UTC)
)

func newSchedule(expression string, c *clauses) *Schedule {
	s := &Schedule{
		expression: expression,
		weekdays:   c.weekdays,
		monthDays:  c.monthDays,
		lastDay:    c.lastDay,
		months:     c.months,
		weeks:      c.weeks,
	}

	// A period of a week or a month with no day clause lands on the first
	// day of that period.
	noDayClause := s.weekdays == nil && s.monthDays == nil && !s.lastDay
	if noDayClause && c.dayStep == 0 {
		switch {
		case c.weekStep > 0:
			s.weekdays = []int{int(time.Monday)}
		case c.monthStep > 0:
			s.monthDays = []int{1}
		}
	}

	s.minutes = timesOfDay(c)
	s.groups = groupByHour(s.minutes)
	s.never = len(s.minutes) == 0 || !s.anyDayMatches()
	return s
}

// timesOfDay resolves the time clauses into minutes after midnight. Fields
// finer than the finest constrained one take their minimum.
func timesOfDay(c *clauses) []int {
	inWindows := func(m int) bool {
		for _, w := range c.windows {
			if !w.contains(m) {
				return false
			}
		}
		return true
	}

	var out []int
	if c.minuteStep == 0 && c.hourStep == 0 {
		base := c.times
		if base == nil {
			if len(c.windows) > 0 {
				base = []int{c.windows[0].start}
			} else {
				base = []int{0}
			}
		}
		for _, m := range base {
			if inWindows(m) {
				out = append(out, m)
			}
		}
		return out
	}

	for m := 0; m < minutesPerDay; m++ {
		hour, minute := m/60, m%60
		if c.hourStep > 0 && hour%c.hourStep != 0 {
			continue
		}
		if c.minuteStep > 0 {
			if minute%c.minuteStep != 0 {
				continue
			}
		} else if minute != 0 {
			continue
		}
		if c.times != nil && !containsInt(c.times, m) {
			continue
		}
		if !inWindows(m) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func groupByHour(minutes []int) []hourGroup {
	byHour := make(map[int][]int)
	for _, m := range minutes {
		byHour[m/60] = append(byHour[m/60], m%60)
	}

	index := make(map[string]int)
	var groups []hourGroup
	for hour := 0; hour < 24; hour++ {
		mins, ok := byHour[hour]
		if !ok {
			continue
		}
		key := fmt.Sprint(mins)
		if i, seen := index[key]; seen {
			groups[i].hours = append(groups[i].hours, hour)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, hourGroup{hours: []int{hour}, minutes: mins})
	}
	return groups
}

// Expression returns the normalized expression the schedule was parsed from.
func (s *Schedule) Expression() string {
	return s.expression
}

// String implements fmt.Stringer.
func (s *Schedule) String() string {
	return s.expression
}

// Never reports whether the schedule's constraints contradict each other so
// that no instant can ever match.
func (s *Schedule) Never() bool {
	return s.never
}

// RRule renders the schedule as RFC 5545 RRULE values, one per hour group;
// together they generate exactly the schedule's occurrences. It returns nil
// when the schedule has none or when no set of rules expresses it.
func (s *Schedule) RRule() []string {
	if s.never || !s.representable() {
		return nil
	}
	out := make([]string, 0, len(s.groups))
	for _, g := range s.groups {
		opt := s.options(g, time.Time{}, time.Time{})
		out = append(out, strings.TrimPrefix(opt.RRuleString(), "RRULE:"))
	}
	return out
}

// SingleRRule returns the schedule as one RRULE value, for formats that
// allow a single rule per component. ok is false when that is not exact.
func (s *Schedule) SingleRRule() (rule string, ok bool) {
	rules := s.RRule()
	if len(rules) != 1 {
		return "", false
	}
	return rules[0], true
}

// representable reports whether the BY* parts express the day filters
// exactly. A last-day clause intersected with explicit days is not.
func (s *Schedule) representable() bool {
	return !(s.lastDay && s.monthDays != nil)
}

func (s *Schedule) options(g hourGroup, dtstart, until time.Time) rrule.ROption {
	opt := rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: 1,
		Dtstart:  dtstart,
		Until:    until,
		Byhour:   g.hours,
		Byminute: g.minutes,
		Bysecond: []int{0},
		Bymonth:  s.months,
		Byweekno: s.weeks,
	}
	for _, d := range s.weekdays {
		opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
	}

	switch {
	case s.lastDay && s.monthDays == nil:
		opt.Bymonthday = []int{-1}
	case s.lastDay:
		// rrule cannot intersect "last day" with explicit days; keep the
		// candidates that could be last and let matchDay decide.
		for _, d := range s.monthDays {
			if d >= 28 {
				opt.Bymonthday = append(opt.Bymonthday, d)
			}
		}
	default:
		opt.Bymonthday = s.monthDays
	}
	return opt
}

// ruleSet compiles the schedule for one evaluation window in dtstart's
// location. rrule.Set is not safe for concurrent use, so every query builds
// its own.
func (s *Schedule) ruleSet(dtstart, until time.Time) (*rrule.Set, error) {
	set := &rrule.Set{}
	for _, g := range s.groups {
		r, err := rrule.NewRRule(s.options(g, dtstart, until))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %q: %w", s.expression, err)
		}
		set.RRule(r)
	}
	return set, nil
}

// matchDay applies every day-level constraint to the calendar date of t.
func (s *Schedule) matchDay(t time.Time) bool {
	if s.weekdays != nil && !containsInt(s.weekdays, int(t.Weekday())) {
		return false
	}
	if s.months != nil && !containsInt(s.months, int(t.Month())) {
		return false
	}
	if s.monthDays != nil && !containsInt(s.monthDays, t.Day()) {
		return false
	}
	if s.lastDay && time.Date(t.Year(), t.Month(), t.Day()+1, 12, 0, 0, 0, time.UTC).Day() != 1 {
		return false
	}
	if s.weeks != nil {
		_, week := t.ISOWeek()
		if !containsInt(s.weeks, week) {
			return false
		}
	}
	return true
}

func (s *Schedule) anyDayMatches() bool {
	for d := probeStart; !d.After(probeEnd); d = d.AddDate(0, 0, 1) {
		if s.matchDay(d) {
			return true
		}
	}
	return false
}

func containsInt(vals []int, v int) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}
