package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidExpression is returned when text cannot be parsed as a recurrence.
var ErrInvalidExpression = errors.New("invalid recurrence expression")

const minutesPerDay = 24 * 60

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

type unit int

const (
	unitMinute unit = iota
	unitHour
	unitDay
	unitWeek
	unitMonth
)

var unitNames = map[string]unit{
	"min": unitMinute, "mins": unitMinute, "minute": unitMinute, "minutes": unitMinute,
	"hr": unitHour, "hrs": unitHour, "hour": unitHour, "hours": unitHour,
	"day": unitDay, "days": unitDay,
	"week": unitWeek, "weeks": unitWeek,
	"month": unitMonth, "months": unitMonth,
}

// Largest step accepted for each unit; a step must fit inside its field.
var unitMax = map[unit]int{
	unitMinute: 59,
	unitHour:   23,
	unitDay:    31,
	unitWeek:   53,
	unitMonth:  12,
}

// window is a time-of-day range [start, end) in minutes after midnight.
// end < start wraps past midnight.
type window struct {
	start, end int
}

func (w window) contains(m int) bool {
	if w.start <= w.end {
		return m >= w.start && m < w.end
	}
	return m >= w.start || m < w.end
}

// clauses accumulates constraints while parsing. Slices are nil when the
// field is unconstrained; a non-nil empty slice is a contradiction.
type clauses struct {
	minuteStep int
	hourStep   int
	dayStep    int
	weekStep   int
	monthStep  int

	times   []int
	windows []window

	weekdays  []int
	monthDays []int
	lastDay   bool
	months    []int
	weeks     []int
}

// Parse turns a recurrence expression into a Schedule. Parsing is pure and the
// returned Schedule is immutable.
func Parse(expression string) (*Schedule, error) {
	tokens := tokenize(expression)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: expression is empty", ErrInvalidExpression)
	}

	p := &parser{tokens: tokens}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return newSchedule(normalize(expression), &p.c), nil
}

func normalize(expression string) string {
	return strings.Join(tokenize(expression), " ")
}

func tokenize(expression string) []string {
	s := strings.ToLower(expression)
	s = strings.NewReplacer(",", " ", ";", " ", ".", " ").Replace(s)
	return strings.Fields(s)
}

type parser struct {
	tokens []string
	pos    int
	c      clauses
}

func (p *parser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *parser) next() string {
	tok := p.peek()
	if tok != "" {
		p.pos++
	}
	return tok
}

func (p *parser) accept(words ...string) bool {
	tok := p.peek()
	for _, w := range words {
		if tok == w {
			p.pos++
			return true
		}
	}
	return false
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s (at word %d of %q)", ErrInvalidExpression,
		fmt.Sprintf(format, args...), p.pos+1, strings.Join(p.tokens, " "))
}

func (p *parser) parse() error {
	for p.pos < len(p.tokens) {
		tok := p.peek()
		switch {
		case tok == "and":
			p.pos++
		case tok == "every":
			p.pos++
			if err := p.parseEvery(); err != nil {
				return err
			}
		case tok == "on":
			p.pos++
			if err := p.parseOn(); err != nil {
				return err
			}
		case tok == "the":
			p.pos++
			if err := p.parseThe(); err != nil {
				return err
			}
		case tok == "first" || tok == "last":
			if err := p.parseBoundary(); err != nil {
				return err
			}
		case tok == "in":
			p.pos++
			if !isMonth(p.peek()) {
				return p.errorf("expected a month after \"in\"")
			}
			p.parseMonths()
		case tok == "at":
			p.pos++
			if err := p.parseAt(); err != nil {
				return err
			}
		case tok == "from":
			p.pos++
			if err := p.parseWindow("to"); err != nil {
				return err
			}
		case tok == "between":
			p.pos++
			if err := p.parseWindow("and"); err != nil {
				return err
			}
		case isWeekdayWord(tok):
			p.parseWeekdays()
		case isMonth(tok):
			p.parseMonths()
		default:
			return p.errorf("unexpected %q", tok)
		}
	}
	return nil
}

func (p *parser) parseEvery() error {
	tok := p.peek()
	switch {
	case tok == "":
		return p.errorf("expected an interval after \"every\"")
	case tok == "other":
		p.pos++
		return p.parseUnit(2)
	case isWeekdayWord(tok):
		p.parseWeekdays()
		return nil
	case isMonth(tok):
		p.parseMonths()
		return nil
	}

	if n, err := strconv.Atoi(tok); err == nil {
		p.pos++
		return p.parseUnit(n)
	}
	return p.parseUnit(1)
}

func (p *parser) parseUnit(n int) error {
	tok := p.next()
	u, ok := unitNames[tok]
	if !ok {
		return p.errorf("unknown interval unit %q", tok)
	}
	if n < 1 || n > unitMax[u] {
		return p.errorf("interval %d %s is out of range", n, tok)
	}

	switch u {
	case unitMinute:
		p.c.minuteStep = n
	case unitHour:
		p.c.hourStep = n
	case unitDay:
		p.c.dayStep = n
		p.c.monthDays = intersect(p.c.monthDays, stride(1, 31, n))
	case unitWeek:
		p.c.weekStep = n
		p.c.weeks = intersect(p.c.weeks, stride(1, 53, n))
	case unitMonth:
		p.c.monthStep = n
		p.c.months = intersect(p.c.months, stride(1, 12, n))
	}
	return nil
}

func (p *parser) parseOn() error {
	tok := p.peek()
	switch {
	case tok == "the":
		p.pos++
		return p.parseThe()
	case tok == "first" || tok == "last":
		return p.parseBoundary()
	case isWeekdayWord(tok):
		p.parseWeekdays()
		return nil
	case isOrdinal(tok):
		return p.parseOrdinals()
	}
	return p.errorf("expected a day after \"on\"")
}

func (p *parser) parseThe() error {
	tok := p.peek()
	switch {
	case tok == "first" || tok == "last":
		return p.parseBoundary()
	case isOrdinal(tok):
		return p.parseOrdinals()
	}
	return p.errorf("expected a day after \"the\"")
}

// parseBoundary handles "first|last day of [the] month|week".
func (p *parser) parseBoundary() error {
	which := p.next()
	if !p.accept("day") {
		return p.errorf("expected \"day\" after %q", which)
	}
	if !p.accept("of") {
		return p.errorf("expected \"of\" after \"%s day\"", which)
	}
	p.accept("the")

	switch p.next() {
	case "month":
		if which == "first" {
			p.c.monthDays = intersect(p.c.monthDays, []int{1})
		} else {
			p.c.lastDay = true
		}
	case "week":
		day := int(time.Sunday)
		if which == "last" {
			day = int(time.Saturday)
		}
		p.c.weekdays = intersect(p.c.weekdays, []int{day})
	default:
		return p.errorf("expected \"month\" or \"week\"")
	}
	return nil
}

func (p *parser) parseOrdinals() error {
	var days []int
	for {
		n, ok := ordinal(p.peek())
		if !ok {
			break
		}
		if n < 1 || n > 31 {
			return p.errorf("day of month %d is out of range", n)
		}
		p.pos++
		days = append(days, n)
		if !p.continuesList(isOrdinal) {
			break
		}
	}
	if p.accept("day") {
		if p.accept("of") {
			p.accept("the")
			if !p.accept("month") {
				return p.errorf("expected \"month\"")
			}
		}
	}
	p.c.monthDays = intersect(p.c.monthDays, days)
	return nil
}

func (p *parser) parseWeekdays() {
	var days []int
	for {
		tok := p.next()
		switch strings.TrimSuffix(tok, "s") {
		case "weekday":
			days = append(days, 1, 2, 3, 4, 5)
		case "weekend":
			days = append(days, 0, 6)
		default:
			days = append(days, int(weekday(tok)))
		}
		if !p.continuesList(isWeekdayWord) {
			break
		}
	}
	p.c.weekdays = intersect(p.c.weekdays, days)
}

func (p *parser) parseMonths() {
	var months []int
	for {
		months = append(months, int(monthNames[p.next()]))
		if !p.continuesList(isMonth) {
			break
		}
	}
	p.c.months = intersect(p.c.months, months)
}

// continuesList consumes an optional "and"/"or" when the word after it still
// belongs to the list being parsed.
func (p *parser) continuesList(member func(string) bool) bool {
	if member(p.peek()) {
		return true
	}
	if (p.peek() == "and" || p.peek() == "or") && p.pos+1 < len(p.tokens) && member(p.tokens[p.pos+1]) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseAt() error {
	first, err := p.parseTime()
	if err != nil {
		return err
	}
	if p.accept("to", "until") {
		end, err := p.parseTime()
		if err != nil {
			return err
		}
		p.c.windows = append(p.c.windows, window{start: first, end: end})
		return nil
	}

	times := []int{first}
	for p.continuesList(p.isTimeStart) {
		m, err := p.parseTime()
		if err != nil {
			return err
		}
		times = append(times, m)
	}
	p.c.times = intersect(p.c.times, times)
	return nil
}

func (p *parser) parseWindow(separator string) error {
	start, err := p.parseTime()
	if err != nil {
		return err
	}
	if !p.accept(separator) {
		return p.errorf("expected %q in time range", separator)
	}
	end, err := p.parseTime()
	if err != nil {
		return err
	}
	p.c.windows = append(p.c.windows, window{start: start, end: end})
	return nil
}

func (p *parser) isTimeStart(tok string) bool {
	if tok == "noon" || tok == "midnight" {
		return true
	}
	_, _, err := splitClock(tok)
	return err == nil
}

// parseTime reads a clock time such as "8", "8am", "8:30", "8:30 pm",
// "14:30", "noon" or "midnight" and returns minutes after midnight.
func (p *parser) parseTime() (int, error) {
	tok := p.next()
	switch tok {
	case "noon":
		return 12 * 60, nil
	case "midnight":
		return 0, nil
	case "":
		return 0, p.errorf("expected a time")
	}

	clock, meridiem, err := splitClock(tok)
	if err != nil {
		p.pos--
		return 0, p.errorf("expected a time, got %q", tok)
	}
	if meridiem == "" && (p.peek() == "am" || p.peek() == "pm") {
		meridiem = p.next()
	}

	hour, minute := clock, 0
	if strings.Contains(tok, ":") {
		hour, minute = clock/100, clock%100
	}
	if minute > 59 {
		return 0, p.errorf("invalid minute in %q", tok)
	}

	switch meridiem {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return 0, p.errorf("invalid hour in %q", tok)
		}
		hour %= 12
		if meridiem == "pm" {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, p.errorf("invalid hour in %q", tok)
		}
	}
	return hour*60 + minute, nil
}

// splitClock splits "8:30pm" into 830 and "pm", "8am" into 8 and "am",
// "14:00" into 1400. Colon-less numbers are returned as bare hours.
func splitClock(tok string) (int, string, error) {
	meridiem := ""
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(tok, suffix) {
			meridiem = suffix
			tok = strings.TrimSuffix(tok, suffix)
			break
		}
	}
	if tok == "" {
		return 0, "", fmt.Errorf("empty clock")
	}

	hourPart, minutePart, hasColon := strings.Cut(tok, ":")
	if hasColon && len(minutePart) != 2 {
		return 0, "", fmt.Errorf("minutes must be two digits")
	}
	if len(hourPart) == 0 || len(hourPart) > 2 {
		return 0, "", fmt.Errorf("bad hour")
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, "", err
	}
	if !hasColon {
		return hour, meridiem, nil
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0, "", err
	}
	return hour*100 + minute, meridiem, nil
}

func isWeekdayWord(tok string) bool {
	switch tok {
	case "weekday", "weekdays", "weekend", "weekends":
		return true
	}
	_, ok := weekdayNames[strings.TrimSuffix(tok, "s")]
	if !ok {
		_, ok = weekdayNames[tok]
	}
	return ok
}

func weekday(tok string) time.Weekday {
	if d, ok := weekdayNames[tok]; ok {
		return d
	}
	return weekdayNames[strings.TrimSuffix(tok, "s")]
}

func isMonth(tok string) bool {
	_, ok := monthNames[tok]
	return ok
}

func isOrdinal(tok string) bool {
	_, ok := ordinal(tok)
	return ok
}

// ordinal parses "1st", "2nd", "3rd", "15th" and friends.
func ordinal(tok string) (int, bool) {
	if len(tok) < 3 {
		return 0, false
	}
	suffix := tok[len(tok)-2:]
	switch suffix {
	case "st", "nd", "rd", "th":
	default:
		return 0, false
	}
	n, err := strconv.Atoi(tok[:len(tok)-2])
	if err != nil {
		return 0, false
	}
	return n, true
}

func stride(from, to, step int) []int {
	var out []int
	for v := from; v <= to; v += step {
		out = append(out, v)
	}
	return out
}

// intersect narrows an existing constraint by another. A nil current value
// means unconstrained. The result is sorted and deduplicated.
func intersect(current, next []int) []int {
	next = dedupe(next)
	if current == nil {
		return next
	}
	out := []int{}
	for _, v := range next {
		for _, c := range current {
			if v == c {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

func dedupe(vals []int) []int {
	out := make([]int, 0, len(vals))
	seen := make(map[int]bool, len(vals))
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
