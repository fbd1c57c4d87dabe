package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// Calendar fixes the day and slot axes of every grid built from it. Slots are
// ordered "start-end" clock ranges; the base slot length in minutes is derived
// from the first slot and applied when multi-slot durations are expanded.
type Calendar struct {
	days      []string
	slots     []string
	daySet    map[string]struct{}
	slotIndex map[string]int
	spans     []slotSpan
}

type slotSpan struct {
	start int
	end   int
}

// DefaultDays is the teaching week used when no day set is configured.
var DefaultDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DefaultSlots is the daily period layout used when no slot set is configured.
var DefaultSlots = []string{
	"7:00-7:55",
	"8:00-8:55",
	"9:00-9:55",
	"10:00-10:55",
	"11:00-11:55",
	"12:00-12:55",
	"14:00-14:55",
	"15:00-15:55",
	"16:00-16:55",
}

// NewCalendar validates and builds a calendar from explicit day and slot sets.
func NewCalendar(days, slots []string) (*Calendar, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("calendar requires at least one day")
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("calendar requires at least one slot")
	}

	cal := &Calendar{
		days:      append([]string(nil), days...),
		slots:     append([]string(nil), slots...),
		daySet:    make(map[string]struct{}, len(days)),
		slotIndex: make(map[string]int, len(slots)),
		spans:     make([]slotSpan, len(slots)),
	}
	for _, day := range days {
		if _, dup := cal.daySet[day]; dup {
			return nil, fmt.Errorf("duplicate day %q", day)
		}
		cal.daySet[day] = struct{}{}
	}
	for i, slot := range slots {
		if _, dup := cal.slotIndex[slot]; dup {
			return nil, fmt.Errorf("duplicate slot %q", slot)
		}
		start, end, err := ParseSlotRange(slot)
		if err != nil {
			return nil, err
		}
		cal.slotIndex[slot] = i
		cal.spans[i] = slotSpan{start: start, end: end}
	}
	return cal, nil
}

// DefaultCalendar returns the standard six-day, nine-period calendar.
func DefaultCalendar() *Calendar {
	cal, err := NewCalendar(DefaultDays, DefaultSlots)
	if err != nil {
		panic(err) // defaults are statically valid
	}
	return cal
}

// Days returns the ordered day set.
func (c *Calendar) Days() []string {
	return append([]string(nil), c.days...)
}

// Slots returns the ordered slot set.
func (c *Calendar) Slots() []string {
	return append([]string(nil), c.slots...)
}

// HasDay reports whether day belongs to the fixed day set.
func (c *Calendar) HasDay(day string) bool {
	_, ok := c.daySet[day]
	return ok
}

// HasCell reports whether (day, slot) is a valid grid cell.
func (c *Calendar) HasCell(day, slot string) bool {
	if !c.HasDay(day) {
		return false
	}
	_, ok := c.slotIndex[slot]
	return ok
}

// SlotIndex returns the position of slot within the ordered slot set.
func (c *Calendar) SlotIndex(slot string) (int, bool) {
	i, ok := c.slotIndex[slot]
	return i, ok
}

// SlotAt returns the slot identifier at position i.
func (c *Calendar) SlotAt(i int) (string, bool) {
	if i < 0 || i >= len(c.slots) {
		return "", false
	}
	return c.slots[i], true
}

// PrevSlot returns the slot immediately before slot in the fixed order.
func (c *Calendar) PrevSlot(slot string) (string, bool) {
	i, ok := c.slotIndex[slot]
	if !ok || i == 0 {
		return "", false
	}
	return c.slots[i-1], true
}

// NextSlot returns the slot immediately after slot in the fixed order.
func (c *Calendar) NextSlot(slot string) (string, bool) {
	i, ok := c.slotIndex[slot]
	if !ok || i == len(c.slots)-1 {
		return "", false
	}
	return c.slots[i+1], true
}

// SlotMinutes returns the parsed start/end minute range for slot.
func (c *Calendar) SlotMinutes(slot string) (start, end int, ok bool) {
	i, found := c.slotIndex[slot]
	if !found {
		return 0, 0, false
	}
	return c.spans[i].start, c.spans[i].end, true
}

// OccupiedMinutes extends a slot's minute range by a course duration expressed
// as a multiple of the base slot length. Spans past the last slot of the day
// are not truncated; see the index package documentation for the open boundary
// question.
func (c *Calendar) OccupiedMinutes(slot string, duration int) (start, end int, ok bool) {
	start, slotEnd, ok := c.SlotMinutes(slot)
	if !ok {
		return 0, 0, false
	}
	if duration < 1 {
		duration = 1
	}
	return start, start + duration*(slotEnd-start), true
}

// ParseSlotRange parses a "H:MM-H:MM" slot identifier into start and end
// minutes since midnight.
func ParseSlotRange(slot string) (start, end int, err error) {
	parts := strings.SplitN(strings.TrimSpace(slot), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("slot %q is not a start-end range", slot)
	}
	start, err = parseClock(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("slot %q: %w", slot, err)
	}
	end, err = parseClock(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("slot %q: %w", slot, err)
	}
	if end <= start {
		return 0, 0, fmt.Errorf("slot %q ends before it starts", slot)
	}
	return start, end, nil
}

func parseClock(raw string) (int, error) {
	pieces := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(pieces) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hours, err := strconv.Atoi(pieces[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minutes, err := strconv.Atoi(pieces[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hours*60 + minutes, nil
}
