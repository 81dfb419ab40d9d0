package schedule

import (
	"fmt"
	"time"
)

const defaultIntervalMinutes = 60

// DayTime is a wall-clock time of day in the reference timezone.
type DayTime struct {
	Hour   int
	Minute int
}

// AllocOptions configures one allocator run.
type AllocOptions struct {
	// IntervalMinutes is the minimum rest interval between two matches of the
	// same team, and the spacing of the slot cursor. Defaults to 60.
	IntervalMinutes int
	// StartDate anchors the run: scheduling begins at the anchor date's
	// start-of-day. Usually the event's competition start.
	StartDate time.Time
	// DayStart overrides the daily start-of-day; when nil the anchor's own
	// time-of-day (in Location) is used.
	DayStart *DayTime
	// MaxPerDay caps matches per calendar day; 0 means unbounded.
	MaxPerDay int
	// Location is the reference timezone all day boundaries are computed in;
	// nil falls back to UTC.
	Location *time.Location
}

// Assignment is a pair with its allocated start time.
type Assignment struct {
	Pair     Pair
	StartsAt time.Time
}

// LoadReferenceLocation resolves the configured reference timezone, falling
// back to a fixed offset when the host has no timezone database.
func LoadReferenceLocation(name string, fallbackOffsetMinutes int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, fallbackOffsetMinutes*60)
	}
	return loc
}

// AllocateSlots assigns a concrete timestamp to each pair in order, in a
// single greedy left-to-right pass. Per-team "earliest next available" times
// are seeded from the event's already-scheduled matches; each match is placed
// at the later of the slot cursor and both teams' availability. When the
// per-day counter reaches MaxPerDay the cursor jumps to the next calendar
// day's start-of-day. The pass never backtracks or reorders pairs. The final
// cursor position is returned alongside the assignments.
func AllocateSlots(pairs []Pair, existing []PlayedMatch, opts AllocOptions) ([]Assignment, time.Time, error) {
	if opts.StartDate.IsZero() {
		return nil, time.Time{}, fmt.Errorf("allocator requires a start date anchor")
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	interval := time.Duration(opts.IntervalMinutes) * time.Minute
	if opts.IntervalMinutes <= 0 {
		interval = defaultIntervalMinutes * time.Minute
	}

	anchor := opts.StartDate.In(loc)
	startHour, startMin := anchor.Hour(), anchor.Minute()
	if opts.DayStart != nil {
		startHour, startMin = opts.DayStart.Hour, opts.DayStart.Minute
	}
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), startHour, startMin, 0, 0, loc)
	cursor := day

	nextAvailable := make(map[int]time.Time)
	push := func(teamID int, t time.Time) {
		if cur, ok := nextAvailable[teamID]; !ok || t.After(cur) {
			nextAvailable[teamID] = t
		}
	}
	for _, m := range existing {
		push(m.HomeID, m.StartsAt.Add(interval))
		push(m.AwayID, m.StartsAt.Add(interval))
	}

	assignments := make([]Assignment, 0, len(pairs))
	scheduledToday := 0
	for _, p := range pairs {
		slot := cursor
		if t, ok := nextAvailable[p.Home.ID]; ok && t.After(slot) {
			slot = t
		}
		if t, ok := nextAvailable[p.Away.ID]; ok && t.After(slot) {
			slot = t
		}

		assignments = append(assignments, Assignment{Pair: p, StartsAt: slot})
		nextAvailable[p.Home.ID] = slot.Add(interval)
		nextAvailable[p.Away.ID] = slot.Add(interval)

		scheduledToday++
		if opts.MaxPerDay > 0 && scheduledToday >= opts.MaxPerDay {
			day = day.AddDate(0, 0, 1)
			cursor = day
			scheduledToday = 0
		} else {
			cursor = slot.Add(interval)
		}
	}
	return assignments, cursor, nil
}
