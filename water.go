/*
Copyright © 2026 the CH4MOD authors.
This file is part of CH4MOD.

CH4MOD is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

CH4MOD is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with CH4MOD.  If not, see <http://www.gnu.org/licenses/>.
*/

package ch4mod

import (
	"fmt"
	"math"
)

// Regime is the physical state of the soil water on a given day.
type Regime int

// Water regimes.
const (
	Flooded        Regime = 1 // continuously flooded
	Drained        Regime = 2 // drained or intermittently irrigated
	SmoothDecrease Regime = 3 // gradual drainage toward a stable Eh
)

func (r Regime) String() string {
	switch r {
	case Flooded:
		return "flooded"
	case Drained:
		return "drained"
	case SmoothDecrease:
		return "smooth decrease"
	default:
		return fmt.Sprintf("Regime(%d)", int(r))
	}
}

// Pattern is a water management pattern: a sequence of regimes over
// the season.
type Pattern int

// Water management patterns.
const (
	// FloodDrainReflood is flooding, mid-season drainage, reflooding
	// and intermittent irrigation. It is common for single rice in
	// northern and eastern China.
	FloodDrainReflood Pattern = iota + 1

	// FloodDrainIntermittent is flooding, mid-season drainage and
	// intermittent irrigation. It is common for single and double
	// rice in southern and southwestern China.
	FloodDrainIntermittent

	// FloodIntermittent is like FloodDrainIntermittent without a
	// distinct mid-season drainage.
	FloodIntermittent

	// ContinuousFlood is used in upland and saline paddies with poor
	// drainage.
	ContinuousFlood

	// Intermittent is used in low-lying paddies where the groundwater
	// table is usually high.
	Intermittent
)

// Patterns lists all water management patterns.
var Patterns = []Pattern{FloodDrainReflood, FloodDrainIntermittent,
	FloodIntermittent, ContinuousFlood, Intermittent}

// Valid returns whether p is a known pattern.
func (p Pattern) Valid() bool {
	return p >= FloodDrainReflood && p <= Intermittent
}

func (p Pattern) String() string {
	switch p {
	case FloodDrainReflood:
		return "flood-drain-reflood-intermittent"
	case FloodDrainIntermittent:
		return "flood-drain-intermittent"
	case FloodIntermittent:
		return "flood-intermittent"
	case ContinuousFlood:
		return "flood"
	case Intermittent:
		return "intermittent"
	default:
		return fmt.Sprintf("Pattern(%d)", int(p))
	}
}

// Description returns where the pattern is typically used.
func (p Pattern) Description() string {
	switch p {
	case FloodDrainReflood:
		return "single rice in northern and eastern China"
	case FloodDrainIntermittent:
		return "single and double rice in southern and southwestern China"
	case FloodIntermittent:
		return "like pattern 2 but without a distinct mid-season drainage"
	case ContinuousFlood:
		return "upland and saline paddies with poor drainage"
	case Intermittent:
		return "low-lying paddies with a high groundwater table"
	default:
		return ""
	}
}

// Regimes returns the sequence of regimes in the pattern.
func (p Pattern) Regimes() []Regime {
	switch p {
	case FloodDrainReflood:
		return []Regime{Flooded, Drained, Flooded, SmoothDecrease, Drained}
	case FloodDrainIntermittent:
		return []Regime{Flooded, Drained, SmoothDecrease, Drained}
	case FloodIntermittent:
		return []Regime{Flooded, SmoothDecrease, Drained}
	case ContinuousFlood:
		return []Regime{Flooded, Drained}
	case Intermittent:
		return []Regime{SmoothDecrease, Drained}
	default:
		return nil
	}
}

// Segment is a run of consecutive days in the same regime.
type Segment struct {
	Regime Regime
	Days   int
}

// Schedule is the ordered list of segments covering a season.
type Schedule []Segment

// Days returns the total number of days in the schedule.
func (s Schedule) Days() int {
	var n int
	for _, seg := range s {
		n += seg.Days
	}
	return n
}

// Regime returns the regime active on the given zero-based day of the
// season, as the schedule cursor of a simulation would see it.
func (s Schedule) Regime(day int) Regime {
	c := newScheduleCursor(s)
	for i := 0; i < day; i++ {
		c.advance()
	}
	return c.Regime()
}

// Base lengths of schedule segments [days].
const (
	baseFloodDays     = 15
	calibrationDays   = 7 // extra flood days per 40 days of season
	baseMidDrainDays  = 3
	baseRefloodDays   = 10
	reservedFinalDays = 15
)

// BuildSchedule expands water management pattern p into a schedule for
// a season of totalDays days in soil with the given sand content [%].
// The segment lengths always add up to totalDays.
func BuildSchedule(p Pattern, totalDays int, sand float64) (Schedule, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("ch4mod: water pattern %d: %w", int(p), ErrInvalidPattern)
	}
	if totalDays < 1 {
		return nil, fmt.Errorf("ch4mod: %d day season: %w", totalDays, ErrInvalidDuration)
	}
	regimes := p.Regimes()
	days := make([]int, 0, len(regimes))
	used := 0
	add := func(d int) {
		d = clamp(d, 0, totalDays-used)
		days = append(days, d)
		used += d
	}
	// Python-style rounding (half to even) of the season length in
	// 40-day units.
	forties := int(math.RoundToEven(float64(totalDays) / 40))

	flood := func() { add(baseFloodDays + calibrationDays*forties) }
	midDrain := func() { add(baseMidDrainDays + int(math.Floor((1-sand/100)*10))) }
	reflood := func() { add(baseRefloodDays + 3*forties) }
	endDrain := func() { add(totalDays - used - reservedFinalDays) }
	final := func() { add(totalDays - used) }

	switch p {
	case FloodDrainReflood:
		flood()
		midDrain()
		reflood()
		endDrain()
		final()
	case FloodDrainIntermittent:
		flood()
		midDrain()
		endDrain()
		final()
	case FloodIntermittent:
		flood()
		endDrain()
		final()
	case ContinuousFlood, Intermittent:
		endDrain()
		final()
	}

	s := make(Schedule, len(regimes))
	for i, r := range regimes {
		s[i] = Segment{Regime: r, Days: days[i]}
	}
	return s, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// scheduleCursor tracks the active segment of a schedule during a
// simulation.
type scheduleCursor struct {
	schedule Schedule
	index    int // active segment
	left     int // days left in the active segment
}

func newScheduleCursor(s Schedule) scheduleCursor {
	return scheduleCursor{schedule: s, left: s[0].Days}
}

// Regime returns the active regime.
func (c *scheduleCursor) Regime() Regime {
	return c.schedule[c.index].Regime
}

// advance counts one day against the active segment and moves to the
// next segment when the count reaches zero. A segment that starts with
// zero days never reaches zero again, so it stays active for the rest
// of the season. The cursor never moves past the last segment.
func (c *scheduleCursor) advance() {
	c.left--
	if c.left == 0 && c.index < len(c.schedule)-1 {
		c.index++
		c.left = c.schedule[c.index].Days
	}
}
