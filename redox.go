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
	"math"
	"math/rand"
)

// FormulaState records whether the smooth-decrease redox formula still
// applies. It only ever moves from FormulaValid to FormulaInvalid.
type FormulaState int

const (
	// FormulaValid means the smooth-decrease formula drives Eh.
	FormulaValid FormulaState = iota
	// FormulaInvalid means Eh is drawn uniformly around EhBase.
	FormulaInvalid
)

func (f FormulaState) String() string {
	if f == FormulaValid {
		return "valid"
	}
	return "invalid"
}

// Rate constants of the smooth-decrease redox formula [1/day].
const (
	smoothRiseRate = 0.13
	smoothFallRate = 0.16
)

// EhDelta returns the daily change of a quantity eh relaxing toward
// target with rate constant rate, accelerated by the decomposition
// load (capped at 1).
func EhDelta(eh, target, rate, load float64) float64 {
	return (eh - target) * rate * (0.23 + math.Min(1, load))
}

// ProductionFactor returns the inhibition of methane production by soil
// redox potential eh [mV]. The factor is 1 below -150 mV and decreases
// exponentially above.
func ProductionFactor(eh float64) float64 {
	if eh < -150 {
		return 1
	}
	return math.Exp(-1.7 * (1 + eh/150))
}

// floodRate returns the rate constant of Eh decline in flooded soil for
// shoot biomass w and maximum biomass wmax.
func floodRate(w, wmax float64) float64 {
	return 0.125*math.Pow(1-w/wmax, 4) + 0.04
}

// updateFlooded advances Eh and water content for a flooded day.
func (s *State) updateFlooded(p *Params) {
	s.Eh -= EhDelta(s.Eh, -p.FloodEh, floodRate(s.W, s.Wmax), s.OMNFlux)
	s.WaterContent = p.FloodWaterContent
}

// updateDrained advances Eh and water content for a drained day.
func (s *State) updateDrained(p *Params) {
	s.Eh -= EhDelta(s.Eh, p.InitialEh, 0.098*math.Exp(-0.6*p.CompetitionIndex), 1)
	s.WaterContent -= EhDelta(s.WaterContent, 0.2, 0.1, 1)
}

// updateSmoothDecrease advances Eh and water content for a day of
// smooth decrease.
func (s *State) updateSmoothDecrease(p *Params, rng *rand.Rand) {
	s.Eh = s.smoothEh(p, floodRate(s.W, s.Wmax), rng)
	s.WaterContent = 0.45 + 0.13*(1-rng.Float64())
}

// smoothEh returns the next Eh under the smooth-decrease regime. Eh is
// pushed toward EhBase from whichever side it is on; once a step
// crosses EhBase the formula is abandoned for the rest of the run and
// Eh is drawn uniformly from [EhBase-EhStd, EhBase+EhStd].
func (s *State) smoothEh(p *Params, rate float64, rng *rand.Rand) float64 {
	base, std := p.EhBase, p.EhStd
	draw := func() float64 { return (base - std) + 2*std*rng.Float64() }
	if s.Formula == FormulaInvalid {
		return draw()
	}
	if s.Eh < base {
		eh := s.Eh - EhDelta(s.Eh, base+std, smoothRiseRate, 1)
		if eh > base {
			s.Formula = FormulaInvalid
			return draw()
		}
		return eh
	}
	eh := s.Eh - EhDelta(s.Eh, base-std, smoothFallRate, rate)
	if eh < base {
		s.Formula = FormulaInvalid
		return draw()
	}
	return eh
}
