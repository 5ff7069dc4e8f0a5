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

import "math"

// Decay constants of the organic matter pools [1/day].
const (
	easilyDecayRate = 0.027
	lessDecayRate   = 0.003
)

// SoilTemperature returns the soil temperature [°C] for daily mean air
// temperature air [°C].
func SoilTemperature(air float64) float64 {
	return 4.4 + 0.76*air
}

// TemperatureIndex returns the relative activity of methanogens at soil
// temperature t [°C] for temperature sensitivity q10. Activity is 1 at
// 30 °C and does not increase above that.
func TemperatureIndex(q10, t float64) float64 {
	if t >= 30 {
		t = 30
	}
	return math.Pow(q10, (t-30)/10)
}

// WaterFactor returns the effect of relative soil water content wc on
// organic matter decomposition.
func WaterFactor(wc float64) float64 {
	return 0.49 * math.Exp(3.88*wc-5.4*wc*wc)
}

// SandFactor returns the effect of soil sand content [%] on
// decomposition and root exudation.
func SandFactor(sand float64) float64 {
	return 0.325 + 0.0225*sand
}

// Decompose returns the carbon [g/m²] released in one day from an
// organic matter pool of mass pool [g/m²] with decay constant k, given
// the water, sand and temperature factors.
func Decompose(wf, sf, ti, k, pool float64) float64 {
	return wf * sf * ti * k * pool
}

// RootExudate returns the carbon [g/m²/day] exuded by roots for variety
// index vi, sand factor sf and shoot biomass w [g/m²].
func RootExudate(vi, sf, w float64) float64 {
	return 0.0018 * vi * sf * math.Pow(w, 1.25)
}

// GrossProduction returns the daily methane production [g/m²/day]
// from the redox factor feh, temperature index ti, root exudate cr and
// decomposed carbon com. It is never negative.
func GrossProduction(feh, ti, cr, com float64) float64 {
	return math.Max(0, 0.27*feh*(ti*cr+com))
}

// Ebullition returns the methane [g/m²/day] escaping through bubbles
// and diffusion out of gross production p at soil temperature tsoil
// [°C] with root biomass wroot [g/m²].
func Ebullition(p, tsoil, wroot float64) float64 {
	if wroot == 0 {
		return 0.7 * p
	}
	if tsoil > 0 {
		return math.Min(0.7*math.Log(tsoil)/wroot, 0.9) * p
	}
	return 0
}

// PlantTransportBase returns the fraction of gross production p
// available for transport through the plant once ebullition ebl has
// been removed, capped at 0.55.
func PlantTransportBase(p, ebl float64) float64 {
	if p > 0 {
		return math.Min(0.55, 1-ebl/p)
	}
	return 0.55
}

// PlantTransportEfficiency returns the fraction of gross production
// emitted through rice aerenchyma. It falls toward zero as shoot
// biomass w approaches wmax, and is NaN when wmax is zero.
func PlantTransportEfficiency(base, w, wmax float64) float64 {
	if wmax == 0 {
		return math.NaN()
	}
	return base * math.Pow(1-w/wmax, 0.25)
}
