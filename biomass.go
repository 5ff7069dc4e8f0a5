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

// maxRootIterations bounds the root biomass solver.
const maxRootIterations = 10000

// rootTolerance is the convergence threshold of the root biomass
// solver [mg/m²].
const rootTolerance = 1.e-4

// ShootBiomass returns the shoot biomass [g/m²] on day t of a logistic
// growth curve with relative growth rate r, initial biomass w0 and
// maximum biomass wmax. It returns NaN if w0 is zero.
func ShootBiomass(t, r, w0, wmax float64) float64 {
	if w0 == 0 {
		return math.NaN()
	}
	b := wmax/w0 - 1
	return wmax / (1 + b*math.Exp(-r*t))
}

// RootBiomass returns the root biomass [g/m²] that accompanies shoot
// biomass w [g/m²].
func RootBiomass(w float64) float64 {
	root, _ := solveRootBiomass(w)
	return root
}

// solveRootBiomass finds the total (root + shoot) biomass T [mg/m²]
// satisfying T = 0.212·T^0.936 + W by successive substitution and
// returns the root share along with the number of iterations used.
func solveRootBiomass(w float64) (root float64, iterations int) {
	ws := w * 1000
	total := ws
	step := 1.
	for step > rootTolerance && iterations < maxRootIterations {
		step = 0.212*math.Pow(total, 0.936) + ws - total
		total += step
		iterations++
	}
	return total/1000 - w, iterations
}

// GrowthParameters returns the relative growth rate [1/day] and the
// initial shoot biomass [g/m²] for a season of the given length. Both
// are interpolated linearly from their values for a 70-day season.
func GrowthParameters(duration int) (rate, w0 float64) {
	f := float64(duration)/70 - 1
	return 0.1 - f*0.03, 20 - f*8
}

// MaxBiomass returns the maximum shoot biomass [g/m²] for grain yield
// gy [g/m²].
func MaxBiomass(gy float64) float64 {
	return 9.46 * math.Pow(gy, 0.76)
}
