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

// Record holds the results for one simulated day.
type Record struct {
	DAT   int     `desc:"Day of year" units:"day"`
	W     float64 `desc:"Shoot biomass" units:"g/m²"`
	Wroot float64 `desc:"Root biomass" units:"g/m²"`
	OMN   float64 `desc:"Remaining easily decomposable organic matter" units:"g/m²"`
	OMS   float64 `desc:"Remaining less decomposable organic matter" units:"g/m²"`
	Tsoil float64 `desc:"Soil temperature" units:"°C"`
	Eh    float64 `desc:"Soil redox potential" units:"mV"`
	Com   float64 `desc:"Carbon from organic matter decomposition" units:"g/m²/day"`
	Cr    float64 `desc:"Carbon from root exudation" units:"g/m²/day"`
	P     float64 `desc:"Gross methane production" units:"g/m²/day"`
	FEh   float64 `desc:"Redox production factor" units:"fraction"`
	Ebl   float64 `desc:"Methane ebullition and diffusion" units:"g/m²/day"`
	Ep    float64 `desc:"Plant-mediated methane emission" units:"g/m²/day"`
	E     float64 `desc:"Total methane emission" units:"g/m²/day"`
}

// RecordFields are the names of the Record columns, in output order.
var RecordFields = []string{"DAT", "W", "Wroot", "OMN", "OMS", "Tsoil",
	"Eh", "Com", "Cr", "P", "FEh", "Ebl", "Ep", "E"}

// Value returns the value of the named column.
func (r *Record) Value(name string) (float64, error) {
	switch name {
	case "DAT":
		return float64(r.DAT), nil
	case "W":
		return r.W, nil
	case "Wroot":
		return r.Wroot, nil
	case "OMN":
		return r.OMN, nil
	case "OMS":
		return r.OMS, nil
	case "Tsoil":
		return r.Tsoil, nil
	case "Eh":
		return r.Eh, nil
	case "Com":
		return r.Com, nil
	case "Cr":
		return r.Cr, nil
	case "P":
		return r.P, nil
	case "FEh":
		return r.FEh, nil
	case "Ebl":
		return r.Ebl, nil
	case "Ep":
		return r.Ep, nil
	case "E":
		return r.E, nil
	default:
		return math.NaN(), fmt.Errorf("ch4mod: undefined variable name '%s'", name)
	}
}

// Values returns the record as a map from column name to value.
func (r *Record) Values() map[string]float64 {
	o := make(map[string]float64, len(RecordFields))
	for _, f := range RecordFields {
		o[f], _ = r.Value(f)
	}
	return o
}

// HasNaN returns whether any of the record values is not a number.
func (r *Record) HasNaN() bool {
	for _, f := range RecordFields {
		if v, _ := r.Value(f); math.IsNaN(v) {
			return true
		}
	}
	return false
}
