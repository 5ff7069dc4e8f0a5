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

	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// gPerM2ToKgPerHa converts emissions from g/m² to kg/ha.
const gPerM2ToKgPerHa = 10

// Summary holds seasonal totals of a simulation.
type Summary struct {
	Days int // number of simulated days

	// NaNDays is the number of days with undefined results. Those days
	// are left out of the statistics below.
	NaNDays int

	Total, Ebullition, Plant float64 // seasonal emissions [g/m²]

	// TotalKgHa is the seasonal emission in kg/ha.
	TotalKgHa float64

	// EbullitionShare and PlantShare are the percentages of the total
	// emitted through each pathway. Both are zero if nothing is
	// emitted.
	EbullitionShare, PlantShare float64

	MeanFlux, StdDevFlux float64 // daily emission [g/m²/day]
	PeakFlux             float64 // largest daily emission [g/m²/day]
	PeakDay              int     // day of year of PeakFlux
	MinEh, MaxEh         float64 // range of redox potential [mV]
}

// Summarize computes seasonal totals of records.
func Summarize(records []Record) Summary {
	s := Summary{Days: len(records)}
	var e, ebl, ep, eh []float64
	var days []int
	for _, r := range records {
		if r.HasNaN() {
			s.NaNDays++
			continue
		}
		e = append(e, r.E)
		ebl = append(ebl, r.Ebl)
		ep = append(ep, r.Ep)
		eh = append(eh, r.Eh)
		days = append(days, r.DAT)
	}
	if len(e) == 0 {
		return s
	}
	s.Total = floats.Sum(e)
	s.Ebullition = floats.Sum(ebl)
	s.Plant = floats.Sum(ep)
	s.TotalKgHa = s.Total * gPerM2ToKgPerHa
	if s.Total > 0 {
		s.EbullitionShare = s.Ebullition / s.Total * 100
		s.PlantShare = s.Plant / s.Total * 100
	}
	s.MeanFlux = stat.Mean(e, nil)
	if len(e) > 1 {
		s.StdDevFlux = stat.StdDev(e, nil)
	}
	i := floats.MaxIdx(e)
	s.PeakFlux = e[i]
	s.PeakDay = days[i]
	s.MinEh = stats.StatsMin(eh)
	s.MaxEh = stats.StatsMax(eh)
	return s
}

func (s Summary) String() string {
	if s.Days == s.NaNDays {
		return fmt.Sprintf("%d days simulated, all results undefined", s.Days)
	}
	str := fmt.Sprintf("total emission %.4g g/m² (%.4g kg/ha); ebullition %.1f%%, plant %.1f%%; "+
		"peak %.4g g/m²/day on day %d", s.Total, s.TotalKgHa, s.EbullitionShare,
		s.PlantShare, s.PeakFlux, s.PeakDay)
	if s.NaNDays > 0 {
		str += fmt.Sprintf("; %d of %d days undefined", s.NaNDays, s.Days)
	}
	return str
}

// ValidDays returns the number of days with defined results.
func (s Summary) ValidDays() int { return s.Days - s.NaNDays }

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
