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
	"io"
	"math/rand"
	"time"
)

// Unit conversion of inputs from kg/ha to g/m².
const kgPerHaToGPerM2 = 0.1

// DefaultSeed seeds the random number generator when Simulate is not
// given one.
const DefaultSeed = 1

// Simulate runs a simulation of cfg with the given parameters and
// returns one record per simulated day. rng supplies the random draws
// of the smooth-decrease water regime; runs with identically seeded
// generators produce identical results. If rng is nil, a generator
// seeded with DefaultSeed is used.
func Simulate(cfg *Config, params Params, rng *rand.Rand) ([]Record, error) {
	m := NewModel(cfg, params, rng)
	m.InitFuncs = []DayManipulator{Initialize()}
	m.RunFuncs = DailySteps()
	if err := m.Init(); err != nil {
		return nil, err
	}
	if err := m.Run(); err != nil {
		return nil, err
	}
	if err := m.Cleanup(); err != nil {
		return nil, err
	}
	return m.State().Records, nil
}

// DailySteps returns the calculations that advance the simulation by
// one day, in the order they must run.
func DailySteps() []DayManipulator {
	return []DayManipulator{
		Temperature(),
		Growth(),
		Decomposition(),
		Redox(),
		AdvanceSchedule(),
		Production(),
		Transport(),
		AppendRecord(),
	}
}

// Initialize validates the configuration, builds the water schedule and
// sets the state for the first day.
func Initialize() DayManipulator {
	return func(s *State) error {
		cfg := s.cfg
		if cfg == nil {
			return fmt.Errorf("ch4mod: no configuration")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if s.rng == nil {
			s.rng = rand.New(rand.NewSource(DefaultSeed))
		}
		dur := cfg.Duration()
		sched, err := BuildSchedule(cfg.Pattern, dur, cfg.Sand)
		if err != nil {
			return err
		}
		s.cursor = newScheduleCursor(sched)
		s.Rate, s.W0 = GrowthParameters(dur)
		s.Wmax = MaxBiomass(cfg.GrainYield * kgPerHaToGPerM2)
		s.SandFactor = SandFactor(cfg.Sand)
		s.OMN = cfg.EasilyDecomposable * kgPerHaToGPerM2
		s.OMS = cfg.LessDecomposable * kgPerHaToGPerM2
		s.Eh = s.params.InitialEh
		s.WaterContent = s.params.FloodWaterContent
		s.Formula = FormulaValid
		s.Day = 0
		s.Done = false
		s.Records = make([]Record, 0, dur)
		return nil
	}
}

// Temperature sets the soil temperature and the temperature index for
// the current day.
func Temperature() DayManipulator {
	return func(s *State) error {
		s.Tsoil = SoilTemperature(s.cfg.AirTemperature[s.Day])
		s.TI = TemperatureIndex(s.params.Q10, s.Tsoil)
		return nil
	}
}

// Growth sets shoot biomass and root exudation for the current day.
func Growth() DayManipulator {
	return func(s *State) error {
		s.W = ShootBiomass(float64(s.Day+1), s.Rate, s.W0, s.Wmax)
		s.Cr = RootExudate(s.params.VarietyIndex, s.SandFactor, s.W)
		return nil
	}
}

// Decomposition removes the day's decomposition from the organic
// matter pools.
func Decomposition() DayManipulator {
	return func(s *State) error {
		wf := WaterFactor(s.WaterContent)
		s.OMNFlux = Decompose(wf, s.SandFactor, s.TI, easilyDecayRate, s.OMN)
		s.OMSFlux = Decompose(wf, s.SandFactor, s.TI, lessDecayRate, s.OMS)
		s.OMN -= s.OMNFlux
		s.OMS -= s.OMSFlux
		s.Com = s.OMNFlux + s.OMSFlux
		return nil
	}
}

// Redox updates soil redox potential and water content according to
// the active water regime.
func Redox() DayManipulator {
	return func(s *State) error {
		switch r := s.Regime(); r {
		case Flooded:
			s.updateFlooded(&s.params)
		case Drained:
			s.updateDrained(&s.params)
		case SmoothDecrease:
			s.updateSmoothDecrease(&s.params, s.rng)
		default:
			return fmt.Errorf("ch4mod: day %d: unknown water regime %d", s.Day, int(r))
		}
		return nil
	}
}

// AdvanceSchedule counts the current day against the active water
// regime segment.
func AdvanceSchedule() DayManipulator {
	return func(s *State) error {
		s.cursor.advance()
		return nil
	}
}

// Production sets the redox factor and gross methane production.
func Production() DayManipulator {
	return func(s *State) error {
		s.FEh = ProductionFactor(s.Eh)
		s.P = GrossProduction(s.FEh, s.TI, s.Cr, s.Com)
		return nil
	}
}

// Transport splits gross production into ebullition and plant-mediated
// emission.
func Transport() DayManipulator {
	return func(s *State) error {
		s.Wroot = RootBiomass(s.W)
		s.Ebl = Ebullition(s.P, s.Tsoil, s.Wroot)
		eff := PlantTransportEfficiency(PlantTransportBase(s.P, s.Ebl), s.W, s.Wmax)
		s.Ep = s.P * eff
		s.E = s.Ebl + s.Ep
		return nil
	}
}

// AppendRecord stores the current day's results and moves to the next
// day, setting Done after the last day of the season.
func AppendRecord() DayManipulator {
	return func(s *State) error {
		s.Records = append(s.Records, Record{
			DAT:   s.cfg.StartDay + s.Day,
			W:     s.W,
			Wroot: s.Wroot,
			OMN:   s.OMN,
			OMS:   s.OMS,
			Tsoil: s.Tsoil,
			Eh:    s.Eh,
			Com:   s.Com,
			Cr:    s.Cr,
			P:     s.P,
			FEh:   s.FEh,
			Ebl:   s.Ebl,
			Ep:    s.Ep,
			E:     s.E,
		})
		s.Day++
		if s.Day >= s.cfg.Duration() {
			s.Done = true
		}
		return nil
	}
}

// Log writes a status message for the most recently recorded day to w.
// It should run after AppendRecord.
func Log(w io.Writer) DayManipulator {
	startTime := time.Now()
	return func(s *State) error {
		if len(s.Records) == 0 {
			return nil
		}
		r := s.Records[len(s.Records)-1]
		fmt.Fprintf(w, "Day %-4d  next regime=%-15s  Eh=%7.2fmV  E=%8.4fg/m²  walltime=%6.3gs\n",
			r.DAT, s.Regime(), r.Eh, r.E, time.Since(startTime).Seconds())
		return nil
	}
}

// DayStatus reports the outcome of one simulated day.
type DayStatus struct {
	DAT    int     // day of year
	Regime Regime  // water regime of the next day
	E      float64 // total emission [g/m²/day]
}

// Progress sends the status of the most recently recorded day to c.
// It should run after AppendRecord.
func Progress(c chan<- DayStatus) DayManipulator {
	return func(s *State) error {
		if len(s.Records) == 0 {
			return nil
		}
		r := s.Records[len(s.Records)-1]
		c <- DayStatus{DAT: r.DAT, Regime: s.Regime(), E: r.E}
		return nil
	}
}
