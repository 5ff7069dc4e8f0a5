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

import "math/rand"

// State holds the state of a simulation. It is created by Simulate and
// modified in place, one day at a time.
type State struct {
	cfg    *Config
	params Params
	rng    *rand.Rand

	// Day is the zero-based index of the current day in the season.
	Day int

	// Done is set when the last day of the season has been simulated.
	Done bool

	// Growth parameters.
	Rate, W0, Wmax float64

	// SandFactor is the effect of soil texture on decomposition.
	SandFactor float64

	// W is the current shoot biomass [g/m²].
	W float64

	// OMN and OMS are the remaining easily and less decomposable
	// organic matter [g/m²].
	OMN, OMS float64

	// Eh is the soil redox potential [mV].
	Eh float64

	// WaterContent is the relative soil water content.
	WaterContent float64

	// Formula tracks the smooth-decrease redox formula.
	Formula FormulaState

	cursor scheduleCursor

	// Quantities computed for the current day.
	Tsoil, TI, Cr, OMNFlux, OMSFlux, Com float64
	FEh, P, Wroot, Ebl, Ep, E            float64

	// Records holds the output of the days simulated so far.
	Records []Record
}

// Regime returns the currently active water regime.
func (s *State) Regime() Regime { return s.cursor.Regime() }

// SegmentIndex returns the index of the active schedule segment and
// the number of days left in it.
func (s *State) SegmentIndex() (index, daysLeft int) {
	return s.cursor.index, s.cursor.left
}

// Schedule returns the water schedule of the run.
func (s *State) Schedule() Schedule { return s.cursor.schedule }

// Config returns the configuration of the run.
func (s *State) Config() *Config { return s.cfg }

// DayManipulator is a class of functions that operate on the simulation
// state.
type DayManipulator func(s *State) error

// Model runs a simulation as a sequence of DayManipulators.
type Model struct {
	// InitFuncs are called in the given order at the beginning of the
	// simulation.
	InitFuncs []DayManipulator

	// RunFuncs are called in the given order repeatedly until
	// State.Done is true. Therefore, the simulation will not end until
	// one of the functions sets Done to true.
	RunFuncs []DayManipulator

	// CleanupFuncs are called in the given order at the end of the
	// simulation.
	CleanupFuncs []DayManipulator

	state *State
}

// NewModel returns a model that will simulate cfg with the given
// parameters and random number generator.
func NewModel(cfg *Config, params Params, rng *rand.Rand) *Model {
	return &Model{state: &State{cfg: cfg, params: params, rng: rng}}
}

// State returns the model state.
func (m *Model) State() *State { return m.state }

// Init initializes the simulation by running m.InitFuncs.
func (m *Model) Init() error {
	for _, f := range m.InitFuncs {
		if err := f(m.state); err != nil {
			return err
		}
	}
	return nil
}

// Run carries out the simulation by running m.RunFuncs until
// State.Done is true.
func (m *Model) Run() error {
	for !m.state.Done {
		for _, f := range m.RunFuncs {
			if err := f(m.state); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running m.CleanupFuncs.
func (m *Model) Cleanup() error {
	for _, f := range m.CleanupFuncs {
		if err := f(m.state); err != nil {
			return err
		}
	}
	return nil
}
