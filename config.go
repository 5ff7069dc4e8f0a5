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
	"errors"
	"fmt"
	"math"
)

// Errors returned when a configuration cannot be simulated.
var (
	ErrInvalidPattern    = errors.New("invalid water management pattern")
	ErrInvalidDuration   = errors.New("season length must be at least one day")
	ErrInsufficientInput = errors.New("insufficient input length")
	ErrInvalidInput      = errors.New("invalid input value")
)

// Config holds the inputs of a single simulation. It is not modified
// by the simulation.
type Config struct {
	// StartDay and EndDay are the first and last simulated days of year
	// (inclusive).
	StartDay, EndDay int

	// Pattern is the water management pattern.
	Pattern Pattern

	// Sand is the soil sand content [%].
	Sand float64

	// AirTemperature holds one daily mean air temperature [°C] per
	// simulated day, starting at StartDay. Extra trailing values are
	// ignored.
	AirTemperature []float64

	// LessDecomposable and EasilyDecomposable are the organic matter
	// inputs that decompose slowly and quickly, respectively [kg/ha].
	LessDecomposable, EasilyDecomposable float64

	// GrainYield is the target grain yield [kg/ha].
	GrainYield float64
}

// Duration returns the number of simulated days.
func (c *Config) Duration() int { return c.EndDay - c.StartDay + 1 }

// Validate checks whether the configuration can be simulated. The
// returned error wraps one of ErrInvalidPattern, ErrInvalidDuration,
// ErrInsufficientInput or ErrInvalidInput.
func (c *Config) Validate() error {
	if !c.Pattern.Valid() {
		return fmt.Errorf("ch4mod: water pattern %d: %w", int(c.Pattern), ErrInvalidPattern)
	}
	if c.Duration() < 1 {
		return fmt.Errorf("ch4mod: start day %d, end day %d: %w", c.StartDay, c.EndDay, ErrInvalidDuration)
	}
	if len(c.AirTemperature) < c.Duration() {
		return fmt.Errorf("ch4mod: %d air temperatures for a %d day season: %w",
			len(c.AirTemperature), c.Duration(), ErrInsufficientInput)
	}
	if !(c.Sand >= 0 && c.Sand <= 100) {
		return fmt.Errorf("ch4mod: sand content %g%% is outside [0, 100]: %w", c.Sand, ErrInvalidInput)
	}
	vals := []float64{c.LessDecomposable, c.EasilyDecomposable, c.GrainYield}
	names := []string{"less decomposable organic matter", "easily decomposable organic matter", "grain yield"}
	for i, v := range vals {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("ch4mod: %s=%g but should be >= 0: %w", names[i], v, ErrInvalidInput)
		}
	}
	return nil
}

// Params holds the fixed coefficients of the model. The values returned
// by DefaultParams are the reference parameterization.
type Params struct {
	// Q10 is the temperature sensitivity of microbial activity.
	Q10 float64

	// InitialEh is the soil redox potential at the start of the
	// season and the value drained soil relaxes toward [mV].
	InitialEh float64

	// FloodEh is the magnitude of the redox potential that flooded
	// soil relaxes toward; the target is -FloodEh [mV].
	FloodEh float64

	// EhBase and EhStd describe the band that redox potential settles
	// in during a smooth decrease [mV].
	EhBase, EhStd float64

	// VarietyIndex scales root exudation for the rice variety.
	VarietyIndex float64

	// CompetitionIndex slows the oxidation of drained soil.
	CompetitionIndex float64

	// FloodWaterContent is the relative soil water content of flooded
	// soil.
	FloodWaterContent float64
}

// DefaultParams returns the reference parameterization.
func DefaultParams() Params {
	return Params{
		Q10:               3,
		InitialEh:         250,
		FloodEh:           250,
		EhBase:            -20,
		EhStd:             20,
		VarietyIndex:      1,
		CompetitionIndex:  0,
		FloodWaterContent: 0.636,
	}
}
