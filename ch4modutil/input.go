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

package ch4modutil

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/ch4mod"
	"github.com/spf13/cast"
)

// ParameterRow is one row of a parameter file.
type ParameterRow struct {
	GrainYield float64 // kg/ha
	VI         float64 // rice variety index
	SoilSand   float64 // %
	OMN        float64 // easily decomposable organic matter, kg/ha
	OMS        float64 // less decomposable organic matter, kg/ha

	WaterRegime      int // water management pattern
	StartDay, EndDay int
	Year             int
}

var parameterColumns = []string{"GrainYield", "VI", "SoilSand", "OMN", "OMS",
	"WaterRegime", "StartDay", "EndDay", "Year"}

// optionalColumns may be missing from a parameter file.
var optionalColumns = map[string]bool{"VI": true, "Year": true}

// ReadParameters reads a comma separated parameter file with a header
// line. Columns may be in any order and unknown columns are ignored.
func ReadParameters(r io.Reader) ([]ParameterRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ch4mod: reading parameter file header: %v", err)
	}
	col := make(map[string]int)
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range parameterColumns {
		if _, ok := col[c]; !ok && !optionalColumns[c] {
			return nil, fmt.Errorf("ch4mod: parameter file is missing column %s", c)
		}
	}
	var rows []ParameterRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("ch4mod: reading parameter file: %v", err)
		}
		vals := make(map[string]float64, len(parameterColumns))
		for _, c := range parameterColumns {
			i, ok := col[c]
			if !ok {
				continue
			}
			v, err := cast.ToFloat64E(strings.TrimSpace(rec[i]))
			if err != nil {
				return nil, fmt.Errorf("ch4mod: parameter file line %d column %s: %v", line, c, err)
			}
			vals[c] = v
		}
		var row ParameterRow
		row.GrainYield = vals["GrainYield"]
		row.VI = vals["VI"]
		row.SoilSand = vals["SoilSand"]
		row.OMN = vals["OMN"]
		row.OMS = vals["OMS"]
		for c, dst := range map[string]*int{
			"WaterRegime": &row.WaterRegime,
			"StartDay":    &row.StartDay,
			"EndDay":      &row.EndDay,
			"Year":        &row.Year,
		} {
			v := vals[c]
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("ch4mod: parameter file line %d column %s: %g is not a whole number", line, c, v)
			}
			*dst = int(v)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ch4mod: parameter file has no rows")
	}
	return rows, nil
}

// ReadParameterFile reads the parameter file at path.
func ReadParameterFile(path string) ([]ParameterRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ch4mod: problem opening parameter file: %v", err)
	}
	defer f.Close()
	return ReadParameters(f)
}

// Config returns the simulation configuration of the row with the
// given daily air temperatures.
func (p ParameterRow) Config(airTemperature []float64) ch4mod.Config {
	return ch4mod.Config{
		StartDay:           p.StartDay,
		EndDay:             p.EndDay,
		Pattern:            ch4mod.Pattern(p.WaterRegime),
		Sand:               p.SoilSand,
		AirTemperature:     airTemperature,
		LessDecomposable:   p.OMS,
		EasilyDecomposable: p.OMN,
		GrainYield:         p.GrainYield,
	}
}

// ReadTemperatures reads one daily air temperature per line. Blank lines
// are skipped and only the first comma or whitespace separated field
// of each line is used.
func ReadTemperatures(r io.Reader) ([]float64, error) {
	var t []float64
	s := bufio.NewScanner(r)
	for line := 1; s.Scan(); line++ {
		fields := strings.FieldsFunc(s.Text(), func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})
		if len(fields) == 0 {
			continue
		}
		v, err := cast.ToFloat64E(strings.TrimPrefix(fields[0], "\ufeff"))
		if err != nil {
			return nil, fmt.Errorf("ch4mod: temperature file line %d: %v", line, err)
		}
		t = append(t, v)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("ch4mod: reading temperature file: %v", err)
	}
	return t, nil
}

// ReadTemperatureFile reads the temperature file at path.
func ReadTemperatureFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ch4mod: problem opening temperature file: %v", err)
	}
	defer f.Close()
	return ReadTemperatures(f)
}

// extendTemperatures returns t extended to n values by repeating its
// last value. t is returned unchanged if it is empty or long enough.
func extendTemperatures(t []float64, n int) []float64 {
	if len(t) == 0 || len(t) >= n {
		return t
	}
	o := make([]float64, n)
	copy(o, t)
	last := t[len(t)-1]
	for i := len(t); i < n; i++ {
		o[i] = last
	}
	return o
}

// seasonTemperatures returns the temperatures for cfg's season,
// extending them if extend is true.
func seasonTemperatures(t []float64, cfg *ch4mod.Config, extend bool) []float64 {
	if extend {
		return extendTemperatures(t, cfg.Duration())
	}
	return t
}

// scenarioFile is the layout of a TOML scenario file.
type scenarioFile struct {
	Scenario []struct {
		Name            string
		StartDay        int
		EndDay          int
		WaterRegime     int
		SoilSand        float64
		OMN             float64
		OMS             float64
		GrainYield      float64
		TemperatureFile string
		Seed            *int64
		Params          struct {
			Q10, InitialEh, EhBase, EhStd *float64
		}
	}
}

// ReadScenarioFile reads scenarios from a TOML file. Relative
// temperature file paths are relative to the scenario file; scenarios
// without one use defaultTemperatureFile. Settings a scenario does not
// specify are taken from params and seed.
func ReadScenarioFile(path, defaultTemperatureFile string, extend bool, params ch4mod.Params, seed int64) ([]ch4mod.Scenario, error) {
	var sf scenarioFile
	if _, err := toml.DecodeFile(path, &sf); err != nil {
		return nil, fmt.Errorf("ch4mod: problem reading scenario file: %v", err)
	}
	if len(sf.Scenario) == 0 {
		return nil, fmt.Errorf("ch4mod: scenario file %s has no [[Scenario]] tables", path)
	}
	temps := make(map[string][]float64)
	scenarios := make([]ch4mod.Scenario, len(sf.Scenario))
	for i, s := range sf.Scenario {
		tf := defaultTemperatureFile
		if s.TemperatureFile != "" {
			tf = os.ExpandEnv(s.TemperatureFile)
			if !filepath.IsAbs(tf) {
				tf = filepath.Join(filepath.Dir(path), tf)
			}
		}
		t, ok := temps[tf]
		if !ok {
			var err error
			if t, err = ReadTemperatureFile(tf); err != nil {
				return nil, err
			}
			temps[tf] = t
		}
		sc := ch4mod.Scenario{
			Name: s.Name,
			Config: ch4mod.Config{
				StartDay:           s.StartDay,
				EndDay:             s.EndDay,
				Pattern:            ch4mod.Pattern(s.WaterRegime),
				Sand:               s.SoilSand,
				LessDecomposable:   s.OMS,
				EasilyDecomposable: s.OMN,
				GrainYield:         s.GrainYield,
			},
			Params: params,
			Seed:   seed,
		}
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("scenario%d", i+1)
		}
		sc.Config.AirTemperature = seasonTemperatures(t, &sc.Config, extend)
		if s.Seed != nil {
			sc.Seed = *s.Seed
		}
		for _, o := range []struct {
			v   *float64
			dst *float64
		}{
			{s.Params.Q10, &sc.Params.Q10},
			{s.Params.InitialEh, &sc.Params.InitialEh},
			{s.Params.EhBase, &sc.Params.EhBase},
			{s.Params.EhStd, &sc.Params.EhStd},
		} {
			if o.v != nil {
				*o.dst = *o.v
			}
		}
		scenarios[i] = sc
	}
	return scenarios, nil
}

// loadScenarios reads the batch scenarios from scenarioFile if it is
// given, or otherwise from the rows of parameterFile.
func loadScenarios(scenarioFile, parameterFile, temperatureFile string, extend bool, params ch4mod.Params, seed int64) ([]ch4mod.Scenario, error) {
	if scenarioFile != "" {
		return ReadScenarioFile(scenarioFile, temperatureFile, extend, params, seed)
	}
	rows, err := ReadParameterFile(parameterFile)
	if err != nil {
		return nil, err
	}
	t, err := ReadTemperatureFile(temperatureFile)
	if err != nil {
		return nil, err
	}
	scenarios := make([]ch4mod.Scenario, len(rows))
	for i, row := range rows {
		sc := ch4mod.Scenario{
			Name:   fmt.Sprintf("row%d", i+1),
			Config: row.Config(nil),
			Params: params,
			Seed:   seed,
		}
		sc.Config.AirTemperature = seasonTemperatures(t, &sc.Config, extend)
		scenarios[i] = sc
	}
	return scenarios, nil
}
