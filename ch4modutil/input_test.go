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
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/ch4mod"
)

func TestReadParameters(t *testing.T) {
	r := strings.NewReader("\ufeffWaterRegime, GrainYield,SoilSand,OMN,OMS,StartDay,EndDay,Extra\n" +
		"1,6500,30,1500,3000,160,279,x\n" +
		"4.0,5000,45.5,0,2000,170,270,y\n")
	rows, err := ReadParameters(r)
	if err != nil {
		t.Fatal(err)
	}
	want := []ParameterRow{
		{GrainYield: 6500, SoilSand: 30, OMN: 1500, OMS: 3000, WaterRegime: 1, StartDay: 160, EndDay: 279},
		{GrainYield: 5000, SoilSand: 45.5, OMN: 0, OMS: 2000, WaterRegime: 4, StartDay: 170, EndDay: 270},
	}
	if diff := pretty.Diff(rows, want); len(diff) != 0 {
		t.Errorf("rows: %v", diff)
	}
	cfg := rows[0].Config([]float64{1, 2})
	if cfg.Pattern != ch4mod.FloodDrainReflood || cfg.EasilyDecomposable != 1500 ||
		cfg.LessDecomposable != 3000 || len(cfg.AirTemperature) != 2 {
		t.Errorf("config: %+v", cfg)
	}
}

func TestReadParametersErrors(t *testing.T) {
	for name, in := range map[string]string{
		"missing column": "GrainYield,SoilSand\n1,2\n",
		"not a number":   "GrainYield,VI,SoilSand,OMN,OMS,WaterRegime,StartDay,EndDay,Year\na,1,30,1,1,1,1,10,2003\n",
		"fractional day": "GrainYield,VI,SoilSand,OMN,OMS,WaterRegime,StartDay,EndDay,Year\n1,1,30,1,1,1,1.5,10,2003\n",
		"no rows":        "GrainYield,VI,SoilSand,OMN,OMS,WaterRegime,StartDay,EndDay,Year\n",
		"empty":          "",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadParameters(strings.NewReader(in)); err == nil {
				t.Error("should be an error")
			}
		})
	}
}

func TestReadTemperatures(t *testing.T) {
	temps, err := ReadTemperatures(strings.NewReader("21.5\n\n22\t1\n-1.25,x\n"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(temps, []float64{21.5, 22, -1.25}); len(diff) != 0 {
		t.Errorf("temperatures: %v", diff)
	}
	if _, err := ReadTemperatures(strings.NewReader("21\nwarm\n")); err == nil {
		t.Error("invalid temperature should be an error")
	}
}

func TestExtendTemperatures(t *testing.T) {
	if diff := pretty.Diff(extendTemperatures([]float64{1, 2}, 4), []float64{1, 2, 2, 2}); len(diff) != 0 {
		t.Error(diff)
	}
	if diff := pretty.Diff(extendTemperatures([]float64{1, 2, 3}, 2), []float64{1, 2, 3}); len(diff) != 0 {
		t.Error(diff)
	}
	if len(extendTemperatures(nil, 3)) != 0 {
		t.Error("empty series should stay empty")
	}
}

func TestReadScenarioFile(t *testing.T) {
	params := ch4mod.DefaultParams()
	s, err := ReadScenarioFile("testdata/scenarios.toml", "testdata/temperature.txt", true, params, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 3 {
		t.Fatalf("%d scenarios", len(s))
	}
	if s[0].Name != "flood-drain-reflood" || s[0].Seed != 3 || s[0].Params != params {
		t.Errorf("scenario 0: %+v", s[0])
	}
	if s[1].Seed != 7 || s[1].Params.Q10 != 4 || s[1].Params.EhBase != -40 || s[1].Params.EhStd != params.EhStd {
		t.Errorf("scenario 1: %+v", s[1])
	}
	if s[2].Config.Pattern != ch4mod.ContinuousFlood || len(s[2].Config.AirTemperature) != 120 {
		t.Errorf("scenario 2: pattern %v, %d temperatures", s[2].Config.Pattern, len(s[2].Config.AirTemperature))
	}
	for _, sc := range s {
		if err := sc.Config.Validate(); err != nil {
			t.Errorf("%s: %v", sc.Name, err)
		}
	}
}

func TestFileNames(t *testing.T) {
	names := fileNames([]ch4mod.Scenario{{Name: "a b"}, {Name: "a/b"}, {Name: ""}, {Name: "x.1"}})
	if diff := pretty.Diff(names, []string{"a_b", "a_b_2", "scenario3", "x.1"}); len(diff) != 0 {
		t.Error(diff)
	}
}

func TestCheckOutputFormat(t *testing.T) {
	for _, f := range []string{"txt", ".CSV", "xlsx"} {
		if _, err := checkOutputFormat(f); err != nil {
			t.Error(err)
		}
	}
	if _, err := checkOutputFormat("shp"); err == nil {
		t.Error("shp should be invalid")
	}
}

func TestCheckCharts(t *testing.T) {
	k, err := checkCharts([]string{"Emission", " biomass"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(k, []ch4mod.ChartKind{ch4mod.EmissionChart, ch4mod.BiomassChart}); len(diff) != 0 {
		t.Error(diff)
	}
	if _, err := checkCharts([]string{"rainfall"}); err == nil {
		t.Error("rainfall should be invalid")
	}
}
