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
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lnashier/viper"
)

func TestVersion(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Cfg.Set("config", "")
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "CH4MOD v") {
		t.Errorf("version output: %q", b.String())
	}
}

func TestPatterns(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Cfg.Set("config", "")
	Root.SetArgs([]string{"patterns"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"1 ", "5 ", "SmoothDecrease"} {
		if !strings.Contains(b.String(), s) {
			t.Errorf("patterns output is missing %q: %s", s, b.String())
		}
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("CH4MOD_TEST_OUT", dir)
	defer os.Unsetenv("CH4MOD_TEST_OUT")

	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Cfg.Set("config", "testdata/configExample.toml")
	defer Cfg.Set("config", "")
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "ch4mod_output.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lines, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 111 {
		t.Errorf("%d output lines", len(lines))
	}
	header := strings.Join(lines[0], ",")
	if !strings.HasSuffix(header, ",E,EkgHa,PlantPct") {
		t.Errorf("header: %s", header)
	}
	if lines[1][0] != "160" {
		t.Errorf("first day: %s", lines[1][0])
	}
	for _, k := range []string{"emission", "biomass"} {
		if _, err := os.Stat(filepath.Join(dir, "ch4mod_output_"+k+".png")); err != nil {
			t.Errorf("%s chart: %v", k, err)
		}
	}
	logb, err := os.ReadFile(filepath.Join(dir, "ch4mod_output.log"))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"only the first is simulated", "total emission", "completed successfully"} {
		if !strings.Contains(string(logb), s) {
			t.Errorf("log is missing %q", s)
		}
	}
	if !strings.Contains(b.String(), "Day 269") {
		t.Error("command output is missing the daily log")
	}
}

func TestRunFlags(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	Root.SetOutput(&bytes.Buffer{})
	defer Root.SetOutput(nil)
	Cfg.Set("config", "")
	Root.SetArgs([]string{"run",
		"--ParameterFile=testdata/run.csv",
		"--TemperatureFile=testdata/temperature.txt",
		"--OutputFile=" + out,
		"--OutputVariables={\"EkgHa\":\"E * 10\"}",
		"--Charts=",
		"--Seed=3",
	})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(b), "\n", 2)[0]
	if !strings.HasSuffix(header, "\tE\tEkgHa") {
		t.Errorf("header: %q", header)
	}
}

func TestRunInvalidOutputVariables(t *testing.T) {
	Root.SetOutput(&bytes.Buffer{})
	defer Root.SetOutput(nil)
	Cfg.Set("config", "")
	Root.SetArgs([]string{"run",
		"--OutputFile=" + filepath.Join(t.TempDir(), "out.txt"),
		"--OutputVariables={\"X\":\"Foo * 2\"}",
	})
	if err := Root.Execute(); err == nil {
		t.Error("undefined variable should be an error")
	}
}

func TestRunMalformedOutputVariables(t *testing.T) {
	Root.SetOutput(&bytes.Buffer{})
	defer Root.SetOutput(nil)
	Cfg.Set("config", "")
	Root.SetArgs([]string{"run",
		"--OutputFile=" + filepath.Join(t.TempDir(), "out.txt"),
		"--OutputVariables={\"EkgHa\": E * 10",
	})
	err := Root.Execute()
	if err == nil || !strings.Contains(err.Error(), "OutputVariables") {
		t.Errorf("malformed JSON: %v", err)
	}
}

func TestGetStringMapString(t *testing.T) {
	cfg := viper.New()
	tests := []struct {
		name string
		v    interface{}
		want map[string]string
		err  bool
	}{
		{name: "map", v: map[string]string{"A": "E"}, want: map[string]string{"A": "E"}},
		{name: "config file", v: map[string]interface{}{"A": "E"}, want: map[string]string{"A": "E"}},
		{name: "json", v: `{"A":"E"}`, want: map[string]string{"A": "E"}},
		{name: "bad json", v: `{"A":`, err: true},
		{name: "wrong type", v: 3, err: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg.Set("vars", test.v)
			got, err := GetStringMapString("vars", cfg)
			if (err != nil) != test.err {
				t.Fatalf("error: %v", err)
			}
			if !reflect.DeepEqual(got, test.want) && !test.err {
				t.Errorf("%v != %v", got, test.want)
			}
		})
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	Root.SetOutput(&bytes.Buffer{})
	defer Root.SetOutput(nil)
	Cfg.Set("config", "")
	Root.SetArgs([]string{"batch",
		"--ParameterFile=testdata/run.csv",
		"--TemperatureFile=testdata/temperature.txt",
		"--ScenarioFile=",
		"--OutputDir=" + dir,
		"--OutputFormat=txt",
		"--OutputVariables={}",
		"--Workers=2",
	})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"row1.txt", "row2.txt", "row3.txt", SummaryFile, "batch.log"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Error(err)
		}
	}
	b, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 4 {
		t.Errorf("%d summary lines", len(lines))
	}
}

func TestBatchScenarioFile(t *testing.T) {
	dir := t.TempDir()
	Root.SetOutput(&bytes.Buffer{})
	defer Root.SetOutput(nil)
	Cfg.Set("config", "")
	Root.SetArgs([]string{"batch",
		"--TemperatureFile=testdata/temperature.txt",
		"--ScenarioFile=testdata/scenarios.toml",
		"--OutputDir=" + dir,
		"--OutputFormat=csv",
		"--OutputVariables={}",
	})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"flood-drain-reflood.csv", "intermittent_warm_soil.csv", "continuous_flood.csv"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Error(err)
		}
	}
}
