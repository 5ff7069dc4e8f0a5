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
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/tealeg/xlsx"
)

func testRecords(t *testing.T) []Record {
	records, err := Simulate(testConfig(), DefaultParams(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestOutputterColumns(t *testing.T) {
	o, err := NewOutputter("", map[string]string{
		"EkgHa":  "E * 10",
		"Frac":   "Ep / max(E, 0.000001)",
		"Double": "EkgHa * 2",
		"LogE":   "log(exp(E))",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := append(append([]string{}, RecordFields...), "Double", "EkgHa", "Frac", "LogE")
	if diff := pretty.Diff(o.Columns(), want); len(diff) != 0 {
		t.Errorf("columns: %v", diff)
	}
	records := testRecords(t)
	results, err := o.Results(records)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range records {
		if different(results["EkgHa"][i], r.E*10, testTolerance) {
			t.Errorf("day %d: EkgHa=%g", r.DAT, results["EkgHa"][i])
		}
		if different(results["Double"][i], r.E*20, testTolerance) {
			t.Errorf("day %d: Double=%g", r.DAT, results["Double"][i])
		}
		if different(results["Frac"][i], r.Ep/r.E, testTolerance) {
			t.Errorf("day %d: Frac=%g", r.DAT, results["Frac"][i])
		}
		if different(results["LogE"][i], r.E, 1e-8) {
			t.Errorf("day %d: LogE=%g", r.DAT, results["LogE"][i])
		}
		if results["DAT"][i] != float64(r.DAT) {
			t.Errorf("day %d: DAT=%g", r.DAT, results["DAT"][i])
		}
	}
}

func TestOutputterInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"clash":     {"E": "Ebl * 2"},
		"undefined": {"X": "Foo * 2"},
		"cycle":     {"A": "B + 1", "B": "A + 1"},
		"self":      {"A": "A + 1"},
		"syntax":    {"A": "E * * 2"},
		"name":      {"A-B": "E"},
		"digit":     {"1A": "E"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewOutputter("", vars, nil); err == nil {
				t.Errorf("%v should be invalid", vars)
			}
		})
	}
}

func TestWriteTable(t *testing.T) {
	results := map[string][]float64{
		"DAT": {5, 6},
		"E":   {0.25, math.NaN()},
	}
	var b bytes.Buffer
	if err := WriteTable(&b, '\t', []string{"DAT", "E"}, results); err != nil {
		t.Fatal(err)
	}
	want := "DAT\tE\n5\t0.25\n6\tNaN\n"
	if b.String() != want {
		t.Errorf("%q != %q", b.String(), want)
	}
}

func TestOutputCSV(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "out.csv")
	o, err := NewOutputter(f, map[string]string{"EkgHa": "E * 10"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	records := testRecords(t)
	if err := o.Output(records); err != nil {
		t.Fatal(err)
	}
	r, err := os.Open(f)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	lines, err := csv.NewReader(r).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != len(records)+1 {
		t.Fatalf("%d lines", len(lines))
	}
	if strings.Join(lines[0], ",") != strings.Join(o.Columns(), ",") {
		t.Errorf("header: %v", lines[0])
	}
	if lines[1][0] != "1" || lines[len(lines)-1][0] != "10" {
		t.Errorf("days: %s, %s", lines[1][0], lines[len(lines)-1][0])
	}
}

func TestOutputTab(t *testing.T) {
	f := filepath.Join(t.TempDir(), "out.txt")
	o, err := NewOutputter(f, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Output(testRecords(t)); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(f)
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(b), "\n", 2)[0]
	if header != strings.Join(RecordFields, "\t") {
		t.Errorf("header: %q", header)
	}
}

func TestOutputXLSX(t *testing.T) {
	f := filepath.Join(t.TempDir(), "out.xlsx")
	o, err := NewOutputter(f, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	records := testRecords(t)
	if err := o.Output(records); err != nil {
		t.Fatal(err)
	}
	wb, err := xlsx.OpenFile(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(wb.Sheets) != 1 {
		t.Fatalf("%d sheets", len(wb.Sheets))
	}
	rows := wb.Sheets[0].Rows
	if len(rows) != len(records)+1 {
		t.Fatalf("%d rows", len(rows))
	}
	for i, c := range RecordFields {
		if v := rows[0].Cells[i].Value; v != c {
			t.Errorf("header %d: %s != %s", i, v, c)
		}
	}
	if v := rows[1].Cells[0].Value; v != "1" {
		t.Errorf("first day: %s", v)
	}
}

func TestRecordValue(t *testing.T) {
	r := Record{DAT: 3, E: 0.5, Ebl: 0.2}
	if v, err := r.Value("E"); err != nil || v != 0.5 {
		t.Errorf("E: %g, %v", v, err)
	}
	if v, err := r.Value("DAT"); err != nil || v != 3 {
		t.Errorf("DAT: %g, %v", v, err)
	}
	if _, err := r.Value("X"); err == nil {
		t.Error("undefined variable should be an error")
	}
	if vals := r.Values(); len(vals) != len(RecordFields) || vals["Ebl"] != 0.2 {
		t.Errorf("values: %v", vals)
	}
	if r.HasNaN() {
		t.Error("no NaN")
	}
	r.Ep = math.NaN()
	if !r.HasNaN() {
		t.Error("NaN not found")
	}
}
