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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/tealeg/xlsx"
)

// Outputter writes simulation results to a file. In addition to the
// Record columns, it can write derived columns defined by expressions
// in outputVariables, for example:
//
//	EkgHa = "E * 10"
//	PlantFrac = "Ep / max(E, 0.000001)"
//
// Expressions may refer to Record columns and to other derived columns.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	order           []string // derived columns in evaluation order
	expressions     map[string]*govaluate.EvaluableExpression
	outputFunctions map[string]govaluate.ExpressionFunction
}

// NewOutputter initializes a new Outputter and adds a set of default
// output functions:
//
// 'exp(x)' and 'log(x)' apply the exponential and natural logarithm.
//
// 'max(x, y)' and 'min(x, y)' return the larger and smaller argument.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": unaryFunc("exp", math.Exp),
		"log": unaryFunc("log", math.Log),
		"max": binaryFunc("max", math.Max),
		"min": binaryFunc("min", math.Min),
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}
	o := &Outputter{
		fileName:        fileName,
		outputVariables: make(map[string]string, len(outputVariables)),
		expressions:     make(map[string]*govaluate.EvaluableExpression),
		outputFunctions: defaultOutputFuncs,
	}
	for k, v := range outputVariables {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o.outputVariables[k] = v
	}
	if err := o.checkOutputVars(); err != nil {
		return nil, err
	}
	return o, nil
}

func unaryFunc(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("ch4mod: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("ch4mod: function '%s' needs a numeric argument", name)
		}
		return f(x), nil
	}
}

func binaryFunc(name string, f func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("ch4mod: got %d arguments for function '%s', but needs 2", len(args), name)
		}
		x, ok1 := args[0].(float64)
		y, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("ch4mod: function '%s' needs numeric arguments", name)
		}
		return f(x, y), nil
	}
}

// checkOutputVars parses the output expressions, checks that every
// variable they use is defined, and orders the derived columns so that
// each is evaluated after the columns it depends on.
func (o *Outputter) checkOutputVars() error {
	isField := make(map[string]bool, len(RecordFields))
	for _, f := range RecordFields {
		isField[f] = true
	}
	deps := make(map[string][]string)
	names := make([]string, 0, len(o.outputVariables))
	for name, expr := range o.outputVariables {
		if isField[name] {
			return fmt.Errorf("ch4mod: output variable '%s' has the same name as a model variable", name)
		}
		if err := checkOutputName(name); err != nil {
			return err
		}
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, o.outputFunctions)
		if err != nil {
			return fmt.Errorf("ch4mod: output variable '%s': %v", name, err)
		}
		o.expressions[name] = e
		for _, v := range removeDuplicates(e.Vars()) {
			if isField[v] {
				continue
			}
			if _, ok := o.outputVariables[v]; !ok {
				return fmt.Errorf("ch4mod: output variable '%s': undefined variable name '%s'", name, v)
			}
			deps[name] = append(deps[name], v)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// Depth-first topological sort.
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(names))
	var visit func(n string) error
	visit = func(n string) error {
		switch state[n] {
		case visiting:
			return fmt.Errorf("ch4mod: output variable '%s' depends on itself", n)
		case visited:
			return nil
		}
		state[n] = visiting
		for _, d := range deps[n] {
			if err := visit(d); err != nil {
				return err
			}
		}
		state[n] = visited
		o.order = append(o.order, n)
		return nil
	}
	for _, n := range names {
		if err := visit(n); err != nil {
			return err
		}
	}
	return nil
}

// checkOutputName checks that an output variable name can be used as a
// column header and in other expressions.
func checkOutputName(name string) error {
	if name == "" {
		return fmt.Errorf("ch4mod: empty output variable name")
	}
	for i, c := range name {
		letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		digit := c >= '0' && c <= '9'
		if !letter && !(digit && i > 0) {
			return fmt.Errorf("ch4mod: output variable name '%s' includes unsupported characters", name)
		}
	}
	return nil
}

// removeDuplicates returns the unique strings in s, in order.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]bool)
	for _, val := range s {
		if !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}
	return result
}

// Columns returns the names of the output columns: the Record columns
// followed by the derived columns in alphabetical order.
func (o *Outputter) Columns() []string {
	derived := make([]string, 0, len(o.order))
	derived = append(derived, o.order...)
	sort.Strings(derived)
	return append(append([]string{}, RecordFields...), derived...)
}

// Results returns the output columns for the given records, keyed by
// column name.
func (o *Outputter) Results(records []Record) (map[string][]float64, error) {
	out := make(map[string][]float64)
	for _, c := range o.Columns() {
		out[c] = make([]float64, len(records))
	}
	params := make(map[string]interface{}, len(RecordFields)+len(o.order))
	for i := range records {
		r := &records[i]
		for _, f := range RecordFields {
			v, _ := r.Value(f)
			params[f] = v
			out[f][i] = v
		}
		for _, name := range o.order {
			result, err := o.expressions[name].Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("ch4mod: evaluating output variable '%s' for day %d: %v", name, r.DAT, err)
			}
			v, ok := result.(float64)
			if !ok {
				return nil, fmt.Errorf("ch4mod: output variable '%s' is not numeric", name)
			}
			params[name] = v
			out[name][i] = v
		}
	}
	return out, nil
}

// Output writes records to the output file. The format is chosen by
// the file extension: ".csv" is comma separated, ".xlsx" is an Excel
// workbook, and anything else is tab separated.
func (o *Outputter) Output(records []Record) error {
	results, err := o.Results(records)
	if err != nil {
		return err
	}
	cols := o.Columns()
	switch strings.ToLower(filepath.Ext(o.fileName)) {
	case ".xlsx":
		return writeXLSX(o.fileName, cols, results)
	case ".csv":
		return o.writeDelimited(',', cols, results)
	default:
		return o.writeDelimited('\t', cols, results)
	}
}

func (o *Outputter) writeDelimited(comma rune, cols []string, results map[string][]float64) error {
	f, err := os.Create(o.fileName)
	if err != nil {
		return fmt.Errorf("ch4mod: creating output file: %v", err)
	}
	if err := WriteTable(f, comma, cols, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTable writes the given columns of results to w as delimited
// text with a header line.
func WriteTable(w io.Writer, comma rune, cols []string, results map[string][]float64) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("ch4mod: writing output header: %v", err)
	}
	n := 0
	if len(cols) > 0 {
		n = len(results[cols[0]])
	}
	line := make([]string, len(cols))
	for i := 0; i < n; i++ {
		for j, c := range cols {
			line[j] = formatValue(c, results[c][i])
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("ch4mod: writing output: %v", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(col string, v float64) string {
	if col == "DAT" {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeXLSX(fileName string, cols []string, results map[string][]float64) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("CH4MOD")
	if err != nil {
		return fmt.Errorf("ch4mod: creating xlsx sheet: %v", err)
	}
	header := sheet.AddRow()
	for _, c := range cols {
		header.AddCell().SetString(c)
	}
	n := 0
	if len(cols) > 0 {
		n = len(results[cols[0]])
	}
	for i := 0; i < n; i++ {
		row := sheet.AddRow()
		for _, c := range cols {
			cell := row.AddCell()
			v := results[c][i]
			switch {
			case c == "DAT":
				cell.SetInt(int(v))
			case math.IsNaN(v):
				cell.SetString("NaN")
			default:
				cell.SetFloat(v)
			}
		}
	}
	if err := f.Save(fileName); err != nil {
		return fmt.Errorf("ch4mod: writing xlsx output: %v", err)
	}
	return nil
}
