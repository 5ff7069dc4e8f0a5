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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/ch4mod"
	"github.com/spf13/cast"
)

// checkOutputFile expands any environment variables in f and makes sure
// the directory it would be written to exists.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.txt"`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("ch4mod: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkOutputDir expands any environment variables in d and creates the
// directory if it doesn't exist.
func checkOutputDir(d string) (string, error) {
	if d == "" {
		return "", fmt.Errorf(`you need to specify an output directory configuration variable (for example: OutputDir="results"`)
	}
	d = os.ExpandEnv(d)
	if err := os.MkdirAll(d, os.ModePerm); err != nil {
		return d, fmt.Errorf("ch4mod: problem creating OutputDir: %v", err)
	}
	return d, nil
}

// checkOutputFormat makes sure the batch output format is one that
// can be written.
func checkOutputFormat(f string) (string, error) {
	f = strings.ToLower(strings.TrimPrefix(f, "."))
	switch f {
	case "txt", "tsv", "csv", "xlsx":
		return f, nil
	default:
		return f, fmt.Errorf("the OutputFormat variable in the configuration file "+
			"needs to be set to either txt, tsv, csv, or xlsx, but is currently set to `%s`", f)
	}
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// checkOutputVars reads the derived output variables called varName
// from cfg and makes sure they can be evaluated.
func checkOutputVars(varName string, cfg *viper.Viper) (map[string]string, error) {
	vars, err := GetStringMapString(varName, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := ch4mod.NewOutputter("", vars, nil); err != nil {
		return nil, fmt.Errorf("ch4mod: invalid %s: %v", varName, err)
	}
	return vars, nil
}

// checkCharts makes sure all requested charts exist.
func checkCharts(charts []string) ([]ch4mod.ChartKind, error) {
	o := make([]ch4mod.ChartKind, 0, len(charts))
	for _, c := range charts {
		k := ch4mod.ChartKind(strings.ToLower(strings.TrimSpace(c)))
		valid := false
		for _, kk := range ch4mod.ChartKinds {
			if k == kk {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("ch4mod: invalid chart %q; options are %v", c, ch4mod.ChartKinds)
		}
		o = append(o, k)
	}
	return o, nil
}

// ParamsConfig returns the model parameters in cfg. Parameters that
// cannot be set from the configuration keep their default values.
func ParamsConfig(cfg *viper.Viper) ch4mod.Params {
	p := ch4mod.DefaultParams()
	p.Q10 = cfg.GetFloat64("Params.Q10")
	p.InitialEh = cfg.GetFloat64("Params.InitialEh")
	p.EhBase = cfg.GetFloat64("Params.EhBase")
	p.EhStd = cfg.GetFloat64("Params.EhStd")
	return p
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if err := json.NewDecoder(strings.NewReader(v)).Decode(&o); err != nil {
			return nil, fmt.Errorf("ch4mod: %s must be a JSON object of strings, but is %q: %v", varName, v, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("ch4mod: invalid type for configuration variable %s: %#v", varName, i)
	}
}
