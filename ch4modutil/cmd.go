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

// Package ch4modutil contains the command-line interface and HTTP API
// of the CH4MOD rice paddy methane model.
package ch4modutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/ch4mod"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to CH4MOD.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ParameterFile",
			usage: `
              ParameterFile is the path to a CSV file of simulation parameters with
              the columns GrainYield (kg/ha), VI, SoilSand (%), OMN (kg/ha), OMS (kg/ha),
              WaterRegime (1-5), StartDay, EndDay and Year. 'run' simulates the first
              row and 'batch' simulates every row. It can include environment variables.`,
			shorthand:  "p",
			defaultVal: "run.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "TemperatureFile",
			usage: `
              TemperatureFile is the path to a file with one daily mean air temperature
              (°C) per line, starting at StartDay. It can include environment variables.`,
			shorthand:  "t",
			defaultVal: "temperature.txt",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "ExtendTemperature",
			usage: `
              If ExtendTemperature is true, a temperature series shorter than the season
              is extended by repeating its last value. If false, a short series is an error.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "ScenarioFile",
			usage: `
              ScenarioFile is the path to a TOML file of [[Scenario]] tables to run instead
              of the rows of ParameterFile. It can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output file location. Files ending
              in .csv are comma separated, files ending in .xlsx are Excel workbooks
              and all others are tab separated. It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "ch4mod_output.txt",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory where batch results are written, one file per
              scenario plus a summary table. It can include environment variables.`,
			defaultVal: "ch4mod_batch",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "OutputFormat",
			usage: `
              OutputFormat is the file extension of batch output files: 'txt', 'csv'
              or 'xlsx'.`,
			defaultVal: "txt",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be saved in
              the same location as the OutputFile (or in OutputDir for batches).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies derived output columns as a map of column
              names to expressions of the model variables DAT, W, Wroot, OMN, OMS, Tsoil,
              Eh, Com, Cr, P, FEh, Ebl, Ep and E. For example, '{"EkgHa":"E * 10"}'.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "Charts",
			usage: `
              Charts lists PNG charts to create next to the OutputFile. Options are
              'emission', 'environment' and 'biomass'.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Seed",
			usage: `
              Seed seeds the random number generator used for redox potential
              during smooth-decrease water regimes. Runs with the same seed produce
              identical results.`,
			defaultVal: ch4mod.DefaultSeed,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of simulations to run at the same time. If < 1,
              one simulation per processor is run.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "Params.Q10",
			usage: `
              Params.Q10 is the temperature sensitivity of methane production.`,
			defaultVal: ch4mod.DefaultParams().Q10,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "Params.InitialEh",
			usage: `
              Params.InitialEh is the soil redox potential at the start of the season
              in mV.`,
			defaultVal: ch4mod.DefaultParams().InitialEh,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "Params.EhBase",
			usage: `
              Params.EhBase is the center of the band that redox potential settles in
              during smooth-decrease water regimes, in mV.`,
			defaultVal: ch4mod.DefaultParams().EhBase,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "Params.EhStd",
			usage: `
              Params.EhStd is the half width of the band that redox potential settles
              in during smooth-decrease water regimes, in mV.`,
			defaultVal: ch4mod.DefaultParams().EhStd,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "Address",
			usage: `
              Address is the network address the HTTP API listens on.`,
			shorthand:  "a",
			defaultVal: ":8080",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "CacheSize",
			usage: `
              CacheSize is the number of simulation results the HTTP API keeps in
              memory for repeated requests.`,
			defaultVal: 64,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CH4MOD")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(patternsCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(batchCmd)
	Root.AddCommand(serveCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("ch4mod: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "ch4mod",
	Short: "A rice paddy methane emission model.",
	Long: `CH4MOD simulates daily methane (CH4) emission from flooded rice paddies
from daily air temperature, soil sand content, organic matter inputs, a water
management pattern and the expected grain yield.
Use the subcommands specified below to access the model functionality.
Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CH4MOD_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of CH4MOD.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("CH4MOD v%s\n", ch4mod.Version)
	},
	DisableAutoGenTag: true,
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the water management patterns",
	Long: `patterns lists the water management patterns that can be used in the
WaterRegime parameter, along with the sequence of water regimes in each.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range ch4mod.Patterns {
			cmd.Printf("%d  %-34s %v\n   %s\n", int(p), p, p.Regimes(), p.Description())
		}
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a single simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run simulates one growing season using the first row of the parameter
file and the air temperature file, and writes the daily results to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars("OutputVariables", Cfg)
		if err != nil {
			return err
		}
		charts, err := checkCharts(Cfg.GetStringSlice("Charts"))
		if err != nil {
			return err
		}
		return Run(
			cmd,
			checkLogFile(os.ExpandEnv(Cfg.GetString("LogFile")), outputFile),
			outputFile,
			os.ExpandEnv(Cfg.GetString("ParameterFile")),
			os.ExpandEnv(Cfg.GetString("TemperatureFile")),
			Cfg.GetBool("ExtendTemperature"),
			outputVars,
			charts,
			ParamsConfig(Cfg),
			int64(Cfg.GetInt("Seed")),
		)
	},
	DisableAutoGenTag: true,
}

// batchCmd is a command that runs many simulations.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the model for many scenarios.",
	Long: `batch simulates every row of the parameter file, or every scenario in the
scenario file, in parallel. The daily results of each scenario and a table
of seasonal totals are written to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, err := checkOutputDir(Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		format, err := checkOutputFormat(Cfg.GetString("OutputFormat"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars("OutputVariables", Cfg)
		if err != nil {
			return err
		}
		scenarios, err := loadScenarios(
			os.ExpandEnv(Cfg.GetString("ScenarioFile")),
			os.ExpandEnv(Cfg.GetString("ParameterFile")),
			os.ExpandEnv(Cfg.GetString("TemperatureFile")),
			Cfg.GetBool("ExtendTemperature"),
			ParamsConfig(Cfg),
			int64(Cfg.GetInt("Seed")),
		)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		return Batch(
			ctx,
			cmd,
			checkLogFile(os.ExpandEnv(Cfg.GetString("LogFile")), outputDir+string(os.PathSeparator)+"batch.txt"),
			outputDir,
			format,
			scenarios,
			outputVars,
			Cfg.GetInt("Workers"),
			nil,
		)
	},
	DisableAutoGenTag: true,
}

// serveCmd is a command that starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the model over HTTP.",
	Long: `serve starts an HTTP server with the endpoints
  GET  /patterns        the water management patterns
  POST /simulate        run a simulation from a JSON request
  POST /chart/:kind     a PNG chart ('emission', 'environment' or 'biomass')
  GET  /metrics         Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := NewServer(ParamsConfig(Cfg), int64(Cfg.GetInt("Seed")), Cfg.GetInt("CacheSize"), nil)
		if err != nil {
			return err
		}
		s.Log.WithField("address", Cfg.GetString("Address")).Info("starting server")
		return s.Router().Run(Cfg.GetString("Address"))
	},
	DisableAutoGenTag: true,
}
