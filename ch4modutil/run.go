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
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ch4mod"
	"github.com/spf13/cobra"
)

// newLogger returns a logger that writes timestamped messages to w.
func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	return log
}

// Run runs the model for the first row of the parameter file.
//
// CobraCommand is the cobra.Command instance where Run is called from.
//
// LogFile is the path to the desired logfile location.
//
// OutputFile is the path to the desired output file location. The
// format depends on its extension.
//
// ParameterFile and TemperatureFile are the paths to the simulation
// parameters and the daily air temperatures. If ExtendTemperature is
// true, a temperature series shorter than the season is extended by
// repeating its last value.
//
// OutputVariables specifies derived columns to add to the output.
//
// Charts lists the charts to save next to OutputFile, as
// '<OutputFile without extension>_<kind>.png'.
//
// Params and Seed are the model parameters and the seed of the random
// number generator.
func Run(CobraCommand *cobra.Command, LogFile, OutputFile, ParameterFile, TemperatureFile string,
	ExtendTemperature bool, OutputVariables map[string]string, Charts []ch4mod.ChartKind,
	Params ch4mod.Params, Seed int64) error {

	startTime := time.Now()

	logfile, err := os.Create(LogFile)
	if err != nil {
		return fmt.Errorf("ch4mod: problem creating log file: %v", err)
	}
	defer logfile.Close()
	w := io.MultiWriter(CobraCommand.OutOrStdout(), logfile)
	log := newLogger(w)

	log.Infof("CH4MOD v%s", ch4mod.Version)

	rows, err := ReadParameterFile(ParameterFile)
	if err != nil {
		return err
	}
	if len(rows) > 1 {
		log.Warnf("parameter file %s has %d rows; only the first is simulated. Use 'ch4mod batch' to simulate all of them.",
			ParameterFile, len(rows))
	}
	t, err := ReadTemperatureFile(TemperatureFile)
	if err != nil {
		return err
	}
	cfg := rows[0].Config(nil)
	if ExtendTemperature && len(t) > 0 && len(t) < cfg.Duration() {
		log.Warnf("%d air temperatures for a %d day season; repeating the last value", len(t), cfg.Duration())
	}
	cfg.AirTemperature = seasonTemperatures(t, &cfg, ExtendTemperature)

	log.WithFields(logrus.Fields{
		"start":   cfg.StartDay,
		"end":     cfg.EndDay,
		"pattern": cfg.Pattern,
		"sand":    cfg.Sand,
		"OMN":     cfg.EasilyDecomposable,
		"OMS":     cfg.LessDecomposable,
		"yield":   cfg.GrainYield,
	}).Info("running simulation")

	o, err := ch4mod.NewOutputter(OutputFile, OutputVariables, nil)
	if err != nil {
		return err
	}

	records, err := simulate(&cfg, Params, Seed, w)
	if err != nil {
		return err
	}

	if s := ch4mod.Summarize(records); s.NaNDays > 0 {
		log.Warnf("%d of %d days have undefined results; check that GrainYield is greater than zero", s.NaNDays, s.Days)
	}

	log.Infof("writing output file %s", OutputFile)
	if err := o.Output(records); err != nil {
		return err
	}
	for _, k := range Charts {
		f := chartFile(OutputFile, k)
		log.Infof("saving %s chart to %s", k, f)
		if err := ch4mod.SaveChart(f, records, k); err != nil {
			return err
		}
	}

	logSummary(log, ch4mod.Summarize(records))
	log.Infof("CH4MOD completed successfully in %v", time.Since(startTime))
	return nil
}

// simulate runs cfg, writing daily status messages to w if it is not
// nil.
func simulate(cfg *ch4mod.Config, params ch4mod.Params, seed int64, w io.Writer) ([]ch4mod.Record, error) {
	m := ch4mod.NewModel(cfg, params, rand.New(rand.NewSource(seed)))
	m.InitFuncs = []ch4mod.DayManipulator{ch4mod.Initialize()}
	m.RunFuncs = ch4mod.DailySteps()
	if w != nil {
		m.RunFuncs = append(m.RunFuncs, ch4mod.Log(w))
	}
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

// chartFile returns the location of the chart of kind k that goes with
// outputFile.
func chartFile(outputFile string, k ch4mod.ChartKind) string {
	base := strings.TrimSuffix(outputFile, filepath.Ext(outputFile))
	return fmt.Sprintf("%s_%s.png", base, k)
}

func logSummary(log logrus.FieldLogger, s ch4mod.Summary) {
	if s.ValidDays() == 0 {
		log.Warn(s.String())
		return
	}
	log.WithFields(logrus.Fields{
		"total_g_m2":     s.Total,
		"total_kg_ha":    s.TotalKgHa,
		"ebullition_pct": s.EbullitionShare,
		"plant_pct":      s.PlantShare,
		"peak_day":       s.PeakDay,
	}).Info(s.String())
}
