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
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ch4mod"
	"github.com/spf13/cobra"
)

// SummaryFile is the name of the table of seasonal totals that Batch
// writes to the output directory.
const SummaryFile = "summary.txt"

// Batch runs the scenarios in parallel and writes the daily results of
// each successful scenario to OutputDir as '<name>.<OutputFormat>',
// along with a table of seasonal totals of all scenarios.
//
// Workers is the number of concurrent simulations; if < 1 one per
// processor is used. Metrics, if not nil, records every run.
//
// Batch returns an error if any scenario fails, after writing the
// results of the others.
func Batch(ctx context.Context, CobraCommand *cobra.Command, LogFile, OutputDir, OutputFormat string,
	Scenarios []ch4mod.Scenario, OutputVariables map[string]string, Workers int,
	Metrics *ch4mod.Collector) error {

	startTime := time.Now()

	logfile, err := os.Create(LogFile)
	if err != nil {
		return fmt.Errorf("ch4mod: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := newLogger(io.MultiWriter(CobraCommand.OutOrStdout(), logfile))

	log.Infof("CH4MOD v%s: running %d scenarios", ch4mod.Version, len(Scenarios))

	// Check the output variables before spending time on simulations.
	if _, err := ch4mod.NewOutputter("", OutputVariables, nil); err != nil {
		return err
	}

	done := make(chan *ch4mod.BatchResult)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		finished := 0
		for r := range done {
			finished++
			entry := log.WithFields(logrus.Fields{
				"scenario": r.Scenario.Name,
				"progress": fmt.Sprintf("%d/%d", finished, len(Scenarios)),
				"walltime": r.Elapsed,
			})
			if r.Err != nil {
				entry.WithError(r.Err).Error("scenario failed")
				continue
			}
			entry.WithField("total_g_m2", r.Summary.Total).Info("scenario finished")
		}
	}()
	results := ch4mod.Batch(ctx, Scenarios, ch4mod.BatchOptions{
		Workers: Workers,
		Metrics: Metrics,
		Done:    done,
	})
	close(done)
	wg.Wait()

	names := fileNames(Scenarios)
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		if r.Summary.NaNDays > 0 {
			log.WithField("scenario", r.Scenario.Name).Warnf("%d of %d days have undefined results",
				r.Summary.NaNDays, r.Summary.Days)
		}
		o, err := ch4mod.NewOutputter(filepath.Join(OutputDir, names[i]+"."+OutputFormat), OutputVariables, nil)
		if err != nil {
			return err
		}
		if err := o.Output(r.Records); err != nil {
			return err
		}
	}

	summaryFile := filepath.Join(OutputDir, SummaryFile)
	f, err := os.Create(summaryFile)
	if err != nil {
		return fmt.Errorf("ch4mod: problem creating summary file: %v", err)
	}
	if err := WriteSummaryTable(f, results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("wrote seasonal totals to %s", summaryFile)

	if failed > 0 {
		return fmt.Errorf("ch4mod: %d of %d scenarios failed", failed, len(Scenarios))
	}
	log.Infof("CH4MOD completed successfully in %v", time.Since(startTime))
	return nil
}

var summaryColumns = []string{"Name", "StartDay", "EndDay", "WaterRegime", "SoilSand",
	"OMN", "OMS", "GrainYield", "E", "EkgHa", "Ebl", "Ep", "EblPct", "EpPct",
	"PeakE", "PeakDay", "NaNDays", "Error"}

// WriteSummaryTable writes the seasonal totals of results to w as a tab
// separated table.
func WriteSummaryTable(w io.Writer, results []*ch4mod.BatchResult) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(summaryColumns); err != nil {
		return fmt.Errorf("ch4mod: writing summary header: %v", err)
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, r := range results {
		c := r.Scenario.Config
		s := r.Summary
		line := []string{r.Scenario.Name, strconv.Itoa(c.StartDay), strconv.Itoa(c.EndDay),
			strconv.Itoa(int(c.Pattern)), f(c.Sand), f(c.EasilyDecomposable), f(c.LessDecomposable),
			f(c.GrainYield)}
		if r.Err != nil {
			line = append(line, "", "", "", "", "", "", "", "", "", r.Err.Error())
		} else {
			line = append(line, f(s.Total), f(s.TotalKgHa), f(s.Ebullition), f(s.Plant),
				f(s.EbullitionShare), f(s.PlantShare), f(s.PeakFlux), strconv.Itoa(s.PeakDay),
				strconv.Itoa(s.NaNDays), "")
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("ch4mod: writing summary: %v", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// fileNames returns a unique file name, without extension, for each
// scenario.
func fileNames(scenarios []ch4mod.Scenario) []string {
	o := make([]string, len(scenarios))
	used := make(map[string]bool)
	for i, s := range scenarios {
		name := unsafeFileChars.ReplaceAllString(s.Name, "_")
		if name == "" || name == "." || name == ".." {
			name = fmt.Sprintf("scenario%d", i+1)
		}
		if used[name] {
			name = fmt.Sprintf("%s_%d", name, i+1)
		}
		used[name] = true
		o[i] = name
	}
	return o
}
