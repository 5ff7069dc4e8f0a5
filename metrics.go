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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds Prometheus metrics about simulation runs.
type Collector struct {
	Runs          *prometheus.CounterVec
	RunDurations  prometheus.Histogram
	SimulatedDays prometheus.Counter
	Emissions     prometheus.Histogram
}

// NewCollector registers simulation metrics with reg, defaulting to the
// global Prometheus registry when reg is nil. Registering twice on the
// same registry returns the already registered metrics.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ch4mod_runs_total",
		Help: "Total number of simulation runs, labeled by status.",
	}, []string{"status"})
	if err := reg.Register(runs); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		runs = are.ExistingCollector.(*prometheus.CounterVec)
	}
	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ch4mod_run_duration_seconds",
		Help:    "Wall time of simulation runs in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
	}))
	if err != nil {
		return nil, err
	}
	days := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ch4mod_simulated_days_total",
		Help: "Total number of simulated days.",
	})
	if err := reg.Register(days); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		days = are.ExistingCollector.(prometheus.Counter)
	}
	emis, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ch4mod_seasonal_emission_grams",
		Help:    "Seasonal methane emission of successful runs in g/m².",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}))
	if err != nil {
		return nil, err
	}
	return &Collector{
		Runs:          runs,
		RunDurations:  durations,
		SimulatedDays: days,
		Emissions:     emis,
	}, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		return are.ExistingCollector.(prometheus.Histogram), nil
	}
	return h, nil
}

// Observe records the outcome of one run. It is safe to call on a nil
// Collector.
func (c *Collector) Observe(records []Record, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	c.RunDurations.Observe(elapsed.Seconds())
	if err != nil {
		c.Runs.WithLabelValues("error").Inc()
		return
	}
	c.Runs.WithLabelValues("ok").Inc()
	c.SimulatedDays.Add(float64(len(records)))
	if s := Summarize(records); s.ValidDays() > 0 {
		c.Emissions.Observe(s.Total)
	}
}
