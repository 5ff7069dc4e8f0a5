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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	records := testRecords(t)
	c.Observe(records, time.Millisecond, nil)
	c.Observe(nil, time.Millisecond, errors.New("fail"))

	if v := testutil.ToFloat64(c.Runs.WithLabelValues("ok")); v != 1 {
		t.Errorf("ok runs: %g", v)
	}
	if v := testutil.ToFloat64(c.Runs.WithLabelValues("error")); v != 1 {
		t.Errorf("failed runs: %g", v)
	}
	if v := testutil.ToFloat64(c.SimulatedDays); v != float64(len(records)) {
		t.Errorf("simulated days: %g", v)
	}
	if n := testutil.CollectAndCount(c.RunDurations); n != 1 {
		t.Errorf("%d duration metrics", n)
	}

	// Registering again shares the existing metrics.
	c2, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	c2.Observe(records, time.Millisecond, nil)
	if v := testutil.ToFloat64(c.Runs.WithLabelValues("ok")); v != 2 {
		t.Errorf("ok runs after second registration: %g", v)
	}
}

func TestCollectorNil(t *testing.T) {
	var c *Collector
	c.Observe(nil, time.Second, nil)
}

func TestBatchMetrics(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	scenarios := testScenarios()
	Batch(context.Background(), scenarios, BatchOptions{Workers: 2, Metrics: c})
	if v := testutil.ToFloat64(c.Runs.WithLabelValues("ok")); v != float64(len(scenarios)-1) {
		t.Errorf("ok runs: %g", v)
	}
	if v := testutil.ToFloat64(c.Runs.WithLabelValues("error")); v != 1 {
		t.Errorf("failed runs: %g", v)
	}
}
