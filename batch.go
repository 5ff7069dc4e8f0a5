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
	"math/rand"
	"runtime"
	"sync"
	"time"
)

// Scenario is one configuration of a batch of simulations.
type Scenario struct {
	Name   string
	Config Config

	// Params are the model parameters. The zero value means
	// DefaultParams.
	Params Params

	// Seed seeds the random number generator of the run.
	Seed int64
}

// BatchResult holds the outcome of one Scenario.
type BatchResult struct {
	Scenario *Scenario
	Records  []Record
	Summary  Summary
	Err      error
	Elapsed  time.Duration
}

// BatchOptions configures Batch.
type BatchOptions struct {
	// Workers is the number of concurrent simulations. If < 1, one
	// worker per processor is used.
	Workers int

	// Metrics, if not nil, records every run.
	Metrics *Collector

	// Done, if not nil, receives every result as soon as it is
	// available. Batch does not close it.
	Done chan<- *BatchResult
}

// Batch runs the scenarios concurrently and returns their results in
// the same order. Each run has its own state and its own random number
// generator, so results do not depend on the number of workers.
// Scenarios that have not started when ctx is cancelled are reported
// with the context's error.
func Batch(ctx context.Context, scenarios []Scenario, opts BatchOptions) []*BatchResult {
	nprocs := opts.Workers
	if nprocs < 1 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	results := make([]*BatchResult, len(scenarios))
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < len(scenarios); ii += nprocs {
				sc := &scenarios[ii]
				r := &BatchResult{Scenario: sc}
				if err := ctx.Err(); err != nil {
					r.Err = err
				} else {
					start := time.Now()
					params := sc.Params
					if params == (Params{}) {
						params = DefaultParams()
					}
					rng := rand.New(rand.NewSource(sc.Seed))
					r.Records, r.Err = Simulate(&sc.Config, params, rng)
					r.Elapsed = time.Since(start)
					if r.Err == nil {
						r.Summary = Summarize(r.Records)
					}
					opts.Metrics.Observe(r.Records, r.Elapsed, r.Err)
				}
				results[ii] = r
				if opts.Done != nil {
					opts.Done <- r
				}
			}
		}(pp)
	}
	wg.Wait()
	return results
}
