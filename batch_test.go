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
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

func testScenarios() []Scenario {
	var s []Scenario
	for i, p := range Patterns {
		s = append(s, Scenario{
			Name:   fmt.Sprint(p),
			Config: *seasonConfig(p),
			Seed:   int64(i),
		})
	}
	bad := *testConfig()
	bad.Pattern = 9
	return append(s, Scenario{Name: "bad", Config: bad, Params: DefaultParams()})
}

func TestBatch(t *testing.T) {
	scenarios := testScenarios()
	serial := Batch(context.Background(), scenarios, BatchOptions{Workers: 1})
	done := make(chan *BatchResult, len(scenarios))
	parallel := Batch(context.Background(), scenarios, BatchOptions{Workers: 4, Done: done})
	close(done)
	if len(done) != len(scenarios) {
		t.Errorf("%d results sent for %d scenarios", len(done), len(scenarios))
	}
	for i, sc := range scenarios {
		s, p := serial[i], parallel[i]
		if s.Scenario.Name != sc.Name || p.Scenario.Name != sc.Name {
			t.Errorf("result %d is for the wrong scenario", i)
		}
		if sc.Name == "bad" {
			if !errors.Is(s.Err, ErrInvalidPattern) || !errors.Is(p.Err, ErrInvalidPattern) {
				t.Errorf("bad scenario errors: %v, %v", s.Err, p.Err)
			}
			continue
		}
		if s.Err != nil || p.Err != nil {
			t.Fatalf("%s: %v, %v", sc.Name, s.Err, p.Err)
		}
		if !reflect.DeepEqual(s.Records, p.Records) {
			t.Errorf("%s: results depend on the number of workers", sc.Name)
		}
		want, err := Simulate(&sc.Config, DefaultParams(), rand.New(rand.NewSource(sc.Seed)))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(s.Records, want) {
			t.Errorf("%s: batch results differ from Simulate", sc.Name)
		}
		if s.Summary != Summarize(want) {
			t.Errorf("%s: summary", sc.Name)
		}
	}
}

func TestBatchCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range Batch(ctx, testScenarios(), BatchOptions{}) {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s: %v", r.Scenario.Name, r.Err)
		}
	}
}
