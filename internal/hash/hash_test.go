package hash

import (
	"math"
	"testing"
)

type testConfig struct {
	Days  int
	Temps []float64
	Vars  map[string]string
}

func TestKey(t *testing.T) {
	a := testConfig{Days: 3, Temps: []float64{1, 2, math.NaN()}, Vars: map[string]string{"a": "1", "b": "2"}}
	b := testConfig{Days: 3, Temps: []float64{1, 2, math.NaN()}, Vars: map[string]string{"b": "2", "a": "1"}}
	if Key(a, 1) != Key(b, 1) {
		t.Error("equal values should have equal keys")
	}
	if Key(&a) != Key(&b) {
		t.Error("pointers to equal values should have equal keys")
	}
	b.Temps[0] = 1.5
	if Key(a, 1) == Key(b, 1) {
		t.Error("different values should have different keys")
	}
	if Key(a, 1) == Key(a, 2) {
		t.Error("different seeds should have different keys")
	}
}
