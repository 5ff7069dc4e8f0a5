package ch4mod

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteChart(t *testing.T) {
	records := testRecords(t)
	records[3].Ep = math.NaN()
	records[3].E = math.NaN()
	for _, k := range ChartKinds {
		t.Run(string(k), func(t *testing.T) {
			var b bytes.Buffer
			if err := WriteChart(&b, records, k); err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(b.Bytes(), []byte("\x89PNG")) {
				t.Error("not a PNG image")
			}
		})
	}
	if err := WriteChart(&bytes.Buffer{}, records, ChartKind("rainfall")); err == nil {
		t.Error("unknown chart kind should be an error")
	}
}

func TestSaveChart(t *testing.T) {
	f := filepath.Join(t.TempDir(), "emission.png")
	if err := SaveChart(f, testRecords(t), EmissionChart); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(f); err != nil || fi.Size() == 0 {
		t.Errorf("chart file: %v", err)
	}
}
