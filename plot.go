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
	"fmt"
	"image/color"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ChartKind selects the variables shown in a chart.
type ChartKind string

// Chart kinds.
const (
	EmissionChart    ChartKind = "emission"    // E, Ebl and Ep
	EnvironmentChart ChartKind = "environment" // Tsoil and Eh
	BiomassChart     ChartKind = "biomass"     // W and Wroot
)

// ChartKinds lists all chart kinds.
var ChartKinds = []ChartKind{EmissionChart, EnvironmentChart, BiomassChart}

type series struct {
	field string
	label string
	color color.Color
	dash  bool
}

func (k ChartKind) layout() (title, ylabel string, s []series, err error) {
	red := color.RGBA{R: 220, A: 255}
	blue := color.RGBA{B: 220, A: 255}
	green := color.RGBA{G: 160, A: 255}
	switch k {
	case EmissionChart:
		return "Methane emission", "CH4 flux (g/m²/day)", []series{
			{"E", "Total (E)", red, false},
			{"Ebl", "Ebullition (Ebl)", blue, true},
			{"Ep", "Plant (Ep)", green, true},
		}, nil
	case EnvironmentChart:
		return "Soil environment", "°C / mV", []series{
			{"Tsoil", "Soil temperature (°C)", color.RGBA{R: 255, G: 140, A: 255}, false},
			{"Eh", "Redox potential (mV)", color.RGBA{R: 128, B: 128, A: 255}, false},
		}, nil
	case BiomassChart:
		return "Rice biomass", "Biomass (g/m²)", []series{
			{"W", "Shoot (W)", green, false},
			{"Wroot", "Root (Wroot)", color.RGBA{R: 140, G: 70, B: 20, A: 255}, false},
		}, nil
	default:
		return "", "", nil, fmt.Errorf("ch4mod: unknown chart kind '%s'", k)
	}
}

// Plot creates a chart of records. Days with undefined values are
// left out.
func Plot(records []Record, kind ChartKind) (*plot.Plot, error) {
	title, ylabel, ss, err := kind.layout()
	if err != nil {
		return nil, err
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = title
	p.X.Label.Text = "Day of year"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	for _, s := range ss {
		xy := make(plotter.XYs, 0, len(records))
		for i := range records {
			v, err := records[i].Value(s.field)
			if err != nil {
				return nil, err
			}
			if !finite(v) {
				continue
			}
			xy = append(xy, struct{ X, Y float64 }{float64(records[i].DAT), v})
		}
		if len(xy) == 0 {
			continue
		}
		l, err := plotter.NewLine(xy)
		if err != nil {
			return nil, err
		}
		l.Color = s.color
		l.Width = vg.Points(1.5)
		if s.dash {
			l.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		}
		p.Add(l)
		p.Legend.Add(s.label, l)
	}
	p.Legend.Top = true
	return p, nil
}

// chart size
const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// WriteChart writes a PNG chart of records to w.
func WriteChart(w io.Writer, records []Record, kind ChartKind) error {
	p, err := Plot(records, kind)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveChart writes a PNG chart of records to the named file.
func SaveChart(fileName string, records []Record, kind ChartKind) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("ch4mod: creating chart file: %v", err)
	}
	if err := WriteChart(f, records, kind); err != nil {
		f.Close()
		return fmt.Errorf("ch4mod: writing %s chart: %v", kind, err)
	}
	return f.Close()
}
