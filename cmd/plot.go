package main

import (
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// plotResults draws bus voltage magnitudes: a bar per bus for a single
// point, a curve per bus against frequency for a sweep.
func plotResults(path, title string, results map[string][]float64) error {
	voltageNames, _ := phasorNames(results)

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "|V|"

	if freqs, ok := results["FREQ"]; ok {
		p.X.Label.Text = "Frequency (Hz)"
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}

		lines := make([]interface{}, 0, 2*len(voltageNames))
		for _, name := range voltageNames {
			mags := results[name+"_MAG"]
			xys := make(plotter.XYs, len(freqs))
			for i := range freqs {
				xys[i].X = freqs[i]
				xys[i].Y = mags[i]
			}
			lines = append(lines, name, xys)
		}
		if err := plotutil.AddLinePoints(p, lines...); err != nil {
			return err
		}
	} else {
		values := make(plotter.Values, len(voltageNames))
		labels := make([]string, len(voltageNames))
		for i, name := range voltageNames {
			values[i] = results[name+"_MAG"][0]
			labels[i] = strings.TrimSuffix(strings.TrimPrefix(name, "V("), ")")
		}

		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return err
		}
		p.Add(bars)
		p.NominalX(labels...)
		p.X.Label.Text = "Bus"
	}

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
