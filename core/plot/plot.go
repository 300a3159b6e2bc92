// Package plot renders log-likelihood traces of training runs.
package plot

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"hmmkit/common"
)

const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 10 * vg.Centimeter
)

// LikelihoodPlot draws one line per method, iteration on x and
// log-likelihood on y. Methods with an empty trace are skipped.
func LikelihoodPlot(traces map[common.TrainMethod][]float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Training log-likelihood"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "log P(O)"
	p.Add(plotter.NewGrid())

	methods := make([]string, 0, len(traces))
	for m := range traces {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)

	drawn := 0
	for i, m := range methods {
		trace := traces[common.TrainMethod(m)]
		if len(trace) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(trace))
		for j, ll := range trace {
			pts[j].X = float64(j + 1)
			pts[j].Y = ll
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "trace of %s", m)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(m, line)
		drawn++
	}
	if drawn == 0 {
		return nil, errors.New("no trace to plot")
	}
	p.Legend.Top = false
	p.Legend.Left = false
	return p, nil
}

func WritePlot(p *plot.Plot, width, height vg.Length, output io.Writer, format string) error {
	w, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = w.WriteTo(output)
	return err
}

func combineErrors(errs ...error) (err error) {
	for _, e := range errs {
		switch {
		case e == nil:
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}

func WriteClosePlot(p *plot.Plot, width, height vg.Length, output io.WriteCloser, format string) (err error) {
	defer func() {
		err = combineErrors(err, output.Close())
	}()
	return WritePlot(p, width, height, output, format)
}

// SavePlot writes p to path, the format taken from the file extension.
func SavePlot(p *plot.Plot, width, height vg.Length, path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
	}
	output, err := os.Create(path)
	if err != nil {
		return err
	}
	return WriteClosePlot(p, width, height, output, format)
}
