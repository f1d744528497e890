/*
 *	Copyright 2025 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package plots

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WritePNGFile renders the dataset and the fitted line to a static PNG
// file, for environments where opening the interactive HTML page is not
// convenient.
func (r *Regression) WritePNGFile(fileName string) error {
	p := plot.New()
	p.Title.Text = "Dataset and fitted model"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	points := make(plotter.XYs, len(r.Inputs))
	for i, x := range r.Inputs {
		points[i].X = x
		points[i].Y = r.Labels[i]
	}
	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return errors.Wrap(err, "failed to build scatter plot of the dataset")
	}

	linePoints := make(plotter.XYs, len(r.Inputs))
	for i, x := range r.Inputs {
		linePoints[i].X = x
		linePoints[i].Y = r.Predictions[i]
	}
	line, err := plotter.NewLine(linePoints)
	if err != nil {
		return errors.Wrap(err, "failed to build line plot of the fit")
	}

	p.Add(scatter, line)
	p.Legend.Add("data", scatter)
	p.Legend.Add("fit", line)
	if err := p.Save(8*vg.Inch, 6*vg.Inch, fileName); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", fileName)
	}
	return nil
}
