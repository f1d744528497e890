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

// Package plots renders the training results: the dataset with the fitted
// line, and the loss per epoch.
//
// Two renderers are provided: Plotly figures written to a self-contained
// HTML page (interactive, WriteHTMLFile), and a static PNG via gonum/plot
// (WritePNGFile).
package plots

import (
	"encoding/base64"
	"encoding/json"
	"html/template"
	"io"
	"os"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	ptypes "github.com/MetalBlueberry/go-plotly/pkg/types"
	. "github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// PlotlySrc is the CDN URL of the plotly JavaScript library loaded by the
// generated HTML pages.
const PlotlySrc = "https://cdn.plot.ly/plotly-2.34.0.min.js"

// Regression holds the data to plot for one fitted model.
type Regression struct {
	// Inputs and Labels are the dataset.
	Inputs, Labels []float64

	// Predictions of the fitted model at each input.
	Predictions []float64

	// Losses per training epoch.
	Losses []float64
}

// Figures builds the Plotly figures for the regression: a scatter of the
// dataset overlaid with the fitted line, and the loss-per-epoch curve.
func (r *Regression) Figures() []*grob.Fig {
	if len(r.Inputs) != len(r.Labels) || len(r.Inputs) != len(r.Predictions) {
		Panicf("plots.Regression: inputs (%d), labels (%d) and predictions (%d) must have the same length",
			len(r.Inputs), len(r.Labels), len(r.Predictions))
	}
	fit := &grob.Fig{
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{
				Text: ptypes.S("Dataset and fitted model"),
			},
			Xaxis: &grob.LayoutXaxis{
				Showgrid: ptypes.B(true),
			},
			Yaxis: &grob.LayoutYaxis{
				Showgrid: ptypes.B(true),
			},
		},
	}
	fit.Data = append(fit.Data,
		&grob.Scatter{
			Name: ptypes.S("data"),
			Mode: "markers",
			X:    ptypes.DataArray(r.Inputs),
			Y:    ptypes.DataArray(r.Labels),
		},
		&grob.Scatter{
			Name: ptypes.S("fit"),
			Line: &grob.ScatterLine{
				Shape: grob.ScatterLineShapeLinear,
			},
			Mode: "lines",
			X:    ptypes.DataArray(r.Inputs),
			Y:    ptypes.DataArray(r.Predictions),
		})

	epochs := make([]float64, len(r.Losses))
	for i := range epochs {
		epochs[i] = float64(i)
	}
	loss := &grob.Fig{
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{
				Text: ptypes.S("Training loss"),
			},
			Xaxis: &grob.LayoutXaxis{
				Showgrid: ptypes.B(true),
			},
			Yaxis: &grob.LayoutYaxis{
				Showgrid: ptypes.B(true),
				Type:     grob.LayoutYaxisTypeLog,
			},
		},
	}
	loss.Data = append(loss.Data, &grob.Scatter{
		Name: ptypes.S("loss"),
		Line: &grob.ScatterLine{
			Shape: grob.ScatterLineShapeLinear,
		},
		Mode: "lines+markers",
		X:    ptypes.DataArray(epochs),
		Y:    ptypes.DataArray(r.Losses),
	})
	return []*grob.Fig{fit, loss}
}

var (
	singleFileHTML = `<!DOCTYPE html>
	<head>
		<meta charset="utf-8">
		<script src="{{ .CDN }}"></script>
	</head>
	<body>
{{- range $i, $f := .Figures }}
		<div id="plot{{ $i }}"></div>
		{{ if not (eq $i (lastIdx $.Figures)) }}
		<hr style="border-color: gray;">
		{{ end }}
{{- end }}
	<script>
{{- range $i, $f := .Figures }}
		data = JSON.parse(atob('{{ $f }}'))
		Plotly.newPlot('plot{{ $i }}', data);
{{- end }}
	</script>
	</body>
</html>`
	singleFileHTMLTmpl = template.Must(template.New("plotly").Funcs(template.FuncMap{
		"lastIdx": func(a []string) int { return len(a) - 1 },
	}).Parse(singleFileHTML))
)

// WriteHTML renders the Plotly figures to a self-contained HTML page.
func WriteHTML(w io.Writer, figures ...*grob.Fig) error {
	figuresAsJSON := make([]string, 0, len(figures))
	for _, fig := range figures {
		asJSON, err := json.Marshal(fig)
		if err != nil {
			return errors.Wrap(err, "failed to marshal plotly figure")
		}
		figuresAsJSON = append(figuresAsJSON, base64.StdEncoding.EncodeToString(asJSON))
	}
	data := &struct {
		CDN     string
		Figures []string
	}{
		CDN:     PlotlySrc,
		Figures: figuresAsJSON,
	}
	if err := singleFileHTMLTmpl.Execute(w, data); err != nil {
		return errors.Wrap(err, "failed to render plotly")
	}
	return nil
}

// WriteHTMLFile renders the Plotly figures to an HTML file.
func WriteHTMLFile(fileName string, figures ...*grob.Fig) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "failed to create file %q", fileName)
	}
	defer func() { _ = f.Close() }()
	return WriteHTML(f, figures...)
}
