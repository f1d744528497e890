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

// Package commandline attaches command-line UI to a training loop: a
// progress bar over the epochs and a table of stats printed at the end.
package commandline

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/scalargrad/ml/context"
	"github.com/gomlx/scalargrad/ml/train"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
)

// ExtraMetricFn is any function that will give extra values to display in
// the final stats table. It returns a name and the current value.
type ExtraMetricFn func() (name, value string)

// ProgressBarName is the name the hooks are registered under.
const ProgressBarName = "scalargrad.ui.commandline.progressBar"

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version, if the
// graphical symbols are supported by your terminal.
var ProgressbarStyle = progressbar.ThemeASCII

var (
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
	tableBorderColor  = "#705090"
)

// progressBar holds a progressbar being displayed.
type progressBar struct {
	numEpochs      int
	bar            *progressbar.ProgressBar
	startTime      time.Time
	termenv        *termenv.Output
	statsStyle     lipgloss.Style
	statsTable     *lgtable.Table
	extraMetricFns []ExtraMetricFn
}

// AttachProgressBar creates a command-line progress bar and attaches it to
// the Loop: every epoch advances the bar and updates the latest loss;
// when the run finishes, a table with the final loss and every model
// variable is printed.
//
// Optionally, one can provide extraMetrics: functions called at the end of
// the run whose name/value pairs are appended to the stats table.
func AttachProgressBar(loop *train.Loop, extraMetrics ...ExtraMetricFn) {
	pBar := &progressBar{
		extraMetricFns: extraMetrics,
		termenv:        termenv.NewOutput(os.Stdout),
		statsStyle:     lipgloss.NewStyle().PaddingLeft(8),
	}
	pBar.statsTable = lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return rightAlignedStyle
			}
			return normalStyle
		})
	loop.OnStart(ProgressBarName, 0, pBar.onStart)
	loop.OnStep(ProgressBarName, 0, pBar.onStep)
	loop.OnEnd(ProgressBarName, 0, pBar.onEnd)
}

func (pBar *progressBar) onStart(loop *train.Loop) error {
	pBar.numEpochs = loop.EndEpoch - loop.StartEpoch
	pBar.startTime = time.Now()
	pBar.termenv.HideCursor()
	pBar.bar = progressbar.NewOptions(pBar.numEpochs,
		progressbar.OptionSetDescription("Training:"),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("epochs"),
		progressbar.OptionSetTheme(ProgressbarStyle),
	)
	return nil
}

func (pBar *progressBar) onStep(loop *train.Loop, loss float64) error {
	pBar.bar.Describe(fmt.Sprintf("Training epoch %s of %s (loss=%.6g):",
		humanize.Comma(int64(loop.Epoch+1)), humanize.Comma(int64(loop.EndEpoch)), loss))
	return pBar.bar.Add(1)
}

func (pBar *progressBar) onEnd(loop *train.Loop, loss float64) error {
	_ = pBar.bar.Finish()
	pBar.termenv.ShowCursor()
	fmt.Println()

	pBar.statsTable.Data(lgtable.NewStringData())
	pBar.statsTable.Row("Epochs", humanize.Comma(int64(loop.Epoch)))
	pBar.statsTable.Row("Training time", FormatDuration(time.Since(pBar.startTime)))
	pBar.statsTable.Row("Final loss", fmt.Sprintf("%.6g", loss))
	loop.Trainer.Context().EnumerateVariables(func(v *context.Variable) {
		pBar.statsTable.Row(v.Name(), fmt.Sprintf("%.6g", v.Value()))
	})
	for _, extraMetric := range pBar.extraMetricFns {
		name, value := extraMetric()
		pBar.statsTable.Row(name, value)
	}
	fmt.Println(pBar.statsStyle.Render(pBar.statsTable.String()))
	return nil
}
