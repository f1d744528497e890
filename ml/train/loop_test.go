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

package train_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gomlx/scalargrad/graph"
	"github.com/gomlx/scalargrad/ml/context"
	"github.com/gomlx/scalargrad/ml/data"
	"github.com/gomlx/scalargrad/ml/train"
	"github.com/gomlx/scalargrad/ml/train/losses"
	"github.com/gomlx/scalargrad/ml/train/optimizers"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearModel predicts w*x for each input, with w the single trainable
// variable.
func linearModel(ctx *context.Context, g *graph.Graph, inputs []float64) []*graph.Node {
	w := ctx.InspectVariable("w").ValueGraph(g)
	predictions := make([]*graph.Node, len(inputs))
	for i, x := range inputs {
		predictions[i] = graph.MulScalar(w, x)
	}
	return predictions
}

func TestTrainStep(t *testing.T) {
	// One full-batch step on y=2x data, w starting at 0:
	// loss = mean((2x - w*x)^2), dloss/dw at w=0 is -2*mean(2x*x).
	inputs := []float64{1, 2}
	labels := []float64{2, 4}
	ctx := context.New()
	ctx.SetParam(optimizers.ParamLearningRate, 0.1)
	w := ctx.VariableWithValue("w", 0.0)

	trainer := train.NewTrainer(ctx, linearModel, losses.MeanSquaredError, optimizers.StochasticGradientDescent())
	loss := trainer.TrainStep(inputs, labels)
	require.InDelta(t, (4.0+16.0)/2.0, loss, 1e-12)

	wantGrad := -(2.0*1*2 + 2.0*2*4) / 2.0 // = -10
	require.InDelta(t, wantGrad, w.Gradient(), 1e-12)
	require.InDelta(t, 0.0-0.1*wantGrad, w.Value(), 1e-12)
	require.Equal(t, 1, trainer.GlobalStep())
}

func TestLoopHooks(t *testing.T) {
	ctx := context.New()
	ctx.VariableWithValue("w", 0.0)
	trainer := train.NewTrainer(ctx, linearModel, losses.MeanSquaredError, optimizers.StochasticGradientDescent())
	loop := train.NewLoop(trainer)

	var calls []string
	loop.OnStep("second", 10, func(loop *train.Loop, loss float64) error {
		calls = append(calls, "second")
		return nil
	})
	loop.OnStep("first", -10, func(loop *train.Loop, loss float64) error {
		calls = append(calls, "first")
		return nil
	})
	loop.OnStart("start", 0, func(loop *train.Loop) error {
		calls = append(calls, "start")
		return nil
	})
	loop.OnEnd("end", 0, func(loop *train.Loop, loss float64) error {
		calls = append(calls, "end")
		return nil
	})

	_, err := loop.RunEpochs([]float64{1}, []float64{1}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "first", "second", "first", "second", "end"}, calls)
	assert.Len(t, loop.Losses, 2)
	assert.Equal(t, 2, loop.Epoch)
}

func TestLoopHookError(t *testing.T) {
	ctx := context.New()
	ctx.VariableWithValue("w", 0.0)
	trainer := train.NewTrainer(ctx, linearModel, losses.MeanSquaredError, optimizers.StochasticGradientDescent())
	loop := train.NewLoop(trainer)
	loop.OnStep("fail", 0, func(loop *train.Loop, loss float64) error {
		return errors.New("hook exploded")
	})
	_, err := loop.RunEpochs([]float64{1}, []float64{1}, 10)
	require.ErrorContains(t, err, "hook exploded")
	require.ErrorContains(t, err, `OnStep(hook "fail")`)
	require.Equal(t, 1, trainer.GlobalStep()) // Aborted after the first epoch.
}

func TestLoopBadArgs(t *testing.T) {
	ctx := context.New()
	ctx.VariableWithValue("w", 0.0)
	trainer := train.NewTrainer(ctx, linearModel, losses.MeanSquaredError, optimizers.StochasticGradientDescent())
	loop := train.NewLoop(trainer)
	_, err := loop.RunEpochs([]float64{1}, []float64{1}, 0)
	require.Error(t, err)
	_, err = loop.RunEpochs([]float64{1, 2}, []float64{1}, 1)
	require.Error(t, err)
}

// TestLinearRegression is the end-to-end regression: fit y = 7x + noise
// with one parameter, full-batch gradient descent.
func TestLinearRegression(t *testing.T) {
	const (
		targetCoef   = 7.0
		noise        = 1.0
		numPoints    = 100
		numEpochs    = 100
		learningRate = 0.01
	)
	xs := data.Range(-5.0, 0.1, numPoints)
	rng := rand.New(rand.NewPCG(42, 0))
	labels := data.Linear(rng, targetCoef, 0, noise, xs)
	initialW := data.InitUniform(rng, -1, 1)

	ctx := context.New()
	ctx.SetParam(optimizers.ParamLearningRate, learningRate)
	w := ctx.VariableWithValue("w", initialW)

	trainer := train.NewTrainer(ctx, linearModel, losses.MeanSquaredError, optimizers.StochasticGradientDescent())
	loop := train.NewLoop(trainer)
	_, err := loop.RunEpochs(xs, labels, numEpochs)
	require.NoError(t, err)

	// The fitted coefficient moved towards the target...
	require.Less(t, math.Abs(w.Value()-targetCoef), math.Abs(initialW-targetCoef),
		"w moved from %g to %g, away from %g", initialW, w.Value(), targetCoef)
	// ... and got close: the noise on the estimate is O(noise/sqrt(n)).
	assert.InDelta(t, targetCoef, w.Value(), 0.2)

	// Per-epoch loss is non-increasing (tolerance for float jitter at the
	// convergence plateau).
	require.Len(t, loop.Losses, numEpochs)
	for i := 1; i < len(loop.Losses); i++ {
		require.LessOrEqual(t, loop.Losses[i], loop.Losses[i-1]+1e-9,
			"loss increased at epoch %d: %g -> %g", i, loop.Losses[i-1], loop.Losses[i])
	}
}
