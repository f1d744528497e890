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

// Package train implements gradient-descent training on top of the scalar
// autodiff engine: a Trainer that executes one step, and a Loop that runs
// epochs with attachable hooks (progress bars, plotting, early stopping).
//
// The engine itself exposes no training abstraction; everything here is a
// consumer of the graph package's Const/Add/Mul/Backward API.
package train

import (
	"github.com/gomlx/scalargrad/graph"
	"github.com/gomlx/scalargrad/ml/context"
	"github.com/gomlx/scalargrad/ml/train/losses"
	"github.com/gomlx/scalargrad/ml/train/optimizers"
)

// ModelFn builds the model's predictions for the given inputs on graph g.
// Trainable variables come from ctx, materialized on g with
// Variable.ValueGraph.
type ModelFn func(ctx *context.Context, g *graph.Graph, inputs []float64) []*graph.Node

// Trainer executes one training step at a time: build a fresh graph, run
// the model forward, compute the loss, backpropagate and let the optimizer
// update the variables.
//
// Graphs are rebuilt from scratch on every step -- the engine does not
// support reusing a graph across passes -- so the per-step cost is
// proportional to the model size, which for scalar models is negligible.
type Trainer struct {
	ctx       *context.Context
	modelFn   ModelFn
	lossFn    losses.LossFn
	optimizer optimizers.Interface

	globalStep int
}

// NewTrainer constructs a Trainer.
func NewTrainer(ctx *context.Context, modelFn ModelFn, lossFn losses.LossFn, optimizer optimizers.Interface) *Trainer {
	return &Trainer{
		ctx:       ctx,
		modelFn:   modelFn,
		lossFn:    lossFn,
		optimizer: optimizer,
	}
}

// Context returns the context holding the model variables.
func (t *Trainer) Context() *context.Context {
	return t.ctx
}

// GlobalStep returns the number of train steps executed so far.
func (t *Trainer) GlobalStep() int {
	return t.globalStep
}

// TrainStep runs one training step over the whole dataset (inputs and their
// labels) and returns the loss observed before the variables update.
//
// The step follows the canonical backward driver contract: fresh graph,
// forward evaluation, zero gradients, seed the loss with 1, backward,
// capture the variables' gradients and apply the optimizer.
func (t *Trainer) TrainStep(inputs, labels []float64) (loss float64) {
	g := graph.New()
	predictions := t.modelFn(t.ctx, g, inputs)
	labelNodes := make([]*graph.Node, len(labels))
	for i, label := range labels {
		labelNodes[i] = g.Const(label)
	}
	lossNode := t.lossFn(labelNodes, predictions)

	g.ZeroGrads()
	lossNode.SeedGrad(1)
	graph.Backward(lossNode)

	t.ctx.EnumerateVariables(func(v *context.Variable) {
		v.CaptureGradient()
	})
	t.optimizer.UpdateVariables(t.ctx)
	t.globalStep++
	return lossNode.Value()
}
