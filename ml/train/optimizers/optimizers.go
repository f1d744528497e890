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

// Package optimizers implements the update rules that turn gradients into
// changes on the model variables.
package optimizers

import (
	"github.com/gomlx/scalargrad/ml/context"
)

// ParamLearningRate is the context hyperparameter with the learning rate.
// Defaults to SgdDefaultLearningRate.
const ParamLearningRate = "learning_rate"

// SgdDefaultLearningRate is the default learning rate used by the
// StochasticGradientDescent optimizer.
const SgdDefaultLearningRate = 0.01

// Interface implemented by all optimizers.
type Interface interface {
	// UpdateVariables applies one update step to every variable in ctx,
	// using the gradients captured from the last backward pass.
	UpdateVariables(ctx *context.Context)

	// Clear deletes any optimizer internal state (e.g. moving averages).
	Clear(ctx *context.Context)
}

// sgd implements plain stochastic gradient descent, no state.
type sgd struct{}

// StochasticGradientDescent creates an optimizer that updates each variable
// with `value -= learning_rate * gradient`. The learning rate is read from
// the context param ParamLearningRate, defaulting to SgdDefaultLearningRate.
func StochasticGradientDescent() Interface {
	return &sgd{}
}

// UpdateVariables implements Interface.
func (*sgd) UpdateVariables(ctx *context.Context) {
	learningRate := context.GetParamOr(ctx, ParamLearningRate, SgdDefaultLearningRate)
	ctx.EnumerateVariables(func(v *context.Variable) {
		v.SetValue(v.Value() - learningRate*v.Gradient())
	})
}

// Clear implements Interface. There is no state for SGD, so this is a no-op.
func (*sgd) Clear(_ *context.Context) {}
