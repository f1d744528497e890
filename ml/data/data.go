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

// Package data generates synthetic datasets for the examples and tests.
//
// All randomness is drawn from a caller-supplied *rand.Rand, never from the
// package-global generator: fixing the seed at the caller makes datasets
// reproducible end-to-end.
package data

import (
	"math/rand/v2"

	. "github.com/gomlx/exceptions"
)

// Range returns n values starting at from, spaced by step:
// from, from+step, from+2*step, ...
func Range(from, step float64, n int) []float64 {
	if n < 0 {
		Panicf("data.Range: n=%d must be >= 0", n)
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = from + float64(i)*step
	}
	return xs
}

// Linear returns labels for the linear model `y = coef*x + bias` evaluated
// at each x in xs, with gaussian noise of the given standard deviation added
// to each label. Use noise=0 for noiseless labels.
func Linear(rng *rand.Rand, coef, bias, noise float64, xs []float64) []float64 {
	labels := make([]float64, len(xs))
	for i, x := range xs {
		labels[i] = coef*x + bias
		if noise > 0 {
			labels[i] += rng.NormFloat64() * noise
		}
	}
	return labels
}

// InitUniform draws an initial parameter value uniformly from [low, high).
func InitUniform(rng *rand.Rand, low, high float64) float64 {
	if high <= low {
		Panicf("data.InitUniform: invalid interval [%g, %g)", low, high)
	}
	return low + rng.Float64()*(high-low)
}
