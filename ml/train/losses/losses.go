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

// Package losses implements loss functions as graph expressions, so their
// gradient flows back to the model parameters with the rest of the graph.
package losses

import (
	. "github.com/gomlx/exceptions"
	"github.com/gomlx/scalargrad/graph"
)

// LossFn is the interface for losses: it combines labels and the model's
// predictions into one scalar node, the root of the backward pass.
type LossFn func(labels, predictions []*graph.Node) *graph.Node

// MeanSquaredError returns the mean squared error between labels and
// predictions: mean((labels[i] - predictions[i])^2).
//
// labels and predictions must be non-empty and have the same length.
func MeanSquaredError(labels, predictions []*graph.Node) *graph.Node {
	if len(labels) != len(predictions) {
		Panicf("labels (%d) and predictions (%d) must have the same length", len(labels), len(predictions))
	}
	if len(labels) == 0 {
		Panicf("MeanSquaredError of empty labels/predictions")
	}
	var sum *graph.Node
	for i, label := range labels {
		squared := graph.Square(graph.Sub(label, predictions[i]))
		if sum == nil {
			sum = squared
		} else {
			sum = graph.Add(sum, squared)
		}
	}
	return graph.MulScalar(sum, 1/float64(len(labels)))
}
