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

package graph

import (
	. "github.com/gomlx/exceptions"
)

// This file implements the reverse-mode backward pass.
//
// A node's gradient must have received the contribution of every one of its
// consumers before the node propagates to its own operands -- otherwise,
// with fan-out > 1 and reconvergent paths, ancestors would see a partially
// summed gradient. The naive "accumulate into the operand and immediately
// recurse into it" cascade breaks exactly there.
//
// Instead, the pass here exploits the arena ordering: node ids are assigned
// in creation order and ops can only consume already-existing nodes, so
// every consumer of a node has a larger id than the node itself. Walking
// the arena from root.Id() down to 0 is therefore a reverse topological
// order, and each node is visited exactly once, after all of its consumers.
// The walk is iterative, so deep graphs don't grow the goroutine stack.

// Backward runs one reverse-mode pass from root, accumulating into each
// reachable node's gradient the value ∂root/∂node scaled by root's current
// gradient.
//
// The caller is responsible for resetting state between passes: zero the
// gradients (Graph.ZeroGrads) and seed root with SeedGrad(1). Calling
// Backward again without a reset compounds gradients -- accumulation is
// strictly additive. For the common case use Node.Backward, which does the
// zero/seed/run sequence in one call.
//
// Node values are never modified by the pass.
func Backward(root *Node) {
	g := validateGraphFromInputs(root)
	reached := make([]bool, int(root.id)+1)
	reached[root.id] = true
	for id := root.id; id >= 0; id-- {
		if !reached[id] {
			continue
		}
		n := g.nodes[id]
		// All consumers of n have ids > id, so n.grad is final here.
		switch n.typ {
		case NodeTypeLeaf:
			// No operands to propagate to.
		case NodeTypeAdd:
			a, b := n.inputs[0], n.inputs[1]
			a.grad += n.grad
			b.grad += n.grad
		case NodeTypeMul:
			a, b := n.inputs[0], n.inputs[1]
			a.grad += b.value * n.grad
			b.grad += a.value * n.grad
		default:
			Panicf("Backward: node %s has no gradient rule", n)
		}
		for _, input := range n.inputs {
			reached[input.id] = true
		}
	}
}

// Backward resets the gradients of the whole graph, seeds this node's
// gradient with 1 and runs the backward pass from it. After it returns,
// every node the receiver depends on holds ∂n/∂node in its gradient.
func (n *Node) Backward() {
	n.AssertValid()
	n.graph.ZeroGrads()
	n.grad = 1
	Backward(n)
}
