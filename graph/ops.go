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

// This file contains the operations ("ops") used to combine nodes.
//
// Add and Mul are the primitive set: they create nodes with their own
// NodeType, and the backward pass (rev_autodiff.go) knows their gradient
// rules. Everything else here is derived, expressed in terms of the
// primitives, so it needs no backward rule of its own.
//
// Every op evaluates eagerly (the "forward pass" happens as the graph is
// built) and returns a fresh node; operands are never mutated.

// Add returns a node holding a+b.
//
// Its gradient rule passes the upstream gradient through unchanged to both
// operands: ∂(a+b)/∂a = ∂(a+b)/∂b = 1.
func Add(a, b *Node) *Node {
	g := validateGraphFromInputs(a, b)
	return g.newNode(NodeTypeAdd, a.value+b.value, a, b)
}

// Mul returns a node holding a*b.
//
// Its gradient rule follows the product rule: ∂(ab)/∂a = b and
// ∂(ab)/∂b = a, each scaled by the upstream gradient.
func Mul(a, b *Node) *Node {
	g := validateGraphFromInputs(a, b)
	return g.newNode(NodeTypeMul, a.value*b.value, a, b)
}

// AddScalar returns `x + scalar`, with the scalar promoted to a leaf node.
func AddScalar(x *Node, scalar float64) *Node {
	x.AssertValid()
	return Add(x, x.graph.Const(scalar))
}

// MulScalar returns `x * scalar`, with the scalar promoted to a leaf node.
func MulScalar(x *Node, scalar float64) *Node {
	x.AssertValid()
	return Mul(x, x.graph.Const(scalar))
}

// Neg returns `-x`. Same as MulScalar(x, -1).
func Neg(x *Node) *Node {
	return MulScalar(x, -1)
}

// Sub returns `a - b`. Same as Add(a, Neg(b)).
func Sub(a, b *Node) *Node {
	return Add(a, Neg(b))
}

// Square returns x^2. Same as Mul(x, x).
func Square(x *Node) *Node {
	return Mul(x, x)
}
