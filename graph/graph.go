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

// Package graph implements a minimal scalar reverse-mode automatic
// differentiation engine.
//
// It is the scalar ("everything is a float64") sibling of GoMLX's graph
// package: operations build a computation graph as they evaluate, and
// Backward propagates gradients from a root node back to every node it
// depends on.
//
// The main elements of the package are:
//
//   - Graph: owns every Node created through it. Nodes are stored in an
//     arena and addressed by NodeId, assigned in creation order. Since an
//     operation can only consume nodes that already exist, every edge points
//     from a larger id to smaller ids and the graph is acyclic by
//     construction.
//
//   - Node: the result of an operation ("op" for short), or a leaf created
//     with Graph.Const. A Node holds its value (computed eagerly, at
//     graph-building time) and a gradient accumulator used by the backward
//     pass.
//
//   - Backward: the reverse-mode pass. See rev_autodiff.go.
//
// A typical use looks like:
//
//	g := graph.New()
//	x := g.Const(4)
//	y := graph.Add(graph.Mul(graph.Mul(x, x), x), graph.MulScalar(x, 2)) // x^3 + 2x
//	y.Backward()
//	fmt.Println(x.Gradient()) // 3*4^2 + 2 = 50
//
// Errors on invalid use of the API -- non-finite values, mixing nodes of
// different graphs -- are reported with panics carrying a stack trace (see
// github.com/gomlx/exceptions), the same deferred error handling style used
// by GoMLX graph building.
package graph

import (
	"fmt"
	"math"

	. "github.com/gomlx/exceptions"
)

// NodeId is the unique identifier of a Node within its Graph, assigned
// sequentially in creation order.
type NodeId int

// InvalidNodeId is returned for nil or invalid nodes.
const InvalidNodeId = NodeId(-1)

// NodeType identifies the operation that created a Node. The backward pass
// dispatches on it.
type NodeType int

const (
	// NodeTypeInvalid is the zero value, used only for invalid nodes.
	NodeTypeInvalid NodeType = iota

	// NodeTypeLeaf is a node created directly with Graph.Const, never the
	// result of an operation. Its backward rule is a no-op.
	NodeTypeLeaf

	// NodeTypeAdd is the result of Add.
	NodeTypeAdd

	// NodeTypeMul is the result of Mul.
	NodeTypeMul
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeLeaf:
		return "Leaf"
	case NodeTypeAdd:
		return "Add"
	case NodeTypeMul:
		return "Mul"
	}
	return "Invalid"
}

// Graph is an arena that owns all the nodes of one computation graph.
//
// It is cheap to create; build one, combine nodes with the package ops and
// run Backward on the final result. There is no support for reusing the
// graph across training steps -- rebuild it instead.
//
// Not safe for concurrent use.
type Graph struct {
	nodes []*Node
}

// Node represents a scalar value tracked by the engine: either a leaf
// (Graph.Const) or the result of an operation on other nodes.
//
// The value is computed when the node is created and never mutated by the
// engine afterwards. The gradient is an accumulator, scoped to one backward
// pass: zero it (Graph.ZeroGrads or Node.ZeroGrad) before a fresh pass, seed
// the root with SeedGrad(1) and run the pass.
type Node struct {
	graph  *Graph
	id     NodeId
	typ    NodeType
	inputs []*Node

	value float64
	grad  float64
}

// New returns a new empty Graph.
func New() *Graph {
	return &Graph{}
}

// Const creates a leaf node with the given value.
//
// Non-finite values (NaN or ±Inf) are rejected with a panic: they are never
// meaningful as graph inputs, and catching them here gives a stack trace at
// the point they were introduced, instead of having them silently propagate
// through every downstream value and gradient.
func (g *Graph) Const(value float64) *Node {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		Panicf("graph.Const(%v): value must be finite", value)
	}
	return g.newNode(NodeTypeLeaf, value)
}

// newNode appends a node to the arena. All node creation funnels through
// here, which is what keeps ids ordered by creation time.
func (g *Graph) newNode(typ NodeType, value float64, inputs ...*Node) *Node {
	n := &Node{
		graph:  g,
		id:     NodeId(len(g.nodes)),
		typ:    typ,
		inputs: inputs,
		value:  value,
	}
	g.nodes = append(g.nodes, n)
	return n
}

// NumNodes returns the number of nodes created in the graph so far.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NodeById returns the node with the given id.
// It panics if id is out of range.
func (g *Graph) NodeById(id NodeId) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		Panicf("graph.NodeById(%d): graph has %d nodes", id, len(g.nodes))
	}
	return g.nodes[id]
}

// ZeroGrads resets the gradient of every node in the graph to 0, preparing
// it for a fresh backward pass.
func (g *Graph) ZeroGrads() {
	for _, n := range g.nodes {
		n.grad = 0
	}
}

// Type identifies the operation that created the node.
func (n *Node) Type() NodeType {
	if n == nil {
		return NodeTypeInvalid
	}
	return n.typ
}

// Graph that owns this Node.
func (n *Node) Graph() *Graph {
	if n == nil {
		return nil
	}
	return n.graph
}

// Id is the unique id of this node within its Graph.
func (n *Node) Id() NodeId {
	if n == nil {
		return InvalidNodeId
	}
	return n.id
}

// Inputs returns the operand nodes this node was created from. Empty for
// leaf nodes. The returned slice is owned by the node, don't modify it.
func (n *Node) Inputs() []*Node {
	return n.inputs
}

// Value returns the scalar value of the node, fixed at creation.
func (n *Node) Value() float64 {
	n.AssertValid()
	return n.value
}

// Gradient returns the gradient accumulated on the node by the last backward
// pass, or 0 if no pass ran since the last reset.
func (n *Node) Gradient() float64 {
	n.AssertValid()
	return n.grad
}

// ZeroGrad resets this node's gradient accumulator to 0.
func (n *Node) ZeroGrad() {
	n.AssertValid()
	n.grad = 0
}

// SeedGrad sets this node's gradient accumulator to the given value. It is
// used to seed the root of a backward pass, typically with 1 (= ∂root/∂root).
func (n *Node) SeedGrad(value float64) {
	n.AssertValid()
	n.grad = value
}

// AssertValid panics if the node is nil or malformed.
func (n *Node) AssertValid() {
	if n == nil {
		Panicf("graph.Node is nil")
	}
	if n.graph == nil || n.typ == NodeTypeInvalid {
		Panicf("graph.Node is invalid -- nodes must be created with Graph.Const or the package ops")
	}
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	return fmt.Sprintf("%s#%d(value=%g, grad=%g)", n.typ, n.id, n.value, n.grad)
}

// validateGraphFromInputs checks that all operands are valid and belong to
// the same graph, and returns that graph.
func validateGraphFromInputs(inputs ...*Node) *Graph {
	var g *Graph
	for _, n := range inputs {
		n.AssertValid()
		if g == nil {
			g = n.graph
		} else if n.graph != g {
			Panicf("operands %s and %s belong to different graphs -- all operands of an op must be built on the same Graph",
				inputs[0], n)
		}
	}
	return g
}
