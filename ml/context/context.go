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

// Package context holds the state of a model across training steps: the
// trainable variables and the hyperparameters ("params").
//
// Computation graphs are rebuilt every step; the Context is what survives
// between them. A Variable owns the current value of one scalar parameter
// and materializes a fresh leaf node on each step's graph with
// Variable.ValueGraph.
package context

import (
	. "github.com/gomlx/exceptions"
	"github.com/gomlx/scalargrad/graph"
)

// Context organizes the trainable variables and hyperparameters of a model.
//
// Not safe for concurrent use.
type Context struct {
	variables map[string]*Variable
	order     []string
	params    map[string]any
}

// Variable is a named trainable scalar. Its value lives in the Context,
// outside any one computation graph; each training step materializes it as
// a leaf node on that step's graph.
type Variable struct {
	name  string
	value float64
	grad  float64

	// node is the leaf materialized on the current step's graph.
	node *graph.Node
}

// New creates an empty Context.
func New() *Context {
	return &Context{
		variables: make(map[string]*Variable),
		params:    make(map[string]any),
	}
}

// SetParam sets a hyperparameter, e.g. the learning rate. Values are
// interpreted by whoever reads them (see GetParamOr).
func (ctx *Context) SetParam(key string, value any) *Context {
	ctx.params[key] = value
	return ctx
}

// GetParamOr returns the hyperparameter stored under key cast to T, or
// defaultValue if it was never set. It panics if the stored value has a
// different type.
func GetParamOr[T any](ctx *Context, key string, defaultValue T) T {
	raw, found := ctx.params[key]
	if !found {
		return defaultValue
	}
	value, ok := raw.(T)
	if !ok {
		Panicf("context param %q holds %T, requested as %T", key, raw, defaultValue)
	}
	return value
}

// VariableWithValue creates a variable with the given initial value.
// It panics if a variable with the same name already exists.
func (ctx *Context) VariableWithValue(name string, value float64) *Variable {
	if _, found := ctx.variables[name]; found {
		Panicf("variable %q already exists in context", name)
	}
	v := &Variable{name: name, value: value}
	ctx.variables[name] = v
	ctx.order = append(ctx.order, name)
	return v
}

// InspectVariable returns the variable with the given name, or nil if it
// doesn't exist.
func (ctx *Context) InspectVariable(name string) *Variable {
	return ctx.variables[name]
}

// NumVariables returns the number of variables created in the context.
func (ctx *Context) NumVariables() int {
	return len(ctx.variables)
}

// EnumerateVariables calls fn for each variable, in creation order.
func (ctx *Context) EnumerateVariables(fn func(v *Variable)) {
	for _, name := range ctx.order {
		fn(ctx.variables[name])
	}
}

// Name of the variable.
func (v *Variable) Name() string {
	return v.name
}

// Value returns the variable's current value.
func (v *Variable) Value() float64 {
	return v.value
}

// SetValue updates the variable's value. The change takes effect on the
// next graph the variable is materialized on; graphs already built keep the
// value they captured.
func (v *Variable) SetValue(value float64) {
	v.value = value
}

// Gradient returns the gradient captured from the last backward pass, or 0
// before the first one.
func (v *Variable) Gradient() float64 {
	return v.grad
}

// ValueGraph materializes the variable on g as a leaf node holding the
// current value, and returns it. Within one graph the same node is reused,
// so every use of the variable accumulates gradient on the same leaf.
func (v *Variable) ValueGraph(g *graph.Graph) *graph.Node {
	if v.node == nil || v.node.Graph() != g {
		v.node = g.Const(v.value)
	}
	return v.node
}

// CaptureGradient copies the gradient accumulated on the variable's leaf
// node -- from a backward pass on the graph it was last materialized on --
// into the variable, where optimizers read it.
func (v *Variable) CaptureGradient() {
	if v.node == nil {
		Panicf("variable %q was never materialized on a graph (see Variable.ValueGraph)", v.name)
	}
	v.grad = v.node.Gradient()
}
