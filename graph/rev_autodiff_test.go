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

package graph_test

import (
	"testing"

	. "github.com/gomlx/scalargrad/graph"
	"github.com/stretchr/testify/require"
)

func TestBackwardFanOut(t *testing.T) {
	// y = x + x  =>  dy/dx = 2, both contributions summed into x.
	g := New()
	x := g.Const(5)
	y := Add(x, x)
	y.Backward()
	require.Equal(t, 2.0, x.Gradient())
}

func TestBackwardChainRule(t *testing.T) {
	// y = (x*x)*x = x^3  =>  dy/dx = 3*x^2 = 48 at x=4.
	g := New()
	x := g.Const(4)
	y := Mul(Mul(x, x), x)
	y.Backward()
	require.Equal(t, 48.0, x.Gradient())
}

func TestBackwardCombinedExpression(t *testing.T) {
	// y = x^3 + 2x  =>  dy/dx = 3*x^2 + 2 = 50 at x=4.
	g := New()
	x := g.Const(4)
	y := Add(Mul(Mul(x, x), x), MulScalar(x, 2))
	y.Backward()
	require.Equal(t, 50.0, x.Gradient())
}

func TestBackwardReconvergentPaths(t *testing.T) {
	// x feeds two separate ops (u = x+x and v = x*x) that merge again
	// downstream (y = u*v). A node must only propagate once all of its
	// consumers contributed, otherwise u and v push partial gradients
	// through x more than once, or with partial sums.
	//
	//   y = (x+x)*(x*x) = 2x^3  =>  dy/dx = 6x^2 = 54 at x=3.
	g := New()
	x := g.Const(3)
	u := Add(x, x)
	v := Mul(x, x)
	y := Mul(u, v)
	y.Backward()
	require.Equal(t, 54.0, x.Gradient())

	// Deeper reconvergence: the merge point itself fans out again.
	//   z = y + y = 4x^3  =>  dz/dx = 12x^2 = 108 at x=3.
	g = New()
	x = g.Const(3)
	y = Mul(Add(x, x), Mul(x, x))
	z := Add(y, y)
	z.Backward()
	require.Equal(t, 108.0, x.Gradient())
}

func TestBackwardValuesImmutable(t *testing.T) {
	g := New()
	x := g.Const(4)
	x2 := Mul(x, x)
	y := Add(x2, MulScalar(x, 2))
	for range 10 {
		y.Backward()
		require.Equal(t, 4.0, x.Value())
		require.Equal(t, 16.0, x2.Value())
		require.Equal(t, 24.0, y.Value())
	}
	// Node.Backward resets between passes, so the gradient is stable too.
	require.Equal(t, 10.0, x.Gradient())
}

func TestBackwardCompoundsWithoutReset(t *testing.T) {
	// Re-running the raw driver without zeroing accumulates: documented
	// caller responsibility.
	g := New()
	x := g.Const(5)
	y := Add(x, x)
	g.ZeroGrads()
	y.SeedGrad(1)
	Backward(y)
	require.Equal(t, 2.0, x.Gradient())
	Backward(y)
	require.Equal(t, 4.0, x.Gradient())
}

func TestBackwardSeedScaling(t *testing.T) {
	// The seed scales every gradient: seeding 2 doubles dy/dx.
	g := New()
	x := g.Const(4)
	y := Mul(x, x)
	g.ZeroGrads()
	y.SeedGrad(2)
	Backward(y)
	require.Equal(t, 16.0, x.Gradient())
}

func TestBackwardUnreachableNodesUntouched(t *testing.T) {
	// Nodes not feeding the root are not visited: their gradient stays as
	// seeded.
	g := New()
	x := g.Const(2)
	other := Mul(x, x) // Not an ancestor of y below.
	y := Add(x, x)
	g.ZeroGrads()
	other.SeedGrad(7)
	y.SeedGrad(1)
	Backward(y)
	require.Equal(t, 2.0, x.Gradient())
	require.Equal(t, 7.0, other.Gradient())
}

func TestBackwardDeepChain(t *testing.T) {
	// The pass is iterative: a long chain must not overflow the stack.
	const depth = 200_000
	g := New()
	x := g.Const(1)
	y := x
	for range depth {
		y = Add(y, x)
	}
	y.Backward()
	require.Equal(t, float64(depth+1), x.Gradient())
}
