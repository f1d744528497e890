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

package data

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	xs := Range(-5.0, 0.1, 100)
	require.Len(t, xs, 100)
	assert.Equal(t, -5.0, xs[0])
	assert.InDelta(t, 4.9, xs[99], 1e-12)
	assert.Empty(t, Range(0, 1, 0))
	require.Panics(t, func() { Range(0, 1, -1) })
}

func TestLinear(t *testing.T) {
	xs := Range(0, 1, 5)
	noiseless := Linear(nil, 7, 0, 0, xs)
	require.Equal(t, []float64{0, 7, 14, 21, 28}, noiseless)

	// With the same seed, the same noise.
	a := Linear(rand.New(rand.NewPCG(42, 0)), 7, 0, 0.5, xs)
	b := Linear(rand.New(rand.NewPCG(42, 0)), 7, 0, 0.5, xs)
	require.Equal(t, a, b)
	require.NotEqual(t, noiseless, a)

	// Noise is centered on the noiseless labels.
	for i := range a {
		assert.InDelta(t, noiseless[i], a[i], 5) // 10 sigmas.
	}
}

func TestInitUniform(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 0))
	for range 100 {
		w := InitUniform(rng, -1, 1)
		require.GreaterOrEqual(t, w, -1.0)
		require.Less(t, w, 1.0)
	}
	require.Panics(t, func() { InitUniform(rng, 1, -1) })
}
