// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// ConstMatrix returns a rows x cols matrix with all entries equal to v
func ConstMatrix(rows, cols int, v float64) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.Set(r, c, v)
		}
	}
	return m
}

// BernoulliMask returns a rows x cols matrix of independent draws that are
// 1 with probability p and 0 otherwise
func BernoulliMask(rows, cols int, p float64, rnd *rand.Rand) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if rnd.Float64() < p {
				m.Set(r, c, 1)
			}
		}
	}
	return m
}

// Sparsify returns a copy of m with each entry kept with probability p and
// zeroed otherwise
func Sparsify(m mat.Matrix, p float64, rnd *rand.Rand) *mat.Dense {
	r, c := m.Dims()
	sp := mat.NewDense(r, c, nil)
	sp.MulElem(m, BernoulliMask(r, c, p, rnd))
	return sp
}

// NonZero returns the number of non-zero entries of m
func NonZero(m mat.Matrix) int {
	r, c := m.Dims()
	n := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				n++
			}
		}
	}
	return n
}

// Density returns the fraction of non-zero entries of m
func Density(m mat.Matrix) float64 {
	r, c := m.Dims()
	if r*c == 0 {
		return 0
	}
	return float64(NonZero(m)) / float64(r*c)
}

// HostRand returns a generator seeded from the first host seed of the plan,
// for building weight matrices outside of the kernel
func (sp SeedPlan) HostRand() *rand.Rand {
	return rand.New(rand.NewSource(uint64(sp.HostSeeds()[0])))
}
