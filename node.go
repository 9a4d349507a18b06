// fieldplot - traces 2D electromagnetic field lines
// Copyright (C) 2026  Geek3
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package fieldplot

import (
	"math"
	"sort"

	"seehuhn.de/go/geom/vec"
)

// Node is one vertex of a FieldLine's integrated node list. VIn is the
// tangent (scaled by the step size used to reach this node) coming into
// it; VOut is the tangent (scaled by the following step size) leaving it.
// VIn is nil at the first node and VOut at the last. Corner marks a node where the
// direction field is discontinuous (VIn and VOut point in different
// directions); T is the node's normalized cumulative arc length in
// [0,1], monotone non-decreasing across the node list.
type Node struct {
	P      vec.Vec2
	VIn    *vec.Vec2
	VOut   *vec.Vec2
	Corner bool
	T      float64
}

// isLoop reports whether nodes form a closed loop: the first and last
// node coincide within tol, and the total point-to-point path length
// exceeds a minimum so a degenerate zero-length "loop" doesn't count.
func isLoop(nodes []Node, pathCloseTol float64) bool {
	if len(nodes) < 2 {
		return false
	}
	closeTol := math.Max(5e-4, pathCloseTol)
	if nodes[0].P.Sub(nodes[len(nodes)-1].P).Length() > closeTol {
		return false
	}

	l := 0.0
	for i := 1; i < len(nodes); i++ {
		l += nodes[i].P.Sub(nodes[i-1].P).Length()
		if l > 5e-3 {
			return true
		}
	}
	return false
}

// normalizeArcLength recomputes T for every node as cumulative
// point-to-point path length normalized to [0,1]. N=1 gives T=0; a
// zero-length path (every node coincides) leaves every T at 0 as well.
func normalizeArcLength(nodes []Node) {
	if len(nodes) == 0 {
		return
	}
	nodes[0].T = 0
	for i := 1; i < len(nodes); i++ {
		nodes[i].T = nodes[i-1].T + nodes[i].P.Sub(nodes[i-1].P).Length()
	}
	total := nodes[len(nodes)-1].T
	if total == 0 {
		return
	}
	for i := 1; i < len(nodes); i++ {
		nodes[i].T /= total
	}
}

// getPosition evaluates the cubic-Hermite dense output of nodes at
// parameter t. t outside [0,1] wraps modulo 1 (meaningful for closed
// loops; for open lines the caller is expected to stay inside [0,1]).
func getPosition(nodes []Node, t float64) vec.Vec2 {
	if len(nodes) == 1 {
		return nodes[0].P
	}
	if t != 1 {
		t = floorMod(t, 1)
	}

	i := sort.Search(len(nodes)-1, func(i int) bool { return nodes[i+1].T >= t })
	if i >= len(nodes)-1 {
		i = len(nodes) - 2
	}

	t0, t1 := nodes[i].T, nodes[i+1].T
	p0, p1 := nodes[i].P, nodes[i+1].P
	if t1 <= t0 {
		return p0
	}

	p := (t - t0) / (t1 - t0)
	q := 1 - p

	var vOut, vIn vec.Vec2
	if nodes[i].VOut != nil {
		vOut = *nodes[i].VOut
	}
	if nodes[i+1].VIn != nil {
		vIn = *nodes[i+1].VIn
	}

	lin := p0.Mul(q).Add(p1.Mul(p))
	corr := vOut.Mul(q).Sub(vIn.Mul(p)).Add(p1.Sub(p0).Mul(p - q))
	return lin.Add(corr.Mul(p * q))
}
