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

import "seehuhn.de/go/geom/vec"

// poleKind identifies what kind of special point nearestPoleTo found.
type poleKind int

const (
	poleStart poleKind = iota
	poleMonopole
	poleDipole
)

// pole describes the nearest singular point (or the line's own starting
// point, treated as a pseudo-pole for closure detection) relative to a
// position p heading in direction v.
type pole struct {
	kind poleKind
	xy   vec.Vec2
	mom  vec.Vec2 // dipole moment, valid only when kind == poleDipole
}

// nearestPoleTo finds the nearest of {the line's first point, every
// Monopole, every Dipole} to p, weighting distance by direction: each
// distance is multiplied by 1.3 minus the cosine between v and the
// direction to the pole, from 0.3 for a pole straight ahead to 2.3 for one
// straight behind, so the integrator doesn't slow down for poles it has
// already passed.
func nearestPoleTo(field *Field, firstPoint, p, v vec.Vec2) pole {
	best := pole{kind: poleStart, xy: firstPoint}
	dBest := firstPoint.Sub(p).Length() * (1.3 - cosv(v, firstPoint.Sub(p)))

	for _, el := range field.Elements {
		switch m := el.(type) {
		case Monopole:
			xy := vec.Vec2{X: m.X, Y: m.Y}
			d := xy.Sub(p).Length() * (1.3 - cosv(v, xy.Sub(p)))
			if d < dBest {
				dBest = d
				best = pole{kind: poleMonopole, xy: xy}
			}
		case Dipole:
			xy := vec.Vec2{X: m.X, Y: m.Y}
			d := xy.Sub(p).Length() * (1.3 - cosv(v, xy.Sub(p)))
			if d < dBest {
				dBest = d
				best = pole{kind: poleDipole, xy: xy, mom: vec.Vec2{X: m.Px, Y: m.Py}}
			}
		}
	}
	return best
}

// findCorner locates, by bracketed root search, the parameter hc along
// direction v at which f(p+hc*v) crosses the bisector vm of the
// pre-turn/post-turn directions — the precise point of an abrupt
// direction-field discontinuity detected by a coarse three-sample probe.
// h0/h1 bracket the root. v2 is the direction sampled at hc/2; when the
// bisector crossing also lies within 2*hc along v2, hc is solved again
// along v2 in [0, 2*hc]. The caller steps to the corner along v2.
func findCorner(f func(vec.Vec2) vec.Vec2, p, v, vm vec.Vec2, h0, h1 float64) (hc float64, v2 vec.Vec2) {
	hc = brentq(func(hc float64) float64 {
		return sinv(f(p.Add(v.Mul(hc))), vm)
	}, h0, h1)
	v2 = f(p.Add(v.Mul(hc / 2)))
	if sinv(f(p), vm)*sinv(f(p.Add(v2.Mul(2*hc))), vm) <= 0 {
		hc = brentq(func(hc float64) float64 {
			return sinv(f(p.Add(v2.Mul(hc))), vm)
		}, 0, 2*hc)
	}
	return hc, v2
}
