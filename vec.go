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

	"seehuhn.de/go/geom/vec"
)

// vabs returns the Euclidean length of v, kept as a free function so the
// field-evaluator code reads the way the reference formulas do.
func vabs(v vec.Vec2) float64 {
	return v.Length()
}

// vnorm returns v scaled to unit length, or v unchanged if v is the zero
// vector, so callers never see NaN.
func vnorm(v vec.Vec2) vec.Vec2 {
	d := v.Length()
	if d == 0 {
		return v
	}
	return v.Mul(1 / d)
}

// vdot returns the dot product of a and b.
func vdot(a, b vec.Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// vcross returns the (scalar) 2D cross product a×b = a.X*b.Y - a.Y*b.X.
func vcross(a, b vec.Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// rot rotates xy counterclockwise by phi radians.
func rot(xy vec.Vec2, phi float64) vec.Vec2 {
	s, c := math.Sin(phi), math.Cos(phi)
	return vec.Vec2{X: c*xy.X - s*xy.Y, Y: c*xy.Y + s*xy.X}
}

// normal returns v rotated 90° counterclockwise; its length is that of v.
func normal(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: -v.Y, Y: v.X}
}

// cosv returns the cosine of the angle between v1 and v2, clamped to
// [-1,1]. Returns 1 if either vector is zero, a deliberate convention:
// callers only invoke cosv under preconditions that make this branch
// irrelevant.
func cosv(v1, v2 vec.Vec2) float64 {
	dd := v1.Length() * v2.Length()
	if dd == 0 {
		return 1
	}
	cv := vdot(v1, v2) / dd
	return clamp11(cv)
}

// sinv returns the sine of the angle between v1 and v2, clamped to
// [-1,1]. Returns 1 if either vector is zero, for the same reason as cosv.
func sinv(v1, v2 vec.Vec2) float64 {
	dd := v1.Length() * v2.Length()
	if dd == 0 {
		return 1
	}
	sv := vcross(v1, v2) / dd
	return clamp11(sv)
}

func clamp11(x float64) float64 {
	if x >= 1 {
		return 1
	}
	if x <= -1 {
		return -1
	}
	return x
}

// angleDif returns the signed difference (a2-a1), wrapped into (-pi,pi].
func angleDif(a1, a2 float64) float64 {
	d := floorMod(a2-a1+math.Pi, 2*math.Pi) - math.Pi
	if d == -math.Pi {
		return math.Pi
	}
	return d
}

// floorMod is floored modulo: the result has the same sign as y (unlike
// math.Mod, whose result has the same sign as x).
func floorMod(x, y float64) float64 {
	m := math.Mod(x, y)
	if m != 0 && (m < 0) != (y < 0) {
		m += y
	}
	return m
}

// angle returns the polar angle of v, equivalent to atan2(v.Y, v.X).
func angle(v vec.Vec2) float64 {
	return math.Atan2(v.Y, v.X)
}
