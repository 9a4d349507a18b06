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
	"testing"

	"github.com/stretchr/testify/require"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func TestBendingOfStraightLineIsZero(t *testing.T) {
	field := NewField(Homogeneous{Fx: 1, Fy: 0})
	fl := NewFieldLine(field, vec.Vec2{}, FieldLineConfig{Direction: Forward, MaxR: 5})

	b := fl.bending(fl.Nodes[0].P, fl.Nodes[len(fl.Nodes)-1].P, 0, 1)
	require.InDelta(t, 0, b, 1e-9)
}

func TestBendingOfCurvedLineIsPositive(t *testing.T) {
	field := NewField(Wire{X: 0, Y: 0, I: 1})
	fl := NewFieldLine(field, vec.Vec2{X: 1, Y: 0}, FieldLineConfig{Direction: Forward})

	b := fl.bending(fl.GetPosition(0), fl.GetPosition(0.5), 0, 0.5)
	require.Greater(t, b, 0.0)
}

func TestOutOfBoundsSignAgreesWithRect(t *testing.T) {
	field := NewField(Homogeneous{Fx: 1, Fy: 0})
	fl := NewFieldLine(field, vec.Vec2{}, FieldLineConfig{Direction: Forward, MaxR: 5})

	bounds := &rect.Rect{LLx: -1, LLy: -1, URx: 1, URy: 1}
	require.LessOrEqual(t, fl.outOfBounds(vec.Vec2{X: 0, Y: 0}, bounds), 0.0)
	require.Greater(t, fl.outOfBounds(vec.Vec2{X: 5, Y: 0}, bounds), 0.0)
}

func TestOutOfBoundsNilBoundsIsAlwaysInside(t *testing.T) {
	field := NewField(Homogeneous{Fx: 1, Fy: 0})
	fl := NewFieldLine(field, vec.Vec2{}, FieldLineConfig{Direction: Forward, MaxR: 5})
	require.Equal(t, -1.0, fl.outOfBounds(vec.Vec2{X: 1e6, Y: 1e6}, nil))
}

func TestOutOfBoundsCallerFuncTakesPriority(t *testing.T) {
	field := NewField(Homogeneous{Fx: 1, Fy: 0})
	cfg := FieldLineConfig{Direction: Forward, MaxR: 5}
	cfg.BoundsFunc = func(p vec.Vec2) float64 {
		if p.X > 0.5 {
			return 1
		}
		return -1
	}
	fl := NewFieldLine(field, vec.Vec2{}, cfg)

	require.Greater(t, fl.outOfBounds(vec.Vec2{X: 1}, nil), 0.0)
	require.LessOrEqual(t, fl.outOfBounds(vec.Vec2{X: 0}, nil), 0.0)
}

func TestGetPolylinesClipsToBounds(t *testing.T) {
	field := NewField(Homogeneous{Fx: 1, Fy: 0})
	fl := NewFieldLine(field, vec.Vec2{X: -5}, FieldLineConfig{Direction: Forward, MaxR: 10})

	bounds := &rect.Rect{LLx: -1, LLy: -1, URx: 1, URy: 1}
	lines := fl.GetPolylines(DefaultDigits, DefaultMaxDist, bounds)
	require.Len(t, lines, 1)

	pts := lines[0].Points
	require.InDelta(t, -1, pts[0].X, 1e-4)
	require.InDelta(t, 1, pts[len(pts)-1].X, 1e-4)
	for _, p := range pts {
		require.GreaterOrEqual(t, p.X, -1.0-1e-6)
		require.LessOrEqual(t, p.X, 1.0+1e-6)
	}
}

func TestGetPolylinesUnboundedReturnsWholeLine(t *testing.T) {
	field := NewField(Homogeneous{Fx: 1, Fy: 0})
	fl := NewFieldLine(field, vec.Vec2{}, FieldLineConfig{Direction: Forward, MaxR: 5})

	lines := fl.GetPolylines(DefaultDigits, DefaultMaxDist, nil)
	require.Len(t, lines, 1)
	require.True(t, lines[0].Start)
	require.True(t, lines[0].End)
	require.GreaterOrEqual(t, len(lines[0].Points), 2)
}

func TestGetPolylinesOnEmptyLineIsNil(t *testing.T) {
	fl := &FieldLine{}
	require.Nil(t, fl.GetPolylines(DefaultDigits, DefaultMaxDist, nil))
}

func TestPolylineBendingWithinTolerance(t *testing.T) {
	field := NewField(Wire{X: 0, Y: 0, I: 1})
	fl := NewFieldLine(field, vec.Vec2{X: 1, Y: 0}, FieldLineConfig{Direction: Forward})

	const digits = 3.8
	pts, ts := fl.getPolyline(0, 1, digits, DefaultMaxDist, polylineMinDist)
	require.GreaterOrEqual(t, len(pts), 3)
	// 1.1 is the refiner's termination slack on the per-interval ratio,
	// which enters the bend bound squared through the 0.5 exponent
	tol := 1.25 * math.Pow(0.1, digits)
	for i := 1; i < len(ts); i++ {
		require.LessOrEqual(t, fl.bending(pts[i-1], pts[i], ts[i-1], ts[i]), tol)
	}
}

func TestGetPolylinesOnClosedLoop(t *testing.T) {
	field := NewField(Wire{X: 0, Y: 0, I: 1})
	fl := NewFieldLine(field, vec.Vec2{X: 1, Y: 0}, FieldLineConfig{Direction: Forward})

	lines := fl.GetPolylines(DefaultDigits, DefaultMaxDist, nil)
	require.GreaterOrEqual(t, len(lines), 1)
	for _, pl := range lines {
		require.GreaterOrEqual(t, len(pl.Points), 2)
	}
}
