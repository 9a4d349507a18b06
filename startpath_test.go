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
	"seehuhn.de/go/geom/vec"
)

func straightPath(p0, p1 vec.Vec2) func(t float64) vec.Vec2 {
	return func(t float64) vec.Vec2 {
		return p0.Add(p1.Sub(p0).Mul(t))
	}
}

func TestStartpathPanicsOnDegenerateRange(t *testing.T) {
	field := NewField(Homogeneous{Fx: 1})
	path := straightPath(vec.Vec2{}, vec.Vec2{X: 1})
	require.Panics(t, func() { NewStartpath(field, path, 1, 1, StartpathConfig{}) })
	require.Panics(t, func() { NewStartpath(field, path, 1, 0, StartpathConfig{}) })
}

func TestStartpathEndpointsMapToPathEndpoints(t *testing.T) {
	field := NewField(Monopole{X: 0, Y: 5, Q: 1})
	p0, p1 := vec.Vec2{X: -2, Y: 0}, vec.Vec2{X: 2, Y: 0}
	sp := NewStartpath(field, straightPath(p0, p1), 0, 1, StartpathConfig{})

	start := sp.Startpos(0)
	end := sp.Startpos(1)
	require.InDelta(t, p0.X, start.X, 1e-3)
	require.InDelta(t, p1.X, end.X, 1e-3)
}

func TestStartpathNpointsAreOrderedAlongThePath(t *testing.T) {
	field := NewField(Monopole{X: 0, Y: 5, Q: 1})
	p0, p1 := vec.Vec2{X: -2, Y: 0}, vec.Vec2{X: 2, Y: 0}
	sp := NewStartpath(field, straightPath(p0, p1), 0, 1, StartpathConfig{})

	pts := sp.Npoints(5)
	require.Len(t, pts, 5)
	for i := 1; i < len(pts); i++ {
		require.Greater(t, pts[i].X, pts[i-1].X)
	}
}

func TestStartpathUniformFieldGivesUniformSpacing(t *testing.T) {
	field := NewField(Homogeneous{Fx: 0, Fy: 1})
	p0, p1 := vec.Vec2{X: -3, Y: 0}, vec.Vec2{X: 3, Y: 0}
	sp := NewStartpath(field, straightPath(p0, p1), 0, 1, StartpathConfig{})

	pts := sp.Npoints(4)
	for i := 1; i < len(pts); i++ {
		d := pts[i].X - pts[i-1].X
		require.InDelta(t, 1.5, d, 1e-2)
	}
}

func TestStartpathCircleAroundWireGivesUniformAngles(t *testing.T) {
	// The wire's field is tangent to every circle around it, so no flux
	// crosses the circular path at all and seeding falls back to uniform
	// parameter spacing.
	field := NewField(Wire{X: 0, Y: 0, I: 1})
	circle := func(t float64) vec.Vec2 {
		return vec.Vec2{X: math.Cos(t), Y: math.Sin(t)}
	}
	sp := NewStartpath(field, circle, 0, 2*math.Pi, StartpathConfig{})

	pts := sp.Npoints(8)
	require.Len(t, pts, 8)
	for i, p := range pts {
		want := (float64(i) + 0.5) / 8 * 2 * math.Pi
		require.InDelta(t, math.Cos(want), p.X, 1e-6)
		require.InDelta(t, math.Sin(want), p.Y, 1e-6)
	}
}

func TestStartpathRescaleChangesDensity(t *testing.T) {
	// A source closer to one end of the path concentrates flux-weighted
	// seed points near that end; rescaling the field by sqrt flattens
	// that concentration, moving the 50%-flux point away from the source.
	field := NewField(Monopole{X: 3, Y: 5, Q: 1})
	p0, p1 := vec.Vec2{X: -3, Y: 0}, vec.Vec2{X: 3, Y: 0}
	plain := NewStartpath(field, straightPath(p0, p1), 0, 1, StartpathConfig{})
	rescaled := NewStartpath(field, straightPath(p0, p1), 0, 1, StartpathConfig{
		FRescale: func(fabs float64) float64 { return math.Sqrt(fabs) },
	})

	mid1 := plain.Startpos(0.5)
	mid2 := rescaled.Startpos(0.5)
	require.Less(t, mid2.X, mid1.X)
}
