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

func TestMonopoleFollowsInverseSquareLaw(t *testing.T) {
	m := Monopole{X: 0, Y: 0, Q: 1}
	p := vec.Vec2{X: 3, Y: 4}
	f := m.F(p)

	require.InDelta(t, p.Length(), 5, 1e-12)
	want := 1.0 / (4 * math.Pi * 25)
	require.InDelta(t, want, f.Length(), 1e-9)

	// radial: F parallel to p
	require.InDelta(t, 0, vcross(f, p), 1e-12)
}

func TestMonopoleVMatchesFByGradient(t *testing.T) {
	m := Monopole{X: 1, Y: -2, Q: 2.5}
	p := vec.Vec2{X: 4, Y: 3}
	v0, ok := m.V(p)
	require.True(t, ok)

	d := 1e-6
	vx1, _ := m.V(vec.Vec2{X: p.X + d, Y: p.Y})
	vx0, _ := m.V(vec.Vec2{X: p.X - d, Y: p.Y})
	vy1, _ := m.V(vec.Vec2{X: p.X, Y: p.Y + d})
	vy0, _ := m.V(vec.Vec2{X: p.X, Y: p.Y - d})
	gradV := vec.Vec2{X: -(vx1 - vx0) / (2 * d), Y: -(vy1 - vy0) / (2 * d)}

	f := m.F(p)
	require.InDelta(t, f.X, gradV.X, 1e-6)
	require.InDelta(t, f.Y, gradV.Y, 1e-6)
	_ = v0
}

func TestDipoleAtOwnCenterReturnsMomentUnphysically(t *testing.T) {
	d := Dipole{X: 1, Y: 1, Px: 0.3, Py: -0.7}
	f := d.F(vec.Vec2{X: 1, Y: 1})
	require.Equal(t, d.Px, f.X)
	require.Equal(t, d.Py, f.Y)
}

func TestDipoleFieldIsSymmetricUnderMomentNegation(t *testing.T) {
	d1 := Dipole{X: 0, Y: 0, Px: 1, Py: 0}
	d2 := Dipole{X: 0, Y: 0, Px: -1, Py: 0}
	p := vec.Vec2{X: 2, Y: 3}
	f1 := d1.F(p)
	f2 := d2.F(p)
	require.InDelta(t, f1.X, -f2.X, 1e-12)
	require.InDelta(t, f1.Y, -f2.Y, 1e-12)
}

func TestHomogeneousIsConstant(t *testing.T) {
	h := Homogeneous{Fx: 1, Fy: -2}
	for _, p := range []vec.Vec2{{}, {X: 10, Y: -5}, {X: -3, Y: 4}} {
		f := h.F(p)
		require.Equal(t, 1.0, f.X)
		require.Equal(t, -2.0, f.Y)
	}
}

func TestWireAndSheetCurrentHaveNoPotential(t *testing.T) {
	w := Wire{X: 0, Y: 0, I: 1}
	_, ok := w.V(vec.Vec2{X: 1, Y: 1})
	require.False(t, ok)

	s := SheetCurrent{X0: -1, Y0: 0, X1: 1, Y1: 0, I: 1}
	_, ok = s.V(vec.Vec2{X: 0, Y: 1})
	require.False(t, ok)

	r := RingCurrent{X: 0, Y: 0, R: 1, I: 1}
	_, ok = r.V(vec.Vec2{X: 2, Y: 2})
	require.False(t, ok)
}

func TestChargedWirePotentialDecaysLogarithmically(t *testing.T) {
	w := ChargedWire{X: 0, Y: 0, Q: 1}
	v1, ok := w.V(vec.Vec2{X: 1, Y: 0})
	require.True(t, ok)
	v2, _ := w.V(vec.Vec2{X: math.E, Y: 0})
	require.InDelta(t, -1.0/(2*math.Pi), v2-v1, 1e-9)
}

func TestRingCurrentOnAxisMatchesClassicalLoopFormula(t *testing.T) {
	// Phi=0 puts the ring's axis along x; (z,0) is an on-axis point.
	rc := RingCurrent{X: 0, Y: 0, Phi: 0, R: 2, I: 3}
	z := 1.5
	f := rc.F(vec.Vec2{X: z, Y: 0})

	Rp := math.Hypot(rc.R, z)
	wantFz := rc.I * rc.R * rc.R / (2 * Rp * Rp * Rp)
	require.InDelta(t, wantFz, f.X, 1e-9)
	require.InDelta(t, 0, f.Y, 1e-9)
}

func TestChargedDiscPanicsOnDegenerateDiameter(t *testing.T) {
	d := ChargedDisc{X0: 1, Y0: 1, X1: 1, Y1: 1, Q: 1}
	require.Panics(t, func() { d.F(vec.Vec2{X: 2, Y: 2}) })
}

func TestChargedRectPanicsOnZeroLength(t *testing.T) {
	r := ChargedRect{X0: 0, Y0: 0, X1: 1, Y1: 0, Lz: 0, Q: 1}
	require.Panics(t, func() { r.F(vec.Vec2{X: 0.5, Y: 1}) })
}

func TestCustomFallsBackToFiniteDifferenceOfV(t *testing.T) {
	c := Custom{Vn: func(xy vec.Vec2) float64 { return -(xy.X*xy.X + xy.Y*xy.Y) }}
	f := c.F(vec.Vec2{X: 1, Y: 2})
	// V = -(x^2+y^2) => F = -grad V = (2x, 2y)
	require.InDelta(t, 2, f.X, 1e-4)
	require.InDelta(t, 4, f.Y, 1e-4)

	v, ok := c.V(vec.Vec2{X: 1, Y: 2})
	require.True(t, ok)
	require.InDelta(t, -5, v, 1e-12)
}

func TestCustomWithNeitherCallbackIsZero(t *testing.T) {
	c := Custom{}
	require.Equal(t, vec.Vec2{}, c.F(vec.Vec2{X: 1, Y: 1}))
	_, ok := c.V(vec.Vec2{X: 1, Y: 1})
	require.False(t, ok)
}

// numGradNegV computes -grad V of an element by central finite difference.
func numGradNegV(el Element, p vec.Vec2) vec.Vec2 {
	const d = 1e-6
	vxp, _ := el.V(vec.Vec2{X: p.X + d, Y: p.Y})
	vxm, _ := el.V(vec.Vec2{X: p.X - d, Y: p.Y})
	vyp, _ := el.V(vec.Vec2{X: p.X, Y: p.Y + d})
	vym, _ := el.V(vec.Vec2{X: p.X, Y: p.Y - d})
	return vec.Vec2{X: -(vxp - vxm) / (2 * d), Y: -(vyp - vym) / (2 * d)}
}

func TestPotentialGradientMatchesField(t *testing.T) {
	cases := []struct {
		name string
		el   Element
		p    vec.Vec2
	}{
		{"dipole2d", Dipole2D{X: 0, Y: 0, Px: 1, Py: 0.5}, vec.Vec2{X: 1.2, Y: -0.7}},
		{"quadrupole", Quadrupole{X: 0, Y: 0, Qxx: 1, Qxy: 0.2, Qyy: -1}, vec.Vec2{X: 0.8, Y: 1.1}},
		{"charged_wire", ChargedWire{X: 0.5, Y: -0.5, Q: 2}, vec.Vec2{X: 2, Y: 1}},
		{"charged_line", ChargedLine{X0: -1, Y0: 0, X1: 1, Y1: 0, Q: 1}, vec.Vec2{X: 0.4, Y: 1.3}},
		{"charged_plane", ChargedPlane{X0: -1, Y0: 0, X1: 1, Y1: 0, Q: 1}, vec.Vec2{X: 0.3, Y: 0.9}},
		{"charged_rect", ChargedRect{X0: -1, Y0: 0, X1: 1, Y1: 0, Lz: 2, Q: 1}, vec.Vec2{X: 0.2, Y: 1.4}},
		{"charged_disc", ChargedDisc{X0: -1, Y0: 0, X1: 1, Y1: 0, Q: 1}, vec.Vec2{X: 0.5, Y: 1.2}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := c.el.F(c.p)
			g := numGradNegV(c.el, c.p)
			tol := 1e-4 * math.Max(1, f.Length())
			require.InDelta(t, f.X, g.X, tol)
			require.InDelta(t, f.Y, g.Y, tol)
		})
	}
}

func TestChargedPlaneEdgeFieldStaysFinite(t *testing.T) {
	// Exactly on the plane's edge the atanh argument reaches 1; the
	// edge value comes from the atanh branch with a clamped argument,
	// large but finite.
	pl := ChargedPlane{X0: -1, Y0: 0, X1: 1, Y1: 0, Q: 1}
	f := pl.F(vec.Vec2{X: 1, Y: 0})
	require.False(t, math.IsNaN(f.X) || math.IsNaN(f.Y))
	require.False(t, math.IsInf(f.X, 0) || math.IsInf(f.Y, 0))
}

func TestDipoleFieldMirrorSymmetry(t *testing.T) {
	d := Dipole{X: 0, Y: 0, Px: 1, Py: 0}
	p := vec.Vec2{X: 0.7, Y: 0.4}
	f1 := d.F(p)
	f2 := d.F(vec.Vec2{X: p.X, Y: -p.Y})
	require.InDelta(t, f1.X, f2.X, 1e-12)
	require.InDelta(t, f1.Y, -f2.Y, 1e-12)
}

func TestCel(t *testing.T) {
	// cel(1,1,R,R) has the closed form pi*R/2 (verified analytically from
	// Bulirsch's recursion), used here as a regression check on the
	// on-axis degenerate case every ring/coil/disc evaluator relies on.
	got := cel(1, 1, 2, 2)
	require.InDelta(t, math.Pi, got, 1e-9)
}
