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
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"seehuhn.de/go/geom/vec"
)

// StartpathConfig carries Startpath's optional tuning knobs. The zero
// value selects FMax=1e4 and no rescaling.
type StartpathConfig struct {
	// FMax clips the field magnitude used for flux weighting, so a field
	// line source lying on the path doesn't starve every other region of
	// seed points. Zero selects the default of 1e4.
	FMax float64

	// FRescale, if set, replaces the field magnitude Fabs at each sample
	// with FRescale(Fabs) before the FMax clip, e.g. to seed lines by
	// log(|F|) rather than |F| itself.
	FRescale func(fabs float64) float64
}

// Startpath is a parametric curve on which field lines are seeded, with
// point density along the curve made proportional to the field strength
// crossing it: startpos(s) returns the point at which a fraction s of the
// cumulative flux through the path has been swept.
type Startpath struct {
	field    *Field
	path     func(t float64) vec.Vec2
	t0, t1   float64
	fMax     float64
	fRescale func(float64) float64
	spline   interp.NaturalCubic
}

// NewStartpath builds a Startpath over path(t0)..path(t1). It panics if
// t1 <= t0: the parametrization direction is meaningful (it fixes which
// end corresponds to s=0) and a degenerate range is a caller bug, not a
// recoverable runtime condition.
func NewStartpath(field *Field, path func(t float64) vec.Vec2, t0, t1 float64, cfg StartpathConfig) *Startpath {
	if t1 <= t0 {
		panic(fmt.Sprintf("fieldplot: Startpath requires t1 > t0, got t0=%v t1=%v", t0, t1))
	}
	if cfg.FMax == 0 {
		cfg.FMax = 1e4
	}
	sp := &Startpath{
		field:    field,
		path:     path,
		t0:       t0,
		t1:       t1,
		fMax:     cfg.FMax,
		fRescale: cfg.FRescale,
	}
	sp.fit()
	return sp
}

func clip(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

// dpath is the central-difference derivative of the path, one-sided at
// the path's own endpoints.
func (sp *Startpath) dpath(t float64) vec.Vec2 {
	trange := sp.t1 - sp.t0
	dt := trange * 1e-6
	tm := clip(t-dt, sp.t0, sp.t1)
	tp := clip(t+dt, sp.t0, sp.t1)
	return sp.path(tp).Sub(sp.path(tm)).Mul(1 / (tp - tm))
}

// fieldAlongPath is the flux density crossing the path at t: the
// component of the (optionally rescaled and clipped) field normal to the
// path's own tangent there.
func (sp *Startpath) fieldAlongPath(t float64) float64 {
	f := sp.field.F(sp.path(t))
	if sp.fRescale != nil {
		if fabs := f.Length(); fabs != 0 {
			f = f.Mul(sp.fRescale(fabs) / fabs)
		}
	}
	if fabs := f.Length(); fabs > sp.fMax {
		f = f.Mul(sp.fMax / fabs)
	}
	return math.Abs(vcross(f, sp.dpath(t)))
}

func insertAt(s []float64, i int, v float64) []float64 {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// fit builds the map from normalized cumulative flux to path parameter:
// it samples fieldAlongPath over an initial grid, bisects wherever the
// flux or the path position changes too abruptly between neighboring
// samples, integrates the refined samples trapezoidally, and fits a cubic
// spline from normalized cumulative flux back to t.
func (sp *Startpath) fit() {
	const nInit = 201
	tList := linspace(sp.t0, sp.t1, nInit)
	fList := make([]float64, len(tList))
	pList := make([]vec.Vec2, len(tList))
	headOn := 0.0
	for i, t := range tList {
		fList[i] = sp.fieldAlongPath(t)
		pList[i] = sp.path(t)
		// flux rate the (rescaled, clipped) field would give crossing the
		// path head-on, the scale against which a zero total is judged
		fabs := sp.field.F(pList[i]).Length()
		if sp.fRescale != nil && fabs != 0 {
			fabs = math.Abs(sp.fRescale(fabs))
		}
		headOn = math.Max(headOn, math.Min(fabs, sp.fMax)*sp.dpath(t).Length())
	}

	pathlen := 0.0
	for i := 1; i < len(pList); i++ {
		pathlen += pList[i].Sub(pList[i-1]).Length()
	}
	fMax := floats.Max(fList)

	trange := sp.t1 - sp.t0
	i := 1
	for i < len(tList) {
		tdifTooSmall := (tList[i] - tList[i-1]) < 1e-6*trange
		fdifLarge := math.Abs(fList[i]-fList[i-1]) > 0.01*fMax
		distLarge := sp.path(tList[i]).Sub(sp.path(tList[i-1])).Length() > 1e-3*pathlen
		if !tdifTooSmall && (fdifLarge || distLarge) {
			tmean := (tList[i-1] + tList[i]) / 2
			tList = insertAt(tList, i, tmean)
			fList = insertAt(fList, i, sp.fieldAlongPath(tmean))
		} else {
			i++
		}
	}

	fSum := make([]float64, len(tList))
	for i := 1; i < len(tList); i++ {
		fSum[i] = (tList[i] - tList[i-1]) * (fList[i-1] + fList[i]) / 2
	}
	floats.CumSum(fSum, fSum)
	total := fSum[len(fSum)-1]
	if total <= 1e-9*headOn*trange {
		// no flux crosses the path beyond rounding noise (e.g. a path
		// running along a field line); fall back to uniform spacing in t
		for i, tt := range tList {
			fSum[i] = (tt - sp.t0) / (sp.t1 - sp.t0)
		}
		total = 1
	}

	xs := make([]float64, 0, len(fSum))
	ys := make([]float64, 0, len(fSum))
	for i, v := range fSum {
		x := v / total
		if len(xs) > 0 && x <= xs[len(xs)-1] {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, tList[i])
	}

	var pc interp.NaturalCubic
	if err := pc.Fit(xs, ys); err != nil {
		panic("fieldplot: Startpath spline fit failed: " + err.Error())
	}
	sp.spline = pc
}

// Startpos returns the point on the path at which a fraction s (0<=s<=1)
// of the path's cumulative flux has been swept.
func (sp *Startpath) Startpos(s float64) vec.Vec2 {
	return sp.path(sp.spline.Predict(s))
}

// StartposMany is Startpos applied to each element of s.
func (sp *Startpath) StartposMany(s []float64) []vec.Vec2 {
	out := make([]vec.Vec2, len(s))
	for i, si := range s {
		out[i] = sp.Startpos(si)
	}
	return out
}

// Npoints returns n start positions with equal flux between consecutive
// points, centered within each of n equal flux intervals.
func (sp *Startpath) Npoints(n int) []vec.Vec2 {
	out := make([]vec.Vec2, n)
	for i := 0; i < n; i++ {
		out[i] = sp.Startpos((float64(i) + 0.5) / float64(n))
	}
	return out
}
