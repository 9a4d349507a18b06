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

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Polyline is one inside-bounds run of a FieldLine's geometry, refined to
// a minimal-vertex approximation meeting a bending tolerance. Start marks
// that it began at the line's own t=0 end (rather than at a bounds
// crossing); End marks that it ran to the line's t=1 end.
type Polyline struct {
	Points []vec.Vec2
	Start  bool
	End    bool
}

// Default tolerances for GetPolylines: digits is
// the number of significant decimal digits of bending accuracy (so the
// bending tolerance is 10^-digits), maxdist bounds the maximum distance
// between consecutive polyline vertices.
const (
	DefaultDigits   = 3.8
	DefaultMaxDist  = 10.0
	polylineMinDist = 4e-4
)

// outOfBounds returns a point's signed distance to the drawing area:
// positive outside, non-positive inside. A caller-supplied BoundsFunc
// takes priority when it reports positive; bounds itself may be nil
// (unbounded).
func (fl *FieldLine) outOfBounds(p vec.Vec2, bounds *rect.Rect) float64 {
	if fl.config.BoundsFunc != nil {
		if s := fl.config.BoundsFunc(p); s > 0 {
			return s
		}
	}
	if bounds == nil {
		return -1
	}
	return maxOf(bounds.LLx-p.X, bounds.LLy-p.Y, p.X-bounds.URx, p.Y-bounds.URy)
}

// bending is the maximum perpendicular deviation, in field-line units, of
// the cubic-Hermite segment between parameters t0 and t3 from the
// straight chord p0-p3 — the geometric error metric the refiner drives to
// a target tolerance.
func (fl *FieldLine) bending(p0, p3 vec.Vec2, t0, t3 float64) float64 {
	chord := p3.Sub(p0)
	chordLen := chord.Length()
	if chordLen == 0 {
		return 0
	}

	p1 := fl.GetPosition((2*t0 + t3) / 3)
	p2 := fl.GetPosition((t0 + 2*t3) / 3)
	d1 := vcross(p1.Sub(p0), chord) / chordLen
	d2 := vcross(p2.Sub(p0), chord) / chordLen

	dsum, ddif := d1+d2, d1-d2
	if math.Abs(ddif) < 1e-5 {
		return 10.0 / 9.0 * (math.Abs(d1) + math.Abs(d2)) / 2
	}

	y := func(x float64) float64 {
		return 13.5 * x * (1 - x) * (d1*(2.0/3-x) + d2*(x-1.0/3))
	}
	xm := 0.5 + dsum/(18*ddif)
	xd := math.Sqrt(27*ddif*ddif+dsum*dsum) / (18 * ddif)
	x1, x2 := math.Min(xm+xd, xm-xd), math.Max(xm+xd, xm-xd)

	d := 0.0
	if x1 > 0 {
		d = math.Max(d, math.Abs(y(x1)))
	}
	if x2 < 1 {
		d = math.Max(d, math.Abs(y(x2)))
	}
	return d
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return out
}

// getPolyline adaptively refines the t0..t1 span of the line (which must
// contain no corner) into the minimal-vertex polyline meeting the bending
// and point-spacing tolerances, by iteratively redistributing sample
// points proportional to a per-interval "ratio" combining bend excess and
// distance excess. The convergence heuristic (exponent schedule, 1.1
// success slack, best-seen fallback after 50 tries) is deliberate:
// published diagrams depend on the exact vertex counts it chooses.
func (fl *FieldLine) getPolyline(t0, t1, digits, maxdist, mindist float64) ([]vec.Vec2, []float64) {
	tList := linspace(t0, t1, 10)
	valueList := make([]vec.Vec2, len(tList))
	for i, t := range tList {
		valueList[i] = fl.GetPosition(t)
	}

	num := 0
	numSuccess := 0
	hadSuccess := false
	const noBest = 1 << 30
	nBest := noBest
	maxdBest := math.Inf(1)
	var valueListBest []vec.Vec2
	var tListBest []float64

	for len(tList) > 2 {
		nOld := len(tList) - 1
		ratios := make([]float64, nOld)
		deltaT := make([]float64, nOld)
		success := true
		maxd := 0.0

		for i := 0; i < nOld; i++ {
			bend := fl.bending(valueList[i], valueList[i+1], tList[i], tList[i+1])
			d := valueList[i+1].Sub(valueList[i]).Length()
			maxd = math.Max(d, maxd)

			ratio := d / maxdist
			var exponent float64
			if num > 10 {
				exponent = 1.0 / float64(num-8)
			} else {
				exponent = 0.5
			}
			if bend != 0 {
				ratio = math.Max(ratio, math.Pow(bend/math.Pow(0.1, digits), exponent))
			}
			ratio = math.Min(ratio, d/mindist)
			if ratio > 1.1 {
				success = false
			}
			ratio = math.Min(math.Max(0.25, ratio), 4.0)
			ratios[i] = ratio
			deltaT[i] = tList[i+1] - tList[i]
		}
		hadSuccess = hadSuccess || success

		n := 0.0
		for _, r := range ratios {
			n += r
		}
		N := int(math.Max(1, math.Ceil(n)))
		num++
		if success {
			numSuccess++
		} else {
			numSuccess = 0
		}
		if numSuccess > 2 && N < nOld {
			numSuccess = 2
		}
		if numSuccess >= 3 {
			break
		}
		if num >= 50 {
			if valueListBest != nil {
				return valueListBest, tListBest
			}
			break
		}

		for i := range ratios {
			ratios[i] = ratios[i] * float64(N) / n
		}

		newTList := make([]float64, 0, N+1)
		newTList = append(newTList, t0)
		n0 := 0
		nt := 0.0
		n1 := 0.0
		t := t0
		for i := 0; i < nOld; i++ {
			n1 += ratios[i]
			for n1-float64(n0) >= 1.0 {
				n0++
				t += deltaT[i] * (float64(n0) - nt) / ratios[i]
				nt = float64(n0)
				if len(newTList) == N {
					break
				}
				newTList = append(newTList, t)
			}
			t += deltaT[i] * (n1 - nt) / ratios[i]
			nt = n1
		}
		newTList = append(newTList, t1)
		tList = newTList
		valueList = make([]vec.Vec2, len(tList))
		for i, tt := range tList {
			valueList[i] = fl.GetPosition(tt)
		}

		if hadSuccess {
			if success && N < nBest {
				nBest = N
				valueListBest = append([]vec.Vec2(nil), valueList...)
				tListBest = append([]float64(nil), tList...)
			}
		} else if maxd < maxdBest {
			maxdBest = maxd
			valueListBest = append([]vec.Vec2(nil), valueList...)
			tListBest = append([]float64(nil), tList...)
		}
	}
	return valueList, tList
}

type boundsEdge struct {
	t0, t1  float64
	corners []float64
}

// GetPolylines converts the line's node list into the polylines that lie
// inside bounds (nil means unbounded; combined with any BoundsFunc given
// at construction), cut at bounds crossings and at corner nodes, each
// refined to the given accuracy (digits significant bending digits,
// maxdist maximum vertex spacing).
func (fl *FieldLine) GetPolylines(digits, maxdist float64, bounds *rect.Rect) []Polyline {
	if len(fl.Nodes) <= 1 {
		return nil
	}

	var corners []float64
	for _, n := range fl.Nodes {
		if n.Corner {
			corners = append(corners, n.T)
		}
	}
	if len(corners) == 0 || corners[0] != 0 {
		corners = append([]float64{0}, corners...)
	}
	if corners[len(corners)-1] != 1 {
		corners = append(corners, 1)
	}

	var edges []boundsEdge
	inside1 := false
	t1 := 0.0
	if fl.outOfBounds(fl.Nodes[0].P, bounds) <= 0 {
		inside1 = true
		edges = append(edges, boundsEdge{t0: 0})
	}
	for i := 1; i < len(fl.Nodes); i++ {
		t0 := t1
		t1 = fl.Nodes[i].T
		p1 := fl.Nodes[i].P
		inside0 := inside1
		inside1 = fl.outOfBounds(p1, bounds) <= 0
		crossing := func() float64 {
			return brentq(func(t float64) float64 { return fl.outOfBounds(fl.GetPosition(t), bounds) }, t0, t1)
		}
		if inside1 {
			if !inside0 {
				edges = append(edges, boundsEdge{t0: crossing()})
			}
			if i == len(fl.Nodes)-1 {
				edges[len(edges)-1].t1 = 1
			}
		} else if inside0 {
			edges[len(edges)-1].t1 = crossing()
		}
	}

	if len(edges) == 0 {
		return nil
	}

	if len(edges) > 1 && edges[0].t0 == 0 && edges[len(edges)-1].t1 == 1 &&
		fl.GetPosition(1).Sub(fl.GetPosition(0)).Length() <= 1e-5 {
		edges[0].t0 = edges[len(edges)-1].t0 - 1
		edges = edges[:len(edges)-1]
	}

	for idx := range edges {
		e := &edges[idx]
		seen := make(map[float64]bool, len(corners))
		cs := make([]float64, 0, len(corners))
		for _, c := range corners {
			cc := floorMod(c-e.t0, 1) + e.t0
			if !seen[cc] {
				seen[cc] = true
				cs = append(cs, cc)
			}
		}
		sort.Float64s(cs)
		for _, c := range cs {
			if e.t0 < c && c < e.t1 {
				e.corners = append(e.corners, c)
			}
		}
	}

	var result []Polyline
	for _, e := range edges {
		tList := append([]float64{e.t0}, e.corners...)
		tList = append(tList, e.t1)

		var line []vec.Vec2
		for i := 1; i < len(tList); i++ {
			pl, _ := fl.getPolyline(tList[i-1], tList[i], digits, maxdist, polylineMinDist)
			if i == 1 {
				line = append(line, pl...)
			} else {
				line = append(line, pl[1:]...)
			}
		}
		if len(line) >= 2 {
			result = append(result, Polyline{Points: line, Start: e.t0 == 0, End: e.t1 == 1})
		}
	}
	return result
}
