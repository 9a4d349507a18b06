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
	"github.com/rs/zerolog"
	"seehuhn.de/go/geom/vec"
)

// Field is an additive superposition of Elements. A zero-value Field has
// no elements and evaluates to zero everywhere; use NewField or append to
// Elements directly.
type Field struct {
	Elements []Element

	// Logger receives a warning for every Element whose F or V panics
	// during evaluation. The zero value is zerolog's no-op logger, so a
	// Field built without configuring one stays silent.
	Logger zerolog.Logger
}

// NewField returns a Field evaluating the given elements in the order
// given.
func NewField(elements ...Element) *Field {
	return &Field{Elements: elements, Logger: zerolog.Nop()}
}

// F returns the sum of every element's force contribution at xy. An
// element whose F panics is treated as contributing zero and is reported
// through f.Logger; the remaining elements are still evaluated.
func (f *Field) F(xy vec.Vec2) vec.Vec2 {
	var sum vec.Vec2
	for _, el := range f.Elements {
		sum = sum.Add(f.evalF(el, xy))
	}
	return sum
}

func (f *Field) evalF(el Element, xy vec.Vec2) (v vec.Vec2) {
	defer func() {
		if r := recover(); r != nil {
			logElementError(f.Logger, xy, r)
			v = vec.Vec2{}
		}
	}()
	return el.F(xy)
}

// Fn returns the unit vector along F(xy), or the zero vector if F(xy) is
// zero (e.g. on a saddle point, or when every element evaluation failed).
func (f *Field) Fn(xy vec.Vec2) vec.Vec2 {
	return vnorm(f.F(xy))
}

// V returns the sum of every element's potential contribution at xy that
// defines one, and whether at least one element contributed. Elements
// without a closed-form potential (Wire, SheetCurrent, RingCurrent, Coil)
// are skipped, not treated as zero: an all-skipped sum reports false so
// callers can distinguish "no potential defined" from "potential is 0".
func (f *Field) V(xy vec.Vec2) (float64, bool) {
	var sum float64
	any := false
	for _, el := range f.Elements {
		v, ok, evalOK := f.evalV(el, xy)
		if !evalOK {
			continue
		}
		if ok {
			sum += v
			any = true
		}
	}
	return sum, any
}

func (f *Field) evalV(el Element, xy vec.Vec2) (v float64, ok, evalOK bool) {
	defer func() {
		if r := recover(); r != nil {
			logElementError(f.Logger, xy, r)
			v, ok, evalOK = 0, false, false
		}
	}()
	v, ok = el.V(xy)
	return v, ok, true
}

// NewFieldFromLegacy builds a Field from the legacy dict-of-lists
// source encoding, one entry per element kind mapping to a list of
// parameter rows (e.g. "monopole": [[x,y,q], ...]). This exists only to
// ease migration of data serialized under the old scheme; new code should
// construct Elements directly.
func NewFieldFromLegacy(kinds map[string][][]float64) *Field {
	f := NewField()
	for kind, rows := range kinds {
		for _, row := range rows {
			el := legacyElement(kind, row)
			if el != nil {
				f.Elements = append(f.Elements, el)
			}
		}
	}
	return f
}

func legacyElement(kind string, p []float64) Element {
	get := func(i int) float64 {
		if i < len(p) {
			return p[i]
		}
		return 0
	}
	switch kind {
	case "homogeneous":
		return Homogeneous{Fx: get(0), Fy: get(1)}
	case "monopole":
		return Monopole{X: get(0), Y: get(1), Q: get(2)}
	case "dipole":
		return Dipole{X: get(0), Y: get(1), Px: get(2), Py: get(3)}
	case "dipole2d":
		return Dipole2D{X: get(0), Y: get(1), Px: get(2), Py: get(3)}
	case "quadrupole":
		return Quadrupole{X: get(0), Y: get(1), Qxx: get(2), Qxy: get(3), Qyy: get(4)}
	case "wire":
		return Wire{X: get(0), Y: get(1), I: get(2)}
	case "charged_wire":
		return ChargedWire{X: get(0), Y: get(1), Q: get(2)}
	case "charged_line":
		return ChargedLine{X0: get(0), Y0: get(1), X1: get(2), Y1: get(3), Q: get(4)}
	case "charged_plane":
		return ChargedPlane{X0: get(0), Y0: get(1), X1: get(2), Y1: get(3), Q: get(4)}
	case "charged_rect":
		return ChargedRect{X0: get(0), Y0: get(1), X1: get(2), Y1: get(3), Lz: get(4), Q: get(5)}
	case "charged_disc":
		return ChargedDisc{X0: get(0), Y0: get(1), X1: get(2), Y1: get(3), Q: get(4)}
	case "sheetcurrent":
		return SheetCurrent{X0: get(0), Y0: get(1), X1: get(2), Y1: get(3), I: get(4)}
	case "ringcurrent":
		return RingCurrent{X: get(0), Y: get(1), Phi: get(2), R: get(3), I: get(4)}
	case "coil":
		return Coil{X: get(0), Y: get(1), Phi: get(2), R: get(3), Lhalf: get(4), I: get(5)}
	default:
		return nil
	}
}
