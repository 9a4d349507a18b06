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

	"github.com/rs/zerolog"
	"seehuhn.de/go/geom/vec"
)

// Direction selects which way(s) a FieldLine integrates from its seed.
type Direction int

const (
	Forward Direction = iota
	Backward
	Both
)

// TerminationReason records why a FieldLine's integration stopped. Every
// value is a normal outcome, not an error: the caller always receives a
// well-formed node list.
type TerminationReason string

const (
	TerminationClosed       TerminationReason = "closed"
	TerminationPoleAbsorbed TerminationReason = "pole_absorbed"
	TerminationEndEdge      TerminationReason = "end_edge"
	TerminationStopped      TerminationReason = "stopped"
	TerminationZeroField    TerminationReason = "zero_field"
	TerminationStall        TerminationReason = "stall"
	TerminationStepBudget   TerminationReason = "step_budget"
	TerminationArcBudget    TerminationReason = "arc_budget"
)

// FieldLineConfig configures FieldLine construction. The zero value
// applies the documented defaults below in NewFieldLine.
type FieldLineConfig struct {
	// StartV, if non-nil, fixes the initial tangent direction instead of
	// deriving it from the field at StartP.
	StartV *vec.Vec2

	// StartD, if non-nil, marks StartP as sitting exactly on a dipole and
	// gives the initial displacement (slope to x=1) used to step off it.
	StartD *vec.Vec2

	Direction Direction

	// MaxN bounds the number of integration steps. Zero means 1000.
	MaxN int
	// MaxR bounds the cumulative arc length traveled. Zero means 300.
	MaxR float64
	// HMax bounds the step size. Zero means 1.
	HMax float64
	// PassDipoles is how many dipole singularities the line may pass
	// through before stopping; -1 means unlimited.
	PassDipoles int
	// PathCloseTol is the position tolerance for loop-closure detection.
	// Zero means 5e-3.
	PathCloseTol float64

	// BoundsFunc, if non-nil, adds additional truncation bounds beyond
	// those given to GetPolylines: positive where the line should be
	// considered out of bounds.
	BoundsFunc func(vec.Vec2) float64
	// StopFuncs[0] applies to backward integration, StopFuncs[1] to
	// forward: integration halts immediately where the respective
	// function is positive.
	StopFuncs [2]func(vec.Vec2) float64

	// Logger receives diagnostic events (closed/corner/stopped/budget
	// exceeded/...). Nil means silent.
	Logger *zerolog.Logger
}

// FieldLine is an integrated field line: the result of tracing the
// direction field F/|F| from a seed point until it closes, reaches a
// pole, crosses a stop boundary, or exhausts its step/arc budget.
// Construction performs the full integration; Nodes is immutable
// afterward.
type FieldLine struct {
	field  *Field
	config FieldLineConfig
	logger zerolog.Logger

	firstPoint vec.Vec2

	Nodes       []Node
	Termination TerminationReason
}

const (
	integratorErr         = 4e-8
	integratorCornerLimit = 1e4
)

// NewFieldLine constructs and fully integrates a field line starting at
// startP. See FieldLineConfig for the tunable parameters and their
// defaults.
func NewFieldLine(field *Field, startP vec.Vec2, cfg FieldLineConfig) *FieldLine {
	if cfg.MaxN == 0 {
		cfg.MaxN = 1000
	}
	if cfg.MaxR == 0 {
		cfg.MaxR = 300
	}
	if cfg.HMax == 0 {
		cfg.HMax = 1
	}
	if cfg.PathCloseTol == 0 {
		cfg.PathCloseTol = 5e-3
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	fl := &FieldLine{
		field:      field,
		config:     cfg,
		logger:     logger,
		firstPoint: startP,
	}
	fl.createNodes(startP)
	return fl
}

func (fl *FieldLine) stopFuncFor(sign float64) func(vec.Vec2) float64 {
	if sign < 0 {
		return fl.config.StopFuncs[0]
	}
	return fl.config.StopFuncs[1]
}

// createNodes builds fl.Nodes from one or two one-sided integrations,
// normalizes cumulative arc length, and records the termination reason of
// whichever part defined the line's end (forward, or the combined both
// case where the forward half is what actually stops).
func (fl *FieldLine) createNodes(startP vec.Vec2) {
	switch fl.config.Direction {
	case Forward:
		nodes, term := fl.createNodesPart(startP, 1)
		fl.Nodes = nodes
		fl.Termination = term
	default:
		nodes1, term1 := fl.createNodesPart(startP, -1)
		reverseAndFlip(nodes1)
		fl.Nodes = nodes1
		if len(fl.Nodes) > 0 {
			fl.firstPoint = fl.Nodes[0].P
		}
		fl.Termination = term1
		if fl.config.Direction != Backward {
			if !isLoop(fl.Nodes, fl.config.PathCloseTol) {
				nodes2, term2 := fl.createNodesPart(startP, 1)
				fl.Nodes[len(fl.Nodes)-1].VOut = nodes2[0].VOut
				fl.Nodes = append(fl.Nodes, nodes2[1:]...)
				fl.Termination = term2
			}
		}
	}

	normalizeArcLength(fl.Nodes)
}

// reverseAndFlip reverses nodes in place and swaps each node's VIn/VOut
// (negated), turning a sign=-1 (backward) integration into the forward
// half of the same physical line traversed in the opposite order.
func reverseAndFlip(nodes []Node) {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i := range nodes {
		vIn, vOut := nodes[i].VIn, nodes[i].VOut
		if vIn == nil {
			nodes[i].VOut = nil
		} else {
			neg := vIn.Mul(-1)
			nodes[i].VOut = &neg
		}
		if vOut == nil {
			nodes[i].VIn = nil
		} else {
			neg := vOut.Mul(-1)
			nodes[i].VIn = &neg
		}
	}
}

// rkStep performs one fourth-order Runge-Kutta step from p with tangent v
// under direction field f, step size h, returning the new position and a
// per-substep velocity-change error estimate used for step-size control.
func rkStep(p, v vec.Vec2, f func(vec.Vec2) vec.Vec2, h float64) (vec.Vec2, float64) {
	k1 := v.Mul(h)
	v2 := f(p.Add(k1.Mul(0.5)))
	k2 := v2.Mul(h)
	v3 := f(p.Add(k2.Mul(0.5)))
	k3 := v3.Mul(h)
	v4 := f(p.Add(k3))
	k4 := v4.Mul(h)

	p1 := p.Add(k1.Add(k2.Add(k3).Mul(2)).Add(k4).Mul(1.0 / 6.0))

	verr := maxOf(v.Sub(v2).Length(), v.Sub(v3).Length(), v.Sub(v4).Length(),
		v2.Sub(v3).Length(), v3.Sub(v4).Length(), v4.Sub(v2).Length())
	return p1, verr
}

func maxOf(xs ...float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// createNodesPart integrates from startP to one end of the line, sign=+1
// for forward, sign=-1 for backward.
func (fl *FieldLine) createNodesPart(startP vec.Vec2, sign float64) ([]Node, TerminationReason) {
	err := integratorErr
	xtol := 20 * err
	ytol := fl.config.PathCloseTol

	f := func(r vec.Vec2) vec.Vec2 {
		n := fl.field.Fn(r)
		if sign < 0 {
			return n.Mul(-1)
		}
		return n
	}

	p := startP
	var v vec.Vec2
	if fl.config.StartV != nil {
		v = vnorm(*fl.config.StartV).Mul(sign)
	} else {
		v = f(p)
	}

	nodes := []Node{{P: p}}

	h := (math.Sqrt(5) - 1) / 10
	hOld := h
	l := 0.0
	i := 0

	for i < fl.config.MaxN && l < fl.config.MaxR {
		i++
		doStep := true

		switch {
		case len(nodes) == 1 && fl.config.StartD != nil:
			d := *fl.config.StartD
			h = d.Length()
			p = p.Add(d)
			v = f(p)
			outv := vnorm(vnorm(d).Mul(2).Sub(v)).Mul(h)
			nodes[len(nodes)-1].VOut = &outv
			inv := v.Mul(h)
			nodes = append(nodes, Node{P: p, VIn: &inv})

		case len(nodes) > 1:
			np := nearestPoleTo(fl.field, fl.firstPoint, p, v)
			vpole := np.xy.Sub(p)
			dpole := vpole.Length()
			if dpole != 0 {
				vpole = vpole.Mul(1 / dpole)
			}
			cv := cosv(v, vpole)
			sv := sinv(v, vpole)

			if (dpole < 0.1 || h >= dpole) && (cv > 0.9 || dpole < ytol) {
				if np.kind == poleStart {
					if dpole*math.Abs(sv) < ytol && dpole*math.Abs(cv) < xtol && l > 1e-3 {
						nodes[len(nodes)-1].VOut = nil
						logEvent(fl.logger, EventClosed, p, "")
						return nodes, TerminationClosed
					} else if h > 0.99*dpole && (cv > 0.9 || (cv > 0 && dpole*math.Abs(sv) < ytol)) {
						h = math.Max(4*err, dpole*cv*math.Max(0.9, 1-0.1*dpole*cv))
					}
				}

				if np.kind == poleMonopole && dpole < 0.01 && cv > 0.996 {
					outv := vnorm(v).Mul(dpole)
					nodes[len(nodes)-1].VOut = &outv
					v = vnorm(vnorm(vpole).Mul(1.5).Sub(vnorm(outv).Mul(0.5)))
					inv := v.Mul(dpole)
					nodes = append(nodes, Node{P: np.xy, VIn: &inv})
					l += h
					logEvent(fl.logger, EventPoleAbsorbed, np.xy, "monopole")
					return nodes, TerminationPoleAbsorbed
				}

				if np.kind == poleDipole && dpole < 0.01 && cv > 0.996 {
					m := vnorm(np.mom).Mul(sign)
					p = nodes[len(nodes)-1].P.Add(m.Mul(2 * vdot(m, vpole) * dpole))
					outv := vnorm(v).Mul(2 * dpole)
					nodes[len(nodes)-1].VOut = &outv
					var zIn, zOut vec.Vec2
					nodes = append(nodes, Node{P: np.xy, VIn: &zIn, VOut: &zOut})
					l += h

					vEnd := fl.firstPoint.Sub(p)
					if dpole*math.Abs(sinv(v, vEnd)) < ytol && dpole*math.Abs(cosv(v, vEnd)) < xtol && l > 1e-3 {
						nodes[len(nodes)-1].VOut = nil
						logEvent(fl.logger, EventClosed, p, "through dipole")
						return nodes, TerminationClosed
					}
					if fl.config.PassDipoles == 0 {
						nodes[len(nodes)-1].VOut = nil
						logEvent(fl.logger, EventPoleAbsorbed, np.xy, "dipole")
						return nodes, TerminationPoleAbsorbed
					}
					if fl.config.PassDipoles > 0 {
						fl.config.PassDipoles--
					}
					v = f(p)
					inv2 := vnorm(v).Mul(2 * dpole)
					nodes = append(nodes, Node{P: p, VIn: &inv2})
					l += h
					doStep = false
				}
			} else if h < 0.01 {
				hh := h * 3
				v0 := f(p.Add(v.Mul(hh / 2)))
				v1 := f(p.Add(v.Mul(hh)))
				a0 := angleDif(angle(v), angle(v0))
				a1 := angleDif(angle(v0), angle(v1))
				adif := angleDif(a0, a1)

				if math.Abs(adif)/(hh*hh) > integratorCornerLimit {
					var h0, h1 float64
					var vm vec.Vec2
					if math.Abs(a0) >= math.Abs(a1) {
						h0, h1 = 0, hh/2
						vm = vnorm(vnorm(v).Add(vnorm(v0)))
					} else {
						h0, h1 = hh/2, hh
						vm = vnorm(vnorm(v0).Add(vnorm(v1)))
					}
					if vm.Length() == 0 {
						vm = vnorm(vec.Vec2{X: v0.Y, Y: -v0.X})
					}

					hc, v2 := findCorner(f, p, v, vm, h0, h1)
					outv := vnorm(*nodes[len(nodes)-1].VIn).Mul(hc)
					nodes[len(nodes)-1].VOut = &outv

					p = p.Add(v2.Mul(hc))
					logEvent(fl.logger, EventCorner, p, "")
					v = vnorm(v2.Mul(2).Sub(v))
					inv := v.Mul(hc)
					nodes = append(nodes, Node{P: p, VIn: &inv, Corner: true})
					l += h

					vEnd := fl.firstPoint.Sub(p)
					if dpole*math.Abs(sinv(v, vEnd)) < ytol && dpole*math.Abs(cosv(v, vEnd)) < xtol && l > 1e-3 {
						nodes[len(nodes)-1].VOut = nil
						logEvent(fl.logger, EventClosed, p, "at corner")
						return nodes, TerminationClosed
					}

					p0 := p.Add(f(p.Add(v1.Mul(hh * 0.2))).Mul(hh * 0.2))
					va0 := f(p0)
					p1 := p0.Add(va0.Mul(hh * 0.4))
					va1 := f(p1)
					p2 := p1.Add(va1.Mul(hh * 0.4))
					va2 := f(p2)
					b0 := angleDif(angle(va0), angle(va1))
					b1 := angleDif(angle(va1), angle(va2))
					bdif := angleDif(b0, b1)
					if math.Abs(bdif)/((0.8*hh)*(0.8*hh)) > integratorCornerLimit ||
						math.Abs(b0)+math.Abs(b1) >= math.Pi/2 {
						nodes[len(nodes)-1].VOut = nil
						logEvent(fl.logger, EventEndEdge, p, "")
						return nodes, TerminationEndEdge
					}

					vm2 := vnorm(va1.Mul(1.25).Sub(va2.Mul(0.25)))
					v = f(p.Add(vm2.Mul(hh)))
					outv2 := vnorm(vm2.Mul(2).Sub(v)).Mul(hh)
					nodes[len(nodes)-1].VOut = &outv2
					p = p.Add(vm2.Mul(hh))
					inv3 := v.Mul(hh)
					nodes = append(nodes, Node{P: p, VIn: &inv3})
					l += h
				}
			}
		}

		if !doStep {
			continue
		}

		p11, e11 := rkStep(p, v, f, h)
		p21, e21 := rkStep(p, v, f, h/2)
		p22, e22 := rkStep(p21, f(p21), f, h/2)
		rkvErr := maxOf(e11, e21, e22)
		diff := p22.Sub(p11).Length()

		if diff < 2*err && rkvErr < 0.1 {
			p = p22.Mul(16).Sub(p11).Mul(1.0 / 15.0)
			outv := vnorm(v).Mul(h)
			nodes[len(nodes)-1].VOut = &outv
			v = f(p)
			if v.Length() == 0 {
				nodes[len(nodes)-1].VOut = nil
				return nodes, TerminationZeroField
			}
			if len(nodes) >= 2 && nodes[len(nodes)-1].P.Sub(nodes[len(nodes)-2].P).Length() == 0 {
				if h > 2*err {
					h /= 7
				} else {
					nodes = nodes[:len(nodes)-1]
					nodes[len(nodes)-1].VOut = nil
					return nodes, TerminationStall
				}
			}
			inv := v.Mul(h)
			nodes = append(nodes, Node{P: p, VIn: &inv})
			l += h
		}

		if sf := fl.stopFuncFor(sign); sf != nil && sf(nodes[len(nodes)-1].P) > 0 {
			for len(nodes) > 1 && sf(nodes[len(nodes)-2].P) > 0 {
				nodes = nodes[:len(nodes)-1]
			}
			if len(nodes) > 1 {
				pp := nodes[len(nodes)-2].P
				p1 := nodes[len(nodes)-1].P
				t := brentq(func(t float64) float64 { return sf(pp.Add(p1.Sub(pp).Mul(t))) }, 0, 1)
				newp := pp.Add(p1.Sub(pp).Mul(t))
				nodes[len(nodes)-1].P = newp
				hNew := newp.Sub(pp).Length()
				outv := f(pp).Mul(hNew)
				nodes[len(nodes)-2].VOut = &outv
				inv := f(newp).Mul(hNew)
				nodes[len(nodes)-1].VIn = &inv
				h = hNew
			}
			logEvent(fl.logger, EventStopped, nodes[len(nodes)-1].P, "")
			return nodes, TerminationStopped
		}

		if rkvErr >= 0.1 {
			h = 0.5 * h
		} else if diff > 0 {
			factor := math.Pow(err/diff, 0.25)
			var hNew float64
			if h < hOld {
				hNew = math.Min((h+hOld)/2, h*factor)
			} else {
				hNew = h * math.Max(0.5, factor)
			}
			hOld = h
			h = hNew
		} else {
			hOld = h
			h *= 2
		}
		h = math.Max(err, h)
		h = math.Min(fl.config.HMax, h)
	}

	nodes[len(nodes)-1].VOut = nil
	if i == fl.config.MaxN {
		logEvent(fl.logger, EventStepBudget, p, "")
		return nodes, TerminationStepBudget
	}
	logEvent(fl.logger, EventArcBudget, p, "")
	return nodes, TerminationArcBudget
}

// GetPosition evaluates the line's cubic-Hermite dense output at
// parameter t (wrapped modulo 1 outside [0,1]).
func (fl *FieldLine) GetPosition(t float64) vec.Vec2 {
	if len(fl.Nodes) == 0 {
		return vec.Vec2{}
	}
	return getPosition(fl.Nodes, t)
}
