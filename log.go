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

// EventKind identifies an extraordinary, but normal, tracing event.
// Every termination reason a FieldLine can reach except a zero field and a
// position stall, plus corners and per-element evaluator failures, is
// reported through a diagnostic sink rather than written to stdout; the
// reason itself is always recorded in FieldLine.Termination.
type EventKind string

const (
	EventClosed        EventKind = "closed"
	EventPoleAbsorbed  EventKind = "pole_absorbed"
	EventCorner        EventKind = "corner"
	EventEndEdge       EventKind = "end_edge"
	EventStopped       EventKind = "stopped"
	EventStepBudget    EventKind = "step_budget_exceeded"
	EventArcBudget     EventKind = "arc_budget_exceeded"
	EventElementFailed EventKind = "element_evaluation_failed"
)

// logEvent writes a single diagnostic event to logger at info level,
// tagging it with its kind and the position at which it occurred.
func logEvent(logger zerolog.Logger, kind EventKind, p vec.Vec2, detail string) {
	ev := logger.Info().Str("event", string(kind)).Float64("x", p.X).Float64("y", p.Y)
	if detail != "" {
		ev = ev.Str("detail", detail)
	}
	ev.Msg(string(kind))
}

// logElementError reports a recovered panic from a single Element's F or
// V evaluation. The field sums the remaining elements' contributions
// unaffected: one ill-defined source must not abort the whole trace.
func logElementError(logger zerolog.Logger, xy vec.Vec2, err any) {
	logger.Warn().
		Str("event", string(EventElementFailed)).
		Float64("x", xy.X).Float64("y", xy.Y).
		Interface("panic", err).
		Msg("field element evaluation failed; treated as zero contribution")
}
