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

// Package fieldplot traces field lines of a 2D vector field built from
// analytically defined electromagnetic sources: monopoles, dipoles,
// quadrupoles, charged wires/lines/planes/rectangles/discs, current-carrying
// wires, ring currents, solenoid coils, homogeneous backgrounds, and user
// callbacks.
//
// A caller builds a Field from a list of Elements, optionally a Startpath to
// place seeds with density proportional to flux, and constructs a FieldLine
// per seed. FieldLine integrates the direction field with an adaptive
// fourth-order Runge-Kutta scheme, terminating gracefully at poles, field
// zeros, user stop conditions, loop closure, or its step/arc budget.
// GetPolylines cuts the integrated curve at the image bounds and converts
// each inside part into a minimal-vertex polygonal approximation meeting a
// caller-specified bending tolerance.
//
// The package renders nothing: it consumes Field and emits Polyline. Drawing
// the result (SVG/PDF paths, symbol glyphs, rasterized backgrounds) is left
// to the caller.
package fieldplot
