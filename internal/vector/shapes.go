/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "fmt"

// Shape is a region laid-out text must keep clear of, such as the round
// victory-point badge that overlaps the rules box on standard cards.
type Shape interface {
	Bounds() Rect
	// IntersectsRect reports whether the shape's interior overlaps r.
	IntersectsRect(r Rect) bool
	String() string
}

// Circle is a disc centred on C with radius Radius.
type Circle struct {
	C      Pt
	Radius float32
}

func (c Circle) Bounds() Rect {
	return Rect{X: c.C.X - c.Radius, Y: c.C.Y - c.Radius, W: 2 * c.Radius, H: 2 * c.Radius}
}

// IntersectsRect clamps the centre into r and compares the distance of the
// closest point against the radius. Touching edges do not count.
func (c Circle) IntersectsRect(r Rect) bool {
	if c.Radius <= 0 || r.Empty() {
		return false
	}
	cx := clamp(c.C.X, r.X, r.X+r.W)
	cy := clamp(c.C.Y, r.Y, r.Y+r.H)
	return hypot(c.C.X-cx, c.C.Y-cy) < c.Radius
}

func (c Circle) String() string {
	return fmt.Sprintf("circle(%.1f,%.1f r=%.1f)", c.C.X, c.C.Y, c.Radius)
}

// Box adapts a Rect to the Shape interface.
type Box struct{ Rect Rect }

func (b Box) Bounds() Rect                { return b.Rect }
func (b Box) IntersectsRect(r Rect) bool { return !b.Rect.Empty() && b.Rect.Intersects(r) }
func (b Box) String() string {
	return fmt.Sprintf("box(%.1f,%.1f %.1fx%.1f)", b.Rect.X, b.Rect.Y, b.Rect.W, b.Rect.H)
}

// AnyIntersects reports whether r overlaps any of the shapes.
func AnyIntersects(r Rect, shapes []Shape) bool {
	for _, s := range shapes {
		if s != nil && s.IntersectsRect(r) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
