/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestRectUnionIgnoresEmpty(t *testing.T) {
	a := R(0, 10, 20, 5)
	if got := (Rect{}).Union(a); got != a {
		t.Fatalf("union with empty should return other rect, got %+v", got)
	}
	b := R(5, 0, 30, 5)
	u := a.Union(b)
	if u.X != 0 || u.Y != 0 || u.W != 35 || u.H != 15 {
		t.Fatalf("unexpected union: %+v", u)
	}
}

func TestRectIntersection(t *testing.T) {
	a := R(0, 0, 10, 10)
	b := R(5, 5, 10, 10)
	if !a.Intersects(b) {
		t.Fatalf("expected overlap")
	}
	if got := a.Intersection(b); got != R(5, 5, 5, 5) {
		t.Fatalf("unexpected intersection: %+v", got)
	}
	if a.Intersects(R(10, 0, 5, 5)) {
		t.Fatalf("touching edges must not intersect")
	}
}

func TestParseHex(t *testing.T) {
	cases := map[string]Color{
		"#e1b327":  {0xe1, 0xb3, 0x27, 255},
		"a1dfff":   {0xa1, 0xdf, 0xff, 255},
		"0x000000": Black,
		"#fff":     White,
	}
	for in, want := range cases {
		got, err := ParseHex(in)
		if err != nil {
			t.Fatalf("ParseHex(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseHex(%q) = %+v, want %+v", in, got, want)
		}
	}
	if _, err := ParseHex("#12"); err == nil {
		t.Fatalf("expected error for short color")
	}
	if RGB(0xe1b327).Hex() != "#e1b327" {
		t.Fatalf("hex round trip mismatch: %s", RGB(0xe1b327).Hex())
	}
}
