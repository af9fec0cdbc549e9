/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestOTProvider_Fallback(t *testing.T) {
	// No fonts loaded but resolve should work via fallback
	otp := OTProvider{Lib: NewFontLibrary()}
	w, h := Measure(otp, parse(t, "Hello"), TextStyle{Font: FontSpec{Family: "Nonexistent", SizePt: 12}})
	if w <= 0 || h <= 0 {
		t.Fatalf("expected positive measure with fallback: w=%v h=%v", w, h)
	}
}

func TestGoFontsScaleWithSize(t *testing.T) {
	p := OTProvider{Lib: GoFonts()}
	small, hs := Measure(p, parse(t, "Attack"), TextStyle{Font: FontSpec{Family: GoFamily, SizePt: 20}})
	large, hl := Measure(p, parse(t, "Attack"), TextStyle{Font: FontSpec{Family: GoFamily, SizePt: 40}})
	if !(large > small) || !(hl > hs) {
		t.Fatalf("expected larger size to measure larger: %v/%v %v/%v", small, large, hs, hl)
	}
	regular, _ := Measure(p, parse(t, "Attack"), TextStyle{Font: FontSpec{Family: GoFamily, SizePt: 40}})
	bold, _ := Measure(p, parse(t, "[b]Attack[/b]"), TextStyle{Font: FontSpec{Family: GoFamily, SizePt: 40}})
	if regular == bold {
		t.Fatalf("bold should resolve a different face")
	}
}

func TestTrackingIncreasesWidth(t *testing.T) {
	w0, _ := Measure(BasicProvider{}, parse(t, "ABCD"), TextStyle{})
	w1, _ := Measure(BasicProvider{}, parse(t, "ABCD"), TextStyle{Tracking: 1})
	if w1 != w0+3 {
		t.Fatalf("expected tracking to add 3px: w0=%v w1=%v", w0, w1)
	}
}

func TestLeadingIncreasesHeight(t *testing.T) {
	_, h0 := Measure(BasicProvider{}, parse(t, "Hello"), TextStyle{})
	_, h1 := Measure(BasicProvider{}, parse(t, "Hello"), TextStyle{Leading: 4})
	if h1 != h0+4 {
		t.Fatalf("expected leading to add 4px: h0=%v h1=%v", h0, h1)
	}
}

func TestFontLibraryClosestWeight(t *testing.T) {
	fl := NewFontLibrary()
	if err := fl.LoadTTFBytes("X", 300, false, goregular.TTF); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := fl.LoadTTFBytes("X", 800, false, goregular.TTF); err != nil {
		t.Fatalf("load: %v", err)
	}
	light := fl.find(FontSpec{Family: "X", Weight: 300})
	heavy := fl.find(FontSpec{Family: "X", Weight: 800})
	if got := fl.find(FontSpec{Family: "X", Weight: 700}); got != heavy {
		t.Fatalf("700 should resolve to the 800 face")
	}
	if got := fl.find(FontSpec{Family: "X", Weight: 400, Italic: true}); got != light {
		t.Fatalf("italic request should fall back to the closest upright weight")
	}
	if fl.find(FontSpec{Family: "Y"}) != nil {
		t.Fatalf("unknown family should not resolve")
	}
}

func TestFontLibraryLoadErrors(t *testing.T) {
	fl := NewFontLibrary()
	if err := fl.LoadTTF("X", 400, false, filepath.Join(t.TempDir(), "missing.ttf")); !errors.Is(err, ErrFont) {
		t.Fatalf("expected ErrFont for a missing file, got %v", err)
	}
	p := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(p, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fl.LoadTTF("X", 400, false, p); !errors.Is(err, ErrFont) {
		t.Fatalf("expected ErrFont for garbage, got %v", err)
	}
}
