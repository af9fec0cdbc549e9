/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Font resolution sits behind the Provider interface so measurement stays
// deterministic in tests and pluggable in production.

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// GoFamily is the family name under which GoFonts registers the Go fonts.
const GoFamily = "Go"

const (
	WeightRegular = 400
	WeightBold    = 700
)

// ErrFont wraps font loading and parsing failures.
var ErrFont = errors.New("font")

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	SizePt float32
	Weight int // 100..900
	Italic bool
}

// Bold reports whether the spec asks for a bold weight.
func (s FontSpec) Bold() bool { return s.Weight >= 600 }

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Height is the distance between consecutive baselines.
func (m Metrics) Height() float32 { return m.Ascent + m.Descent + m.LineGap }

// Provider maps FontSpec to a concrete font.Face. Faces returned by a
// Provider are not safe for concurrent use; each render resolves its own.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests. It
// ignores size, weight and slant.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// FontLibrary stores loaded OpenType fonts mapped by family/weight/italic.
// It is safe for concurrent use.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
}

type fontKey struct {
	family string
	weight int
	italic bool
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

// GoFonts returns a library holding the four Go font faces under GoFamily.
func GoFonts() *FontLibrary {
	fl := NewFontLibrary()
	for _, f := range []struct {
		weight int
		italic bool
		data   []byte
	}{
		{WeightRegular, false, goregular.TTF},
		{WeightBold, false, gobold.TTF},
		{WeightRegular, true, goitalic.TTF},
		{WeightBold, true, gobolditalic.TTF},
	} {
		if err := fl.LoadTTFBytes(GoFamily, f.weight, f.italic, f.data); err != nil {
			panic(err) // embedded fonts always parse
		}
	}
	return fl
}

// LoadTTF loads a font file into the library under the given family/weight/italic.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrFont, path, err)
	}
	if err := fl.LoadTTFBytes(family, weight, italic, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadTTFBytes parses font data and stores it under family/weight/italic.
func (fl *FontLibrary) LoadTTFBytes(family string, weight int, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrFont, family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	fl.fonts[fontKey{family: family, weight: weight, italic: italic}] = f
	return nil
}

// Families lists the loaded family names.
func (fl *FontLibrary) Families() []string {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for k := range fl.fonts {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	return out
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	if f, ok := fl.fonts[fontKey{family: spec.Family, weight: spec.Weight, italic: spec.Italic}]; ok {
		return f
	}
	// Same family and slant with the closest weight, then the closest weight
	// of either slant.
	var match, other *opentype.Font
	matchKey, otherKey := fontKey{weight: -1}, fontKey{weight: -1}
	for k, f := range fl.fonts {
		if k.family != spec.Family {
			continue
		}
		if k.italic == spec.Italic {
			if closer(k.weight, matchKey.weight, spec.Weight) {
				match, matchKey = f, k
			}
		} else if closer(k.weight, otherKey.weight, spec.Weight) {
			other, otherKey = f, k
		}
	}
	if match != nil {
		return match
	}
	return other
}

// closer reports whether weight w is a better match for want than cur; a
// negative cur means no candidate yet. Ties go to the lighter weight.
func closer(w, cur, want int) bool {
	if cur < 0 {
		return true
	}
	dw, dc := abs(w-want), abs(cur-want)
	return dw < dc || (dw == dc && w < cur)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
// It uses kerning as provided by opentype.Face and font.Drawer.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	if spec.Weight == 0 {
		spec.Weight = WeightRegular
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if f := p.Lib.find(spec); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(spec.SizePt), DPI: dpi, Hinting: font.HintingNone})
		if err == nil {
			return face, metricsOf(face)
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
