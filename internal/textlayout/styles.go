/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "cardsmith/internal/vector"

// TextStyle represents a reusable text style preset combining a font spec
// with fill colour and spacing. Tracking and Leading are measured in pixels.
//
// Kerning is applied by the text engine (font.Drawer / Face.Kern) and is
// always on.
type TextStyle struct {
	Name     string
	Font     FontSpec
	Fill     vector.Color
	Tracking float32 // px between glyphs (added per inter-glyph gap)
	Leading  float32 // extra px added to line height
}

// WithSize returns a copy of s at size pt.
func (s TextStyle) WithSize(pt float32) TextStyle {
	s.Font.SizePt = pt
	return s
}

// WithFill returns a copy of s painted with c.
func (s TextStyle) WithFill(c vector.Color) TextStyle {
	s.Fill = c
	return s
}

// Styled returns a copy of s with bold and italic applied on top of its own
// weight and slant.
func (s TextStyle) Styled(bold, italic bool) TextStyle {
	if bold && s.Font.Weight < WeightBold {
		s.Font.Weight = WeightBold
	}
	if italic {
		s.Font.Italic = true
	}
	return s
}

var builtinStyles = map[string]TextStyle{
	// Sizes are starting sizes in points; the rules box shrinks from there.
	"Rules": {
		Name: "Rules",
		Font: FontSpec{Family: GoFamily, SizePt: 44, Weight: WeightRegular},
		Fill: vector.Black,
	},
	"RulesInverse": {
		Name: "RulesInverse",
		Font: FontSpec{Family: GoFamily, SizePt: 44, Weight: WeightRegular},
		Fill: vector.White,
	},
	"Flavor": {
		Name:    "Flavor",
		Font:    FontSpec{Family: GoFamily, SizePt: 30, Weight: WeightRegular, Italic: true},
		Fill:    vector.Black,
		Leading: 2,
	},
	"Title": {
		Name:     "Title",
		Font:     FontSpec{Family: GoFamily, SizePt: 56, Weight: WeightBold},
		Fill:     vector.Black,
		Tracking: 0.5,
	},
}

// GetStyle returns a builtin style preset by name. The second return value is false if
// the style is not found.
func GetStyle(name string) (TextStyle, bool) { s, ok := builtinStyles[name]; return s, ok }

// ListStyles lists the names of the builtin styles in stable order.
func ListStyles() []string {
	return []string{"Rules", "RulesInverse", "Flavor", "Title"}
}
