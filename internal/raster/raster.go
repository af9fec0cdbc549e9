/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package raster paints laid-out card text onto an image.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"cardsmith/internal/highlight"
	"cardsmith/internal/textlayout"
	"cardsmith/internal/vector"
)

// NewCanvas returns a w×h image filled with bg.
func NewCanvas(w, h int, bg vector.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg.ToRGBA()}, image.Point{}, draw.Src)
	return img
}

// Paint draws the highlight bands and then every run of tree onto dst, with
// the block's origin at origin. Each run is drawn with its own face and fill.
func Paint(dst draw.Image, origin vector.Pt, tree *textlayout.Container, bands []highlight.Span, provider textlayout.Provider) {
	if provider == nil {
		provider = textlayout.BasicProvider{}
	}
	for _, b := range bands {
		fillRect(dst, b.Rect.Translate(origin.X, origin.Y), b.Color.ToRGBA())
	}
	for _, r := range textlayout.Runs(tree) {
		drawRun(dst, origin, r, provider)
	}
}

func drawRun(dst draw.Image, origin vector.Pt, r *textlayout.TextRun, provider textlayout.Provider) {
	face, _ := provider.Resolve(r.Style.Font)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(r.Style.Fill.ToRGBA()),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(origin.X + r.X), Y: toFixed(origin.Y + r.Baseline)},
	}
	if r.Style.Tracking == 0 {
		d.DrawString(r.Text)
		return
	}
	prev := rune(-1)
	for _, c := range r.Text {
		if prev >= 0 {
			d.Dot.X += face.Kern(prev, c) + toFixed(r.Style.Tracking)
		}
		d.DrawString(string(c))
		prev = c
	}
}

func toFixed(v float32) fixed.Int26_6 { return fixed.Int26_6(math.Round(float64(v) * 64)) }

// fillRect fills r, rounded to whole pixels and clipped to dst.
func fillRect(dst draw.Image, r vector.Rect, col color.RGBA) {
	x0 := int(math.Round(float64(r.X)))
	y0 := int(math.Round(float64(r.Y)))
	x1 := int(math.Round(float64(r.X + r.W)))
	y1 := int(math.Round(float64(r.Y + r.H)))
	rect := image.Rect(x0, y0, x1, y1).Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(dst, rect, &image.Uniform{C: col}, image.Point{}, draw.Over)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
