/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"log/slog"
	"math"

	"cardsmith/internal/log"
	"cardsmith/internal/markup"
	"cardsmith/internal/vector"
)

const (
	DefaultShrinkStep      = 1
	DefaultMinShrinkFactor = 0.5

	maxAttempts = 512
)

// Constraint is the box a text block must fit into. Collisions are given in
// the block's coordinate space, with the origin at the box's top-left corner.
type Constraint struct {
	MaxWidth, MaxHeight float32
	Collisions          []vector.Shape
	// StartSize is the first size tried; zero uses the base style's size.
	StartSize float32
	// ShrinkStep is subtracted after each failed attempt; zero uses
	// DefaultShrinkStep.
	ShrinkStep float32
	// MinShrinkFactor sets the smallest size as a fraction of StartSize; zero
	// uses DefaultMinShrinkFactor.
	MinShrinkFactor float32
}

// Floor returns the smallest size the engine will try. It is at least 1pt
// but never above StartSize.
func (c Constraint) Floor() float32 {
	f := c.MinShrinkFactor
	if f <= 0 || f > 1 {
		f = DefaultMinShrinkFactor
	}
	return min(c.StartSize, max(1, c.StartSize*f))
}

// Block is a laid-out text block.
type Block struct {
	Tree *Container
	// Style is the base style at the chosen size.
	Style TextStyle
	Size  float32
	// Fits is false when even the floor size violated the constraint; the
	// tree is then the best-effort layout at the floor size.
	Fits     bool
	Attempts int
	Lines    int
	Width    float32
	Height   float32
}

// AutoFit lays out markup, shrinking the font until it fits the constraint.
type AutoFit struct {
	Provider Provider
	log      *slog.Logger
}

// NewAutoFit returns an engine measuring with provider; nil selects
// BasicProvider.
func NewAutoFit(provider Provider) *AutoFit {
	if provider == nil {
		provider = BasicProvider{}
	}
	return &AutoFit{Provider: provider, log: log.WithComponent("textlayout")}
}

// Layout wraps m at decreasing sizes until the block fits c or the floor size
// is reached. The floor is always attempted and always ends the search.
func (a *AutoFit) Layout(m markup.Markup, base TextStyle, c Constraint) Block {
	if c.StartSize <= 0 {
		c.StartSize = base.Font.SizePt
	}
	if c.StartSize <= 0 {
		c.StartSize = 12
	}
	step := c.ShrinkStep
	if step <= 0 {
		step = DefaultShrinkStep
	}
	floor := c.Floor()
	items := tokenize(m.Runs())

	// sizes start, start-step, ... down to the floor, which is always last
	n := int(math.Ceil(float64((c.StartSize - floor) / step)))
	if n > maxAttempts-1 {
		n = maxAttempts - 1
		step = (c.StartSize - floor) / float32(n)
	}
	n = max(n, 0)
	for i := 0; ; i++ {
		size := c.StartSize - float32(i)*step
		last := i >= n || size <= floor
		if last {
			size = floor
		}
		style := base.WithSize(size)
		fs := newFaceSet(a.Provider, style)
		lines := wrap(items, fs, c.MaxWidth)
		ok := fits(lines, fs.lineHeight(), c)
		a.log.Debug("layout attempt", slog.Float64("size", float64(size)), slog.Int("lines", len(lines)), slog.Bool("fits", ok))
		if ok || last {
			b := build(lines, fs)
			b.Size = size
			b.Fits = ok
			b.Attempts = i + 1
			if !ok {
				a.log.Warn("text does not fit at minimum size",
					slog.Float64("size", float64(size)),
					slog.Float64("height", float64(b.Height)),
					slog.Float64("max_height", float64(c.MaxHeight)),
				)
			}
			return b
		}
	}
}

// fits checks line widths, total height and collisions.
func fits(lines []line, lineHeight float32, c Constraint) bool {
	if c.MaxHeight > 0 && float32(len(lines))*lineHeight > c.MaxHeight {
		return false
	}
	for i, l := range lines {
		if c.MaxWidth > 0 && l.width > c.MaxWidth {
			return false
		}
		if l.width <= 0 {
			continue
		}
		if vector.AnyIntersects(vector.R(0, float32(i)*lineHeight, l.width, lineHeight), c.Collisions) {
			return false
		}
	}
	return true
}

// build turns wrapped lines into a node tree. Adjacent segments of the same
// style on a line become one run.
func build(lines []line, fs *faceSet) Block {
	lh := fs.lineHeight()
	root := &Container{}
	b := Block{Tree: root, Style: fs.base, Lines: len(lines)}
	id := 0
	for i, l := range lines {
		y := float32(i) * lh
		lc := &Container{Rect: vector.R(0, y, l.width, lh)}
		var run *TextRun
		var bold, italic bool
		for _, s := range l.segs {
			if run != nil && s.bold == bold && s.italic == italic {
				run.Text += s.text
				run.W += s.w
				continue
			}
			bold, italic = s.bold, s.italic
			run = &TextRun{
				ID:       id,
				Text:     s.text,
				Style:    fs.base.Styled(s.bold, s.italic),
				X:        s.x,
				Y:        y,
				W:        s.w,
				H:        fs.metrics.Ascent + fs.metrics.Descent,
				Baseline: y + fs.metrics.Ascent,
			}
			id++
			lc.Children = append(lc.Children, run)
		}
		root.Children = append(root.Children, lc)
		b.Width = max(b.Width, l.width)
	}
	b.Height = float32(len(lines)) * lh
	root.Rect = vector.R(0, 0, b.Width, b.Height)
	return b
}
