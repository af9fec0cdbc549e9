/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"unicode/utf8"

	"golang.org/x/image/font"

	"cardsmith/internal/markup"
)

type itemKind uint8

const (
	itemWord itemKind = iota
	itemSpace
	itemBreak
)

// piece is a run of text inside one word or space with a single style.
type piece struct {
	text         string
	bold, italic bool
}

// item is a wrap unit: a word made of one or more styled pieces, a space, or
// an explicit line break. Words never break internally.
type item struct {
	kind   itemKind
	pieces []piece
}

// tokenize splits styled runs into wrap items. Style markers are zero width:
// a word that changes style midway stays one unbreakable item.
func tokenize(runs []markup.Run) []item {
	var items []item
	var word []piece
	flush := func() {
		if len(word) > 0 {
			items = append(items, item{kind: itemWord, pieces: word})
			word = nil
		}
	}
	add := func(r rune, bold, italic bool) {
		if n := len(word); n > 0 && word[n-1].bold == bold && word[n-1].italic == italic {
			word[n-1].text += string(r)
			return
		}
		word = append(word, piece{text: string(r), bold: bold, italic: italic})
	}
	for _, run := range runs {
		for _, r := range run.Text {
			switch r {
			case '\r':
			case '\n':
				flush()
				items = append(items, item{kind: itemBreak})
			case ' ', '\t':
				flush()
				items = append(items, item{kind: itemSpace, pieces: []piece{{text: " ", bold: run.Bold, italic: run.Italic}}})
			default:
				add(r, run.Bold, run.Italic)
			}
		}
	}
	flush()
	return items
}

// faceSet holds the resolved faces of one attempt, one per bold/italic
// combination of the base style.
type faceSet struct {
	provider Provider
	base     TextStyle
	faces    [4]font.Face
	metrics  Metrics
}

func newFaceSet(p Provider, base TextStyle) *faceSet {
	fs := &faceSet{provider: p, base: base}
	_, fs.metrics = p.Resolve(base.Font)
	return fs
}

func (fs *faceSet) face(bold, italic bool) font.Face {
	i := 0
	if bold {
		i |= 1
	}
	if italic {
		i |= 2
	}
	if fs.faces[i] == nil {
		fs.faces[i], _ = fs.provider.Resolve(fs.base.Styled(bold, italic).Font)
	}
	return fs.faces[i]
}

func (fs *faceSet) width(p piece) float32 {
	d := &font.Drawer{Face: fs.face(p.bold, p.italic)}
	w := advance(d, p.text)
	if fs.base.Tracking != 0 {
		if n := utf8.RuneCountInString(p.text); n > 1 {
			w += fs.base.Tracking * float32(n-1)
		}
	}
	return w
}

func (fs *faceSet) lineHeight() float32 { return fs.metrics.Height() + fs.base.Leading }

func advance(d *font.Drawer, s string) float32 {
	return float32(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}

// segment is a measured piece placed on a line.
type segment struct {
	piece
	x, w float32
}

type line struct {
	segs  []segment
	width float32
}

// wrap breaks items greedily into lines no wider than maxWidth. A word wider
// than maxWidth gets a line of its own and overflows. Spaces at the start or
// end of a line are dropped. maxWidth <= 0 disables wrapping.
func wrap(items []item, fs *faceSet, maxWidth float32) []line {
	var lines []line
	var cur line
	var pending []segment
	var pendingW float32
	push := func() {
		lines = append(lines, cur)
		cur = line{}
		pending, pendingW = nil, 0
	}
	for _, it := range items {
		switch it.kind {
		case itemBreak:
			push()
		case itemSpace:
			p := it.pieces[0]
			w := fs.width(p)
			pending = append(pending, segment{piece: p, w: w})
			pendingW += w
		case itemWord:
			segs := make([]segment, len(it.pieces))
			var ww float32
			for i, p := range it.pieces {
				segs[i] = segment{piece: p, w: fs.width(p)}
				ww += segs[i].w
			}
			if len(cur.segs) > 0 && maxWidth > 0 && cur.width+pendingW+ww > maxWidth {
				push()
			}
			if len(cur.segs) > 0 {
				for _, s := range pending {
					s.x = cur.width
					cur.segs = append(cur.segs, s)
					cur.width += s.w
				}
			}
			pending, pendingW = nil, 0
			for _, s := range segs {
				s.x = cur.width
				cur.segs = append(cur.segs, s)
				cur.width += s.w
			}
		}
	}
	if len(cur.segs) > 0 || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

// Measure returns the width of the widest line of m without wrapping and the
// line height in base style.
func Measure(provider Provider, m markup.Markup, base TextStyle) (w, h float32) {
	if provider == nil {
		provider = BasicProvider{}
	}
	fs := newFaceSet(provider, base)
	for _, l := range wrap(tokenize(m.Runs()), fs, 0) {
		w = max(w, l.width)
	}
	return w, fs.lineHeight()
}
