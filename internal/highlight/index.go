/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package highlight locates phrases in a laid-out text block and paints
// background bands behind them.
//
// Layout collapses and moves whitespace, so phrases are matched against a
// clean index: the block's visible characters in visual order with spaces,
// tabs and line breaks removed, each mapped back to the run that drew it.
package highlight

import (
	"sort"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"

	"cardsmith/internal/textlayout"
)

// Index is the clean-character index of a text block. The slices are
// parallel: entry i describes the i-th retained grapheme cluster.
type Index struct {
	Chars []string
	Runs  []int     // ID of the run that drew the character
	Y     []float32 // top of that run, block coordinates
	H     []float32 // height of that run

	upper  string
	starts []int // byte offset of character i in upper
}

// Len returns the number of indexed characters.
func (idx *Index) Len() int { return len(idx.Chars) }

// Text returns the indexed characters joined, as laid out.
func (idx *Index) Text() string { return strings.Join(idx.Chars, "") }

// BuildIndex walks tree in visual order and indexes every character except
// space, tab, carriage return and line feed.
func BuildIndex(tree textlayout.Node) *Index {
	idx := &Index{}
	var b strings.Builder
	for _, r := range textlayout.Runs(tree) {
		g := uniseg.NewGraphemes(norm.NFC.String(r.Text))
		for g.Next() {
			c := g.Str()
			if skipped(c) {
				continue
			}
			idx.Chars = append(idx.Chars, c)
			idx.Runs = append(idx.Runs, r.ID)
			idx.Y = append(idx.Y, r.Y)
			idx.H = append(idx.H, r.H)
			idx.starts = append(idx.starts, b.Len())
			b.WriteString(strings.ToUpper(c))
		}
	}
	idx.upper = b.String()
	return idx
}

func skipped(c string) bool {
	switch c {
	case " ", "\t", "\r", "\n", "\r\n":
		return true
	}
	return false
}

// FindPhrase returns the character range [start,end) of the first occurrence
// of phrase in the index. Matching ignores whitespace and case.
func FindPhrase(idx *Index, phrase string) (start, end int, ok bool) {
	p := strings.ToUpper(stripSpace(norm.NFC.String(phrase)))
	if p == "" || idx == nil {
		return 0, 0, false
	}
	for off := 0; off <= len(idx.upper)-len(p); {
		i := strings.Index(idx.upper[off:], p)
		if i < 0 {
			break
		}
		at := off + i
		s, sok := idx.charAt(at)
		e, eok := idx.charAt(at + len(p))
		if sok && eok {
			return s, e, true
		}
		off = at + 1
	}
	return 0, 0, false
}

// charAt maps a byte offset in the upper-cased text to a character index.
// Offsets inside a character do not map.
func (idx *Index) charAt(off int) (int, bool) {
	if off == len(idx.upper) {
		return len(idx.starts), true
	}
	i := sort.SearchInts(idx.starts, off)
	return i, i < len(idx.starts) && idx.starts[i] == off
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
