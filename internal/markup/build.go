/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package markup

import "sort"

// Style is the decoration a Span applies to a byte range of the source text.
type Style uint8

const (
	StyleBold Style = iota
	StyleItalic
	// StyleHidden removes the range from the output (e.g. override delimiters).
	StyleHidden
)

// Span decorates the byte range [Start,End) of a source string.
type Span struct {
	Start, End int
	Style      Style
}

type interval struct {
	start, end int
	kind       Kind // BoldStart or ItalicStart
}

// Build turns source text plus decoration spans into a well-formed Markup.
//
// Overlapping italic spans are merged, overlapping bold spans are merged, and
// bold spans are split at italic boundaries, so the emitted markers always
// nest. Hidden ranges are dropped from the text. Empty marker pairs are
// removed.
func Build(text string, spans []Span) Markup {
	var bolds, italics, hidden []interval
	for _, s := range spans {
		st, en := clampRange(s.Start, s.End, len(text))
		if st >= en {
			continue
		}
		switch s.Style {
		case StyleBold:
			bolds = append(bolds, interval{st, en, BoldStart})
		case StyleItalic:
			italics = append(italics, interval{st, en, ItalicStart})
		case StyleHidden:
			hidden = append(hidden, interval{st, en, Text})
		}
	}
	italics = mergeOverlapping(italics)
	bolds = splitAt(mergeOverlapping(bolds), italics)
	hidden = mergeOverlapping(hidden)

	all := append(append([]interval(nil), italics...), bolds...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		if all[i].end != all[j].end {
			return all[i].end > all[j].end
		}
		// identical ranges: italic outside bold
		return all[i].kind == ItalicStart && all[j].kind == BoldStart
	})

	// boundary positions in ascending order
	posSet := map[int]struct{}{0: {}, len(text): {}}
	for _, iv := range all {
		posSet[iv.start] = struct{}{}
		posSet[iv.end] = struct{}{}
	}
	positions := make([]int, 0, len(posSet))
	for p := range posSet {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	var out Markup
	var stack []interval
	next := 0
	for pi, p := range positions {
		for len(stack) > 0 && stack[len(stack)-1].end == p {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, Token{Kind: endOf(top.kind)})
		}
		for next < len(all) && all[next].start == p {
			stack = append(stack, all[next])
			out = append(out, Token{Kind: all[next].kind})
			next++
		}
		if pi+1 < len(positions) {
			if vis := visible(text, p, positions[pi+1], hidden); vis != "" {
				out = append(out, Token{Kind: Text, Text: vis})
			}
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, Token{Kind: endOf(top.kind)})
	}
	return compact(out)
}

func endOf(k Kind) Kind {
	if k == ItalicStart {
		return ItalicEnd
	}
	return BoldEnd
}

func clampRange(s, e, n int) (int, int) {
	if s < 0 {
		s = 0
	}
	if e > n {
		e = n
	}
	return s, e
}

func mergeOverlapping(in []interval) []interval {
	if len(in) < 2 {
		return in
	}
	sort.Slice(in, func(i, j int) bool { return in[i].start < in[j].start })
	out := []interval{in[0]}
	for _, iv := range in[1:] {
		last := &out[len(out)-1]
		if iv.start < last.end {
			if iv.end > last.end {
				last.end = iv.end
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// splitAt cuts every interval at the boundaries of cuts that fall strictly
// inside it.
func splitAt(in, cuts []interval) []interval {
	var out []interval
	for _, iv := range in {
		var points []int
		for _, c := range cuts {
			if c.start > iv.start && c.start < iv.end {
				points = append(points, c.start)
			}
			if c.end > iv.start && c.end < iv.end {
				points = append(points, c.end)
			}
		}
		if len(points) == 0 {
			out = append(out, iv)
			continue
		}
		sort.Ints(points)
		s := iv.start
		for _, p := range points {
			if p > s {
				out = append(out, interval{s, p, iv.kind})
				s = p
			}
		}
		out = append(out, interval{s, iv.end, iv.kind})
	}
	return out
}

// visible returns text[a:b] without the hidden ranges.
func visible(text string, a, b int, hidden []interval) string {
	if len(hidden) == 0 {
		return text[a:b]
	}
	var buf []byte
	pos := a
	for _, h := range hidden {
		if h.end <= pos || h.start >= b {
			continue
		}
		if h.start > pos {
			buf = append(buf, text[pos:h.start]...)
		}
		if h.end > pos {
			pos = h.end
		}
	}
	if pos < b {
		buf = append(buf, text[pos:b]...)
	}
	return string(buf)
}

// compact merges adjacent text tokens and drops marker pairs that enclose
// nothing, repeating until stable.
func compact(in Markup) Markup {
	for {
		changed := false
		var out Markup
		for _, t := range in {
			n := len(out)
			if t.Kind == Text {
				if t.Text == "" {
					changed = true
					continue
				}
				if n > 0 && out[n-1].Kind == Text {
					out[n-1].Text += t.Text
					changed = true
					continue
				}
			}
			if n > 0 && ((t.Kind == BoldEnd && out[n-1].Kind == BoldStart) ||
				(t.Kind == ItalicEnd && out[n-1].Kind == ItalicStart)) {
				out = out[:n-1]
				changed = true
				continue
			}
			out = append(out, t)
		}
		in = out
		if !changed {
			return in
		}
	}
}
