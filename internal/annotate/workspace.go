/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotate

import (
	"sort"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"cardsmith/internal/markup"
	"cardsmith/internal/rules"
)

// opaque stands in for a whole claimed range in the match view.
const opaque = '\ue000'

type claim struct{ start, end int }

// workspace tracks the claims and decorations of one annotation run. Claims
// are non-overlapping byte ranges of raw, kept sorted by start.
type workspace struct {
	raw    string
	claims []claim
	spans  []markup.Span
}

func newWorkspace(raw string) *workspace { return &workspace{raw: raw} }

// view renders raw with every claim collapsed to one opaque rune. offs[i] is
// the byte offset in raw where view rune i starts; offs[len(runes)] is
// len(raw).
func (w *workspace) view() (runes []rune, offs []int) {
	runes = make([]rune, 0, len(w.raw))
	offs = make([]int, 0, len(w.raw)+1)
	ci := 0
	for i := 0; i < len(w.raw); {
		if ci < len(w.claims) && w.claims[ci].start == i {
			runes = append(runes, opaque)
			offs = append(offs, i)
			i = w.claims[ci].end
			ci++
			continue
		}
		r, size := utf8.DecodeRuneInString(w.raw[i:])
		runes = append(runes, r)
		offs = append(offs, i)
		i += size
	}
	offs = append(offs, len(w.raw))
	return runes, offs
}

// claim marks [start,end) as taken. Claims enclosed by the new one are
// absorbed; their decorations stay.
func (w *workspace) claim(start, end int) {
	if start >= end {
		return
	}
	kept := w.claims[:0]
	for _, c := range w.claims {
		if c.start >= start && c.end <= end {
			continue
		}
		kept = append(kept, c)
	}
	w.claims = kept
	i := sort.Search(len(w.claims), func(i int) bool { return w.claims[i].start >= start })
	w.claims = append(w.claims, claim{})
	copy(w.claims[i+1:], w.claims[i:])
	w.claims[i] = claim{start, end}
}

func (w *workspace) decorate(s markup.Span) {
	if s.Start < s.End {
		w.spans = append(w.spans, s)
	}
}

// matches collects every non-overlapping match of re over the current view.
func (w *workspace) matches(re *regexp2.Regexp) ([]rules.Match, error) {
	runes, offs := w.view()
	var out []rules.Match
	m, err := re.FindRunesMatch(runes)
	for m != nil && err == nil {
		if m.Length > 0 {
			out = append(out, toMatch(m, offs))
		}
		m, err = re.FindNextMatch(m)
	}
	return out, err
}

func toMatch(m *regexp2.Match, offs []int) rules.Match {
	gs := m.Groups()
	out := rules.Match{Groups: make([]rules.Group, len(gs))}
	for i, g := range gs {
		if len(g.Captures) == 0 {
			continue
		}
		out.Groups[i] = rules.Group{Start: offs[g.Index], End: offs[g.Index+g.Length], OK: true}
	}
	return out
}

func (w *workspace) markup() markup.Markup { return markup.Build(w.raw, w.spans) }
