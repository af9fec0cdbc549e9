/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package highlight

import (
	"log/slog"

	"cardsmith/internal/log"
	"cardsmith/internal/rules"
	"cardsmith/internal/textlayout"
	"cardsmith/internal/vector"
)

const (
	DefaultPadTop    = 10
	DefaultPadBottom = 3
)

// Options places the highlight bands. BodyX and BodyWidth describe the card
// body in block coordinates; bands always span the full body width.
type Options struct {
	BodyX     float32
	BodyWidth float32
	PadTop    float32
	PadBottom float32
}

// DefaultOptions returns the standard padding for a body of the given width.
func DefaultOptions(bodyWidth float32) Options {
	return Options{BodyWidth: bodyWidth, PadTop: DefaultPadTop, PadBottom: DefaultPadBottom}
}

// Span is the background band of one firing rule.
type Span struct {
	Rule    int // index into the rule list
	Color   vector.Color
	Rect    vector.Rect
	Phrases []string // phrases of the rule that were found
}

// Apply checks every rule against the whole block. A rule fires when any of
// its phrases is found; it then yields one band covering the union of the
// vertical extents of all its matched characters, and the runs holding those
// characters take the rule's text colour. Later rules win when runs overlap.
// The input tree is not modified; a recoloured copy is returned.
func Apply(tree *textlayout.Container, hl []rules.HighlightRule, opts Options) (*textlayout.Container, []Span) {
	l := log.WithComponent("highlight")
	idx := BuildIndex(tree)
	recolor := map[int]vector.Color{}
	var spans []Span
	for ri, rule := range hl {
		var minY, maxY float32
		var found []string
		for _, phrase := range rule.Phrases {
			s, e, ok := FindPhrase(idx, phrase)
			if !ok {
				continue
			}
			for i := s; i < e; i++ {
				y, bottom := idx.Y[i], idx.Y[i]+idx.H[i]
				if len(found) == 0 && i == s {
					minY, maxY = y, bottom
				}
				minY = min(minY, y)
				maxY = max(maxY, bottom)
				recolor[idx.Runs[i]] = rule.TextColor
			}
			found = append(found, phrase)
		}
		if len(found) == 0 {
			continue
		}
		span := Span{
			Rule:    ri,
			Color:   rule.Color,
			Rect:    vector.R(opts.BodyX, minY-opts.PadTop, opts.BodyWidth, maxY-minY+opts.PadTop+opts.PadBottom),
			Phrases: found,
		}
		l.Debug("highlight", slog.Int("rule", ri), slog.String("color", rule.Color.Hex()), slog.Int("phrases", len(found)))
		spans = append(spans, span)
	}
	if len(recolor) == 0 {
		return tree, spans
	}
	out := textlayout.Restyle(tree, func(r *textlayout.TextRun) (textlayout.TextStyle, bool) {
		c, ok := recolor[r.ID]
		if !ok {
			return textlayout.TextStyle{}, false
		}
		return r.Style.WithFill(c), true
	})
	return out.(*textlayout.Container), spans
}
