/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package annotate inserts bold and italic markers into raw card rule text.
//
// Rules run in a fixed order of passes. Bold and protect rules claim the text
// they match; later passes see every claim as a single opaque character and
// can neither match inside it nor across its edges. Italic rules decorate
// without claiming, so keywords inside a parenthetical are still bolded.
package annotate

import (
	"log/slog"
	"time"

	"golang.org/x/text/unicode/norm"

	"cardsmith/internal/log"
	"cardsmith/internal/markup"
	"cardsmith/internal/rules"
)

// Annotator applies a compiled ruleset. It holds no per-call state and is
// safe for concurrent use.
type Annotator struct {
	rules *rules.Ruleset
	cache *rules.PatternCache
	log   *slog.Logger
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithPatternCache shares a phrase cache between annotators.
func WithPatternCache(c *rules.PatternCache) Option {
	return func(a *Annotator) { a.cache = c }
}

// New returns an Annotator for rs. A nil rs selects the built-in ruleset.
func New(rs *rules.Ruleset, opts ...Option) *Annotator {
	if rs == nil {
		rs = rules.Default()
	}
	a := &Annotator{rules: rs, log: log.WithComponent("annotate")}
	for _, o := range opts {
		o(a)
	}
	if a.cache == nil {
		a.cache = rules.NewPatternCache(rules.DefaultPatternExpiration, rules.DefaultPatternCleanup)
	}
	return a
}

// Ruleset returns the ruleset the annotator applies.
func (a *Annotator) Ruleset() *rules.Ruleset { return a.rules }

// Annotate returns raw as well-formed markup. boldPhrases are extra per-card
// keywords bolded after the built-in list; duplicates of built-in keywords
// are ignored.
func (a *Annotator) Annotate(raw string, boldPhrases []string) markup.Markup {
	raw = norm.NFC.String(raw)
	if raw == "" {
		return nil
	}
	began := time.Now()
	w := newWorkspace(raw)
	for _, pass := range a.passes(boldPhrases) {
		for _, r := range pass {
			a.apply(w, r)
		}
	}
	out := w.markup()
	a.log.Debug("annotated",
		slog.Int("claims", len(w.claims)),
		slog.Int("spans", len(w.spans)),
		slog.Duration("took", time.Since(began)),
	)
	return out
}

func (a *Annotator) passes(boldPhrases []string) [][]rules.AnnotationRule {
	rs := a.rules
	keywords := rs.KeywordRules()
	if extra, err := a.cache.ExtraRules(rs, boldPhrases); err != nil {
		a.log.Warn("also-bold phrases ignored", slog.String("err", err.Error()))
	} else if len(extra) > 0 {
		keywords = append(append([]rules.AnnotationRule(nil), keywords...), extra...)
	}
	return [][]rules.AnnotationRule{
		rs.NumericParentheticals,
		rs.Parentheticals,
		rs.LabelNumbers,
		rs.StackedKeywords,
		rs.Neutral,
		rs.ManualOverrides,
		rs.HighlightPhraseRules(),
		rs.Protected,
		rs.FixedKeywords,
		keywords,
	}
}

func (a *Annotator) apply(w *workspace, r rules.AnnotationRule) {
	found, err := w.matches(r.Matcher)
	if err != nil {
		// a timeout keeps the matches found so far
		a.log.Warn("rule match failed", slog.String("rule", r.Name), slog.String("err", err.Error()))
	}
	for _, m := range found {
		switch r.Mode {
		case rules.ModeProtect:
			g := m.Group(r.Group)
			w.claim(g.Start, g.End)
		case rules.ModeBold:
			g := m.Group(r.Group)
			w.claim(g.Start, g.End)
			w.decorate(markup.Span{Start: g.Start, End: g.End, Style: markup.StyleBold})
		case rules.ModeItalic:
			g := m.Group(r.Group)
			w.decorate(markup.Span{Start: g.Start, End: g.End, Style: markup.StyleItalic})
		case rules.ModeTransform:
			if r.Transform == nil {
				continue
			}
			for _, s := range r.Transform(m) {
				if s.Style != markup.StyleItalic {
					w.claim(s.Start, s.End)
				}
				w.decorate(s)
			}
		}
	}
}
