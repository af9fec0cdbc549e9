/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package rules holds the static configuration of the card text engine: the
// ordered annotation rules, the auto-bold keyword list and the highlight
// rules. A compiled Ruleset is immutable and safe for concurrent use.
package rules

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"cardsmith/internal/markup"
	"cardsmith/internal/vector"
)

// Mode selects what an AnnotationRule does with the text it matches.
type Mode uint8

const (
	// ModeProtect claims the match so later rules cannot touch it; the text is
	// emitted verbatim.
	ModeProtect Mode = iota
	// ModeBold claims the match and wraps it in bold markers.
	ModeBold
	// ModeItalic wraps the match in italic markers without claiming it.
	ModeItalic
	// ModeTransform lets Transform decide the decorations for the match. Bold
	// and hidden decorations claim their range, italic ones do not.
	ModeTransform
)

func (m Mode) String() string {
	switch m {
	case ModeProtect:
		return "protect"
	case ModeBold:
		return "bold"
	case ModeItalic:
		return "italic"
	case ModeTransform:
		return "transform"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// matchTimeout bounds backtracking on hostile input.
const matchTimeout = 250 * time.Millisecond

// ErrInvalidRuleset wraps every load or compile failure.
var ErrInvalidRuleset = errors.New("invalid ruleset")

// Group is a capture group location in byte offsets of the source text.
type Group struct {
	Start, End int
	OK         bool
}

// Match is a rule match expressed in byte offsets of the source text.
// Groups[0] is the whole match.
type Match struct {
	Groups []Group
}

func (m Match) Start() int { return m.Groups[0].Start }
func (m Match) End() int   { return m.Groups[0].End }

// Group returns capture group i, or the whole match if i is out of range or
// did not participate.
func (m Match) Group(i int) Group {
	if i > 0 && i < len(m.Groups) && m.Groups[i].OK {
		return m.Groups[i]
	}
	return m.Groups[0]
}

// AnnotationRule is one entry of an ordered rule list.
type AnnotationRule struct {
	Name    string
	Matcher *regexp2.Regexp
	Mode    Mode
	// Group is the capture group that receives the decoration; 0 means the
	// whole match. Ignored for ModeTransform.
	Group int
	// Transform returns the decorations for a ModeTransform match.
	Transform func(Match) []markup.Span
}

// HighlightRule paints a background behind any of its phrases.
type HighlightRule struct {
	Color     vector.Color
	TextColor vector.Color
	Phrases   []string
}

// Ruleset is the compiled, ordered configuration consumed by the annotator.
type Ruleset struct {
	Name                  string
	NumericParentheticals []AnnotationRule
	Parentheticals        []AnnotationRule
	LabelNumbers          []AnnotationRule
	StackedKeywords       []AnnotationRule
	Neutral               []AnnotationRule
	ManualOverrides       []AnnotationRule
	Protected             []AnnotationRule
	FixedKeywords         []AnnotationRule
	// Keywords is the auto-bold list in precedence order.
	Keywords   []string
	Highlights []HighlightRule

	keywordRules   []AnnotationRule
	highlightRules []AnnotationRule
}

// KeywordRules returns the compiled auto-bold keyword matchers in list order.
func (rs *Ruleset) KeywordRules() []AnnotationRule { return rs.keywordRules }

// HighlightPhraseRules returns one bold matcher per highlight phrase, in rule
// then phrase order.
func (rs *Ruleset) HighlightPhraseRules() []AnnotationRule { return rs.highlightRules }

// CompilePattern compiles a rule pattern with the options every rule shares.
func CompilePattern(pattern string, ignoreCase bool) (*regexp2.Regexp, error) {
	opts := regexp2.None
	if ignoreCase {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %v", ErrInvalidRuleset, pattern, err)
	}
	re.MatchTimeout = matchTimeout
	return re, nil
}

// LiteralRule builds a case-insensitive bold rule that matches phrase literally.
func LiteralRule(name, phrase string) (AnnotationRule, error) {
	re, err := CompilePattern(regexp2.Escape(phrase), true)
	if err != nil {
		return AnnotationRule{}, err
	}
	return AnnotationRule{Name: name, Matcher: re, Mode: ModeBold}, nil
}

// dedupeFold drops empty entries and later case-insensitive duplicates,
// keeping list order.
func dedupeFold(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
