/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"cardsmith/internal/log"
	"cardsmith/internal/markup"
	"cardsmith/internal/vector"
)

//go:embed default.yaml
var defaultYAML []byte

//go:embed ruleset.schema.json
var schemaJSON []byte

// PatternEntry is one regular-expression rule as written in a ruleset file.
type PatternEntry struct {
	Name       string `yaml:"name"`
	Pattern    string `yaml:"pattern"`
	Group      int    `yaml:"group,omitempty"`
	IgnoreCase bool   `yaml:"ignore_case,omitempty"`
}

// HighlightEntry is one highlight rule as written in a ruleset file.
type HighlightEntry struct {
	Color     string   `yaml:"color"`
	TextColor string   `yaml:"text_color,omitempty"`
	Phrases   []string `yaml:"phrases"`
}

// Document is the on-disk form of a ruleset. Manual author overrides are not
// configurable and are always added by Compile.
type Document struct {
	Name                  string           `yaml:"name"`
	NumericParentheticals []PatternEntry   `yaml:"numeric_parentheticals"`
	Parentheticals        []PatternEntry   `yaml:"parentheticals"`
	LabelNumbers          []PatternEntry   `yaml:"label_numbers"`
	StackedKeywords       []PatternEntry   `yaml:"stacked_keywords"`
	Neutral               []PatternEntry   `yaml:"neutral"`
	Protected             []PatternEntry   `yaml:"protected"`
	FixedKeywords         []PatternEntry   `yaml:"fixed_keywords"`
	Keywords              []string         `yaml:"keywords"`
	Highlights            []HighlightEntry `yaml:"highlights"`
}

var (
	defaultOnce sync.Once
	defaultRS   *Ruleset
)

// Default returns the built-in ruleset. It is compiled once and shared.
func Default() *Ruleset {
	defaultOnce.Do(func() {
		rs, err := Load(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("rules: built-in ruleset: %v", err))
		}
		defaultRS = rs
	})
	return defaultRS
}

// DefaultDocument returns a copy of the built-in ruleset document, useful as
// a starting point for custom rulesets.
func DefaultDocument() (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(defaultYAML, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidRuleset, err)
	}
	return doc, nil
}

// LoadFile reads, validates and compiles a ruleset file.
func LoadFile(path string) (*Ruleset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}
	rs, err := Load(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Load validates YAML ruleset data against the ruleset schema and compiles it.
func Load(data []byte) (*Ruleset, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleset, err)
	}
	return Compile(doc)
}

// Validate checks YAML ruleset data against the embedded JSON schema.
func Validate(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRuleset, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("%w: schema: %v", ErrInvalidRuleset, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidRuleset, strings.Join(msgs, "; "))
	}
	return nil
}

// Compile turns a Document into an immutable Ruleset.
func Compile(doc Document) (*Ruleset, error) {
	l := log.WithComponent("rules")
	rs := &Ruleset{Name: doc.Name}
	if rs.Name == "" {
		rs.Name = "custom"
	}
	sections := []struct {
		name string
		in   []PatternEntry
		mode Mode
		out  *[]AnnotationRule
	}{
		{"numeric_parentheticals", doc.NumericParentheticals, ModeBold, &rs.NumericParentheticals},
		{"parentheticals", doc.Parentheticals, ModeItalic, &rs.Parentheticals},
		{"label_numbers", doc.LabelNumbers, ModeBold, &rs.LabelNumbers},
		{"stacked_keywords", doc.StackedKeywords, ModeBold, &rs.StackedKeywords},
		{"neutral", doc.Neutral, ModeProtect, &rs.Neutral},
		{"protected", doc.Protected, ModeBold, &rs.Protected},
		{"fixed_keywords", doc.FixedKeywords, ModeBold, &rs.FixedKeywords},
	}
	for _, s := range sections {
		compiled, err := compileEntries(s.name, s.in, s.mode)
		if err != nil {
			return nil, err
		}
		*s.out = compiled
	}

	overrides, err := manualOverrides()
	if err != nil {
		return nil, err
	}
	rs.ManualOverrides = overrides

	rs.Keywords = dedupeFold(doc.Keywords)
	for i, kw := range rs.Keywords {
		r, err := LiteralRule(fmt.Sprintf("keyword[%d]", i), kw)
		if err != nil {
			return nil, err
		}
		rs.keywordRules = append(rs.keywordRules, r)
	}

	for i, h := range doc.Highlights {
		c, err := vector.ParseHex(h.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: highlights[%d]: %v", ErrInvalidRuleset, i, err)
		}
		tc := vector.Black
		if h.TextColor != "" {
			if tc, err = vector.ParseHex(h.TextColor); err != nil {
				return nil, fmt.Errorf("%w: highlights[%d]: %v", ErrInvalidRuleset, i, err)
			}
		}
		hr := HighlightRule{Color: c, TextColor: tc, Phrases: append([]string(nil), h.Phrases...)}
		rs.Highlights = append(rs.Highlights, hr)
		for j, p := range h.Phrases {
			r, err := LiteralRule(fmt.Sprintf("highlight[%d][%d]", i, j), p)
			if err != nil {
				return nil, err
			}
			rs.highlightRules = append(rs.highlightRules, r)
		}
	}

	l.Debug("ruleset compiled",
		"name", rs.Name,
		"keywords", len(rs.keywordRules),
		"highlights", len(rs.Highlights),
	)
	return rs, nil
}

func compileEntries(section string, in []PatternEntry, mode Mode) ([]AnnotationRule, error) {
	out := make([]AnnotationRule, 0, len(in))
	for i, e := range in {
		re, err := CompilePattern(e.Pattern, e.IgnoreCase)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", section, i, err)
		}
		if e.Group < 0 || e.Group >= len(re.GetGroupNumbers()) {
			return nil, fmt.Errorf("%w: %s[%d]: group %d out of range", ErrInvalidRuleset, section, i, e.Group)
		}
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("%s[%d]", section, i)
		}
		out = append(out, AnnotationRule{Name: name, Matcher: re, Mode: mode, Group: e.Group})
	}
	return out, nil
}

// manualOverrides builds the author override rules: {text} and [b]text[/b]
// become bold, [i]text[/i] becomes italic, delimiters are dropped. A pair
// may not contain another pair of the same kind, so only the innermost one
// of nested delimiters applies and unmatched delimiters stay literal.
func manualOverrides() ([]AnnotationRule, error) {
	defs := []struct {
		name    string
		pattern string
		style   markup.Style
	}{
		{"manual-brace", `\{([^{}]+)\}`, markup.StyleBold},
		{"manual-bold-tag", `\[b\]((?:(?!\[/?b\]).)+)\[/b\]`, markup.StyleBold},
		{"manual-italic-tag", `\[i\]((?:(?!\[/?i\]).)+)\[/i\]`, markup.StyleItalic},
	}
	out := make([]AnnotationRule, 0, len(defs))
	for _, d := range defs {
		re, err := CompilePattern(`(?s)`+d.pattern, true)
		if err != nil {
			return nil, err
		}
		style := d.style
		out = append(out, AnnotationRule{
			Name:      d.name,
			Matcher:   re,
			Mode:      ModeTransform,
			Transform: func(m Match) []markup.Span { return unwrap(m, style) },
		})
	}
	return out, nil
}

// unwrap hides the delimiters around group 1 and styles the content.
func unwrap(m Match, style markup.Style) []markup.Span {
	inner := m.Group(1)
	return []markup.Span{
		{Start: m.Start(), End: inner.Start, Style: markup.StyleHidden},
		{Start: inner.Start, End: inner.End, Style: style},
		{Start: inner.End, End: m.End(), Style: markup.StyleHidden},
	}
}
