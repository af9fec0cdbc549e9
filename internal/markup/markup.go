/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package markup models styled card text: plain text interleaved with paired
// bold and italic markers. A Markup value is the hand-off format between the
// keyword annotator and the layout engine.
package markup

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a token in a Markup stream.
type Kind uint8

const (
	Text Kind = iota
	BoldStart
	BoldEnd
	ItalicStart
	ItalicEnd
)

// Tag spellings used by String and ParseTagged. Authors may type them in card
// text; the annotator treats them as manual overrides.
const (
	TagBoldStart   = "[b]"
	TagBoldEnd     = "[/b]"
	TagItalicStart = "[i]"
	TagItalicEnd   = "[/i]"
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case BoldStart:
		return "BOLD_START"
	case BoldEnd:
		return "BOLD_END"
	case ItalicStart:
		return "ITALIC_START"
	case ItalicEnd:
		return "ITALIC_END"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Token is one element of a Markup stream. Text is empty for markers.
type Token struct {
	Kind Kind
	Text string
}

// Markup is a sequence of text and style markers.
type Markup []Token

// ErrUnbalanced is returned when markers are unpaired or cross each other.
var ErrUnbalanced = errors.New("markup: unbalanced style markers")

// Validate checks that every start marker is closed by its own end marker and
// that bold and italic pairs nest without crossing.
func (m Markup) Validate() error {
	var stack []Kind
	for i, t := range m {
		switch t.Kind {
		case Text:
		case BoldStart, ItalicStart:
			stack = append(stack, t.Kind)
		case BoldEnd, ItalicEnd:
			want := BoldStart
			if t.Kind == ItalicEnd {
				want = ItalicStart
			}
			if len(stack) == 0 || stack[len(stack)-1] != want {
				return fmt.Errorf("%w: %s at token %d", ErrUnbalanced, t.Kind, i)
			}
			stack = stack[:len(stack)-1]
		default:
			return fmt.Errorf("markup: unknown token kind %d at %d", t.Kind, i)
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("%w: %d unclosed marker(s)", ErrUnbalanced, len(stack))
	}
	return nil
}

// String renders the markup with [b]/[i] tags.
func (m Markup) String() string {
	var b strings.Builder
	for _, t := range m {
		switch t.Kind {
		case Text:
			b.WriteString(t.Text)
		case BoldStart:
			b.WriteString(TagBoldStart)
		case BoldEnd:
			b.WriteString(TagBoldEnd)
		case ItalicStart:
			b.WriteString(TagItalicStart)
		case ItalicEnd:
			b.WriteString(TagItalicEnd)
		}
	}
	return b.String()
}

// Plain returns the text with all markers removed.
func (m Markup) Plain() string {
	var b strings.Builder
	for _, t := range m {
		if t.Kind == Text {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// Run is a maximal stretch of text sharing one style.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Runs flattens the markup into styled runs. Nested markers of the same kind
// count as one level of styling.
func (m Markup) Runs() []Run {
	var out []Run
	bold, italic := 0, 0
	for _, t := range m {
		switch t.Kind {
		case BoldStart:
			bold++
		case BoldEnd:
			if bold > 0 {
				bold--
			}
		case ItalicStart:
			italic++
		case ItalicEnd:
			if italic > 0 {
				italic--
			}
		case Text:
			if t.Text == "" {
				continue
			}
			r := Run{Text: t.Text, Bold: bold > 0, Italic: italic > 0}
			if n := len(out); n > 0 && out[n-1].Bold == r.Bold && out[n-1].Italic == r.Italic {
				out[n-1].Text += r.Text
				continue
			}
			out = append(out, r)
		}
	}
	return out
}

// ParseTagged parses a string using the [b]/[i] tag spelling. Tags must be
// balanced; anything else is text.
func ParseTagged(s string) (Markup, error) {
	var m Markup
	tags := []struct {
		tag  string
		kind Kind
	}{
		{TagBoldStart, BoldStart}, {TagBoldEnd, BoldEnd},
		{TagItalicStart, ItalicStart}, {TagItalicEnd, ItalicEnd},
	}
	start := 0
	for i := 0; i < len(s); {
		matched := false
		if s[i] == '[' {
			for _, tg := range tags {
				if strings.HasPrefix(s[i:], tg.tag) {
					if start < i {
						m = append(m, Token{Kind: Text, Text: s[start:i]})
					}
					m = append(m, Token{Kind: tg.kind})
					i += len(tg.tag)
					start = i
					matched = true
					break
				}
			}
		}
		if !matched {
			i++
		}
	}
	if start < len(s) {
		m = append(m, Token{Kind: Text, Text: s[start:]})
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
