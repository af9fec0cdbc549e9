/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package card models a card and derives the geometry of its rules text box.
package card

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"cardsmith/internal/cardtext"
	"cardsmith/internal/textlayout"
	"cardsmith/internal/vector"
)

// Card sizes in pixels.
const (
	Width          = 750
	OversizedWidth = 900
)

// Card holds the fields of a card that drive its rules text.
type Card struct {
	Name              string   `yaml:"name"`
	Type              string   `yaml:"type,omitempty"`
	Variant           string   `yaml:"variant,omitempty"`
	Subtype           string   `yaml:"subtype,omitempty"`
	Text              string   `yaml:"text"`
	AlsoBold          []string `yaml:"also_bold,omitempty"`
	PreferredTextSize float32  `yaml:"preferred_text_size,omitempty"`
	Oversized         bool     `yaml:"oversized,omitempty"`
}

// ErrInvalidCard is returned for cards that cannot be rendered.
var ErrInvalidCard = errors.New("invalid card")

// Validate checks the fields every card needs.
func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCard)
	}
	if c.PreferredTextSize < 0 {
		return fmt.Errorf("%w: %s: negative preferred text size", ErrInvalidCard, c.Name)
	}
	return nil
}

// StartSize is the first font size tried for the rules text: the preferred
// size when set, otherwise a size picked by text length.
func StartSize(c Card) float32 {
	if c.PreferredTextSize > 0 {
		return c.PreferredTextSize
	}
	switch n := utf8.RuneCountInString(c.Text); {
	case n < 35:
		return 52
	case n < 60:
		return 44
	default:
		return 38
	}
}

// Zone is the rules text box of a card in card pixels. Collisions are in
// the box's own coordinates.
type Zone struct {
	X, Y          float32
	Width, Height float32
	Collisions    []vector.Shape
	BodyWidth     float32
	Fill          vector.Color
}

// vpBadge is the victory point badge that standard cards keep clear of text.
var vpBadge = vector.Circle{C: vector.Pt{X: 603, Y: 230}, Radius: 70}

// TextZone derives the text box from the card's frame.
func TextZone(c Card) Zone {
	maxWidth, maxHeight := float32(Width), float32(205)
	x, y := float32(29), float32(725)
	z := Zone{BodyWidth: Width, Fill: vector.Black}
	oversized := c.UsesOversizedFrame()
	if oversized {
		maxWidth, maxHeight = 910, 155
		y = 974
		z.BodyWidth = OversizedWidth
	} else {
		z.Collisions = []vector.Shape{vpBadge}
	}

	textWidth := maxWidth - x*2
	if c.isUnity() {
		x = 100
		textWidth = maxWidth - x - 29
	}
	if !oversized {
		if strings.Contains(c.Variant, "lvl") {
			y += 10
			maxHeight -= 40
		}
		if strings.HasPrefix(c.Variant, "Bribe") {
			y += 56
			maxHeight -= 56
		}
		if c.Variant == "Transformed" {
			y += 10
			maxHeight -= 10
		}
		if c.darkFrame() {
			z.Fill = vector.White
		}
	}
	z.X, z.Y, z.Width, z.Height = x, y, textWidth, maxHeight
	return z
}

// UsesOversizedFrame reports whether c is drawn on the oversized frame. The
// Infinity War and Crisis variants always are; otherwise only hero and
// villain cards may ask for it.
func (c Card) UsesOversizedFrame() bool {
	if c.Variant == "Infinity War" || c.Variant == "Crisis" {
		return c.isHeroOrVillain()
	}
	return c.Oversized && c.isHeroOrVillain()
}

func (c Card) isHeroOrVillain() bool {
	switch c.Type {
	case "Hero", "Villain", "Herói", "Heroi", "Vilão", "Vilao", "Villain Nemesis", "Vilão Nêmesis":
		return true
	}
	return false
}

func (c Card) isUnity() bool {
	s := strings.ToLower(c.Subtype)
	return s == "unity" || s == "união" || c.Variant == "Unity"
}

// darkFrame reports variants printed on a dark frame, which take light text.
func (c Card) darkFrame() bool {
	switch c.Variant {
	case "Super Hero", "Super-Villain", "Impossible", "Transformed":
		return true
	}
	return strings.HasPrefix(c.Variant, "Hero lvl") || strings.HasPrefix(c.Variant, "Villain lvl")
}

// Request builds the text engine request for c, taking the base style from
// the "Rules" entry of ss.
func Request(c Card, ss *textlayout.StyleSheet) cardtext.Request {
	z := TextZone(c)
	st, ok := ss.Resolve("Rules")
	if !ok {
		st, _ = textlayout.GetStyle("Rules")
	}
	st = st.WithFill(z.Fill)
	return cardtext.Request{
		ID:       c.Name,
		Text:     c.Text,
		AlsoBold: c.AlsoBold,
		Style:    st,
		Constraint: textlayout.Constraint{
			MaxWidth:   z.Width,
			MaxHeight:  z.Height,
			Collisions: z.Collisions,
			StartSize:  StartSize(c),
		},
		BodyX:     -z.X,
		BodyWidth: z.BodyWidth,
	}
}

// file is the on-disk form of a card list.
type file struct {
	Cards []Card `yaml:"cards"`
}

// Decode reads a YAML card list, either a document with a "cards" key or a
// bare sequence.
func Decode(r io.Reader) ([]Card, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read cards: %w", err)
	}
	var cards []Card
	if err := yaml.Unmarshal(data, &cards); err != nil {
		var f file
		if err2 := yaml.Unmarshal(data, &f); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCard, err2)
		}
		cards = f.Cards
	}
	for i, c := range cards {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
	}
	return cards, nil
}

// LoadFile reads a YAML card list from path.
func LoadFile(path string) ([]Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cards: %w", err)
	}
	defer f.Close()
	cards, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cards, nil
}

// Marshal encodes c as a YAML document.
func Marshal(c Card) ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal card: %w", err)
	}
	return b, nil
}

// Unmarshal decodes one YAML card document.
func Unmarshal(b []byte) (Card, error) {
	var c Card
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Card{}, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}
	return c, nil
}
