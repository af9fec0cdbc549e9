/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package card

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cardsmith/internal/cardtext"
	"cardsmith/internal/textlayout"
	"cardsmith/internal/vector"
)

func TestStartSize(t *testing.T) {
	cases := []struct {
		card Card
		want float32
	}{
		{Card{Text: "Draw a card."}, 52},
		{Card{Text: strings.Repeat("x", 35)}, 44},
		{Card{Text: strings.Repeat("x", 59)}, 44},
		{Card{Text: strings.Repeat("x", 60)}, 38},
		{Card{Text: strings.Repeat("x", 200), PreferredTextSize: 30}, 30},
	}
	for i, tc := range cases {
		if got := StartSize(tc.card); got != tc.want {
			t.Fatalf("case %d: StartSize = %v, want %v", i, got, tc.want)
		}
	}
}

func TestTextZone(t *testing.T) {
	std := TextZone(Card{})
	if std.X != 29 || std.Y != 725 || std.Width != 692 || std.Height != 205 || std.BodyWidth != 750 {
		t.Fatalf("standard zone = %+v", std)
	}
	if len(std.Collisions) != 1 || std.Fill != vector.Black {
		t.Fatalf("standard zone should avoid the VP badge with dark text: %+v", std)
	}

	over := TextZone(Card{Type: "Villain", Oversized: true, Variant: "Super Hero"})
	if over.Y != 974 || over.Width != 852 || over.Height != 155 || over.BodyWidth != 900 {
		t.Fatalf("oversized zone = %+v", over)
	}
	if len(over.Collisions) != 0 || over.Fill != vector.Black {
		t.Fatalf("oversized cards ignore the badge and variant colour: %+v", over)
	}

	unity := TextZone(Card{Subtype: "União"})
	if unity.X != 100 || unity.Width != 621 {
		t.Fatalf("unity zone = %+v", unity)
	}

	lvl := TextZone(Card{Variant: "Hero lvl 2"})
	if lvl.Y != 735 || lvl.Height != 165 || lvl.Fill != vector.White {
		t.Fatalf("level zone = %+v", lvl)
	}
	bribe := TextZone(Card{Variant: "Bribe"})
	if bribe.Y != 781 || bribe.Height != 149 {
		t.Fatalf("bribe zone = %+v", bribe)
	}
	tr := TextZone(Card{Variant: "Transformed"})
	if tr.Y != 735 || tr.Height != 195 || tr.Fill != vector.White {
		t.Fatalf("transformed zone = %+v", tr)
	}
}

func TestOversizedFrameOnlyForHeroesAndVillains(t *testing.T) {
	equip := Card{Type: "Equipment", Oversized: true}
	if equip.UsesOversizedFrame() {
		t.Fatalf("equipment must not use the oversized frame")
	}
	z := TextZone(equip)
	if z.Y != 725 || z.Width != 692 || z.Height != 205 || z.BodyWidth != 750 || len(z.Collisions) != 1 {
		t.Fatalf("equipment zone should be the standard frame: %+v", z)
	}
	if req := Request(equip, nil); req.BodyWidth != 750 || len(req.Constraint.Collisions) != 1 {
		t.Fatalf("equipment request should use the standard frame: %+v", req)
	}
	for _, c := range []Card{
		{Type: "Herói", Oversized: true},
		{Type: "Vilão Nêmesis", Oversized: true},
		{Type: "Hero", Variant: "Crisis"},
	} {
		if !c.UsesOversizedFrame() || TextZone(c).BodyWidth != OversizedWidth {
			t.Fatalf("%+v should use the oversized frame", c)
		}
	}
	if (Card{Type: "Super Power", Variant: "Infinity War"}).UsesOversizedFrame() {
		t.Fatalf("variant alone must not oversize a non-hero card")
	}
}

func TestRequestRendersThroughEngine(t *testing.T) {
	c := Card{Name: "Herald", Text: "Galactus Herald: 3. Gain Flight.", AlsoBold: []string{"Flight"}}
	req := Request(c, textlayout.NewStyleSheet())
	if req.ID != "Herald" || req.BodyX != -29 || req.Constraint.StartSize != 52 {
		t.Fatalf("unexpected request: %+v", req)
	}
	res := cardtext.New(nil, nil).AnnotateAndLayout(req)
	if got := res.Markup.String(); got != "[b]Galactus Herald: 3[/b]. Gain [b]Flight[/b]." {
		t.Fatalf("markup = %s", got)
	}
	if !res.Block.Fits {
		t.Fatalf("short card text should fit")
	}
}

func TestDecodeFormats(t *testing.T) {
	list := "- name: A\n  text: Draw a card.\n- name: B\n  text: Attack\n  oversized: true\n"
	cards, err := Decode(strings.NewReader(list))
	if err != nil || len(cards) != 2 || !cards[1].Oversized {
		t.Fatalf("bare list: %v %+v", err, cards)
	}
	doc := "cards:\n  - name: C\n    text: x\n    also_bold: [Zap]\n"
	cards, err = Decode(strings.NewReader(doc))
	if err != nil || len(cards) != 1 || cards[0].AlsoBold[0] != "Zap" {
		t.Fatalf("document: %v %+v", err, cards)
	}
	if _, err := Decode(strings.NewReader("- text: nameless\n")); !errors.Is(err, ErrInvalidCard) {
		t.Fatalf("expected ErrInvalidCard, got %v", err)
	}
}

func TestLoadFileAndMarshal(t *testing.T) {
	c := Card{Name: "Zap", Type: "Super Power", Text: "Gain 2 Power.", PreferredTextSize: 40}
	b, err := Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Unmarshal(b)
	if err != nil || back.Name != c.Name || back.PreferredTextSize != 40 {
		t.Fatalf("Unmarshal: %v %+v", err, back)
	}
	p := filepath.Join(t.TempDir(), "cards.yaml")
	if err := os.WriteFile(p, append([]byte("- "), []byte(strings.ReplaceAll(string(b), "\n", "\n  "))...), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cards, err := LoadFile(p)
	if err != nil || len(cards) != 1 || cards[0].Text != c.Text {
		t.Fatalf("LoadFile: %v %+v", err, cards)
	}
}
