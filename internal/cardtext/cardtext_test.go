/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cardtext

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cardsmith/internal/textlayout"
	"cardsmith/internal/vector"
)

func baseRequest(id, text string) Request {
	st, _ := textlayout.GetStyle("RulesInverse")
	return Request{
		ID:         id,
		Text:       text,
		Style:      st,
		Constraint: textlayout.Constraint{MaxWidth: 692, MaxHeight: 205, StartSize: 44},
		BodyX:      -29,
		BodyWidth:  750,
	}
}

func TestAnnotateAndLayoutHighlightsPhrase(t *testing.T) {
	e := New(nil, nil)
	res := e.AnnotateAndLayout(baseRequest("vp", "When you buy or gain this card, gain 1 VP. Draw a card."))
	if got := res.Markup.String(); got != "[b]When you buy or gain this card, gain 1 VP.[/b] Draw a card." {
		t.Fatalf("markup = %s", got)
	}
	if !res.Block.Fits {
		t.Fatalf("expected the block to fit, size %v", res.Block.Size)
	}
	if len(res.Spans) != 1 || res.Spans[0].Color != vector.RGB(0xe1b327) {
		t.Fatalf("spans = %+v", res.Spans)
	}
	band := res.Spans[0].Rect
	if band.X != -29 || band.W != 750 || band.Y != -10 {
		t.Fatalf("band = %+v", band)
	}
	runs := textlayout.Runs(res.Block.Tree)
	if runs[0].Style.Fill != vector.Black {
		t.Fatalf("highlighted run should be recoloured black, got %v", runs[0].Style.Fill)
	}
	if last := runs[len(runs)-1]; last.Style.Fill != vector.White {
		t.Fatalf("run outside the phrase should keep its fill, got %v", last.Style.Fill)
	}
}

func TestAnnotateAndLayoutReportsFitFailure(t *testing.T) {
	e := New(nil, textlayout.BasicProvider{})
	req := baseRequest("tiny", "Discard two cards, then draw three cards.")
	req.Constraint = textlayout.Constraint{MaxWidth: 40, MaxHeight: 10, StartSize: 20}
	res := e.AnnotateAndLayout(req)
	if res.Block.Fits {
		t.Fatalf("expected a fit failure")
	}
	if res.Block.Size != req.Constraint.Floor() {
		t.Fatalf("size = %v, want floor", res.Block.Size)
	}
	if len(textlayout.Runs(res.Block.Tree)) == 0 {
		t.Fatalf("best-effort tree should still be returned")
	}
}

func TestRenderBatchMatchesSequential(t *testing.T) {
	e := New(nil, nil, WithShrink(2, 0.5))
	var reqs []Request
	for i := 0; i < 16; i++ {
		text := fmt.Sprintf("Attack: Gain %d Power. Super Power (Discard a non-Weakness card).", i)
		if i%5 == 0 {
			text += " Once per turn: draw a card, then discard a card. Range: 2"
		}
		reqs = append(reqs, baseRequest(fmt.Sprint(i), text))
	}
	reqs[3].Constraint.MaxHeight = 1 // cannot fit

	got, err := e.RenderBatch(context.Background(), reqs, 4)
	if err != nil {
		t.Fatalf("RenderBatch: %v", err)
	}
	if len(got) != len(reqs) {
		t.Fatalf("results = %d, want %d", len(got), len(reqs))
	}
	for i, r := range got {
		want := e.AnnotateAndLayout(reqs[i])
		if r.ID != reqs[i].ID || r.Block.Size != want.Block.Size || r.Markup.String() != want.Markup.String() {
			t.Fatalf("result %d differs from sequential render", i)
		}
		if i != 3 && !r.Block.Fits {
			t.Fatalf("request %d should fit", i)
		}
	}
	if got[3].Block.Fits {
		t.Fatalf("request 3 should not fit")
	}
}

func TestRenderBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, textlayout.BasicProvider{}).RenderBatch(ctx, []Request{baseRequest("a", "x")}, 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
