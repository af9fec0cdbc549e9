/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cardsmith/internal/card"
)

func openTemp(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(context.Background(), filepath.Join(t.TempDir(), "cards.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPutGetList(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	cards := []card.Card{
		{Name: "Zap", Text: "Gain 2 Power.", AlsoBold: []string{"Zap"}},
		{Name: "Anchor", Text: "Block (3)", Oversized: true},
	}
	if err := c.Put(ctx, cards...); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := c.Get(ctx, "Zap")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Text != "Gain 2 Power." || len(got.AlsoBold) != 1 {
		t.Fatalf("Get = %+v", got)
	}
	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Anchor" || !list[0].Oversized {
		t.Fatalf("List = %+v", list)
	}
}

func TestPutReplaces(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	if err := c.Put(ctx, card.Card{Name: "Zap", Text: "old"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(ctx, card.Card{Name: "Zap", Text: "new"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := c.Get(ctx, "Zap")
	if got.Text != "new" {
		t.Fatalf("text = %q, want new", got.Text)
	}
}

func TestNotFoundAndInvalid(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	if err := c.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
	if err := c.Put(ctx, card.Card{Name: "ok", Text: "x"}, card.Card{Text: "nameless"}); !errors.Is(err, card.ErrInvalidCard) {
		t.Fatalf("Put: expected ErrInvalidCard, got %v", err)
	}
	if list, _ := c.List(ctx); len(list) != 0 {
		t.Fatalf("failed Put must not store anything: %+v", list)
	}
}

func TestReopenKeepsCards(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cards.sqlite")
	c, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Put(ctx, card.Card{Name: "Zap", Text: "x"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	c, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c.Close()
	if _, err := c.Get(ctx, "Zap"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if err := c.Delete(ctx, "Zap"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
