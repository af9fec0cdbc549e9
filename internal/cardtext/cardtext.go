/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cardtext is the entry point of the card text engine: it annotates
// raw rule text, fits it into a text box and highlights configured phrases.
package cardtext

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"cardsmith/internal/annotate"
	"cardsmith/internal/highlight"
	applog "cardsmith/internal/log"
	"cardsmith/internal/markup"
	"cardsmith/internal/rules"
	"cardsmith/internal/textlayout"
)

// Request describes one text block to render.
type Request struct {
	// ID names the request in logs and batch results.
	ID       string
	Text     string
	AlsoBold []string
	Style    textlayout.TextStyle
	// Constraint is the text box. Zero ShrinkStep and MinShrinkFactor take
	// the engine's defaults.
	Constraint textlayout.Constraint
	// BodyX and BodyWidth locate the card body, in block coordinates, for the
	// highlight bands.
	BodyX, BodyWidth float32
}

// Result is a ready-to-draw text block.
type Result struct {
	ID     string
	Markup markup.Markup
	// Block holds the laid-out tree with highlight recolouring applied.
	Block textlayout.Block
	Spans []highlight.Span
}

// Engine runs the annotate, layout, index and highlight stages. It holds
// only read-only configuration and is safe for concurrent use.
type Engine struct {
	rules     *rules.Ruleset
	annotator *annotate.Annotator
	provider  textlayout.Provider
	autofit   *textlayout.AutoFit

	shrinkStep      float32
	minShrinkFactor float32
	padTop          float32
	padBottom       float32
	log             *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithShrink sets the default shrink step and minimum shrink factor.
func WithShrink(step, minFactor float32) Option {
	return func(e *Engine) {
		e.shrinkStep = step
		e.minShrinkFactor = minFactor
	}
}

// WithHighlightPadding sets the band padding above and below matched text.
func WithHighlightPadding(top, bottom float32) Option {
	return func(e *Engine) {
		e.padTop = top
		e.padBottom = bottom
	}
}

// WithPatternCache shares the per-card phrase cache.
func WithPatternCache(c *rules.PatternCache) Option {
	return func(e *Engine) { e.annotator = annotate.New(e.rules, annotate.WithPatternCache(c)) }
}

// New returns an engine for rs measuring with provider. Nil arguments select
// the built-in ruleset and the Go fonts.
func New(rs *rules.Ruleset, provider textlayout.Provider, opts ...Option) *Engine {
	if rs == nil {
		rs = rules.Default()
	}
	if provider == nil {
		provider = textlayout.OTProvider{Lib: textlayout.GoFonts()}
	}
	e := &Engine{
		rules:           rs,
		provider:        provider,
		autofit:         textlayout.NewAutoFit(provider),
		shrinkStep:      textlayout.DefaultShrinkStep,
		minShrinkFactor: textlayout.DefaultMinShrinkFactor,
		padTop:          highlight.DefaultPadTop,
		padBottom:       highlight.DefaultPadBottom,
		log:             applog.WithComponent("cardtext"),
	}
	for _, o := range opts {
		o(e)
	}
	if e.annotator == nil {
		e.annotator = annotate.New(rs)
	}
	return e
}

// Provider returns the font provider used for measurement; draw with the
// same provider.
func (e *Engine) Provider() textlayout.Provider { return e.provider }

// Ruleset returns the engine's ruleset.
func (e *Engine) Ruleset() *rules.Ruleset { return e.rules }

// AnnotateAndLayout renders one request synchronously. A block that does not
// fit is still returned, with Block.Fits false.
func (e *Engine) AnnotateAndLayout(req Request) Result {
	l := applog.WithOperation(e.log, "annotate_and_layout").With(slog.String("id", req.ID))
	began := time.Now()

	m := e.annotator.Annotate(req.Text, req.AlsoBold)

	c := req.Constraint
	if c.ShrinkStep <= 0 {
		c.ShrinkStep = e.shrinkStep
	}
	if c.MinShrinkFactor <= 0 {
		c.MinShrinkFactor = e.minShrinkFactor
	}
	block := e.autofit.Layout(m, req.Style, c)

	opts := highlight.Options{BodyX: req.BodyX, BodyWidth: req.BodyWidth, PadTop: e.padTop, PadBottom: e.padBottom}
	tree, spans := highlight.Apply(block.Tree, e.rules.Highlights, opts)
	block.Tree = tree

	if !block.Fits {
		l.Warn("fit failure", slog.Float64("size", float64(block.Size)), slog.Int("lines", block.Lines))
	}
	l.Debug("rendered",
		slog.Float64("size", float64(block.Size)),
		slog.Int("attempts", block.Attempts),
		slog.Int("highlights", len(spans)),
		slog.Duration("took", time.Since(began)),
	)
	return Result{ID: req.ID, Markup: m, Block: block, Spans: spans}
}

// RenderBatch renders independent requests on up to workers goroutines.
// Results keep the order of reqs. Only cancellation of ctx fails the batch;
// a request that does not fit is reported in its own result.
func (e *Engine) RenderBatch(ctx context.Context, reqs []Request, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = e.AnnotateAndLayout(reqs[i])
			e.log.DebugContext(applog.WithCard(gctx, reqs[i].ID), "batch item done", slog.Bool("fits", out[i].Block.Fits))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render batch: %w", err)
	}
	return out, nil
}
