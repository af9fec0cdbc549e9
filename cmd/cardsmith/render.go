/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cardsmith/internal/card"
	"cardsmith/internal/cardtext"
	applog "cardsmith/internal/log"
	"cardsmith/internal/raster"
	"cardsmith/internal/textlayout"
	"cardsmith/internal/vector"
)

// cardMargin is the frame left below the text box on rendered PNGs.
const cardMargin = 29

func newRenderCmd(a *app) *cobra.Command {
	var (
		cardFile string
		text     string
		alsoBold []string
		variant  string
		typ      string
		over     bool
		pngDir   string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Lay out rules text and report the chosen size",
		Long: `Run the full pipeline on a card file or on a single text and print the
chosen font size, whether it fit, the annotated markup and the highlight bands.

Examples:
  cardsmith render --text "Block (3). Draw a card."
  cardsmith render --card cards.yaml --png out/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cards []card.Card
			switch {
			case cardFile != "" && text != "":
				return errors.New("use either --card or --text")
			case cardFile != "":
				cs, err := card.LoadFile(cardFile)
				if err != nil {
					return err
				}
				cards = cs
			case text != "":
				cards = []card.Card{{Name: "text", Text: text, AlsoBold: alsoBold, Type: typ, Variant: variant, Oversized: over}}
			default:
				return errors.New("one of --card or --text is required")
			}
			return a.renderCards(cmd.Context(), cmd.OutOrStdout(), cards, pngDir)
		},
	}
	cmd.Flags().StringVar(&cardFile, "card", "", "YAML file with one or more cards")
	cmd.Flags().StringVar(&text, "text", "", "rules text to render")
	cmd.Flags().StringArrayVarP(&alsoBold, "also-bold", "b", nil, "extra phrase to bold with --text (can be repeated)")
	cmd.Flags().StringVar(&variant, "variant", "", "card variant for --text (e.g. Unity, Transformed)")
	cmd.Flags().StringVar(&typ, "type", "", "card type for --text (e.g. Hero, Equipment)")
	cmd.Flags().BoolVar(&over, "oversized", false, "use the oversized frame for --text (Hero and Villain types only)")
	cmd.Flags().StringVar(&pngDir, "png", "", "write a PNG per card into this directory")
	return cmd
}

// renderCards runs cards through the engine concurrently and prints a report.
func (a *app) renderCards(ctx context.Context, w io.Writer, cards []card.Card, pngDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	l := applog.WithOperation(applog.WithComponent("cli"), "render")
	e, ss, err := a.engine()
	if err != nil {
		return err
	}
	reqs := make([]cardtext.Request, len(cards))
	for i, c := range cards {
		reqs[i] = card.Request(c, ss)
	}
	results, err := e.RenderBatch(ctx, reqs, a.cfg.Layout.Workers)
	if err != nil {
		return err
	}
	if pngDir != "" {
		if err := os.MkdirAll(pngDir, 0o755); err != nil {
			return fmt.Errorf("create png dir: %w", err)
		}
	}
	failed := 0
	for i, res := range results {
		if !res.Block.Fits {
			failed++
		}
		printResult(w, res)
		if pngDir == "" {
			continue
		}
		path := filepath.Join(pngDir, fileName(cards[i].Name)+".png")
		if err := writePNG(path, cards[i], res, e.Provider()); err != nil {
			return err
		}
		l.Info("png written", slog.String("path", path))
	}
	if failed > 0 {
		l.Warn("cards did not fit", slog.Int("count", failed), slog.Int("total", len(results)))
	}
	return nil
}

func printResult(w io.Writer, res cardtext.Result) {
	b := res.Block
	fmt.Fprintf(w, "%s: size=%g fits=%t lines=%d attempts=%d\n", res.ID, b.Size, b.Fits, b.Lines, b.Attempts)
	fmt.Fprintf(w, "  markup: %s\n", res.Markup.String())
	for _, s := range res.Spans {
		r := s.Rect
		fmt.Fprintf(w, "  highlight %s %q rect=(%g,%g %gx%g)\n", s.Color.Hex(), s.Phrases, r.X, r.Y, r.W, r.H)
	}
}

// writePNG draws one result on a canvas the width of the card, down to the
// bottom of its text box.
func writePNG(path string, c card.Card, res cardtext.Result, provider textlayout.Provider) error {
	z := card.TextZone(c)
	width := card.Width
	if c.UsesOversizedFrame() {
		width = card.OversizedWidth
	}
	bg := vector.White
	if z.Fill == vector.White {
		bg = vector.Black
	}
	img := raster.NewCanvas(width, int(z.Y+z.Height)+cardMargin, bg)
	raster.Paint(img, vector.Pt{X: z.X, Y: z.Y}, res.Block.Tree, res.Spans, provider)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := raster.EncodePNG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// fileName turns a card name into a safe file name.
func fileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "card"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
