/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"cardsmith/internal/cardtext"
	"cardsmith/internal/config"
	applog "cardsmith/internal/log"
	"cardsmith/internal/rules"
	"cardsmith/internal/textlayout"
	"cardsmith/internal/version"
)

// customFamily names configured fonts when no family is given.
const customFamily = "Custom"

// app carries state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	cfg     config.AppConfig
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "cardsmith",
		Short:        "Annotate, fit and render card rules text",
		Long:         `cardsmith bolds keywords in card rules text, shrinks it to fit the card's text box and marks highlighted phrases.`,
		Version:      version.String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ~/.config/cardsmith/config.yaml)")

	root.AddCommand(
		newVersionCmd(),
		newAnnotateCmd(a),
		newRenderCmd(a),
		newCatalogCmd(a),
	)
	return root
}

func (a *app) init() error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFrom(a.cfgFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applog.Init(applog.Options{
		Level:     a.cfg.Logging.Level,
		Format:    a.cfg.Logging.Format,
		AddSource: a.cfg.Logging.Source,
		File:      a.cfg.Logging.File,
	})
	applog.WithComponent("cli").Debug("config loaded", slog.String("rules", a.cfg.Rules), slog.Int("workers", a.cfg.Layout.Workers))
	return nil
}

// ruleset returns the configured ruleset, or the built-in one.
func (a *app) ruleset() (*rules.Ruleset, error) {
	if a.cfg.Rules == "" {
		return rules.Default(), nil
	}
	return rules.LoadFile(a.cfg.Rules)
}

// engine builds the text engine and the stylesheet its requests use.
func (a *app) engine() (*cardtext.Engine, *textlayout.StyleSheet, error) {
	rs, err := a.ruleset()
	if err != nil {
		return nil, nil, err
	}
	ss := textlayout.NewStyleSheet()
	lib := textlayout.GoFonts()
	if f := a.cfg.Fonts; f.HasFonts() {
		family := f.Family
		if family == "" {
			family = customFamily
		}
		for _, ff := range []struct {
			path   string
			weight int
			italic bool
		}{
			{f.Regular, textlayout.WeightRegular, false},
			{f.Bold, textlayout.WeightBold, false},
			{f.Italic, textlayout.WeightRegular, true},
			{f.BoldItalic, textlayout.WeightBold, true},
		} {
			if ff.path == "" {
				continue
			}
			if err := lib.LoadTTF(family, ff.weight, ff.italic, ff.path); err != nil {
				return nil, nil, err
			}
		}
		over := map[string]textlayout.TextStyle{}
		for _, name := range []string{"Rules", "RulesInverse"} {
			st, _ := ss.Resolve(name)
			st.Font.Family = family
			over[name] = st
		}
		ss = ss.WithSet(over)
	}
	l := a.cfg.Layout
	e := cardtext.New(rs, textlayout.OTProvider{Lib: lib},
		cardtext.WithShrink(l.ShrinkStep, l.MinShrinkFactor),
		cardtext.WithHighlightPadding(float32(l.HighlightPadTop), float32(l.HighlightPadBottom)),
		cardtext.WithPatternCache(rules.NewPatternCache(rules.DefaultPatternExpiration, rules.DefaultPatternCleanup)),
	)
	return e, ss, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
