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

	"github.com/spf13/cobra"

	"cardsmith/internal/card"
	"cardsmith/internal/catalog"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Store cards in a SQLite catalog and render them in batch",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "import <db> <cards.yaml>",
			Short: "Add or replace cards from a YAML file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cards, err := card.LoadFile(args[1])
				if err != nil {
					return err
				}
				c, err := catalog.Open(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				defer c.Close()
				if err := c.Put(cmd.Context(), cards...); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d cards into %s\n", len(cards), c.Path())
				return err
			},
		},
		&cobra.Command{
			Use:   "list <db>",
			Short: "List the cards in a catalog",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := catalog.Open(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				defer c.Close()
				cards, err := c.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, cd := range cards {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", cd.Name, cd.Variant)
				}
				return nil
			},
		},
		newCatalogRenderCmd(a),
	)
	return cmd
}

func newCatalogRenderCmd(a *app) *cobra.Command {
	var (
		pngDir  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "render <db>",
		Short: "Render every card of a catalog concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer c.Close()
			cards, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			if workers > 0 {
				a.cfg.Layout.Workers = workers
			}
			return a.renderCards(cmd.Context(), cmd.OutOrStdout(), cards, pngDir)
		},
	}
	cmd.Flags().StringVar(&pngDir, "png", "", "write a PNG per card into this directory")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent renders (default from config)")
	return cmd
}
