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
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cardsmith/internal/annotate"
)

func newAnnotateCmd(a *app) *cobra.Command {
	var alsoBold []string
	cmd := &cobra.Command{
		Use:   "annotate [text]",
		Short: "Print rules text with bold and italic tags",
		Long: `Annotate rules text and print it with [b] and [i] tags.

The text is read from the arguments, or from stdin when none are given.

Examples:
  cardsmith annotate "Once per turn: gain a Power counter."
  cardsmith annotate --also-bold "Galactus" "Galactus devours a world."
  echo "Block (3)" | cardsmith annotate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = strings.TrimRight(string(b), "\r\n")
			}
			rs, err := a.ruleset()
			if err != nil {
				return err
			}
			m := annotate.New(rs).Annotate(text, alsoBold)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), m.String())
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&alsoBold, "also-bold", "b", nil, "extra phrase to bold (can be repeated)")
	return cmd
}
