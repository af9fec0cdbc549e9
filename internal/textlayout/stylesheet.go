/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "sort"

// StyleSheet provides hierarchical resolution of TextStyle presets.
// It supports three scopes:
//   - Global: app defaults or builtins
//   - Set: styles shared by every card of a set or locale
//   - Card: overrides for a single card
//
// Resolution precedence is Card > Set > Global > Builtin.
type StyleSheet struct {
	Global map[string]TextStyle
	Set    map[string]TextStyle
	Card   map[string]TextStyle
}

// NewStyleSheet creates a stylesheet with empty scopes and builtin styles
// copied into Global for convenience.
func NewStyleSheet() *StyleSheet {
	ss := &StyleSheet{
		Global: map[string]TextStyle{},
		Set:    map[string]TextStyle{},
		Card:   map[string]TextStyle{},
	}
	for _, name := range ListStyles() {
		if st, ok := GetStyle(name); ok {
			ss.Global[name] = st
		}
	}
	return ss
}

// WithSet returns a copy with the provided set-level overrides merged.
func (s *StyleSheet) WithSet(over map[string]TextStyle) *StyleSheet {
	cp := s.clone()
	for k, v := range over {
		cp.Set[k] = v
	}
	return cp
}

// WithCard returns a copy with the provided card-level overrides merged.
func (s *StyleSheet) WithCard(over map[string]TextStyle) *StyleSheet {
	cp := s.clone()
	for k, v := range over {
		cp.Card[k] = v
	}
	return cp
}

// Resolve returns the effective TextStyle by name using precedence Card > Set > Global > Builtin.
// The second return value is false if the name cannot be resolved at any level.
func (s *StyleSheet) Resolve(name string) (TextStyle, bool) {
	if s == nil {
		return GetStyle(name)
	}
	if st, ok := s.Card[name]; ok {
		return st, true
	}
	if st, ok := s.Set[name]; ok {
		return st, true
	}
	if st, ok := s.Global[name]; ok {
		return st, true
	}
	return GetStyle(name)
}

// Names returns the known style names: builtins in ListStyles order, then
// the remaining names sorted.
func (s *StyleSheet) Names() []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range ListStyles() {
		if _, ok := s.Resolve(name); ok {
			out = append(out, name)
			seen[name] = true
		}
	}
	var extra []string
	for _, m := range []map[string]TextStyle{s.Global, s.Set, s.Card} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func (s *StyleSheet) clone() *StyleSheet {
	cp := &StyleSheet{Global: map[string]TextStyle{}, Set: map[string]TextStyle{}, Card: map[string]TextStyle{}}
	for k, v := range s.Global {
		cp.Global[k] = v
	}
	for k, v := range s.Set {
		cp.Set[k] = v
	}
	for k, v := range s.Card {
		cp.Card[k] = v
	}
	return cp
}
