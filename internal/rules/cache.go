/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package rules

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"cardsmith/internal/log"
)

const (
	DefaultPatternExpiration = 30 * time.Minute
	DefaultPatternCleanup    = time.Hour
)

// PatternCache keeps compiled literal bold rules for per-card phrases so a
// catalog render does not recompile the same phrase for every card. It is
// safe for concurrent use.
type PatternCache struct {
	cache *gocache.Cache
}

// NewPatternCache creates a cache whose entries expire after expiration of
// disuse.
func NewPatternCache(expiration, cleanup time.Duration) *PatternCache {
	return &PatternCache{cache: gocache.New(expiration, cleanup)}
}

// Rule returns the compiled case-insensitive literal rule for phrase.
func (c *PatternCache) Rule(phrase string) (AnnotationRule, error) {
	if v, ok := c.cache.Get(phrase); ok {
		if r, ok := v.(AnnotationRule); ok {
			c.cache.SetDefault(phrase, r)
			return r, nil
		}
		log.WithComponent("rules").Error("pattern cache: wrong type", "phrase", phrase)
	}
	r, err := LiteralRule("also-bold", phrase)
	if err != nil {
		return AnnotationRule{}, err
	}
	c.cache.SetDefault(phrase, r)
	return r, nil
}

// ExtraRules returns rules for the phrases of phrases that are not already
// covered by rs.Keywords, comparing case-insensitively and keeping order.
func (c *PatternCache) ExtraRules(rs *Ruleset, phrases []string) ([]AnnotationRule, error) {
	if len(phrases) == 0 {
		return nil, nil
	}
	known := make(map[string]bool, len(rs.Keywords))
	for _, k := range rs.Keywords {
		known[strings.ToLower(k)] = true
	}
	var out []AnnotationRule
	for _, p := range dedupeFold(phrases) {
		if known[strings.ToLower(p)] {
			continue
		}
		r, err := c.Rule(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Len reports the number of cached patterns.
func (c *PatternCache) Len() int { return c.cache.ItemCount() }

// Flush drops every cached pattern.
func (c *PatternCache) Flush() { c.cache.Flush() }
