/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "cardsmith/internal/vector"

// Node is an element of a laid-out text tree. The set of implementations is
// closed: *Container and *TextRun.
type Node interface {
	Bounds() vector.Rect
	node()
}

// Container groups child nodes. Children are stored in visual order: top to
// bottom, then left to right within a line.
type Container struct {
	Rect     vector.Rect
	Children []Node
}

// TextRun is a piece of text drawn with a single style. Coordinates are
// absolute within the text block; Baseline is the absolute baseline Y.
type TextRun struct {
	ID       int
	Text     string
	Style    TextStyle
	X, Y     float32
	W, H     float32
	Baseline float32
}

func (c *Container) Bounds() vector.Rect { return c.Rect }
func (r *TextRun) Bounds() vector.Rect   { return vector.R(r.X, r.Y, r.W, r.H) }

func (*Container) node() {}
func (*TextRun) node()   {}

// Walk visits n and its descendants depth-first in visual order. Returning
// false from fn skips the children of the visited container.
func Walk(n Node, fn func(Node) bool) {
	switch v := n.(type) {
	case *Container:
		if v == nil || !fn(v) {
			return
		}
		for _, c := range v.Children {
			Walk(c, fn)
		}
	case *TextRun:
		if v != nil {
			fn(v)
		}
	}
}

// Runs returns the text runs under n in visual order.
func Runs(n Node) []*TextRun {
	var out []*TextRun
	Walk(n, func(n Node) bool {
		if r, ok := n.(*TextRun); ok {
			out = append(out, r)
		}
		return true
	})
	return out
}

// Restyle returns a copy of the tree with new styles for the runs restyle
// reports. Unchanged subtrees are shared with the input, which is never
// modified.
func Restyle(n Node, restyle func(*TextRun) (TextStyle, bool)) Node {
	switch v := n.(type) {
	case *Container:
		if v == nil {
			return v
		}
		var children []Node
		for i, c := range v.Children {
			nc := Restyle(c, restyle)
			if nc != c && children == nil {
				children = make([]Node, len(v.Children))
				copy(children, v.Children[:i])
			}
			if children != nil {
				children[i] = nc
			}
		}
		if children == nil {
			return v
		}
		cp := *v
		cp.Children = children
		return &cp
	case *TextRun:
		if v == nil {
			return v
		}
		st, ok := restyle(v)
		if !ok {
			return v
		}
		cp := *v
		cp.Style = st
		return &cp
	}
	return n
}
