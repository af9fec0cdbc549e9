/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"reflect"
	"testing"

	"cardsmith/internal/vector"
)

func TestBuiltinStyles(t *testing.T) {
	for _, name := range ListStyles() {
		st, ok := GetStyle(name)
		if !ok {
			t.Fatalf("%s style missing", name)
		}
		if st.Name != name || st.Font.SizePt <= 0 {
			t.Fatalf("bad builtin %s: %+v", name, st)
		}
	}
	if _, ok := GetStyle("Nope"); ok {
		t.Fatalf("unknown style resolved")
	}
}

func TestStyledKeepsHeavierWeight(t *testing.T) {
	st := TextStyle{Font: FontSpec{Weight: 900}}
	if got := st.Styled(true, false).Font.Weight; got != 900 {
		t.Fatalf("weight = %d, want 900", got)
	}
	st = TextStyle{Font: FontSpec{Weight: WeightRegular}}
	got := st.Styled(true, true).Font
	if got.Weight != WeightBold || !got.Italic {
		t.Fatalf("unexpected font %+v", got)
	}
}

func TestStyleSheet_ResolvePrecedence(t *testing.T) {
	ss := NewStyleSheet()
	set := ss.WithSet(map[string]TextStyle{"Rules": {Name: "Rules", Fill: vector.White}})
	card := set.WithCard(map[string]TextStyle{"Rules": {Name: "Rules", Fill: vector.RGB(0xff0000)}})

	if st, _ := ss.Resolve("Rules"); st.Fill != vector.Black {
		t.Fatalf("global Rules should be black, got %v", st.Fill)
	}
	if st, _ := set.Resolve("Rules"); st.Fill != vector.White {
		t.Fatalf("set override not applied")
	}
	if st, _ := card.Resolve("Rules"); st.Fill != vector.RGB(0xff0000) {
		t.Fatalf("card override not applied")
	}
	if _, ok := ss.Set["Rules"]; ok {
		t.Fatalf("WithSet must not modify the receiver")
	}
}

func TestStyleSheet_FallbackBuiltin(t *testing.T) {
	ss := &StyleSheet{}
	if _, ok := ss.Resolve("Title"); !ok {
		t.Fatalf("builtin fallback failed")
	}
	var nilSheet *StyleSheet
	if _, ok := nilSheet.Resolve("Flavor"); !ok {
		t.Fatalf("nil sheet should fall back to builtins")
	}
}

func TestStyleSheet_NamesDeterministic(t *testing.T) {
	ss := NewStyleSheet().WithCard(map[string]TextStyle{"Zeta": {}, "Alpha": {}})
	want := append(ListStyles(), "Alpha", "Zeta")
	if got := ss.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
}
