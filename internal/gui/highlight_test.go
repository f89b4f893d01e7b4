// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gui

import (
	"testing"

	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/tableview/datatable"
)

func TestTokenize_Query(t *testing.T) {
	names := columnSet([]datatable.Column{{Key: "age", Label: "Age"}})
	got := Tokenize(ModeQuery, "Age > 30 and x", names)
	assert.Equal(t, []Token{
		{Text: "Age", Kind: TokenColumn},
		{Text: " ", Kind: TokenPlain},
		{Text: ">", Kind: TokenOperator},
		{Text: " ", Kind: TokenPlain},
		{Text: "30", Kind: TokenNumber},
		{Text: " ", Kind: TokenPlain},
		{Text: "and", Kind: TokenKeyword},
		{Text: " x", Kind: TokenPlain},
	}, got)
}

func TestTokenize_Script(t *testing.T) {
	names := columnSet([]datatable.Column{{Key: "name", Label: "Name"}})
	got := Tokenize(ModeScript, `row["name"].(string) == "a\"b"`, names)
	assert.Equal(t, []Token{
		{Text: "row", Kind: TokenPlain},
		{Text: "[", Kind: TokenOperator},
		{Text: `"name"`, Kind: TokenColumn},
		{Text: "].(", Kind: TokenOperator},
		{Text: "string", Kind: TokenKeyword},
		{Text: ")", Kind: TokenOperator},
		{Text: " ", Kind: TokenPlain},
		{Text: "==", Kind: TokenOperator},
		{Text: " ", Kind: TokenPlain},
		{Text: `"a\"b"`, Kind: TokenString},
	}, got)

	unclosed := Tokenize(ModeScript, `"abc`, names)
	assert.Equal(t, []Token{{Text: `"abc`, Kind: TokenString}}, unclosed)
}

func TestPredicateSegments(t *testing.T) {
	segs := PredicateSegments([]Token{{Text: "AND", Kind: TokenKeyword}, {Text: " x", Kind: TokenPlain}})
	require.Len(t, segs, 2)
	kw := segs[0].(*widget.TextSegment)
	assert.Equal(t, theme.ColorNamePrimary, kw.Style.ColorName)
	assert.True(t, kw.Style.TextStyle.Monospace)
	assert.True(t, kw.Style.TextStyle.Bold)
	assert.True(t, segs[1].(*widget.TextSegment).Style.Inline)
}
