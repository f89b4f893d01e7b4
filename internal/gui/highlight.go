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
	"strings"
	"unicode"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// TokenKind classifies a run of predicate text.
type TokenKind int

const (
	TokenPlain TokenKind = iota
	TokenKeyword
	TokenString
	TokenNumber
	TokenOperator
	TokenColumn
)

// Token is a run of text with one kind.
type Token struct {
	Text string
	Kind TokenKind
}

var scriptKeywords = map[string]bool{
	"true": true, "false": true, "nil": true,
	"int64": true, "float64": true, "string": true, "bool": true,
	"strings": true, "strconv": true, "time": true,
}

var queryKeywords = map[string]bool{"AND": true, "OR": true}

// Tokenize splits a predicate in mode into tokens. Words that name a column
// key are TokenColumn.
func Tokenize(mode, text string, columns map[string]bool) []Token {
	runes := []rune(text)
	var out []Token
	emit := func(kind TokenKind, start, end int) {
		s := string(runes[start:end])
		if n := len(out); n > 0 && out[n-1].Kind == kind {
			out[n-1].Text += s
			return
		}
		out = append(out, Token{Text: s, Kind: kind})
	}

	for pos := 0; pos < len(runes); {
		r := runes[pos]
		switch {
		case r == '"' || r == '`':
			end := scanString(runes, pos)
			kind := TokenString
			if mode == ModeScript && columns[strings.Trim(string(runes[pos:end]), "\"`")] {
				kind = TokenColumn
			}
			emit(kind, pos, end)
			pos = end
		case unicode.IsDigit(r):
			end := pos
			for end < len(runes) && (unicode.IsDigit(runes[end]) || runes[end] == '.') {
				end++
			}
			emit(TokenNumber, pos, end)
			pos = end
		case unicode.IsLetter(r) || r == '_':
			end := pos
			for end < len(runes) && (unicode.IsLetter(runes[end]) || unicode.IsDigit(runes[end]) || runes[end] == '_') {
				end++
			}
			word := string(runes[pos:end])
			kind := TokenPlain
			switch {
			case mode == ModeScript && scriptKeywords[word]:
				kind = TokenKeyword
			case mode == ModeQuery && queryKeywords[strings.ToUpper(word)]:
				kind = TokenKeyword
			case mode == ModeQuery && columns[strings.ToLower(word)]:
				kind = TokenColumn
			}
			emit(kind, pos, end)
			pos = end
		case strings.ContainsRune("+-*/%&|^<>=!:~()[].,", r):
			emit(TokenOperator, pos, pos+1)
			pos++
		default:
			emit(TokenPlain, pos, pos+1)
			pos++
		}
	}
	return out
}

func scanString(runes []rune, start int) int {
	quote := runes[start]
	pos := start + 1
	for pos < len(runes) {
		switch {
		case quote == '"' && runes[pos] == '\\' && pos+1 < len(runes):
			pos += 2
			continue
		case runes[pos] == quote:
			return pos + 1
		}
		pos++
	}
	return pos
}

var tokenStyles = map[TokenKind]widget.RichTextStyle{
	TokenKeyword:  {Inline: true, ColorName: theme.ColorNamePrimary, TextStyle: fyne.TextStyle{Bold: true}},
	TokenString:   {Inline: true, ColorName: theme.ColorNameSuccess},
	TokenNumber:   {Inline: true, ColorName: theme.ColorNameWarning},
	TokenOperator: {Inline: true, ColorName: theme.ColorNamePlaceHolder},
	TokenColumn:   {Inline: true, ColorName: theme.ColorNameForeground, TextStyle: fyne.TextStyle{Italic: true, Bold: true}},
}

// PredicateSegments renders tokens as rich text segments in a monospace font.
func PredicateSegments(tokens []Token) []widget.RichTextSegment {
	segs := make([]widget.RichTextSegment, 0, len(tokens))
	for _, tok := range tokens {
		style, ok := tokenStyles[tok.Kind]
		if !ok {
			style = widget.RichTextStyleInline
		}
		style.TextStyle.Monospace = true
		segs = append(segs, &widget.TextSegment{Text: tok.Text, Style: style})
	}
	return segs
}
