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

package datatable

import "unicode"

// FilterResult is the output of the filter stage.
type FilterResult struct {
	// Matched holds the matching rows in input order.
	Matched []Row
	// Indices holds the input position of each matched row.
	Indices []int
	// Highlights maps an input position to the match spans of each
	// matching column. It is empty when the query is empty.
	Highlights map[int]map[string][]Span
}

// FilterRows keeps the rows where the stringified value of any column contains
// query, ignoring case. An empty query returns all rows and no highlights.
func FilterRows(rows []Row, columns []Column, query string) FilterResult {
	indices, highlights := filterIndices(rows, columns, query, nil, nil)
	matched := make([]Row, len(indices))
	for i, idx := range indices {
		matched[i] = rows[idx]
	}
	return FilterResult{Matched: matched, Indices: indices, Highlights: highlights}
}

// filterIndices returns the input positions that pass the query and the
// optional predicate. onErr is called for rows whose predicate fails.
func filterIndices(rows []Row, columns []Column, query string, pred Filter, onErr func(int, error)) ([]int, map[int]map[string][]Span) {
	highlights := make(map[int]map[string][]Span)
	needle := []rune(query)
	for i, r := range needle {
		needle[i] = unicode.ToLower(r)
	}

	indices := make([]int, 0, len(rows))
	for i, row := range rows {
		if len(needle) > 0 {
			spans := matchRow(row, columns, needle)
			if spans == nil {
				continue
			}
			if pred != nil && !evaluate(pred, row, i, onErr) {
				continue
			}
			highlights[i] = spans
		} else if pred != nil && !evaluate(pred, row, i, onErr) {
			continue
		}
		indices = append(indices, i)
	}
	return indices, highlights
}

func evaluate(pred Filter, row Row, idx int, onErr func(int, error)) bool {
	ok, err := pred.Evaluate(row)
	if err != nil {
		if onErr != nil {
			onErr(idx, err)
		}
		return false
	}
	return ok
}

// matchRow returns the spans per matching column, or nil if no column matches.
func matchRow(row Row, columns []Column, needle []rune) map[string][]Span {
	var spans map[string][]Span
	for _, col := range columns {
		found := findSpans(row.Get(col.Key).Formatted, needle)
		if len(found) == 0 {
			continue
		}
		if spans == nil {
			spans = make(map[string][]Span)
		}
		spans[col.Key] = found
	}
	return spans
}

// findSpans locates every non-overlapping, case-insensitive occurrence of the
// lowercased needle in text. Spans are byte offsets into text.
func findSpans(text string, needle []rune) []Span {
	if text == "" || len(needle) == 0 {
		return nil
	}

	// unicode.ToLower maps one rune to one rune, so rune positions in the
	// lowered haystack line up with offsets in the original text.
	hay := make([]rune, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for off, r := range text {
		hay = append(hay, unicode.ToLower(r))
		offsets = append(offsets, off)
	}
	offsets = append(offsets, len(text))

	var spans []Span
	for i := 0; i+len(needle) <= len(hay); {
		if runesEqual(hay[i:i+len(needle)], needle) {
			spans = append(spans, Span{Start: offsets[i], End: offsets[i+len(needle)]})
			i += len(needle)
			continue
		}
		i++
	}
	return spans
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
