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

package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magpierre/tableview/datatable"
)

// CompOp is a comparison operator in a query expression.
type CompOp int

const (
	OpEqual CompOp = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpContains
)

var opSymbols = []struct {
	op     CompOp
	symbol string
}{
	// Longer symbols first so ">=" is not read as ">".
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpNotEqual, "!="},
	{OpEqual, "="},
	{OpGreater, ">"},
	{OpLess, "<"},
	{OpContains, "~"},
}

// String returns the operator symbol.
func (op CompOp) String() string {
	for _, s := range opSymbols {
		if s.op == op {
			return s.symbol
		}
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Expression is a single comparison. An empty Column with OpContains searches
// every column.
type Expression struct {
	Column   string
	Operator CompOp
	Value    string
}

// Query is a sequence of expressions joined left to right by logic operators.
// It implements datatable.Filter.
type Query struct {
	Expressions []Expression
	LogicOps    []LogicOp

	keys []string
}

// ParseQuery parses expressions such as `age > 25 AND status = active`.
// Column names match keys or labels case-insensitively. Words without an
// operator search every column. An empty query returns nil.
func ParseQuery(input string, columns []datatable.Column) (*Query, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	lookup := make(map[string]string, len(columns)*2)
	keys := make([]string, len(columns))
	for i, c := range columns {
		keys[i] = c.Key
		lookup[strings.ToLower(c.Key)] = c.Key
		if c.Label != "" {
			lookup[strings.ToLower(c.Label)] = c.Key
		}
	}

	q := &Query{keys: keys}
	expectExpr := true
	for _, part := range splitByLogicOps(input) {
		if part.isOperator {
			if expectExpr {
				return nil, fmt.Errorf("%w: unexpected %s", datatable.ErrInvalidFilter, part.text)
			}
			if part.text == "AND" {
				q.LogicOps = append(q.LogicOps, LogicAND)
			} else {
				q.LogicOps = append(q.LogicOps, LogicOR)
			}
			expectExpr = true
			continue
		}
		if !expectExpr {
			return nil, fmt.Errorf("%w: missing AND/OR before %q", datatable.ErrInvalidFilter, part.text)
		}
		expr, err := parseExpression(part.text, lookup)
		if err != nil {
			return nil, err
		}
		q.Expressions = append(q.Expressions, expr)
		expectExpr = false
	}

	if expectExpr {
		return nil, fmt.Errorf("%w: query ends with an operator", datatable.ErrInvalidFilter)
	}
	return q, nil
}

type queryPart struct {
	text       string
	isOperator bool
}

// splitByLogicOps splits the query on whole-word AND/OR, keeping the operators.
func splitByLogicOps(query string) []queryPart {
	var parts []queryPart
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			parts = append(parts, queryPart{text: s})
		}
		current.Reset()
	}

	for i := 0; i < len(query); {
		matched := false
		for _, word := range []string{"AND", "OR"} {
			end := i + len(word)
			if end > len(query) || !strings.EqualFold(query[i:end], word) {
				continue
			}
			if (i == 0 || isWhitespace(query[i-1])) && (end == len(query) || isWhitespace(query[end])) {
				flush()
				parts = append(parts, queryPart{text: word, isOperator: true})
				i = end
				matched = true
				break
			}
		}
		if !matched {
			current.WriteByte(query[i])
			i++
		}
	}
	flush()
	return parts
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func parseExpression(text string, lookup map[string]string) (Expression, error) {
	for _, s := range opSymbols {
		idx := strings.Index(text, s.symbol)
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(text[:idx])
		key, ok := lookup[strings.ToLower(name)]
		if !ok {
			return Expression{}, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, name)
		}
		value := strings.Trim(strings.TrimSpace(text[idx+len(s.symbol):]), "\"'")
		return Expression{Column: key, Operator: s.op, Value: value}, nil
	}

	return Expression{Operator: OpContains, Value: text}, nil
}

// Evaluate implements the datatable.Filter interface.
func (q *Query) Evaluate(row datatable.Row) (bool, error) {
	if q == nil || len(q.Expressions) == 0 {
		return true, nil
	}

	result := q.evaluateExpression(q.Expressions[0], row)
	for i, op := range q.LogicOps {
		next := q.evaluateExpression(q.Expressions[i+1], row)
		switch op {
		case LogicAND:
			result = result && next
		case LogicOR:
			result = result || next
		}
	}
	return result, nil
}

// Description implements the datatable.Filter interface.
func (q *Query) Description() string {
	if q == nil || len(q.Expressions) == 0 {
		return "empty query"
	}
	var b strings.Builder
	for i, e := range q.Expressions {
		if i > 0 {
			b.WriteString(" " + q.LogicOps[i-1].String() + " ")
		}
		if e.Column == "" {
			fmt.Fprintf(&b, "any ~ %q", e.Value)
			continue
		}
		fmt.Fprintf(&b, "%s %s %q", e.Column, e.Operator, e.Value)
	}
	return b.String()
}

func (q *Query) evaluateExpression(expr Expression, row datatable.Row) bool {
	if expr.Column == "" {
		needle := strings.ToLower(expr.Value)
		for _, key := range q.keys {
			if strings.Contains(strings.ToLower(row.Get(key).Formatted), needle) {
				return true
			}
		}
		return false
	}

	cell := row.Get(expr.Column)
	switch expr.Operator {
	case OpEqual:
		return strings.EqualFold(cell.Formatted, expr.Value)
	case OpNotEqual:
		return !strings.EqualFold(cell.Formatted, expr.Value)
	case OpContains:
		return strings.Contains(strings.ToLower(cell.Formatted), strings.ToLower(expr.Value))
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		if cell.IsNull {
			return false
		}
		return compareOrdered(cell, expr.Value, expr.Operator)
	}
	return false
}

// compareOrdered compares numerically when both sides parse as numbers and
// falls back to case-insensitive string comparison.
func compareOrdered(cell datatable.Value, value string, op CompOp) bool {
	var c int
	left, lok := cell.Float64()
	if !lok {
		f, err := strconv.ParseFloat(strings.TrimSpace(cell.Formatted), 64)
		left, lok = f, err == nil
	}
	right, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	switch {
	case lok && err == nil:
		switch {
		case left < right:
			c = -1
		case left > right:
			c = 1
		}
	default:
		c = strings.Compare(strings.ToLower(cell.Formatted), strings.ToLower(value))
	}

	switch op {
	case OpGreater:
		return c > 0
	case OpLess:
		return c < 0
	case OpGreaterEqual:
		return c >= 0
	case OpLessEqual:
		return c <= 0
	}
	return false
}
