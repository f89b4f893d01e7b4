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

// Package filter provides row predicates for the datatable filter stage.
package filter

import (
	"fmt"
	"strings"

	"github.com/magpierre/tableview/datatable"
)

// LogicOp represents a logical operator for combining filters.
type LogicOp int

const (
	// LogicAND requires all filters to pass.
	LogicAND LogicOp = iota
	// LogicOR requires at least one filter to pass.
	LogicOR
)

// String returns the string representation of a LogicOp.
func (op LogicOp) String() string {
	switch op {
	case LogicAND:
		return "AND"
	case LogicOR:
		return "OR"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// CompositeFilter joins predicates with one logic operator. With no
// predicates every row passes.
type CompositeFilter struct {
	Filters []datatable.Filter
	Logic   LogicOp
}

// And joins filters so that every one must pass. Nil filters are dropped.
func And(filters ...datatable.Filter) *CompositeFilter {
	return &CompositeFilter{Filters: compact(filters), Logic: LogicAND}
}

// Or joins filters so that at least one must pass. Nil filters are dropped.
func Or(filters ...datatable.Filter) *CompositeFilter {
	return &CompositeFilter{Filters: compact(filters), Logic: LogicOR}
}

func compact(filters []datatable.Filter) []datatable.Filter {
	out := filters[:0:0]
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Evaluate implements the datatable.Filter interface. AND stops at the first
// rejecting predicate and OR at the first accepting one.
func (f *CompositeFilter) Evaluate(row datatable.Row) (bool, error) {
	if len(f.Filters) == 0 {
		return true, nil
	}
	var decisive bool
	switch f.Logic {
	case LogicAND:
		decisive = false
	case LogicOR:
		decisive = true
	default:
		return false, fmt.Errorf("%w: unknown logic operator %d", datatable.ErrInvalidFilter, f.Logic)
	}

	for i, sub := range f.Filters {
		ok, err := sub.Evaluate(row)
		if err != nil {
			return false, fmt.Errorf("%s operand %d: %w", f.Logic, i+1, err)
		}
		if ok == decisive {
			return decisive, nil
		}
	}
	return !decisive, nil
}

// Description implements the datatable.Filter interface.
func (f *CompositeFilter) Description() string {
	switch len(f.Filters) {
	case 0:
		return "all rows"
	case 1:
		return f.Filters[0].Description()
	}
	parts := make([]string, len(f.Filters))
	for i, sub := range f.Filters {
		parts[i] = sub.Description()
	}
	return "(" + strings.Join(parts, " "+f.Logic.String()+" ") + ")"
}

// NotFilter inverts a predicate. Errors pass through.
type NotFilter struct {
	Filter datatable.Filter
}

// Not inverts f.
func Not(f datatable.Filter) *NotFilter { return &NotFilter{Filter: f} }

// Evaluate implements the datatable.Filter interface.
func (f *NotFilter) Evaluate(row datatable.Row) (bool, error) {
	ok, err := f.Filter.Evaluate(row)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Description implements the datatable.Filter interface.
func (f *NotFilter) Description() string { return "NOT " + f.Filter.Description() }
