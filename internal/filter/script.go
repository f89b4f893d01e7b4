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
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/magpierre/tableview/datatable"
)

// scriptTemplate wraps a boolean expression in an interpreted function. The
// blank references keep the imports used whatever the expression contains.
const scriptTemplate = `package predicate

import (
	"strings"
	"strconv"
	"time"
)

var (
	_ = strings.Contains
	_ = strconv.Itoa
	_ = time.Now
)

func Match(row map[string]interface{}) bool {
	return %s
}
`

// ScriptFilter evaluates a Go boolean expression against each row using the
// yaegi interpreter. The expression sees `row`, a map from column key to the
// raw cell value (nil for null cells), and may use strings, strconv and time.
//
//	row["age"].(int64) > 30 && strings.HasPrefix(row["name"].(string), "A")
type ScriptFilter struct {
	expr  string
	match func(map[string]interface{}) bool
}

// NewScriptFilter compiles expr. Compilation errors wrap ErrInvalidFilter.
func NewScriptFilter(expr string) (*ScriptFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty script", datatable.ErrInvalidFilter)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib symbols: %w", err)
	}

	if _, err := i.Eval(fmt.Sprintf(scriptTemplate, expr)); err != nil {
		return nil, fmt.Errorf("%w: %v", datatable.ErrInvalidFilter, err)
	}

	v, err := i.Eval("predicate.Match")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", datatable.ErrInvalidFilter, err)
	}
	match, ok := v.Interface().(func(map[string]interface{}) bool)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected predicate type %s", datatable.ErrInvalidFilter, v.Type())
	}

	return &ScriptFilter{expr: expr, match: match}, nil
}

// Evaluate implements the datatable.Filter interface. A panic in the script,
// such as a failed type assertion on a null cell, is returned as an error.
func (f *ScriptFilter) Evaluate(row datatable.Row) (ok bool, err error) {
	raw := make(map[string]interface{}, len(row))
	for k, v := range row {
		if v.IsNull {
			raw[k] = nil
			continue
		}
		raw[k] = v.Raw
	}

	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("script %q: %v", f.expr, r)
		}
	}()
	return f.match(raw), nil
}

// Description implements the datatable.Filter interface.
func (f *ScriptFilter) Description() string {
	return "script(" + f.expr + ")"
}
