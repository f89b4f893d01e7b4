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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/tableview/datatable"
)

const peopleCSV = "id,name,age\n1,Ann,34\n2,Bob,27\n3,Cid,41\n4,Dan,19\n"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "config.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(peopleCSV), 0o644))
	return path
}

func TestShow(t *testing.T) {
	path := writeCSV(t)

	out, err := run(t, "show", path, "--filter", "n", "--sort", "age:desc")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1-2 of 2 matching rows (total dataset: 4)")
	assert.Contains(t, out, "age ↓")
	assert.Less(t, strings.Index(out, "Ann"), strings.Index(out, "Dan"))
	assert.NotContains(t, out, "Bob")
}

func TestShow_Pages(t *testing.T) {
	path := writeCSV(t)

	out, err := run(t, "show", path, "--page-size", "3", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 4-4 of 4 matching rows (total dataset: 4) | Page 2 of 2")

	out, err = run(t, "show", path, "--page-size", "3", "--all-pages")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1 of 2")
	assert.Contains(t, out, "Page 2 of 2")
}

func TestShow_Errors(t *testing.T) {
	path := writeCSV(t)

	_, err := run(t, "show", path, "--sort", "nope")
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)

	_, err = run(t, "show", path, "--script", "row[")
	assert.ErrorIs(t, err, datatable.ErrInvalidFilter)

	_, err = run(t, "show", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShow_WhereAndScript(t *testing.T) {
	path := writeCSV(t)

	out, err := run(t, "show", path, "--where", "age > 20", "--script", `row["name"].(string) != "Bob"`)
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1-2 of 2 matching rows (total dataset: 4)")
	assert.NotContains(t, out, "Bob")
	assert.NotContains(t, out, "Dan")
}

func TestExport(t *testing.T) {
	path := writeCSV(t)

	out, err := run(t, "export", path, "--where", "age > 20", "--sort", "name:desc")
	require.NoError(t, err)
	assert.Equal(t, "id,name,age\n3,Cid,41\n2,Bob,27\n1,Ann,34\n", out)

	target := filepath.Join(t.TempDir(), "out.json")
	_, err = run(t, "export", path, "--filter", "bob", "--out", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":2,"name":"Bob","age":27}]`, string(data))
}

func TestConfigInit(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "config", "init"})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, cfgPath)
	assert.Contains(t, out.String(), "wrote "+cfgPath)
}

func TestParseSort(t *testing.T) {
	key, dir, err := parseSort("age")
	require.NoError(t, err)
	assert.Equal(t, "age", key)
	assert.Equal(t, datatable.SortAscending, dir)

	_, dir, err = parseSort("age:DESC")
	require.NoError(t, err)
	assert.Equal(t, datatable.SortDescending, dir)

	_, _, err = parseSort("age:up")
	assert.Error(t, err)
}

func TestLoadOptions(t *testing.T) {
	f := tableFlags{delimiter: "tab"}
	opts, err := f.loadOptions()
	require.NoError(t, err)
	assert.Equal(t, '\t', opts.Delimiter)

	f.delimiter = ";"
	opts, err = f.loadOptions()
	require.NoError(t, err)
	assert.Equal(t, ';', opts.Delimiter)

	f.delimiter = ";;"
	_, err = f.loadOptions()
	assert.Error(t, err)
}
