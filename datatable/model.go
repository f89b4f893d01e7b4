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

import (
	"slices"

	"go.uber.org/zap"
)

// DefaultPageSize is used when no page size option is given.
const DefaultPageSize = 10

// DefaultPageSizeOptions are the page sizes offered to the user by default.
var DefaultPageSizeOptions = []int{5, 10, 25, 50}

// VisibleRow is one row of the visible window.
type VisibleRow struct {
	// Index is the position of the row in the input rows.
	Index int
	// Row is the record itself.
	Row Row
	// Highlights holds the filter match spans per column key.
	Highlights map[string][]Span
}

// View is the derived output of the pipeline, recomputed after every change.
type View struct {
	Columns      []Column
	Rows         []VisibleRow
	Sort         SortState
	Query        string
	PageSize     int
	CurrentPage  int
	TotalPages   int
	Start        int
	End          int
	MatchingRows int
	TotalRows    int
	Summary      string
}

type modelOptions struct {
	defaultSort     string
	pageSize        int
	pageSizeOptions []int
	sorting         bool
	filtering       bool
	pagination      bool
	scope           SortScope
	predicate       Filter
	logger          *zap.Logger
}

// Option configures a TableModel.
type Option func(*modelOptions)

// WithDefaultSort sorts ascending by key at construction. The resulting order
// anchors page membership under SortScopePage.
func WithDefaultSort(key string) Option {
	return func(o *modelOptions) { o.defaultSort = key }
}

// WithPageSize sets the initial rows per page. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(o *modelOptions) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithPageSizeOptions sets the page sizes offered to the user.
func WithPageSizeOptions(sizes ...int) Option {
	return func(o *modelOptions) {
		o.pageSizeOptions = slices.DeleteFunc(slices.Clone(sizes), func(n int) bool { return n < 1 })
	}
}

// WithSorting enables or disables the sort stage.
func WithSorting(enabled bool) Option {
	return func(o *modelOptions) { o.sorting = enabled }
}

// WithFiltering enables or disables the filter stage.
func WithFiltering(enabled bool) Option {
	return func(o *modelOptions) { o.filtering = enabled }
}

// WithPagination enables or disables the pagination stage.
func WithPagination(enabled bool) Option {
	return func(o *modelOptions) { o.pagination = enabled }
}

// WithSortScope selects page-local or global header sorting.
func WithSortScope(scope SortScope) Option {
	return func(o *modelOptions) { o.scope = scope }
}

// WithPredicate adds a row predicate ANDed with the filter query.
func WithPredicate(f Filter) Option {
	return func(o *modelOptions) { o.predicate = f }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *modelOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// TableModel is the view controller. It owns the filter, sort and pagination
// state and derives the visible window by running filter, sort and paginate
// over the host's rows. Rows are never modified.
//
// A TableModel is not safe for concurrent use; drive it from the goroutine
// that dispatches UI events.
type TableModel struct {
	opts    modelOptions
	columns []Column
	rows    []Row

	filter FilterState
	sort   SortState
	anchor SortState
	page   PaginationState

	// ordered is the filtered sequence in anchor (or global) order.
	ordered    []int
	highlights map[int]map[string][]Span
	view       View
	listeners  []func(View)
}

// NewTableModel creates a model over columns and rows.
func NewTableModel(columns []Column, rows []Row, opts ...Option) (*TableModel, error) {
	if err := ValidateColumns(columns); err != nil {
		return nil, err
	}

	o := modelOptions{
		pageSize:        DefaultPageSize,
		pageSizeOptions: slices.Clone(DefaultPageSizeOptions),
		sorting:         true,
		filtering:       true,
		pagination:      true,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &TableModel{
		opts:    o,
		columns: slices.Clone(columns),
		rows:    rows,
		page:    PaginationState{PageSize: o.pageSize, CurrentPage: 1},
	}
	if o.defaultSort != "" {
		if hasColumn(m.columns, o.defaultSort) {
			m.anchor = SortState{Key: o.defaultSort, Direction: SortAscending}
			m.sort = m.anchor
		} else {
			o.logger.Debug("default sort column not found", zap.String("column", o.defaultSort))
		}
	}
	m.recompute()
	return m, nil
}

// NewTableModelFromSource collects ds and creates a model over it.
func NewTableModelFromSource(ds DataSource, opts ...Option) (*TableModel, error) {
	columns, rows, err := Collect(ds)
	if err != nil {
		return nil, err
	}
	return NewTableModel(columns, rows, opts...)
}

// OnChange registers a listener called with the new view after every state
// change.
func (m *TableModel) OnChange(fn func(View)) {
	m.listeners = append(m.listeners, fn)
}

// OnHeaderClick sorts by the column, or toggles the direction if it is already
// the active sort key. Clicks on unknown or non-sortable columns, or while
// sorting is disabled, change nothing. It reports whether state changed.
func (m *TableModel) OnHeaderClick(key string) bool {
	if !m.opts.sorting {
		m.opts.logger.Debug("header click ignored: sorting disabled", zap.String("column", key))
		return false
	}
	col, ok := findColumn(m.columns, key)
	if !ok || !col.Sortable {
		m.opts.logger.Debug("header click ignored: column not sortable", zap.String("column", key))
		return false
	}

	if m.sort.Key == key {
		m.sort.Direction = m.sort.Direction.Toggle()
	} else {
		m.sort = SortState{Key: key, Direction: SortAscending}
	}
	m.opts.logger.Debug("sort changed",
		zap.String("column", key),
		zap.Stringer("direction", m.sort.Direction))
	m.update()
	return true
}

// OnFilterChange sets the filter query. The current page is clamped to the
// new page count.
func (m *TableModel) OnFilterChange(query string) {
	if !m.opts.filtering {
		m.opts.logger.Debug("filter change ignored: filtering disabled")
		return
	}
	if query == m.filter.Query {
		return
	}
	m.filter.Query = query
	m.update()
}

// OnClearFilter empties the filter query and returns to the first page.
func (m *TableModel) OnClearFilter() {
	m.filter.Query = ""
	m.page.CurrentPage = 1
	m.update()
}

// OnPageChange moves to page, clamped to [1, TotalPages].
func (m *TableModel) OnPageChange(page int) {
	clamped := ClampPage(page, m.view.TotalPages)
	if clamped != page {
		m.opts.logger.Debug("page request clamped",
			zap.Int("requested", page),
			zap.Int("page", clamped))
	}
	if clamped == m.page.CurrentPage {
		return
	}
	m.page.CurrentPage = clamped
	m.update()
}

// OnPageSizeChange sets the rows per page and returns to the first page.
// Sizes below 1 are ignored.
func (m *TableModel) OnPageSizeChange(size int) {
	if size < 1 {
		m.opts.logger.Debug("page size rejected", zap.Int("size", size))
		return
	}
	m.page.PageSize = size
	m.page.CurrentPage = 1
	m.update()
}

// NextPage moves forward one page if possible.
func (m *TableModel) NextPage() { m.OnPageChange(m.page.CurrentPage + 1) }

// PrevPage moves back one page if possible.
func (m *TableModel) PrevPage() { m.OnPageChange(m.page.CurrentPage - 1) }

// CanNextPage reports whether a later page exists.
func (m *TableModel) CanNextPage() bool { return m.view.CurrentPage < m.view.TotalPages }

// CanPrevPage reports whether an earlier page exists.
func (m *TableModel) CanPrevPage() bool { return m.view.CurrentPage > 1 }

// SetRows replaces the input rows, keeping interaction state. The current
// page is clamped to the new page count.
func (m *TableModel) SetRows(rows []Row) {
	m.rows = rows
	m.update()
}

// SetColumns replaces the column descriptors. A sort on a column that no
// longer exists is dropped.
func (m *TableModel) SetColumns(columns []Column) error {
	if err := ValidateColumns(columns); err != nil {
		return err
	}
	m.columns = slices.Clone(columns)
	if m.sort.Key != "" && !hasColumn(m.columns, m.sort.Key) {
		m.sort = SortState{}
	}
	if m.anchor.Key != "" && !hasColumn(m.columns, m.anchor.Key) {
		m.anchor = SortState{}
	}
	m.update()
	return nil
}

// SetPredicate replaces the row predicate. A nil filter removes it.
func (m *TableModel) SetPredicate(f Filter) {
	m.opts.predicate = f
	m.update()
}

// Predicate returns the active row predicate, if any.
func (m *TableModel) Predicate() Filter { return m.opts.predicate }

// View returns the current derived view.
func (m *TableModel) View() View { return m.view }

// Columns returns a copy of the column descriptors.
func (m *TableModel) Columns() []Column { return slices.Clone(m.columns) }

// SortState returns the active sort.
func (m *TableModel) SortState() SortState { return m.sort }

// FilterState returns the active filter.
func (m *TableModel) FilterState() FilterState { return m.filter }

// PaginationState returns the active page window.
func (m *TableModel) PaginationState() PaginationState { return m.page }

// PageSizeOptions returns the page sizes offered to the user.
func (m *TableModel) PageSizeOptions() []int { return slices.Clone(m.opts.pageSizeOptions) }

// SortingEnabled reports whether the sort stage is active.
func (m *TableModel) SortingEnabled() bool { return m.opts.sorting }

// FilteringEnabled reports whether the filter stage is active.
func (m *TableModel) FilteringEnabled() bool { return m.opts.filtering }

// PaginationEnabled reports whether the pagination stage is active.
func (m *TableModel) PaginationEnabled() bool { return m.opts.pagination }

// VisibleRows returns the rows of the current page.
func (m *TableModel) VisibleRows() []Row {
	rows := make([]Row, len(m.view.Rows))
	for i, vr := range m.view.Rows {
		rows[i] = vr.Row
	}
	return rows
}

// Summary returns the summary text of the current page.
func (m *TableModel) Summary() string { return m.view.Summary }

// CurrentPage returns the current 1-based page.
func (m *TableModel) CurrentPage() int { return m.view.CurrentPage }

// TotalPages returns the page count of the matching rows.
func (m *TableModel) TotalPages() int { return m.view.TotalPages }

// OriginalRowCount returns the number of input rows.
func (m *TableModel) OriginalRowCount() int { return len(m.rows) }

// MatchingRowCount returns the number of rows passing the filter stage.
func (m *TableModel) MatchingRowCount() int { return len(m.ordered) }

// PageNumbers returns up to limit page numbers around the current page.
func (m *TableModel) PageNumbers(limit int) []int {
	return PageNumbers(m.view.CurrentPage, m.view.TotalPages, limit)
}

// DerivedRows returns every matching row in pipeline order: the pages
// concatenated in page order, each sorted the way it is displayed.
func (m *TableModel) DerivedRows() []Row {
	out := make([]Row, 0, len(m.ordered))
	for _, idx := range m.derivedIndices() {
		out = append(out, m.rows[idx])
	}
	return out
}

func (m *TableModel) derivedIndices() []int {
	if !m.pageLocalSort() {
		return slices.Clone(m.ordered)
	}
	out := make([]int, 0, len(m.ordered))
	for page := 1; page <= m.view.TotalPages; page++ {
		out = append(out, m.pageIndices(page)...)
	}
	return out
}

func (m *TableModel) pageSize() int {
	if !m.opts.pagination {
		return 0
	}
	return m.page.PageSize
}

func (m *TableModel) pageLocalSort() bool {
	return m.opts.sorting && m.opts.scope == SortScopePage && m.sort.IsSorted() &&
		hasColumn(m.columns, m.sort.Key)
}

// pageIndices returns the positions on page, sorted for display.
func (m *TableModel) pageIndices(page int) []int {
	lo, hi, _, _ := window(len(m.ordered), m.pageSize(), page)
	idx := slices.Clone(m.ordered[lo:hi])
	if m.pageLocalSort() {
		sortIndices(m.rows, idx, m.sort)
	}
	return idx
}

func (m *TableModel) update() {
	m.recompute()
	for _, fn := range m.listeners {
		fn(m.view)
	}
}

// recompute runs the pipeline: filter, sort, paginate.
func (m *TableModel) recompute() {
	query := ""
	var pred Filter
	if m.opts.filtering {
		query = m.filter.Query
		pred = m.opts.predicate
	}
	m.ordered, m.highlights = filterIndices(m.rows, m.columns, query, pred, func(idx int, err error) {
		m.opts.logger.Debug("predicate failed", zap.Int("row", idx), zap.Error(err))
	})

	if m.opts.sorting {
		order := m.anchor
		if m.opts.scope == SortScopeGlobal {
			order = m.sort
		}
		if order.IsSorted() && hasColumn(m.columns, order.Key) {
			sortIndices(m.rows, m.ordered, order)
		}
	}

	lo, hi, current, total := window(len(m.ordered), m.pageSize(), m.page.CurrentPage)
	m.page.CurrentPage = current

	visible := make([]VisibleRow, 0, hi-lo)
	for _, idx := range m.pageIndices(current) {
		visible = append(visible, VisibleRow{Index: idx, Row: m.rows[idx], Highlights: m.highlights[idx]})
	}

	v := View{
		Columns:      slices.Clone(m.columns),
		Rows:         visible,
		Sort:         m.sort,
		Query:        m.filter.Query,
		PageSize:     m.page.PageSize,
		CurrentPage:  current,
		TotalPages:   total,
		MatchingRows: len(m.ordered),
		TotalRows:    len(m.rows),
	}
	if hi > lo {
		v.Start, v.End = lo+1, hi
	}
	v.Summary = Summary(v.Start, v.End, v.MatchingRows, v.TotalRows)
	m.view = v
}
