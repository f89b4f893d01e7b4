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

import "fmt"

// Page is the output of the pagination stage.
type Page struct {
	// Visible is the window of rows on the current page.
	Visible []Row
	// CurrentPage is the requested page clamped to [1, TotalPages].
	CurrentPage int
	// TotalPages is max(1, ceil(len(rows)/pageSize)).
	TotalPages int
	// Start and End are the 1-based positions of the first and last visible
	// rows. Both are zero when there are no rows.
	Start int
	End   int
	// Summary describes the window for display.
	Summary string
}

// Paginate slices rows into the window for currentPage. datasetSize is the
// row count before filtering and is only used in the summary. A pageSize
// below 1 puts every row on a single page.
func Paginate(rows []Row, pageSize, currentPage, datasetSize int) Page {
	lo, hi, page, total := window(len(rows), pageSize, currentPage)
	p := Page{
		Visible:     rows[lo:hi],
		CurrentPage: page,
		TotalPages:  total,
	}
	if hi > lo {
		p.Start, p.End = lo+1, hi
	}
	p.Summary = Summary(p.Start, p.End, len(rows), datasetSize)
	return p
}

// TotalPages returns max(1, ceil(n/pageSize)).
func TotalPages(n, pageSize int) int {
	if pageSize < 1 || n <= pageSize {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage limits page to [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	return max(1, min(page, totalPages))
}

// Summary formats the window description shown under a table.
func Summary(start, end, matching, dataset int) string {
	return fmt.Sprintf("Showing %d-%d of %d matching rows (total dataset: %d)", start, end, matching, dataset)
}

// window returns the half-open bounds of the page together with the clamped
// page number and the page count.
func window(n, pageSize, page int) (lo, hi, current, total int) {
	total = TotalPages(n, pageSize)
	current = ClampPage(page, total)
	if pageSize < 1 {
		return 0, n, current, total
	}
	lo = min((current-1)*pageSize, n)
	hi = min(current*pageSize, n)
	return lo, hi, current, total
}

// PageNumbers returns up to limit page numbers centred on current, for
// rendering page buttons. A limit below 1 returns every page.
func PageNumbers(current, totalPages, limit int) []int {
	totalPages = max(totalPages, 1)
	current = ClampPage(current, totalPages)
	if limit < 1 || limit > totalPages {
		limit = totalPages
	}
	first := current - limit/2
	first = max(1, min(first, totalPages-limit+1))
	pages := make([]int, limit)
	for i := range pages {
		pages[i] = first + i
	}
	return pages
}
