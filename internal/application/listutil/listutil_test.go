package listutil

import (
	"net/url"
	"testing"
)

// TestParseViewParams_Defaults verifies zero values when no form values are provided.
func TestParseViewParams_Defaults(t *testing.T) {
	p := ParseViewParams(url.Values{})
	if p.Page != 0 {
		t.Errorf("expected page 0, got %d", p.Page)
	}
	if p.Action != "" || p.Search != "" || p.Role != "" || p.ID != "" {
		t.Errorf("expected empty params, got %+v", p)
	}
}

// TestParseViewParams_Valid verifies correct parsing of every field.
func TestParseViewParams_Valid(t *testing.T) {
	q := url.Values{"action": {"toggle"}, "q": {"Amal"}, "role": {" Cooking "}, "page": {"3"}, "id": {"a1"}}
	p := ParseViewParams(q)
	if p.Action != "toggle" {
		t.Errorf("expected action toggle, got %s", p.Action)
	}
	if p.Search != "Amal" {
		t.Errorf("expected search Amal, got %s", p.Search)
	}
	if p.Role != "Cooking" {
		t.Errorf("expected role Cooking, got %q", p.Role)
	}
	if p.Page != 3 {
		t.Errorf("expected page 3, got %d", p.Page)
	}
	if p.ID != "a1" {
		t.Errorf("expected id a1, got %s", p.ID)
	}
}

// TestParseViewParams_InvalidPage verifies non-numeric pages are treated as absent.
func TestParseViewParams_InvalidPage(t *testing.T) {
	p := ParseViewParams(url.Values{"page": {"DROP TABLE"}})
	if p.Page != 0 {
		t.Errorf("expected page 0 for invalid input, got %d", p.Page)
	}
}

// TestNewPageInfo verifies pagination metadata computation.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		total      int
		wantPages  int
		wantPage   int
		wantStart  int
		wantEnd    int
		wantOffset int
	}{
		{"basic", 1, 45, 5, 1, 1, 10, 0},
		{"page2", 2, 45, 5, 2, 11, 20, 10},
		{"lastPage", 5, 45, 5, 5, 41, 45, 40},
		{"pageBeyondTotal", 10, 45, 5, 5, 41, 45, 40},
		{"negativePage", -3, 45, 5, 1, 1, 10, 0},
		{"emptyList", 1, 0, 0, 1, 0, 0, 0},
		{"exactFit", 1, 10, 1, 1, 1, 10, 0},
		{"singleRow", 1, 1, 1, 1, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
			if pi.StartRow() != tt.wantStart {
				t.Errorf("StartRow: got %d, want %d", pi.StartRow(), tt.wantStart)
			}
			if pi.EndRow() != tt.wantEnd {
				t.Errorf("EndRow: got %d, want %d", pi.EndRow(), tt.wantEnd)
			}
			if pi.Offset() != tt.wantOffset {
				t.Errorf("Offset: got %d, want %d", pi.Offset(), tt.wantOffset)
			}
		})
	}
}

// TestPageNumbers verifies page number window generation.
func TestPageNumbers(t *testing.T) {
	tests := []struct {
		name string
		page int
		tot  int
		want []int
	}{
		{"3pages_at1", 1, 3, []int{1, 2, 3}},
		{"10pages_at1", 1, 10, []int{1, 2, 3, 4, 5}},
		{"10pages_at5", 5, 10, []int{3, 4, 5, 6, 7}},
		{"10pages_at10", 10, 10, []int{6, 7, 8, 9, 10}},
		{"1page", 1, 1, []int{1}},
		{"noPages", 1, 0, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.tot*PageSize)
			got := pi.PageNumbers()
			if len(got) != len(tt.want) {
				t.Fatalf("PageNumbers length: got %d, want %d", len(got), len(tt.want))
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("PageNumbers[%d]: got %d, want %d", i, v, tt.want[i])
				}
			}
		})
	}
}

// TestShowPagination verifies pagination visibility logic.
func TestShowPagination(t *testing.T) {
	if NewPageInfo(1, PageSize).ShowPagination() {
		t.Error("should not show pagination when total == page size")
	}
	if !NewPageInfo(1, PageSize+1).ShowPagination() {
		t.Error("should show pagination when total > page size")
	}
}

// TestPrevNext verifies the Previous/Next button state.
func TestPrevNext(t *testing.T) {
	first := NewPageInfo(1, 25)
	if first.HasPrev() || !first.HasNext() {
		t.Errorf("page 1 of 3: got prev=%v next=%v", first.HasPrev(), first.HasNext())
	}
	last := NewPageInfo(3, 25)
	if !last.HasPrev() || last.HasNext() {
		t.Errorf("page 3 of 3: got prev=%v next=%v", last.HasPrev(), last.HasNext())
	}
}

// TestSlice verifies every page concatenates back to the input.
func TestSlice(t *testing.T) {
	for total := 0; total <= 31; total++ {
		items := make([]int, total)
		for i := range items {
			items[i] = i
		}
		var joined []int
		pages := NewPageInfo(1, total).TotalPages
		for p := 1; p <= pages; p++ {
			rows := Slice(items, NewPageInfo(p, total))
			if len(rows) > PageSize {
				t.Fatalf("total %d page %d: %d rows exceeds page size", total, p, len(rows))
			}
			joined = append(joined, rows...)
		}
		if len(joined) != total {
			t.Fatalf("total %d: concatenated %d rows", total, len(joined))
		}
		for i, v := range joined {
			if v != i {
				t.Fatalf("total %d: row %d out of order (%d)", total, i, v)
			}
		}
	}
}
