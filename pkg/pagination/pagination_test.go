package pagination

import (
	"encoding/json"
	"net/url"
	"testing"
)

func testConfig() Config {
	return Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		expectedPage int
		expectedSize int
	}{
		{"zero values get defaults", 0, 0, 1, 20},
		{"negative page clamps", -3, 10, 1, 10},
		{"oversize clamps to max", 2, 500, 2, 100},
		{"valid values unchanged", 4, 50, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := PageRequest{Page: tt.page, PageSize: tt.pageSize}
			req.Normalize(testConfig())

			if req.Page != tt.expectedPage {
				t.Errorf("Page = %d, expected %d", req.Page, tt.expectedPage)
			}
			if req.PageSize != tt.expectedSize {
				t.Errorf("PageSize = %d, expected %d", req.PageSize, tt.expectedSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := PageRequest{Page: 3, PageSize: 25}
	if offset := req.Offset(); offset != 50 {
		t.Errorf("Offset() = %d, expected 50", offset)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("page", "2")
	values.Set("page_size", "10")
	values.Set("search", "governance")
	values.Set("sort", "-risk_score,code")

	req := PageRequestFromQuery(values, testConfig())

	if req.Page != 2 {
		t.Errorf("Page = %d, expected 2", req.Page)
	}
	if req.PageSize != 10 {
		t.Errorf("PageSize = %d, expected 10", req.PageSize)
	}
	if req.Search == nil || *req.Search != "governance" {
		t.Errorf("Search = %v, expected governance", req.Search)
	}
	if len(req.Sort) != 2 {
		t.Fatalf("Sort = %v, expected 2 fields", req.Sort)
	}
	if req.Sort[0].Field != "risk_score" || !req.Sort[0].Descending {
		t.Errorf("Sort[0] = %v, expected risk_score descending", req.Sort[0])
	}
	if req.Sort[1].Field != "code" || req.Sort[1].Descending {
		t.Errorf("Sort[1] = %v, expected code ascending", req.Sort[1])
	}
}

func TestPageRequestFromQueryEmpty(t *testing.T) {
	req := PageRequestFromQuery(url.Values{}, testConfig())

	if req.Page != 1 {
		t.Errorf("Page = %d, expected 1", req.Page)
	}
	if req.PageSize != 20 {
		t.Errorf("PageSize = %d, expected default 20", req.PageSize)
	}
	if req.Search != nil {
		t.Errorf("Search = %v, expected nil", req.Search)
	}
	if req.Sort != nil {
		t.Errorf("Sort = %v, expected nil", req.Sort)
	}
}

func TestSortFieldsUnmarshalString(t *testing.T) {
	var s SortFields
	if err := json.Unmarshal([]byte(`"name,-created_at"`), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s) != 2 {
		t.Fatalf("len = %d, expected 2", len(s))
	}
	if s[0].Field != "name" || s[0].Descending {
		t.Errorf("s[0] = %v, expected name ascending", s[0])
	}
	if s[1].Field != "created_at" || !s[1].Descending {
		t.Errorf("s[1] = %v, expected created_at descending", s[1])
	}
}

func TestSortFieldsUnmarshalArray(t *testing.T) {
	var s SortFields
	data := `[{"Field":"code","Descending":false},{"Field":"level","Descending":true}]`
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s) != 2 {
		t.Fatalf("len = %d, expected 2", len(s))
	}
	if s[1].Field != "level" || !s[1].Descending {
		t.Errorf("s[1] = %v, expected level descending", s[1])
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name          string
		total         int
		pageSize      int
		expectedPages int
	}{
		{"exact multiple", 40, 20, 2},
		{"remainder adds page", 41, 20, 3},
		{"empty result has one page", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewPageResult([]int{}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.expectedPages {
				t.Errorf("TotalPages = %d, expected %d", result.TotalPages, tt.expectedPages)
			}
		})
	}
}

func TestNewPageResultNilData(t *testing.T) {
	result := NewPageResult[string](nil, 0, 1, 20)
	if result.Data == nil {
		t.Error("Data is nil, expected empty slice")
	}
}
