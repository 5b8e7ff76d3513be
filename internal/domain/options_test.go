package domain

import "testing"

func TestParseSort(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantField     SortField
		wantDirection SortDirection
		wantErr       bool
	}{
		{"title ascending", "title", SortByTitle, Ascending, false},
		{"title descending", "-title", SortByTitle, Descending, false},
		{"explicit plus", "+yearofrelease", SortByYear, Ascending, false},
		{"year descending", "-yearofrelease", SortByYear, Descending, false},
		{"mixed case", "Title", SortByTitle, Ascending, false},
		{"unknown field", "slug", "", Ascending, true},
		{"injection attempt", "title; drop table movies", "", Ascending, true},
		{"empty", "", "", Ascending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, direction, err := ParseSort(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSort(%q) expected error, got field %q", tt.raw, field)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSort(%q) unexpected error: %v", tt.raw, err)
			}
			if field != tt.wantField || direction != tt.wantDirection {
				t.Fatalf("ParseSort(%q) = (%q, %v), want (%q, %v)", tt.raw, field, direction, tt.wantField, tt.wantDirection)
			}
		})
	}
}

func TestGetAllOptionsOffset(t *testing.T) {
	tests := []struct {
		name string
		opts GetAllOptions
		want int
	}{
		{"first page", GetAllOptions{Page: 1, PageSize: 10}, 0},
		{"zero page", GetAllOptions{Page: 0, PageSize: 10}, 0},
		{"third page", GetAllOptions{Page: 3, PageSize: 25}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Offset(); got != tt.want {
				t.Fatalf("Offset() = %d, want %d", got, tt.want)
			}
		})
	}
}
