package query_test

import (
	"testing"

	"github.com/JaimeStill/docket/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "records", "r").
		Project("id", "id").
		Project("data", "data").
		Project("created_at", "created_at").
		Expr("r.data->>'status'", "status").
		Expr("r.data->>'initial_input_filename'", "filename")
}

func ptr(s string) *string { return &s }

func TestProjectionMap(t *testing.T) {
	p := testProjection()

	if got := p.From(); got != "public.records r" {
		t.Errorf("From() = %q, want %q", got, "public.records r")
	}
	if got := p.Alias(); got != "r" {
		t.Errorf("Alias() = %q, want %q", got, "r")
	}
	if got := p.Columns(); got != "r.id, r.data, r.created_at" {
		t.Errorf("Columns() = %q, want expressions excluded", got)
	}
}

func TestProjectionMapColumnLookup(t *testing.T) {
	p := testProjection()

	tests := []struct {
		view   string
		want   string
		mapped bool
	}{
		{"id", "r.id", true},
		{"status", "r.data->>'status'", true},
		{"unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			got, ok := p.Column(tt.view)
			if got != tt.want || ok != tt.mapped {
				t.Errorf("Column(%q) = (%q, %v), want (%q, %v)", tt.view, got, ok, tt.want, tt.mapped)
			}
		})
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		input string
		want  []query.SortField
	}{
		{"", nil},
		{"status", []query.SortField{{Field: "status"}}},
		{"-created_at", []query.SortField{{Field: "created_at", Descending: true}}},
		{" status , -created_at ,", []query.SortField{{Field: "status"}, {Field: "created_at", Descending: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSortFields(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSortFields(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildPage(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "created_at", Descending: true}).
		WhereEquals("status", "classified").
		WhereSearch(ptr("scan"), "filename")

	sql, args := b.BuildPage(2, 10)
	want := "SELECT r.id, r.data, r.created_at FROM public.records r" +
		" WHERE r.data->>'status' = $1 AND (r.data->>'initial_input_filename' ILIKE $2)" +
		" ORDER BY r.created_at DESC LIMIT 10 OFFSET 10"
	if sql != want {
		t.Errorf("BuildPage() sql =\n%s\nwant\n%s", sql, want)
	}
	if len(args) != 2 || args[0] != "classified" || args[1] != "%scan%" {
		t.Errorf("BuildPage() args = %v", args)
	}
}

func TestBuildCount(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).
		WhereEquals("status", "").
		WhereEquals("status", (*string)(nil)).
		BuildCount()

	if sql != "SELECT COUNT(*) FROM public.records r" {
		t.Errorf("BuildCount() sql = %q", sql)
	}
	if len(args) != 0 {
		t.Errorf("BuildCount() args = %v, want none", args)
	}
}

func TestUnmappedFieldsIgnored(t *testing.T) {
	b := query.NewBuilder(testProjection()).
		WhereEquals("data; DROP TABLE records", "x").
		OrderByFields([]query.SortField{{Field: "nope"}, {Field: "id"}})

	sql, args := b.BuildPage(1, 5)
	want := "SELECT r.id, r.data, r.created_at FROM public.records r ORDER BY r.id ASC LIMIT 5 OFFSET 0"
	if sql != want {
		t.Errorf("BuildPage() sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("BuildPage() args = %v, want none", args)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).BuildSingle("id", "abc")

	if sql != "SELECT r.id, r.data, r.created_at FROM public.records r WHERE r.id = $1" {
		t.Errorf("BuildSingle() sql = %q", sql)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("BuildSingle() args = %v", args)
	}
}
