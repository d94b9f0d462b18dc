package query

import (
	"reflect"
	"testing"
)

func testProjection() *ProjectionMap {
	return NewProjectionMap("public", "widgets", "w").
		Project("id", "ID").
		Project("name", "Name").
		Project("description", "Description").
		Project("risk_score", "RiskScore")
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []SortField
	}{
		{"empty", "", nil},
		{"single ascending", "name", []SortField{{Field: "name"}}},
		{"single descending", "-name", []SortField{{Field: "name", Descending: true}}},
		{
			"mixed with whitespace",
			"name, -createdAt",
			[]SortField{
				{Field: "name"},
				{Field: "createdAt", Descending: true},
			},
		},
		{"blank segments skipped", "name,,", []SortField{{Field: "name"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseSortFields(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ParseSortFields(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBuildNoConditions(t *testing.T) {
	sql, args := NewBuilder(testProjection()).Build()

	expected := "SELECT w.id, w.name, w.description, w.risk_score FROM public.widgets w"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, expected none", args)
	}
}

func TestBuildDefaultSort(t *testing.T) {
	sql, _ := NewBuilder(testProjection(), SortField{Field: "Name"}).Build()

	expected := "SELECT w.id, w.name, w.description, w.risk_score FROM public.widgets w ORDER BY w.name ASC"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
}

func TestOrderByFieldsOverridesDefault(t *testing.T) {
	b := NewBuilder(testProjection(), SortField{Field: "Name"}).
		OrderByFields([]SortField{{Field: "RiskScore", Descending: true}, {Field: "ID"}})

	sql, _ := b.Build()
	expected := "SELECT w.id, w.name, w.description, w.risk_score FROM public.widgets w ORDER BY w.risk_score DESC, w.id ASC"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
}

func TestWhereEquals(t *testing.T) {
	sql, args := NewBuilder(testProjection()).
		WhereEquals("Name", "alpha").
		BuildCount()

	expected := "SELECT COUNT(*) FROM public.widgets w WHERE w.name = $1"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if !reflect.DeepEqual(args, []any{"alpha"}) {
		t.Errorf("args = %v, expected [alpha]", args)
	}
}

func TestWhereEqualsNilSkipped(t *testing.T) {
	var name *string
	sql, args := NewBuilder(testProjection()).
		WhereEquals("Name", name).
		BuildCount()

	expected := "SELECT COUNT(*) FROM public.widgets w"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, expected none", args)
	}
}

func TestParameterNumbering(t *testing.T) {
	search := "core"
	sql, args := NewBuilder(testProjection()).
		WhereEquals("Name", "alpha").
		WhereSearch(&search, "Name", "Description").
		BuildCount()

	expected := "SELECT COUNT(*) FROM public.widgets w WHERE w.name = $1 AND (w.name ILIKE $2 OR w.description ILIKE $3)"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if !reflect.DeepEqual(args, []any{"alpha", "%core%", "%core%"}) {
		t.Errorf("args = %v", args)
	}
}

func TestWhereContains(t *testing.T) {
	value := "policy"
	sql, args := NewBuilder(testProjection()).
		WhereContains("Name", &value).
		BuildCount()

	expected := "SELECT COUNT(*) FROM public.widgets w WHERE w.name ILIKE $1"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if !reflect.DeepEqual(args, []any{"%policy%"}) {
		t.Errorf("args = %v, expected [%%policy%%]", args)
	}
}

func TestWhereIn(t *testing.T) {
	sql, args := NewBuilder(testProjection()).
		WhereIn("ID", []any{1, 2, 3}).
		BuildCount()

	expected := "SELECT COUNT(*) FROM public.widgets w WHERE w.id IN ($1, $2, $3)"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if !reflect.DeepEqual(args, []any{1, 2, 3}) {
		t.Errorf("args = %v, expected [1 2 3]", args)
	}
}

func TestWhereInEmptySkipped(t *testing.T) {
	sql, _ := NewBuilder(testProjection()).
		WhereIn("ID", nil).
		BuildCount()

	expected := "SELECT COUNT(*) FROM public.widgets w"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
}

func TestWhereGTE(t *testing.T) {
	threshold := 0.85
	sql, args := NewBuilder(testProjection()).
		WhereGTE("RiskScore", &threshold).
		BuildCount()

	expected := "SELECT COUNT(*) FROM public.widgets w WHERE w.risk_score >= $1"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if !reflect.DeepEqual(args, []any{&threshold}) {
		t.Errorf("args = %v, expected [%v]", args, &threshold)
	}
}

func TestWhereGTENilSkipped(t *testing.T) {
	var threshold *float64
	sql, _ := NewBuilder(testProjection()).
		WhereGTE("RiskScore", threshold).
		BuildCount()

	expected := "SELECT COUNT(*) FROM public.widgets w"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
}

func TestWhereClause(t *testing.T) {
	sql, args := NewBuilder(testProjection()).
		WhereClause("(w.name = $%d OR w.description = $%d)", "a", "b").
		WhereEquals("ID", 7).
		BuildCount()

	expected := "SELECT COUNT(*) FROM public.widgets w WHERE (w.name = $1 OR w.description = $2) AND w.id = $3"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if !reflect.DeepEqual(args, []any{"a", "b", 7}) {
		t.Errorf("args = %v, expected [a b 7]", args)
	}
}

func TestWhereNullable(t *testing.T) {
	sql, args := NewBuilder(testProjection()).
		WhereNullable("Description", nil).
		WhereNullable("Name", "alpha").
		BuildCount()

	expected := "SELECT COUNT(*) FROM public.widgets w WHERE w.description IS NULL AND w.name = $1"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if !reflect.DeepEqual(args, []any{"alpha"}) {
		t.Errorf("args = %v, expected [alpha]", args)
	}
}

func TestBuildPage(t *testing.T) {
	sql, args := NewBuilder(testProjection(), SortField{Field: "Name"}).
		WhereEquals("Name", "alpha").
		BuildPage(3, 25)

	expected := "SELECT w.id, w.name, w.description, w.risk_score FROM public.widgets w WHERE w.name = $1 ORDER BY w.name ASC LIMIT 25 OFFSET 50"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if !reflect.DeepEqual(args, []any{"alpha"}) {
		t.Errorf("args = %v, expected [alpha]", args)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := NewBuilder(testProjection()).BuildSingle("ID", 42)

	expected := "SELECT w.id, w.name, w.description, w.risk_score FROM public.widgets w WHERE w.id = $1"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if !reflect.DeepEqual(args, []any{42}) {
		t.Errorf("args = %v, expected [42]", args)
	}
}

func TestBuildSingleOrNull(t *testing.T) {
	sql, args := NewBuilder(testProjection()).
		WhereEquals("Name", "alpha").
		BuildSingleOrNull()

	expected := "SELECT w.id, w.name, w.description, w.risk_score FROM public.widgets w WHERE w.name = $1 LIMIT 1"
	if sql != expected {
		t.Errorf("sql = %q, expected %q", sql, expected)
	}
	if !reflect.DeepEqual(args, []any{"alpha"}) {
		t.Errorf("args = %v, expected [alpha]", args)
	}
}

func TestColumnPassthrough(t *testing.T) {
	p := testProjection()
	if col := p.Column("Name"); col != "w.name" {
		t.Errorf("Column(Name) = %q, expected w.name", col)
	}
	if col := p.Column("unmapped"); col != "unmapped" {
		t.Errorf("Column(unmapped) = %q, expected passthrough", col)
	}
}
