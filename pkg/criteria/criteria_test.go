package criteria

import (
	"fmt"
	"testing"
)

func TestEncodeSearch(t *testing.T) {
	search := []Criterion{
		Where("keywords", Like, "blue"),
		Where("assetType", Equals, "AUDIO"),
		Null("trackStatus"),
		{Attribute: "status", Comparison: Equals},
	}

	params := EncodeSearch(PrefixSearchCriteria, search)

	if len(params) != 3*len(search) {
		t.Fatalf("len(params) = %d, want %d", len(params), 3*len(search))
	}

	for i, c := range search {
		key := fmt.Sprintf("searchCriteria.member.%d", i+1)

		if got := params[key+".attributeName"]; got != c.Attribute {
			t.Errorf("%s.attributeName = %q, want %q", key, got, c.Attribute)
		}
		if got := params[key+".comparisonType"]; got != string(c.Comparison) {
			t.Errorf("%s.comparisonType = %q, want %q", key, got, c.Comparison)
		}
		value, ok := params[key+".attributeValue"]
		if !ok {
			t.Errorf("%s.attributeValue missing", key)
		}
		if value != c.Value {
			t.Errorf("%s.attributeValue = %q, want %q", key, value, c.Value)
		}
	}
}

func TestEncodeSearch_UnaryDropsValue(t *testing.T) {
	params := EncodeSearch("p", []Criterion{{Attribute: "trackStatus", Comparison: IsNull, Value: "stray"}})

	value, ok := params["p.member.1.attributeValue"]
	if !ok || value != "" {
		t.Errorf("attributeValue = %q (present=%v), want empty and present", value, ok)
	}
}

func TestEncodeSearch_DuplicatesStayContiguous(t *testing.T) {
	c := Where("status", Equals, "AVAILABLE")
	params := EncodeSearch("selectCriteriaList", []Criterion{c, c, c})

	for i := 1; i <= 3; i++ {
		key := fmt.Sprintf("selectCriteriaList.member.%d.attributeName", i)
		if params[key] != "status" {
			t.Errorf("%s = %q, want status", key, params[key])
		}
	}
	if _, ok := params["selectCriteriaList.member.4.attributeName"]; ok {
		t.Error("unexpected member 4")
	}
}

func TestEncodeSort(t *testing.T) {
	sort := []Sort{{"discNum", Asc}, {"trackNum", Desc}}

	params := EncodeSort(PrefixSortCriteria, sort)

	want := Params{
		"sortCriteriaList.member.1.sortColumn": "discNum",
		"sortCriteriaList.member.1.sortType":   "ASC",
		"sortCriteriaList.member.2.sortColumn": "trackNum",
		"sortCriteriaList.member.2.sortType":   "DESC",
	}
	if len(params) != len(want) {
		t.Fatalf("len(params) = %d, want %d", len(params), len(want))
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("%s = %q, want %q", k, params[k], v)
		}
	}
}

func TestEncodeColumns(t *testing.T) {
	params := EncodeColumns([]string{"title", "artistName"})

	if params["selectedColumns.member.1"] != "title" || params["selectedColumns.member.2"] != "artistName" {
		t.Errorf("unexpected columns: %v", params)
	}
	if len(params) != 2 {
		t.Errorf("len(params) = %d, want 2", len(params))
	}
}

func TestEncodeEmpty(t *testing.T) {
	if n := len(EncodeSearch("p", nil)); n != 0 {
		t.Errorf("EncodeSearch(nil) len = %d", n)
	}
	if n := len(EncodeSort("p", nil)); n != 0 {
		t.Errorf("EncodeSort(nil) len = %d", n)
	}
}

func TestParamsMergeAndValues(t *testing.T) {
	p := Params{"a": "1", "b": "2"}
	p.Merge(Params{"b": "3", "c": ""})

	values := p.Values()
	if values.Get("a") != "1" || values.Get("b") != "3" {
		t.Errorf("values = %v", values)
	}
	if _, ok := values["c"]; !ok {
		t.Error("empty value dropped from form values")
	}
}

func TestJoinDoesNotAlias(t *testing.T) {
	base := make([]Criterion, 1, 4)
	base[0] = Where("status", Equals, "AVAILABLE")

	first := Join(base, Where("artistName", Equals, "A"))
	second := Join(base, Where("artistName", Equals, "B"))

	if first[1].Value != "A" || second[1].Value != "B" {
		t.Errorf("joined slices share storage: %v %v", first, second)
	}
	if len(base) != 1 {
		t.Errorf("base modified: %v", base)
	}
}
