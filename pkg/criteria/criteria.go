// Package criteria flattens search predicates, sort orders and column
// selections into the positionally indexed form parameters the Cirrus API
// expects.
//
// For the i-th item (1-based) under prefix P the encoder emits:
//
//	P.member.i.attributeName / .comparisonType / .attributeValue   (search)
//	P.member.i.sortColumn / .sortType                              (sort)
//	P.member.i                                                     (columns)
//
// No validation happens here; unknown attribute names or comparison types
// are passed through and rejected (or not) by the remote service.
package criteria

import (
	"fmt"
	"net/url"
)

// Default key prefixes used by the remote API.
const (
	PrefixSearchCriteria = "searchCriteria"
	PrefixSelectCriteria = "selectCriteriaList"
	PrefixSortCriteria   = "sortCriteriaList"
	PrefixColumns        = "selectedColumns"
	PrefixTrackIDs       = "trackIdList"
)

// Comparison is a predicate operator understood by the remote service.
type Comparison string

const (
	Equals Comparison = "EQUALS"
	Like   Comparison = "LIKE"
	IsNull Comparison = "IS_NULL"
)

// Unary reports whether the comparison takes no value.
func (c Comparison) Unary() bool {
	return c == IsNull
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Criterion is one search predicate. Predicates are ANDed remotely.
type Criterion struct {
	Attribute  string
	Comparison Comparison
	// Value is ignored for unary comparisons and may be empty otherwise.
	Value string
}

// Where builds a two-operand criterion.
func Where(attribute string, cmp Comparison, value string) Criterion {
	return Criterion{Attribute: attribute, Comparison: cmp, Value: value}
}

// Null builds an IS_NULL criterion.
func Null(attribute string) Criterion {
	return Criterion{Attribute: attribute, Comparison: IsNull}
}

// Sort is one sort key. Earlier keys take precedence.
type Sort struct {
	Column    string
	Direction Direction
}

// Params is a flat request envelope: wire parameter name to value.
type Params map[string]string

// Merge copies every entry of other into p, overwriting duplicates.
func (p Params) Merge(other Params) Params {
	for k, v := range other {
		p[k] = v
	}
	return p
}

// Values converts p to form values for a POST body.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for k, v := range p {
		values.Set(k, v)
	}
	return values
}

func memberKey(prefix string, i int) string {
	return fmt.Sprintf("%s.member.%d", prefix, i+1)
}

// EncodeSearch flattens search criteria under prefix. A criterion without a
// value encodes an empty attributeValue, never a missing key.
func EncodeSearch(prefix string, search []Criterion) Params {
	params := make(Params, 3*len(search))
	for i, c := range search {
		key := memberKey(prefix, i)
		value := c.Value
		if c.Comparison.Unary() {
			value = ""
		}
		params[key+".attributeName"] = c.Attribute
		params[key+".comparisonType"] = string(c.Comparison)
		params[key+".attributeValue"] = value
	}
	return params
}

// EncodeSort flattens sort keys under prefix, preserving input order.
func EncodeSort(prefix string, sort []Sort) Params {
	params := make(Params, 2*len(sort))
	for i, s := range sort {
		key := memberKey(prefix, i)
		params[key+".sortColumn"] = s.Column
		params[key+".sortType"] = string(s.Direction)
	}
	return params
}

// EncodeList flattens plain string members (column names, track ids)
// under prefix.
func EncodeList(prefix string, members []string) Params {
	params := make(Params, len(members))
	for i, m := range members {
		params[memberKey(prefix, i)] = m
	}
	return params
}

// EncodeColumns flattens the selected column names.
func EncodeColumns(columns []string) Params {
	return EncodeList(PrefixColumns, columns)
}

// Join returns a new slice holding base followed by extra. Neither input is
// modified, so package-level defaults can be shared safely.
func Join[T any](base []T, extra ...T) []T {
	out := make([]T, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
