package fsp

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/todosdemo/todos/pkg/errcodes"
)

// Query parameter names.
const (
	ParamPage      = "page"
	ParamSize      = "size"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
	ParamFilters   = "filters"
)

// Query is the list query string as bound by the request binder. Embed it
// in a handler's query struct to accept the pipeline's parameters.
type Query struct {
	Page      string `query:"page"`
	Size      string `query:"size"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"`
	Filters   string `query:"filters"`
}

// Params returns the raw parameters for Decode.
func (q Query) Params() map[string]string {
	return map[string]string{
		ParamPage:      q.Page,
		ParamSize:      q.Size,
		ParamSortBy:    q.SortBy,
		ParamSortOrder: q.SortOrder,
		ParamFilters:   q.Filters,
	}
}

// DecodeValues decodes the first value of each recognized query parameter.
// See Decode.
func DecodeValues(values url.Values, allowed []string) (*Request, error) {
	params := map[string]string{}
	for _, name := range []string{ParamPage, ParamSize, ParamSortBy, ParamSortOrder, ParamFilters} {
		if values.Has(name) {
			params[name] = values.Get(name)
		}
	}
	return Decode(params, allowed)
}

// Decode validates raw string parameters into a Request. Field paths in
// sortBy and in each filter's filterBy must be in allowed. Parameters other
// than page, size, sortBy, sortOrder and filters are dropped, and an empty
// string counts as absent.
//
// Every failing parameter is reported in a single errcodes.InvalidShape
// error keyed by parameter name.
func Decode(params map[string]string, allowed []string) (*Request, error) {
	d := decoder{allowed: allowed, errs: map[string]string{}}
	req := &Request{}

	page, hasPage := d.integer(params, ParamPage, 0)
	size, hasSize := d.integer(params, ParamSize, 1)
	pageOK := hasPage && d.ok(ParamPage)
	sizeOK := hasSize && d.ok(ParamSize)
	switch {
	case pageOK && sizeOK:
		if page > 0 && size > math.MaxInt/page {
			d.errs[ParamPage] = fmt.Sprintf("%q is too large for the given %q", ParamPage, ParamSize)
		} else {
			req.Page = &Page{Page: page, Size: size}
		}
	case pageOK && !hasSize:
		d.errs[ParamSize] = fmt.Sprintf("%q is required when %q is set", ParamSize, ParamPage)
	case sizeOK && !hasPage:
		d.errs[ParamPage] = fmt.Sprintf("%q is required when %q is set", ParamPage, ParamSize)
	}

	sortBy, hasSortBy := d.field(params, ParamSortBy)
	sortOrder, hasSortOrder := d.order(params)
	switch {
	case hasSortBy && hasSortOrder:
		req.Sort = &Sort{By: sortBy, Order: sortOrder}
	case hasSortBy && !d.present(params, ParamSortOrder):
		d.errs[ParamSortOrder] = fmt.Sprintf("%q is required when %q is set", ParamSortOrder, ParamSortBy)
	case hasSortOrder && !d.present(params, ParamSortBy):
		d.errs[ParamSortBy] = fmt.Sprintf("%q is required when %q is set", ParamSortBy, ParamSortOrder)
	}

	req.Filters = d.filters(params)

	if len(d.errs) > 0 {
		return nil, errcodes.InvalidShape(d.errs)
	}
	return req, nil
}

type decoder struct {
	allowed []string
	errs    map[string]string
}

func (d *decoder) present(params map[string]string, name string) bool {
	return params[name] != ""
}

func (d *decoder) ok(name string) bool {
	_, failed := d.errs[name]
	return !failed
}

func (d *decoder) integer(params map[string]string, name string, minimum int) (int, bool) {
	raw := params[name]
	if raw == "" {
		return 0, false
	}
	// Atoi accepts a leading "+", which is not a number here.
	n, err := strconv.Atoi(raw)
	if err != nil || raw[0] == '+' || n < minimum {
		d.errs[name] = fmt.Sprintf("%q must be an integer greater than or equal to %d", name, minimum)
		return 0, true
	}
	return n, true
}

func (d *decoder) field(params map[string]string, name string) (string, bool) {
	raw := params[name]
	if raw == "" {
		return "", false
	}
	if !slices.Contains(d.allowed, raw) {
		d.errs[name] = d.notAllowed(name)
		return "", false
	}
	return raw, true
}

func (d *decoder) order(params map[string]string) (Order, bool) {
	switch raw := params[ParamSortOrder]; raw {
	case "":
		return "", false
	case string(OrderAsc), string(OrderDesc):
		return Order(raw), true
	default:
		d.errs[ParamSortOrder] = fmt.Sprintf("%q must be one of the following: %q, %q", ParamSortOrder, OrderAsc, OrderDesc)
		return "", false
	}
}

func (d *decoder) notAllowed(name string) string {
	quoted := make([]string, 0, len(d.allowed))
	for _, a := range d.allowed {
		quoted = append(quoted, strconv.Quote(a))
	}
	return fmt.Sprintf("%q must be one of the following: %s", name, strings.Join(quoted, ", "))
}

type rawFilter struct {
	FilterBy   *string         `json:"filterBy"`
	FilterType *string         `json:"filterType"`
	Filter     json.RawMessage `json:"filter"`
}

func (d *decoder) filters(params map[string]string) []Filter {
	raw := strings.TrimSpace(params[ParamFilters])
	if raw == "" {
		return nil
	}
	if raw == "null" {
		d.errs[ParamFilters] = fmt.Sprintf("%q must be a JSON array of filter descriptors", ParamFilters)
		return nil
	}

	var descriptors []rawFilter
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	var trailing any
	if err := dec.Decode(&descriptors); err != nil || dec.Decode(&trailing) != io.EOF {
		d.errs[ParamFilters] = fmt.Sprintf("%q must be a JSON array of filter descriptors", ParamFilters)
		return nil
	}

	// An empty array means the same as no filters at all.
	if len(descriptors) == 0 {
		return nil
	}

	filters := make([]Filter, 0, len(descriptors))
	for i, rf := range descriptors {
		key := fmt.Sprintf("%s[%d]", ParamFilters, i)
		f, ok := d.filter(key, rf)
		if ok {
			filters = append(filters, f)
		}
	}
	return filters
}

func (d *decoder) filter(key string, rf rawFilter) (Filter, bool) {
	f := Filter{}
	valid := true

	switch {
	case rf.FilterBy == nil:
		d.errs[key+".filterBy"] = fmt.Sprintf("%q is required", key+".filterBy")
		valid = false
	case !slices.Contains(d.allowed, *rf.FilterBy):
		d.errs[key+".filterBy"] = d.notAllowed(key + ".filterBy")
		valid = false
	default:
		f.FilterBy = *rf.FilterBy
	}

	if rf.FilterType == nil {
		d.errs[key+".filterType"] = fmt.Sprintf("%q is required", key+".filterType")
		return f, false
	}
	f.FilterType = FilterType(*rf.FilterType)

	value := bytes.TrimSpace(rf.Filter)
	switch f.FilterType {
	case FilterSearch:
		if len(value) == 0 || bytes.Equal(value, []byte("null")) || json.Unmarshal(value, &f.Search) != nil {
			d.errs[key+".filter"] = fmt.Sprintf("%q must be a string for search filters", key+".filter")
			valid = false
		}
	case FilterSelect:
		values, ok := decodeSelectValues(value)
		if !ok {
			d.errs[key+".filter"] = fmt.Sprintf("%q must be an array of strings, numbers or booleans for select filters", key+".filter")
			valid = false
		}
		f.Values = values
	default:
		d.errs[key+".filterType"] = fmt.Sprintf("%q must be one of the following: %q, %q", key+".filterType", FilterSearch, FilterSelect)
		valid = false
	}

	return f, valid
}

// decodeSelectValues decodes a JSON array of scalars. Integral numbers
// become int64 and the rest float64.
func decodeSelectValues(raw []byte) ([]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var items []any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil || items == nil {
		return nil, false
	}

	values := make([]any, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string, bool:
			values = append(values, v)
		case json.Number:
			if n, err := v.Int64(); err == nil {
				values = append(values, n)
			} else if f, err := v.Float64(); err == nil {
				values = append(values, f)
			} else {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return values, true
}

// Encode renders req back into query parameters, the inverse of
// DecodeValues.
func Encode(req *Request) url.Values {
	values := url.Values{}
	if req == nil {
		return values
	}
	if req.Page != nil {
		values.Set(ParamPage, strconv.Itoa(req.Page.Page))
		values.Set(ParamSize, strconv.Itoa(req.Page.Size))
	}
	if req.Sort != nil {
		values.Set(ParamSortBy, req.Sort.By)
		values.Set(ParamSortOrder, string(req.Sort.Order))
	}
	if len(req.Filters) > 0 {
		b, err := json.Marshal(req.Filters)
		if err == nil {
			values.Set(ParamFilters, string(b))
		}
	}
	return values
}
