package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Query is a PostgREST request against one table. Builders return the same
// Query so calls chain; a Query is not safe for concurrent use.
type Query struct {
	client  *Client
	table   string
	columns string
	filters url.Values
	order   []string
	single  bool
}

// From starts a query on table.
func (c *Client) From(table string) *Query {
	return &Query{
		client:  c,
		table:   table,
		filters: url.Values{},
	}
}

// Select sets the projection, including embedded resources such as
// "*,doctor:doctors(*)".
func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

// Eq adds an equality filter.
func (q *Query) Eq(column string, value interface{}) *Query {
	q.filters.Add(column, "eq."+fmt.Sprint(value))
	return q
}

// Order appends an ordering term.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.order = append(q.order, column+"."+dir)
	return q
}

// Single expects exactly one row; zero rows yields a not-found error.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

func (q *Query) values() url.Values {
	v := url.Values{}
	for k, vals := range q.filters {
		v[k] = append([]string(nil), vals...)
	}
	if q.columns != "" {
		v.Set("select", q.columns)
	}
	if len(q.order) > 0 {
		v.Set("order", strings.Join(q.order, ","))
	}
	return v
}

func (q *Query) headers() map[string]string {
	h := map[string]string{}
	if q.single {
		h["Accept"] = "application/vnd.pgrst.object+json"
	}
	return h
}

// Execute runs a select and decodes the rows into dest.
func (q *Query) Execute(ctx context.Context, dest interface{}) error {
	return q.client.do(ctx, request{
		op:      q.table + ".select",
		method:  http.MethodGet,
		path:    restPath + q.table,
		query:   q.values(),
		headers: q.headers(),
	}, dest)
}

// Insert posts row and decodes the stored representation into dest, which
// may be nil. The projection set with Select applies to the returned row.
func (q *Query) Insert(ctx context.Context, row interface{}, dest interface{}) error {
	h := q.headers()
	h["Prefer"] = "return=minimal"
	if dest != nil {
		h["Prefer"] = "return=representation"
	}
	v := url.Values{}
	if dest != nil && q.columns != "" {
		v.Set("select", q.columns)
	}
	return q.client.do(ctx, request{
		op:      q.table + ".insert",
		method:  http.MethodPost,
		path:    restPath + q.table,
		query:   v,
		body:    row,
		headers: h,
	}, dest)
}

// Update patches every row matching the filters. Matching zero rows is not
// an error.
func (q *Query) Update(ctx context.Context, patch interface{}) error {
	if len(q.filters) == 0 {
		return fmt.Errorf("refusing to update %s without a filter", q.table)
	}
	return q.client.do(ctx, request{
		op:      q.table + ".update",
		method:  http.MethodPatch,
		path:    restPath + q.table,
		query:   q.filters,
		body:    patch,
		headers: map[string]string{"Prefer": "return=minimal"},
	}, nil)
}
