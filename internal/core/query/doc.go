// Package query describes list views and turns filter and sort criteria into
// request parameters.
//
// A View fixes the filter keys, sortable fields and default ordering of one
// list endpoint. A Spec is the mutable criteria for a view: staged filters,
// applied filters and the active sort.
package query
