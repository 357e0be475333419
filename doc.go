// Package framex processes groups of spreadsheet files sharing a layout
// with declarative transformation workflows.
//
// Files are ingested into named groups, each materialized as a Table. An
// ordered list of Actions (rename, retype, filter, computed columns,
// joins across groups, sorting, aggregation, deduplication, missing-value
// fills) is applied by the Engine, which accumulates warnings and errors
// without halting: a failing action is skipped and the run continues.
// Results are exported as Excel workbooks or CSV, and the action list
// round-trips through a versioned JSON workflow document.
//
// All state is scoped to a Session; concurrent users each hold their own
// Session with no sharing.
package framex
