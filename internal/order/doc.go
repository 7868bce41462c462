// Package order derives presentation orders from catalog entries.
//
// Every function here is pure: it returns a new slice and never touches the
// input. Sorting and shuffling results are meant to be installed with
// catalog.ReplaceAll; filtering is a view only and must never be persisted
// or used to pick the active entry.
//
// Sorting is stable. Descending order inverts the comparator rather than
// reversing the sorted output, so entries with equal keys keep their input
// order in both directions.
package order
