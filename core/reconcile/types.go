package reconcile

import "cpk-sync/core/t2b"

// Key is the composite identity of a table entry: its two path components,
// compared exactly and case-sensitively.
type Key struct {
	Prefix string
	Suffix string
}

// String returns the concatenated path for display.
func (k Key) String() string { return k.Prefix + k.Suffix }

// Options control a reconciliation run.
type Options struct {
	// Schema selects the patched-table field layout (auto, legacy, current).
	// An empty value means auto.
	Schema t2b.Selector
}

// Trace records the outcome for a single original record. The command layer
// renders these when CPK_DEBUG is set; the core never prints.
type Trace struct {
	// Key is the record's composite path identity.
	Key Key

	// Schema is the layout detected on the patched counterpart, or
	// SchemaNone when there is no match.
	Schema t2b.Schema

	// Matched reports whether the patched table carries this key.
	Matched bool

	// Patched reports whether a patch instruction was emitted.
	Patched bool

	// OldSize is the size currently encoded in the original record.
	OldSize int64

	// NewSize is the size taken from the patched record.
	NewSize int64

	// Reason explains why a record was not patched.
	Reason string
}

// Summary provides aggregate counts for a plan.
type Summary struct {
	// Total is the number of CPK_ITEM records in the original table.
	Total int

	// Matched counts records with a counterpart in the patched table.
	Matched int

	// Unmatched counts records the patched table does not carry. Patched
	// tables may be partial, so this is not an error.
	Unmatched int

	// Patched counts emitted patch instructions.
	Patched int

	// Skipped counts matched records without a readable source size or a
	// writable destination field.
	Skipped int
}

// Plan is the reconciliation output: the patch instructions to apply plus
// the per-record trace and aggregate summary. Patches follow original
// record order, so identical inputs always produce identical plans.
type Plan struct {
	Patches []t2b.Patch
	Trace   []Trace
	Summary Summary
}
