package reconcile

import (
	"fmt"

	"cpk-sync/core/t2b"
)

// Sync runs the full pipeline over two table buffers: parse both, index the
// patched table, plan the size patches, and apply them to a copy of the
// original. It is a pure function over byte slices; reading and writing
// files is the caller's concern, and nothing is returned on error, so a
// failed run can never leave a partial output behind.
func Sync(original, patched []byte, opts Options) ([]byte, *Plan, error) {
	sel := opts.Schema
	if sel == "" {
		sel = t2b.SelectAuto
	}

	// The destination field position is schema-invariant, so the original
	// table is always parsed in auto mode; the selector only decides where
	// sizes are read from in the patched table.
	origTable, err := t2b.Parse(original, t2b.SelectAuto)
	if err != nil {
		return nil, nil, fmt.Errorf("parse original table: %w", err)
	}
	patchedTable, err := t2b.Parse(patched, sel)
	if err != nil {
		return nil, nil, fmt.Errorf("parse patched table: %w", err)
	}

	idx, err := BuildIndex(patchedTable)
	if err != nil {
		return nil, nil, err
	}

	plan, err := BuildPlan(origTable, idx)
	if err != nil {
		return nil, nil, err
	}

	out, err := t2b.Apply(original, plan.Patches)
	if err != nil {
		return nil, nil, err
	}
	return out, plan, nil
}
