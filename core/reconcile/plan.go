package reconcile

import (
	"fmt"

	"cpk-sync/core/t2b"
)

// BuildPlan walks the original table in record order and plans one patch
// per record whose key exists in the patched index. It does not apply
// anything; use t2b.Apply (or Sync) for that.
func BuildPlan(original *t2b.Table, idx Index) (*Plan, error) {
	plan := &Plan{}
	for i := range original.Records {
		r := &original.Records[i]
		if !r.IsItem() {
			continue
		}
		plan.Summary.Total++

		prefix, suffix, ok := r.KeyParts()
		key := Key{Prefix: prefix, Suffix: suffix}
		tr := Trace{Key: key}
		if !ok || prefix == "" {
			plan.Summary.Unmatched++
			tr.Reason = "no path identity"
			plan.Trace = append(plan.Trace, tr)
			continue
		}

		src, matched := idx[key]
		if !matched {
			plan.Summary.Unmatched++
			tr.Reason = "no counterpart in patched table"
			plan.Trace = append(plan.Trace, tr)
			continue
		}
		plan.Summary.Matched++
		tr.Matched = true
		tr.Schema = src.Schema

		size, ok := src.SourceSize()
		if !ok {
			plan.Summary.Skipped++
			tr.Reason = "patched record has no readable size"
			plan.Trace = append(plan.Trace, tr)
			continue
		}
		tr.NewSize = size

		dest, ok := r.DestField()
		if !ok {
			plan.Summary.Skipped++
			tr.Reason = "original record has no integer size field"
			plan.Trace = append(plan.Trace, tr)
			continue
		}
		tr.OldSize = dest.Int

		if !t2b.FitsWidth(size, dest.Width) {
			return nil, fmt.Errorf("%w: %q needs %d but the field holds %d bytes", ErrSizeOverflow, key.String(), size, dest.Width)
		}

		plan.Patches = append(plan.Patches, t2b.Patch{Offset: dest.Offset, Width: dest.Width, Value: size})
		plan.Summary.Patched++
		tr.Patched = true
		plan.Trace = append(plan.Trace, tr)
	}
	return plan, nil
}
