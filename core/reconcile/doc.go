// Package reconcile matches entries across two independently parsed
// cpk_list tables and plans the size patches that bring the original table
// in line with the patched one.
//
// # Pipeline
//
// The package composes three steps over decoded t2b tables:
//
//  1. BuildIndex: map each patched-table record to its composite path key.
//     Duplicate keys are a hard error; picking one silently could propagate
//     a wrong size.
//  2. BuildPlan: for every original record, look up its counterpart, read
//     the size from the schema-appropriate source field, verify it fits the
//     destination width, and emit a patch instruction. Unmatched records
//     pass through untouched, visible in the plan's trace.
//  3. t2b.Apply: splice the planned values into a copy of the original
//     buffer.
//
// Sync wires the steps together over raw byte slices. Every stage consumes
// immutable input and produces fresh output; there is no shared state, and
// nothing is emitted on failure.
package reconcile
