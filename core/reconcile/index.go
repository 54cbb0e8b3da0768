package reconcile

import (
	"fmt"

	"cpk-sync/core/t2b"
)

// Index maps composite path keys to patched-table records. Lookup is exact;
// there is no fuzzy or prefix matching.
type Index map[Key]*t2b.Record

// BuildIndex builds the lookup structure over a patched table. Records that
// cannot serve as a patch source are excluded: non-CPK_ITEM entries, entries
// with an empty first path component (no valid identity), and entries
// matching neither schema layout.
func BuildIndex(table *t2b.Table) (Index, error) {
	idx := make(Index, len(table.Records))
	for i := range table.Records {
		r := &table.Records[i]
		if r.Schema == t2b.SchemaNone {
			continue
		}
		prefix, suffix, ok := r.KeyParts()
		if !ok || prefix == "" {
			continue
		}
		key := Key{Prefix: prefix, Suffix: suffix}
		if _, dup := idx[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, key.String())
		}
		idx[key] = r
	}
	return idx, nil
}
