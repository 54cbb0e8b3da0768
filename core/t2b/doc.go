// Package t2b decodes and patches LEVEL5 t2b configuration tables, the
// binary container behind cpk_list.cfg.bin.
//
// # Layout
//
// A table is a single buffer with five regions:
//
//   - a 0x10 byte header carrying the entry count and the string section
//     bounds
//   - the entry region: per entry a CRC name key, a value count, packed
//     2-bit value types, and the values themselves (4 or 8 bytes each,
//     little-endian; the width is detected by trial parse)
//   - the string section holding NUL-terminated value strings
//   - the checksum section mapping entry CRCs to entry names
//   - a 0x10 byte footer with the table magic and the string encoding flag
//
// Parse decodes the whole buffer into Records that keep the absolute byte
// offset and width of every value, which is what makes in-place patching
// possible without re-laying-out the table.
//
// # Schemas
//
// Two generations of third-party patch tools produce CPK_ITEM records with
// the file size in different fields. The variant is detected once per record
// at parse time (or forced through a Selector) and carried on the Record, so
// later stages never re-inspect discriminator fields.
//
// # Patching
//
// Apply takes the original buffer plus a list of Patch instructions and
// returns a fresh buffer with only the targeted ranges rewritten. Checksums
// and any other metadata the package does not understand survive untouched.
package t2b
