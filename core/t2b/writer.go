package t2b

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Patch is a single size replacement: Width bytes at Offset are rewritten
// with the little-endian encoding of Value.
type Patch struct {
	Offset int
	Width  int
	Value  int64
}

// FitsWidth reports whether v is representable as a signed integer of the
// given byte width.
func FitsWidth(v int64, width int) bool {
	switch width {
	case 8:
		return true
	case 4:
		return v >= math.MinInt32 && v <= math.MaxInt32
	case 2:
		return v >= math.MinInt16 && v <= math.MaxInt16
	case 1:
		return v >= math.MinInt8 && v <= math.MaxInt8
	}
	return false
}

// Apply copies src into a fresh buffer and writes each patch value over its
// target range. Bytes outside patched ranges are never touched, so the
// table's layout and any checksums over untouched regions stay valid. The
// source buffer is left unmodified.
func Apply(src []byte, patches []Patch) ([]byte, error) {
	out := make([]byte, len(src))
	copy(out, src)
	for _, p := range patches {
		if p.Offset < 0 || p.Offset+p.Width > len(out) {
			return nil, fmt.Errorf("%w: %d bytes at offset 0x%x in a %d byte table", ErrOutOfBounds, p.Width, p.Offset, len(out))
		}
		switch p.Width {
		case 1:
			out[p.Offset] = byte(p.Value)
		case 2:
			binary.LittleEndian.PutUint16(out[p.Offset:], uint16(p.Value))
		case 4:
			binary.LittleEndian.PutUint32(out[p.Offset:], uint32(p.Value))
		case 8:
			binary.LittleEndian.PutUint64(out[p.Offset:], uint64(p.Value))
		default:
			return nil, fmt.Errorf("%w: unsupported field width %d at offset 0x%x", ErrOutOfBounds, p.Width, p.Offset)
		}
	}
	return out, nil
}
