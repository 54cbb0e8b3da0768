// Package t2btest builds valid t2b table buffers for tests. It lives in a
// separate package, like the storage mocks, so codec, reconcile, and command
// tests can all construct fixtures without duplicating the container layout.
package t2btest

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
)

type null struct{}

// Null marks a null string value (encoded as a negative string offset).
var Null = null{}

// Builder assembles a t2b table from entries added in order. Strings and
// entry names are pooled and deduplicated the way the game's own tables
// pool them.
type Builder struct {
	Width    int   // value width in bytes: 4 (default) or 8
	Encoding int16 // footer encoding flag; 1 = UTF-8
	entries  []entry
}

type entry struct {
	name   string
	values []any
}

// NewBuilder returns a Builder producing 4-byte-value UTF-8 tables.
func NewBuilder() *Builder {
	return &Builder{Width: 4, Encoding: 1}
}

// Entry appends a record. Values may be string, Null, int, int64 or
// float64.
func (b *Builder) Entry(name string, values ...any) *Builder {
	b.entries = append(b.entries, entry{name: name, values: values})
	return b
}

// Item appends a CPK_ITEM record whose first two values are the path
// components.
func (b *Builder) Item(prefix string, suffix any, fields ...any) *Builder {
	values := append([]any{prefix, suffix}, fields...)
	return b.Entry("CPK_ITEM", values...)
}

// Bytes lays the table out: header, entry region, string section, checksum
// section, footer.
func (b *Builder) Bytes() []byte {
	width := b.Width
	if width == 0 {
		width = 4
	}

	strOffsets := make(map[string]int)
	var strBlob []byte
	intern := func(s string) int {
		if off, ok := strOffsets[s]; ok {
			return off
		}
		off := len(strBlob)
		strOffsets[s] = off
		strBlob = append(strBlob, s...)
		strBlob = append(strBlob, 0)
		return off
	}

	var region []byte
	putValue := func(v int64) {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v))
		region = append(region, tmp[:width]...)
	}

	for _, e := range b.entries {
		var hdr [5]byte
		binary.LittleEndian.PutUint32(hdr[:], crc32.ChecksumIEEE([]byte(e.name)))
		hdr[4] = byte(len(e.values))
		region = append(region, hdr[:]...)

		for j := 0; j < len(e.values); j += 4 {
			var chunk byte
			for h := 0; h < 4 && j+h < len(e.values); h++ {
				chunk |= typeBits(e.values[j+h]) << (h * 2)
			}
			region = append(region, chunk)
		}
		for len(region)%4 != 0 {
			region = append(region, 0)
		}

		for _, v := range e.values {
			switch x := v.(type) {
			case string:
				putValue(int64(intern(x)))
			case null:
				putValue(-1)
			case int:
				putValue(int64(x))
			case int64:
				putValue(x)
			case float64:
				if width == 4 {
					putValue(int64(math.Float32bits(float32(x))))
				} else {
					putValue(int64(math.Float64bits(x)))
				}
			default:
				panic(fmt.Sprintf("t2btest: unsupported value type %T", v))
			}
		}
	}

	stringOffset := align16(0x10 + len(region))

	nameOffsets := make(map[string]int)
	var nameOrder []string
	var nameBlob []byte
	for _, e := range b.entries {
		if _, ok := nameOffsets[e.name]; ok {
			continue
		}
		nameOffsets[e.name] = len(nameBlob)
		nameOrder = append(nameOrder, e.name)
		nameBlob = append(nameBlob, e.name...)
		nameBlob = append(nameBlob, 0)
	}

	checksumPos := align16(stringOffset + len(strBlob))
	pairsEnd := 0x10 + len(nameOrder)*8
	checksumSize := pairsEnd + len(nameBlob)
	footerPos := align16(checksumPos + checksumSize)

	buf := make([]byte, footerPos+0x10)
	binary.LittleEndian.PutUint32(buf[0:], uint32(len(b.entries)))
	binary.LittleEndian.PutUint32(buf[4:], uint32(stringOffset))
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(strBlob)))
	copy(buf[0x10:], region)
	copy(buf[stringOffset:], strBlob)

	binary.LittleEndian.PutUint32(buf[checksumPos:], uint32(checksumSize))
	binary.LittleEndian.PutUint32(buf[checksumPos+4:], uint32(len(nameOrder)))
	binary.LittleEndian.PutUint32(buf[checksumPos+8:], uint32(pairsEnd))
	binary.LittleEndian.PutUint32(buf[checksumPos+12:], uint32(len(nameBlob)))
	for i, name := range nameOrder {
		p := checksumPos + 0x10 + i*8
		binary.LittleEndian.PutUint32(buf[p:], crc32.ChecksumIEEE([]byte(name)))
		binary.LittleEndian.PutUint32(buf[p+4:], uint32(pairsEnd+nameOffsets[name]))
	}
	copy(buf[checksumPos+pairsEnd:], nameBlob)

	binary.LittleEndian.PutUint32(buf[footerPos:], 0x62327401)
	binary.LittleEndian.PutUint16(buf[footerPos+6:], uint16(b.Encoding))
	return buf
}

func typeBits(v any) byte {
	switch v.(type) {
	case string, null:
		return 0
	case int, int64:
		return 1
	case float64:
		return 2
	}
	panic(fmt.Sprintf("t2btest: unsupported value type %T", v))
}

func align16(pos int) int {
	return (pos + 0xf) &^ 0xf
}
