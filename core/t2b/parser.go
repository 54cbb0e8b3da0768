package t2b

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// magic identifies a t2b table; it sits in the first four bytes of the
	// footer.
	magic uint32 = 0x62327401

	headerSize = 0x10
	footerSize = 0x10
	minSize    = 0x30
)

// Encoding is the character encoding of string data, taken from the footer.
type Encoding int

const (
	EncodingSJIS Encoding = iota
	EncodingUTF8
)

// Table is a fully decoded cpk_list configuration table. Raw keeps the
// source bytes untouched so patches can later be applied against them.
type Table struct {
	Raw      []byte
	Width    int // byte width of every encoded value: 4 or 8
	Encoding Encoding
	Records  []Record
}

// rawEntry is the structural decode of one entry before name and string
// resolution.
type rawEntry struct {
	crc     uint32
	kinds   []Kind
	raw     []int64
	offsets []int
	start   int
	end     int
}

// Parse decodes a table buffer and assigns a Schema to every CPK_ITEM
// record under the given selector.
func Parse(buf []byte, sel Selector) (*Table, error) {
	switch sel {
	case SelectAuto, SelectLegacy, SelectCurrent:
	default:
		return nil, fmt.Errorf("%w: unknown selector %q", ErrUnsupportedSchema, string(sel))
	}

	if len(buf) < minSize {
		return nil, fmt.Errorf("%w: %d bytes is below the %d byte minimum", ErrMalformedTable, len(buf), minSize)
	}

	footer := len(buf) - footerSize
	if got := binary.LittleEndian.Uint32(buf[footer:]); got != magic {
		return nil, fmt.Errorf("%w: footer magic 0x%08x at offset 0x%x", ErrMalformedTable, got, footer)
	}
	enc, err := decodeEncoding(int16(binary.LittleEndian.Uint16(buf[footer+6:])))
	if err != nil {
		return nil, err
	}

	entryCount := int(binary.LittleEndian.Uint32(buf[0:]))
	stringOffset := int(binary.LittleEndian.Uint32(buf[4:]))
	stringLength := int(binary.LittleEndian.Uint32(buf[8:]))

	entries, width, err := detectAndParseEntries(buf, entryCount, stringOffset)
	if err != nil {
		return nil, err
	}

	if stringOffset+stringLength > len(buf) {
		return nil, fmt.Errorf("%w: string section [0x%x,0x%x) exceeds table", ErrMalformedTable, stringOffset, stringOffset+stringLength)
	}
	stringData := buf[stringOffset : stringOffset+stringLength]

	names, err := parseNames(buf, stringOffset+stringLength, enc)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		name, ok := names[e.crc]
		if !ok {
			return nil, fmt.Errorf("%w: no name for entry crc 0x%08x at offset 0x%x", ErrMalformedTable, e.crc, e.start)
		}
		values := make([]Value, len(e.kinds))
		for i, kind := range e.kinds {
			v := Value{Kind: kind, Offset: e.offsets[i], Width: width}
			switch kind {
			case KindString:
				off := e.raw[i]
				if off < 0 || int(off) >= len(stringData) {
					v.Null = true
				} else {
					v.Str = decodeString(stringData, int(off), enc)
				}
			case KindInt:
				v.Int = e.raw[i]
			case KindFloat:
				if width == 4 {
					v.Float = float64(math.Float32frombits(uint32(e.raw[i])))
				} else {
					v.Float = math.Float64frombits(uint64(e.raw[i]))
				}
			}
			values[i] = v
		}
		rec := Record{Name: name, Values: values, Start: e.start, Length: e.end - e.start}
		rec.Schema = detectSchema(&rec, sel)
		records = append(records, rec)
	}

	return &Table{Raw: buf, Width: width, Encoding: enc, Records: records}, nil
}

// detectAndParseEntries finds the value width by trial parse. Tables do not
// declare their width; 4 is tried first since most tables use 32-bit values.
func detectAndParseEntries(buf []byte, entryCount, stringOffset int) ([]rawEntry, int, error) {
	entries, err := parseEntries(buf, entryCount, stringOffset, 4)
	if err == nil {
		return entries, 4, nil
	}
	if entries, err8 := parseEntries(buf, entryCount, stringOffset, 8); err8 == nil {
		return entries, 8, nil
	}
	return nil, 0, fmt.Errorf("no value width fits: %w", err)
}

// parseEntries decodes the entry region assuming a fixed value width. Every
// read is bounded by the string section start; the entry region must end
// within one alignment block of it, so trailing garbage is rejected rather
// than skipped.
func parseEntries(buf []byte, entryCount, stringOffset, width int) ([]rawEntry, error) {
	if stringOffset > len(buf) {
		return nil, fmt.Errorf("%w: string section offset 0x%x exceeds table", ErrMalformedTable, stringOffset)
	}
	pos := headerSize
	entries := make([]rawEntry, 0, entryCount)
	for n := 0; n < entryCount; n++ {
		start := pos
		if pos+5 > stringOffset {
			return nil, fmt.Errorf("%w: entry %d truncated at offset 0x%x", ErrMalformedTable, n, pos)
		}
		crc := binary.LittleEndian.Uint32(buf[pos:])
		pos += 4
		valueCount := int(buf[pos])
		pos++

		// Value types are packed two bits each, four per byte.
		kinds := make([]Kind, 0, valueCount)
		for j := 0; j < valueCount; j += 4 {
			if pos >= stringOffset {
				return nil, fmt.Errorf("%w: entry %d type bits truncated at offset 0x%x", ErrMalformedTable, n, pos)
			}
			chunk := buf[pos]
			pos++
			for h := 0; h < 4 && j+h < valueCount; h++ {
				switch (chunk >> (h * 2)) & 0x3 {
				case 0:
					kinds = append(kinds, KindString)
				case 1:
					kinds = append(kinds, KindInt)
				case 2:
					kinds = append(kinds, KindFloat)
				default:
					return nil, fmt.Errorf("%w: entry %d has invalid value type at offset 0x%x", ErrMalformedTable, n, pos-1)
				}
			}
		}

		pos = alignUp(pos, 4)

		raw := make([]int64, len(kinds))
		offsets := make([]int, len(kinds))
		for i := range kinds {
			if pos+width > stringOffset {
				return nil, fmt.Errorf("%w: entry %d values truncated at offset 0x%x", ErrMalformedTable, n, pos)
			}
			offsets[i] = pos
			if width == 4 {
				raw[i] = int64(int32(binary.LittleEndian.Uint32(buf[pos:])))
			} else {
				raw[i] = int64(binary.LittleEndian.Uint64(buf[pos:]))
			}
			pos += width
		}

		entries = append(entries, rawEntry{crc: crc, kinds: kinds, raw: raw, offsets: offsets, start: start, end: pos})
	}

	if pos > stringOffset || stringOffset-pos >= 0x10 {
		return nil, fmt.Errorf("%w: %d trailing bytes between entries and string section", ErrMalformedTable, stringOffset-pos)
	}
	return entries, nil
}

// parseNames reads the checksum section that maps entry CRCs to names. The
// CRC values themselves are never validated; they only serve as name keys.
func parseNames(buf []byte, stringEnd int, enc Encoding) (map[uint32]string, error) {
	pos := alignUp(stringEnd, 0x10)
	if pos+0x10 > len(buf) {
		return nil, fmt.Errorf("%w: checksum header at offset 0x%x exceeds table", ErrMalformedTable, pos)
	}
	count := int(binary.LittleEndian.Uint32(buf[pos+4:]))
	strOffset := int(binary.LittleEndian.Uint32(buf[pos+8:]))
	strSize := int(binary.LittleEndian.Uint32(buf[pos+12:]))

	entriesPos := pos + 0x10
	stringsPos := pos + strOffset
	if entriesPos+count*8 > len(buf) || stringsPos+strSize > len(buf) {
		return nil, fmt.Errorf("%w: checksum section at offset 0x%x exceeds table", ErrMalformedTable, pos)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: checksum section at offset 0x%x has no entries", ErrMalformedTable, pos)
	}
	nameData := buf[stringsPos : stringsPos+strSize]

	// Name offsets are stored relative to the first entry's offset.
	base := int(binary.LittleEndian.Uint32(buf[entriesPos+4:]))
	names := make(map[uint32]string, count)
	for i := 0; i < count; i++ {
		p := entriesPos + i*8
		crc := binary.LittleEndian.Uint32(buf[p:])
		off := int(binary.LittleEndian.Uint32(buf[p+4:])) - base
		if off < 0 || off >= len(nameData) {
			return nil, fmt.Errorf("%w: checksum name offset %d out of range", ErrMalformedTable, off)
		}
		names[crc] = decodeString(nameData, off, enc)
	}
	return names, nil
}

func decodeEncoding(raw int16) (Encoding, error) {
	switch raw {
	case 0:
		return EncodingSJIS, nil
	case 1, 256, 257:
		return EncodingUTF8, nil
	}
	return 0, fmt.Errorf("%w: unknown string encoding %d", ErrMalformedTable, raw)
}

// decodeString reads a NUL-terminated string. Shift-JIS data is decoded
// byte-as-rune, which keeps ASCII path names intact without a full codec.
func decodeString(data []byte, off int, enc Encoding) string {
	end := off
	for end < len(data) && data[end] != 0 {
		end++
	}
	raw := data[off:end]
	if enc == EncodingUTF8 {
		return string(raw)
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}

func alignUp(pos, align int) int {
	return (pos + align - 1) &^ (align - 1)
}
