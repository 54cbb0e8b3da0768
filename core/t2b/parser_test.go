package t2b_test

import (
	"encoding/binary"
	"testing"

	"cpk-sync/core/t2b"
	"cpk-sync/core/t2b/t2btest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Records(t *testing.T) {
	buf := t2btest.NewBuilder().
		Entry("CPK_HEADER", 1).
		Item("data/", "chr001.bin", 0, 0, 1, 0, 100).
		Bytes()

	tbl, err := t2b.Parse(buf, t2b.SelectAuto)
	require.NoError(t, err)

	assert.Equal(t, 4, tbl.Width)
	assert.Equal(t, t2b.EncodingUTF8, tbl.Encoding)
	require.Len(t, tbl.Records, 2)

	assert.Equal(t, "CPK_HEADER", tbl.Records[0].Name)
	assert.False(t, tbl.Records[0].IsItem())

	rec := tbl.Records[1]
	require.True(t, rec.IsItem())
	prefix, suffix, ok := rec.KeyParts()
	require.True(t, ok)
	assert.Equal(t, "data/", prefix)
	assert.Equal(t, "chr001.bin", suffix)
	require.Len(t, rec.Values, 7)
	assert.Len(t, rec.Fields(), 5)

	// The byte span and value offsets must point back into the buffer.
	assert.Greater(t, rec.Start, 0)
	assert.Greater(t, rec.Length, 0)
	dest, ok := rec.DestField()
	require.True(t, ok)
	assert.Equal(t, int64(100), dest.Int)
	assert.Equal(t, 4, dest.Width)
	assert.GreaterOrEqual(t, dest.Offset, rec.Start)
	assert.Less(t, dest.Offset, rec.Start+rec.Length)
	assert.Equal(t, uint32(100), binary.LittleEndian.Uint32(buf[dest.Offset:]))
}

func TestParse_WideValues(t *testing.T) {
	b := t2btest.NewBuilder()
	b.Width = 8
	buf := b.
		Item("data/", "chr001.bin", 0, 0, 1, 0, int64(1)<<40).
		Bytes()

	tbl, err := t2b.Parse(buf, t2b.SelectAuto)
	require.NoError(t, err)
	assert.Equal(t, 8, tbl.Width)
	require.Len(t, tbl.Records, 1)

	dest, ok := tbl.Records[0].DestField()
	require.True(t, ok)
	assert.Equal(t, int64(1)<<40, dest.Int)
	assert.Equal(t, 8, dest.Width)
}

func TestParse_SchemaDetection(t *testing.T) {
	buf := t2btest.NewBuilder().
		Item("data/", "", 0, 0, 4096).                       // legacy: empty suffix
		Item("data/", "chr001.bin", "", "", 1, 0, 4096).     // current: empty 3rd+4th
		Item("data/", "chr002.bin", 1, 2, 3, 4, 5).          // plain original-style entry
		Entry("CPK_HEADER", 2).
		Bytes()

	tbl, err := t2b.Parse(buf, t2b.SelectAuto)
	require.NoError(t, err)
	require.Len(t, tbl.Records, 4)

	assert.Equal(t, t2b.SchemaLegacy, tbl.Records[0].Schema)
	assert.Equal(t, t2b.SchemaCurrent, tbl.Records[1].Schema)
	assert.Equal(t, t2b.SchemaNone, tbl.Records[2].Schema)
	assert.Equal(t, t2b.SchemaNone, tbl.Records[3].Schema)
}

func TestParse_ForcedSelector(t *testing.T) {
	buf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", 1, 2, 3, 4, 5).
		Entry("CPK_HEADER", 2).
		Bytes()

	tbl, err := t2b.Parse(buf, t2b.SelectCurrent)
	require.NoError(t, err)
	assert.Equal(t, t2b.SchemaCurrent, tbl.Records[0].Schema)
	// Forcing a layout never touches non-item entries.
	assert.Equal(t, t2b.SchemaNone, tbl.Records[1].Schema)

	tbl, err = t2b.Parse(buf, t2b.SelectLegacy)
	require.NoError(t, err)
	assert.Equal(t, t2b.SchemaLegacy, tbl.Records[0].Schema)
}

func TestParse_UnknownSelector(t *testing.T) {
	buf := t2btest.NewBuilder().
		Item("data/", "", 0, 0, 4096).
		Bytes()

	_, err := t2b.Parse(buf, t2b.Selector("v2"))
	assert.ErrorIs(t, err, t2b.ErrUnsupportedSchema)
}

func TestParse_NullString(t *testing.T) {
	buf := t2btest.NewBuilder().
		Item("data/", t2btest.Null, 0, 0, 4096).
		Bytes()

	tbl, err := t2b.Parse(buf, t2b.SelectAuto)
	require.NoError(t, err)
	require.Len(t, tbl.Records, 1)

	rec := tbl.Records[0]
	assert.True(t, rec.Values[1].Null)
	// A null suffix discriminates the same as an empty one.
	assert.Equal(t, t2b.SchemaLegacy, rec.Schema)
	_, suffix, ok := rec.KeyParts()
	require.True(t, ok)
	assert.Equal(t, "", suffix)
}

func TestParse_SJISEncoding(t *testing.T) {
	b := t2btest.NewBuilder()
	b.Encoding = 0
	buf := b.
		Item("data/", "chr001.bin", 0, 0, 1, 0, 100).
		Bytes()

	tbl, err := t2b.Parse(buf, t2b.SelectAuto)
	require.NoError(t, err)
	assert.Equal(t, t2b.EncodingSJIS, tbl.Encoding)
	prefix, suffix, ok := tbl.Records[0].KeyParts()
	require.True(t, ok)
	assert.Equal(t, "data/", prefix)
	assert.Equal(t, "chr001.bin", suffix)
}

func TestParse_StringSizeField(t *testing.T) {
	// Some patch generators write the size as a quoted decimal string.
	buf := t2btest.NewBuilder().
		Item("data/", "", 0, 0, `"4096"`).
		Bytes()

	tbl, err := t2b.Parse(buf, t2b.SelectAuto)
	require.NoError(t, err)
	size, ok := tbl.Records[0].SourceSize()
	require.True(t, ok)
	assert.Equal(t, int64(4096), size)
}

func TestParse_Malformed(t *testing.T) {
	valid := t2btest.NewBuilder().
		Entry("CPK_HEADER", 1).
		Item("data/", "chr001.bin", 0, 0, 1, 0, 100).
		Bytes()

	tests := []struct {
		name   string
		mutate func(buf []byte) []byte
	}{
		{
			name:   "short buffer",
			mutate: func(buf []byte) []byte { return buf[:0x20] },
		},
		{
			name: "bad footer magic",
			mutate: func(buf []byte) []byte {
				buf[len(buf)-0x10] ^= 0xff
				return buf
			},
		},
		{
			name: "unknown encoding",
			mutate: func(buf []byte) []byte {
				binary.LittleEndian.PutUint16(buf[len(buf)-0x10+6:], 5)
				return buf
			},
		},
		{
			name: "entry count overruns string section",
			mutate: func(buf []byte) []byte {
				binary.LittleEndian.PutUint32(buf[0:], 50)
				return buf
			},
		},
		{
			name: "trailing bytes before string section",
			mutate: func(buf []byte) []byte {
				off := binary.LittleEndian.Uint32(buf[4:])
				binary.LittleEndian.PutUint32(buf[4:], off+0x20)
				return buf
			},
		},
		{
			name: "invalid value type bits",
			mutate: func(buf []byte) []byte {
				// First entry's type byte sits after its crc and count.
				buf[0x15] = 0xff
				return buf
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, len(valid))
			copy(buf, valid)
			_, err := t2b.Parse(tt.mutate(buf), t2b.SelectAuto)
			assert.ErrorIs(t, err, t2b.ErrMalformedTable)
		})
	}
}
